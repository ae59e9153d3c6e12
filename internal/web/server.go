// Package web serves the board UI over HTTP and WebSocket.
package web

import (
	"context"
	"embed"
	"fmt"
	"io/fs"
	"net/http"

	"github.com/a-h/templ"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/emiliopalmerini/agentdeck/internal/board"
	"github.com/emiliopalmerini/agentdeck/internal/github"
	"github.com/emiliopalmerini/agentdeck/internal/ports"
)

//go:embed static/*
var staticFiles embed.FS

type Server struct {
	echo  *echo.Echo
	board *board.Board
	gh    *github.Client
	prefs ports.PrefsRepository
	hub   *Hub
	ws    *wsServer

	repoSearch   *github.Debouncer
	branchSearch *github.Debouncer
}

func NewServer(b *board.Board, gh *github.Client, prefs ports.PrefsRepository, h *Hub) *Server {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	e.Use(middleware.Logger())
	e.Use(middleware.Recover())
	e.Use(middleware.CORS())

	s := &Server{
		echo:         e,
		board:        b,
		gh:           gh,
		prefs:        prefs,
		hub:          h,
		ws:           newWSServer(h, b),
		repoSearch:   github.NewDebouncer(0),
		branchSearch: github.NewDebouncer(0),
	}
	s.routes()
	return s
}

func (s *Server) routes() {
	staticFS, err := fs.Sub(staticFiles, "static")
	if err != nil {
		panic(fmt.Sprintf("static filesystem: %v", err))
	}
	s.echo.GET("/static/*", echo.WrapHandler(http.StripPrefix("/static/", http.FileServer(http.FS(staticFS)))))

	s.echo.GET("/health", s.handleHealth)
	s.echo.GET("/ws", s.ws.handleWS)

	// Pages
	s.echo.GET("/", s.handleBoard)
	s.echo.GET("/sessions/:id", s.handleSessionPage)

	// HTMX partials
	s.echo.GET("/partials/tree", s.handleTreePartial)
	s.echo.GET("/partials/sessions/:id", s.handleSessionPartial)
	s.echo.GET("/partials/repos", s.handleRepoSearch)
	s.echo.GET("/partials/branches", s.handleBranchSearch)

	// JSON API
	s.echo.GET("/api/sessions", s.handleListSessions)
	s.echo.POST("/api/sessions", s.handleCreateSession)
	s.echo.GET("/api/sessions/:id", s.handleGetSession)
	s.echo.PATCH("/api/sessions/:id", s.handleUpdateSession)
	s.echo.POST("/api/sessions/:id/archive", s.handleArchiveSession)
	s.echo.POST("/api/sessions/:id/unarchive", s.handleUnarchiveSession)
	s.echo.DELETE("/api/sessions/:id", s.handleDeleteSession)
	s.echo.GET("/api/sessions/:id/conversation", s.handleConversation)
	s.echo.POST("/api/sessions/:id/prompts", s.handleCreatePrompt)

	s.echo.GET("/api/prefs", s.handleGetPrefs)
	s.echo.PUT("/api/prefs/:key", s.handleSetPref)
}

func (s *Server) Start(addr string) error {
	go s.hub.Run()
	return s.echo.Start(addr)
}

func (s *Server) Shutdown(ctx context.Context) error {
	s.repoSearch.Stop()
	s.branchSearch.Stop()
	return s.echo.Shutdown(ctx)
}

func (s *Server) handleHealth(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]any{
		"status":      "healthy",
		"connections": s.hub.ConnCount(),
	})
}

// render writes a templ component as the response body.
func render(c echo.Context, status int, component templ.Component) error {
	c.Response().Header().Set(echo.HeaderContentType, echo.MIMETextHTMLCharsetUTF8)
	c.Response().WriteHeader(status)
	return component.Render(c.Request().Context(), c.Response())
}

// isHTMX reports whether the request came from an HTMX swap rather
// than a full page navigation.
func isHTMX(c echo.Context) bool {
	return c.Request().Header.Get("HX-Request") == "true"
}
