package web

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/emiliopalmerini/agentdeck/internal/backend"
	"github.com/emiliopalmerini/agentdeck/internal/domain"
	"github.com/emiliopalmerini/agentdeck/internal/ports"
	"github.com/emiliopalmerini/agentdeck/internal/web/views"
)

// respondError maps domain and backend failures onto HTTP statuses.
func respondError(c echo.Context, err error) error {
	var verr *domain.ValidationError
	if errors.As(err, &verr) {
		return c.JSON(http.StatusUnprocessableEntity, map[string]any{
			"error":  "validation failed",
			"fields": verr.Fields,
		})
	}
	if backend.IsNotFound(err) {
		return c.JSON(http.StatusNotFound, map[string]string{"error": "not found"})
	}
	var aerr *backend.APIError
	if errors.As(err, &aerr) {
		return c.JSON(http.StatusBadGateway, map[string]string{"error": aerr.Message})
	}
	return c.JSON(http.StatusBadGateway, map[string]string{"error": err.Error()})
}

func (s *Server) activeFilter(c echo.Context) domain.UIStatus {
	raw := c.QueryParam("status")
	if raw == "" {
		raw, _ = s.prefs.Get(c.Request().Context(), ports.PrefLastFilter)
	}
	if raw == "" {
		return domain.UIStatusPending
	}
	return domain.ParseUIStatus(raw)
}

func (s *Server) handleBoard(c echo.Context) error {
	filter := s.activeFilter(c)
	query := c.QueryParam("q")

	tree, err := s.board.Hierarchy(c.Request().Context(), filter, query)
	if err != nil {
		return render(c, http.StatusBadGateway, views.Layout("agentdeck", views.ErrorPage(http.StatusBadGateway, err.Error())))
	}
	return render(c, http.StatusOK, views.Layout("agentdeck", views.Board(tree, filter, query)))
}

func (s *Server) handleSessionPage(c echo.Context) error {
	id := c.Param("id")
	ctx := c.Request().Context()

	session, err := s.board.Session(ctx, id)
	if err != nil {
		if backend.IsNotFound(err) {
			return c.Redirect(http.StatusSeeOther, "/")
		}
		return render(c, http.StatusBadGateway, views.Layout("agentdeck", views.ErrorPage(http.StatusBadGateway, err.Error())))
	}

	items, err := s.board.Conversation(ctx, id)
	if err != nil {
		items = nil
	}
	return render(c, http.StatusOK, views.Layout(session.Title, views.SessionDetail(session, items)))
}

func (s *Server) handleTreePartial(c echo.Context) error {
	filter := s.activeFilter(c)
	query := c.QueryParam("q")

	if raw := c.QueryParam("status"); raw != "" {
		_ = s.prefs.Set(c.Request().Context(), ports.PrefLastFilter, raw)
	}

	tree, err := s.board.Hierarchy(c.Request().Context(), filter, query)
	if err != nil {
		return respondError(c, err)
	}
	return render(c, http.StatusOK, views.SessionTree(tree))
}

func (s *Server) handleSessionPartial(c echo.Context) error {
	id := c.Param("id")
	ctx := c.Request().Context()

	session, err := s.board.Session(ctx, id)
	if err != nil {
		if backend.IsNotFound(err) {
			c.Response().Header().Set("HX-Redirect", "/")
			return c.NoContent(http.StatusNoContent)
		}
		return respondError(c, err)
	}

	items, err := s.board.Conversation(ctx, id)
	if err != nil {
		items = nil
	}
	return render(c, http.StatusOK, views.SessionDetail(session, items))
}

func (s *Server) handleListSessions(c echo.Context) error {
	tree, err := s.board.Hierarchy(c.Request().Context(), s.activeFilter(c), c.QueryParam("q"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, map[string]any{"sessions": tree})
}

func (s *Server) handleGetSession(c echo.Context) error {
	session, err := s.board.Session(c.Request().Context(), c.Param("id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, map[string]any{"session": session})
}

func (s *Server) handleCreateSession(c echo.Context) error {
	ctx := c.Request().Context()

	var data domain.CreateSessionData
	var firstPrompt string
	if isForm(c) {
		data = domain.CreateSessionData{
			Title:        strings.TrimSpace(c.FormValue("title")),
			Repo:         strings.TrimSpace(c.FormValue("repo")),
			TargetBranch: strings.TrimSpace(c.FormValue("target_branch")),
		}
		firstPrompt = strings.TrimSpace(c.FormValue("prompt"))
	} else {
		if err := c.Bind(&data); err != nil {
			return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		}
	}

	session, err := s.board.CreateSession(ctx, data)
	if err != nil {
		return respondError(c, err)
	}

	if firstPrompt != "" {
		if _, err := s.board.CreatePrompt(ctx, session.ID, firstPrompt); err != nil {
			return respondError(c, err)
		}
	}

	if isHTMX(c) {
		tree, err := s.board.Hierarchy(ctx, s.activeFilter(c), "")
		if err != nil {
			return respondError(c, err)
		}
		return render(c, http.StatusOK, views.SessionTree(tree))
	}
	return c.JSON(http.StatusCreated, map[string]any{"session": session})
}

func (s *Server) handleUpdateSession(c echo.Context) error {
	var patch domain.UpdateSessionData
	if err := c.Bind(&patch); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid request body"})
	}

	session, err := s.board.UpdateSession(c.Request().Context(), c.Param("id"), patch)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, map[string]any{"session": session})
}

func (s *Server) handleArchiveSession(c echo.Context) error {
	return s.toggleArchive(c, s.board.ArchiveSession)
}

func (s *Server) handleUnarchiveSession(c echo.Context) error {
	return s.toggleArchive(c, s.board.UnarchiveSession)
}

func (s *Server) toggleArchive(c echo.Context, toggle func(ctx context.Context, id string) (domain.Session, error)) error {
	session, err := toggle(c.Request().Context(), c.Param("id"))
	if err != nil {
		return respondError(c, err)
	}
	if isHTMX(c) {
		// The open detail view is stale after an archive toggle, send
		// the client back to the board.
		c.Response().Header().Set("HX-Push-Url", "/")
		return render(c, http.StatusOK, views.DetailPlaceholder())
	}
	return c.JSON(http.StatusOK, map[string]any{"session": session})
}

func (s *Server) handleDeleteSession(c echo.Context) error {
	if err := s.board.DeleteSession(c.Request().Context(), c.Param("id")); err != nil {
		return respondError(c, err)
	}
	if isHTMX(c) {
		c.Response().Header().Set("HX-Push-Url", "/")
		return render(c, http.StatusOK, views.DetailPlaceholder())
	}
	return c.NoContent(http.StatusNoContent)
}

func isForm(c echo.Context) bool {
	ct := c.Request().Header.Get(echo.HeaderContentType)
	return strings.HasPrefix(ct, echo.MIMEApplicationForm) || strings.HasPrefix(ct, echo.MIMEMultipartForm)
}
