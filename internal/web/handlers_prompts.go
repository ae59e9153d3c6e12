package web

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/emiliopalmerini/agentdeck/internal/web/views"
)

func (s *Server) handleConversation(c echo.Context) error {
	items, err := s.board.Conversation(c.Request().Context(), c.Param("id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, map[string]any{"conversation": items})
}

func (s *Server) handleCreatePrompt(c echo.Context) error {
	ctx := c.Request().Context()
	sessionID := c.Param("id")

	var content string
	if isForm(c) {
		content = c.FormValue("content")
	} else {
		var body struct {
			Content string `json:"content"`
		}
		if err := c.Bind(&body); err != nil {
			return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		}
		content = body.Content
	}
	content = strings.TrimSpace(content)

	prompt, err := s.board.CreatePrompt(ctx, sessionID, content)
	if err != nil {
		return respondError(c, err)
	}

	if isHTMX(c) {
		items, err := s.board.Conversation(ctx, sessionID)
		if err != nil {
			return respondError(c, err)
		}
		return render(c, http.StatusOK, views.Conversation(sessionID, items))
	}
	return c.JSON(http.StatusCreated, map[string]any{"prompt": prompt})
}
