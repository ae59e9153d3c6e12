package web

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/emiliopalmerini/agentdeck/internal/ports"
)

func (s *Server) handleGetPrefs(c echo.Context) error {
	prefs, err := s.prefs.All(c.Request().Context())
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": err.Error()})
	}
	return c.JSON(http.StatusOK, map[string]any{"prefs": prefs})
}

func (s *Server) handleSetPref(c echo.Context) error {
	key := c.Param("key")
	switch key {
	case ports.PrefSidebarCollapsed, ports.PrefLastFilter:
	default:
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "unknown preference: " + key})
	}

	var body struct {
		Value string `json:"value"`
	}
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid request body"})
	}

	if err := s.prefs.Set(c.Request().Context(), key, body.Value); err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": err.Error()})
	}
	return c.NoContent(http.StatusNoContent)
}
