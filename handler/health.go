package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

// Health handles GET /health, probing the store through the gate.
func (h *Handler) Health(c echo.Context) error {
	if !h.Gate.Available(c.Request().Context()) {
		return c.JSON(http.StatusServiceUnavailable, echo.Map{
			"status":  "error",
			"message": "Database unavailable",
		})
	}
	return c.JSON(http.StatusOK, echo.Map{"status": "ok"})
}
