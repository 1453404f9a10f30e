package router

import (
	"github.com/deppfellow/phonebook/internal/handler"
	"github.com/labstack/echo/v4"
)

// registerSystemRoutes registers endpoints that are not part of the phonebook itself.
func registerSystemRoutes(r *echo.Echo, h *handler.Handlers) {
	r.GET("/status", h.Health.CheckHealth)
	r.GET("/openapi.json", h.OpenAPI.ServeOpenAPI)
}
