package handler

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/deppfellow/phonebook/internal/middleware"
	"github.com/deppfellow/phonebook/internal/server"
	"github.com/labstack/echo/v4"
)

// Pinger is implemented by every dependency the health check can probe.
type Pinger interface {
	Ping(ctx context.Context) error
}

// HealthHandler exposes a system endpoint that monitors and load balancers
// use to check the service is alive and its store is reachable.
type HealthHandler struct {
	Handler
	database Pinger
}

func NewHealthHandler(s *server.Server, database Pinger) *HealthHandler {
	return &HealthHandler{
		Handler:  NewHandler(s),
		database: database,
	}
}

func (h *HealthHandler) recordHealthCheckError(attributes map[string]any) {
	if h.server.LoggerService == nil || h.server.LoggerService.GetApplication() == nil {
		return
	}
	attributes["operation"] = "health_check"
	h.server.LoggerService.GetApplication().RecordCustomEvent("HealthCheckError", attributes)
}

// CheckHealth returns 200 with status "healthy" when every configured check
// passes and 503 with status "unhealthy" otherwise.
func (h *HealthHandler) CheckHealth(c echo.Context) error {
	start := time.Now()
	cfg := h.server.Config.Observability.HealthChecks

	logger := middleware.GetLogger(c).With().
		Str("operation", "health_check").
		Logger()

	checks := make(map[string]any)
	response := map[string]any{
		"status":      "healthy",
		"timestamp":   time.Now().UTC(),
		"environment": h.server.Config.Primary.Env,
		"checks":      checks,
	}

	isHealthy := true

	for _, check := range cfg.Checks {
		if !cfg.Enabled || check != "database" {
			continue
		}

		ctx, cancel := context.WithTimeout(c.Request().Context(), cfg.Timeout)
		dbStart := time.Now()
		err := h.database.Ping(ctx)
		cancel()

		if err != nil {
			isHealthy = false
			checks["database"] = map[string]any{
				"status":        "unhealthy",
				"driver":        h.server.Config.Database.Driver,
				"response_time": time.Since(dbStart).String(),
				"error":         err.Error(),
			}

			logger.Error().
				Err(err).
				Dur("response_time", time.Since(dbStart)).
				Msg("database health check failed")

			h.recordHealthCheckError(map[string]any{
				"check_type":       "database",
				"error_type":       "database_unhealthy",
				"response_time_ms": time.Since(dbStart).Milliseconds(),
				"error_message":    err.Error(),
			})
			continue
		}

		checks["database"] = map[string]any{
			"status":        "healthy",
			"driver":        h.server.Config.Database.Driver,
			"response_time": time.Since(dbStart).String(),
		}

		logger.Debug().
			Dur("response_time", time.Since(dbStart)).
			Msg("database health check passed")
	}

	if !isHealthy {
		response["status"] = "unhealthy"

		logger.Warn().
			Dur("total_duration", time.Since(start)).
			Msg("health check failed")

		h.recordHealthCheckError(map[string]any{
			"check_type":        "overall",
			"error_type":        "overall_unhealthy",
			"total_duration_ms": time.Since(start).Milliseconds(),
		})

		return c.JSON(http.StatusServiceUnavailable, response)
	}

	if err := c.JSON(http.StatusOK, response); err != nil {
		logger.Error().Err(err).Msg("failed to write JSON response")
		return fmt.Errorf("failed to write JSON response: %w", err)
	}

	return nil
}
