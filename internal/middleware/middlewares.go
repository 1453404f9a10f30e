package middleware

import (
	"github.com/deppfellow/phonebook/internal/server"
)

// Middlewares groups every middleware component used by the HTTP server.
type Middlewares struct {
	// Global holds CORS, request logging, recovery, secure headers, static
	// assets and the global error handler.
	Global          *GlobalMiddlewares
	ContextEnhancer *ContextEnhancer
	Tracing         *TracingMiddleware
	RateLimit       *RateLimitMiddleware
}

// NewMiddlewares builds all middleware once. Without New Relic configured,
// tracing degrades into a no-op.
func NewMiddlewares(s *server.Server) *Middlewares {
	return &Middlewares{
		Global:          NewGlobalMiddlewares(s),
		ContextEnhancer: NewContextEnhancer(s),
		Tracing:         NewTracingMiddleware(s, s.LoggerService.GetApplication()),
		RateLimit:       NewRateLimitMiddleware(s),
	}
}
