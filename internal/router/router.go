// Package router initializes the HTTP router (using Echo).
//
// It registers the middlewares and defines the API route groups,
// mapping specific paths to their corresponding handlers
package router

import (
	"github.com/deppfellow/phonebook/internal/handler"
	"github.com/deppfellow/phonebook/internal/middleware"
	"github.com/deppfellow/phonebook/internal/server"
	"github.com/labstack/echo/v4"
	echoMiddleware "github.com/labstack/echo/v4/middleware"
)

// NewRouter builds the Echo instance with every middleware and route.
//
// Any address no route matches ends in GlobalErrorHandler as an
// unknown-endpoint 404.
func NewRouter(s *server.Server, h *handler.Handlers) *echo.Echo {
	middlewares := middleware.NewMiddlewares(s)

	router := echo.New()
	router.HideBanner = true
	router.HidePort = true

	router.HTTPErrorHandler = middlewares.Global.GlobalErrorHandler

	// "/api/persons/" routes like "/api/persons".
	router.Pre(echoMiddleware.RemoveTrailingSlash())

	router.Use(
		middleware.RequestID(),
		middlewares.Tracing.NewRelicMiddleware(),
		middlewares.Tracing.EnhanceTracing(),
		middlewares.ContextEnhancer.EnhanceContext(),
		middlewares.Global.CaptureBody(),
		middlewares.Global.RequestLogger(),
		middlewares.Global.Recover(),
		middlewares.RateLimit.Limit(),
		middlewares.Global.CORS(),
		middlewares.Global.Secure(),
		middlewares.Global.Static(),
	)

	registerSystemRoutes(router, h)
	registerPersonRoutes(router, h)

	return router
}

func registerPersonRoutes(r *echo.Echo, h *handler.Handlers) {
	r.GET("/info", h.Info.GetInfo())

	persons := r.Group("/api/persons")
	persons.GET("", h.Person.ListPersons())
	persons.POST("", h.Person.CreatePerson())
	persons.GET("/:id", h.Person.GetPerson())
	persons.PUT("/:id", h.Person.UpdatePerson())
	persons.DELETE("/:id", h.Person.DeletePerson())
}
