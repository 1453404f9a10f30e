// Package handler is the first layer. The first entry point
// for business logic after the router.
//
// It parses requests, handles input validation using the
// validation package, and calls the appropriate service layer.
// It acts as the interface between the HTTP request and the core
// business logic.
package handler

import (
	"github.com/deppfellow/phonebook/internal/server"
	"github.com/deppfellow/phonebook/internal/service"
)

// Handlers groups all HTTP handlers so the router receives a single value.
type Handlers struct {
	Person  *PersonHandler
	Info    *InfoHandler
	Health  *HealthHandler
	OpenAPI *OpenAPIHandler
}

func NewHandlers(s *server.Server, services *service.Services) *Handlers {
	return &Handlers{
		Person:  NewPersonHandler(s, services.Persons),
		Info:    NewInfoHandler(s, services.Persons),
		Health:  NewHealthHandler(s, services.Persons),
		OpenAPI: NewOpenAPIHandler(s),
	}
}
