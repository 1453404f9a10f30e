package handler

import (
	"net/http"
	"strings"

	"github.com/deppfellow/phonebook/internal/errs"
	"github.com/deppfellow/phonebook/internal/model"
	"github.com/deppfellow/phonebook/internal/server"
	"github.com/deppfellow/phonebook/internal/service"
	"github.com/labstack/echo/v4"
)

// Person fields are validated by the store on every write, so the request
// types below only check what binding itself must provide: a path id.
// Checking fields here as well would let a bad number be reported before a
// malformed id.

type ListPersonsRequest struct{}

func (r *ListPersonsRequest) Validate() error { return nil }

type PersonIDRequest struct {
	ID string `param:"id" json:"-"`
}

func (r *PersonIDRequest) Validate() error { return requireID(r.ID) }

type CreatePersonRequest struct {
	Name   string `json:"name"`
	Number string `json:"number"`
}

func (r *CreatePersonRequest) Validate() error { return nil }

// UpdatePersonRequest only carries the number: names cannot be changed.
type UpdatePersonRequest struct {
	ID     string `param:"id" json:"-"`
	Number string `json:"number"`
}

func (r *UpdatePersonRequest) Validate() error { return requireID(r.ID) }

func requireID(id string) error {
	if strings.TrimSpace(id) == "" {
		return errs.InvalidIdentifier(id, nil)
	}
	return nil
}

func newListPersonsRequest() *ListPersonsRequest   { return &ListPersonsRequest{} }
func newPersonIDRequest() *PersonIDRequest         { return &PersonIDRequest{} }
func newCreatePersonRequest() *CreatePersonRequest { return &CreatePersonRequest{} }
func newUpdatePersonRequest() *UpdatePersonRequest { return &UpdatePersonRequest{} }

type PersonHandler struct {
	Handler
	persons *service.PersonService
}

func NewPersonHandler(s *server.Server, persons *service.PersonService) *PersonHandler {
	return &PersonHandler{
		Handler: NewHandler(s),
		persons: persons,
	}
}

func (h *PersonHandler) listPersons(c echo.Context, _ *ListPersonsRequest) ([]model.Person, error) {
	return h.persons.List(c.Request().Context())
}

func (h *PersonHandler) getPerson(c echo.Context, req *PersonIDRequest) (*model.Person, error) {
	return h.persons.Get(c.Request().Context(), req.ID)
}

func (h *PersonHandler) createPerson(c echo.Context, req *CreatePersonRequest) (*model.Person, error) {
	return h.persons.Create(c.Request().Context(), req.Name, req.Number)
}

func (h *PersonHandler) updatePerson(c echo.Context, req *UpdatePersonRequest) (*model.Person, error) {
	return h.persons.UpdateNumber(c.Request().Context(), req.ID, req.Number)
}

func (h *PersonHandler) deletePerson(c echo.Context, req *PersonIDRequest) error {
	return h.persons.Delete(c.Request().Context(), req.ID)
}

// ListPersons handles GET /api/persons.
func (h *PersonHandler) ListPersons() echo.HandlerFunc {
	return Handle(h.Handler, h.listPersons, http.StatusOK, newListPersonsRequest)
}

// GetPerson handles GET /api/persons/:id.
func (h *PersonHandler) GetPerson() echo.HandlerFunc {
	return HandleOptional(h.Handler, h.getPerson, http.StatusOK, newPersonIDRequest)
}

// CreatePerson handles POST /api/persons.
func (h *PersonHandler) CreatePerson() echo.HandlerFunc {
	return Handle(h.Handler, h.createPerson, http.StatusOK, newCreatePersonRequest)
}

// UpdatePerson handles PUT /api/persons/:id.
func (h *PersonHandler) UpdatePerson() echo.HandlerFunc {
	return HandleOptional(h.Handler, h.updatePerson, http.StatusOK, newUpdatePersonRequest)
}

// DeletePerson handles DELETE /api/persons/:id. It answers 204 whether or not
// the person existed.
func (h *PersonHandler) DeletePerson() echo.HandlerFunc {
	return HandleNoContent(h.Handler, h.deletePerson, http.StatusNoContent, newPersonIDRequest)
}
