package handler

import (
	"bytes"
	"html/template"
	"net/http"
	"time"

	"github.com/deppfellow/phonebook/internal/server"
	"github.com/deppfellow/phonebook/internal/service"
	"github.com/labstack/echo/v4"
)

// infoTimeLayout renders times like "Fri Jan 02 2026 15:04:05 GMT+0000 (UTC)".
const infoTimeLayout = "Mon Jan 02 2006 15:04:05 GMT-0700 (MST)"

var infoTemplate = template.Must(template.New("info").Parse(
	`<div><h1>Phonebook has info for {{.Count}} people</h1><p>{{.Time}}</p></div>`,
))

type InfoRequest struct{}

func (r *InfoRequest) Validate() error { return nil }

func newInfoRequest() *InfoRequest { return &InfoRequest{} }

type InfoHandler struct {
	Handler
	persons *service.PersonService
}

func NewInfoHandler(s *server.Server, persons *service.PersonService) *InfoHandler {
	return &InfoHandler{
		Handler: NewHandler(s),
		persons: persons,
	}
}

// RenderInfo renders the /info fragment for count people at t.
func RenderInfo(count int64, t time.Time) (string, error) {
	var buf bytes.Buffer
	err := infoTemplate.Execute(&buf, struct {
		Count int64
		Time  template.HTML
	}{
		Count: count,
		// The layout contains "+" for positive offsets, which would be escaped.
		Time: template.HTML(t.Format(infoTimeLayout)),
	})
	if err != nil {
		return "", err
	}
	return buf.String(), nil
}

func (h *InfoHandler) info(c echo.Context, _ *InfoRequest) (string, error) {
	info, err := h.persons.Info(c.Request().Context())
	if err != nil {
		return "", err
	}
	return RenderInfo(info.Count, info.Time)
}

// GetInfo handles GET /info.
func (h *InfoHandler) GetInfo() echo.HandlerFunc {
	return HandleHTML(h.Handler, h.info, http.StatusOK, newInfoRequest)
}
