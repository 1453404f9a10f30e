package router

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/deppfellow/phonebook/internal/config"
	"github.com/deppfellow/phonebook/internal/handler"
	"github.com/deppfellow/phonebook/internal/model"
	"github.com/deppfellow/phonebook/internal/repository"
	"github.com/deppfellow/phonebook/internal/server"
	"github.com/deppfellow/phonebook/internal/service"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type testApp struct {
	t    *testing.T
	e    *echo.Echo
	logs *bytes.Buffer
}

func newTestApp(t *testing.T, configure ...func(*config.Config)) *testApp {
	t.Helper()

	cfg := config.DefaultConfig()
	cfg.Server.Port = "3001"
	cfg.Server.StaticDir = t.TempDir()
	cfg.Database.Driver = config.DriverMemory
	for _, fn := range configure {
		fn(cfg)
	}

	logs := &bytes.Buffer{}
	log := zerolog.New(logs)

	srv, err := server.New(cfg, &log, nil)
	require.NoError(t, err)

	repos, err := repository.NewRepositories(srv)
	require.NoError(t, err)

	services, err := service.NewService(srv, repos)
	require.NoError(t, err)

	return &testApp{
		t:    t,
		e:    NewRouter(srv, handler.NewHandlers(srv, services)),
		logs: logs,
	}
}

func (a *testApp) do(method, target, body string) *httptest.ResponseRecorder {
	a.t.Helper()

	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	} else {
		req = httptest.NewRequest(method, target, nil)
	}

	rec := httptest.NewRecorder()
	a.e.ServeHTTP(rec, req)
	return rec
}

func (a *testApp) create(name, number string) model.Person {
	a.t.Helper()

	rec := a.do(http.MethodPost, "/api/persons", `{"name":"`+name+`","number":"`+number+`"}`)
	require.Equal(a.t, http.StatusOK, rec.Code, rec.Body.String())

	var p model.Person
	require.NoError(a.t, json.Unmarshal(rec.Body.Bytes(), &p))
	return p
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()

	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body), rec.Body.String())
	msg, _ := body["error"].(string)
	return msg
}

func TestCreateAndFetchPerson(t *testing.T) {
	app := newTestApp(t)

	created := app.create("Ada", "123")
	assert.NotEmpty(t, created.ID)
	assert.Equal(t, "Ada", created.Name)
	assert.Equal(t, "123", created.Number)

	rec := app.do(http.MethodGet, "/api/persons/"+created.ID, "")
	require.Equal(t, http.StatusOK, rec.Code)

	var fetched model.Person
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &fetched))
	assert.Equal(t, created, fetched)
}

func TestListPersons(t *testing.T) {
	app := newTestApp(t)

	rec := app.do(http.MethodGet, "/api/persons", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `[]`, rec.Body.String())

	a := app.create("Ada", "123")
	b := app.create("Grace", "456")

	rec = app.do(http.MethodGet, "/api/persons", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var persons []model.Person
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &persons))
	assert.ElementsMatch(t, []model.Person{a, b}, persons)
}

func TestTrailingSlashIsTheSameRoute(t *testing.T) {
	app := newTestApp(t)

	rec := app.do(http.MethodGet, "/api/persons/", "")
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestCreateValidation(t *testing.T) {
	app := newTestApp(t)

	rec := app.do(http.MethodPost, "/api/persons", `{"number":"123"}`)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "person validation failed: name is required", decodeError(t, rec))

	rec = app.do(http.MethodPost, "/api/persons", `{"name":"Ada","number":""}`)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "person validation failed: number is required", decodeError(t, rec))

	rec = app.do(http.MethodGet, "/api/persons", "")
	assert.JSONEq(t, `[]`, rec.Body.String())
}

func TestMalformedBody(t *testing.T) {
	app := newTestApp(t)

	rec := app.do(http.MethodPost, "/api/persons", `{"name":`)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "malformatted request body", decodeError(t, rec))

	rec = app.do(http.MethodPost, "/api/persons", `{"name":"Ada","number":123}`)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "malformatted request body", decodeError(t, rec))
}

func TestNonJSONBodyIsEmpty(t *testing.T) {
	app := newTestApp(t)
	p := app.create("Ada", "123")

	for _, contentType := range []string{echo.MIMETextPlain, ""} {
		req := httptest.NewRequest(http.MethodPost, "/api/persons", strings.NewReader(`{"name":"Ada","number":"123"}`))
		if contentType != "" {
			req.Header.Set(echo.HeaderContentType, contentType)
		}
		rec := httptest.NewRecorder()
		app.e.ServeHTTP(rec, req)

		require.Equal(t, http.StatusBadRequest, rec.Code, contentType)
		assert.Equal(t, "person validation failed: name is required, number is required", decodeError(t, rec), contentType)

		req = httptest.NewRequest(http.MethodPut, "/api/persons/"+p.ID, strings.NewReader(`{"number":"456"}`))
		if contentType != "" {
			req.Header.Set(echo.HeaderContentType, contentType)
		}
		rec = httptest.NewRecorder()
		app.e.ServeHTTP(rec, req)

		require.Equal(t, http.StatusBadRequest, rec.Code, contentType)
		assert.Equal(t, "person validation failed: number is required", decodeError(t, rec), contentType)
	}

	rec := app.do(http.MethodGet, "/api/persons", "")
	var persons []model.Person
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &persons))
	assert.Equal(t, []model.Person{p}, persons)
}

func TestWhitespaceFieldsAreAccepted(t *testing.T) {
	app := newTestApp(t)

	p := app.create(" ", " ")
	assert.Equal(t, " ", p.Name)
	assert.Equal(t, " ", p.Number)
}

func TestMalformedID(t *testing.T) {
	app := newTestApp(t)

	for _, method := range []string{http.MethodGet, http.MethodDelete} {
		rec := app.do(method, "/api/persons/abc", "")
		require.Equal(t, http.StatusBadRequest, rec.Code, method)
		assert.JSONEq(t, `{"error":"malformatted id"}`, rec.Body.String(), method)
	}

	rec := app.do(http.MethodPut, "/api/persons/abc", `{"number":""}`)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.JSONEq(t, `{"error":"malformatted id"}`, rec.Body.String())
}

func TestAbsentPerson(t *testing.T) {
	app := newTestApp(t)
	absent := primitive.NewObjectID().Hex()

	rec := app.do(http.MethodGet, "/api/persons/"+absent, "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Empty(t, rec.Body.String())

	rec = app.do(http.MethodPut, "/api/persons/"+absent, `{"number":"999"}`)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Empty(t, rec.Body.String())
}

func TestDeleteIsIdempotent(t *testing.T) {
	app := newTestApp(t)
	p := app.create("Ada", "123")

	rec := app.do(http.MethodDelete, "/api/persons/"+p.ID, "")
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Empty(t, rec.Body.String())

	rec = app.do(http.MethodGet, "/api/persons/"+p.ID, "")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = app.do(http.MethodDelete, "/api/persons/"+p.ID, "")
	assert.Equal(t, http.StatusNoContent, rec.Code)
}

func TestUpdateNumber(t *testing.T) {
	app := newTestApp(t)
	p := app.create("Ada", "123")

	rec := app.do(http.MethodPut, "/api/persons/"+p.ID, `{"name":"Someone Else","number":"456"}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var updated model.Person
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &updated))
	assert.Equal(t, model.Person{ID: p.ID, Name: "Ada", Number: "456"}, updated)

	rec = app.do(http.MethodPut, "/api/persons/"+p.ID, `{"number":""}`)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "person validation failed: number is required", decodeError(t, rec))

	rec = app.do(http.MethodGet, "/api/persons/"+p.ID, "")
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &updated))
	assert.Equal(t, "456", updated.Number)
}

func TestUnknownEndpoint(t *testing.T) {
	app := newTestApp(t)

	for _, tc := range []struct{ method, target string }{
		{http.MethodGet, "/nonexistent/path"},
		{http.MethodPost, "/info"},
		{http.MethodPatch, "/api/persons/abc"},
		{http.MethodPost, "/api/persons/abc"},
	} {
		rec := app.do(tc.method, tc.target, "")
		assert.Equal(t, http.StatusNotFound, rec.Code, tc.target)
		assert.JSONEq(t, `{"error":"unknown endpoint"}`, rec.Body.String(), tc.target)
	}
}

func TestInfo(t *testing.T) {
	app := newTestApp(t)
	app.create("Ada", "123")
	app.create("Grace", "456")

	rec := app.do(http.MethodGet, "/info", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get(echo.HeaderContentType), "text/html")
	assert.Contains(t, rec.Body.String(), "<h1>Phonebook has info for 2 people</h1>")
}

func TestStatus(t *testing.T) {
	app := newTestApp(t)

	rec := app.do(http.MethodGet, "/status", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "healthy", body["status"])
	assert.Contains(t, body["checks"], "database")
}

func TestOpenAPIDocument(t *testing.T) {
	app := newTestApp(t)

	rec := app.do(http.MethodGet, "/openapi.json", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "no-cache", rec.Header().Get("Cache-Control"))

	var doc map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &doc))
	assert.Contains(t, doc["paths"], "/api/persons/{id}")
}

func TestStaticAssets(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "index.html"), []byte("<html>phonebook</html>"), 0o644))

	app := newTestApp(t, func(cfg *config.Config) { cfg.Server.StaticDir = dir })

	rec := app.do(http.MethodGet, "/", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "phonebook")

	rec = app.do(http.MethodGet, "/missing.js", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.JSONEq(t, `{"error":"unknown endpoint"}`, rec.Body.String())
}

func TestRequestIDAndLogging(t *testing.T) {
	app := newTestApp(t)

	req := httptest.NewRequest(http.MethodPost, "/api/persons", strings.NewReader(`{"name":"Ada","number":"123"}`))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	req.Header.Set("X-Request-ID", "req-123")
	rec := httptest.NewRecorder()
	app.e.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "req-123", rec.Header().Get("X-Request-ID"))

	logs := app.logs.String()
	assert.Contains(t, logs, `"request_id":"req-123"`)
	assert.Contains(t, logs, `"message":"API"`)
	assert.Contains(t, logs, `"body":"{\"name\":\"Ada\",\"number\":\"123\"}"`)
}

func TestErrorsAreLogged(t *testing.T) {
	app := newTestApp(t)

	app.do(http.MethodGet, "/api/persons/abc", "")

	logs := app.logs.String()
	assert.Contains(t, logs, `"level":"error"`)
	assert.Contains(t, logs, `"error_code":"MALFORMATTED_ID"`)
}

func TestRateLimit(t *testing.T) {
	app := newTestApp(t, func(cfg *config.Config) {
		cfg.Server.RateLimit.RequestsPerSecond = 0.001
		cfg.Server.RateLimit.Burst = 1
	})

	rec := app.do(http.MethodGet, "/api/persons", "")
	require.Equal(t, http.StatusOK, rec.Code)

	rec = app.do(http.MethodGet, "/api/persons", "")
	require.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.JSONEq(t, `{"error":"too many requests"}`, rec.Body.String())
}
