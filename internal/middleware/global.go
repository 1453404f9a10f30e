package middleware

import (
	"bytes"
	"io"
	"net/http"
	"strings"

	"github.com/deppfellow/phonebook/internal/errs"
	"github.com/deppfellow/phonebook/internal/server"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
)

const (
	// RequestBodyKey stores the captured request body in the Echo context.
	RequestBodyKey = "request_body"

	// maxLoggedBody caps how much of a request body is kept for logging.
	maxLoggedBody = 4 << 10
)

// GlobalMiddlewares groups global middleware and the global error handler.
type GlobalMiddlewares struct {
	server *server.Server
}

func NewGlobalMiddlewares(s *server.Server) *GlobalMiddlewares {
	return &GlobalMiddlewares{
		server: s,
	}
}

func (global *GlobalMiddlewares) CORS() echo.MiddlewareFunc {
	return middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: global.server.Config.Server.CORSAllowedOrigins,
	})
}

// ResolveError maps any error reaching the HTTP layer to the error the client gets.
//
// Echo's own routing errors (no route, or no route for this method) become
// the unknown-endpoint error; every other Echo error keeps its status.
func ResolveError(err error) *errs.HTTPError {
	var httpErr *errs.HTTPError
	if errors.As(err, &httpErr) {
		return httpErr
	}

	var storeErr *errs.StoreError
	if errors.As(err, &storeErr) {
		return errs.Translate(storeErr)
	}

	var echoErr *echo.HTTPError
	if errors.As(err, &echoErr) {
		switch echoErr.Code {
		case http.StatusNotFound, http.StatusMethodNotAllowed:
			return errs.NewUnknownEndpointError()
		case http.StatusInternalServerError:
			return errs.NewInternalServerError()
		}

		message, ok := echoErr.Message.(string)
		if !ok {
			message = http.StatusText(echoErr.Code)
		}
		return errs.NewStatusError(echoErr.Code, message)
	}

	return errs.Translate(err)
}

// CaptureBody keeps a copy of the request body for the request logger and
// restores it for the handler. Bodies above 4KiB are truncated in the log.
func (global *GlobalMiddlewares) CaptureBody() echo.MiddlewareFunc {
	enabled := global.server.Config.Observability.Logging.LogRequestBody

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			req := c.Request()
			if !enabled || req.Body == nil || req.ContentLength == 0 {
				return next(c)
			}

			body, err := io.ReadAll(req.Body)
			_ = req.Body.Close()
			if err != nil {
				return errs.NewBadRequestError(errs.MessageMalformattedRequestBody, nil, nil)
			}
			req.Body = io.NopCloser(bytes.NewReader(body))

			logged := body
			if len(logged) > maxLoggedBody {
				logged = logged[:maxLoggedBody]
			}
			c.Set(RequestBodyKey, string(logged))

			return next(c)
		}
	}
}

// RequestLogger writes one log line per request.
//
// When a handler returns an error the final status is not written yet (the
// global error handler writes it later), so the status is derived from the
// error with ResolveError.
func (global *GlobalMiddlewares) RequestLogger() echo.MiddlewareFunc {
	return middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogURI:          true,
		LogStatus:       true,
		LogError:        true,
		LogLatency:      true,
		LogHost:         true,
		LogMethod:       true,
		LogURIPath:      true,
		LogResponseSize: true,

		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			statusCode := v.Status
			if v.Error != nil {
				statusCode = ResolveError(v.Error).Status
			}

			logger := GetLogger(c)

			var e *zerolog.Event
			switch {
			case statusCode >= 500:
				e = logger.Error().Err(v.Error)
			case statusCode >= 400:
				e = logger.Warn()
			default:
				e = logger.Info()
			}

			if requestID := GetRequestID(c); requestID != "" {
				e = e.Str("request_id", requestID)
			}

			if body, ok := c.Get(RequestBodyKey).(string); ok {
				e = e.Str("body", body)
			}

			e.
				Dur("latency", v.Latency).
				Int("status", statusCode).
				Int64("response_size", v.ResponseSize).
				Str("method", v.Method).
				Str("uri", v.URI).
				Str("host", v.Host).
				Str("ip", c.RealIP()).
				Str("user_agent", c.Request().UserAgent()).
				Msg("API")

			return nil
		},
	})
}

// Recover turns handler panics into 500 responses.
func (global *GlobalMiddlewares) Recover() echo.MiddlewareFunc {
	return middleware.Recover()
}

// Secure adds standard security-related headers.
func (global *GlobalMiddlewares) Secure() echo.MiddlewareFunc {
	return middleware.Secure()
}

// Static serves the built frontend from server.static_dir for GET requests
// outside /api. Missing files fall through to routing.
func (global *GlobalMiddlewares) Static() echo.MiddlewareFunc {
	root := global.server.Config.Server.StaticDir
	if root == "" {
		return func(next echo.HandlerFunc) echo.HandlerFunc {
			return next
		}
	}

	return middleware.StaticWithConfig(middleware.StaticConfig{
		Root:       ".",
		Filesystem: http.Dir(root),
		Skipper: func(c echo.Context) bool {
			method := c.Request().Method
			if method != http.MethodGet && method != http.MethodHead {
				return true
			}
			path := c.Request().URL.Path
			return path == "/api" || strings.HasPrefix(path, "/api/")
		},
	})
}

// GlobalErrorHandler is the final error funnel for the entire HTTP server.
//
// It logs the original error with the request logger, then writes the
// translated response unless one was already written.
func (global *GlobalMiddlewares) GlobalErrorHandler(err error, c echo.Context) {
	httpErr := ResolveError(err)

	logger := GetLogger(c)

	e := logger.Error()
	if httpErr.Status >= http.StatusInternalServerError {
		e = e.Stack()
	}

	e.Err(err).
		Int("status", httpErr.Status).
		Str("error_code", httpErr.Code).
		Msg(httpErr.Message)

	if c.Response().Committed {
		return
	}

	if c.Request().Method == http.MethodHead {
		_ = c.NoContent(httpErr.Status)
		return
	}

	_ = c.JSON(httpErr.Status, httpErr)
}
