package errs

import (
	"net/http"
)

// Messages shared with API clients. They are part of the public contract.
const (
	MessageMalformattedID          = "malformatted id"
	MessageMalformattedRequestBody = "malformatted request body"
	MessageUnknownEndpoint         = "unknown endpoint"
	MessageTooManyRequests         = "too many requests"
	MessageInternalServerError     = "internal server error"
)

// NewBadRequestError creates a 400 Bad Request HTTPError.
//
// This supports extra payload:
//   - code: optional custom code string (if nil, defaults to "BAD_REQUEST")
//   - errors: optional slice of field errors (validation errors)
func NewBadRequestError(message string, code *string, errors []FieldError) *HTTPError {
	formattedCode := MakeUpperCaseWithUnderscores(http.StatusText(http.StatusBadRequest))

	if code != nil {
		formattedCode = *code
	}

	return &HTTPError{
		Code:    formattedCode,
		Message: message,
		Status:  http.StatusBadRequest,
		Errors:  errors,
	}
}

// NewNotFoundError creates a 404 Not Found HTTPError.
func NewNotFoundError(message string, code *string) *HTTPError {
	formattedCode := MakeUpperCaseWithUnderscores(http.StatusText(http.StatusNotFound))

	if code != nil {
		formattedCode = *code
	}

	return &HTTPError{
		Code:    formattedCode,
		Message: message,
		Status:  http.StatusNotFound,
	}
}

// NewUnknownEndpointError is returned for every address the router cannot match,
// so clients can tell "no such endpoint" apart from "no such record".
func NewUnknownEndpointError() *HTTPError {
	code := "UNKNOWN_ENDPOINT"
	return NewNotFoundError(MessageUnknownEndpoint, &code)
}

// NewTooManyRequestsError creates a 429 Too Many Requests HTTPError.
func NewTooManyRequestsError() *HTTPError {
	return &HTTPError{
		Code:    MakeUpperCaseWithUnderscores(http.StatusText(http.StatusTooManyRequests)),
		Message: MessageTooManyRequests,
		Status:  http.StatusTooManyRequests,
	}
}

// NewInternalServerError creates a 500 Internal Server Error HTTPError.
//
// The message is generic on purpose: the real error is logged, never sent.
func NewInternalServerError() *HTTPError {
	return &HTTPError{
		Code:    MakeUpperCaseWithUnderscores(http.StatusText(http.StatusInternalServerError)),
		Message: MessageInternalServerError,
		Status:  http.StatusInternalServerError,
	}
}

// NewStatusError creates an HTTPError for an arbitrary status, using the
// status text as code and the given message.
func NewStatusError(status int, message string) *HTTPError {
	if message == "" {
		message = http.StatusText(status)
	}
	return &HTTPError{
		Code:    MakeUpperCaseWithUnderscores(http.StatusText(status)),
		Message: message,
		Status:  status,
	}
}
