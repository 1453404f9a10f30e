package errs

import "errors"

// Translate maps any error reaching the HTTP layer to the response the client gets.
//
//   - *HTTPError passes through unchanged.
//   - KindInvalidIdentifier -> 400 {"error": "malformatted id"}
//   - KindValidationFailed  -> 400 {"error": <validation message>}
//   - anything else         -> 500 {"error": "internal server error"}
func Translate(err error) *HTTPError {
	var httpErr *HTTPError
	if errors.As(err, &httpErr) {
		return httpErr
	}

	var storeErr *StoreError
	if !errors.As(err, &storeErr) {
		return NewInternalServerError()
	}

	switch storeErr.Kind {
	case KindInvalidIdentifier:
		code := "MALFORMATTED_ID"
		return NewBadRequestError(MessageMalformattedID, &code, nil)
	case KindValidationFailed:
		code := "VALIDATION_FAILED"
		return NewBadRequestError(storeErr.Message, &code, storeErr.Fields)
	case KindUnhandled:
		return NewInternalServerError()
	default:
		return NewInternalServerError()
	}
}
