package errs

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTranslateInvalidIdentifier(t *testing.T) {
	err := fmt.Errorf("finding person: %w", InvalidIdentifier("doesnotexist123", errors.New("the provided hex string is not a valid ObjectID")))

	httpErr := Translate(err)

	assert.Equal(t, http.StatusBadRequest, httpErr.Status)
	assert.Equal(t, MessageMalformattedID, httpErr.Message)
	assert.Empty(t, httpErr.Errors)
}

func TestTranslateValidationFailed(t *testing.T) {
	fields := []FieldError{{Field: "name", Error: "is required"}}
	err := ValidationFailed("person validation failed: name is required", fields)

	httpErr := Translate(err)

	assert.Equal(t, http.StatusBadRequest, httpErr.Status)
	assert.Equal(t, "person validation failed: name is required", httpErr.Message)
	assert.Equal(t, fields, httpErr.Errors)
}

func TestTranslateUnhandled(t *testing.T) {
	for name, err := range map[string]error{
		"store error": Unhandled("listing persons", errors.New("connection reset by peer")),
		"plain error": errors.New("boom"),
	} {
		t.Run(name, func(t *testing.T) {
			httpErr := Translate(err)
			assert.Equal(t, http.StatusInternalServerError, httpErr.Status)
			assert.Equal(t, MessageInternalServerError, httpErr.Message)
		})
	}
}

func TestTranslateKeepsHTTPError(t *testing.T) {
	original := NewTooManyRequestsError()
	assert.Same(t, original, Translate(fmt.Errorf("wrapped: %w", original)))
}

func TestHTTPErrorBodyShape(t *testing.T) {
	body, err := json.Marshal(NewUnknownEndpointError())
	require.NoError(t, err)
	assert.JSONEq(t, `{"error":"unknown endpoint"}`, string(body))

	body, err = json.Marshal(Translate(ValidationFailed("bad", []FieldError{{Field: "number", Error: "is required"}})))
	require.NoError(t, err)
	assert.JSONEq(t, `{"error":"bad","errors":[{"field":"number","error":"is required"}]}`, string(body))
}

func TestKindOf(t *testing.T) {
	assert.Equal(t, KindInvalidIdentifier, KindOf(fmt.Errorf("x: %w", InvalidIdentifier("1", nil))))
	assert.Equal(t, KindValidationFailed, KindOf(ValidationFailed("m", nil)))
	assert.Equal(t, KindUnhandled, KindOf(errors.New("other")))
	assert.Equal(t, "ValidationFailed", KindValidationFailed.String())
}

func TestStoreErrorUnwrap(t *testing.T) {
	cause := errors.New("cause")
	err := InvalidIdentifier("abc", cause)
	assert.ErrorIs(t, err, cause)
	assert.Equal(t, `invalid identifier "abc": cause`, err.Error())
}
