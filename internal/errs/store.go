package errs

import (
	"errors"
	"fmt"
)

// Kind classifies failures reported by the persistence layer.
//
// Absence of a record is not a Kind: stores report it as a nil result with a nil error.
type Kind uint8

const (
	// KindUnhandled covers everything the store cannot classify
	// (lost connectivity, unexpected driver errors, ...).
	KindUnhandled Kind = iota

	// KindInvalidIdentifier means the id is not syntactically valid for the store.
	KindInvalidIdentifier

	// KindValidationFailed means a required field is missing or empty.
	KindValidationFailed
)

func (k Kind) String() string {
	switch k {
	case KindInvalidIdentifier:
		return "InvalidIdentifier"
	case KindValidationFailed:
		return "ValidationFailed"
	default:
		return "Unhandled"
	}
}

// StoreError is the tagged error every PersonStore implementation returns.
type StoreError struct {
	Kind Kind

	// Message is the human-readable description. For ValidationFailed it is
	// what clients see in the response body.
	Message string

	// Fields holds per-field details for ValidationFailed.
	Fields []FieldError

	// Err is the underlying driver/parse error, if any.
	Err error
}

func (e *StoreError) Error() string {
	switch {
	case e.Message != "" && e.Err != nil:
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	case e.Message != "":
		return e.Message
	case e.Err != nil:
		return e.Err.Error()
	default:
		return e.Kind.String()
	}
}

func (e *StoreError) Unwrap() error {
	return e.Err
}

// InvalidIdentifier builds a KindInvalidIdentifier error for id.
func InvalidIdentifier(id string, err error) *StoreError {
	return &StoreError{
		Kind:    KindInvalidIdentifier,
		Message: fmt.Sprintf("invalid identifier %q", id),
		Err:     err,
	}
}

// ValidationFailed builds a KindValidationFailed error.
func ValidationFailed(message string, fields []FieldError) *StoreError {
	return &StoreError{
		Kind:    KindValidationFailed,
		Message: message,
		Fields:  fields,
	}
}

// Unhandled wraps err as a KindUnhandled store error.
func Unhandled(message string, err error) *StoreError {
	return &StoreError{
		Kind:    KindUnhandled,
		Message: message,
		Err:     err,
	}
}

// KindOf returns the Kind carried by err, or KindUnhandled when err is not a StoreError.
func KindOf(err error) Kind {
	var storeErr *StoreError
	if errors.As(err, &storeErr) {
		return storeErr.Kind
	}
	return KindUnhandled
}
