package validation

import (
	"errors"
	"fmt"
	"net/http"
	"reflect"
	"strings"

	"github.com/deppfellow/phonebook/internal/errs"
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
)

// validate is shared: validator caches struct metadata per type.
var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())

	// Report fields by the name clients use: JSON key, then path param.
	v.RegisterTagNameFunc(func(field reflect.StructField) string {
		if name := strings.SplitN(field.Tag.Get("json"), ",", 2)[0]; name != "" && name != "-" {
			return name
		}
		if name := field.Tag.Get("param"); name != "" {
			return name
		}
		return strings.ToLower(field.Name)
	})

	return v
}

// Validatable is implemented by request payload types that know how to validate themselves.
type Validatable interface {
	Validate() error
}

// Struct validates v against its `validate` tags.
func Struct(v any) error {
	return validate.Struct(v)
}

// BindAndValidate binds request data into payload and validates it.
//
// Flow:
//  1. c.Bind(payload) populates request struct from path params and body.
//     Bodies in a media type other than JSON, form or XML are ignored.
//  2. payload.Validate() applies validation rules.
//  3. Returns *errs.HTTPError (400) with field-level errors if validation fails.
//
// payload must be a pointer to a struct.
func BindAndValidate(c echo.Context, payload Validatable) error {
	if err := c.Bind(payload); err != nil {
		var echoErr *echo.HTTPError
		if !errors.As(err, &echoErr) || echoErr.Code != http.StatusUnsupportedMediaType {
			return errs.NewBadRequestError(errs.MessageMalformattedRequestBody, nil, nil)
		}
		// A body that is not JSON is read as an empty payload.
		if err := (&echo.DefaultBinder{}).BindPathParams(c, payload); err != nil {
			return errs.NewBadRequestError(errs.MessageMalformattedRequestBody, nil, nil)
		}
	}

	if err := payload.Validate(); err != nil {
		var storeErr *errs.StoreError
		if errors.As(err, &storeErr) {
			return err
		}
		msg, fieldErrors := ExtractValidationError(err)
		return errs.NewBadRequestError(Describe("request", msg), nil, fieldErrors)
	}

	return nil
}

// Describe prefixes a validation summary with its subject:
//
//	Describe("person", "name is required") == "person validation failed: name is required"
func Describe(subject, summary string) string {
	return fmt.Sprintf("%s validation failed: %s", subject, summary)
}

// ExtractValidationError converts validator errors into a one-line summary
// plus field-level errors.
func ExtractValidationError(err error) (string, []errs.FieldError) {
	var fieldErrors []errs.FieldError

	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) {
		return err.Error(), nil
	}

	parts := make([]string, 0, len(validationErrors))
	for _, err := range validationErrors {
		field := err.Field()
		var msg string

		switch err.Tag() {
		case "required":
			msg = "is required"

		case "min":
			if err.Type().Kind() == reflect.String {
				msg = fmt.Sprintf("must be at least %s characters", err.Param())
			} else {
				msg = fmt.Sprintf("must be at least %s", err.Param())
			}

		case "max":
			if err.Type().Kind() == reflect.String {
				msg = fmt.Sprintf("must not exceed %s characters", err.Param())
			} else {
				msg = fmt.Sprintf("must not exceed %s", err.Param())
			}

		case "oneof":
			msg = fmt.Sprintf("must be one of: %s", err.Param())

		case "uuid":
			msg = "must be a valid UUID"

		case "hexadecimal":
			msg = "must be a hexadecimal string"

		default:
			if err.Param() != "" {
				msg = fmt.Sprintf("%s:%s", err.Tag(), err.Param())
			} else {
				msg = err.Tag()
			}
		}

		fieldErrors = append(fieldErrors, errs.FieldError{
			Field: field,
			Error: msg,
		})
		parts = append(parts, field+" "+msg)
	}

	return strings.Join(parts, ", "), fieldErrors
}
