// Package model holds the domain records shared by the store, service and handler layers.
package model

import (
	"github.com/deppfellow/phonebook/internal/errs"
	"github.com/deppfellow/phonebook/internal/validation"
)

// Person is a single phonebook record.
//
// ID is assigned by the store on creation and never changes afterwards.
type Person struct {
	ID     string `json:"id"`
	Name   string `json:"name" validate:"required"`
	Number string `json:"number" validate:"required"`
}

// Validate checks the fields a store must enforce on every write.
// It returns a ValidationFailed *errs.StoreError.
func (p *Person) Validate() error {
	if err := validation.Struct(p); err != nil {
		return validationFailed(err)
	}
	return nil
}

// ValidateNumber checks a replacement number for an existing record.
func ValidateNumber(number string) error {
	p := Person{Name: "-", Number: number}
	return p.Validate()
}

func validationFailed(err error) error {
	summary, fields := validation.ExtractValidationError(err)
	return errs.ValidationFailed(validation.Describe("person", summary), fields)
}
