package sqlerr

import (
	"errors"
	"fmt"
	"strings"

	"github.com/deppfellow/phonebook/internal/errs"
	"github.com/jackc/pgx/v5/pgconn"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// ErrCode reports the mapped Code for err, or Other when err is not an *Error.
func ErrCode(err error) Code {
	var pgerr *Error
	if errors.As(err, &pgerr) {
		return pgerr.Code
	}
	return Other
}

// ConvertPgError converts a raw pgconn.PgError into an *Error.
func ConvertPgError(src *pgconn.PgError) *Error {
	return &Error{
		Code:           MapCode(src.Code),
		Severity:       MapSeverity(src.Severity),
		DatabaseCode:   src.Code,
		Message:        src.Message,
		SchemaName:     src.SchemaName,
		TableName:      src.TableName,
		ColumnName:     src.ColumnName,
		DataTypeName:   src.DataTypeName,
		ConstraintName: src.ConstraintName,
		driverErr:      src,
	}
}

// singular drops a trailing "s": "persons" -> "person".
func singular(tableName string) string {
	if tableName == "" {
		return "record"
	}
	if strings.HasSuffix(tableName, "s") && len(tableName) > 1 {
		return tableName[:len(tableName)-1]
	}
	return tableName
}

// columnFromCheck extracts the column from a "<table>_<column>_check" constraint name.
func columnFromCheck(tableName, constraintName string) string {
	name := strings.TrimSuffix(constraintName, "_check")
	if name == constraintName {
		return ""
	}
	if tableName != "" {
		name = strings.TrimPrefix(name, tableName+"_")
	}
	return name
}

// humanizeText converts snake_case into Title Case: "first_name" -> "First Name".
func humanizeText(text string) string {
	if text == "" {
		return ""
	}
	return cases.Title(language.English).String(strings.ReplaceAll(text, "_", " "))
}

// HandleError converts a low-level database error into a store error.
//
//   - *errs.StoreError and *errs.HTTPError are returned unchanged.
//   - not-null and check violations become ValidationFailed, in the same
//     shape model.Person.Validate produces.
//   - invalid text for a typed column (e.g. a bad uuid) becomes InvalidIdentifier.
//   - everything else becomes Unhandled, keeping the original error for logs.
func HandleError(err error) error {
	var storeErr *errs.StoreError
	if errors.As(err, &storeErr) {
		return err
	}

	var httpErr *errs.HTTPError
	if errors.As(err, &httpErr) {
		return err
	}

	var pgerr *pgconn.PgError
	if !errors.As(err, &pgerr) {
		return errs.Unhandled("database operation failed", err)
	}

	sqlErr := ConvertPgError(pgerr)
	entity := singular(sqlErr.TableName)

	switch sqlErr.Code {
	case NotNullViolation, CheckViolation:
		column := sqlErr.ColumnName
		if column == "" {
			column = columnFromCheck(sqlErr.TableName, sqlErr.ConstraintName)
		}
		if column == "" {
			return errs.ValidationFailed(
				fmt.Sprintf("%s validation failed: one or more values do not meet required conditions", entity),
				nil,
			)
		}
		column = strings.ToLower(column)
		return errs.ValidationFailed(
			fmt.Sprintf("%s validation failed: %s is required", entity, column),
			[]errs.FieldError{{Field: column, Error: "is required"}},
		)

	case InvalidTextRepresentation:
		return errs.InvalidIdentifier("", sqlErr)

	default:
		return errs.Unhandled(
			fmt.Sprintf("%s operation failed (%s)", humanizeText(entity), sqlErr.Code),
			sqlErr,
		)
	}
}
