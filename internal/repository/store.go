// Package repository handles all interactions with the database.
//
// It contains the queries and methods to fetch, persist, or update person
// records, abstracting MongoDB, PostgreSQL and in-memory storage behind the
// PersonStore contract used by the service layer.
package repository

import (
	"context"

	"github.com/deppfellow/phonebook/internal/model"
)

// PersonStore is the persistence contract for Person records.
//
// Absence is never an error: FindByID and UpdateNumber return (nil, nil)
// when no record has the id, and DeleteByID succeeds. Every failure is an
// *errs.StoreError.
type PersonStore interface {
	// FindAll returns every record in the store's natural order.
	// The slice is empty, never nil, when there are no records.
	FindAll(ctx context.Context) ([]model.Person, error)

	FindByID(ctx context.Context, id string) (*model.Person, error)

	// Create validates and persists a new record, returning it with its id.
	Create(ctx context.Context, name, number string) (*model.Person, error)

	// UpdateNumber checks id, then validates number, then replaces the
	// number in a single atomic write and returns the updated record.
	UpdateNumber(ctx context.Context, id, number string) (*model.Person, error)

	DeleteByID(ctx context.Context, id string) error

	Count(ctx context.Context) (int64, error)

	// Ping reports whether the backing store is reachable.
	Ping(ctx context.Context) error
}
