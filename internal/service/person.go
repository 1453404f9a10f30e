package service

import (
	"context"
	"time"

	"github.com/deppfellow/phonebook/internal/model"
	"github.com/deppfellow/phonebook/internal/repository"
	"github.com/deppfellow/phonebook/internal/server"
	"github.com/rs/zerolog"
)

// PersonService exposes the phonebook operations on top of a PersonStore.
//
// Absence is passed through as a nil result, the handler pipeline turns it
// into a 404.
type PersonService struct {
	server  *server.Server
	persons repository.PersonStore

	// now is swapped in tests.
	now func() time.Time
}

func NewPersonService(s *server.Server, persons repository.PersonStore) *PersonService {
	return &PersonService{
		server:  s,
		persons: persons,
		now:     time.Now,
	}
}

// Info is the summary shown on the /info page.
type Info struct {
	Count int64
	Time  time.Time
}

func (s *PersonService) Info(ctx context.Context) (*Info, error) {
	n, err := s.persons.Count(ctx)
	if err != nil {
		return nil, err
	}
	return &Info{Count: n, Time: s.now()}, nil
}

func (s *PersonService) List(ctx context.Context) ([]model.Person, error) {
	return s.persons.FindAll(ctx)
}

func (s *PersonService) Get(ctx context.Context, id string) (*model.Person, error) {
	return s.persons.FindByID(ctx, id)
}

func (s *PersonService) Create(ctx context.Context, name, number string) (*model.Person, error) {
	person, err := s.persons.Create(ctx, name, number)
	if err != nil {
		return nil, err
	}

	zerolog.Ctx(ctx).Info().
		Str("event", "person_created").
		Str("person_id", person.ID).
		Msg("person created")

	return person, nil
}

// UpdateNumber replaces the number of an existing person. The name is never changed.
func (s *PersonService) UpdateNumber(ctx context.Context, id, number string) (*model.Person, error) {
	person, err := s.persons.UpdateNumber(ctx, id, number)
	if err != nil || person == nil {
		return person, err
	}

	zerolog.Ctx(ctx).Info().
		Str("event", "person_updated").
		Str("person_id", person.ID).
		Msg("person number updated")

	return person, nil
}

// Delete removes a person. Deleting an absent person succeeds.
func (s *PersonService) Delete(ctx context.Context, id string) error {
	if err := s.persons.DeleteByID(ctx, id); err != nil {
		return err
	}

	zerolog.Ctx(ctx).Info().
		Str("event", "person_deleted").
		Str("person_id", id).
		Msg("person deleted")

	return nil
}

// Ping reports whether the person store is reachable.
func (s *PersonService) Ping(ctx context.Context) error {
	return s.persons.Ping(ctx)
}
