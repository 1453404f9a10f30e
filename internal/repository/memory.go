package repository

import (
	"context"
	"sync"

	"github.com/deppfellow/phonebook/internal/errs"
	"github.com/deppfellow/phonebook/internal/model"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// MemoryPersonStore keeps persons in process memory.
//
// Identifiers have the same shape as MongoDB ObjectIDs, so clients see the
// same validation rules whichever driver is configured.
type MemoryPersonStore struct {
	mu      sync.RWMutex
	persons map[primitive.ObjectID]model.Person
	order   []primitive.ObjectID
}

func NewMemoryPersonStore() *MemoryPersonStore {
	return &MemoryPersonStore{
		persons: make(map[primitive.ObjectID]model.Person),
	}
}

func parseObjectID(id string) (primitive.ObjectID, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return primitive.NilObjectID, errs.InvalidIdentifier(id, err)
	}
	return oid, nil
}

func (s *MemoryPersonStore) FindAll(_ context.Context) ([]model.Person, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	persons := make([]model.Person, 0, len(s.order))
	for _, oid := range s.order {
		persons = append(persons, s.persons[oid])
	}
	return persons, nil
}

func (s *MemoryPersonStore) FindByID(_ context.Context, id string) (*model.Person, error) {
	oid, err := parseObjectID(id)
	if err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	person, ok := s.persons[oid]
	if !ok {
		return nil, nil
	}
	return &person, nil
}

func (s *MemoryPersonStore) Create(_ context.Context, name, number string) (*model.Person, error) {
	person := model.Person{Name: name, Number: number}
	if err := person.Validate(); err != nil {
		return nil, err
	}

	oid := primitive.NewObjectID()
	person.ID = oid.Hex()

	s.mu.Lock()
	s.persons[oid] = person
	s.order = append(s.order, oid)
	s.mu.Unlock()

	return &person, nil
}

func (s *MemoryPersonStore) UpdateNumber(_ context.Context, id, number string) (*model.Person, error) {
	oid, err := parseObjectID(id)
	if err != nil {
		return nil, err
	}
	if err := model.ValidateNumber(number); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	person, ok := s.persons[oid]
	if !ok {
		return nil, nil
	}
	person.Number = number
	s.persons[oid] = person

	return &person, nil
}

func (s *MemoryPersonStore) DeleteByID(_ context.Context, id string) error {
	oid, err := parseObjectID(id)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.persons[oid]; !ok {
		return nil
	}
	delete(s.persons, oid)
	for i, existing := range s.order {
		if existing == oid {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
	return nil
}

func (s *MemoryPersonStore) Count(_ context.Context) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return int64(len(s.persons)), nil
}

func (s *MemoryPersonStore) Ping(_ context.Context) error {
	return nil
}
