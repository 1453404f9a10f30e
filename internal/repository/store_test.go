package repository

import (
	"context"

	"github.com/deppfellow/phonebook/internal/errs"
	"github.com/deppfellow/phonebook/internal/model"
	"github.com/stretchr/testify/suite"
)

// personStoreSuite checks the PersonStore contract against one implementation.
type personStoreSuite struct {
	suite.Suite

	// newStore returns an empty store.
	newStore func() PersonStore
	// absentID returns a well-formed id no record has.
	absentID func() string

	store PersonStore
	ctx   context.Context
}

func (s *personStoreSuite) SetupTest() {
	s.ctx = context.Background()
	s.store = s.newStore()
}

func (s *personStoreSuite) create(name, number string) *model.Person {
	person, err := s.store.Create(s.ctx, name, number)
	s.Require().NoError(err)
	s.Require().NotNil(person)
	return person
}

func (s *personStoreSuite) TestFindAllEmpty() {
	persons, err := s.store.FindAll(s.ctx)
	s.Require().NoError(err)
	s.NotNil(persons)
	s.Empty(persons)
}

func (s *personStoreSuite) TestCreateAssignsIDAndRoundTrips() {
	created := s.create("Ada Lovelace", "39-44-5323523")
	s.NotEmpty(created.ID)
	s.Equal("Ada Lovelace", created.Name)
	s.Equal("39-44-5323523", created.Number)

	found, err := s.store.FindByID(s.ctx, created.ID)
	s.Require().NoError(err)
	s.Equal(created, found)
}

func (s *personStoreSuite) TestCreateAssignsDistinctIDs() {
	first := s.create("Arto Hellas", "040-123456")
	second := s.create("Arto Hellas", "040-123456")
	s.NotEqual(first.ID, second.ID)
}

func (s *personStoreSuite) TestFindAllReturnsEveryRecord() {
	a := s.create("Dan Abramov", "12-43-234345")
	b := s.create("Mary Poppendieck", "39-23-6423122")

	persons, err := s.store.FindAll(s.ctx)
	s.Require().NoError(err)
	s.ElementsMatch([]model.Person{*a, *b}, persons)

	n, err := s.store.Count(s.ctx)
	s.Require().NoError(err)
	s.EqualValues(2, n)
}

func (s *personStoreSuite) TestCreateRejectsMissingFields() {
	_, err := s.store.Create(s.ctx, "", "123")
	s.Equal(errs.KindValidationFailed, errs.KindOf(err))
	s.EqualError(err, "person validation failed: name is required")

	_, err = s.store.Create(s.ctx, "Ada", "")
	s.Equal(errs.KindValidationFailed, errs.KindOf(err))
	s.EqualError(err, "person validation failed: number is required")

	n, err := s.store.Count(s.ctx)
	s.Require().NoError(err)
	s.Zero(n)
}

func (s *personStoreSuite) TestWhitespaceIsNotEmpty() {
	p := s.create(" ", " ")
	s.Equal(" ", p.Name)
	s.Equal(" ", p.Number)

	updated, err := s.store.UpdateNumber(s.ctx, p.ID, "  ")
	s.Require().NoError(err)
	s.Equal("  ", updated.Number)
}

func (s *personStoreSuite) TestMalformedIDs() {
	_, err := s.store.FindByID(s.ctx, "not-an-id")
	s.Equal(errs.KindInvalidIdentifier, errs.KindOf(err))

	_, err = s.store.UpdateNumber(s.ctx, "not-an-id", "123")
	s.Equal(errs.KindInvalidIdentifier, errs.KindOf(err))

	err = s.store.DeleteByID(s.ctx, "not-an-id")
	s.Equal(errs.KindInvalidIdentifier, errs.KindOf(err))
}

func (s *personStoreSuite) TestMalformedIDCheckedBeforeNumber() {
	_, err := s.store.UpdateNumber(s.ctx, "not-an-id", "")
	s.Equal(errs.KindInvalidIdentifier, errs.KindOf(err))
}

func (s *personStoreSuite) TestAbsentIDs() {
	found, err := s.store.FindByID(s.ctx, s.absentID())
	s.NoError(err)
	s.Nil(found)

	updated, err := s.store.UpdateNumber(s.ctx, s.absentID(), "123")
	s.NoError(err)
	s.Nil(updated)

	s.NoError(s.store.DeleteByID(s.ctx, s.absentID()))
}

func (s *personStoreSuite) TestUpdateNumberValidatesBeforeLookup() {
	_, err := s.store.UpdateNumber(s.ctx, s.absentID(), "")
	s.Equal(errs.KindValidationFailed, errs.KindOf(err))
	s.EqualError(err, "person validation failed: number is required")
}

func (s *personStoreSuite) TestUpdateNumberKeepsNameAndID() {
	created := s.create("Ada Lovelace", "111")

	updated, err := s.store.UpdateNumber(s.ctx, created.ID, "222")
	s.Require().NoError(err)
	s.Equal(&model.Person{ID: created.ID, Name: "Ada Lovelace", Number: "222"}, updated)

	found, err := s.store.FindByID(s.ctx, created.ID)
	s.Require().NoError(err)
	s.Equal(updated, found)
}

func (s *personStoreSuite) TestUpdateNumberRejectsEmptyNumber() {
	created := s.create("Ada Lovelace", "111")

	_, err := s.store.UpdateNumber(s.ctx, created.ID, "")
	s.Equal(errs.KindValidationFailed, errs.KindOf(err))

	found, err := s.store.FindByID(s.ctx, created.ID)
	s.Require().NoError(err)
	s.Equal("111", found.Number)
}

func (s *personStoreSuite) TestDeleteIsIdempotent() {
	created := s.create("Ada Lovelace", "111")
	other := s.create("Grace Hopper", "222")

	s.Require().NoError(s.store.DeleteByID(s.ctx, created.ID))
	s.Require().NoError(s.store.DeleteByID(s.ctx, created.ID))

	found, err := s.store.FindByID(s.ctx, created.ID)
	s.NoError(err)
	s.Nil(found)

	persons, err := s.store.FindAll(s.ctx)
	s.Require().NoError(err)
	s.Equal([]model.Person{*other}, persons)
}

func (s *personStoreSuite) TestPing() {
	s.NoError(s.store.Ping(s.ctx))
}
