package service

import (
	"github.com/deppfellow/phonebook/internal/repository"
	"github.com/deppfellow/phonebook/internal/server"
)

type Services struct {
	Persons *PersonService
}

func NewService(s *server.Server, repos *repository.Repositories) (*Services, error) {
	return &Services{
		Persons: NewPersonService(s, repos.Persons),
	}, nil
}
