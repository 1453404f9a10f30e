package repository

import (
	"fmt"

	"github.com/deppfellow/phonebook/internal/config"
	"github.com/deppfellow/phonebook/internal/server"
	"github.com/newrelic/go-agent/v3/newrelic"
)

// Repositories is a container for all repository instances.
type Repositories struct {
	Persons PersonStore
}

// NewRepositories picks the PersonStore matching the configured driver,
// built on the connection s.DB already holds.
func NewRepositories(s *server.Server) (*Repositories, error) {
	var (
		store   PersonStore
		product newrelic.DatastoreProduct
	)

	switch s.DB.Driver {
	case config.DriverMongo:
		store = NewMongoPersonStore(s.DB.MongoDB.Collection(s.Config.Database.Collection))
		product = newrelic.DatastoreMongoDB
	case config.DriverPostgres:
		store = NewPostgresPersonStore(s.DB.Pool)
		product = newrelic.DatastorePostgres
	case config.DriverMemory:
		store = NewMemoryPersonStore()
		product = "Memory"
	default:
		return nil, fmt.Errorf("no person store for driver %q", s.DB.Driver)
	}

	threshold := s.Config.Observability.Logging.SlowQueryThreshold

	return &Repositories{
		Persons: Instrument(store, product, threshold),
	}, nil
}
