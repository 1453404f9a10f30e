package repository

import (
	"context"
	"time"

	"github.com/deppfellow/phonebook/internal/model"
	"github.com/newrelic/go-agent/v3/newrelic"
	"github.com/rs/zerolog"
)

// instrumentedStore times every store call.
//
// Calls slower than threshold are logged at warn level through the request
// logger found in ctx, and every call is recorded as a New Relic datastore
// segment when a transaction is present.
type instrumentedStore struct {
	next      PersonStore
	product   newrelic.DatastoreProduct
	threshold time.Duration
}

// Instrument wraps store with timing. A zero threshold disables slow call logs.
func Instrument(store PersonStore, product newrelic.DatastoreProduct, threshold time.Duration) PersonStore {
	return &instrumentedStore{next: store, product: product, threshold: threshold}
}

func (s *instrumentedStore) observe(ctx context.Context, operation string) func() {
	start := time.Now()

	segment := &newrelic.DatastoreSegment{
		StartTime:  newrelic.FromContext(ctx).StartSegmentNow(),
		Product:    s.product,
		Collection: "persons",
		Operation:  operation,
	}

	return func() {
		segment.End()

		elapsed := time.Since(start)
		if s.threshold > 0 && elapsed > s.threshold {
			zerolog.Ctx(ctx).Warn().
				Str("operation", operation).
				Dur("duration", elapsed).
				Dur("threshold", s.threshold).
				Msg("slow store call")
		}
	}
}

func (s *instrumentedStore) FindAll(ctx context.Context) ([]model.Person, error) {
	defer s.observe(ctx, "find_all")()
	return s.next.FindAll(ctx)
}

func (s *instrumentedStore) FindByID(ctx context.Context, id string) (*model.Person, error) {
	defer s.observe(ctx, "find_by_id")()
	return s.next.FindByID(ctx, id)
}

func (s *instrumentedStore) Create(ctx context.Context, name, number string) (*model.Person, error) {
	defer s.observe(ctx, "create")()
	return s.next.Create(ctx, name, number)
}

func (s *instrumentedStore) UpdateNumber(ctx context.Context, id, number string) (*model.Person, error) {
	defer s.observe(ctx, "update_number")()
	return s.next.UpdateNumber(ctx, id, number)
}

func (s *instrumentedStore) DeleteByID(ctx context.Context, id string) error {
	defer s.observe(ctx, "delete_by_id")()
	return s.next.DeleteByID(ctx, id)
}

func (s *instrumentedStore) Count(ctx context.Context) (int64, error) {
	defer s.observe(ctx, "count")()
	return s.next.Count(ctx)
}

func (s *instrumentedStore) Ping(ctx context.Context) error {
	return s.next.Ping(ctx)
}
