package observability

import (
	"context"
	"errors"
	"time"

	"github.com/example/workoutbot/internal/store"
	"github.com/example/workoutbot/pkg/models"
)

// InstrumentedStore records latency and failures of every call to the wrapped store.
type InstrumentedStore struct {
	next    store.Store
	backend string
}

var _ store.Store = (*InstrumentedStore)(nil)

// InstrumentStore wraps next, labelling its metrics with backend
func InstrumentStore(next store.Store, backend string) *InstrumentedStore {
	return &InstrumentedStore{next: next, backend: backend}
}

func (s *InstrumentedStore) observe(op string, start time.Time, err error) {
	storeDuration.WithLabelValues(s.backend, op).Observe(time.Since(start).Seconds())
	if err != nil && !errors.Is(err, store.ErrNotFound) && !errors.Is(err, store.ErrAlreadyExists) {
		storeErrorCounter.WithLabelValues(s.backend, op).Inc()
	}
}

func (s *InstrumentedStore) Get(ctx context.Context, userID string) (*models.UserRecord, error) {
	start := time.Now()
	rec, err := s.next.Get(ctx, userID)
	s.observe("get", start, err)
	return rec, err
}

func (s *InstrumentedStore) Create(ctx context.Context, userID, username string) (*models.UserRecord, error) {
	start := time.Now()
	rec, err := s.next.Create(ctx, userID, username)
	s.observe("create", start, err)
	return rec, err
}

// Update does not count errors returned by fn as store failures
func (s *InstrumentedStore) Update(ctx context.Context, userID string, fn store.UpdateFunc) error {
	start := time.Now()
	var fnErr error
	err := s.next.Update(ctx, userID, func(rec *models.UserRecord) error {
		fnErr = fn(rec)
		return fnErr
	})
	if fnErr != nil && errors.Is(err, fnErr) {
		storeDuration.WithLabelValues(s.backend, "update").Observe(time.Since(start).Seconds())
		return err
	}
	s.observe("update", start, err)
	return err
}

func (s *InstrumentedStore) Snapshot(ctx context.Context) (*models.Document, error) {
	start := time.Now()
	doc, err := s.next.Snapshot(ctx)
	s.observe("snapshot", start, err)
	return doc, err
}

func (s *InstrumentedStore) Close() error {
	return s.next.Close()
}
