// Package store persists workout records keyed by user ID.
package store

import (
	"context"
	"errors"

	"github.com/example/workoutbot/pkg/models"
)

// Sentinel errors shared by every backend. Callers match them with errors.Is.
var (
	// ErrNotFound is returned for a missing document, user, workout or report.
	ErrNotFound = errors.New("not found")

	// ErrAlreadyExists is returned by Create when the user already has a record.
	ErrAlreadyExists = errors.New("already exists")

	// ErrConflict is returned when an optimistic update keeps losing races.
	ErrConflict = errors.New("concurrent update conflict")
)

// UpdateFunc mutates a user record in place. Returning an error aborts the
// update and nothing is persisted.
type UpdateFunc func(rec *models.UserRecord) error

// Store is a per-user key-value store of workout records.
//
// Update is atomic per user: the function sees the latest committed record
// and its changes are persisted all at once or not at all.
type Store interface {
	Get(ctx context.Context, userID string) (*models.UserRecord, error)
	Create(ctx context.Context, userID, username string) (*models.UserRecord, error)
	Update(ctx context.Context, userID string, fn UpdateFunc) error
	Snapshot(ctx context.Context) (*models.Document, error)
	Close() error
}

// Backend names accepted by configuration
const (
	BackendFile     = "file"
	BackendSQLite   = "sqlite"
	BackendPostgres = "postgres"
	BackendMongo    = "mongo"
)

// MaxUpdateAttempts bounds optimistic retries in the versioned backends
const MaxUpdateAttempts = 5
