package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/mattn/go-sqlite3"

	"github.com/example/workoutbot/internal/store"
	"github.com/example/workoutbot/pkg/models"
)

// userRow is the stored shape of a user
type userRow struct {
	UserID   string `db:"user_id"`
	Username string `db:"username"`
	Record   string `db:"record"`
	Version  int64  `db:"version"`
}

// UserRepository is the SQL implementation of store.Store. Updates use the
// version column as an optimistic lock.
type UserRepository struct {
	db *sqlx.DB
}

var _ store.Store = (*UserRepository)(nil)

// NewUserRepository creates a new repository instance
func NewUserRepository(db *sqlx.DB) *UserRepository {
	return &UserRepository{db: db}
}

// Get returns the user's record
func (r *UserRepository) Get(ctx context.Context, userID string) (*models.UserRecord, error) {
	row, err := r.getRow(ctx, userID)
	if err != nil {
		return nil, err
	}
	return decodeRecord(row)
}

// Create inserts an empty record for a new user
func (r *UserRepository) Create(ctx context.Context, userID, username string) (*models.UserRecord, error) {
	rec := models.NewUserRecord(username)
	data, err := json.Marshal(rec)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal user record: %v", err)
	}

	query := r.db.Rebind(`INSERT INTO workout_users (user_id, username, record, version) VALUES (?, ?, ?, 1)`)
	if _, err := r.db.ExecContext(ctx, query, userID, username, string(data)); err != nil {
		if isUniqueViolation(err) {
			return nil, fmt.Errorf("user %s: %w", userID, store.ErrAlreadyExists)
		}
		return nil, fmt.Errorf("failed to create user: %v", err)
	}
	return rec, nil
}

// Update applies fn to the latest record and writes it back if nobody else
// changed the row in between. fn may run more than once.
func (r *UserRepository) Update(ctx context.Context, userID string, fn store.UpdateFunc) error {
	query := r.db.Rebind(`
		UPDATE workout_users
		SET username = ?, record = ?, version = version + 1, updated_at = CURRENT_TIMESTAMP
		WHERE user_id = ? AND version = ?
	`)

	for attempt := 0; attempt < store.MaxUpdateAttempts; attempt++ {
		row, err := r.getRow(ctx, userID)
		if err != nil {
			return err
		}
		rec, err := decodeRecord(row)
		if err != nil {
			return err
		}
		if err := fn(rec); err != nil {
			return err
		}

		data, err := json.Marshal(rec)
		if err != nil {
			return fmt.Errorf("failed to marshal user record: %v", err)
		}

		result, err := r.db.ExecContext(ctx, query, rec.Username, string(data), userID, row.Version)
		if err != nil {
			return fmt.Errorf("failed to update user: %v", err)
		}
		rows, err := result.RowsAffected()
		if err != nil {
			return fmt.Errorf("failed to get rows affected: %v", err)
		}
		if rows == 1 {
			return nil
		}
	}

	return fmt.Errorf("user %s: %w", userID, store.ErrConflict)
}

// Snapshot returns every user as one document
func (r *UserRepository) Snapshot(ctx context.Context) (*models.Document, error) {
	var rows []userRow
	err := r.db.SelectContext(ctx, &rows, `SELECT user_id, username, record, version FROM workout_users ORDER BY user_id`)
	if err != nil {
		return nil, fmt.Errorf("failed to get users: %v", err)
	}

	doc := models.NewDocument()
	for i := range rows {
		rec, err := decodeRecord(&rows[i])
		if err != nil {
			return nil, err
		}
		doc.Users[rows[i].UserID] = rec
	}
	return doc, nil
}

// Close closes the database connection
func (r *UserRepository) Close() error {
	return r.db.Close()
}

func (r *UserRepository) getRow(ctx context.Context, userID string) (*userRow, error) {
	var row userRow
	query := r.db.Rebind(`SELECT user_id, username, record, version FROM workout_users WHERE user_id = ?`)
	err := r.db.GetContext(ctx, &row, query, userID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("user %s: %w", userID, store.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user by ID: %v", err)
	}
	return &row, nil
}

func decodeRecord(row *userRow) (*models.UserRecord, error) {
	rec := &models.UserRecord{}
	if err := json.Unmarshal([]byte(row.Record), rec); err != nil {
		return nil, fmt.Errorf("failed to parse record of user %s: %v", row.UserID, err)
	}
	rec.Username = row.Username
	rec.Normalize()
	return rec, nil
}

func isUniqueViolation(err error) bool {
	var sqliteErr sqlite3.Error
	if errors.As(err, &sqliteErr) {
		return sqliteErr.Code == sqlite3.ErrConstraint
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code == "23505"
	}
	return false
}
