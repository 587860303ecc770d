package database

import (
	"context"
	"errors"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/example/workoutbot/internal/store"
	"github.com/example/workoutbot/pkg/models"
)

func newSQLiteRepo(t *testing.T) *UserRepository {
	t.Helper()
	db, err := Connect(store.BackendSQLite, filepath.Join(t.TempDir(), "data", "workouts.db"))
	require.NoError(t, err)
	repo := NewUserRepository(db)
	t.Cleanup(func() { _ = repo.Close() })
	return repo
}

func TestDriverName(t *testing.T) {
	d, err := DriverName(store.BackendSQLite)
	require.NoError(t, err)
	require.Equal(t, "sqlite3", d)

	d, err = DriverName(store.BackendPostgres)
	require.NoError(t, err)
	require.Equal(t, "postgres", d)

	_, err = DriverName(store.BackendMongo)
	require.Error(t, err)
}

func TestSQLitePath(t *testing.T) {
	require.Equal(t, "", sqlitePath(":memory:"))
	require.Equal(t, "", sqlitePath("file::memory:?cache=shared"))
	require.Equal(t, "data/w.db", sqlitePath("file:data/w.db?_busy_timeout=5000"))
	require.Equal(t, "data/w.db", sqlitePath("data/w.db"))
}

func TestUserRepositoryCreateGet(t *testing.T) {
	ctx := context.Background()
	repo := newSQLiteRepo(t)

	_, err := repo.Get(ctx, "42")
	require.ErrorIs(t, err, store.ErrNotFound)

	_, err = repo.Create(ctx, "42", "Al")
	require.NoError(t, err)

	_, err = repo.Create(ctx, "42", "Al")
	require.ErrorIs(t, err, store.ErrAlreadyExists)

	rec, err := repo.Get(ctx, "42")
	require.NoError(t, err)
	require.Equal(t, models.NewUserRecord("Al"), rec)
}

func TestUserRepositoryUpdate(t *testing.T) {
	ctx := context.Background()
	repo := newSQLiteRepo(t)
	_, err := repo.Create(ctx, "42", "Al")
	require.NoError(t, err)

	created := time.Date(2024, time.March, 1, 8, 0, 0, 0, time.UTC)
	err = repo.Update(ctx, "42", func(rec *models.UserRecord) error {
		rec.ScheduledWorkout["w1"] = &models.ScheduledWorkout{
			WorkoutName:   "Push Day",
			DaysScheduled: []string{"Monday", "Thursday"},
			CreatedAt:     created,
			Reports:       map[string]*models.ScheduledReport{},
		}
		return nil
	})
	require.NoError(t, err)

	rec, err := repo.Get(ctx, "42")
	require.NoError(t, err)
	require.Equal(t, "Push Day", rec.ScheduledWorkout["w1"].WorkoutName)
	require.Equal(t, []string{"Monday", "Thursday"}, rec.ScheduledWorkout["w1"].DaysScheduled)
	require.True(t, created.Equal(rec.ScheduledWorkout["w1"].CreatedAt))

	boom := errors.New("boom")
	err = repo.Update(ctx, "42", func(rec *models.UserRecord) error {
		delete(rec.ScheduledWorkout, "w1")
		return boom
	})
	require.ErrorIs(t, err, boom)

	rec, err = repo.Get(ctx, "42")
	require.NoError(t, err)
	require.Contains(t, rec.ScheduledWorkout, "w1")

	err = repo.Update(ctx, "missing", func(*models.UserRecord) error { return nil })
	require.ErrorIs(t, err, store.ErrNotFound)
}

func TestUserRepositoryConcurrentUpdates(t *testing.T) {
	ctx := context.Background()
	repo := newSQLiteRepo(t)
	_, err := repo.Create(ctx, "42", "Al")
	require.NoError(t, err)

	var wg sync.WaitGroup
	errs := make(chan error, 4)
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			errs <- repo.Update(ctx, "42", func(rec *models.UserRecord) error {
				id := string(rune('a' + n))
				rec.UnscheduledWorkout[id] = &models.UnscheduledWorkout{WorkoutName: "Run " + id}
				return nil
			})
		}(i)
	}
	wg.Wait()
	close(errs)

	succeeded := 0
	for err := range errs {
		if err == nil {
			succeeded++
			continue
		}
		require.ErrorIs(t, err, store.ErrConflict)
	}

	rec, err := repo.Get(ctx, "42")
	require.NoError(t, err)
	require.Len(t, rec.UnscheduledWorkout, succeeded)
}

func TestUserRepositorySnapshot(t *testing.T) {
	ctx := context.Background()
	repo := newSQLiteRepo(t)
	_, err := repo.Create(ctx, "1", "One")
	require.NoError(t, err)
	_, err = repo.Create(ctx, "2", "Two")
	require.NoError(t, err)

	doc, err := repo.Snapshot(ctx)
	require.NoError(t, err)
	require.Len(t, doc.Users, 2)
	require.Equal(t, "Two", doc.Users["2"].Username)
}
