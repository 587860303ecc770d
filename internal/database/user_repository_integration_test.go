//go:build integration

package database

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	postgrescontainer "github.com/testcontainers/testcontainers-go/modules/postgres"

	"github.com/example/workoutbot/internal/store"
	"github.com/example/workoutbot/pkg/models"
)

func TestUserRepositoryPostgres(t *testing.T) {
	ctx := context.Background()

	pg, err := postgrescontainer.Run(ctx, "postgres:16-alpine",
		postgrescontainer.WithDatabase("workouts"),
		postgrescontainer.WithUsername("workoutbot"),
		postgrescontainer.WithPassword("workoutbot"),
		postgrescontainer.BasicWaitStrategies(),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = pg.Terminate(ctx) })

	connStr, err := pg.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	db, err := Connect(store.BackendPostgres, connStr)
	require.NoError(t, err)
	repo := NewUserRepository(db)
	t.Cleanup(func() { _ = repo.Close() })

	_, err = repo.Create(ctx, "42", "Al")
	require.NoError(t, err)
	_, err = repo.Create(ctx, "42", "Al")
	require.ErrorIs(t, err, store.ErrAlreadyExists)

	err = repo.Update(ctx, "42", func(rec *models.UserRecord) error {
		rec.UnscheduledWorkout["u1"] = &models.UnscheduledWorkout{WorkoutName: "Swim"}
		return nil
	})
	require.NoError(t, err)

	rec, err := repo.Get(ctx, "42")
	require.NoError(t, err)
	require.Equal(t, "Swim", rec.UnscheduledWorkout["u1"].WorkoutName)
}
