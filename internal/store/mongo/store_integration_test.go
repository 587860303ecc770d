//go:build integration

package mongo

import (
	"context"
	"os"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/example/workoutbot/internal/store"
	"github.com/example/workoutbot/pkg/models"
)

func TestStoreAgainstMongo(t *testing.T) {
	uri := os.Getenv("WORKOUTBOT_TEST_MONGO_URI")
	if uri == "" {
		t.Skip("WORKOUTBOT_TEST_MONGO_URI not set")
	}
	ctx := context.Background()

	s, err := Open(uri, "workoutbot_test_"+uuid.NewString()[:8])
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = s.collection.Database().Drop(ctx)
		_ = s.Close()
	})

	_, err = s.Get(ctx, "42")
	require.ErrorIs(t, err, store.ErrNotFound)

	_, err = s.Create(ctx, "42", "Al")
	require.NoError(t, err)
	_, err = s.Create(ctx, "42", "Al")
	require.ErrorIs(t, err, store.ErrAlreadyExists)

	require.NoError(t, s.Update(ctx, "42", func(rec *models.UserRecord) error {
		rec.ScheduledWorkout["w1"] = &models.ScheduledWorkout{
			WorkoutName:   "Push Day",
			DaysScheduled: []string{"Monday", "Thursday"},
			Reports:       map[string]*models.ScheduledReport{},
		}
		return nil
	}))

	rec, err := s.Get(ctx, "42")
	require.NoError(t, err)
	require.Equal(t, []string{"Monday", "Thursday"}, rec.ScheduledWorkout["w1"].DaysScheduled)

	doc, err := s.Snapshot(ctx)
	require.NoError(t, err)
	require.Contains(t, doc.Users, "42")
}
