package main

import (
	"bytes"
	"context"
	"io"
	"log"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/workoutbot/internal/config"
	"github.com/example/workoutbot/internal/store"
	"github.com/example/workoutbot/internal/workout"
)

func TestWriteOutput(t *testing.T) {
	v := map[string]int{"reports": 2}
	text := func(w io.Writer) error {
		_, err := io.WriteString(w, "two reports\n")
		return err
	}

	var buf bytes.Buffer
	require.NoError(t, writeOutput(&buf, outputJSON, v, text))
	assert.JSONEq(t, `{"reports": 2}`, buf.String())

	buf.Reset()
	require.NoError(t, writeOutput(&buf, outputYAML, v, text))
	assert.Equal(t, "reports: 2\n", buf.String())

	buf.Reset()
	require.NoError(t, writeOutput(&buf, outputText, v, text))
	assert.Equal(t, "two reports\n", buf.String())

	require.Error(t, writeOutput(&buf, "table", v, text))
}

func TestOpenStoreAndShow(t *testing.T) {
	ctx := context.Background()
	cfg := config.StorageConfig{
		Backend:         store.BackendFile,
		FilePath:        filepath.Join(t.TempDir(), "workouts.json"),
		CreateIfMissing: true,
	}
	st, err := openStore(cfg)
	require.NoError(t, err)
	defer st.Close()

	svc := workout.NewService(st, workout.WithLocation(time.UTC), workout.WithLogger(log.New(io.Discard, "", 0)))
	user := workout.User{ID: "1234", Name: "al"}
	_, err = svc.ScheduleWorkout(ctx, user, workout.ScheduleInput{WorkoutName: "Push Day", Days: []string{"Monday"}})
	require.NoError(t, err)
	_, err = svc.ReportUnscheduled(ctx, user, workout.UnscheduledInput{WorkoutName: "Hike"})
	require.NoError(t, err)

	rec, err := svc.Record(ctx, user.ID)
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, writeRecordText(ctx, &buf, svc, user.ID, rec))
	assert.Contains(t, buf.String(), "User: al (1234)")
	assert.Contains(t, buf.String(), "Push Day")
	assert.Contains(t, buf.String(), "Unscheduled workouts: 1")

	buf.Reset()
	require.NoError(t, writeOutput(&buf, outputYAML, rec, nil))
	assert.Contains(t, buf.String(), "username: al")
	assert.Contains(t, buf.String(), "workout_name: Hike")

	_, err = openStore(config.StorageConfig{Backend: "redis"})
	require.Error(t, err)
}
