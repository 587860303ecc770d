package discord

import (
	"context"
	"fmt"
	"io"
	"log"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/workoutbot/internal/store"
	"github.com/example/workoutbot/internal/workout"
)

var al = workout.User{ID: "42", Name: "Al"}

func newTestHandler(t *testing.T) *Handler {
	t.Helper()
	st, err := store.OpenFile(filepath.Join(t.TempDir(), "workouts.json"), true)
	require.NoError(t, err)

	now := time.Date(2024, time.February, 29, 12, 0, 0, 0, time.UTC)
	ids := 0
	svc := workout.NewService(st,
		workout.WithClock(func() time.Time {
			now = now.Add(time.Minute)
			return now
		}),
		workout.WithIDGenerator(func() string {
			ids++
			return fmt.Sprintf("id%02d", ids)
		}),
		workout.WithLocation(time.UTC),
		workout.WithLogger(log.New(io.Discard, "", 0)),
	)
	return NewHandler(svc)
}

func str(name, value string) *discordgo.ApplicationCommandInteractionDataOption {
	return &discordgo.ApplicationCommandInteractionDataOption{Name: name, Type: discordgo.ApplicationCommandOptionString, Value: value}
}

func focus(name, typed string) *discordgo.ApplicationCommandInteractionDataOption {
	o := str(name, typed)
	o.Focused = true
	return o
}

func boolean(name string, value bool) *discordgo.ApplicationCommandInteractionDataOption {
	return &discordgo.ApplicationCommandInteractionDataOption{Name: name, Type: discordgo.ApplicationCommandOptionBoolean, Value: value}
}

func opts(o ...*discordgo.ApplicationCommandInteractionDataOption) options {
	return newOptions(o)
}

func choiceValues(choices []workout.Choice) []string {
	var out []string
	for _, c := range choices {
		out = append(out, c.Value)
	}
	return out
}

func TestOptionsDays(t *testing.T) {
	o := opts(str("workout_day_3", "Friday"), str("workout_day_1", "Monday"), str("workout_day_2", " "))
	assert.Equal(t, []string{"Monday", "Friday"}, o.Days(workoutDayPrefix))
	assert.Empty(t, o.Days(newSchedulePrefix))
	assert.Equal(t, "", o.String("missing"))
	assert.False(t, o.Bool(optShowEveryone))
}

func TestScheduleAndReport(t *testing.T) {
	ctx := context.Background()
	h := newTestHandler(t)

	resp, err := h.Command(ctx, al, subScheduleRoutine, opts(
		str(optWorkoutName, "Push Day"),
		str("workout_day_1", "Monday"),
		str("workout_day_2", "Thursday"),
		boolean(optShowEveryone, true),
	))
	require.NoError(t, err)
	assert.False(t, resp.Ephemeral)
	assert.Contains(t, resp.Content, "Push Day")

	resp, err = h.Command(ctx, al, subReportScheduled, opts(
		str(optWorkoutName, "id01"),
		str(optCompletion, "partially_complete"),
		str(optComment, "tired"),
	))
	require.NoError(t, err)
	assert.True(t, resp.Ephemeral)
	assert.Contains(t, resp.Content, "Push Day")

	resp, err = h.Command(ctx, al, subViewWorkouts, opts())
	require.NoError(t, err)
	assert.Contains(t, resp.Content, "Push Day")
}

func TestCommandRejectsErrorChoice(t *testing.T) {
	h := newTestHandler(t)
	_, err := h.Command(context.Background(), al, subReportScheduled, opts(
		str(optWorkoutName, errorChoiceValue),
		str(optCompletion, "complete"),
	))
	require.ErrorIs(t, err, workout.ErrInvalidArgument)
	assert.True(t, strings.HasPrefix(workout.UserMessage(err), "Error! "))
}

func TestCommandUnknownSubcommand(t *testing.T) {
	h := newTestHandler(t)
	_, err := h.Command(context.Background(), al, "dance", opts())
	require.ErrorIs(t, err, workout.ErrInvalidArgument)
}

func TestEditReportThroughPickers(t *testing.T) {
	ctx := context.Background()
	h := newTestHandler(t)

	_, err := h.Command(ctx, al, subReportUnscheduled, opts(str(optWorkoutName, "Hike")))
	require.NoError(t, err)

	resp, err := h.Command(ctx, al, subEditReport, opts(
		str(optYear, workout.Latest),
		str(optMonth, workout.Latest),
		str(optDay, workout.Latest),
		str(optReportToEdit, workout.Latest),
		str(optFieldToChange, workout.FieldComment),
		str(optNewValue, "windy"),
	))
	require.NoError(t, err)
	assert.Contains(t, resp.Content, "windy")

	resp, err = h.Command(ctx, al, subViewReport, opts(
		str(optYear, "2024"),
		str(optMonth, "2"),
		str(optDay, "29"),
		str(optReport, "id01"),
	))
	require.NoError(t, err)
	assert.Contains(t, resp.Content, "windy")
}

func TestDeleteWorkoutKeepsReports(t *testing.T) {
	ctx := context.Background()
	h := newTestHandler(t)

	_, err := h.Command(ctx, al, subScheduleRoutine, opts(str(optWorkoutName, "Legs"), str("workout_day_1", "Friday")))
	require.NoError(t, err)
	_, err = h.Command(ctx, al, subReportScheduled, opts(str(optWorkoutName, "Legs"), str(optCompletion, "complete")))
	require.NoError(t, err)

	_, err = h.Command(ctx, al, subDeleteWorkout, opts(str(optWorkoutName, "Legs"), boolean(optKeepReports, true)))
	require.NoError(t, err)

	rec, err := h.svc.Record(ctx, al.ID)
	require.NoError(t, err)
	assert.Empty(t, rec.ScheduledWorkout)
	assert.Contains(t, rec.UnscheduledWorkout, "id02")
}

func TestExportAttachesWorkbook(t *testing.T) {
	ctx := context.Background()
	h := newTestHandler(t)

	_, err := h.Command(ctx, al, subExport, opts())
	require.ErrorIs(t, err, store.ErrNotFound)

	_, err = h.Command(ctx, al, subReportUnscheduled, opts(str(optWorkoutName, "Hike")))
	require.NoError(t, err)

	resp, err := h.Command(ctx, al, subExport, opts(boolean(optShowEveryone, true)))
	require.NoError(t, err)
	assert.True(t, resp.Ephemeral)
	require.NotNil(t, resp.File)
	assert.Equal(t, "workouts.xlsx", resp.File.Name)
	data, err := io.ReadAll(resp.File.Reader)
	require.NoError(t, err)
	assert.NotEmpty(t, data)
}

func TestDeleteReportOutsideSelectedYear(t *testing.T) {
	ctx := context.Background()
	h := newTestHandler(t)

	_, err := h.Command(ctx, al, subReportUnscheduled, opts(str(optWorkoutName, "Hike")))
	require.NoError(t, err)

	_, err = h.Command(ctx, al, subDeleteReport, opts(
		str(optYear, "2019"),
		str(optMonth, workout.Latest),
		str(optDay, workout.Latest),
		str(optReportToDel, workout.Latest),
	))
	require.ErrorIs(t, err, workout.ErrNotFound)

	_, err = h.Command(ctx, al, subDeleteReport, opts(
		str(optYear, "2024"),
		str(optMonth, "7"),
		str(optDay, workout.Latest),
		str(optReportToDel, workout.Latest),
	))
	require.ErrorIs(t, err, workout.ErrNotFound)

	rec, err := h.svc.Record(ctx, al.ID)
	require.NoError(t, err)
	assert.Len(t, rec.UnscheduledWorkout, 1)
}
