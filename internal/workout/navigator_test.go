package workout

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/workoutbot/pkg/models"
)

func sampleRecord() *models.UserRecord {
	base := time.Date(2024, time.March, 4, 10, 0, 0, 0, time.UTC)
	rec := models.NewUserRecord("Al")
	rec.ScheduledWorkout["w1"] = &models.ScheduledWorkout{
		WorkoutName:   "Push Day",
		DaysScheduled: []string{"Monday", "Thursday"},
		MuscleGroup:   "chest",
		CreatedAt:     base,
		Reports: map[string]*models.ScheduledReport{
			"r1": {Completion: models.CompletionComplete, CreatedAt: base.Add(time.Hour)},
			"r2": {Completion: models.CompletionSkipped, Comment: "sick", CreatedAt: base.Add(72 * time.Hour)},
		},
	}
	rec.ScheduledWorkout["w2"] = &models.ScheduledWorkout{
		WorkoutName:   "Leg Day",
		DaysScheduled: []string{"Tuesday"},
		CreatedAt:     base.Add(time.Minute),
		Reports: map[string]*models.ScheduledReport{
			"r3": {Completion: models.CompletionPartiallyComplete, CreatedAt: base.Add(25 * time.Hour)},
		},
	}
	rec.UnscheduledWorkout["u1"] = &models.UnscheduledWorkout{
		WorkoutName: "Hike",
		Comment:     "windy",
		CreatedAt:   base.Add(48 * time.Hour),
	}
	rec.UnscheduledWorkout["u2"] = &models.UnscheduledWorkout{
		WorkoutName: "Swim",
		CreatedAt:   base.Add(49 * time.Hour),
	}
	return rec
}

func TestNewSelector(t *testing.T) {
	sel, err := NewSelector("", "", "", "username")
	require.NoError(t, err)
	assert.Equal(t, TopLevel{FieldName: "username"}, sel)

	sel, err = NewSelector(ScopeScheduled, "w1", "", "Workout Name")
	require.NoError(t, err)
	assert.Equal(t, ScheduledField{WorkoutID: "w1", FieldName: "workout_name"}, sel)

	sel, err = NewSelector(ScopeScheduled, "w1", "r1", "completion")
	require.NoError(t, err)
	assert.Equal(t, ScheduledReportField{WorkoutID: "w1", ReportID: "r1", FieldName: "completion"}, sel)

	sel, err = NewSelector(ScopeUnscheduled, "", "u1", "comment")
	require.NoError(t, err)
	assert.Equal(t, UnscheduledField{ReportID: "u1", FieldName: "comment"}, sel)

	_, err = NewSelector(ScopeScheduled, "", "r1", "comment")
	require.ErrorIs(t, err, ErrInvalidArgument)

	_, err = NewSelector(ScopeUnscheduled, "w1", "", "comment")
	require.ErrorIs(t, err, ErrInvalidArgument)

	_, err = NewSelector("weekly", "w1", "", "comment")
	require.ErrorIs(t, err, ErrInvalidArgument)
}

func TestGetField(t *testing.T) {
	rec := sampleRecord()

	v, err := GetField(rec, TopLevel{FieldName: FieldUsername})
	require.NoError(t, err)
	assert.Equal(t, "Al", v)

	v, err = GetField(rec, ScheduledField{WorkoutID: "w1", FieldName: FieldDaysScheduled})
	require.NoError(t, err)
	assert.Equal(t, "Monday, Thursday", v)

	v, err = GetField(rec, ScheduledReportField{WorkoutID: "w1", ReportID: "r2", FieldName: FieldComment})
	require.NoError(t, err)
	assert.Equal(t, "sick", v)

	v, err = GetField(rec, UnscheduledField{ReportID: "u1", FieldName: FieldComment})
	require.NoError(t, err)
	assert.Equal(t, "windy", v)

	_, err = GetField(rec, ScheduledField{WorkoutID: "nope", FieldName: FieldWorkoutName})
	require.ErrorIs(t, err, ErrNotFound)

	_, err = GetField(rec, ScheduledField{WorkoutID: "w1", FieldName: FieldCompletion})
	require.ErrorIs(t, err, ErrInvalidArgument)

	_, err = GetField(rec, TopLevel{FieldName: "scheduled_workout"})
	require.ErrorIs(t, err, ErrInvalidArgument)
}

func TestSetField(t *testing.T) {
	rec := sampleRecord()

	require.NoError(t, SetField(rec, ScheduledField{WorkoutID: "w1", FieldName: FieldWorkoutName}, "  Chest Day "))
	assert.Equal(t, "Chest Day", rec.ScheduledWorkout["w1"].WorkoutName)

	require.NoError(t, SetField(rec, ScheduledField{WorkoutID: "w1", FieldName: FieldDaysScheduled}, "fridays, monday, Friday"))
	assert.Equal(t, []string{"Friday", "Monday"}, rec.ScheduledWorkout["w1"].DaysScheduled)

	require.NoError(t, SetField(rec, ScheduledReportField{WorkoutID: "w1", ReportID: "r1", FieldName: FieldCompletion}, "partially complete"))
	assert.Equal(t, models.CompletionPartiallyComplete, rec.ScheduledWorkout["w1"].Reports["r1"].Completion)

	require.NoError(t, SetField(rec, UnscheduledField{ReportID: "u2", FieldName: FieldImgURL}, "https://example.com/swim.gif"))
	assert.Equal(t, "https://example.com/swim.gif", rec.UnscheduledWorkout["u2"].ImgURL)

	require.NoError(t, SetField(rec, TopLevel{FieldName: FieldUsername}, "Alice"))
	assert.Equal(t, "Alice", rec.Username)
}

func TestSetFieldRejectsWithoutChanging(t *testing.T) {
	rec := sampleRecord()
	before := rec.Clone()

	err := SetField(rec, ScheduledField{WorkoutID: "w1", FieldName: FieldWorkoutName}, strings.Repeat("x", 80))
	require.ErrorIs(t, err, ErrValidation)

	err = SetField(rec, ScheduledReportField{WorkoutID: "w1", ReportID: "r1", FieldName: FieldCompletion}, "mostly")
	require.ErrorIs(t, err, ErrValidation)

	err = SetField(rec, ScheduledField{WorkoutID: "w1", FieldName: FieldDaysScheduled}, "Monday, Someday")
	require.ErrorIs(t, err, ErrValidation)

	err = SetField(rec, ScheduledField{WorkoutID: "w1", FieldName: FieldDaysScheduled}, "")
	require.ErrorIs(t, err, ErrValidation)

	err = SetField(rec, UnscheduledField{ReportID: "u1", FieldName: FieldTutorialURL}, "not a link")
	require.ErrorIs(t, err, ErrValidation)

	err = SetField(rec, UnscheduledField{ReportID: "u1", FieldName: FieldDaysScheduled}, "Monday")
	require.ErrorIs(t, err, ErrInvalidArgument)

	err = SetField(rec, ScheduledReportField{WorkoutID: "w1", ReportID: "missing", FieldName: FieldComment}, "x")
	require.ErrorIs(t, err, ErrNotFound)

	assert.Equal(t, before, rec)
}

func TestDeleteRecordUnscheduledOnly(t *testing.T) {
	rec := sampleRecord()

	require.NoError(t, DeleteRecord(rec, "", "u1"))
	assert.NotContains(t, rec.UnscheduledWorkout, "u1")
	assert.Contains(t, rec.UnscheduledWorkout, "u2")
	assert.Equal(t, sampleRecord().ScheduledWorkout, rec.ScheduledWorkout)
}

func TestDeleteRecordNestedReport(t *testing.T) {
	rec := sampleRecord()

	require.NoError(t, DeleteRecord(rec, "w1", "r1"))
	assert.NotContains(t, rec.ScheduledWorkout["w1"].Reports, "r1")
	assert.Contains(t, rec.ScheduledWorkout["w1"].Reports, "r2")
	assert.Len(t, rec.ScheduledWorkout["w2"].Reports, 1)
	assert.Len(t, rec.UnscheduledWorkout, 2)
}

func TestDeleteRecordWorkout(t *testing.T) {
	rec := sampleRecord()

	require.NoError(t, DeleteRecord(rec, "w1", ""))
	assert.NotContains(t, rec.ScheduledWorkout, "w1")
	assert.Contains(t, rec.ScheduledWorkout, "w2")
	assert.Len(t, rec.UnscheduledWorkout, 2)
}

func TestDeleteRecordErrors(t *testing.T) {
	rec := sampleRecord()

	require.ErrorIs(t, DeleteRecord(rec, "", ""), ErrInvalidArgument)
	require.ErrorIs(t, DeleteRecord(rec, "", "r1"), ErrNotFound)
	require.ErrorIs(t, DeleteRecord(rec, "w2", "r1"), ErrNotFound)
	require.ErrorIs(t, DeleteRecord(rec, "w9", ""), ErrNotFound)
	assert.Equal(t, sampleRecord(), rec)
}

func TestResolveReport(t *testing.T) {
	rec := sampleRecord()

	r, err := ResolveReport(rec, "r3")
	require.NoError(t, err)
	assert.Equal(t, models.ReportScheduled, r.Kind)
	assert.Equal(t, "w2", r.WorkoutID)
	assert.Equal(t, "Leg Day", r.WorkoutName)

	r, err = ResolveReport(rec, "u1")
	require.NoError(t, err)
	assert.Equal(t, models.ReportUnscheduled, r.Kind)
	assert.Equal(t, "windy", r.Comment())

	// Scheduled reports win when an ID exists in both collections
	rec.UnscheduledWorkout["r1"] = &models.UnscheduledWorkout{WorkoutName: "Shadow"}
	r, err = ResolveReport(rec, "r1")
	require.NoError(t, err)
	assert.Equal(t, models.ReportScheduled, r.Kind)

	_, err = ResolveReport(rec, "zzz")
	require.ErrorIs(t, err, ErrNotFound)
}

func TestFindWorkoutByName(t *testing.T) {
	rec := sampleRecord()
	rec.ScheduledWorkout["w3"] = &models.ScheduledWorkout{
		WorkoutName: "Push Day",
		CreatedAt:   rec.ScheduledWorkout["w1"].CreatedAt.Add(time.Hour),
		Reports:     map[string]*models.ScheduledReport{},
	}

	id, w, err := FindWorkoutByName(rec, "Push Day")
	require.NoError(t, err)
	assert.Equal(t, "w1", id)
	assert.Equal(t, "Push Day", w.WorkoutName)

	id, _, err = FindWorkoutByName(rec, "leg day")
	require.NoError(t, err)
	assert.Equal(t, "w2", id)

	_, _, err = FindWorkoutByName(rec, "Arms")
	require.ErrorIs(t, err, ErrNotFound)

	id, _, err = LookupWorkout(rec, "w3")
	require.NoError(t, err)
	assert.Equal(t, "w3", id)
}
