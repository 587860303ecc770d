package excel

import (
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/workoutbot/pkg/models"
)

func exportRecord() *models.UserRecord {
	rec := models.NewUserRecord("Al")
	rec.ScheduledWorkout["w1"] = &models.ScheduledWorkout{
		WorkoutName:   "Push Day",
		DaysScheduled: []string{"Monday", "Thursday"},
		MuscleGroup:   "chest",
		WeightsUsed:   "60kg",
		CreatedAt:     time.Date(2024, time.February, 1, 9, 0, 0, 0, time.UTC),
		Reports: map[string]*models.ScheduledReport{
			"r1": {
				Completion: models.CompletionPartiallyComplete,
				Comment:    "tired",
				CreatedAt:  time.Date(2024, time.February, 29, 18, 30, 0, 0, time.UTC),
			},
		},
	}
	rec.UnscheduledWorkout["u1"] = &models.UnscheduledWorkout{
		WorkoutName: "Hike",
		Comment:     "windy",
		CreatedAt:   time.Date(2024, time.March, 2, 7, 15, 0, 0, time.UTC),
	}
	return rec
}

func TestExport(t *testing.T) {
	f, err := Export(exportRecord(), time.UTC)
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{WorkoutsSheet, ReportsSheet}, f.GetSheetList())

	workouts, err := f.GetRows(WorkoutsSheet)
	require.NoError(t, err)
	require.Len(t, workouts, 2)
	assert.Equal(t, "w1", workouts[1][0])
	assert.Equal(t, "Push Day", workouts[1][1])
	assert.Equal(t, "Monday, Thursday", workouts[1][2])

	reports, err := f.GetRows(ReportsSheet)
	require.NoError(t, err)
	require.Len(t, reports, 3)
	assert.Equal(t, "Push Day", reports[1][1])
	assert.Equal(t, "chest", reports[1][2])
	assert.Equal(t, "partially complete", reports[1][8])
	assert.Equal(t, "Hike", reports[2][1])
	assert.Equal(t, "unscheduled", reports[2][7])
}

func TestExportImportRoundTrip(t *testing.T) {
	loc := time.FixedZone("UTC-5", -5*60*60)
	f, err := Export(exportRecord(), loc)
	require.NoError(t, err)
	path := filepath.Join(t.TempDir(), "workouts.xlsx")
	require.NoError(t, f.SaveAs(path))
	require.NoError(t, f.Close())

	// Sheet1 is missing from exported workbooks, so the Reports sheet is read
	config := DefaultImportConfig()
	config.FilePath = path
	config.Location = loc

	result, err := ImportWorkouts(config)
	require.NoError(t, err)
	assert.Empty(t, result.Errors)
	require.Len(t, result.Workouts, 2)

	first := result.Workouts[0]
	assert.Equal(t, "Push Day", first.WorkoutName)
	assert.Equal(t, "tired", first.Comment)
	assert.True(t, first.At.Equal(time.Date(2024, time.February, 29, 18, 30, 0, 0, time.UTC)), first.At)
	assert.True(t, result.Workouts[1].At.Equal(time.Date(2024, time.March, 2, 7, 15, 0, 0, time.UTC)))
}

func TestImportDropsSkippedReports(t *testing.T) {
	rec := exportRecord()
	rec.ScheduledWorkout["w1"].Reports["r2"] = &models.ScheduledReport{
		Completion: models.CompletionSkipped,
		CreatedAt:  time.Date(2024, time.March, 4, 18, 0, 0, 0, time.UTC),
	}
	f, err := Export(rec, time.UTC)
	require.NoError(t, err)
	path := filepath.Join(t.TempDir(), "workouts.xlsx")
	require.NoError(t, f.SaveAs(path))
	require.NoError(t, f.Close())

	config := DefaultImportConfig()
	config.FilePath = path
	config.Location = time.UTC

	result, err := ImportWorkouts(config)
	require.NoError(t, err)
	assert.Empty(t, result.Errors)
	assert.Equal(t, 2, result.TotalProcessed)
	assert.Equal(t, 1, result.Skipped)
	require.Len(t, result.Workouts, 2)
	assert.Equal(t, "Push Day", result.Workouts[0].WorkoutName)
	assert.Equal(t, "Hike", result.Workouts[1].WorkoutName)
}

func TestImportCSV(t *testing.T) {
	data := strings.Join([]string{
		"date,workout,muscles,weights,tutorial,image,comment",
		"2024-02-29 18:30,Run,legs,,,,easy",
		",,,,,,",
		"2024-03-01,,legs,,,,",
		"yesterday,Swim,,,,,",
		",Yoga,,,,,",
	}, "\n")

	config := DefaultImportConfig()
	config.Location = time.UTC
	result, err := ImportCSV(strings.NewReader(data), config)
	require.NoError(t, err)

	assert.Equal(t, 4, result.TotalProcessed)
	assert.Equal(t, 1, result.Skipped)
	assert.Equal(t, []string{
		"Row 4: workout name cannot be empty",
		`Row 5: invalid date "yesterday"`,
	}, result.Errors)

	require.Len(t, result.Workouts, 2)
	assert.Equal(t, "Run", result.Workouts[0].WorkoutName)
	assert.Equal(t, "legs", result.Workouts[0].MuscleGroup)
	assert.Equal(t, "easy", result.Workouts[0].Comment)
	assert.Equal(t, time.Date(2024, time.February, 29, 18, 30, 0, 0, time.UTC), result.Workouts[0].At)
	assert.True(t, result.Workouts[1].At.IsZero())
}

func TestColumnToIndex(t *testing.T) {
	assert.Equal(t, 0, columnToIndex("A"))
	assert.Equal(t, 6, columnToIndex("g"))
	assert.Equal(t, 26, columnToIndex("AA"))
}
