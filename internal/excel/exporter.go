package excel

import (
	"fmt"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/example/workoutbot/pkg/models"
)

// Sheet names of exported workbooks
const (
	WorkoutsSheet = "Workouts"
	ReportsSheet  = "Reports"
)

var workoutsHeader = []interface{}{
	"ID", "Workout name", "Days scheduled", "Muscle group", "Weights used",
	"Tutorial url", "Image url", "Created", "Reports",
}

// The first seven columns line up with DefaultImportConfig
var reportsHeader = []interface{}{
	"Date", "Workout name", "Muscle group", "Weights used", "Tutorial url",
	"Image url", "Comment", "Kind", "Completion", "ID",
}

// Export writes the user's scheduled workouts and every report into a
// workbook. Times are written as wall-clock time in loc.
func Export(rec *models.UserRecord, loc *time.Location) (*excelize.File, error) {
	if loc == nil {
		loc = time.UTC
	}

	f := excelize.NewFile()
	if err := f.SetSheetName("Sheet1", WorkoutsSheet); err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to rename sheet: %v", err)
	}
	if _, err := f.NewSheet(ReportsSheet); err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to create sheet: %v", err)
	}

	if err := writeWorkouts(f, rec, loc); err != nil {
		f.Close()
		return nil, err
	}
	if err := writeReports(f, rec, loc); err != nil {
		f.Close()
		return nil, err
	}
	return f, nil
}

func writeWorkouts(f *excelize.File, rec *models.UserRecord, loc *time.Location) error {
	if err := setRow(f, WorkoutsSheet, 1, workoutsHeader); err != nil {
		return err
	}
	for i, id := range rec.WorkoutIDs() {
		w := rec.ScheduledWorkout[id]
		row := []interface{}{
			id,
			w.WorkoutName,
			strings.Join(w.DaysScheduled, ", "),
			w.MuscleGroup,
			w.WeightsUsed,
			w.TutorialURL,
			w.ImgURL,
			wallClock(w.CreatedAt, loc),
			len(w.Reports),
		}
		if err := setRow(f, WorkoutsSheet, i+2, row); err != nil {
			return err
		}
	}
	return nil
}

func writeReports(f *excelize.File, rec *models.UserRecord, loc *time.Location) error {
	if err := setRow(f, ReportsSheet, 1, reportsHeader); err != nil {
		return err
	}
	for i, r := range rec.Reports() {
		var row []interface{}
		switch r.Kind {
		case models.ReportScheduled:
			w := rec.ScheduledWorkout[r.WorkoutID]
			row = []interface{}{
				wallClock(r.CreatedAt, loc), w.WorkoutName, w.MuscleGroup, w.WeightsUsed,
				w.TutorialURL, w.ImgURL, r.Scheduled.Comment,
				r.Kind.String(), r.Scheduled.Completion.Label(), r.ID,
			}
		case models.ReportUnscheduled:
			u := r.Unscheduled
			row = []interface{}{
				wallClock(r.CreatedAt, loc), u.WorkoutName, u.MuscleGroup, u.WeightsUsed,
				u.TutorialURL, u.ImgURL, u.Comment,
				r.Kind.String(), "", r.ID,
			}
		}
		if err := setRow(f, ReportsSheet, i+2, row); err != nil {
			return err
		}
	}
	return nil
}

func setRow(f *excelize.File, sheet string, row int, values []interface{}) error {
	cell, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return err
	}
	if err := f.SetSheetRow(sheet, cell, &values); err != nil {
		return fmt.Errorf("failed to write %s row %d: %v", sheet, row, err)
	}
	return nil
}

// wallClock re-labels t's wall clock in loc as UTC, since Excel dates have no zone
func wallClock(t time.Time, loc *time.Location) time.Time {
	t = t.In(loc)
	return time.Date(t.Year(), t.Month(), t.Day(), t.Hour(), t.Minute(), t.Second(), 0, time.UTC)
}
