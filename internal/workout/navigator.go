package workout

import (
	"strings"

	"github.com/example/workoutbot/pkg/models"
)

// Scope names used by callers that address records with a scope string
const (
	ScopeScheduled   = "scheduled_workout"
	ScopeUnscheduled = "unscheduled_workout"
)

// Selector addresses one field inside a user record. It is one of
// TopLevel, ScheduledField, UnscheduledField or ScheduledReportField.
type Selector interface {
	Field() string
	selector()
}

// TopLevel addresses a field of the user record itself
type TopLevel struct {
	FieldName string
}

// ScheduledField addresses a field of a scheduled workout
type ScheduledField struct {
	WorkoutID string
	FieldName string
}

// UnscheduledField addresses a field of an unscheduled workout
type UnscheduledField struct {
	ReportID  string
	FieldName string
}

// ScheduledReportField addresses a field of a report nested in a scheduled workout
type ScheduledReportField struct {
	WorkoutID string
	ReportID  string
	FieldName string
}

func (s TopLevel) Field() string             { return s.FieldName }
func (s ScheduledField) Field() string       { return s.FieldName }
func (s UnscheduledField) Field() string     { return s.FieldName }
func (s ScheduledReportField) Field() string { return s.FieldName }

func (TopLevel) selector()             {}
func (ScheduledField) selector()       {}
func (UnscheduledField) selector()     {}
func (ScheduledReportField) selector() {}

// NewSelector builds a selector from a scope string and the IDs supplied with it.
// An empty scope addresses the user record. The scheduled scope needs a
// workout ID and optionally a report ID; the unscheduled scope needs a report ID.
func NewSelector(scope, workoutID, reportID, field string) (Selector, error) {
	field = CanonicalField(field)
	switch scope {
	case "":
		return TopLevel{FieldName: field}, nil
	case ScopeScheduled, "scheduled":
		if workoutID == "" {
			return nil, invalidArgf("A workout ID is needed to change a scheduled workout.")
		}
		if reportID != "" {
			return ScheduledReportField{WorkoutID: workoutID, ReportID: reportID, FieldName: field}, nil
		}
		return ScheduledField{WorkoutID: workoutID, FieldName: field}, nil
	case ScopeUnscheduled, "unscheduled":
		if reportID == "" {
			return nil, invalidArgf("A report ID is needed to change an unscheduled workout.")
		}
		return UnscheduledField{ReportID: reportID, FieldName: field}, nil
	}
	return nil, invalidArgf("Unknown scope %q.", scope)
}

// GetField returns the addressed value. days_scheduled is rendered as a
// comma separated list.
func GetField(rec *models.UserRecord, sel Selector) (string, error) {
	switch s := sel.(type) {
	case TopLevel:
		if s.FieldName == FieldUsername {
			return rec.Username, nil
		}
	case ScheduledField:
		w, err := scheduledWorkout(rec, s.WorkoutID)
		if err != nil {
			return "", err
		}
		if s.FieldName == FieldDaysScheduled {
			return strings.Join(w.DaysScheduled, ", "), nil
		}
		if p := workoutField(w, s.FieldName); p != nil {
			return *p, nil
		}
	case UnscheduledField:
		u, err := unscheduledWorkout(rec, s.ReportID)
		if err != nil {
			return "", err
		}
		if p := unscheduledField(u, s.FieldName); p != nil {
			return *p, nil
		}
	case ScheduledReportField:
		r, err := scheduledReport(rec, s.WorkoutID, s.ReportID)
		if err != nil {
			return "", err
		}
		switch s.FieldName {
		case FieldCompletion:
			return string(r.Completion), nil
		case FieldComment:
			return r.Comment, nil
		}
	default:
		return "", invalidArgf("Unsupported selector.")
	}
	return "", unknownField(sel)
}

// SetField validates value for the addressed field and stores it. Nothing
// is changed when validation fails.
func SetField(rec *models.UserRecord, sel Selector, value string) error {
	if sel.Field() == FieldDaysScheduled {
		s, ok := sel.(ScheduledField)
		if !ok {
			return unknownField(sel)
		}
		w, err := scheduledWorkout(rec, s.WorkoutID)
		if err != nil {
			return err
		}
		days, err := ParseSchedule(value)
		if err != nil {
			return err
		}
		w.DaysScheduled = days
		return nil
	}

	var target *string
	switch s := sel.(type) {
	case TopLevel:
		if s.FieldName == FieldUsername {
			target = &rec.Username
		}
	case ScheduledField:
		w, err := scheduledWorkout(rec, s.WorkoutID)
		if err != nil {
			return err
		}
		target = workoutField(w, s.FieldName)
	case UnscheduledField:
		u, err := unscheduledWorkout(rec, s.ReportID)
		if err != nil {
			return err
		}
		target = unscheduledField(u, s.FieldName)
	case ScheduledReportField:
		r, err := scheduledReport(rec, s.WorkoutID, s.ReportID)
		if err != nil {
			return err
		}
		switch s.FieldName {
		case FieldCompletion:
			c, err := ParseCompletion(value)
			if err != nil {
				return err
			}
			r.Completion = c
			return nil
		case FieldComment:
			target = &r.Comment
		}
	default:
		return invalidArgf("Unsupported selector.")
	}
	if target == nil {
		return unknownField(sel)
	}

	v, err := ValidateField(sel.Field(), value)
	if err != nil {
		return err
	}
	*target = v
	return nil
}

// DeleteRecord removes a record chosen by which IDs are given: a report ID
// alone deletes an unscheduled workout, a workout ID alone deletes a
// scheduled workout with all its reports, both delete one nested report.
func DeleteRecord(rec *models.UserRecord, workoutID, reportID string) error {
	switch {
	case workoutID != "" && reportID != "":
		w, err := scheduledWorkout(rec, workoutID)
		if err != nil {
			return err
		}
		if _, ok := w.Reports[reportID]; !ok {
			return notFoundf("That report does not exist under the workout %s.", w.WorkoutName)
		}
		delete(w.Reports, reportID)
	case workoutID != "":
		if _, err := scheduledWorkout(rec, workoutID); err != nil {
			return err
		}
		delete(rec.ScheduledWorkout, workoutID)
	case reportID != "":
		if _, err := unscheduledWorkout(rec, reportID); err != nil {
			return err
		}
		delete(rec.UnscheduledWorkout, reportID)
	default:
		return invalidArgf("Pick a workout or a report to delete.")
	}
	return nil
}

// ResolveReport finds a report by ID. Scheduled workouts are searched
// first, in creation order, then the unscheduled collection.
func ResolveReport(rec *models.UserRecord, reportID string) (models.Report, error) {
	for _, wid := range rec.WorkoutIDs() {
		w := rec.ScheduledWorkout[wid]
		if r, ok := w.Reports[reportID]; ok {
			return models.Report{
				ID:          reportID,
				Kind:        models.ReportScheduled,
				CreatedAt:   r.CreatedAt,
				WorkoutID:   wid,
				WorkoutName: w.WorkoutName,
				Scheduled:   r,
			}, nil
		}
	}
	if u, ok := rec.UnscheduledWorkout[reportID]; ok {
		return models.Report{
			ID:          reportID,
			Kind:        models.ReportUnscheduled,
			CreatedAt:   u.CreatedAt,
			WorkoutName: u.WorkoutName,
			Unscheduled: u,
		}, nil
	}
	return models.Report{}, notFoundf("That report does not exist. Pick one from the list.")
}

// ReportSelector addresses a field of an already resolved report
func ReportSelector(r models.Report, field string) Selector {
	if r.Kind == models.ReportScheduled {
		return ScheduledReportField{WorkoutID: r.WorkoutID, ReportID: r.ID, FieldName: field}
	}
	return UnscheduledField{ReportID: r.ID, FieldName: field}
}

// FindWorkoutByName scans the scheduled workouts in creation order and
// returns the first whose name matches exactly, falling back to the first
// case-insensitive match.
func FindWorkoutByName(rec *models.UserRecord, name string) (string, *models.ScheduledWorkout, error) {
	name = strings.TrimSpace(name)
	ids := rec.WorkoutIDs()
	for _, id := range ids {
		if w := rec.ScheduledWorkout[id]; w.WorkoutName == name {
			return id, w, nil
		}
	}
	for _, id := range ids {
		if w := rec.ScheduledWorkout[id]; strings.EqualFold(w.WorkoutName, name) {
			return id, w, nil
		}
	}
	return "", nil, notFoundf("You have no scheduled workout called %s.", name)
}

// LookupWorkout accepts either a workout ID (as sent by autocomplete) or a typed name
func LookupWorkout(rec *models.UserRecord, nameOrID string) (string, *models.ScheduledWorkout, error) {
	if w, ok := rec.ScheduledWorkout[nameOrID]; ok {
		return nameOrID, w, nil
	}
	return FindWorkoutByName(rec, nameOrID)
}

func scheduledWorkout(rec *models.UserRecord, workoutID string) (*models.ScheduledWorkout, error) {
	w, ok := rec.ScheduledWorkout[workoutID]
	if !ok {
		return nil, notFoundf("That scheduled workout does not exist.")
	}
	return w, nil
}

func unscheduledWorkout(rec *models.UserRecord, reportID string) (*models.UnscheduledWorkout, error) {
	u, ok := rec.UnscheduledWorkout[reportID]
	if !ok {
		return nil, notFoundf("That unscheduled workout does not exist.")
	}
	return u, nil
}

func scheduledReport(rec *models.UserRecord, workoutID, reportID string) (*models.ScheduledReport, error) {
	w, err := scheduledWorkout(rec, workoutID)
	if err != nil {
		return nil, err
	}
	r, ok := w.Reports[reportID]
	if !ok {
		return nil, notFoundf("That report does not exist under the workout %s.", w.WorkoutName)
	}
	return r, nil
}

func workoutField(w *models.ScheduledWorkout, field string) *string {
	switch field {
	case FieldWorkoutName:
		return &w.WorkoutName
	case FieldMuscleGroup:
		return &w.MuscleGroup
	case FieldWeightsUsed:
		return &w.WeightsUsed
	case FieldTutorialURL:
		return &w.TutorialURL
	case FieldImgURL:
		return &w.ImgURL
	}
	return nil
}

func unscheduledField(u *models.UnscheduledWorkout, field string) *string {
	switch field {
	case FieldWorkoutName:
		return &u.WorkoutName
	case FieldMuscleGroup:
		return &u.MuscleGroup
	case FieldWeightsUsed:
		return &u.WeightsUsed
	case FieldTutorialURL:
		return &u.TutorialURL
	case FieldImgURL:
		return &u.ImgURL
	case FieldComment:
		return &u.Comment
	}
	return nil
}

func unknownField(sel Selector) error {
	return invalidArgf("%s is not a field that can be changed here.", fieldLabel(sel.Field()))
}
