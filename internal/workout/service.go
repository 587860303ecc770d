// Package workout holds the workout tracking operations shared by every
// chat front end: scheduling, reporting, editing, deleting and browsing.
package workout

import (
	"context"
	"errors"
	"log"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/example/workoutbot/internal/store"
	"github.com/example/workoutbot/pkg/models"
)

// User identifies the person behind a command
type User struct {
	ID   string
	Name string
}

// ScheduleInput holds the options of a new scheduled workout
type ScheduleInput struct {
	WorkoutName string
	Days        []string
	MuscleGroup string
	WeightsUsed string
	TutorialURL string
	ImgURL      string
}

// UnscheduledInput holds the options of a one-off workout. A zero At means now.
type UnscheduledInput struct {
	WorkoutName string
	MuscleGroup string
	WeightsUsed string
	TutorialURL string
	ImgURL      string
	Comment     string
	At          time.Time
}

// WorkoutEdit changes one field of a scheduled workout and/or replaces its schedule
type WorkoutEdit struct {
	Workout  string // name or ID
	Field    string
	NewValue string
	NewDays  []string
}

// WorkoutEntry is a scheduled workout together with its ID
type WorkoutEntry struct {
	ID      string
	Workout *models.ScheduledWorkout
}

// Reminder lists the workouts one user has scheduled for a given weekday
type Reminder struct {
	UserID   string
	Username string
	Workouts []WorkoutEntry
}

// Option configures optional behaviour for the Service.
type Option func(*Service)

// WithClock overrides the time source used for created_at stamps
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		s.now = now
	}
}

// WithIDGenerator overrides how workout and report IDs are generated
func WithIDGenerator(newID func() string) Option {
	return func(s *Service) {
		s.newID = newID
	}
}

// WithLocation sets the time zone used for dates shown to users and for bucketing
func WithLocation(loc *time.Location) Option {
	return func(s *Service) {
		if loc != nil {
			s.loc = loc
		}
	}
}

// WithLogger overrides the logger
func WithLogger(logger *log.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

// Service runs workout operations against a Store
type Service struct {
	store  store.Store
	loc    *time.Location
	now    func() time.Time
	newID  func() string
	logger *log.Logger
}

// NewService creates a service backed by st
func NewService(st store.Store, opts ...Option) *Service {
	s := &Service{
		store:  st,
		loc:    time.Local,
		now:    time.Now,
		newID:  uuid.NewString,
		logger: log.New(log.Writer(), "[workout] ", log.LstdFlags),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Location returns the configured time zone
func (s *Service) Location() *time.Location {
	return s.loc
}

// AddUser stores an empty record for a user seen for the first time
func (s *Service) AddUser(ctx context.Context, user User) (*models.UserRecord, error) {
	rec, err := s.store.Create(ctx, user.ID, user.Name)
	if err != nil {
		return nil, err
	}
	s.logger.Printf("Added user %s (%s)", user.ID, user.Name)
	return rec, nil
}

// ensureUser creates the user's record unless it already exists
func (s *Service) ensureUser(ctx context.Context, user User) error {
	_, err := s.store.Get(ctx, user.ID)
	if err == nil {
		return nil
	}
	if !errors.Is(err, store.ErrNotFound) {
		return err
	}
	if _, err := s.AddUser(ctx, user); err != nil && !errors.Is(err, store.ErrAlreadyExists) {
		return err
	}
	return nil
}

// Record returns a copy of the user's record
func (s *Service) Record(ctx context.Context, userID string) (*models.UserRecord, error) {
	return s.store.Get(ctx, userID)
}

// ScheduleWorkout adds a recurring workout for the user
func (s *Service) ScheduleWorkout(ctx context.Context, user User, in ScheduleInput) (string, error) {
	w, err := newScheduledWorkout(in, s.now().UTC())
	if err != nil {
		return "", err
	}
	if err := s.ensureUser(ctx, user); err != nil {
		return "", err
	}

	id := s.newID()
	err = s.store.Update(ctx, user.ID, func(rec *models.UserRecord) error {
		rec.ScheduledWorkout[id] = w
		return nil
	})
	if err != nil {
		return "", err
	}

	s.logger.Printf("User %s scheduled workout %s (%s)", user.ID, id, w.WorkoutName)
	return scheduledMessage(w), nil
}

// newScheduledWorkout validates every option and reports all problems at once
func newScheduledWorkout(in ScheduleInput, now time.Time) (*models.ScheduledWorkout, error) {
	var errs []error
	name, err := ValidateWorkoutName(in.WorkoutName)
	if err != nil {
		errs = append(errs, err)
	}
	days, err := ParseDays(in.Days...)
	if err != nil {
		errs = append(errs, err)
	}
	tutorial, err := ValidateURL(FieldTutorialURL, in.TutorialURL)
	if err != nil {
		errs = append(errs, err)
	}
	img, err := ValidateURL(FieldImgURL, in.ImgURL)
	if err != nil {
		errs = append(errs, err)
	}
	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}

	return &models.ScheduledWorkout{
		WorkoutName:   name,
		DaysScheduled: days,
		MuscleGroup:   strings.TrimSpace(in.MuscleGroup),
		WeightsUsed:   strings.TrimSpace(in.WeightsUsed),
		TutorialURL:   tutorial,
		ImgURL:        img,
		CreatedAt:     now,
		Reports:       make(map[string]*models.ScheduledReport),
	}, nil
}

// ReportScheduled logs a session of one of the user's scheduled workouts
func (s *Service) ReportScheduled(ctx context.Context, user User, workout, completion, comment string) (string, error) {
	c, err := ParseCompletion(completion)
	if err != nil {
		return "", err
	}

	report := &models.ScheduledReport{
		Completion: c,
		Comment:    strings.TrimSpace(comment),
		CreatedAt:  s.now().UTC(),
	}
	id := s.newID()
	var name string
	err = s.store.Update(ctx, user.ID, func(rec *models.UserRecord) error {
		_, w, err := LookupWorkout(rec, workout)
		if err != nil {
			return err
		}
		w.Reports[id] = report
		name = w.WorkoutName
		return nil
	})
	if err != nil {
		return "", err
	}

	s.logger.Printf("User %s reported %s on %s", user.ID, c, name)
	return scheduledReportMessage(name, report), nil
}

// ReportUnscheduled logs a one-off workout
func (s *Service) ReportUnscheduled(ctx context.Context, user User, in UnscheduledInput) (string, error) {
	u, err := s.newUnscheduledWorkout(in)
	if err != nil {
		return "", err
	}
	if err := s.ensureUser(ctx, user); err != nil {
		return "", err
	}

	id := s.newID()
	err = s.store.Update(ctx, user.ID, func(rec *models.UserRecord) error {
		rec.UnscheduledWorkout[id] = u
		return nil
	})
	if err != nil {
		return "", err
	}

	s.logger.Printf("User %s reported unscheduled workout %s (%s)", user.ID, id, u.WorkoutName)
	return unscheduledMessage(u), nil
}

// ImportUnscheduled stores a batch of one-off workouts in a single update
// and returns how many were added.
func (s *Service) ImportUnscheduled(ctx context.Context, user User, inputs []UnscheduledInput) (int, error) {
	workouts := make(map[string]*models.UnscheduledWorkout, len(inputs))
	var errs []error
	for _, in := range inputs {
		u, err := s.newUnscheduledWorkout(in)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		workouts[s.newID()] = u
	}
	if len(errs) > 0 {
		return 0, errors.Join(errs...)
	}
	if len(workouts) == 0 {
		return 0, nil
	}
	if err := s.ensureUser(ctx, user); err != nil {
		return 0, err
	}

	err := s.store.Update(ctx, user.ID, func(rec *models.UserRecord) error {
		for id, u := range workouts {
			rec.UnscheduledWorkout[id] = u
		}
		return nil
	})
	if err != nil {
		return 0, err
	}

	s.logger.Printf("Imported %d unscheduled workouts for user %s", len(workouts), user.ID)
	return len(workouts), nil
}

func (s *Service) newUnscheduledWorkout(in UnscheduledInput) (*models.UnscheduledWorkout, error) {
	var errs []error
	name, err := ValidateWorkoutName(in.WorkoutName)
	if err != nil {
		errs = append(errs, err)
	}
	tutorial, err := ValidateURL(FieldTutorialURL, in.TutorialURL)
	if err != nil {
		errs = append(errs, err)
	}
	img, err := ValidateURL(FieldImgURL, in.ImgURL)
	if err != nil {
		errs = append(errs, err)
	}
	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}

	at := in.At
	if at.IsZero() {
		at = s.now()
	}
	return &models.UnscheduledWorkout{
		WorkoutName: name,
		MuscleGroup: strings.TrimSpace(in.MuscleGroup),
		WeightsUsed: strings.TrimSpace(in.WeightsUsed),
		TutorialURL: tutorial,
		ImgURL:      img,
		Comment:     strings.TrimSpace(in.Comment),
		CreatedAt:   at.UTC(),
	}, nil
}

// EditWorkout changes a field of a scheduled workout and/or replaces its schedule
func (s *Service) EditWorkout(ctx context.Context, user User, edit WorkoutEdit) (string, error) {
	field := CanonicalField(edit.Field)
	if field == "" && len(edit.NewDays) == 0 {
		return "", invalidArgf("Pick a field to change or a new schedule.")
	}
	if field != "" && field != FieldDaysScheduled && !contains(EditableWorkoutFields(), field) {
		return "", invalidArgf("%s is not a field that can be changed on a workout.", fieldLabel(field))
	}
	if field != "" && field != FieldDaysScheduled {
		if _, err := ValidateField(field, edit.NewValue); err != nil {
			return "", err
		}
	}

	// The new day options alone replace the schedule
	if field == FieldDaysScheduled && strings.TrimSpace(edit.NewValue) == "" && len(edit.NewDays) > 0 {
		field = ""
	}
	if field == FieldDaysScheduled {
		if _, err := ParseSchedule(edit.NewValue); err != nil {
			return "", err
		}
	}

	var days []string
	if len(edit.NewDays) > 0 {
		var err error
		if days, err = ParseSchedule(edit.NewDays...); err != nil {
			return "", err
		}
	}

	var name, value string
	err := s.store.Update(ctx, user.ID, func(rec *models.UserRecord) error {
		id, w, err := LookupWorkout(rec, edit.Workout)
		if err != nil {
			return err
		}
		if field != "" {
			sel := ScheduledField{WorkoutID: id, FieldName: field}
			if err := SetField(rec, sel, edit.NewValue); err != nil {
				return err
			}
			if value, err = GetField(rec, sel); err != nil {
				return err
			}
		}
		if days != nil {
			w.DaysScheduled = days
		}
		name = w.WorkoutName
		return nil
	})
	if err != nil {
		return "", err
	}

	s.logger.Printf("User %s edited workout %s", user.ID, name)
	return editWorkoutMessage(name, field, value, days), nil
}

// EditReport changes one field of a report of either kind
func (s *Service) EditReport(ctx context.Context, user User, reportID, field, value string) (string, error) {
	field = CanonicalField(field)
	if _, err := ValidateField(field, value); err != nil {
		return "", err
	}

	var report models.Report
	var newValue string
	err := s.store.Update(ctx, user.ID, func(rec *models.UserRecord) error {
		r, err := ResolveReport(rec, reportID)
		if err != nil {
			return err
		}
		if !contains(EditableFields(r), field) {
			return invalidArgf("%s cannot be changed on a %s report.", fieldLabel(field), r.Kind)
		}
		sel := ReportSelector(r, field)
		if err := SetField(rec, sel, value); err != nil {
			return err
		}
		if newValue, err = GetField(rec, sel); err != nil {
			return err
		}
		report = r
		return nil
	})
	if err != nil {
		return "", err
	}

	s.logger.Printf("User %s edited %s of report %s", user.ID, field, reportID)
	return editReportMessage(report, field, newValue, s.loc), nil
}

// DeleteWorkout removes a scheduled workout. With keepReports set, every
// report that was not skipped becomes an unscheduled workout with the same
// ID and timestamp.
func (s *Service) DeleteWorkout(ctx context.Context, user User, workout string, keepReports bool) (string, error) {
	var name string
	var total, kept int
	err := s.store.Update(ctx, user.ID, func(rec *models.UserRecord) error {
		id, w, err := LookupWorkout(rec, workout)
		if err != nil {
			return err
		}
		name, total, kept = w.WorkoutName, len(w.Reports), 0
		if keepReports {
			for rid, r := range w.Reports {
				if r.Completion == models.CompletionSkipped {
					continue
				}
				if _, taken := rec.UnscheduledWorkout[rid]; taken {
					continue
				}
				rec.UnscheduledWorkout[rid] = &models.UnscheduledWorkout{
					WorkoutName: w.WorkoutName,
					MuscleGroup: w.MuscleGroup,
					WeightsUsed: w.WeightsUsed,
					TutorialURL: w.TutorialURL,
					ImgURL:      w.ImgURL,
					Comment:     r.Comment,
					CreatedAt:   r.CreatedAt,
				}
				kept++
			}
		}
		return DeleteRecord(rec, id, "")
	})
	if err != nil {
		return "", err
	}

	s.logger.Printf("User %s deleted workout %s (%d reports, %d kept)", user.ID, name, total, kept)
	return deleteWorkoutMessage(name, total, kept, keepReports), nil
}

// DeleteReport removes one report of either kind
func (s *Service) DeleteReport(ctx context.Context, user User, reportID string) (string, error) {
	var report models.Report
	err := s.store.Update(ctx, user.ID, func(rec *models.UserRecord) error {
		r, err := ResolveReport(rec, reportID)
		if err != nil {
			return err
		}
		report = r
		if r.Kind == models.ReportScheduled {
			return DeleteRecord(rec, r.WorkoutID, r.ID)
		}
		return DeleteRecord(rec, "", r.ID)
	})
	if err != nil {
		return "", err
	}

	s.logger.Printf("User %s deleted report %s", user.ID, reportID)
	return deleteReportMessage(report, s.loc), nil
}

// ListWorkouts returns the user's scheduled workouts in creation order
func (s *Service) ListWorkouts(ctx context.Context, userID string) ([]WorkoutEntry, error) {
	rec, err := s.store.Get(ctx, userID)
	if err != nil {
		return nil, err
	}
	return workoutEntries(rec), nil
}

func workoutEntries(rec *models.UserRecord) []WorkoutEntry {
	ids := rec.WorkoutIDs()
	entries := make([]WorkoutEntry, 0, len(ids))
	for _, id := range ids {
		entries = append(entries, WorkoutEntry{ID: id, Workout: rec.ScheduledWorkout[id]})
	}
	return entries
}

// DescribeWorkouts renders the user's scheduled workouts
func (s *Service) DescribeWorkouts(ctx context.Context, userID string) (string, error) {
	entries, err := s.ListWorkouts(ctx, userID)
	if err != nil {
		return "", err
	}
	return workoutsMessage(entries), nil
}

// DescribeReport renders one report
func (s *Service) DescribeReport(ctx context.Context, userID, reportID string) (string, error) {
	rec, err := s.store.Get(ctx, userID)
	if err != nil {
		return "", err
	}
	r, err := ResolveReport(rec, reportID)
	if err != nil {
		return "", err
	}
	return reportMessage(r, s.loc), nil
}

// History builds the bucketing index over every report of the user
func (s *Service) History(ctx context.Context, userID string) (*Index, error) {
	rec, err := s.store.Get(ctx, userID)
	if err != nil {
		return nil, err
	}
	return NewIndex(rec.Reports(), s.loc), nil
}

// WorkoutChoices lists the user's scheduled workouts whose name contains
// typed, as (name, ID) choices.
func (s *Service) WorkoutChoices(ctx context.Context, userID, typed string) ([]Choice, error) {
	entries, err := s.ListWorkouts(ctx, userID)
	if err != nil {
		return nil, err
	}
	choices := make([]Choice, 0, len(entries))
	for _, e := range entries {
		choices = append(choices, Choice{Name: e.Workout.WorkoutName, Value: e.ID})
	}
	return LimitChoices(FilterChoices(choices, typed), MaxChoices), nil
}

// ReportFieldChoices lists the editable fields of a report
func (s *Service) ReportFieldChoices(ctx context.Context, userID, reportID string) ([]Choice, error) {
	rec, err := s.store.Get(ctx, userID)
	if err != nil {
		return nil, err
	}
	r, err := ResolveReport(rec, reportID)
	if err != nil {
		return nil, err
	}
	var choices []Choice
	for _, f := range EditableFields(r) {
		choices = append(choices, Choice{Name: fieldLabel(f), Value: f})
	}
	return choices, nil
}

// DueReminders returns, per user, the workouts scheduled on day. Users
// with nothing scheduled are left out.
func (s *Service) DueReminders(ctx context.Context, day time.Weekday) ([]Reminder, error) {
	doc, err := s.store.Snapshot(ctx)
	if err != nil {
		return nil, err
	}

	var reminders []Reminder
	for userID, rec := range doc.Users {
		var due []WorkoutEntry
		for _, e := range workoutEntries(rec) {
			if e.Workout.ScheduledOn(day) {
				due = append(due, e)
			}
		}
		if len(due) > 0 {
			reminders = append(reminders, Reminder{UserID: userID, Username: rec.Username, Workouts: due})
		}
	}
	sort.Slice(reminders, func(i, j int) bool {
		return reminders[i].UserID < reminders[j].UserID
	})
	return reminders, nil
}

// Stats counts what every user has recorded
type Stats struct {
	Users       int
	Workouts    int
	Reports     int
	Unscheduled int
}

// Stats summarises the whole store
func (s *Service) Stats(ctx context.Context) (Stats, error) {
	doc, err := s.store.Snapshot(ctx)
	if err != nil {
		return Stats{}, err
	}
	st := Stats{Users: len(doc.Users)}
	for _, rec := range doc.Users {
		st.Workouts += len(rec.ScheduledWorkout)
		st.Unscheduled += len(rec.UnscheduledWorkout)
		for _, w := range rec.ScheduledWorkout {
			st.Reports += len(w.Reports)
		}
	}
	return st, nil
}

func contains(values []string, v string) bool {
	for _, s := range values {
		if s == v {
			return true
		}
	}
	return false
}
