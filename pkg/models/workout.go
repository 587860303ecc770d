package models

import "time"

// Completion records how much of a scheduled session was done
type Completion string

const (
	CompletionComplete          Completion = "complete"
	CompletionPartiallyComplete Completion = "partially_complete"
	CompletionSkipped           Completion = "skipped"
)

// Completions lists the accepted completion values in display order
var Completions = []Completion{CompletionComplete, CompletionPartiallyComplete, CompletionSkipped}

// Valid reports whether c is one of the three known values
func (c Completion) Valid() bool {
	switch c {
	case CompletionComplete, CompletionPartiallyComplete, CompletionSkipped:
		return true
	}
	return false
}

// Label returns the human form, e.g. "partially complete"
func (c Completion) Label() string {
	if c == CompletionPartiallyComplete {
		return "partially complete"
	}
	return string(c)
}

// ScheduledReport is one session logged against a scheduled workout
type ScheduledReport struct {
	Completion Completion `json:"completion" bson:"completion" yaml:"completion"`
	Comment    string     `json:"comment,omitempty" bson:"comment,omitempty" yaml:"comment,omitempty"`
	CreatedAt  time.Time  `json:"created_at" bson:"created_at" yaml:"created_at"`
}

// ScheduledWorkout is a recurring routine with a weekday schedule
type ScheduledWorkout struct {
	WorkoutName   string                      `json:"workout_name" bson:"workout_name" yaml:"workout_name"`
	DaysScheduled []string                    `json:"days_scheduled" bson:"days_scheduled" yaml:"days_scheduled"`
	MuscleGroup   string                      `json:"muscle_group,omitempty" bson:"muscle_group,omitempty" yaml:"muscle_group,omitempty"`
	WeightsUsed   string                      `json:"weights_used,omitempty" bson:"weights_used,omitempty" yaml:"weights_used,omitempty"`
	TutorialURL   string                      `json:"tutorial_url,omitempty" bson:"tutorial_url,omitempty" yaml:"tutorial_url,omitempty"`
	ImgURL        string                      `json:"img_url,omitempty" bson:"img_url,omitempty" yaml:"img_url,omitempty"`
	CreatedAt     time.Time                   `json:"created_at" bson:"created_at" yaml:"created_at"`
	Reports       map[string]*ScheduledReport `json:"reports" bson:"reports" yaml:"reports"`
}

// ScheduledOn reports whether the workout is scheduled for the given weekday
func (w *ScheduledWorkout) ScheduledOn(day time.Weekday) bool {
	for _, d := range w.DaysScheduled {
		if wd, ok := ParseWeekday(d); ok && wd == day {
			return true
		}
	}
	return false
}

// Clone returns a deep copy of the workout and its reports
func (w *ScheduledWorkout) Clone() *ScheduledWorkout {
	if w == nil {
		return nil
	}
	c := *w
	if w.DaysScheduled != nil {
		c.DaysScheduled = append([]string{}, w.DaysScheduled...)
	}
	c.Reports = make(map[string]*ScheduledReport, len(w.Reports))
	for id, r := range w.Reports {
		if r == nil {
			continue
		}
		rc := *r
		c.Reports[id] = &rc
	}
	return &c
}

// UnscheduledWorkout is a one-off session; it is its own report
type UnscheduledWorkout struct {
	WorkoutName string    `json:"workout_name" bson:"workout_name" yaml:"workout_name"`
	MuscleGroup string    `json:"muscle_group,omitempty" bson:"muscle_group,omitempty" yaml:"muscle_group,omitempty"`
	WeightsUsed string    `json:"weights_used,omitempty" bson:"weights_used,omitempty" yaml:"weights_used,omitempty"`
	TutorialURL string    `json:"tutorial_url,omitempty" bson:"tutorial_url,omitempty" yaml:"tutorial_url,omitempty"`
	ImgURL      string    `json:"img_url,omitempty" bson:"img_url,omitempty" yaml:"img_url,omitempty"`
	Comment     string    `json:"comment,omitempty" bson:"comment,omitempty" yaml:"comment,omitempty"`
	CreatedAt   time.Time `json:"created_at" bson:"created_at" yaml:"created_at"`
}
