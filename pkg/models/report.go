package models

import (
	"sort"
	"time"
)

// ReportKind tells which collection a report lives in
type ReportKind int

const (
	ReportScheduled ReportKind = iota + 1
	ReportUnscheduled
)

func (k ReportKind) String() string {
	switch k {
	case ReportScheduled:
		return "scheduled"
	case ReportUnscheduled:
		return "unscheduled"
	}
	return "unknown"
}

// Report is a read-only view over either a scheduled report or an
// unscheduled workout. Exactly one of Scheduled and Unscheduled is set,
// matching Kind.
type Report struct {
	ID        string
	Kind      ReportKind
	CreatedAt time.Time

	// Provenance of scheduled reports; WorkoutName is also set for unscheduled ones
	WorkoutID   string
	WorkoutName string

	Scheduled   *ScheduledReport
	Unscheduled *UnscheduledWorkout
}

// Comment returns the free-text note of either kind
func (r Report) Comment() string {
	switch r.Kind {
	case ReportScheduled:
		return r.Scheduled.Comment
	case ReportUnscheduled:
		return r.Unscheduled.Comment
	}
	return ""
}

// SortReports orders reports by creation time, ties broken by ID
func SortReports(reports []Report) {
	sort.Slice(reports, func(i, j int) bool {
		if reports[i].CreatedAt.Equal(reports[j].CreatedAt) {
			return reports[i].ID < reports[j].ID
		}
		return reports[i].CreatedAt.Before(reports[j].CreatedAt)
	})
}
