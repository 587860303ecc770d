package models

import (
	"sort"
)

// Document is the whole persisted state: every user keyed by platform user ID
type Document struct {
	Users map[string]*UserRecord `json:"users" bson:"users" yaml:"users"`
}

// NewDocument returns an empty document
func NewDocument() *Document {
	return &Document{Users: make(map[string]*UserRecord)}
}

// Clone returns a deep copy of the document
func (d *Document) Clone() *Document {
	c := NewDocument()
	for id, u := range d.Users {
		c.Users[id] = u.Clone()
	}
	return c
}

// Normalize drops null users and cleans up every record
func (d *Document) Normalize() {
	if d.Users == nil {
		d.Users = make(map[string]*UserRecord)
	}
	for id, u := range d.Users {
		if u == nil {
			delete(d.Users, id)
			continue
		}
		u.Normalize()
	}
}

// UserRecord holds everything a single user has scheduled or logged
type UserRecord struct {
	Username           string                         `json:"username" bson:"username" yaml:"username"`
	ScheduledWorkout   map[string]*ScheduledWorkout   `json:"scheduled_workout" bson:"scheduled_workout" yaml:"scheduled_workout"`
	UnscheduledWorkout map[string]*UnscheduledWorkout `json:"unscheduled_workout" bson:"unscheduled_workout" yaml:"unscheduled_workout"`
}

// NewUserRecord creates the empty record stored on a user's first action
func NewUserRecord(username string) *UserRecord {
	return &UserRecord{
		Username:           username,
		ScheduledWorkout:   make(map[string]*ScheduledWorkout),
		UnscheduledWorkout: make(map[string]*UnscheduledWorkout),
	}
}

// Clone returns a deep copy of the record
func (u *UserRecord) Clone() *UserRecord {
	if u == nil {
		return nil
	}
	c := NewUserRecord(u.Username)
	for id, w := range u.ScheduledWorkout {
		if w != nil {
			c.ScheduledWorkout[id] = w.Clone()
		}
	}
	for id, w := range u.UnscheduledWorkout {
		if w == nil {
			continue
		}
		wc := *w
		c.UnscheduledWorkout[id] = &wc
	}
	return c
}

// Normalize replaces nil maps and drops null entries left behind by
// decoding older or hand-edited documents
func (u *UserRecord) Normalize() {
	if u.ScheduledWorkout == nil {
		u.ScheduledWorkout = make(map[string]*ScheduledWorkout)
	}
	if u.UnscheduledWorkout == nil {
		u.UnscheduledWorkout = make(map[string]*UnscheduledWorkout)
	}
	for id, w := range u.UnscheduledWorkout {
		if w == nil {
			delete(u.UnscheduledWorkout, id)
		}
	}
	for id, w := range u.ScheduledWorkout {
		if w == nil {
			delete(u.ScheduledWorkout, id)
			continue
		}
		if w.Reports == nil {
			w.Reports = make(map[string]*ScheduledReport)
		}
		for rid, r := range w.Reports {
			if r == nil {
				delete(w.Reports, rid)
			}
		}
		if w.DaysScheduled == nil {
			w.DaysScheduled = []string{}
		}
	}
}

// WorkoutIDs returns the scheduled workout IDs in creation order
func (u *UserRecord) WorkoutIDs() []string {
	ids := make([]string, 0, len(u.ScheduledWorkout))
	for id := range u.ScheduledWorkout {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool {
		a, b := u.ScheduledWorkout[ids[i]], u.ScheduledWorkout[ids[j]]
		if a.CreatedAt.Equal(b.CreatedAt) {
			return ids[i] < ids[j]
		}
		return a.CreatedAt.Before(b.CreatedAt)
	})
	return ids
}

// Reports returns the merged view of every scheduled report and every
// unscheduled workout, oldest first.
func (u *UserRecord) Reports() []Report {
	var reports []Report
	for wid, w := range u.ScheduledWorkout {
		for rid, r := range w.Reports {
			reports = append(reports, Report{
				ID:          rid,
				Kind:        ReportScheduled,
				CreatedAt:   r.CreatedAt,
				WorkoutID:   wid,
				WorkoutName: w.WorkoutName,
				Scheduled:   r,
			})
		}
	}
	for id, w := range u.UnscheduledWorkout {
		reports = append(reports, Report{
			ID:          id,
			Kind:        ReportUnscheduled,
			CreatedAt:   w.CreatedAt,
			WorkoutName: w.WorkoutName,
			Unscheduled: w,
		})
	}
	SortReports(reports)
	return reports
}
