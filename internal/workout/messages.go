package workout

import (
	"fmt"
	"strings"
	"time"

	"github.com/example/workoutbot/pkg/models"
)

const timestampLayout = "Monday, January 2, 2006 at 15:04"

// JoinDays renders a schedule as "Monday, Wednesday and Friday"
func JoinDays(days []string) string {
	switch len(days) {
	case 0:
		return ""
	case 1:
		return days[0]
	}
	return strings.Join(days[:len(days)-1], ", ") + " and " + days[len(days)-1]
}

// joinLines drops empty lines
func joinLines(lines ...string) string {
	var out []string
	for _, l := range lines {
		if l != "" {
			out = append(out, l)
		}
	}
	return strings.Join(out, "\n")
}

func labelled(label, value string) string {
	if value == "" {
		return ""
	}
	return label + value
}

func scheduleLine(days []string) string {
	if len(days) == 0 {
		return ""
	}
	return fmt.Sprintf("It should be done every %s.", JoinDays(days))
}

func scheduledMessage(w *models.ScheduledWorkout) string {
	return joinLines(
		fmt.Sprintf("The workout %s has been scheduled.", w.WorkoutName),
		scheduleLine(w.DaysScheduled),
		labelled("Muscle group(s) used: ", w.MuscleGroup),
		labelled("Weights used: ", w.WeightsUsed),
		labelled("A tutorial can be found at ", w.TutorialURL),
		w.ImgURL,
	)
}

func scheduledReportMessage(name string, r *models.ScheduledReport) string {
	return joinLines(
		fmt.Sprintf("Your report for %s has been saved. You marked it as %s.", name, r.Completion.Label()),
		labelled("Comment: ", r.Comment),
	)
}

func unscheduledMessage(u *models.UnscheduledWorkout) string {
	return joinLines(
		fmt.Sprintf("The unscheduled workout %s has been reported.", u.WorkoutName),
		labelled("Muscle group(s) used: ", u.MuscleGroup),
		labelled("Weights used: ", u.WeightsUsed),
		labelled("A tutorial can be found at ", u.TutorialURL),
		labelled("Comment: ", u.Comment),
		u.ImgURL,
	)
}

func editWorkoutMessage(name, field, value string, days []string) string {
	var fieldLine string
	if field != "" {
		fieldLine = fmt.Sprintf("The value for %s has been changed to %s", fieldLabel(field), value)
	}
	var daysLine string
	if days != nil {
		if len(days) == 0 {
			daysLine = "It is no longer scheduled on any day."
		} else {
			daysLine = fmt.Sprintf("It should now be done every %s.", JoinDays(days))
		}
	}
	return joinLines(fmt.Sprintf("The workout %s has been edited.", name), fieldLine, daysLine)
}

func editReportMessage(r models.Report, field, value string, loc *time.Location) string {
	return fmt.Sprintf("The report for the %s workout %s made at %s has been edited. The value for %s has been changed to %s",
		r.Kind, r.WorkoutName, r.CreatedAt.In(loc).Format(timestampLayout), fieldLabel(field), value)
}

func deleteWorkoutMessage(name string, total, kept int, keepReports bool) string {
	msg := fmt.Sprintf("The workout %s has been deleted.", name)
	switch {
	case total == 0:
		return msg
	case keepReports:
		return msg + fmt.Sprintf(" %d of its %d reports were saved as unscheduled workouts.", kept, total)
	}
	return msg + fmt.Sprintf(" Its %d reports were deleted with it.", total)
}

func deleteReportMessage(r models.Report, loc *time.Location) string {
	return fmt.Sprintf("The report for the %s workout %s made at %s has been deleted.",
		r.Kind, r.WorkoutName, r.CreatedAt.In(loc).Format(timestampLayout))
}

func workoutsMessage(entries []WorkoutEntry) string {
	if len(entries) == 0 {
		return "You have no scheduled workouts."
	}
	lines := []string{"Your scheduled workouts:"}
	for _, e := range entries {
		w := e.Workout
		line := "- " + w.WorkoutName
		if len(w.DaysScheduled) > 0 {
			line += ": every " + JoinDays(w.DaysScheduled)
		}
		line += fmt.Sprintf(" (%d reports)", len(w.Reports))
		lines = append(lines, line)
	}
	return strings.Join(lines, "\n")
}

func reportMessage(r models.Report, loc *time.Location) string {
	head := fmt.Sprintf("%s (%s) on %s", r.WorkoutName, r.Kind, r.CreatedAt.In(loc).Format(timestampLayout))
	if r.Kind == models.ReportScheduled {
		return joinLines(head,
			"Completion: "+r.Scheduled.Completion.Label(),
			labelled("Comment: ", r.Scheduled.Comment),
		)
	}
	u := r.Unscheduled
	return joinLines(head,
		labelled("Muscle group(s) used: ", u.MuscleGroup),
		labelled("Weights used: ", u.WeightsUsed),
		labelled("A tutorial can be found at ", u.TutorialURL),
		labelled("Comment: ", u.Comment),
		u.ImgURL,
	)
}

// ReminderMessage renders the reminder sent on a workout day
func ReminderMessage(r Reminder) string {
	lines := []string{fmt.Sprintf("Hey %s, today is a workout day!", r.Username)}
	for _, e := range r.Workouts {
		lines = append(lines, joinLines(
			"- "+e.Workout.WorkoutName,
			labelled("  Muscle group(s) used: ", e.Workout.MuscleGroup),
			labelled("  Weights used: ", e.Workout.WeightsUsed),
		))
	}
	lines = append(lines, "Don't forget to report how it went.")
	return strings.Join(lines, "\n")
}
