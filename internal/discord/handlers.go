package discord

import (
	"context"
	"fmt"
	"strings"

	"github.com/bwmarrin/discordgo"

	"github.com/example/workoutbot/internal/excel"
	"github.com/example/workoutbot/internal/workout"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// options indexes the options of one subcommand by name
type options map[string]*discordgo.ApplicationCommandInteractionDataOption

func newOptions(opts []*discordgo.ApplicationCommandInteractionDataOption) options {
	m := make(options, len(opts))
	for _, o := range opts {
		m[o.Name] = o
	}
	return m
}

// String returns the option's text, or "" when it was left out
func (o options) String(name string) string {
	opt, ok := o[name]
	if !ok {
		return ""
	}
	s, _ := opt.Value.(string)
	return s
}

func (o options) Bool(name string) bool {
	opt, ok := o[name]
	if !ok {
		return false
	}
	b, _ := opt.Value.(bool)
	return b
}

// Days collects prefix1..prefix7 in order, skipping the empty ones
func (o options) Days(prefix string) []string {
	var days []string
	for i := 1; i <= 7; i++ {
		if d := strings.TrimSpace(o.String(fmt.Sprintf("%s%d", prefix, i))); d != "" {
			days = append(days, d)
		}
	}
	return days
}

// Focused returns the option the user is typing into during autocomplete
func (o options) Focused() (*discordgo.ApplicationCommandInteractionDataOption, bool) {
	for _, opt := range o {
		if opt.Focused {
			return opt, true
		}
	}
	return nil, false
}

// response is what a subcommand sends back
type response struct {
	Content   string
	Ephemeral bool
	File      *discordgo.File
}

// Handler runs subcommands against the workout service. It does not touch
// the Discord session, so it can be driven directly in tests.
type Handler struct {
	svc *workout.Service
}

// NewHandler creates a handler for svc
func NewHandler(svc *workout.Service) *Handler {
	return &Handler{svc: svc}
}

func invalidArg(msg string) error {
	return &workout.Error{Kind: workout.ErrInvalidArgument, Msg: msg}
}

// pickedValue rejects the placeholder an autocomplete error choice leaves behind
func pickedValue(value string) (string, error) {
	if value == errorChoiceValue {
		return "", invalidArg("Please delete the command and try again. Make sure you fill in all fields in order.")
	}
	return value, nil
}

// Command runs one subcommand for user
func (h *Handler) Command(ctx context.Context, user workout.User, sub string, opts options) (response, error) {
	resp := response{Ephemeral: !opts.Bool(optShowEveryone)}
	var err error

	switch sub {
	case subScheduleRoutine:
		resp.Content, err = h.svc.ScheduleWorkout(ctx, user, workout.ScheduleInput{
			WorkoutName: opts.String(optWorkoutName),
			Days:        opts.Days(workoutDayPrefix),
			MuscleGroup: opts.String(optMuscleGroup),
			WeightsUsed: opts.String(optWeightsUsed),
			TutorialURL: opts.String(optTutorialURL),
			ImgURL:      opts.String(optImageURL),
		})

	case subReportScheduled:
		var name string
		if name, err = pickedValue(opts.String(optWorkoutName)); err == nil {
			resp.Content, err = h.svc.ReportScheduled(ctx, user, name, opts.String(optCompletion), opts.String(optComment))
		}

	case subReportUnscheduled:
		resp.Content, err = h.svc.ReportUnscheduled(ctx, user, workout.UnscheduledInput{
			WorkoutName: opts.String(optWorkoutName),
			MuscleGroup: opts.String(optMuscleGroup),
			WeightsUsed: opts.String(optWeightsUsed),
			TutorialURL: opts.String(optTutorialURL),
			ImgURL:      opts.String(optImageURL),
			Comment:     opts.String(optComment),
		})

	case subEditWorkout:
		var name string
		if name, err = pickedValue(opts.String(optWorkoutName)); err == nil {
			resp.Content, err = h.svc.EditWorkout(ctx, user, workout.WorkoutEdit{
				Workout:  name,
				Field:    opts.String(optFieldToChange),
				NewValue: opts.String(optNewValue),
				NewDays:  opts.Days(newSchedulePrefix),
			})
		}

	case subEditReport:
		var reportID, field string
		if reportID, err = h.pickReport(ctx, user.ID, opts, optReportToEdit); err != nil {
			break
		}
		if field, err = pickedValue(opts.String(optFieldToChange)); err != nil {
			break
		}
		resp.Content, err = h.svc.EditReport(ctx, user, reportID, field, opts.String(optNewValue))

	case subDeleteWorkout:
		var name string
		if name, err = pickedValue(opts.String(optWorkoutName)); err == nil {
			resp.Content, err = h.svc.DeleteWorkout(ctx, user, name, opts.Bool(optKeepReports))
		}

	case subDeleteReport:
		var reportID string
		if reportID, err = h.pickReport(ctx, user.ID, opts, optReportToDel); err == nil {
			resp.Content, err = h.svc.DeleteReport(ctx, user, reportID)
		}

	case subViewWorkouts:
		resp.Content, err = h.svc.DescribeWorkouts(ctx, user.ID)

	case subViewReport:
		var reportID string
		if reportID, err = h.pickReport(ctx, user.ID, opts, optReport); err == nil {
			resp.Content, err = h.svc.DescribeReport(ctx, user.ID, reportID)
		}

	case subExport:
		resp, err = h.export(ctx, user)

	default:
		err = invalidArg(fmt.Sprintf("Unknown command %q.", sub))
	}

	return resp, err
}

// pickReport resolves the year, month, day and report pickers to a report ID
func (h *Handler) pickReport(ctx context.Context, userID string, opts options, reportOption string) (string, error) {
	for _, name := range []string{optYear, optMonth, optDay, reportOption} {
		if _, err := pickedValue(opts.String(name)); err != nil {
			return "", err
		}
	}
	idx, err := h.svc.History(ctx, userID)
	if err != nil {
		return "", err
	}
	sel, err := idx.Resolve(opts.String(optYear), opts.String(optMonth), opts.String(optDay))
	if err != nil {
		return "", err
	}
	return idx.ReportID(sel, opts.String(reportOption))
}

// export attaches the user's workbook; it is only ever shown to the user
func (h *Handler) export(ctx context.Context, user workout.User) (response, error) {
	rec, err := h.svc.Record(ctx, user.ID)
	if err != nil {
		return response{}, err
	}
	f, err := excel.Export(rec, h.svc.Location())
	if err != nil {
		return response{}, err
	}
	defer f.Close()

	buf, err := f.WriteToBuffer()
	if err != nil {
		return response{}, fmt.Errorf("failed to write workbook: %w", err)
	}
	return response{
		Content:   "Here's everything you've scheduled and reported so far.",
		Ephemeral: true,
		File: &discordgo.File{
			Name:        "workouts.xlsx",
			ContentType: xlsxContentType,
			Reader:      buf,
		},
	}, nil
}
