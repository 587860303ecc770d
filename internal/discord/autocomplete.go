package discord

import (
	"context"
	"errors"
	"strings"

	"github.com/bwmarrin/discordgo"

	"github.com/example/workoutbot/internal/store"
	"github.com/example/workoutbot/internal/workout"
	"github.com/example/workoutbot/pkg/models"
)

// errorChoiceValue is the value of the single choice shown when a picker
// cannot be filled. Commands reject it.
const errorChoiceValue = "error"

// Discord caps choice names at 100 characters
const maxChoiceNameLength = 100

const (
	noReportsMessage  = "There are no workouts reported under your name. Get swole, then try again"
	noWorkoutsMessage = "There are no workouts scheduled under your name. Schedule one first"
	outOfOrderMessage = "Error: Please delete the command and try again. Make sure you fill in all fields in order."
)

func errorChoices(msg string) []workout.Choice {
	return []workout.Choice{{Name: msg, Value: errorChoiceValue}}
}

func weekdayChoices(typed string) []workout.Choice {
	choices := make([]workout.Choice, 0, len(models.Weekdays))
	for _, d := range models.Weekdays {
		choices = append(choices, workout.Choice{Name: d + "s", Value: d})
	}
	return workout.FilterChoices(choices, typed)
}

// Autocomplete lists the choices for the option being typed into
func (h *Handler) Autocomplete(ctx context.Context, userID, sub string, opts options) []workout.Choice {
	focused, ok := opts.Focused()
	if !ok {
		return nil
	}
	typed, _ := focused.Value.(string)
	name := focused.Name

	switch {
	case strings.HasPrefix(name, workoutDayPrefix), strings.HasPrefix(name, newSchedulePrefix):
		return weekdayChoices(typed)

	case name == optWorkoutName:
		choices, err := h.svc.WorkoutChoices(ctx, userID, typed)
		if err != nil && !errors.Is(err, store.ErrNotFound) {
			return errorChoices(workout.UserMessage(err))
		}
		if len(choices) == 0 {
			return errorChoices(noWorkoutsMessage)
		}
		return choices

	case name == optFieldToChange && sub == subEditReport:
		return h.fieldChoices(ctx, userID, opts)

	case name == optYear, name == optMonth, name == optDay,
		name == optReportToEdit, name == optReportToDel, name == optReport:
		return h.historyChoices(ctx, userID, name, typed, opts)
	}
	return nil
}

// historyChoices fills one level of the year, month, day and report drill-down
func (h *Handler) historyChoices(ctx context.Context, userID, level, typed string, opts options) []workout.Choice {
	idx, err := h.svc.History(ctx, userID)
	if errors.Is(err, store.ErrNotFound) || (err == nil && idx.Len() == 0) {
		return errorChoices(noReportsMessage)
	}
	if err != nil {
		return errorChoices(workout.UserMessage(err))
	}

	var year, month, day string
	switch level {
	case optMonth:
		year = opts.String(optYear)
	case optDay:
		year, month = opts.String(optYear), opts.String(optMonth)
	case optReportToEdit, optReportToDel, optReport:
		year, month, day = opts.String(optYear), opts.String(optMonth), opts.String(optDay)
	}
	if year == errorChoiceValue || month == errorChoiceValue || day == errorChoiceValue {
		return errorChoices(outOfOrderMessage)
	}

	var choices []workout.Choice
	if level == optYear {
		choices = idx.Years()
	} else {
		sel, err := idx.Resolve(year, month, day)
		if err != nil {
			return errorChoices(outOfOrderMessage)
		}
		switch level {
		case optMonth:
			choices = idx.Months(sel.Year)
		case optDay:
			choices = idx.Days(sel.Year, sel.Month)
		default:
			choices = idx.Reports(sel.Year, sel.Month, sel.Day)
		}
	}
	return workout.LimitChoices(workout.FilterChoices(choices, typed), workout.MaxChoices)
}

// fieldChoices lists the editable fields of the report picked so far
func (h *Handler) fieldChoices(ctx context.Context, userID string, opts options) []workout.Choice {
	reportID, err := h.pickReport(ctx, userID, opts, optReportToEdit)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return errorChoices(noReportsMessage)
		}
		return errorChoices(outOfOrderMessage)
	}
	choices, err := h.svc.ReportFieldChoices(ctx, userID, reportID)
	if err != nil {
		return errorChoices(outOfOrderMessage)
	}
	return choices
}

// toDiscordChoices converts choices, trimming names to Discord's limits
func toDiscordChoices(choices []workout.Choice) []*discordgo.ApplicationCommandOptionChoice {
	choices = workout.LimitChoices(choices, workout.MaxChoices)
	out := make([]*discordgo.ApplicationCommandOptionChoice, 0, len(choices))
	for _, c := range choices {
		out = append(out, &discordgo.ApplicationCommandOptionChoice{Name: truncate(c.Name, maxChoiceNameLength), Value: c.Value})
	}
	return out
}

func truncate(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max-1]) + "…"
}
