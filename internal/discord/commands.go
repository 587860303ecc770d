package discord

import (
	"fmt"

	"github.com/bwmarrin/discordgo"

	"github.com/example/workoutbot/internal/workout"
	"github.com/example/workoutbot/pkg/models"
)

// CommandName is the single top-level slash command; everything else is a subcommand
const CommandName = "workout"

// Subcommand names
const (
	subScheduleRoutine   = "schedule_routine"
	subReportScheduled   = "report_scheduled"
	subReportUnscheduled = "report_unscheduled"
	subEditWorkout       = "edit_workout"
	subEditReport        = "edit_report"
	subDeleteWorkout     = "delete_workout"
	subDeleteReport      = "delete_report"
	subViewWorkouts      = "view_workouts"
	subViewReport        = "view_report"
	subExport            = "export"
)

// Option names shared between subcommands
const (
	optWorkoutName   = "workout_name"
	optMuscleGroup   = "muscle_group"
	optWeightsUsed   = "weights_used"
	optTutorialURL   = "tutorial_url"
	optImageURL      = "image_url"
	optShowEveryone  = "show_everyone"
	optCompletion    = "completion"
	optComment       = "comment"
	optFieldToChange = "field_to_change"
	optNewValue      = "new_value"
	optKeepReports   = "keep_reports"
	optYear          = "year"
	optMonth         = "month"
	optDay           = "day"
	optReportToEdit  = "report_to_edit"
	optReportToDel   = "report_to_delete"
	optReport        = "report"

	workoutDayPrefix  = "workout_day_"
	newSchedulePrefix = "new_schedule_day_"
)

func stringOption(name, description string, required bool) *discordgo.ApplicationCommandOption {
	return &discordgo.ApplicationCommandOption{
		Type:        discordgo.ApplicationCommandOptionString,
		Name:        name,
		Description: description,
		Required:    required,
	}
}

func autocompleteOption(name, description string, required bool) *discordgo.ApplicationCommandOption {
	o := stringOption(name, description, required)
	o.Autocomplete = true
	return o
}

func workoutNameOption(description string) *discordgo.ApplicationCommandOption {
	o := stringOption(optWorkoutName, description, true)
	o.MaxLength = workout.MaxWorkoutNameLength
	return o
}

func showEveryoneOption() *discordgo.ApplicationCommandOption {
	return &discordgo.ApplicationCommandOption{
		Type:        discordgo.ApplicationCommandOptionBoolean,
		Name:        optShowEveryone,
		Description: "Want the post to be visible to everyone?",
	}
}

func dayOptions(prefix, description string) []*discordgo.ApplicationCommandOption {
	opts := make([]*discordgo.ApplicationCommandOption, 0, len(models.Weekdays))
	for i := range models.Weekdays {
		opts = append(opts, autocompleteOption(fmt.Sprintf("%s%d", prefix, i+1), description, false))
	}
	return opts
}

// drillDownOptions are the year, month, day and report pickers of the report commands
func drillDownOptions(reportOption, reportDescription string) []*discordgo.ApplicationCommandOption {
	return []*discordgo.ApplicationCommandOption{
		autocompleteOption(optYear, "What year did this session take place? (or input the word latest)", true),
		autocompleteOption(optMonth, "What month did this session take place?", true),
		autocompleteOption(optDay, "What day did this session take place?", true),
		autocompleteOption(reportOption, reportDescription, true),
	}
}

func completionChoices() []*discordgo.ApplicationCommandOptionChoice {
	choices := make([]*discordgo.ApplicationCommandOptionChoice, 0, len(models.Completions))
	for _, c := range models.Completions {
		choices = append(choices, &discordgo.ApplicationCommandOptionChoice{Name: c.Label(), Value: string(c)})
	}
	return choices
}

func workoutFieldChoices() []*discordgo.ApplicationCommandOptionChoice {
	labels := map[string]string{
		workout.FieldWorkoutName: "workout name",
		workout.FieldMuscleGroup: "muscle groups",
		workout.FieldWeightsUsed: "weights used",
		workout.FieldTutorialURL: "tutorial url",
		workout.FieldImgURL:      "image url",
	}
	var choices []*discordgo.ApplicationCommandOptionChoice
	for _, f := range workout.EditableWorkoutFields() {
		choices = append(choices, &discordgo.ApplicationCommandOptionChoice{Name: labels[f], Value: f})
	}
	return choices
}

func subcommand(name, description string, opts ...*discordgo.ApplicationCommandOption) *discordgo.ApplicationCommandOption {
	return &discordgo.ApplicationCommandOption{
		Type:        discordgo.ApplicationCommandOptionSubCommand,
		Name:        name,
		Description: description,
		Options:     opts,
	}
}

// Commands returns the application commands registered on start-up
func Commands() []*discordgo.ApplicationCommand {
	schedule := []*discordgo.ApplicationCommandOption{
		workoutNameOption("What should this workout routine be called?"),
	}
	schedule = append(schedule, dayOptions(workoutDayPrefix, "Schedule a workout for this day every week")...)
	schedule = append(schedule,
		stringOption(optMuscleGroup, "Which muscle group(s) will the workout work out?", false),
		stringOption(optWeightsUsed, "Which weights will the workout use?", false),
		stringOption(optTutorialURL, "A link to a tutorial that explains how to do the workout", false),
		stringOption(optImageURL, "A link to an image or gif to be shown with relevant messages", false),
		showEveryoneOption(),
	)

	completion := stringOption(optCompletion, "How much of the workout did you get through?", true)
	completion.Choices = completionChoices()

	editField := stringOption(optFieldToChange, "Which field within the workout would you like to change?", false)
	editField.Choices = workoutFieldChoices()
	editWorkout := []*discordgo.ApplicationCommandOption{
		autocompleteOption(optWorkoutName, "Which workout would you like to edit?", true),
		editField,
		stringOption(optNewValue, "What should the field be changed to? (leave blank if you only want to change the schedule)", false),
	}
	editWorkout = append(editWorkout, dayOptions(newSchedulePrefix,
		"Want to change the schedule? Input it here, or leave this unfilled to keep the same schedule.")...)
	editWorkout = append(editWorkout, showEveryoneOption())

	editReport := drillDownOptions(optReportToEdit, "What report would you like to edit?")
	editReport = append(editReport,
		autocompleteOption(optFieldToChange, "Which field within the report would you like to change?", true),
		stringOption(optNewValue, "What should it be changed to?", true),
		showEveryoneOption(),
	)

	deleteReport := append(drillDownOptions(optReportToDel, "What report would you like to delete?"), showEveryoneOption())
	viewReport := append(drillDownOptions(optReport, "What report would you like to see?"), showEveryoneOption())

	return []*discordgo.ApplicationCommand{{
		Name:        CommandName,
		Description: "Tracks workout data for server members",
		Options: []*discordgo.ApplicationCommandOption{
			subcommand(subScheduleRoutine, "Create a workout and schedule out which days you'll do it", schedule...),
			subcommand(subReportScheduled, "Report a workout routine you've followed according to schedule",
				autocompleteOption(optWorkoutName, "Which scheduled workout would you like to submit a report for?", true),
				completion,
				stringOption(optComment, "Is there anything you'd like to note about how the workout session went?", false),
				showEveryoneOption(),
			),
			subcommand(subReportUnscheduled, "Report a workout routine you didn't schedule ahead of time",
				workoutNameOption("What should this unscheduled workout be called?"),
				stringOption(optMuscleGroup, "Which muscle group(s) did the workout work out?", false),
				stringOption(optWeightsUsed, "Which weights did the workout use?", false),
				stringOption(optTutorialURL, "A link to a tutorial that explains how to do the workout", false),
				stringOption(optImageURL, "A link to an image or gif to be shown with relevant messages", false),
				stringOption(optComment, "Is there anything you'd like to note about how the workout session went?", false),
				showEveryoneOption(),
			),
			subcommand(subEditWorkout, "Edit a scheduled workout routine", editWorkout...),
			subcommand(subEditReport, "Edit the report for a past workout session", editReport...),
			subcommand(subDeleteWorkout, "Delete a scheduled workout routine",
				autocompleteOption(optWorkoutName, "Which workout would you like to delete?", true),
				&discordgo.ApplicationCommandOption{
					Type:        discordgo.ApplicationCommandOptionBoolean,
					Name:        optKeepReports,
					Description: "Keep the sessions you reported as unscheduled workouts?",
				},
				showEveryoneOption(),
			),
			subcommand(subDeleteReport, "Delete the report for a past workout session", deleteReport...),
			subcommand(subViewWorkouts, "List your scheduled workout routines", showEveryoneOption()),
			subcommand(subViewReport, "Show the report for a past workout session", viewReport...),
			subcommand(subExport, "Download everything you've scheduled and reported as a spreadsheet"),
		},
	}}
}
