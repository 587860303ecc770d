package bot

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strconv"
	"strings"
	"time"
	"unicode"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/example/workoutbot/internal/excel"
	"github.com/example/workoutbot/internal/observability"
	"github.com/example/workoutbot/internal/store"
	"github.com/example/workoutbot/internal/workout"
	"github.com/example/workoutbot/pkg/models"
)

// Constants for callback data
const (
	callbackWorkouts = "w:l"
	callbackHistory  = "h:y"

	scopeWorkouts = "w"
	scopeHistory  = "h"
)

// completionCodes keep callback data short
var completionCodes = map[string]models.Completion{
	"c": models.CompletionComplete,
	"p": models.CompletionPartiallyComplete,
	"s": models.CompletionSkipped,
}

const helpText = `Workout tracker commands:

/schedule name | days | muscles | weights - schedule a workout, e.g.
/schedule Push Day | Monday, Thursday | chest | 60kg
/report name | completion | comment - report a scheduled workout (complete, partially complete or skipped)
/log name | muscles | weights | comment - log a workout you didn't schedule
/workouts - list, report and delete your scheduled workouts
/history - browse, edit and delete your past reports
/export - download everything as a spreadsheet
/cancel - stop editing a report`

// callback is parsed callback data such as "h:d:2024:2"
type callback struct {
	Scope  string
	Action string
	Args   []string
}

func parseCallback(data string) (callback, error) {
	parts := strings.Split(data, ":")
	if len(parts) < 2 || parts[0] == "" || parts[1] == "" {
		return callback{}, fmt.Errorf("malformed callback data %q", data)
	}
	return callback{Scope: parts[0], Action: parts[1], Args: parts[2:]}, nil
}

func callbackData(scope, action string, args ...string) string {
	return strings.Join(append([]string{scope, action}, args...), ":")
}

// arg returns the i-th argument or ""
func (c callback) arg(i int) string {
	if i < len(c.Args) {
		return c.Args[i]
	}
	return ""
}

// splitArgs splits "a | b | c" into trimmed fields
func splitArgs(args string) []string {
	if strings.TrimSpace(args) == "" {
		return nil
	}
	parts := strings.Split(args, "|")
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}
	return parts
}

func field(parts []string, i int) string {
	if i < len(parts) {
		return parts[i]
	}
	return ""
}

// splitDays accepts "Monday, Thursday" as well as "Monday Thursday"
func splitDays(s string) []string {
	return strings.FieldsFunc(s, func(r rune) bool {
		return r == ',' || unicode.IsSpace(r)
	})
}

// HandleCommand handles bot commands
func (b *Bot) HandleCommand(ctx context.Context, message *tgbotapi.Message) error {
	var err error
	switch message.Command() {
	case "start":
		err = b.handleStart(ctx, message)
	case "help":
		b.sendText(message.Chat.ID, helpText)
	case "schedule":
		err = b.handleSchedule(ctx, message)
	case "report":
		err = b.handleReport(ctx, message)
	case "log":
		err = b.handleLog(ctx, message)
	case "workouts":
		err = b.sendWorkouts(ctx, message.Chat.ID, workoutUser(message.From))
	case "history":
		err = b.sendHistory(ctx, message.Chat.ID, workoutUser(message.From), callback{Scope: scopeHistory, Action: "y"})
	case "export":
		err = b.handleExport(ctx, message)
	case "cancel":
		b.takeState(message.From.ID)
		b.sendText(message.Chat.ID, "Okay, nothing was changed.")
	case "stats":
		err = b.handleStats(ctx, message)
	default:
		msg := tgbotapi.NewMessage(message.Chat.ID, "Unknown command. Use /help to see what I can do.")
		msg.ReplyMarkup = createKeyboard(b.MainMenuButtons())
		b.send(msg)
	}
	return err
}

func (b *Bot) handleStart(ctx context.Context, message *tgbotapi.Message) error {
	user := workoutUser(message.From)
	if _, err := b.svc.AddUser(ctx, user); err != nil && !errors.Is(err, store.ErrAlreadyExists) {
		return err
	}

	msg := tgbotapi.NewMessage(message.Chat.ID, fmt.Sprintf("Welcome, %s! Let's get swole. 💪\n\n%s", user.Name, helpText))
	msg.ReplyMarkup = createKeyboard(b.MainMenuButtons())
	b.send(msg)
	return nil
}

func (b *Bot) handleSchedule(ctx context.Context, message *tgbotapi.Message) error {
	parts := splitArgs(message.CommandArguments())
	if len(parts) == 0 {
		b.sendText(message.Chat.ID, "Usage: /schedule name | days | muscles | weights | tutorial url | image url")
		return nil
	}
	text, err := b.svc.ScheduleWorkout(ctx, workoutUser(message.From), workout.ScheduleInput{
		WorkoutName: field(parts, 0),
		Days:        splitDays(field(parts, 1)),
		MuscleGroup: field(parts, 2),
		WeightsUsed: field(parts, 3),
		TutorialURL: field(parts, 4),
		ImgURL:      field(parts, 5),
	})
	if err != nil {
		return err
	}
	b.sendText(message.Chat.ID, text)
	return nil
}

func (b *Bot) handleReport(ctx context.Context, message *tgbotapi.Message) error {
	user := workoutUser(message.From)
	parts := splitArgs(message.CommandArguments())
	if len(parts) == 0 {
		return b.sendWorkouts(ctx, message.Chat.ID, user)
	}
	completion := field(parts, 1)
	if completion == "" {
		completion = string(models.CompletionComplete)
	}
	text, err := b.svc.ReportScheduled(ctx, user, field(parts, 0), completion, field(parts, 2))
	if err != nil {
		return err
	}
	b.sendText(message.Chat.ID, text)
	return nil
}

func (b *Bot) handleLog(ctx context.Context, message *tgbotapi.Message) error {
	parts := splitArgs(message.CommandArguments())
	if len(parts) == 0 {
		b.sendText(message.Chat.ID, "Usage: /log name | muscles | weights | comment")
		return nil
	}
	text, err := b.svc.ReportUnscheduled(ctx, workoutUser(message.From), workout.UnscheduledInput{
		WorkoutName: field(parts, 0),
		MuscleGroup: field(parts, 1),
		WeightsUsed: field(parts, 2),
		Comment:     field(parts, 3),
	})
	if err != nil {
		return err
	}
	b.sendText(message.Chat.ID, text)
	return nil
}

func (b *Bot) handleExport(ctx context.Context, message *tgbotapi.Message) error {
	rec, err := b.svc.Record(ctx, workoutUser(message.From).ID)
	if err != nil {
		return err
	}
	f, err := excel.Export(rec, b.svc.Location())
	if err != nil {
		return err
	}
	defer f.Close()

	buf, err := f.WriteToBuffer()
	if err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}
	doc := tgbotapi.NewDocument(message.Chat.ID, tgbotapi.FileBytes{Name: "workouts.xlsx", Bytes: buf.Bytes()})
	doc.Caption = "Here's everything you've scheduled and reported so far."
	if _, err := b.api.Send(doc); err != nil {
		return fmt.Errorf("failed to send workbook: %w", err)
	}
	return nil
}

func (b *Bot) handleStats(ctx context.Context, message *tgbotapi.Message) error {
	if !b.isAdmin(message.From.ID) {
		b.sendText(message.Chat.ID, "This command is only available for administrators.")
		return nil
	}
	st, err := b.svc.Stats(ctx)
	if err != nil {
		return err
	}
	b.sendText(message.Chat.ID, fmt.Sprintf("Users: %d\nScheduled workouts: %d\nScheduled reports: %d\nUnscheduled workouts: %d",
		st.Users, st.Workouts, st.Reports, st.Unscheduled))
	return nil
}

// handleNewValue applies the message text to the report field picked in /history
func (b *Bot) handleNewValue(ctx context.Context, message *tgbotapi.Message, state UserState) error {
	text, err := b.svc.EditReport(ctx, workoutUser(message.From), state.ReportID, state.Field, message.Text)
	if err != nil {
		return err
	}
	b.sendText(message.Chat.ID, text)
	return nil
}

// handleCallbackQuery handles callback queries from buttons
func (b *Bot) handleCallbackQuery(ctx context.Context, query *tgbotapi.CallbackQuery) {
	if _, err := b.api.Request(tgbotapi.NewCallback(query.ID, "")); err != nil {
		log.Printf("Error answering callback: %v", err)
	}
	if query.Message == nil || query.From == nil {
		return
	}
	chatID := query.Message.Chat.ID
	user := workoutUser(query.From)

	cb, err := parseCallback(query.Data)
	if err != nil {
		log.Printf("Error parsing callback: %v", err)
		return
	}

	switch cb.Scope {
	case scopeWorkouts:
		err = b.handleWorkoutCallback(ctx, chatID, user, cb)
	case scopeHistory:
		err = b.handleHistoryCallback(ctx, chatID, query.From.ID, user, cb)
	default:
		err = fmt.Errorf("unknown callback scope %q", cb.Scope)
	}
	observability.RecordCommand("telegram", "callback_"+cb.Scope+cb.Action, err)
	if err != nil {
		log.Printf("Error handling callback %q for user %s: %v", query.Data, user.ID, err)
		b.sendText(chatID, workout.UserMessage(err))
	}
}

func (b *Bot) handleWorkoutCallback(ctx context.Context, chatID int64, user workout.User, cb callback) error {
	switch cb.Action {
	case "l":
		return b.sendWorkouts(ctx, chatID, user)

	case "c":
		completion, ok := completionCodes[cb.arg(1)]
		if !ok {
			return fmt.Errorf("unknown completion code %q", cb.arg(1))
		}
		text, err := b.svc.ReportScheduled(ctx, user, cb.arg(0), string(completion), "")
		if err != nil {
			return err
		}
		b.sendText(chatID, text)

	case "x":
		msg := tgbotapi.NewMessage(chatID, "Keep the sessions you reported as unscheduled workouts?")
		msg.ReplyMarkup = createKeyboard([][]MenuButton{{
			{Text: "💾 Keep reports", CallbackData: callbackData(scopeWorkouts, "d", cb.arg(0), "k")},
			{Text: "🗑 Delete everything", CallbackData: callbackData(scopeWorkouts, "d", cb.arg(0), "d")},
		}})
		b.send(msg)

	case "d":
		text, err := b.svc.DeleteWorkout(ctx, user, cb.arg(0), cb.arg(1) == "k")
		if err != nil {
			return err
		}
		b.sendText(chatID, text)

	default:
		return fmt.Errorf("unknown workout action %q", cb.Action)
	}
	return nil
}

func (b *Bot) handleHistoryCallback(ctx context.Context, chatID, telegramID int64, user workout.User, cb callback) error {
	switch cb.Action {
	case "e":
		b.setState(telegramID, UserState{
			State:     stateAwaitingValue,
			ReportID:  cb.arg(0),
			Field:     cb.arg(1),
			Timestamp: time.Now(),
		})
		b.sendText(chatID, fmt.Sprintf("Send me the new %s, or /cancel.", strings.ReplaceAll(cb.arg(1), "_", " ")))
		return nil

	case "x":
		text, err := b.svc.DeleteReport(ctx, user, cb.arg(0))
		if err != nil {
			return err
		}
		b.sendText(chatID, text)
		return nil
	}
	return b.sendHistory(ctx, chatID, user, cb)
}

// workoutsView lists the scheduled workouts with report and delete buttons
func (b *Bot) workoutsView(ctx context.Context, user workout.User) (string, [][]MenuButton, error) {
	entries, err := b.svc.ListWorkouts(ctx, user.ID)
	if err != nil {
		return "", nil, err
	}
	text, err := b.svc.DescribeWorkouts(ctx, user.ID)
	if err != nil {
		return "", nil, err
	}

	var rows [][]MenuButton
	for _, e := range entries {
		rows = append(rows, []MenuButton{
			{Text: "✅ " + shorten(e.Workout.WorkoutName, 20), CallbackData: callbackData(scopeWorkouts, "c", e.ID, "c")},
			{Text: "➖ Partly", CallbackData: callbackData(scopeWorkouts, "c", e.ID, "p")},
			{Text: "⏭ Skipped", CallbackData: callbackData(scopeWorkouts, "c", e.ID, "s")},
			{Text: "🗑", CallbackData: callbackData(scopeWorkouts, "x", e.ID)},
		})
	}
	return text, rows, nil
}

func (b *Bot) sendWorkouts(ctx context.Context, chatID int64, user workout.User) error {
	text, rows, err := b.workoutsView(ctx, user)
	if err != nil {
		return err
	}
	msg := tgbotapi.NewMessage(chatID, b.truncate(text))
	if len(rows) > 0 {
		msg.ReplyMarkup = createKeyboard(rows)
	}
	b.send(msg)
	return nil
}

// historyView renders one level of the year, month, day and report drill-down
func (b *Bot) historyView(ctx context.Context, user workout.User, cb callback) (string, [][]MenuButton, error) {
	idx, err := b.svc.History(ctx, user.ID)
	if err != nil {
		return "", nil, err
	}
	if idx.Len() == 0 {
		return "", nil, store.ErrNotFound
	}

	switch cb.Action {
	case "y":
		rows := b.choiceRows(idx.Years(), func(v string) string { return callbackData(scopeHistory, "m", v) })
		rows = append(rows, []MenuButton{{Text: "⏩ Latest report", CallbackData: callbackData(scopeHistory, "v", workout.Latest)}})
		return "Pick a year:", rows, nil

	case "m":
		sel, err := idx.Resolve(cb.arg(0), "", "")
		if err != nil {
			return "", nil, err
		}
		year := strconv.Itoa(sel.Year)
		rows := b.choiceRows(idx.Months(sel.Year), func(v string) string { return callbackData(scopeHistory, "d", year, v) })
		return fmt.Sprintf("Pick a month of %d:", sel.Year), rows, nil

	case "d":
		sel, err := idx.Resolve(cb.arg(0), cb.arg(1), "")
		if err != nil {
			return "", nil, err
		}
		year, month := strconv.Itoa(sel.Year), strconv.Itoa(int(sel.Month))
		rows := b.choiceRows(idx.Days(sel.Year, sel.Month), func(v string) string { return callbackData(scopeHistory, "r", year, month, v) })
		return fmt.Sprintf("Pick a day of %s %d:", sel.Month, sel.Year), rows, nil

	case "r":
		sel, err := idx.Resolve(cb.arg(0), cb.arg(1), cb.arg(2))
		if err != nil {
			return "", nil, err
		}
		var rows [][]MenuButton
		for _, c := range workout.LimitChoices(idx.Reports(sel.Year, sel.Month, sel.Day), workout.MaxChoices) {
			if c.Value == workout.Latest {
				continue
			}
			rows = append(rows, []MenuButton{{Text: c.Name, CallbackData: callbackData(scopeHistory, "v", c.Value)}})
		}
		day := time.Date(sel.Year, sel.Month, sel.Day, 0, 0, 0, 0, idx.Location())
		return fmt.Sprintf("Reports of %s:", day.Format("January 2, 2006")), rows, nil

	case "v":
		reportID, err := idx.ReportID(workout.Selection{}, cb.arg(0))
		if err != nil {
			return "", nil, err
		}
		text, err := b.svc.DescribeReport(ctx, user.ID, reportID)
		if err != nil {
			return "", nil, err
		}
		choices, err := b.svc.ReportFieldChoices(ctx, user.ID, reportID)
		if err != nil {
			return "", nil, err
		}
		var buttons []MenuButton
		for _, c := range choices {
			buttons = append(buttons, MenuButton{Text: "✏️ " + c.Name, CallbackData: callbackData(scopeHistory, "e", reportID, c.Value)})
		}
		rows := b.layout(buttons)
		rows = append(rows, []MenuButton{{Text: "🗑 Delete report", CallbackData: callbackData(scopeHistory, "x", reportID)}})
		return text, rows, nil
	}
	return "", nil, fmt.Errorf("unknown history action %q", cb.Action)
}

func (b *Bot) sendHistory(ctx context.Context, chatID int64, user workout.User, cb callback) error {
	text, rows, err := b.historyView(ctx, user, cb)
	if err != nil {
		return err
	}
	msg := tgbotapi.NewMessage(chatID, b.truncate(text))
	if len(rows) > 0 {
		msg.ReplyMarkup = createKeyboard(rows)
	}
	b.send(msg)
	return nil
}

// choiceRows turns bucket choices into buttons. Buttons are explicit, so
// the "latest" sentinel is left out.
func (b *Bot) choiceRows(choices []workout.Choice, data func(value string) string) [][]MenuButton {
	var buttons []MenuButton
	for _, c := range workout.LimitChoices(choices, workout.MaxChoices) {
		if c.Value == workout.Latest {
			continue
		}
		buttons = append(buttons, MenuButton{Text: c.Name, CallbackData: data(c.Value)})
	}
	return b.layout(buttons)
}

// layout wraps buttons into rows of ButtonsPerRow
func (b *Bot) layout(buttons []MenuButton) [][]MenuButton {
	var rows [][]MenuButton
	for len(buttons) > 0 {
		n := b.config.ButtonsPerRow
		if n > len(buttons) {
			n = len(buttons)
		}
		rows = append(rows, buttons[:n])
		buttons = buttons[n:]
	}
	return rows
}

func shorten(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max-1]) + "…"
}
