// Package bot serves the workout commands over Telegram.
package bot

import (
	"context"
	"fmt"
	"log"
	"strconv"
	"strings"
	"sync"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/example/workoutbot/internal/config"
	"github.com/example/workoutbot/internal/observability"
	"github.com/example/workoutbot/internal/scheduler"
	"github.com/example/workoutbot/internal/workout"
)

// MenuButton represents a button in the menu
type MenuButton struct {
	Text         string
	CallbackData string
}

// createKeyboard creates a keyboard from menu buttons
func createKeyboard(buttons [][]MenuButton) tgbotapi.InlineKeyboardMarkup {
	var keyboard [][]tgbotapi.InlineKeyboardButton
	for _, row := range buttons {
		var keyboardRow []tgbotapi.InlineKeyboardButton
		for _, button := range row {
			keyboardRow = append(keyboardRow, tgbotapi.NewInlineKeyboardButtonData(button.Text, button.CallbackData))
		}
		keyboard = append(keyboard, keyboardRow)
	}
	return tgbotapi.NewInlineKeyboardMarkup(keyboard...)
}

// sender is the part of the Telegram API the bot talks through
type sender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error)
}

// UserState represents the current state of a user in conversation with the bot
type UserState struct {
	State     string
	ReportID  string
	Field     string
	Timestamp time.Time
}

const stateAwaitingValue = "awaiting_value"

// Bot represents the Telegram bot application
type Bot struct {
	api          sender
	botAPI       *tgbotapi.BotAPI
	token        string
	svc          *workout.Service
	config       *BotConfig
	adminUserIDs map[int64]bool

	mu         sync.Mutex
	userStates map[int64]UserState
}

// New creates a new bot instance
func New(cfg config.TelegramConfig, svc *workout.Service) (*Bot, error) {
	if cfg.Token == "" {
		return nil, fmt.Errorf("telegram token is not set")
	}

	bot := &Bot{
		token:        cfg.Token,
		svc:          svc,
		config:       DefaultConfig(),
		adminUserIDs: make(map[int64]bool),
		userStates:   make(map[int64]UserState),
	}
	for _, id := range cfg.AdminIDs {
		bot.adminUserIDs[id] = true
	}
	return bot, nil
}

// Connect authorizes the bot token with Telegram
func (b *Bot) Connect() error {
	botAPI, err := tgbotapi.NewBotAPI(b.token)
	if err != nil {
		return fmt.Errorf("unable to create bot: %v", err)
	}
	b.botAPI = botAPI
	b.api = botAPI
	log.Printf("Authorized on account %s", botAPI.Self.UserName)
	return nil
}

// Start handles updates until ctx is done. Connect must be called first.
func (b *Bot) Start(ctx context.Context) error {
	if b.botAPI == nil {
		return fmt.Errorf("telegram bot is not connected")
	}

	updateConfig := tgbotapi.NewUpdate(0)
	updateConfig.Timeout = b.config.UpdateTimeout
	updates := b.botAPI.GetUpdatesChan(updateConfig)

	go func() {
		<-ctx.Done()
		b.botAPI.StopReceivingUpdates()
	}()

	for update := range updates {
		go b.handleUpdate(ctx, update)
	}
	log.Println("Telegram bot stopped")
	return nil
}

// UserKey is the store key of a Telegram user
func UserKey(telegramID int64) string {
	return scheduler.TelegramPrefix + strconv.FormatInt(telegramID, 10)
}

// chatIDFromKey reverses UserKey. Private chats share the user's ID.
func chatIDFromKey(userKey string) (int64, error) {
	if !strings.HasPrefix(userKey, scheduler.TelegramPrefix) {
		return 0, fmt.Errorf("%q is not a telegram user", userKey)
	}
	return strconv.ParseInt(strings.TrimPrefix(userKey, scheduler.TelegramPrefix), 10, 64)
}

// SendReminder implements the scheduler.Notifier interface
func (b *Bot) SendReminder(_ context.Context, userKey, message string) error {
	if b.api == nil {
		return fmt.Errorf("telegram bot is not connected")
	}
	chatID, err := chatIDFromKey(userKey)
	if err != nil {
		return err
	}
	msg := tgbotapi.NewMessage(chatID, message)
	msg.ReplyMarkup = createKeyboard(b.MainMenuButtons())
	_, err = b.api.Send(msg)
	return err
}

// isAdmin checks if a user is an admin
func (b *Bot) isAdmin(userID int64) bool {
	return b.adminUserIDs[userID]
}

func (b *Bot) setState(userID int64, state UserState) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.userStates[userID] = state
}

// takeState removes and returns the user's pending state, ignoring expired ones
func (b *Bot) takeState(userID int64) (UserState, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	state, ok := b.userStates[userID]
	delete(b.userStates, userID)
	if ok && time.Since(state.Timestamp) > b.config.EditTimeout {
		return UserState{}, false
	}
	return state, ok
}

func workoutUser(from *tgbotapi.User) workout.User {
	name := from.UserName
	if name == "" {
		name = strings.TrimSpace(from.FirstName + " " + from.LastName)
	}
	return workout.User{ID: UserKey(from.ID), Name: name}
}

// handleUpdate handles incoming updates from Telegram
func (b *Bot) handleUpdate(ctx context.Context, update tgbotapi.Update) {
	if update.Message != nil && update.Message.From != nil {
		message := update.Message
		if message.IsCommand() {
			command := message.Command()
			err := b.HandleCommand(ctx, message)
			observability.RecordCommand("telegram", command, err)
			if err != nil {
				log.Printf("Error handling /%s for user %d: %v", command, message.From.ID, err)
				b.sendText(message.Chat.ID, workout.UserMessage(err))
			}
			return
		}

		state, ok := b.takeState(message.From.ID)
		if !ok || state.State != stateAwaitingValue {
			msg := tgbotapi.NewMessage(message.Chat.ID, "I don't understand. Use /help to see what I can do.")
			msg.ReplyMarkup = createKeyboard(b.MainMenuButtons())
			b.send(msg)
			return
		}
		err := b.handleNewValue(ctx, message, state)
		observability.RecordCommand("telegram", "edit_report", err)
		if err != nil {
			log.Printf("Error editing report %s for user %d: %v", state.ReportID, message.From.ID, err)
			b.sendText(message.Chat.ID, workout.UserMessage(err))
		}
	} else if update.CallbackQuery != nil {
		b.handleCallbackQuery(ctx, update.CallbackQuery)
	}
}

func (b *Bot) send(c tgbotapi.Chattable) {
	if _, err := b.api.Send(c); err != nil {
		log.Printf("Error sending message: %v", err)
	}
}

// sendText sends plain text, cut to the Telegram limit
func (b *Bot) sendText(chatID int64, text string) {
	b.send(tgbotapi.NewMessage(chatID, b.truncate(text)))
}

func (b *Bot) truncate(text string) string {
	runes := []rune(text)
	if len(runes) <= b.config.MaxMessageLength {
		return text
	}
	return string(runes[:b.config.MaxMessageLength-1]) + "…"
}

// MainMenuButtons returns the buttons for the main menu
func (b *Bot) MainMenuButtons() [][]MenuButton {
	return [][]MenuButton{
		{
			{Text: "📋 My workouts", CallbackData: callbackWorkouts},
			{Text: "📅 History", CallbackData: callbackHistory},
		},
	}
}
