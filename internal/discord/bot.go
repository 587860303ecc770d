// Package discord serves the /workout slash command.
package discord

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/bwmarrin/discordgo"

	"github.com/example/workoutbot/internal/config"
	"github.com/example/workoutbot/internal/observability"
	"github.com/example/workoutbot/internal/workout"
)

// Discord drops interactions that are not answered within three seconds
const interactionTimeout = 3 * time.Second

const maxMessageLength = 2000

// Bot represents the Discord bot application
type Bot struct {
	session *discordgo.Session
	handler *Handler
	appID   string
	guildID string
}

// New creates a new bot instance
func New(cfg config.DiscordConfig, svc *workout.Service) (*Bot, error) {
	if cfg.Token == "" {
		return nil, fmt.Errorf("discord token is not set")
	}
	session, err := discordgo.New("Bot " + cfg.Token)
	if err != nil {
		return nil, fmt.Errorf("unable to create discord session: %v", err)
	}
	session.Identify.Intents = discordgo.IntentsGuilds | discordgo.IntentsDirectMessages

	b := &Bot{
		session: session,
		handler: NewHandler(svc),
		appID:   cfg.AppID,
		guildID: cfg.GuildID,
	}
	session.AddHandler(b.onReady)
	session.AddHandler(b.onInteraction)
	return b, nil
}

// Start opens the gateway connection and registers the commands
func (b *Bot) Start() error {
	if err := b.session.Open(); err != nil {
		return fmt.Errorf("unable to open discord session: %v", err)
	}

	appID := b.appID
	if appID == "" {
		appID = b.session.State.User.ID
	}
	if _, err := b.session.ApplicationCommandBulkOverwrite(appID, b.guildID, Commands()); err != nil {
		b.session.Close()
		return fmt.Errorf("unable to register commands: %v", err)
	}
	log.Printf("Registered /%s commands (guild %q)", CommandName, b.guildID)
	return nil
}

// Stop closes the gateway connection
func (b *Bot) Stop() {
	if err := b.session.Close(); err != nil {
		log.Printf("Error closing discord session: %v", err)
	}
	log.Println("Discord bot stopped")
}

// SendReminder implements the scheduler.Notifier interface with a direct message
func (b *Bot) SendReminder(ctx context.Context, userID, message string) error {
	channel, err := b.session.UserChannelCreate(userID, discordgo.WithContext(ctx))
	if err != nil {
		return fmt.Errorf("unable to open DM with %s: %v", userID, err)
	}
	if _, err := b.session.ChannelMessageSend(channel.ID, message, discordgo.WithContext(ctx)); err != nil {
		return fmt.Errorf("unable to send DM to %s: %v", userID, err)
	}
	return nil
}

func (b *Bot) onReady(s *discordgo.Session, r *discordgo.Ready) {
	log.Printf("Logged in to discord as %s", r.User.Username)
}

// interactionUser returns the author of an interaction in a guild or a DM
func interactionUser(i *discordgo.InteractionCreate) (workout.User, bool) {
	u := i.User
	if i.Member != nil && i.Member.User != nil {
		u = i.Member.User
	}
	if u == nil {
		return workout.User{}, false
	}
	return workout.User{ID: u.ID, Name: u.Username}, true
}

// subcommandOf splits /workout <sub> into the subcommand name and its options
func subcommandOf(data discordgo.ApplicationCommandInteractionData) (string, options, bool) {
	if data.Name != CommandName || len(data.Options) == 0 {
		return "", nil, false
	}
	sub := data.Options[0]
	return sub.Name, newOptions(sub.Options), true
}

func (b *Bot) onInteraction(s *discordgo.Session, i *discordgo.InteractionCreate) {
	user, ok := interactionUser(i)
	if !ok {
		return
	}

	switch i.Type {
	case discordgo.InteractionApplicationCommandAutocomplete:
		sub, opts, ok := subcommandOf(i.ApplicationCommandData())
		if !ok {
			return
		}
		ctx, cancel := context.WithTimeout(context.Background(), interactionTimeout)
		defer cancel()
		choices := b.handler.Autocomplete(ctx, user.ID, sub, opts)
		err := s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
			Type: discordgo.InteractionApplicationCommandAutocompleteResult,
			Data: &discordgo.InteractionResponseData{Choices: toDiscordChoices(choices)},
		})
		if err != nil {
			log.Printf("Error answering autocomplete for %s: %v", sub, err)
		}

	case discordgo.InteractionApplicationCommand:
		sub, opts, ok := subcommandOf(i.ApplicationCommandData())
		if !ok {
			return
		}
		ctx, cancel := context.WithTimeout(context.Background(), interactionTimeout)
		defer cancel()

		resp, err := b.handler.Command(ctx, user, sub, opts)
		observability.RecordCommand("discord", sub, err)
		if err != nil {
			log.Printf("Error handling /%s %s for user %s: %v", CommandName, sub, user.ID, err)
			resp = response{Content: workout.UserMessage(err), Ephemeral: true}
		}
		if err := s.InteractionRespond(i.Interaction, interactionResponse(resp)); err != nil {
			log.Printf("Error responding to %s: %v", sub, err)
		}
	}
}

func interactionResponse(resp response) *discordgo.InteractionResponse {
	data := &discordgo.InteractionResponseData{Content: truncate(resp.Content, maxMessageLength)}
	if resp.Ephemeral {
		data.Flags = discordgo.MessageFlagsEphemeral
	}
	if resp.File != nil {
		data.Files = []*discordgo.File{resp.File}
	}
	return &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: data,
	}
}
