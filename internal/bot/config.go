package bot

import (
	"time"
)

// BotConfig represents the configuration for the bot
type BotConfig struct {
	// How long the bot waits for the new value of a report field
	EditTimeout time.Duration
	// Buttons per keyboard row in the history drill-down
	ButtonsPerRow int
	// Telegram rejects longer messages
	MaxMessageLength int
	// Long polling timeout in seconds
	UpdateTimeout int
}

// DefaultConfig returns the default bot configuration
func DefaultConfig() *BotConfig {
	return &BotConfig{
		EditTimeout:      time.Minute * 10,
		ButtonsPerRow:    3,
		MaxMessageLength: 4096,
		UpdateTimeout:    60,
	}
}
