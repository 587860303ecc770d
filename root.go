package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/example/workoutbot/internal/config"
)

var (
	// Global flags
	output  string
	cfgFile string
)

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "workoutbot",
	Short: "Workout tracking bot for Discord and Telegram",
	Long: `workoutbot schedules weekly workouts, records reports of what was done
and reminds users on the days their workouts fall on.

Commands:
  serve    Run the Discord and Telegram bots, reminders and backups
  show     Print the stored record of a user
  export   Write a user's workouts and reports to an Excel file
  import   Record one-off workouts from an Excel or CSV file
  backup   Upload a snapshot of all records to the backup bucket

Configuration is read from config.yaml, .env and environment variables
such as STORAGE_BACKEND or DISCORD_TOKEN.`,
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&output, "output", "o", outputText, "Output format (json, yaml, text)")
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "Config file or directory (default: ./config.yaml)")
}

// loadConfig reads the configuration named by --config
func loadConfig() (config.Config, error) {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return config.Config{}, fmt.Errorf("failed to load config: %w", err)
	}
	return cfg, nil
}
