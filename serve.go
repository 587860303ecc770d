package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/example/workoutbot/internal/api"
	"github.com/example/workoutbot/internal/backup"
	"github.com/example/workoutbot/internal/bot"
	"github.com/example/workoutbot/internal/config"
	"github.com/example/workoutbot/internal/discord"
	"github.com/example/workoutbot/internal/scheduler"
	"github.com/example/workoutbot/internal/workout"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the bots",
	Long: `Run the Discord and Telegram front ends until interrupted.

A front end starts only when its token is configured. Reminders go out
daily at reminders.hour and snapshots are uploaded every backup.interval
when backup.bucket is set. Health and metrics are served on http.address.

Examples:
  workoutbot serve
  workoutbot serve --config /etc/workoutbot/config.yaml`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if cfg.Discord.Token == "" && cfg.Telegram.Token == "" {
		return errors.New("neither discord.token nor telegram.token is set")
	}
	loc, err := cfg.Location()
	if err != nil {
		return err
	}

	st, err := openStore(cfg.Storage)
	if err != nil {
		return err
	}
	defer st.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	svc := workout.NewService(st, workout.WithLocation(loc))
	var notifier scheduler.RouteNotifier

	if cfg.Discord.Token != "" {
		discordBot, err := discord.New(cfg.Discord, svc)
		if err != nil {
			return err
		}
		if err := discordBot.Start(); err != nil {
			return err
		}
		defer discordBot.Stop()
		notifier.Discord = discordBot
	}

	if cfg.Telegram.Token != "" {
		telegramBot, err := bot.New(cfg.Telegram, svc)
		if err != nil {
			return err
		}
		if err := telegramBot.Connect(); err != nil {
			return err
		}
		go func() {
			if err := telegramBot.Start(ctx); err != nil {
				log.Printf("Telegram bot error: %v", err)
			}
		}()
		notifier.Telegram = telegramBot
	}

	sched := scheduler.New(loc, svc, notifier)
	if cfg.Reminders.Enabled {
		if err := sched.ScheduleReminders(cfg.Reminders.Hour); err != nil {
			return err
		}
	}
	if cfg.Backup.Bucket != "" {
		uploader, err := newUploader(ctx, cfg.Backup)
		if err != nil {
			return err
		}
		err = sched.ScheduleBackups(cfg.Backup.Interval, func(ctx context.Context) error {
			key, err := uploader.Upload(ctx, st)
			if err == nil {
				log.Printf("Uploaded backup %s", key)
			}
			return err
		})
		if err != nil {
			return err
		}
	}
	sched.Start()
	defer sched.Stop()

	log.Println("Bot started. Press Ctrl+C to stop.")
	if err := api.Serve(ctx, cfg.HTTP.Address, api.NewRouter(cfg.Storage.Backend, st)); err != nil {
		return fmt.Errorf("http server: %w", err)
	}
	log.Println("Bot stopped successfully")
	return nil
}

func newUploader(ctx context.Context, cfg config.BackupConfig) (*backup.Uploader, error) {
	client, err := backup.NewS3Client(ctx, cfg)
	if err != nil {
		return nil, err
	}
	return backup.NewUploader(client, cfg.Bucket, cfg.Prefix), nil
}
