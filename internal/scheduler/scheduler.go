package scheduler

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/go-co-op/gocron"

	"github.com/example/workoutbot/internal/observability"
	"github.com/example/workoutbot/internal/workout"
)

// TelegramPrefix marks user keys that belong to Telegram accounts
const TelegramPrefix = "tg:"

// jobTimeout bounds a single reminder or backup run
const jobTimeout = 2 * time.Minute

// Notifier interface for sending reminders
type Notifier interface {
	SendReminder(ctx context.Context, userID, message string) error
}

// ReminderSource lists the workouts due on a weekday
type ReminderSource interface {
	DueReminders(ctx context.Context, day time.Weekday) ([]workout.Reminder, error)
}

// RouteNotifier sends reminders of Telegram users through Telegram and
// everyone else through Discord. Either side may be nil when not configured.
type RouteNotifier struct {
	Discord  Notifier
	Telegram Notifier
}

// SendReminder picks the notifier for the user key
func (r RouteNotifier) SendReminder(ctx context.Context, userID, message string) error {
	if strings.HasPrefix(userID, TelegramPrefix) {
		if r.Telegram == nil {
			return fmt.Errorf("telegram is not configured, cannot remind %s", userID)
		}
		return r.Telegram.SendReminder(ctx, userID, message)
	}
	if r.Discord == nil {
		return fmt.Errorf("discord is not configured, cannot remind %s", userID)
	}
	return r.Discord.SendReminder(ctx, userID, message)
}

// Scheduler manages scheduled tasks for the application
type Scheduler struct {
	scheduler *gocron.Scheduler
	loc       *time.Location
	reminders ReminderSource
	notifier  Notifier
	now       func() time.Time
}

// New creates a new scheduler running jobs in loc
func New(loc *time.Location, reminders ReminderSource, notifier Notifier) *Scheduler {
	return &Scheduler{
		scheduler: gocron.NewScheduler(loc),
		loc:       loc,
		reminders: reminders,
		notifier:  notifier,
		now:       time.Now,
	}
}

// ScheduleReminders sends the day's reminders every day at hour:00
func (s *Scheduler) ScheduleReminders(hour int) error {
	_, err := s.scheduler.Every(1).Day().At(fmt.Sprintf("%02d:00", hour)).Do(func() {
		ctx, cancel := context.WithTimeout(context.Background(), jobTimeout)
		defer cancel()
		if _, err := s.SendDueReminders(ctx); err != nil {
			log.Printf("Error sending reminders: %v", err)
		}
	})
	if err != nil {
		return fmt.Errorf("failed to schedule reminders: %v", err)
	}
	return nil
}

// ScheduleBackups runs backup every interval, first after one interval has passed
func (s *Scheduler) ScheduleBackups(interval time.Duration, backup func(ctx context.Context) error) error {
	_, err := s.scheduler.Every(interval).WaitForSchedule().Do(func() {
		ctx, cancel := context.WithTimeout(context.Background(), jobTimeout)
		defer cancel()
		if err := backup(ctx); err != nil {
			log.Printf("Error running backup: %v", err)
			return
		}
		observability.RecordBackup(s.now())
	})
	if err != nil {
		return fmt.Errorf("failed to schedule backups: %v", err)
	}
	return nil
}

// Start begins running all scheduled tasks
func (s *Scheduler) Start() {
	s.scheduler.StartAsync()
}

// Stop terminates all scheduled tasks
func (s *Scheduler) Stop() {
	s.scheduler.Stop()
}

// SendDueReminders notifies every user with a workout scheduled today and
// returns how many reminders went out. A failed delivery does not stop the rest.
func (s *Scheduler) SendDueReminders(ctx context.Context) (int, error) {
	today := s.now().In(s.loc).Weekday()
	due, err := s.reminders.DueReminders(ctx, today)
	if err != nil {
		return 0, err
	}

	sent := 0
	for _, r := range due {
		err := s.notifier.SendReminder(ctx, r.UserID, workout.ReminderMessage(r))
		observability.RecordReminder(err)
		if err != nil {
			log.Printf("Error sending reminder to user %s: %v", r.UserID, err)
			continue
		}
		sent++
	}
	log.Printf("Sent %d of %d %s reminders", sent, len(due), today)
	return sent, nil
}
