package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/example/workoutbot/internal/workout"
	"github.com/example/workoutbot/pkg/models"
)

var showUser string

var showCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the stored record of a user",
	Long: `Print the workouts and reports stored for one user.

Discord users are keyed by their user ID, Telegram users by tg:<id>.

Examples:
  workoutbot show --user 123456789012345678
  workoutbot show --user tg:42 -o yaml`,
	RunE: runShow,
}

func init() {
	showCmd.Flags().StringVar(&showUser, "user", "", "User key")
	_ = showCmd.MarkFlagRequired("user")
	rootCmd.AddCommand(showCmd)
}

func runShow(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
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

	ctx := context.Background()
	svc := workout.NewService(st, workout.WithLocation(loc))
	rec, err := svc.Record(ctx, showUser)
	if err != nil {
		return fmt.Errorf("failed to read user %s: %w", showUser, err)
	}
	return writeOutput(os.Stdout, output, rec, func(w io.Writer) error {
		return writeRecordText(ctx, w, svc, showUser, rec)
	})
}

func writeRecordText(ctx context.Context, w io.Writer, svc *workout.Service, userID string, rec *models.UserRecord) error {
	workouts, err := svc.DescribeWorkouts(ctx, userID)
	if err != nil {
		return err
	}
	reports := 0
	for _, sw := range rec.ScheduledWorkout {
		reports += len(sw.Reports)
	}
	fmt.Fprintf(w, "User: %s (%s)\n\n", rec.Username, userID)
	fmt.Fprintln(w, workouts)
	fmt.Fprintf(w, "\nScheduled reports: %d\n", reports)
	fmt.Fprintf(w, "Unscheduled workouts: %d\n", len(rec.UnscheduledWorkout))
	return nil
}
