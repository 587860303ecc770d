package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/example/workoutbot/internal/excel"
	"github.com/example/workoutbot/internal/workout"
)

var (
	exportUser string
	exportOut  string
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Write a user's workouts and reports to an Excel file",
	Long: `Export one user's scheduled workouts and every report to a workbook
with a Workouts and a Reports sheet.

Examples:
  workoutbot export --user 123456789012345678 --out workouts.xlsx`,
	RunE: runExport,
}

func init() {
	exportCmd.Flags().StringVar(&exportUser, "user", "", "User key")
	exportCmd.Flags().StringVar(&exportOut, "out", "workouts.xlsx", "Output file")
	_ = exportCmd.MarkFlagRequired("user")
	rootCmd.AddCommand(exportCmd)
}

func runExport(cmd *cobra.Command, args []string) error {
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

	svc := workout.NewService(st, workout.WithLocation(loc))
	rec, err := svc.Record(context.Background(), exportUser)
	if err != nil {
		return fmt.Errorf("failed to read user %s: %w", exportUser, err)
	}

	f, err := excel.Export(rec, loc)
	if err != nil {
		return err
	}
	defer f.Close()
	if err := f.SaveAs(exportOut); err != nil {
		return fmt.Errorf("failed to save %s: %w", exportOut, err)
	}
	fmt.Printf("Exported %s to %s\n", exportUser, exportOut)
	return nil
}
