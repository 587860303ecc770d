package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/example/workoutbot/internal/excel"
	"github.com/example/workoutbot/internal/workout"
)

var (
	importUser  string
	importName  string
	importSheet string
)

var importCmd = &cobra.Command{
	Use:   "import FILE",
	Short: "Record one-off workouts from an Excel or CSV file",
	Long: `Import rows of a spreadsheet as unscheduled workout reports.

Columns are date, workout name, muscle group, weights used, tutorial url,
image url and comment, starting at row 2. Blank rows are skipped. Nothing
is stored when a row cannot be read.

Examples:
  workoutbot import --user 123456789012345678 --name al history.xlsx
  workoutbot import --user tg:42 --name al --sheet Log history.csv`,
	Args: cobra.ExactArgs(1),
	RunE: runImport,
}

func init() {
	importCmd.Flags().StringVar(&importUser, "user", "", "User key")
	importCmd.Flags().StringVar(&importName, "name", "", "Username stored when the user is new")
	importCmd.Flags().StringVar(&importSheet, "sheet", "Sheet1", "Worksheet to read")
	_ = importCmd.MarkFlagRequired("user")
	rootCmd.AddCommand(importCmd)
}

func runImport(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	loc, err := cfg.Location()
	if err != nil {
		return err
	}

	importConfig := excel.DefaultImportConfig()
	importConfig.FilePath = args[0]
	importConfig.SheetName = importSheet
	importConfig.Location = loc
	result, err := excel.ImportWorkouts(importConfig)
	if err != nil {
		return err
	}
	if len(result.Errors) > 0 {
		for _, e := range result.Errors {
			fmt.Fprintln(os.Stderr, e)
		}
		return fmt.Errorf("%d of %d rows could not be read", len(result.Errors), result.TotalProcessed)
	}

	st, err := openStore(cfg.Storage)
	if err != nil {
		return err
	}
	defer st.Close()

	svc := workout.NewService(st, workout.WithLocation(loc))
	added, err := svc.ImportUnscheduled(context.Background(), workout.User{ID: importUser, Name: importName}, result.Workouts)
	if err != nil {
		return fmt.Errorf("import failed: %w", err)
	}
	fmt.Printf("Imported %d workouts (%d rows processed, %d skipped)\n", added, result.TotalProcessed, result.Skipped)
	return nil
}
