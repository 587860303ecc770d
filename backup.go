package main

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/example/workoutbot/internal/observability"
)

var backupCmd = &cobra.Command{
	Use:   "backup",
	Short: "Upload a snapshot of all records to the backup bucket",
	Long: `Take a snapshot of every stored user record and upload it as JSON
to backup.bucket.

Examples:
  workoutbot backup
  BACKUP_BUCKET=workouts workoutbot backup`,
	RunE: runBackup,
}

func init() {
	rootCmd.AddCommand(backupCmd)
}

func runBackup(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if cfg.Backup.Bucket == "" {
		return errors.New("backup.bucket is not set")
	}
	st, err := openStore(cfg.Storage)
	if err != nil {
		return err
	}
	defer st.Close()

	ctx := cmd.Context()
	uploader, err := newUploader(ctx, cfg.Backup)
	if err != nil {
		return err
	}
	key, err := uploader.Upload(ctx, st)
	if err != nil {
		return err
	}
	observability.RecordBackup(time.Now())
	fmt.Printf("Uploaded s3://%s/%s\n", cfg.Backup.Bucket, key)
	return nil
}
