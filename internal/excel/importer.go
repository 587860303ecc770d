package excel

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/example/workoutbot/internal/workout"
	"github.com/example/workoutbot/pkg/models"
)

// ImportConfig defines the import configuration
type ImportConfig struct {
	FilePath          string // Path to the Excel or CSV file
	DateColumn        string // Column with the date the workout was done
	WorkoutNameColumn string // Column with the workout name
	MuscleGroupColumn string
	WeightsUsedColumn string
	TutorialURLColumn string
	ImgURLColumn      string
	CommentColumn     string
	CompletionColumn  string         // Rows marked skipped here are not imported
	SheetName         string         // Name of the sheet to import
	StartRow          int            // The row to start importing from (1-based index)
	Location          *time.Location // Zone of dates written without one
}

// DefaultImportConfig returns the default import configuration, matching
// the column order of the Reports sheet written by Export.
func DefaultImportConfig() ImportConfig {
	return ImportConfig{
		DateColumn:        "A",
		WorkoutNameColumn: "B",
		MuscleGroupColumn: "C",
		WeightsUsedColumn: "D",
		TutorialURLColumn: "E",
		ImgURLColumn:      "F",
		CommentColumn:     "G",
		CompletionColumn:  "I",
		SheetName:         "Sheet1",
		StartRow:          2, // By default, start from the second row (skip header)
		Location:          time.Local,
	}
}

// ImportResult holds the result of an import operation
type ImportResult struct {
	TotalProcessed int
	Skipped        int
	Workouts       []workout.UnscheduledInput
	Errors         []string
}

// dateLayouts are tried in order for text dates
var dateLayouts = []string{
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"2006-01-02",
	"02.01.2006",
	"01/02/2006",
}

// ImportWorkouts reads one-off workouts from an Excel or CSV file. Bad rows
// are reported in ImportResult.Errors and do not stop the import.
func ImportWorkouts(config ImportConfig) (*ImportResult, error) {
	if config.Location == nil {
		config.Location = time.Local
	}
	if config.StartRow < 1 {
		config.StartRow = 1
	}

	ext := strings.ToLower(filepath.Ext(config.FilePath))
	if ext == ".csv" {
		file, err := os.Open(config.FilePath)
		if err != nil {
			return nil, fmt.Errorf("failed to open CSV file: %v", err)
		}
		defer file.Close()
		return ImportCSV(file, config)
	}

	return importFromExcel(config)
}

// importFromExcel reads workouts from an Excel file
func importFromExcel(config ImportConfig) (*ImportResult, error) {
	f, err := excelize.OpenFile(config.FilePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open Excel file: %v", err)
	}
	defer f.Close()

	sheet := config.SheetName
	if !hasSheet(f, sheet) {
		// Exported workbooks keep their reports on ReportsSheet
		if hasSheet(f, ReportsSheet) {
			sheet = ReportsSheet
		} else {
			sheet = f.GetSheetName(0)
		}
	}

	// Raw values keep date cells as serial numbers regardless of formatting
	rows, err := f.GetRows(sheet, excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, fmt.Errorf("failed to get rows: %v", err)
	}

	result := &ImportResult{Errors: make([]string, 0)}
	for i, row := range rows {
		if i < config.StartRow-1 {
			continue
		}
		processRow(row, config, result, i+1)
	}
	return result, nil
}

func hasSheet(f *excelize.File, name string) bool {
	idx, err := f.GetSheetIndex(name)
	return err == nil && idx >= 0
}

// ImportCSV reads workouts from CSV data laid out like the Excel import
func ImportCSV(r io.Reader, config ImportConfig) (*ImportResult, error) {
	if config.Location == nil {
		config.Location = time.Local
	}

	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1 // Allow variable number of fields
	reader.LazyQuotes = true

	result := &ImportResult{Errors: make([]string, 0)}
	rowNum := 0
	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("error reading CSV: %v", err)
		}

		rowNum++
		if rowNum < config.StartRow {
			continue
		}
		processRow(row, config, result, rowNum)
	}
	return result, nil
}

// processRow converts a single row into an UnscheduledInput
func processRow(row []string, config ImportConfig, result *ImportResult, rowNum int) {
	cell := func(column string) string {
		if column == "" {
			return ""
		}
		if colIdx := columnToIndex(column); colIdx < len(row) {
			return strings.TrimSpace(row[colIdx])
		}
		return ""
	}

	// A skipped session was never done, so it has no unscheduled counterpart
	if blank(row) || isSkipped(cell(config.CompletionColumn)) {
		result.Skipped++
		return
	}
	result.TotalProcessed++

	name := cell(config.WorkoutNameColumn)
	if name == "" {
		result.Errors = append(result.Errors, fmt.Sprintf("Row %d: workout name cannot be empty", rowNum))
		return
	}

	at, err := parseDate(cell(config.DateColumn), config.Location)
	if err != nil {
		result.Errors = append(result.Errors, fmt.Sprintf("Row %d: %v", rowNum, err))
		return
	}

	result.Workouts = append(result.Workouts, workout.UnscheduledInput{
		WorkoutName: name,
		MuscleGroup: cell(config.MuscleGroupColumn),
		WeightsUsed: cell(config.WeightsUsedColumn),
		TutorialURL: cell(config.TutorialURLColumn),
		ImgURL:      cell(config.ImgURLColumn),
		Comment:     cell(config.CommentColumn),
		At:          at,
	})
}

func isSkipped(completion string) bool {
	normalized := strings.ReplaceAll(strings.ToLower(completion), " ", "_")
	return models.Completion(normalized) == models.CompletionSkipped
}

// parseDate accepts Excel serial dates and the text layouts above. An
// empty cell yields the zero time, which the service stamps with now.
func parseDate(value string, loc *time.Location) (time.Time, error) {
	if value == "" {
		return time.Time{}, nil
	}
	if serial, err := strconv.ParseFloat(value, 64); err == nil {
		t, err := excelize.ExcelDateToTime(serial, false)
		if err != nil {
			return time.Time{}, fmt.Errorf("invalid date %q: %v", value, err)
		}
		// Serial dates carry wall-clock time without a zone
		t = t.Round(time.Second)
		return time.Date(t.Year(), t.Month(), t.Day(), t.Hour(), t.Minute(), t.Second(), 0, loc), nil
	}
	for _, layout := range dateLayouts {
		if t, err := time.ParseInLocation(layout, value, loc); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid date %q", value)
}

func blank(row []string) bool {
	for _, v := range row {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}

// Helper function to convert Excel column letter to index
func columnToIndex(column string) int {
	column = strings.ToUpper(column)
	index := 0
	for i := 0; i < len(column); i++ {
		index = index*26 + int(column[i]-'A'+1)
	}
	return index - 1
}
