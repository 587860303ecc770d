package workout

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/example/workoutbot/pkg/models"
)

// Latest is the sentinel choice offered first at every level of the drill-down
const Latest = "latest"

// MaxChoices is the most choices a Discord autocomplete response may carry
const MaxChoices = 25

// Choice is one (label, value) pair of a picker
type Choice struct {
	Name  string `json:"name" yaml:"name"`
	Value string `json:"value" yaml:"value"`
}

func latestChoice() Choice {
	return Choice{Name: Latest, Value: Latest}
}

// Index buckets a user's reports by calendar year, month and day in one
// time zone so callers can narrow down to a single report.
type Index struct {
	loc     *time.Location
	reports []models.Report
}

// NewIndex sorts the reports by creation time. A nil location means UTC.
func NewIndex(reports []models.Report, loc *time.Location) *Index {
	if loc == nil {
		loc = time.UTC
	}
	sorted := make([]models.Report, len(reports))
	copy(sorted, reports)
	models.SortReports(sorted)
	return &Index{loc: loc, reports: sorted}
}

// Len returns the number of indexed reports
func (x *Index) Len() int {
	return len(x.reports)
}

// Location returns the zone buckets are computed in
func (x *Index) Location() *time.Location {
	return x.loc
}

type granularity int

const (
	byYear granularity = iota
	byMonth
	byDay
)

// start truncates t to the beginning of its bucket
func (g granularity) start(t time.Time) time.Time {
	switch g {
	case byYear:
		return time.Date(t.Year(), time.January, 1, 0, 0, 0, 0, t.Location())
	case byMonth:
		return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, t.Location())
	}
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// next returns the start of the following bucket. time.Date normalises
// overflowing months and days, which keeps month lengths calendar-correct.
func (g granularity) next(start time.Time) time.Time {
	switch g {
	case byYear:
		return time.Date(start.Year()+1, time.January, 1, 0, 0, 0, 0, start.Location())
	case byMonth:
		return time.Date(start.Year(), start.Month()+1, 1, 0, 0, 0, 0, start.Location())
	}
	return time.Date(start.Year(), start.Month(), start.Day()+1, 0, 0, 0, 0, start.Location())
}

// within returns the reports created in [from, to)
func (x *Index) within(from, to time.Time) []models.Report {
	lo := sort.Search(len(x.reports), func(i int) bool {
		return !x.reports[i].CreatedAt.Before(from)
	})
	hi := sort.Search(len(x.reports), func(i int) bool {
		return !x.reports[i].CreatedAt.Before(to)
	})
	return x.reports[lo:hi]
}

// sweep walks the sorted reports once and records the start of every bucket
// the first time a report falls into it.
func (x *Index) sweep(reports []models.Report, g granularity) []time.Time {
	var buckets []time.Time
	var boundary time.Time
	for _, r := range reports {
		t := r.CreatedAt.In(x.loc)
		if len(buckets) > 0 && t.Before(boundary) {
			continue
		}
		start := g.start(t)
		buckets = append(buckets, start)
		boundary = g.next(start)
	}
	return buckets
}

// Years lists every year with at least one report
func (x *Index) Years() []Choice {
	choices := []Choice{latestChoice()}
	for _, b := range x.sweep(x.reports, byYear) {
		y := strconv.Itoa(b.Year())
		choices = append(choices, Choice{Name: y, Value: y})
	}
	return choices
}

// Months lists every month of year with at least one report
func (x *Index) Months(year int) []Choice {
	from := time.Date(year, time.January, 1, 0, 0, 0, 0, x.loc)
	choices := []Choice{latestChoice()}
	for _, b := range x.sweep(x.within(from, byYear.next(from)), byMonth) {
		choices = append(choices, Choice{
			Name:  fmt.Sprintf("%d - %s", int(b.Month()), b.Month()),
			Value: strconv.Itoa(int(b.Month())),
		})
	}
	return choices
}

// Days lists every day of the month with at least one report
func (x *Index) Days(year int, month time.Month) []Choice {
	choices := []Choice{latestChoice()}
	if month < time.January || month > time.December {
		return choices
	}
	from := time.Date(year, month, 1, 0, 0, 0, 0, x.loc)
	for _, b := range x.sweep(x.within(from, byMonth.next(from)), byDay) {
		choices = append(choices, Choice{
			Name:  fmt.Sprintf("%d - %s", b.Day(), b.Format("January 2, 2006")),
			Value: strconv.Itoa(b.Day()),
		})
	}
	return choices
}

// Reports lists the reports made on one day, oldest first
func (x *Index) Reports(year int, month time.Month, day int) []Choice {
	choices := []Choice{latestChoice()}
	for _, r := range x.onDay(year, month, day) {
		choices = append(choices, Choice{Name: ReportLabel(r, x.loc), Value: r.ID})
	}
	return choices
}

func (x *Index) onDay(year int, month time.Month, day int) []models.Report {
	if month < time.January || month > time.December || day < 1 {
		return nil
	}
	from := time.Date(year, month, day, 0, 0, 0, 0, x.loc)
	// Reject dates time.Date would roll over, e.g. February 30
	if from.Month() != month || from.Day() != day {
		return nil
	}
	return x.within(from, byDay.next(from))
}

// ReportLabel renders a report as "Push Day - 14:05 (scheduled)"
func ReportLabel(r models.Report, loc *time.Location) string {
	return fmt.Sprintf("%s - %s (%s)", r.WorkoutName, r.CreatedAt.In(loc).Format("15:04"), r.Kind)
}

// Selection is a resolved position in the drill-down. Zero values mean the
// level has no reports to pick from.
type Selection struct {
	Year  int
	Month time.Month
	Day   int
}

// Resolve turns the raw values of the year, month and day pickers into
// numbers. "latest" or an empty value picks the most recent bucket inside
// the already selected parent. An explicit value must be one of the
// choices offered at its level.
func (x *Index) Resolve(year, month, day string) (Selection, error) {
	var sel Selection

	y, err := x.resolveLevel("year", year, x.Years())
	if err != nil || y == 0 {
		return sel, err
	}
	sel.Year = y

	m, err := x.resolveLevel("month", month, x.Months(sel.Year))
	if err != nil {
		return sel, err
	}
	sel.Month = time.Month(m)

	d, err := x.resolveLevel("day", day, x.Days(sel.Year, sel.Month))
	if err != nil {
		return sel, err
	}
	sel.Day = d
	return sel, nil
}

// resolveLevel returns 0 only when the whole history is empty at the year level
func (x *Index) resolveLevel(level, raw string, choices []Choice) (int, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" || strings.EqualFold(raw, Latest) {
		if len(choices) < 2 {
			if level == "year" {
				return 0, nil
			}
			return 0, notFoundf("There are no workouts reported in that %s.", level)
		}
		n, _ := strconv.Atoi(choices[len(choices)-1].Value)
		return n, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 1 {
		return 0, invalidArgf("%q is not a %s. Please delete the command and try again, filling in all fields in order.", raw, level)
	}
	for _, c := range choices[1:] {
		if c.Value == strconv.Itoa(n) {
			return n, nil
		}
	}
	return 0, notFoundf("There are no workouts reported in %s %s. Pick one from the list.", level, raw)
}

// ReportID resolves the value of the report picker within the selected day.
// "latest" picks the newest report on that day. Only an empty selection,
// as when nothing has been reported yet or the caller skips the drill-down,
// searches the whole history.
func (x *Index) ReportID(sel Selection, value string) (string, error) {
	value = strings.TrimSpace(value)
	explicit := value != "" && !strings.EqualFold(value, Latest)
	if sel.Year == 0 {
		if explicit {
			return value, nil
		}
		if len(x.reports) == 0 {
			return "", notFoundf("There are no workouts reported yet.")
		}
		return x.reports[len(x.reports)-1].ID, nil
	}

	reports := x.onDay(sel.Year, sel.Month, sel.Day)
	if len(reports) == 0 {
		return "", notFoundf("There are no workouts reported for that day.")
	}
	if !explicit {
		return reports[len(reports)-1].ID, nil
	}
	for _, r := range reports {
		if r.ID == value {
			return value, nil
		}
	}
	return "", notFoundf("That report was not made on the selected day.")
}

// LimitChoices keeps the sentinel (when present) and the most recent
// entries so the list fits in limit.
func LimitChoices(choices []Choice, limit int) []Choice {
	if len(choices) <= limit || limit <= 0 {
		return choices
	}
	if choices[0].Value != Latest {
		return choices[len(choices)-limit:]
	}
	out := make([]Choice, 0, limit)
	out = append(out, choices[0])
	return append(out, choices[len(choices)-(limit-1):]...)
}

// FilterChoices keeps choices whose label contains the typed text, ignoring case.
// The sentinel is always kept.
func FilterChoices(choices []Choice, typed string) []Choice {
	typed = strings.ToLower(strings.TrimSpace(typed))
	if typed == "" {
		return choices
	}
	var out []Choice
	for _, c := range choices {
		if c.Value == Latest || strings.Contains(strings.ToLower(c.Name), typed) {
			out = append(out, c)
		}
	}
	return out
}

// EditableFields lists the fields a user may change on a report. The
// workout a scheduled report belongs to is provenance and never listed.
func EditableFields(r models.Report) []string {
	if r.Kind == models.ReportScheduled {
		return []string{FieldCompletion, FieldComment}
	}
	return []string{FieldWorkoutName, FieldMuscleGroup, FieldWeightsUsed, FieldTutorialURL, FieldImgURL, FieldComment}
}

// EditableWorkoutFields lists the fields of a scheduled workout a user may change
func EditableWorkoutFields() []string {
	return []string{FieldWorkoutName, FieldMuscleGroup, FieldWeightsUsed, FieldTutorialURL, FieldImgURL}
}
