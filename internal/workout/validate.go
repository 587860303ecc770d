package workout

import (
	"net/url"
	"strings"
	"unicode/utf8"

	"github.com/example/workoutbot/pkg/models"
)

// MaxWorkoutNameLength is the longest workout name accepted, in characters
const MaxWorkoutNameLength = 79

// Editable field names
const (
	FieldUsername      = "username"
	FieldWorkoutName   = "workout_name"
	FieldDaysScheduled = "days_scheduled"
	FieldMuscleGroup   = "muscle_group"
	FieldWeightsUsed   = "weights_used"
	FieldTutorialURL   = "tutorial_url"
	FieldImgURL        = "img_url"
	FieldCompletion    = "completion"
	FieldComment       = "comment"
)

// fieldAliases maps the names older command menus used onto field names
var fieldAliases = map[string]string{
	"muscle_groups": FieldMuscleGroup,
	"image_url":     FieldImgURL,
	"name":          FieldWorkoutName,
	"days":          FieldDaysScheduled,
}

// CanonicalField normalises a field name typed or picked by a user
func CanonicalField(field string) string {
	f := strings.ToLower(strings.TrimSpace(field))
	f = strings.ReplaceAll(f, " ", "_")
	if alias, ok := fieldAliases[f]; ok {
		return alias
	}
	return f
}

// ValidateWorkoutName trims the name and checks it is non-empty and short enough
func ValidateWorkoutName(name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", validationf("The workout needs a name.")
	}
	if utf8.RuneCountInString(name) > MaxWorkoutNameLength {
		return "", validationf("Your new workout name is too long. The maximum length is %d characters.", MaxWorkoutNameLength)
	}
	return name, nil
}

// ParseCompletion accepts the stored values as well as their labels
// ("partially complete"), in any case.
func ParseCompletion(s string) (models.Completion, error) {
	c := models.Completion(strings.ReplaceAll(strings.ToLower(strings.TrimSpace(s)), " ", "_"))
	if !c.Valid() {
		return "", validationf("%q is not a valid completion. Use complete, partially complete or skipped.", s)
	}
	return c, nil
}

// ParseDays turns weekday names into their canonical form. Each value may
// itself be a comma separated list. Duplicates are dropped, input order kept.
func ParseDays(values ...string) ([]string, error) {
	days := []string{}
	seen := make(map[string]bool)
	for _, v := range values {
		for _, part := range strings.Split(v, ",") {
			part = strings.TrimSpace(part)
			if part == "" {
				continue
			}
			wd, ok := models.ParseWeekday(part)
			if !ok {
				return nil, validationf("%q is not a day of the week.", part)
			}
			name := wd.String()
			if seen[name] {
				continue
			}
			seen[name] = true
			days = append(days, name)
		}
	}
	return days, nil
}

// ParseSchedule parses a replacement schedule, which needs at least one day
func ParseSchedule(values ...string) ([]string, error) {
	days, err := ParseDays(values...)
	if err != nil {
		return nil, err
	}
	if len(days) == 0 {
		return nil, validationf("A schedule needs at least one day of the week.")
	}
	return days, nil
}

// ValidateURL checks that a non-empty value is an absolute http(s) URL
func ValidateURL(field, raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", nil
	}
	u, err := url.Parse(raw)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return "", validationf("The %s %q is not a valid link. It should start with http:// or https://.", fieldLabel(field), raw)
	}
	return raw, nil
}

// ValidateField checks a new value for a single-valued field and returns it
// normalised. days_scheduled goes through ParseDays instead.
func ValidateField(field, value string) (string, error) {
	switch field {
	case FieldWorkoutName:
		return ValidateWorkoutName(value)
	case FieldCompletion:
		c, err := ParseCompletion(value)
		return string(c), err
	case FieldTutorialURL, FieldImgURL:
		return ValidateURL(field, value)
	case FieldUsername:
		value = strings.TrimSpace(value)
		if value == "" {
			return "", validationf("The username cannot be empty.")
		}
		return value, nil
	}
	return strings.TrimSpace(value), nil
}

// fieldLabel is the human form of a field name
func fieldLabel(field string) string {
	switch field {
	case FieldImgURL:
		return "image url"
	case FieldTutorialURL:
		return "tutorial url"
	}
	return strings.ReplaceAll(field, "_", " ")
}
