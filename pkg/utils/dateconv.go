package utils

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// APIDateLayout is the date format expected by the Backlog API
const APIDateLayout = "2006-01-02"

var (
	todayPattern = regexp.MustCompile(`^@today(?:([+-])(\d+)([dw]))?$`)

	// Layouts accepted for literal date cells, tried in order
	cellDateLayouts = []string{
		"2006-01-02",
		"2006/01/02",
		"2006/1/2",
		"2006-1-2",
		"2006-01-02T15:04:05Z07:00",
	}
)

// ParseTemplateDate parses a date cell from an import template.
// Examples:
//
//	2025-09-04   -> 2025-09-04
//	2025/9/4     -> 2025-09-04
//	@today       -> today
//	@today+3d    -> three days from today
//	@today-1w    -> one week ago
func ParseTemplateDate(input string) (time.Time, error) {
	return ParseTemplateDateWithBase(input, time.Now())
}

// ParseTemplateDateWithBase parses with a specific base date (for testing)
func ParseTemplateDateWithBase(input string, baseDate time.Time) (time.Time, error) {
	input = strings.ReplaceAll(strings.TrimSpace(input), " ", "")
	if input == "" {
		return time.Time{}, fmt.Errorf("empty date")
	}

	if strings.HasPrefix(input, "@") {
		return parseRelativeDate(input, baseDate)
	}

	for _, layout := range cellDateLayouts {
		if t, err := time.Parse(layout, input); err == nil {
			return dateOnly(t), nil
		}
	}

	return time.Time{}, fmt.Errorf("unsupported date format: %s", input)
}

// FormatAPIDate formats a date the way the Backlog API expects it
func FormatAPIDate(t time.Time) string {
	return t.Format(APIDateLayout)
}

// IsValidTemplateDate reports whether input can be parsed as a template date
func IsValidTemplateDate(input string) bool {
	_, err := ParseTemplateDate(input)
	return err == nil
}

// parseRelativeDate handles the @today[+-N(d|w)] expressions
func parseRelativeDate(input string, baseDate time.Time) (time.Time, error) {
	matches := todayPattern.FindStringSubmatch(input)
	if matches == nil {
		return time.Time{}, fmt.Errorf("unsupported date expression: %s", input)
	}

	base := dateOnly(baseDate)
	if matches[1] == "" {
		return base, nil
	}

	num, err := strconv.Atoi(matches[2])
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid number: %s", matches[2])
	}

	days := num
	switch matches[3] {
	case "d":
	case "w":
		days = num * 7
	default:
		return time.Time{}, fmt.Errorf("unsupported unit: %s", matches[3])
	}

	if matches[1] == "-" {
		days = -days
	}

	return base.AddDate(0, 0, days), nil
}

func dateOnly(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
