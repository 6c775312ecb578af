package services

import (
	"fmt"
	"strings"
	"time"
)

const dateLayout = "2006-01-02"

// ParseDate parses a date string (YYYY-MM-DD) or a full RFC 3339 timestamp, returning UTC
func ParseDate(dateStr string) (time.Time, error) {
	dateStr = strings.TrimSpace(dateStr)

	if parsed, err := time.Parse(dateLayout, dateStr); err == nil {
		return parsed.UTC(), nil
	}
	if parsed, err := time.Parse(time.RFC3339, dateStr); err == nil {
		return parsed.UTC(), nil
	}

	return time.Time{}, fmt.Errorf("invalid date format: expected YYYY-MM-DD")
}

// FormatISO renders an annotation timestamp
func FormatISO(t time.Time) string {
	return t.UTC().Format(time.RFC3339)
}

// parseOptionalDate parses s when present, recording a validation message on failure
func parseOptionalDate(s *string, field string, errs *validationErrors) *time.Time {
	if s == nil || strings.TrimSpace(*s) == "" {
		return nil
	}
	parsed, err := ParseDate(*s)
	if err != nil {
		errs.add("Invalid %s (expected YYYY-MM-DD)", field)
		return nil
	}
	return &parsed
}

// validSessionTime checks an HH:MM clock time
func validSessionTime(s string) bool {
	_, err := time.Parse("15:04", s)
	return err == nil && len(s) == 5
}

// calendarDays counts the UTC calendar days from one date to another
func calendarDays(from, to time.Time) int {
	return int(truncateDay(to).Sub(truncateDay(from)).Hours() / 24)
}

func truncateDay(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
