package dateutil

import (
	"regexp"
	"time"
)

var (
	dateRE     = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)
	dateTimeRE = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}T\d{2}:\d{2}`)
)

// ValidDate reports whether s is a well-formed YYYY-MM-DD calendar date that
// parses to a real day. Date strings compare chronologically as plain strings.
func ValidDate(s string) bool {
	if !dateRE.MatchString(s) {
		return false
	}
	_, err := time.ParseInLocation("2006-01-02", s, time.Local)
	return err == nil
}

// ValidDateTime reports whether s starts with a YYYY-MM-DDTHH:MM timestamp
// and parses to a valid instant.
func ValidDateTime(s string) bool {
	if !dateTimeRE.MatchString(s) {
		return false
	}
	for _, layout := range []string{"2006-01-02T15:04:05", "2006-01-02T15:04"} {
		if _, err := time.ParseInLocation(layout, s, time.Local); err == nil {
			return true
		}
	}
	if _, err := time.Parse(time.RFC3339, s); err == nil {
		return true
	}
	return false
}

// Format renders t as a local calendar date string.
func Format(t time.Time) string {
	return t.Format("2006-01-02")
}

// Today returns the current local calendar date.
func Today() string {
	return Format(time.Now())
}

func parse(date string) time.Time {
	t, _ := time.ParseInLocation("2006-01-02", date, time.Local)
	return t
}

// AddDays shifts a calendar date by n days (n may be negative). The input must
// be a valid date.
func AddDays(date string, n int) string {
	return Format(parse(date).AddDate(0, 0, n))
}

// DaysBetween returns the number of calendar days from a to b (positive when
// b is later).
func DaysBetween(a, b string) int {
	return int(parse(b).Sub(parse(a)).Hours() / 24)
}

// WeekStart returns the Monday on or before date.
func WeekStart(date string) string {
	wd := int(parse(date).Weekday()) // 0=Sun
	diff := wd - 1
	if wd == 0 {
		diff = 6
	}
	return AddDays(date, -diff)
}

// DateOf extracts the calendar-date prefix of a date or datetime string.
func DateOf(s string) string {
	if len(s) >= 10 {
		return s[:10]
	}
	return s
}
