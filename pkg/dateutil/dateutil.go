package dateutil

import (
	"fmt"
	"strings"
	"time"
)

// DateLayout is the ISO calendar date layout used for anchors and records
const DateLayout = "2006-01-02"

// Date returns the calendar day of t as UTC midnight.
// The year, month and day are read in t's own location, so 00:30 local on
// 2024-03-31 stays 2024-03-31 regardless of the offset.
func Date(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// DaysBetween returns the number of whole calendar days from a to b.
// Negative when b is before a. Both sides are normalized with Date, so
// daylight-saving transitions never change the result. Unix seconds are used
// instead of time.Sub, which saturates after about 292 years.
func DaysBetween(a, b time.Time) int {
	return int((Date(b).Unix() - Date(a).Unix()) / secondsPerDay)
}

const secondsPerDay = 24 * 60 * 60

// AddDays returns the calendar day n days after t (UTC midnight)
func AddDays(t time.Time, n int) time.Time {
	return Date(t).AddDate(0, 0, n)
}

// StartOfDay returns the start of the day (00:00:00) for the given date
func StartOfDay(date time.Time) time.Time {
	return time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, date.Location())
}

// StartOfWeek returns the Monday of the week for the given date
func StartOfWeek(date time.Time) time.Time {
	weekday := int(date.Weekday())
	if weekday == 0 {
		weekday = 7 // Sunday = 7
	}
	daysFromMonday := weekday - 1
	return StartOfDay(date.AddDate(0, 0, -daysFromMonday))
}

// StartOfMonth returns the first day of the month as UTC midnight
func StartOfMonth(year int, month time.Month) time.Time {
	return time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
}

// DaysInMonth returns the number of days in the given month
func DaysInMonth(year int, month time.Month) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

// IsSameDay returns true if two dates are on the same day
func IsSameDay(date1, date2 time.Time) bool {
	return date1.Year() == date2.Year() &&
		date1.Month() == date2.Month() &&
		date1.Day() == date2.Day()
}

// ParseDate parses a calendar date in one of the accepted formats and
// returns it as UTC midnight.
func ParseDate(dateStr string) (time.Time, error) {
	formats := []string{
		DateLayout,
		"02.01.2006",
		"2006-01-02T15:04:05",
		"2006-01-02T15:04:05Z07:00",
	}

	s := strings.TrimSpace(dateStr)
	for _, format := range formats {
		if t, err := time.Parse(format, s); err == nil {
			return Date(t), nil
		}
	}

	return time.Time{}, fmt.Errorf("unrecognized date %q", dateStr)
}

// ParseMonth parses "YYYY-MM"
func ParseMonth(s string) (int, time.Month, error) {
	t, err := time.Parse("2006-01", strings.TrimSpace(s))
	if err != nil {
		return 0, 0, fmt.Errorf("unrecognized month %q, want YYYY-MM", s)
	}
	return t.Year(), t.Month(), nil
}

// FormatDate formats the calendar day of t as YYYY-MM-DD
func FormatDate(t time.Time) string {
	return t.Format(DateLayout)
}

// Today returns today's calendar day in the local zone, as UTC midnight
func Today() time.Time {
	return Date(time.Now())
}
