// utils/dates.go
package utils

import (
	"strings"
	"time"
)

const (
	// DayMonthYearLayout accepts one- or two-digit day and month, e.g. "9/4/2020" or "09/04/2020".
	DayMonthYearLayout = "2/1/2006"
	// FrameLayout is zero padded so string order equals chronological order.
	FrameLayout = "2006/01/02"
	// ISODateLayout is used for configuration values.
	ISODateLayout = "2006-01-02"
)

// ParseDayMonthYear parses a dd/mm/yyyy string into a UTC midnight.
func ParseDayMonthYear(s string) (time.Time, error) {
	return time.Parse(DayMonthYearLayout, strings.TrimSpace(s))
}

// TruncateDay drops the time-of-day part and converts to UTC.
func TruncateDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// DailyRange returns every calendar day from start to end inclusive. It is empty when end is before start.
func DailyRange(start, end time.Time) []time.Time {
	start, end = TruncateDay(start), TruncateDay(end)
	var days []time.Time
	for d := start; !d.After(end); d = d.AddDate(0, 0, 1) {
		days = append(days, d)
	}
	return days
}

// FrameKey formats a date as an animation frame key.
func FrameKey(t time.Time) string {
	return t.Format(FrameLayout)
}
