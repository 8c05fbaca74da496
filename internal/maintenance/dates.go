package maintenance

import (
	"strings"
	"time"
)

// DateLayout is the DD/MM/YYYY format used by forms, imports and API payloads
const DateLayout = "02/01/2006"

// ParseDate parses a DD/MM/YYYY string.
// Anything that does not match the layout exactly, including impossible
// calendar dates such as 31/02/2024, is reported as absent.
func ParseDate(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if len(s) != len(DateLayout) {
		return time.Time{}, false
	}
	t, err := time.ParseInLocation(DateLayout, s, time.Local)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

// ParseDatePtr is ParseDate returning nil for absent dates
func ParseDatePtr(s string) *time.Time {
	t, ok := ParseDate(s)
	if !ok {
		return nil
	}
	return &t
}

// FormatDate renders t as DD/MM/YYYY
func FormatDate(t time.Time) string {
	return t.Format(DateLayout)
}

// FormatDatePtr renders t as DD/MM/YYYY, or "" when t is nil
func FormatDatePtr(t *time.Time) string {
	if t == nil || t.IsZero() {
		return ""
	}
	return FormatDate(*t)
}

// AddMonths adds n calendar months to d. The day of month is kept when the
// target month has it, otherwise it is clamped to the month's last day.
func AddMonths(d time.Time, n int) time.Time {
	y, m, day := d.Date()
	// first of the target month; time.Date normalizes month overflow
	first := time.Date(y, m+time.Month(n), 1, 0, 0, 0, 0, d.Location())
	if last := daysIn(first.Year(), first.Month(), d.Location()); day > last {
		day = last
	}
	return time.Date(first.Year(), first.Month(), day, d.Hour(), d.Minute(), d.Second(), d.Nanosecond(), d.Location())
}

// AddQuarter adds exactly three calendar months to d
func AddQuarter(d time.Time) time.Time {
	return AddMonths(d, 3)
}

// AddQuarterString is AddQuarter over DD/MM/YYYY strings. Absent input yields "".
func AddQuarterString(s string) string {
	d, ok := ParseDate(s)
	if !ok {
		return ""
	}
	return FormatDate(AddQuarter(d))
}

// Today returns the calendar date of now at local midnight
func Today(now time.Time) time.Time {
	now = now.Local()
	y, m, d := now.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.Local)
}

// DueWithin reports whether date falls between today and today+days inclusive
func DueWithin(date, today time.Time, days int) bool {
	diff := daysBetween(today, date)
	return diff >= 0 && diff <= days
}

func daysIn(year int, month time.Month, loc *time.Location) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, loc).Day()
}

// civil strips the clock and zone so comparisons are by calendar date only
func civil(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func daysBetween(from, to time.Time) int {
	return int(civil(to).Sub(civil(from)).Hours() / 24)
}
