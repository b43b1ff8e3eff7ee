// Package calendar holds the day and month arithmetic shared by the ledger and the cursor.
// Every ledger key is the unix timestamp of a UTC midnight; use DayKey to derive one.
package calendar

import (
	"fmt"
	"time"

	"github.com/julianstephens/dailycal/internal/constants"
)

// Midnight truncates t to 00:00:00 UTC of its UTC calendar day.
func Midnight(t time.Time) time.Time {
	u := t.UTC()
	return time.Date(u.Year(), u.Month(), u.Day(), 0, 0, 0, 0, time.UTC)
}

// DayKey returns the ledger key of the day containing t.
func DayKey(t time.Time) int64 {
	return Midnight(t).Unix()
}

// FromKey converts a ledger key (or any unix timestamp) back to a UTC time.
func FromKey(key int64) time.Time {
	return time.Unix(key, 0).UTC()
}

// DaysInMonth returns the number of days in the given month, leap years included.
func DaysInMonth(year int, month time.Month) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

// DaysInMonthOf returns the length of the month containing t.
func DaysInMonthOf(t time.Time) int {
	u := t.UTC()
	return DaysInMonth(u.Year(), u.Month())
}

// StartOfMonth returns midnight UTC of the first day of t's month.
func StartOfMonth(t time.Time) time.Time {
	u := t.UTC()
	return time.Date(u.Year(), u.Month(), 1, 0, 0, 0, 0, time.UTC)
}

// MonthKeys returns the key of the first day of t's month and the month length.
// Day d of the month has key first + (d-1)*SecondsPerDay.
func MonthKeys(t time.Time) (first int64, days int) {
	return StartOfMonth(t).Unix(), DaysInMonthOf(t)
}

// KeyOfDay returns the ledger key of day-of-month day in t's month.
func KeyOfDay(t time.Time, day int) int64 {
	first, _ := MonthKeys(t)
	return first + int64(day-1)*constants.SecondsPerDay
}

// AddDays shifts t by n whole days, keeping the time of day.
func AddDays(t time.Time, n int) time.Time {
	return t.UTC().AddDate(0, 0, n)
}

// AddMonths shifts t by n months. The day is clamped to the length of the
// target month, so Jan 31 + 1 month is Feb 28 (or 29), never Mar 3.
func AddMonths(t time.Time, n int) time.Time {
	u := t.UTC()
	firstOfTarget := time.Date(u.Year(), u.Month()+time.Month(n), 1, u.Hour(), u.Minute(), u.Second(), u.Nanosecond(), time.UTC)
	day := u.Day()
	if last := DaysInMonthOf(firstOfTarget); day > last {
		day = last
	}
	return firstOfTarget.AddDate(0, 0, day-1)
}

// WithDay moves t to day-of-month day by day-offset arithmetic.
func WithDay(t time.Time, day int) time.Time {
	return AddDays(t, day-t.UTC().Day())
}

func yearMonth(t time.Time) int {
	u := t.UTC()
	return u.Year()*12 + int(u.Month()) - 1
}

// SameYearMonth reports whether a and b fall in the same UTC month.
func SameYearMonth(a, b time.Time) bool {
	return yearMonth(a) == yearMonth(b)
}

// AfterByYearMonth reports whether a's month is strictly after b's month.
func AfterByYearMonth(a, b time.Time) bool {
	return yearMonth(a) > yearMonth(b)
}

// BeforeByYearMonth reports whether a's month is strictly before b's month.
func BeforeByYearMonth(a, b time.Time) bool {
	return yearMonth(a) < yearMonth(b)
}

// UntilNextDay returns the time left before the next UTC midnight.
func UntilNextDay(now time.Time) time.Duration {
	return Midnight(now).AddDate(0, 0, 1).Sub(now.UTC())
}

// ParseDate parses a YYYY-MM-DD date as UTC midnight.
func ParseDate(dateStr string) (time.Time, error) {
	t, err := time.Parse(constants.DateFormat, dateStr)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q (expected YYYY-MM-DD): %w", dateStr, err)
	}
	return t.UTC(), nil
}

// FormatDay renders t's UTC day in the standard date format.
func FormatDay(t time.Time) string {
	return t.UTC().Format(constants.DateFormat)
}

// FormatRemaining renders a countdown as HH:MM:SS.
func FormatRemaining(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	total := int(d / time.Second)
	return fmt.Sprintf("%02d:%02d:%02d", total/3600, (total%3600)/60, total%60)
}
