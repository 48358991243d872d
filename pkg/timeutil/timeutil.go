// Package timeutil provides pure calendar-date utilities for billing math.
// Tuition is billed by whole calendar month, so everything here works on dates
// normalized to midnight UTC: no time-of-day, no timezone drift, no DST skew.
// No external dependencies - uses only standard library.
package timeutil

import (
	"time"
)

// Common date formats.
const (
	// FormatDate is the standard date format (YYYY-MM-DD).
	FormatDate = "2006-01-02"
	// FormatHumanDate is a human-readable format.
	FormatHumanDate = "2 January 2006"
	// FormatShortDate is a short format (Jan 2).
	FormatShortDate = "Jan 2"
)

// Date creates a pure calendar date (midnight UTC).
func Date(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

// StartOfDay normalizes a time to midnight UTC of its calendar day.
// Every comparison in the billing core goes through this first, otherwise a
// 23:00 local timestamp can land on the wrong side of a month boundary.
func StartOfDay(t time.Time) time.Time {
	u := t.UTC()
	return time.Date(u.Year(), u.Month(), u.Day(), 0, 0, 0, 0, time.UTC)
}

// StartOfMonth returns day 1 of t's month.
func StartOfMonth(t time.Time) time.Time {
	u := t.UTC()
	return time.Date(u.Year(), u.Month(), 1, 0, 0, 0, 0, time.UTC)
}

// FirstOfNextMonth returns day 1 of the month following t's month,
// rolling over the year when t is in December.
func FirstOfNextMonth(t time.Time) time.Time {
	return StartOfMonth(t).AddDate(0, 1, 0)
}

// LastDayOfMonth returns the final calendar day of t's month (28-31).
// Handles leap years: LastDayOfMonth(2024-02-10) is 2024-02-29.
func LastDayOfMonth(t time.Time) time.Time {
	return FirstOfNextMonth(t).AddDate(0, 0, -1)
}

// MonthsBetween counts whole calendar-month boundaries crossed from the month
// of `from` to the month of `to`. Days within the month are ignored:
// MonthsBetween(2024-01-31, 2024-02-01) is 1. Negative when `to` precedes
// `from`.
func MonthsBetween(from, to time.Time) int {
	f, t := from.UTC(), to.UTC()
	return (t.Year()-f.Year())*12 + int(t.Month()) - int(f.Month())
}

// AddMonthsClamped advances t by n months, clamping the day to the last day
// of the target month instead of letting it spill over (Jan 31 + 1 month is
// Feb 28/29, never Mar 2/3). Go's AddDate does the spill-over, which silently
// lands in the wrong billing month for 28-30 day months.
func AddMonthsClamped(t time.Time, n int) time.Time {
	u := StartOfDay(t)
	anchor := StartOfMonth(u).AddDate(0, n, 0)
	day := u.Day()
	if last := LastDayOfMonth(anchor).Day(); day > last {
		day = last
	}
	return Date(anchor.Year(), anchor.Month(), day)
}

// SameDay checks whether two times fall on the same UTC calendar day.
func SameDay(a, b time.Time) bool {
	au, bu := a.UTC(), b.UTC()
	return au.Year() == bu.Year() && au.YearDay() == bu.YearDay()
}

// SameMonth checks whether two times fall in the same UTC calendar month.
func SameMonth(a, b time.Time) bool {
	au, bu := a.UTC(), b.UTC()
	return au.Year() == bu.Year() && au.Month() == bu.Month()
}

// DaysBetween returns the number of whole days from `from` to `to`.
// Negative when `to` precedes `from`.
func DaysBetween(from, to time.Time) int {
	f := StartOfDay(from)
	t := StartOfDay(to)
	return int(t.Sub(f).Hours() / 24)
}

// ParseDate parses a YYYY-MM-DD string into a pure calendar date.
func ParseDate(value string) (time.Time, error) {
	return time.Parse(FormatDate, value)
}

// FormatDateStr formats a time as a date string (YYYY-MM-DD).
func FormatDateStr(t time.Time) string {
	return t.UTC().Format(FormatDate)
}
