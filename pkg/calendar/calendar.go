// Package calendar handles ISO calendar days ("2006-01-02").
// Days are passed around as strings so that comparisons never depend on
// a time zone; lexical order of valid days equals chronological order.
package calendar

import (
	"errors"
	"time"
)

// Layout is the canonical day format.
const Layout = "2006-01-02"

var ErrInvalidDay = errors.New("invalid date format, use YYYY-MM-DD")

// Clock returns the current instant. Tests replace it with a fixed time.
type Clock func() time.Time

// LoadLocation falls back to UTC+7 when the tz database is unavailable.
func LoadLocation(name string) *time.Location {
	if name == "" {
		return time.UTC
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		return time.FixedZone("WIB", 7*60*60)
	}
	return loc
}

// Day formats t as a calendar day in loc.
func Day(t time.Time, loc *time.Location) string {
	if loc != nil {
		t = t.In(loc)
	}
	return t.Format(Layout)
}

// Parse validates an ISO day and returns it at midnight UTC.
func Parse(day string) (time.Time, error) {
	t, err := time.Parse(Layout, day)
	if err != nil {
		return time.Time{}, ErrInvalidDay
	}
	return t, nil
}

// Valid reports whether day is a well-formed ISO day.
func Valid(day string) bool {
	_, err := Parse(day)
	return err == nil
}

// AddDays shifts day by n calendar days.
func AddDays(day string, n int) (string, error) {
	t, err := Parse(day)
	if err != nil {
		return "", err
	}
	return t.AddDate(0, 0, n).Format(Layout), nil
}

// Prev returns the day before.
func Prev(day string) (string, error) {
	return AddDays(day, -1)
}

// Range lists every day in [from, to]. Empty when to < from.
func Range(from, to string) ([]string, error) {
	start, err := Parse(from)
	if err != nil {
		return nil, err
	}
	end, err := Parse(to)
	if err != nil {
		return nil, err
	}
	var days []string
	for d := start; !d.After(end); d = d.AddDate(0, 0, 1) {
		days = append(days, d.Format(Layout))
	}
	return days, nil
}
