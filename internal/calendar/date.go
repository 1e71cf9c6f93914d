// Package calendar provides a civil date without time of day or location, encoded as yyyy-MM-dd.
package calendar

import (
	"fmt"
	"time"
)

const Layout = time.DateOnly

// Date is a calendar day. Dates are comparable with == and usable as map keys.
type Date struct {
	t time.Time
}

// NewDate returns the date of year, month and day, normalizing overflow like [time.Date].
func NewDate(year int, month time.Month, day int) Date {
	return Date{t: time.Date(year, month, day, 0, 0, 0, 0, time.UTC)}
}

// DateOf returns the date t falls on in t's location.
func DateOf(t time.Time) Date {
	y, m, d := t.Date()
	return NewDate(y, m, d)
}

// Parse parses a yyyy-MM-dd string.
func Parse(s string) (Date, error) {
	t, err := time.Parse(Layout, s)
	if err != nil {
		return Date{}, fmt.Errorf("parse date %q: %w", s, err)
	}
	return Date{t: t}, nil
}

func (d Date) String() string {
	return d.t.Format(Layout)
}

func (d Date) IsZero() bool {
	return d.t.IsZero()
}

func (d Date) Weekday() time.Weekday {
	return d.t.Weekday()
}

func (d Date) AddDays(n int) Date {
	return Date{t: d.t.AddDate(0, 0, n)}
}

// DaysUntil returns the number of days from d to other, negative if other is earlier.
func (d Date) DaysUntil(other Date) int {
	return int(other.t.Sub(d.t).Hours() / 24) //nolint:mnd // hours per day
}

// Equal reports whether d and other are the same day.
func (d Date) Equal(other Date) bool {
	return d.t.Equal(other.t)
}

func (d Date) Before(other Date) bool {
	return d.t.Before(other.t)
}

func (d Date) After(other Date) bool {
	return d.t.After(other.t)
}

// Time returns midnight UTC of d.
func (d Date) Time() time.Time {
	return d.t
}

// StartOfWeek returns the most recent date on or before d that falls on weekStart.
func (d Date) StartOfWeek(weekStart time.Weekday) Date {
	back := (int(d.Weekday()) - int(weekStart) + 7) % 7 //nolint:mnd // days per week
	return d.AddDays(-back)
}

// SameWeek reports whether d and other fall into the same week starting on weekStart.
func (d Date) SameWeek(other Date, weekStart time.Weekday) bool {
	return d.StartOfWeek(weekStart) == other.StartOfWeek(weekStart)
}

// NextOccurrence returns the first date strictly after d that falls on weekday. When d already falls on weekday
// the result is a full week later.
func (d Date) NextOccurrence(weekday time.Weekday) Date {
	ahead := (int(weekday) - int(d.Weekday()) + 7) % 7 //nolint:mnd // days per week
	if ahead == 0 {
		ahead = 7
	}
	return d.AddDays(ahead)
}

func (d Date) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

func (d *Date) UnmarshalText(b []byte) error {
	parsed, err := Parse(string(b))
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}
