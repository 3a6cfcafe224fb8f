// Package models defines the domain types for apptcal.
package models

import (
	"fmt"
	"regexp"
	"time"

	"github.com/starford/apptcal/internal/apperr"
)

// DateLayout and ClockLayout are the persisted text forms.
const (
	DateLayout  = "2006-01-02"
	ClockLayout = "15:04"
)

// ClockPattern matches a zero-padded 24-hour HH:mm time.
var ClockPattern = regexp.MustCompile(`^([01][0-9]|2[0-3]):[0-5][0-9]$`)

// Date is a calendar date without a time zone.
type Date struct {
	Year  int
	Month time.Month
	Day   int
}

// ParseDate parses a YYYY-MM-DD date.
func ParseDate(s string) (Date, error) {
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return Date{}, fmt.Errorf("%w: %q", apperr.ErrInvalidDate, s)
	}
	return DateOf(t), nil
}

// DateOf returns the calendar date of t in t's location.
func DateOf(t time.Time) Date {
	y, m, d := t.Date()
	return Date{Year: y, Month: m, Day: d}
}

// IsZero reports whether d is the zero Date.
func (d Date) IsZero() bool {
	return d == Date{}
}

func (d Date) String() string {
	return fmt.Sprintf("%04d-%02d-%02d", d.Year, int(d.Month), d.Day)
}

// MarshalText implements encoding.TextMarshaler.
func (d Date) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (d *Date) UnmarshalText(b []byte) error {
	parsed, err := ParseDate(string(b))
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// Clock is a time of day with minute precision.
type Clock struct {
	Hour   int
	Minute int
}

// ParseClock parses a zero-padded 24-hour HH:mm time. Anything else,
// including "9:00" and "09:00:00", is rejected.
func ParseClock(s string) (Clock, error) {
	if !ClockPattern.MatchString(s) {
		return Clock{}, fmt.Errorf("%w: %q", apperr.ErrInvalidTimeFormat, s)
	}
	t, err := time.Parse(ClockLayout, s)
	if err != nil {
		return Clock{}, fmt.Errorf("%w: %q", apperr.ErrInvalidTimeFormat, s)
	}
	return Clock{Hour: t.Hour(), Minute: t.Minute()}, nil
}

// Minutes returns the number of minutes since midnight.
func (c Clock) Minutes() int {
	return c.Hour*60 + c.Minute
}

// Before reports whether c is strictly earlier than o.
func (c Clock) Before(o Clock) bool {
	return c.Minutes() < o.Minutes()
}

func (c Clock) String() string {
	return fmt.Sprintf("%02d:%02d", c.Hour, c.Minute)
}

// MarshalText implements encoding.TextMarshaler.
func (c Clock) MarshalText() ([]byte, error) {
	return []byte(c.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (c *Clock) UnmarshalText(b []byte) error {
	parsed, err := ParseClock(string(b))
	if err != nil {
		return err
	}
	*c = parsed
	return nil
}

// Appointment is a titled interval on a single date. Values held by the
// store always have a non-empty title and Start strictly before End.
type Appointment struct {
	Title string `json:"title"`
	Date  Date   `json:"date"`
	Start Clock  `json:"start"`
	End   Clock  `json:"end"`
}

// String returns the display form "{title} {date} {start} - {end}".
func (a Appointment) String() string {
	return fmt.Sprintf("%s %s %s - %s", a.Title, a.Date, a.Start, a.End)
}

// Valid reports whether a satisfies the stored-appointment invariant.
func (a Appointment) Valid() bool {
	return a.Title != "" && !a.Date.IsZero() && a.Start.Before(a.End)
}

// StartAt returns the start instant in loc.
func (a Appointment) StartAt(loc *time.Location) time.Time {
	return at(a.Date, a.Start, loc)
}

// EndAt returns the end instant in loc.
func (a Appointment) EndAt(loc *time.Location) time.Time {
	return at(a.Date, a.End, loc)
}

func at(d Date, c Clock, loc *time.Location) time.Time {
	if loc == nil {
		loc = time.Local
	}
	return time.Date(d.Year, d.Month, d.Day, c.Hour, c.Minute, 0, 0, loc)
}
