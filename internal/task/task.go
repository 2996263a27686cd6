// Package task defines the task records submitted for analysis and the
// validator that turns loosely-typed input into normalized records.
package task

import (
	"fmt"
	"time"
)

// MinImportance and MaxImportance bound the importance rating.
const (
	MinImportance = 1
	MaxImportance = 10
)

// DateLayout is the wire format for due dates.
const DateLayout = "2006-01-02"

// Task is a normalized task record. Dependencies hold ids of tasks in the
// same batch that must complete before this one, without duplicates.
type Task struct {
	ID             string   `json:"id"`
	Title          string   `json:"title"`
	DueDate        Date     `json:"due_date"`
	EstimatedHours float64  `json:"estimated_hours"`
	Importance     int      `json:"importance"`
	Dependencies   []string `json:"dependencies"`
}

// RawTask is a task as received from a caller, before validation. Each
// field holds whatever the decoder produced (string, float64, int64,
// time.Time, []any, ...) or nil when the field was absent.
type RawTask struct {
	ID             any `json:"id" yaml:"id" toml:"id"`
	Title          any `json:"title" yaml:"title" toml:"title"`
	DueDate        any `json:"due_date" yaml:"due_date" toml:"due_date"`
	EstimatedHours any `json:"estimated_hours" yaml:"estimated_hours" toml:"estimated_hours"`
	Importance     any `json:"importance" yaml:"importance" toml:"importance"`
	Dependencies   any `json:"dependencies" yaml:"dependencies" toml:"dependencies"`
}

// Date is a calendar day. The embedded time is always midnight UTC.
type Date struct {
	time.Time
}

// NewDate returns the Date for the given calendar day.
func NewDate(year int, month time.Month, day int) Date {
	return Date{time.Date(year, month, day, 0, 0, 0, 0, time.UTC)}
}

// DateOf returns the calendar day of t in t's own location.
func DateOf(t time.Time) Date {
	return NewDate(t.Year(), t.Month(), t.Day())
}

// ParseDate parses a YYYY-MM-DD string.
func ParseDate(s string) (Date, error) {
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return Date{}, err
	}
	return Date{t}, nil
}

// DaysFrom returns the number of calendar days from ref's day to d.
// Negative values mean d lies before ref.
func (d Date) DaysFrom(ref time.Time) int {
	return int(d.Sub(DateOf(ref).Time).Hours() / 24)
}

// Before reports whether d is an earlier day than other.
func (d Date) Before(other Date) bool {
	return d.Time.Before(other.Time)
}

func (d Date) String() string {
	return d.Format(DateLayout)
}

// MarshalJSON encodes the date as a YYYY-MM-DD string.
func (d Date) MarshalJSON() ([]byte, error) {
	return []byte(`"` + d.String() + `"`), nil
}

// UnmarshalJSON decodes a YYYY-MM-DD string.
func (d *Date) UnmarshalJSON(data []byte) error {
	if len(data) < 2 || data[0] != '"' || data[len(data)-1] != '"' {
		return fmt.Errorf("date must be a %s string, got %s", DateLayout, data)
	}
	return d.UnmarshalText(data[1 : len(data)-1])
}

// MarshalText encodes the date as YYYY-MM-DD.
func (d Date) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

// UnmarshalText decodes YYYY-MM-DD.
func (d *Date) UnmarshalText(text []byte) error {
	parsed, err := ParseDate(string(text))
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}
