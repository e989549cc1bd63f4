// Package slots builds the candidate time-slot sequence for a room. All
// arithmetic happens on absolute instants resolved through the caller's time
// zone; wall-clock fields are never mutated in place.
package slots

import (
	"errors"
	"fmt"
	"time"
)

var (
	ErrBadHour     = errors.New("hours must be between 0 and 23")
	ErrBadDuration = errors.New("duration must be between 1 minute and 24 hours")
	ErrNoLabels    = errors.New("at least one slot label is required")
	ErrEmptyLabel  = errors.New("slot labels must not be blank")
)

// Defaults used when a room is created without any slot configuration.
const (
	DefaultStartHour       = 9
	DefaultEndHour         = 17
	DefaultDurationMinutes = 30
)

// Slot is a builder output: a display label plus the absolute start instant.
type Slot struct {
	Label string
	Start time.Time
}

// ExpandRange walks from startHour:00 on date in loc, emitting one slot every
// durationMinutes. A slot is kept only when it ends on or before the endHour
// boundary (full-fit rule: the 11:30 slot of a 9-12/30min range is included
// because it ends exactly at 12:00; an 11:40 slot would not be). When
// endHour <= startHour the boundary falls on the following day, so a 22-2
// range spans midnight.
func ExpandRange(startHour, endHour, durationMinutes int, date time.Time, loc *time.Location) ([]Slot, error) {
	if startHour < 0 || startHour > 23 || endHour < 0 || endHour > 23 {
		return nil, ErrBadHour
	}
	// A range never spans more than 24 hours, so longer durations can only
	// be nonsense input; capping here also keeps the step arithmetic far
	// away from int64 overflow.
	if durationMinutes <= 0 || durationMinutes > 24*60 {
		return nil, ErrBadDuration
	}

	year, month, day := date.Date()
	boundaryHour := endHour
	if boundaryHour <= startHour {
		boundaryHour += 24 // overnight span; time.Date normalizes to the next day
	}

	cur := time.Date(year, month, day, startHour, 0, 0, 0, loc)
	boundary := time.Date(year, month, day, boundaryHour, 0, 0, 0, loc)
	step := time.Duration(durationMinutes) * time.Minute

	var out []Slot
	for {
		end := cur.Add(step)
		if end.After(boundary) {
			break
		}
		out = append(out, Slot{Label: cur.Format("15:04"), Start: cur})
		cur = end
	}
	return out, nil
}

// FromLabels assigns each pre-supplied label an instant, starting at
// DefaultStartHour:00 on date in loc and advancing DefaultDurationMinutes per
// label. Labels are kept verbatim; they carry the display text for slot sets
// that are not plain clock times.
func FromLabels(labels []string, date time.Time, loc *time.Location) ([]Slot, error) {
	if len(labels) == 0 {
		return nil, ErrNoLabels
	}

	year, month, day := date.Date()
	start := time.Date(year, month, day, DefaultStartHour, 0, 0, 0, loc)
	step := time.Duration(DefaultDurationMinutes) * time.Minute

	out := make([]Slot, 0, len(labels))
	for i, label := range labels {
		if label == "" {
			return nil, fmt.Errorf("label %d: %w", i+1, ErrEmptyLabel)
		}
		out = append(out, Slot{Label: label, Start: start.Add(time.Duration(i) * step)})
	}
	return out, nil
}

// Default returns the fallback slot set: DefaultStartHour to DefaultEndHour
// in DefaultDurationMinutes steps.
func Default(date time.Time, loc *time.Location) []Slot {
	out, _ := ExpandRange(DefaultStartHour, DefaultEndHour, DefaultDurationMinutes, date, loc)
	return out
}
