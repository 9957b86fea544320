// Package scheduling holds the availability search: given the set of
// already-taken (date, hour) slots, preferred weekdays and a shift, it
// finds the next free slot and allocates one per requested service.
package scheduling

import (
	"fmt"
	"strings"
	"time"
)

// SlotsPerShift is the number of hourly slots in each shift window.
const SlotsPerShift = 6

// Shift selects one of the two fixed hourly windows.
type Shift int

const (
	// ShiftMorning covers 07:00 through 12:00.
	ShiftMorning Shift = iota
	// ShiftAfternoon covers 12:00 through 17:00.
	ShiftAfternoon
)

// ParseShift maps the wire value onto a Shift.
func ParseShift(s string) (Shift, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "morning":
		return ShiftMorning, nil
	case "afternoon":
		return ShiftAfternoon, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrUnknownShift, s)
	}
}

// StartHour returns the first hour of the shift window.
func (s Shift) StartHour() int {
	if s == ShiftAfternoon {
		return 12
	}
	return 7
}

func (s Shift) String() string {
	if s == ShiftAfternoon {
		return "afternoon"
	}
	return "morning"
}

// Slot is one bookable (calendar day, hour) pair. Day is normalized to
// midnight UTC so slots compare by value.
type Slot struct {
	Day  time.Time
	Hour int
}

// NewSlot builds a normalized slot for the given day and hour.
func NewSlot(day time.Time, hour int) Slot {
	return Slot{Day: startOfDay(day), Hour: hour}
}

// DateString renders the slot date as YYYY-MM-DD.
func (s Slot) DateString() string {
	return s.Day.Format("2006-01-02")
}

// TimeString renders the slot time as HH:MM, always on the hour.
func (s Slot) TimeString() string {
	return fmt.Sprintf("%02d:00", s.Hour)
}

func startOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// WeekdaySet is the caller's preferred weekdays, Monday through Friday.
type WeekdaySet map[time.Weekday]struct{}

var weekdayNames = map[string]time.Weekday{
	"monday":    time.Monday,
	"tuesday":   time.Tuesday,
	"wednesday": time.Wednesday,
	"thursday":  time.Thursday,
	"friday":    time.Friday,
}

// ParseWeekdays builds a WeekdaySet from wire values. Only Monday through
// Friday are bookable; anything else is rejected.
func ParseWeekdays(names []string) (WeekdaySet, error) {
	set := make(WeekdaySet, len(names))
	for _, name := range names {
		day, ok := weekdayNames[strings.ToLower(strings.TrimSpace(name))]
		if !ok {
			return nil, fmt.Errorf("%w: %q", ErrUnknownWeekday, name)
		}
		set[day] = struct{}{}
	}
	return set, nil
}

// Contains reports whether the weekday is preferred.
func (w WeekdaySet) Contains(d time.Weekday) bool {
	_, ok := w[d]
	return ok
}
