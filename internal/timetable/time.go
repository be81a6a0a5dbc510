package timetable

import (
	"fmt"
	"strconv"
	"strings"
)

// Weekday identifies one of the six teaching days of the week, ordered from
// the first day of the academic week.
type Weekday int

const (
	Saturday Weekday = iota
	Sunday
	Monday
	Tuesday
	Wednesday
	Thursday

	// NumWeekdays is the size of the teaching week.
	NumWeekdays = 6
)

// Grid granularity used by the interactive weekly table.
const (
	SlotMinutes      = 30
	GridStartMinutes = 7 * 60
	GridEndMinutes   = 19 * 60
)

var weekdayNames = [NumWeekdays]string{
	"SATURDAY",
	"SUNDAY",
	"MONDAY",
	"TUESDAY",
	"WEDNESDAY",
	"THURSDAY",
}

var weekdayIndex = map[string]Weekday{
	"SATURDAY":  Saturday,
	"SUNDAY":    Sunday,
	"MONDAY":    Monday,
	"TUESDAY":   Tuesday,
	"WEDNESDAY": Wednesday,
	"THURSDAY":  Thursday,
}

// Valid reports whether the weekday is inside the teaching week.
func (d Weekday) Valid() bool {
	return d >= Saturday && d < NumWeekdays
}

func (d Weekday) String() string {
	if !d.Valid() {
		return fmt.Sprintf("WEEKDAY(%d)", int(d))
	}
	return weekdayNames[d]
}

// ParseWeekday resolves a weekday name case-insensitively.
func ParseWeekday(name string) (Weekday, bool) {
	day, ok := weekdayIndex[strings.ToUpper(strings.TrimSpace(name))]
	return day, ok
}

// InvalidTimeError reports a time-of-day string that is not HH:MM.
type InvalidTimeError struct {
	Value string
}

func (e *InvalidTimeError) Error() string {
	return fmt.Sprintf("invalid time %q: expected HH:MM", e.Value)
}

// ToMinutes converts an HH:MM string into minutes since midnight.
func ToMinutes(value string) (int, error) {
	parts := strings.Split(value, ":")
	if len(parts) != 2 {
		return 0, &InvalidTimeError{Value: value}
	}
	hour, err := strconv.Atoi(strings.TrimSpace(parts[0]))
	if err != nil {
		return 0, &InvalidTimeError{Value: value}
	}
	minute, err := strconv.Atoi(strings.TrimSpace(parts[1]))
	if err != nil {
		return 0, &InvalidTimeError{Value: value}
	}
	if hour < 0 || hour > 23 || minute < 0 || minute > 59 {
		return 0, &InvalidTimeError{Value: value}
	}
	return hour*60 + minute, nil
}

// MinutesToClock renders minutes since midnight back into HH:MM.
func MinutesToClock(minutes int) string {
	return fmt.Sprintf("%02d:%02d", minutes/60, minutes%60)
}

// GridSlots returns the HH:MM labels of every half-hour boundary the weekly
// table renders, from 07:00 to 19:00 inclusive.
func GridSlots() []string {
	var slots []string
	for m := GridStartMinutes; m <= GridEndMinutes; m += SlotMinutes {
		slots = append(slots, MinutesToClock(m))
	}
	return slots
}
