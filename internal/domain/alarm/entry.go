package alarm

import (
	"errors"
	"fmt"
	"slices"
	"strconv"
	"strings"
	"time"
)

const (
	// MaxHour is the largest valid hour value.
	MaxHour = 23
	// MaxMinute is the largest valid minute value.
	MaxMinute = 59
)

var (
	// ErrNotNumeric is returned when hour or minute input is not a number.
	ErrNotNumeric = errors.New("hour and minute must be numbers")
	// ErrHourOutOfRange is returned when the hour is outside [0, 23].
	ErrHourOutOfRange = errors.New("hour must be between 0 and 23")
	// ErrMinuteOutOfRange is returned when the minute is outside [0, 59].
	ErrMinuteOutOfRange = errors.New("minute must be between 0 and 59")
	// ErrDuplicate is returned when an entry with the same hour and minute exists.
	ErrDuplicate = errors.New("alarm already exists")
)

// Entry is a single time-signal alarm.
type Entry struct {
	// Hour is in [0, 23].
	Hour int
	// Minute is in [0, 59].
	Minute int
}

// DefaultEntry is seeded when no alarm list has been stored yet.
//
//nolint:gochecknoglobals // Immutable value type.
var DefaultEntry = Entry{Hour: 8, Minute: 50}

// At returns the entry for the wall-clock hour and minute of t.
func At(t time.Time) Entry {
	return Entry{Hour: t.Hour(), Minute: t.Minute()}
}

// Parse validates user text input and builds an Entry.
func Parse(hourText, minuteText string) (Entry, error) {
	hour, err := strconv.Atoi(strings.TrimSpace(hourText))
	if err != nil {
		return Entry{}, fmt.Errorf("%w: hour %q", ErrNotNumeric, hourText)
	}

	minute, err := strconv.Atoi(strings.TrimSpace(minuteText))
	if err != nil {
		return Entry{}, fmt.Errorf("%w: minute %q", ErrNotNumeric, minuteText)
	}

	entry := Entry{Hour: hour, Minute: minute}
	if err = entry.Validate(); err != nil {
		return Entry{}, err
	}

	return entry, nil
}

// ParseClock parses "HH:MM" input.
func ParseClock(s string) (Entry, error) {
	hourText, minuteText, ok := strings.Cut(strings.TrimSpace(s), ":")
	if !ok {
		return Entry{}, fmt.Errorf("%w: expected HH:MM, got %q", ErrNotNumeric, s)
	}

	return Parse(hourText, minuteText)
}

// Validate checks the hour and minute ranges.
func (e Entry) Validate() error {
	if e.Hour < 0 || e.Hour > MaxHour {
		return fmt.Errorf("%w: %d", ErrHourOutOfRange, e.Hour)
	}

	if e.Minute < 0 || e.Minute > MaxMinute {
		return fmt.Errorf("%w: %d", ErrMinuteOutOfRange, e.Minute)
	}

	return nil
}

// Key returns the fire guard key, e.g. "8:50". Values are not zero-padded.
func (e Entry) Key() string {
	return strconv.Itoa(e.Hour) + ":" + strconv.Itoa(e.Minute)
}

// MinutesSinceMidnight is the display sort key.
func (e Entry) MinutesSinceMidnight() int {
	return e.Hour*60 + e.Minute
}

// String renders the entry as zero-padded "HH:MM".
func (e Entry) String() string {
	return fmt.Sprintf("%02d:%02d", e.Hour, e.Minute)
}

// Matches reports whether t falls inside the entry's minute.
func (e Entry) Matches(t time.Time) bool {
	return t.Hour() == e.Hour && t.Minute() == e.Minute
}

// IsValidation reports whether err is a user input validation failure.
func IsValidation(err error) bool {
	return errors.Is(err, ErrNotNumeric) ||
		errors.Is(err, ErrHourOutOfRange) ||
		errors.Is(err, ErrMinuteOutOfRange) ||
		errors.Is(err, ErrDuplicate)
}

// Contains reports whether entries already hold the same hour and minute.
func Contains(entries []Entry, e Entry) bool {
	return slices.Contains(entries, e)
}

// Sorted returns a copy of entries ordered by minutes since midnight.
// The input slice keeps its storage order.
func Sorted(entries []Entry) []Entry {
	result := slices.Clone(entries)
	slices.SortStableFunc(result, func(a, b Entry) int {
		return a.MinutesSinceMidnight() - b.MinutesSinceMidnight()
	})

	return result
}
