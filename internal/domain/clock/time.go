package clock

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// Kind identifies a cascade stage.
type Kind int

const (
	// Seconds is the innermost stage driven by the tick source.
	Seconds Kind = iota
	// Minutes is driven by Seconds overflows.
	Minutes
	// Hours is driven by Minutes overflows.
	Hours
)

// NumKinds is the number of cascade stages.
const NumKinds = 3

// Kinds lists all stages from the fastest to the slowest.
//
//nolint:gochecknoglobals // Read-only lookup table.
var Kinds = [NumKinds]Kind{Seconds, Minutes, Hours}

const (
	// SecondsPerMinute is the modulus of the Seconds stage.
	SecondsPerMinute = 60
	// MinutesPerHour is the modulus of the Minutes stage.
	MinutesPerHour = 60
	// HoursPerDay is the modulus of the Hours stage.
	HoursPerDay = 24
)

// String returns the stage name.
func (k Kind) String() string {
	switch k {
	case Seconds:
		return "seconds"
	case Minutes:
		return "minutes"
	case Hours:
		return "hours"
	default:
		return "kind(" + strconv.Itoa(int(k)) + ")"
	}
}

// Modulus returns the number of distinct values the stage counts through.
func (k Kind) Modulus() int {
	switch k {
	case Seconds:
		return SecondsPerMinute
	case Minutes:
		return MinutesPerHour
	case Hours:
		return HoursPerDay
	default:
		panic("clock: unknown kind " + k.String())
	}
}

// Next returns the stage driven by overflows of k.
// The second result is false for the slowest stage.
func (k Kind) Next() (Kind, bool) {
	if k >= Hours {
		return k, false
	}

	return k + 1, true
}

// Message carries one post-tick stage value to the printer.
// It is passed by value: sending hands it over, receiving takes it.
type Message struct {
	// Kind is the stage that produced the value.
	Kind Kind
	// Value is the stage value right after its tick.
	Value int
}

// Time is an hours/minutes/seconds triple.
type Time struct {
	// Hour is in [0, 24).
	Hour int `yaml:"hour"`
	// Minute is in [0, 60).
	Minute int `yaml:"minute"`
	// Second is in [0, 60).
	Second int `yaml:"second"`
}

var (
	// ErrInvalidTime is returned when a Time field is out of range.
	ErrInvalidTime = errors.New("invalid time")
	// errTimeFormat is returned when a string is not in H:M:S form.
	errTimeFormat = errors.New("time must be in H:M:S form")
)

// Get returns the field that belongs to the provided stage.
func (t Time) Get(kind Kind) int {
	switch kind {
	case Seconds:
		return t.Second
	case Minutes:
		return t.Minute
	case Hours:
		return t.Hour
	default:
		panic("clock: unknown kind " + kind.String())
	}
}

// Set returns a copy of t with the stage field replaced.
func (t Time) Set(kind Kind, value int) Time {
	switch kind {
	case Seconds:
		t.Second = value
	case Minutes:
		t.Minute = value
	case Hours:
		t.Hour = value
	default:
		panic("clock: unknown kind " + kind.String())
	}

	return t
}

// Validate checks every field against its stage modulus.
func (t Time) Validate() error {
	for _, kind := range Kinds {
		if v := t.Get(kind); v < 0 || v >= kind.Modulus() {
			return fmt.Errorf("%w: %s %d is outside [0, %d)", ErrInvalidTime, kind, v, kind.Modulus())
		}
	}

	return nil
}

// String renders the time the way the clock prints it: minimum width two, no zero padding.
func (t Time) String() string {
	return fmt.Sprintf("%2d:%2d:%2d", t.Hour, t.Minute, t.Second)
}

// ParseTime parses "H:M:S" (for example "0:01:30") into a validated Time.
func ParseTime(s string) (Time, error) {
	parts := strings.Split(strings.TrimSpace(s), ":")
	if len(parts) != len(Kinds) {
		return Time{}, fmt.Errorf("%w: %q", errTimeFormat, s)
	}

	values := make([]int, len(parts))

	for i, part := range parts {
		v, err := strconv.Atoi(strings.TrimSpace(part))
		if err != nil {
			return Time{}, fmt.Errorf("%w: %q: %w", errTimeFormat, s, err)
		}

		values[i] = v
	}

	t := Time{
		Hour:   values[0],
		Minute: values[1],
		Second: values[2],
	}

	if err := t.Validate(); err != nil {
		return Time{}, err
	}

	return t, nil
}

// Status is what the clock reports to remote observers.
type Status struct {
	// Time is the display time of the last printed line.
	Time Time
	// Alarm is the configured alarm time.
	Alarm Time
	// Alarms is the number of alarms raised since start.
	Alarms uint64
}
