package schedule

import (
	"fmt"
	"strings"
	"time"
)

const secondsPerDay = 24 * 60 * 60

// TimeOfDay is a wall clock time with second precision, held as seconds since midnight.
type TimeOfDay int

func NewTimeOfDay(hour, minute, second int) TimeOfDay {
	return TimeOfDay(hour*3600 + minute*60 + second)
}

// ParseTimeOfDay reads the ISO-8601 extended forms "HH", "HH:MM" and "HH:MM:SS".
func ParseTimeOfDay(s string) (TimeOfDay, error) {
	fields := strings.Split(s, ":")
	if len(fields) > 3 {
		return 0, &TimeParseError{Value: s, Reason: "too many fields"}
	}

	limits := []int{23, 59, 59}
	values := []int{0, 0, 0}
	for i, field := range fields {
		v, ok := twoDigits(field)
		if !ok {
			return 0, &TimeParseError{Value: s, Reason: fmt.Sprintf("field %d is not two digits", i+1)}
		}
		if v > limits[i] {
			return 0, &TimeParseError{Value: s, Reason: fmt.Sprintf("field %d out of range", i+1)}
		}
		values[i] = v
	}

	return NewTimeOfDay(values[0], values[1], values[2]), nil
}

func twoDigits(field string) (int, bool) {
	if len(field) != 2 {
		return 0, false
	}
	v := 0
	for _, c := range field {
		if c < '0' || c > '9' {
			return 0, false
		}
		v = v*10 + int(c-'0')
	}
	return v, true
}

// TimeOfDayOf returns the wall clock time of t in its own location, truncated to the second.
func TimeOfDayOf(t time.Time) TimeOfDay {
	return NewTimeOfDay(t.Hour(), t.Minute(), t.Second())
}

func (t TimeOfDay) Hour() int   { return int(t) / 3600 }
func (t TimeOfDay) Minute() int { return int(t) % 3600 / 60 }
func (t TimeOfDay) Second() int { return int(t) % 60 }

// On returns the instant at this time of day on the date of d, in d's location.
func (t TimeOfDay) On(d time.Time) time.Time {
	return time.Date(d.Year(), d.Month(), d.Day(), t.Hour(), t.Minute(), t.Second(), 0, d.Location())
}

func (t TimeOfDay) String() string {
	return fmt.Sprintf("%02d:%02d:%02d", t.Hour(), t.Minute(), t.Second())
}
