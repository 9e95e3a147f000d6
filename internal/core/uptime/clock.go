// Package uptime integrates sparse store status observations over local business hours
package uptime

import (
	"fmt"
	"strings"
	"time"
)

// Weekday is a local calendar weekday where 0 is Monday
type Weekday uint8

// Weekdays in schedule order
const (
	Monday Weekday = iota
	Tuesday
	Wednesday
	Thursday
	Friday
	Saturday
	Sunday
)

var weekdayNames = [...]string{"Monday", "Tuesday", "Wednesday", "Thursday", "Friday", "Saturday", "Sunday"}

// WeekdayOf returns the weekday of t in t's own location
func WeekdayOf(t time.Time) Weekday {
	return Weekday((int(t.Weekday()) + 6) % 7)
}

// Valid reports whether d is in [0,6]
func (d Weekday) Valid() bool { return d <= Sunday }

// Prev returns the weekday before d
func (d Weekday) Prev() Weekday { return (d + 6) % 7 }

func (d Weekday) String() string {
	if !d.Valid() {
		return fmt.Sprintf("Weekday(%d)", uint8(d))
	}
	return weekdayNames[d]
}

// TimeOfDay is an offset from local midnight
type TimeOfDay time.Duration

// EndOfDay is the last whole second of a local day
const EndOfDay = TimeOfDay(23*time.Hour + 59*time.Minute + 59*time.Second)

// Clock builds a TimeOfDay from hour, minute and second
func Clock(h, m, s int) TimeOfDay {
	return TimeOfDay(time.Duration(h)*time.Hour + time.Duration(m)*time.Minute + time.Duration(s)*time.Second)
}

// TimeOfDayOf returns the wall clock of t in its location, truncated to the second
func TimeOfDayOf(t time.Time) TimeOfDay {
	h, m, s := t.Clock()
	return Clock(h, m, s)
}

// ParseTimeOfDay accepts HH:MM and HH:MM:SS with an optional fraction
func ParseTimeOfDay(s string) (TimeOfDay, error) {
	s = strings.TrimSpace(s)
	for _, layout := range []string{"15:04:05", "15:04"} {
		if t, err := time.Parse(layout, s); err == nil {
			return TimeOfDayOf(t), nil
		}
	}
	return 0, fmt.Errorf("invalid time of day %q", s)
}

func (t TimeOfDay) String() string {
	d := time.Duration(t)
	h := d / time.Hour
	m := (d % time.Hour) / time.Minute
	s := (d % time.Minute) / time.Second
	return fmt.Sprintf("%02d:%02d:%02d", h, m, s)
}
