package uptime

import (
	"fmt"
	"sort"
	"strings"
	"time"
)

// Status is an observed store state
type Status uint8

// Observed states; StatusUnknown never counts toward either total
const (
	StatusUnknown Status = iota
	StatusActive
	StatusInactive
)

// ParseStatus maps the stored text form to a Status
func ParseStatus(s string) (Status, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "active":
		return StatusActive, nil
	case "inactive":
		return StatusInactive, nil
	}
	return StatusUnknown, fmt.Errorf("invalid store status %q", s)
}

func (s Status) String() string {
	switch s {
	case StatusActive:
		return "active"
	case StatusInactive:
		return "inactive"
	default:
		return "unknown"
	}
}

// Observation is one status sample at a UTC instant
type Observation struct {
	At     time.Time
	Status Status
}

// Totals accumulates time spent active and inactive inside business hours
type Totals struct {
	Active   time.Duration
	Inactive time.Duration
}

// Add returns the element-wise sum
func (t Totals) Add(o Totals) Totals {
	return Totals{Active: t.Active + o.Active, Inactive: t.Inactive + o.Inactive}
}

// Sum is the total time attributed to either state
func (t Totals) Sum() time.Duration { return t.Active + t.Inactive }

// Aggregate integrates obs over (from, to] using last observation carried forward.
// obs must be ascending by At. A synthetic sample at to closes the last real segment.
// A segment counts when its start, as local time in loc, is inside sched
func Aggregate(obs []Observation, from, to time.Time, sched DaySchedule, loc *time.Location) Totals {
	var tot Totals
	if !to.After(from) {
		return tot
	}
	if loc == nil {
		loc = time.UTC
	}

	lo := sort.Search(len(obs), func(i int) bool { return obs[i].At.After(from) })
	for i := lo; i < len(obs) && !obs[i].At.After(to); i++ {
		cur := obs[i]
		end := to
		if i+1 < len(obs) && !obs[i+1].At.After(to) {
			end = obs[i+1].At
		}
		if !sched.Open(TimeOfDayOf(cur.At.In(loc))) {
			continue
		}
		d := end.Sub(cur.At)
		switch cur.Status {
		case StatusActive:
			tot.Active += d
		case StatusInactive:
			tot.Inactive += d
		}
	}
	return tot
}
