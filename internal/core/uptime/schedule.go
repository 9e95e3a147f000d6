package uptime

// Interval is an inclusive local open range
// an interval whose End is before its Start runs past midnight
type Interval struct {
	Start TimeOfDay
	End   TimeOfDay
}

// Contains reports whether t falls inside the interval, both ends included
func (iv Interval) Contains(t TimeOfDay) bool {
	if iv.Start <= iv.End {
		return t >= iv.Start && t <= iv.End
	}
	return t >= iv.Start || t <= iv.End
}

// DaySchedule is the set of open intervals configured for one weekday
// intervals may overlap; membership is their union
type DaySchedule []Interval

// FullDay is the schedule used when a weekday has nothing configured
func FullDay() DaySchedule {
	return DaySchedule{{Start: 0, End: EndOfDay}}
}

// OrFullDay returns s, or the full day when s is empty
func (s DaySchedule) OrFullDay() DaySchedule {
	if len(s) == 0 {
		return FullDay()
	}
	return s
}

// Open reports whether t is inside any interval
func (s DaySchedule) Open(t TimeOfDay) bool {
	for _, iv := range s {
		if iv.Contains(t) {
			return true
		}
	}
	return false
}
