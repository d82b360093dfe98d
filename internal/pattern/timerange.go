package pattern

import "fmt"

// Clock is a wall-clock time of day.
type Clock struct {
	Hour   int
	Minute int
}

func (c Clock) minutes() int {
	return c.Hour*60 + c.Minute
}

func (c Clock) String() string {
	return fmt.Sprintf("%02d:%02d", c.Hour, c.Minute)
}

// TimeRange is the daily time slot of an atom, in 24-hour form.
type TimeRange struct {
	Start Clock
	End   Clock
}

// CrossesMidnight reports whether the slot ends on the day after it starts.
// An end that is not after the start is always taken to be on the next day.
func (r TimeRange) CrossesMidnight() bool {
	return r.End.minutes() <= r.Start.minutes()
}

func (r TimeRange) String() string {
	return r.Start.String() + "-" + r.End.String()
}

// Lecture lists write afternoon hours without a 24-hour prefix: "2-4" is
// 14:00-16:00. A start hour of 1..7 is therefore read as pm unless it is
// zero-padded ("02").
func startHour(h int) int {
	if h >= 1 && h <= 7 {
		return h + 12
	}
	return h
}

// An end hour of 1..11 is the first of h or h+12 that lies after start.
// Anything else is literal, so "23-1" ends at 01:00 the next day.
func endHour(start Clock, h, m int) int {
	if h >= 1 && h <= 11 {
		if h*60+m > start.minutes() {
			return h
		}
		if (h+12)*60+m > start.minutes() {
			return h + 12
		}
	}
	return h
}
