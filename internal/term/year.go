package term

import (
	"fmt"
	"time"
)

// Year is one academic year's term structure. It is cheap to build and is
// created afresh for every expansion.
type Year struct {
	startYear int
	starts    Starts
}

// NewYear looks up startYear in table.
func NewYear(table Table, startYear int) (*Year, error) {
	starts, err := table.TermStarts(startYear)
	if err != nil {
		return nil, err
	}
	return &Year{startYear: startYear, starts: starts}, nil
}

// StartYear returns the calendar year the academic year starts in.
func (y *Year) StartYear() int {
	return y.startYear
}

// Starts returns the term start dates.
func (y *Year) Starts() Starts {
	return y.starts
}

// TermStart returns the first day of the named term.
func (y *Year) TermStart(name string) (time.Time, error) {
	t, err := Parse(name)
	if err != nil {
		return time.Time{}, err
	}
	return y.starts.Of(t)
}

// Resolve returns the first date on or after the start of week weekOffset of
// the named term that falls on weekday. Week 0 is the week beginning on the
// term's first day, so the result always lies within
// [start+7*weekOffset, start+7*weekOffset+6].
func (y *Year) Resolve(name string, weekOffset int, weekday time.Weekday) (time.Time, error) {
	t, err := Parse(name)
	if err != nil {
		return time.Time{}, err
	}
	return y.ResolveTerm(t, weekOffset, weekday)
}

// ResolveTerm is Resolve for an already parsed term.
func (y *Year) ResolveTerm(t Term, weekOffset int, weekday time.Weekday) (time.Time, error) {
	if weekOffset < 0 {
		return time.Time{}, fmt.Errorf("%w: %d", ErrInvalidWeekOffset, weekOffset)
	}
	if weekday < time.Sunday || weekday > time.Saturday {
		return time.Time{}, fmt.Errorf("term: invalid weekday %d", int(weekday))
	}
	start, err := y.starts.Of(t)
	if err != nil {
		return time.Time{}, err
	}
	d := start.AddDate(0, 0, 7*weekOffset)
	advance := (int(weekday) - int(d.Weekday()) + 7) % 7
	return d.AddDate(0, 0, advance), nil
}
