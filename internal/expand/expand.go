// Package expand turns parsed timetable patterns into concrete, timezone
// aware occurrences for one academic year.
//
// Expansion is a pure function of its inputs. Group templates are accepted
// as source text and re-parsed on every call so that no parsed state is
// shared between expansions.
package expand

import (
	"fmt"
	"time"

	"github.com/teambition/rrule-go"

	"timetables/internal/model"
	"timetables/internal/pattern"
	"timetables/internal/term"
)

// Naive is a slot of wall-clock times not yet bound to a location. The
// fields carry their wall-clock values in UTC.
type Naive struct {
	Start time.Time
	End   time.Time
}

type options struct {
	table term.Table
}

// Option configures Patterns and Pattern.
type Option func(*options)

// WithTable replaces the built-in term date table.
func WithTable(t term.Table) Option {
	return func(o *options) {
		o.table = t
	}
}

// Patterns expands each pattern string relative to the academic year that
// starts in startYear and returns one occurrence list per pattern, in input
// order. Segments that name no term are placed in defaultTerm. groupTemplate
// is the fragment "xN" segments repeat; pass "" when there is none.
//
// Any failure fails the whole call; no partial result is returned.
func Patterns(patterns []string, startYear int, defaultTerm, groupTemplate string, loc *time.Location, opts ...Option) ([][]model.Occurrence, error) {
	o := options{table: term.Default()}
	for _, opt := range opts {
		opt(&o)
	}
	if loc == nil {
		return nil, fmt.Errorf("expand: nil location")
	}

	var tmpl *pattern.GroupTemplate
	if groupTemplate != "" {
		g, err := pattern.ParseGroupTemplate(groupTemplate)
		if err != nil {
			return nil, fmt.Errorf("group template: %w", err)
		}
		tmpl = g
	}

	year, err := term.NewYear(o.table, startYear)
	if err != nil {
		return nil, err
	}

	results := make([][]model.Occurrence, 0, len(patterns))
	for _, src := range patterns {
		atoms, err := pattern.Parse(src, defaultTerm, tmpl)
		if err != nil {
			return nil, err
		}
		slots, err := Atoms(atoms, year)
		if err != nil {
			return nil, err
		}
		occ, err := MakeAware(slots, loc)
		if err != nil {
			return nil, fmt.Errorf("pattern %q: %w", src, err)
		}
		results = append(results, occ)
	}
	return results, nil
}

// Pattern expands a single pattern string. See Patterns.
func Pattern(src string, startYear int, defaultTerm, groupTemplate string, loc *time.Location, opts ...Option) ([]model.Occurrence, error) {
	res, err := Patterns([]string{src}, startYear, defaultTerm, groupTemplate, loc, opts...)
	if err != nil {
		return nil, err
	}
	return res[0], nil
}

// Atoms resolves parsed atoms against year. Occurrences come out in atom
// order; within an atom, weekday list order first and week list order
// second. Week lists are never re-sorted.
func Atoms(atoms []pattern.Atom, year *term.Year) ([]Naive, error) {
	var out []Naive
	for _, a := range atoms {
		var (
			slots []Naive
			err   error
		)
		switch a.Kind {
		case pattern.KindWeekly:
			slots, err = weekly(a, year)
		case pattern.KindMultiple:
			slots, err = multiple(a, year)
		case pattern.KindDate:
			slots = []Naive{slot(a.Date, a.Time)}
		default:
			err = fmt.Errorf("unknown atom kind %d", int(a.Kind))
		}
		if err != nil {
			return nil, fmt.Errorf("segment %q: %w", a.Source, err)
		}
		out = append(out, slots...)
	}
	return out, nil
}

func weekly(a pattern.Atom, year *term.Year) ([]Naive, error) {
	weeks := a.Weeks
	if len(weeks) == 0 {
		weeks = []int{0}
	}
	out := make([]Naive, 0, len(a.Weekdays)*len(weeks))
	for _, wd := range a.Weekdays {
		for _, w := range weeks {
			day, err := year.ResolveTerm(a.Term, w, wd)
			if err != nil {
				return nil, err
			}
			out = append(out, slot(day, a.Time))
		}
	}
	return out, nil
}

// multiple repeats the group template Count times, one week apart, starting
// from the atom's week (or the template's first week). The atom's own
// weekdays and slot, when given, take precedence over the template's.
// Count is a number of weeks per weekday, so "Mon, Wed 2-4 x5" yields ten
// meetings: five Mondays, then five Wednesdays.
func multiple(a pattern.Atom, year *term.Year) ([]Naive, error) {
	if a.Template == nil {
		return nil, pattern.ErrMissingGroupTemplate
	}
	if a.Count < 1 {
		return nil, fmt.Errorf("multiplicity x%d must be at least 1", a.Count)
	}

	days := a.Weekdays
	if len(days) == 0 {
		days = a.Template.Weekdays()
	}
	tr := a.Time
	if !a.HasTime {
		tr = a.Template.Time()
	}
	startWeek := a.Template.StartWeek()
	if len(a.Weeks) > 0 {
		startWeek = a.Weeks[0]
	}

	out := make([]Naive, 0, len(days)*a.Count)
	for _, wd := range days {
		first, err := year.ResolveTerm(a.Term, startWeek, wd)
		if err != nil {
			return nil, err
		}
		dates, err := repeatWeekly(first, a.Count)
		if err != nil {
			return nil, err
		}
		for _, d := range dates {
			out = append(out, slot(d, tr))
		}
	}
	return out, nil
}

// repeatWeekly returns count dates one week apart beginning with first.
func repeatWeekly(first time.Time, count int) ([]time.Time, error) {
	r, err := rrule.NewRRule(rrule.ROption{
		Freq:    rrule.WEEKLY,
		Count:   count,
		Dtstart: first,
	})
	if err != nil {
		return nil, err
	}
	dates := r.All()
	if len(dates) != count {
		return nil, fmt.Errorf("weekly rule produced %d dates, want %d", len(dates), count)
	}
	return dates, nil
}

// slot combines a civil date with a time range. An end that is not after the
// start falls on the next day.
func slot(day time.Time, tr pattern.TimeRange) Naive {
	y, m, d := day.Date()
	start := time.Date(y, m, d, tr.Start.Hour, tr.Start.Minute, 0, 0, time.UTC)
	end := time.Date(y, m, d, tr.End.Hour, tr.End.Minute, 0, 0, time.UTC)
	if tr.CrossesMidnight() {
		end = end.AddDate(0, 0, 1)
	}
	return Naive{Start: start, End: end}
}
