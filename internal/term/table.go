package term

import (
	"fmt"
	"sort"
	"time"
)

// Starts holds the first day of each term of one academic year. Dates are
// civil dates stored at midnight UTC.
type Starts struct {
	Michaelmas time.Time
	Lent       time.Time
	Easter     time.Time
}

// Of returns the start date of t.
func (s Starts) Of(t Term) (time.Time, error) {
	switch t {
	case Michaelmas:
		return s.Michaelmas, nil
	case Lent:
		return s.Lent, nil
	case Easter:
		return s.Easter, nil
	}
	return time.Time{}, fmt.Errorf("%w: %s", ErrUnknownTerm, t)
}

// Valid reports whether the three dates are set and strictly increasing.
func (s Starts) Valid() bool {
	if s.Michaelmas.IsZero() || s.Lent.IsZero() || s.Easter.IsZero() {
		return false
	}
	return s.Michaelmas.Before(s.Lent) && s.Lent.Before(s.Easter)
}

// Table looks up the term start dates of an academic year, identified by the
// calendar year in which it starts.
type Table interface {
	TermStarts(startYear int) (Starts, error)
}

// StaticTable is a read-only in-memory Table.
type StaticTable map[int]Starts

// TermStarts implements Table. A missing year is always an error; the table
// never answers with a neighbouring year.
func (t StaticTable) TermStarts(startYear int) (Starts, error) {
	s, ok := t[startYear]
	if !ok {
		return Starts{}, fmt.Errorf("%w: no term dates for %d", ErrUnknownAcademicYear, startYear)
	}
	return s, nil
}

// Years returns the registered starting years in ascending order.
func (t StaticTable) Years() []int {
	years := make([]int, 0, len(t))
	for y := range t {
		years = append(years, y)
	}
	sort.Ints(years)
	return years
}

// Validate checks that every entry is strictly increasing, that each
// Michaelmas start falls in its own starting year, and that the registered
// years form a contiguous range. A gap is a configuration error.
func (t StaticTable) Validate() error {
	years := t.Years()
	for i, y := range years {
		s := t[y]
		if !s.Valid() {
			return fmt.Errorf("term table: %d: term starts must be set and strictly increasing", y)
		}
		if s.Michaelmas.Year() != y {
			return fmt.Errorf("term table: %d: Michaelmas starts in %d", y, s.Michaelmas.Year())
		}
		if i > 0 && years[i-1] != y-1 {
			return fmt.Errorf("term table: missing academic year %d", y-1)
		}
	}
	return nil
}

// Overlay returns a table holding base's entries with extra's entries
// replacing or adding years. Neither input is modified.
func Overlay(base, extra StaticTable) StaticTable {
	out := make(StaticTable, len(base)+len(extra))
	for y, s := range base {
		out[y] = s
	}
	for y, s := range extra {
		out[y] = s
	}
	return out
}

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// defaultStarts are the published University term dates. Extending this map
// (or overlaying entries from configuration) is the only maintenance needed
// to support later years.
var defaultStarts = StaticTable{
	2011: {date(2011, 10, 4), date(2012, 1, 17), date(2012, 4, 24)},
	2012: {date(2012, 10, 2), date(2013, 1, 15), date(2013, 4, 23)},
	2013: {date(2013, 10, 8), date(2014, 1, 14), date(2014, 4, 22)},
	2014: {date(2014, 10, 7), date(2015, 1, 13), date(2015, 4, 21)},
	2015: {date(2015, 10, 6), date(2016, 1, 12), date(2016, 4, 19)},
	2016: {date(2016, 10, 4), date(2017, 1, 17), date(2017, 4, 25)},
	2017: {date(2017, 10, 3), date(2018, 1, 16), date(2018, 4, 24)},
	2018: {date(2018, 10, 2), date(2019, 1, 15), date(2019, 4, 23)},
	2019: {date(2019, 10, 8), date(2020, 1, 14), date(2020, 4, 21)},
	2020: {date(2020, 10, 6), date(2021, 1, 19), date(2021, 4, 27)},
	2021: {date(2021, 10, 5), date(2022, 1, 18), date(2022, 4, 26)},
	2022: {date(2022, 10, 4), date(2023, 1, 17), date(2023, 4, 25)},
	2023: {date(2023, 10, 3), date(2024, 1, 16), date(2024, 4, 23)},
	2024: {date(2024, 10, 8), date(2025, 1, 21), date(2025, 4, 29)},
	2025: {date(2025, 10, 7), date(2026, 1, 20), date(2026, 4, 28)},
	2026: {date(2026, 10, 6), date(2027, 1, 19), date(2027, 4, 27)},
	2027: {date(2027, 10, 5), date(2028, 1, 18), date(2028, 4, 25)},
	2028: {date(2028, 10, 3), date(2029, 1, 16), date(2029, 4, 24)},
	2029: {date(2029, 10, 2), date(2030, 1, 15), date(2030, 4, 23)},
}

// Default returns a copy of the built-in term date table.
func Default() StaticTable {
	return Overlay(defaultStarts, nil)
}
