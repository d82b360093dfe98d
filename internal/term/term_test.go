package term

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	tests := []struct {
		name string
		want Term
	}{
		{"Michaelmas", Michaelmas},
		{"Mi", Michaelmas},
		{"lent", Lent},
		{"Le", Lent},
		{"Easter", Easter},
		{"EA", Easter},
	}
	for _, tt := range tests {
		got, err := Parse(tt.name)
		require.NoError(t, err, tt.name)
		assert.Equal(t, tt.want, got, tt.name)
	}

	for _, bad := range []string{"", "Summer", "M", "Michaelmass"} {
		_, err := Parse(bad)
		assert.ErrorIs(t, err, ErrUnknownTerm, bad)
	}
}

func TestDefaultTableShape(t *testing.T) {
	table := Default()
	require.NoError(t, table.Validate())

	const week = 7 * 24 * time.Hour
	for _, y := range table.Years() {
		s, err := table.TermStarts(y)
		require.NoError(t, err)
		require.True(t, s.Valid(), "year %d", y)

		gap1 := s.Lent.Sub(s.Michaelmas)
		gap2 := s.Easter.Sub(s.Lent)
		assert.True(t, gap1 >= 14*week && gap1 <= 15*week, "year %d: Michaelmas→Lent %v", y, gap1)
		assert.True(t, gap2 >= 14*week && gap2 <= 15*week, "year %d: Lent→Easter %v", y, gap2)
	}
}

func TestUnknownYearNeverFallsBack(t *testing.T) {
	table := Default()
	for _, y := range []int{1999, 2010, 2030, 0, -1} {
		_, err := table.TermStarts(y)
		assert.ErrorIs(t, err, ErrUnknownAcademicYear, "year %d", y)

		_, err = NewYear(table, y)
		assert.ErrorIs(t, err, ErrUnknownAcademicYear, "year %d", y)
	}
}

func TestValidateDetectsGapsAndOrdering(t *testing.T) {
	table := StaticTable{
		2020: {date(2020, 10, 6), date(2021, 1, 19), date(2021, 4, 27)},
		2022: {date(2022, 10, 4), date(2023, 1, 17), date(2023, 4, 25)},
	}
	err := table.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "missing academic year 2021")

	table = StaticTable{
		2020: {date(2020, 10, 6), date(2020, 10, 6), date(2021, 4, 27)},
	}
	assert.Error(t, table.Validate())
}

func TestOverlayDoesNotMutate(t *testing.T) {
	base := Default()
	extra := StaticTable{
		2030: {date(2030, 10, 8), date(2031, 1, 21), date(2031, 4, 29)},
	}
	merged := Overlay(base, extra)

	_, err := merged.TermStarts(2030)
	require.NoError(t, err)
	_, err = base.TermStarts(2030)
	assert.ErrorIs(t, err, ErrUnknownAcademicYear)
	require.NoError(t, merged.Validate())

	_, err = Default().TermStarts(2030)
	assert.ErrorIs(t, err, ErrUnknownAcademicYear)
}

func TestTermStart(t *testing.T) {
	y, err := NewYear(Default(), 2012)
	require.NoError(t, err)

	got, err := y.TermStart("Lent")
	require.NoError(t, err)
	assert.Equal(t, date(2013, 1, 15), got)

	got, err = y.TermStart("Mi")
	require.NoError(t, err)
	assert.Equal(t, date(2012, 10, 2), got)

	_, err = y.TermStart("Trinity")
	assert.True(t, errors.Is(err, ErrUnknownTerm))
}

func TestResolveWithinFirstWeek(t *testing.T) {
	table := Default()
	for _, sy := range table.Years() {
		y, err := NewYear(table, sy)
		require.NoError(t, err)
		for _, tm := range All {
			start, err := y.TermStart(tm.String())
			require.NoError(t, err)
			for wd := time.Sunday; wd <= time.Saturday; wd++ {
				got, err := y.Resolve(tm.Short(), 0, wd)
				require.NoError(t, err)
				assert.Equal(t, wd, got.Weekday())
				assert.False(t, got.Before(start), "%d %s %s", sy, tm, wd)
				assert.True(t, got.Before(start.AddDate(0, 0, 7)), "%d %s %s", sy, tm, wd)
			}
		}
	}
}

func TestResolveMonotonicInWeek(t *testing.T) {
	y, err := NewYear(Default(), 2013)
	require.NoError(t, err)
	for wd := time.Sunday; wd <= time.Saturday; wd++ {
		prev := time.Time{}
		for w := 0; w < 12; w++ {
			got, err := y.Resolve("Michaelmas", w, wd)
			require.NoError(t, err)
			assert.False(t, got.Before(prev))
			prev = got
		}
	}
}

func TestResolveExamples(t *testing.T) {
	y, err := NewYear(Default(), 2013)
	require.NoError(t, err)

	// Michaelmas 2013 starts on Tuesday 8 October.
	tests := []struct {
		week    int
		weekday time.Weekday
		want    time.Time
	}{
		{0, time.Tuesday, date(2013, 10, 8)},
		{0, time.Wednesday, date(2013, 10, 9)},
		{0, time.Monday, date(2013, 10, 14)},
		{1, time.Monday, date(2013, 10, 21)},
		{7, time.Friday, date(2013, 11, 29)},
	}
	for _, tt := range tests {
		got, err := y.Resolve("Mi", tt.week, tt.weekday)
		require.NoError(t, err)
		assert.Equal(t, tt.want, got, "week %d %s", tt.week, tt.weekday)
	}
}

func TestResolveRejectsNegativeWeek(t *testing.T) {
	y, err := NewYear(Default(), 2013)
	require.NoError(t, err)
	_, err = y.Resolve("Lent", -1, time.Monday)
	assert.ErrorIs(t, err, ErrInvalidWeekOffset)
}
