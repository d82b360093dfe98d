package pattern

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"timetables/internal/term"
)

func clockRange(h1, m1, h2, m2 int) TimeRange {
	return TimeRange{Start: Clock{h1, m1}, End: Clock{h2, m2}}
}

func TestParseWeekly(t *testing.T) {
	tests := []struct {
		src      string
		def      string
		term     term.Term
		weekdays []time.Weekday
		slot     TimeRange
		weeks    []int
	}{
		{"Mi Mon, Wed 9-10", "Lent", term.Michaelmas, []time.Weekday{time.Monday, time.Wednesday}, clockRange(9, 0, 10, 0), nil},
		{"Tue 2-4", "Lent", term.Lent, []time.Weekday{time.Tuesday}, clockRange(14, 0, 16, 0), nil},
		{"Michaelmas Thu 11-1 w0,2,1", "Easter", term.Michaelmas, []time.Weekday{time.Thursday}, clockRange(11, 0, 13, 0), []int{0, 2, 1}},
		{"easter fri 9:30-11:15 w1-3,5", "Lent", term.Easter, []time.Weekday{time.Friday}, clockRange(9, 30, 11, 15), []int{1, 2, 3, 5}},
		{"Sat 23-1", "Mi", term.Michaelmas, []time.Weekday{time.Saturday}, clockRange(23, 0, 1, 0), nil},
		{"Mon 10", "Mi", term.Michaelmas, []time.Weekday{time.Monday}, clockRange(10, 0, 11, 0), nil},
		{"Le Sunday 7-8", "Mi", term.Lent, []time.Weekday{time.Sunday}, clockRange(19, 0, 20, 0), nil},
		{"Mon 12-1", "Mi", term.Michaelmas, []time.Weekday{time.Monday}, clockRange(12, 0, 13, 0), nil},
		{"Mon 14:00-15.30", "Mi", term.Michaelmas, []time.Weekday{time.Monday}, clockRange(14, 0, 15, 30), nil},
		{"Sun 01:30-03", "Mi", term.Michaelmas, []time.Weekday{time.Sunday}, clockRange(1, 30, 3, 0), nil},
		{"Mon 10-03", "Mi", term.Michaelmas, []time.Weekday{time.Monday}, clockRange(10, 0, 3, 0), nil},
	}

	for _, tt := range tests {
		t.Run(tt.src, func(t *testing.T) {
			atoms, err := Parse(tt.src, tt.def, nil)
			require.NoError(t, err)
			require.Len(t, atoms, 1)

			a := atoms[0]
			assert.Equal(t, KindWeekly, a.Kind)
			assert.Equal(t, tt.term, a.Term)
			assert.Equal(t, tt.weekdays, a.Weekdays)
			assert.Equal(t, tt.slot, a.Time)
			assert.True(t, a.HasTime)
			assert.Equal(t, tt.weeks, a.Weeks)
			assert.Equal(t, 0, a.Offset)
			assert.Equal(t, tt.src, a.Source)
		})
	}
}

func TestParseMidnightSlot(t *testing.T) {
	atoms, err := Parse("Fri 23-1", "Mi", nil)
	require.NoError(t, err)
	assert.True(t, atoms[0].Time.CrossesMidnight())

	atoms, err = Parse("Fri 9-10", "Mi", nil)
	require.NoError(t, err)
	assert.False(t, atoms[0].Time.CrossesMidnight())
}

func TestParseSegmentsKeepOrderAndOffsets(t *testing.T) {
	src := "Mi Mon 9;  Le Tue 10 ; 2014-01-20 9-10"
	atoms, err := Parse(src, "Easter", nil)
	require.NoError(t, err)
	require.Len(t, atoms, 3)

	assert.Equal(t, term.Michaelmas, atoms[0].Term)
	assert.Equal(t, 0, atoms[0].Offset)

	assert.Equal(t, term.Lent, atoms[1].Term)
	assert.Equal(t, 11, atoms[1].Offset)
	assert.Equal(t, "Le Tue 10", atoms[1].Source)

	assert.Equal(t, KindDate, atoms[2].Kind)
	assert.Equal(t, time.Date(2014, 1, 20, 0, 0, 0, 0, time.UTC), atoms[2].Date)
	assert.Equal(t, clockRange(9, 0, 10, 0), atoms[2].Time)
}

func TestParseMultiplicity(t *testing.T) {
	tmpl, err := ParseGroupTemplate("Mon 2-4")
	require.NoError(t, err)

	atoms, err := Parse("Mon 2-4 x5", "Michaelmas", tmpl)
	require.NoError(t, err)
	require.Len(t, atoms, 1)
	assert.Equal(t, KindMultiple, atoms[0].Kind)
	assert.Equal(t, 5, atoms[0].Count)
	assert.Same(t, tmpl, atoms[0].Template)

	atoms, err = Parse("Ea x3 w2", "Michaelmas", tmpl)
	require.NoError(t, err)
	a := atoms[0]
	assert.Equal(t, KindMultiple, a.Kind)
	assert.Equal(t, term.Easter, a.Term)
	assert.Empty(t, a.Weekdays)
	assert.False(t, a.HasTime)
	assert.Equal(t, []int{2}, a.Weeks)
}

func TestParseMultiplicityWeekdaysOnly(t *testing.T) {
	tmpl, err := ParseGroupTemplate("Tue 2-4 w1")
	require.NoError(t, err)

	atoms, err := Parse("Mon, Wed x5", "Michaelmas", tmpl)
	require.NoError(t, err)
	require.Len(t, atoms, 1)
	a := atoms[0]
	assert.Equal(t, KindMultiple, a.Kind)
	assert.Equal(t, []time.Weekday{time.Monday, time.Wednesday}, a.Weekdays)
	assert.False(t, a.HasTime)
	assert.Equal(t, 5, a.Count)

	// Without a multiplicity the time is still required.
	_, err = Parse("Mon, Wed", "Michaelmas", tmpl)
	assert.ErrorIs(t, err, ErrSyntax)
}

func TestParseMissingGroupTemplate(t *testing.T) {
	_, err := Parse("Mi Mon 9-10; Mon 2-4 x5", "Michaelmas", nil)
	assert.ErrorIs(t, err, ErrMissingGroupTemplate)
	assert.NotErrorIs(t, err, ErrSyntax)
}

func TestParseDefaultTerm(t *testing.T) {
	_, err := Parse("Mon 9", "Summer", nil)
	assert.ErrorIs(t, err, term.ErrUnknownTerm)

	// The default is only consulted by segments that name no term.
	atoms, err := Parse("Le Mon 9", "Summer", nil)
	require.NoError(t, err)
	assert.Equal(t, term.Lent, atoms[0].Term)
}

func TestParseSyntaxErrors(t *testing.T) {
	tests := []struct {
		src    string
		offset int
		near   string
	}{
		{"Mi Mon 9-10; Tue 25-3", 17, "25-3"},
		{"Mon", 3, ""},
		{"Mon 9-10 x0", 9, "x0"},
		{"Mon 9-10 y", 9, "y"},
		{"Mon 9-10;", 9, ""},
		{"Mon 9-10 & Tue", 9, "& Tue"},
		{"2014-02-30 9-10", 0, "2014-02-30 9-10"},
		{"Mon 9:5-10", 6, "5-10"},
		{"Mon 9-10 w3-1", 10, "3-1"},
		{"Summer Mon 9", 0, "Summer Mon 9"},
		{"Mon, 9-10", 5, "9-10"},
		{"Mon 9-10 w", 10, ""},
		{"Mon 9-10 x4 w1,3", 12, "w1,3"},
		{"", 0, ""},
	}

	for _, tt := range tests {
		t.Run(tt.src, func(t *testing.T) {
			atoms, err := Parse(tt.src, "Michaelmas", nil)
			require.Error(t, err)
			assert.Nil(t, atoms)
			assert.ErrorIs(t, err, ErrSyntax)

			var se *SyntaxError
			require.True(t, errors.As(err, &se))
			assert.Equal(t, tt.src, se.Pattern)
			assert.Equal(t, tt.offset, se.Offset)
			assert.Equal(t, tt.near, se.Near)
			assert.NotEmpty(t, se.Reason)
		})
	}
}

func TestParseIsAtomic(t *testing.T) {
	atoms, err := Parse("Mi Mon 9-10; Tue 9-10; Wed nine", "Lent", nil)
	assert.ErrorIs(t, err, ErrSyntax)
	assert.Empty(t, atoms)
}
