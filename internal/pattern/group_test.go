package pattern

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"timetables/internal/term"
)

func TestParseGroupTemplate(t *testing.T) {
	g, err := ParseGroupTemplate("  Le Tue, Thu 10 w2,4 ")
	require.NoError(t, err)

	assert.Equal(t, "Le Tue, Thu 10 w2,4", g.Source())
	tm, ok := g.Term()
	assert.True(t, ok)
	assert.Equal(t, term.Lent, tm)
	assert.Equal(t, []time.Weekday{time.Tuesday, time.Thursday}, g.Weekdays())
	assert.Equal(t, clockRange(10, 0, 11, 0), g.Time())
	assert.Equal(t, 2, g.StartWeek())

	g, err = ParseGroupTemplate("Mon 2-4")
	require.NoError(t, err)
	_, ok = g.Term()
	assert.False(t, ok)
	assert.Equal(t, 0, g.StartWeek())
}

func TestGroupTemplateIsImmutable(t *testing.T) {
	g, err := ParseGroupTemplate("Mon, Wed 9")
	require.NoError(t, err)

	days := g.Weekdays()
	days[0] = time.Sunday
	assert.Equal(t, []time.Weekday{time.Monday, time.Wednesday}, g.Weekdays())
}

func TestParseGroupTemplateErrors(t *testing.T) {
	tests := []struct {
		src    string
		offset int
	}{
		{"Mon 2-4; Tue 3", 7},
		{"Mon 2-4 x5", 8},
		{"2014-01-20 9-10", 0},
		{"x5", 0},
		{"", 0},
		{"Mon", 3},
	}
	for _, tt := range tests {
		t.Run(tt.src, func(t *testing.T) {
			g, err := ParseGroupTemplate(tt.src)
			assert.Nil(t, g)
			assert.ErrorIs(t, err, ErrSyntax)

			var se *SyntaxError
			require.True(t, errors.As(err, &se))
			assert.Equal(t, tt.offset, se.Offset)
		})
	}
}
