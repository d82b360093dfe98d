// Package term models the academic year: the three teaching terms, the
// table of term start dates per starting year, and the arithmetic that maps
// a (term, week, weekday) reference onto a calendar date.
package term

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrUnknownAcademicYear is returned when a table has no entry for the
	// requested starting year.
	ErrUnknownAcademicYear = errors.New("unknown academic year")
	// ErrUnknownTerm is returned for a term name other than Michaelmas,
	// Lent or Easter (or their two-letter forms).
	ErrUnknownTerm = errors.New("unknown term")
	// ErrInvalidWeekOffset is returned for negative week offsets.
	ErrInvalidWeekOffset = errors.New("invalid week offset")
)

// Term identifies one of the three terms of an academic year.
type Term int

const (
	Michaelmas Term = iota
	Lent
	Easter
)

// All lists the terms in calendar order.
var All = []Term{Michaelmas, Lent, Easter}

func (t Term) String() string {
	switch t {
	case Michaelmas:
		return "Michaelmas"
	case Lent:
		return "Lent"
	case Easter:
		return "Easter"
	default:
		return fmt.Sprintf("Term(%d)", int(t))
	}
}

// Short returns the two-letter abbreviation used in patterns.
func (t Term) Short() string {
	return t.String()[:2]
}

// Parse maps a full or abbreviated term name onto a Term. Matching is
// case-insensitive.
func Parse(name string) (Term, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "michaelmas", "mi":
		return Michaelmas, nil
	case "lent", "le":
		return Lent, nil
	case "easter", "ea":
		return Easter, nil
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownTerm, name)
}
