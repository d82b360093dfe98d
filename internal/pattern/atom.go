package pattern

import (
	"time"

	"timetables/internal/term"
)

// Kind tags the variant held by an Atom.
type Kind int

const (
	// KindWeekly is a weekday list with a time slot, in a term, on one or
	// more weeks.
	KindWeekly Kind = iota
	// KindMultiple is an "xN" repetition of the group template.
	KindMultiple
	// KindDate is a single explicit calendar date with a time slot.
	KindDate
)

func (k Kind) String() string {
	switch k {
	case KindWeekly:
		return "weekly"
	case KindMultiple:
		return "multiple"
	case KindDate:
		return "date"
	}
	return "unknown"
}

// Atom is one parsed pattern segment. Atoms are never modified after
// parsing; slices must be treated as read-only.
type Atom struct {
	Kind Kind

	// Term is the segment's term, or the caller's default term when the
	// segment names none.
	Term term.Term

	// Weekdays in source order. May be empty for KindMultiple, in which
	// case the template's weekdays apply.
	Weekdays []time.Weekday
	// Time is the daily slot. HasTime is false only for a KindMultiple atom
	// that takes its slot from the template.
	Time    TimeRange
	HasTime bool

	// Weeks are zero-based week offsets in source order. Nil means week 0
	// for KindWeekly; for KindMultiple the first entry is the starting week.
	Weeks []int

	// Count and Template are set for KindMultiple.
	Count    int
	Template *GroupTemplate

	// Date is set for KindDate (midnight UTC).
	Date time.Time

	// Offset is the byte offset of the segment in the pattern, Source is
	// the trimmed segment text.
	Offset int
	Source string
}
