package pattern

import (
	"strings"
	"time"

	"timetables/internal/term"
)

// GroupTemplate is the day and time shape that "xN" segments repeat. It is
// parsed from a single segment and cannot be changed afterwards.
type GroupTemplate struct {
	source   string
	term     term.Term
	hasTerm  bool
	weekdays []time.Weekday
	slot     TimeRange
	weeks    []int
}

// ParseGroupTemplate parses fragment, a single segment without ";", a
// multiplicity or an explicit date.
func ParseGroupTemplate(fragment string) (*GroupTemplate, error) {
	if i := strings.IndexByte(fragment, ';'); i >= 0 {
		return nil, &SyntaxError{
			Pattern: fragment,
			Offset:  i,
			Near:    fragment[i:],
			Reason:  "group template must be a single segment",
		}
	}
	spans, err := splitSegments(fragment)
	if err != nil {
		return nil, err
	}
	sp := spans[0]

	seg, err := parseSegment(fragment, sp)
	if err != nil {
		return nil, err
	}
	if seg.hasCount {
		return nil, &SyntaxError{
			Pattern: fragment,
			Offset:  seg.countPos.pos,
			Near:    fragment[seg.countPos.pos:],
			Reason:  "group template cannot carry a multiplicity",
		}
	}
	if seg.hasDate {
		return nil, &SyntaxError{
			Pattern: fragment,
			Offset:  sp.offset,
			Near:    sp.text,
			Reason:  "group template cannot be a dated slot",
		}
	}

	return &GroupTemplate{
		source:   sp.text,
		term:     seg.term,
		hasTerm:  seg.hasTerm,
		weekdays: seg.weekdays,
		slot:     seg.time,
		weeks:    seg.weeks,
	}, nil
}

// Source returns the trimmed text the template was parsed from.
func (g *GroupTemplate) Source() string {
	return g.source
}

// Term returns the template's term, if it names one.
func (g *GroupTemplate) Term() (term.Term, bool) {
	return g.term, g.hasTerm
}

// Weekdays returns a copy of the template's weekday list.
func (g *GroupTemplate) Weekdays() []time.Weekday {
	out := make([]time.Weekday, len(g.weekdays))
	copy(out, g.weekdays)
	return out
}

// Time returns the template's daily slot.
func (g *GroupTemplate) Time() TimeRange {
	return g.slot
}

// StartWeek is the first week listed in the template, or 0.
func (g *GroupTemplate) StartWeek() int {
	if len(g.weeks) == 0 {
		return 0
	}
	return g.weeks[0]
}
