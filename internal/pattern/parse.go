// Package pattern parses timetable date/time patterns such as
// "Mi Mon, Wed 9-10 w0,1,2" or "Tue 2-4 x5" into atoms that the expander
// turns into concrete occurrences.
//
//	pattern      := segment (";" segment)*
//	segment      := [term] weekdays time [multiplicity] [weeks]
//	              | [term] [weekdays [time]] multiplicity [weeks]
//	              | date time
//	term         := Michaelmas | Mi | Lent | Le | Easter | Ea
//	weekdays     := weekday ("," weekday)*
//	time         := clock ["-" clock]
//	clock        := hour [":" minute]
//	multiplicity := "x" integer
//	weeks        := "w" week ("," week)*
//	week         := integer ["-" integer]
//	date         := yyyy "-" mm "-" dd
package pattern

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"timetables/internal/term"
)

// Parse parses every segment of src. Segments without a term are placed in
// defaultTerm. tmpl is required only when a segment carries a multiplicity.
//
// Parsing is all or nothing: any malformed segment fails the whole pattern.
func Parse(src, defaultTerm string, tmpl *GroupTemplate) ([]Atom, error) {
	spans, err := splitSegments(src)
	if err != nil {
		return nil, err
	}

	atoms := make([]Atom, 0, len(spans))
	for _, sp := range spans {
		seg, err := parseSegment(src, sp)
		if err != nil {
			return nil, err
		}

		atom := Atom{
			Weekdays: seg.weekdays,
			Time:     seg.time,
			HasTime:  seg.hasTime,
			Weeks:    seg.weeks,
			Offset:   sp.offset,
			Source:   sp.text,
		}

		if seg.hasDate {
			atom.Kind = KindDate
			atom.Date = seg.date
			atoms = append(atoms, atom)
			continue
		}

		if seg.hasTerm {
			atom.Term = seg.term
		} else {
			t, err := term.Parse(defaultTerm)
			if err != nil {
				return nil, fmt.Errorf("segment %q: default term: %w", sp.text, err)
			}
			atom.Term = t
		}

		if seg.hasCount {
			if tmpl == nil {
				return nil, fmt.Errorf("%w: segment %q repeats x%d", ErrMissingGroupTemplate, sp.text, seg.count)
			}
			atom.Kind = KindMultiple
			atom.Count = seg.count
			atom.Template = tmpl
		} else {
			atom.Kind = KindWeekly
		}
		atoms = append(atoms, atom)
	}
	return atoms, nil
}

type span struct {
	text   string
	offset int
}

func splitSegments(src string) ([]span, error) {
	var out []span
	start := 0
	for i := 0; i <= len(src); i++ {
		if i < len(src) && src[i] != ';' {
			continue
		}
		raw := src[start:i]
		lead := len(raw) - len(strings.TrimLeft(raw, " \t\r\n"))
		text := strings.TrimSpace(raw)
		if text == "" {
			return nil, &SyntaxError{Pattern: src, Offset: start, Reason: "empty segment"}
		}
		out = append(out, span{text: text, offset: start + lead})
		start = i + 1
	}
	return out, nil
}

// segment is the raw result of parsing one segment.
type segment struct {
	term    term.Term
	hasTerm bool

	weekdays []time.Weekday
	time     TimeRange
	hasTime  bool

	count    int
	hasCount bool
	countPos token

	weeks []int

	date    time.Time
	hasDate bool
}

type segmentParser struct {
	full string
	sp   span
	toks []token
	i    int
}

func parseSegment(full string, sp span) (segment, error) {
	toks, err := lex(full, sp.text, sp.offset)
	if err != nil {
		return segment{}, err
	}
	p := &segmentParser{full: full, sp: sp, toks: toks}
	return p.parse()
}

func (p *segmentParser) peek() token {
	return p.toks[p.i]
}

func (p *segmentParser) peekAt(n int) token {
	if p.i+n >= len(p.toks) {
		return p.toks[len(p.toks)-1]
	}
	return p.toks[p.i+n]
}

func (p *segmentParser) next() token {
	tok := p.toks[p.i]
	if tok.kind != tokEOF {
		p.i++
	}
	return tok
}

func (p *segmentParser) errorf(tok token, format string, args ...any) error {
	rel := tok.pos - p.sp.offset
	near := ""
	if rel >= 0 && rel < len(p.sp.text) {
		near = p.sp.text[rel:]
	}
	return &SyntaxError{
		Pattern: p.full,
		Offset:  tok.pos,
		Near:    near,
		Reason:  fmt.Sprintf(format, args...),
	}
}

func (p *segmentParser) parse() (segment, error) {
	var s segment

	if tok := p.peek(); tok.kind == tokNumber && len(tok.text) == 4 && p.peekAt(1).kind == tokDash {
		return p.parseDate()
	}

	if tok := p.peek(); tok.kind == tokWord {
		if t, err := term.Parse(tok.text); err == nil {
			s.term = t
			s.hasTerm = true
			p.next()
		}
	}

	if _, ok := lookupWeekday(p.peek()); ok {
		days, err := p.weekdays()
		if err != nil {
			return s, err
		}
		s.weekdays = days
		// "Mon, Wed x5" takes its time from the group template.
		if !isKeyword(p.peek(), "x") {
			tr, err := p.timeRange()
			if err != nil {
				return s, err
			}
			s.time = tr
			s.hasTime = true
		}
	} else if !isKeyword(p.peek(), "x") {
		return s, p.errorf(p.peek(), "expected weekday, found %s", describe(p.peek()))
	}

	if isKeyword(p.peek(), "x") {
		s.countPos = p.next()
		n, err := p.integer("multiplicity")
		if err != nil {
			return s, err
		}
		if n < 1 {
			return s, p.errorf(s.countPos, "multiplicity must be at least 1")
		}
		s.count = n
		s.hasCount = true
	}

	if isKeyword(p.peek(), "w") {
		wtok := p.next()
		weeks, err := p.weekList()
		if err != nil {
			return s, err
		}
		if s.hasCount && len(weeks) > 1 {
			return s, p.errorf(wtok, "a repeated slot takes a single starting week")
		}
		s.weeks = weeks
	}

	if tok := p.peek(); tok.kind != tokEOF {
		return s, p.errorf(tok, "unexpected %s", describe(tok))
	}
	return s, nil
}

func (p *segmentParser) parseDate() (segment, error) {
	var s segment
	first := p.peek()
	y, err := p.integer("year")
	if err != nil {
		return s, err
	}
	if err := p.expect(tokDash); err != nil {
		return s, err
	}
	m, err := p.integer("month")
	if err != nil {
		return s, err
	}
	if err := p.expect(tokDash); err != nil {
		return s, err
	}
	d, err := p.integer("day")
	if err != nil {
		return s, err
	}
	date := time.Date(y, time.Month(m), d, 0, 0, 0, 0, time.UTC)
	if date.Year() != y || int(date.Month()) != m || date.Day() != d {
		return s, p.errorf(first, "invalid date %04d-%02d-%02d", y, m, d)
	}
	s.date = date
	s.hasDate = true

	tr, err := p.timeRange()
	if err != nil {
		return s, err
	}
	s.time = tr
	s.hasTime = true

	if tok := p.peek(); tok.kind != tokEOF {
		return s, p.errorf(tok, "unexpected %s after dated slot", describe(tok))
	}
	return s, nil
}

func (p *segmentParser) expect(kind tokenKind) error {
	tok := p.peek()
	if tok.kind != kind {
		return p.errorf(tok, "expected %s, found %s", kind, describe(tok))
	}
	p.next()
	return nil
}

func (p *segmentParser) integer(what string) (int, error) {
	tok := p.peek()
	if tok.kind != tokNumber {
		return 0, p.errorf(tok, "expected %s, found %s", what, describe(tok))
	}
	if len(tok.text) > 6 {
		return 0, p.errorf(tok, "%s %s is too large", what, tok.text)
	}
	n, err := strconv.Atoi(tok.text)
	if err != nil {
		return 0, p.errorf(tok, "invalid %s %q", what, tok.text)
	}
	p.next()
	return n, nil
}

func (p *segmentParser) weekdays() ([]time.Weekday, error) {
	var days []time.Weekday
	for {
		tok := p.peek()
		wd, ok := lookupWeekday(tok)
		if !ok {
			return nil, p.errorf(tok, "expected weekday, found %s", describe(tok))
		}
		p.next()
		days = append(days, wd)
		if p.peek().kind != tokComma {
			return days, nil
		}
		p.next()
	}
}

func (p *segmentParser) clock(start *Clock) (Clock, error) {
	tok := p.peek()
	h, err := p.integer("hour")
	if err != nil {
		return Clock{}, err
	}
	if h > 23 || len(tok.text) > 2 {
		return Clock{}, p.errorf(tok, "hour %s out of range", tok.text)
	}
	m := 0
	if p.peek().kind == tokColon {
		p.next()
		mt := p.peek()
		m, err = p.integer("minute")
		if err != nil {
			return Clock{}, err
		}
		if m > 59 || len(mt.text) != 2 {
			return Clock{}, p.errorf(mt, "minute %s out of range", mt.text)
		}
	}
	switch {
	case len(tok.text) == 2 && tok.text[0] == '0':
		// "01", "09": a zero-padded hour is already 24-hour.
		return Clock{Hour: h, Minute: m}, nil
	case start == nil:
		return Clock{Hour: startHour(h), Minute: m}, nil
	default:
		return Clock{Hour: endHour(*start, h, m), Minute: m}, nil
	}
}

// timeRange parses "start[-end]". A lone start denotes a one hour slot.
func (p *segmentParser) timeRange() (TimeRange, error) {
	start, err := p.clock(nil)
	if err != nil {
		return TimeRange{}, err
	}
	if p.peek().kind != tokDash {
		end := Clock{Hour: (start.Hour + 1) % 24, Minute: start.Minute}
		return TimeRange{Start: start, End: end}, nil
	}
	p.next()
	end, err := p.clock(&start)
	if err != nil {
		return TimeRange{}, err
	}
	return TimeRange{Start: start, End: end}, nil
}

// weekList parses "n[,n...]" where each n may be a range "a-b".
func (p *segmentParser) weekList() ([]int, error) {
	var weeks []int
	for {
		tok := p.peek()
		from, err := p.integer("week")
		if err != nil {
			return nil, err
		}
		to := from
		if p.peek().kind == tokDash {
			p.next()
			to, err = p.integer("week")
			if err != nil {
				return nil, err
			}
			if to < from {
				return nil, p.errorf(tok, "week range %d-%d runs backwards", from, to)
			}
		}
		for w := from; w <= to; w++ {
			weeks = append(weeks, w)
		}
		if p.peek().kind != tokComma {
			return weeks, nil
		}
		p.next()
	}
}

var weekdayNames = map[string]time.Weekday{
	"mon": time.Monday, "monday": time.Monday,
	"tue": time.Tuesday, "tues": time.Tuesday, "tuesday": time.Tuesday,
	"wed": time.Wednesday, "weds": time.Wednesday, "wednesday": time.Wednesday,
	"thu": time.Thursday, "thur": time.Thursday, "thurs": time.Thursday, "thursday": time.Thursday,
	"fri": time.Friday, "friday": time.Friday,
	"sat": time.Saturday, "saturday": time.Saturday,
	"sun": time.Sunday, "sunday": time.Sunday,
}

func lookupWeekday(tok token) (time.Weekday, bool) {
	if tok.kind != tokWord {
		return 0, false
	}
	wd, ok := weekdayNames[strings.ToLower(tok.text)]
	return wd, ok
}

func isKeyword(tok token, kw string) bool {
	return tok.kind == tokWord && strings.EqualFold(tok.text, kw)
}

func describe(tok token) string {
	if tok.kind == tokEOF {
		return tok.kind.String()
	}
	return fmt.Sprintf("%s %q", tok.kind, tok.text)
}
