package expand

import (
	"errors"
	"fmt"
	"time"

	"timetables/internal/model"
)

// ErrInvalidLocalTime matches every *LocalTimeError.
var ErrInvalidLocalTime = errors.New("ambiguous or nonexistent local time")

// LocalTimeError reports a wall-clock time that a daylight saving transition
// either skips or repeats in Location.
type LocalTimeError struct {
	Wall      time.Time
	Location  string
	Ambiguous bool
}

func (e *LocalTimeError) Error() string {
	what := "does not exist"
	if e.Ambiguous {
		what = "is ambiguous"
	}
	return fmt.Sprintf("%s: %s %s in %s", ErrInvalidLocalTime, e.Wall.Format("2006-01-02 15:04"), what, e.Location)
}

// Is lets errors.Is(err, ErrInvalidLocalTime) match.
func (e *LocalTimeError) Is(target error) bool {
	return target == ErrInvalidLocalTime
}

// Localize interprets the wall-clock fields of wall in loc. Unlike time.Date
// it refuses to normalize: a time inside a spring-forward gap or repeated by
// a fall-back transition is an error.
func Localize(wall time.Time, loc *time.Location) (time.Time, error) {
	if loc == nil {
		return time.Time{}, errors.New("expand: nil location")
	}
	naive := time.Date(wall.Year(), wall.Month(), wall.Day(),
		wall.Hour(), wall.Minute(), wall.Second(), wall.Nanosecond(), time.UTC)

	// Every offset loc can use near naive is in force somewhere within a day
	// and a half of it.
	var matches []time.Time
	for _, d := range []time.Duration{-36 * time.Hour, 0, 36 * time.Hour} {
		_, off := naive.Add(d).In(loc).Zone()
		cand := naive.Add(-time.Duration(off) * time.Second).In(loc)
		if _, got := cand.Zone(); got != off || !sameWall(cand, naive) {
			continue
		}
		dup := false
		for _, m := range matches {
			if m.Equal(cand) {
				dup = true
				break
			}
		}
		if !dup {
			matches = append(matches, cand)
		}
	}

	switch len(matches) {
	case 1:
		return matches[0], nil
	case 0:
		return time.Time{}, &LocalTimeError{Wall: naive, Location: loc.String()}
	default:
		return time.Time{}, &LocalTimeError{Wall: naive, Location: loc.String(), Ambiguous: true}
	}
}

func sameWall(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd &&
		a.Hour() == b.Hour() && a.Minute() == b.Minute() &&
		a.Second() == b.Second() && a.Nanosecond() == b.Nanosecond()
}

// MakeAware localizes every naive slot into loc. The first slot that cannot
// be localized fails the whole batch.
func MakeAware(slots []Naive, loc *time.Location) ([]model.Occurrence, error) {
	out := make([]model.Occurrence, 0, len(slots))
	for _, s := range slots {
		start, err := Localize(s.Start, loc)
		if err != nil {
			return nil, err
		}
		end, err := Localize(s.End, loc)
		if err != nil {
			return nil, err
		}
		out = append(out, model.Occurrence{Start: start, End: end})
	}
	return out, nil
}
