package ics

import (
	"sort"
	"strings"
	"time"

	ical "github.com/arran4/golang-ical"

	"timetables/internal/model"
)

const (
	productID = "-//timetables//Academic timetable export//EN"

	propSource  ical.ComponentProperty = "X-TIMETABLES-SOURCE"
	propPattern ical.ComponentProperty = "X-TIMETABLES-PATTERN"
)

// EncodeOptions controls calendar-level properties of an export.
type EncodeOptions struct {
	// Name is shown by clients as the calendar title (X-WR-CALNAME).
	Name string
	// Timezone is advertised as X-WR-TIMEZONE; event times are written in UTC.
	Timezone string
	// Stamp is written as DTSTAMP on every event. Pass a fixed value to get
	// byte-identical output for identical input.
	Stamp time.Time
}

// Encode serializes events as a VCALENDAR. Metadata keys are written to the
// DESCRIPTION in sorted order, one "key: value" line each.
func Encode(events []model.Event, opts EncodeOptions) []byte {
	cal := ical.NewCalendar()
	cal.SetMethod(ical.MethodPublish)
	cal.SetProductId(productID)
	if opts.Name != "" {
		cal.SetXWRCalName(opts.Name)
	}
	if opts.Timezone != "" {
		cal.SetXWRTimezone(opts.Timezone)
	}

	for _, e := range events {
		ve := cal.AddEvent(e.UID)
		ve.SetDtStampTime(opts.Stamp)
		ve.SetStartAt(e.Start)
		ve.SetEndAt(e.End)
		ve.SetSummary(e.Title)
		if e.Location != "" {
			ve.SetLocation(e.Location)
		}
		if desc := describeMetadata(e.Metadata); desc != "" {
			ve.SetDescription(desc)
		}
		ve.SetProperty(propSource, e.SourceID)
		if e.Pattern != "" {
			ve.SetProperty(propPattern, e.Pattern)
		}
	}

	return []byte(cal.Serialize())
}

var (
	metadataEscaper   = strings.NewReplacer(`\`, `\\`, "\n", `\n`, "\r", `\r`)
	metadataUnescaper = strings.NewReplacer(`\\`, `\`, `\n`, "\n", `\r`, "\r")
)

// describeMetadata renders one "key: value" line per entry. Backslashes and
// line breaks inside values are escaped so each entry stays on its line.
func describeMetadata(md map[string]string) string {
	if len(md) == 0 {
		return ""
	}
	keys := make([]string, 0, len(md))
	for k := range md {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	lines := make([]string, 0, len(keys))
	for _, k := range keys {
		lines = append(lines, k+": "+metadataEscaper.Replace(md[k]))
	}
	return strings.Join(lines, "\n")
}
