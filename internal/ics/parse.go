package ics

import (
	"bytes"
	"errors"
	"strings"

	ical "github.com/arran4/golang-ical"

	appLog "timetables/internal/log"
	"timetables/internal/model"
)

// Decode reads events back from a VCALENDAR payload, such as a previous
// export. VEVENTs without a UID or start are logged and skipped.
func Decode(body []byte) ([]model.Event, error) {
	if len(body) == 0 {
		return nil, errors.New("empty ICS body")
	}

	cal, err := ical.ParseCalendar(bytes.NewReader(body))
	if err != nil {
		return nil, err
	}

	events := make([]model.Event, 0)
	for _, comp := range cal.Events() {
		ev, perr := decodeVEvent(comp)
		if perr != nil {
			appLog.Error("ics vevent decode failed", perr)
			continue
		}
		events = append(events, ev)
	}

	appLog.Debug("ics decode completed", "event_count", len(events))
	return events, nil
}

func decodeVEvent(ve *ical.VEvent) (model.Event, error) {
	var out model.Event

	uidProp := ve.GetProperty(ical.ComponentPropertyUniqueId)
	if uidProp == nil || uidProp.Value == "" {
		return out, errors.New("missing UID")
	}
	out.UID = uidProp.Value

	if p := ve.GetProperty(ical.ComponentPropertySummary); p != nil {
		out.Title = p.Value
	}
	if p := ve.GetProperty(ical.ComponentPropertyLocation); p != nil {
		out.Location = p.Value
	}
	if p := ve.GetProperty(propSource); p != nil {
		out.SourceID = p.Value
	}
	if p := ve.GetProperty(propPattern); p != nil {
		out.Pattern = p.Value
	}
	if p := ve.GetProperty(ical.ComponentPropertyDescription); p != nil {
		out.Metadata = parseMetadata(p.Value)
	}

	start, err := ve.GetStartAt()
	if err != nil {
		return out, err
	}
	end, err := ve.GetEndAt()
	if err != nil {
		return out, err
	}
	out.Start = start
	out.End = end

	return out, nil
}

// parseMetadata inverts describeMetadata. Lines without ": " are ignored.
func parseMetadata(desc string) map[string]string {
	md := make(map[string]string)
	for _, line := range strings.Split(desc, "\n") {
		k, v, ok := strings.Cut(line, ": ")
		if !ok {
			continue
		}
		md[k] = metadataUnescaper.Replace(v)
	}
	if len(md) == 0 {
		return nil
	}
	return md
}
