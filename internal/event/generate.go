// Package event labels expanded occurrences with series metadata, producing
// the events that exporters and persistence layers consume.
package event

import (
	"fmt"
	"maps"
	"time"

	"github.com/google/uuid"

	"timetables/internal/config"
	"timetables/internal/expand"
	appLog "timetables/internal/log"
	"timetables/internal/model"
)

// uidNamespace scopes the name-based UUIDs given to generated events.
var uidNamespace = uuid.NewSHA1(uuid.NameSpaceDNS, []byte("timetables.invalid"))

// Series is one recurring teaching series: a pattern plus the labels every
// occurrence receives.
type Series struct {
	ID            string
	Title         string
	Location      string
	Pattern       string
	GroupTemplate string
	DefaultTerm   string
	StartYear     int
	Metadata      map[string]string
}

// SeriesFromConfig resolves per-series defaults from cfg.
func SeriesFromConfig(cfg *config.Config) []Series {
	out := make([]Series, 0, len(cfg.Series))
	for _, s := range cfg.Series {
		out = append(out, Series{
			ID:            s.ID,
			Title:         s.Title,
			Location:      s.Location,
			Pattern:       s.Pattern,
			GroupTemplate: s.GroupTemplate,
			DefaultTerm:   cfg.SeriesTerm(s),
			StartYear:     cfg.SeriesYear(s),
			Metadata:      s.Metadata,
		})
	}
	return out
}

// Generate expands s in loc and returns one event per occurrence, in
// occurrence order. Nothing is persisted.
func Generate(s Series, loc *time.Location, opts ...expand.Option) ([]model.Event, error) {
	occ, err := expand.Pattern(s.Pattern, s.StartYear, s.DefaultTerm, s.GroupTemplate, loc, opts...)
	if err != nil {
		return nil, fmt.Errorf("series %q: %w", s.ID, err)
	}

	events := make([]model.Event, 0, len(occ))
	for i, o := range occ {
		events = append(events, model.Event{
			SourceID: s.ID,
			UID:      UID(s, i, o.Start),
			Title:    s.Title,
			Location: s.Location,
			Pattern:  s.Pattern,
			Start:    o.Start,
			End:      o.End,
			StartTZ:  loc.String(),
			EndTZ:    loc.String(),
			Metadata: maps.Clone(s.Metadata),
		})
	}
	return events, nil
}

// UID derives a stable identifier for the index'th occurrence of s, so that
// regenerating an unchanged series yields the same UIDs.
func UID(s Series, index int, start time.Time) string {
	name := fmt.Sprintf("%s|%s|%s|%d|%s", s.ID, s.Pattern, s.GroupTemplate, index, start.UTC().Format(time.RFC3339))
	return uuid.NewSHA1(uidNamespace, []byte(name)).String()
}

// GenerateAll generates every series. A failing series is logged and
// reported in the error slice; the others are still generated.
func GenerateAll(series []Series, loc *time.Location, opts ...expand.Option) ([]model.Event, []error) {
	events := make([]model.Event, 0)
	errs := make([]error, 0)

	for _, s := range series {
		evs, err := Generate(s, loc, opts...)
		if err != nil {
			errs = append(errs, err)
			appLog.Error("series expansion failed", err, "series", s.ID, "pattern", s.Pattern)
			continue
		}
		appLog.Debug("series expanded", "series", s.ID, "events", len(evs))
		events = append(events, evs...)
	}

	appLog.Info("generation completed", "series_count", len(series), "event_count", len(events), "error_count", len(errs))
	return events, errs
}
