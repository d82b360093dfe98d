// Package export renders generated events into the file formats offered to
// calendar clients and spreadsheets, and writes them to disk atomically.
package export

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"sort"
	"strings"
	"time"

	"timetables/internal/config"
	"timetables/internal/ics"
	appLog "timetables/internal/log"
	"timetables/internal/model"
)

const (
	FormatICS = "ics"
	FormatCSV = "csv"
)

// Options configures rendering.
type Options struct {
	// Name labels the calendar (ICS only).
	Name string
	// Location is the zone CSV times are printed in and the zone advertised
	// by ICS output. Nil means UTC.
	Location *time.Location
	// Stamp is the generation time written into ICS DTSTAMP.
	Stamp time.Time
}

// Render serializes events in format ("ics" or "csv").
func Render(format string, events []model.Event, opts Options) ([]byte, error) {
	loc := opts.Location
	if loc == nil {
		loc = time.UTC
	}
	switch strings.ToLower(format) {
	case FormatICS:
		return ics.Encode(events, ics.EncodeOptions{
			Name:     opts.Name,
			Timezone: loc.String(),
			Stamp:    opts.Stamp,
		}), nil
	case FormatCSV:
		return renderCSV(events, loc)
	}
	return nil, fmt.Errorf("export: unknown format %q", format)
}

// WriteFile renders events and atomically replaces path with the result.
func WriteFile(path, format string, events []model.Event, opts Options) error {
	data, err := Render(format, events, opts)
	if err != nil {
		return err
	}
	if err := config.WriteFileAtomic(path, data, ".timetables-export-*.tmp"); err != nil {
		return fmt.Errorf("export: write %s: %w", path, err)
	}
	appLog.Info("export written", "path", path, "format", format, "event_count", len(events), "bytes", len(data))
	return nil
}

var csvHeader = []string{"uid", "source_id", "title", "location", "start", "end", "timezone", "pattern", "metadata"}

func renderCSV(events []model.Event, loc *time.Location) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write(csvHeader); err != nil {
		return nil, err
	}
	for _, e := range events {
		record := []string{
			e.UID,
			e.SourceID,
			e.Title,
			e.Location,
			e.Start.In(loc).Format(time.RFC3339),
			e.End.In(loc).Format(time.RFC3339),
			loc.String(),
			e.Pattern,
			joinMetadata(e.Metadata),
		}
		if err := w.Write(record); err != nil {
			return nil, err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// joinMetadata renders md as "k=v" pairs joined by ";" in key order.
func joinMetadata(md map[string]string) string {
	keys := make([]string, 0, len(md))
	for k := range md {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+"="+md[k])
	}
	return strings.Join(parts, ";")
}
