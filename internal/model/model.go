package model

import "time"

// Occurrence is one concrete (start, end) slot produced by expanding a
// pattern. Start and End carry the location the pattern was localized in.
type Occurrence struct {
	Start time.Time
	End   time.Time
}

// Event is an occurrence labelled with the metadata of the series that
// produced it. Events are what exporters and persistence layers consume.
type Event struct {
	SourceID string // series identifier (e.g., config series ID)
	UID      string // stable per-occurrence identifier

	Title    string
	Location string

	// Pattern is the source pattern string the event was expanded from.
	Pattern string

	Start time.Time
	End   time.Time

	// StartTZ / EndTZ name the IANA zone Start and End were generated in.
	StartTZ string
	EndTZ   string

	// Metadata is a free-form attribute map copied from the series.
	Metadata map[string]string
}
