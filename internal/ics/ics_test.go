package ics

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"timetables/internal/model"
)

func sampleEvents() []model.Event {
	return []model.Event{
		{
			SourceID: "ia-maths",
			UID:      "0f5c3a34-6b4f-5b7e-9d0c-6b1e0a7f2a11",
			Title:    "Vectors and Matrices",
			Location: "Lecture Theatre 1",
			Pattern:  "Mi Mon 9-10 w0-1",
			Start:    time.Date(2013, 10, 14, 8, 0, 0, 0, time.UTC),
			End:      time.Date(2013, 10, 14, 9, 0, 0, 0, time.UTC),
			Metadata: map[string]string{"lecturer": "Dr Smith"},
		},
		{
			SourceID: "ia-maths",
			UID:      "7d1f0b2e-3c4a-5d6e-8f90-1a2b3c4d5e6f",
			Title:    "Vectors and Matrices",
			Pattern:  "Mi Mon 9-10 w0-1",
			Start:    time.Date(2013, 10, 21, 8, 0, 0, 0, time.UTC),
			End:      time.Date(2013, 10, 21, 9, 0, 0, 0, time.UTC),
		},
	}
}

func TestEncode(t *testing.T) {
	stamp := time.Date(2013, 9, 1, 0, 0, 0, 0, time.UTC)
	out := string(Encode(sampleEvents(), EncodeOptions{Name: "IA Maths", Timezone: "Europe/London", Stamp: stamp}))

	assert.True(t, strings.HasPrefix(out, "BEGIN:VCALENDAR"))
	assert.Equal(t, 2, strings.Count(out, "BEGIN:VEVENT"))
	assert.Contains(t, out, "UID:0f5c3a34-6b4f-5b7e-9d0c-6b1e0a7f2a11")
	assert.Contains(t, out, "SUMMARY:Vectors and Matrices")
	assert.Contains(t, out, "DTSTART:20131014T080000Z")
	assert.Contains(t, out, "DTEND:20131021T090000Z")
	assert.Contains(t, out, "X-WR-CALNAME:IA Maths")
	assert.Contains(t, out, "X-TIMETABLES-SOURCE:ia-maths")
	assert.Contains(t, out, "DESCRIPTION:lecturer: Dr Smith")

	again := string(Encode(sampleEvents(), EncodeOptions{Name: "IA Maths", Timezone: "Europe/London", Stamp: stamp}))
	assert.Equal(t, out, again)
}

func TestDecodeExport(t *testing.T) {
	want := sampleEvents()
	body := Encode(want, EncodeOptions{Stamp: time.Date(2013, 9, 1, 0, 0, 0, 0, time.UTC)})

	got, err := Decode(body)
	require.NoError(t, err)
	require.Len(t, got, len(want))

	for i := range want {
		assert.Equal(t, want[i].UID, got[i].UID)
		assert.Equal(t, want[i].Title, got[i].Title)
		assert.Equal(t, want[i].Location, got[i].Location)
		assert.Equal(t, want[i].SourceID, got[i].SourceID)
		assert.Equal(t, want[i].Pattern, got[i].Pattern)
		assert.True(t, want[i].Start.Equal(got[i].Start), "start %d", i)
		assert.True(t, want[i].End.Equal(got[i].End), "end %d", i)
	}
	assert.Equal(t, "Dr Smith", got[0].Metadata["lecturer"])
	assert.Nil(t, got[1].Metadata)
}

func TestDecodeErrors(t *testing.T) {
	_, err := Decode(nil)
	assert.Error(t, err)
}

func TestMetadataSurvivesLineBreaks(t *testing.T) {
	md := map[string]string{
		"notes": "bring calculators\nroom may change",
		"path":  `C:\new\n`,
		"plain": "x",
	}
	assert.Equal(t, md, parseMetadata(describeMetadata(md)))

	events := sampleEvents()[:1]
	events[0].Metadata = md
	got, err := Decode(Encode(events, EncodeOptions{Stamp: time.Date(2013, 9, 1, 0, 0, 0, 0, time.UTC)}))
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, md, got[0].Metadata)
}

func TestParseMetadata(t *testing.T) {
	assert.Equal(t, map[string]string{"a": "1", "b": "x: y"}, parseMetadata("a: 1\nb: x: y\nnoise"))
	assert.Nil(t, parseMetadata("no separator"))
}
