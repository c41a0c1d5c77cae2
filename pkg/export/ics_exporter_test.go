package export

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestICSExporterRender(t *testing.T) {
	exporter := NewICSExporter()
	anchor := time.Date(2026, 3, 9, 0, 0, 0, 0, time.UTC) // Monday

	payload, err := exporter.Render("Faculty Schedule", anchor, []ICSEvent{
		{
			UID:       "tt-1",
			Summary:   "Physics - Standard 10 A",
			Location:  "R-101",
			Weekly:    true,
			DayOfWeek: time.Wednesday,
			StartTime: "09:00",
			EndTime:   "10:30",
		},
		{
			UID:         "cs-1",
			Summary:     "Chemistry - Standard 9 B",
			Description: "Stoichiometry; molar mass",
			Date:        time.Date(2026, 3, 13, 0, 0, 0, 0, time.UTC),
			StartTime:   "14:00",
			EndTime:     "15:00",
		},
	})
	require.NoError(t, err)

	content := string(payload)
	assert.True(t, strings.HasPrefix(content, "BEGIN:VCALENDAR\r\n"))
	assert.Contains(t, content, "X-WR-CALNAME:Faculty Schedule")
	// weekly event anchors on the first Wednesday at or after the anchor
	assert.Contains(t, content, "DTSTART:20260311T090000")
	assert.Contains(t, content, "RRULE:FREQ=WEEKLY;BYDAY=WE")
	assert.Contains(t, content, "DTSTART:20260313T140000")
	assert.Contains(t, content, "DESCRIPTION:Stoichiometry\\; molar mass")
	assert.Equal(t, 2, strings.Count(content, "BEGIN:VEVENT"))
}

func TestICSExporterRejectsBadClock(t *testing.T) {
	exporter := NewICSExporter()
	_, err := exporter.Render("Faculty Schedule", time.Now(), []ICSEvent{
		{UID: "tt-1", Date: time.Now(), StartTime: "morning", EndTime: "10:00"},
	})
	assert.Error(t, err)
}

func TestICSExporterDefaultsEmptyEnd(t *testing.T) {
	exporter := NewICSExporter()
	payload, err := exporter.Render("Faculty Schedule", time.Now(), []ICSEvent{
		{UID: "cs-1", Date: time.Date(2026, 3, 13, 0, 0, 0, 0, time.UTC), StartTime: "14:00", EndTime: "14:00"},
	})
	require.NoError(t, err)
	// identical start and end falls back to a one hour window
	assert.Contains(t, string(payload), "DTEND:20260313T150000")
}
