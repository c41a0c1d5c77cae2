package export

import (
	"bytes"
	"fmt"
	"strings"
	"time"
)

// ICSEvent describes a single calendar entry to render. Weekly events carry a
// day of the week and repeat indefinitely; dated events carry a concrete date.
type ICSEvent struct {
	UID         string
	Summary     string
	Description string
	Location    string
	Weekly      bool
	DayOfWeek   time.Weekday
	Date        time.Time
	StartTime   string // HH:MM
	EndTime     string // HH:MM
}

// ICSExporter renders events into an iCalendar (RFC 5545) document.
type ICSExporter struct{}

// NewICSExporter builds an ICS exporter.
func NewICSExporter() *ICSExporter {
	return &ICSExporter{}
}

var icsByDay = map[time.Weekday]string{
	time.Sunday:    "SU",
	time.Monday:    "MO",
	time.Tuesday:   "TU",
	time.Wednesday: "WE",
	time.Thursday:  "TH",
	time.Friday:    "FR",
	time.Saturday:  "SA",
}

// Render produces ICS bytes for the events. The anchor date is used as the
// first occurrence for weekly events.
func (e *ICSExporter) Render(calendarName string, anchor time.Time, events []ICSEvent) ([]byte, error) {
	buf := &bytes.Buffer{}
	writeLine(buf, "BEGIN:VCALENDAR")
	writeLine(buf, "VERSION:2.0")
	writeLine(buf, "PRODID:-//faculty-erp-api//calendar//EN")
	writeLine(buf, "CALSCALE:GREGORIAN")
	writeLine(buf, "X-WR-CALNAME:"+escapeICS(calendarName))

	stamp := time.Now().UTC().Format("20060102T150405Z")
	for _, event := range events {
		start, end, err := eventWindow(event, anchor)
		if err != nil {
			return nil, err
		}
		writeLine(buf, "BEGIN:VEVENT")
		writeLine(buf, "UID:"+escapeICS(event.UID))
		writeLine(buf, "DTSTAMP:"+stamp)
		writeLine(buf, "DTSTART:"+start.Format("20060102T150405"))
		writeLine(buf, "DTEND:"+end.Format("20060102T150405"))
		if event.Weekly {
			writeLine(buf, "RRULE:FREQ=WEEKLY;BYDAY="+icsByDay[event.DayOfWeek])
		}
		writeLine(buf, "SUMMARY:"+escapeICS(event.Summary))
		if event.Description != "" {
			writeLine(buf, "DESCRIPTION:"+escapeICS(event.Description))
		}
		if event.Location != "" {
			writeLine(buf, "LOCATION:"+escapeICS(event.Location))
		}
		writeLine(buf, "END:VEVENT")
	}

	writeLine(buf, "END:VCALENDAR")
	return buf.Bytes(), nil
}

func eventWindow(event ICSEvent, anchor time.Time) (time.Time, time.Time, error) {
	day := event.Date
	if event.Weekly {
		day = anchor
		for day.Weekday() != event.DayOfWeek {
			day = day.AddDate(0, 0, 1)
		}
	}
	start, err := atClock(day, event.StartTime)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("event %s: %w", event.UID, err)
	}
	end, err := atClock(day, event.EndTime)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("event %s: %w", event.UID, err)
	}
	if !end.After(start) {
		end = start.Add(time.Hour)
	}
	return start, end, nil
}

func atClock(day time.Time, clock string) (time.Time, error) {
	parsed, err := time.Parse("15:04", clock)
	if err != nil {
		return time.Time{}, fmt.Errorf("bad clock value %q", clock)
	}
	return time.Date(day.Year(), day.Month(), day.Day(), parsed.Hour(), parsed.Minute(), 0, 0, day.Location()), nil
}

func writeLine(buf *bytes.Buffer, line string) {
	buf.WriteString(line)
	buf.WriteString("\r\n")
}

func escapeICS(value string) string {
	replacer := strings.NewReplacer(
		"\\", "\\\\",
		";", "\\;",
		",", "\\,",
		"\n", "\\n",
	)
	return replacer.Replace(value)
}
