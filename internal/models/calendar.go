package models

import "time"

// EventKind distinguishes the two calendar event sources.
type EventKind string

const (
	EventKindRecurring EventKind = "recurring"
	EventKindDated     EventKind = "dated"
)

// SourceState reports the availability of a calendar data source.
type SourceState string

const (
	SourceOK          SourceState = "ok"
	SourceUnavailable SourceState = "unavailable"
)

// CalendarEvent is the derived, in-memory shape both timetable slots and
// class sessions normalise into for rendering. It is rebuilt on every
// aggregation pass and never persisted. A session on a day that also has a
// recurring slot produces two events; the sources are not reconciled.
type CalendarEvent struct {
	ID        string         `json:"id"`
	Title     string         `json:"title"`
	Kind      EventKind      `json:"kind"`
	DayOfWeek *int           `json:"day_of_week,omitempty"` // calendar convention, Sunday=0
	Date      *time.Time     `json:"date,omitempty"`
	StartTime string         `json:"start_time"` // HH:MM
	EndTime   string         `json:"end_time"`   // HH:MM
	ColorTag  string         `json:"color_tag"`
	Metadata  EventMetadata  `json:"metadata"`
}

// EventMetadata carries display detail for a calendar event.
type EventMetadata struct {
	Subject         string `json:"subject,omitempty"`
	Room            string `json:"room,omitempty"`
	Topic           string `json:"topic,omitempty"`
	AttendanceTaken *bool  `json:"attendance_taken,omitempty"`
	Duration        string `json:"duration,omitempty"`
	StandardID      string `json:"std_id,omitempty"`
	StandardName    string `json:"std_name,omitempty"`
	DivisionID      string `json:"division_id,omitempty"`
	DivisionName    string `json:"division_name,omitempty"`
}

// ScheduleStats summarises an aggregation pass.
type ScheduleStats struct {
	TotalClasses    int     `json:"total_classes"`
	TotalHours      float64 `json:"total_hours"`
	UpcomingClasses int     `json:"upcoming_classes"`
	UniqueSections  int     `json:"unique_sections"`
}

// DateRange is an inclusive calendar date window.
type DateRange struct {
	From time.Time `json:"from"`
	To   time.Time `json:"to"`
}

// SourceStates reports per-source availability for one aggregation pass.
type SourceStates struct {
	Timetable     SourceState `json:"timetable"`
	ClassSessions SourceState `json:"class_sessions"`
}

// FacultyCalendar is the merged schedule for one employee over one window.
type FacultyCalendar struct {
	EmployeeID  string          `json:"employee_id"`
	Range       DateRange       `json:"range"`
	Events      []CalendarEvent `json:"events"`
	Stats       ScheduleStats   `json:"stats"`
	Sources     SourceStates    `json:"sources"`
	GeneratedAt time.Time       `json:"generated_at"`
}
