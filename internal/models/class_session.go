package models

import "time"

// ClassSession represents a concrete, date-stamped class instance,
// independent of the recurring timetable.
type ClassSession struct {
	ID              string    `db:"id" json:"cs_id"`
	EmployeeID      string    `db:"employee_id" json:"employee_id"`
	SessionDate     time.Time `db:"session_date" json:"session_date"`
	StartTime       string    `db:"start_time" json:"start_time"`
	EndTime         string    `db:"end_time" json:"end_time"`
	StandardID      string    `db:"std_id" json:"std_id"`
	StandardName    string    `db:"std_name" json:"std_name"`
	DivisionID      string    `db:"division_id" json:"division_id"`
	DivisionName    string    `db:"division_name" json:"division_name"`
	SubjectName     string    `db:"subject_name" json:"subject_name"`
	TopicCovered    string    `db:"topic_covered" json:"topic_covered"`
	AttendanceTaken bool      `db:"attendance_taken" json:"attendance_taken"`
	CreatedAt       time.Time `db:"created_at" json:"created_at"`
}

// ClassSessionFilter describes query params for listing class sessions.
type ClassSessionFilter struct {
	EmployeeID string
	From       *time.Time
	To         *time.Time
	PageSize   int
}
