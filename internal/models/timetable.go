package models

import "time"

// TimetableSlot represents a recurring weekly teaching assignment. Rows are
// administered elsewhere and read-only to this service. DayOfWeek uses the
// backend convention Monday=0 .. Sunday=6.
type TimetableSlot struct {
	ID           string    `db:"id" json:"timetable_id"`
	EmployeeID   string    `db:"employee_id" json:"employee_id"`
	DayOfWeek    int       `db:"day_of_week" json:"day_of_week"`
	StartTime    string    `db:"start_time" json:"start_time"`
	EndTime      string    `db:"end_time" json:"end_time"`
	StandardID   string    `db:"std_id" json:"std_id"`
	StandardName string    `db:"std_name" json:"std_name"`
	DivisionID   string    `db:"division_id" json:"division_id"`
	DivisionName string    `db:"division_name" json:"division_name"`
	SubjectName  string    `db:"subject_name" json:"subject_name"`
	RoomNo       string    `db:"room_no" json:"room_no"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
}

// TimetableFilter describes query params for listing timetable slots.
type TimetableFilter struct {
	EmployeeID string
	DayOfWeek  *int
	PageSize   int
}
