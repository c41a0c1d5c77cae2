package models

import "time"

// VideoProgress is the persisted watch position for one (employee, video)
// pair. There is exactly one row per pair; writes are upserts with a
// monotonic-increase policy unless forced.
type VideoProgress struct {
	ID              string    `db:"id" json:"id"`
	EmployeeID      string    `db:"employee_id" json:"employee_id"`
	VideoID         string    `db:"video_id" json:"video_id"`
	WatchedSeconds  int64     `db:"watched_seconds" json:"watched_seconds"`
	DurationSeconds int64     `db:"duration_seconds" json:"duration_seconds"`
	WatchPercentage float64   `db:"watch_percentage" json:"watch_percentage"`
	LastUpdated     time.Time `db:"last_updated" json:"last_updated"`
}

// VideoProgressFilter narrows progress lookups.
type VideoProgressFilter struct {
	EmployeeID string
	VideoID    string
	PageSize   int
}
