package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/faculty-erp-api/internal/models"
)

// TimetableRepository reads the recurring weekly timetable for faculty.
// Slots are maintained by the academic office; this service never writes them.
type TimetableRepository struct {
	db *sqlx.DB
}

// NewTimetableRepository builds the repository.
func NewTimetableRepository(db *sqlx.DB) *TimetableRepository {
	return &TimetableRepository{db: db}
}

const timetableColumns = `id, employee_id, day_of_week, start_time, end_time, std_id, std_name, division_id, division_name, subject_name, room_no, created_at`

// ListByEmployee returns the employee's timetable slots, optionally narrowed
// to a single weekday, ordered by day and start time.
func (r *TimetableRepository) ListByEmployee(ctx context.Context, filter models.TimetableFilter) ([]models.TimetableSlot, error) {
	var sb strings.Builder
	sb.WriteString("SELECT " + timetableColumns + " FROM timetable_slots WHERE employee_id = $1")
	args := []interface{}{filter.EmployeeID}

	if filter.DayOfWeek != nil {
		args = append(args, *filter.DayOfWeek)
		fmt.Fprintf(&sb, " AND day_of_week = $%d", len(args))
	}

	sb.WriteString(" ORDER BY day_of_week ASC, start_time ASC")
	if filter.PageSize > 0 {
		args = append(args, filter.PageSize)
		fmt.Fprintf(&sb, " LIMIT $%d", len(args))
	}

	var slots []models.TimetableSlot
	if err := r.db.SelectContext(ctx, &slots, sb.String(), args...); err != nil {
		return nil, fmt.Errorf("list timetable slots: %w", err)
	}
	return slots, nil
}
