package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/faculty-erp-api/internal/models"
)

// ClassSessionRepository reads concrete, date-stamped class sessions.
type ClassSessionRepository struct {
	db *sqlx.DB
}

// NewClassSessionRepository builds the repository.
func NewClassSessionRepository(db *sqlx.DB) *ClassSessionRepository {
	return &ClassSessionRepository{db: db}
}

const classSessionColumns = `id, employee_id, session_date, start_time, end_time, std_id, std_name, division_id, division_name, subject_name, topic_covered, attendance_taken, created_at`

// ListByEmployee returns the employee's class sessions inside the optional
// date window, ordered chronologically.
func (r *ClassSessionRepository) ListByEmployee(ctx context.Context, filter models.ClassSessionFilter) ([]models.ClassSession, error) {
	var sb strings.Builder
	sb.WriteString("SELECT " + classSessionColumns + " FROM class_sessions WHERE employee_id = $1")
	args := []interface{}{filter.EmployeeID}

	if filter.From != nil {
		args = append(args, *filter.From)
		fmt.Fprintf(&sb, " AND session_date >= $%d", len(args))
	}
	if filter.To != nil {
		args = append(args, *filter.To)
		fmt.Fprintf(&sb, " AND session_date <= $%d", len(args))
	}

	sb.WriteString(" ORDER BY session_date ASC, start_time ASC")
	if filter.PageSize > 0 {
		args = append(args, filter.PageSize)
		fmt.Fprintf(&sb, " LIMIT $%d", len(args))
	}

	var sessions []models.ClassSession
	if err := r.db.SelectContext(ctx, &sessions, sb.String(), args...); err != nil {
		return nil, fmt.Errorf("list class sessions: %w", err)
	}
	return sessions, nil
}
