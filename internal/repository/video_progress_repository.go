package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/faculty-erp-api/internal/models"
	appErrors "github.com/noah-isme/faculty-erp-api/pkg/errors"
)

// VideoProgressRepository persists watch positions. One row per
// (employee, video) pair, maintained via upsert.
type VideoProgressRepository struct {
	db *sqlx.DB
}

// NewVideoProgressRepository builds the repository.
func NewVideoProgressRepository(db *sqlx.DB) *VideoProgressRepository {
	return &VideoProgressRepository{db: db}
}

const videoProgressColumns = `id, employee_id, video_id, watched_seconds, duration_seconds, watch_percentage, last_updated`

// Get returns the stored progress for one employee/video pair.
func (r *VideoProgressRepository) Get(ctx context.Context, employeeID, videoID string) (*models.VideoProgress, error) {
	const query = `SELECT ` + videoProgressColumns + ` FROM emp_video_progress WHERE employee_id = $1 AND video_id = $2`
	var progress models.VideoProgress
	if err := r.db.GetContext(ctx, &progress, query, employeeID, videoID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.ErrNotFound
		}
		return nil, fmt.Errorf("get video progress: %w", err)
	}
	return &progress, nil
}

// ListByEmployee returns stored progress rows for an employee, most recently
// updated first, optionally narrowed to one video.
func (r *VideoProgressRepository) ListByEmployee(ctx context.Context, filter models.VideoProgressFilter) ([]models.VideoProgress, error) {
	query := `SELECT ` + videoProgressColumns + ` FROM emp_video_progress WHERE employee_id = $1`
	args := []interface{}{filter.EmployeeID}
	if filter.VideoID != "" {
		args = append(args, filter.VideoID)
		query += fmt.Sprintf(` AND video_id = $%d`, len(args))
	}
	query += ` ORDER BY last_updated DESC`
	if filter.PageSize > 0 {
		args = append(args, filter.PageSize)
		query += fmt.Sprintf(` LIMIT $%d`, len(args))
	}
	var rows []models.VideoProgress
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("list video progress: %w", err)
	}
	return rows, nil
}

// Upsert writes the progress row, overwriting any existing pair. Callers
// decide whether the write is allowed; this method applies it verbatim.
func (r *VideoProgressRepository) Upsert(ctx context.Context, progress *models.VideoProgress) error {
	if progress.ID == "" {
		progress.ID = uuid.NewString()
	}
	if progress.LastUpdated.IsZero() {
		progress.LastUpdated = time.Now().UTC()
	}

	const query = `
INSERT INTO emp_video_progress (id, employee_id, video_id, watched_seconds, duration_seconds, watch_percentage, last_updated)
VALUES (:id, :employee_id, :video_id, :watched_seconds, :duration_seconds, :watch_percentage, :last_updated)
ON CONFLICT (employee_id, video_id) DO UPDATE
SET watched_seconds = EXCLUDED.watched_seconds,
    duration_seconds = EXCLUDED.duration_seconds,
    watch_percentage = EXCLUDED.watch_percentage,
    last_updated = EXCLUDED.last_updated`

	if _, err := r.db.NamedExecContext(ctx, query, progress); err != nil {
		return fmt.Errorf("upsert video progress: %w", err)
	}
	return nil
}
