package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/faculty-erp-api/internal/models"
	appErrors "github.com/noah-isme/faculty-erp-api/pkg/errors"
)

// VideoRepository reads the learning-video catalog.
type VideoRepository struct {
	db *sqlx.DB
}

// NewVideoRepository builds the repository.
func NewVideoRepository(db *sqlx.DB) *VideoRepository {
	return &VideoRepository{db: db}
}

// GetByID fetches a single video.
func (r *VideoRepository) GetByID(ctx context.Context, id string) (*models.Video, error) {
	const query = `SELECT id, title, description, video_link, created_at FROM videos WHERE id = $1`
	var video models.Video
	if err := r.db.GetContext(ctx, &video, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.ErrNotFound
		}
		return nil, fmt.Errorf("get video %s: %w", id, err)
	}
	return &video, nil
}

// List returns the catalog ordered by newest first.
func (r *VideoRepository) List(ctx context.Context, limit int) ([]models.Video, error) {
	query := `SELECT id, title, description, video_link, created_at FROM videos ORDER BY created_at DESC`
	args := []interface{}{}
	if limit > 0 {
		query += ` LIMIT $1`
		args = append(args, limit)
	}
	var videos []models.Video
	if err := r.db.SelectContext(ctx, &videos, query, args...); err != nil {
		return nil, fmt.Errorf("list videos: %w", err)
	}
	return videos, nil
}
