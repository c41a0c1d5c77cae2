package service

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/faculty-erp-api/internal/dto"
	"github.com/noah-isme/faculty-erp-api/internal/models"
	appErrors "github.com/noah-isme/faculty-erp-api/pkg/errors"
	"github.com/noah-isme/faculty-erp-api/pkg/jobs"
)

type videoRepository interface {
	GetByID(ctx context.Context, id string) (*models.Video, error)
	List(ctx context.Context, limit int) ([]models.Video, error)
}

type videoProgressRepository interface {
	Get(ctx context.Context, employeeID, videoID string) (*models.VideoProgress, error)
	ListByEmployee(ctx context.Context, filter models.VideoProgressFilter) ([]models.VideoProgress, error)
	Upsert(ctx context.Context, progress *models.VideoProgress) error
}

// JobVideoCompleted is enqueued once when a viewer first crosses the
// completion threshold for a video.
const JobVideoCompleted = "video.completed"

// VideoCompletedPayload is the payload for JobVideoCompleted.
type VideoCompletedPayload struct {
	EmployeeID string  `json:"employee_id"`
	VideoID    string  `json:"video_id"`
	Percentage float64 `json:"percentage"`
}

// ProgressServiceConfig tunes the tracking behaviour.
type ProgressServiceConfig struct {
	CompletionThreshold float64
	CacheTTL            time.Duration
}

// VideoProgressService persists watch positions reported by players. Writes
// follow a monotonic-increase policy: a report below the stored position is
// silently kept as-is unless the caller forces the write (seek backwards,
// deliberate rewatch).
type VideoProgressService struct {
	videos    videoRepository
	progress  videoProgressRepository
	cache     *CacheService
	metrics   *MetricsService
	queue     *jobs.Queue
	validator *validator.Validate
	logger    *zap.Logger
	config    ProgressServiceConfig
	now       func() time.Time
}

// NewVideoProgressService constructs the service.
func NewVideoProgressService(videos videoRepository, progress videoProgressRepository, cache *CacheService, metrics *MetricsService, queue *jobs.Queue, validate *validator.Validate, logger *zap.Logger, config ProgressServiceConfig) *VideoProgressService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	if config.CompletionThreshold <= 0 {
		config.CompletionThreshold = 95
	}
	return &VideoProgressService{
		videos:    videos,
		progress:  progress,
		cache:     cache,
		metrics:   metrics,
		queue:     queue,
		validator: validate,
		logger:    logger,
		config:    config,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// SetQueue attaches the completion job queue. The queue handler is a method
// on this service, so the queue is wired after construction.
func (s *VideoProgressService) SetQueue(queue *jobs.Queue) {
	s.queue = queue
}

// GetVideo returns one catalog entry.
func (s *VideoProgressService) GetVideo(ctx context.Context, id string) (*models.Video, error) {
	if id == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "video id is required")
	}
	video, err := s.videos.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, appErrors.ErrNotFound) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "video not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to fetch video")
	}
	return video, nil
}

// ListVideos returns the catalog.
func (s *VideoProgressService) ListVideos(ctx context.Context, limit int) ([]models.Video, error) {
	videos, err := s.videos.List(ctx, limit)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list videos")
	}
	return videos, nil
}

// Track applies one progress report. The returned progress is the stored row
// after the policy decision; applied reports whether the write happened.
func (s *VideoProgressService) Track(ctx context.Context, employeeID string, req dto.TrackProgressRequest) (*models.VideoProgress, bool, error) {
	if employeeID == "" {
		return nil, false, appErrors.Clone(appErrors.ErrUnauthorized, "missing employee identity")
	}
	if err := s.validator.Struct(req); err != nil {
		return nil, false, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid progress payload")
	}

	if _, err := s.videos.GetByID(ctx, req.VideoID); err != nil {
		if errors.Is(err, appErrors.ErrNotFound) {
			return nil, false, appErrors.Clone(appErrors.ErrNotFound, "video not found")
		}
		return nil, false, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to fetch video")
	}

	watched := req.WatchedSeconds
	if req.DurationSeconds > 0 && watched > req.DurationSeconds {
		watched = req.DurationSeconds
	}

	existing, err := s.progress.Get(ctx, employeeID, req.VideoID)
	if err != nil && !errors.Is(err, appErrors.ErrNotFound) {
		return nil, false, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to fetch progress")
	}

	previousPct := 0.0
	if existing != nil {
		previousPct = existing.WatchPercentage
		if watched <= existing.WatchedSeconds && !req.Force {
			if s.metrics != nil {
				s.metrics.RecordProgressWrite("skipped")
			}
			return existing, false, nil
		}
	}

	row := &models.VideoProgress{
		EmployeeID:      employeeID,
		VideoID:         req.VideoID,
		WatchedSeconds:  watched,
		DurationSeconds: req.DurationSeconds,
		WatchPercentage: watchPercentage(watched, req.DurationSeconds),
		LastUpdated:     s.now(),
	}
	if existing != nil {
		row.ID = existing.ID
	}

	if err := s.progress.Upsert(ctx, row); err != nil {
		return nil, false, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to store progress")
	}

	if s.metrics != nil {
		outcome := "applied"
		if req.Force {
			outcome = "forced"
		}
		s.metrics.RecordProgressWrite(outcome)
	}

	_ = s.cache.Invalidate(ctx, fmt.Sprintf("progress:%s:*", employeeID))

	if previousPct < s.config.CompletionThreshold && row.WatchPercentage >= s.config.CompletionThreshold && s.queue != nil {
		if err := s.queue.Enqueue(jobs.Job{
			Type: JobVideoCompleted,
			Payload: VideoCompletedPayload{
				EmployeeID: employeeID,
				VideoID:    req.VideoID,
				Percentage: row.WatchPercentage,
			},
		}); err != nil {
			s.logger.Warn("failed to enqueue completion job", zap.String("video_id", req.VideoID), zap.Error(err))
		}
	}

	return row, true, nil
}

// List returns stored progress rows for an employee, optionally narrowed to
// one video for resume lookups.
func (s *VideoProgressService) List(ctx context.Context, filter models.VideoProgressFilter) ([]models.VideoProgress, error) {
	if filter.EmployeeID == "" {
		return nil, appErrors.Clone(appErrors.ErrUnauthorized, "missing employee identity")
	}

	cacheKey := fmt.Sprintf("progress:%s:list", filter.EmployeeID)
	if filter.VideoID != "" {
		cacheKey = fmt.Sprintf("progress:%s:video:%s", filter.EmployeeID, filter.VideoID)
	}
	var cached []models.VideoProgress
	if hit, _ := s.cache.Get(ctx, cacheKey, &cached); hit {
		return cached, nil
	}

	rows, err := s.progress.ListByEmployee(ctx, filter)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list progress")
	}

	_ = s.cache.Set(ctx, cacheKey, rows, s.config.CacheTTL)
	return rows, nil
}

// HandleCompletionJob processes JobVideoCompleted. It drops the employee's
// cached progress rows so watch-history reads see the completion, and records
// it in the log stream; downstream HR integrations subscribe to these entries.
func (s *VideoProgressService) HandleCompletionJob(ctx context.Context, job jobs.Job) error {
	payload, ok := job.Payload.(VideoCompletedPayload)
	if !ok {
		return fmt.Errorf("unexpected payload type %T", job.Payload)
	}
	_ = s.cache.Invalidate(ctx, fmt.Sprintf("progress:%s:*", payload.EmployeeID))
	s.logger.Info("video completed",
		zap.String("employee_id", payload.EmployeeID),
		zap.String("video_id", payload.VideoID),
		zap.Float64("percentage", payload.Percentage),
	)
	return nil
}

func watchPercentage(watched, duration int64) float64 {
	if duration <= 0 {
		return 0
	}
	pct := float64(watched) / float64(duration) * 100
	return math.Round(pct*100) / 100
}
