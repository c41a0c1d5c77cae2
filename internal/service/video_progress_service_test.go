package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/noah-isme/faculty-erp-api/internal/dto"
	"github.com/noah-isme/faculty-erp-api/internal/models"
	appErrors "github.com/noah-isme/faculty-erp-api/pkg/errors"
	"github.com/noah-isme/faculty-erp-api/pkg/jobs"
)

type fakeVideoRepo struct {
	videos map[string]*models.Video
}

func (f *fakeVideoRepo) GetByID(_ context.Context, id string) (*models.Video, error) {
	video, ok := f.videos[id]
	if !ok {
		return nil, appErrors.ErrNotFound
	}
	return video, nil
}

func (f *fakeVideoRepo) List(context.Context, int) ([]models.Video, error) {
	out := make([]models.Video, 0, len(f.videos))
	for _, v := range f.videos {
		out = append(out, *v)
	}
	return out, nil
}

type fakeProgressRepo struct {
	rows    map[string]*models.VideoProgress
	upserts int
}

func progressKey(employeeID, videoID string) string {
	return employeeID + "|" + videoID
}

func (f *fakeProgressRepo) Get(_ context.Context, employeeID, videoID string) (*models.VideoProgress, error) {
	row, ok := f.rows[progressKey(employeeID, videoID)]
	if !ok {
		return nil, appErrors.ErrNotFound
	}
	copied := *row
	return &copied, nil
}

func (f *fakeProgressRepo) ListByEmployee(_ context.Context, filter models.VideoProgressFilter) ([]models.VideoProgress, error) {
	var out []models.VideoProgress
	for _, row := range f.rows {
		if row.EmployeeID != filter.EmployeeID {
			continue
		}
		if filter.VideoID != "" && row.VideoID != filter.VideoID {
			continue
		}
		out = append(out, *row)
	}
	return out, nil
}

func (f *fakeProgressRepo) Upsert(_ context.Context, progress *models.VideoProgress) error {
	f.upserts++
	if f.rows == nil {
		f.rows = map[string]*models.VideoProgress{}
	}
	copied := *progress
	f.rows[progressKey(progress.EmployeeID, progress.VideoID)] = &copied
	return nil
}

func newProgressService(videos *fakeVideoRepo, progress *fakeProgressRepo) *VideoProgressService {
	svc := NewVideoProgressService(videos, progress, nil, nil, nil, nil, zap.NewNop(), ProgressServiceConfig{CompletionThreshold: 95})
	svc.now = func() time.Time { return time.Date(2026, 3, 11, 12, 0, 0, 0, time.UTC) }
	return svc
}

func catalog() *fakeVideoRepo {
	return &fakeVideoRepo{videos: map[string]*models.Video{
		"vid-1": {ID: "vid-1", Title: "Classroom Management"},
	}}
}

func TestTrackCreatesRow(t *testing.T) {
	progress := &fakeProgressRepo{}
	svc := newProgressService(catalog(), progress)

	row, applied, err := svc.Track(context.Background(), "emp-1", dto.TrackProgressRequest{
		VideoID:         "vid-1",
		WatchedSeconds:  120,
		DurationSeconds: 600,
	})
	require.NoError(t, err)
	assert.True(t, applied)
	assert.Equal(t, int64(120), row.WatchedSeconds)
	assert.InDelta(t, 20.0, row.WatchPercentage, 0.001)
	assert.Equal(t, 1, progress.upserts)
}

func TestTrackSkipsRegressionWithoutForce(t *testing.T) {
	progress := &fakeProgressRepo{rows: map[string]*models.VideoProgress{
		progressKey("emp-1", "vid-1"): {ID: "vp-1", EmployeeID: "emp-1", VideoID: "vid-1", WatchedSeconds: 300, DurationSeconds: 600, WatchPercentage: 50},
	}}
	svc := newProgressService(catalog(), progress)

	row, applied, err := svc.Track(context.Background(), "emp-1", dto.TrackProgressRequest{
		VideoID:         "vid-1",
		WatchedSeconds:  100,
		DurationSeconds: 600,
	})
	require.NoError(t, err)
	assert.False(t, applied)
	assert.Equal(t, int64(300), row.WatchedSeconds)
	assert.Equal(t, 0, progress.upserts)
}

func TestTrackForceOverwrites(t *testing.T) {
	progress := &fakeProgressRepo{rows: map[string]*models.VideoProgress{
		progressKey("emp-1", "vid-1"): {ID: "vp-1", EmployeeID: "emp-1", VideoID: "vid-1", WatchedSeconds: 300, DurationSeconds: 600, WatchPercentage: 50},
	}}
	svc := newProgressService(catalog(), progress)

	row, applied, err := svc.Track(context.Background(), "emp-1", dto.TrackProgressRequest{
		VideoID:         "vid-1",
		WatchedSeconds:  0,
		DurationSeconds: 600,
		Force:           true,
	})
	require.NoError(t, err)
	assert.True(t, applied)
	assert.Equal(t, int64(0), row.WatchedSeconds)
	assert.Equal(t, "vp-1", row.ID)
	assert.Equal(t, 1, progress.upserts)
}

func TestTrackClampsToDuration(t *testing.T) {
	progress := &fakeProgressRepo{}
	svc := newProgressService(catalog(), progress)

	row, _, err := svc.Track(context.Background(), "emp-1", dto.TrackProgressRequest{
		VideoID:         "vid-1",
		WatchedSeconds:  900,
		DurationSeconds: 600,
	})
	require.NoError(t, err)
	assert.Equal(t, int64(600), row.WatchedSeconds)
	assert.InDelta(t, 100.0, row.WatchPercentage, 0.001)
}

func TestTrackUnknownVideo(t *testing.T) {
	svc := newProgressService(catalog(), &fakeProgressRepo{})

	_, _, err := svc.Track(context.Background(), "emp-1", dto.TrackProgressRequest{
		VideoID:         "vid-missing",
		WatchedSeconds:  10,
		DurationSeconds: 600,
	})
	require.Error(t, err)
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErr.Code)
}

func TestTrackRejectsInvalidPayload(t *testing.T) {
	svc := newProgressService(catalog(), &fakeProgressRepo{})

	_, _, err := svc.Track(context.Background(), "emp-1", dto.TrackProgressRequest{
		WatchedSeconds:  10,
		DurationSeconds: 600,
	})
	require.Error(t, err)
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErr.Code)
}

func TestTrackStoresUnknownDuration(t *testing.T) {
	// A player that has not learned its duration yet reports zero; the
	// position is stored anyway and the percentage stays unset.
	progress := &fakeProgressRepo{}
	svc := newProgressService(catalog(), progress)

	row, applied, err := svc.Track(context.Background(), "emp-1", dto.TrackProgressRequest{
		VideoID:        "vid-1",
		WatchedSeconds: 37,
	})
	require.NoError(t, err)
	assert.True(t, applied)
	assert.Equal(t, int64(37), row.WatchedSeconds)
	assert.Zero(t, row.WatchPercentage)
	assert.Equal(t, 1, progress.upserts)
}

func TestTrackEnqueuesCompletionOnce(t *testing.T) {
	progress := &fakeProgressRepo{}
	svc := newProgressService(catalog(), progress)

	completions := make(chan VideoCompletedPayload, 2)
	queue := jobs.NewQueue("test-completions", func(_ context.Context, job jobs.Job) error {
		completions <- job.Payload.(VideoCompletedPayload)
		return nil
	}, jobs.QueueConfig{Workers: 1})
	svc.SetQueue(queue)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	queue.Start(ctx)
	defer queue.Stop()

	_, _, err := svc.Track(ctx, "emp-1", dto.TrackProgressRequest{VideoID: "vid-1", WatchedSeconds: 580, DurationSeconds: 600})
	require.NoError(t, err)

	select {
	case payload := <-completions:
		assert.Equal(t, "vid-1", payload.VideoID)
		assert.True(t, payload.Percentage >= 95)
	case <-time.After(2 * time.Second):
		t.Fatal("expected completion job")
	}

	// Crossing the threshold again must not enqueue a second job.
	_, _, err = svc.Track(ctx, "emp-1", dto.TrackProgressRequest{VideoID: "vid-1", WatchedSeconds: 590, DurationSeconds: 600})
	require.NoError(t, err)

	select {
	case <-completions:
		t.Fatal("unexpected duplicate completion job")
	case <-time.After(200 * time.Millisecond):
	}
}

func TestListRequiresEmployee(t *testing.T) {
	svc := newProgressService(catalog(), &fakeProgressRepo{})
	_, err := svc.List(context.Background(), models.VideoProgressFilter{})
	require.Error(t, err)
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrUnauthorized.Code, appErr.Code)
}
