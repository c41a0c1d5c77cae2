package tracker

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"
)

// Report is one watch position update sent to the progress API. Force marks
// deliberate rewinds that must overwrite the stored position server-side.
type Report struct {
	VideoID         string `json:"video_id"`
	WatchedSeconds  int64  `json:"watched_seconds"`
	DurationSeconds int64  `json:"duration_seconds"`
	Force           bool   `json:"force"`
}

// ProgressSink receives progress reports. Senders treat delivery as
// fire-and-forget; a failed send is logged and dropped, never retried at the
// cost of playback.
type ProgressSink interface {
	Send(ctx context.Context, report Report) error
}

// ProgressSource reads back the stored watch position for a video so
// playback can resume where the viewer left off.
type ProgressSource interface {
	LastProgress(ctx context.Context, videoID string) (int64, error)
}

// HTTPSink posts reports to the emp-video-progress track endpoint and, when
// a list endpoint is configured, reads stored positions back from it.
type HTTPSink struct {
	endpoint     string
	listEndpoint string
	token        string
	client       *http.Client
	logger       *zap.Logger
}

// HTTPSinkOption customises an HTTPSink.
type HTTPSinkOption func(*HTTPSink)

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(client *http.Client) HTTPSinkOption {
	return func(s *HTTPSink) { s.client = client }
}

// WithLogger attaches a logger for send failures.
func WithLogger(logger *zap.Logger) HTTPSinkOption {
	return func(s *HTTPSink) { s.logger = logger }
}

// WithListEndpoint enables LastProgress lookups against the progress list
// endpoint.
func WithListEndpoint(endpoint string) HTTPSinkOption {
	return func(s *HTTPSink) { s.listEndpoint = endpoint }
}

// NewHTTPSink builds a sink posting to the given endpoint with a bearer token.
func NewHTTPSink(endpoint, token string, opts ...HTTPSinkOption) *HTTPSink {
	sink := &HTTPSink{
		endpoint: endpoint,
		token:    token,
		client:   &http.Client{Timeout: 10 * time.Second},
		logger:   zap.NewNop(),
	}
	for _, opt := range opts {
		opt(sink)
	}
	return sink
}

// Send posts one report.
func (s *HTTPSink) Send(ctx context.Context, report Report) error {
	payload, err := json.Marshal(report)
	if err != nil {
		return fmt.Errorf("marshal progress report: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.endpoint, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("build progress request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if s.token != "" {
		req.Header.Set("Authorization", "Bearer "+s.token)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		s.logger.Warn("progress send failed", zap.String("video_id", report.VideoID), zap.Error(err))
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		err := fmt.Errorf("progress endpoint returned %d", resp.StatusCode)
		s.logger.Warn("progress send rejected", zap.String("video_id", report.VideoID), zap.Error(err))
		return err
	}
	return nil
}

// LastProgress fetches the stored watch position for a video. A video with
// no stored row resumes from zero.
func (s *HTTPSink) LastProgress(ctx context.Context, videoID string) (int64, error) {
	if s.listEndpoint == "" {
		return 0, fmt.Errorf("progress list endpoint not configured")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.listEndpoint, nil)
	if err != nil {
		return 0, fmt.Errorf("build progress lookup: %w", err)
	}
	q := req.URL.Query()
	q.Set("video_id", videoID)
	req.URL.RawQuery = q.Encode()
	if s.token != "" {
		req.Header.Set("Authorization", "Bearer "+s.token)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		return 0, fmt.Errorf("progress list endpoint returned %d", resp.StatusCode)
	}

	var body struct {
		Data []struct {
			VideoID        string `json:"video_id"`
			WatchedSeconds int64  `json:"watched_seconds"`
		} `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return 0, fmt.Errorf("decode progress list: %w", err)
	}
	for _, row := range body.Data {
		if row.VideoID == videoID {
			return row.WatchedSeconds, nil
		}
	}
	return 0, nil
}
