package dto

import "github.com/noah-isme/faculty-erp-api/internal/models"

// TrackProgressRequest is one progress report from a player. Force marks
// deliberate rewinds (seek backwards, restart) that must overwrite the
// stored position. A zero duration means the player has not learned it yet;
// the report is still stored, just without a percentage.
type TrackProgressRequest struct {
	VideoID         string `json:"video_id" validate:"required"`
	WatchedSeconds  int64  `json:"watched_seconds" validate:"gte=0"`
	DurationSeconds int64  `json:"duration_seconds" validate:"gte=0"`
	Force           bool   `json:"force"`
}

// TrackProgressResponse reports the stored row and whether the report was
// applied or kept at the previous position.
type TrackProgressResponse struct {
	Progress *models.VideoProgress `json:"progress"`
	Applied  bool                  `json:"applied"`
}
