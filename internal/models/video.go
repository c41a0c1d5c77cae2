package models

import "time"

// Video is a learning resource assigned to faculty. The link may point at a
// hosted media file or an external provider such as YouTube.
type Video struct {
	ID          string    `db:"id" json:"video_id"`
	Title       string    `db:"title" json:"title"`
	Description string    `db:"description" json:"description"`
	VideoLink   string    `db:"video_link" json:"video_link"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
}
