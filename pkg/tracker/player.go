package tracker

import (
	"net/url"
	"strings"
)

// PlayerKind identifies which playback backend a video link resolves to.
type PlayerKind string

const (
	PlayerYouTube PlayerKind = "youtube"
	PlayerNative  PlayerKind = "native"
)

// EventType enumerates playback events a player can emit.
type EventType string

const (
	EventReady EventType = "ready"
	EventPlay  EventType = "play"
	EventPause EventType = "pause"
	EventSeek  EventType = "seek"
	EventEnded EventType = "ended"
	EventError EventType = "error"
)

// Event is a playback notification. Position is the playhead in seconds at
// the time of the event.
type Event struct {
	Type     EventType
	Position float64
}

// Player is the minimal control surface a tracker needs. Implementations
// bridge to whatever actually plays the media; the tracker never touches the
// player beyond this interface.
type Player interface {
	CurrentTime() (float64, error)
	Duration() (float64, error)
	Seek(seconds float64) error
	Subscribe(fn func(Event))
	Destroy() error
	Kind() PlayerKind
}

// Detect sniffs a video link and picks the player backend. Anything that is
// not a recognised YouTube link plays through the native backend.
func Detect(videoURL string) PlayerKind {
	parsed, err := url.Parse(videoURL)
	if err != nil {
		return PlayerNative
	}
	host := strings.ToLower(parsed.Hostname())
	host = strings.TrimPrefix(host, "www.")
	if host == "youtube.com" || host == "m.youtube.com" || host == "youtu.be" {
		return PlayerYouTube
	}
	return PlayerNative
}

// ExtractYouTubeID pulls the video identifier out of the common YouTube link
// shapes: watch?v=, youtu.be/ and embed/. It returns "" when no identifier
// is found.
func ExtractYouTubeID(videoURL string) string {
	parsed, err := url.Parse(videoURL)
	if err != nil {
		return ""
	}
	host := strings.TrimPrefix(strings.ToLower(parsed.Hostname()), "www.")

	switch host {
	case "youtu.be":
		return strings.Trim(parsed.Path, "/")
	case "youtube.com", "m.youtube.com":
		if id := parsed.Query().Get("v"); id != "" {
			return id
		}
		if rest, ok := strings.CutPrefix(parsed.Path, "/embed/"); ok {
			if idx := strings.IndexByte(rest, '/'); idx >= 0 {
				rest = rest[:idx]
			}
			return rest
		}
	}
	return ""
}
