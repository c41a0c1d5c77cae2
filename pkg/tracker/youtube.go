package tracker

import "sync"

// Bridge exposes raw playback controls owned by the embedding host. The host
// runs the real player (an IFrame, a media element, a webview) and forwards
// its controls here; adapters never talk to playback machinery directly.
type Bridge struct {
	CurrentTime func() (float64, error)
	Duration    func() (float64, error)
	Seek        func(seconds float64) error
	Destroy     func() error
}

type bridgeAdapter struct {
	bridge Bridge
	kind   PlayerKind

	mu   sync.Mutex
	subs []func(Event)
}

func (a *bridgeAdapter) CurrentTime() (float64, error) {
	if a.bridge.CurrentTime == nil {
		return 0, nil
	}
	return a.bridge.CurrentTime()
}

func (a *bridgeAdapter) Duration() (float64, error) {
	if a.bridge.Duration == nil {
		return 0, nil
	}
	return a.bridge.Duration()
}

func (a *bridgeAdapter) Seek(seconds float64) error {
	if a.bridge.Seek == nil {
		return nil
	}
	return a.bridge.Seek(seconds)
}

func (a *bridgeAdapter) Destroy() error {
	if a.bridge.Destroy == nil {
		return nil
	}
	return a.bridge.Destroy()
}

func (a *bridgeAdapter) Subscribe(fn func(Event)) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.subs = append(a.subs, fn)
}

func (a *bridgeAdapter) Kind() PlayerKind {
	return a.kind
}

// Emit delivers a playback event to all subscribers. The host calls this
// when its player fires state changes.
func (a *bridgeAdapter) Emit(ev Event) {
	a.mu.Lock()
	subs := make([]func(Event), len(a.subs))
	copy(subs, a.subs)
	a.mu.Unlock()
	for _, fn := range subs {
		fn(ev)
	}
}

// YouTubeAdapter bridges an embedded YouTube IFrame player. YouTube exposes
// playhead queries only through polling, so trackers sample it on the slower
// interval.
type YouTubeAdapter struct {
	bridgeAdapter
	videoID string
}

// NewYouTubeAdapter builds the adapter for one YouTube video.
func NewYouTubeAdapter(videoID string, bridge Bridge) *YouTubeAdapter {
	return &YouTubeAdapter{
		bridgeAdapter: bridgeAdapter{bridge: bridge, kind: PlayerYouTube},
		videoID:       videoID,
	}
}

// VideoID is the YouTube identifier this adapter plays.
func (a *YouTubeAdapter) VideoID() string {
	return a.videoID
}
