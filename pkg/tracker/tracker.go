package tracker

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"
)

// State is the tracker lifecycle phase.
type State string

const (
	StateIdle         State = "idle"
	StateInitializing State = "initializing"
	StateReady        State = "ready"
	StatePlaying      State = "playing"
	StatePaused       State = "paused"
	StateEnded        State = "ended"
	StateDestroyed    State = "destroyed"
)

const (
	// DefaultSendThreshold is how many seconds of new playback accumulate
	// before a periodic report goes out.
	DefaultSendThreshold = 10.0

	youTubeSampleInterval = 10 * time.Second
	nativeSampleInterval  = 5 * time.Second

	sendTimeout = 10 * time.Second
)

// ErrDestroyed is returned by operations on a destroyed tracker.
var ErrDestroyed = errors.New("tracker destroyed")

// Config tunes a Tracker.
type Config struct {
	VideoID string
	// SampleInterval overrides the per-backend default (10s YouTube,
	// 5s native).
	SampleInterval time.Duration
	// SendThreshold overrides DefaultSendThreshold.
	SendThreshold float64
	Sink          ProgressSink
	Logger        *zap.Logger
}

// Tracker follows one player through its lifecycle and reports watch
// positions to a sink. Periodic reports are throttled by the send threshold;
// pause, seek, end and destroy flush immediately with the force flag set, so
// the server's monotonic policy accepts rewound positions the viewer chose.
// All sends are fire-and-forget: playback never blocks on the network.
type Tracker struct {
	player Player
	cfg    Config
	logger *zap.Logger

	mu          sync.Mutex
	state       State
	duration    float64
	position    float64
	lastSent    float64
	stopSampler chan struct{}
	wg          sync.WaitGroup
}

// New builds a tracker for the player. The tracker starts idle; call Init to
// prepare playback.
func New(player Player, cfg Config) *Tracker {
	if cfg.SendThreshold <= 0 {
		cfg.SendThreshold = DefaultSendThreshold
	}
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}
	if cfg.SampleInterval <= 0 {
		if player.Kind() == PlayerNative {
			cfg.SampleInterval = nativeSampleInterval
		} else {
			cfg.SampleInterval = youTubeSampleInterval
		}
	}
	return &Tracker{
		player: player,
		cfg:    cfg,
		logger: cfg.Logger,
		state:  StateIdle,
	}
}

// State reports the current lifecycle phase.
func (t *Tracker) State() State {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.state
}

// Init queries the player, applies the resume policy and subscribes to
// playback events. A stored position resumes playback only when it lies
// strictly inside (0, duration-1); anything else restarts from the top.
func (t *Tracker) Init(storedSeconds int64) error {
	t.mu.Lock()
	if t.state == StateDestroyed {
		t.mu.Unlock()
		return ErrDestroyed
	}
	if t.state != StateIdle {
		t.mu.Unlock()
		return errors.New("tracker already initialised")
	}
	t.state = StateInitializing
	t.mu.Unlock()

	duration, err := t.player.Duration()
	if err != nil {
		t.mu.Lock()
		t.state = StateIdle
		t.mu.Unlock()
		return err
	}

	resume := float64(storedSeconds)
	if !(resume > 0 && resume < duration-1) {
		resume = 0
	}
	if err := t.player.Seek(resume); err != nil {
		t.logger.Warn("resume seek failed", zap.Float64("position", resume), zap.Error(err))
		resume = 0
	}

	t.mu.Lock()
	t.duration = duration
	t.position = resume
	t.lastSent = resume
	t.state = StateReady
	t.mu.Unlock()

	t.player.Subscribe(t.handleEvent)
	return nil
}

// Position reports the last observed playhead in seconds.
func (t *Tracker) Position() float64 {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.position
}

// Flush force-sends the current position immediately, bypassing the
// threshold. Embedders call this on unmount or page hide.
func (t *Tracker) Flush() {
	t.send(true)
}

// Destroy tears the tracker down: the sampler stops, the final position is
// force-flushed and all further operations fail. Safe to call from any state
// and idempotent.
func (t *Tracker) Destroy() {
	t.mu.Lock()
	if t.state == StateDestroyed {
		t.mu.Unlock()
		return
	}
	initialised := t.state != StateIdle
	t.state = StateDestroyed
	t.stopSamplerLocked()
	t.mu.Unlock()

	if initialised {
		t.send(true)
	}
	t.wg.Wait()

	if err := t.player.Destroy(); err != nil {
		t.logger.Warn("player teardown failed", zap.Error(err))
	}
}

func (t *Tracker) handleEvent(ev Event) {
	t.mu.Lock()
	if t.state == StateDestroyed {
		t.mu.Unlock()
		return
	}

	switch ev.Type {
	case EventPlay:
		if t.state == StateReady || t.state == StatePaused || t.state == StateEnded {
			t.state = StatePlaying
			t.startSamplerLocked()
		}
		t.mu.Unlock()
	case EventPause:
		if t.state == StatePlaying {
			t.state = StatePaused
			t.stopSamplerLocked()
			t.position = ev.Position
			t.mu.Unlock()
			t.send(true)
			return
		}
		t.mu.Unlock()
	case EventSeek:
		t.position = ev.Position
		t.mu.Unlock()
		t.send(true)
	case EventEnded:
		t.state = StateEnded
		t.stopSamplerLocked()
		t.position = t.duration
		t.mu.Unlock()
		t.send(true)
	case EventError:
		t.mu.Unlock()
		t.logger.Warn("player error", zap.Float64("position", ev.Position))
	default:
		t.mu.Unlock()
	}
}

func (t *Tracker) startSamplerLocked() {
	if t.stopSampler != nil {
		return
	}
	stop := make(chan struct{})
	t.stopSampler = stop
	t.wg.Add(1)
	go t.sample(stop)
}

func (t *Tracker) stopSamplerLocked() {
	if t.stopSampler != nil {
		close(t.stopSampler)
		t.stopSampler = nil
	}
}

func (t *Tracker) sample(stop chan struct{}) {
	defer t.wg.Done()
	ticker := time.NewTicker(t.cfg.SampleInterval)
	defer ticker.Stop()

	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			pos, err := t.player.CurrentTime()
			if err != nil {
				continue
			}
			t.mu.Lock()
			t.position = pos
			t.mu.Unlock()
			t.send(false)
		}
	}
}

// send reports the current position. Unforced reports only go out once the
// threshold of new playback has accumulated; forced reports always go out and
// carry the force flag so the server accepts a lower position.
func (t *Tracker) send(force bool) {
	if t.cfg.Sink == nil {
		return
	}

	t.mu.Lock()
	if !force && t.position-t.lastSent < t.cfg.SendThreshold {
		t.mu.Unlock()
		return
	}
	report := Report{
		VideoID:         t.cfg.VideoID,
		WatchedSeconds:  int64(t.position),
		DurationSeconds: int64(t.duration),
		Force:           force,
	}
	t.lastSent = t.position
	t.mu.Unlock()

	t.wg.Add(1)
	go func() {
		defer t.wg.Done()
		ctx, cancel := context.WithTimeout(context.Background(), sendTimeout)
		defer cancel()
		if err := t.cfg.Sink.Send(ctx, report); err != nil {
			t.logger.Warn("progress report dropped", zap.String("video_id", report.VideoID), zap.Error(err))
		}
	}()
}
