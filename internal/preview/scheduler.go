// Package preview coalesces bursts of edits into at most one preview render
// per display refresh.
//
// Edits are submitted as immutable snapshots into a single-slot mailbox: a
// newer snapshot replaces an unrendered older one instead of queueing
// behind it. Each snapshot gets a monotonically increasing request id, and a
// finished render whose id is no longer the newest is discarded.
package preview

import (
	"context"
	"image"
	"log/slog"
	"sync"
	"time"

	"github.com/ironsheep/photo-editor-mcp/internal/adjust"
	"github.com/ironsheep/photo-editor-mcp/internal/crop"
)

// DefaultRefreshHz is the tick rate used when none is configured.
const DefaultRefreshHz = 60

// Snapshot is the edit state a preview is rendered from.
type Snapshot struct {
	Adjustments adjust.Model
	Crop        crop.Box

	// ApplyCrop renders the crop/rotate/flip transform into the preview.
	// When false the whole frame is shown so the crop box can be drawn over
	// it.
	ApplyCrop bool
}

// Frame is a finished preview render.
type Frame struct {
	ID       uint64
	Snapshot Snapshot
	Image    *image.NRGBA
	Duration time.Duration
}

// Renderer turns a snapshot into preview pixels.
type Renderer func(ctx context.Context, s Snapshot) (*image.NRGBA, error)

// Observer receives scheduler events, typically to update metrics.
type Observer interface {
	Rendered(d time.Duration)
	Coalesced()
	Superseded()
	Failed(err error)
}

type nopObserver struct{}

func (nopObserver) Rendered(time.Duration) {}
func (nopObserver) Coalesced()             {}
func (nopObserver) Superseded()            {}
func (nopObserver) Failed(error)           {}

// Stats counts scheduler events since creation.
type Stats struct {
	Submitted  uint64 `json:"submitted"`
	Rendered   uint64 `json:"rendered"`
	Coalesced  uint64 `json:"coalesced"`
	Superseded uint64 `json:"superseded"`
	Failed     uint64 `json:"failed"`
}

type request struct {
	id   uint64
	snap Snapshot
}

// Scheduler renders the newest submitted snapshot once per Tick.
//
// All methods are safe for concurrent use. Tick and Flush take turns on the
// renderer; only one render runs at a time.
type Scheduler struct {
	render   Renderer
	observer Observer
	logger   *slog.Logger

	renderMu sync.Mutex

	mu      sync.Mutex
	nextID  uint64
	pending *request
	latest  *Frame
	stats   Stats

	frames chan Frame
}

// Option configures a Scheduler.
type Option func(*Scheduler)

// WithObserver registers an event observer.
func WithObserver(o Observer) Option {
	return func(s *Scheduler) {
		if o != nil {
			s.observer = o
		}
	}
}

// WithLogger sets the scheduler's logger.
func WithLogger(l *slog.Logger) Option {
	return func(s *Scheduler) {
		if l != nil {
			s.logger = l
		}
	}
}

// NewScheduler returns an idle scheduler that renders with render.
func NewScheduler(render Renderer, opts ...Option) *Scheduler {
	s := &Scheduler{
		render:   render,
		observer: nopObserver{},
		logger:   slog.Default(),
		frames:   make(chan Frame, 1),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Submit marks the preview dirty with snap and returns its request id. An
// unrendered earlier snapshot is dropped.
func (s *Scheduler) Submit(snap Snapshot) uint64 {
	s.mu.Lock()
	s.nextID++
	id := s.nextID
	coalesced := s.pending != nil
	s.pending = &request{id: id, snap: snap}
	s.stats.Submitted++
	if coalesced {
		s.stats.Coalesced++
	}
	s.mu.Unlock()

	if coalesced {
		s.observer.Coalesced()
	}
	return id
}

// Pending reports whether a snapshot is waiting to be rendered.
func (s *Scheduler) Pending() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pending != nil
}

// Tick renders the pending snapshot, if any. It returns the frame and true
// when a fresh frame was produced. A render overtaken by a newer Submit is
// discarded and the newer snapshot stays pending for the next tick.
func (s *Scheduler) Tick(ctx context.Context) (Frame, bool, error) {
	s.renderMu.Lock()
	defer s.renderMu.Unlock()

	s.mu.Lock()
	req := s.pending
	s.pending = nil
	s.mu.Unlock()

	if req == nil {
		return Frame{}, false, nil
	}
	if err := ctx.Err(); err != nil {
		s.restore(req)
		return Frame{}, false, err
	}

	start := time.Now()
	img, err := s.render(ctx, req.snap)
	elapsed := time.Since(start)
	if err != nil {
		s.mu.Lock()
		s.stats.Failed++
		s.mu.Unlock()
		s.observer.Failed(err)
		s.logger.Warn("Preview: render failed", "request", req.id, "error", err)
		return Frame{}, false, err
	}

	s.mu.Lock()
	if req.id != s.nextID {
		s.stats.Superseded++
		s.mu.Unlock()
		s.observer.Superseded()
		s.logger.Debug("Preview: discarded stale frame", "request", req.id)
		return Frame{}, false, nil
	}
	f := Frame{ID: req.id, Snapshot: req.snap, Image: img, Duration: elapsed}
	s.latest = &f
	s.stats.Rendered++
	s.mu.Unlock()

	s.observer.Rendered(elapsed)
	s.publish(f)
	return f, true, nil
}

// restore puts an unrendered request back unless a newer one replaced it.
func (s *Scheduler) restore(req *request) {
	s.mu.Lock()
	if s.pending == nil {
		s.pending = req
	}
	s.mu.Unlock()
}

// publish offers f on the frames channel, replacing an unread older frame.
func (s *Scheduler) publish(f Frame) {
	for {
		select {
		case s.frames <- f:
			return
		default:
		}
		select {
		case <-s.frames:
		default:
		}
	}
}

// Frames returns a channel carrying the newest frame. Unread frames are
// replaced, never queued.
func (s *Scheduler) Frames() <-chan Frame {
	return s.frames
}

// Latest returns the newest published frame.
func (s *Scheduler) Latest() (Frame, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.latest == nil {
		return Frame{}, false
	}
	return *s.latest, true
}

// Stats returns a copy of the event counters.
func (s *Scheduler) Stats() Stats {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stats
}

// Flush renders snap right away, bypassing the tick, and returns a frame of
// exactly that snapshot. It waits for an in-flight Tick to finish first.
//
// Flush does not take a request id or touch the pending slot, so a pending
// snapshot still reaches the next tick. The frame carries the id of the
// newest submission and becomes Latest only if no Submit arrived while it
// was rendering.
func (s *Scheduler) Flush(ctx context.Context, snap Snapshot) (Frame, error) {
	s.renderMu.Lock()
	defer s.renderMu.Unlock()

	if err := ctx.Err(); err != nil {
		return Frame{}, err
	}

	s.mu.Lock()
	id := s.nextID
	s.mu.Unlock()

	start := time.Now()
	img, err := s.render(ctx, snap)
	elapsed := time.Since(start)
	if err != nil {
		s.mu.Lock()
		s.stats.Failed++
		s.mu.Unlock()
		s.observer.Failed(err)
		s.logger.Warn("Preview: flush render failed", "request", id, "error", err)
		return Frame{}, err
	}

	f := Frame{ID: id, Snapshot: snap, Image: img, Duration: elapsed}
	s.mu.Lock()
	current := id == s.nextID
	if current {
		s.latest = &f
	}
	s.stats.Rendered++
	s.mu.Unlock()

	s.observer.Rendered(elapsed)
	if current {
		s.publish(f)
	}
	return f, nil
}

// Run ticks every interval until ctx is done and returns ctx.Err(). Render
// failures are logged and do not stop the loop.
func (s *Scheduler) Run(ctx context.Context, interval time.Duration) error {
	if interval <= 0 {
		interval = Interval(DefaultRefreshHz)
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	s.logger.Debug("Preview: scheduler started", "interval", interval)
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			_, _, _ = s.Tick(ctx)
		}
	}
}

// Interval converts a refresh rate to a tick interval. Non-positive rates
// use DefaultRefreshHz.
func Interval(hz int) time.Duration {
	if hz <= 0 {
		hz = DefaultRefreshHz
	}
	return time.Second / time.Duration(hz)
}
