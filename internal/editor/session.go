package editor

import (
	"context"
	"errors"
	"fmt"
	"image"
	"log/slog"
	"math"
	"sync"

	"github.com/ironsheep/photo-editor-mcp/internal/adjust"
	"github.com/ironsheep/photo-editor-mcp/internal/config"
	"github.com/ironsheep/photo-editor-mcp/internal/crop"
	"github.com/ironsheep/photo-editor-mcp/internal/imaging"
	"github.com/ironsheep/photo-editor-mcp/internal/preset"
	"github.com/ironsheep/photo-editor-mcp/internal/preview"
)

var (
	// ErrNotReady is returned by renders and exports before a source has
	// been decoded.
	ErrNotReady = errors.New("session not ready")

	// ErrClosed is returned by every operation on a closed session.
	ErrClosed = errors.New("session closed")
)

// Zoom bounds. Zoom scales the preview display only.
const (
	MinZoom     = 0.5
	MaxZoom     = 3.0
	ZoomStep    = 0.1
	DefaultZoom = 1.0
)

// Session is one editing operation on one source image.
//
// All methods are safe for concurrent use. The decoded original is never
// modified; renders work on copies.
type Session struct {
	cfg         config.Config
	sources     *imaging.SourceCache
	metrics     *Metrics
	logger      *slog.Logger
	originalRef string

	scheduler *preview.Scheduler

	mu       sync.Mutex
	info     imaging.ImageInfo
	original image.Image
	preview  *image.NRGBA
	loading  bool
	ready    bool
	closed   bool
	loadErr  error
	user     adjust.Model
	selected preset.Selection
	crop     *crop.Editor
	zoom     float64
}

// Option configures a Session.
type Option func(*Session)

// WithConfig replaces the default configuration.
func WithConfig(cfg config.Config) Option {
	return func(s *Session) {
		s.cfg = cfg
	}
}

// WithSourceCache shares decoded sources between sessions.
func WithSourceCache(c *imaging.SourceCache) Option {
	return func(s *Session) {
		if c != nil {
			s.sources = c
		}
	}
}

// WithMetrics records preview, export and decode events.
func WithMetrics(m *Metrics) Option {
	return func(s *Session) {
		s.metrics = m
	}
}

// WithLogger sets the session logger.
func WithLogger(l *slog.Logger) Option {
	return func(s *Session) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithOriginalRef sets the reference handed back with the export when it
// differs from the loaded source, e.g. the unedited upload behind a
// resized working copy.
func WithOriginalRef(ref string) Option {
	return func(s *Session) {
		s.originalRef = ref
	}
}

// NewSession returns a session that is not ready until Load succeeds.
func NewSession(opts ...Option) *Session {
	s := &Session{
		cfg:    config.Default(),
		logger: slog.Default(),
		user:   adjust.Default(),
		zoom:   DefaultZoom,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.sources == nil {
		s.sources = imaging.NewSourceCache(imaging.NewLoader(
			imaging.WithFetchTimeout(s.cfg.Source.FetchTimeout),
			imaging.WithMaxBytes(s.cfg.Source.MaxBytes),
			imaging.WithLoaderLogger(s.logger),
		))
	}
	s.crop = crop.NewEditor(1, crop.WithHandleRadius(s.cfg.Crop.HandleRadius))

	schedOpts := []preview.Option{preview.WithLogger(s.logger)}
	if s.metrics != nil {
		schedOpts = append(schedOpts, preview.WithObserver(s.metrics))
	}
	s.scheduler = preview.NewScheduler(s.renderPreview, schedOpts...)

	s.metrics.sessionOpened()
	return s
}

// Load decodes src and makes the session ready. On failure the session
// stays not ready and the error is a *imaging.DecodeError.
func (s *Session) Load(ctx context.Context, src imaging.Source) (imaging.ImageInfo, error) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return imaging.ImageInfo{}, ErrClosed
	}
	s.loading = true
	s.mu.Unlock()

	loaded, err := s.sources.Load(ctx, src)
	if err != nil {
		s.metrics.decodeFailed()
		s.logger.Warn("Editor: failed to load source", "source", src.Ref(), "error", err)

		s.mu.Lock()
		s.loading = false
		s.loadErr = err
		s.mu.Unlock()
		return imaging.ImageInfo{}, err
	}

	small := imaging.Downscale(loaded.Image, s.cfg.Preview.MaxDimension)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.loading = false
	if s.closed {
		return imaging.ImageInfo{}, ErrClosed
	}
	s.info = loaded.Info
	s.original = loaded.Image
	s.preview = small
	s.loadErr = nil
	s.ready = true
	s.crop.SetImageAspect(float64(loaded.Info.Width) / float64(loaded.Info.Height))
	s.submitLocked()

	s.logger.Info("Editor: source loaded",
		"source", loaded.Info.Ref,
		"width", loaded.Info.Width,
		"height", loaded.Info.Height,
		"format", loaded.Info.Format)
	return loaded.Info, nil
}

// LoadAsync runs Load in a goroutine. The channel receives Load's error
// (nil on success) and is then closed.
func (s *Session) LoadAsync(ctx context.Context, src imaging.Source) <-chan error {
	done := make(chan error, 1)
	go func() {
		defer close(done)
		_, err := s.Load(ctx, src)
		done <- err
	}()
	return done
}

// Ready reports whether a source has been decoded.
func (s *Session) Ready() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ready && !s.closed
}

// Info describes the loaded source.
func (s *Session) Info() (imaging.ImageInfo, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.usableLocked(); err != nil {
		return imaging.ImageInfo{}, err
	}
	return s.info, nil
}

// Close discards the session. Nothing is persisted. Closing twice is a
// no-op.
func (s *Session) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}
	s.closed = true
	s.ready = false
	s.original = nil
	s.preview = nil
	s.metrics.sessionClosed()
	s.logger.Debug("Editor: session closed", "source", s.info.Ref)
	return nil
}

// Adjustments returns the user's manual adjustments.
func (s *Session) Adjustments() adjust.Model {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.user
}

// Effective returns the adjustments a render would use: the selected
// preset blended at its intensity with manual edits on top.
func (s *Session) Effective() adjust.Model {
	s.mu.Lock()
	defer s.mu.Unlock()
	return preset.Effective(s.user, s.selected)
}

// CropBox returns the current crop box.
func (s *Session) CropBox() crop.Box {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.crop.Box()
}

// SetAdjustment sets one field, clamping it into range, and returns the
// stored value.
func (s *Session) SetAdjustment(f adjust.Field, v float64) (float64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return 0, ErrClosed
	}
	stored, ok := s.user.Set(f, v)
	if !ok {
		return 0, fmt.Errorf("%w: %s", adjust.ErrUnknownField, f)
	}
	s.logClampLocked(f, v, stored)
	s.submitLocked()
	return stored, nil
}

// SetAdjustments applies several fields as one edit.
func (s *Session) SetAdjustments(values map[adjust.Field]float64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrClosed
	}
	for f := range values {
		if _, ok := adjust.RangeOf(f); !ok {
			return fmt.Errorf("%w: %s", adjust.ErrUnknownField, f)
		}
	}
	for _, f := range adjust.Fields() {
		v, ok := values[f]
		if !ok {
			continue
		}
		stored, _ := s.user.Set(f, v)
		s.logClampLocked(f, v, stored)
	}
	s.submitLocked()
	return nil
}

// SelectPreset toggles the preset with id: the selected preset is cleared,
// any other is selected at full intensity.
func (s *Session) SelectPreset(id string) (preset.Selection, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return preset.Selection{}, ErrClosed
	}
	sel, err := s.selected.Toggle(id)
	if err != nil {
		return s.selected, err
	}
	s.selected = sel
	s.submitLocked()
	return sel, nil
}

// SetPresetIntensity changes the blend of the selected preset and returns
// the clamped intensity. Without a selection the call has no effect.
func (s *Session) SetPresetIntensity(v float64) (float64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return 0, ErrClosed
	}
	s.selected = s.selected.WithIntensity(v)
	if s.selected.Active() {
		s.submitLocked()
	}
	return s.selected.Intensity, nil
}

// RotateQuarter turns the image by steps of 90 degrees, clockwise for
// positive steps.
func (s *Session) RotateQuarter(steps int) error {
	return s.mutateCrop(func(e *crop.Editor) bool {
		e.RotateQuarter(steps)
		return steps%4 != 0
	})
}

// SetFineRotation sets the straightening angle and returns the clamped
// value.
func (s *Session) SetFineRotation(deg float64) (float64, error) {
	var stored float64
	err := s.mutateCrop(func(e *crop.Editor) bool {
		stored = e.SetFineRotation(deg)
		return true
	})
	return stored, err
}

// FlipHorizontal toggles the horizontal mirror.
func (s *Session) FlipHorizontal() error {
	return s.mutateCrop(func(e *crop.Editor) bool {
		e.FlipHorizontal()
		return true
	})
}

// FlipVertical toggles the vertical mirror.
func (s *Session) FlipVertical() error {
	return s.mutateCrop(func(e *crop.Editor) bool {
		e.FlipVertical()
		return true
	})
}

// SelectAspectRatio locks the crop to a named ratio, recentring the box.
func (s *Session) SelectAspectRatio(name string) error {
	var err error
	mutErr := s.mutateCrop(func(e *crop.Editor) bool {
		err = e.SelectAspectRatio(name)
		return err == nil
	})
	if mutErr != nil {
		return mutErr
	}
	return err
}

// SetCropBox replaces the crop box. Out-of-range values are corrected.
func (s *Session) SetCropBox(b crop.Box) error {
	return s.mutateCrop(func(e *crop.Editor) bool {
		e.SetBox(b)
		return true
	})
}

// PointerDown starts a crop interaction at p (percent coordinates) if p
// hits the box or one of its handles.
func (s *Session) PointerDown(p crop.Point) (bool, error) {
	var started bool
	err := s.mutateCrop(func(e *crop.Editor) bool {
		started = e.PointerDownAt(p)
		return false
	})
	return started, err
}

// ControlDown records a pointer-down on a non-crop control. The control
// panel owns the pointer until PointerUp.
func (s *Session) ControlDown() error {
	return s.mutateCrop(func(e *crop.Editor) bool {
		e.PointerDown(crop.Target{Kind: crop.TargetControl}, crop.Point{})
		return false
	})
}

// PointerMove continues the current crop interaction and reports whether
// the box changed.
func (s *Session) PointerMove(p crop.Point) (bool, error) {
	var moved bool
	err := s.mutateCrop(func(e *crop.Editor) bool {
		moved = e.PointerMove(p)
		return moved
	})
	return moved, err
}

// PointerUp ends any interaction and releases pointer capture.
func (s *Session) PointerUp() error {
	return s.mutateCrop(func(e *crop.Editor) bool {
		e.PointerUp()
		return false
	})
}

// SetZoom sets the display zoom, clamped to MinZoom..MaxZoom and rounded to
// ZoomStep. It never affects rendered pixels.
func (s *Session) SetZoom(z float64) (float64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return 0, ErrClosed
	}
	s.zoom = clampZoom(z)
	return s.zoom, nil
}

// StepZoom moves the zoom by steps increments of ZoomStep.
func (s *Session) StepZoom(steps int) (float64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return 0, ErrClosed
	}
	s.zoom = clampZoom(s.zoom + float64(steps)*ZoomStep)
	return s.zoom, nil
}

func clampZoom(z float64) float64 {
	if math.IsNaN(z) || math.IsInf(z, 0) {
		return DefaultZoom
	}
	z = math.Round(z/ZoomStep) / (1 / ZoomStep)
	return math.Max(MinZoom, math.Min(MaxZoom, z))
}

// Reset restores default adjustments, the full-frame crop, no preset and
// the default zoom.
func (s *Session) Reset() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrClosed
	}
	s.user = adjust.Default()
	s.selected = preset.Selection{}
	s.crop.Reset()
	s.zoom = DefaultZoom
	s.submitLocked()
	return nil
}

func (s *Session) logClampLocked(f adjust.Field, requested, stored float64) {
	if requested != stored {
		s.logger.Debug("Editor: adjustment clamped", "field", f, "requested", requested, "stored", stored)
	}
}

func (s *Session) mutateCrop(fn func(e *crop.Editor) bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrClosed
	}
	if fn(s.crop) {
		s.submitLocked()
	}
	return nil
}

func (s *Session) usableLocked() error {
	if s.closed {
		return ErrClosed
	}
	if !s.ready {
		return ErrNotReady
	}
	return nil
}

func (s *Session) snapshotLocked(applyCrop bool) preview.Snapshot {
	return preview.Snapshot{
		Adjustments: preset.Effective(s.user, s.selected),
		Crop:        s.crop.Box(),
		ApplyCrop:   applyCrop,
	}
}

// submitLocked marks the preview dirty. Before the source is decoded there
// is nothing to render, and Load submits once it is.
func (s *Session) submitLocked() {
	if s.ready {
		s.scheduler.Submit(s.snapshotLocked(true))
	}
}
