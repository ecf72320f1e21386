package editor

import (
	"context"
	"image"

	"github.com/ironsheep/photo-editor-mcp/internal/adjust"
	"github.com/ironsheep/photo-editor-mcp/internal/crop"
	"github.com/ironsheep/photo-editor-mcp/internal/imaging"
	"github.com/ironsheep/photo-editor-mcp/internal/preset"
	"github.com/ironsheep/photo-editor-mcp/internal/preview"
)

// renderPreview is the scheduler's renderer. It always works on the
// downsampled preview buffer.
func (s *Session) renderPreview(ctx context.Context, snap preview.Snapshot) (*image.NRGBA, error) {
	s.mu.Lock()
	src := s.preview
	err := s.usableLocked()
	s.mu.Unlock()
	if err != nil {
		return nil, err
	}

	out := imaging.Render(src, snap.Adjustments)
	if !snap.ApplyCrop {
		return out, nil
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return imaging.Transform(out, snap.Crop, 0, 0), nil
}

// Preview renders the current edit state on the preview buffer right away.
// With applyCrop false the whole frame is rendered so a crop overlay can be
// drawn over it.
func (s *Session) Preview(ctx context.Context, applyCrop bool) (preview.Frame, error) {
	s.mu.Lock()
	if err := s.usableLocked(); err != nil {
		s.mu.Unlock()
		return preview.Frame{}, err
	}
	snap := s.snapshotLocked(applyCrop)
	s.mu.Unlock()

	return s.scheduler.Flush(ctx, snap)
}

// PreviewWithOverlay renders the whole frame and draws the crop box, its
// rule-of-thirds guides and corner handles over it.
func (s *Session) PreviewWithOverlay(ctx context.Context) (preview.Frame, error) {
	f, err := s.Preview(ctx, false)
	if err != nil {
		return f, err
	}
	f.Image = imaging.CropOverlay(f.Image, f.Snapshot.Crop, s.cfg.Crop.HandleRadius)
	return f, nil
}

// ColorSamples is the color at one point before and after the current
// adjustments.
type ColorSamples struct {
	Before imaging.ColorSample `json:"before"`
	After  imaging.ColorSample `json:"after"`
}

// SampleColor reads the color at p, in percent of the uncropped frame, from
// the preview buffer and from the adjusted preview. radius averages a
// square of that many pixels around p.
func (s *Session) SampleColor(ctx context.Context, p crop.Point, radius int) (ColorSamples, error) {
	s.mu.Lock()
	src := s.preview
	err := s.usableLocked()
	s.mu.Unlock()
	if err != nil {
		return ColorSamples{}, err
	}

	before, err := imaging.SampleColor(src, p, radius)
	if err != nil {
		return ColorSamples{}, err
	}
	f, err := s.Preview(ctx, false)
	if err != nil {
		return ColorSamples{}, err
	}
	after, err := imaging.SampleColor(f.Image, p, radius)
	if err != nil {
		return ColorSamples{}, err
	}
	return ColorSamples{Before: before, After: after}, nil
}

// RunPreview re-renders the preview at the configured refresh rate until
// ctx is done. Frames are delivered on Frames.
func (s *Session) RunPreview(ctx context.Context) error {
	return s.scheduler.Run(ctx, preview.Interval(s.cfg.Preview.RefreshHz))
}

// Frames returns the latest-wins channel of preview frames.
func (s *Session) Frames() <-chan preview.Frame {
	return s.scheduler.Frames()
}

// PreviewStats returns the scheduler counters.
func (s *Session) PreviewStats() preview.Stats {
	return s.scheduler.Stats()
}

// Zoom returns the display zoom.
func (s *Session) Zoom() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.zoom
}

// State is a JSON-friendly view of a session.
type State struct {
	Ready       bool               `json:"ready"`
	Loading     bool               `json:"loading,omitempty"`
	LoadError   string             `json:"load_error,omitempty"`
	Source      *imaging.ImageInfo `json:"source,omitempty"`
	OriginalRef string             `json:"original_ref,omitempty"`

	Adjustments map[adjust.Field]float64 `json:"adjustments"`
	Effective   map[adjust.Field]float64 `json:"effective"`
	Preset      preset.Selection         `json:"preset"`

	Crop        crop.Box `json:"crop"`
	Rotation    float64  `json:"rotation"`
	AspectRatio string   `json:"aspect_ratio"`
	CropState   string   `json:"crop_state"`
	Capture     string   `json:"capture"`
	OutputSize  [2]int   `json:"output_size"`

	Zoom    float64       `json:"zoom"`
	Preview preview.Stats `json:"preview"`
}

// State returns a snapshot of the session. Only manual adjustments that
// differ from default appear in Adjustments.
func (s *Session) State() (State, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return State{}, ErrClosed
	}

	user := make(map[adjust.Field]float64)
	for _, f := range s.user.Diff() {
		user[f] = s.user.Get(f)
	}
	box := s.crop.Box()
	st := State{
		Ready:       s.ready,
		Loading:     s.loading,
		OriginalRef: s.exportRefLocked(),
		Adjustments: user,
		Effective:   preset.Effective(s.user, s.selected).Map(),
		Preset:      s.selected,
		Crop:        box,
		Rotation:    box.Rotation(),
		AspectRatio: s.crop.AspectRatio().Name,
		CropState:   s.crop.State().String(),
		Capture:     s.crop.Capture().String(),
		Zoom:        s.zoom,
		Preview:     s.scheduler.Stats(),
	}
	if s.loadErr != nil {
		st.LoadError = s.loadErr.Error()
	}
	if s.ready {
		info := s.info
		st.Source = &info
		w, h := box.PixelSize(info.Width, info.Height)
		w, h = imaging.FitWithin(w, h, s.cfg.Export.MaxDimension)
		st.OutputSize = [2]int{w, h}
	}
	return st, nil
}

func (s *Session) exportRefLocked() string {
	if s.originalRef != "" {
		return s.originalRef
	}
	return s.info.Ref
}
