package editor

import (
	"context"
	"fmt"
	"time"

	"github.com/ironsheep/photo-editor-mcp/internal/imaging"
)

// Blob is an encoded export plus the reference of the unedited source, for
// the caller to persist.
type Blob struct {
	Data      []byte         `json:"-"`
	Width     int            `json:"width"`
	Height    int            `json:"height"`
	Format    imaging.Format `json:"format"`
	MIMEType  string         `json:"mime_type"`
	SourceRef string         `json:"source_ref"`

	// FellBack is set when the preferred encoder failed and the fallback
	// produced Data.
	FellBack bool `json:"fell_back,omitempty"`
}

// Export renders the edit at full resolution: adjustments on the original,
// then the crop transform at crop size, then a downscale to the export
// bound, then encoding with a single fallback to JPEG. The context is
// checked between stages.
func (s *Session) Export(ctx context.Context) (*Blob, error) {
	s.mu.Lock()
	if err := s.usableLocked(); err != nil {
		s.mu.Unlock()
		return nil, err
	}
	original := s.original
	snap := s.snapshotLocked(true)
	ref := s.exportRefLocked()
	cfg := s.cfg.Export
	s.mu.Unlock()

	preferred, fallback, err := exportEncoders(cfg.Format)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	rendered := imaging.Render(original, snap.Adjustments)

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	out := imaging.Transform(rendered, snap.Crop, 0, 0)

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	out = imaging.Downscale(out, cfg.MaxDimension)

	enc, err := imaging.EncodeWithFallback(ctx, out, preferred, fallback, cfg.Quality)
	if err != nil {
		s.metrics.exportFailed(preferred.Format())
		s.logger.Error("Editor: export failed", "source", ref, "error", err)
		return nil, err
	}
	elapsed := time.Since(start)
	s.metrics.exported(enc, elapsed)
	if enc.FellBack() {
		s.logger.Warn("Editor: preferred encoder failed, used fallback",
			"preferred", preferred.Format(),
			"used", enc.Format,
			"cause", enc.FallbackCause)
	}

	b := out.Bounds()
	s.logger.Info("Editor: exported",
		"source", ref,
		"format", enc.Format,
		"width", b.Dx(),
		"height", b.Dy(),
		"bytes", len(enc.Data),
		"duration", elapsed)

	return &Blob{
		Data:      enc.Data,
		Width:     b.Dx(),
		Height:    b.Dy(),
		Format:    enc.Format,
		MIMEType:  enc.Format.MIMEType(),
		SourceRef: ref,
		FellBack:  enc.FellBack(),
	}, nil
}

// exportEncoders returns the preferred encoder for name and its fallback.
// JPEG is the fallback for every other format and has none itself.
func exportEncoders(name string) (imaging.Encoder, imaging.Encoder, error) {
	f, err := imaging.ParseFormat(name)
	if err != nil {
		return nil, nil, fmt.Errorf("invalid export format: %w", err)
	}
	preferred, err := imaging.EncoderFor(f)
	if err != nil {
		return nil, nil, err
	}
	if f == imaging.FormatJPEG {
		return preferred, nil, nil
	}
	fallback, err := imaging.EncoderFor(imaging.FormatJPEG)
	if err != nil {
		return nil, nil, err
	}
	return preferred, fallback, nil
}
