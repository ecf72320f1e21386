package imaging

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"io"
	"math"
	"strings"

	"github.com/disintegration/imaging"
)

// ErrEncoderUnavailable marks an encoder that is not compiled into this
// build (WebP without the govips tag).
var ErrEncoderUnavailable = errors.New("encoder unavailable")

// Format is an output image format.
type Format string

const (
	FormatWebP Format = "webp"
	FormatJPEG Format = "jpeg"
	FormatPNG  Format = "png"
)

// ParseFormat maps a format name (case-insensitive, "jpg" accepted) to a
// Format.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "webp":
		return FormatWebP, nil
	case "jpeg", "jpg":
		return FormatJPEG, nil
	case "png":
		return FormatPNG, nil
	}
	return "", fmt.Errorf("unsupported output format: %s", s)
}

// MIMEType returns the media type of f.
func (f Format) MIMEType() string {
	switch f {
	case FormatWebP:
		return "image/webp"
	case FormatJPEG:
		return "image/jpeg"
	case FormatPNG:
		return "image/png"
	}
	return "application/octet-stream"
}

// EncodeError reports that an image could not be encoded in Format. When
// a fallback was attempted, Err describes the fallback failure.
type EncodeError struct {
	Format Format
	Err    error
}

func (e *EncodeError) Error() string {
	return fmt.Sprintf("encode %s: %v", e.Format, e.Err)
}

func (e *EncodeError) Unwrap() error {
	return e.Err
}

// Encoder writes an image in one format. Quality is in (0,1]; encoders for
// lossless formats ignore it.
type Encoder interface {
	Format() Format
	Encode(w io.Writer, img image.Image, quality float64) error
}

// EncoderFor returns the encoder for f. WebP returns an encoder even when
// it is not compiled in; its Encode then fails with ErrEncoderUnavailable.
func EncoderFor(f Format) (Encoder, error) {
	switch f {
	case FormatWebP:
		return webpEncoder{}, nil
	case FormatJPEG:
		return jpegEncoder{}, nil
	case FormatPNG:
		return pngEncoder{}, nil
	}
	return nil, fmt.Errorf("unsupported output format: %s", f)
}

// WebPAvailable reports whether this build can encode WebP.
func WebPAvailable() bool {
	return webpAvailable
}

type jpegEncoder struct{}

func (jpegEncoder) Format() Format { return FormatJPEG }

func (jpegEncoder) Encode(w io.Writer, img image.Image, quality float64) error {
	return imaging.Encode(w, img, imaging.JPEG, imaging.JPEGQuality(qualityPercent(quality)))
}

type pngEncoder struct{}

func (pngEncoder) Format() Format { return FormatPNG }

func (pngEncoder) Encode(w io.Writer, img image.Image, _ float64) error {
	return imaging.Encode(w, img, imaging.PNG)
}

// qualityPercent converts a (0,1] quality to the 1-100 scale encoders use.
func qualityPercent(q float64) int {
	p := int(math.Round(q * 100))
	if p < 1 {
		return 1
	}
	if p > 100 {
		return 100
	}
	return p
}

// Encoded is the result of EncodeWithFallback.
type Encoded struct {
	Data   []byte
	Format Format

	// FallbackCause is the preferred encoder's error when the fallback
	// produced Data, nil otherwise.
	FallbackCause error
}

// FellBack reports whether the fallback encoder produced the data.
func (e *Encoded) FellBack() bool {
	return e.FallbackCause != nil
}

// EncodeWithFallback encodes img with preferred and, if that fails for any
// reason, retries exactly once with fallback. A nil fallback disables the
// retry. Failure of the last attempted encoder is returned as *EncodeError.
//
// The context is checked before each attempt; an encoder already running
// is not interrupted.
func EncodeWithFallback(ctx context.Context, img image.Image, preferred, fallback Encoder, quality float64) (*Encoded, error) {
	data, err := encodeOnce(ctx, img, preferred, quality)
	if err == nil {
		return &Encoded{Data: data, Format: preferred.Format()}, nil
	}
	if fallback == nil || ctx.Err() != nil {
		return nil, &EncodeError{Format: preferred.Format(), Err: err}
	}

	cause := err
	data, err = encodeOnce(ctx, img, fallback, quality)
	if err != nil {
		return nil, &EncodeError{Format: fallback.Format(), Err: err}
	}
	return &Encoded{Data: data, Format: fallback.Format(), FallbackCause: cause}, nil
}

func encodeOnce(ctx context.Context, img image.Image, enc Encoder, quality float64) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	if err := enc.Encode(&buf, img, quality); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
