//go:build !govips || !cgo

package imaging

import (
	"fmt"
	"image"
	"io"
)

const webpAvailable = false

// ShutdownEncoders is a no-op without libvips.
func ShutdownEncoders() {}

type webpEncoder struct{}

func (webpEncoder) Format() Format { return FormatWebP }

func (webpEncoder) Encode(io.Writer, image.Image, float64) error {
	return fmt.Errorf("%w: webp export requires govips build tag", ErrEncoderUnavailable)
}
