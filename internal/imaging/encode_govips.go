//go:build govips && cgo

package imaging

import (
	"bytes"
	"fmt"
	"image"
	"io"
	"sync"

	"github.com/davidbyttow/govips/v2/vips"
	"github.com/disintegration/imaging"
)

const webpAvailable = true

var vipsOnce sync.Once

func startVips() {
	vipsOnce.Do(func() {
		vips.LoggingSettings(nil, vips.LogLevelError)
		vips.Startup(&vips.Config{
			MaxCacheFiles: 0,
			MaxCacheMem:   128 * 1024 * 1024,
			MaxCacheSize:  100,
		})
	})
}

// ShutdownEncoders releases libvips. Call once at process exit.
func ShutdownEncoders() {
	vips.Shutdown()
}

type webpEncoder struct{}

func (webpEncoder) Format() Format { return FormatWebP }

// Encode hands the pixels to libvips as lossless PNG and exports WebP.
func (webpEncoder) Encode(w io.Writer, img image.Image, quality float64) error {
	startVips()

	var staged bytes.Buffer
	if err := imaging.Encode(&staged, img, imaging.PNG); err != nil {
		return fmt.Errorf("stage png: %w", err)
	}

	ref, err := vips.NewImageFromBuffer(staged.Bytes())
	if err != nil {
		return fmt.Errorf("load into vips: %w", err)
	}
	defer ref.Close()

	params := vips.NewWebpExportParams()
	params.Quality = qualityPercent(quality)
	data, _, err := ref.ExportWebp(params)
	if err != nil {
		return fmt.Errorf("encode webp: %w", err)
	}

	_, err = w.Write(data)
	return err
}
