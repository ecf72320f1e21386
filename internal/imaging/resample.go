package imaging

import (
	"image"

	"github.com/disintegration/imaging"
)

// Downscale returns a copy of img whose longer side is at most maxDim pixels,
// resampled with a Lanczos filter. Images already within maxDim, or a
// non-positive maxDim, yield a plain copy.
func Downscale(img image.Image, maxDim int) *image.NRGBA {
	b := img.Bounds()
	w, h := FitWithin(b.Dx(), b.Dy(), maxDim)
	if w == b.Dx() && h == b.Dy() {
		return imaging.Clone(img)
	}
	return imaging.Resize(img, w, h, imaging.Lanczos)
}
