package imaging

import (
	"image"

	"github.com/anthonynsimon/bild/parallel"
	"github.com/disintegration/imaging"
)

// sharpenKernel is the 3x3 Laplacian-style sharpening kernel, row major.
var sharpenKernel = [9]float64{
	0, -1, 0,
	-1, 5, -1,
	0, -1, 0,
}

// Sharpen convolves img with a 3x3 sharpening kernel and blends the result
// with the unsharpened pixels by amount/100.
//
// Parameters:
//   - img: Source image. It is not modified.
//   - amount: Sharpening strength, 0-100. Values <= 0 return an unmodified
//     copy without running the convolution; values above 100 are treated
//     as 100.
//
// Only interior pixels are convolved; the one-pixel border keeps its
// original values. Alpha is copied through.
func Sharpen(img image.Image, amount float64) *image.NRGBA {
	dst := imaging.Clone(img)
	if amount <= 0 {
		return dst
	}
	if amount > 100 {
		amount = 100
	}

	w := dst.Bounds().Dx()
	h := dst.Bounds().Dy()
	if w < 3 || h < 3 {
		return dst
	}

	factor := amount / 100
	src := make([]uint8, len(dst.Pix))
	copy(src, dst.Pix)
	stride := dst.Stride

	parallel.Line(h-2, func(start, end int) {
		for y := start + 1; y < end+1; y++ {
			for x := 1; x < w-1; x++ {
				i := y*stride + x*4
				for c := 0; c < 3; c++ {
					sum := 0.0
					k := 0
					for ky := -1; ky <= 1; ky++ {
						for kx := -1; kx <= 1; kx++ {
							sum += float64(src[i+ky*stride+kx*4+c]) * sharpenKernel[k]
							k++
						}
					}
					orig := float64(src[i+c])
					dst.Pix[i+c] = uint8(clampChannel(orig*(1-factor) + sum*factor))
				}
			}
		}
	})

	return dst
}
