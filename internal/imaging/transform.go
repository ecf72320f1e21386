package imaging

import (
	"image"
	"math"

	"github.com/disintegration/imaging"
	"golang.org/x/image/draw"
	"golang.org/x/image/math/f64"

	"github.com/ironsheep/photo-editor-mcp/internal/crop"
)

// Transform crops src to box, scales the crop to outW x outH and applies the
// box's flips and rotation about the output centre.
//
// Parameters:
//   - src: Source image. It is not modified.
//   - box: Crop rectangle in percent of src plus orientation.
//   - outW, outH: Output size in pixels. Values <= 0 use the crop's pixel
//     size.
//
// Returns a new *image.NRGBA at origin (0,0). Output pixels that the
// rotated crop does not cover are fully transparent. Sampling is bilinear
// and never reads outside the crop rectangle.
//
// An unrotated, unflipped full-frame box at the source size returns a plain
// copy of src.
func Transform(src image.Image, box crop.Box, outW, outH int) *image.NRGBA {
	box = box.Normalized()
	b := src.Bounds()
	if outW <= 0 || outH <= 0 {
		outW, outH = box.PixelSize(b.Dx(), b.Dy())
	}

	if box.SameRect(crop.DefaultBox()) && box.Rotation() == 0 &&
		!box.FlipHorizontal && !box.FlipVertical &&
		outW == b.Dx() && outH == b.Dy() {
		return imaging.Clone(src)
	}

	x0, y0, x1, y1 := box.PixelRect(b.Dx(), b.Dy())
	x0 += float64(b.Min.X)
	x1 += float64(b.Min.X)
	y0 += float64(b.Min.Y)
	y1 += float64(b.Min.Y)

	sr := image.Rect(
		int(math.Floor(x0)), int(math.Floor(y0)),
		int(math.Ceil(x1)), int(math.Ceil(y1)),
	).Intersect(b)

	dst := image.NewNRGBA(image.Rect(0, 0, outW, outH))
	if sr.Empty() {
		return dst
	}

	s2d := cropMatrix(x0, y0, x1, y1, box, outW, outH)
	if isIntegerShift(s2d) {
		// a whole-pixel crop with no scaling, rotation or flip
		ox, oy := int(math.Round(x0)), int(math.Round(y0))
		return imaging.Crop(src, image.Rect(ox, oy, ox+outW, oy+outH))
	}

	draw.BiLinear.Transform(dst, s2d, src, sr, draw.Src, nil)
	return dst
}

func isIntegerShift(m f64.Aff3) bool {
	return m[0] == 1 && m[1] == 0 && m[3] == 0 && m[4] == 1 &&
		m[2] == math.Trunc(m[2]) && m[5] == math.Trunc(m[5])
}

// cropMatrix maps source coordinates to output coordinates: move the crop
// centre to the origin, scale the crop to the output size, flip, rotate,
// then move the origin to the output centre.
func cropMatrix(x0, y0, x1, y1 float64, box crop.Box, outW, outH int) f64.Aff3 {
	cx := (x0 + x1) / 2
	cy := (y0 + y1) / 2
	sx := float64(outW) / (x1 - x0)
	sy := float64(outH) / (y1 - y0)
	if box.FlipHorizontal {
		sx = -sx
	}
	if box.FlipVertical {
		sy = -sy
	}

	theta := box.Rotation() * math.Pi / 180
	cos := math.Cos(theta)
	sin := math.Sin(theta)

	m := affTranslate(-cx, -cy)
	m = mulAff3(affScale(sx, sy), m)
	m = mulAff3(f64.Aff3{cos, -sin, 0, sin, cos, 0}, m)
	m = mulAff3(affTranslate(float64(outW)/2, float64(outH)/2), m)
	return m
}

func affTranslate(tx, ty float64) f64.Aff3 {
	return f64.Aff3{1, 0, tx, 0, 1, ty}
}

func affScale(sx, sy float64) f64.Aff3 {
	return f64.Aff3{sx, 0, 0, 0, sy, 0}
}

// mulAff3 returns a*b, the transform that applies b first and then a.
func mulAff3(a, b f64.Aff3) f64.Aff3 {
	return f64.Aff3{
		a[0]*b[0] + a[1]*b[3],
		a[0]*b[1] + a[1]*b[4],
		a[0]*b[2] + a[1]*b[5] + a[2],
		a[3]*b[0] + a[4]*b[3],
		a[3]*b[1] + a[4]*b[4],
		a[3]*b[2] + a[4]*b[5] + a[5],
	}
}

// FitWithin scales w x h so the longer side is at most maxDim, keeping the
// aspect ratio. Sizes already within maxDim are returned unchanged.
func FitWithin(w, h, maxDim int) (int, int) {
	if maxDim <= 0 || (w <= maxDim && h <= maxDim) {
		return w, h
	}
	if w >= h {
		nh := int(math.Round(float64(h) / float64(w) * float64(maxDim)))
		if nh < 1 {
			nh = 1
		}
		return maxDim, nh
	}
	nw := int(math.Round(float64(w) / float64(h) * float64(maxDim)))
	if nw < 1 {
		nw = 1
	}
	return nw, maxDim
}
