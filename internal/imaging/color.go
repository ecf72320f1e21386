package imaging

import (
	"fmt"
	"image"
	"math"

	"github.com/lucasb-eyer/go-colorful"

	"github.com/ironsheep/photo-editor-mcp/internal/crop"
)

// MaxSampleRadius bounds the averaging window of SampleColor.
const MaxSampleRadius = 25

// RGBColor represents an RGB color with 8-bit components.
type RGBColor struct {
	R uint8 `json:"r"`
	G uint8 `json:"g"`
	B uint8 `json:"b"`
}

// HSLColor represents a color in HSL space.
type HSLColor struct {
	H int `json:"h"` // Hue: 0-360 degrees (0=red, 120=green, 240=blue)
	S int `json:"s"` // Saturation: 0-100 percent
	L int `json:"l"` // Lightness: 0-100 percent
}

// ColorSample is a sampled color in several notations.
//
// Hex excludes alpha. Alpha is reported separately so a transparent pixel
// is not mistaken for black.
type ColorSample struct {
	Hex   string   `json:"hex"`
	RGB   RGBColor `json:"rgb"`
	Alpha uint8    `json:"alpha"`
	HSL   HSLColor `json:"hsl"`

	// Pixel is the centre of the sample in image coordinates.
	Pixel image.Point `json:"pixel"`

	// Pixels is how many pixels were averaged.
	Pixels int `json:"pixels"`
}

// SampleColor reads the color at p, given in percent of img's width and
// height, averaging the square of the given radius around it.
//
// Parameters:
//   - img: Image to sample. It is not modified.
//   - p: Position in percent (0-100). Values outside the frame are clamped.
//   - radius: Half-width of the averaging square in pixels. 0 samples a
//     single pixel; values above MaxSampleRadius are capped.
//
// # Averaging
//
// Channels are averaged with alpha weighting, so fully transparent pixels
// do not drag the color towards black. The result alpha is the plain mean.
//
// Returns an error for an empty image or a non-finite position.
func SampleColor(img image.Image, p crop.Point, radius int) (ColorSample, error) {
	b := img.Bounds()
	if b.Empty() {
		return ColorSample{}, fmt.Errorf("cannot sample an empty image")
	}
	if math.IsNaN(p.X) || math.IsNaN(p.Y) || math.IsInf(p.X, 0) || math.IsInf(p.Y, 0) {
		return ColorSample{}, fmt.Errorf("invalid sample position (%v, %v)", p.X, p.Y)
	}
	radius = max(0, min(radius, MaxSampleRadius))

	cx := b.Min.X + pctToPixel(p.X, b.Dx())
	cy := b.Min.Y + pctToPixel(p.Y, b.Dy())
	window := image.Rect(cx-radius, cy-radius, cx+radius+1, cy+radius+1).Intersect(b)

	var rSum, gSum, bSum, aSum float64
	n := 0
	for y := window.Min.Y; y < window.Max.Y; y++ {
		for x := window.Min.X; x < window.Max.X; x++ {
			// RGBA returns alpha-premultiplied 16-bit values.
			r, g, bl, a := img.At(x, y).RGBA()
			rSum += float64(r)
			gSum += float64(g)
			bSum += float64(bl)
			aSum += float64(a)
			n++
		}
	}

	var c colorful.Color
	if aSum > 0 {
		c = colorful.Color{R: rSum / aSum, G: gSum / aSum, B: bSum / aSum}
	}
	r8, g8, b8 := c.Clamped().RGB255()
	h, s, l := colorful.Color{R: float64(r8) / 255, G: float64(g8) / 255, B: float64(b8) / 255}.Hsl()
	if math.IsNaN(h) {
		h = 0
	}

	return ColorSample{
		Hex:    fmt.Sprintf("#%02X%02X%02X", r8, g8, b8),
		RGB:    RGBColor{R: r8, G: g8, B: b8},
		Alpha:  uint8(math.Round(aSum / float64(n) / 0xffff * 255)),
		HSL:    HSLColor{H: int(math.Round(h)) % 360, S: int(math.Round(s * 100)), L: int(math.Round(l * 100))},
		Pixel:  image.Pt(cx, cy),
		Pixels: n,
	}, nil
}

// pctToPixel maps a percent position to a pixel index in [0, size).
func pctToPixel(pct float64, size int) int {
	i := int(math.Floor(pct / 100 * float64(size)))
	return max(0, min(i, size-1))
}
