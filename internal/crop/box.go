// Package crop models the crop rectangle of an edit and the pointer-driven
// state machine that moves and resizes it.
//
// Boxes are expressed in percent of the source image (0-100 on both axes),
// so they survive preview downsampling and full-resolution export unchanged.
package crop

import (
	"math"
)

const (
	// MinSize is the smallest width or height, in percent, a box may have.
	MinSize = 10

	// MaxFineRotation bounds the fine rotation slider in degrees.
	MaxFineRotation = 45
)

// Box is the crop rectangle plus the orientation applied to it.
type Box struct {
	X      float64 `json:"x" yaml:"x"`
	Y      float64 `json:"y" yaml:"y"`
	Width  float64 `json:"width" yaml:"width"`
	Height float64 `json:"height" yaml:"height"`

	// QuarterTurns counts clockwise 90 degree steps, kept in 0..3.
	QuarterTurns int `json:"quarterTurns" yaml:"quarterTurns"`

	// FineRotation is the slider rotation in degrees, kept in -45..45.
	FineRotation float64 `json:"fineRotation" yaml:"fineRotation"`

	FlipHorizontal bool `json:"flipHorizontal" yaml:"flipHorizontal"`
	FlipVertical   bool `json:"flipVertical" yaml:"flipVertical"`
}

// DefaultBox returns the full-frame box with no rotation or flips.
func DefaultBox() Box {
	return Box{Width: 100, Height: 100}
}

// Rotation returns the single effective rotation in degrees, combining the
// quarter turns with the fine rotation and normalised into (-180, 180].
func (b Box) Rotation() float64 {
	deg := float64(mod4(b.QuarterTurns))*90 + b.FineRotation
	deg = math.Mod(deg, 360)
	if deg > 180 {
		deg -= 360
	} else if deg <= -180 {
		deg += 360
	}
	return deg
}

// Rotated returns b turned by steps quarter turns (negative is
// counter-clockwise).
func (b Box) Rotated(steps int) Box {
	b.QuarterTurns = mod4(b.QuarterTurns + steps)
	return b
}

// Normalize enforces the box invariant: MinSize <= Width, Height <= 100,
// 0 <= X <= 100-Width, 0 <= Y <= 100-Height, fine rotation within
// +/-MaxFineRotation and quarter turns within 0..3. It reports whether
// anything had to change.
func (b *Box) Normalize() bool {
	before := *b

	b.Width = clampf(orDefault(b.Width, 100), MinSize, 100)
	b.Height = clampf(orDefault(b.Height, 100), MinSize, 100)
	b.X = clampf(orDefault(b.X, 0), 0, 100-b.Width)
	b.Y = clampf(orDefault(b.Y, 0), 0, 100-b.Height)
	b.FineRotation = clampf(orDefault(b.FineRotation, 0), -MaxFineRotation, MaxFineRotation)
	b.QuarterTurns = mod4(b.QuarterTurns)

	return *b != before
}

// Normalized returns a copy of b satisfying the box invariant.
func (b Box) Normalized() Box {
	b.Normalize()
	return b
}

// Valid reports whether b already satisfies the box invariant, allowing for
// float rounding on the far edges.
func (b Box) Valid() bool {
	const eps = 1e-9
	return b.X >= 0 && b.Y >= 0 &&
		b.Width >= MinSize && b.Height >= MinSize &&
		b.X+b.Width <= 100+eps && b.Y+b.Height <= 100+eps
}

// Contains reports whether p (in percent) lies inside the rectangle.
func (b Box) Contains(p Point) bool {
	return p.X >= b.X && p.X <= b.X+b.Width && p.Y >= b.Y && p.Y <= b.Y+b.Height
}

// SameRect reports whether a and b describe the same rectangle, ignoring
// orientation.
func (b Box) SameRect(o Box) bool {
	return b.X == o.X && b.Y == o.Y && b.Width == o.Width && b.Height == o.Height
}

// PixelRect converts the rectangle to source-pixel coordinates for an image
// of the given size. Coordinates are fractional; use PixelSize for the
// rounded output dimensions.
func (b Box) PixelRect(imageWidth, imageHeight int) (x0, y0, x1, y1 float64) {
	w := float64(imageWidth)
	h := float64(imageHeight)
	x0 = b.X / 100 * w
	y0 = b.Y / 100 * h
	x1 = x0 + b.Width/100*w
	y1 = y0 + b.Height/100*h
	return x0, y0, x1, y1
}

// PixelSize returns the rounded pixel size of the rectangle, at least 1x1.
func (b Box) PixelSize(imageWidth, imageHeight int) (int, int) {
	w := int(math.Round(b.Width / 100 * float64(imageWidth)))
	h := int(math.Round(b.Height / 100 * float64(imageHeight)))
	if w < 1 {
		w = 1
	}
	if h < 1 {
		h = 1
	}
	return w, h
}

// Point is a pointer position in percent of the crop container.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

func mod4(n int) int {
	return ((n % 4) + 4) % 4
}

func clampf(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func orDefault(v, def float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return def
	}
	return v
}
