package crop

import (
	"errors"
	"fmt"
)

// ErrUnknownAspectRatio is returned for ratio names outside the table.
var ErrUnknownAspectRatio = errors.New("unknown aspect ratio")

// fitPercent is how much of the constraining dimension a freshly selected
// aspect ratio box covers.
const fitPercent = 80

// AspectRatio is a named width:height ratio. Free has Value 0 and leaves the
// box unconstrained.
type AspectRatio struct {
	Name  string  `json:"name"`
	Value float64 `json:"value"`
}

// Free is the unconstrained ratio.
var Free = AspectRatio{Name: "free"}

var aspectRatios = []AspectRatio{
	Free,
	{Name: "1:1", Value: 1},
	{Name: "4:3", Value: 4.0 / 3.0},
	{Name: "3:4", Value: 3.0 / 4.0},
	{Name: "16:9", Value: 16.0 / 9.0},
	{Name: "9:16", Value: 9.0 / 16.0},
}

// AspectRatios lists the selectable ratios, free first.
func AspectRatios() []AspectRatio {
	out := make([]AspectRatio, len(aspectRatios))
	copy(out, aspectRatios)
	return out
}

// LookupAspectRatio finds a ratio by name.
func LookupAspectRatio(name string) (AspectRatio, error) {
	for _, r := range aspectRatios {
		if r.Name == name {
			return r, nil
		}
	}
	return AspectRatio{}, fmt.Errorf("%w: %q", ErrUnknownAspectRatio, name)
}

// Locked reports whether the ratio constrains the box.
func (a AspectRatio) Locked() bool {
	return a.Value > 0
}

// heightFor returns the box height (percent) that gives a box of width w
// (percent) this ratio on an image with the given aspect.
func (a AspectRatio) heightFor(w, imageAspect float64) float64 {
	return w / a.Value * imageAspect
}

// FitBox returns a centred box of ratio a on an image with aspect
// imageAspect (width/height). The constraining dimension covers 80% and the
// other follows from the ratio, capped at 80%.
//
// For example 1:1 on a 1600x1200 image gives {X:20 Y:10 W:60 H:80}, a
// 960x960 pixel square.
func FitBox(a AspectRatio, imageAspect float64) Box {
	if !a.Locked() || imageAspect <= 0 {
		return Box{X: (100 - fitPercent) / 2, Y: (100 - fitPercent) / 2, Width: fitPercent, Height: fitPercent}
	}

	var w, h float64
	if a.Value > imageAspect {
		w = fitPercent
		h = a.heightFor(w, imageAspect)
		if h > fitPercent {
			h = fitPercent
			w = h * a.Value / imageAspect
		}
	} else {
		h = fitPercent
		w = h * a.Value / imageAspect
		if w > fitPercent {
			w = fitPercent
			h = a.heightFor(w, imageAspect)
		}
	}

	return Box{
		X:      (100 - w) / 2,
		Y:      (100 - h) / 2,
		Width:  w,
		Height: h,
	}.Normalized()
}
