package crop

import (
	"math"
)

// DefaultHandleRadius is the hit radius, in percent, around each corner
// handle.
const DefaultHandleRadius = 3

// State is the interaction state of the crop editor.
type State int

const (
	Idle State = iota
	Dragging
	Resizing
)

func (s State) String() string {
	switch s {
	case Dragging:
		return "dragging"
	case Resizing:
		return "resizing"
	default:
		return "idle"
	}
}

// Handle names a corner of the crop box.
type Handle string

const (
	NoHandle  Handle = ""
	NorthWest Handle = "nw"
	NorthEast Handle = "ne"
	SouthWest Handle = "sw"
	SouthEast Handle = "se"
)

var handles = []Handle{NorthWest, NorthEast, SouthWest, SouthEast}

// Capture records which widget owns the pointer between pointer-down and
// pointer-up. Only CaptureCropDrag lets pointer moves reach the box.
type Capture int

const (
	CaptureNone Capture = iota
	CaptureCropDrag
	CaptureControlPanel
)

func (c Capture) String() string {
	switch c {
	case CaptureCropDrag:
		return "crop"
	case CaptureControlPanel:
		return "controls"
	default:
		return "none"
	}
}

// TargetKind classifies what a pointer-down landed on.
type TargetKind int

const (
	TargetNone TargetKind = iota
	TargetCropArea
	TargetHandle
	TargetControl
)

// Target is the result of hit testing a pointer position.
type Target struct {
	Kind   TargetKind
	Handle Handle
}

// Editor owns a crop Box and mutates it in response to pointer events,
// aspect ratio selection, rotation and flips. Every mutation leaves the box
// normalised.
//
// Editor is not safe for concurrent use; the session serialises access.
type Editor struct {
	box          Box
	ratio        AspectRatio
	imageAspect  float64
	handleRadius float64

	state    State
	handle   Handle
	capture  Capture
	start    Point
	startBox Box
}

// Option configures an Editor.
type Option func(*Editor)

// WithHandleRadius sets the corner hit radius in percent.
func WithHandleRadius(r float64) Option {
	return func(e *Editor) {
		if r > 0 {
			e.handleRadius = r
		}
	}
}

// NewEditor returns an idle editor with the full-frame box for an image of
// the given aspect (width/height).
func NewEditor(imageAspect float64, opts ...Option) *Editor {
	e := &Editor{
		box:          DefaultBox(),
		ratio:        Free,
		imageAspect:  imageAspect,
		handleRadius: DefaultHandleRadius,
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.imageAspect <= 0 || math.IsNaN(e.imageAspect) {
		e.imageAspect = 1
	}
	return e
}

// Box returns the current box.
func (e *Editor) Box() Box { return e.box }

// State returns the interaction state.
func (e *Editor) State() State { return e.state }

// ActiveHandle returns the handle being resized, or NoHandle.
func (e *Editor) ActiveHandle() Handle { return e.handle }

// Capture returns the current pointer capture.
func (e *Editor) Capture() Capture { return e.capture }

// AspectRatio returns the selected ratio.
func (e *Editor) AspectRatio() AspectRatio { return e.ratio }

// ImageAspect returns the width/height ratio of the source image.
func (e *Editor) ImageAspect() float64 { return e.imageAspect }

// SetImageAspect records a new source aspect. A locked ratio is refitted
// to it.
func (e *Editor) SetImageAspect(aspect float64) {
	if aspect <= 0 || math.IsNaN(aspect) || math.IsInf(aspect, 0) {
		aspect = 1
	}
	e.imageAspect = aspect
	if e.ratio.Locked() {
		fit := FitBox(e.ratio, aspect)
		b := e.box
		b.X, b.Y, b.Width, b.Height = fit.X, fit.Y, fit.Width, fit.Height
		e.box = b.Normalized()
	}
}

// SetBox replaces the box, normalising it first.
func (e *Editor) SetBox(b Box) {
	e.box = b.Normalized()
}

// HitTest classifies p against the current box. Corner handles win over
// the box body; the nearest handle within the radius is chosen.
func (e *Editor) HitTest(p Point) Target {
	best := NoHandle
	bestDist := math.Inf(1)
	for _, h := range handles {
		c := e.corner(h)
		d := math.Hypot(p.X-c.X, p.Y-c.Y)
		if d <= e.handleRadius && d < bestDist {
			best = h
			bestDist = d
		}
	}
	if best != NoHandle {
		return Target{Kind: TargetHandle, Handle: best}
	}
	if e.box.Contains(p) {
		return Target{Kind: TargetCropArea}
	}
	return Target{Kind: TargetNone}
}

func (e *Editor) corner(h Handle) Point {
	b := e.box
	switch h {
	case NorthWest:
		return Point{b.X, b.Y}
	case NorthEast:
		return Point{b.X + b.Width, b.Y}
	case SouthWest:
		return Point{b.X, b.Y + b.Height}
	default:
		return Point{b.X + b.Width, b.Y + b.Height}
	}
}

// PointerDown starts an interaction on target at p. A pointer-down on a
// control captures the pointer for the control panel so later moves never
// reach the box. Returns true when a crop interaction started.
func (e *Editor) PointerDown(target Target, p Point) bool {
	if e.capture != CaptureNone {
		return false
	}

	switch target.Kind {
	case TargetControl:
		e.capture = CaptureControlPanel
		return false
	case TargetHandle:
		if target.Handle == NoHandle {
			return false
		}
		e.state = Resizing
		e.handle = target.Handle
	case TargetCropArea:
		if !e.box.Contains(p) {
			return false
		}
		e.state = Dragging
	default:
		return false
	}

	e.capture = CaptureCropDrag
	e.start = p
	e.startBox = e.box
	return true
}

// PointerDownAt hit tests p and starts whatever interaction it lands on.
func (e *Editor) PointerDownAt(p Point) bool {
	return e.PointerDown(e.HitTest(p), p)
}

// PointerMove updates the box for the current interaction. Moves are
// ignored unless the crop owns the pointer. Returns true when the box
// changed.
func (e *Editor) PointerMove(p Point) bool {
	if e.capture != CaptureCropDrag {
		return false
	}

	dx := p.X - e.start.X
	dy := p.Y - e.start.Y
	before := e.box

	switch e.state {
	case Dragging:
		e.box = e.drag(dx, dy)
	case Resizing:
		e.box = e.resize(dx, dy)
	default:
		return false
	}

	e.box.Normalize()
	return !e.box.SameRect(before)
}

// PointerUp ends any interaction and releases the pointer.
func (e *Editor) PointerUp() {
	e.state = Idle
	e.handle = NoHandle
	e.capture = CaptureNone
}

func (e *Editor) drag(dx, dy float64) Box {
	b := e.startBox
	b.X = clampf(b.X+dx, 0, 100-b.Width)
	b.Y = clampf(b.Y+dy, 0, 100-b.Height)
	return b
}

// resize moves the active corner while the opposite corner stays pinned.
func (e *Editor) resize(dx, dy float64) Box {
	s := e.startBox
	right := s.X + s.Width
	bottom := s.Y + s.Height

	west := e.handle == NorthWest || e.handle == SouthWest
	north := e.handle == NorthWest || e.handle == NorthEast

	var w, h, availW, availH float64
	if west {
		w = s.Width - dx
		availW = right
	} else {
		w = s.Width + dx
		availW = 100 - s.X
	}
	if north {
		h = s.Height - dy
		availH = bottom
	} else {
		h = s.Height + dy
		availH = 100 - s.Y
	}

	w = clampf(w, MinSize, availW)
	if e.ratio.Locked() {
		w, h = e.lockedSize(w, availW, availH)
	} else {
		h = clampf(h, MinSize, availH)
	}

	b := s
	b.Width = w
	b.Height = h
	if west {
		b.X = right - w
	}
	if north {
		b.Y = bottom - h
	}
	return b
}

// lockedSize derives the height from the width under the selected ratio and
// shrinks both until the box fits the space left by the pinned corner.
func (e *Editor) lockedSize(w, availW, availH float64) (float64, float64) {
	k := e.ratio.heightFor(1, e.imageAspect)
	h := w * k
	if h > availH {
		h = availH
		w = h / k
	}
	if h < MinSize {
		h = MinSize
		w = h / k
	}
	if w < MinSize {
		w = MinSize
		h = w * k
	}
	return clampf(w, MinSize, availW), clampf(h, MinSize, availH)
}

// SelectAspectRatio switches the ratio by name. A locked ratio recentres
// the box at the largest 80% fit; free keeps the current box.
func (e *Editor) SelectAspectRatio(name string) error {
	r, err := LookupAspectRatio(name)
	if err != nil {
		return err
	}
	e.ratio = r
	if r.Locked() {
		fit := FitBox(r, e.imageAspect)
		b := e.box
		b.X, b.Y, b.Width, b.Height = fit.X, fit.Y, fit.Width, fit.Height
		e.box = b.Normalized()
	}
	return nil
}

// RotateQuarter turns the box by steps quarter turns.
func (e *Editor) RotateQuarter(steps int) {
	e.box = e.box.Rotated(steps)
}

// SetFineRotation sets the slider rotation, clamped to +/-45 degrees, and
// returns the stored value.
func (e *Editor) SetFineRotation(deg float64) float64 {
	e.box.FineRotation = deg
	e.box.Normalize()
	return e.box.FineRotation
}

// FlipHorizontal toggles the horizontal flip.
func (e *Editor) FlipHorizontal() {
	e.box.FlipHorizontal = !e.box.FlipHorizontal
}

// FlipVertical toggles the vertical flip.
func (e *Editor) FlipVertical() {
	e.box.FlipVertical = !e.box.FlipVertical
}

// Reset restores the full-frame box, the free ratio and the idle state.
func (e *Editor) Reset() {
	e.box = DefaultBox()
	e.ratio = Free
	e.PointerUp()
}
