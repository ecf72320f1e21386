package imaging

import (
	"image"
	"image/color"
	"testing"

	"github.com/ironsheep/photo-editor-mcp/internal/crop"
)

var (
	red   = color.NRGBA{255, 0, 0, 255}
	green = color.NRGBA{0, 255, 0, 255}
	blue  = color.NRGBA{0, 0, 255, 255}
	white = color.NRGBA{255, 255, 255, 255}
)

func TestTransform_IdentityBox(t *testing.T) {
	img := newGradientImage(40, 30)
	out := Transform(img, crop.DefaultBox(), 40, 30)
	assertSamePixels(t, out, img)
}

func TestTransform_Crop(t *testing.T) {
	img := newQuadrantImage(100, 100)

	tests := []struct {
		name string
		box  crop.Box
		want color.NRGBA
	}{
		{"top left", crop.Box{X: 0, Y: 0, Width: 50, Height: 50}, red},
		{"top right", crop.Box{X: 50, Y: 0, Width: 50, Height: 50}, green},
		{"bottom left", crop.Box{X: 0, Y: 50, Width: 50, Height: 50}, blue},
		{"bottom right", crop.Box{X: 50, Y: 50, Width: 50, Height: 50}, white},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := Transform(img, tt.box, 0, 0)
			if out.Bounds() != image.Rect(0, 0, 50, 50) {
				t.Fatalf("bounds: got %v", out.Bounds())
			}
			for _, p := range []image.Point{{0, 0}, {25, 25}, {49, 49}, {0, 49}} {
				if got := out.NRGBAAt(p.X, p.Y); got != tt.want {
					t.Errorf("pixel %v: got %v, want %v", p, got, tt.want)
				}
			}
		})
	}
}

func TestTransform_Flips(t *testing.T) {
	img := newQuadrantImage(100, 100)

	box := crop.DefaultBox()
	box.FlipHorizontal = true
	out := Transform(img, box, 100, 100)
	if got := out.NRGBAAt(10, 10); got != green {
		t.Errorf("flip horizontal top-left: got %v, want green", got)
	}
	if got := out.NRGBAAt(90, 90); got != blue {
		t.Errorf("flip horizontal bottom-right: got %v, want blue", got)
	}

	box = crop.DefaultBox()
	box.FlipVertical = true
	out = Transform(img, box, 100, 100)
	if got := out.NRGBAAt(10, 10); got != blue {
		t.Errorf("flip vertical top-left: got %v, want blue", got)
	}
}

func TestTransform_QuarterTurn(t *testing.T) {
	img := newQuadrantImage(100, 100)

	// clockwise: the red top-left quadrant ends up top-right
	out := Transform(img, crop.DefaultBox().Rotated(1), 100, 100)
	checks := map[image.Point]color.NRGBA{
		{75, 25}: red,
		{75, 75}: green,
		{25, 25}: blue,
		{25, 75}: white,
	}
	for p, want := range checks {
		if got := out.NRGBAAt(p.X, p.Y); got != want {
			t.Errorf("pixel %v: got %v, want %v", p, got, want)
		}
	}
}

func TestTransform_FineRotationLeavesTransparentCorners(t *testing.T) {
	img := newSolidImage(80, 60, red)
	box := crop.DefaultBox()
	box.FineRotation = 30

	out := Transform(img, box, 80, 60)
	if got := out.NRGBAAt(0, 0); got.A != 0 {
		t.Errorf("corner should be transparent, got %v", got)
	}
	if got := out.NRGBAAt(40, 30); got != red {
		t.Errorf("centre: got %v, want red", got)
	}
}

func TestTransform_OutputSize(t *testing.T) {
	img := newGradientImage(200, 100)
	out := Transform(img, crop.DefaultBox(), 50, 25)
	if out.Bounds() != image.Rect(0, 0, 50, 25) {
		t.Errorf("bounds: got %v", out.Bounds())
	}

	box := crop.Box{X: 10, Y: 10, Width: 30, Height: 40}
	out = Transform(img, box, 0, 0)
	if out.Bounds() != image.Rect(0, 0, 60, 40) {
		t.Errorf("crop-sized bounds: got %v", out.Bounds())
	}
}

func TestTransform_DoesNotMutateInput(t *testing.T) {
	img := newGradientImage(30, 30)
	before := append([]uint8(nil), img.Pix...)
	box := crop.Box{X: 5, Y: 5, Width: 60, Height: 60, QuarterTurns: 1, FlipVertical: true}
	Transform(img, box, 0, 0)
	for i := range before {
		if img.Pix[i] != before[i] {
			t.Fatal("Transform modified its input")
		}
	}
}

func TestFitWithin(t *testing.T) {
	tests := []struct {
		w, h, max    int
		wantW, wantH int
	}{
		{4000, 3000, 1920, 1920, 1440},
		{3000, 4000, 1920, 1440, 1920},
		{800, 600, 1920, 800, 600},
		{1920, 1080, 1920, 1920, 1080},
		{1000, 1000, 500, 500, 500},
		{5000, 10, 1000, 1000, 2},
		{10000, 1, 100, 100, 1},
		{640, 480, 0, 640, 480},
	}
	for _, tt := range tests {
		gotW, gotH := FitWithin(tt.w, tt.h, tt.max)
		if gotW != tt.wantW || gotH != tt.wantH {
			t.Errorf("FitWithin(%d,%d,%d): got %dx%d, want %dx%d",
				tt.w, tt.h, tt.max, gotW, gotH, tt.wantW, tt.wantH)
		}
	}
}

func TestDownscale(t *testing.T) {
	img := newGradientImage(400, 200)
	out := Downscale(img, 100)
	if out.Bounds() != image.Rect(0, 0, 100, 50) {
		t.Errorf("bounds: got %v", out.Bounds())
	}

	small := Downscale(img, 1200)
	assertSamePixels(t, small, img)
}
