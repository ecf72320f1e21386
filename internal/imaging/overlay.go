package imaging

import (
	"image"
	"image/color"
	"image/draw"
	"math"

	"github.com/disintegration/imaging"

	"github.com/ironsheep/photo-editor-mcp/internal/crop"
)

var (
	overlayShade  = color.NRGBA{0, 0, 0, 128}
	overlayBorder = color.NRGBA{255, 255, 255, 255}
	overlayGuide  = color.NRGBA{255, 255, 255, 77}
)

// CropOverlay draws the crop interface over an uncropped preview.
//
// Parameters:
//   - img: Full-frame preview. It is not modified.
//   - box: Crop box in percent of img. Orientation fields are ignored; the
//     overlay marks the source rectangle.
//   - handleRadius: Corner handle hit radius in percent, as used by
//     crop.Editor. Handles are drawn half that size.
//
// The area outside the box is shaded with 50% black, the box gets a 2 pixel
// white border, rule-of-thirds guides are drawn at 30% white and each corner
// gets a solid handle.
func CropOverlay(img image.Image, box crop.Box, handleRadius float64) *image.NRGBA {
	dst := imaging.Clone(img)
	w, h := dst.Bounds().Dx(), dst.Bounds().Dy()
	if w == 0 || h == 0 {
		return dst
	}

	box = box.Normalized()
	fx0, fy0, fx1, fy1 := box.PixelRect(w, h)
	r := image.Rect(
		int(math.Round(fx0)), int(math.Round(fy0)),
		int(math.Round(fx1)), int(math.Round(fy1)),
	)
	frame := dst.Bounds()

	shade := image.NewUniform(overlayShade)
	for _, outside := range []image.Rectangle{
		image.Rect(0, 0, w, r.Min.Y),
		image.Rect(0, r.Max.Y, w, h),
		image.Rect(0, r.Min.Y, r.Min.X, r.Max.Y),
		image.Rect(r.Max.X, r.Min.Y, w, r.Max.Y),
	} {
		draw.Draw(dst, outside.Intersect(frame), shade, image.Point{}, draw.Over)
	}

	guide := image.NewUniform(overlayGuide)
	for i := 1; i <= 2; i++ {
		gx := r.Min.X + r.Dx()*i/3
		gy := r.Min.Y + r.Dy()*i/3
		draw.Draw(dst, image.Rect(gx, r.Min.Y, gx+1, r.Max.Y).Intersect(frame), guide, image.Point{}, draw.Over)
		draw.Draw(dst, image.Rect(r.Min.X, gy, r.Max.X, gy+1).Intersect(frame), guide, image.Point{}, draw.Over)
	}

	const bw = 2
	border := image.NewUniform(overlayBorder)
	for _, edge := range []image.Rectangle{
		image.Rect(r.Min.X, r.Min.Y, r.Max.X, r.Min.Y+bw),
		image.Rect(r.Min.X, r.Max.Y-bw, r.Max.X, r.Max.Y),
		image.Rect(r.Min.X, r.Min.Y, r.Min.X+bw, r.Max.Y),
		image.Rect(r.Max.X-bw, r.Min.Y, r.Max.X, r.Max.Y),
	} {
		draw.Draw(dst, edge.Intersect(frame), border, image.Point{}, draw.Src)
	}

	rad := max(3, int(math.Round(handleRadius/200*float64(min(w, h)))))
	for _, c := range []image.Point{
		r.Min, {r.Max.X, r.Min.Y}, {r.Min.X, r.Max.Y}, r.Max,
	} {
		fillDisc(dst, c, rad, overlayBorder)
	}
	return dst
}

func fillDisc(img *image.NRGBA, c image.Point, rad int, col color.NRGBA) {
	b := img.Bounds()
	for y := c.Y - rad; y <= c.Y+rad; y++ {
		for x := c.X - rad; x <= c.X+rad; x++ {
			dx, dy := x-c.X, y-c.Y
			if dx*dx+dy*dy > rad*rad || !image.Pt(x, y).In(b) {
				continue
			}
			img.SetNRGBA(x, y, col)
		}
	}
}
