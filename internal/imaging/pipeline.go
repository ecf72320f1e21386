package imaging

import (
	"image"
	"math"

	"github.com/anthonynsimon/bild/parallel"
	"github.com/disintegration/imaging"

	"github.com/ironsheep/photo-editor-mcp/internal/adjust"
)

const (
	// highlightThreshold is the channel value above which the highlights
	// knob pushes values further up or down.
	highlightThreshold = 200

	// shadowThreshold is the channel value below which the shadows knob
	// lifts or crushes values.
	shadowThreshold = 55

	// warmthScale is the channel offset produced by temperature or tint at
	// +/-100.
	warmthScale = 30
)

// Luma weights (Rec. 709) used by saturation and vibrance.
const (
	lumaR = 0.2126
	lumaG = 0.7152
	lumaB = 0.0722
)

// Apply runs the adjustment pipeline over img and returns a new buffer.
//
// The input is never modified. The returned image is an *image.NRGBA whose
// bounds start at (0,0); alpha is copied through untouched.
//
// # Stage Order
//
// Stages run in a fixed order and every intermediate channel value is
// rounded half-up and clamped to [0,255] right after the stage that produced
// it:
//
//  1. Per-channel offset: c + channel*2.55
//  2. Exposure: c * 2^(exposure/100)
//  3. Gamma: 255 * (c/255)^(1/gamma)
//  4. Brightness: c + brightness*2.55
//  5. Contrast: f*(c-128)+128, f = 259(contrast+255) / (255(259-contrast))
//  6. Temperature: red +t*30, blue -t*30 (t = temperature/100)
//  7. Tint: green +tint/100*30
//  8. Saturation: lerp from luma by 1+saturation/100
//  9. Vibrance: like saturation, weighted by 1-(max-min)/255
//  10. Highlights: channels above 200 move by (c-200)*highlights/100*0.5
//  11. Shadows: channels below 55 move by (55-c)*shadows/100*0.5
//  12. Clarity: interior pixels gain (c - mean of 4 neighbours)*clarity/200
//
// With adjust.Default() the output equals the input pixel for pixel.
//
// Sharpening is not part of Apply; see Sharpen and Render.
func Apply(img image.Image, m adjust.Model) *image.NRGBA {
	m = m.Normalized()
	dst := imaging.Clone(img)

	w := dst.Bounds().Dx()
	h := dst.Bounds().Dy()
	if w == 0 || h == 0 {
		return dst
	}

	st := newStages(m)
	parallel.Line(h, func(start, end int) {
		for y := start; y < end; y++ {
			row := dst.Pix[y*dst.Stride : y*dst.Stride+w*4]
			for i := 0; i < len(row); i += 4 {
				r, g, b := st.pixel(float64(row[i]), float64(row[i+1]), float64(row[i+2]))
				row[i] = uint8(r)
				row[i+1] = uint8(g)
				row[i+2] = uint8(b)
			}
		}
	})

	if m.Clarity != 0 {
		applyClarity(dst, m.Clarity)
	}
	return dst
}

// Render is Apply followed by Sharpen when the model asks for sharpening.
func Render(img image.Image, m adjust.Model) *image.NRGBA {
	out := Apply(img, m)
	if m.Sharpen > 0 {
		out = Sharpen(out, m.Sharpen)
	}
	return out
}

// stages holds the per-model constants of the per-pixel stages so they are
// computed once per Apply rather than once per pixel.
type stages struct {
	red, green, blue float64
	exposure         float64
	invGamma         float64
	brightness       float64
	contrast         float64
	temperature      float64
	tint             float64
	saturation       float64
	vibrance         float64
	highlights       float64
	shadows          float64
}

func newStages(m adjust.Model) stages {
	return stages{
		red:         m.RedChannel * 2.55,
		green:       m.GreenChannel * 2.55,
		blue:        m.BlueChannel * 2.55,
		exposure:    math.Pow(2, m.Exposure/100),
		invGamma:    1 / m.Gamma,
		brightness:  m.Brightness * 2.55,
		contrast:    (259 * (m.Contrast + 255)) / (255 * (259 - m.Contrast)),
		temperature: m.Temperature / 100,
		tint:        m.Tint / 100,
		saturation:  1 + m.Saturation/100,
		vibrance:    m.Vibrance / 100,
		highlights:  m.Highlights / 100,
		shadows:     m.Shadows / 100,
	}
}

// pixel runs stages 1-11 on one pixel.
func (s stages) pixel(r, g, b float64) (float64, float64, float64) {
	r = clampChannel(r + s.red)
	g = clampChannel(g + s.green)
	b = clampChannel(b + s.blue)

	r = clampChannel(r * s.exposure)
	g = clampChannel(g * s.exposure)
	b = clampChannel(b * s.exposure)

	r = clampChannel(255 * math.Pow(r/255, s.invGamma))
	g = clampChannel(255 * math.Pow(g/255, s.invGamma))
	b = clampChannel(255 * math.Pow(b/255, s.invGamma))

	r = clampChannel(r + s.brightness)
	g = clampChannel(g + s.brightness)
	b = clampChannel(b + s.brightness)

	r = clampChannel(s.contrast*(r-128) + 128)
	g = clampChannel(s.contrast*(g-128) + 128)
	b = clampChannel(s.contrast*(b-128) + 128)

	if s.temperature != 0 {
		r = clampChannel(r + s.temperature*warmthScale)
		b = clampChannel(b - s.temperature*warmthScale)
	}

	if s.tint != 0 {
		g = clampChannel(g + s.tint*warmthScale)
	}

	gray := lumaR*r + lumaG*g + lumaB*b
	r = clampChannel(gray + s.saturation*(r-gray))
	g = clampChannel(gray + s.saturation*(g-gray))
	b = clampChannel(gray + s.saturation*(b-gray))

	// Vibrance pivots on the luma taken before saturation.
	if s.vibrance != 0 {
		level := (math.Max(r, math.Max(g, b)) - math.Min(r, math.Min(g, b))) / 255
		f := 1 + (1-level)*s.vibrance
		r = clampChannel(gray + f*(r-gray))
		g = clampChannel(gray + f*(g-gray))
		b = clampChannel(gray + f*(b-gray))
	}

	if s.highlights != 0 {
		r = pushHighlight(r, s.highlights)
		g = pushHighlight(g, s.highlights)
		b = pushHighlight(b, s.highlights)
	}

	if s.shadows != 0 {
		r = liftShadow(r, s.shadows)
		g = liftShadow(g, s.shadows)
		b = liftShadow(b, s.shadows)
	}

	return r, g, b
}

func pushHighlight(c, f float64) float64 {
	if c > highlightThreshold {
		return clampChannel(c + (c-highlightThreshold)*f*0.5)
	}
	return c
}

func liftShadow(c, f float64) float64 {
	if c < shadowThreshold {
		return clampChannel(c + (shadowThreshold-c)*f*0.5)
	}
	return c
}

// applyClarity boosts local contrast in place. Border pixels are left as
// they are because they lack a full 4-neighbourhood.
func applyClarity(img *image.NRGBA, clarity float64) {
	w := img.Bounds().Dx()
	h := img.Bounds().Dy()
	if w < 3 || h < 3 {
		return
	}

	factor := clarity / 200
	src := make([]uint8, len(img.Pix))
	copy(src, img.Pix)
	stride := img.Stride

	parallel.Line(h-2, func(start, end int) {
		for y := start + 1; y < end+1; y++ {
			for x := 1; x < w-1; x++ {
				i := y*stride + x*4
				for c := 0; c < 3; c++ {
					center := float64(src[i+c])
					neighbours := float64(src[i-stride+c]) +
						float64(src[i+stride+c]) +
						float64(src[i-4+c]) +
						float64(src[i+4+c])
					detail := center - neighbours/4
					img.Pix[i+c] = uint8(clampChannel(center + detail*factor))
				}
			}
		}
	})
}

// clampChannel rounds half-up and limits v to [0,255].
func clampChannel(v float64) float64 {
	v = math.Floor(v + 0.5)
	if v < 0 {
		return 0
	}
	if v > 255 {
		return 255
	}
	return v
}
