package preset

import (
	"github.com/lucasb-eyer/go-colorful"

	"github.com/ironsheep/photo-editor-mcp/internal/adjust"
)

// Swatch is the two-colour gradient shown as a preset's thumbnail, plus
// the perceptual midpoint of the two.
type Swatch struct {
	From string `json:"from"`
	Mid  string `json:"mid"`
	To   string `json:"to"`
}

type swatchRule struct {
	match    func(o Overrides) bool
	from, to string
}

// swatchRules are checked in order; the last one always matches.
var swatchRules = []swatchRule{
	{func(o Overrides) bool { return o[adjust.Saturation] == -100 }, "#888888", "#444444"},
	{func(o Overrides) bool { return o[adjust.Temperature] > 20 }, "#f5a623", "#d35400"},
	{func(o Overrides) bool { return o[adjust.Temperature] < -20 }, "#3498db", "#2c3e50"},
	{func(o Overrides) bool { return o[adjust.Saturation] > 30 }, "#e91e63", "#9c27b0"},
	{func(Overrides) bool { return true }, "#607d8b", "#455a64"},
}

// Swatch returns the thumbnail gradient for p: grey for black and white
// looks, orange for warm, blue for cool, pink for saturated, slate
// otherwise. The midpoint is blended in CIE L*a*b*.
func (p Preset) Swatch() Swatch {
	for _, r := range swatchRules {
		if r.match(p.Overrides) {
			return newSwatch(r.from, r.to)
		}
	}
	return Swatch{}
}

func newSwatch(from, to string) Swatch {
	s := Swatch{From: from, To: to, Mid: from}
	a, err := colorful.Hex(from)
	if err != nil {
		return s
	}
	b, err := colorful.Hex(to)
	if err != nil {
		return s
	}
	s.Mid = a.BlendLab(b, 0.5).Clamped().Hex()
	return s
}
