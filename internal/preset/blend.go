package preset

import (
	"math"

	"github.com/ironsheep/photo-editor-mcp/internal/adjust"
)

// MaxIntensity is the intensity at which a preset applies fully.
const MaxIntensity = 100

// ClampIntensity limits v to 0..100. NaN maps to 100.
func ClampIntensity(v float64) float64 {
	switch {
	case math.IsNaN(v):
		return MaxIntensity
	case v < 0:
		return 0
	case v > MaxIntensity:
		return MaxIntensity
	}
	return v
}

// Blend moves each overridden field of base from its default toward the
// override by intensity/100. Fields not in overrides keep their base value,
// so Blend(adjust.Default(), o, i) leaves them at default. The result is
// normalised.
func Blend(base adjust.Model, overrides Overrides, intensity float64) adjust.Model {
	t := ClampIntensity(intensity) / MaxIntensity
	out := base
	for f, v := range overrides {
		r, ok := adjust.RangeOf(f)
		if !ok {
			continue
		}
		out.Set(f, r.Default+(v-r.Default)*t)
	}
	return out.Normalized()
}

// Merge layers user edits over a preset-derived model: every field the user
// moved away from its default wins, every other field comes from the
// preset.
func Merge(presetDerived, user adjust.Model) adjust.Model {
	out := presetDerived
	for _, f := range user.Diff() {
		out.Set(f, user.Get(f))
	}
	return out
}

// Selection is the optional preset choice of a session. The zero value
// selects nothing.
type Selection struct {
	ID        string  `json:"id,omitempty" yaml:"id,omitempty"`
	Intensity float64 `json:"intensity" yaml:"intensity"`
}

// Active reports whether a preset is selected.
func (s Selection) Active() bool {
	return s.ID != ""
}

// Toggle selects id, or clears the selection if id is already selected.
// Selecting a different preset resets intensity to 100.
func (s Selection) Toggle(id string) (Selection, error) {
	if s.ID == id && id != "" {
		return Selection{}, nil
	}
	if _, err := ByID(id); err != nil {
		return s, err
	}
	return Selection{ID: id, Intensity: MaxIntensity}, nil
}

// WithIntensity returns s with a clamped intensity. It has no effect on an
// empty selection.
func (s Selection) WithIntensity(v float64) Selection {
	if !s.Active() {
		return s
	}
	s.Intensity = ClampIntensity(v)
	return s
}

// Effective computes the adjustments a render should use: the user's model
// alone when nothing is selected, otherwise the selected preset blended
// from default with the user's edits layered on top.
func Effective(user adjust.Model, sel Selection) adjust.Model {
	user = user.Normalized()
	if !sel.Active() {
		return user
	}
	p, err := ByID(sel.ID)
	if err != nil {
		return user
	}
	return Merge(Blend(adjust.Default(), p.Overrides, sel.Intensity), user)
}
