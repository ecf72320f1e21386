// Package adjust defines the tone and colour adjustment model used by the
// editor.
//
// A Model is a fixed set of independent numeric knobs. Each knob has a
// declared range and a default; the default Model is the identity for the
// pixel pipeline. Values written through Set or Normalize are clamped into
// range, so a Model obtained from this package never holds an out-of-range
// value.
package adjust

import (
	"errors"
	"fmt"
	"math"
)

// ErrUnknownField is returned by ParseField for keys that name no adjustment.
var ErrUnknownField = errors.New("unknown adjustment field")

// Field names a single adjustment. The string value is the key used in JSON,
// YAML and tool arguments.
type Field string

const (
	Brightness   Field = "brightness"
	Contrast     Field = "contrast"
	Saturation   Field = "saturation"
	Vibrance     Field = "vibrance"
	Highlights   Field = "highlights"
	Shadows      Field = "shadows"
	Exposure     Field = "exposure"
	Gamma        Field = "gamma"
	Temperature  Field = "temperature"
	Tint         Field = "tint"
	Sharpen      Field = "sharpen"
	Clarity      Field = "clarity"
	RedChannel   Field = "redChannel"
	GreenChannel Field = "greenChannel"
	BlueChannel  Field = "blueChannel"
)

// Range is the closed interval a field may take, plus its default.
type Range struct {
	Min     float64 `json:"min"`
	Max     float64 `json:"max"`
	Default float64 `json:"default"`
}

// Clamp returns v limited to [Min, Max]. NaN maps to Default.
func (r Range) Clamp(v float64) float64 {
	if math.IsNaN(v) {
		return r.Default
	}
	if v < r.Min {
		return r.Min
	}
	if v > r.Max {
		return r.Max
	}
	return v
}

var (
	signed  = Range{Min: -100, Max: 100, Default: 0}
	gammaR  = Range{Min: 0.2, Max: 5, Default: 1}
	sharpen = Range{Min: 0, Max: 100, Default: 0}
)

var ranges = map[Field]Range{
	Brightness:   signed,
	Contrast:     signed,
	Saturation:   signed,
	Vibrance:     signed,
	Highlights:   signed,
	Shadows:      signed,
	Exposure:     signed,
	Gamma:        gammaR,
	Temperature:  signed,
	Tint:         signed,
	Sharpen:      sharpen,
	Clarity:      signed,
	RedChannel:   signed,
	GreenChannel: signed,
	BlueChannel:  signed,
}

// fieldOrder is the order the pixel pipeline consumes the knobs in.
var fieldOrder = []Field{
	RedChannel, GreenChannel, BlueChannel,
	Exposure, Gamma, Brightness, Contrast,
	Temperature, Tint, Saturation, Vibrance,
	Highlights, Shadows, Clarity, Sharpen,
}

// Fields returns every adjustment field in pipeline order.
func Fields() []Field {
	out := make([]Field, len(fieldOrder))
	copy(out, fieldOrder)
	return out
}

// RangeOf returns the declared range of f.
func RangeOf(f Field) (Range, bool) {
	r, ok := ranges[f]
	return r, ok
}

// ParseField maps a key such as "brightness" to its Field.
func ParseField(key string) (Field, error) {
	f := Field(key)
	if _, ok := ranges[f]; !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownField, key)
	}
	return f, nil
}

// Model is the full set of adjustment knobs.
type Model struct {
	Brightness   float64 `json:"brightness" yaml:"brightness"`
	Contrast     float64 `json:"contrast" yaml:"contrast"`
	Saturation   float64 `json:"saturation" yaml:"saturation"`
	Vibrance     float64 `json:"vibrance" yaml:"vibrance"`
	Highlights   float64 `json:"highlights" yaml:"highlights"`
	Shadows      float64 `json:"shadows" yaml:"shadows"`
	Exposure     float64 `json:"exposure" yaml:"exposure"`
	Gamma        float64 `json:"gamma" yaml:"gamma"`
	Temperature  float64 `json:"temperature" yaml:"temperature"`
	Tint         float64 `json:"tint" yaml:"tint"`
	Sharpen      float64 `json:"sharpen" yaml:"sharpen"`
	Clarity      float64 `json:"clarity" yaml:"clarity"`
	RedChannel   float64 `json:"redChannel" yaml:"redChannel"`
	GreenChannel float64 `json:"greenChannel" yaml:"greenChannel"`
	BlueChannel  float64 `json:"blueChannel" yaml:"blueChannel"`
}

// Default returns the identity model: every knob at 0 except gamma at 1.
func Default() Model {
	return Model{Gamma: 1}
}

func (m *Model) ptr(f Field) *float64 {
	switch f {
	case Brightness:
		return &m.Brightness
	case Contrast:
		return &m.Contrast
	case Saturation:
		return &m.Saturation
	case Vibrance:
		return &m.Vibrance
	case Highlights:
		return &m.Highlights
	case Shadows:
		return &m.Shadows
	case Exposure:
		return &m.Exposure
	case Gamma:
		return &m.Gamma
	case Temperature:
		return &m.Temperature
	case Tint:
		return &m.Tint
	case Sharpen:
		return &m.Sharpen
	case Clarity:
		return &m.Clarity
	case RedChannel:
		return &m.RedChannel
	case GreenChannel:
		return &m.GreenChannel
	case BlueChannel:
		return &m.BlueChannel
	}
	return nil
}

// Get returns the value of f. Unknown fields read as 0.
func (m Model) Get(f Field) float64 {
	if p := m.ptr(f); p != nil {
		return *p
	}
	return 0
}

// Set clamps v into the range of f, stores it, and returns the stored value.
// Unknown fields are ignored and report false.
func (m *Model) Set(f Field, v float64) (float64, bool) {
	p := m.ptr(f)
	if p == nil {
		return 0, false
	}
	*p = ranges[f].Clamp(v)
	return *p, true
}

// Normalize clamps every field into range and returns the fields that had
// to be corrected.
func (m *Model) Normalize() []Field {
	var corrected []Field
	for _, f := range fieldOrder {
		p := m.ptr(f)
		v := ranges[f].Clamp(*p)
		if v != *p {
			corrected = append(corrected, f)
			*p = v
		}
	}
	return corrected
}

// Normalized returns a clamped copy of m.
func (m Model) Normalized() Model {
	m.Normalize()
	return m
}

// IsDefault reports whether f holds its default value in m.
func (m Model) IsDefault(f Field) bool {
	return m.Get(f) == ranges[f].Default
}

// Diff returns the fields of m that differ from the default model.
func (m Model) Diff() []Field {
	var out []Field
	for _, f := range fieldOrder {
		if !m.IsDefault(f) {
			out = append(out, f)
		}
	}
	return out
}

// IsIdentity reports whether every field is at its default.
func (m Model) IsIdentity() bool {
	return len(m.Diff()) == 0
}

// Map returns the model keyed by field name.
func (m Model) Map() map[Field]float64 {
	out := make(map[Field]float64, len(fieldOrder))
	for _, f := range fieldOrder {
		out[f] = m.Get(f)
	}
	return out
}

// FromMap builds a model starting from the default and applying values from
// values. Keys that name no field are returned as an error; values are
// clamped.
func FromMap(values map[string]float64) (Model, error) {
	m := Default()
	for k, v := range values {
		f, err := ParseField(k)
		if err != nil {
			return Default(), err
		}
		m.Set(f, v)
	}
	return m, nil
}
