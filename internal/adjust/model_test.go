package adjust

import (
	"errors"
	"math"
	"testing"
)

func TestDefault(t *testing.T) {
	m := Default()
	if m.Gamma != 1 {
		t.Errorf("Gamma: got %v, want 1", m.Gamma)
	}
	if !m.IsIdentity() {
		t.Errorf("default model should be identity, diff=%v", m.Diff())
	}
	for _, f := range Fields() {
		r, ok := RangeOf(f)
		if !ok {
			t.Fatalf("missing range for %s", f)
		}
		if m.Get(f) != r.Default {
			t.Errorf("%s: got %v, want default %v", f, m.Get(f), r.Default)
		}
	}
}

func TestSet_Clamps(t *testing.T) {
	tests := []struct {
		name  string
		field Field
		in    float64
		want  float64
	}{
		{"brightness in range", Brightness, 42, 42},
		{"brightness too high", Brightness, 150, 100},
		{"brightness too low", Brightness, -101, -100},
		{"gamma too low", Gamma, 0, 0.2},
		{"gamma too high", Gamma, 9, 5},
		{"sharpen negative", Sharpen, -5, 0},
		{"blue channel", BlueChannel, 100, 100},
		{"nan uses default", Gamma, math.NaN(), 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := Default()
			got, ok := m.Set(tt.field, tt.in)
			if !ok {
				t.Fatalf("Set(%s) reported unknown field", tt.field)
			}
			if got != tt.want {
				t.Errorf("Set returned %v, want %v", got, tt.want)
			}
			if m.Get(tt.field) != tt.want {
				t.Errorf("stored %v, want %v", m.Get(tt.field), tt.want)
			}
		})
	}
}

func TestSet_UnknownField(t *testing.T) {
	m := Default()
	if _, ok := m.Set(Field("grain"), 10); ok {
		t.Error("Set should reject unknown field")
	}
}

func TestNormalize(t *testing.T) {
	m := Model{Brightness: 300, Gamma: 0.01, Sharpen: 50, Tint: -400}
	corrected := m.Normalize()

	if len(corrected) != 3 {
		t.Errorf("corrected: got %v, want 3 fields", corrected)
	}
	if m.Brightness != 100 || m.Gamma != 0.2 || m.Tint != -100 {
		t.Errorf("normalized model out of range: %+v", m)
	}
	if m.Sharpen != 50 {
		t.Errorf("in-range field changed: %v", m.Sharpen)
	}
}

func TestParseField(t *testing.T) {
	f, err := ParseField("redChannel")
	if err != nil {
		t.Fatalf("ParseField failed: %v", err)
	}
	if f != RedChannel {
		t.Errorf("got %s, want redChannel", f)
	}

	_, err = ParseField("hue")
	if !errors.Is(err, ErrUnknownField) {
		t.Errorf("expected ErrUnknownField, got %v", err)
	}
}

func TestFromMap(t *testing.T) {
	m, err := FromMap(map[string]float64{"contrast": 25, "gamma": 10})
	if err != nil {
		t.Fatalf("FromMap failed: %v", err)
	}
	if m.Contrast != 25 {
		t.Errorf("contrast: got %v, want 25", m.Contrast)
	}
	if m.Gamma != 5 {
		t.Errorf("gamma: got %v, want clamped 5", m.Gamma)
	}

	if _, err := FromMap(map[string]float64{"nope": 1}); err == nil {
		t.Error("FromMap should fail for unknown key")
	}
}

func TestDiff(t *testing.T) {
	m := Default()
	m.Set(Saturation, -20)
	m.Set(Gamma, 1.5)

	diff := m.Diff()
	if len(diff) != 2 {
		t.Fatalf("diff: got %v, want 2 entries", diff)
	}
	// pipeline order: gamma comes before saturation
	if diff[0] != Gamma || diff[1] != Saturation {
		t.Errorf("diff order: got %v", diff)
	}
}
