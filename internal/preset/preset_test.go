package preset

import (
	"errors"
	"strings"
	"testing"

	"github.com/ironsheep/photo-editor-mcp/internal/adjust"
)

func TestCatalog(t *testing.T) {
	all := All()
	if len(all) != 30 {
		t.Fatalf("got %d presets, want 30", len(all))
	}

	seen := map[string]bool{}
	for _, p := range all {
		if seen[p.ID] {
			t.Errorf("duplicate id %s", p.ID)
		}
		seen[p.ID] = true

		if _, ok := ParseCategory(string(p.Category)); !ok {
			t.Errorf("%s: unknown category %q", p.ID, p.Category)
		}
		for f, v := range p.Overrides {
			r, ok := adjust.RangeOf(f)
			if !ok {
				t.Errorf("%s: unknown field %s", p.ID, f)
				continue
			}
			if v < r.Min || v > r.Max {
				t.Errorf("%s: %s=%v out of range", p.ID, f, v)
			}
		}
	}

	for _, c := range Categories() {
		if n := len(ByCategory(c)); n != 5 {
			t.Errorf("category %s: got %d presets, want 5", c, n)
		}
	}
	if len(Grouped()) != 6 {
		t.Errorf("Grouped: got %d categories", len(Grouped()))
	}
}

func TestByID(t *testing.T) {
	p, err := ByID("bw-classic")
	if err != nil {
		t.Fatalf("ByID failed: %v", err)
	}
	if p.Name != "Classic" || p.Category != BW || p.Overrides[adjust.Saturation] != -100 {
		t.Errorf("unexpected preset %+v", p)
	}

	_, err = ByID("instagram-valencia")
	if !errors.Is(err, ErrUnknownPreset) {
		t.Errorf("expected ErrUnknownPreset, got %v", err)
	}
}

func TestCatalogIsImmutable(t *testing.T) {
	p, _ := ByID("vivid-punch")
	p.Overrides[adjust.Contrast] = -100
	p.Name = "Changed"

	again, _ := ByID("vivid-punch")
	if again.Overrides[adjust.Contrast] != 25 || again.Name != "Punch" {
		t.Errorf("catalog entry was mutated: %+v", again)
	}
}

func TestBlend_Boundaries(t *testing.T) {
	for _, p := range All() {
		t.Run(p.ID, func(t *testing.T) {
			zero := Blend(adjust.Default(), p.Overrides, 0)
			if zero != adjust.Default() {
				t.Errorf("intensity 0: got %+v", zero)
			}

			full := Blend(adjust.Default(), p.Overrides, 100)
			want := adjust.Default()
			for f, v := range p.Overrides {
				want.Set(f, v)
			}
			if full != want {
				t.Errorf("intensity 100: got %+v, want %+v", full, want)
			}
		})
	}
}

func TestBlend_Intermediate(t *testing.T) {
	o := Overrides{adjust.Contrast: 40, adjust.Gamma: 3}

	tests := []struct {
		intensity    float64
		wantContrast float64
		wantGamma    float64
	}{
		{50, 20, 2},
		{25, 10, 1.5},
		{-10, 0, 1},
		{250, 40, 3},
	}
	for _, tt := range tests {
		got := Blend(adjust.Default(), o, tt.intensity)
		if got.Contrast != tt.wantContrast || got.Gamma != tt.wantGamma {
			t.Errorf("intensity %v: contrast=%v gamma=%v, want %v %v",
				tt.intensity, got.Contrast, got.Gamma, tt.wantContrast, tt.wantGamma)
		}
		if got.Brightness != 0 {
			t.Errorf("absent field moved: %v", got.Brightness)
		}
	}
}

func TestMerge_UserWins(t *testing.T) {
	p, _ := ByID("warm-sunset")
	derived := Blend(adjust.Default(), p.Overrides, 100)

	user := adjust.Default()
	user.Set(adjust.Temperature, -10)
	user.Set(adjust.Exposure, 20)

	got := Merge(derived, user)
	if got.Temperature != -10 {
		t.Errorf("user temperature should win, got %v", got.Temperature)
	}
	if got.Exposure != 20 {
		t.Errorf("user-only field should apply, got %v", got.Exposure)
	}
	if got.Tint != 20 || got.RedChannel != 15 {
		t.Errorf("preset fields should remain, got tint=%v red=%v", got.Tint, got.RedChannel)
	}
}

func TestEffective(t *testing.T) {
	user := adjust.Default()
	user.Set(adjust.Contrast, 5)

	if got := Effective(user, Selection{}); got != user {
		t.Errorf("no selection: got %+v", got)
	}

	sel := Selection{ID: "bw-classic", Intensity: 50}
	got := Effective(user, sel)
	if got.Saturation != -50 {
		t.Errorf("saturation: got %v, want -50", got.Saturation)
	}
	if got.Brightness != 2.5 {
		t.Errorf("brightness: got %v, want 2.5", got.Brightness)
	}
	if got.Contrast != 5 {
		t.Errorf("manual contrast should override preset: got %v", got.Contrast)
	}
}

func TestSelection_Toggle(t *testing.T) {
	var sel Selection

	sel, err := sel.Toggle("cool-ice")
	if err != nil {
		t.Fatal(err)
	}
	if sel.ID != "cool-ice" || sel.Intensity != 100 {
		t.Errorf("select: got %+v", sel)
	}

	sel = sel.WithIntensity(30)
	sel, _ = sel.Toggle("matte-soft")
	if sel.ID != "matte-soft" || sel.Intensity != 100 {
		t.Errorf("switch should reset intensity: got %+v", sel)
	}

	sel, _ = sel.Toggle("matte-soft")
	if sel.Active() {
		t.Errorf("same id should clear: got %+v", sel)
	}

	kept := Selection{ID: "vivid-pop", Intensity: 40}
	got, err := kept.Toggle("nope")
	if !errors.Is(err, ErrUnknownPreset) || got != kept {
		t.Errorf("unknown id: got %+v, %v", got, err)
	}

	if (Selection{}).WithIntensity(50).Active() {
		t.Error("intensity on empty selection should not select")
	}
	if got := (Selection{ID: "vivid-pop"}).WithIntensity(120).Intensity; got != 100 {
		t.Errorf("intensity clamp: got %v", got)
	}
}

func TestSwatch(t *testing.T) {
	tests := []struct {
		id   string
		from string
		to   string
	}{
		{"bw-classic", "#888888", "#444444"},
		{"warm-sunset", "#f5a623", "#d35400"},
		{"cool-frost", "#3498db", "#2c3e50"},
		{"vivid-vibrant", "#e91e63", "#9c27b0"},
		{"matte-faded", "#607d8b", "#455a64"},
		{"cine-teal-orange", "#607d8b", "#455a64"},
	}
	for _, tt := range tests {
		p, err := ByID(tt.id)
		if err != nil {
			t.Fatal(err)
		}
		s := p.Swatch()
		if s.From != tt.from || s.To != tt.to {
			t.Errorf("%s: got %s..%s, want %s..%s", tt.id, s.From, s.To, tt.from, tt.to)
		}
		if !strings.HasPrefix(s.Mid, "#") || len(s.Mid) != 7 {
			t.Errorf("%s: bad midpoint %q", tt.id, s.Mid)
		}
	}
}
