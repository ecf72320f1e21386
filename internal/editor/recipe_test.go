package editor

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/ironsheep/photo-editor-mcp/internal/adjust"
	"github.com/ironsheep/photo-editor-mcp/internal/crop"
	"github.com/ironsheep/photo-editor-mcp/internal/preset"
)

const sampleRecipe = `
adjustments:
  contrast: 25
  sharpen: 40
  gamma: 9
preset: warm-sunset
presetIntensity: 60
aspectRatio: "16:9"
crop:
  x: 5
  y: 10
  width: 50
  height: 40
quarterTurns: 1
fineRotation: -8
flipVertical: true
`

func TestParseRecipe(t *testing.T) {
	r, err := ParseRecipe([]byte(sampleRecipe))
	if err != nil {
		t.Fatalf("ParseRecipe failed: %v", err)
	}
	if r.Adjustments["contrast"] != 25 || r.Preset != "warm-sunset" || *r.PresetIntensity != 60 {
		t.Errorf("unexpected recipe %+v", r)
	}
	if r.Crop == nil || r.Crop.Width != 50 || r.QuarterTurns != 1 || !r.FlipVertical {
		t.Errorf("unexpected geometry %+v %+v", r, r.Crop)
	}

	json := `{"adjustments": {"exposure": 10}, "preset": "cool-ice"}`
	r, err = ParseRecipe([]byte(json))
	if err != nil {
		t.Fatalf("JSON recipe: %v", err)
	}
	if r.Adjustments["exposure"] != 10 || r.Preset != "cool-ice" {
		t.Errorf("unexpected JSON recipe %+v", r)
	}

	if _, err := ParseRecipe([]byte("adjustments: [1, 2")); err == nil {
		t.Error("expected a parse error")
	}
}

func TestApplyRecipe(t *testing.T) {
	s := newLoadedSession(t, 1600, 900)
	r, _ := ParseRecipe([]byte(sampleRecipe))

	if err := s.ApplyRecipe(r); err != nil {
		t.Fatalf("ApplyRecipe failed: %v", err)
	}

	user := s.Adjustments()
	if user.Contrast != 25 || user.Sharpen != 40 || user.Gamma != 5 {
		t.Errorf("adjustments: %+v", user)
	}
	st, _ := s.State()
	if st.Preset.ID != "warm-sunset" || st.Preset.Intensity != 60 || st.AspectRatio != "16:9" {
		t.Errorf("state: %+v", st)
	}

	want := crop.Box{X: 5, Y: 10, Width: 50, Height: 40, QuarterTurns: 1, FineRotation: -8, FlipVertical: true}
	if got := s.CropBox(); got != want {
		t.Errorf("crop: got %+v, want %+v", got, want)
	}
}

func TestApplyRecipe_ReplacesState(t *testing.T) {
	s := newLoadedSession(t, 100, 100)
	s.SetAdjustment(adjust.Exposure, 30)
	s.SelectPreset("matte-soft")
	s.FlipHorizontal()

	if err := s.ApplyRecipe(&Recipe{Adjustments: map[string]float64{"tint": 12}}); err != nil {
		t.Fatal(err)
	}
	user := s.Adjustments()
	if user.Exposure != 0 || user.Tint != 12 {
		t.Errorf("recipe should replace adjustments: %+v", user)
	}
	if s.Effective() != user {
		t.Error("recipe without a preset should clear the selection")
	}
	if got := s.CropBox(); got != crop.DefaultBox() {
		t.Errorf("recipe without geometry should reset the crop: %+v", got)
	}
}

func TestApplyRecipe_Invalid(t *testing.T) {
	tests := []struct {
		name   string
		recipe Recipe
		want   error
	}{
		{"unknown field", Recipe{Adjustments: map[string]float64{"hue": 1}}, adjust.ErrUnknownField},
		{"unknown preset", Recipe{Preset: "lomo"}, preset.ErrUnknownPreset},
		{"unknown ratio", Recipe{AspectRatio: "5:4"}, crop.ErrUnknownAspectRatio},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newLoadedSession(t, 40, 40)
			s.SetAdjustment(adjust.Clarity, 15)
			before, _ := s.Recipe()

			err := s.ApplyRecipe(&tt.recipe)
			if !errors.Is(err, tt.want) {
				t.Fatalf("expected %v, got %v", tt.want, err)
			}
			after, _ := s.Recipe()
			if after.Adjustments["clarity"] != before.Adjustments["clarity"] || after.Preset != before.Preset {
				t.Errorf("state changed on a rejected recipe: %+v", after)
			}
		})
	}
}

func TestRecipe_RoundTrip(t *testing.T) {
	src := newLoadedSession(t, 1200, 800)
	src.SetAdjustment(adjust.Highlights, -30)
	src.SetAdjustment(adjust.BlueChannel, 12)
	src.SelectPreset("cine-moody")
	src.SetPresetIntensity(45)
	src.SelectAspectRatio("4:3")
	src.RotateQuarter(2)
	src.SetFineRotation(3.5)
	src.FlipHorizontal()

	r, err := src.Recipe()
	if err != nil {
		t.Fatal(err)
	}
	data, err := r.Marshal()
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}
	path := filepath.Join(t.TempDir(), "edit.yaml")
	if err := os.WriteFile(path, data, 0o600); err != nil {
		t.Fatal(err)
	}
	loaded, err := LoadRecipe(path)
	if err != nil {
		t.Fatalf("LoadRecipe failed: %v", err)
	}

	dst := newLoadedSession(t, 1200, 800)
	if err := dst.ApplyRecipe(loaded); err != nil {
		t.Fatal(err)
	}
	if dst.Effective() != src.Effective() {
		t.Errorf("effective adjustments differ:\n%+v\n%+v", dst.Effective(), src.Effective())
	}
	if dst.CropBox() != src.CropBox() {
		t.Errorf("crop differs:\n%+v\n%+v", dst.CropBox(), src.CropBox())
	}
}

func TestLoadRecipe_Missing(t *testing.T) {
	if _, err := LoadRecipe(filepath.Join(t.TempDir(), "nope.yaml")); !errors.Is(err, os.ErrNotExist) {
		t.Errorf("expected os.ErrNotExist, got %v", err)
	}
}
