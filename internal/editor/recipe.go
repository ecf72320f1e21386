package editor

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/ironsheep/photo-editor-mcp/internal/adjust"
	"github.com/ironsheep/photo-editor-mcp/internal/crop"
	"github.com/ironsheep/photo-editor-mcp/internal/preset"
)

// Recipe is a replayable description of an edit. Every field is absolute:
// applying a recipe replaces the session's adjustments, preset, crop,
// rotation and flips.
type Recipe struct {
	Adjustments     map[string]float64 `yaml:"adjustments,omitempty" json:"adjustments,omitempty"`
	Preset          string             `yaml:"preset,omitempty" json:"preset,omitempty"`
	PresetIntensity *float64           `yaml:"presetIntensity,omitempty" json:"preset_intensity,omitempty"`
	AspectRatio     string             `yaml:"aspectRatio,omitempty" json:"aspect_ratio,omitempty"`
	Crop            *CropRect          `yaml:"crop,omitempty" json:"crop,omitempty"`
	QuarterTurns    int                `yaml:"quarterTurns,omitempty" json:"quarter_turns,omitempty"`
	FineRotation    float64            `yaml:"fineRotation,omitempty" json:"fine_rotation,omitempty"`
	FlipHorizontal  bool               `yaml:"flipHorizontal,omitempty" json:"flip_horizontal,omitempty"`
	FlipVertical    bool               `yaml:"flipVertical,omitempty" json:"flip_vertical,omitempty"`
}

// CropRect is the crop rectangle in percent of the source.
type CropRect struct {
	X      float64 `yaml:"x" json:"x"`
	Y      float64 `yaml:"y" json:"y"`
	Width  float64 `yaml:"width" json:"width"`
	Height float64 `yaml:"height" json:"height"`
}

// ParseRecipe decodes a YAML or JSON recipe.
func ParseRecipe(data []byte) (*Recipe, error) {
	var r Recipe
	if err := yaml.Unmarshal(data, &r); err != nil {
		return nil, fmt.Errorf("failed to parse recipe: %w", err)
	}
	return &r, nil
}

// LoadRecipe reads a recipe file.
func LoadRecipe(path string) (*Recipe, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read recipe file %s: %w", path, err)
	}
	r, err := ParseRecipe(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return r, nil
}

// Marshal encodes the recipe as YAML.
func (r *Recipe) Marshal() ([]byte, error) {
	return yaml.Marshal(r)
}

// ApplyRecipe replaces the session's edit state with r. Nothing changes
// when r names an unknown field, preset or aspect ratio.
//
// Apply recipes after Load: loading refits a locked aspect ratio to the
// source, replacing the recipe's crop rectangle.
func (s *Session) ApplyRecipe(r *Recipe) error {
	user, err := adjust.FromMap(r.Adjustments)
	if err != nil {
		return err
	}

	var sel preset.Selection
	if r.Preset != "" {
		if _, err := preset.ByID(r.Preset); err != nil {
			return err
		}
		sel = preset.Selection{ID: r.Preset, Intensity: preset.MaxIntensity}
		if r.PresetIntensity != nil {
			sel = sel.WithIntensity(*r.PresetIntensity)
		}
	}

	ratio := crop.Free.Name
	if r.AspectRatio != "" {
		if _, err := crop.LookupAspectRatio(r.AspectRatio); err != nil {
			return err
		}
		ratio = r.AspectRatio
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrClosed
	}

	s.user = user
	s.selected = sel

	s.crop.Reset()
	if err := s.crop.SelectAspectRatio(ratio); err != nil {
		return err
	}
	box := s.crop.Box()
	if r.Crop != nil {
		box.X, box.Y, box.Width, box.Height = r.Crop.X, r.Crop.Y, r.Crop.Width, r.Crop.Height
	}
	box.QuarterTurns = r.QuarterTurns
	box.FineRotation = r.FineRotation
	box.FlipHorizontal = r.FlipHorizontal
	box.FlipVertical = r.FlipVertical
	s.crop.SetBox(box)

	s.submitLocked()
	return nil
}

// Recipe captures the session's current edit state.
func (s *Session) Recipe() (*Recipe, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil, ErrClosed
	}

	r := &Recipe{}
	if diff := s.user.Diff(); len(diff) > 0 {
		r.Adjustments = make(map[string]float64, len(diff))
		for _, f := range diff {
			r.Adjustments[string(f)] = s.user.Get(f)
		}
	}
	if s.selected.Active() {
		r.Preset = s.selected.ID
		intensity := s.selected.Intensity
		r.PresetIntensity = &intensity
	}
	if ratio := s.crop.AspectRatio(); ratio.Locked() {
		r.AspectRatio = ratio.Name
	}
	box := s.crop.Box()
	if !box.SameRect(crop.DefaultBox()) {
		r.Crop = &CropRect{X: box.X, Y: box.Y, Width: box.Width, Height: box.Height}
	}
	r.QuarterTurns = box.QuarterTurns
	r.FineRotation = box.FineRotation
	r.FlipHorizontal = box.FlipHorizontal
	r.FlipVertical = box.FlipVertical
	return r, nil
}
