// Package preset holds the fixed catalog of named looks and the rules that
// blend a look into the user's adjustments.
package preset

import (
	"errors"
	"fmt"

	"github.com/ironsheep/photo-editor-mcp/internal/adjust"
)

// ErrUnknownPreset is returned for ids that are not in the catalog.
var ErrUnknownPreset = errors.New("unknown preset")

// Category groups presets in the picker.
type Category string

const (
	Vivid     Category = "Vivid"
	Warm      Category = "Warm"
	Cool      Category = "Cool"
	BW        Category = "B&W"
	Cinematic Category = "Cinematic"
	Matte     Category = "Matte"
)

var categories = []Category{Vivid, Warm, Cool, BW, Cinematic, Matte}

// Overrides is a partial adjustment model.
type Overrides map[adjust.Field]float64

func (o Overrides) clone() Overrides {
	out := make(Overrides, len(o))
	for k, v := range o {
		out[k] = v
	}
	return out
}

// Preset is a named look.
type Preset struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Category  Category  `json:"category"`
	Overrides Overrides `json:"overrides"`
}

func (p Preset) clone() Preset {
	p.Overrides = p.Overrides.clone()
	return p
}

var catalog = []Preset{
	{ID: "vivid-punch", Name: "Punch", Category: Vivid, Overrides: Overrides{
		adjust.Contrast: 25, adjust.Saturation: 30, adjust.Vibrance: 20, adjust.Clarity: 15,
	}},
	{ID: "vivid-pop", Name: "Pop", Category: Vivid, Overrides: Overrides{
		adjust.Brightness: 5, adjust.Contrast: 20, adjust.Saturation: 40, adjust.Vibrance: 25, adjust.Highlights: 10,
	}},
	{ID: "vivid-vibrant", Name: "Vibrant", Category: Vivid, Overrides: Overrides{
		adjust.Saturation: 50, adjust.Vibrance: 35, adjust.Contrast: 15, adjust.Clarity: 10,
	}},
	{ID: "vivid-saturate", Name: "Saturate", Category: Vivid, Overrides: Overrides{
		adjust.Saturation: 60, adjust.Vibrance: 20, adjust.Contrast: 10,
	}},
	{ID: "vivid-bold", Name: "Bold", Category: Vivid, Overrides: Overrides{
		adjust.Contrast: 35, adjust.Saturation: 25, adjust.Shadows: -15, adjust.Highlights: 15, adjust.Clarity: 20,
	}},

	{ID: "warm-golden", Name: "Golden", Category: Warm, Overrides: Overrides{
		adjust.Temperature: 40, adjust.Tint: 10, adjust.Saturation: 15, adjust.Highlights: 10, adjust.Shadows: 5,
	}},
	{ID: "warm-sunset", Name: "Sunset", Category: Warm, Overrides: Overrides{
		adjust.Temperature: 55, adjust.Tint: 20, adjust.Saturation: 20, adjust.Contrast: 10, adjust.RedChannel: 15,
	}},
	{ID: "warm-amber", Name: "Amber", Category: Warm, Overrides: Overrides{
		adjust.Temperature: 45, adjust.Tint: 5, adjust.Saturation: 10, adjust.Contrast: 5, adjust.RedChannel: 10,
	}},
	{ID: "warm-toast", Name: "Toast", Category: Warm, Overrides: Overrides{
		adjust.Temperature: 30, adjust.Contrast: 15, adjust.Saturation: -10, adjust.Shadows: 10, adjust.RedChannel: 8,
	}},
	{ID: "warm-honey", Name: "Honey", Category: Warm, Overrides: Overrides{
		adjust.Temperature: 35, adjust.Tint: 15, adjust.Saturation: 25, adjust.Brightness: 5, adjust.Vibrance: 15,
	}},

	{ID: "cool-arctic", Name: "Arctic", Category: Cool, Overrides: Overrides{
		adjust.Temperature: -40, adjust.Tint: -10, adjust.Saturation: 10, adjust.Contrast: 15, adjust.BlueChannel: 15,
	}},
	{ID: "cool-ocean", Name: "Ocean", Category: Cool, Overrides: Overrides{
		adjust.Temperature: -35, adjust.Tint: 5, adjust.Saturation: 20, adjust.Vibrance: 15, adjust.BlueChannel: 20, adjust.GreenChannel: 5,
	}},
	{ID: "cool-frost", Name: "Frost", Category: Cool, Overrides: Overrides{
		adjust.Temperature: -50, adjust.Brightness: 10, adjust.Contrast: 10, adjust.Saturation: -15, adjust.BlueChannel: 25,
	}},
	{ID: "cool-ice", Name: "Ice", Category: Cool, Overrides: Overrides{
		adjust.Temperature: -45, adjust.Contrast: 20, adjust.Highlights: 20, adjust.Saturation: -20, adjust.BlueChannel: 20,
	}},
	{ID: "cool-steel", Name: "Steel", Category: Cool, Overrides: Overrides{
		adjust.Temperature: -25, adjust.Saturation: -30, adjust.Contrast: 25, adjust.Clarity: 15, adjust.BlueChannel: 10,
	}},

	{ID: "bw-classic", Name: "Classic", Category: BW, Overrides: Overrides{
		adjust.Saturation: -100, adjust.Contrast: 15, adjust.Brightness: 5,
	}},
	{ID: "bw-high-contrast", Name: "High Contrast", Category: BW, Overrides: Overrides{
		adjust.Saturation: -100, adjust.Contrast: 50, adjust.Shadows: -20, adjust.Highlights: 20,
	}},
	{ID: "bw-film-noir", Name: "Film Noir", Category: BW, Overrides: Overrides{
		adjust.Saturation: -100, adjust.Contrast: 40, adjust.Shadows: -30, adjust.Highlights: 10, adjust.Clarity: 20,
	}},
	{ID: "bw-silvertone", Name: "Silvertone", Category: BW, Overrides: Overrides{
		adjust.Saturation: -100, adjust.Contrast: 10, adjust.Brightness: 10, adjust.Highlights: 15, adjust.Shadows: 15,
	}},
	{ID: "bw-dramatic", Name: "Dramatic", Category: BW, Overrides: Overrides{
		adjust.Saturation: -100, adjust.Contrast: 60, adjust.Clarity: 30, adjust.Shadows: -25, adjust.Highlights: 25,
	}},

	{ID: "cine-teal-orange", Name: "Teal & Orange", Category: Cinematic, Overrides: Overrides{
		adjust.Temperature: 20, adjust.Tint: -15, adjust.Saturation: 15, adjust.Contrast: 20, adjust.Shadows: -10,
		adjust.BlueChannel: 15, adjust.RedChannel: 10,
	}},
	{ID: "cine-blockbuster", Name: "Blockbuster", Category: Cinematic, Overrides: Overrides{
		adjust.Contrast: 30, adjust.Saturation: -10, adjust.Temperature: 10, adjust.Shadows: -20, adjust.Highlights: -10,
		adjust.Clarity: 15,
	}},
	{ID: "cine-vintage-film", Name: "Vintage Film", Category: Cinematic, Overrides: Overrides{
		adjust.Temperature: 15, adjust.Saturation: -20, adjust.Contrast: 20, adjust.RedChannel: 10, adjust.GreenChannel: -5,
		adjust.BlueChannel: -10, adjust.Shadows: 15,
	}},
	{ID: "cine-desaturated", Name: "Desaturated", Category: Cinematic, Overrides: Overrides{
		adjust.Saturation: -40, adjust.Contrast: 25, adjust.Clarity: 10, adjust.Temperature: 5,
	}},
	{ID: "cine-moody", Name: "Moody", Category: Cinematic, Overrides: Overrides{
		adjust.Contrast: 20, adjust.Saturation: -15, adjust.Shadows: -25, adjust.Highlights: -15, adjust.Temperature: -10,
		adjust.Clarity: 15, adjust.BlueChannel: 10,
	}},

	{ID: "matte-faded", Name: "Faded", Category: Matte, Overrides: Overrides{
		adjust.Contrast: -15, adjust.Shadows: 30, adjust.Highlights: -10, adjust.Saturation: -15,
	}},
	{ID: "matte-haze", Name: "Haze", Category: Matte, Overrides: Overrides{
		adjust.Contrast: -20, adjust.Brightness: 10, adjust.Shadows: 40, adjust.Saturation: -20, adjust.Clarity: -10,
	}},
	{ID: "matte-soft", Name: "Soft", Category: Matte, Overrides: Overrides{
		adjust.Contrast: -10, adjust.Shadows: 25, adjust.Highlights: -5, adjust.Saturation: -10, adjust.Clarity: -15,
	}},
	{ID: "matte-dusty", Name: "Dusty", Category: Matte, Overrides: Overrides{
		adjust.Contrast: -15, adjust.Shadows: 35, adjust.Saturation: -25, adjust.Temperature: 10, adjust.RedChannel: 5,
	}},
	{ID: "matte-cream", Name: "Cream", Category: Matte, Overrides: Overrides{
		adjust.Contrast: -10, adjust.Shadows: 30, adjust.Temperature: 20, adjust.Saturation: -15, adjust.Highlights: 5,
		adjust.Brightness: 5,
	}},
}

var byID = func() map[string]int {
	idx := make(map[string]int, len(catalog))
	for i, p := range catalog {
		idx[p.ID] = i
	}
	return idx
}()

// Categories returns the categories in picker order.
func Categories() []Category {
	out := make([]Category, len(categories))
	copy(out, categories)
	return out
}

// ParseCategory matches a category name case-sensitively.
func ParseCategory(s string) (Category, bool) {
	for _, c := range categories {
		if string(c) == s {
			return c, true
		}
	}
	return "", false
}

// All returns every preset in catalog order.
func All() []Preset {
	out := make([]Preset, len(catalog))
	for i, p := range catalog {
		out[i] = p.clone()
	}
	return out
}

// ByID returns the preset with the given id.
func ByID(id string) (Preset, error) {
	i, ok := byID[id]
	if !ok {
		return Preset{}, fmt.Errorf("%w: %q", ErrUnknownPreset, id)
	}
	return catalog[i].clone(), nil
}

// ByCategory returns the presets of c in catalog order.
func ByCategory(c Category) []Preset {
	var out []Preset
	for _, p := range catalog {
		if p.Category == c {
			out = append(out, p.clone())
		}
	}
	return out
}

// Grouped returns every category mapped to its presets.
func Grouped() map[Category][]Preset {
	out := make(map[Category][]Preset, len(categories))
	for _, c := range categories {
		out[c] = ByCategory(c)
	}
	return out
}
