package main

import (
	"context"
	"strings"
	"testing"

	"gopkg.in/yaml.v3"

	"github.com/ironsheep/photo-editor-mcp/internal/preset"
)

func TestPresetsCmd_Table(t *testing.T) {
	tests := []struct {
		name     string
		args     []string
		contains []string
		excludes []string
	}{
		{
			name:     "all",
			args:     []string{"presets"},
			contains: []string{"ID", "OVERRIDES", "bw-classic", "warm-golden"},
		},
		{
			name:     "one category",
			args:     []string{"presets", "--category", "B&W"},
			contains: []string{"bw-classic", "saturation=-100"},
			excludes: []string{"warm-golden"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, _, err := runCmd(t, context.Background(), tt.args...)
			if err != nil {
				t.Fatalf("presets failed: %v", err)
			}
			for _, s := range tt.contains {
				if !strings.Contains(out, s) {
					t.Errorf("output should contain %q:\n%s", s, out)
				}
			}
			for _, s := range tt.excludes {
				if strings.Contains(out, s) {
					t.Errorf("output should not contain %q", s)
				}
			}
		})
	}
}

func TestPresetsCmd_YAML(t *testing.T) {
	out, _, err := runCmd(t, context.Background(), "presets", "--yaml")
	if err != nil {
		t.Fatalf("presets --yaml failed: %v", err)
	}

	var list []preset.Preset
	if err := yaml.Unmarshal([]byte(out), &list); err != nil {
		t.Fatalf("output is not YAML: %v", err)
	}
	if len(list) != len(preset.All()) {
		t.Errorf("got %d presets, want %d", len(list), len(preset.All()))
	}
}

func TestPresetsCmd_UnknownCategory(t *testing.T) {
	_, _, err := runCmd(t, context.Background(), "presets", "--category", "vivid")
	if err == nil || !strings.Contains(err.Error(), "unknown category") {
		t.Errorf("expected unknown category error, got %v", err)
	}
}

func TestFormatOverrides(t *testing.T) {
	got := formatOverrides(preset.Overrides{"saturation": -100, "contrast": 15})
	if got != "contrast=15 saturation=-100" {
		t.Errorf("formatOverrides = %q", got)
	}
	if got := formatOverrides(nil); got != "" {
		t.Errorf("empty overrides = %q", got)
	}
}
