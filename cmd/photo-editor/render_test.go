package main

import (
	"bytes"
	"context"
	"image"
	_ "image/jpeg"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestRenderCmd_Stdout(t *testing.T) {
	in := writeTestPNG(t, 60, 40)
	recipe := writeTestFile(t, "square.yaml", `
adjustments:
  brightness: 20
aspectRatio: "1:1"
`)

	stdout, _, err := runCmd(t, context.Background(),
		"render", "--in", in, "--recipe", recipe, "--out", "-", "--format", "jpeg")
	if err != nil {
		t.Fatalf("render failed: %v", err)
	}

	cfg, format, err := image.DecodeConfig(bytes.NewReader([]byte(stdout)))
	if err != nil {
		t.Fatalf("stdout is not an image: %v", err)
	}
	if format != "jpeg" {
		t.Errorf("format: got %s, want jpeg", format)
	}
	// 1:1 fits 80% of the 40 px height.
	if cfg.Width != 32 || cfg.Height != 32 {
		t.Errorf("size: got %dx%d, want 32x32", cfg.Width, cfg.Height)
	}
}

func TestRenderCmd_File(t *testing.T) {
	in := writeTestPNG(t, 60, 40)
	out := filepath.Join(t.TempDir(), "edit.jpg")

	_, stderr, err := runCmd(t, context.Background(),
		"render", "-i", in, "-o", out, "--format", "JPEG")
	if err != nil {
		t.Fatalf("render failed: %v", err)
	}

	data, err := os.ReadFile(out)
	if err != nil {
		t.Fatalf("output not written: %v", err)
	}
	cfg, format, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil || format != "jpeg" || cfg.Width != 60 || cfg.Height != 40 {
		t.Errorf("output: %dx%d %s err=%v", cfg.Width, cfg.Height, format, err)
	}
	if !strings.Contains(stderr, "60x40 jpeg") {
		t.Errorf("summary line missing from stderr: %q", stderr)
	}
}

func TestRenderCmd_Errors(t *testing.T) {
	in := writeTestPNG(t, 10, 10)
	badRecipe := writeTestFile(t, "bad.yaml", "preset: lomo\n")

	tests := []struct {
		name    string
		args    []string
		wantErr string
	}{
		{"missing in", []string{"render", "--out", "-"}, "in"},
		{"empty out", []string{"render", "--in", in, "--out", " "}, "must not be empty"},
		{"bad format", []string{"render", "--in", in, "--out", "-", "--format", "gif"}, "invalid configuration"},
		{"missing source", []string{"render", "--in", filepath.Join(t.TempDir(), "nope.png"), "--out", "-"}, "nope.png"},
		{"missing recipe", []string{"render", "--in", in, "--recipe", "nope.yaml", "--out", "-"}, "nope.yaml"},
		{"unknown preset", []string{"render", "--in", in, "--recipe", badRecipe, "--out", "-"}, "invalid recipe"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := runCmd(t, context.Background(), tt.args...)
			if err == nil {
				t.Fatal("expected an error")
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("error %q should mention %q", err, tt.wantErr)
			}
		})
	}
}
