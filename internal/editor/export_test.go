package editor

import (
	"bytes"
	"context"
	"errors"
	"image"
	_ "image/jpeg"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/ironsheep/photo-editor-mcp/internal/adjust"
	"github.com/ironsheep/photo-editor-mcp/internal/config"
	"github.com/ironsheep/photo-editor-mcp/internal/imaging"
)

// metricValue returns the counter or gauge value of the first sample of
// name whose labels include labels.
func metricValue(t *testing.T, m *Metrics, name string, labels map[string]string) float64 {
	t.Helper()
	families, err := m.Registry().Gather()
	if err != nil {
		t.Fatalf("gather failed: %v", err)
	}
	for _, mf := range families {
		if mf.GetName() != name {
			continue
		}
	samples:
		for _, sample := range mf.GetMetric() {
			got := map[string]string{}
			for _, lp := range sample.GetLabel() {
				got[lp.GetName()] = lp.GetValue()
			}
			for k, v := range labels {
				if got[k] != v {
					continue samples
				}
			}
			if c := sample.GetCounter(); c != nil {
				return c.GetValue()
			}
			if g := sample.GetGauge(); g != nil {
				return g.GetValue()
			}
		}
	}
	return 0
}

func decodeConfig(t *testing.T, data []byte) (image.Config, string) {
	t.Helper()
	cfg, format, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("exported data does not decode: %v", err)
	}
	return cfg, format
}

func TestExport_BoundsLargeSource(t *testing.T) {
	m := NewMetrics()
	s := newLoadedSession(t, 4000, 3000, WithMetrics(m))

	blob, err := s.Export(context.Background())
	if err != nil {
		t.Fatalf("Export failed: %v", err)
	}
	if blob.Width != 1920 || blob.Height != 1440 {
		t.Errorf("export size: got %dx%d, want 1920x1440", blob.Width, blob.Height)
	}

	wantFormat := imaging.FormatWebP
	if !imaging.WebPAvailable() {
		wantFormat = imaging.FormatJPEG
	}
	if blob.Format != wantFormat || blob.MIMEType != wantFormat.MIMEType() {
		t.Errorf("format: got %s (%s), want %s", blob.Format, blob.MIMEType, wantFormat)
	}
	if blob.FellBack != !imaging.WebPAvailable() {
		t.Errorf("FellBack = %v with WebP available = %v", blob.FellBack, imaging.WebPAvailable())
	}
	if blob.SourceRef != "test.png" {
		t.Errorf("source ref: got %q", blob.SourceRef)
	}

	cfg, _ := decodeConfig(t, blob.Data)
	if cfg.Width != 1920 || cfg.Height != 1440 {
		t.Errorf("encoded size: got %dx%d", cfg.Width, cfg.Height)
	}

	if got := metricValue(t, m, "photo_editor_exports_total", map[string]string{"format": string(wantFormat), "status": "ok"}); got != 1 {
		t.Errorf("exports_total: got %v", got)
	}
	wantFallbacks := 0.0
	if !imaging.WebPAvailable() {
		wantFallbacks = 1
	}
	if got := metricValue(t, m, "photo_editor_encode_fallbacks_total", nil); got != wantFallbacks {
		t.Errorf("encode_fallbacks_total: got %v, want %v", got, wantFallbacks)
	}
}

func TestExport_CropAndRotate(t *testing.T) {
	cfg := config.Default()
	cfg.Export.Format = "jpeg"
	s := newLoadedSession(t, 200, 100, WithConfig(cfg))

	if err := s.SelectAspectRatio("1:1"); err != nil {
		t.Fatal(err)
	}
	s.RotateQuarter(1)
	s.FlipHorizontal()

	blob, err := s.Export(context.Background())
	if err != nil {
		t.Fatalf("Export failed: %v", err)
	}
	if blob.Width != 80 || blob.Height != 80 {
		t.Errorf("export size: got %dx%d, want 80x80", blob.Width, blob.Height)
	}
	if blob.Format != imaging.FormatJPEG || blob.FellBack {
		t.Errorf("jpeg export should not fall back: %+v", blob)
	}
	if _, format := decodeConfig(t, blob.Data); format != "jpeg" {
		t.Errorf("decoded format %q", format)
	}
}

func TestExport_DoesNotTouchOriginal(t *testing.T) {
	s := newLoadedSession(t, 32, 32)
	s.SetAdjustment(adjust.Brightness, 50)
	if _, err := s.Export(context.Background()); err != nil {
		t.Fatal(err)
	}

	s.SetAdjustment(adjust.Brightness, 0)
	f, err := s.Preview(context.Background(), false)
	if err != nil {
		t.Fatal(err)
	}
	if got := f.Image.NRGBAAt(0, 0); got != midGray {
		t.Errorf("original buffer was modified: %v", got)
	}
}

func TestExport_Cancelled(t *testing.T) {
	s := newLoadedSession(t, 16, 16)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := s.Export(ctx); !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}

func TestExport_OriginalRef(t *testing.T) {
	s := newLoadedSession(t, 16, 16, WithOriginalRef("https://cdn.example.com/originals/42.jpg"))
	blob, err := s.Export(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if blob.SourceRef != "https://cdn.example.com/originals/42.jpg" {
		t.Errorf("source ref: got %q", blob.SourceRef)
	}
}

func TestExport_FromURL(t *testing.T) {
	png := solidPNG(t, 50, 40, midGray)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "image/png")
		w.Write(png)
	}))
	defer srv.Close()

	s := NewSession(WithLogger(discardLogger()))
	defer s.Close()
	url := srv.URL + "/photo.png"
	if _, err := s.Load(context.Background(), imaging.PathSource(url)); err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	blob, err := s.Export(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if blob.SourceRef != url || !strings.HasPrefix(blob.MIMEType, "image/") {
		t.Errorf("unexpected blob %+v", blob)
	}
	if blob.Width != 50 || blob.Height != 40 {
		t.Errorf("size: %dx%d", blob.Width, blob.Height)
	}
}

func TestExportEncoders(t *testing.T) {
	tests := []struct {
		name         string
		wantPrimary  imaging.Format
		wantFallback bool
		wantErr      bool
	}{
		{"webp", imaging.FormatWebP, true, false},
		{"jpeg", imaging.FormatJPEG, false, false},
		{"JPG", imaging.FormatJPEG, false, false},
		{"gif", "", false, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, f, err := exportEncoders(tt.name)
			if tt.wantErr {
				if err == nil {
					t.Error("expected an error")
				}
				return
			}
			if err != nil {
				t.Fatal(err)
			}
			if p.Format() != tt.wantPrimary || (f != nil) != tt.wantFallback {
				t.Errorf("got %v fallback=%v", p.Format(), f != nil)
			}
			if f != nil && f.Format() != imaging.FormatJPEG {
				t.Errorf("fallback should be jpeg, got %s", f.Format())
			}
		})
	}
}
