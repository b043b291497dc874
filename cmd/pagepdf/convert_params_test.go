package main

import (
	"context"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"go.uber.org/zap"

	pagepdf "github.com/alnah/go-pagepdf"
	"github.com/alnah/go-pagepdf/internal/config"
)

func TestMergeFlags(t *testing.T) {
	t.Parallel()

	t.Run("flags override config", func(t *testing.T) {
		t.Parallel()

		cfg := &config.Config{
			Page:    config.PageConfig{Format: "letter", Margin: 50},
			Capture: config.CaptureConfig{Selector: "#old", Timeout: time.Minute},
			Layout:  config.LayoutConfig{Mode: "flow", Suppress: []string{".old"}},
		}
		flags, _, err := parseConvertFlags([]string{
			"-p", "a4", "--margin", "30", "-s", "#sheet", "-t", "10s",
			"-l", "units", "--suppress", ".narration", "--suppress", ".answer-key",
			"--shift-buffer", "0", "--remote", "--remote-endpoint", "https://print.example.com",
		})
		if err != nil {
			t.Fatalf("parseConvertFlags() error = %v", err)
		}
		mergeFlags(flags, cfg)

		zero := 0.0
		want := &config.Config{
			Page:    config.PageConfig{Format: "a4", Margin: 30},
			Capture: config.CaptureConfig{Selector: "#sheet", Timeout: 10 * time.Second, ShiftBuffer: &zero},
			Layout:  config.LayoutConfig{Mode: "units", Suppress: []string{".narration", ".answer-key"}},
			Remote:  config.RemoteConfig{Enabled: true, Endpoint: "https://print.example.com"},
		}
		if diff := cmp.Diff(want, cfg); diff != "" {
			t.Errorf("mergeFlags() mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("unset flags keep config", func(t *testing.T) {
		t.Parallel()

		buf := 12.0
		cfg := &config.Config{
			Page:    config.PageConfig{Orientation: "landscape"},
			Capture: config.CaptureConfig{ShiftBuffer: &buf, AdjustMode: "one-pass"},
		}
		flags, _, err := parseConvertFlags(nil)
		if err != nil {
			t.Fatalf("parseConvertFlags() error = %v", err)
		}
		mergeFlags(flags, cfg)

		if cfg.Page.Orientation != "landscape" || cfg.Capture.AdjustMode != "one-pass" {
			t.Errorf("config overwritten: %+v", cfg)
		}
		if cfg.Capture.ShiftBuffer == nil || *cfg.Capture.ShiftBuffer != 12 {
			t.Errorf("ShiftBuffer = %v, want 12", cfg.Capture.ShiftBuffer)
		}
	})
}

func TestBuildInputTemplate(t *testing.T) {
	t.Parallel()

	t.Run("empty config leaves defaults to the library", func(t *testing.T) {
		t.Parallel()

		in := buildInputTemplate(config.DefaultConfig())
		if diff := cmp.Diff(pagepdf.Input{}, in); diff != "" {
			t.Errorf("buildInputTemplate() mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("maps page and selectors", func(t *testing.T) {
		t.Parallel()

		cfg := &config.Config{
			Page:    config.PageConfig{Format: "a5", Orientation: "landscape", Margin: 20, Oversampling: 3, ReferenceWidth: 1000},
			Capture: config.CaptureConfig{Selector: "#sheet", BlockSelector: ".exercise"},
			Layout:  config.LayoutConfig{Mode: "units", UnitSelector: ".card", Suppress: []string{".aside"}},
		}
		want := pagepdf.Input{
			Selector:      "#sheet",
			BlockSelector: ".exercise",
			UnitSelector:  ".card",
			Layout:        "units",
			Suppress:      []string{".aside"},
			Page: &pagepdf.PageSettings{
				Format:           "a5",
				Orientation:      "landscape",
				MarginPt:         20,
				Oversampling:     3,
				ReferenceWidthPx: 1000,
			},
		}
		if diff := cmp.Diff(want, buildInputTemplate(cfg)); diff != "" {
			t.Errorf("buildInputTemplate() mismatch (-want +got):\n%s", diff)
		}
	})
}

func TestBuildOptions(t *testing.T) {
	t.Parallel()

	buf := 4.0
	tests := []struct {
		name string
		cfg  *config.Config
		want int
	}{
		{"defaults only carry the logger", config.DefaultConfig(), 1},
		{
			name: "every capture setting",
			cfg: &config.Config{
				Capture: config.CaptureConfig{
					Timeout: time.Minute, FontTimeout: time.Second, SettleDelay: time.Millisecond,
					Style: "capture", ImageFormat: "png", JPEGQuality: 80, AdjustMode: "one-pass",
					ShiftBuffer: &buf, MathJaxURL: "https://cdn.example.com/mathjax.js",
				},
				Assets: config.AssetsConfig{BasePath: "/srv/assets"},
			},
			want: 11,
		},
		{"cascade is the library default", &config.Config{Capture: config.CaptureConfig{AdjustMode: "cascade"}}, 1},
		{
			name: "remote",
			cfg:  &config.Config{Remote: config.RemoteConfig{Enabled: true, Endpoint: "https://print.example.com", Timeout: time.Minute}},
			want: 4,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := len(buildOptions(tt.cfg, zap.NewNop())); got != tt.want {
				t.Errorf("len(buildOptions()) = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestBuildOptions_ConfiguresConverter(t *testing.T) {
	t.Parallel()

	cfg := &config.Config{Capture: config.CaptureConfig{ImageFormat: "png", JPEGQuality: 70}}
	conv, err := pagepdf.NewConverter(append(buildOptions(cfg, zap.NewNop()), pagepdf.WithRenderer(nopRenderer{}))...)
	if err != nil {
		t.Fatalf("NewConverter() error = %v", err)
	}
	defer func() { _ = conv.Close() }()
}

// nopRenderer satisfies pagepdf.PdfRenderer without a browser.
type nopRenderer struct{}

func (nopRenderer) Render(_ context.Context, _ pagepdf.RenderRequest) (*pagepdf.RenderResult, error) {
	return &pagepdf.RenderResult{}, nil
}
func (nopRenderer) Close() error { return nil }
