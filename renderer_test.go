package pagepdf

import (
	"context"
	"errors"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func newTestLocalRenderer(opener surfaceOpener) *LocalTiledRenderer {
	cfg := defaultConverterConfig()
	cfg.settleDelay = 0
	cfg.imageFormat = ImageFormatPNG
	return newLocalTiledRenderer(opener, cfg, zap.NewNop())
}

func testRenderRequest(t *testing.T, layout string) RenderRequest {
	t.Helper()
	page := resolvePage(nil)
	page.Oversampling = 1
	return RenderRequest{
		JobID:    "job-1",
		Document: "<html><body><p>x</p></body></html>",
		Input:    Input{HTML: "x", Layout: layout}.resolved(),
		Page:     page,
		Geometry: a4Geometry(t),
	}
}

func TestLocalTiledRenderer_Flow(t *testing.T) {
	t.Parallel()

	s := newFakeSurface()
	// 800 CSS px wide at oversampling 1: 2000px tall is 1287.5pt, two pages.
	s.shotWidth, s.shotHeight = 800, 2000
	s.blocks = []Block{{Index: 0, Top: 1100, Height: 150}}
	opener := &fakeOpener{surface: s}
	r := newTestLocalRenderer(opener)

	res, err := r.Render(context.Background(), testRenderRequest(t, LayoutFlow))
	if err != nil {
		t.Fatalf("Render() unexpected error: %v", err)
	}
	if res.Pages != 2 {
		t.Errorf("Pages = %d, want 2", res.Pages)
	}
	if len(res.Shifts) != 1 || res.Shifts[0].Index != 0 {
		t.Errorf("Shifts = %+v, want one shift of block 0", res.Shifts)
	}
	if got, err := countPages(res.PDF); err != nil || got != 2 {
		t.Errorf("countPages() = %d, %v, want 2", got, err)
	}

	if len(s.cloned) != 1 || s.cloned[0] != "pagepdf-job-1 "+DefaultSelector {
		t.Errorf("cloned = %v", s.cloned)
	}
	if len(s.removed) != 1 || s.closed != 1 {
		t.Errorf("clone removed %d times, surface closed %d times, want 1 and 1", len(s.removed), s.closed)
	}
	// Once before cloning, once after the margins moved.
	if s.typesets != 2 {
		t.Errorf("typeset %d times, want 2", s.typesets)
	}
	if s.visible != 0 {
		t.Errorf("capture visibility still held %d times", s.visible)
	}
}

func TestLocalTiledRenderer_Flow_LogsLogicalHeight(t *testing.T) {
	t.Parallel()

	s := newFakeSurface()
	// Oversampling 2: a 1600x4000 bitmap is 2000 CSS px of content.
	s.shotWidth, s.shotHeight = 1600, 4000
	core, logs := observer.New(zapcore.DebugLevel)

	cfg := defaultConverterConfig()
	cfg.settleDelay = 0
	cfg.imageFormat = ImageFormatPNG
	r := newLocalTiledRenderer(&fakeOpener{surface: s}, cfg, zap.New(core))

	req := testRenderRequest(t, LayoutFlow)
	req.Page.Oversampling = 2
	res, err := r.Render(context.Background(), req)
	if err != nil {
		t.Fatalf("Render() unexpected error: %v", err)
	}
	if res.Pages != 2 {
		t.Errorf("Pages = %d, want 2", res.Pages)
	}

	entries := logs.FilterMessage("captured content").All()
	if len(entries) != 1 {
		t.Fatalf("got %d capture log entries, want 1", len(entries))
	}
	if got := entries[0].ContextMap()["heightCSSPx"]; got != 2000.0 {
		t.Errorf("heightCSSPx = %v, want 2000", got)
	}
}

func TestLocalTiledRenderer_Units(t *testing.T) {
	t.Parallel()

	s := newFakeSurface()
	s.units = 4
	r := newTestLocalRenderer(&fakeOpener{surface: s})

	res, err := r.Render(context.Background(), testRenderRequest(t, LayoutUnits))
	if err != nil {
		t.Fatalf("Render() unexpected error: %v", err)
	}
	if res.Pages != 4 {
		t.Errorf("Pages = %d, want 4", res.Pages)
	}
	if res.Shifts != nil {
		t.Errorf("Shifts = %+v, want none for units", res.Shifts)
	}
	if s.measured != 0 {
		t.Errorf("units layout measured blocks %d times", s.measured)
	}
}

func TestLocalTiledRenderer_ReleasesOnError(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name        string
		layout      string
		setup       func(*fakeSurface)
		wantErr     error
		wantRemoved int
	}{
		{
			name:    "target missing",
			layout:  LayoutFlow,
			setup:   func(s *fakeSurface) { s.cloneErr = ErrCaptureTargetMissing },
			wantErr: ErrCaptureTargetMissing,
		},
		{
			name:        "measure fails",
			layout:      LayoutFlow,
			setup:       func(s *fakeSurface) { s.measureErr = ErrCaptureFailure },
			wantErr:     ErrCaptureFailure,
			wantRemoved: 1,
		},
		{
			name:        "screenshot fails",
			layout:      LayoutFlow,
			setup:       func(s *fakeSurface) { s.shotErr = errors.New("renderer gone") },
			wantErr:     ErrCaptureFailure,
			wantRemoved: 1,
		},
		{
			name:        "no units",
			layout:      LayoutUnits,
			setup:       func(s *fakeSurface) { s.units = 0 },
			wantErr:     ErrNoUnits,
			wantRemoved: 1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			s := newFakeSurface()
			tt.setup(s)
			r := newTestLocalRenderer(&fakeOpener{surface: s})

			res, err := r.Render(context.Background(), testRenderRequest(t, tt.layout))
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("Render() error = %v, want %v", err, tt.wantErr)
			}
			if res != nil {
				t.Error("Render() returned a result alongside an error")
			}
			if s.closed != 1 {
				t.Errorf("surface closed %d times, want 1", s.closed)
			}
			if len(s.removed) != tt.wantRemoved {
				t.Errorf("clone removed %d times, want %d", len(s.removed), tt.wantRemoved)
			}
			if s.visible != 0 || s.overrideActive != 0 {
				t.Errorf("leaked visibility=%d overrides=%d", s.visible, s.overrideActive)
			}
		})
	}
}

func TestLocalTiledRenderer_OpenAndClose(t *testing.T) {
	t.Parallel()

	opener := &fakeOpener{openErr: ErrBrowserConnect}
	r := newTestLocalRenderer(opener)

	if _, err := r.Render(context.Background(), testRenderRequest(t, LayoutFlow)); !errors.Is(err, ErrBrowserConnect) {
		t.Errorf("Render() error = %v, want ErrBrowserConnect", err)
	}
	if err := r.Close(); err != nil {
		t.Errorf("Close() unexpected error: %v", err)
	}
	if opener.closed != 1 {
		t.Errorf("opener closed %d times, want 1", opener.closed)
	}

	if err := (&LocalTiledRenderer{}).Close(); err != nil {
		t.Errorf("Close() without opener error = %v", err)
	}
}
