package pagepdf

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"sort"
	"sync"
	"testing"
)

// fakeSurface is an in-memory captureSurface. Blocks lay out in a single
// flow: a margin added to one block pushes every block below it.
type fakeSurface struct {
	mu sync.Mutex

	blocks     []Block
	units      int
	shotWidth  int
	shotHeight int

	// drift is added below a shifted block on the first ApplyMargins call,
	// mimicking layout that does not follow the plan exactly.
	drift float64

	typesetErr  error
	fontsErr    error
	cloneErr    error
	measureErr  error
	shotErr     error
	shotErrAt   int // unit index failing with shotErr, -1 for all
	countErr    error
	overrideErr error

	cloned         []string
	removed        []string
	measured       int
	applied        [][]Shift
	visible        int
	maxVisible     int
	releases       int
	overrides      []string
	overrideActive int
	shots          []int
	typesets       int
	closed         int

	// events records typesetting and screenshots in call order.
	events []string
}

func newFakeSurface() *fakeSurface {
	return &fakeSurface{shotWidth: 40, shotHeight: 60, shotErrAt: -1}
}

func (s *fakeSurface) Typeset(ctx context.Context) error {
	s.mu.Lock()
	s.typesets++
	s.events = append(s.events, "typeset")
	s.mu.Unlock()
	if s.typesetErr != nil {
		return s.typesetErr
	}
	return ctx.Err()
}

func (s *fakeSurface) FontsReady(ctx context.Context) error {
	if s.fontsErr != nil {
		return s.fontsErr
	}
	return ctx.Err()
}

func (s *fakeSurface) CloneDetached(_ context.Context, selector, containerID string, _ int) error {
	if s.cloneErr != nil {
		return s.cloneErr
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cloned = append(s.cloned, containerID+" "+selector)
	return nil
}

func (s *fakeSurface) RemoveDetached(_ context.Context, containerID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.removed = append(s.removed, containerID)
	return nil
}

func (s *fakeSurface) MeasureBlocks(_ context.Context, _, _ string) ([]Block, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.measured++
	if s.measureErr != nil {
		return nil, s.measureErr
	}
	out := make([]Block, len(s.blocks))
	copy(out, s.blocks)
	return out, nil
}

func (s *fakeSurface) ApplyMargins(_ context.Context, _, _ string, shifts []Shift) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.applied = append(s.applied, shifts)

	sorted := make([]Shift, len(shifts))
	copy(sorted, shifts)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Top < sorted[j].Top })

	for _, sh := range sorted {
		pos := s.find(sh.Index)
		if pos < 0 {
			continue
		}
		top := s.blocks[pos].Top
		push := sh.Amount
		s.blocks[pos].MarginTop = sh.NewMarginTop
		for i := range s.blocks {
			if s.blocks[i].Top >= top {
				s.blocks[i].Top += push
			}
		}
		if s.drift != 0 && len(s.applied) == 1 {
			for i := range s.blocks {
				if s.blocks[i].Top > top+push {
					s.blocks[i].Top += s.drift
				}
			}
		}
	}
	return nil
}

func (s *fakeSurface) find(index int) int {
	for i, b := range s.blocks {
		if b.Index == index {
			return i
		}
	}
	return -1
}

func (s *fakeSurface) CountUnits(_ context.Context, _, _ string) (int, error) {
	if s.countErr != nil {
		return 0, s.countErr
	}
	return s.units, nil
}

func (s *fakeSurface) AcquireCaptureVisibility(_ context.Context, _ string) (func() error, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.visible++
	s.maxVisible = max(s.maxVisible, s.visible)
	return func() error {
		s.mu.Lock()
		defer s.mu.Unlock()
		s.visible--
		s.releases++
		return nil
	}, nil
}

func (s *fakeSurface) ApplyStyleOverride(_ context.Context, css string) (func() error, error) {
	if s.overrideErr != nil {
		return nil, s.overrideErr
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.overrides = append(s.overrides, css)
	s.overrideActive++
	return func() error {
		s.mu.Lock()
		defer s.mu.Unlock()
		s.overrideActive--
		return nil
	}, nil
}

func (s *fakeSurface) Screenshot(_ context.Context, _, _ string, index int, _ float64) ([]byte, error) {
	s.mu.Lock()
	s.shots = append(s.shots, index)
	s.events = append(s.events, fmt.Sprintf("shot %d", index))
	s.mu.Unlock()
	if s.shotErr != nil && (s.shotErrAt < 0 || s.shotErrAt == index) {
		return nil, s.shotErr
	}
	return encodeTestPNG(s.shotWidth, s.shotHeight, color.NRGBA{R: 200, A: 255}), nil
}

func (s *fakeSurface) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed++
	return nil
}

// fakeOpener hands out a single fakeSurface.
type fakeOpener struct {
	surface *fakeSurface
	openErr error
	opened  int
	closed  int
}

func (o *fakeOpener) Open(_ context.Context, _ string, _ int) (captureSurface, error) {
	if o.openErr != nil {
		return nil, o.openErr
	}
	o.opened++
	return o.surface, nil
}

func (o *fakeOpener) Close() error {
	o.closed++
	return nil
}

// encodeTestPNG returns a solid w x h PNG.
func encodeTestPNG(w, h int, c color.Color) []byte {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := range h {
		for x := range w {
			img.Set(x, y, c)
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		panic(err)
	}
	return buf.Bytes()
}

// testRaster returns an encoded capture of the given pixel size.
func testRaster(t *testing.T, w, h int, format string) RasterImage {
	t.Helper()
	img, err := normalizeRaster(encodeTestPNG(w, h, color.NRGBA{B: 200, A: 255}), 1, format, defaultJPEGQuality, 0)
	if err != nil {
		t.Fatalf("normalizeRaster() error = %v", err)
	}
	return img
}

// a4Geometry is the 595x842 page with 40pt margins at 800px.
func a4Geometry(t *testing.T) PageGeometry {
	t.Helper()
	g, err := ComputeGeometry(595, 842, 40, 800)
	if err != nil {
		t.Fatalf("ComputeGeometry() error = %v", err)
	}
	return g
}

// fakeRenderer records requests and answers with a canned result.
type fakeRenderer struct {
	mu       sync.Mutex
	result   *RenderResult
	err      error
	panicMsg string
	requests []RenderRequest
	closed   int
}

func (r *fakeRenderer) Render(_ context.Context, req RenderRequest) (*RenderResult, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.requests = append(r.requests, req)
	if r.panicMsg != "" {
		panic(r.panicMsg)
	}
	if r.err != nil {
		return nil, r.err
	}
	return r.result, nil
}

func (r *fakeRenderer) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.closed++
	return nil
}

// tiledPDF returns a real document of the given page count.
func tiledPDF(t *testing.T, pages int) []byte {
	t.Helper()
	g := a4Geometry(t)
	pdf, got, err := composeTiled(testRaster(t, 515, 762*pages, ImageFormatJPEG), g, pdfMeta{})
	if err != nil {
		t.Fatalf("composeTiled() error = %v", err)
	}
	if got != pages {
		t.Fatalf("composeTiled() produced %d pages, want %d", got, pages)
	}
	return pdf
}
