package pagepdf

import (
	"context"
	"fmt"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/alnah/go-pagepdf/internal/assets"
	"github.com/alnah/go-pagepdf/internal/fileutil"
	"github.com/alnah/go-pagepdf/internal/process"
)

// Compile-time interface checks.
var (
	_ surfaceOpener  = (*rodOpener)(nil)
	_ captureSurface = (*rodSurface)(nil)
)

// releaseTimeout bounds cleanup calls made after the job context is done.
const releaseTimeout = 5 * time.Second

// viewportHeightPx is the initial viewport height; captures reach beyond it.
const viewportHeightPx = 1200

// rodOpener opens capture pages in a lazily launched headless Chrome.
// Rod downloads Chromium on first run if no browser is found.
type rodOpener struct {
	mu       sync.Mutex
	browser  *rod.Browser
	launcher *launcher.Launcher
	timeout  time.Duration
	scripts  map[string]string
	logger   *zap.Logger
}

func newRodOpener(timeout time.Duration, scripts map[string]string, logger *zap.Logger) *rodOpener {
	return &rodOpener{timeout: timeout, scripts: scripts, logger: logger}
}

// ensureBrowser lazily launches and connects to the browser.
func (o *rodOpener) ensureBrowser() error {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.browser != nil {
		return nil
	}

	l := launcher.New()

	// Use pre-installed browser if specified (Docker/containerized environments)
	if bin := os.Getenv("ROD_BROWSER_BIN"); bin != "" {
		l = l.Bin(bin)
	}

	// NoSandbox required for CI and containerized environments
	if os.Getenv("CI") == "true" || envTrue("ROD_NO_SANDBOX") || os.Getenv("ROD_BROWSER_BIN") != "" {
		l = l.NoSandbox(true)
	}

	u, err := l.Launch()
	if err != nil {
		l.Kill()
		return fmt.Errorf("%w: %v", ErrBrowserConnect, err)
	}

	browser := rod.New().ControlURL(u)
	if err := browser.Connect(); err != nil {
		l.Kill()
		return fmt.Errorf("%w: %v", ErrBrowserConnect, err)
	}

	o.browser = browser
	o.launcher = l
	o.logger.Debug("browser launched", zap.Int("pid", l.PID()))
	return nil
}

// Open writes document to a temp file and loads it into a new page whose
// viewport is at least viewportWidthPx wide.
func (o *rodOpener) Open(ctx context.Context, document string, viewportWidthPx int) (captureSurface, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := o.ensureBrowser(); err != nil {
		return nil, err
	}

	path, cleanup, err := fileutil.WriteTempFile(document, "html")
	if err != nil {
		return nil, err
	}
	pageURL, err := fileutil.FileURL(path)
	if err != nil {
		cleanup()
		return nil, err
	}

	o.mu.Lock()
	browser := o.browser
	o.mu.Unlock()
	if browser == nil {
		cleanup()
		return nil, ErrBrowserConnect
	}

	page, err := browser.Page(proto.TargetCreateTarget{URL: "about:blank"})
	if err != nil {
		cleanup()
		return nil, fmt.Errorf("%w: %v", ErrPageCreate, err)
	}
	s := &rodSurface{page: page, cleanup: cleanup, scripts: o.scripts}

	if err := s.prepare(ctx, pageURL, viewportWidthPx, o.loadTimeout(ctx)); err != nil {
		_ = s.Close()
		return nil, err
	}
	return s, nil
}

// loadTimeout uses the context deadline when sooner than the configured timeout.
func (o *rodOpener) loadTimeout(ctx context.Context) time.Duration {
	timeout := o.timeout
	if deadline, ok := ctx.Deadline(); ok {
		if until := time.Until(deadline); until < timeout {
			timeout = until
		}
	}
	return timeout
}

// Close shuts the browser down and reaps its process tree.
func (o *rodOpener) Close() error {
	o.mu.Lock()
	defer o.mu.Unlock()

	var err error
	if o.browser != nil {
		err = o.browser.Close()
		o.browser = nil
	}
	if o.launcher != nil {
		if pid := o.launcher.PID(); pid > 0 {
			process.KillProcessGroup(pid)
		}
		o.launcher.Kill()
		o.launcher.Cleanup()
		o.launcher = nil
	}
	return err
}

// rodSurface is one loaded document.
type rodSurface struct {
	page    *rod.Page
	cleanup func()
	scripts map[string]string
}

// prepare sizes the viewport, forces a white default background and
// navigates to the document.
func (s *rodSurface) prepare(ctx context.Context, pageURL string, widthPx int, timeout time.Duration) error {
	if timeout <= 0 {
		return context.DeadlineExceeded
	}
	page := s.page.Context(ctx)

	err := page.SetViewport(&proto.EmulationSetDeviceMetricsOverride{
		Width:             widthPx,
		Height:            viewportHeightPx,
		DeviceScaleFactor: 1,
	})
	if err != nil {
		return fmt.Errorf("%w: setting viewport: %v", ErrPageCreate, err)
	}

	err = proto.EmulationSetDefaultBackgroundColorOverride{
		Color: &proto.DOMRGBA{R: 255, G: 255, B: 255},
	}.Call(page)
	if err != nil {
		return fmt.Errorf("%w: setting background: %v", ErrPageCreate, err)
	}

	if err := page.Navigate(pageURL); err != nil {
		return fmt.Errorf("%w: %v", ErrPageLoad, err)
	}
	if err := page.Timeout(timeout).WaitLoad(); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		return fmt.Errorf("%w: %v", ErrPageLoad, err)
	}
	return nil
}

func (s *rodSurface) eval(ctx context.Context, name string, args ...any) (*proto.RuntimeRemoteObject, error) {
	js, ok := s.scripts[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrCaptureScriptNotLoaded, name)
	}
	res, err := s.page.Context(ctx).Eval(js, args...)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		return nil, fmt.Errorf("%s: %w", name, err)
	}
	return res, nil
}

// detachedEval runs cleanup scripts even after ctx is done.
func (s *rodSurface) detachedEval(ctx context.Context, name string, args ...any) error {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), releaseTimeout)
	defer cancel()
	_, err := s.eval(ctx, name, args...)
	return err
}

func (s *rodSurface) Typeset(ctx context.Context) error {
	_, err := s.eval(ctx, assets.ScriptTypeset)
	return err
}

func (s *rodSurface) FontsReady(ctx context.Context) error {
	_, err := s.eval(ctx, assets.ScriptFonts)
	return err
}

func (s *rodSurface) CloneDetached(ctx context.Context, selector, containerID string, widthPx int) error {
	res, err := s.eval(ctx, assets.ScriptClone, selector, containerID, widthPx)
	if err != nil {
		return captureError(err)
	}
	if !res.Value.Bool() {
		return fmt.Errorf("%w: %q", ErrCaptureTargetMissing, selector)
	}
	return nil
}

func (s *rodSurface) RemoveDetached(ctx context.Context, containerID string) error {
	return s.detachedEval(ctx, assets.ScriptRemove, containerID)
}

type measuredBlock struct {
	Index     int     `json:"index"`
	Top       float64 `json:"top"`
	Height    float64 `json:"height"`
	MarginTop float64 `json:"marginTop"`
}

func (s *rodSurface) MeasureBlocks(ctx context.Context, containerID, selector string) ([]Block, error) {
	res, err := s.eval(ctx, assets.ScriptMeasure, containerID, selector)
	if err != nil {
		return nil, captureError(err)
	}
	if res.Value.Nil() {
		return nil, fmt.Errorf("%w: container %s", ErrCaptureTargetMissing, containerID)
	}
	var raw []measuredBlock
	if err := res.Value.Unmarshal(&raw); err != nil {
		return nil, fmt.Errorf("%w: decoding block metrics: %v", ErrCaptureFailure, err)
	}
	blocks := make([]Block, len(raw))
	for i, m := range raw {
		blocks[i] = Block(m)
	}
	return blocks, nil
}

type marginUpdate struct {
	Index     int     `json:"index"`
	MarginTop float64 `json:"marginTop"`
}

func (s *rodSurface) ApplyMargins(ctx context.Context, containerID, selector string, shifts []Shift) error {
	updates := make([]marginUpdate, len(shifts))
	for i, sh := range shifts {
		updates[i] = marginUpdate{Index: sh.Index, MarginTop: sh.NewMarginTop}
	}
	res, err := s.eval(ctx, assets.ScriptMargins, containerID, selector, updates)
	if err != nil {
		return captureError(err)
	}
	if !res.Value.Bool() {
		return fmt.Errorf("%w: container %s", ErrCaptureTargetMissing, containerID)
	}
	return nil
}

func (s *rodSurface) CountUnits(ctx context.Context, containerID, selector string) (int, error) {
	res, err := s.eval(ctx, assets.ScriptUnits, containerID, selector)
	if err != nil {
		return 0, captureError(err)
	}
	n := res.Value.Int()
	if n < 0 {
		return 0, fmt.Errorf("%w: container %s", ErrCaptureTargetMissing, containerID)
	}
	return n, nil
}

func (s *rodSurface) AcquireCaptureVisibility(ctx context.Context, containerID string) (func() error, error) {
	res, err := s.eval(ctx, assets.ScriptVisibility, containerID, true)
	if err != nil {
		return nil, captureError(err)
	}
	if !res.Value.Bool() {
		return nil, fmt.Errorf("%w: container %s", ErrCaptureTargetMissing, containerID)
	}
	return func() error {
		return s.detachedEval(ctx, assets.ScriptVisibility, containerID, false)
	}, nil
}

func (s *rodSurface) ApplyStyleOverride(ctx context.Context, css string) (func() error, error) {
	id := "pagepdf-style-" + uuid.NewString()
	if _, err := s.eval(ctx, assets.ScriptStyle, id, css); err != nil {
		return nil, captureError(err)
	}
	return func() error {
		return s.detachedEval(ctx, assets.ScriptRemove, id)
	}, nil
}

type elementRect struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

func (s *rodSurface) Screenshot(ctx context.Context, containerID, selector string, index int, oversampling float64) ([]byte, error) {
	res, err := s.eval(ctx, assets.ScriptRect, containerID, selector, index)
	if err != nil {
		return nil, err
	}
	if res.Value.Nil() {
		return nil, fmt.Errorf("%w: %s %q[%d]", ErrCaptureTargetMissing, containerID, selector, index)
	}
	var rect elementRect
	if err := res.Value.Unmarshal(&rect); err != nil {
		return nil, fmt.Errorf("%w: decoding capture rect: %v", ErrCaptureFailure, err)
	}
	if rect.Width <= 0 || rect.Height <= 0 {
		return nil, fmt.Errorf("%w: capture area is empty", ErrCaptureFailure)
	}

	data, err := s.page.Context(ctx).Screenshot(false, &proto.PageCaptureScreenshot{
		Format: proto.PageCaptureScreenshotFormatPng,
		Clip: &proto.PageViewport{
			X:      rect.X,
			Y:      rect.Y,
			Width:  rect.Width,
			Height: rect.Height,
			Scale:  oversampling,
		},
		FromSurface:           true,
		CaptureBeyondViewport: true,
	})
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		return nil, fmt.Errorf("%w: %v", ErrCaptureFailure, err)
	}
	return data, nil
}

// Close closes the page and removes the temp document.
func (s *rodSurface) Close() error {
	var err error
	if s.page != nil {
		err = s.page.Close()
		s.page = nil
	}
	if s.cleanup != nil {
		s.cleanup()
		s.cleanup = nil
	}
	return err
}

// envTrue reports whether the variable is set to 1 or true.
func envTrue(name string) bool {
	v := os.Getenv(name)
	return v == "1" || strings.EqualFold(v, "true")
}
