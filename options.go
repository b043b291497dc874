package pagepdf

import (
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"
)

// Rendering strategies.
const (
	StrategyLocal  = "local"
	StrategyRemote = "remote"
)

// Raster encodings embedded in the PDF.
const (
	ImageFormatJPEG = "jpeg"
	ImageFormatPNG  = "png"
)

// Defaults for the conversion pipeline.
const (
	defaultTimeout         = 60 * time.Second
	defaultFontTimeout     = 5 * time.Second
	defaultSettleDelay     = 300 * time.Millisecond
	defaultRemoteTimeout   = 60 * time.Second
	defaultJPEGQuality     = 92
	defaultMaxRasterHeight = 60000
)

// DefaultMathJaxURL is the typesetter loaded into generated documents.
const DefaultMathJaxURL = "https://cdn.jsdelivr.net/npm/mathjax@3/es5/tex-svg.js"

// Option configures a Converter.
type Option func(*Converter)

// converterConfig holds internal configuration for Converter.
type converterConfig struct {
	timeout         time.Duration
	fontTimeout     time.Duration
	settleDelay     time.Duration
	strategy        string
	remoteEndpoint  string
	remoteTimeout   time.Duration
	httpClient      *http.Client
	adjust          AdjustOptions
	maxPasses       int
	imageFormat     string
	jpegQuality     int
	maxRasterHeight int
	assetPath       string
	captureStyle    string
	mathJaxURL      string
}

func defaultConverterConfig() converterConfig {
	return converterConfig{
		timeout:         defaultTimeout,
		fontTimeout:     defaultFontTimeout,
		settleDelay:     defaultSettleDelay,
		strategy:        StrategyLocal,
		remoteTimeout:   defaultRemoteTimeout,
		adjust:          AdjustOptions{Mode: AdjustCascade, Buffer: DefaultShiftBuffer},
		maxPasses:       DefaultMaxAdjustPasses,
		imageFormat:     ImageFormatJPEG,
		jpegQuality:     defaultJPEGQuality,
		maxRasterHeight: defaultMaxRasterHeight,
		mathJaxURL:      DefaultMathJaxURL,
	}
}

// WithTimeout sets the overall job timeout.
// Default is 60 seconds. Panics if d <= 0.
func WithTimeout(d time.Duration) Option {
	if d <= 0 {
		panic("pagepdf: WithTimeout duration must be positive")
	}
	return func(c *Converter) {
		c.cfg.timeout = d
	}
}

// WithFontTimeout bounds how long capture waits for typesetting and fonts.
// Expiry is logged, never fatal. Panics if d <= 0.
func WithFontTimeout(d time.Duration) Option {
	if d <= 0 {
		panic("pagepdf: WithFontTimeout duration must be positive")
	}
	return func(c *Converter) {
		c.cfg.fontTimeout = d
	}
}

// WithSettleDelay sets the pause after fonts load, absorbing late reflow.
func WithSettleDelay(d time.Duration) Option {
	if d < 0 {
		panic("pagepdf: WithSettleDelay duration must not be negative")
	}
	return func(c *Converter) {
		c.cfg.settleDelay = d
	}
}

// WithLogger sets the structured logger. A nil logger disables logging.
func WithLogger(l *zap.Logger) Option {
	return func(c *Converter) {
		if l == nil {
			l = zap.NewNop()
		}
		c.logger = l
	}
}

// WithStrategy selects the renderer: StrategyLocal (default) or StrategyRemote.
func WithStrategy(name string) Option {
	return func(c *Converter) {
		c.cfg.strategy = strings.ToLower(name)
	}
}

// WithRemoteEndpoint sets the rendering service URL used by StrategyRemote.
func WithRemoteEndpoint(url string) Option {
	return func(c *Converter) {
		c.cfg.remoteEndpoint = url
	}
}

// WithRemoteTimeout bounds one round-trip to the rendering service.
func WithRemoteTimeout(d time.Duration) Option {
	if d <= 0 {
		panic("pagepdf: WithRemoteTimeout duration must be positive")
	}
	return func(c *Converter) {
		c.cfg.remoteTimeout = d
	}
}

// WithHTTPClient sets the client used to reach the rendering service.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Converter) {
		c.cfg.httpClient = hc
	}
}

// WithAdjustMode selects cascade (default) or one-pass block adjustment.
func WithAdjustMode(m AdjustMode) Option {
	return func(c *Converter) {
		c.cfg.adjust.Mode = m
	}
}

// WithShiftBuffer sets the gap in px kept below a page boundary when a
// block is pushed to the next page.
func WithShiftBuffer(px float64) Option {
	if px < 0 {
		panic("pagepdf: WithShiftBuffer must not be negative")
	}
	return func(c *Converter) {
		c.cfg.adjust.Buffer = px
	}
}

// WithImageFormat selects the raster encoding: ImageFormatJPEG (default) or
// ImageFormatPNG.
func WithImageFormat(format string) Option {
	return func(c *Converter) {
		c.cfg.imageFormat = strings.ToLower(format)
	}
}

// WithJPEGQuality sets the JPEG quality (1-100).
func WithJPEGQuality(q int) Option {
	if q < 1 || q > 100 {
		panic("pagepdf: WithJPEGQuality must be between 1 and 100")
	}
	return func(c *Converter) {
		c.cfg.jpegQuality = q
	}
}

// WithAssetPath sets a directory overriding the embedded capture assets.
// Files not present there fall back to the embedded versions.
func WithAssetPath(path string) Option {
	return func(c *Converter) {
		c.cfg.assetPath = path
	}
}

// WithCaptureStyle selects the capture stylesheet by name (default: "capture").
func WithCaptureStyle(name string) Option {
	return func(c *Converter) {
		c.cfg.captureStyle = name
	}
}

// WithMathJaxURL sets the MathJax script added to documents built from
// Markdown or fragments. An empty URL leaves math untypeset.
func WithMathJaxURL(url string) Option {
	return func(c *Converter) {
		c.cfg.mathJaxURL = url
	}
}

// WithRenderer injects a custom PdfRenderer, bypassing strategy selection.
func WithRenderer(r PdfRenderer) Option {
	return func(c *Converter) {
		c.renderer = r
	}
}
