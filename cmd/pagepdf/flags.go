package main

import (
	"os"
	"time"

	flag "github.com/spf13/pflag"
)

// shiftBufferUnset detects if --shift-buffer was explicitly set.
// Since 0 is a valid buffer, we use an out-of-range sentinel.
const shiftBufferUnset = -1.0

// commonFlags holds flags shared across commands.
type commonFlags struct {
	config  string
	quiet   bool
	verbose bool
}

// pageFlags holds physical page flags.
type pageFlags struct {
	format         string
	orientation    string
	margin         float64
	oversampling   float64
	referenceWidth int
}

// captureFlags holds flags controlling how content is captured.
type captureFlags struct {
	selector      string
	blockSelector string
	style         string
	css           string
	imageFormat   string
	jpegQuality   int
	adjustMode    string
	shiftBuffer   float64
	fontTimeout   time.Duration
	settleDelay   time.Duration
	mathJaxURL    string
}

// layoutFlags holds pagination layout flags.
type layoutFlags struct {
	mode         string
	unitSelector string
	suppress     []string
}

// remoteFlags holds rendering service flags.
type remoteFlags struct {
	enabled  bool
	endpoint string
	timeout  time.Duration
}

// outputFlags holds output mode flags for debugging.
type outputFlags struct {
	html     bool // Output HTML alongside PDF
	htmlOnly bool // Output HTML only, skip PDF
}

// convertFlags holds all flags for the convert command.
type convertFlags struct {
	common     commonFlags
	output     string
	workers    int
	timeout    time.Duration
	assetPath  string
	page       pageFlags
	capture    captureFlags
	layout     layoutFlags
	remote     remoteFlags
	outputMode outputFlags
}

// addCommonFlags adds common flags to a FlagSet.
func addCommonFlags(fs *flag.FlagSet, f *commonFlags) {
	fs.StringVarP(&f.config, "config", "c", "", "config file name or path")
	fs.BoolVarP(&f.quiet, "quiet", "q", false, "only show errors")
	fs.BoolVarP(&f.verbose, "verbose", "v", false, "show detailed timing and debug logs")
}

// addPageFlags adds page flags to a FlagSet.
func addPageFlags(fs *flag.FlagSet, f *pageFlags) {
	fs.StringVarP(&f.format, "page-format", "p", "", "page format: a4, letter, legal, a3, a5")
	fs.StringVar(&f.orientation, "orientation", "", "page orientation: portrait, landscape")
	fs.Float64Var(&f.margin, "margin", 0, "page margin in points (1-200)")
	fs.Float64Var(&f.oversampling, "oversampling", 0, "raster pixels per CSS pixel (1-4)")
	fs.IntVar(&f.referenceWidth, "reference-width", 0, "authoring width in CSS pixels (200-4000)")
}

// addCaptureFlags adds capture flags to a FlagSet.
func addCaptureFlags(fs *flag.FlagSet, f *captureFlags) {
	fs.StringVarP(&f.selector, "selector", "s", "", "element to capture (default: body)")
	fs.StringVar(&f.blockSelector, "block-selector", "", "blocks kept on one page")
	fs.StringVar(&f.style, "capture-style", "", "capture style name, path or CSS")
	fs.StringVar(&f.css, "css", "", "extra CSS file injected into every document")
	fs.StringVar(&f.imageFormat, "image-format", "", "raster format: jpeg, png")
	fs.IntVar(&f.jpegQuality, "jpeg-quality", 0, "JPEG quality (1-100)")
	fs.StringVar(&f.adjustMode, "adjust-mode", "", "block adjustment: cascade, one-pass")
	fs.Float64Var(&f.shiftBuffer, "shift-buffer", shiftBufferUnset, "gap in pixels kept above a pushed block")
	fs.DurationVar(&f.fontTimeout, "font-timeout", 0, "wait for fonts and math typesetting")
	fs.DurationVar(&f.settleDelay, "settle-delay", 0, "pause after layout before capture")
	fs.StringVar(&f.mathJaxURL, "mathjax-url", "", "MathJax script URL for generated documents")
}

// addLayoutFlags adds layout flags to a FlagSet.
func addLayoutFlags(fs *flag.FlagSet, f *layoutFlags) {
	fs.StringVarP(&f.mode, "layout", "l", "", "pagination layout: flow, units")
	fs.StringVar(&f.unitSelector, "unit-selector", "", "elements captured one per page in units layout")
	fs.StringSliceVar(&f.suppress, "suppress", nil, "selectors hidden in unit captures (repeatable)")
}

// addRemoteFlags adds rendering service flags to a FlagSet.
func addRemoteFlags(fs *flag.FlagSet, f *remoteFlags) {
	fs.BoolVar(&f.enabled, "remote", false, "render through the HTTP print service")
	fs.StringVar(&f.endpoint, "remote-endpoint", "", "print service URL")
	fs.DurationVar(&f.timeout, "remote-timeout", 0, "print service request timeout")
}

// addOutputFlags adds output mode flags to a FlagSet.
func addOutputFlags(fs *flag.FlagSet, f *outputFlags) {
	fs.BoolVar(&f.html, "html", false, "output HTML alongside PDF")
	fs.BoolVar(&f.htmlOnly, "html-only", false, "output HTML only, skip PDF")
}

// registerConvertFlags binds every convert flag to f.
func registerConvertFlags(fs *flag.FlagSet, f *convertFlags) {
	fs.StringVarP(&f.output, "output", "o", "", "output file or directory")
	fs.IntVarP(&f.workers, "workers", "w", 0, "parallel workers (0 = auto)")
	fs.DurationVarP(&f.timeout, "timeout", "t", 0, "per-document timeout (e.g., 30s, 2m)")
	fs.StringVar(&f.assetPath, "asset-path", "", "custom asset directory")

	addCommonFlags(fs, &f.common)
	addPageFlags(fs, &f.page)
	addCaptureFlags(fs, &f.capture)
	addLayoutFlags(fs, &f.layout)
	addRemoteFlags(fs, &f.remote)
	addOutputFlags(fs, &f.outputMode)
}

// parseConvertFlags parses convert command flags and returns positional args.
func parseConvertFlags(args []string) (*convertFlags, []string, error) {
	fs := flag.NewFlagSet("convert", flag.ContinueOnError)
	f := &convertFlags{}
	registerConvertFlags(fs, f)
	fs.Usage = func() { printConvertUsage(os.Stderr) }

	if err := fs.Parse(args); err != nil {
		return nil, nil, err
	}
	return f, fs.Args(), nil
}
