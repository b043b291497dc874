package main

import (
	"go.uber.org/zap"

	pagepdf "github.com/alnah/go-pagepdf"
	"github.com/alnah/go-pagepdf/internal/config"
)

// mergeFlags merges CLI flags into config. CLI values override config values.
func mergeFlags(flags *convertFlags, cfg *config.Config) {
	if flags.timeout > 0 {
		cfg.Capture.Timeout = flags.timeout
	}
	if flags.assetPath != "" {
		cfg.Assets.BasePath = flags.assetPath
	}

	// Page flags
	if flags.page.format != "" {
		cfg.Page.Format = flags.page.format
	}
	if flags.page.orientation != "" {
		cfg.Page.Orientation = flags.page.orientation
	}
	if flags.page.margin > 0 {
		cfg.Page.Margin = flags.page.margin
	}
	if flags.page.oversampling > 0 {
		cfg.Page.Oversampling = flags.page.oversampling
	}
	if flags.page.referenceWidth > 0 {
		cfg.Page.ReferenceWidth = flags.page.referenceWidth
	}

	// Capture flags
	if flags.capture.selector != "" {
		cfg.Capture.Selector = flags.capture.selector
	}
	if flags.capture.blockSelector != "" {
		cfg.Capture.BlockSelector = flags.capture.blockSelector
	}
	if flags.capture.style != "" {
		cfg.Capture.Style = flags.capture.style
	}
	if flags.capture.imageFormat != "" {
		cfg.Capture.ImageFormat = flags.capture.imageFormat
	}
	if flags.capture.jpegQuality > 0 {
		cfg.Capture.JPEGQuality = flags.capture.jpegQuality
	}
	if flags.capture.adjustMode != "" {
		cfg.Capture.AdjustMode = flags.capture.adjustMode
	}
	if flags.capture.shiftBuffer != shiftBufferUnset {
		buf := flags.capture.shiftBuffer
		cfg.Capture.ShiftBuffer = &buf
	}
	if flags.capture.fontTimeout > 0 {
		cfg.Capture.FontTimeout = flags.capture.fontTimeout
	}
	if flags.capture.settleDelay > 0 {
		cfg.Capture.SettleDelay = flags.capture.settleDelay
	}
	if flags.capture.mathJaxURL != "" {
		cfg.Capture.MathJaxURL = flags.capture.mathJaxURL
	}

	// Layout flags
	if flags.layout.mode != "" {
		cfg.Layout.Mode = flags.layout.mode
	}
	if flags.layout.unitSelector != "" {
		cfg.Layout.UnitSelector = flags.layout.unitSelector
	}
	if len(flags.layout.suppress) > 0 {
		cfg.Layout.Suppress = flags.layout.suppress
	}

	// Remote flags
	if flags.remote.endpoint != "" {
		cfg.Remote.Endpoint = flags.remote.endpoint
	}
	if flags.remote.enabled {
		cfg.Remote.Enabled = true
	}
	if flags.remote.timeout > 0 {
		cfg.Remote.Timeout = flags.remote.timeout
	}
}

// buildInputTemplate creates the per-job settings shared by every file.
// Zero values are left for the library to default.
func buildInputTemplate(cfg *config.Config) pagepdf.Input {
	in := pagepdf.Input{
		Selector:      cfg.Capture.Selector,
		BlockSelector: cfg.Capture.BlockSelector,
		UnitSelector:  cfg.Layout.UnitSelector,
		Layout:        cfg.Layout.Mode,
		Suppress:      cfg.Layout.Suppress,
	}

	p := cfg.Page
	if p.Format != "" || p.Orientation != "" || p.Margin > 0 || p.Oversampling > 0 || p.ReferenceWidth > 0 {
		in.Page = &pagepdf.PageSettings{
			Format:           p.Format,
			Orientation:      p.Orientation,
			MarginPt:         p.Margin,
			Oversampling:     p.Oversampling,
			ReferenceWidthPx: p.ReferenceWidth,
		}
	}
	return in
}

// buildOptions translates converter-level settings into options.
func buildOptions(cfg *config.Config, logger *zap.Logger) []pagepdf.Option {
	opts := []pagepdf.Option{pagepdf.WithLogger(logger)}

	c := cfg.Capture
	if c.Timeout > 0 {
		opts = append(opts, pagepdf.WithTimeout(c.Timeout))
	}
	if c.FontTimeout > 0 {
		opts = append(opts, pagepdf.WithFontTimeout(c.FontTimeout))
	}
	if c.SettleDelay > 0 {
		opts = append(opts, pagepdf.WithSettleDelay(c.SettleDelay))
	}
	if c.Style != "" {
		opts = append(opts, pagepdf.WithCaptureStyle(c.Style))
	}
	if c.ImageFormat != "" {
		opts = append(opts, pagepdf.WithImageFormat(c.ImageFormat))
	}
	if c.JPEGQuality > 0 {
		opts = append(opts, pagepdf.WithJPEGQuality(c.JPEGQuality))
	}
	if c.AdjustMode == "one-pass" {
		opts = append(opts, pagepdf.WithAdjustMode(pagepdf.AdjustOnePass))
	}
	if c.ShiftBuffer != nil {
		opts = append(opts, pagepdf.WithShiftBuffer(*c.ShiftBuffer))
	}
	if c.MathJaxURL != "" {
		opts = append(opts, pagepdf.WithMathJaxURL(c.MathJaxURL))
	}
	if cfg.Assets.BasePath != "" {
		opts = append(opts, pagepdf.WithAssetPath(cfg.Assets.BasePath))
	}

	if cfg.Remote.Enabled {
		opts = append(opts,
			pagepdf.WithStrategy(pagepdf.StrategyRemote),
			pagepdf.WithRemoteEndpoint(cfg.Remote.Endpoint),
		)
		if cfg.Remote.Timeout > 0 {
			opts = append(opts, pagepdf.WithRemoteTimeout(cfg.Remote.Timeout))
		}
	}
	return opts
}
