package pagepdf

import (
	"fmt"
	"path/filepath"
	"strings"
)

// Page format constants.
const (
	PageFormatA4     = "a4"
	PageFormatLetter = "letter"
	PageFormatLegal  = "legal"
	PageFormatA3     = "a3"
	PageFormatA5     = "a5"
)

// Orientation constants.
const (
	OrientationPortrait  = "portrait"
	OrientationLandscape = "landscape"
)

// Layout constants select how the capture target is paginated.
const (
	// LayoutFlow captures the target as one tall image and tiles it.
	LayoutFlow = "flow"
	// LayoutUnits captures every unit separately, one page per unit.
	LayoutUnits = "units"
)

// Margin bounds in points.
const (
	MinMarginPt     = 1.0
	MaxMarginPt     = 200.0
	DefaultMarginPt = 40.0
)

// Oversampling bounds (raster px per CSS px).
const (
	MinOversampling     = 1.0
	MaxOversampling     = 4.0
	DefaultOversampling = 2.0
)

// Reference width bounds in CSS px.
const (
	MinReferenceWidthPx     = 200
	MaxReferenceWidthPx     = 4000
	DefaultReferenceWidthPx = 800
)

// Default selectors.
const (
	DefaultSelector      = "body"
	DefaultBlockSelector = "[data-atomic], .atomic-block"
	DefaultUnitSelector  = "[data-unit], .unit"
	DefaultSuppress      = "[data-narration], .narration"
)

// DefaultFilename is used when PageSettings.Filename is empty.
const DefaultFilename = "document.pdf"

// maxSelectorLength bounds user-provided selectors.
const maxSelectorLength = 512

// PageSettings configures the output page and the capture resolution.
type PageSettings struct {
	Filename         string  // output name offered to the user
	Format           string  // "a4", "letter", "legal", "a3", "a5"
	Orientation      string  // "portrait", "landscape"
	MarginPt         float64 // applied to all sides, 0 = default
	Oversampling     float64 // raster density multiplier
	ReferenceWidthPx int     // authoring width of the content tree
}

// DefaultPageSettings returns page settings with default values.
func DefaultPageSettings() *PageSettings {
	return &PageSettings{
		Filename:         DefaultFilename,
		Format:           PageFormatA4,
		Orientation:      OrientationPortrait,
		MarginPt:         DefaultMarginPt,
		Oversampling:     DefaultOversampling,
		ReferenceWidthPx: DefaultReferenceWidthPx,
	}
}

// Validate checks that page settings are valid.
// Returns nil if p is nil (nil means use defaults). Zero values are
// replaced by defaults before validation, so partial settings are fine.
func (p *PageSettings) Validate() error {
	if p == nil {
		return nil
	}
	r := resolvePage(p)

	if !isValidPageFormat(r.Format) {
		return fmt.Errorf("%w: %q", ErrInvalidPageFormat, p.Format)
	}

	if !isValidOrientation(r.Orientation) {
		return fmt.Errorf("%w: %q", ErrInvalidOrientation, p.Orientation)
	}

	if r.MarginPt < MinMarginPt || r.MarginPt > MaxMarginPt {
		return fmt.Errorf("%w: %.2f (must be between %.0f and %.0f)", ErrInvalidMargin, r.MarginPt, MinMarginPt, MaxMarginPt)
	}

	if r.Oversampling < MinOversampling || r.Oversampling > MaxOversampling {
		return fmt.Errorf("%w: %.2f (must be between %.0f and %.0f)", ErrInvalidOversampling, r.Oversampling, MinOversampling, MaxOversampling)
	}

	if r.ReferenceWidthPx < MinReferenceWidthPx || r.ReferenceWidthPx > MaxReferenceWidthPx {
		return fmt.Errorf("%w: %d (must be between %d and %d)", ErrInvalidReferenceWidth, r.ReferenceWidthPx, MinReferenceWidthPx, MaxReferenceWidthPx)
	}

	return nil
}

// resolvePage fills zero fields with defaults and normalizes case.
func resolvePage(p *PageSettings) PageSettings {
	r := *DefaultPageSettings()
	if p == nil {
		return r
	}
	if p.Filename != "" {
		r.Filename = p.Filename
	}
	if p.Format != "" {
		r.Format = strings.ToLower(p.Format)
	}
	if p.Orientation != "" {
		r.Orientation = strings.ToLower(p.Orientation)
	}
	if p.MarginPt != 0 {
		r.MarginPt = p.MarginPt
	}
	if p.Oversampling != 0 {
		r.Oversampling = p.Oversampling
	}
	if p.ReferenceWidthPx != 0 {
		r.ReferenceWidthPx = p.ReferenceWidthPx
	}
	return r
}

// isValidPageFormat checks if format is a known page format (case-insensitive).
func isValidPageFormat(format string) bool {
	_, ok := pageSizes[strings.ToLower(format)]
	return ok
}

// isValidOrientation checks if orientation is valid (case-insensitive).
func isValidOrientation(orientation string) bool {
	switch strings.ToLower(orientation) {
	case OrientationPortrait, OrientationLandscape:
		return true
	}
	return false
}

// Input describes one pagination job.
type Input struct {
	HTML          string        // full document or fragment (one of HTML/Markdown required)
	Markdown      string        // converted to HTML before loading
	SourceDir     string        // base for relative image paths (optional)
	CSS           string        // extra author CSS (optional)
	Selector      string        // capture target (default: body)
	BlockSelector string        // atomic blocks (default: [data-atomic], .atomic-block)
	UnitSelector  string        // units for LayoutUnits (default: [data-unit], .unit)
	Layout        string        // "flow" (default) or "units"
	Suppress      []string      // hidden during unit captures (default: narration asides)
	Page          *PageSettings // nil = defaults
	HTMLOnly      bool          // stop after building the document (debugging)
}

// Validate checks that the input can be paginated.
//
// This is the trust boundary for library users building Input manually.
// CLI users have their input validated earlier by Config.Validate().
func (in Input) Validate() error {
	if strings.TrimSpace(in.HTML) == "" && strings.TrimSpace(in.Markdown) == "" {
		return ErrEmptyContent
	}
	if in.HTML != "" && in.Markdown != "" {
		return ErrAmbiguousContent
	}
	switch strings.ToLower(in.Layout) {
	case "", LayoutFlow, LayoutUnits:
	default:
		return fmt.Errorf("%w: %q (must be flow or units)", ErrInvalidLayout, in.Layout)
	}
	for _, sel := range append([]string{in.Selector, in.BlockSelector, in.UnitSelector}, in.Suppress...) {
		if err := validateSelector(sel); err != nil {
			return err
		}
	}
	return in.Page.Validate()
}

// validateSelector rejects selectors that could break out of a style rule.
func validateSelector(sel string) error {
	if len(sel) > maxSelectorLength {
		return fmt.Errorf("%w: exceeds %d characters", ErrInvalidSelector, maxSelectorLength)
	}
	if strings.ContainsAny(sel, "{};") {
		return fmt.Errorf("%w: %q", ErrInvalidSelector, sel)
	}
	return nil
}

// resolved returns a copy with defaults applied.
func (in Input) resolved() Input {
	if in.Selector == "" {
		in.Selector = DefaultSelector
	}
	if in.BlockSelector == "" {
		in.BlockSelector = DefaultBlockSelector
	}
	if in.UnitSelector == "" {
		in.UnitSelector = DefaultUnitSelector
	}
	in.Layout = strings.ToLower(in.Layout)
	if in.Layout == "" {
		in.Layout = LayoutFlow
	}
	if in.Suppress == nil {
		in.Suppress = []string{DefaultSuppress}
	}
	return in
}

// Result holds the output of a pagination job.
type Result struct {
	JobID    string
	PDF      []byte
	HTML     []byte  // document loaded into the browser
	Pages    int     // verified page count
	Filename string  // always ends in .pdf
	Strategy string  // renderer that produced PDF
	Shifts   []Shift // block adjustments applied (flow layout only)
}

// pdfFilename ensures name carries a .pdf extension.
func pdfFilename(name string) string {
	if name == "" {
		return DefaultFilename
	}
	name = filepath.Base(name)
	if !strings.EqualFold(filepath.Ext(name), ".pdf") {
		name += ".pdf"
	}
	return name
}
