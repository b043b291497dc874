package pagepdf

import (
	"fmt"
	"math"
	"strings"
)

// PageSize is a physical page in points, portrait orientation.
type PageSize struct {
	WidthPt  float64
	HeightPt float64
}

var pageSizes = map[string]PageSize{
	PageFormatA4:     {595.28, 841.89},
	PageFormatLetter: {612, 792},
	PageFormatLegal:  {612, 1008},
	PageFormatA3:     {841.89, 1190.55},
	PageFormatA5:     {419.53, 595.28},
}

// ResolvePageSize maps a named format to its size, swapping the sides
// for landscape.
func ResolvePageSize(format, orientation string) (PageSize, error) {
	size, ok := pageSizes[strings.ToLower(format)]
	if !ok {
		return PageSize{}, fmt.Errorf("%w: %q", ErrInvalidPageFormat, format)
	}
	switch strings.ToLower(orientation) {
	case "", OrientationPortrait:
		return size, nil
	case OrientationLandscape:
		return PageSize{WidthPt: size.HeightPt, HeightPt: size.WidthPt}, nil
	default:
		return PageSize{}, fmt.Errorf("%w: %q", ErrInvalidOrientation, orientation)
	}
}

// PageGeometry maps CSS px of the content tree onto PDF points.
// It is computed once per job and never mutated.
type PageGeometry struct {
	PageWidthPt       float64
	PageHeightPt      float64
	MarginPt          float64
	ReferenceWidthPx  float64
	Scale             float64 // points per CSS px
	LogicalPageHeight float64 // printable height in CSS px
}

// ComputeGeometry derives the scale and the logical page height. It is a
// pure function of its arguments.
func ComputeGeometry(widthPt, heightPt, marginPt, referenceWidthPx float64) (PageGeometry, error) {
	for _, v := range []float64{widthPt, heightPt, marginPt, referenceWidthPx} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return PageGeometry{}, fmt.Errorf("%w: non-finite input", ErrInvalidGeometry)
		}
	}
	switch {
	case widthPt <= 0 || heightPt <= 0:
		return PageGeometry{}, fmt.Errorf("%w: page size %.2fx%.2f must be positive", ErrInvalidGeometry, widthPt, heightPt)
	case marginPt < 0:
		return PageGeometry{}, fmt.Errorf("%w: margin %.2f must not be negative", ErrInvalidGeometry, marginPt)
	case 2*marginPt >= widthPt || 2*marginPt >= heightPt:
		return PageGeometry{}, fmt.Errorf("%w: margin %.2f leaves no content area on %.2fx%.2f", ErrInvalidGeometry, marginPt, widthPt, heightPt)
	case referenceWidthPx <= 0:
		return PageGeometry{}, fmt.Errorf("%w: reference width %.2f must be positive", ErrInvalidGeometry, referenceWidthPx)
	}

	scale := (widthPt - 2*marginPt) / referenceWidthPx
	return PageGeometry{
		PageWidthPt:       widthPt,
		PageHeightPt:      heightPt,
		MarginPt:          marginPt,
		ReferenceWidthPx:  referenceWidthPx,
		Scale:             scale,
		LogicalPageHeight: (heightPt - 2*marginPt) / scale,
	}, nil
}

// geometryFor resolves page settings into a geometry.
func geometryFor(p PageSettings) (PageGeometry, error) {
	size, err := ResolvePageSize(p.Format, p.Orientation)
	if err != nil {
		return PageGeometry{}, err
	}
	return ComputeGeometry(size.WidthPt, size.HeightPt, p.MarginPt, float64(p.ReferenceWidthPx))
}

// ContentWidthPt is the page width inside the margins.
func (g PageGeometry) ContentWidthPt() float64 {
	return g.PageWidthPt - 2*g.MarginPt
}

// ContentHeightPt is the page height inside the margins.
func (g PageGeometry) ContentHeightPt() float64 {
	return g.PageHeightPt - 2*g.MarginPt
}

// Landscape reports whether the page is wider than tall.
func (g PageGeometry) Landscape() bool {
	return g.PageWidthPt > g.PageHeightPt
}
