package pagepdf

import (
	"bytes"
	"fmt"
	"math"
	"strings"

	"codeberg.org/go-pdf/fpdf"
)

// TileEpsilonPt is the leftover height below which no trailing page is added.
const TileEpsilonPt = 0.5

// Tile places the captured image on one output page.
type Tile struct {
	Page          int
	OffsetPt      float64 // vertical image offset inside the content box, <= 0
	VisibleFromPt float64 // image range revealed by the page clip
	VisibleToPt   float64
}

// PlanTiles lays one image of widthPx x heightPx across as many pages as
// its height needs once scaled to the content width. Page i shows the
// image shifted up by i content heights.
func PlanTiles(widthPx, heightPx int, g PageGeometry) []Tile {
	if widthPx <= 0 || heightPx <= 0 {
		return nil
	}
	contentH := g.ContentHeightPt()
	imageHeightPt := float64(heightPx) * g.ContentWidthPt() / float64(widthPx)

	var tiles []Tile
	remaining := imageHeightPt
	for i := 0; ; i++ {
		from := float64(i) * contentH
		tiles = append(tiles, Tile{
			Page:          i,
			OffsetPt:      -from,
			VisibleFromPt: from,
			VisibleToPt:   math.Min(from+contentH, imageHeightPt),
		})
		remaining -= contentH
		if remaining <= TileEpsilonPt {
			break
		}
	}
	return tiles
}

// pdfMeta is written into the document information dictionary.
type pdfMeta struct {
	Title string
}

const pdfCreator = "go-pagepdf"

// newPDF starts a document whose pages match g.
func newPDF(g PageGeometry, meta pdfMeta) *fpdf.Fpdf {
	orientation := "P"
	if g.Landscape() {
		orientation = "L"
	}
	doc := fpdf.NewCustom(&fpdf.InitType{
		OrientationStr: orientation,
		UnitStr:        "pt",
		Size: fpdf.SizeType{
			Wd: math.Min(g.PageWidthPt, g.PageHeightPt),
			Ht: math.Max(g.PageWidthPt, g.PageHeightPt),
		},
	})
	doc.SetMargins(0, 0, 0)
	doc.SetAutoPageBreak(false, 0)
	doc.SetTitle(meta.Title, true)
	doc.SetCreator(pdfCreator, true)
	doc.SetProducer(pdfCreator, true)
	return doc
}

// registerImage adds img to doc once under name.
func registerImage(doc *fpdf.Fpdf, name string, img RasterImage) fpdf.ImageOptions {
	opts := fpdf.ImageOptions{
		ImageType:             fpdfImageType(img.Format),
		AllowNegativePosition: true,
	}
	doc.RegisterImageOptionsReader(name, opts, bytes.NewReader(img.Data))
	return opts
}

func fpdfImageType(format string) string {
	if strings.EqualFold(format, ImageFormatPNG) {
		return "PNG"
	}
	return "JPG"
}

// composeTiled writes the tiled document.
//
// Every page draws the same full image, registered once, shifted up by the
// page's offset and clipped to the content box. The bitmap is never sliced
// or re-encoded, so a page shows exactly its slice of one continuous capture.
func composeTiled(img RasterImage, g PageGeometry, meta pdfMeta) ([]byte, int, error) {
	tiles := PlanTiles(img.WidthPx, img.HeightPx, g)
	if len(tiles) == 0 {
		return nil, 0, fmt.Errorf("%w: empty capture", ErrPDFAssembly)
	}

	doc := newPDF(g, meta)
	const name = "capture"
	opts := registerImage(doc, name, img)

	contentW, contentH := g.ContentWidthPt(), g.ContentHeightPt()
	imageHeightPt := float64(img.HeightPx) * contentW / float64(img.WidthPx)
	for _, t := range tiles {
		doc.AddPage()
		doc.ClipRect(g.MarginPt, g.MarginPt, contentW, contentH, false)
		doc.ImageOptions(name, g.MarginPt, g.MarginPt+t.OffsetPt, contentW, imageHeightPt, false, opts, 0, "")
		doc.ClipEnd()
	}

	return outputPDF(doc)
}

// outputPDF serializes doc, surfacing any error fpdf accumulated.
func outputPDF(doc *fpdf.Fpdf) ([]byte, int, error) {
	if err := doc.Error(); err != nil {
		return nil, 0, fmt.Errorf("%w: %v", ErrPDFAssembly, err)
	}
	pages := doc.PageCount()
	var buf bytes.Buffer
	if err := doc.Output(&buf); err != nil {
		return nil, 0, fmt.Errorf("%w: %v", ErrPDFAssembly, err)
	}
	return buf.Bytes(), pages, nil
}
