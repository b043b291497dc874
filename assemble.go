package pagepdf

import (
	"context"
	"fmt"

	"go.uber.org/zap"
)

// unitJob holds what assembleUnits needs from the converter.
type unitJob struct {
	containerID  string
	unitSelector string
	suppress     []string
	oversampling float64
	geometry     PageGeometry
	meta         pdfMeta
}

// assembleUnits captures every unit in the container separately and emits
// one page per unit. Narration-only elements are hidden by a temporary
// stylesheet for the duration of the captures, never removed from the tree.
func assembleUnits(ctx context.Context, s captureSurface, job unitJob, barrier readinessBarrier, raster rasterizer, logger *zap.Logger) ([]byte, int, error) {
	n, err := s.CountUnits(ctx, job.containerID, job.unitSelector)
	if err != nil {
		return nil, 0, err
	}
	if n == 0 {
		return nil, 0, fmt.Errorf("%w: selector %q", ErrNoUnits, job.unitSelector)
	}

	if css := buildSuppressCSS(job.containerID, job.suppress); css != "" {
		remove, err := s.ApplyStyleOverride(ctx, css)
		if err != nil {
			return nil, 0, captureError(err)
		}
		defer func() {
			if err := remove(); err != nil {
				logger.Warn("removing capture style override", zap.Error(err))
			}
		}()
	}

	images := make([]RasterImage, 0, n)
	for i := range n {
		if err := barrier.EnsureReady(ctx, s); err != nil {
			return nil, 0, err
		}
		img, err := raster.Capture(ctx, s, job.containerID, job.unitSelector, i, job.oversampling)
		if err != nil {
			return nil, 0, fmt.Errorf("unit %d: %w", i+1, err)
		}
		images = append(images, img)
		logger.Debug("captured unit",
			zap.Int("unit", i+1),
			zap.Int("of", n),
			zap.Int("width", img.WidthPx),
			zap.Int("height", img.HeightPx),
		)
	}

	return composeUnits(images, job.geometry, job.meta)
}

// composeUnits writes one page per image, each fitted into the content box.
func composeUnits(images []RasterImage, g PageGeometry, meta pdfMeta) ([]byte, int, error) {
	if len(images) == 0 {
		return nil, 0, ErrNoUnits
	}

	doc := newPDF(g, meta)
	for i, img := range images {
		if img.WidthPx <= 0 || img.HeightPx <= 0 {
			return nil, 0, fmt.Errorf("%w: unit %d has an empty capture", ErrPDFAssembly, i+1)
		}
		name := fmt.Sprintf("unit-%d", i)
		opts := registerImage(doc, name, img)
		x, y, w, h := fitRect(float64(img.WidthPx), float64(img.HeightPx), g.MarginPt, g.MarginPt, g.ContentWidthPt(), g.ContentHeightPt())
		doc.AddPage()
		doc.ImageOptions(name, x, y, w, h, false, opts, 0, "")
	}
	return outputPDF(doc)
}

// fitRect scales a w x h image to fit the box, keeping its aspect ratio,
// and centers it.
func fitRect(w, h, boxX, boxY, boxW, boxH float64) (x, y, fw, fh float64) {
	scale := min(boxW/w, boxH/h)
	fw, fh = w*scale, h*scale
	return boxX + (boxW-fw)/2, boxY + (boxH-fh)/2, fw, fh
}
