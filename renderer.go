package pagepdf

import (
	"context"
	"fmt"

	"go.uber.org/zap"
)

// Compile-time interface checks.
var (
	_ PdfRenderer = (*LocalTiledRenderer)(nil)
	_ PdfRenderer = (*RemoteServiceRenderer)(nil)
)

// PdfRenderer turns a prepared document into PDF bytes.
type PdfRenderer interface {
	Render(ctx context.Context, req RenderRequest) (*RenderResult, error)
	Close() error
}

// RenderRequest is one job handed to a PdfRenderer.
type RenderRequest struct {
	JobID    string
	Document string // full HTML document
	Input    Input  // resolved; selectors and layout are set
	Page     PageSettings
	Geometry PageGeometry
}

// containerID names the detached clone for this job.
func (r RenderRequest) containerID() string {
	return "pagepdf-" + r.JobID
}

func (r RenderRequest) meta() pdfMeta {
	return pdfMeta{Title: r.Page.Filename}
}

// RenderResult is the raw output of a renderer.
type RenderResult struct {
	PDF    []byte
	Pages  int     // 0 when the renderer cannot tell
	Shifts []Shift // flow layout only
}

// LocalTiledRenderer captures the content tree in a headless browser and
// composes the PDF from the bitmap.
type LocalTiledRenderer struct {
	opener    surfaceOpener
	barrier   readinessBarrier
	raster    rasterizer
	adjust    AdjustOptions
	maxPasses int
	logger    *zap.Logger
}

func newLocalTiledRenderer(opener surfaceOpener, cfg converterConfig, logger *zap.Logger) *LocalTiledRenderer {
	return &LocalTiledRenderer{
		opener: opener,
		barrier: readinessBarrier{
			fontTimeout: cfg.fontTimeout,
			settleDelay: cfg.settleDelay,
			logger:      logger,
		},
		raster: rasterizer{
			format:      cfg.imageFormat,
			quality:     cfg.jpegQuality,
			maxHeightPx: cfg.maxRasterHeight,
			logger:      logger,
		},
		adjust:    cfg.adjust,
		maxPasses: cfg.maxPasses,
		logger:    logger,
	}
}

// Render loads the document, clones the capture target at the reference
// width and paginates it according to req.Input.Layout. The page, the
// detached clone and any style override are released on every path.
func (r *LocalTiledRenderer) Render(ctx context.Context, req RenderRequest) (res *RenderResult, err error) {
	s, err := r.opener.Open(ctx, req.Document, req.Page.ReferenceWidthPx)
	if err != nil {
		return nil, err
	}
	defer func() {
		if cerr := s.Close(); cerr != nil {
			r.logger.Warn("closing capture page", zap.String("job", req.JobID), zap.Error(cerr))
		}
	}()

	if err := r.barrier.EnsureReady(ctx, s); err != nil {
		return nil, err
	}

	id := req.containerID()
	if err := s.CloneDetached(ctx, req.Input.Selector, id, req.Page.ReferenceWidthPx); err != nil {
		return nil, err
	}
	defer func() {
		if rerr := s.RemoveDetached(ctx, id); rerr != nil {
			r.logger.Warn("removing detached clone", zap.String("job", req.JobID), zap.Error(rerr))
		}
	}()

	if req.Input.Layout == LayoutUnits {
		job := unitJob{
			containerID:  id,
			unitSelector: req.Input.UnitSelector,
			suppress:     req.Input.Suppress,
			oversampling: req.Page.Oversampling,
			geometry:     req.Geometry,
			meta:         req.meta(),
		}
		pdf, pages, err := assembleUnits(ctx, s, job, r.barrier, r.raster, r.logger)
		if err != nil {
			return nil, err
		}
		return &RenderResult{PDF: pdf, Pages: pages}, nil
	}

	return r.renderFlow(ctx, s, req, id)
}

func (r *LocalTiledRenderer) renderFlow(ctx context.Context, s captureSurface, req RenderRequest, id string) (*RenderResult, error) {
	shifts, err := adjustContainer(ctx, s, id, req.Input.BlockSelector,
		req.Geometry.LogicalPageHeight, r.adjust, r.maxPasses, r.logger)
	if err != nil {
		return nil, err
	}

	// Shifted margins may reflow text or change font fallback.
	if err := r.barrier.EnsureReady(ctx, s); err != nil {
		return nil, err
	}

	img, err := r.raster.Capture(ctx, s, id, "", 0, req.Page.Oversampling)
	if err != nil {
		return nil, err
	}
	r.logger.Debug("captured content",
		zap.String("job", req.JobID),
		zap.Int("width", img.WidthPx),
		zap.Int("height", img.HeightPx),
		zap.Float64("heightCSSPx", img.LogicalHeightPx()),
		zap.Int("shifts", len(shifts)),
	)

	pdf, pages, err := composeTiled(img, req.Geometry, req.meta())
	if err != nil {
		return nil, err
	}
	return &RenderResult{PDF: pdf, Pages: pages, Shifts: shifts}, nil
}

// Close shuts the browser down.
func (r *LocalTiledRenderer) Close() error {
	if r.opener == nil {
		return nil
	}
	if err := r.opener.Close(); err != nil {
		return fmt.Errorf("closing browser: %w", err)
	}
	return nil
}
