package pagepdf

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"image/jpeg"
	"image/png"
	"math"

	"go.uber.org/zap"
	xdraw "golang.org/x/image/draw"
)

// RasterImage is one encoded capture ready for embedding.
type RasterImage struct {
	Data         []byte
	Format       string // ImageFormatJPEG or ImageFormatPNG
	WidthPx      int
	HeightPx     int
	Oversampling float64 // raster px per CSS px after any downscale
}

// LogicalHeightPx is the capture height in CSS px.
func (r RasterImage) LogicalHeightPx() float64 {
	if r.Oversampling <= 0 {
		return float64(r.HeightPx)
	}
	return float64(r.HeightPx) / r.Oversampling
}

// rasterizer captures the detached clone as a bitmap.
type rasterizer struct {
	format      string
	quality     int
	maxHeightPx int
	logger      *zap.Logger
}

// Capture screenshots the container (or one of its elements) while it is
// made visible, then normalizes the bitmap. Visibility is released on every
// path.
func (r rasterizer) Capture(ctx context.Context, s captureSurface, containerID, selector string, index int, oversampling float64) (RasterImage, error) {
	release, err := s.AcquireCaptureVisibility(ctx, containerID)
	if err != nil {
		return RasterImage{}, captureError(err)
	}
	defer func() {
		if err := release(); err != nil {
			r.logger.Warn("releasing capture visibility", zap.String("container", containerID), zap.Error(err))
		}
	}()

	data, err := s.Screenshot(ctx, containerID, selector, index, oversampling)
	if err != nil {
		return RasterImage{}, captureError(err)
	}

	img, err := normalizeRaster(data, oversampling, r.format, r.quality, r.maxHeightPx)
	if err != nil {
		return RasterImage{}, captureError(err)
	}
	if img.Oversampling != oversampling {
		r.logger.Debug("downscaled tall capture",
			zap.Int("height", img.HeightPx),
			zap.Float64("oversampling", img.Oversampling),
		)
	}
	return img, nil
}

// captureError keeps target and cancellation errors intact and classifies
// everything else as a capture failure.
func captureError(err error) error {
	switch {
	case errors.Is(err, ErrCaptureTargetMissing),
		errors.Is(err, ErrCaptureFailure),
		errors.Is(err, context.Canceled),
		errors.Is(err, context.DeadlineExceeded):
		return err
	}
	return fmt.Errorf("%w: %v", ErrCaptureFailure, err)
}

// normalizeRaster flattens a PNG screenshot onto white, bounds its height,
// and encodes it in the requested format. Documents are printed on white,
// so transparency never survives.
func normalizeRaster(data []byte, oversampling float64, format string, quality, maxHeightPx int) (RasterImage, error) {
	src, err := png.Decode(bytes.NewReader(data))
	if err != nil {
		return RasterImage{}, fmt.Errorf("decoding screenshot: %w", err)
	}
	b := src.Bounds()
	if b.Dx() == 0 || b.Dy() == 0 {
		return RasterImage{}, fmt.Errorf("%w: empty screenshot", ErrCaptureFailure)
	}

	var img image.Image = flattenOnWhite(src)

	if maxHeightPx > 0 && b.Dy() > maxHeightPx {
		ratio := float64(maxHeightPx) / float64(b.Dy())
		w := max(1, int(math.Round(float64(b.Dx())*ratio)))
		scaled := image.NewRGBA(image.Rect(0, 0, w, maxHeightPx))
		xdraw.CatmullRom.Scale(scaled, scaled.Bounds(), img, img.Bounds(), xdraw.Src, nil)
		img = scaled
		oversampling *= ratio
	}

	var buf bytes.Buffer
	switch format {
	case ImageFormatPNG:
		err = png.Encode(&buf, img)
	case ImageFormatJPEG, "":
		format = ImageFormatJPEG
		err = jpeg.Encode(&buf, img, &jpeg.Options{Quality: quality})
	default:
		return RasterImage{}, fmt.Errorf("%w: %q", ErrInvalidImageFormat, format)
	}
	if err != nil {
		return RasterImage{}, fmt.Errorf("encoding %s: %w", format, err)
	}

	return RasterImage{
		Data:         buf.Bytes(),
		Format:       format,
		WidthPx:      img.Bounds().Dx(),
		HeightPx:     img.Bounds().Dy(),
		Oversampling: oversampling,
	}, nil
}

func flattenOnWhite(src image.Image) *image.RGBA {
	b := src.Bounds()
	dst := image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	xdraw.Draw(dst, dst.Bounds(), image.White, image.Point{}, xdraw.Src)
	xdraw.Draw(dst, dst.Bounds(), src, b.Min, xdraw.Over)
	return dst
}
