package pagepdf

import "context"

// captureSurface is the live content tree loaded in a browser page.
// Every method operates on the detached clone identified by containerID,
// except CloneDetached which creates it from the live tree.
type captureSurface interface {
	// Typeset triggers the math typesetting pass and waits for it.
	Typeset(ctx context.Context) error
	// FontsReady waits until the document reports its fonts loaded.
	FontsReady(ctx context.Context) error

	// CloneDetached copies the element matched by selector into a hidden
	// container named containerID of the given width. Returns
	// ErrCaptureTargetMissing if nothing matches.
	CloneDetached(ctx context.Context, selector, containerID string, widthPx int) error
	// RemoveDetached removes the container created by CloneDetached.
	RemoveDetached(ctx context.Context, containerID string) error

	MeasureBlocks(ctx context.Context, containerID, selector string) ([]Block, error)
	ApplyMargins(ctx context.Context, containerID, selector string, shifts []Shift) error
	CountUnits(ctx context.Context, containerID, selector string) (int, error)

	// AcquireCaptureVisibility makes the container capturable until
	// release is called.
	AcquireCaptureVisibility(ctx context.Context, containerID string) (release func() error, err error)
	// ApplyStyleOverride adds a stylesheet for the duration of a capture.
	ApplyStyleOverride(ctx context.Context, css string) (remove func() error, err error)

	// Screenshot captures the container, or its index-th element matching
	// selector when selector is not empty, as PNG at the given density.
	Screenshot(ctx context.Context, containerID, selector string, index int, oversampling float64) ([]byte, error)

	// Close releases the page.
	Close() error
}

// surfaceOpener loads documents into fresh capture surfaces.
type surfaceOpener interface {
	Open(ctx context.Context, document string, viewportWidthPx int) (captureSurface, error)
	Close() error
}
