package pagepdf

import (
	"errors"
	"fmt"
)

// Sentinel errors for pagination jobs.
var (
	ErrEmptyContent         = errors.New("content cannot be empty")
	ErrAmbiguousContent     = errors.New("only one of HTML or Markdown may be set")
	ErrHTMLConversion       = errors.New("HTML conversion failed")
	ErrBrowserConnect       = errors.New("failed to connect to browser")
	ErrPageCreate           = errors.New("failed to create browser page")
	ErrPageLoad             = errors.New("failed to load page")
	ErrCaptureTargetMissing = errors.New("capture target not found or not attached")
	ErrCaptureFailure       = errors.New("capture failed")
	ErrNoUnits              = errors.New("no units found in capture target")
	ErrPDFAssembly          = errors.New("PDF assembly failed")
	ErrIncompletePagination = errors.New("PDF is not fully paginated")
	ErrRemoteRenderFailure  = errors.New("remote rendering failed")

	// ErrTypesettingTimeout is never returned by Convert. It is logged when
	// typesetting or fonts did not settle in time and capture proceeds anyway.
	ErrTypesettingTimeout = errors.New("typesetting did not settle before timeout")

	// Page settings validation errors.
	ErrInvalidPageFormat      = errors.New("invalid page format")
	ErrInvalidOrientation     = errors.New("invalid orientation")
	ErrInvalidMargin          = errors.New("invalid margin")
	ErrInvalidOversampling    = errors.New("invalid oversampling")
	ErrInvalidReferenceWidth  = errors.New("invalid reference width")
	ErrInvalidGeometry        = errors.New("invalid page geometry")
	ErrInvalidLayout          = errors.New("invalid layout")
	ErrInvalidStrategy        = errors.New("invalid rendering strategy")
	ErrInvalidImageFormat     = errors.New("invalid image format")
	ErrInvalidSelector        = errors.New("invalid selector")
	ErrMissingRemoteEndpoint  = errors.New("remote strategy requires an endpoint")
	ErrInvalidAssetPath       = errors.New("invalid asset path")
	ErrCaptureScriptNotLoaded = errors.New("capture script not found")
)

// RemoteRenderError carries the upstream response of a failed remote render.
type RemoteRenderError struct {
	StatusCode int
	Body       string
}

func (e *RemoteRenderError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("%s: status %d", ErrRemoteRenderFailure, e.StatusCode)
	}
	return fmt.Sprintf("%s: status %d: %s", ErrRemoteRenderFailure, e.StatusCode, e.Body)
}

// Unwrap lets errors.Is match ErrRemoteRenderFailure.
func (e *RemoteRenderError) Unwrap() error {
	return ErrRemoteRenderFailure
}

// UserMessage converts a job error into the single line shown to end users.
// Remote failures keep the upstream body verbatim.
func UserMessage(err error) string {
	if err == nil {
		return ""
	}

	var remote *RemoteRenderError
	switch {
	case errors.As(err, &remote):
		if remote.Body != "" {
			return fmt.Sprintf("could not generate document: rendering service returned %d: %s", remote.StatusCode, remote.Body)
		}
		return fmt.Sprintf("could not generate document: rendering service returned %d", remote.StatusCode)
	case errors.Is(err, ErrCaptureTargetMissing):
		return "could not generate document: the content to export was not found"
	case errors.Is(err, ErrNoUnits):
		return "could not generate document: no pages were found to export"
	case errors.Is(err, ErrBrowserConnect):
		return "could not generate document: the browser could not be started"
	case errors.Is(err, ErrEmptyContent):
		return "could not generate document: there is nothing to export"
	default:
		return "could not generate document"
	}
}
