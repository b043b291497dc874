package main

import (
	"context"
	"errors"
	"os"
	"strings"

	pagepdf "github.com/alnah/go-pagepdf"
	"github.com/alnah/go-pagepdf/internal/assets"
	"github.com/alnah/go-pagepdf/internal/config"
	"github.com/alnah/go-pagepdf/internal/hints"
)

// Exit codes for the pagepdf CLI.
// Follows Unix conventions: 0=success, 1=general, 2=usage, and custom codes < 126.
const (
	ExitSuccess = 0 // Successful conversion
	ExitGeneral = 1 // General/unexpected error
	ExitUsage   = 2 // Invalid flags, config, or validation
	ExitIO      = 3 // File not found, permission denied
	ExitBrowser = 4 // Browser/Chrome errors
	ExitRemote  = 5 // Rendering service errors
)

// exitCodeFor returns the appropriate exit code for an error.
// It uses errors.Is to check wrapped errors, so callers must use fmt.Errorf("%w", err).
func exitCodeFor(err error) int {
	if err == nil {
		return ExitSuccess
	}

	if errors.Is(err, pagepdf.ErrRemoteRenderFailure) {
		return ExitRemote
	}

	if errors.Is(err, pagepdf.ErrBrowserConnect) ||
		errors.Is(err, pagepdf.ErrPageCreate) ||
		errors.Is(err, pagepdf.ErrPageLoad) ||
		errors.Is(err, pagepdf.ErrCaptureFailure) {
		return ExitBrowser
	}

	if errors.Is(err, os.ErrNotExist) ||
		errors.Is(err, os.ErrPermission) ||
		errors.Is(err, ErrReadInput) ||
		errors.Is(err, ErrReadCSS) ||
		errors.Is(err, ErrWriteOutput) ||
		errors.Is(err, ErrNoInput) {
		return ExitIO
	}

	if errors.Is(err, config.ErrConfigNotFound) ||
		errors.Is(err, config.ErrEmptyConfigName) ||
		errors.Is(err, config.ErrConfigParse) ||
		errors.Is(err, config.ErrFieldTooLong) ||
		errors.Is(err, config.ErrInvalidValue) ||
		errors.Is(err, pagepdf.ErrEmptyContent) ||
		errors.Is(err, pagepdf.ErrInvalidPageFormat) ||
		errors.Is(err, pagepdf.ErrInvalidOrientation) ||
		errors.Is(err, pagepdf.ErrInvalidMargin) ||
		errors.Is(err, pagepdf.ErrInvalidOversampling) ||
		errors.Is(err, pagepdf.ErrInvalidReferenceWidth) ||
		errors.Is(err, pagepdf.ErrInvalidLayout) ||
		errors.Is(err, pagepdf.ErrInvalidSelector) ||
		errors.Is(err, pagepdf.ErrInvalidStrategy) ||
		errors.Is(err, pagepdf.ErrInvalidImageFormat) ||
		errors.Is(err, pagepdf.ErrMissingRemoteEndpoint) ||
		errors.Is(err, pagepdf.ErrInvalidAssetPath) ||
		errors.Is(err, ErrInvalidExtension) ||
		errors.Is(err, ErrInvalidWorkerCount) ||
		errors.Is(err, ErrUsage) {
		return ExitUsage
	}

	return ExitGeneral
}

// messageFor returns the line shown to the user for err. Usage and I/O
// errors are printed as is since they name the flag or path at fault;
// conversion failures are reduced to pagepdf.UserMessage.
func messageFor(err error) string {
	var batch *batchError
	if errors.As(err, &batch) {
		return batch.Error()
	}
	if errors.Is(err, context.Canceled) {
		return "canceled"
	}
	switch exitCodeFor(err) {
	case ExitUsage, ExitIO:
		return err.Error()
	}
	return pagepdf.UserMessage(err)
}

// hintFor returns an actionable hint for err, or "". configName is the
// --config value; cfg supplies the selectors in effect and may be nil.
func hintFor(err error, configName string, cfg *config.Config) string {
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	var batch *batchError
	switch {
	case errors.As(err, &batch):
		return "" // printed per file

	case errors.Is(err, config.ErrConfigNotFound):
		var searched []string
		if configName != "" && !strings.ContainsAny(configName, "/\\") {
			searched = config.SearchPaths(configName)
		}
		return hints.ForConfigNotFound(searched)
	case errors.Is(err, pagepdf.ErrBrowserConnect):
		return hints.ForBrowserConnect()
	case errors.Is(err, pagepdf.ErrMissingRemoteEndpoint):
		return hints.ForRemoteEndpoint()
	case errors.Is(err, pagepdf.ErrCaptureTargetMissing):
		return hints.ForCaptureTarget(orDefault(cfg.Capture.Selector, pagepdf.DefaultSelector))
	case errors.Is(err, pagepdf.ErrNoUnits):
		return hints.ForNoUnits(orDefault(cfg.Layout.UnitSelector, pagepdf.DefaultUnitSelector))
	case errors.Is(err, ErrCreateOutputDir):
		return hints.ForOutputDirectory()
	case errors.Is(err, assets.ErrStyleNotFound):
		return hints.ForStyleNotFound(assets.EmbeddedStyles())
	case errors.Is(err, context.DeadlineExceeded):
		return hints.ForTimeout()
	}
	return ""
}

func orDefault(v, def string) string {
	if v == "" {
		return def
	}
	return v
}
