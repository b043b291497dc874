package pagepdf

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"
)

// readinessBarrier holds capture back until typesetting and fonts settle.
type readinessBarrier struct {
	fontTimeout time.Duration
	settleDelay time.Duration
	logger      *zap.Logger
}

// EnsureReady triggers typesetting, waits for fonts, then pauses for
// settleDelay. Typesetting and fonts share one fontTimeout budget; running
// out of it, or a typesetting script error, is logged and capture proceeds.
// Only cancellation of ctx is returned as an error.
// Call it before every capture.
func (b readinessBarrier) EnsureReady(ctx context.Context, s captureSurface) error {
	start := time.Now()
	budget, cancel := context.WithTimeout(ctx, b.fontTimeout)
	defer cancel()

	if err := s.Typeset(budget); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		b.warn("typesetting", err)
	}
	if err := s.FontsReady(budget); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		b.warn("fonts", err)
	}

	if b.settleDelay > 0 {
		t := time.NewTimer(b.settleDelay)
		defer t.Stop()
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-t.C:
		}
	}

	b.logger.Debug("render ready", zap.Duration("elapsed", time.Since(start)))
	return nil
}

func (b readinessBarrier) warn(step string, err error) {
	if errors.Is(err, context.DeadlineExceeded) {
		err = ErrTypesettingTimeout
	}
	b.logger.Warn("proceeding with best-effort rendering",
		zap.String("step", step),
		zap.Duration("timeout", b.fontTimeout),
		zap.Error(err),
	)
}
