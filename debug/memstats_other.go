//go:build !windows

package debug

import (
	"context"
	"log/slog"
	"time"
)

// StartMemLogger logs heap statistics every interval. Working set is not
// reported on this platform.
func StartMemLogger(ctx context.Context, interval time.Duration, logger *slog.Logger) {
	runMemLogger(ctx, interval, logger, nil)
}
