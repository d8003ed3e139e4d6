// Package debug holds periodic runtime loggers started when config.Debug is set.
package debug

import (
	"context"
	"log/slog"
	"runtime"
	"runtime/metrics"
	"time"

	"github.com/dustin/go-humanize"
)

// StartGoroutineLogger logs goroutine count and stack memory every interval
// until ctx is cancelled. Leaked render workers show up here as a count that
// keeps growing across overlay activations.
func StartGoroutineLogger(ctx context.Context, interval time.Duration, logger *slog.Logger) {
	if interval <= 0 {
		interval = time.Second
	}
	go func() {
		t := time.NewTicker(interval)
		defer t.Stop()
		samples := []metrics.Sample{{Name: "/sched/goroutines:goroutines"}}
		for {
			select {
			case <-ctx.Done():
				return
			case <-t.C:
			}
			metrics.Read(samples)
			var goroutines uint64
			if samples[0].Value.Kind() == metrics.KindUint64 {
				goroutines = samples[0].Value.Uint64()
			}
			var ms runtime.MemStats
			runtime.ReadMemStats(&ms)
			logger.Debug("goroutine-stacks",
				slog.Uint64("goroutines", goroutines),
				slog.String("stack_inuse", humanize.IBytes(ms.StackInuse)),
				slog.String("stack_sys", humanize.IBytes(ms.StackSys)),
			)
		}
	}()
}

// runMemLogger drives StartMemLogger; rss is platform specific and may fail.
func runMemLogger(ctx context.Context, interval time.Duration, logger *slog.Logger, rss func() (uint64, error)) {
	if interval <= 0 {
		interval = 2 * time.Second
	}
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		var rssErrLogged bool
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
			}
			attrs := memAttrs()
			if rss != nil {
				v, err := rss()
				if err == nil {
					attrs = append(attrs, slog.String("rss", humanize.IBytes(v)))
				} else if !rssErrLogged {
					logger.Warn("memlog: rss query failed", "error", err)
					rssErrLogged = true
				}
			}
			logger.Debug("memstats", attrs...)
		}
	}()
}

// memAttrs snapshots Go heap statistics. Native OpenCV allocations are only
// visible through rss.
func memAttrs() []any {
	var ms runtime.MemStats
	runtime.ReadMemStats(&ms)
	return []any{
		slog.Int("goroutines", runtime.NumGoroutine()),
		slog.String("heap_alloc", humanize.IBytes(ms.HeapAlloc)),
		slog.String("heap_inuse", humanize.IBytes(ms.HeapInuse)),
		slog.String("heap_sys", humanize.IBytes(ms.HeapSys)),
		slog.String("next_gc", humanize.IBytes(ms.NextGC)),
		slog.Uint64("num_gc", uint64(ms.NumGC)),
	}
}
