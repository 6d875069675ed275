//go:build unix

package debug

// Memory periodic logger enabled when config.Debug is true.
// Logs peak RSS along with Go heap stats to correlate native vs heap growth.

import (
	"log/slog"
	"runtime"
	"time"

	"golang.org/x/sys/unix"
)

// StartMemLogger launches a goroutine that logs memory stats every interval.
// It is best-effort; failures to query RSS are logged once and suppressed.
func StartMemLogger(interval time.Duration, logger *slog.Logger) {
	if interval <= 0 {
		interval = 2 * time.Second
	}
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		var rssErrLogged bool
		for range ticker.C {
			var ms runtime.MemStats
			runtime.ReadMemStats(&ms)
			var ru unix.Rusage
			rss := int64(0)
			if err := unix.Getrusage(unix.RUSAGE_SELF, &ru); err == nil {
				rss = maxRSSBytes(int64(ru.Maxrss))
			} else if !rssErrLogged {
				logger.Warn("memlog: getrusage failed", slog.String("err", err.Error()))
				rssErrLogged = true
			}
			logger.Info("memstats",
				slog.Int("goroutines", runtime.NumGoroutine()),
				slog.Uint64("heap_alloc", ms.HeapAlloc),
				slog.Uint64("heap_inuse", ms.HeapInuse),
				slog.Uint64("heap_idle", ms.HeapIdle),
				slog.Uint64("heap_sys", ms.HeapSys),
				slog.Uint64("next_gc", ms.NextGC),
				slog.Int64("max_rss", rss),
				slog.Uint64("num_gc", uint64(ms.NumGC)),
			)
		}
	}()
}

// maxRSSBytes normalizes ru_maxrss, reported in kilobytes on Linux and bytes on darwin.
func maxRSSBytes(v int64) int64 {
	if runtime.GOOS == "darwin" {
		return v
	}
	return v * 1024
}
