package debug

// Runtime metrics logger for --debug runs. Tracks goroutine count and stack
// usage so leaked camera samplers or speech sessions show up as steady growth.

import (
	"log/slog"
	"runtime"
	"runtime/metrics"
	"time"
)

var goroutineSamples = []string{
	"/sched/goroutines:goroutines",
	"/memory/classes/heap/stacks:bytes",
}

// StartGoroutineLogger logs goroutine and stack metrics every interval.
func StartGoroutineLogger(interval time.Duration, logger *slog.Logger) {
	if interval <= 0 {
		interval = time.Second
	}
	go func() {
		t := time.NewTicker(interval)
		defer t.Stop()
		samples := make([]metrics.Sample, len(goroutineSamples))
		for i, name := range goroutineSamples {
			samples[i].Name = name
		}
		for range t.C {
			metrics.Read(samples)
			logger.Info("debug.goroutines",
				slog.Uint64("goroutines", sampleUint(samples[0])),
				slog.Uint64("stack_bytes", sampleUint(samples[1])),
				slog.Int("gomaxprocs", runtime.GOMAXPROCS(0)),
			)
		}
	}()
}

// sampleUint reads a uint64 metric, reporting 0 for unsupported names.
func sampleUint(s metrics.Sample) uint64 {
	if s.Value.Kind() != metrics.KindUint64 {
		return 0
	}
	return s.Value.Uint64()
}
