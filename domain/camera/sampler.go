package camera

import (
	"log/slog"
	"runtime/debug"
	"sync"
	"sync/atomic"
	"time"
)

const samplerStatsLogInterval = 5 * time.Second

// sampler continuously reads frames from a FrameReader and keeps only the
// newest one. Slow consumers never build a queue: older frames are dropped.
type sampler struct {
	reader   FrameReader
	logger   *slog.Logger
	interval time.Duration

	mu      sync.Mutex
	running bool
	stopCh  chan struct{}
	doneCh  chan struct{}

	latest       atomic.Pointer[FrameSnapshot]
	captures     atomic.Uint64
	skipped      atomic.Uint64
	captureNanos atomic.Uint64
	sequence     atomic.Uint64
}

func newSampler(reader FrameReader, interval time.Duration, logger *slog.Logger) *sampler {
	if interval <= 0 {
		interval = 33 * time.Millisecond
	}
	return &sampler{reader: reader, interval: interval, logger: logger}
}

func (s *sampler) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.running {
		return
	}
	s.running = true
	s.stopCh = make(chan struct{})
	s.doneCh = make(chan struct{})
	go s.loop(s.stopCh, s.doneCh)
}

// Stop halts the loop and waits for the in-progress read to finish.
func (s *sampler) Stop() {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return
	}
	s.running = false
	close(s.stopCh)
	done := s.doneCh
	s.mu.Unlock()
	<-done
}

func (s *sampler) Running() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.running
}

func (s *sampler) LatestFrame() FrameSnapshot {
	snap := s.latest.Load()
	if snap == nil {
		return FrameSnapshot{}
	}
	return *snap
}

func (s *sampler) Stats() Stats {
	captures := s.captures.Load()
	skipped := s.skipped.Load()
	total := s.captureNanos.Load()
	var avg time.Duration
	avgMicros := 0.0
	if captures > 0 && total > 0 {
		avg = time.Duration(total / captures)
		avgMicros = float64(avg) / float64(time.Microsecond)
	}
	snapshot := s.LatestFrame()
	age := time.Duration(0)
	if !snapshot.CapturedAt.IsZero() {
		age = time.Since(snapshot.CapturedAt)
	}
	return Stats{
		Captures:         captures,
		Skipped:          skipped,
		AvgCapture:       avg,
		AvgCaptureMicros: avgMicros,
		LastCapture:      snapshot.CapturedAt,
		LatestFrameAge:   age,
		Sequence:         snapshot.Sequence,
	}
}

func (s *sampler) loop(stop <-chan struct{}, done chan<- struct{}) {
	defer close(done)
	defer func() {
		if r := recover(); r != nil && s.logger != nil {
			s.logger.Error("sampler panic", "error", r, "stack", string(debug.Stack()))
		}
	}()
	logTicker := time.NewTicker(samplerStatsLogInterval)
	defer logTicker.Stop()
	for {
		select {
		case <-stop:
			return
		default:
		}
		start := time.Now()
		img, err := s.reader.ReadFrame()
		if err != nil || img == nil {
			s.skipped.Add(1)
			if err != nil && s.logger != nil {
				s.logger.Debug("frame read", "error", err)
			}
		} else {
			elapsed := time.Since(start)
			s.captureNanos.Add(uint64(elapsed.Nanoseconds()))
			s.captures.Add(1)
			seq := s.sequence.Add(1)
			s.latest.Store(&FrameSnapshot{Image: toRGBA(img), CapturedAt: time.Now(), Sequence: seq})
		}

		select {
		case <-logTicker.C:
			s.logStats()
		default:
		}

		select {
		case <-stop:
			return
		case <-time.After(s.interval):
		}
	}
}

func (s *sampler) logStats() {
	if s.logger == nil {
		return
	}
	stats := s.Stats()
	s.logger.Debug("capture.stats",
		"captures", stats.Captures,
		"skipped", stats.Skipped,
		"avg_capture", stats.AvgCapture,
		"age", stats.LatestFrameAge,
	)
}
