package ocr

import (
	"context"
	"fmt"
	"image"
	"log/slog"
	"runtime/debug"
	"time"
)

// Service wraps an Engine and reduces its output to "text or nothing".
// Failures are logged, never surfaced to callers.
type Service struct {
	engine     Engine
	preprocess bool
	logger     *slog.Logger
}

// Option customises a Service.
type Option func(*Service)

// WithPreprocess enables grayscale/contrast/sharpen before recognition.
func WithPreprocess(on bool) Option { return func(s *Service) { s.preprocess = on } }

// NewService builds a Service around engine.
func NewService(engine Engine, logger *slog.Logger, opts ...Option) *Service {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	s := &Service{engine: engine, logger: logger}
	for _, o := range opts {
		o(s)
	}
	return s
}

// Text returns the whole text flattened onto one line.
func (s *Service) Text(ctx context.Context, img image.Image) (string, bool) {
	return s.Recognize(ctx, img, ModeFlat)
}

// Lines returns recognized lines joined by newlines in reported order.
func (s *Service) Lines(ctx context.Context, img image.Image) (string, bool) {
	return s.Recognize(ctx, img, ModeLines)
}

// Recognize runs the engine once. Blank output and errors both report false.
func (s *Service) Recognize(ctx context.Context, img image.Image, mode Mode) (text string, ok bool) {
	defer func() {
		if r := recover(); r != nil {
			s.logger.Error("ocr.panic", "panic", r, "stack", string(debug.Stack()))
			text, ok = "", false
		}
	}()
	if s.engine == nil {
		s.logger.Warn("ocr.failed", "error", ErrNoEngine)
		return "", false
	}
	if img == nil {
		return "", false
	}
	if s.preprocess {
		img = Preprocess(img)
	}
	start := time.Now()
	res, err := s.engine.Recognize(ctx, img)
	if err != nil {
		s.logger.Warn("ocr.failed", "engine", s.engine.Name(), "mode", mode.String(), "error", err)
		return "", false
	}
	switch mode {
	case ModeLines:
		text = res.LineText()
	default:
		text = res.Flat()
	}
	s.logger.Debug("ocr.done",
		"engine", s.engine.Name(),
		"mode", mode.String(),
		"chars", len(text),
		"blocks", len(res.Blocks),
		"elapsed", time.Since(start).String(),
	)
	if text == "" {
		return "", false
	}
	return text, true
}

// RecognizeAsync runs Recognize on its own goroutine. The channel yields
// exactly one Outcome and is then closed.
func (s *Service) RecognizeAsync(ctx context.Context, img image.Image, mode Mode) <-chan Outcome {
	out := make(chan Outcome, 1)
	go func() {
		defer close(out)
		text, ok := s.Recognize(ctx, img, mode)
		out <- Outcome{Text: text, OK: ok}
	}()
	return out
}

// Close releases the engine.
func (s *Service) Close() error {
	if s.engine == nil {
		return nil
	}
	if err := s.engine.Close(); err != nil {
		return fmt.Errorf("close %s: %w", s.engine.Name(), err)
	}
	return nil
}
