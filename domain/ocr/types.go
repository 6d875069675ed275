// Package ocr turns captured stills into readable text.
package ocr

import (
	"context"
	"errors"
	"image"
	"strings"
)

// Mode selects how recognized text is flattened.
type Mode int

const (
	// ModeFlat joins everything into one line with single spaces.
	ModeFlat Mode = iota
	// ModeLines keeps one output line per recognized line.
	ModeLines
)

func (m Mode) String() string {
	if m == ModeLines {
		return "lines"
	}
	return "flat"
}

// ErrNoEngine is returned when a Service is built without an engine.
var ErrNoEngine = errors.New("ocr: no engine configured")

// Line is a single recognized text line.
type Line struct {
	Text string
	Box  image.Rectangle
}

// Block groups lines the engine considers one region of text.
type Block struct {
	Lines []Line
}

// Result is the raw engine output in reported order.
type Result struct {
	Text   string
	Blocks []Block
}

// Flat collapses every whitespace run in the full text to a single space.
func (r Result) Flat() string {
	return strings.Join(strings.Fields(r.Text), " ")
}

// LineText joins line texts with a newline in block then line order.
// Lines that are blank after trimming are skipped.
func (r Result) LineText() string {
	var lines []string
	for _, b := range r.Blocks {
		for _, l := range b.Lines {
			if t := strings.TrimSpace(l.Text); t != "" {
				lines = append(lines, t)
			}
		}
	}
	return strings.Join(lines, "\n")
}

// Engine recognizes text in an image.
type Engine interface {
	Name() string
	Recognize(ctx context.Context, img image.Image) (Result, error)
	Close() error
}

// Outcome is delivered by RecognizeAsync.
type Outcome struct {
	Text string
	OK   bool
}
