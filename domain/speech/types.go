// Package speech reads recognized text aloud.
package speech

import (
	"context"
	"errors"
)

// SlowRate is the fixed speaking rate relative to each engine's default.
const SlowRate = 0.9

// State of a Controller.
type State int

const (
	Idle State = iota
	Speaking
	Paused
)

func (s State) String() string {
	switch s {
	case Speaking:
		return "Speaking"
	case Paused:
		return "Paused"
	default:
		return "Idle"
	}
}

// Listener observes state changes.
type Listener func(State)

// ErrUnavailable is returned when an engine's backing program is missing.
var ErrUnavailable = errors.New("speech: engine unavailable")

// Engine synthesizes and plays text. Speak blocks until the utterance ends
// or ctx is cancelled.
type Engine interface {
	Name() string
	Speak(ctx context.Context, text string, rate float64) error
	Close() error
}

// Pauser is implemented by engines that can hold an utterance in place.
// Both methods report false when nothing is playing.
type Pauser interface {
	Pause() bool
	Resume() bool
}
