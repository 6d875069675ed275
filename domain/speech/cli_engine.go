package speech

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strconv"
	"strings"
)

// defaultWPM is the words-per-minute default shared by espeak-ng and say.
const defaultWPM = 175

// cliEngine speaks by piping text into a command line synthesizer.
type cliEngine struct {
	name   string
	binary string
	args   func(rate float64) []string
}

func (e *cliEngine) Name() string { return e.name }

func (e *cliEngine) Speak(ctx context.Context, text string, rate float64) error {
	cmd := exec.CommandContext(ctx, e.binary, e.args(rate)...)
	cmd.Stdin = strings.NewReader(text)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return fmt.Errorf("%s failed: %w, stderr: %s", e.name, err, strings.TrimSpace(stderr.String()))
	}
	return nil
}

func (e *cliEngine) Close() error { return nil }

func wordsPerMinute(rate float64) string {
	if rate <= 0 {
		rate = 1
	}
	return strconv.Itoa(int(defaultWPM*rate + 0.5))
}

// lookPath finds the first available binary among candidates.
func lookPath(candidates ...string) (string, error) {
	for _, c := range candidates {
		if c == "" {
			continue
		}
		if p, err := exec.LookPath(c); err == nil {
			return p, nil
		}
	}
	return "", fmt.Errorf("%w: none of %v on PATH", ErrUnavailable, candidates)
}

// EspeakEngine drives espeak-ng (or the older espeak).
type EspeakEngine struct {
	cliEngine
}

var _ Engine = (*EspeakEngine)(nil)

// NewEspeakEngine locates espeak-ng or espeak. voice may be empty.
func NewEspeakEngine(voice string) (*EspeakEngine, error) {
	bin, err := lookPath("espeak-ng", "espeak")
	if err != nil {
		return nil, err
	}
	return &EspeakEngine{cliEngine{
		name:   "espeak",
		binary: bin,
		args:   func(rate float64) []string { return espeakArgs(voice, rate) },
	}}, nil
}

func espeakArgs(voice string, rate float64) []string {
	args := []string{"-s", wordsPerMinute(rate)}
	if voice != "" {
		args = append(args, "-v", voice)
	}
	return append(args, "--stdin")
}

// SayEngine drives the macOS say command.
type SayEngine struct {
	cliEngine
}

var _ Engine = (*SayEngine)(nil)

// NewSayEngine locates say. voice may be empty.
func NewSayEngine(voice string) (*SayEngine, error) {
	bin, err := lookPath("say")
	if err != nil {
		return nil, err
	}
	return &SayEngine{cliEngine{
		name:   "say",
		binary: bin,
		args:   func(rate float64) []string { return sayArgs(voice, rate) },
	}}, nil
}

func sayArgs(voice string, rate float64) []string {
	args := []string{"-r", wordsPerMinute(rate)}
	if voice != "" {
		args = append(args, "-v", voice)
	}
	return append(args, "-f", "-")
}
