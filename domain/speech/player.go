package speech

import (
	"context"
	"encoding/binary"
	"fmt"
	"sync"

	"github.com/gordonklaus/portaudio"
)

const playbackBufferSize = 1024

// gate blocks callers while paused.
type gate struct {
	mu     sync.Mutex
	paused bool
	open   chan struct{}
}

func (g *gate) pause() {
	g.mu.Lock()
	defer g.mu.Unlock()
	if !g.paused {
		g.paused = true
		g.open = make(chan struct{})
	}
}

func (g *gate) resume() {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.paused {
		g.paused = false
		close(g.open)
	}
}

func (g *gate) isPaused() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.paused
}

// wait returns once the gate is open or ctx is done.
func (g *gate) wait(ctx context.Context) error {
	g.mu.Lock()
	if !g.paused {
		g.mu.Unlock()
		return nil
	}
	open := g.open
	g.mu.Unlock()
	select {
	case <-open:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// PortAudioPlayer plays mono 16-bit PCM on the default output device and
// can pause between buffers.
type PortAudioPlayer struct {
	mu      sync.Mutex
	playing bool
	gate    gate
}

func NewPortAudioPlayer() *PortAudioPlayer {
	return &PortAudioPlayer{}
}

// Pause holds playback after the current buffer.
func (p *PortAudioPlayer) Pause() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	if !p.playing {
		return false
	}
	p.gate.pause()
	return true
}

// Resume continues from the paused position.
func (p *PortAudioPlayer) Resume() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	if !p.playing || !p.gate.isPaused() {
		return false
	}
	p.gate.resume()
	return true
}

// PlayRaw plays little-endian int16 samples and blocks until done or ctx ends.
func (p *PortAudioPlayer) PlayRaw(ctx context.Context, data []byte, sampleRate float64) error {
	p.mu.Lock()
	if p.playing {
		p.mu.Unlock()
		return fmt.Errorf("already playing")
	}
	p.playing = true
	p.mu.Unlock()
	defer func() {
		p.mu.Lock()
		p.playing = false
		p.gate.resume()
		p.mu.Unlock()
	}()
	return p.playFloat32(ctx, pcm16ToFloat32(data), sampleRate)
}

func (p *PortAudioPlayer) playFloat32(ctx context.Context, samples []float32, sampleRate float64) error {
	if err := portaudio.Initialize(); err != nil {
		return fmt.Errorf("failed to initialize PortAudio: %w", err)
	}
	defer portaudio.Terminate()

	buffer := make([]float32, playbackBufferSize)
	stream, err := portaudio.OpenDefaultStream(0, 1, sampleRate, len(buffer), &buffer)
	if err != nil {
		return fmt.Errorf("failed to open output stream: %w", err)
	}
	defer stream.Close()

	if err := stream.Start(); err != nil {
		return fmt.Errorf("failed to start output stream: %w", err)
	}
	defer stream.Stop()

	for pos := 0; pos < len(samples); pos += len(buffer) {
		if p.gate.isPaused() {
			_ = stream.Stop()
			if err := p.gate.wait(ctx); err != nil {
				return err
			}
			if err := stream.Start(); err != nil {
				return fmt.Errorf("failed to restart output stream: %w", err)
			}
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		fillBuffer(buffer, samples, pos)
		if err := stream.Write(); err != nil {
			return fmt.Errorf("failed to write to stream: %w", err)
		}
	}
	return nil
}

// fillBuffer copies samples[pos:] into buf, padding the tail with silence.
func fillBuffer(buf, samples []float32, pos int) {
	n := 0
	if pos < len(samples) {
		n = copy(buf, samples[pos:])
	}
	for i := n; i < len(buf); i++ {
		buf[i] = 0
	}
}

func pcm16ToFloat32(data []byte) []float32 {
	out := make([]float32, len(data)/2)
	for i := range out {
		s := int16(binary.LittleEndian.Uint16(data[2*i:]))
		out[i] = float32(s) / 32768.0
	}
	return out
}
