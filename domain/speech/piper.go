package speech

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
)

const piperDefaultSampleRate = 22050

// PiperEngine synthesizes with the Piper CLI and plays the audio itself,
// which lets it pause mid-utterance.
type PiperEngine struct {
	binaryPath string
	modelPath  string
	configPath string
	sampleRate int
	player     *PortAudioPlayer
}

var (
	_ Engine = (*PiperEngine)(nil)
	_ Pauser = (*PiperEngine)(nil)
)

// NewPiperEngine checks the binary, model and model config exist.
func NewPiperEngine(binaryPath, modelPath string) (*PiperEngine, error) {
	if binaryPath == "" {
		binaryPath = "piper"
	}
	bin, err := lookPath(binaryPath)
	if err != nil {
		return nil, err
	}
	if modelPath == "" {
		return nil, fmt.Errorf("%w: piper model path is required", ErrUnavailable)
	}
	if _, err := os.Stat(modelPath); err != nil {
		return nil, fmt.Errorf("%w: model file: %v", ErrUnavailable, err)
	}
	configPath := modelPath + ".json"
	rate, err := piperSampleRate(configPath)
	if err != nil {
		return nil, fmt.Errorf("%w: model config: %v", ErrUnavailable, err)
	}
	return &PiperEngine{
		binaryPath: bin,
		modelPath:  modelPath,
		configPath: configPath,
		sampleRate: rate,
		player:     NewPortAudioPlayer(),
	}, nil
}

// piperSampleRate reads audio.sample_rate from a Piper voice config.
func piperSampleRate(path string) (int, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return 0, err
	}
	var cfg struct {
		Audio struct {
			SampleRate int `json:"sample_rate"`
		} `json:"audio"`
	}
	if err := json.Unmarshal(data, &cfg); err != nil {
		return 0, fmt.Errorf("parse %s: %w", path, err)
	}
	if cfg.Audio.SampleRate <= 0 {
		return piperDefaultSampleRate, nil
	}
	return cfg.Audio.SampleRate, nil
}

func (p *PiperEngine) Name() string { return "piper" }

func (p *PiperEngine) Speak(ctx context.Context, text string, rate float64) error {
	pcm, err := p.synthesize(ctx, text, rate)
	if err != nil {
		return err
	}
	if len(pcm) == 0 {
		return errors.New("piper produced no audio")
	}
	return p.player.PlayRaw(ctx, pcm, float64(p.sampleRate))
}

func (p *PiperEngine) synthesize(ctx context.Context, text string, rate float64) ([]byte, error) {
	cmd := exec.CommandContext(ctx, p.binaryPath, piperArgs(p.modelPath, p.configPath, rate)...)
	cmd.Stdin = strings.NewReader(text)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	cmd.Dir = filepath.Dir(p.binaryPath)
	if err := cmd.Run(); err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, fmt.Errorf("piper failed: %w, stderr: %s", err, stderr.String())
	}
	return stdout.Bytes(), nil
}

// piperArgs maps rate onto Piper's length scale, where larger is slower.
func piperArgs(model, config string, rate float64) []string {
	if rate <= 0 {
		rate = 1
	}
	return []string{
		"--model", model,
		"--config", config,
		"--output_raw",
		"--length_scale", strconv.FormatFloat(1/rate, 'f', 3, 64),
	}
}

func (p *PiperEngine) Pause() bool  { return p.player.Pause() }
func (p *PiperEngine) Resume() bool { return p.player.Resume() }

func (p *PiperEngine) Close() error { return nil }
