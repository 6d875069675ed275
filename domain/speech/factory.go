package speech

import "fmt"

// EngineConfig names an engine and its optional settings.
type EngineConfig struct {
	Engine      string
	Voice       string
	PiperBinary string
	PiperModel  string
}

// NewEngine builds the configured engine.
func NewEngine(cfg EngineConfig) (Engine, error) {
	switch cfg.Engine {
	case "espeak", "":
		return NewEspeakEngine(cfg.Voice)
	case "say":
		return NewSayEngine(cfg.Voice)
	case "piper":
		return NewPiperEngine(cfg.PiperBinary, cfg.PiperModel)
	default:
		return nil, fmt.Errorf("unknown speech engine %q", cfg.Engine)
	}
}
