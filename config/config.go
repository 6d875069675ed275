package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"
)

// Camera source identifiers.
const (
	SourceWebcam = "webcam"
	SourceScreen = "screen"
	SourceFile   = "file"
)

// OCR engine identifiers.
const (
	OCRTesseract = "tesseract"
	OCRVision    = "vision"
)

// Speech engine identifiers.
const (
	SpeechEspeak = "espeak"
	SpeechSay    = "say"
	SpeechPiper  = "piper"
)

// Preference backend identifiers.
const (
	PrefsFile   = "file"
	PrefsSQLite = "sqlite"
)

// Config holds runtime configuration for the magnifier.
// Fields may be loaded from a JSON, TOML or YAML file and overridden by command-line flags.
type Config struct {
	Debug     bool   `json:"debug" toml:"debug" yaml:"debug"`
	LogFormat string `json:"log_format" toml:"log_format" yaml:"log_format"`

	Window      WindowConfig      `json:"window" toml:"window" yaml:"window"`
	Camera      CameraConfig      `json:"camera" toml:"camera" yaml:"camera"`
	Review      ReviewConfig      `json:"review" toml:"review" yaml:"review"`
	OCR         OCRConfig         `json:"ocr" toml:"ocr" yaml:"ocr"`
	Speech      SpeechConfig      `json:"speech" toml:"speech" yaml:"speech"`
	Preferences PreferencesConfig `json:"preferences" toml:"preferences" yaml:"preferences"`
}

// WindowConfig sizes the main window.
type WindowConfig struct {
	Width  int `json:"width" toml:"width" yaml:"width"`
	Height int `json:"height" toml:"height" yaml:"height"`
}

// CameraConfig selects and tunes the capture device.
type CameraConfig struct {
	Source   string `json:"source" toml:"source" yaml:"source"`
	DeviceID int    `json:"device_id" toml:"device_id" yaml:"device_id"`
	Width    int    `json:"width" toml:"width" yaml:"width"`
	Height   int    `json:"height" toml:"height" yaml:"height"`
	FPS      int    `json:"fps" toml:"fps" yaml:"fps"`
	// SensorRotation is applied to every captured still (0, 90, 180 or 270).
	SensorRotation int `json:"sensor_rotation" toml:"sensor_rotation" yaml:"sensor_rotation"`

	// Screen rectangle used when Source is "screen". Zero width/height means full screen.
	ScreenX int `json:"screen_x" toml:"screen_x" yaml:"screen_x"`
	ScreenY int `json:"screen_y" toml:"screen_y" yaml:"screen_y"`
	ScreenW int `json:"screen_w" toml:"screen_w" yaml:"screen_w"`
	ScreenH int `json:"screen_h" toml:"screen_h" yaml:"screen_h"`

	// FilePath is the still image used when Source is "file".
	FilePath string `json:"file_path" toml:"file_path" yaml:"file_path"`

	PreviewMaxZoom     float64 `json:"preview_max_zoom" toml:"preview_max_zoom" yaml:"preview_max_zoom"`
	FocusRevertSeconds float64 `json:"focus_revert_seconds" toml:"focus_revert_seconds" yaml:"focus_revert_seconds"`
}

// ReviewConfig bounds the frozen image viewport.
type ReviewConfig struct {
	FrozenMaxZoom float64 `json:"frozen_max_zoom" toml:"frozen_max_zoom" yaml:"frozen_max_zoom"`
	DoubleTapZoom float64 `json:"double_tap_zoom" toml:"double_tap_zoom" yaml:"double_tap_zoom"`
}

// OCRConfig selects the recognition engine.
type OCRConfig struct {
	Engine     string `json:"engine" toml:"engine" yaml:"engine"`
	Language   string `json:"language" toml:"language" yaml:"language"`
	Preprocess bool   `json:"preprocess" toml:"preprocess" yaml:"preprocess"`
	// CredentialsFile is a service account key for the vision engine. Empty uses ADC.
	CredentialsFile string `json:"credentials_file" toml:"credentials_file" yaml:"credentials_file"`
}

// SpeechConfig selects the speech engine.
type SpeechConfig struct {
	Engine      string `json:"engine" toml:"engine" yaml:"engine"`
	Voice       string `json:"voice" toml:"voice" yaml:"voice"`
	PiperBinary string `json:"piper_binary" toml:"piper_binary" yaml:"piper_binary"`
	PiperModel  string `json:"piper_model" toml:"piper_model" yaml:"piper_model"`
}

// PreferencesConfig selects where user preferences are stored.
type PreferencesConfig struct {
	Backend string `json:"backend" toml:"backend" yaml:"backend"`
	Path    string `json:"path" toml:"path" yaml:"path"`
}

// DefaultConfig returns a Config populated with standard defaults.
func DefaultConfig() *Config {
	return &Config{
		Debug:     false,
		LogFormat: "json",
		Window:    WindowConfig{Width: 1024, Height: 768},
		Camera: CameraConfig{
			Source:             SourceWebcam,
			DeviceID:           0,
			Width:              1280,
			Height:             720,
			FPS:                30,
			PreviewMaxZoom:     3.0,
			FocusRevertSeconds: 2.0,
		},
		Review: ReviewConfig{
			FrozenMaxZoom: 15.0,
			DoubleTapZoom: 3.0,
		},
		OCR: OCRConfig{
			Engine:     OCRTesseract,
			Language:   "eng",
			Preprocess: true,
		},
		Speech: SpeechConfig{
			Engine: defaultSpeechEngine(),
		},
		Preferences: PreferencesConfig{
			Backend: PrefsFile,
			Path:    defaultPreferencesPath(PrefsFile),
		},
	}
}

// Validate clamps/normalizes values to safe ranges.
func (c *Config) Validate() error {
	if c.LogFormat != "json" && c.LogFormat != "text" {
		c.LogFormat = "json"
	}
	if c.Window.Width < 320 {
		c.Window.Width = 1024
	}
	if c.Window.Height < 240 {
		c.Window.Height = 768
	}
	switch c.Camera.Source {
	case SourceWebcam, SourceScreen, SourceFile:
	default:
		c.Camera.Source = SourceWebcam
	}
	if c.Camera.DeviceID < 0 {
		c.Camera.DeviceID = 0
	}
	if c.Camera.Width <= 0 || c.Camera.Height <= 0 {
		c.Camera.Width, c.Camera.Height = 1280, 720
	}
	if c.Camera.FPS <= 0 || c.Camera.FPS > 120 {
		c.Camera.FPS = 30
	}
	switch c.Camera.SensorRotation {
	case 0, 90, 180, 270:
	default:
		c.Camera.SensorRotation = 0
	}
	if c.Camera.ScreenW < 0 || c.Camera.ScreenH < 0 {
		c.Camera.ScreenW, c.Camera.ScreenH = 0, 0
	}
	if c.Camera.PreviewMaxZoom < 1 {
		c.Camera.PreviewMaxZoom = 3.0
	}
	if c.Camera.FocusRevertSeconds <= 0 {
		c.Camera.FocusRevertSeconds = 2.0
	}
	if c.Review.FrozenMaxZoom < 1 {
		c.Review.FrozenMaxZoom = 15.0
	}
	if c.Review.DoubleTapZoom <= 1 {
		c.Review.DoubleTapZoom = 3.0
	}
	if c.Review.DoubleTapZoom > c.Review.FrozenMaxZoom {
		c.Review.DoubleTapZoom = c.Review.FrozenMaxZoom
	}
	switch c.OCR.Engine {
	case OCRTesseract, OCRVision:
	default:
		c.OCR.Engine = OCRTesseract
	}
	if strings.TrimSpace(c.OCR.Language) == "" {
		c.OCR.Language = "eng"
	}
	switch c.Speech.Engine {
	case SpeechEspeak, SpeechSay, SpeechPiper:
	default:
		c.Speech.Engine = defaultSpeechEngine()
	}
	switch c.Preferences.Backend {
	case PrefsFile, PrefsSQLite:
	default:
		c.Preferences.Backend = PrefsFile
	}
	if strings.TrimSpace(c.Preferences.Path) == "" {
		c.Preferences.Path = defaultPreferencesPath(c.Preferences.Backend)
	}
	return nil
}

// Load attempts to read configuration from the given file path. The format is
// chosen by extension: .toml, .yaml/.yml, anything else is decoded as JSON. If
// the file does not exist it returns DefaultConfig(). On decode error it returns
// defaults with the error.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()
	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, err
	}
	switch formatOf(path) {
	case "toml":
		if _, err := toml.Decode(string(data), cfg); err != nil {
			return DefaultConfig(), fmt.Errorf("decode toml %s: %w", path, err)
		}
	case "yaml":
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return DefaultConfig(), fmt.Errorf("decode yaml %s: %w", path, err)
		}
	default:
		if err := json.Unmarshal(data, cfg); err != nil {
			return DefaultConfig(), fmt.Errorf("decode json %s: %w", path, err)
		}
	}
	_ = cfg.Validate()
	return cfg, nil
}

// Save writes the configuration to the given path in the format implied by its extension.
func (c *Config) Save(path string) error {
	_ = c.Validate()
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	switch formatOf(path) {
	case "toml":
		return toml.NewEncoder(f).Encode(c)
	case "yaml":
		enc := yaml.NewEncoder(f)
		enc.SetIndent(2)
		defer enc.Close()
		return enc.Encode(c)
	default:
		enc := json.NewEncoder(f)
		enc.SetIndent("", "  ")
		return enc.Encode(c)
	}
}

// FocusRevert returns the delay before a tap focus reverts to continuous mode.
func (c *Config) FocusRevert() time.Duration {
	return time.Duration(c.Camera.FocusRevertSeconds * float64(time.Second))
}

func formatOf(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		return "toml"
	case ".yaml", ".yml":
		return "yaml"
	default:
		return "json"
	}
}

// DefaultDir is the per-user directory holding config and preference files.
func DefaultDir() string {
	base, err := os.UserConfigDir()
	if err != nil || base == "" {
		base = "."
	}
	return filepath.Join(base, "simplemagnify")
}

// DefaultPath returns the default config file location.
func DefaultPath() string { return filepath.Join(DefaultDir(), "config.json") }

func defaultPreferencesPath(backend string) string {
	if backend == PrefsSQLite {
		return filepath.Join(DefaultDir(), "preferences.db")
	}
	return filepath.Join(DefaultDir(), "preferences.json")
}

func defaultSpeechEngine() string {
	if runtime.GOOS == "darwin" {
		return SpeechSay
	}
	return SpeechEspeak
}
