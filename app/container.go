package app

import (
	"context"
	"fmt"
	"image"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/atotto/clipboard"

	"github.com/soocke/simple-magnify-go/config"
	"github.com/soocke/simple-magnify-go/domain/camera"
	"github.com/soocke/simple-magnify-go/domain/ocr"
	"github.com/soocke/simple-magnify-go/domain/preferences"
	"github.com/soocke/simple-magnify-go/domain/speech"
	"github.com/soocke/simple-magnify-go/ui/presenter"
	"github.com/soocke/simple-magnify-go/ui/view"
)

// AppContainer assembles services, presenters and the root view.
type AppContainer struct {
	Config   *config.Config
	Logger   *slog.Logger
	Prefs    *preferences.Store
	OCR      *ocr.Service
	Dispatch *presenter.Dispatcher
	RootView *view.RootView

	// Presenters
	Camera   *presenter.CameraPresenter
	Review   *presenter.ReviewPresenter
	Settings *presenter.SettingsPresenter
	Nav      *presenter.Navigator
	Loop     *presenter.Loop
}

// BuildOptions tweak container construction.
type BuildOptions struct {
	// Ephemeral keeps preferences in memory only.
	Ephemeral bool
}

// BuildContainer constructs all components. No device is opened until the
// camera screen is entered.
func BuildContainer(ctx context.Context, cfg *config.Config, logger *slog.Logger, opts BuildOptions) (*AppContainer, error) {
	c := &AppContainer{Config: cfg, Logger: logger}
	prefs, err := OpenPreferences(ctx, cfg, logger, opts.Ephemeral)
	if err != nil {
		return nil, err
	}
	c.Prefs = prefs
	engine, err := NewOCREngine(ctx, cfg)
	if err != nil {
		logger.Warn("ocr engine unavailable", "engine", cfg.OCR.Engine, "error", err)
	}
	c.OCR = ocr.NewService(engine, logger, ocr.WithPreprocess(cfg.OCR.Preprocess))
	c.Dispatch = presenter.NewDispatcher(logger)

	// View
	c.RootView = view.NewRootView(cfg.Window.Width, cfg.Window.Height, logger)

	// Presenters
	c.Camera = presenter.NewCameraPresenter(ControllerFactory(cfg, prefs, logger), prefs, c.RootView.Camera, c.Dispatch, logger)
	c.Review = presenter.NewReviewPresenter(c.OCR, SpeakerFactory(cfg, logger), systemClipboard{}, c.RootView.Review, c.Dispatch,
		presenter.ReviewOptions{MaxZoom: cfg.Review.FrozenMaxZoom, DoubleTapZoom: cfg.Review.DoubleTapZoom}, logger)
	c.Settings = presenter.NewSettingsPresenter(prefs, c.RootView.Settings, logger)
	c.Nav = presenter.NewNavigator(c.Camera, c.Review, c.Settings, c.RootView, logger)
	return c, nil
}

// Close releases long-lived services. The navigator must already be closed.
func (c *AppContainer) Close() {
	if c == nil {
		return
	}
	if err := c.OCR.Close(); err != nil {
		c.Logger.Warn("ocr close", "error", err)
	}
	if err := c.Prefs.Close(); err != nil {
		c.Logger.Warn("preferences close", "error", err)
	}
}

// OpenPreferences opens the configured backend and loads the store.
func OpenPreferences(ctx context.Context, cfg *config.Config, logger *slog.Logger, ephemeral bool) (*preferences.Store, error) {
	var backend preferences.Backend
	switch {
	case ephemeral:
		backend = preferences.NewMemoryBackend()
	case cfg.Preferences.Backend == config.PrefsSQLite:
		if err := os.MkdirAll(filepath.Dir(cfg.Preferences.Path), 0o755); err != nil {
			return nil, fmt.Errorf("preferences dir: %w", err)
		}
		b, err := preferences.NewSQLiteBackend(cfg.Preferences.Path)
		if err != nil {
			return nil, err
		}
		backend = b
	default:
		backend = preferences.NewFileBackend(cfg.Preferences.Path)
	}
	return preferences.Open(ctx, backend, logger)
}

// NewOCREngine builds the configured recognition engine.
func NewOCREngine(ctx context.Context, cfg *config.Config) (ocr.Engine, error) {
	if cfg.OCR.Engine == config.OCRVision {
		v, err := ocr.NewVisionEngine(ctx, cfg.OCR.CredentialsFile)
		if err != nil {
			return nil, err
		}
		return v, nil
	}
	return ocr.NewTesseractEngine(strings.Split(cfg.OCR.Language, "+")...), nil
}

// NewSpeechEngine builds the configured speech engine.
func NewSpeechEngine(cfg *config.Config) (speech.Engine, error) {
	return speech.NewEngine(speech.EngineConfig{
		Engine:      cfg.Speech.Engine,
		Voice:       cfg.Speech.Voice,
		PiperBinary: cfg.Speech.PiperBinary,
		PiperModel:  cfg.Speech.PiperModel,
	})
}

// SpeakerFactory creates one speech controller per review screen.
func SpeakerFactory(cfg *config.Config, logger *slog.Logger) presenter.SpeakerFactory {
	return func(exec func(func())) (presenter.Speaker, error) {
		engine, err := NewSpeechEngine(cfg)
		if err != nil {
			logger.Warn("speech engine unavailable", "engine", cfg.Speech.Engine, "error", err)
			return nil, err
		}
		return speech.NewController(engine, logger, speech.WithExecutor(exec)), nil
	}
}

// ControllerFactory creates one capture controller per camera screen. The
// stored default zoom is read each time a controller is built.
func ControllerFactory(cfg *config.Config, prefs presenter.CameraPreferences, logger *slog.Logger) presenter.ControllerFactory {
	return func(exec func(func())) presenter.CaptureController {
		opener, perm := CameraSource(cfg)
		rot, _ := camera.ParseRotation(cfg.Camera.SensorRotation)
		return camera.NewController(opener, perm, logger,
			camera.WithPreviewMaxZoom(cfg.Camera.PreviewMaxZoom),
			camera.WithFocusRevert(cfg.FocusRevert()),
			camera.WithRotation(rot),
			camera.WithDefaultZoom(prefs.DefaultZoom()),
			camera.WithExecutor(exec),
		)
	}
}

// CameraSource maps the configured source to a device opener and the
// permission that guards it.
func CameraSource(cfg *config.Config) (camera.Opener, camera.Permission) {
	cc := cfg.Camera
	switch cc.Source {
	case config.SourceScreen:
		rect := image.Rect(cc.ScreenX, cc.ScreenY, cc.ScreenX+cc.ScreenW, cc.ScreenY+cc.ScreenH)
		return camera.OpenScreen(rect, cc.PreviewMaxZoom), camera.StaticPermission(camera.PermissionGranted)
	case config.SourceFile:
		rot, _ := camera.ParseRotation(cc.SensorRotation)
		return camera.OpenFile(cc.FilePath, rot, cc.PreviewMaxZoom), camera.StaticPermission(camera.PermissionGranted)
	default:
		return camera.OpenWebcam(camera.WebcamConfig{
			DeviceID:       cc.DeviceID,
			Width:          cc.Width,
			Height:         cc.Height,
			FPS:            cc.FPS,
			MaxDigitalZoom: cc.PreviewMaxZoom,
		}), camera.DevicePermission{DeviceID: cc.DeviceID}
	}
}

type systemClipboard struct{}

func (systemClipboard) WriteAll(text string) error { return clipboard.WriteAll(text) }
