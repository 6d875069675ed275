package presenter

import (
	"context"
	"errors"
	"log/slog"
	"math"

	"github.com/soocke/simple-magnify-go/domain/preferences"
)

// DefaultZoomStep is the increment used by the default-zoom buttons.
const DefaultZoomStep = 0.5

// PreferenceStore narrows preferences.Store.
type PreferenceStore interface {
	Snapshot() preferences.Preferences
	SetDefaultZoom(ctx context.Context, zoom float64) error
	SetLightOnStart(ctx context.Context, on bool) error
	SetHighContrast(ctx context.Context, on bool) error
	SetButtonPosition(ctx context.Context, pos preferences.ButtonPosition) error
}

// SettingsView shows and edits the four preferences.
type SettingsView interface {
	ShowPreferences(p preferences.Preferences)
	ShowError(text string)
}

// SettingsPresenter persists every edit immediately. Theme and layout follow
// through the store's change listeners.
type SettingsPresenter struct {
	store  PreferenceStore
	view   SettingsView
	logger *slog.Logger
	router Router
}

func NewSettingsPresenter(store PreferenceStore, view SettingsView, logger *slog.Logger) *SettingsPresenter {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &SettingsPresenter{store: store, view: view, logger: logger}
}

func (p *SettingsPresenter) bind(r Router) {
	if p != nil {
		p.router = r
	}
}

func (p *SettingsPresenter) ok() bool { return p != nil && p.store != nil && p.view != nil }

func (p *SettingsPresenter) Enter() {
	if !p.ok() {
		return
	}
	p.view.ShowError("")
	p.view.ShowPreferences(p.store.Snapshot())
}

func (p *SettingsPresenter) Leave() {}

// StepDefaultZoom moves the default zoom by steps increments, clamped to the
// accepted range.
func (p *SettingsPresenter) StepDefaultZoom(steps int) {
	if !p.ok() {
		return
	}
	z := p.store.Snapshot().DefaultZoom + float64(steps)*DefaultZoomStep
	z = math.Round(z/DefaultZoomStep) * DefaultZoomStep
	z = math.Max(preferences.MinDefaultZoom, math.Min(preferences.MaxDefaultZoom, z))
	p.apply(p.store.SetDefaultZoom(context.Background(), z))
}

func (p *SettingsPresenter) ToggleLightOnStart() {
	if !p.ok() {
		return
	}
	p.apply(p.store.SetLightOnStart(context.Background(), !p.store.Snapshot().LightOnStart))
}

func (p *SettingsPresenter) ToggleHighContrast() {
	if !p.ok() {
		return
	}
	p.apply(p.store.SetHighContrast(context.Background(), !p.store.Snapshot().HighContrast))
}

func (p *SettingsPresenter) SetButtonPosition(pos preferences.ButtonPosition) {
	if !p.ok() {
		return
	}
	p.apply(p.store.SetButtonPosition(context.Background(), pos))
}

func (p *SettingsPresenter) apply(err error) {
	if err != nil {
		p.logger.Warn("settings.save_failed", "error", err)
		if errors.Is(err, preferences.ErrInvalidValue) {
			p.view.ShowError("Invalid value")
		} else {
			p.view.ShowError("Could not save setting")
		}
	} else {
		p.view.ShowError("")
	}
	p.view.ShowPreferences(p.store.Snapshot())
}

// Back returns to the camera.
func (p *SettingsPresenter) Back() {
	if p == nil || p.router == nil {
		return
	}
	p.router.ShowCamera()
}
