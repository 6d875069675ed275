package theme

// Centralized theming for the magnifier UI. Provides the standard and
// high-contrast palettes and applies them to ttk styles and the root window.

import (
	//lint:ignore ST1001 Dot import is intentional for concise Tk widget DSL builders.
	. "modernc.org/tk9.0"
)

// Standard palette.
const (
	ColorBg        = "#ffffff"
	ColorSurface   = "#f4f6f8"
	ColorBorder    = "#c9d1d9"
	ColorPrimary   = "#1d4ed8"
	ColorPrimaryFg = "#ffffff"
	ColorDanger    = "#b91c1c"
	ColorText      = "#111827"
	ColorTextMuted = "#4b5563"
)

// High-contrast palette.
const (
	ContrastBg   = "#000000"
	ContrastFg   = "#ffeb3b"
	ContrastEdge = "#ffffff"
)

// PaletteSnapshot represents resolved colors for the active mode.
type PaletteSnapshot struct {
	AppBg     string
	Surface   string
	Border    string
	Primary   string
	PrimaryFg string
	Danger    string
	Text      string
	TextMuted string
}

// PaletteFor returns the colors for the given contrast mode.
func PaletteFor(highContrast bool) PaletteSnapshot {
	if highContrast {
		return PaletteSnapshot{
			AppBg:     ContrastBg,
			Surface:   ContrastBg,
			Border:    ContrastEdge,
			Primary:   ContrastFg,
			PrimaryFg: ContrastBg,
			Danger:    ContrastFg,
			Text:      ContrastFg,
			TextMuted: ContrastFg,
		}
	}
	return PaletteSnapshot{
		AppBg:     ColorBg,
		Surface:   ColorSurface,
		Border:    ColorBorder,
		Primary:   ColorPrimary,
		PrimaryFg: ColorPrimaryFg,
		Danger:    ColorDanger,
		Text:      ColorText,
		TextMuted: ColorTextMuted,
	}
}

// CurrentPalette returns colors for the active mode.
func CurrentPalette() PaletteSnapshot { return PaletteFor(highContrast) }

// style names used with Style("primary.TButton") etc.
const (
	StylePrimaryButton = "primary.TButton"
	StyleDangerButton  = "danger.TButton"
	StyleStatusLabel   = "status.TLabel"
)

var highContrast bool

// InitStyles (re)applies styles for the current mode.
func InitStyles() { applyStyles(CurrentPalette()) }

// SetHighContrast switches palettes and reapplies styles. Returns the new mode.
func SetHighContrast(on bool) bool {
	highContrast = on
	applyStyles(CurrentPalette())
	return highContrast
}

// IsHighContrast reports the current mode.
func IsHighContrast() bool { return highContrast }

func applyStyles(p PaletteSnapshot) {
	_ = ActivateTheme("azure light") // baseline metrics
	App.Configure(Background(p.AppBg))

	StyleConfigure(StylePrimaryButton,
		Background(p.Primary),
		Foreground(p.PrimaryFg),
		Padding("6p 4p"),
		Borderwidth(2),
		Relief("ridge"),
	)
	StyleConfigure(StyleDangerButton,
		Background(p.Danger),
		Foreground(p.PrimaryFg),
		Padding("6p 4p"),
		Borderwidth(2),
		Relief("ridge"),
	)
	StyleConfigure(StyleStatusLabel,
		Foreground(p.Text),
		Background(p.Surface),
		Padding("4p 2p"),
	)
}
