package preferences

import (
	"context"
	"errors"
	"strconv"
	"strings"
)

// Storage keys, one scalar per key.
const (
	KeyDefaultZoom    = "default_zoom"
	KeyLightOnStart   = "light_on_start"
	KeyHighContrast   = "high_contrast"
	KeyButtonPosition = "button_position"
)

// Zoom bounds accepted for the stored default zoom.
const (
	MinDefaultZoom = 1.0
	MaxDefaultZoom = 10.0
)

// ErrInvalidValue is returned when a setter receives an out-of-range value.
var ErrInvalidValue = errors.New("preferences: invalid value")

// ButtonPosition places the main control column on one side of the screen.
type ButtonPosition string

const (
	ButtonsLeft  ButtonPosition = "LEFT"
	ButtonsRight ButtonPosition = "RIGHT"
)

// Valid reports whether p is one of the known positions.
func (p ButtonPosition) Valid() bool { return p == ButtonsLeft || p == ButtonsRight }

// ParseButtonPosition accepts "left"/"right" in any case.
func ParseButtonPosition(s string) (ButtonPosition, error) {
	p := ButtonPosition(strings.ToUpper(strings.TrimSpace(s)))
	if !p.Valid() {
		return "", ErrInvalidValue
	}
	return p, nil
}

// Preferences is a snapshot of all user settings.
type Preferences struct {
	DefaultZoom    float64        `json:"default_zoom"`
	LightOnStart   bool           `json:"light_on_start"`
	HighContrast   bool           `json:"high_contrast"`
	ButtonPosition ButtonPosition `json:"button_position"`
}

// Defaults returns the values used when nothing has been stored yet.
func Defaults() Preferences {
	return Preferences{
		DefaultZoom:    2.0,
		LightOnStart:   false,
		HighContrast:   false,
		ButtonPosition: ButtonsRight,
	}
}

// Keys lists the storage keys in display order.
var Keys = []string{KeyDefaultZoom, KeyLightOnStart, KeyHighContrast, KeyButtonPosition}

// Values renders every preference in its stored string form.
func (p Preferences) Values() map[string]string {
	return map[string]string{
		KeyDefaultZoom:    strconv.FormatFloat(p.DefaultZoom, 'f', -1, 64),
		KeyLightOnStart:   strconv.FormatBool(p.LightOnStart),
		KeyHighContrast:   strconv.FormatBool(p.HighContrast),
		KeyButtonPosition: string(p.ButtonPosition),
	}
}

// Backend persists individual preference values.
type Backend interface {
	Load(ctx context.Context) (map[string]string, error)
	Put(ctx context.Context, key, value string) error
	Close() error
}

// Listener is notified after a preference change has been persisted.
type Listener func(key string, prefs Preferences)
