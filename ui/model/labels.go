package model

import (
	"fmt"

	"github.com/soocke/simple-magnify-go/domain/preferences"
	"github.com/soocke/simple-magnify-go/domain/speech"
)

// ZoomLabel formats a zoom ratio for the on-screen indicator.
func ZoomLabel(z float64) string {
	if z < 1 {
		z = 1
	}
	return fmt.Sprintf("%.1f×", z)
}

// TorchLabel is the caption of the light toggle.
func TorchLabel(available, on bool) string {
	switch {
	case !available:
		return "No light"
	case on:
		return "Light off"
	default:
		return "Light on"
	}
}

// SpeechLabel is the caption of the play/pause button.
func SpeechLabel(s speech.State) string {
	switch s {
	case speech.Speaking:
		return "Pause"
	case speech.Paused:
		return "Resume"
	default:
		return "Read aloud"
	}
}

// OnOff renders a boolean preference.
func OnOff(v bool) string {
	if v {
		return "On"
	}
	return "Off"
}

// PositionLabel renders the control column side.
func PositionLabel(p preferences.ButtonPosition) string {
	if p == preferences.ButtonsLeft {
		return "Left"
	}
	return "Right"
}

// ControlColumn returns the grid columns of the control column and the
// display area for the given side.
func ControlColumn(p preferences.ButtonPosition) (controls, display int) {
	if p == preferences.ButtonsLeft {
		return 0, 1
	}
	return 1, 0
}
