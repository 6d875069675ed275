package camera

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"runtime"
)

// ErrNoSettingsApp means no known settings application is installed.
var ErrNoSettingsApp = errors.New("camera: no settings application found")

type settingsLauncher struct {
	name string
	args []string
}

// linuxSettings is tried in order; the first binary on PATH wins.
var linuxSettings = []settingsLauncher{
	{"gnome-control-center", []string{"privacy"}},
	{"systemsettings", nil},
	{"xfce4-settings-manager", nil},
}

// settingsCommand returns the command that opens the OS camera privacy page.
func settingsCommand(goos string, lookPath func(string) (string, error)) (string, []string, error) {
	switch goos {
	case "darwin":
		return "open", []string{"x-apple.systempreferences:com.apple.preference.security?Privacy_Camera"}, nil
	case "windows":
		return "cmd", []string{"/c", "start", "ms-settings:privacy-webcam"}, nil
	}
	for _, l := range linuxSettings {
		if path, err := lookPath(l.name); err == nil {
			return path, l.args, nil
		}
	}
	return "", nil, ErrNoSettingsApp
}

// OpenSystemSettings launches the platform privacy settings so a user who
// denied camera access can grant it.
func OpenSystemSettings(ctx context.Context) error {
	name, args, err := settingsCommand(runtime.GOOS, exec.LookPath)
	if err != nil {
		return err
	}
	cmd := exec.CommandContext(ctx, name, args...)
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("open settings: %w", err)
	}
	go func() { _ = cmd.Wait() }()
	return nil
}
