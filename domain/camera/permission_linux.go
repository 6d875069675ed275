//go:build linux

package camera

import (
	"context"
	"fmt"
	"os"

	"golang.org/x/sys/unix"
)

// DevicePermission checks access to /dev/videoN. Linux has no consent
// prompt: a missing node is undetermined, an inaccessible one is denied
// (typically the user is not in the video group).
type DevicePermission struct {
	DeviceID int
}

func (p DevicePermission) node() string { return fmt.Sprintf("/dev/video%d", p.DeviceID) }

func (p DevicePermission) Status() PermissionStatus {
	node := p.node()
	if _, err := os.Stat(node); err != nil {
		return PermissionUndetermined
	}
	if err := unix.Access(node, unix.R_OK|unix.W_OK); err != nil {
		return PermissionDenied
	}
	return PermissionGranted
}

// Request re-checks access; it cannot raise a prompt. A missing node is
// reported as granted so the opener can surface ErrNoDevice.
func (p DevicePermission) Request(ctx context.Context) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	return p.Status() != PermissionDenied, nil
}
