//go:build !linux

package camera

import "context"

// DevicePermission defers to the operating system, which prompts when the
// device is first opened.
type DevicePermission struct {
	DeviceID int
}

func (p DevicePermission) Status() PermissionStatus { return PermissionUndetermined }

func (p DevicePermission) Request(ctx context.Context) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	return true, nil
}
