package model

import "github.com/soocke/simple-magnify-go/domain/camera"

// CameraModel mirrors the capture controller for the camera screen. It is
// only touched on the UI thread. The zero value is usable.
type CameraModel struct {
	state    camera.State
	zoom     camera.ZoomState
	torch    bool
	freezing bool
	lastSeq  uint64
}

func (m *CameraModel) State() camera.State {
	if m == nil {
		return camera.StateUninitialized
	}
	return m.state
}

// SetState stores s and reports whether it changed.
func (m *CameraModel) SetState(s camera.State) bool {
	if m == nil || m.state == s {
		return false
	}
	m.state = s
	return true
}

func (m *CameraModel) Zoom() camera.ZoomState {
	if m == nil {
		return camera.ZoomState{Current: 1, Max: 1, Default: 1}
	}
	return m.zoom
}

func (m *CameraModel) SetZoom(z camera.ZoomState) {
	if m == nil {
		return
	}
	m.zoom = z
}

func (m *CameraModel) Torch() bool { return m != nil && m.torch }

func (m *CameraModel) SetTorch(on bool) {
	if m == nil {
		return
	}
	m.torch = on
}

func (m *CameraModel) Freezing() bool { return m != nil && m.freezing }

func (m *CameraModel) SetFreezing(b bool) {
	if m == nil {
		return
	}
	m.freezing = b
}

// NewFrame reports whether seq has not been shown yet and records it.
func (m *CameraModel) NewFrame(seq uint64) bool {
	if m == nil || seq == 0 || seq == m.lastSeq {
		return false
	}
	m.lastSeq = seq
	return true
}

// Reset returns the model to its zero state.
func (m *CameraModel) Reset() {
	if m == nil {
		return
	}
	*m = CameraModel{}
}
