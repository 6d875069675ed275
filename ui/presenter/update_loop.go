package presenter

// Loop drives periodic UI updates.
//
// Each Tick drains work posted by background goroutines, forwards the tick
// to the visible screen and invokes the scheduler callback. The zero value
// is usable (methods are nil-safe).
type Loop struct {
	Dispatch *Dispatcher
	Nav      *Navigator
	Schedule func()
}

func NewLoop(dispatch *Dispatcher, nav *Navigator, schedule func()) *Loop {
	return &Loop{Dispatch: dispatch, Nav: nav, Schedule: schedule}
}

func (l *Loop) Tick() {
	if l == nil {
		return
	}
	// Results first so the screen tick sees the newest state.
	l.Dispatch.Drain()
	l.Nav.Tick()
	if l.Schedule != nil {
		l.Schedule()
	}
}
