package presenter

import "time"

// Loop aggregates feature presenters and drives periodic updates.
//
// It calls Tick on the sub-presenters and invokes a scheduler callback.
// The zero value is usable (methods are nil-safe).
type Loop struct {
	Overlay  *OverlayPresenter
	State    *StatePresenter
	Activity *ActivityPresenter
	Download *DownloadPresenter
	Schedule func()
}

func NewLoop(overlay *OverlayPresenter, state *StatePresenter, activity *ActivityPresenter, download *DownloadPresenter, schedule func()) *Loop {
	return &Loop{Overlay: overlay, State: state, Activity: activity, Download: download, Schedule: schedule}
}

func (l *Loop) Tick() {
	if l == nil {
		return
	}
	now := time.Now()
	if l.State != nil {
		l.State.Tick(now)
	}
	if l.Overlay != nil {
		l.Overlay.Tick(now)
	}
	if l.Activity != nil {
		l.Activity.Tick(now)
	}
	if l.Download != nil {
		l.Download.Tick()
	}
	if l.Schedule != nil {
		l.Schedule()
	}
}
