package presenter

import (
	"time"

	"github.com/soocke/detection-overlay-go/ui/model"
)

// RunningSource reports whether an overlay worker is alive.
type RunningSource interface{ Running() bool }

// ActivityView displays the current and total overlay-active durations.
type ActivityView interface {
	SetActivity(current, total time.Duration)
}

// ActivityPresenter feeds worker liveness into the activity model and pushes durations to the view.
type ActivityPresenter struct {
	activity *model.ActivityModel
	running  RunningSource
	view     ActivityView
}

func NewActivityPresenter(activity *model.ActivityModel, running RunningSource, view ActivityView) *ActivityPresenter {
	return &ActivityPresenter{activity: activity, running: running, view: view}
}

func (p *ActivityPresenter) Tick(now time.Time) {
	if p == nil || p.activity == nil || p.running == nil || p.view == nil {
		return
	}
	p.activity.OnTick(p.running.Running(), now)
	cur, total := p.activity.Values()
	p.view.SetActivity(cur, total)
}
