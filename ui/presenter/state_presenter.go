package presenter

import (
	"sync"
	"time"

	"github.com/soocke/detection-overlay-go/domain/render"
)

// StateView sets the state label in the view.
type StateView interface{ SetStateLabel(string) }

// StatePresenter receives render-loop transitions from the worker goroutine
// and reflects the latest one on the next UI tick.
type StatePresenter struct {
	view    StateView
	mu      sync.Mutex
	pending []render.State
	latest  render.State
	shown   bool
}

func NewStatePresenter(view StateView) *StatePresenter {
	return &StatePresenter{view: view}
}

// OnState queues a transition. Safe to call from any goroutine; use as a
// render.StateListener.
func (p *StatePresenter) OnState(_, next render.State) {
	if p == nil {
		return
	}
	p.mu.Lock()
	p.pending = append(p.pending, next)
	p.mu.Unlock()
}

// Tick flushes queued states, showing only the most recent.
func (p *StatePresenter) Tick(time.Time) {
	if p == nil || p.view == nil {
		return
	}
	p.mu.Lock()
	if len(p.pending) == 0 {
		p.mu.Unlock()
		return
	}
	last := p.pending[len(p.pending)-1]
	p.pending = p.pending[:0]
	p.mu.Unlock()
	if p.shown && last == p.latest {
		return
	}
	p.latest, p.shown = last, true
	p.view.SetStateLabel("State: " + last.String())
}
