package presenter

import "time"

// OverlayModel provides enabled state access.
type OverlayModel interface {
	Enabled() bool
	SetEnabled(bool)
}

// OverlayController narrows what the presenter needs from the lifecycle controller.
type OverlayController interface {
	RequestStart() error
	RequestStop()
	Running() bool
	LastError() error
}

// OverlayView updates UI elements affected by starting or stopping the overlay.
type OverlayView interface {
	SetStatus(text string)
	ConfigEditable(bool)
}

// OverlayPresenter maps the Start/Stop/Reset buttons to controller operations
// and reflects worker exits in the status label.
type OverlayPresenter struct {
	model    OverlayModel
	ctrl     OverlayController
	view     OverlayView
	stopping bool
}

func NewOverlayPresenter(model OverlayModel, ctrl OverlayController, view OverlayView) *OverlayPresenter {
	return &OverlayPresenter{model: model, ctrl: ctrl, view: view}
}

func (p *OverlayPresenter) ready() bool {
	return p != nil && p.model != nil && p.ctrl != nil && p.view != nil
}

// Enable starts an activation. Idempotent.
func (p *OverlayPresenter) Enable() {
	if !p.ready() || p.model.Enabled() {
		return
	}
	if err := p.ctrl.RequestStart(); err != nil {
		p.view.SetStatus("Overlay: " + err.Error())
		return
	}
	p.stopping = false
	p.model.SetEnabled(true)
	p.view.ConfigEditable(false)
	p.view.SetStatus("Overlay: starting")
}

// Disable requests a stop. The config becomes editable once the worker has exited. Idempotent.
func (p *OverlayPresenter) Disable() {
	if !p.ready() || !p.model.Enabled() {
		return
	}
	p.ctrl.RequestStop()
	p.model.SetEnabled(false)
	p.stopping = true
	p.view.SetStatus("Overlay: stopping")
}

// Apply enables or disables according to the requested state.
func (p *OverlayPresenter) Apply(enabled bool) {
	if enabled {
		p.Enable()
		return
	}
	p.Disable()
}

// Toggle flips the requested state.
func (p *OverlayPresenter) Toggle() {
	if !p.ready() {
		return
	}
	p.Apply(!p.model.Enabled())
}

// Reset turns the overlay off and clears the status.
func (p *OverlayPresenter) Reset() {
	if !p.ready() {
		return
	}
	p.Disable()
	if !p.stopping && !p.ctrl.Running() {
		p.view.SetStatus("Overlay: off")
	}
}

// Tick notices workers that exited on their own (quit event, exit key or a
// failed start) and finishes pending stops.
func (p *OverlayPresenter) Tick(time.Time) {
	if !p.ready() {
		return
	}
	running := p.ctrl.Running()
	switch {
	case p.model.Enabled() && !running:
		p.model.SetEnabled(false)
		p.finish()
	case p.stopping && !running:
		p.finish()
	}
}

func (p *OverlayPresenter) finish() {
	p.stopping = false
	if err := p.ctrl.LastError(); err != nil {
		p.view.SetStatus("Overlay failed: " + err.Error())
	} else {
		p.view.SetStatus("Overlay: off")
	}
	p.view.ConfigEditable(true)
}
