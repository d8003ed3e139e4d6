package model

import (
	"time"
)

// ActivityModel tracks how long the current overlay activation has been
// running and the time accumulated across activations in this process.
// The zero value is ready to use. Not synchronized; call from the UI tick.
type ActivityModel struct {
	active      bool
	started     time.Time
	current     time.Duration
	accumulated time.Duration
}

// NewActivityModel returns a ready-to-use ActivityModel.
func NewActivityModel() *ActivityModel { return &ActivityModel{} }

// OnTick advances the model using the current running state at now.
func (m *ActivityModel) OnTick(running bool, now time.Time) {
	if m == nil {
		return
	}
	if running {
		if !m.active { // off -> on
			m.active = true
			m.started = now
			m.current = 0
		}
		m.current = now.Sub(m.started)
	} else if m.active { // on -> off
		m.current = now.Sub(m.started)
		m.accumulated += m.current
		m.active = false
	}
}

// Values returns the current (or last) activation duration and the total.
// The total includes the ongoing activation.
func (m *ActivityModel) Values() (current, total time.Duration) {
	if m == nil {
		return 0, 0
	}
	current = m.current
	total = m.accumulated
	if m.active {
		total += current
	}
	return
}
