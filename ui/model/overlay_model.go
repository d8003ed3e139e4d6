package model

import (
	"sync/atomic"
)

// OverlayModel tracks whether the user asked for the overlay to be shown.
// The zero value is disabled and usable. Presenter ticks and button callbacks
// both touch it, so the flag is atomic.
type OverlayModel struct{ enabled atomic.Bool }

// Enabled reports whether the overlay is requested.
func (m *OverlayModel) Enabled() bool {
	if m == nil {
		return false
	}
	return m.enabled.Load()
}

// SetEnabled stores the flag.
func (m *OverlayModel) SetEnabled(b bool) {
	if m == nil {
		return
	}
	m.enabled.Store(b)
}
