// Package render runs the capture, detect, annotate and present loop that
// drives the overlay window for one activation.
package render

// State enumerates the lifecycle of a single loop activation.
type State int

const (
	StateStarting State = iota
	StateRunning
	StateStopping
	StateStopped
)

func (s State) String() string {
	switch s {
	case StateStarting:
		return "starting"
	case StateRunning:
		return "running"
	case StateStopping:
		return "stopping"
	case StateStopped:
		return "stopped"
	default:
		return "unknown"
	}
}

// StateListener is called on each state transition from the worker goroutine.
type StateListener func(prev, next State)
