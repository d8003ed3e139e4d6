package render

import "sync/atomic"

// RunFlag is the only state shared between the controller and a running loop.
// The controller sets and clears it; the loop clears it on quit or exit key.
type RunFlag struct {
	v atomic.Bool
}

func (f *RunFlag) Set()        { f.v.Store(true) }
func (f *RunFlag) Clear()      { f.v.Store(false) }
func (f *RunFlag) IsSet() bool { return f.v.Load() }
