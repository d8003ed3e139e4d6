package render

import (
	"fmt"
	"log/slog"
	"runtime"
	"runtime/debug"
)

// Worker owns one background goroutine running a render activation. It is
// spawned per activation and never reused.
type Worker struct {
	id   string
	done chan struct{}
	err  error
}

// Spawn starts run on a new goroutine locked to its OS thread. The thread is
// never unlocked, so it exits with the goroutine along with any window it owned.
func Spawn(id string, logger *slog.Logger, run func() error) *Worker {
	w := &Worker{id: id, done: make(chan struct{})}
	go func() {
		runtime.LockOSThread()
		defer close(w.done)
		defer func() {
			if r := recover(); r != nil {
				w.err = fmt.Errorf("render worker panic: %v", r)
				if logger != nil {
					logger.Error("render worker panic", "id", id, "error", r, "stack", string(debug.Stack()))
				}
			}
		}()
		w.err = run()
	}()
	return w
}

// ID returns the activation id the worker was spawned with.
func (w *Worker) ID() string { return w.id }

// Done is closed when the worker goroutine has returned.
func (w *Worker) Done() <-chan struct{} { return w.done }

// Alive reports whether the worker goroutine is still running.
func (w *Worker) Alive() bool {
	select {
	case <-w.done:
		return false
	default:
		return true
	}
}

// Wait blocks until the worker returns and yields its error.
func (w *Worker) Wait() error {
	<-w.done
	return w.err
}
