package app

import (
	"errors"
	"log/slog"
	"sync"

	"github.com/google/uuid"

	"github.com/soocke/detection-overlay-go/domain/render"
)

// ErrAlreadyRunning is returned by RequestStart while a worker is alive.
var ErrAlreadyRunning = errors.New("app: overlay already running")

// LoopFactory builds a fresh render loop for one activation.
type LoopFactory func(logger *slog.Logger) (*render.Loop, error)

// Controller starts and stops overlay activations. It guarantees at most one
// live worker; the run flag is the only state it shares with that worker.
type Controller struct {
	mu        sync.Mutex
	flag      render.RunFlag
	newLoop   LoopFactory
	logger    *slog.Logger
	worker    *render.Worker
	startErr  error
	listeners []render.StateListener
}

// NewController returns an idle controller.
func NewController(newLoop LoopFactory, logger *slog.Logger) *Controller {
	if logger == nil {
		logger = slog.Default()
	}
	return &Controller{newLoop: newLoop, logger: logger}
}

// AddListener registers a state listener attached to every future activation.
func (c *Controller) AddListener(fn render.StateListener) {
	if fn == nil {
		return
	}
	c.mu.Lock()
	c.listeners = append(c.listeners, fn)
	c.mu.Unlock()
}

// RequestStart spawns a new activation unless one is alive.
func (c *Controller) RequestStart() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.worker != nil && c.worker.Alive() {
		return ErrAlreadyRunning
	}
	id := uuid.NewString()
	logger := c.logger.With("activation", id)
	loop, err := c.newLoop(logger)
	if err != nil {
		c.startErr = err
		return err
	}
	for _, fn := range c.listeners {
		loop.AddListener(fn)
	}
	c.startErr = nil
	c.flag.Set()
	c.worker = render.Spawn(id, logger, func() error {
		err := loop.Run(&c.flag)
		if err != nil {
			logger.Error("overlay start failed", "error", err)
		}
		return err
	})
	logger.Info("overlay activation requested")
	return nil
}

// RequestStop asks the current activation to exit. No-op when idle.
func (c *Controller) RequestStop() {
	c.flag.Clear()
}

// Running reports whether a worker is alive.
func (c *Controller) Running() bool {
	c.mu.Lock()
	w := c.worker
	c.mu.Unlock()
	return w != nil && w.Alive()
}

// Wait blocks until the current worker, if any, has exited.
func (c *Controller) Wait() error {
	c.mu.Lock()
	w := c.worker
	c.mu.Unlock()
	if w == nil {
		return nil
	}
	return w.Wait()
}

// LastError returns the failed-start error of the most recent activation,
// or nil while it is running or after a clean exit.
func (c *Controller) LastError() error {
	c.mu.Lock()
	w, err := c.worker, c.startErr
	c.mu.Unlock()
	if err != nil {
		return err
	}
	if w == nil || w.Alive() {
		return nil
	}
	return w.Wait()
}
