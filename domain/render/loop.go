package render

import (
	"context"
	"errors"
	"fmt"
	"image"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/soocke/detection-overlay-go/domain/annotate"
	"github.com/soocke/detection-overlay-go/domain/capture"
	"github.com/soocke/detection-overlay-go/domain/detect"
	"github.com/soocke/detection-overlay-go/domain/overlay"
)

const statsInterval = 5 * time.Second

// Options are the fixed per-activation parameters.
type Options struct {
	Region      image.Rectangle
	Scale       int
	TargetClass int
	Threshold   float64
	Pacing      time.Duration
}

// Deps are the collaborators a loop acquires and owns for one activation.
type Deps struct {
	// LoadModel is called once during Starting.
	LoadModel func() (detect.Network, error)
	// OpenOverlay is called with the scaled surface size after the model loaded.
	OpenOverlay func(size image.Point) (overlay.Window, error)
	Source      capture.Source
	// NewDetector wraps the loaded network; nil uses detect.NetworkDetector.
	NewDetector func(detect.Network) detect.Detector
	Annotator   *annotate.Annotator
}

// Stats are the loop counters logged periodically and at exit.
type Stats struct {
	Iterations        uint64
	CaptureFailures   uint64
	InferenceFailures uint64
	Presented         uint64
	Drawn             uint64
	AvgIteration      time.Duration

	iterationTotal time.Duration
}

// Loop is a single-use render loop. Run must be called at most once, from a
// goroutine locked to its OS thread.
type Loop struct {
	opts   Options
	deps   Deps
	logger *slog.Logger

	state     atomic.Int32
	mu        sync.Mutex
	listeners []StateListener
	stats     Stats
}

// NewLoop validates options and returns a loop in StateStarting.
func NewLoop(opts Options, deps Deps, logger *slog.Logger) (*Loop, error) {
	if opts.Region.Empty() {
		return nil, errors.New("render: empty capture region")
	}
	if deps.LoadModel == nil || deps.OpenOverlay == nil || deps.Source == nil || deps.Annotator == nil {
		return nil, errors.New("render: incomplete dependencies")
	}
	if opts.Scale < 1 {
		opts.Scale = 1
	}
	if logger == nil {
		logger = slog.Default()
	}
	l := &Loop{opts: opts, deps: deps, logger: logger}
	l.state.Store(int32(StateStarting))
	return l, nil
}

// AddListener registers a state listener.
func (l *Loop) AddListener(fn StateListener) {
	if fn == nil {
		return
	}
	l.mu.Lock()
	l.listeners = append(l.listeners, fn)
	l.mu.Unlock()
}

// State returns the current lifecycle state.
func (l *Loop) State() State { return State(l.state.Load()) }

// Stats returns a snapshot of the loop counters. Safe to call once Run returned.
func (l *Loop) Stats() Stats {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.stats
}

// SurfaceSize is the overlay size: the capture region scaled in both dimensions.
func (l *Loop) SurfaceSize() image.Point {
	return l.opts.Region.Size().Mul(l.opts.Scale)
}

func (l *Loop) transition(next State) {
	prev := State(l.state.Swap(int32(next)))
	if prev == next {
		return
	}
	l.logger.Debug("render state transition", "from", prev.String(), "to", next.String())
	l.mu.Lock()
	ls := append([]StateListener(nil), l.listeners...)
	l.mu.Unlock()
	for _, fn := range ls {
		fn(prev, next)
	}
}

// Run loads the model, opens the overlay and renders until flag is cleared,
// a quit event arrives or the exit key is pressed. A non-nil error means the
// activation failed during Starting; the overlay was never shown and flag is
// left untouched.
func (l *Loop) Run(flag *RunFlag) error {
	if l.State() != StateStarting {
		return errors.New("render: loop already used")
	}
	net, err := l.deps.LoadModel()
	if err == nil && net == nil {
		err = errors.New("render: model loader returned no network")
	}
	if err != nil {
		l.transition(StateStopped)
		return fmt.Errorf("load model: %w", err)
	}
	size := l.SurfaceSize()
	win, err := l.deps.OpenOverlay(size)
	if err == nil && win == nil {
		err = errors.New("render: overlay opener returned no window")
	}
	if err != nil {
		_ = net.Close()
		l.transition(StateStopped)
		return fmt.Errorf("open overlay: %w", err)
	}

	var once sync.Once
	teardown := func() {
		once.Do(func() {
			l.transition(StateStopping)
			if err := win.Close(); err != nil {
				l.logger.Warn("overlay close failed", "error", err)
			}
			if err := net.Close(); err != nil {
				l.logger.Warn("model close failed", "error", err)
			}
			l.logStats(slog.LevelInfo, "render loop stopped")
			l.transition(StateStopped)
		})
	}
	defer teardown()

	det := detect.Detector(detect.NetworkDetector{Net: net})
	if l.deps.NewDetector != nil {
		det = l.deps.NewDetector(net)
	}
	canvas := overlay.NewCanvas(size.X, size.Y)

	l.transition(StateRunning)
	l.logger.Info("render loop running", "region", l.opts.Region.String(), "surface", size.String(), "pacing", l.opts.Pacing)
	lastStats := time.Now()
	for flag.IsSet() {
		if l.step(flag, det, canvas, win) {
			flag.Clear()
			teardown()
			return nil
		}
		if !flag.IsSet() {
			break
		}
		if time.Since(lastStats) >= statsInterval {
			l.logStats(slog.LevelDebug, "render loop stats")
			lastStats = time.Now()
		}
		time.Sleep(l.opts.Pacing)
	}
	return nil
}

// step runs one iteration and reports whether a quit event or the exit key was seen.
func (l *Loop) step(flag *RunFlag, det detect.Detector, canvas *overlay.Canvas, win overlay.Window) bool {
	start := time.Now()
	defer func() {
		d := time.Since(start)
		l.count(func(s *Stats) {
			s.Iterations++
			s.iterationTotal += d
			s.AvgIteration = s.iterationTotal / time.Duration(s.Iterations)
		})
	}()
	frame, err := l.deps.Source.Capture(l.opts.Region)
	if err != nil {
		l.count(func(s *Stats) { s.CaptureFailures++ })
		l.logger.Debug("capture skipped", "error", err)
	} else {
		l.render(flag, det, frame, canvas, win)
		capture.RecycleFrame(frame)
	}
	if !flag.IsSet() {
		return false
	}
	if win.PumpEvents() {
		l.logger.Info("overlay quit event received")
		return true
	}
	if win.ExitKeyDown() {
		l.logger.Info("exit key pressed")
		return true
	}
	return false
}

func (l *Loop) render(flag *RunFlag, det detect.Detector, frame *image.RGBA, canvas *overlay.Canvas, win overlay.Window) {
	if !flag.IsSet() {
		return
	}
	dets, err := det.Detect(frame)
	if err != nil {
		l.count(func(s *Stats) { s.InferenceFailures++ })
		l.logger.Debug("inference skipped", "error", err)
		return
	}
	if !flag.IsSet() {
		return
	}
	kept := detect.Filter(dets, l.opts.TargetClass, l.opts.Threshold)
	canvas.Clear()
	// Boxes go onto the captured frame at capture resolution, then the frame is scaled.
	l.deps.Annotator.Draw(frame, kept)
	canvas.BlitScaled(frame)
	if err := win.Present(canvas); err != nil {
		l.logger.Debug("present failed", "error", err)
		return
	}
	l.count(func(s *Stats) {
		s.Presented++
		s.Drawn += uint64(len(kept))
	})
}

func (l *Loop) count(fn func(*Stats)) {
	l.mu.Lock()
	fn(&l.stats)
	l.mu.Unlock()
}

func (l *Loop) logStats(level slog.Level, msg string) {
	s := l.Stats()
	l.logger.Log(context.Background(), level, msg,
		"iterations", s.Iterations,
		"presented", s.Presented,
		"drawn", s.Drawn,
		"capture_failures", s.CaptureFailures,
		"inference_failures", s.InferenceFailures,
		"avg_iteration", s.AvgIteration,
	)
}
