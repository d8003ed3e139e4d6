package capture

import (
	"image"
	"sync/atomic"
	"time"
)

// Stats summarises capture behaviour for instrumentation.
type Stats struct {
	Captures   uint64
	Failures   uint64
	AvgCapture time.Duration
	LastError  string
}

// Instrumented wraps a Source and counts successes, failures and time spent.
type Instrumented struct {
	src          Source
	captures     atomic.Uint64
	failures     atomic.Uint64
	captureNanos atomic.Uint64
	lastErr      atomic.Pointer[string]
}

// NewInstrumented wraps src.
func NewInstrumented(src Source) *Instrumented { return &Instrumented{src: src} }

func (s *Instrumented) Capture(region image.Rectangle) (*image.RGBA, error) {
	start := time.Now()
	img, err := s.src.Capture(region)
	if err != nil {
		s.failures.Add(1)
		msg := err.Error()
		s.lastErr.Store(&msg)
		return nil, err
	}
	s.captureNanos.Add(uint64(time.Since(start).Nanoseconds()))
	s.captures.Add(1)
	return img, nil
}

// Stats returns a snapshot of the counters.
func (s *Instrumented) Stats() Stats {
	captures := s.captures.Load()
	total := s.captureNanos.Load()
	var avg time.Duration
	if captures > 0 {
		avg = time.Duration(total / captures)
	}
	st := Stats{Captures: captures, Failures: s.failures.Load(), AvgCapture: avg}
	if p := s.lastErr.Load(); p != nil {
		st.LastError = *p
	}
	return st
}
