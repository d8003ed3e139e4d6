package render

import (
	"errors"
	"image"
	"image/color"
	"log/slog"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/soocke/detection-overlay-go/domain/annotate"
	"github.com/soocke/detection-overlay-go/domain/capture"
	"github.com/soocke/detection-overlay-go/domain/detect"
	"github.com/soocke/detection-overlay-go/domain/overlay"
)

var discardLogger = slog.New(slog.NewTextHandler(&discardWriter{}, nil))

type discardWriter struct{}

func (d *discardWriter) Write(p []byte) (int, error) { return len(p), nil }

type fakeNet struct {
	mu     sync.Mutex
	calls  int
	raw    func(call int) ([]float32, error)
	closed atomic.Int32
}

func (n *fakeNet) Forward(*image.RGBA) ([]float32, error) {
	n.mu.Lock()
	n.calls++
	call := n.calls
	n.mu.Unlock()
	if n.raw == nil {
		return nil, nil
	}
	return n.raw(call)
}

func (n *fakeNet) Close() error { n.closed.Add(1); return nil }

type fakeWindow struct {
	mu        sync.Mutex
	presents  [][]byte
	quitAfter int // PumpEvents reports quit once this many presents happened; 0 never
	exitAfter int // ExitKeyDown reports pressed once this many presents happened; 0 never
	closed    atomic.Int32
}

func (w *fakeWindow) Present(c *overlay.Canvas) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.presents = append(w.presents, append([]byte(nil), c.Image().Pix...))
	return nil
}

func (w *fakeWindow) count() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return len(w.presents)
}

func (w *fakeWindow) PumpEvents() bool { return w.quitAfter > 0 && w.count() >= w.quitAfter }

func (w *fakeWindow) ExitKeyDown() bool { return w.exitAfter > 0 && w.count() >= w.exitAfter }

func (w *fakeWindow) Close() error { w.closed.Add(1); return nil }

type fakeSource struct {
	calls atomic.Int32
	delay time.Duration
	fail  int32      // first n calls fail
	fill  color.RGBA // frame colour; zero means opaque black
}

func (s *fakeSource) Capture(r image.Rectangle) (*image.RGBA, error) {
	n := s.calls.Add(1)
	if s.delay > 0 {
		time.Sleep(s.delay)
	}
	if n <= s.fail {
		return nil, capture.ErrCaptureTransient
	}
	img := image.NewRGBA(image.Rect(0, 0, r.Dx(), r.Dy()))
	c := s.fill
	c.A = 0xFF
	for i := 0; i < len(img.Pix); i += 4 {
		img.Pix[i], img.Pix[i+1], img.Pix[i+2], img.Pix[i+3] = c.R, c.G, c.B, c.A
	}
	return img, nil
}

type transitionRecorder struct {
	mu  sync.Mutex
	seq []State
}

func (r *transitionRecorder) listener(prev, next State) {
	r.mu.Lock()
	r.seq = append(r.seq, next)
	r.mu.Unlock()
}

func (r *transitionRecorder) states() []State {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]State(nil), r.seq...)
}

type harness struct {
	net    *fakeNet
	win    *fakeWindow
	src    *fakeSource
	opened atomic.Int32
	loop   *Loop
	rec    *transitionRecorder
}

func newHarness(t *testing.T, pacing time.Duration) *harness {
	t.Helper()
	h := &harness{net: &fakeNet{}, win: &fakeWindow{}, src: &fakeSource{}, rec: &transitionRecorder{}}
	deps := Deps{
		LoadModel: func() (detect.Network, error) { return h.net, nil },
		OpenOverlay: func(image.Point) (overlay.Window, error) {
			h.opened.Add(1)
			return h.win, nil
		},
		Source:    h.src,
		Annotator: annotate.New(detect.VOCLabels[:]),
	}
	opts := Options{
		Region:      image.Rect(100, 100, 120, 120),
		Scale:       2,
		TargetClass: detect.PersonClass,
		Threshold:   1e-10,
		Pacing:      pacing,
	}
	l, err := NewLoop(opts, deps, discardLogger)
	if err != nil {
		t.Fatalf("NewLoop: %v", err)
	}
	l.AddListener(h.rec.listener)
	h.loop = l
	return h
}

func row(class int, conf float32, x0, y0, x1, y1 float32) []float32 {
	return []float32{0, float32(class), conf, x0, y0, x1, y1}
}

// waitForState waits up to timeout for the loop to reach expected state.
func waitForState(t *testing.T, l *Loop, expected State, timeout time.Duration) {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if l.State() == expected {
			return
		}
		time.Sleep(2 * time.Millisecond)
	}
	t.Fatalf("timeout waiting for state %v (got %v)", expected, l.State())
}

func TestNewLoop_RejectsIncompleteDeps(t *testing.T) {
	if _, err := NewLoop(Options{Region: image.Rect(0, 0, 10, 10)}, Deps{}, nil); err == nil {
		t.Fatalf("expected error for missing deps")
	}
	if _, err := NewLoop(Options{}, Deps{}, nil); err == nil {
		t.Fatalf("expected error for empty region")
	}
}

func TestLoop_SurfaceIsScaledRegion(t *testing.T) {
	h := newHarness(t, time.Millisecond)
	if got := h.loop.SurfaceSize(); got != image.Pt(40, 40) {
		t.Fatalf("surface = %v", got)
	}
}

func TestLoop_StartupFailureIsolation(t *testing.T) {
	h := newHarness(t, time.Millisecond)
	h.loop.deps.LoadModel = func() (detect.Network, error) {
		_, err := detect.ResolveArtifacts(t.TempDir())
		return nil, err
	}
	var flag RunFlag
	flag.Set()
	err := h.loop.Run(&flag)
	if !errors.Is(err, detect.ErrModelMissing) {
		t.Fatalf("expected ErrModelMissing, got %v", err)
	}
	if h.loop.State() != StateStopped {
		t.Fatalf("state = %v", h.loop.State())
	}
	if h.opened.Load() != 0 {
		t.Fatalf("overlay opened despite load failure")
	}
	if h.src.calls.Load() != 0 || h.net.calls != 0 {
		t.Fatalf("capture/inference attempted after load failure")
	}
	if !flag.IsSet() {
		t.Fatalf("run flag changed on startup failure")
	}
	if seq := h.rec.states(); len(seq) != 1 || seq[0] != StateStopped {
		t.Fatalf("transitions = %v, want [stopped]", seq)
	}
}

func TestLoop_OverlayFailureReleasesModel(t *testing.T) {
	h := newHarness(t, time.Millisecond)
	h.loop.deps.OpenOverlay = func(image.Point) (overlay.Window, error) {
		return nil, overlay.ErrWindowStyle
	}
	var flag RunFlag
	flag.Set()
	if err := h.loop.Run(&flag); !errors.Is(err, overlay.ErrWindowStyle) {
		t.Fatalf("expected ErrWindowStyle, got %v", err)
	}
	if h.net.closed.Load() != 1 {
		t.Fatalf("model not released")
	}
	if h.src.calls.Load() != 0 {
		t.Fatalf("capture attempted")
	}
	if h.loop.State() != StateStopped {
		t.Fatalf("state = %v", h.loop.State())
	}
}

func TestLoop_RunTwiceFails(t *testing.T) {
	h := newHarness(t, time.Millisecond)
	var flag RunFlag // unset: loop exits right after Running
	if err := h.loop.Run(&flag); err != nil {
		t.Fatalf("first run: %v", err)
	}
	if err := h.loop.Run(&flag); err == nil {
		t.Fatalf("expected error on reuse")
	}
}

func TestLoop_BoundedStopLatency(t *testing.T) {
	h := newHarness(t, 30*time.Millisecond)
	h.src.delay = 20 * time.Millisecond
	var flag RunFlag
	flag.Set()
	w := Spawn("latency", discardLogger, func() error { return h.loop.Run(&flag) })
	waitForState(t, h.loop, StateRunning, time.Second)
	time.Sleep(75 * time.Millisecond)

	start := time.Now()
	flag.Clear()
	select {
	case <-w.Done():
	case <-time.After(time.Second):
		t.Fatalf("worker did not stop")
	}
	if elapsed := time.Since(start); elapsed > 80*time.Millisecond {
		t.Fatalf("stop took %v, want <= 80ms", elapsed)
	}
	if h.loop.State() != StateStopped {
		t.Fatalf("state = %v", h.loop.State())
	}
	if h.win.closed.Load() != 1 || h.net.closed.Load() != 1 {
		t.Fatalf("teardown not run exactly once: win=%d net=%d", h.win.closed.Load(), h.net.closed.Load())
	}
}

func TestLoop_BlankFrameClearsStaleBoxes(t *testing.T) {
	h := newHarness(t, time.Millisecond)
	h.net.raw = func(call int) ([]float32, error) {
		if call == 1 {
			return row(detect.PersonClass, 0.9, 0.1, 0.1, 0.6, 0.6), nil
		}
		return nil, nil
	}
	h.win.quitAfter = 2
	var flag RunFlag
	flag.Set()
	if err := h.loop.Run(&flag); err != nil {
		t.Fatalf("run: %v", err)
	}
	if h.win.count() != 2 {
		t.Fatalf("presents = %d, want 2", h.win.count())
	}
	isBackground := func(pix []byte) bool {
		for i := 0; i < len(pix); i += 4 {
			if pix[i] != overlay.Background.R || pix[i+1] != overlay.Background.G ||
				pix[i+2] != overlay.Background.B || pix[i+3] != overlay.Background.A {
				return false
			}
		}
		return true
	}
	if isBackground(h.win.presents[0]) {
		t.Fatalf("first present has no box")
	}
	if !isBackground(h.win.presents[1]) {
		t.Fatalf("second present retained stale pixels")
	}
}

func TestLoop_NoDetectionsPresentsRawFrameScaled(t *testing.T) {
	h := newHarness(t, time.Millisecond)
	h.src.fill = color.RGBA{R: 10, G: 200, B: 30}
	h.net.raw = func(call int) ([]float32, error) {
		if call == 1 {
			return row(detect.PersonClass, 0.9, 0.1, 0.1, 0.6, 0.6), nil
		}
		return nil, nil
	}
	h.win.quitAfter = 2
	var flag RunFlag
	flag.Set()
	if err := h.loop.Run(&flag); err != nil {
		t.Fatalf("run: %v", err)
	}
	if h.win.count() != 2 {
		t.Fatalf("presents = %d, want 2", h.win.count())
	}
	size := h.loop.SurfaceSize()
	isRawFrame := func(pix []byte) bool {
		if len(pix) != size.X*size.Y*4 {
			return false
		}
		for i := 0; i < len(pix); i += 4 {
			if pix[i] != 10 || pix[i+1] != 200 || pix[i+2] != 30 || pix[i+3] != 0xFF {
				return false
			}
		}
		return true
	}
	if isRawFrame(h.win.presents[0]) {
		t.Fatalf("first present has no box")
	}
	if !isRawFrame(h.win.presents[1]) {
		t.Fatalf("present without detections is not the captured frame at 2x")
	}
}

func TestLoop_QuitEventStopsAndClearsFlag(t *testing.T) {
	h := newHarness(t, time.Millisecond)
	h.win.quitAfter = 1
	var flag RunFlag
	flag.Set()
	if err := h.loop.Run(&flag); err != nil {
		t.Fatalf("run: %v", err)
	}
	if flag.IsSet() {
		t.Fatalf("flag still set after quit event")
	}
	want := []State{StateRunning, StateStopping, StateStopped}
	got := h.rec.states()
	if len(got) != len(want) {
		t.Fatalf("transitions = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("transitions = %v, want %v", got, want)
		}
	}
	if h.win.closed.Load() != 1 || h.net.closed.Load() != 1 {
		t.Fatalf("teardown not idempotent: win=%d net=%d", h.win.closed.Load(), h.net.closed.Load())
	}
}

func TestLoop_ExitKeyStops(t *testing.T) {
	h := newHarness(t, time.Millisecond)
	h.win.exitAfter = 3
	var flag RunFlag
	flag.Set()
	if err := h.loop.Run(&flag); err != nil {
		t.Fatalf("run: %v", err)
	}
	if flag.IsSet() {
		t.Fatalf("flag still set after exit key")
	}
	if h.win.count() != 3 {
		t.Fatalf("presents = %d, want 3", h.win.count())
	}
}

func TestLoop_TransientFailuresDoNotStopLoop(t *testing.T) {
	h := newHarness(t, time.Millisecond)
	h.src.fail = 2
	h.net.raw = func(call int) ([]float32, error) {
		if call == 1 {
			return nil, errors.New("bad frame")
		}
		return nil, nil
	}
	h.win.quitAfter = 1
	var flag RunFlag
	flag.Set()
	if err := h.loop.Run(&flag); err != nil {
		t.Fatalf("run: %v", err)
	}
	st := h.loop.Stats()
	if st.CaptureFailures != 2 || st.InferenceFailures != 1 || st.Presented != 1 {
		t.Fatalf("stats = %+v", st)
	}
	if st.Iterations != 4 {
		t.Fatalf("iterations = %d, want 4", st.Iterations)
	}
}

func TestLoop_DrawsOnlyTargetClass(t *testing.T) {
	h := newHarness(t, time.Millisecond)
	h.net.raw = func(int) ([]float32, error) {
		raw := row(7, 0.99, 0.1, 0.1, 0.2, 0.2)
		raw = append(raw, row(detect.PersonClass, 0.5, 0.3, 0.3, 0.5, 0.5)...)
		raw = append(raw, row(detect.PersonClass, 0.0000001, 0.6, 0.6, 0.9, 0.9)...)
		return raw, nil
	}
	h.win.quitAfter = 1
	var flag RunFlag
	flag.Set()
	if err := h.loop.Run(&flag); err != nil {
		t.Fatalf("run: %v", err)
	}
	if got := h.loop.Stats().Drawn; got != 2 {
		t.Fatalf("drawn = %d, want 2", got)
	}
}

func TestWorker_ReportsErrorAndPanic(t *testing.T) {
	boom := errors.New("boom")
	w := Spawn("err", discardLogger, func() error { return boom })
	if err := w.Wait(); !errors.Is(err, boom) {
		t.Fatalf("Wait = %v", err)
	}
	if w.Alive() {
		t.Fatalf("worker alive after Wait")
	}

	p := Spawn("panic", discardLogger, func() error { panic("kaboom") })
	if err := p.Wait(); err == nil {
		t.Fatalf("expected panic to surface as error")
	}
	if p.ID() != "panic" {
		t.Fatalf("id = %q", p.ID())
	}
}

func TestRunFlag(t *testing.T) {
	var f RunFlag
	if f.IsSet() {
		t.Fatalf("zero flag set")
	}
	f.Set()
	if !f.IsSet() {
		t.Fatalf("flag not set")
	}
	f.Clear()
	if f.IsSet() {
		t.Fatalf("flag not cleared")
	}
}

func TestStateString(t *testing.T) {
	for s, want := range map[State]string{StateStarting: "starting", StateRunning: "running", StateStopping: "stopping", StateStopped: "stopped", State(42): "unknown"} {
		if s.String() != want {
			t.Fatalf("%d.String() = %q", s, s.String())
		}
	}
}
