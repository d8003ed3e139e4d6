package presenter

import (
	"context"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/soocke/detection-overlay-go/assets"
	"github.com/soocke/detection-overlay-go/domain/render"
	"github.com/soocke/detection-overlay-go/ui/model"
)

var discardLogger = slog.New(slog.NewTextHandler(&discardWriter{}, nil))

type discardWriter struct{}

func (d *discardWriter) Write(p []byte) (int, error) { return len(p), nil }

func TestStatePresenter_ShowsLatest(t *testing.T) {
	view := &mockView{}
	p := NewStatePresenter(view)
	p.Tick(time.Now())
	if view.stateLabel != "" {
		t.Fatalf("label set without transitions")
	}
	p.OnState(render.StateStarting, render.StateRunning)
	p.OnState(render.StateRunning, render.StateStopping)
	p.Tick(time.Now())
	if view.stateLabel != "State: stopping" {
		t.Fatalf("label = %q", view.stateLabel)
	}
	p.OnState(render.StateStopping, render.StateStopped)
	p.Tick(time.Now())
	if view.stateLabel != "State: stopped" {
		t.Fatalf("label = %q", view.stateLabel)
	}
}

type runningFlag bool

func (r *runningFlag) Running() bool { return bool(*r) }

func TestActivityPresenter_Tick(t *testing.T) {
	view := &mockView{}
	running := runningFlag(true)
	p := NewActivityPresenter(model.NewActivityModel(), &running, view)
	base := time.Unix(100, 0)
	p.Tick(base)
	p.Tick(base.Add(4 * time.Second))
	if view.current != 4*time.Second || view.total != 4*time.Second {
		t.Fatalf("activity = %v/%v", view.current, view.total)
	}
	running = false
	p.Tick(base.Add(6 * time.Second))
	if view.total != 6*time.Second {
		t.Fatalf("total = %v", view.total)
	}
}

type mockFetcher struct {
	release chan struct{}
	err     error
	gotURL  string
}

func (f *mockFetcher) Fetch(ctx context.Context, url, dir string, progress assets.Progress) error {
	f.gotURL = url
	progress(1500000, 3000000)
	select {
	case <-f.release:
	case <-ctx.Done():
		return ctx.Err()
	}
	return f.err
}

func waitForText(t *testing.T, p *DownloadPresenter, view *mockView, want string) {
	t.Helper()
	deadline := time.Now().Add(time.Second)
	for time.Now().Before(deadline) {
		p.Tick()
		if view.download == want {
			return
		}
		time.Sleep(2 * time.Millisecond)
	}
	t.Fatalf("download text = %q, want %q", view.download, want)
}

func TestDownloadPresenter_ProgressAndDone(t *testing.T) {
	f := &mockFetcher{release: make(chan struct{})}
	view := &mockView{}
	m := model.NewDownloadModel()
	p := NewDownloadPresenter(m, f, view, discardLogger)
	defer p.Close()

	p.Start("http://example.invalid/models.zip", t.TempDir())
	waitForText(t, p, view, "Downloading 1.5 MB / 3.0 MB")
	p.Start("http://other", t.TempDir()) // ignored while running
	close(f.release)
	waitForText(t, p, view, "Models ready")
	if f.gotURL != "http://example.invalid/models.zip" {
		t.Fatalf("second Start was not ignored: %q", f.gotURL)
	}
}

func TestDownloadPresenter_FailureAndCancel(t *testing.T) {
	f := &mockFetcher{release: make(chan struct{}), err: errors.New("404")}
	view := &mockView{}
	p := NewDownloadPresenter(model.NewDownloadModel(), f, view, discardLogger)
	p.Start("u", t.TempDir())
	close(f.release)
	waitForText(t, p, view, "Download failed: 404")

	g := &mockFetcher{release: make(chan struct{})}
	q := NewDownloadPresenter(model.NewDownloadModel(), g, view, discardLogger)
	q.Start("u", t.TempDir())
	q.Close()
	waitForText(t, q, view, "Download failed: context canceled")
}

func TestLoop_TickDrivesPresentersAndSchedules(t *testing.T) {
	view := &mockView{}
	ctrl := &mockController{}
	m := &mockModel{}
	ov := NewOverlayPresenter(m, ctrl, view)
	st := NewStatePresenter(view)
	scheduled := 0
	l := NewLoop(ov, st, nil, nil, func() { scheduled++ })
	ov.Enable()
	st.OnState(render.StateStarting, render.StateRunning)
	l.Tick()
	if view.stateLabel != "State: running" || scheduled != 1 {
		t.Fatalf("label=%q scheduled=%d", view.stateLabel, scheduled)
	}
	var nilLoop *Loop
	nilLoop.Tick()
}
