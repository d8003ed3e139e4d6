package app

import (
	"fmt"
	"log/slog"
	"time"

	//lint:ignore ST1001 Dot import is intentional for concise Tk widget DSL builders.
	. "modernc.org/tk9.0"

	"github.com/soocke/detection-overlay-go/config"
	"github.com/soocke/detection-overlay-go/ui/presenter"
	"github.com/soocke/detection-overlay-go/ui/theme"
	"github.com/soocke/detection-overlay-go/ui/view"
)

const tick = 100 * time.Millisecond

type app struct {
	c       *AppContainer
	loop    *presenter.Loop
	overlay *presenter.OverlayPresenter
	dl      *presenter.DownloadPresenter
	afterID string
	closing bool
}

// NewApp builds the container and configures the Tk root window.
func NewApp(title string, width, height int, cfg *config.Config, load ModelLoader, logger *slog.Logger) *app {
	a := &app{c: BuildContainer(cfg, load, logger)}
	App.WmTitle(title)
	WmProtocol(App, "WM_DELETE_WINDOW", a.exitHandler)
	WmGeometry(App, fmt.Sprintf("%dx%d+100+100", width, height))
	return a
}

// Start builds the control panel and runs the Tk event loop until exit.
func (a *app) Start() {
	c := a.c
	theme.SetDark(c.Config.DarkMode)

	rv := c.RootView
	a.overlay = presenter.NewOverlayPresenter(c.Overlay, c.Controller, rv)
	state := presenter.NewStatePresenter(rv)
	c.Controller.AddListener(state.OnState)
	activity := presenter.NewActivityPresenter(c.Activity, c.Controller, rv)
	a.dl = presenter.NewDownloadPresenter(c.Download, c.Fetcher, rv, c.Logger)

	rv.Build(view.Handlers{
		Start:    func() { a.overlay.Apply(true) },
		Stop:     func() { a.overlay.Apply(false) },
		Reset:    a.overlay.Reset,
		Download: a.download,
		Theme:    a.toggleTheme,
		Exit:     a.exitHandler,
	})
	a.loop = presenter.NewLoop(a.overlay, state, activity, a.dl, a.scheduleUpdate)
	a.scheduleUpdate()
	App.Wait()
}

func (a *app) toggleTheme() {
	dark := !theme.IsDark()
	theme.SetDark(dark)
	a.c.Config.DarkMode = dark
}

func (a *app) download() {
	cfg := a.c.Config
	if cfg.ModelsURL == "" {
		a.c.RootView.SetDownload("No models URL: set Models URL above, models_url in the config file or OVERLAY_MODELS_URL")
		return
	}
	a.dl.Start(cfg.ModelsURL, cfg.ModelDir)
}

func (a *app) scheduleUpdate() {
	if a.closing {
		return
	}
	// TclAfter keeps presenter ticks on Tk's event loop thread.
	a.afterID = TclAfter(tick, func() { a.loop.Tick() })
}

func (a *app) exitHandler() {
	if a.closing {
		return
	}
	a.closing = true
	if a.afterID != "" {
		TclAfterCancel(a.afterID)
	}
	a.c.Controller.RequestStop()
	if err := a.c.Controller.Wait(); err != nil {
		a.c.Logger.Warn("overlay exited with error", "error", err)
	}
	a.dl.Close()
	st := a.c.Capture.Stats()
	a.c.Logger.Info("capture stats",
		"captures", st.Captures,
		"failures", st.Failures,
		"avg_capture", st.AvgCapture,
		"last_error", st.LastError,
	)
	Destroy(App)
}
