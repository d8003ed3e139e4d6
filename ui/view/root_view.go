package view

import (
	"log/slog"
	"time"

	"github.com/soocke/detection-overlay-go/config"
	"github.com/soocke/detection-overlay-go/ui/theme"

	//lint:ignore ST1001 Dot import is intentional for concise Tk widget DSL builders.
	. "modernc.org/tk9.0"
)

// Handlers are the control panel button callbacks.
type Handlers struct {
	Start    func()
	Stop     func()
	Reset    func()
	Download func()
	Theme    func()
	Exit     func()
}

// RootView composes the control panel layout. It satisfies the presenters'
// view contracts.
type RootView struct {
	cfg    *config.Config
	logger *slog.Logger

	Activity    ActivityStats
	ConfigPanel ConfigPanel

	StateLabel    *TLabelWidget
	StatusLabel   *TLabelWidget
	DownloadLabel *TLabelWidget
}

func NewRootView(cfg *config.Config, logger *slog.Logger) *RootView {
	return &RootView{cfg: cfg, logger: logger}
}

// Build constructs the layout and binds h to the buttons.
func (rv *RootView) Build(h Handlers) {
	if rv == nil {
		return
	}
	// Row 0: activity timers, state label, buttons frame
	rv.Activity = NewActivityStats(nil, 0, 0)
	rv.StateLabel = TLabel(Txt("State: stopped"), Style(theme.StyleStateLabel))
	Grid(rv.StateLabel, Row(0), Column(2), Sticky("we"), Padx("0.4m"), Pady("0.3m"))

	btnFrame := Frame()
	Grid(btnFrame, Row(0), Column(3), Rowspan(3), Sticky("ne"), Padx("0.3m"), Pady("0.3m"))
	buttons := []struct {
		text  string
		style string
		fn    func()
	}{
		{"Start Overlay", theme.StylePrimaryButton, h.Start},
		{"Stop Overlay", theme.StyleDangerButton, h.Stop},
		{"Reset", "", h.Reset},
		{"Download Models", "", h.Download},
		{"Toggle Dark Mode", "", h.Theme},
		{"Exit", "", h.Exit},
	}
	for i, b := range buttons {
		fn := b.fn
		if fn == nil {
			fn = func() {}
		}
		var btn *TButtonWidget
		if b.style != "" {
			btn = TButton(Txt(b.text), Style(b.style), Command(fn))
		} else {
			btn = TButton(Txt(b.text), Command(fn))
		}
		Grid(btn, In(btnFrame), Row(i), Column(0), Sticky("we"), Padx("0.2m"), Pady("0.2m"))
	}

	// Row 1-2: status and download progress
	rv.StatusLabel = TLabel(Txt("Overlay: off"), Anchor("w"), Style(theme.StyleStatusLabel))
	Grid(rv.StatusLabel, Row(1), Column(0), Columnspan(3), Sticky("we"), Padx("0.4m"))
	rv.DownloadLabel = TLabel(Txt(""), Anchor("w"), Style(theme.StyleAccentLabel))
	Grid(rv.DownloadLabel, Row(2), Column(0), Columnspan(3), Sticky("we"), Padx("0.4m"))

	rv.ConfigPanel = NewConfigPanel(rv.cfg, rv.logger, rv.SetStatus)
	rv.ConfigPanel.Build(3)
}

// SetStateLabel updates the render-loop state label.
func (rv *RootView) SetStateLabel(text string) {
	if rv != nil && rv.StateLabel != nil {
		rv.StateLabel.Configure(Txt(text))
	}
}

// SetStatus updates the overlay status line.
func (rv *RootView) SetStatus(text string) {
	if rv != nil && rv.StatusLabel != nil {
		rv.StatusLabel.Configure(Txt(text))
	}
}

// SetDownload updates the download progress line.
func (rv *RootView) SetDownload(text string) {
	if rv != nil && rv.DownloadLabel != nil {
		rv.DownloadLabel.Configure(Txt(text))
	}
}

// ConfigEditable toggles config panel editability.
func (rv *RootView) ConfigEditable(enabled bool) {
	if rv != nil && rv.ConfigPanel != nil {
		rv.ConfigPanel.SetEditable(enabled)
	}
}

// SetActivity updates both activity durations.
func (rv *RootView) SetActivity(current, total time.Duration) {
	if rv == nil || rv.Activity == nil {
		return
	}
	rv.Activity.SetCurrent(current)
	rv.Activity.SetTotal(total)
}
