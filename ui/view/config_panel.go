package view

import (
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/soocke/detection-overlay-go/config"

	//lint:ignore ST1001 Dot import is intentional for concise Tk widget DSL builders.
	. "modernc.org/tk9.0"
)

// ConfigPanel encapsulates the overlay settings form. ApplyChanges writes the
// parsed values into the in-memory *config.Config used by the next activation.
type ConfigPanel interface {
	Build(startRow int) (endRow int) // constructs widgets starting at startRow, returns next free row
	SetEditable(enabled bool)
	ApplyChanges()
}

type configPanel struct {
	cfg      *config.Config
	logger   *slog.Logger
	report   func(string)
	applyBtn *ButtonWidget
	widgets  map[string]*TextWidget // keyed by internal field id
}

// NewConfigPanel creates the view bound to cfg. report receives the outcome
// of each ApplyChanges for display.
func NewConfigPanel(cfg *config.Config, logger *slog.Logger, report func(string)) ConfigPanel {
	if report == nil {
		report = func(string) {}
	}
	return &configPanel{cfg: cfg, logger: logger, report: report, widgets: make(map[string]*TextWidget)}
}

func (v *configPanel) Build(startRow int) (row int) {
	c := v.cfg
	row = startRow
	makeRow := func(id, label, value string) {
		lbl := Label(Txt(label), Anchor("w"))
		Grid(lbl, Row(row), Column(0), Sticky("w"), Padx("0.4m"), Pady("0.15m"))
		w := Text(Height(1), Width(24))
		Grid(w, Row(row), Column(1), Columnspan(2), Sticky("we"), Padx("0.4m"), Pady("0.15m"))
		w.Delete("1.0", END)
		w.Insert("1.0", value)
		v.widgets[id] = w
		row++
	}
	makeRow("captureX", "Capture X", strconv.Itoa(c.CaptureX))
	makeRow("captureY", "Capture Y", strconv.Itoa(c.CaptureY))
	makeRow("captureW", "Capture Width", strconv.Itoa(c.CaptureW))
	makeRow("captureH", "Capture Height", strconv.Itoa(c.CaptureH))
	makeRow("threshold", "Confidence Threshold", strconv.FormatFloat(c.Threshold, 'g', -1, 64))
	makeRow("targetClass", "Target Class (0-20)", strconv.Itoa(c.TargetClass))
	makeRow("scale", "Overlay Scale", strconv.Itoa(c.Scale))
	makeRow("pacingMs", "Pacing (ms)", strconv.Itoa(c.PacingMillis))
	makeRow("exitKey", "Exit Key (e.g. Q or F3)", c.ExitKey)
	makeRow("alpha", "Alpha (1-255)", strconv.Itoa(c.Alpha))
	makeRow("display", "Preferred Display", strconv.Itoa(c.PreferredDisplay))
	makeRow("modelDir", "Model Directory", c.ModelDir)
	makeRow("modelsURL", "Models URL (.zip)", c.ModelsURL)
	v.applyBtn = Button(Txt("Apply Changes"), Command(func() { v.ApplyChanges() }))
	Grid(v.applyBtn, Row(row), Column(0), Columnspan(3), Sticky("we"), Padx("0.4m"), Pady("0.3m"))
	row++
	return row
}

func (v *configPanel) SetEditable(enabled bool) {
	state := "disabled"
	if enabled {
		state = "normal"
	}
	for _, w := range v.widgets {
		if w != nil {
			w.Configure(State(state))
		}
	}
	if v.applyBtn != nil {
		v.applyBtn.Configure(State(state))
	}
}

func (v *configPanel) text(id string) (string, bool) {
	w := v.widgets[id]
	if w == nil {
		return "", false
	}
	return strings.TrimSpace(strings.Join(w.Get("1.0", END), "")), true
}

func (v *configPanel) ApplyChanges() {
	if v.cfg == nil {
		return
	}
	values := make(map[string]string, len(v.widgets))
	for id := range v.widgets {
		if s, ok := v.text(id); ok {
			values[id] = s
		}
	}
	cfg, err := v.cfg.Edited(values)
	if err != nil {
		if v.logger != nil {
			v.logger.Warn("config rejected", "error", err)
		}
		v.report("Settings rejected: " + err.Error())
		return
	}
	*v.cfg = *cfg
	v.report("Settings applied")
	if v.logger != nil {
		v.logger.Info("config applied", "region", fmt.Sprint(cfg.Region()), "threshold", cfg.Threshold, "model_dir", cfg.ModelDir)
	}
}
