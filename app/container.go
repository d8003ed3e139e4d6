package app

import (
	"fmt"
	"image"
	"log/slog"

	"github.com/soocke/detection-overlay-go/assets"
	"github.com/soocke/detection-overlay-go/config"
	"github.com/soocke/detection-overlay-go/domain/annotate"
	"github.com/soocke/detection-overlay-go/domain/capture"
	"github.com/soocke/detection-overlay-go/domain/detect"
	"github.com/soocke/detection-overlay-go/domain/overlay"
	"github.com/soocke/detection-overlay-go/domain/render"
	"github.com/soocke/detection-overlay-go/ui/model"
	"github.com/soocke/detection-overlay-go/ui/view"
)

const overlayTitle = "Detection Overlay"

// ModelLoader reads the detection network from a model directory. It is
// supplied by the caller so this package stays free of native bindings.
type ModelLoader func(dir string) (detect.Network, error)

// AppContainer assembles models, services and the root view.
type AppContainer struct {
	Config     *config.Config
	Logger     *slog.Logger
	Capture    *capture.Instrumented
	Controller *Controller
	Overlay    *model.OverlayModel
	Activity   *model.ActivityModel
	Download   *model.DownloadModel
	Fetcher    *assets.Fetcher
	RootView   *view.RootView
}

// BuildContainer constructs all components. No native resources are acquired
// until an activation starts.
func BuildContainer(cfg *config.Config, load ModelLoader, logger *slog.Logger) *AppContainer {
	c := &AppContainer{Config: cfg, Logger: logger}
	c.Capture = capture.NewInstrumented(capture.New(cfg.CaptureBackend))
	c.Controller = NewController(LoopFactoryFor(cfg, load, c.Capture, annotate.New(detect.VOCLabels[:])), logger)
	c.Overlay = &model.OverlayModel{}
	c.Activity = model.NewActivityModel()
	c.Download = model.NewDownloadModel()
	c.Fetcher = assets.NewFetcher()
	c.RootView = view.NewRootView(cfg, logger)
	return c
}

// LoopFactoryFor builds render loops from a snapshot of cfg taken at each
// activation, backed by load and the native overlay window.
func LoopFactoryFor(cfg *config.Config, load ModelLoader, src capture.Source, annot *annotate.Annotator) LoopFactory {
	return func(logger *slog.Logger) (*render.Loop, error) {
		snap := *cfg
		opts := render.Options{
			Region:      snap.Region(),
			Scale:       snap.Scale,
			TargetClass: snap.TargetClass,
			Threshold:   snap.Threshold,
			Pacing:      snap.Pacing(),
		}
		deps := render.Deps{
			LoadModel: func() (detect.Network, error) {
				if load == nil {
					return nil, fmt.Errorf("%w: no loader", detect.ErrModelMissing)
				}
				return load(snap.ModelDir)
			},
			OpenOverlay: func(size image.Point) (overlay.Window, error) {
				display := overlay.SelectDisplay(overlay.Displays(), snap.PreferredDisplay)
				if display.Empty() {
					display = image.Rectangle{Max: size}
				}
				bounds := overlay.CenterIn(display, size)
				logger.Info("opening overlay", "display", display.String(), "bounds", bounds.String())
				return overlay.Open(overlay.Options{
					Title:   overlayTitle,
					Bounds:  bounds,
					Alpha:   uint8(snap.Alpha),
					ExitKey: snap.ExitKey,
				})
			},
			Source:    src,
			Annotator: annot,
		}
		return render.NewLoop(opts, deps, logger)
	}
}
