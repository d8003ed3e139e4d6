package presenter

import (
	"context"
	"errors"
	"log/slog"
	"runtime/debug"

	"github.com/soocke/detection-overlay-go/assets"
	"github.com/soocke/detection-overlay-go/ui/model"
)

var errPanic = errors.New("download aborted")

// Fetcher downloads and unpacks the model archive.
type Fetcher interface {
	Fetch(ctx context.Context, url, dir string, progress assets.Progress) error
}

// DownloadView shows download progress text.
type DownloadView interface{ SetDownload(text string) }

// DownloadPresenter runs the asset download off the UI thread and reports
// progress on UI ticks.
type DownloadPresenter struct {
	model   *model.DownloadModel
	fetcher Fetcher
	view    DownloadView
	logger  *slog.Logger
	ctx     context.Context
	cancel  context.CancelFunc
	last    string
}

func NewDownloadPresenter(m *model.DownloadModel, f Fetcher, view DownloadView, logger *slog.Logger) *DownloadPresenter {
	if logger == nil {
		logger = slog.Default()
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &DownloadPresenter{model: m, fetcher: f, view: view, logger: logger, ctx: ctx, cancel: cancel}
}

// Start begins a download unless one is running.
func (p *DownloadPresenter) Start(url, dir string) {
	if p == nil || p.model == nil || p.fetcher == nil {
		return
	}
	if !p.model.Begin() {
		return
	}
	p.logger.Info("model download started", "url", url, "dir", dir)
	go func() {
		defer func() {
			if r := recover(); r != nil {
				p.logger.Error("download panic", "error", r, "stack", string(debug.Stack()))
				p.model.Finish(errPanic)
			}
		}()
		err := p.fetcher.Fetch(p.ctx, url, dir, p.model.SetProgress)
		if err != nil {
			p.logger.Error("model download failed", "error", err)
		} else {
			done, _ := p.model.Progress()
			p.logger.Info("model download finished", "bytes", done)
		}
		p.model.Finish(err)
	}()
}

// Tick pushes the current progress text to the view when it changed.
func (p *DownloadPresenter) Tick() {
	if p == nil || p.model == nil || p.view == nil {
		return
	}
	text := p.text()
	if text == p.last {
		return
	}
	p.last = text
	p.view.SetDownload(text)
}

func (p *DownloadPresenter) text() string {
	switch p.model.Phase() {
	case model.DownloadRunning:
		return "Downloading " + assets.FormatProgress(p.model.Progress())
	case model.DownloadDone:
		return "Models ready"
	case model.DownloadFailed:
		if err := p.model.Err(); err != nil {
			return "Download failed: " + err.Error()
		}
		return "Download failed"
	default:
		return ""
	}
}

// Close cancels an in-flight download.
func (p *DownloadPresenter) Close() {
	if p != nil && p.cancel != nil {
		p.cancel()
	}
}
