package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/soocke/detection-overlay-go/app"
	"github.com/soocke/detection-overlay-go/config"
	"github.com/soocke/detection-overlay-go/debug"
	"github.com/soocke/detection-overlay-go/domain/detect"
	"github.com/soocke/detection-overlay-go/domain/detect/caffe"
	"go.uber.org/automaxprocs/maxprocs"
)

func main() {
	envFile := config.LoadEnvFile()

	cfgPath := config.DefaultPath()
	cfg, cfgErr := config.Load(cfgPath)
	cfg.ApplyEnv(os.Getenv)

	level := slog.LevelInfo
	if cfg.Debug {
		level = slog.LevelDebug
	}
	logger := NewLogger(level)
	if envFile != "" {
		logger.Info("environment loaded", "path", envFile)
	}
	if cfgErr != nil {
		logger.Warn("config load failed, using defaults", "path", cfgPath, "error", cfgErr)
	} else if _, err := os.Stat(cfgPath); errors.Is(err, os.ErrNotExist) {
		// Write defaults once so the file can be edited by hand.
		if err := config.DefaultConfig().Save(cfgPath); err != nil {
			logger.Warn("config write failed", "path", cfgPath, "error", err)
		}
	}

	undo, err := maxprocs.Set(maxprocs.Logger(func(format string, args ...interface{}) {
		logger.Debug(fmt.Sprintf(format, args...))
	}))
	defer undo()
	if err != nil {
		logger.Warn("GOMAXPROCS not adjusted", "error", err)
	}

	if cfg.Debug {
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()
		debug.StartGoroutineLogger(ctx, 5*time.Second, logger)
		debug.StartMemLogger(ctx, 5*time.Second, logger)
	}

	logger.Info("starting", "config", cfgPath, "model_dir", cfg.ModelDir, "capture_backend", cfg.CaptureBackend)
	application := app.NewApp("Detection Overlay", 560, 640, cfg, loadCaffe, logger)
	application.Start()
}

// loadCaffe binds the MobileNet-SSD artifacts in dir through OpenCV.
func loadCaffe(dir string) (detect.Network, error) {
	net, err := caffe.Load(dir)
	if err != nil {
		return nil, err
	}
	return net, nil
}
