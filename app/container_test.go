package app

import (
	"errors"
	"go/parser"
	"go/token"
	"image"
	"path/filepath"
	"strconv"
	"strings"
	"testing"

	"github.com/soocke/detection-overlay-go/config"
	"github.com/soocke/detection-overlay-go/domain/annotate"
	"github.com/soocke/detection-overlay-go/domain/capture"
	"github.com/soocke/detection-overlay-go/domain/detect"
	"github.com/soocke/detection-overlay-go/domain/render"
)

func TestLoopFactoryFor_LoadsFromConfigAtActivation(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.ModelDir = "/first"
	var dirs []string
	load := func(dir string) (detect.Network, error) {
		dirs = append(dirs, dir)
		return nil, detect.ErrModelMissing
	}
	var captures int
	src := capture.SourceFunc(func(r image.Rectangle) (*image.RGBA, error) {
		captures++
		return image.NewRGBA(image.Rect(0, 0, r.Dx(), r.Dy())), nil
	})
	factory := LoopFactoryFor(cfg, load, src, annotate.New(detect.VOCLabels[:]))

	// edits made before an activation are picked up by it
	cfg.ModelDir = "/second"
	loop, err := factory(discardLogger)
	if err != nil {
		t.Fatalf("factory: %v", err)
	}
	if got := loop.SurfaceSize(); got != cfg.Region().Size().Mul(cfg.Scale) {
		t.Fatalf("surface = %v", got)
	}
	cfg.ModelDir = "/third"

	var flag render.RunFlag
	flag.Set()
	if err := loop.Run(&flag); !errors.Is(err, detect.ErrModelMissing) {
		t.Fatalf("run = %v, want ErrModelMissing", err)
	}
	if len(dirs) != 1 || dirs[0] != "/second" {
		t.Fatalf("loader dirs = %v, want [/second]", dirs)
	}
	if captures != 0 {
		t.Fatalf("capture attempted after load failure")
	}
}

func TestLoopFactoryFor_NilLoader(t *testing.T) {
	factory := LoopFactoryFor(config.DefaultConfig(), nil, capture.SourceFunc(func(image.Rectangle) (*image.RGBA, error) {
		return nil, capture.ErrCaptureTransient
	}), annotate.New(detect.VOCLabels[:]))
	loop, err := factory(discardLogger)
	if err != nil {
		t.Fatalf("factory: %v", err)
	}
	var flag render.RunFlag
	flag.Set()
	if err := loop.Run(&flag); !errors.Is(err, detect.ErrModelMissing) {
		t.Fatalf("run = %v, want ErrModelMissing", err)
	}
}

// The controller and its tests must build without OpenCV installed.
func TestPackageAvoidsNativeBindings(t *testing.T) {
	files, err := filepath.Glob("*.go")
	if err != nil {
		t.Fatal(err)
	}
	fset := token.NewFileSet()
	for _, name := range files {
		f, err := parser.ParseFile(fset, name, nil, parser.ImportsOnly)
		if err != nil {
			t.Fatalf("parse %s: %v", name, err)
		}
		for _, imp := range f.Imports {
			path, _ := strconv.Unquote(imp.Path.Value)
			if strings.HasPrefix(path, "gocv.io/") || strings.HasSuffix(path, "/detect/caffe") {
				t.Fatalf("%s imports %s", name, path)
			}
		}
	}
}
