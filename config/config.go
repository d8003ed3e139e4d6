package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"image"
	"os"
	"path/filepath"
	"reflect"
	"runtime"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/adrg/xdg"
	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
)

// ErrInvalid reports that one or more fields were out of range. Validate
// still clamps them before returning it.
var ErrInvalid = errors.New("invalid config")

const appDirName = "detection-overlay"

// Model artifact file names expected inside ModelDir.
const (
	TopologyFile = "MobileNet_deploy.prototxt"
	WeightsFile  = "MobileNetSSD_deploy.caffemodel"
)

// DefaultModelsURL is the archive the Download Models button fetches unless
// models_url or OVERLAY_MODELS_URL say otherwise.
const DefaultModelsURL = "https://github.com/Sparky7980/EzAim/raw/refs/heads/main/DownloadAI.zip"

// Config holds runtime configuration for the overlay and the control panel.
// Fields may be loaded from a JSON file and overridden by environment variables.
type Config struct {
	Debug bool `json:"debug"`
	// DarkMode selects the dark control panel palette.
	DarkMode bool `json:"dark_mode"`

	// Model artifacts
	ModelDir string `json:"model_dir"`
	// ModelsURL points at a zip archive holding both artifact files. Empty disables downloads.
	ModelsURL string `json:"models_url" validate:"omitempty,url"`

	// Capture region in screen coordinates
	CaptureX int `json:"capture_x"`
	CaptureY int `json:"capture_y"`
	CaptureW int `json:"capture_w" validate:"gt=0"`
	CaptureH int `json:"capture_h" validate:"gt=0"`
	// CaptureBackend selects the capture implementation: "gdi" (Windows only) or "screenshot".
	CaptureBackend string `json:"capture_backend" validate:"oneof=gdi screenshot"`

	// Detection parameters
	TargetClass int `json:"target_class" validate:"gte=0,lte=20"`
	// Threshold is the minimum confidence kept after class filtering. A near-zero
	// value keeps every candidate of TargetClass the model emits.
	Threshold float64 `json:"threshold" validate:"gte=0,lte=1"`

	// Overlay parameters
	Scale            int    `json:"scale" validate:"gte=1"`
	PacingMillis     int    `json:"pacing_ms" validate:"gt=0"`
	ExitKey          string `json:"exit_key" validate:"required"`
	Alpha            int    `json:"alpha" validate:"gte=1,lte=255"`
	PreferredDisplay int    `json:"preferred_display" validate:"gte=0"`
}

// DefaultConfig returns a Config populated with standard defaults.
func DefaultConfig() *Config {
	return &Config{
		Debug:            false,
		DarkMode:         false,
		ModelDir:         DefaultModelDir(),
		ModelsURL:        DefaultModelsURL,
		CaptureX:         710,
		CaptureY:         290,
		CaptureW:         500,
		CaptureH:         500,
		CaptureBackend:   defaultBackend(),
		TargetClass:      15,
		Threshold:        1e-21,
		Scale:            2,
		PacingMillis:     30,
		ExitKey:          "Q",
		Alpha:            255,
		PreferredDisplay: 1,
	}
}

func defaultBackend() string {
	if runtime.GOOS == "windows" {
		return "gdi"
	}
	return "screenshot"
}

// DefaultModelDir resolves the per-user model directory: %LOCALAPPDATA% on
// Windows, the XDG data home elsewhere.
func DefaultModelDir() string {
	if runtime.GOOS == "windows" {
		if base := os.Getenv("LOCALAPPDATA"); base != "" {
			return filepath.Join(base, "DetectionOverlay", "Models")
		}
	}
	return filepath.Join(xdg.DataHome, appDirName, "models")
}

// DefaultPath returns the config file location under the XDG config home.
func DefaultPath() string {
	p, err := xdg.ConfigFile(filepath.Join(appDirName, "config.json"))
	if err != nil {
		return "config.json"
	}
	return p
}

// Region returns the capture rectangle in screen coordinates.
func (c *Config) Region() image.Rectangle {
	return image.Rect(c.CaptureX, c.CaptureY, c.CaptureX+c.CaptureW, c.CaptureY+c.CaptureH)
}

// Pacing returns the sleep between render iterations.
func (c *Config) Pacing() time.Duration {
	return time.Duration(c.PacingMillis) * time.Millisecond
}

var (
	validateOnce sync.Once
	validate     *validator.Validate
)

func validatorInstance() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
		// report json names so messages match the config file
		validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
			tag := fld.Tag.Get("json")
			if idx := strings.Index(tag, ","); idx >= 0 {
				tag = tag[:idx]
			}
			if tag == "" || tag == "-" {
				return fld.Name
			}
			return tag
		})
	})
	return validate
}

// Validate checks c against its field rules, then clamps/normalizes values to
// safe ranges. A non-nil error wraps ErrInvalid and names the offending fields;
// c is usable either way.
func (c *Config) Validate() error {
	c.ExitKey = strings.ToUpper(strings.TrimSpace(c.ExitKey))
	verr := describe(validatorInstance().Struct(c))

	if c.ModelDir == "" {
		c.ModelDir = DefaultModelDir()
	}
	if c.CaptureW <= 0 {
		c.CaptureW = 500
	}
	if c.CaptureH <= 0 {
		c.CaptureH = 500
	}
	switch c.CaptureBackend {
	case "gdi", "screenshot":
	default:
		c.CaptureBackend = defaultBackend()
	}
	if c.TargetClass < 0 || c.TargetClass > 20 {
		c.TargetClass = 15
	}
	// Zero and tiny values are accepted on purpose; only out-of-range values reset.
	if c.Threshold < 0 || c.Threshold > 1 {
		c.Threshold = 1e-21
	}
	if c.Scale < 1 {
		c.Scale = 2
	}
	if c.PacingMillis <= 0 {
		c.PacingMillis = 30
	}
	if c.ExitKey == "" {
		c.ExitKey = "Q"
	}
	if c.Alpha < 1 || c.Alpha > 255 {
		c.Alpha = 255
	}
	if c.PreferredDisplay < 0 {
		c.PreferredDisplay = 1
	}
	if c.ModelsURL != "" && validatorInstance().Var(c.ModelsURL, "url") != nil {
		c.ModelsURL = ""
	}
	return verr
}

func describe(err error) error {
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return fmt.Errorf("%w: %v", ErrInvalid, err)
	}
	parts := make([]string, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		if fe.Param() != "" {
			parts = append(parts, fmt.Sprintf("%s (%s=%s)", fe.Field(), fe.Tag(), fe.Param()))
			continue
		}
		parts = append(parts, fmt.Sprintf("%s (%s)", fe.Field(), fe.Tag()))
	}
	return fmt.Errorf("%w: %s", ErrInvalid, strings.Join(parts, ", "))
}

// Load attempts to read configuration from the given JSON file path. If the file does not
// exist it returns DefaultConfig(). On JSON error it returns defaults with the error.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, err
	}
	defer f.Close()
	dec := json.NewDecoder(f)
	if err := dec.Decode(cfg); err != nil {
		return DefaultConfig(), err
	}
	_ = cfg.Validate()
	return cfg, nil
}

// Save writes the configuration to the given path in JSON format.
func (c *Config) Save(path string) error {
	_ = c.Validate()
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	return enc.Encode(c)
}

// LoadEnvFile loads a .env file next to the executable (if any) into the
// process environment. Existing variables are not overwritten.
func LoadEnvFile() string {
	exe, err := os.Executable()
	if err != nil {
		return ""
	}
	p := filepath.Join(filepath.Dir(exe), ".env")
	if _, err := os.Stat(p); err != nil {
		return ""
	}
	if err := godotenv.Load(p); err != nil {
		return ""
	}
	return p
}

// ApplyEnv overrides fields from environment variables read through getenv.
func (c *Config) ApplyEnv(getenv func(string) string) {
	if getenv == nil {
		getenv = os.Getenv
	}
	if v := strings.TrimSpace(getenv("OVERLAY_MODEL_DIR")); v != "" {
		c.ModelDir = v
	}
	if v := strings.TrimSpace(getenv("OVERLAY_MODELS_URL")); v != "" {
		c.ModelsURL = v
	}
	if v := strings.TrimSpace(getenv("OVERLAY_DEBUG")); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			c.Debug = b
		}
	}
	if v := strings.TrimSpace(getenv("OVERLAY_DARK_MODE")); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			c.DarkMode = b
		}
	}
	if v := strings.TrimSpace(getenv("OVERLAY_THRESHOLD")); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			c.Threshold = f
		}
	}
	_ = c.Validate()
}

// ApplyForm parses control panel form values keyed by field id into c.
// Unparsable or missing values leave the field unchanged. Call Validate afterwards.
func (c *Config) ApplyForm(values map[string]string) {
	ints := map[string]*int{
		"captureX":    &c.CaptureX,
		"captureY":    &c.CaptureY,
		"captureW":    &c.CaptureW,
		"captureH":    &c.CaptureH,
		"targetClass": &c.TargetClass,
		"scale":       &c.Scale,
		"pacingMs":    &c.PacingMillis,
		"alpha":       &c.Alpha,
		"display":     &c.PreferredDisplay,
	}
	for id, dst := range ints {
		if i, err := strconv.Atoi(strings.TrimSpace(values[id])); err == nil {
			*dst = i
		}
	}
	if f, err := strconv.ParseFloat(strings.TrimSpace(values["threshold"]), 64); err == nil {
		c.Threshold = f
	}
	if s := strings.TrimSpace(values["exitKey"]); s != "" {
		c.ExitKey = s
	}
	if s := strings.TrimSpace(values["modelDir"]); s != "" {
		c.ModelDir = s
	}
	if s, ok := values["modelsURL"]; ok {
		c.ModelsURL = strings.TrimSpace(s)
	}
}

// Edited returns a copy of c with the form values applied and validated.
// On error the copy is clamped but should not replace c; the error wraps
// ErrInvalid and names the rejected fields.
func (c *Config) Edited(values map[string]string) (*Config, error) {
	next := *c
	next.ApplyForm(values)
	if err := next.Validate(); err != nil {
		return &next, err
	}
	return &next, nil
}
