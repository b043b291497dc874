package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/alnah/go-pagepdf/internal/fileutil"
	"github.com/alnah/go-pagepdf/internal/yamlutil"
)

// Sentinel errors for config operations.
var (
	ErrConfigNotFound  = errors.New("config file not found")
	ErrEmptyConfigName = errors.New("config name cannot be empty")
	ErrConfigParse     = errors.New("failed to parse config")
	ErrFieldTooLong    = errors.New("field exceeds maximum length")
	ErrInvalidValue    = errors.New("invalid config value")
)

// AppDirName is the directory under the user config dir searched by LoadConfig.
const AppDirName = "go-pagepdf"

// Field length limits.
const (
	MaxPathLength        = 4096
	MaxURLLength         = 2048
	MaxSelectorLength    = 512
	MaxStyleLength       = 4096 // name, path or inline CSS
	MaxPageFormatLength  = 10
	MaxOrientationLength = 10
	MaxSuppressEntries   = 32
)

// Config holds all configuration for document generation.
type Config struct {
	Output  OutputConfig  `yaml:"output"`
	Page    PageConfig    `yaml:"page"`
	Capture CaptureConfig `yaml:"capture"`
	Layout  LayoutConfig  `yaml:"layout"`
	Remote  RemoteConfig  `yaml:"remote"`
	Assets  AssetsConfig  `yaml:"assets"`
}

// OutputConfig defines output destination options.
type OutputConfig struct {
	DefaultDir string `yaml:"defaultDir"` // empty = next to the source
}

// PageConfig defines physical page settings.
type PageConfig struct {
	Format         string  `yaml:"format"`         // a4, letter, legal, a3, a5
	Orientation    string  `yaml:"orientation"`    // portrait, landscape
	Margin         float64 `yaml:"margin"`         // points, all sides
	Oversampling   float64 `yaml:"oversampling"`   // raster px per CSS px
	ReferenceWidth int     `yaml:"referenceWidth"` // authoring width in CSS px
}

// CaptureConfig defines how the content tree is captured.
type CaptureConfig struct {
	Selector      string        `yaml:"selector"`      // capture target
	BlockSelector string        `yaml:"blockSelector"` // atomic blocks
	Style         string        `yaml:"style"`         // capture stylesheet name, path or CSS
	ImageFormat   string        `yaml:"imageFormat"`   // jpeg, png
	JPEGQuality   int           `yaml:"jpegQuality"`   // 1-100
	AdjustMode    string        `yaml:"adjustMode"`    // cascade, one-pass
	ShiftBuffer   *float64      `yaml:"shiftBuffer"`   // px, nil = default
	FontTimeout   time.Duration `yaml:"fontTimeout"`
	SettleDelay   time.Duration `yaml:"settleDelay"`
	Timeout       time.Duration `yaml:"timeout"` // whole job
	MathJaxURL    string        `yaml:"mathJaxURL"`
}

// LayoutConfig selects flow or per-unit pagination.
type LayoutConfig struct {
	Mode         string   `yaml:"mode"`         // flow, units
	UnitSelector string   `yaml:"unitSelector"` // units mode
	Suppress     []string `yaml:"suppress"`     // hidden in unit captures
}

// RemoteConfig configures the remote rendering strategy.
type RemoteConfig struct {
	Enabled  bool          `yaml:"enabled"`
	Endpoint string        `yaml:"endpoint"`
	Timeout  time.Duration `yaml:"timeout"`
}

// AssetsConfig defines asset loading options.
type AssetsConfig struct {
	BasePath string `yaml:"basePath"` // empty = embedded assets
}

// Validate checks lengths, enumerations and ranges. Zero values mean
// "use the default" and always pass.
// Called by LoadConfig; also available to callers building Config by hand.
func (c *Config) Validate() error {
	checks := []struct {
		field string
		value string
		max   int
	}{
		{"output.defaultDir", c.Output.DefaultDir, MaxPathLength},
		{"page.format", c.Page.Format, MaxPageFormatLength},
		{"page.orientation", c.Page.Orientation, MaxOrientationLength},
		{"capture.selector", c.Capture.Selector, MaxSelectorLength},
		{"capture.blockSelector", c.Capture.BlockSelector, MaxSelectorLength},
		{"capture.style", c.Capture.Style, MaxStyleLength},
		{"capture.mathJaxURL", c.Capture.MathJaxURL, MaxURLLength},
		{"layout.unitSelector", c.Layout.UnitSelector, MaxSelectorLength},
		{"remote.endpoint", c.Remote.Endpoint, MaxURLLength},
		{"assets.basePath", c.Assets.BasePath, MaxPathLength},
	}
	for _, chk := range checks {
		if err := validateFieldLength(chk.field, chk.value, chk.max); err != nil {
			return err
		}
	}

	if len(c.Layout.Suppress) > MaxSuppressEntries {
		return fmt.Errorf("%w: layout.suppress has %d entries (max %d)", ErrInvalidValue, len(c.Layout.Suppress), MaxSuppressEntries)
	}
	for i, sel := range c.Layout.Suppress {
		if err := validateFieldLength(fmt.Sprintf("layout.suppress[%d]", i), sel, MaxSelectorLength); err != nil {
			return err
		}
	}

	if err := oneOf("page.format", c.Page.Format, "a4", "letter", "legal", "a3", "a5"); err != nil {
		return err
	}
	if err := oneOf("page.orientation", c.Page.Orientation, "portrait", "landscape"); err != nil {
		return err
	}
	if err := oneOf("capture.imageFormat", c.Capture.ImageFormat, "jpeg", "png"); err != nil {
		return err
	}
	if err := oneOf("capture.adjustMode", c.Capture.AdjustMode, "cascade", "one-pass"); err != nil {
		return err
	}
	if err := oneOf("layout.mode", c.Layout.Mode, "flow", "units"); err != nil {
		return err
	}

	if c.Page.Margin != 0 && (c.Page.Margin < 1 || c.Page.Margin > 200) {
		return fmt.Errorf("%w: page.margin must be between 1 and 200 points, got %.2f", ErrInvalidValue, c.Page.Margin)
	}
	if c.Page.Oversampling != 0 && (c.Page.Oversampling < 1 || c.Page.Oversampling > 4) {
		return fmt.Errorf("%w: page.oversampling must be between 1 and 4, got %.2f", ErrInvalidValue, c.Page.Oversampling)
	}
	if c.Page.ReferenceWidth != 0 && (c.Page.ReferenceWidth < 200 || c.Page.ReferenceWidth > 4000) {
		return fmt.Errorf("%w: page.referenceWidth must be between 200 and 4000, got %d", ErrInvalidValue, c.Page.ReferenceWidth)
	}
	if c.Capture.JPEGQuality != 0 && (c.Capture.JPEGQuality < 1 || c.Capture.JPEGQuality > 100) {
		return fmt.Errorf("%w: capture.jpegQuality must be between 1 and 100, got %d", ErrInvalidValue, c.Capture.JPEGQuality)
	}
	if c.Capture.ShiftBuffer != nil && *c.Capture.ShiftBuffer < 0 {
		return fmt.Errorf("%w: capture.shiftBuffer must not be negative", ErrInvalidValue)
	}

	durations := []struct {
		field string
		value time.Duration
	}{
		{"capture.fontTimeout", c.Capture.FontTimeout},
		{"capture.settleDelay", c.Capture.SettleDelay},
		{"capture.timeout", c.Capture.Timeout},
		{"remote.timeout", c.Remote.Timeout},
	}
	for _, d := range durations {
		if d.value < 0 {
			return fmt.Errorf("%w: %s must not be negative", ErrInvalidValue, d.field)
		}
	}

	if c.Remote.Enabled && c.Remote.Endpoint == "" {
		return fmt.Errorf("%w: remote.endpoint is required when remote is enabled", ErrInvalidValue)
	}
	if c.Remote.Endpoint != "" && !fileutil.IsURL(c.Remote.Endpoint) {
		return fmt.Errorf("%w: remote.endpoint must be an http(s) URL", ErrInvalidValue)
	}

	return nil
}

// validateFieldLength checks if a field exceeds its maximum allowed length.
func validateFieldLength(fieldName, value string, maxLength int) error {
	if len(value) > maxLength {
		return fmt.Errorf("%w: %s (%d chars, max %d)", ErrFieldTooLong, fieldName, len(value), maxLength)
	}
	return nil
}

// oneOf accepts empty values and case-insensitive members of allowed.
func oneOf(field, value string, allowed ...string) error {
	if value == "" {
		return nil
	}
	for _, a := range allowed {
		if strings.EqualFold(value, a) {
			return nil
		}
	}
	return fmt.Errorf("%w: %s %q (must be one of %s)", ErrInvalidValue, field, value, strings.Join(allowed, ", "))
}

// DefaultConfig returns a configuration where every field uses the
// library defaults.
func DefaultConfig() *Config {
	return &Config{}
}

// LoadConfig loads configuration from a file path or config name.
// If nameOrPath contains a path separator, it's treated as a file path.
// Otherwise, it's searched as name.yaml or name.yml in the current
// directory, then in the user config directory under AppDirName.
// Returns error if the file is not found (no silent fallback).
func LoadConfig(nameOrPath string) (*Config, error) {
	if nameOrPath == "" {
		return nil, ErrEmptyConfigName
	}

	configPath := nameOrPath
	if !strings.ContainsAny(nameOrPath, "/\\") {
		var err error
		if configPath, err = resolveConfigPath(nameOrPath); err != nil {
			return nil, err
		}
	}

	data, err := os.ReadFile(configPath) // #nosec G304 -- config path is user-provided
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrConfigNotFound, configPath)
		}
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	var cfg Config
	if err := yamlutil.UnmarshalStrict(data, &cfg); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrConfigParse, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// SearchPaths returns the files LoadConfig tries for a config name, in order.
func SearchPaths(name string) []string {
	extensions := []string{".yaml", ".yml"}
	dirs := []string{""}
	if userDir, err := os.UserConfigDir(); err == nil {
		dirs = append(dirs, filepath.Join(userDir, AppDirName))
	}

	paths := make([]string, 0, len(dirs)*len(extensions))
	for _, dir := range dirs {
		for _, ext := range extensions {
			p := name + ext
			if dir != "" {
				p = filepath.Join(dir, p)
			}
			paths = append(paths, p)
		}
	}
	return paths
}

// resolveConfigPath searches for a config file by name.
func resolveConfigPath(name string) (string, error) {
	tried := SearchPaths(name)
	for _, p := range tried {
		if info, err := os.Stat(p); err == nil && !info.IsDir() {
			return p, nil
		}
	}
	return "", fmt.Errorf("%w: tried %s", ErrConfigNotFound, strings.Join(tried, ", "))
}
