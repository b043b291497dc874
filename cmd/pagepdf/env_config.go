package main

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/alnah/go-pagepdf/internal/config"
)

// envPrefix marks variables read by the CLI.
const envPrefix = "PAGEPDF_"

// envConfig holds configuration from environment variables.
// Provides CI/CD-friendly overrides without requiring YAML files.
type envConfig struct {
	ConfigPath     string        // PAGEPDF_CONFIG: config file name or path
	Timeout        time.Duration // PAGEPDF_TIMEOUT: per-document timeout
	OutputDir      string        // PAGEPDF_OUTPUT_DIR: default output directory
	PageFormat     string        // PAGEPDF_PAGE_FORMAT: a4, letter, ...
	Layout         string        // PAGEPDF_LAYOUT: flow, units
	Selector       string        // PAGEPDF_SELECTOR: capture target
	RemoteEndpoint string        // PAGEPDF_REMOTE_ENDPOINT: print service URL (enables remote)
	AssetPath      string        // PAGEPDF_ASSET_PATH: custom asset directory
	MathJaxURL     string        // PAGEPDF_MATHJAX_URL: typesetter script
	Workers        int           // PAGEPDF_WORKERS: parallel workers
}

// knownEnvVars lists valid PAGEPDF_* environment variables.
// Used to detect typos and warn users about unknown variables.
var knownEnvVars = map[string]bool{
	"PAGEPDF_CONFIG":          true,
	"PAGEPDF_TIMEOUT":         true,
	"PAGEPDF_OUTPUT_DIR":      true,
	"PAGEPDF_PAGE_FORMAT":     true,
	"PAGEPDF_LAYOUT":          true,
	"PAGEPDF_SELECTOR":        true,
	"PAGEPDF_REMOTE_ENDPOINT": true,
	"PAGEPDF_ASSET_PATH":      true,
	"PAGEPDF_MATHJAX_URL":     true,
	"PAGEPDF_WORKERS":         true,
}

// loadEnvConfig reads configuration from environment variables.
// Malformed numbers and durations are ignored.
func loadEnvConfig() *envConfig {
	cfg := &envConfig{
		ConfigPath:     os.Getenv("PAGEPDF_CONFIG"),
		OutputDir:      os.Getenv("PAGEPDF_OUTPUT_DIR"),
		PageFormat:     os.Getenv("PAGEPDF_PAGE_FORMAT"),
		Layout:         os.Getenv("PAGEPDF_LAYOUT"),
		Selector:       os.Getenv("PAGEPDF_SELECTOR"),
		RemoteEndpoint: os.Getenv("PAGEPDF_REMOTE_ENDPOINT"),
		AssetPath:      os.Getenv("PAGEPDF_ASSET_PATH"),
		MathJaxURL:     os.Getenv("PAGEPDF_MATHJAX_URL"),
	}

	if timeout := os.Getenv("PAGEPDF_TIMEOUT"); timeout != "" {
		if d, err := time.ParseDuration(timeout); err == nil && d > 0 {
			cfg.Timeout = d
		}
	}

	if workers := os.Getenv("PAGEPDF_WORKERS"); workers != "" {
		if w, err := strconv.Atoi(workers); err == nil && w > 0 {
			cfg.Workers = w
		}
	}

	return cfg
}

// warnUnknownEnvVars prints warnings for unrecognized PAGEPDF_* variables.
func warnUnknownEnvVars(w io.Writer) {
	for _, env := range os.Environ() {
		if !strings.HasPrefix(env, envPrefix) {
			continue
		}
		name := strings.SplitN(env, "=", 2)[0]
		if !knownEnvVars[name] {
			fmt.Fprintf(w, "warning: unknown environment variable %s (typo?)\n", name)
		}
	}
}

// applyEnvConfig applies environment variable values to config.
// Only sets values if the env var is set AND the config value is empty/zero.
// This ensures: CLI flags > env vars > config file > defaults
// (CLI flags are applied later via mergeFlags)
func applyEnvConfig(env *envConfig, cfg *config.Config) {
	if env.Timeout > 0 && cfg.Capture.Timeout == 0 {
		cfg.Capture.Timeout = env.Timeout
	}
	if env.OutputDir != "" && cfg.Output.DefaultDir == "" {
		cfg.Output.DefaultDir = env.OutputDir
	}
	if env.PageFormat != "" && cfg.Page.Format == "" {
		cfg.Page.Format = env.PageFormat
	}
	if env.Layout != "" && cfg.Layout.Mode == "" {
		cfg.Layout.Mode = env.Layout
	}
	if env.Selector != "" && cfg.Capture.Selector == "" {
		cfg.Capture.Selector = env.Selector
	}
	if env.AssetPath != "" && cfg.Assets.BasePath == "" {
		cfg.Assets.BasePath = env.AssetPath
	}
	if env.MathJaxURL != "" && cfg.Capture.MathJaxURL == "" {
		cfg.Capture.MathJaxURL = env.MathJaxURL
	}

	// An endpoint from the environment enables the remote strategy.
	if env.RemoteEndpoint != "" && cfg.Remote.Endpoint == "" {
		cfg.Remote.Endpoint = env.RemoteEndpoint
		cfg.Remote.Enabled = true
	}
}
