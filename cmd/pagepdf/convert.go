package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	flag "github.com/spf13/pflag"
	"go.uber.org/zap"

	pagepdf "github.com/alnah/go-pagepdf"
	"github.com/alnah/go-pagepdf/internal/config"
)

// Sentinel errors for CLI operations.
var (
	ErrUsage           = errors.New("invalid usage")
	ErrNoInput         = errors.New("no input specified")
	ErrReadInput       = errors.New("failed to read input file")
	ErrReadCSS         = errors.New("failed to read CSS file")
	ErrWriteOutput     = errors.New("failed to write output file")
	ErrCreateOutputDir = errors.New("failed to create output directory")
	ErrConverterInit   = errors.New("failed to initialize converter")
)

// stdinName is the positional argument that reads the document from stdin.
const stdinName = "-"

// maxStdinSize bounds a document read from stdin.
const maxStdinSize = 64 << 20

// conversionParams groups parameters shared across batch/file conversion.
type conversionParams struct {
	input      pagepdf.Input // template: content fields are filled per file
	htmlOutput bool
	logger     *zap.Logger
}

// runConvertCmd parses flags, converts every input and returns an exit code.
func runConvertCmd(ctx context.Context, args []string, env *Environment) int {
	flags, positional, err := parseConvertFlags(args)
	if errors.Is(err, flag.ErrHelp) {
		return ExitSuccess
	}
	if err != nil {
		return reportError(env, fmt.Errorf("%w: %v", ErrUsage, err), "", nil)
	}

	envCfg := loadEnvConfig()
	configName := flags.common.config
	if configName == "" {
		configName = envCfg.ConfigPath
	}

	cfg, err := loadEffectiveConfig(configName, envCfg, flags)
	if err != nil {
		return reportError(env, err, configName, cfg)
	}

	logger := newLogger(env.Stderr, flags.common.verbose, flags.common.quiet)
	defer func() { _ = logger.Sync() }()
	if !flags.common.quiet {
		warnUnknownEnvVars(env.Stderr)
	}

	workers := flags.workers
	if workers == 0 {
		workers = envCfg.Workers
	}
	if err := runConvert(ctx, positional, flags, workers, cfg, logger, env); err != nil {
		logger.Debug("convert failed", zap.Error(err))
		return reportError(env, err, configName, cfg)
	}
	return ExitSuccess
}

// loadEffectiveConfig layers defaults, config file, environment and flags.
func loadEffectiveConfig(configName string, envCfg *envConfig, flags *convertFlags) (*config.Config, error) {
	cfg := config.DefaultConfig()
	if configName != "" {
		loaded, err := config.LoadConfig(configName)
		if err != nil {
			return cfg, fmt.Errorf("loading config: %w", err)
		}
		cfg = loaded
	}

	applyEnvConfig(envCfg, cfg)
	mergeFlags(flags, cfg)

	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// runConvert discovers inputs and converts them through a converter pool.
func runConvert(ctx context.Context, positional []string, flags *convertFlags, workers int, cfg *config.Config, logger *zap.Logger, env *Environment) error {
	if err := validateWorkers(workers); err != nil {
		return err
	}

	outputDir := resolveOutputDir(flags.output, cfg)
	files, err := resolveInputs(positional, outputDir, env)
	if err != nil {
		return err
	}
	if len(files) == 0 {
		return fmt.Errorf("%w: no HTML or Markdown files found in %s", ErrNoInput, positional[0])
	}

	css, err := readCSSFile(flags.capture.css)
	if err != nil {
		return err
	}

	in := buildInputTemplate(cfg)
	in.CSS = css
	in.HTMLOnly = flags.outputMode.htmlOnly
	params := &conversionParams{
		input:      in,
		htmlOutput: flags.outputMode.html,
		logger:     logger,
	}

	size := pagepdf.ResolvePoolSize(workers)
	if size > len(files) {
		size = len(files)
	}
	logger.Debug("starting conversion", zap.Int("files", len(files)), zap.Int("workers", size))

	pool := env.NewPool(size, buildOptions(cfg, logger)...)
	defer func() {
		if err := pool.Close(); err != nil {
			logger.Warn("closing converters", zap.Error(err))
		}
	}()

	results := convertBatch(ctx, pool, files, params)
	if failed := printResultsWithWriter(results, flags.common.quiet, flags.common.verbose, cfg, logger, env); failed > 0 {
		return &batchError{failed: failed, first: firstError(results)}
	}
	return nil
}

// batchError reports failed conversions after each one has been printed.
// It unwraps to the first failure so the exit code reflects its cause.
type batchError struct {
	failed int
	first  error
}

func (e *batchError) Error() string {
	return fmt.Sprintf("%d conversion(s) failed", e.failed)
}

func (e *batchError) Unwrap() error { return e.first }

// resolveInputs maps positional arguments to files. With no argument and
// piped stdin, the document is read from stdin.
func resolveInputs(positional []string, outputDir string, env *Environment) ([]FileToConvert, error) {
	if len(positional) == 0 {
		if env.StdinIsTerminal() {
			return nil, ErrNoInput
		}
		positional = []string{stdinName}
	}
	if len(positional) > 1 {
		return nil, fmt.Errorf("%w: expected one input, got %d", ErrUsage, len(positional))
	}

	if positional[0] == stdinName {
		data, err := io.ReadAll(io.LimitReader(env.Stdin, maxStdinSize))
		if err != nil {
			return nil, fmt.Errorf("%w: stdin: %v", ErrReadInput, err)
		}
		return []FileToConvert{stdinFile(data, outputDir)}, nil
	}

	files, err := discoverFiles(positional[0], outputDir)
	if err != nil {
		return nil, fmt.Errorf("discovering files: %w", err)
	}
	return files, nil
}

// resolveOutputDir determines the output directory from flag or config.
func resolveOutputDir(flagOutput string, cfg *config.Config) string {
	if flagOutput != "" {
		return flagOutput
	}
	return cfg.Output.DefaultDir
}

// readCSSFile reads the --css file, if any.
func readCSSFile(path string) (string, error) {
	if path == "" {
		return "", nil
	}
	content, err := os.ReadFile(path) // #nosec G304 -- user-provided path
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrReadCSS, err)
	}
	return string(content), nil
}
