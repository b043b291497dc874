package main

import (
	"errors"
	"fmt"

	flag "github.com/spf13/pflag"

	"github.com/alnah/go-pagepdf/internal/config"
	"github.com/alnah/go-pagepdf/internal/yamlutil"
)

// runConfigCmd prints the effective configuration as YAML: the config
// file (if any) with PAGEPDF_* variables applied.
func runConfigCmd(args []string, env *Environment) int {
	fs := flag.NewFlagSet("config", flag.ContinueOnError)
	fs.SetOutput(env.Stderr)
	var name string
	fs.StringVarP(&name, "config", "c", "", "config file name or path")
	fs.Usage = func() { printConfigUsage(env.Stderr) }

	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return ExitSuccess
		}
		return reportError(env, fmt.Errorf("%w: %v", ErrUsage, err), "", nil)
	}

	envCfg := loadEnvConfig()
	if name == "" {
		name = envCfg.ConfigPath
	}

	cfg := config.DefaultConfig()
	if name != "" {
		loaded, err := config.LoadConfig(name)
		if err != nil {
			return reportError(env, fmt.Errorf("loading config: %w", err), name, nil)
		}
		cfg = loaded
	}
	applyEnvConfig(envCfg, cfg)
	if err := cfg.Validate(); err != nil {
		return reportError(env, err, name, cfg)
	}

	out, err := yamlutil.Marshal(cfg)
	if err != nil {
		return reportError(env, err, name, cfg)
	}
	_, _ = env.Stdout.Write(out)
	return ExitSuccess
}
