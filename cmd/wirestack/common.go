package main

import (
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	wirestack "github.com/wirestack/wirestack"
	"github.com/wirestack/wirestack/internal/baseline"
	"github.com/wirestack/wirestack/internal/config"
	"github.com/wirestack/wirestack/stack"
)

// configOpts are the flags shared by every command that composes the stack.
type configOpts struct {
	configFile  string
	environment string
	logLevel    string
}

// addConfigFlags registers the shared flags on a command.
func addConfigFlags(cmd *cobra.Command, opts *configOpts) {
	cmd.Flags().StringVarP(&opts.configFile, "config", "c", "", "Config file (default: wirestack.yaml if present)")
	cmd.Flags().StringVarP(&opts.environment, "environment", "e", "", "Target environment (overrides config)")
	cmd.Flags().StringVar(&opts.logLevel, "log-level", "", "Function log level: debug, info, warn, error (overrides config)")
}

// resolveConfig loads the config file, if any, and applies flag overrides.
func resolveConfig(opts configOpts) (config.Config, error) {
	cfg := config.Default()

	path := opts.configFile
	if path == "" {
		if _, err := os.Stat("wirestack.yaml"); err == nil {
			path = "wirestack.yaml"
		}
	}
	if path != "" {
		loaded, err := config.Load(path)
		if err != nil {
			return config.Config{}, err
		}
		cfg = loaded
	}

	if opts.environment != "" {
		cfg.Environment = opts.environment
	}
	if opts.logLevel != "" {
		cfg.LogLevel = opts.logLevel
	}
	if err := cfg.Validate(); err != nil {
		return config.Config{}, err
	}
	return cfg, nil
}

// newLogger builds the CLI logger at the configured level.
func newLogger(cfg config.Config) *slog.Logger {
	level, err := config.ParseLevel(cfg.LogLevel)
	if err != nil {
		level = slog.LevelInfo
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}

// composeStack builds the stack for the resolved config.
func composeStack(cfg config.Config) (*stack.Stack, error) {
	return stack.New(stack.Props{
		Environment:    cfg.Environment,
		LogLevel:       cfg.LogLevel,
		StackName:      cfg.ResolvedStackName(),
		ArtifactBucket: cfg.ResolvedArtifactBucket(),
		ExtraTags:      cfg.ExtraTags,
	})
}

// synthesize composes, synthesizes, verifies, and checks the stack. It
// fails before returning a template when any stage does, so nothing
// downstream ever sees a template that did not pass.
func synthesize(cfg config.Config) (*stack.Stack, *wirestack.Template, error) {
	s, err := composeStack(cfg)
	if err != nil {
		return nil, nil, err
	}

	tmpl, err := s.Synthesize()
	if err != nil {
		return nil, nil, err
	}

	if err := s.Verify(tmpl); err != nil {
		return nil, nil, fmt.Errorf("verification failed:\n%w", err)
	}

	report, err := baseline.Evaluate(tmpl, s.Exceptions())
	if err != nil {
		return nil, nil, err
	}
	if report.Failed() {
		var errs []error
		for _, f := range report.Findings {
			errs = append(errs, errors.New(f.String()))
		}
		return nil, nil, fmt.Errorf("security baseline failed:\n%w", errors.Join(errs...))
	}
	for _, f := range report.Findings {
		fmt.Fprintf(os.Stderr, "warning: %s\n", f)
	}

	return s, tmpl, nil
}

// writeOutput writes data to a file, or stdout when path is empty.
func writeOutput(data []byte, path string) error {
	if path == "" {
		_, err := os.Stdout.Write(data)
		return err
	}
	return os.WriteFile(path, data, 0o644)
}
