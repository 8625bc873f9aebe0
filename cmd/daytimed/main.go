// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

// Command daytimed serves the current time of day over TCP.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"gopkg.in/yaml.v3"

	"github.com/ManuGH/daytime/internal/config"
	"github.com/ManuGH/daytime/internal/daemon"
	"github.com/ManuGH/daytime/internal/health"
	"github.com/ManuGH/daytime/internal/log"
	"github.com/ManuGH/daytime/internal/version"
)

// configEnv names the file to load when -config is not given.
const configEnv = "DAYTIME_CONFIG"

func main() {
	if len(os.Args) > 1 && os.Args[1] == "healthcheck" {
		os.Exit(runHealthcheckCLI(os.Args[2:], os.Stdout, os.Stderr))
	}

	// Create a context that listens for the interrupt signal from the OS
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	code := run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("daytimed", flag.ContinueOnError)
	fs.SetOutput(stderr)
	showVersion := fs.Bool("version", false, "print version and exit")
	configPath := fs.String("config", "", "path to config file (YAML)")
	printConfig := fs.Bool("print-config", false, "print the effective configuration as YAML and exit")
	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		return 2
	}

	if *showVersion {
		fmt.Fprintln(stdout, version.String())
		return 0
	}

	// Configure logger with safe defaults until config is loaded
	log.Configure(log.Config{
		Level:   "info",
		Output:  stdout,
		Service: config.DefaultLogService,
		Version: version.Version,
	})
	logger := log.WithComponent("daemon")

	path := strings.TrimSpace(*configPath)
	if path == "" {
		path = strings.TrimSpace(config.ParseString(configEnv, ""))
	}

	// Load configuration with precedence: ENV > File > Defaults
	loader := config.NewLoader(path, version.Version)
	cfg, err := loader.Load()
	if err != nil {
		logger.Error().
			Err(err).
			Str(log.FieldEvent, "config.load_failed").
			Str("config_path", path).
			Msg("failed to load configuration")
		return 1
	}

	if *printConfig {
		out, err := yaml.Marshal(cfg.ToFileConfig())
		if err != nil {
			fmt.Fprintf(stderr, "daytimed: render config: %v\n", err)
			return 1
		}
		_, _ = stdout.Write(out)
		return 0
	}

	// Re-configure logger with loaded configuration
	log.Configure(log.Config{
		Level:   cfg.LogLevel,
		Format:  cfg.LogFormat,
		Output:  stdout,
		Service: cfg.LogService,
		Version: cfg.Version,
	})
	logger = log.WithComponent("daemon")

	source := "env+defaults"
	if path != "" {
		source = "file"
	}
	logger.Info().
		Str(log.FieldEvent, "config.loaded").
		Str("source", source).
		Str("path", path).
		Strs("env_keys", loader.ConsumedKeys()).
		Msg("loaded configuration")

	if err := health.PerformStartupChecks(ctx, cfg); err != nil {
		logger.Error().
			Err(err).
			Str(log.FieldEvent, "startup.check_failed").
			Msg("startup checks failed")
		return 1
	}

	app, err := daemon.Bootstrap(ctx, cfg, daemon.Options{})
	if err != nil {
		logger.Error().
			Err(err).
			Str(log.FieldEvent, "startup.failed").
			Msg("failed to initialise daemon")
		return 1
	}

	logger.Info().
		Str(log.FieldEvent, "daemon.starting").
		Str(log.FieldListenAddr, cfg.Daytime.ListenAddr).
		Msg("starting daytimed")

	if err := app.Run(ctx); err != nil {
		logger.Error().
			Err(err).
			Str(log.FieldEvent, "daemon.failed").
			Msg("daytimed stopped with error")
		return 1
	}

	logger.Info().Str(log.FieldEvent, "daemon.stopped").Msg("daytimed stopped")
	return 0
}
