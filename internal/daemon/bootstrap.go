// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

// Package daemon provides the core daemon bootstrapping and lifecycle management.
package daemon

import (
	"context"
	"fmt"
	"net/http"

	"github.com/ManuGH/daytime/internal/clock"
	"github.com/ManuGH/daytime/internal/config"
	"github.com/ManuGH/daytime/internal/daytime"
	"github.com/ManuGH/daytime/internal/health"
	"github.com/ManuGH/daytime/internal/log"
	"github.com/ManuGH/daytime/internal/telemetry"
)

// clockStaleFactor is how many missed refresh intervals mark the clock as degraded.
const clockStaleFactor = 3

// Options tweaks Bootstrap, mainly for tests.
type Options struct {
	// NTPQuery replaces the network NTP exchange.
	NTPQuery clock.QueryFunc
}

// Bootstrap wires the clock, telemetry, health checks, daytime server and
// admin router from cfg and returns an App ready to Run.
// An NTP clock that cannot be synchronised at startup is a fatal error.
func Bootstrap(ctx context.Context, cfg config.AppConfig, opts Options) (*App, error) {
	logger := log.WithComponent("daemon")

	provider, err := telemetry.NewProvider(ctx, telemetry.Config{
		Enabled:        cfg.Telemetry.Enabled,
		ServiceName:    cfg.LogService,
		ServiceVersion: cfg.Version,
		Environment:    cfg.Telemetry.Environment,
		ExporterType:   cfg.Telemetry.Exporter,
		Endpoint:       cfg.Telemetry.Endpoint,
		SamplingRate:   cfg.Telemetry.SamplingRate,
	})
	if err != nil {
		logger.Warn().Err(err).Msg("telemetry initialization failed, continuing without tracing")
		provider = nil
	} else if cfg.Telemetry.Enabled {
		logger.Info().
			Str("endpoint", cfg.Telemetry.Endpoint).
			Float64("sampling_rate", cfg.Telemetry.SamplingRate).
			Msg("telemetry initialized")
	}

	var (
		clk       clock.Clock = clock.System{}
		ntpClock  *clock.NTP
		refresher ClockRefresher
	)
	if cfg.Clock.Source == clock.SourceNTP {
		ntpClock, err = clock.NewNTP(ctx, clock.NTPConfig{
			Server:  cfg.Clock.NTPServer,
			Timeout: cfg.Clock.NTPTimeout,
			Query:   opts.NTPQuery,
		})
		if err != nil {
			_ = provider.Shutdown(context.WithoutCancel(ctx))
			return nil, fmt.Errorf("initial clock sync: %w", err)
		}
		clk = ntpClock
		refresher = ntpClock
		logger.Info().
			Str(log.FieldNTPServer, cfg.Clock.NTPServer).
			Dur(log.FieldOffset, ntpClock.Offset()).
			Msg("ntp clock synchronised")
	}

	server := daytime.NewServer(daytime.ServerConfig{
		ListenAddr:   cfg.Daytime.ListenAddr,
		WriteTimeout: cfg.Daytime.WriteTimeout,
		AcceptRate:   cfg.Daytime.AcceptRate,
		AcceptBurst:  cfg.Daytime.AcceptBurst,
		ClockSource:  cfg.Clock.Source,
	}, clk, log.Base())

	hm := health.NewManager(cfg.Version)
	hm.RegisterChecker(health.NewListenerChecker(server.Addr))
	if ntpClock != nil {
		hm.RegisterChecker(health.NewClockSyncChecker(ntpClock.LastSync, clockStaleFactor*cfg.Clock.RefreshInterval))
	}

	var admin http.Handler
	if cfg.Admin.ListenAddr != "" {
		admin = NewAdminHandler(hm, cfg.Admin.RateLimit)
	}

	mgr, err := NewManager(Deps{
		Logger:       logger,
		Config:       cfg,
		Daytime:      server,
		AdminHandler: admin,
	})
	if err != nil {
		_ = provider.Shutdown(context.WithoutCancel(ctx))
		return nil, err
	}
	mgr.RegisterShutdownHook("telemetry", provider.Shutdown)

	return NewApp(logger, mgr, refresher, cfg.Clock.RefreshInterval), nil
}
