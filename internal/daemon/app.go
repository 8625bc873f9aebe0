// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package daemon

import (
	"context"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/rs/zerolog"
)

// ClockRefresher keeps a disciplined clock synchronised; satisfied by *clock.NTP.
type ClockRefresher interface {
	Run(ctx context.Context, interval time.Duration) error
}

// App owns the long-lived runtime lifecycle (clock refresh) and delegates
// server management to Manager.
type App struct {
	logger   zerolog.Logger
	manager  Manager
	refresh  ClockRefresher
	interval time.Duration
}

// NewApp creates a new App orchestrator. refresher may be nil.
func NewApp(logger zerolog.Logger, manager Manager, refresher ClockRefresher, interval time.Duration) *App {
	return &App{
		logger:   logger,
		manager:  manager,
		refresh:  refresher,
		interval: interval,
	}
}

// Manager returns the server manager, for registering shutdown hooks.
func (a *App) Manager() Manager {
	return a.manager
}

// Run starts all owned background subsystems and blocks until ctx is cancelled or a fatal error occurs.
func (a *App) Run(ctx context.Context) error {
	if a.manager == nil {
		return ErrMissingManager
	}

	g, ctx := errgroup.WithContext(ctx)

	// Clock refresh is best-effort: failures keep the last offset and are logged by the clock.
	if a.refresh != nil && a.interval > 0 {
		g.Go(func() error {
			a.logger.Debug().Dur("interval", a.interval).Msg("starting clock refresh")
			return a.refresh.Run(ctx, a.interval)
		})
	}

	// Main server lifecycle.
	g.Go(func() error {
		err := a.manager.Start(ctx)
		if err != nil {
			_ = a.manager.Shutdown(context.Background())
		}
		return err
	})

	return g.Wait()
}
