// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package daemon

import (
	"net/http"

	"github.com/ManuGH/daytime/internal/config"
	"github.com/ManuGH/daytime/internal/daytime"
	"github.com/rs/zerolog"
)

// Deps contains dependencies required by the daemon Manager.
type Deps struct {
	// Logger is the structured logger for the daemon
	Logger zerolog.Logger

	// Config is the effective configuration
	Config config.AppConfig

	// Daytime is the TCP time server
	Daytime *daytime.Server

	// AdminHandler serves /healthz, /readyz and /metrics.
	// Required when Config.Admin.ListenAddr is set.
	AdminHandler http.Handler
}

// Validate checks if the dependencies are valid.
func (d *Deps) Validate() error {
	if d.Logger.GetLevel() == zerolog.Disabled {
		return ErrMissingLogger
	}
	if d.Daytime == nil {
		return ErrMissingDaytimeServer
	}
	if d.Config.Admin.ListenAddr != "" && d.AdminHandler == nil {
		return ErrMissingAdminHandler
	}
	// Config validation is done by config.Loader
	return nil
}
