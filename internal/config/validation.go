// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package config

import (
	"strings"

	"github.com/ManuGH/daytime/internal/validate"
)

// Validate validates an AppConfig using the centralized validation package
func Validate(cfg AppConfig) error {
	v := validate.New()

	if _, err := validate.ParseLogLevel(cfg.LogLevel); err != nil {
		v.AddError("LogLevel", "must be one of debug, info, warn, error", cfg.LogLevel)
	}
	if !validate.LogFormat(cfg.LogFormat).IsValid() {
		v.AddError("LogFormat", "must be json or console", cfg.LogFormat)
	}
	if cfg.ShutdownTimeout <= 0 {
		v.AddError("ShutdownTimeout", "must be positive", cfg.ShutdownTimeout)
	}

	// Daytime listener
	v.ListenAddr("Daytime.ListenAddr", cfg.Daytime.ListenAddr)
	if cfg.Daytime.WriteTimeout < 0 {
		v.AddError("Daytime.WriteTimeout", "cannot be negative", cfg.Daytime.WriteTimeout)
	}
	if cfg.Daytime.AcceptRate < 0 {
		v.AddError("Daytime.AcceptRate", "cannot be negative", cfg.Daytime.AcceptRate)
	}
	if cfg.Daytime.AcceptRate > 0 {
		v.Range("Daytime.AcceptBurst", cfg.Daytime.AcceptBurst, 1, 10000)
	}

	// Clock
	v.OneOf("Clock.Source", cfg.Clock.Source, []string{"system", "ntp"})
	if cfg.Clock.Source == "ntp" {
		v.NotEmpty("Clock.NTPServer", cfg.Clock.NTPServer)
		if cfg.Clock.NTPTimeout <= 0 {
			v.AddError("Clock.NTPTimeout", "must be positive", cfg.Clock.NTPTimeout)
		}
		if cfg.Clock.RefreshInterval < 0 {
			v.AddError("Clock.RefreshInterval", "cannot be negative", cfg.Clock.RefreshInterval)
		}
	}

	// Admin server (optional)
	if strings.TrimSpace(cfg.Admin.ListenAddr) != "" {
		v.ListenAddr("Admin.ListenAddr", cfg.Admin.ListenAddr)
		if cfg.Admin.ListenAddr == cfg.Daytime.ListenAddr {
			v.AddError("Admin.ListenAddr", "must differ from the daytime listen address", cfg.Admin.ListenAddr)
		}
		v.Range("Admin.MaxConns", cfg.Admin.MaxConns, 1, 1024)
		v.NonNegative("Admin.RateLimit", cfg.Admin.RateLimit)
	}

	// Telemetry
	if cfg.Telemetry.Enabled {
		v.OneOf("Telemetry.Exporter", cfg.Telemetry.Exporter, []string{"grpc", "http"})
		v.NotEmpty("Telemetry.Endpoint", cfg.Telemetry.Endpoint)
		v.FloatRange("Telemetry.SamplingRate", cfg.Telemetry.SamplingRate, 0, 1)
	}

	return v.Err()
}
