// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

// Package config provides configuration management for the daytime daemon.
package config

import "time"

// Defaults shared by the loader and the documentation in config.example.yaml.
const (
	DefaultListenAddr      = ":7658"
	DefaultLogLevel        = "info"
	DefaultLogFormat       = "json"
	DefaultLogService      = "daytimed"
	DefaultClockSource     = "system"
	DefaultNTPServer       = "pool.ntp.org"
	DefaultNTPTimeout      = 5 * time.Second
	DefaultNTPRefresh      = 15 * time.Minute
	DefaultAdminMaxConns   = 16
	DefaultAdminRateLimit  = 60
	DefaultShutdownTimeout = 10 * time.Second
	DefaultOTelExporter    = "grpc"
	DefaultOTelSampling    = 1.0
)

// AppConfig is the effective daemon configuration after defaults, file and
// environment have been merged.
type AppConfig struct {
	Version string

	LogLevel   string
	LogFormat  string
	LogService string

	ShutdownTimeout time.Duration

	Daytime   DaytimeConfig
	Clock     ClockConfig
	Admin     AdminConfig
	Telemetry TelemetryConfig
}

// DaytimeConfig configures the TCP listener.
type DaytimeConfig struct {
	ListenAddr   string
	WriteTimeout time.Duration // 0 = block until written
	AcceptRate   float64       // connections per second, 0 = unlimited
	AcceptBurst  int
}

// ClockConfig selects the time source.
type ClockConfig struct {
	Source          string // "system" or "ntp"
	NTPServer       string
	NTPTimeout      time.Duration
	RefreshInterval time.Duration // 0 = measure once at startup
}

// AdminConfig configures the optional health and metrics HTTP listener.
type AdminConfig struct {
	ListenAddr string // empty disables the admin server
	MaxConns   int    // concurrent admin connections
	RateLimit  int    // requests per minute per client IP, 0 = unlimited
}

// TelemetryConfig configures OpenTelemetry tracing.
type TelemetryConfig struct {
	Enabled      bool
	Exporter     string // "grpc" or "http"
	Endpoint     string
	SamplingRate float64
	Environment  string
}

// FileConfig mirrors the YAML file layout. Zero values mean "not set".
type FileConfig struct {
	LogLevel        string        `yaml:"logLevel,omitempty"`
	LogFormat       string        `yaml:"logFormat,omitempty"`
	LogService      string        `yaml:"logService,omitempty"`
	ShutdownTimeout time.Duration `yaml:"shutdownTimeout,omitempty"`

	Daytime   DaytimeFileConfig   `yaml:"daytime,omitempty"`
	Clock     ClockFileConfig     `yaml:"clock,omitempty"`
	Admin     AdminFileConfig     `yaml:"admin,omitempty"`
	Telemetry TelemetryFileConfig `yaml:"telemetry,omitempty"`
}

// DaytimeFileConfig is the `daytime:` block.
type DaytimeFileConfig struct {
	Listen       string        `yaml:"listen,omitempty"`
	WriteTimeout time.Duration `yaml:"writeTimeout,omitempty"`
	AcceptRate   float64       `yaml:"acceptRate,omitempty"`
	AcceptBurst  int           `yaml:"acceptBurst,omitempty"`
}

// ClockFileConfig is the `clock:` block.
type ClockFileConfig struct {
	Source          string        `yaml:"source,omitempty"`
	NTPServer       string        `yaml:"ntpServer,omitempty"`
	NTPTimeout      time.Duration `yaml:"ntpTimeout,omitempty"`
	RefreshInterval time.Duration `yaml:"refreshInterval,omitempty"`
}

// AdminFileConfig is the `admin:` block.
type AdminFileConfig struct {
	Listen    string `yaml:"listen,omitempty"`
	MaxConns  int    `yaml:"maxConns,omitempty"`
	RateLimit *int   `yaml:"rateLimit,omitempty"`
}

// TelemetryFileConfig is the `telemetry:` block.
type TelemetryFileConfig struct {
	Enabled      *bool    `yaml:"enabled,omitempty"`
	Exporter     string   `yaml:"exporter,omitempty"`
	Endpoint     string   `yaml:"endpoint,omitempty"`
	SamplingRate *float64 `yaml:"samplingRate,omitempty"`
	Environment  string   `yaml:"environment,omitempty"`
}

// ToFileConfig renders the effective configuration in file layout, for
// `daytimed -print-config`.
func (c AppConfig) ToFileConfig() FileConfig {
	rateLimit := c.Admin.RateLimit
	enabled := c.Telemetry.Enabled
	sampling := c.Telemetry.SamplingRate
	return FileConfig{
		LogLevel:        c.LogLevel,
		LogFormat:       c.LogFormat,
		LogService:      c.LogService,
		ShutdownTimeout: c.ShutdownTimeout,
		Daytime: DaytimeFileConfig{
			Listen:       c.Daytime.ListenAddr,
			WriteTimeout: c.Daytime.WriteTimeout,
			AcceptRate:   c.Daytime.AcceptRate,
			AcceptBurst:  c.Daytime.AcceptBurst,
		},
		Clock: ClockFileConfig{
			Source:          c.Clock.Source,
			NTPServer:       c.Clock.NTPServer,
			NTPTimeout:      c.Clock.NTPTimeout,
			RefreshInterval: c.Clock.RefreshInterval,
		},
		Admin: AdminFileConfig{
			Listen:    c.Admin.ListenAddr,
			MaxConns:  c.Admin.MaxConns,
			RateLimit: &rateLimit,
		},
		Telemetry: TelemetryFileConfig{
			Enabled:      &enabled,
			Exporter:     c.Telemetry.Exporter,
			Endpoint:     c.Telemetry.Endpoint,
			SamplingRate: &sampling,
			Environment:  c.Telemetry.Environment,
		},
	}
}
