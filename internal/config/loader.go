// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Environment variable names read by the loader.
const (
	EnvLogLevel        = "DAYTIME_LOG_LEVEL"
	EnvLogFormat       = "DAYTIME_LOG_FORMAT"
	EnvLogService      = "DAYTIME_LOG_SERVICE"
	EnvShutdownTimeout = "DAYTIME_SHUTDOWN_TIMEOUT"
	EnvListen          = "DAYTIME_LISTEN"
	EnvWriteTimeout    = "DAYTIME_WRITE_TIMEOUT"
	EnvAcceptRate      = "DAYTIME_ACCEPT_RATE"
	EnvAcceptBurst     = "DAYTIME_ACCEPT_BURST"
	EnvClockSource     = "DAYTIME_CLOCK_SOURCE"
	EnvNTPServer       = "DAYTIME_NTP_SERVER"
	EnvNTPTimeout      = "DAYTIME_NTP_TIMEOUT"
	EnvNTPRefresh      = "DAYTIME_NTP_REFRESH"
	EnvAdminListen     = "DAYTIME_ADMIN_LISTEN"
	EnvAdminMaxConns   = "DAYTIME_ADMIN_MAX_CONNS"
	EnvAdminRateLimit  = "DAYTIME_ADMIN_RATE_LIMIT"
	EnvOTelEnabled     = "DAYTIME_OTEL_ENABLED"
	EnvOTelExporter    = "DAYTIME_OTEL_EXPORTER"
	EnvOTelEndpoint    = "DAYTIME_OTEL_ENDPOINT"
	EnvOTelSampling    = "DAYTIME_OTEL_SAMPLING"
	EnvEnvironment     = "DAYTIME_ENV"
)

// Loader handles configuration loading with precedence
type Loader struct {
	configPath      string
	version         string
	ConsumedEnvKeys map[string]struct{} // keys the loader looked at
}

// NewLoader creates a new configuration loader
func NewLoader(configPath, version string) *Loader {
	return &Loader{
		configPath:      configPath,
		version:         version,
		ConsumedEnvKeys: make(map[string]struct{}),
	}
}

func (l *Loader) envString(key, defaultVal string) string {
	l.ConsumedEnvKeys[key] = struct{}{}
	return ParseString(key, defaultVal)
}

func (l *Loader) envBool(key string, defaultVal bool) bool {
	l.ConsumedEnvKeys[key] = struct{}{}
	return ParseBool(key, defaultVal)
}

func (l *Loader) envInt(key string, defaultVal int) int {
	l.ConsumedEnvKeys[key] = struct{}{}
	return ParseInt(key, defaultVal)
}

func (l *Loader) envDuration(key string, defaultVal time.Duration) time.Duration {
	l.ConsumedEnvKeys[key] = struct{}{}
	return ParseDuration(key, defaultVal)
}

func (l *Loader) envFloat(key string, defaultVal float64) float64 {
	l.ConsumedEnvKeys[key] = struct{}{}
	return ParseFloat(key, defaultVal)
}

// ConsumedKeys returns the environment keys read by the last Load, sorted.
func (l *Loader) ConsumedKeys() []string {
	keys := make([]string, 0, len(l.ConsumedEnvKeys))
	for k := range l.ConsumedEnvKeys {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Load loads configuration with precedence: ENV > File > Defaults,
// then validates the result.
func (l *Loader) Load() (AppConfig, error) {
	cfg := Defaults()
	cfg.Version = l.version

	if l.configPath != "" {
		fileCfg, err := l.loadFile(l.configPath)
		if err != nil {
			return cfg, fmt.Errorf("load config file: %w", err)
		}
		mergeFileConfig(&cfg, fileCfg)
	}

	l.mergeEnvConfig(&cfg)

	if err := Validate(cfg); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// Defaults returns the built-in configuration: wildcard bind on port 7658,
// system clock, admin server disabled, tracing disabled.
func Defaults() AppConfig {
	return AppConfig{
		LogLevel:        DefaultLogLevel,
		LogFormat:       DefaultLogFormat,
		LogService:      DefaultLogService,
		ShutdownTimeout: DefaultShutdownTimeout,
		Daytime: DaytimeConfig{
			ListenAddr:  DefaultListenAddr,
			AcceptBurst: 1,
		},
		Clock: ClockConfig{
			Source:          DefaultClockSource,
			NTPServer:       DefaultNTPServer,
			NTPTimeout:      DefaultNTPTimeout,
			RefreshInterval: DefaultNTPRefresh,
		},
		Admin: AdminConfig{
			MaxConns:  DefaultAdminMaxConns,
			RateLimit: DefaultAdminRateLimit,
		},
		Telemetry: TelemetryConfig{
			Exporter:     DefaultOTelExporter,
			SamplingRate: DefaultOTelSampling,
			Environment:  "production",
		},
	}
}

func (l *Loader) loadFile(path string) (*FileConfig, error) {
	path = filepath.Clean(path)

	ext := strings.ToLower(filepath.Ext(path))
	if ext != ".yaml" && ext != ".yml" {
		return nil, fmt.Errorf("unsupported config format: %s (only YAML supported)", ext)
	}

	// #nosec G304 -- configuration file paths are provided by the operator via CLI/ENV
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read file: %w", err)
	}

	var fileCfg FileConfig
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)

	if err := dec.Decode(&fileCfg); err != nil {
		if errors.Is(err, io.EOF) {
			return &FileConfig{}, nil
		}
		if strings.Contains(err.Error(), "field") && strings.Contains(err.Error(), "not found") {
			return nil, fmt.Errorf("%w: %w", ErrUnknownConfigField, err)
		}
		return nil, fmt.Errorf("strict config parse error: %w", err)
	}

	if err := dec.Decode(&struct{}{}); !errors.Is(err, io.EOF) {
		return nil, ErrMultipleDocuments
	}

	return &fileCfg, nil
}

func mergeFileConfig(dst *AppConfig, src *FileConfig) {
	if src.LogLevel != "" {
		dst.LogLevel = src.LogLevel
	}
	if src.LogFormat != "" {
		dst.LogFormat = src.LogFormat
	}
	if src.LogService != "" {
		dst.LogService = src.LogService
	}
	if src.ShutdownTimeout != 0 {
		dst.ShutdownTimeout = src.ShutdownTimeout
	}

	if src.Daytime.Listen != "" {
		dst.Daytime.ListenAddr = os.ExpandEnv(src.Daytime.Listen)
	}
	if src.Daytime.WriteTimeout != 0 {
		dst.Daytime.WriteTimeout = src.Daytime.WriteTimeout
	}
	if src.Daytime.AcceptRate != 0 {
		dst.Daytime.AcceptRate = src.Daytime.AcceptRate
	}
	if src.Daytime.AcceptBurst != 0 {
		dst.Daytime.AcceptBurst = src.Daytime.AcceptBurst
	}

	if src.Clock.Source != "" {
		dst.Clock.Source = src.Clock.Source
	}
	if src.Clock.NTPServer != "" {
		dst.Clock.NTPServer = src.Clock.NTPServer
	}
	if src.Clock.NTPTimeout != 0 {
		dst.Clock.NTPTimeout = src.Clock.NTPTimeout
	}
	if src.Clock.RefreshInterval != 0 {
		dst.Clock.RefreshInterval = src.Clock.RefreshInterval
	}

	if src.Admin.Listen != "" {
		dst.Admin.ListenAddr = os.ExpandEnv(src.Admin.Listen)
	}
	if src.Admin.MaxConns != 0 {
		dst.Admin.MaxConns = src.Admin.MaxConns
	}
	if src.Admin.RateLimit != nil {
		dst.Admin.RateLimit = *src.Admin.RateLimit
	}

	if src.Telemetry.Enabled != nil {
		dst.Telemetry.Enabled = *src.Telemetry.Enabled
	}
	if src.Telemetry.Exporter != "" {
		dst.Telemetry.Exporter = src.Telemetry.Exporter
	}
	if src.Telemetry.Endpoint != "" {
		dst.Telemetry.Endpoint = os.ExpandEnv(src.Telemetry.Endpoint)
	}
	if src.Telemetry.SamplingRate != nil {
		dst.Telemetry.SamplingRate = *src.Telemetry.SamplingRate
	}
	if src.Telemetry.Environment != "" {
		dst.Telemetry.Environment = src.Telemetry.Environment
	}
}

// mergeEnvConfig applies environment overrides; unset keys keep the current value.
func (l *Loader) mergeEnvConfig(cfg *AppConfig) {
	cfg.LogLevel = l.envString(EnvLogLevel, cfg.LogLevel)
	cfg.LogFormat = l.envString(EnvLogFormat, cfg.LogFormat)
	cfg.LogService = l.envString(EnvLogService, cfg.LogService)
	cfg.ShutdownTimeout = l.envDuration(EnvShutdownTimeout, cfg.ShutdownTimeout)

	cfg.Daytime.ListenAddr = l.envString(EnvListen, cfg.Daytime.ListenAddr)
	cfg.Daytime.WriteTimeout = l.envDuration(EnvWriteTimeout, cfg.Daytime.WriteTimeout)
	cfg.Daytime.AcceptRate = l.envFloat(EnvAcceptRate, cfg.Daytime.AcceptRate)
	cfg.Daytime.AcceptBurst = l.envInt(EnvAcceptBurst, cfg.Daytime.AcceptBurst)

	cfg.Clock.Source = l.envString(EnvClockSource, cfg.Clock.Source)
	cfg.Clock.NTPServer = l.envString(EnvNTPServer, cfg.Clock.NTPServer)
	cfg.Clock.NTPTimeout = l.envDuration(EnvNTPTimeout, cfg.Clock.NTPTimeout)
	cfg.Clock.RefreshInterval = l.envDuration(EnvNTPRefresh, cfg.Clock.RefreshInterval)

	cfg.Admin.ListenAddr = l.envString(EnvAdminListen, cfg.Admin.ListenAddr)
	cfg.Admin.MaxConns = l.envInt(EnvAdminMaxConns, cfg.Admin.MaxConns)
	cfg.Admin.RateLimit = l.envInt(EnvAdminRateLimit, cfg.Admin.RateLimit)

	cfg.Telemetry.Enabled = l.envBool(EnvOTelEnabled, cfg.Telemetry.Enabled)
	cfg.Telemetry.Exporter = l.envString(EnvOTelExporter, cfg.Telemetry.Exporter)
	cfg.Telemetry.Endpoint = l.envString(EnvOTelEndpoint, cfg.Telemetry.Endpoint)
	cfg.Telemetry.SamplingRate = l.envFloat(EnvOTelSampling, cfg.Telemetry.SamplingRate)
	cfg.Telemetry.Environment = l.envString(EnvEnvironment, cfg.Telemetry.Environment)
}
