// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

// Package health provides liveness and readiness checks for the daytime daemon.
// The admin HTTP server mounts ServeHealth and ServeReady for container probes.
package health

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/ManuGH/daytime/internal/log"
)

// Status represents the overall health/readiness status
type Status string

const (
	StatusHealthy   Status = "healthy"
	StatusDegraded  Status = "degraded"
	StatusUnhealthy Status = "unhealthy"
)

// CheckResult represents the result of a component health check
type CheckResult struct {
	Status  Status `json:"status"`
	Message string `json:"message,omitempty"`
	Error   string `json:"error,omitempty"`
}

// HealthResponse is the liveness body served on /healthz.
type HealthResponse struct {
	Status    Status                 `json:"status"`
	Version   string                 `json:"version,omitempty"`
	Timestamp time.Time              `json:"timestamp"`
	Uptime    int64                  `json:"uptime_seconds"`
	Checks    map[string]CheckResult `json:"checks,omitempty"`
}

// ReadinessResponse is the body served on /readyz.
type ReadinessResponse struct {
	Ready     bool                   `json:"ready"`
	Status    Status                 `json:"status"`
	Timestamp time.Time              `json:"timestamp"`
	Checks    map[string]CheckResult `json:"checks,omitempty"`
}

// Checker defines the interface for health checks
type Checker interface {
	Name() string
	Check(ctx context.Context) CheckResult
}

// Manager manages health and readiness checks
type Manager struct {
	version  string
	started  time.Time
	mu       sync.RWMutex
	checkers []Checker
}

// NewManager creates a new health check manager
func NewManager(version string) *Manager {
	return &Manager{
		version: version,
		started: time.Now(),
	}
}

// RegisterChecker adds a health checker to the manager
func (m *Manager) RegisterChecker(checker Checker) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.checkers = append(m.checkers, checker)
}

func (m *Manager) snapshot() []Checker {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]Checker, len(m.checkers))
	copy(out, m.checkers)
	return out
}

// runChecks evaluates every registered checker. The overall status is the
// worst individual one; nil results mean no checkers are registered.
func (m *Manager) runChecks(ctx context.Context) (map[string]CheckResult, Status) {
	checkers := m.snapshot()
	if len(checkers) == 0 {
		return nil, StatusHealthy
	}

	results := make(map[string]CheckResult, len(checkers))
	overall := StatusHealthy
	for _, c := range checkers {
		r := c.Check(ctx)
		results[c.Name()] = r
		switch {
		case r.Status == StatusUnhealthy:
			overall = StatusUnhealthy
		case r.Status == StatusDegraded && overall == StatusHealthy:
			overall = StatusDegraded
		}
	}
	return results, overall
}

// Health is the liveness probe. Checkers only run when verbose is set.
func (m *Manager) Health(ctx context.Context, verbose bool) HealthResponse {
	resp := HealthResponse{
		Status:    StatusHealthy,
		Version:   m.version,
		Timestamp: time.Now(),
		Uptime:    int64(time.Since(m.started).Seconds()),
	}
	if verbose {
		resp.Checks, resp.Status = m.runChecks(ctx)
	}
	return resp
}

// Ready is the readiness probe: not ready while any checker is unhealthy.
// Degraded (for example a stale NTP offset) still serves.
func (m *Manager) Ready(ctx context.Context) ReadinessResponse {
	checks, status := m.runChecks(ctx)
	return ReadinessResponse{
		Ready:     status != StatusUnhealthy,
		Status:    status,
		Timestamp: time.Now(),
		Checks:    checks,
	}
}

// ServeHealth handles /healthz. Liveness always answers 200.
func (m *Manager) ServeHealth(w http.ResponseWriter, r *http.Request) {
	logger := log.WithComponentFromContext(r.Context(), "health")
	verbose := r.URL.Query().Get("verbose") == "true"

	resp := m.Health(r.Context(), verbose)
	writeJSON(logger, w, http.StatusOK, resp, "health.encode_error")

	logger.Debug().
		Str(log.FieldEvent, "health.checked").
		Str("status", string(resp.Status)).
		Bool("verbose", verbose).
		Msg("health check performed")
}

// ServeReady handles /readyz with 503 while not ready. Check details are
// only included with ?verbose=true.
func (m *Manager) ServeReady(w http.ResponseWriter, r *http.Request) {
	logger := log.WithComponentFromContext(r.Context(), "readiness")
	verbose := r.URL.Query().Get("verbose") == "true"

	resp := m.Ready(r.Context())
	code := http.StatusOK
	if !resp.Ready {
		code = http.StatusServiceUnavailable
	}
	body := resp
	if !verbose {
		body.Checks = nil
	}
	writeJSON(logger, w, code, body, "readiness.encode_error")

	logger.Debug().
		Str(log.FieldEvent, "readiness.checked").
		Str("status", string(resp.Status)).
		Bool("ready", resp.Ready).
		Bool("verbose", verbose).
		Msg("readiness check performed")
}

func writeJSON(logger zerolog.Logger, w http.ResponseWriter, code int, v any, event string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Error().Err(err).Str(log.FieldEvent, event).Msg("failed to encode probe response")
	}
}
