// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package health

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubChecker struct {
	name   string
	status Status
}

func (s stubChecker) Name() string { return s.name }

func (s stubChecker) Check(context.Context) CheckResult {
	return CheckResult{Status: s.status, Message: s.name + " is " + string(s.status)}
}

func TestManager_Health(t *testing.T) {
	m := NewManager("v1.0.0")
	m.RegisterChecker(stubChecker{name: "daytime_listener", status: StatusHealthy})
	m.RegisterChecker(stubChecker{name: "clock_sync", status: StatusDegraded})

	plain := m.Health(context.Background(), false)
	assert.Equal(t, StatusHealthy, plain.Status, "liveness ignores checkers unless verbose")
	assert.Equal(t, "v1.0.0", plain.Version)
	assert.GreaterOrEqual(t, plain.Uptime, int64(0))
	assert.Nil(t, plain.Checks)

	verbose := m.Health(context.Background(), true)
	assert.Equal(t, StatusDegraded, verbose.Status)
	require.Len(t, verbose.Checks, 2)
	assert.Equal(t, StatusDegraded, verbose.Checks["clock_sync"].Status)
}

func TestManager_Ready(t *testing.T) {
	tests := []struct {
		name      string
		checkers  []Checker
		wantReady bool
		want      Status
	}{
		{name: "no checkers", wantReady: true, want: StatusHealthy},
		{
			name:      "all healthy",
			checkers:  []Checker{stubChecker{"daytime_listener", StatusHealthy}, stubChecker{"clock_sync", StatusHealthy}},
			wantReady: true,
			want:      StatusHealthy,
		},
		{
			name:      "stale clock still serves",
			checkers:  []Checker{stubChecker{"daytime_listener", StatusHealthy}, stubChecker{"clock_sync", StatusDegraded}},
			wantReady: true,
			want:      StatusDegraded,
		},
		{
			name:      "unbound listener wins over degraded",
			checkers:  []Checker{stubChecker{"clock_sync", StatusDegraded}, stubChecker{"daytime_listener", StatusUnhealthy}},
			wantReady: false,
			want:      StatusUnhealthy,
		},
		{
			name:      "degraded after unhealthy does not mask it",
			checkers:  []Checker{stubChecker{"daytime_listener", StatusUnhealthy}, stubChecker{"clock_sync", StatusDegraded}},
			wantReady: false,
			want:      StatusUnhealthy,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := NewManager("test")
			for _, c := range tt.checkers {
				m.RegisterChecker(c)
			}
			resp := m.Ready(context.Background())
			assert.Equal(t, tt.wantReady, resp.Ready)
			assert.Equal(t, tt.want, resp.Status)
			assert.Len(t, resp.Checks, len(tt.checkers))
		})
	}
}

func TestManager_ServeHealth(t *testing.T) {
	m := NewManager("v1.0.0")
	m.RegisterChecker(stubChecker{name: "daytime_listener", status: StatusUnhealthy})

	w := httptest.NewRecorder()
	m.ServeHealth(w, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "application/json", w.Header().Get("Content-Type"))

	var resp HealthResponse
	require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
	assert.Equal(t, StatusHealthy, resp.Status)
	assert.Nil(t, resp.Checks)

	w = httptest.NewRecorder()
	m.ServeHealth(w, httptest.NewRequest(http.MethodGet, "/healthz?verbose=true", nil))
	assert.Equal(t, http.StatusOK, w.Code, "liveness stays 200 even when a component is down")
	require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
	assert.Equal(t, StatusUnhealthy, resp.Status)
	assert.Len(t, resp.Checks, 1)
}

func TestManager_ServeReady(t *testing.T) {
	tests := []struct {
		name      string
		status    Status
		query     string
		wantCode  int
		wantReady bool
		wantCheck bool
	}{
		{name: "healthy", status: StatusHealthy, wantCode: http.StatusOK, wantReady: true},
		{name: "degraded", status: StatusDegraded, wantCode: http.StatusOK, wantReady: true},
		{name: "unhealthy", status: StatusUnhealthy, wantCode: http.StatusServiceUnavailable},
		{name: "verbose includes checks", status: StatusHealthy, query: "?verbose=true", wantCode: http.StatusOK, wantReady: true, wantCheck: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := NewManager("test")
			m.RegisterChecker(stubChecker{name: "daytime_listener", status: tt.status})

			w := httptest.NewRecorder()
			m.ServeReady(w, httptest.NewRequest(http.MethodGet, "/readyz"+tt.query, nil))
			assert.Equal(t, tt.wantCode, w.Code)

			var resp ReadinessResponse
			require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
			assert.Equal(t, tt.wantReady, resp.Ready)
			assert.Equal(t, tt.wantCheck, resp.Checks != nil)
		})
	}
}

type failingWriter struct{ header http.Header }

func (w *failingWriter) Header() http.Header { return w.header }
func (w *failingWriter) Write([]byte) (int, error) { return 0, assert.AnError }
func (w *failingWriter) WriteHeader(int) {}

func TestServe_EncodeFailureDoesNotPanic(t *testing.T) {
	m := NewManager("test")
	assert.NotPanics(t, func() {
		m.ServeHealth(&failingWriter{header: http.Header{}}, httptest.NewRequest(http.MethodGet, "/healthz", nil))
		m.ServeReady(&failingWriter{header: http.Header{}}, httptest.NewRequest(http.MethodGet, "/readyz", nil))
	})
}
