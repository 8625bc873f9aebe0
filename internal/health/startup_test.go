// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package health

import (
	"bytes"
	"context"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ManuGH/daytime/internal/config"
)

func TestPerformStartupChecks(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*config.AppConfig)
		wantErr string
	}{
		{name: "defaults", mutate: func(*config.AppConfig) {}},
		{
			name: "with admin",
			mutate: func(c *config.AppConfig) {
				c.Admin.ListenAddr = "127.0.0.1:9658"
			},
		},
		{
			name: "bad daytime address",
			mutate: func(c *config.AppConfig) {
				c.Daytime.ListenAddr = "no-port"
			},
			wantErr: "daytime listen address check failed",
		},
		{
			name: "bad admin address",
			mutate: func(c *config.AppConfig) {
				c.Admin.ListenAddr = "127.0.0.1"
			},
			wantErr: "admin listen address check failed",
		},
		{
			name: "ntp server with port",
			mutate: func(c *config.AppConfig) {
				c.Clock.Source = "ntp"
				c.Clock.NTPServer = "pool.ntp.org:123"
			},
		},
		{
			name: "ntp server with bad port",
			mutate: func(c *config.AppConfig) {
				c.Clock.Source = "ntp"
				c.Clock.NTPServer = "pool.ntp.org:0"
			},
			wantErr: "invalid port",
		},
		{
			name: "ntp server without host",
			mutate: func(c *config.AppConfig) {
				c.Clock.Source = "ntp"
				c.Clock.NTPServer = ":123"
			},
			wantErr: "has no host",
		},
		{
			name: "ntp server host",
			mutate: func(c *config.AppConfig) {
				c.Clock.Source = "ntp"
				c.Clock.NTPServer = "pool.ntp.org"
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := config.Defaults()
			tt.mutate(&cfg)
			err := PerformStartupChecks(context.Background(), cfg)
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestPerformStartupChecks_PrivilegedPortOnlyWarns(t *testing.T) {
	orig := geteuid
	geteuid = func() int { return 1000 }
	t.Cleanup(func() { geteuid = orig })

	cfg := config.Defaults()
	cfg.Daytime.ListenAddr = "127.0.0.1:13"
	assert.NoError(t, PerformStartupChecks(context.Background(), cfg))
}

func TestPerformStartupChecks_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, PerformStartupChecks(ctx, config.Defaults()), context.Canceled)
}

func TestCheckListenAddr_PrivilegedWarning(t *testing.T) {
	orig := geteuid
	geteuid = func() int { return 1000 }
	t.Cleanup(func() { geteuid = orig })

	tests := []struct {
		addr string
		warn bool
	}{
		{addr: "127.0.0.1:13", warn: true},
		{addr: ":0", warn: false},
		{addr: "127.0.0.1:0", warn: false},
		{addr: ":7658", warn: false},
	}
	for _, tt := range tests {
		t.Run(tt.addr, func(t *testing.T) {
			var buf bytes.Buffer
			require.NoError(t, checkListenAddr(zerolog.New(&buf), "daytime", tt.addr))
			assert.Equal(t, tt.warn, bytes.Contains(buf.Bytes(), []byte("privileged port")), buf.String())
		})
	}
}
