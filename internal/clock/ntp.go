// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package clock

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/beevik/ntp"
	"github.com/rs/zerolog"

	"github.com/ManuGH/daytime/internal/log"
	"github.com/ManuGH/daytime/internal/metrics"
)

// ErrNoNTPServer is returned when an NTP clock is built without a server.
var ErrNoNTPServer = errors.New("ntp server is required")

// QueryFunc performs one NTP exchange. Tests replace it to avoid the network.
type QueryFunc func(host string, opt ntp.QueryOptions) (*ntp.Response, error)

// NTPConfig configures an NTP-disciplined clock.
type NTPConfig struct {
	Server  string        // e.g. "pool.ntp.org"
	Timeout time.Duration // per-query timeout; 0 uses the library default
	Query   QueryFunc     // optional; defaults to ntp.QueryWithOptions
}

// NTP serves the local clock corrected by the offset measured against an NTP server.
// The offset is stored atomically so Now is safe to call while Run refreshes it.
type NTP struct {
	server  string
	timeout time.Duration
	query   QueryFunc
	offset  atomic.Int64
	synced  atomic.Int64 // unix nanos of the last successful Sync
	logger  zerolog.Logger
}

var _ Clock = (*NTP)(nil)

// NewNTP builds an NTP clock and performs the initial synchronisation.
// A failed first query is returned so startup fails fast.
func NewNTP(ctx context.Context, cfg NTPConfig) (*NTP, error) {
	if cfg.Server == "" {
		return nil, ErrNoNTPServer
	}
	q := cfg.Query
	if q == nil {
		q = ntp.QueryWithOptions
	}
	c := &NTP{
		server:  cfg.Server,
		timeout: cfg.Timeout,
		query:   q,
		logger:  log.WithComponent("clock"),
	}
	if err := c.Sync(ctx); err != nil {
		return nil, err
	}
	return c, nil
}

// Now returns the corrected current time.
func (c *NTP) Now() time.Time {
	return time.Now().Add(c.Offset())
}

// Offset returns the last measured clock offset.
func (c *NTP) Offset() time.Duration {
	return time.Duration(c.offset.Load())
}

// LastSync returns when the offset was last refreshed.
func (c *NTP) LastSync() time.Time {
	return time.Unix(0, c.synced.Load())
}

// Sync queries the server once and stores the measured offset.
func (c *NTP) Sync(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	resp, err := c.query(c.server, ntp.QueryOptions{Timeout: c.timeout})
	if err != nil {
		return fmt.Errorf("ntp query %s: %w", c.server, err)
	}
	if err := resp.Validate(); err != nil {
		return fmt.Errorf("ntp response from %s: %w", c.server, err)
	}
	c.offset.Store(int64(resp.ClockOffset))
	c.synced.Store(time.Now().UnixNano())
	metrics.SetClockOffset(resp.ClockOffset)

	c.logger.Debug().
		Str(log.FieldEvent, "clock.synced").
		Str(log.FieldNTPServer, c.server).
		Dur(log.FieldOffset, resp.ClockOffset).
		Dur("rtt", resp.RTT).
		Msg("ntp offset updated")
	return nil
}

// Run refreshes the offset every interval until ctx is cancelled.
// Refresh failures keep the previous offset.
func (c *NTP) Run(ctx context.Context, interval time.Duration) error {
	if interval <= 0 {
		return nil
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			if err := c.Sync(ctx); err != nil {
				if ctx.Err() != nil {
					return nil
				}
				c.logger.Warn().
					Err(err).
					Str(log.FieldEvent, "clock.sync_failed").
					Str(log.FieldNTPServer, c.server).
					Dur(log.FieldOffset, c.Offset()).
					Msg("ntp refresh failed, keeping previous offset")
			}
		}
	}
}
