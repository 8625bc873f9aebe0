// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package health

import (
	"context"
	"fmt"
	"net"
	"time"
)

// ListenerChecker reports unhealthy until the daytime listener is bound.
type ListenerChecker struct {
	addr func() net.Addr
}

// NewListenerChecker wraps an address source such as (*daytime.Server).Addr.
func NewListenerChecker(addr func() net.Addr) *ListenerChecker {
	return &ListenerChecker{addr: addr}
}

func (c *ListenerChecker) Name() string {
	return "daytime_listener"
}

func (c *ListenerChecker) Check(_ context.Context) CheckResult {
	a := c.addr()
	if a == nil {
		return CheckResult{
			Status:  StatusUnhealthy,
			Message: "listener not bound",
		}
	}
	return CheckResult{
		Status:  StatusHealthy,
		Message: "listening on " + a.String(),
	}
}

// ClockSyncChecker reports degraded when the NTP offset has not been
// refreshed within maxAge. The served time is still usable, only stale.
type ClockSyncChecker struct {
	lastSync func() time.Time
	maxAge   time.Duration
	now      func() time.Time
}

// NewClockSyncChecker wraps a last-sync source such as (*clock.NTP).LastSync.
func NewClockSyncChecker(lastSync func() time.Time, maxAge time.Duration) *ClockSyncChecker {
	return &ClockSyncChecker{
		lastSync: lastSync,
		maxAge:   maxAge,
		now:      time.Now,
	}
}

func (c *ClockSyncChecker) Name() string {
	return "clock_sync"
}

func (c *ClockSyncChecker) Check(_ context.Context) CheckResult {
	last := c.lastSync()
	if last.IsZero() || last.UnixNano() == 0 {
		return CheckResult{
			Status:  StatusDegraded,
			Message: "clock never synchronised",
		}
	}

	age := c.now().Sub(last)
	if c.maxAge > 0 && age > c.maxAge {
		return CheckResult{
			Status:  StatusDegraded,
			Message: fmt.Sprintf("last ntp sync %s ago", age.Truncate(time.Second)),
		}
	}

	return CheckResult{
		Status:  StatusHealthy,
		Message: "clock synchronised",
	}
}
