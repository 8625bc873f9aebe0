// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

// Package clock provides the time sources the daytime server reads from.
// Code that stamps payloads takes a Clock instead of calling time.Now directly.
package clock

import (
	"sync"
	"time"
)

// Clock is the time source for one payload.
type Clock interface {
	Now() time.Time
}

// Source names accepted by configuration.
const (
	SourceSystem = "system"
	SourceNTP    = "ntp"
)

// System reads the local wall clock.
type System struct{}

// Now returns the current local time.
func (System) Now() time.Time {
	return time.Now()
}

var _ Clock = System{}

// Fixed always returns the same instant; intended for tests.
type Fixed struct {
	mu sync.Mutex
	t  time.Time
}

// NewFixed returns a clock frozen at t.
func NewFixed(t time.Time) *Fixed {
	return &Fixed{t: t}
}

// Now returns the frozen instant.
func (f *Fixed) Now() time.Time {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.t
}

// Advance moves the frozen instant forward by d.
func (f *Fixed) Advance(d time.Duration) {
	f.mu.Lock()
	f.t = f.t.Add(d)
	f.mu.Unlock()
}
