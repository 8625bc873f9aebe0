// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

// Package metrics holds the Prometheus collectors of the daytime daemon.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Connection results.
const (
	ResultOK         = "ok"
	ResultWriteError = "write_error"
)

var (
	// ConnectionsTotal counts served connections by outcome.
	ConnectionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "daytime_connections_total",
		Help: "Total number of accepted daytime connections by result",
	}, []string{"result"})

	// AcceptErrorsTotal counts accept failures that did not stop the loop.
	AcceptErrorsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "daytime_accept_errors_total",
		Help: "Total number of transient accept errors",
	})

	// BytesSentTotal counts payload bytes written to clients.
	BytesSentTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "daytime_bytes_sent_total",
		Help: "Total payload bytes written to clients",
	})

	// ServeDuration tracks the time from accept to close for one connection.
	ServeDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "daytime_serve_duration_seconds",
		Help:    "Time spent serving one daytime connection",
		Buckets: []float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 5},
	}, []string{"result"})

	// ClockOffset exposes the last NTP offset applied to the local clock.
	ClockOffset = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "daytime_clock_offset_seconds",
		Help: "Last measured offset between the local clock and the NTP server",
	})

	// ListenerUp is 1 while the daytime listener is bound.
	ListenerUp = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "daytime_listener_up",
		Help: "Whether the daytime listener is bound (1) or not (0)",
	})
)

// ObserveConnection records the outcome and duration of one served connection.
func ObserveConnection(result string, duration time.Duration) {
	ConnectionsTotal.WithLabelValues(result).Inc()
	ServeDuration.WithLabelValues(result).Observe(duration.Seconds())
}

// IncAcceptError records one transient accept failure.
func IncAcceptError() {
	AcceptErrorsTotal.Inc()
}

// AddBytesSent records payload bytes written.
func AddBytesSent(n int) {
	if n > 0 {
		BytesSentTotal.Add(float64(n))
	}
}

// SetClockOffset records the current NTP offset.
func SetClockOffset(offset time.Duration) {
	ClockOffset.Set(offset.Seconds())
}

// SetListenerUp flips the listener gauge.
func SetListenerUp(up bool) {
	if up {
		ListenerUp.Set(1)
		return
	}
	ListenerUp.Set(0)
}
