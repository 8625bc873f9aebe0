// SPDX-License-Identifier: MIT

package telemetry

import (
	"go.opentelemetry.io/otel/attribute"
)

// Common attribute keys for consistent tracing across the daemon.
const (
	// Connection attributes
	NetPeerAddrKey = "net.peer.addr"
	ConnIDKey      = "daytime.conn_id"

	// Payload attributes
	PayloadBytesKey = "daytime.payload_bytes"
	ClockSourceKey  = "daytime.clock_source"

	// Error attributes
	ErrorKey     = "error"
	ErrorTypeKey = "error.type"
)

// ConnAttributes creates attributes describing one accepted connection.
func ConnAttributes(peer, connID string) []attribute.KeyValue {
	attrs := make([]attribute.KeyValue, 0, 2)
	if peer != "" {
		attrs = append(attrs, attribute.String(NetPeerAddrKey, peer))
	}
	if connID != "" {
		attrs = append(attrs, attribute.String(ConnIDKey, connID))
	}
	return attrs
}

// PayloadAttributes describes the payload written on a connection.
func PayloadAttributes(bytes int, clockSource string) []attribute.KeyValue {
	return []attribute.KeyValue{
		attribute.Int(PayloadBytesKey, bytes),
		attribute.String(ClockSourceKey, clockSource),
	}
}

// ErrorAttributes creates error-related span attributes.
func ErrorAttributes(errorType string) []attribute.KeyValue {
	return []attribute.KeyValue{
		attribute.Bool(ErrorKey, true),
		attribute.String(ErrorTypeKey, errorType),
	}
}
