// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package log

// Canonical field name constants for structured logging.
const (
	// Identity fields
	FieldService = "service"
	FieldVersion = "version"
	FieldConnID  = "conn_id"

	// Process fields
	FieldEvent     = "event"
	FieldComponent = "component"

	// Network fields
	FieldListenAddr = "listen"
	FieldRemoteAddr = "remote_addr"
	FieldTarget     = "target"

	// Payload fields
	FieldTimestamp = "timestamp"
	FieldBytes     = "bytes"

	// Clock fields
	FieldClockSource = "clock_source"
	FieldNTPServer   = "ntp_server"
	FieldOffset      = "offset"
)
