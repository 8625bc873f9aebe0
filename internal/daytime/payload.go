// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

// Package daytime implements a daytime-style time-of-day exchange over TCP:
// the server writes one fixed-size timestamp on every accepted connection and
// closes it, the client connects once and reads it back.
package daytime

import (
	"bytes"
	"fmt"
	"time"
)

const (
	// DefaultPort is the TCP port the server binds when none is configured.
	DefaultPort = 7658

	// PayloadSize is the number of bytes written per connection and the
	// maximum the client reads.
	PayloadSize = 25

	// Layout renders a time the way C's ctime(3) does, newline included.
	// For years 1000..9999 the result is exactly PayloadSize bytes.
	Layout = "Mon Jan _2 15:04:05 2006\n"
)

// Format renders t in ctime layout, truncated to PayloadSize bytes.
// Years past 9999 lose their trailing characters; there is no framing to
// carry a longer payload.
func Format(t time.Time) []byte {
	b := t.AppendFormat(make([]byte, 0, PayloadSize+2), Layout)
	if len(b) > PayloadSize {
		b = b[:PayloadSize]
	}
	return b
}

// Parse reads a payload produced by Format back into a time in loc.
// Trailing newline, NUL and space bytes are ignored.
func Parse(b []byte, loc *time.Location) (time.Time, error) {
	s := bytes.TrimRight(b, "\n\r\x00 ")
	if len(s) == 0 {
		return time.Time{}, ErrEmptyPayload
	}
	if loc == nil {
		loc = time.Local
	}
	t, err := time.ParseInLocation(Layout[:len(Layout)-1], string(s), loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %q", ErrMalformedPayload, s)
	}
	return t, nil
}
