// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package daytime

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"os"
	"time"

	"github.com/rs/zerolog"

	"github.com/ManuGH/daytime/internal/log"
)

// Client fetches one payload per call. The zero value dials without a
// timeout and blocks until the server answers or closes.
type Client struct {
	// Timeout bounds dial and read together. Zero means no timeout.
	Timeout time.Duration

	// Dialer is optional; a zero net.Dialer is used when nil.
	Dialer *net.Dialer

	// Logger receives debug events. The zero logger discards them.
	Logger zerolog.Logger
}

// Fetch connects to target, reads up to PayloadSize bytes and closes the
// connection. The returned text is exactly what the server sent.
func (c *Client) Fetch(ctx context.Context, target Target) (string, error) {
	if !target.Addr.IsValid() {
		return "", fmt.Errorf("%w: %s", ErrInvalidAddress, target.Addr)
	}
	if target.Port == 0 {
		return "", fmt.Errorf("%w: 0", ErrInvalidPort)
	}

	if c.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.Timeout)
		defer cancel()
	}

	d := c.Dialer
	if d == nil {
		d = &net.Dialer{}
	}

	conn, err := d.DialContext(ctx, "tcp", target.String())
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrConnect, err)
	}
	defer func() { _ = conn.Close() }()

	c.Logger.Debug().
		Str(log.FieldEvent, "daytime.connected").
		Str(log.FieldTarget, target.String()).
		Str("local_addr", conn.LocalAddr().String()).
		Msg("connected")

	if deadline, ok := ctx.Deadline(); ok {
		_ = conn.SetReadDeadline(deadline)
	}
	// Cancellation (SIGINT in the CLI) unblocks the read.
	stop := context.AfterFunc(ctx, func() { _ = conn.SetDeadline(time.Now()) })
	defer stop()

	buf, err := readPayload(conn)
	if err != nil {
		if cause := context.Cause(ctx); cause != nil && errors.Is(err, os.ErrDeadlineExceeded) {
			return "", fmt.Errorf("%w: %w", err, cause)
		}
		return "", err
	}

	c.Logger.Debug().
		Str(log.FieldEvent, "daytime.received").
		Int(log.FieldBytes, len(buf)).
		Msg("payload received")

	return string(buf), nil
}

// readPayload returns the first non-empty read of at most PayloadSize bytes.
// A peer that sends a short line and keeps the connection open is not waited on.
func readPayload(r io.Reader) ([]byte, error) {
	buf := make([]byte, PayloadSize)
	for {
		n, err := r.Read(buf)
		if n > 0 {
			return buf[:n], nil
		}
		switch {
		case err == nil:
			continue
		case errors.Is(err, io.EOF):
			return nil, ErrEmptyPayload
		default:
			return nil, fmt.Errorf("%w: %w", ErrRead, err)
		}
	}
}
