// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package daytime

import (
	"context"
	"net"
	"net/netip"
	"os"
	"syscall"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stubServer accepts one connection, writes payload and closes.
func stubServer(t *testing.T, payload []byte, hold time.Duration) Target {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	t.Cleanup(func() { _ = ln.Close() })

	go func() {
		conn, err := ln.Accept()
		if err != nil {
			return
		}
		defer func() { _ = conn.Close() }()
		if len(payload) > 0 {
			_, _ = conn.Write(payload)
		}
		if hold > 0 {
			time.Sleep(hold)
		}
	}()

	return targetOf(t, ln.Addr())
}

func targetOf(t *testing.T, a net.Addr) Target {
	t.Helper()
	ap, err := netip.ParseAddrPort(a.String())
	require.NoError(t, err)
	return Target{Addr: ap.Addr(), Port: ap.Port()}
}

func closedPort(t *testing.T) Target {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	target := targetOf(t, ln.Addr())
	require.NoError(t, ln.Close())
	return target
}

func TestClientFetch_RoundTrip(t *testing.T) {
	const known = "Wed Jun 30 21:49:08 1993\n"
	target := stubServer(t, []byte(known), 0)

	var c Client
	got, err := c.Fetch(context.Background(), target)
	require.NoError(t, err)
	assert.Equal(t, known, got)
}

func TestClientFetch_ReadsAtMostPayloadSize(t *testing.T) {
	target := stubServer(t, []byte("Wed Jun 30 21:49:08 1993\nTRAILING"), 0)

	var c Client
	got, err := c.Fetch(context.Background(), target)
	require.NoError(t, err)
	assert.Len(t, got, PayloadSize)
	assert.Equal(t, "Wed Jun 30 21:49:08 1993\n", got)
}

func TestClientFetch_ShortPayload(t *testing.T) {
	target := stubServer(t, []byte("Wed Jun 30 21:49:08 1993"), 0)

	var c Client
	got, err := c.Fetch(context.Background(), target)
	require.NoError(t, err)
	assert.Equal(t, "Wed Jun 30 21:49:08 1993", got)
}

func TestClientFetch_EmptyPayload(t *testing.T) {
	target := stubServer(t, nil, 0)

	var c Client
	_, err := c.Fetch(context.Background(), target)
	require.ErrorIs(t, err, ErrEmptyPayload)
}

func TestClientFetch_ConnectionRefused(t *testing.T) {
	target := closedPort(t)

	var c Client
	_, err := c.Fetch(context.Background(), target)
	require.ErrorIs(t, err, ErrConnect)
	assert.ErrorIs(t, err, syscall.ECONNREFUSED)
	assert.Contains(t, err.Error(), "connection refused")
	assert.False(t, IsInputError(err))
}

func TestClientFetch_TimeoutWhileReading(t *testing.T) {
	target := stubServer(t, nil, time.Second)

	c := Client{Timeout: 50 * time.Millisecond}
	start := time.Now()
	_, err := c.Fetch(context.Background(), target)
	require.ErrorIs(t, err, ErrRead)
	assert.ErrorIs(t, err, os.ErrDeadlineExceeded)
	assert.Less(t, time.Since(start), 900*time.Millisecond)
}

func TestClientFetch_ContextCancelWhileReading(t *testing.T) {
	target := stubServer(t, nil, time.Second)

	ctx, cancel := context.WithCancel(context.Background())
	time.AfterFunc(50*time.Millisecond, cancel)

	var c Client
	start := time.Now()
	_, err := c.Fetch(ctx, target)
	require.ErrorIs(t, err, ErrRead)
	assert.ErrorIs(t, err, context.Canceled)
	assert.False(t, IsInputError(err))
	assert.Less(t, time.Since(start), 900*time.Millisecond)
}

func TestClientFetch_ShortLineOnOpenConnection(t *testing.T) {
	// One read is enough; the client does not wait for the peer to close.
	target := stubServer(t, []byte("Wed Jun 30 21:49:08 1993"), time.Second)

	var c Client
	start := time.Now()
	got, err := c.Fetch(context.Background(), target)
	require.NoError(t, err)
	assert.Equal(t, "Wed Jun 30 21:49:08 1993", got)
	assert.Less(t, time.Since(start), 900*time.Millisecond)
}

func TestClientFetch_RejectsZeroTarget(t *testing.T) {
	var c Client
	_, err := c.Fetch(context.Background(), Target{})
	require.ErrorIs(t, err, ErrInvalidAddress)

	_, err = c.Fetch(context.Background(), Target{Addr: netip.MustParseAddr("127.0.0.1")})
	require.ErrorIs(t, err, ErrInvalidPort)
}
