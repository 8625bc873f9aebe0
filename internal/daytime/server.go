// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package daytime

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/time/rate"

	"github.com/ManuGH/daytime/internal/clock"
	"github.com/ManuGH/daytime/internal/log"
	"github.com/ManuGH/daytime/internal/metrics"
	"github.com/ManuGH/daytime/internal/telemetry"
)

const (
	minAcceptBackoff = 5 * time.Millisecond
	maxAcceptBackoff = time.Second
)

// ServerConfig configures a Server.
type ServerConfig struct {
	// ListenAddr is the TCP address to bind. Empty means ":7658".
	ListenAddr string

	// WriteTimeout bounds the payload write. Zero means block until the
	// kernel accepts the bytes.
	WriteTimeout time.Duration

	// AcceptRate caps accepted connections per second. Zero disables the cap.
	AcceptRate float64

	// AcceptBurst is the limiter burst; values below 1 are treated as 1.
	AcceptBurst int

	// ClockSource names the clock for logs and spans.
	ClockSource string
}

// Server answers every accepted connection with the current time and closes it.
// Connections are handled one at a time on the Serve goroutine.
type Server struct {
	cfg     ServerConfig
	clock   clock.Clock
	logger  zerolog.Logger
	limiter *rate.Limiter
	tracer  trace.Tracer

	mu       sync.Mutex
	ln       net.Listener
	serving  chan struct{} // closed when Serve returns
	shutdown bool
}

// NewServer builds a Server. A nil clock falls back to the system clock.
func NewServer(cfg ServerConfig, clk clock.Clock, logger zerolog.Logger) *Server {
	if cfg.ListenAddr == "" {
		cfg.ListenAddr = ":" + strconv.Itoa(DefaultPort)
	}
	if cfg.ClockSource == "" {
		cfg.ClockSource = clock.SourceSystem
	}
	if clk == nil {
		clk = clock.System{}
	}

	s := &Server{
		cfg:    cfg,
		clock:  clk,
		logger: logger.With().Str(log.FieldComponent, "daytime").Logger(),
		tracer: telemetry.Tracer("github.com/ManuGH/daytime/internal/daytime"),
	}
	if cfg.AcceptRate > 0 {
		burst := cfg.AcceptBurst
		if burst < 1 {
			burst = 1
		}
		s.limiter = rate.NewLimiter(rate.Limit(cfg.AcceptRate), burst)
	}
	return s
}

// Listen binds the configured TCP address.
func (s *Server) Listen(ctx context.Context) (net.Listener, error) {
	var lc net.ListenConfig
	ln, err := lc.Listen(ctx, "tcp", s.cfg.ListenAddr)
	if err != nil {
		return nil, fmt.Errorf("bind %s: %w", s.cfg.ListenAddr, err)
	}
	return ln, nil
}

// ListenAndServe binds the configured address and runs the accept loop.
func (s *Server) ListenAndServe(ctx context.Context) error {
	ln, err := s.Listen(ctx)
	if err != nil {
		return err
	}
	return s.Serve(ctx, ln)
}

// Addr returns the bound address, or nil while not serving.
func (s *Server) Addr() net.Addr {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.ln == nil {
		return nil
	}
	return s.ln.Addr()
}

// Serve runs the accept loop on ln until ctx is cancelled or Shutdown is
// called, and always returns a non-nil error; ErrServerClosed marks a
// requested stop. Serve takes ownership of ln.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	s.mu.Lock()
	if s.shutdown {
		s.mu.Unlock()
		_ = ln.Close()
		return ErrServerClosed
	}
	if s.ln != nil {
		s.mu.Unlock()
		_ = ln.Close()
		return ErrAlreadyServing
	}
	s.ln = ln
	s.serving = make(chan struct{})
	done := s.serving
	s.mu.Unlock()

	metrics.SetListenerUp(true)
	defer func() {
		metrics.SetListenerUp(false)
		_ = ln.Close()
		s.mu.Lock()
		s.ln = nil
		s.mu.Unlock()
		close(done)
	}()

	stop := context.AfterFunc(ctx, func() { s.markClosedAndCloseListener() })
	defer stop()

	s.logger.Info().
		Str(log.FieldEvent, "daytime.listening").
		Str(log.FieldListenAddr, ln.Addr().String()).
		Str(log.FieldClockSource, s.cfg.ClockSource).
		Msg("daytime server listening")

	var backoff time.Duration
	for {
		if s.limiter != nil {
			if err := s.limiter.Wait(ctx); err != nil {
				return ErrServerClosed
			}
		}

		conn, err := ln.Accept()
		if err != nil {
			if s.closing() || errors.Is(err, net.ErrClosed) {
				return ErrServerClosed
			}
			backoff = nextBackoff(backoff)
			metrics.IncAcceptError()
			s.logger.Warn().
				Err(err).
				Str(log.FieldEvent, "daytime.accept_failed").
				Dur("retry_in", backoff).
				Msg("accept failed, retrying")

			t := time.NewTimer(backoff)
			select {
			case <-t.C:
			case <-ctx.Done():
				t.Stop()
				return ErrServerClosed
			}
			continue
		}
		backoff = 0

		s.handle(ctx, conn)
	}
}

// handle writes one payload and closes conn.
func (s *Server) handle(ctx context.Context, conn net.Conn) {
	start := time.Now()
	defer func() { _ = conn.Close() }()

	remote := conn.RemoteAddr().String()
	connID := uuid.NewString()
	ctx = log.ContextWithConnID(ctx, connID)
	logger := log.WithContext(ctx, s.logger).With().Str(log.FieldRemoteAddr, remote).Logger()

	_, span := s.tracer.Start(context.WithoutCancel(ctx), "daytime.serve",
		trace.WithSpanKind(trace.SpanKindServer),
		trace.WithAttributes(telemetry.ConnAttributes(remote, connID)...),
	)
	defer span.End()

	payload := Format(s.clock.Now())

	if s.cfg.WriteTimeout > 0 {
		_ = conn.SetWriteDeadline(time.Now().Add(s.cfg.WriteTimeout))
	}
	n, err := conn.Write(payload)
	metrics.AddBytesSent(n)
	span.SetAttributes(telemetry.PayloadAttributes(n, s.cfg.ClockSource)...)

	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "write failed")
		span.SetAttributes(telemetry.ErrorAttributes("write")...)
		metrics.ObserveConnection(metrics.ResultWriteError, time.Since(start))
		logger.Warn().
			Err(err).
			Str(log.FieldEvent, "daytime.write_failed").
			Int(log.FieldBytes, n).
			Msg("failed to send timestamp")
		return
	}

	metrics.ObserveConnection(metrics.ResultOK, time.Since(start))
	logger.Info().
		Str(log.FieldEvent, "daytime.sent").
		Str(log.FieldTimestamp, strings.TrimRight(string(payload), "\n")).
		Int(log.FieldBytes, n).
		Msg("client connected")
}

// Shutdown closes the listener and waits for the in-flight connection, if
// any, to finish or for ctx to expire.
func (s *Server) Shutdown(ctx context.Context) error {
	s.markClosedAndCloseListener()

	s.mu.Lock()
	done := s.serving
	s.mu.Unlock()
	if done == nil {
		return nil
	}

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (s *Server) markClosedAndCloseListener() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.shutdown = true
	if s.ln != nil {
		_ = s.ln.Close()
	}
}

func (s *Server) closing() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.shutdown
}

func nextBackoff(d time.Duration) time.Duration {
	if d == 0 {
		return minAcceptBackoff
	}
	d *= 2
	if d > maxAcceptBackoff {
		return maxAcceptBackoff
	}
	return d
}
