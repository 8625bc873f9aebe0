// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package daemon

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/net/netutil"

	"github.com/ManuGH/daytime/internal/daytime"
	"github.com/ManuGH/daytime/internal/log"
)

const adminReadHeaderTimeout = 5 * time.Second

// ShutdownHook is a function that performs cleanup during graceful shutdown.
// Hooks are executed in reverse registration order (LIFO).
type ShutdownHook func(ctx context.Context) error

// Manager manages the daemon lifecycle: starting servers, handling shutdown.
type Manager interface {
	// Start binds all configured listeners and blocks until shutdown
	Start(ctx context.Context) error

	// Shutdown gracefully shuts down all servers
	Shutdown(ctx context.Context) error

	// RegisterShutdownHook registers a function to be called during shutdown
	RegisterShutdownHook(name string, hook ShutdownHook)
}

// manager implements the Manager interface.
type manager struct {
	deps Deps

	adminServer *http.Server
	adminLn     net.Listener

	// Shutdown hooks (LIFO order)
	shutdownHooks []namedHook

	// State
	started  bool
	stopping bool
	mu       sync.Mutex

	logger zerolog.Logger
}

// namedHook represents a shutdown hook with a name for logging
type namedHook struct {
	name string
	hook ShutdownHook
}

// NewManager creates a new daemon manager with the given dependencies.
func NewManager(deps Deps) (Manager, error) {
	if err := deps.Validate(); err != nil {
		return nil, fmt.Errorf("invalid dependencies: %w", err)
	}

	return &manager{
		deps:          deps,
		logger:        deps.Logger.With().Str(log.FieldComponent, "manager").Logger(),
		shutdownHooks: make([]namedHook, 0),
	}, nil
}

// Start binds the daytime listener (and the admin listener, if configured)
// and blocks until ctx is cancelled or a server fails. Bind errors are
// returned before anything is served.
func (m *manager) Start(ctx context.Context) error {
	if ctx == nil {
		return fmt.Errorf("start context is nil")
	}

	m.mu.Lock()
	if m.started {
		m.mu.Unlock()
		return fmt.Errorf("manager already started")
	}
	m.started = true
	m.mu.Unlock()

	cfg := m.deps.Config
	m.logger.Info().
		Str(log.FieldListenAddr, cfg.Daytime.ListenAddr).
		Str("admin_listen", cfg.Admin.ListenAddr).
		Str(log.FieldClockSource, cfg.Clock.Source).
		Dur("shutdown_timeout", cfg.ShutdownTimeout).
		Msg("starting daemon manager")

	errChan := make(chan error, 2)

	ln, err := m.deps.Daytime.Listen(ctx)
	if err != nil {
		return fmt.Errorf("%w: daytime: %w", ErrServerStartFailed, err)
	}

	if cfg.Admin.ListenAddr != "" {
		if err := m.startAdminServer(ctx, errChan); err != nil {
			_ = ln.Close()
			return fmt.Errorf("%w: admin: %w", ErrServerStartFailed, err)
		}
	}

	go func() {
		if err := m.deps.Daytime.Serve(ctx, ln); err != nil && !errors.Is(err, daytime.ErrServerClosed) {
			m.logger.Error().
				Err(err).
				Str(log.FieldEvent, "daytime.server.failed").
				Msg("daytime server failed")
			errChan <- fmt.Errorf("daytime server: %w", err)
		}
	}()

	// Wait for shutdown signal or server error
	select {
	case err := <-errChan:
		m.logger.Error().Err(err).Msg("server error, initiating shutdown")
		// Use a detached-but-bounded context so shutdown can complete even if parent is canceled.
		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), m.shutdownTimeout())
		defer cancel()
		if shutdownErr := m.Shutdown(shutdownCtx); shutdownErr != nil {
			return fmt.Errorf("server error and shutdown failure: %w", errors.Join(err, shutdownErr))
		}
		return err
	case <-ctx.Done():
		m.logger.Info().Msg("shutdown signal received")
		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), m.shutdownTimeout())
		defer cancel()
		return m.Shutdown(shutdownCtx)
	}
}

// startAdminServer binds the admin listener, capped at Admin.MaxConns
// concurrent connections, and serves the admin handler on it.
func (m *manager) startAdminServer(ctx context.Context, errChan chan<- error) error {
	cfg := m.deps.Config.Admin

	var lc net.ListenConfig
	ln, err := lc.Listen(ctx, "tcp", cfg.ListenAddr)
	if err != nil {
		return fmt.Errorf("bind %s: %w", cfg.ListenAddr, err)
	}
	if cfg.MaxConns > 0 {
		ln = netutil.LimitListener(ln, cfg.MaxConns)
	}

	srv := &http.Server{
		Handler:           m.deps.AdminHandler,
		ReadHeaderTimeout: adminReadHeaderTimeout,
	}

	m.mu.Lock()
	m.adminServer = srv
	m.adminLn = ln
	m.mu.Unlock()

	go func() {
		m.logger.Info().
			Str(log.FieldListenAddr, ln.Addr().String()).
			Int("max_conns", cfg.MaxConns).
			Msg("admin server listening")

		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			m.logger.Error().
				Err(err).
				Str(log.FieldEvent, "admin.server.failed").
				Msg("admin server failed")
			errChan <- fmt.Errorf("admin server: %w", err)
		}
	}()

	return nil
}

// adminAddr returns the bound admin address, or nil when the admin server is off.
func (m *manager) adminAddr() net.Addr {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.adminLn == nil {
		return nil
	}
	return m.adminLn.Addr()
}

func (m *manager) shutdownTimeout() time.Duration {
	if t := m.deps.Config.ShutdownTimeout; t > 0 {
		return t
	}
	return 10 * time.Second
}

func (m *manager) Shutdown(ctx context.Context) error {
	if ctx == nil {
		return fmt.Errorf("shutdown context is nil")
	}

	m.mu.Lock()
	if m.stopping {
		m.mu.Unlock()
		return nil
	}
	if !m.started {
		m.mu.Unlock()
		return ErrManagerNotStarted
	}
	m.stopping = true
	adminServer := m.adminServer
	m.mu.Unlock()

	m.logger.Info().Msg("shutting down daemon manager")

	// Create a bounded shutdown context independent from caller cancellation.
	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), m.shutdownTimeout())
	defer cancel()

	var errs []error

	m.logger.Debug().Msg("shutting down daytime server")
	if err := m.deps.Daytime.Shutdown(shutdownCtx); err != nil {
		errs = append(errs, fmt.Errorf("daytime server shutdown: %w", err))
	}

	if adminServer != nil {
		m.logger.Debug().Msg("shutting down admin server")
		if err := adminServer.Shutdown(shutdownCtx); err != nil {
			errs = append(errs, fmt.Errorf("admin server shutdown: %w", err))
		}
	}

	// Execute shutdown hooks in reverse order (LIFO)
	m.mu.Lock()
	hooks := make([]namedHook, len(m.shutdownHooks))
	copy(hooks, m.shutdownHooks)
	m.mu.Unlock()

	m.logger.Debug().Int("hooks", len(hooks)).Msg("executing shutdown hooks")
	for i := len(hooks) - 1; i >= 0; i-- {
		hook := hooks[i]
		hookStart := time.Now()
		if err := hook.hook(shutdownCtx); err != nil {
			m.logger.Error().
				Err(err).
				Str("hook", hook.name).
				Dur("duration", time.Since(hookStart)).
				Msg("shutdown hook failed")
			errs = append(errs, fmt.Errorf("hook %s: %w", hook.name, err))
		} else {
			m.logger.Debug().
				Str("hook", hook.name).
				Dur("duration", time.Since(hookStart)).
				Msg("shutdown hook completed")
		}
	}

	if len(errs) > 0 {
		m.logger.Error().
			Int("error_count", len(errs)).
			Msg("shutdown completed with errors")
		return fmt.Errorf("shutdown errors: %w", errors.Join(errs...))
	}

	m.logger.Info().Msg("daemon manager stopped cleanly")
	return nil
}

// RegisterShutdownHook registers a cleanup function to be called during shutdown.
// Hooks are executed in reverse registration order (LIFO).
func (m *manager) RegisterShutdownHook(name string, hook ShutdownHook) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.shutdownHooks = append(m.shutdownHooks, namedHook{
		name: name,
		hook: hook,
	})
	m.logger.Debug().Str("hook", name).Msg("registered shutdown hook")
}
