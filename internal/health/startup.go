// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package health

import (
	"context"
	"fmt"
	"net"
	"os"
	"strconv"
	"strings"

	"github.com/ManuGH/daytime/internal/config"
	"github.com/ManuGH/daytime/internal/log"
	"github.com/rs/zerolog"
)

// geteuid is swapped in tests.
var geteuid = os.Geteuid

// PerformStartupChecks validates the runtime environment before the listeners are bound.
func PerformStartupChecks(ctx context.Context, cfg config.AppConfig) error {
	logger := log.WithComponent("startup-check")
	logger.Info().Msg("running pre-flight startup checks")

	if err := ctx.Err(); err != nil {
		return err
	}

	if err := checkListenAddr(logger, "daytime", cfg.Daytime.ListenAddr); err != nil {
		return fmt.Errorf("daytime listen address check failed: %w", err)
	}
	if cfg.Admin.ListenAddr != "" {
		if err := checkListenAddr(logger, "admin", cfg.Admin.ListenAddr); err != nil {
			return fmt.Errorf("admin listen address check failed: %w", err)
		}
	}

	if cfg.Clock.Source == "ntp" {
		if err := checkNTPServer(cfg.Clock.NTPServer); err != nil {
			return fmt.Errorf("ntp server check failed: %w", err)
		}
		logger.Info().Str(log.FieldNTPServer, cfg.Clock.NTPServer).Msg("ntp clock source configured")
	}

	logger.Info().Msg("all startup checks passed")
	return nil
}

func checkListenAddr(logger zerolog.Logger, name, addr string) error {
	tcp, err := net.ResolveTCPAddr("tcp", addr)
	if err != nil {
		return fmt.Errorf("resolve %q: %w", addr, err)
	}

	_, portStr, _ := net.SplitHostPort(addr)
	port, _ := strconv.Atoi(portStr)
	if port > 0 && port < 1024 && geteuid() != 0 {
		// Capabilities (CAP_NET_BIND_SERVICE) may still allow the bind.
		logger.Warn().
			Str(log.FieldListenAddr, addr).
			Int("port", port).
			Msg("privileged port requested by non-root process")
	}

	logger.Info().
		Str("listener", name).
		Str(log.FieldListenAddr, tcp.String()).
		Msg("listen address is valid")
	return nil
}

// checkNTPServer accepts "host" or "host:port", the forms ntp.Query resolves.
func checkNTPServer(server string) error {
	host, port, err := net.SplitHostPort(server)
	if err != nil {
		// No port: the library appends :123.
		if strings.TrimSpace(server) == "" {
			return fmt.Errorf("ntp server is empty")
		}
		return nil
	}
	if host == "" {
		return fmt.Errorf("ntp server %q has no host", server)
	}
	if n, err := strconv.Atoi(port); err != nil || n < 1 || n > 65535 {
		return fmt.Errorf("ntp server %q has invalid port %q", server, port)
	}
	return nil
}
