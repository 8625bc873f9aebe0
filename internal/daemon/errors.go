// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package daemon

import "errors"

var (
	// ErrMissingLogger is returned when logger is not provided
	ErrMissingLogger = errors.New("logger is required")

	// ErrMissingDaytimeServer is returned when the daytime server is not provided
	ErrMissingDaytimeServer = errors.New("daytime server is required")

	// ErrMissingAdminHandler is returned when an admin address is configured without a handler
	ErrMissingAdminHandler = errors.New("admin handler is required when admin listen address is set")

	// ErrMissingManager is returned when a daemon app is created without a manager.
	ErrMissingManager = errors.New("manager is required")

	// ErrManagerNotStarted is returned when trying to shutdown a manager that hasn't started
	ErrManagerNotStarted = errors.New("manager not started")

	// ErrServerStartFailed is returned when a server fails to start
	ErrServerStartFailed = errors.New("server failed to start")
)
