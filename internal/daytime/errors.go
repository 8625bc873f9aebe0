// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package daytime

import "errors"

var (
	// ErrInvalidPort is returned when a port is not an integer in 1..65535.
	ErrInvalidPort = errors.New("invalid port")

	// ErrInvalidAddress is returned when the server address is not an IP literal.
	ErrInvalidAddress = errors.New("invalid address")

	// ErrInput is returned when an interactive value could not be read.
	ErrInput = errors.New("read input")

	// ErrConnect wraps dial failures; the underlying system error is kept in the chain.
	ErrConnect = errors.New("connect")

	// ErrRead wraps failures while reading the payload.
	ErrRead = errors.New("read")

	// ErrEmptyPayload is returned when the server closed without sending anything.
	ErrEmptyPayload = errors.New("empty payload")

	// ErrMalformedPayload is returned when a payload does not match the ctime layout.
	ErrMalformedPayload = errors.New("malformed payload")

	// ErrServerClosed is returned by Serve after Shutdown or context cancellation.
	ErrServerClosed = errors.New("daytime: server closed")

	// ErrAlreadyServing is returned when Serve is called twice on one Server.
	ErrAlreadyServing = errors.New("daytime: server already serving")
)

// IsInputError reports whether err is a validation failure detected before
// any network resource was allocated.
func IsInputError(err error) bool {
	return errors.Is(err, ErrInvalidPort) ||
		errors.Is(err, ErrInvalidAddress) ||
		errors.Is(err, ErrInput)
}
