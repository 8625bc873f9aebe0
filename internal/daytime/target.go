// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package daytime

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"net/netip"
	"strconv"
	"strings"
)

// MaxAddrLen bounds the textual server address (INET6_ADDRSTRLEN minus the terminator).
const MaxAddrLen = 45

// Prompts written when a value is not given on the command line.
const (
	PromptAddr = "Server IP: "
	PromptPort = "Server port: "
)

// Target is the server endpoint the client dials.
type Target struct {
	Addr netip.Addr
	Port uint16
}

// String returns the endpoint in host:port form, bracketing IPv6 addresses.
func (t Target) String() string {
	return netip.AddrPortFrom(t.Addr, t.Port).String()
}

// ParsePort accepts a decimal integer in 1..65535.
func ParsePort(s string) (uint16, error) {
	s = strings.TrimSpace(s)
	n, err := strconv.Atoi(s)
	if err != nil || n <= 0 || n > 65535 {
		return 0, fmt.Errorf("%w: %s", ErrInvalidPort, s)
	}
	return uint16(n), nil
}

// ParseAddr accepts an IPv4 or IPv6 literal. Host names are rejected.
func ParseAddr(s string) (netip.Addr, error) {
	s = strings.TrimSpace(s)
	if s == "" || len(s) > MaxAddrLen {
		return netip.Addr{}, fmt.Errorf("%w: %s", ErrInvalidAddress, s)
	}
	addr, err := netip.ParseAddr(s)
	if err != nil {
		return netip.Addr{}, fmt.Errorf("%w: %s", ErrInvalidAddress, s)
	}
	return addr.Unmap(), nil
}

// ResolveTarget builds the dial target from positional args, falling back to
// prompting on out and reading whitespace-delimited tokens from in.
// args[0] is the address and args[1] the port; extra args are ignored.
// Each value is validated as soon as it is obtained. A prompt waiting on in
// returns as soon as ctx is done; the pending read is abandoned.
func ResolveTarget(ctx context.Context, args []string, in io.Reader, out io.Writer) (Target, error) {
	var sc *bufio.Scanner
	next := func(prompt, what string) (string, error) {
		if sc == nil {
			sc = bufio.NewScanner(in)
			sc.Split(bufio.ScanWords)
		}
		if _, err := io.WriteString(out, prompt); err != nil {
			return "", fmt.Errorf("%w: %s: %w", ErrInput, what, err)
		}

		type token struct {
			text string
			ok   bool
		}
		got := make(chan token, 1)
		go func() {
			ok := sc.Scan()
			got <- token{text: sc.Text(), ok: ok}
		}()

		select {
		case <-ctx.Done():
			return "", fmt.Errorf("%w: %s: %w", ErrInput, what, context.Cause(ctx))
		case tok := <-got:
			if !tok.ok {
				if err := sc.Err(); err != nil {
					return "", fmt.Errorf("%w: %s: %w", ErrInput, what, err)
				}
				return "", fmt.Errorf("%w: %s: no value entered", ErrInput, what)
			}
			return tok.text, nil
		}
	}

	var rawAddr string
	if len(args) >= 1 {
		rawAddr = args[0]
	} else {
		v, err := next(PromptAddr, "server IP")
		if err != nil {
			return Target{}, err
		}
		rawAddr = v
	}
	addr, err := ParseAddr(rawAddr)
	if err != nil {
		return Target{}, err
	}

	var rawPort string
	if len(args) >= 2 {
		rawPort = args[1]
	} else {
		v, err := next(PromptPort, "server port")
		if err != nil {
			return Target{}, err
		}
		rawPort = v
	}
	port, err := ParsePort(rawPort)
	if err != nil {
		return Target{}, err
	}

	return Target{Addr: addr, Port: port}, nil
}
