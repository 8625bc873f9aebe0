// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package main

import (
	"flag"
	"fmt"
	"io"
	"net"
	"net/http"
	"time"

	"github.com/ManuGH/daytime/internal/config"
)

const defaultAdminProbeAddr = "127.0.0.1:9658"

// runHealthcheckCLI probes the admin server, for container HEALTHCHECK use.
func runHealthcheckCLI(args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("healthcheck", flag.ContinueOnError)
	fs.SetOutput(stderr)
	mode := fs.String("mode", "ready", "healthcheck mode: ready (default) or live")
	addr := fs.String("addr", config.ParseString(config.EnvAdminListen, defaultAdminProbeAddr), "admin address to check")
	timeout := fs.Duration("timeout", 5*time.Second, "check timeout")

	if err := fs.Parse(args); err != nil {
		fmt.Fprintf(stderr, "Error parsing healthcheck flags: %v\n", err)
		return 1
	}

	path := "/healthz"
	if *mode == "ready" {
		path = "/readyz"
	}

	url := fmt.Sprintf("http://%s%s", probeHost(*addr), path)
	client := http.Client{
		Timeout: *timeout,
	}

	resp, err := client.Get(url)
	if err != nil {
		fmt.Fprintf(stderr, "Healthcheck failed (network): %v\n", err)
		return 1
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		fmt.Fprintf(stderr, "Healthcheck failed (status): %s\n", resp.Status)
		return 1
	}

	fmt.Fprintf(stdout, "Healthcheck successful (%s)\n", *mode)
	return 0
}

// probeHost turns a listen address such as ":9658" into a dialable one.
func probeHost(addr string) string {
	host, port, err := net.SplitHostPort(addr)
	if err != nil {
		return addr
	}
	switch host {
	case "", "0.0.0.0":
		host = "127.0.0.1"
	case "::":
		host = "::1"
	}
	return net.JoinHostPort(host, port)
}
