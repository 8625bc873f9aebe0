// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

// Command daytime fetches the current time from a daytime server.
//
//	daytime [flags] [server_ip] [port]
//
// Missing arguments are prompted for on stdin.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"github.com/ManuGH/daytime/internal/daytime"
	"github.com/ManuGH/daytime/internal/log"
	"github.com/ManuGH/daytime/internal/version"
)

// Exit codes.
const (
	exitOK      = 0
	exitNetwork = 1
	exitInput   = 2
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	code := run(ctx, os.Args[1:], os.Stdin, os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}

func run(ctx context.Context, args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("daytime", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.Usage = func() {
		fmt.Fprintln(stderr, "usage: daytime [flags] [server_ip] [port]")
		fs.PrintDefaults()
	}
	timeout := fs.Duration("timeout", 0, "dial and read deadline (0 = wait forever)")
	parse := fs.Bool("parse", false, "also validate the payload and print it as RFC 3339")
	verbose := fs.Bool("v", false, "log connection details to stderr")
	showVersion := fs.Bool("version", false, "print version and exit")

	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return exitOK
		}
		return exitInput
	}
	if *showVersion {
		fmt.Fprintln(stdout, version.String())
		return exitOK
	}
	if *timeout < 0 {
		fmt.Fprintln(stderr, "daytime: -timeout cannot be negative")
		return exitInput
	}

	level := "error"
	if *verbose {
		level = "debug"
	}
	log.Configure(log.Config{
		Level:   level,
		Format:  "console",
		Output:  stderr,
		Service: "daytime",
		Version: version.Version,
	})

	target, err := daytime.ResolveTarget(ctx, fs.Args(), stdin, stdout)
	if err != nil {
		fmt.Fprintf(stderr, "daytime: %v\n", err)
		return exitInput
	}

	client := &daytime.Client{
		Timeout: *timeout,
		Logger: log.Derive(func(c *zerolog.Context) {
			*c = c.Str(log.FieldComponent, "client").Dur("timeout", *timeout)
		}),
	}
	text, err := client.Fetch(ctx, target)
	if err != nil {
		fmt.Fprintf(stderr, "daytime: %v\n", err)
		if daytime.IsInputError(err) {
			return exitInput
		}
		return exitNetwork
	}

	fmt.Fprintf(stdout, "received date and time: %s\n", displayText(text))

	if *parse {
		ts, err := daytime.Parse([]byte(text), time.Local)
		if err != nil {
			fmt.Fprintf(stderr, "daytime: %v\n", err)
			return exitNetwork
		}
		fmt.Fprintf(stdout, "parsed: %s\n", ts.Format(time.RFC3339))
	}
	return exitOK
}

// displayText is the payload up to its first NUL, without the line terminator.
func displayText(payload string) string {
	if i := strings.IndexByte(payload, 0); i >= 0 {
		payload = payload[:i]
	}
	return strings.TrimRight(payload, "\r\n")
}
