// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

// twconfig validates, converts, diffs and serves Tailwind-style
// configuration descriptors.
//
// Exit codes:
//   - 0: success
//   - 1: the descriptor is invalid (parse, evaluation or validation error)
//   - 2: usage error (bad flag, missing argument, no descriptor found)
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}
