// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Drillbit Contributors

// Package main is the entry point for the drillbit CLI.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/drillbit/drillbit/pkg/errutil"
)

// Version information set at build time.
var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)

	cmd := NewRootCmd()
	cmd.Version = fmt.Sprintf("%s (commit: %s, built: %s)", version, commit, date)

	err := cmd.ExecuteContext(ctx)
	stop()
	if err != nil {
		errutil.LogError(slog.Default(), "drillbit failed", err)
		os.Exit(1)
	}
}
