// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Drillbit Contributors

// Package errutil provides helpers for oops errors.
package errutil

import (
	"log/slog"

	"github.com/samber/oops"
)

// LogError logs an error with structured context if it's an oops error.
// The plugin key, when present in the error context, is promoted to a top
// level attribute so failures can be traced to a manifest entry.
func LogError(logger *slog.Logger, msg string, err error) {
	oopsErr, ok := oops.AsOops(err)
	if !ok {
		logger.Error(msg, "error", err)
		return
	}

	attrs := []any{
		"error", oopsErr.Error(),
	}
	if code := Code(err); code != "" {
		attrs = append(attrs, "code", code)
	}
	ctx := oopsErr.Context()
	if plugin, ok := ctx["plugin"]; ok {
		attrs = append(attrs, "plugin", plugin)
		delete(ctx, "plugin")
	}
	if len(ctx) > 0 {
		attrs = append(attrs, "context", ctx)
	}
	logger.Error(msg, attrs...)
}
