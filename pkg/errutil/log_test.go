// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Drillbit Contributors

package errutil_test

import (
	"bytes"
	"encoding/json"
	"errors"
	"log/slog"
	"testing"

	"github.com/samber/oops"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/drillbit/drillbit/pkg/errutil"
)

func TestLogError_WithOopsError(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, nil))

	err := oops.Code("TRANSPORT_BAD_STATUS").
		With("status", 503).
		Errorf("request failed")

	errutil.LogError(logger, "install failed", err)

	var logEntry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &logEntry))
	assert.Equal(t, "ERROR", logEntry["level"])
	assert.Equal(t, "install failed", logEntry["msg"])
	assert.Equal(t, "TRANSPORT_BAD_STATUS", logEntry["code"])
	assert.Contains(t, logEntry, "context")
}

func TestLogError_PromotesPluginKey(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, nil))

	inner := oops.Code("ASSET_NO_LOCATIONS").Errorf("no download locations found")
	err := oops.With("plugin", "tagger").Wrap(inner)

	errutil.LogError(logger, "install failed", err)

	var logEntry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &logEntry))
	assert.Equal(t, "tagger", logEntry["plugin"])
	assert.Equal(t, "ASSET_NO_LOCATIONS", logEntry["code"])
	assert.NotContains(t, logEntry, "context")
}

func TestLogError_WithStandardError(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, nil))

	err := errors.New("standard error")

	errutil.LogError(logger, "install failed", err)

	var logEntry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &logEntry))
	assert.Equal(t, "ERROR", logEntry["level"])
	assert.Contains(t, logEntry["error"], "standard error")
	assert.NotContains(t, logEntry, "code")
}
