// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Drillbit Contributors

// Package xdg provides XDG Base Directory paths for drillbit.
package xdg

import (
	"fmt"
	"os"
	"path/filepath"
)

const appName = "drillbit"

// ConfigDir returns the XDG config directory for drillbit.
// Checks XDG_CONFIG_HOME first, falls back to ~/.config.
func ConfigDir() (string, error) {
	return dir("XDG_CONFIG_HOME", ".config")
}

// DataDir returns the XDG data directory for drillbit.
// Checks XDG_DATA_HOME first, falls back to ~/.local/share.
func DataDir() (string, error) {
	return dir("XDG_DATA_HOME", filepath.Join(".local", "share"))
}

// CookieFile returns the default location of the stored session cookie.
func CookieFile() (string, error) {
	base, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(base, "cookie"), nil
}

func dir(env, fallback string) (string, error) {
	base := os.Getenv(env)
	if base == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("failed to resolve home directory for %s: %w", env, err)
		}
		base = filepath.Join(home, fallback)
	}
	return filepath.Join(base, appName), nil
}

// EnsureDir creates a directory and all parent directories if they don't exist.
// Directories are created with 0755 permissions.
func EnsureDir(path string) error {
	if err := os.MkdirAll(path, 0o755); err != nil { //nolint:gosec // plugin directories are shared with the editor
		return fmt.Errorf("failed to create directory %s: %w", path, err)
	}
	return nil
}
