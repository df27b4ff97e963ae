// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Drillbit Contributors

// Package studio locates the directory Roblox Studio loads plugins from.
package studio

import (
	"os"
	"path/filepath"
	"runtime"

	"github.com/samber/oops"

	"github.com/drillbit/drillbit/internal/xdg"
)

// EnvVar overrides the plugins directory. It must name an existing directory.
const EnvVar = "DRILLBIT_PLUGINS_DIR"

// Env is the process environment Locate reads.
type Env struct {
	GOOS    string
	Getenv  func(string) string
	HomeDir func() (string, error)
}

// SystemEnv returns the environment of the running process.
func SystemEnv() Env {
	return Env{
		GOOS:    runtime.GOOS,
		Getenv:  os.Getenv,
		HomeDir: os.UserHomeDir,
	}
}

// PluginsDir locates the plugins directory of the running system.
// A non-empty override wins over everything else.
func PluginsDir(override string) (string, error) {
	return Locate(SystemEnv(), override)
}

// Locate resolves the plugins directory for env. Explicit overrides and the
// Studio directories on Windows and macOS must already exist. Elsewhere
// Studio is not available, so a drillbit data directory is used and created.
func Locate(env Env, override string) (string, error) {
	if override != "" {
		return existing(override, "plugins_dir")
	}
	if dir := env.Getenv(EnvVar); dir != "" {
		return existing(dir, EnvVar)
	}

	switch env.GOOS {
	case "windows":
		base := env.Getenv("LOCALAPPDATA")
		if base == "" {
			return "", oops.Code("PLUGINS_DIR_NOT_FOUND").
				With("source", "LOCALAPPDATA").
				Errorf("LOCALAPPDATA is not set")
		}
		return existing(filepath.Join(base, "Roblox", "Plugins"), "studio")
	case "darwin":
		home, err := env.HomeDir()
		if err != nil {
			return "", oops.Code("PLUGINS_DIR_NOT_FOUND").Wrapf(err, "resolve home directory")
		}
		return existing(filepath.Join(home, "Documents", "Roblox", "Plugins"), "studio")
	default:
		base, err := xdg.DataDir()
		if err != nil {
			return "", oops.Code("PLUGINS_DIR_NOT_FOUND").Wrap(err)
		}
		dir := filepath.Join(base, "plugins")
		if err := xdg.EnsureDir(dir); err != nil {
			return "", oops.Code("IO_WRITE_FAILED").With("path", dir).Wrap(err)
		}
		return dir, nil
	}
}

func existing(dir, source string) (string, error) {
	info, err := os.Stat(dir)
	if err != nil {
		return "", oops.Code("PLUGINS_DIR_NOT_FOUND").
			With("path", dir).
			With("source", source).
			Wrapf(err, "plugins directory not found")
	}
	if !info.IsDir() {
		return "", oops.Code("PLUGINS_DIR_NOT_FOUND").
			With("path", dir).
			With("source", source).
			Errorf("plugins directory %s is not a directory", dir)
	}
	return dir, nil
}
