// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Drillbit Contributors

package main

import (
	"io"
	"net/http"
	"os"

	"github.com/drillbit/drillbit/internal/config"
	"github.com/drillbit/drillbit/internal/credential"
	"github.com/drillbit/drillbit/internal/studio"
	"github.com/drillbit/drillbit/internal/xdg"
)

// InstallDeps contains injectable dependencies for the install command.
// All fields with nil values will use their default implementations.
type InstallDeps struct {
	// Getwd returns the working directory.
	// Default: os.Getwd
	Getwd func() (string, error)

	// PluginsDirLocator resolves the plugins directory from the configured override.
	// Default: studio.PluginsDir
	PluginsDirLocator func(override string) (string, error)

	// CredentialProvider builds the session cookie source.
	// Default: environment, then cookie_file, then XDG_CONFIG_HOME/drillbit/cookie
	CredentialProvider func(cfg *config.Config) credential.Provider

	// HTTPClient is used by the network backends.
	// Default: a client honouring http_timeout
	HTTPClient *http.Client

	// LogWriter receives log output.
	// Default: os.Stderr
	LogWriter io.Writer
}

func (d *InstallDeps) withDefaults(cfg *config.Config) *InstallDeps {
	out := InstallDeps{}
	if d != nil {
		out = *d
	}
	if out.Getwd == nil {
		out.Getwd = os.Getwd
	}
	if out.PluginsDirLocator == nil {
		out.PluginsDirLocator = studio.PluginsDir
	}
	if out.CredentialProvider == nil {
		out.CredentialProvider = defaultCredentials
	}
	if out.HTTPClient == nil {
		out.HTTPClient = newHTTPClient(cfg.HTTPTimeout)
	}
	if out.LogWriter == nil {
		out.LogWriter = os.Stderr
	}
	return &out
}

func defaultCredentials(cfg *config.Config) credential.Provider {
	// An unresolvable home directory just drops the default cookie file.
	fallback, _ := xdg.CookieFile()
	return credential.NewLocator(cfg.CookieFile, fallback)
}
