// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Drillbit Contributors

// Package config loads drillbit settings from defaults, an optional YAML
// file and command-line flags, in increasing order of precedence.
package config

import (
	"errors"
	"io/fs"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/v2"
	"github.com/samber/oops"
	"github.com/spf13/pflag"

	"github.com/drillbit/drillbit/internal/backend"
	"github.com/drillbit/drillbit/internal/xdg"
)

// FileName is the config file looked up in the drillbit config directory.
const FileName = "config.yaml"

// Log formats.
const (
	LogFormatText = "text"
	LogFormatJSON = "json"
)

const defaultHTTPTimeout = 60 * time.Second

// Config holds drillbit settings.
type Config struct {
	// Manifest is the manifest path. Empty means drillbit.toml in the
	// working directory.
	Manifest string `koanf:"manifest"`
	// PluginsDir overrides the Studio plugins directory.
	PluginsDir      string        `koanf:"plugins_dir"`
	LogFormat       string        `koanf:"log_format"`
	Verbose         bool          `koanf:"verbose"`
	AssetAPI        string        `koanf:"asset_api"`
	CookieFile      string        `koanf:"cookie_file"`
	HTTPTimeout     time.Duration `koanf:"http_timeout"`
	MetricsTextfile string        `koanf:"metrics_textfile"`
	DryRun          bool          `koanf:"dry_run"`
}

// Default returns the built-in settings.
func Default() Config {
	return Config{
		LogFormat:   LogFormatText,
		AssetAPI:    backend.DefaultAssetAPI,
		HTTPTimeout: defaultHTTPTimeout,
	}
}

// RegisterFlags adds a flag for every setting to fs. Flag names are the
// setting keys with dashes, e.g. --plugins-dir for plugins_dir.
func RegisterFlags(fs *pflag.FlagSet) {
	d := Default()
	fs.String("manifest", d.Manifest, "manifest path (default: ./drillbit.toml)")
	fs.String("plugins-dir", d.PluginsDir, "Studio plugins directory (default: detected)")
	fs.String("log-format", d.LogFormat, "log format (json or text)")
	fs.BoolP("verbose", "v", d.Verbose, "enable debug logging")
	fs.String("asset-api", d.AssetAPI, "asset delivery API base URL")
	fs.String("cookie-file", d.CookieFile, "file holding the .ROBLOSECURITY cookie")
	fs.Duration("http-timeout", d.HTTPTimeout, "timeout for each HTTP request (0 = none)")
	fs.String("metrics-textfile", d.MetricsTextfile, "write run metrics to this file in Prometheus text format")
	fs.Bool("dry-run", d.DryRun, "fetch and deduplicate without writing plugins")
}

// ResolvePath returns the config file to load. An explicit path is always
// returned; otherwise the default file is used if it exists.
func ResolvePath(explicit string) (string, error) {
	if explicit != "" {
		return explicit, nil
	}
	dir, err := xdg.ConfigDir()
	if err != nil {
		return "", oops.Code("CONFIG_LOAD_FAILED").Wrap(err)
	}
	p := filepath.Join(dir, FileName)
	if _, err := os.Stat(p); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return "", nil
		}
		return "", oops.Code("CONFIG_LOAD_FAILED").With("path", p).Wrapf(err, "stat config file")
	}
	return p, nil
}

// Load builds the configuration. path may be empty to skip the file layer
// and flags may be nil to skip the flag layer. Flags override the file only
// when set explicitly.
func Load(path string, flags *pflag.FlagSet) (*Config, error) {
	k := koanf.New(".")

	if path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, oops.Code("CONFIG_LOAD_FAILED").With("path", path).Wrapf(err, "load config file")
		}
	}

	if flags != nil {
		if err := k.Load(posflag.ProviderWithFlag(flags, ".", k, flagKey(flags)), nil); err != nil {
			return nil, oops.Code("CONFIG_LOAD_FAILED").Wrapf(err, "load flags")
		}
	}

	cfg := Default()
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, oops.Code("CONFIG_LOAD_FAILED").With("path", path).Wrapf(err, "decode config")
	}
	return &cfg, nil
}

// flagKey maps setting flags to their keys and drops every other flag.
func flagKey(flags *pflag.FlagSet) func(*pflag.Flag) (string, any) {
	return func(f *pflag.Flag) (string, any) {
		key := strings.ReplaceAll(f.Name, "-", "_")
		if !isKey(key) {
			return "", nil
		}
		return key, posflag.FlagVal(flags, f)
	}
}

func isKey(key string) bool {
	switch key {
	case "manifest", "plugins_dir", "log_format", "verbose", "asset_api",
		"cookie_file", "http_timeout", "metrics_textfile", "dry_run":
		return true
	}
	return false
}

// Validate checks that the configuration is usable.
func (c *Config) Validate() error {
	if c.LogFormat != LogFormatJSON && c.LogFormat != LogFormatText {
		return oops.Code("CONFIG_INVALID").
			With("key", "log_format").
			Errorf("log-format must be 'json' or 'text', got %q", c.LogFormat)
	}

	u, err := url.Parse(c.AssetAPI)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return oops.Code("CONFIG_INVALID").
			With("key", "asset_api").
			Errorf("asset-api must be an absolute http(s) URL, got %q", c.AssetAPI)
	}

	if c.HTTPTimeout < 0 {
		return oops.Code("CONFIG_INVALID").
			With("key", "http_timeout").
			Errorf("http-timeout must not be negative, got %s", c.HTTPTimeout)
	}
	return nil
}
