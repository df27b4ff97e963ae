// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Drillbit Contributors

// Package credential locates the session cookie used by the cloud asset API.
package credential

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"strings"

	"github.com/samber/oops"
)

// EnvVar is the environment variable checked first for the session cookie.
const EnvVar = "ROBLOSECURITY"

// CookieName is the name of the session cookie sent to the asset API.
const CookieName = ".ROBLOSECURITY"

// ErrNotFound is wrapped by the error returned when no session cookie could
// be located.
var ErrNotFound = errors.New("couldn't get session cookie: set " + EnvVar + " or store it in a cookie file")

func notFound() error {
	return oops.Code("AUTH_CREDENTIAL_NOT_FOUND").Wrap(ErrNotFound)
}

// Provider supplies the session cookie value.
type Provider interface {
	Cookie(ctx context.Context) (string, error)
}

// ProviderFunc adapts a function to Provider.
type ProviderFunc func(ctx context.Context) (string, error)

// Cookie calls f.
func (f ProviderFunc) Cookie(ctx context.Context) (string, error) {
	return f(ctx)
}

// Static returns a Provider that always yields value.
func Static(value string) Provider {
	return ProviderFunc(func(context.Context) (string, error) {
		if v := Normalize(value); v != "" {
			return v, nil
		}
		return "", notFound()
	})
}

// Locator looks for the cookie in the environment, then in files.
type Locator struct {
	getenv func(string) string
	paths  []string
}

// NewLocator creates a Locator that checks EnvVar and then paths in order.
// Empty paths are ignored.
func NewLocator(paths ...string) *Locator {
	l := &Locator{getenv: os.Getenv}
	for _, p := range paths {
		if p != "" {
			l.paths = append(l.paths, p)
		}
	}
	return l
}

// Cookie returns the first non-empty cookie found.
func (l *Locator) Cookie(_ context.Context) (string, error) {
	if v := Normalize(l.getenv(EnvVar)); v != "" {
		return v, nil
	}

	for _, p := range l.paths {
		data, err := os.ReadFile(p) //nolint:gosec // cookie paths come from config
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return "", oops.Code("AUTH_CREDENTIAL_READ_FAILED").With("path", p).Wrapf(err, "read cookie file")
		}
		if v := Normalize(string(data)); v != "" {
			return v, nil
		}
	}

	return "", notFound()
}

// Normalize trims whitespace and strips a leading "<CookieName>=" and a
// trailing ";" so both raw values and copied header fragments work.
func Normalize(raw string) string {
	v := strings.TrimSpace(raw)
	v = strings.TrimPrefix(v, CookieName+"=")
	v = strings.TrimSuffix(v, ";")
	return strings.TrimSpace(v)
}

// Header formats value as a Cookie header.
func Header(value string) string {
	return CookieName + "=" + value
}

// Cell holds a cookie fetched on first use. A failed fetch is not cached.
type Cell struct {
	provider Provider
	value    string
	loaded   bool
}

// NewCell creates an empty cell backed by p.
func NewCell(p Provider) *Cell {
	return &Cell{provider: p}
}

// Get returns the cached cookie, fetching it from the provider the first time.
func (c *Cell) Get(ctx context.Context) (string, error) {
	if c.loaded {
		return c.value, nil
	}
	if c.provider == nil {
		return "", notFound()
	}

	v, err := c.provider.Cookie(ctx)
	if err != nil {
		return "", err
	}
	c.value = v
	c.loaded = true
	return v, nil
}
