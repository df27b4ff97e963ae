// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Drillbit Contributors

package backend

import (
	"context"
	"net/http"
	"net/url"
	"path"
	"strings"

	"github.com/drillbit/drillbit/internal/manifest"
)

// unknownBasename names plugins whose URL has no path segment.
const unknownBasename = "unknown"

// GitHub downloads plugins from a direct URL, typically a release asset.
type GitHub struct {
	client *http.Client
}

// NewGitHub creates a GitHub backend.
func NewGitHub(client *http.Client) *GitHub {
	if client == nil {
		client = http.DefaultClient
	}
	return &GitHub{client: client}
}

// Kind returns manifest.KindGitHub.
func (g *GitHub) Kind() manifest.Kind {
	return manifest.KindGitHub
}

// Download fetches the URL. The extension is taken from the URL's last
// path segment and left empty when that segment has none.
func (g *GitHub) Download(ctx context.Context, p manifest.Plugin) (Asset, error) {
	if p.GitHub == nil {
		return Asset{}, errKindMismatch(manifest.KindGitHub, p)
	}

	data, err := get(ctx, g.client, *p.GitHub, nil, "GitHub release download failed")
	if err != nil {
		return Asset{}, err
	}
	return Asset{Data: data, Ext: urlExtension(*p.GitHub)}, nil
}

// PluginID returns "{cwd}_{basename}" where basename is the URL's last
// path segment.
func (g *GitHub) PluginID(p manifest.Plugin, _, cwd string) string {
	if p.GitHub == nil {
		return ""
	}
	return cwd + "_" + urlBasename(*p.GitHub)
}

func urlBasename(raw string) string {
	p := raw
	if u, err := url.Parse(raw); err == nil {
		p = u.Path
	}
	p = strings.TrimRight(p, "/")
	base := p[strings.LastIndex(p, "/")+1:]
	if base == "" {
		return unknownBasename
	}
	return base
}

func urlExtension(raw string) string {
	base := urlBasename(raw)
	if base == unknownBasename {
		return ""
	}
	return strings.TrimPrefix(path.Ext(base), ".")
}
