// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Drillbit Contributors

package backend

import (
	"context"
	"os"
	"path"
	"path/filepath"

	"github.com/samber/oops"

	"github.com/drillbit/drillbit/internal/manifest"
)

// Local reads plugins from files next to the manifest.
type Local struct {
	root string
}

// NewLocal creates a Local backend resolving paths against root.
func NewLocal(root string) *Local {
	return &Local{root: root}
}

// Kind returns manifest.KindLocal.
func (l *Local) Kind() manifest.Kind {
	return manifest.KindLocal
}

// Download reads the plugin file. Luau sources are installed with a .lua
// extension; the content is not changed.
func (l *Local) Download(_ context.Context, p manifest.Plugin) (Asset, error) {
	if p.Local == nil {
		return Asset{}, errKindMismatch(manifest.KindLocal, p)
	}

	var asset Asset
	if manifest.Extension(*p.Local) == "luau" {
		asset.Ext = "lua"
	}

	file := l.resolve(*p.Local)
	data, err := os.ReadFile(file) //nolint:gosec // path comes from the user's manifest
	if err != nil {
		return Asset{}, oops.Code("IO_READ_FAILED").With("path", file).Wrapf(err, "failed to read plugin")
	}
	asset.Data = data
	return asset, nil
}

// PluginID returns "{cwd}_{filename}", keeping the file's extension.
func (l *Local) PluginID(p manifest.Plugin, _, cwd string) string {
	if p.Local == nil {
		return ""
	}
	return cwd + "_" + path.Base(filepath.ToSlash(*p.Local))
}

// resolve joins a manifest-relative path onto root. A leading slash does
// not escape root.
func (l *Local) resolve(rel string) string {
	return filepath.Join(l.root, filepath.FromSlash(rel))
}
