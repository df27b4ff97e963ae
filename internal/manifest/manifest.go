// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Drillbit Contributors

// Package manifest parses and validates drillbit.toml plugin manifests.
package manifest

import (
	"bytes"
	"os"
	"path"
	"path/filepath"
	"slices"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"github.com/samber/oops"
)

// FileName is the manifest file looked up in the working directory.
const FileName = "drillbit.toml"

// AllowedExtensions lists the file extensions a local plugin may have.
var AllowedExtensions = []string{"rbxm", "rbxmx", "lua", "luau"}

// Kind identifies where a plugin is sourced from.
type Kind string

// Plugin source kinds.
const (
	KindLocal  Kind = "local"
	KindCloud  Kind = "cloud"
	KindGitHub Kind = "github"
)

// Manifest represents a drillbit.toml file.
type Manifest struct {
	Plugins map[string]Plugin `toml:"plugins" json:"plugins,omitempty" jsonschema_description:"Plugins to install, keyed by a short name"`

	// Dir is the directory the manifest was loaded from. Local plugin
	// paths resolve against it.
	Dir string `toml:"-" json:"-"`
}

// Plugin is a single manifest entry. Exactly one source field is set.
type Plugin struct {
	Local  *string `toml:"local,omitempty" json:"local,omitempty" jsonschema:"oneof_required=local,minLength=1" jsonschema_description:"Path to a plugin file, relative to the manifest"`
	Cloud  *uint64 `toml:"cloud,omitempty" json:"cloud,omitempty" jsonschema:"oneof_required=cloud" jsonschema_description:"Cloud asset id"`
	GitHub *string `toml:"github,omitempty" json:"github,omitempty" jsonschema:"oneof_required=github,minLength=1" jsonschema_description:"Direct URL to a release asset"`
}

// NewLocal returns a local plugin source.
func NewLocal(rel string) Plugin {
	return Plugin{Local: &rel}
}

// NewCloud returns a cloud plugin source.
func NewCloud(id uint64) Plugin {
	return Plugin{Cloud: &id}
}

// NewGitHub returns a remote URL plugin source.
func NewGitHub(url string) Plugin {
	return Plugin{GitHub: &url}
}

// Kind returns the source kind of the plugin, or "" if no source is set.
func (p Plugin) Kind() Kind {
	switch {
	case p.Local != nil:
		return KindLocal
	case p.Cloud != nil:
		return KindCloud
	case p.GitHub != nil:
		return KindGitHub
	default:
		return ""
	}
}

func (p Plugin) sourceCount() int {
	n := 0
	if p.Local != nil {
		n++
	}
	if p.Cloud != nil {
		n++
	}
	if p.GitHub != nil {
		n++
	}
	return n
}

// Entry pairs a manifest key with its plugin.
type Entry struct {
	Key    string
	Plugin Plugin
}

// Entries returns the manifest's plugins sorted by key.
func (m *Manifest) Entries() []Entry {
	keys := make([]string, 0, len(m.Plugins))
	for k := range m.Plugins {
		keys = append(keys, k)
	}
	slices.Sort(keys)

	entries := make([]Entry, 0, len(keys))
	for _, k := range keys {
		entries = append(entries, Entry{Key: k, Plugin: m.Plugins[k]})
	}
	return entries
}

// Read loads the manifest named FileName from dir.
func Read(dir string) (*Manifest, error) {
	return Load(filepath.Join(dir, FileName))
}

// Load reads, parses and validates the manifest at path.
func Load(p string) (*Manifest, error) {
	data, err := os.ReadFile(p) //nolint:gosec // manifest path is chosen by the user
	if err != nil {
		return nil, oops.Code("MANIFEST_READ_FAILED").With("path", p).Wrapf(err, "read manifest")
	}

	m, err := Parse(data)
	if err != nil {
		return nil, oops.With("path", p).Wrap(err)
	}

	abs, err := filepath.Abs(p)
	if err != nil {
		abs = p
	}
	m.Dir = filepath.Dir(abs)
	return m, nil
}

// Parse decodes and validates manifest data. The data is checked against
// the manifest JSON Schema before it is decoded into typed values.
func Parse(data []byte) (*Manifest, error) {
	var tree map[string]any
	if err := toml.Unmarshal(data, &tree); err != nil {
		return nil, oops.Code("MANIFEST_PARSE_FAILED").Wrapf(err, "invalid TOML")
	}

	if err := validateTree(tree); err != nil {
		return nil, oops.Code("MANIFEST_SCHEMA_INVALID").Wrap(err)
	}

	var m Manifest
	dec := toml.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&m); err != nil {
		return nil, oops.Code("MANIFEST_PARSE_FAILED").Wrapf(err, "decode manifest")
	}

	if err := m.Validate(); err != nil {
		return nil, err
	}
	return &m, nil
}

// Validate checks manifest constraints. Entries are checked in key order so
// the reported failure is stable.
func (m *Manifest) Validate() error {
	allowed := strings.Join(AllowedExtensions, ", ")

	for _, e := range m.Entries() {
		if n := e.Plugin.sourceCount(); n != 1 {
			return oops.Code("MANIFEST_INVALID_SOURCE").
				With("plugin", e.Key).
				Errorf("plugin '%s' must have exactly one of local, cloud or github, got %d", e.Key, n)
		}

		if e.Plugin.Local == nil {
			continue
		}

		ext := Extension(*e.Plugin.Local)
		if ext == "" {
			return oops.Code("MANIFEST_MISSING_EXTENSION").
				With("plugin", e.Key).
				Errorf("plugin '%s' must have a file extension. Allowed extensions: %s", e.Key, allowed)
		}
		if !slices.Contains(AllowedExtensions, ext) {
			return oops.Code("MANIFEST_INVALID_EXTENSION").
				With("plugin", e.Key).
				With("extension", ext).
				Errorf("plugin '%s' has invalid file extension '%s'. Allowed extensions: %s", e.Key, ext, allowed)
		}
	}
	return nil
}

// Extension returns the extension of a slash-separated relative path
// without the leading dot.
func Extension(rel string) string {
	return strings.TrimPrefix(path.Ext(filepath.ToSlash(rel)), ".")
}
