// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Drillbit Contributors

// Package backendtest provides test doubles for plugin backends.
package backendtest

import (
	"context"
	"fmt"

	"github.com/stretchr/testify/mock"

	"github.com/drillbit/drillbit/internal/backend"
	"github.com/drillbit/drillbit/internal/manifest"
)

// Mock is a testify mock implementing backend.Backend.
type Mock struct {
	mock.Mock
	kind manifest.Kind
}

// NewMock creates a mock backend for kind.
func NewMock(kind manifest.Kind) *Mock {
	return &Mock{kind: kind}
}

// Kind returns the kind the mock was created for.
func (m *Mock) Kind() manifest.Kind {
	return m.kind
}

// Download records the call and returns the configured asset.
func (m *Mock) Download(ctx context.Context, p manifest.Plugin) (backend.Asset, error) {
	args := m.Called(ctx, p)
	return args.Get(0).(backend.Asset), args.Error(1)
}

// PluginID records the call and returns the configured id.
func (m *Mock) PluginID(p manifest.Plugin, key, cwd string) string {
	args := m.Called(p, key, cwd)
	return args.String(0)
}

// Static serves fixed content for every plugin of one kind. Ids are
// "{cwd}_{key}" unless overridden.
type Static struct {
	K manifest.Kind
	// Content maps manifest keys to the bytes served for them.
	Content map[string][]byte
	// Ext is returned as the extension override.
	Ext string
	// Downloads counts calls to Download.
	Downloads int

	keys map[manifest.Plugin]string
}

// Kind returns s.K.
func (s *Static) Kind() manifest.Kind {
	return s.K
}

// Download returns the content registered for the plugin's key.
func (s *Static) Download(_ context.Context, p manifest.Plugin) (backend.Asset, error) {
	s.Downloads++
	key, ok := s.keys[p]
	if !ok {
		return backend.Asset{}, fmt.Errorf("static backend: plugin %+v was never identified", p)
	}
	data, ok := s.Content[key]
	if !ok {
		return backend.Asset{}, fmt.Errorf("static backend: no content for %q", key)
	}
	return backend.Asset{Data: data, Ext: s.Ext}, nil
}

// PluginID remembers the key for the following Download.
func (s *Static) PluginID(p manifest.Plugin, key, cwd string) string {
	if s.keys == nil {
		s.keys = make(map[manifest.Plugin]string)
	}
	s.keys[p] = key
	return cwd + "_" + key
}

// Factory returns a backend.Factory that always yields b.
func Factory(b backend.Backend) backend.Factory {
	return func() (backend.Backend, error) {
		return b, nil
	}
}
