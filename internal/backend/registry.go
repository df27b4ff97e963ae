// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Drillbit Contributors

package backend

import (
	"net/http"

	"github.com/samber/oops"

	"github.com/drillbit/drillbit/internal/credential"
	"github.com/drillbit/drillbit/internal/manifest"
)

// Factory constructs a backend.
type Factory func() (Backend, error)

// Registry hands out one backend per source kind, constructing each on
// first use. It is not safe for concurrent use.
type Registry struct {
	factories map[manifest.Kind]Factory
	backends  map[manifest.Kind]Backend
}

// NewRegistry creates a registry from per-kind factories.
func NewRegistry(factories map[manifest.Kind]Factory) *Registry {
	f := make(map[manifest.Kind]Factory, len(factories))
	for k, v := range factories {
		f[k] = v
	}
	return &Registry{
		factories: f,
		backends:  make(map[manifest.Kind]Backend),
	}
}

// For returns the backend for kind, creating it if this is the first request.
func (r *Registry) For(kind manifest.Kind) (Backend, error) {
	if b, ok := r.backends[kind]; ok {
		return b, nil
	}

	factory, ok := r.factories[kind]
	if !ok {
		return nil, oops.Code("BACKEND_UNSUPPORTED").With("kind", kind).Errorf("no backend for %q plugins", kind)
	}

	b, err := factory()
	if err != nil {
		return nil, oops.Code("BACKEND_INIT_FAILED").With("kind", kind).Wrap(err)
	}
	r.backends[kind] = b
	return b, nil
}

// Created reports whether the backend for kind has been constructed.
func (r *Registry) Created(kind manifest.Kind) bool {
	_, ok := r.backends[kind]
	return ok
}

// Options configures the default backends.
type Options struct {
	// ManifestDir is the directory local plugin paths resolve against.
	ManifestDir string
	// HTTPClient is shared by the network backends. Defaults to http.DefaultClient.
	HTTPClient *http.Client
	// AssetAPI is the base URL of the asset delivery API.
	AssetAPI string
	// Credentials supplies the session cookie for cloud plugins.
	Credentials credential.Provider
}

// DefaultFactories returns factories for the local, cloud and GitHub backends.
func DefaultFactories(opts Options) map[manifest.Kind]Factory {
	return map[manifest.Kind]Factory{
		manifest.KindLocal: func() (Backend, error) {
			return NewLocal(opts.ManifestDir), nil
		},
		manifest.KindCloud: func() (Backend, error) {
			return NewCloud(opts.HTTPClient, opts.AssetAPI, opts.Credentials), nil
		},
		manifest.KindGitHub: func() (Backend, error) {
			return NewGitHub(opts.HTTPClient), nil
		},
	}
}
