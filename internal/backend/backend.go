// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Drillbit Contributors

// Package backend fetches plugin content from the sources a manifest names.
package backend

import (
	"context"
	"fmt"
	"io"
	"net/http"

	"github.com/samber/oops"

	"github.com/drillbit/drillbit/internal/manifest"
)

// Asset is fetched plugin content.
type Asset struct {
	Data []byte
	// Ext replaces the extension of the plugin id when set.
	Ext string
}

// Backend fetches plugins of one source kind.
type Backend interface {
	// Kind returns the source kind this backend handles.
	Kind() manifest.Kind

	// Download fetches the plugin's content.
	Download(ctx context.Context, p manifest.Plugin) (Asset, error)

	// PluginID derives the destination file stem for p. cwd is the base
	// name of the working directory, which scopes ids per project.
	PluginID(p manifest.Plugin, key, cwd string) string
}

// errKindMismatch reports a plugin handed to the wrong backend.
func errKindMismatch(want manifest.Kind, p manifest.Plugin) error {
	return oops.Code("BACKEND_KIND_MISMATCH").
		With("want", want).
		With("got", p.Kind()).
		Errorf("%s backend can only handle %s plugins", want, want)
}

// get issues a GET request and returns the body of a 2xx response.
// failure prefixes the status error, e.g. "download failed".
func get(ctx context.Context, client *http.Client, url string, header http.Header, failure string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, oops.Code("TRANSPORT_REQUEST_FAILED").With("url", url).Wrapf(err, "build request")
	}
	for k, vs := range header {
		for _, v := range vs {
			req.Header.Add(k, v)
		}
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, oops.Code("TRANSPORT_REQUEST_FAILED").With("url", url).Wrapf(err, "send request")
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil, oops.Code("TRANSPORT_BAD_STATUS").
			With("url", url).
			With("status", resp.StatusCode).
			Errorf("%s with status: %s", failure, statusText(resp))
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, oops.Code("TRANSPORT_REQUEST_FAILED").With("url", url).Wrapf(err, "read response body")
	}
	return body, nil
}

func statusText(resp *http.Response) string {
	if resp.Status != "" {
		return resp.Status
	}
	return fmt.Sprintf("%d %s", resp.StatusCode, http.StatusText(resp.StatusCode))
}
