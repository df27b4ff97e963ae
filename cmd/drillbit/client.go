// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Drillbit Contributors

package main

import (
	"net/http"
	"time"
)

// userAgent identifies drillbit to the asset API and release hosts.
func userAgent() string {
	return "drillbit/" + version
}

type userAgentTransport struct {
	base  http.RoundTripper
	agent string
}

func (t *userAgentTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	if req.Header.Get("User-Agent") != "" {
		return t.base.RoundTrip(req) //nolint:wrapcheck // transport passthrough
	}
	r := req.Clone(req.Context())
	r.Header.Set("User-Agent", t.agent)
	return t.base.RoundTrip(r) //nolint:wrapcheck // transport passthrough
}

func newHTTPClient(timeout time.Duration) *http.Client {
	return &http.Client{
		Timeout: timeout,
		Transport: &userAgentTransport{
			base:  http.DefaultTransport,
			agent: userAgent(),
		},
	}
}
