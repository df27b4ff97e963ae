// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Drillbit Contributors

package backend

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/samber/oops"

	"github.com/drillbit/drillbit/internal/credential"
	"github.com/drillbit/drillbit/internal/manifest"
)

// DefaultAssetAPI is the base URL of the asset delivery API.
const DefaultAssetAPI = "https://assetdelivery.roblox.com"

// cloudExtension is the format cloud assets are delivered in.
const cloudExtension = "rbxm"

// ErrNoLocations is wrapped by the error returned when the asset API offers
// nowhere to download from.
var ErrNoLocations = errors.New("no download locations found")

// Cloud downloads assets from the authenticated asset delivery API.
type Cloud struct {
	client  *http.Client
	baseURL string
	cookie  *credential.Cell
}

type assetLocation struct {
	Location string `json:"location"`
}

type assetResponse struct {
	Locations []assetLocation `json:"locations"`
}

// NewCloud creates a Cloud backend. The cookie is requested from creds the
// first time a plugin is downloaded and reused afterwards.
func NewCloud(client *http.Client, baseURL string, creds credential.Provider) *Cloud {
	if client == nil {
		client = http.DefaultClient
	}
	if baseURL == "" {
		baseURL = DefaultAssetAPI
	}
	return &Cloud{
		client:  client,
		baseURL: strings.TrimRight(baseURL, "/"),
		cookie:  credential.NewCell(creds),
	}
}

// Kind returns manifest.KindCloud.
func (c *Cloud) Kind() manifest.Kind {
	return manifest.KindCloud
}

// Download resolves the asset id to a download location and fetches it.
func (c *Cloud) Download(ctx context.Context, p manifest.Plugin) (Asset, error) {
	if p.Cloud == nil {
		return Asset{}, errKindMismatch(manifest.KindCloud, p)
	}
	id := *p.Cloud

	cookie, err := c.cookie.Get(ctx)
	if err != nil {
		if _, ok := oops.AsOops(err); ok {
			return Asset{}, err
		}
		return Asset{}, oops.Code("AUTH_CREDENTIAL_NOT_FOUND").Wrapf(err, "couldn't get session cookie")
	}

	header := http.Header{}
	header.Set("Cookie", credential.Header(cookie))

	meta, err := get(ctx, c.client, c.assetURL(id), header, "request failed")
	if err != nil {
		return Asset{}, oops.With("asset_id", id).Wrap(err)
	}

	var asset assetResponse
	if err := json.Unmarshal(meta, &asset); err != nil {
		return Asset{}, oops.Code("ASSET_DECODE_FAILED").With("asset_id", id).Wrapf(err, "decode asset response")
	}
	if len(asset.Locations) == 0 || asset.Locations[0].Location == "" {
		return Asset{}, oops.Code("ASSET_NO_LOCATIONS").With("asset_id", id).Wrap(ErrNoLocations)
	}

	data, err := get(ctx, c.client, asset.Locations[0].Location, header, "download failed")
	if err != nil {
		return Asset{}, oops.With("asset_id", id).Wrap(err)
	}
	return Asset{Data: data, Ext: cloudExtension}, nil
}

// PluginID returns "{cwd}_{key}_{id}". The key is part of the id since a
// bare asset id says nothing about what the plugin is.
func (c *Cloud) PluginID(p manifest.Plugin, key, cwd string) string {
	if p.Cloud == nil {
		return ""
	}
	return fmt.Sprintf("%s_%s_%d", cwd, key, *p.Cloud)
}

func (c *Cloud) assetURL(id uint64) string {
	return c.baseURL + "/v2/asset?id=" + strconv.FormatUint(id, 10)
}
