// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Drillbit Contributors

// Package installer fetches manifest plugins and writes them into the
// plugins directory, skipping content that is already installed.
package installer

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/samber/oops"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/drillbit/drillbit/internal/backend"
	"github.com/drillbit/drillbit/internal/dedup"
	"github.com/drillbit/drillbit/internal/manifest"
	"github.com/drillbit/drillbit/internal/observability"
)

// pluginFileMode is the mode installed plugin files are written with.
const pluginFileMode = 0o644

// Installer installs the plugins of a manifest into one directory.
// A run is sequential and an Installer must not be shared across goroutines.
type Installer struct {
	dest     string
	cwd      string
	registry *backend.Registry
	logger   *slog.Logger
	metrics  *observability.Metrics
	tracer   trace.Tracer
	dryRun   bool
}

// Option configures an Installer.
type Option func(*Installer)

// WithLogger sets the logger. Defaults to slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(in *Installer) {
		in.logger = l
	}
}

// WithMetrics records run metrics into m.
func WithMetrics(m *observability.Metrics) Option {
	return func(in *Installer) {
		in.metrics = m
	}
}

// WithTracer sets the tracer used for per-plugin spans. Defaults to the
// global tracer provider.
func WithTracer(t trace.Tracer) Option {
	return func(in *Installer) {
		in.tracer = t
	}
}

// WithDryRun fetches and deduplicates without writing anything.
func WithDryRun(dryRun bool) Option {
	return func(in *Installer) {
		in.dryRun = dryRun
	}
}

// New creates an installer writing into dest. cwd is the base name of the
// working directory and scopes plugin ids.
func New(dest, cwd string, registry *backend.Registry, opts ...Option) *Installer {
	in := &Installer{
		dest:     dest,
		cwd:      cwd,
		registry: registry,
		logger:   slog.Default(),
		tracer:   otel.Tracer("drillbit/installer"),
	}
	for _, opt := range opts {
		opt(in)
	}
	return in
}

// Run installs every plugin in m in key order. The first error stops the
// run; plugins written before it stay on disk and are listed in the report.
func (in *Installer) Run(ctx context.Context, m *manifest.Manifest) (*Report, error) {
	report := &Report{RunID: ulid.Make()}
	logger := in.logger.With("run_id", report.RunID.String())

	idx, err := dedup.Build(in.dest)
	if err != nil {
		return report, err
	}
	in.metrics.SetIndexEntries(idx.Len())
	logger.DebugContext(ctx, "indexed plugins directory", "path", in.dest, "entries", idx.Len())

	for _, e := range m.Entries() {
		if err := ctx.Err(); err != nil {
			return report, oops.Code("INSTALL_CANCELLED").With("plugin", e.Key).Wrapf(err, "install cancelled")
		}

		res, err := in.install(ctx, logger, idx, e)
		if err != nil {
			return report, oops.With("plugin", e.Key, "kind", e.Plugin.Kind()).Wrapf(err, "install %q", e.Key)
		}
		report.Results = append(report.Results, res)
	}
	in.metrics.SetIndexEntries(idx.Len())

	logger.InfoContext(ctx, "plugins installed successfully",
		"written", report.Count(OutcomeWritten),
		"skipped", report.Count(OutcomeSkipped),
		"dry_run", in.dryRun,
	)
	return report, nil
}

func (in *Installer) install(ctx context.Context, logger *slog.Logger, idx *dedup.Index, e manifest.Entry) (_ Result, err error) {
	kind := e.Plugin.Kind()
	ctx, span := in.tracer.Start(ctx, "installer.plugin",
		trace.WithAttributes(
			attribute.String("plugin.key", e.Key),
			attribute.String("plugin.kind", string(kind)),
		),
	)
	defer func() {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		span.End()
	}()

	b, err := in.registry.For(kind)
	if err != nil {
		return Result{}, err
	}

	id := b.PluginID(e.Plugin, e.Key, in.cwd)
	logger.InfoContext(ctx, "reading plugin", "plugin", e.Key, "kind", kind)

	start := time.Now()
	asset, err := b.Download(ctx, e.Plugin)
	in.metrics.ObserveFetch(string(kind), time.Since(start))
	if err != nil {
		return Result{}, err
	}

	res := Result{
		Key:   e.Key,
		Kind:  kind,
		Path:  filepath.Join(in.dest, withExtension(id, asset.Ext)),
		Bytes: len(asset.Data),
	}

	hash := dedup.Sum(asset.Data)
	span.SetAttributes(attribute.String("plugin.hash", hash.String()))

	if existing, ok := idx.Lookup(hash); ok {
		res.Outcome = OutcomeSkipped
		res.Existing = existing
		logger.WarnContext(ctx, "plugin already exists, skipping", "plugin", e.Key, "existing", existing)
		in.metrics.RecordOutcome(string(kind), string(res.Outcome), 0)
		return res, nil
	}

	written := 0
	if in.dryRun {
		res.Outcome = OutcomeWouldWrite
		logger.InfoContext(ctx, "would write plugin", "plugin", e.Key, "path", res.Path)
	} else {
		logger.InfoContext(ctx, "writing plugin", "plugin", e.Key, "path", res.Path)
		//nolint:gosec // plugin files are read by the editor, not only by the owner
		if err := os.WriteFile(res.Path, asset.Data, pluginFileMode); err != nil {
			return Result{}, oops.Code("IO_WRITE_FAILED").With("path", res.Path).Wrapf(err, "write plugin")
		}
		res.Outcome = OutcomeWritten
		written = res.Bytes
	}

	idx.Insert(hash, res.Path)
	in.metrics.RecordOutcome(string(kind), string(res.Outcome), written)
	return res, nil
}

// withExtension replaces the final extension of name with ext when that
// extension is a known plugin extension or ext itself, and appends ext
// otherwise. An empty ext leaves name unchanged.
func withExtension(name, ext string) string {
	if ext == "" {
		return name
	}
	stem := name
	if i := strings.LastIndexByte(name, '.'); i > 0 {
		if cur := name[i+1:]; cur == ext || slices.Contains(manifest.AllowedExtensions, cur) {
			stem = name[:i]
		}
	}
	return stem + "." + ext
}
