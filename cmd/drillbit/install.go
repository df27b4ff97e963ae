// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Drillbit Contributors

package main

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/samber/oops"
	"github.com/spf13/cobra"

	"github.com/drillbit/drillbit/internal/backend"
	"github.com/drillbit/drillbit/internal/installer"
	"github.com/drillbit/drillbit/internal/logging"
	"github.com/drillbit/drillbit/internal/manifest"
	"github.com/drillbit/drillbit/internal/observability"
)

const serviceName = "drillbit"

// NewInstallCmd creates the install subcommand.
func NewInstallCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "install",
		Short: "Install the plugins listed in the manifest",
		Long: `Install fetches every plugin in the manifest and writes it into the
Studio plugins directory. Plugins whose content already exists there are
skipped. The first failure stops the run.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runInstallWithDeps(cmd.Context(), cmd, nil)
		},
	}
}

// runInstallWithDeps installs the manifest with injectable dependencies.
// If deps is nil, default implementations are used.
func runInstallWithDeps(ctx context.Context, cmd *cobra.Command, deps *InstallDeps) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	deps = deps.withDefaults(cfg)

	logger := logging.SetDefault(serviceName, version, logging.Options{
		Format:  cfg.LogFormat,
		Verbose: cfg.Verbose,
	}, deps.LogWriter)

	wd, err := deps.Getwd()
	if err != nil {
		return oops.Code("IO_READ_FAILED").Wrapf(err, "get working directory")
	}

	manifestPath := cfg.Manifest
	if manifestPath == "" {
		manifestPath = filepath.Join(wd, manifest.FileName)
	}
	m, err := manifest.Load(manifestPath)
	if err != nil {
		return err
	}

	dest, err := deps.PluginsDirLocator(cfg.PluginsDir)
	if err != nil {
		return err
	}
	logger.Debug("resolved plugins directory", "path", dest, "manifest", manifestPath)

	reg := backend.NewRegistry(backend.DefaultFactories(backend.Options{
		ManifestDir: m.Dir,
		HTTPClient:  deps.HTTPClient,
		AssetAPI:    cfg.AssetAPI,
		Credentials: deps.CredentialProvider(cfg),
	}))

	promReg := prometheus.NewRegistry()
	metrics := observability.NewMetrics(promReg)

	in := installer.New(dest, filepath.Base(wd), reg,
		installer.WithLogger(logger),
		installer.WithMetrics(metrics),
		installer.WithDryRun(cfg.DryRun),
	)
	report, runErr := in.Run(ctx, m)

	if cfg.MetricsTextfile != "" {
		if err := observability.WriteTextfile(cfg.MetricsTextfile, promReg); err != nil {
			if runErr == nil {
				return err
			}
			logger.Warn("failed to write metrics textfile", "path", cfg.MetricsTextfile, "error", err)
		}
	}
	if runErr != nil {
		return runErr
	}

	if cfg.DryRun {
		printPlan(cmd, report)
	}
	return nil
}

// printPlan lists what a dry run would have written.
func printPlan(cmd *cobra.Command, report *installer.Report) {
	out := cmd.OutOrStdout()
	for _, res := range report.Results {
		switch res.Outcome {
		case installer.OutcomeSkipped:
			_, _ = fmt.Fprintf(out, "skip   %s (already at %s)\n", res.Key, res.Existing)
		default:
			_, _ = fmt.Fprintf(out, "write  %s -> %s\n", res.Key, res.Path)
		}
	}
}
