// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Drillbit Contributors

package main

import (
	"github.com/spf13/cobra"

	"github.com/drillbit/drillbit/internal/config"
)

// Global flags available to all subcommands.
var configFile string

// NewRootCmd creates the root command for the drillbit CLI. Running it
// without a subcommand installs the manifest in the working directory.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "drillbit",
		Short: "Install Roblox Studio plugins from a manifest",
		Long: `drillbit installs the plugins listed in drillbit.toml into the Roblox
Studio plugins directory. Plugins come from local files, the cloud asset
API or direct download URLs, and content that is already installed is
never written twice.`,
		Args:          cobra.NoArgs,
		SilenceErrors: true,
		SilenceUsage:  true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runInstallWithDeps(cmd.Context(), cmd, nil)
		},
	}

	cmd.PersistentFlags().StringVar(&configFile, "config", "", "config file path (default: XDG_CONFIG_HOME/drillbit/config.yaml)")
	config.RegisterFlags(cmd.PersistentFlags())

	cmd.AddCommand(NewInstallCmd())
	cmd.AddCommand(NewCheckCmd())
	cmd.AddCommand(NewSchemaCmd())

	return cmd
}

// loadConfig resolves and validates the configuration for cmd.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	path, err := config.ResolvePath(configFile)
	if err != nil {
		return nil, err
	}
	cfg, err := config.Load(path, cmd.Flags())
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}
