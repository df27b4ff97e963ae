// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Drillbit Contributors

package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"text/tabwriter"

	"github.com/samber/oops"
	"github.com/spf13/cobra"

	"github.com/drillbit/drillbit/internal/manifest"
)

// NewCheckCmd creates the check subcommand.
func NewCheckCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "check [manifest]",
		Short: "Validate a manifest without installing anything",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := manifest.FileName
			if len(args) == 1 {
				path = args[0]
			} else if flag := cmd.Flags().Lookup("manifest"); flag != nil && flag.Value.String() != "" {
				path = flag.Value.String()
			}
			return runCheck(cmd, path)
		},
	}
}

func runCheck(cmd *cobra.Command, path string) error {
	data, err := os.ReadFile(path) //nolint:gosec // manifest path is chosen by the user
	if err != nil {
		return oops.Code("MANIFEST_READ_FAILED").With("path", path).Wrapf(err, "read manifest")
	}
	if err := manifest.ValidateSchema(data); err != nil {
		_, _ = fmt.Fprintf(cmd.ErrOrStderr(), "%s: %s\n", filepath.Base(path), manifest.FormatSchemaError(err))
		return oops.Code("MANIFEST_SCHEMA_INVALID").With("path", path).Wrap(err)
	}

	m, err := manifest.Load(path)
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "PLUGIN\tKIND\tSOURCE")
	for _, e := range m.Entries() {
		_, _ = fmt.Fprintf(w, "%s\t%s\t%s\n", e.Key, e.Plugin.Kind(), source(e.Plugin))
	}
	if err := w.Flush(); err != nil {
		return oops.Code("IO_WRITE_FAILED").Wrapf(err, "write check output")
	}
	_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%d plugins OK\n", len(m.Plugins))
	return nil
}

func source(p manifest.Plugin) string {
	switch {
	case p.Local != nil:
		return *p.Local
	case p.Cloud != nil:
		return strconv.FormatUint(*p.Cloud, 10)
	case p.GitHub != nil:
		return *p.GitHub
	}
	return ""
}
