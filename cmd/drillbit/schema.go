// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Drillbit Contributors

package main

import (
	"github.com/samber/oops"
	"github.com/spf13/cobra"

	"github.com/drillbit/drillbit/internal/manifest"
)

// NewSchemaCmd creates the schema subcommand.
func NewSchemaCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "schema",
		Short: "Print the manifest JSON Schema",
		Long: `Print the JSON Schema describing drillbit.toml. Editors with TOML schema
support can use it for completion and validation.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			schema, err := manifest.GenerateSchema()
			if err != nil {
				return oops.Code("SCHEMA_GENERATE_FAILED").Wrap(err)
			}
			if _, err := cmd.OutOrStdout().Write(append(schema, '\n')); err != nil {
				return oops.Code("IO_WRITE_FAILED").Wrapf(err, "write schema")
			}
			return nil
		},
	}
}
