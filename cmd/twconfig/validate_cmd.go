// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newValidateCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "validate",
		Short: "Validate the descriptor",
		Long: `Loads the descriptor (strict for YAML and JSON, lax for JavaScript unless
--strict is given), validates it and prints warnings to stderr.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			path, err := c.descriptorPath()
			if err != nil {
				return err
			}
			if _, err := c.load(cmd, path); err != nil {
				return err
			}
			fmt.Fprintf(c.stdout, "✓ %s is valid\n", path)
			return nil
		},
	}
}
