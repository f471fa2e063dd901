// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package main

import (
	"fmt"

	"github.com/ManuGH/twconfig/internal/config"
	"github.com/spf13/cobra"
)

func newDumpCmd(c *cli) *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:   "dump",
		Short: "Print the normalized descriptor",
		Long: `Prints the descriptor in canonical form. Use --format to convert between
JavaScript, YAML and JSON; the output loads back to an equal descriptor.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			f, err := parseFormatFlag(format)
			if err != nil {
				return err
			}
			d, err := c.loadDefault(cmd)
			if err != nil {
				return err
			}
			out, err := config.Marshal(d, f)
			if err != nil {
				return invalid(fmt.Errorf("encode %s: %w", f, err))
			}
			_, err = c.stdout.Write(out)
			return err
		},
	}
	cmd.Flags().StringVar(&format, "format", string(config.FormatYAML), "output format: yaml, json or js")
	return cmd
}
