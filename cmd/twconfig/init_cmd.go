// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/ManuGH/twconfig/internal/config"
	"github.com/spf13/cobra"
)

func newInitCmd(c *cli) *cobra.Command {
	var (
		format string
		force  bool
	)

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Write the default descriptor",
		Long: `Writes the default descriptor (./pkg/html/**/*.go, safelist bg-blue-500)
to --file, or to tailwind.config.<ext> in the working directory.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			path := c.file
			if path == "" {
				f, err := parseFormatFlag(format)
				if err != nil {
					return err
				}
				path = "tailwind.config." + string(f)
			} else if _, err := config.FormatFromPath(path); err != nil {
				return usage(err)
			}

			if _, err := os.Stat(path); err == nil && !force {
				return invalid(fmt.Errorf("%s already exists (use --force to overwrite)", path))
			} else if err != nil && !errors.Is(err, os.ErrNotExist) {
				return invalid(err)
			}

			if err := config.NewManager(path).Save(config.Default()); err != nil {
				return invalid(err)
			}
			fmt.Fprintf(c.stdout, "wrote %s\n", path)
			return nil
		},
	}
	cmd.Flags().StringVar(&format, "format", string(config.FormatJS), "descriptor format when --file is not given: js, yaml or json")
	cmd.Flags().BoolVar(&force, "force", false, "overwrite an existing descriptor")
	return cmd
}
