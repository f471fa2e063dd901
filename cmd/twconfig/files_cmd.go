// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package main

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/ManuGH/twconfig/internal/content"
	"github.com/spf13/cobra"
)

func newFilesCmd(c *cli) *cobra.Command {
	var (
		root          string
		showPatterns  bool
		failUnmatched bool
	)

	cmd := &cobra.Command{
		Use:   "files",
		Short: "List the files the content patterns select",
		Long: `Resolves the descriptor's content patterns against the project root and
prints the selected files, one per line. Patterns that select nothing are
reported on stderr. File contents are never read.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			d, err := c.loadDefault(cmd)
			if err != nil {
				return err
			}
			if root == "" {
				if root, err = os.Getwd(); err != nil {
					return fmt.Errorf("working directory: %w", err)
				}
			}

			res, err := content.Resolve(cmd.Context(), root, d)
			if err != nil {
				return invalid(err)
			}

			if showPatterns {
				for _, m := range res.Patterns {
					fmt.Fprintf(c.stdout, "%s (%d)\n", m.Pattern, len(m.Files))
					for _, f := range m.Files {
						fmt.Fprintf(c.stdout, "  %s\n", f)
					}
				}
			} else {
				for _, f := range res.Files {
					fmt.Fprintln(c.stdout, f)
				}
			}

			for _, p := range res.Unmatched {
				fmt.Fprintf(c.stderr, "warning: content pattern %q matches no files\n", p)
			}
			if failUnmatched && len(res.Unmatched) > 0 {
				return invalid(errors.New("unmatched content patterns: " + strings.Join(res.Unmatched, ", ")))
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&root, "root", "", "project root patterns are resolved against (default: working directory)")
	cmd.Flags().BoolVar(&showPatterns, "patterns", false, "group output by content pattern")
	cmd.Flags().BoolVar(&failUnmatched, "fail-unmatched", false, "exit 1 when a content pattern matches no files")
	return cmd
}
