// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package main

import (
	"errors"
	"fmt"
	"io"

	"github.com/ManuGH/twconfig/internal/config"
	"github.com/spf13/cobra"
)

func newDiffCmd(c *cli) *cobra.Command {
	var exitCode bool

	cmd := &cobra.Command{
		Use:   "diff <old> <new>",
		Short: "Compare two descriptors",
		Long: `Loads two descriptors, possibly in different formats, and prints what
changed. Safelist order is ignored; content and plugin order is not.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			old, err := c.load(cmd, args[0])
			if err != nil {
				return err
			}
			next, err := c.load(cmd, args[1])
			if err != nil {
				return err
			}

			changes := config.Diff(old, next)
			if changes.Empty() {
				fmt.Fprintln(c.stdout, "descriptors are equal")
				return nil
			}
			printChanges(c.stdout, changes)
			if exitCode {
				return invalid(errors.New("descriptors differ"))
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&exitCode, "exit-code", false, "exit 1 when the descriptors differ")
	return cmd
}

func printChanges(w io.Writer, s config.ChangeSummary) {
	fmt.Fprintf(w, "changed: %v\n", s.ChangedFields)
	for _, p := range s.ContentAdded {
		fmt.Fprintf(w, "+ content %s\n", p)
	}
	for _, p := range s.ContentRemoved {
		fmt.Fprintf(w, "- content %s\n", p)
	}
	for _, cls := range s.SafelistAdded {
		fmt.Fprintf(w, "+ safelist %s\n", cls)
	}
	for _, cls := range s.SafelistRemoved {
		fmt.Fprintf(w, "- safelist %s\n", cls)
	}
}
