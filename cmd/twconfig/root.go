// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/ManuGH/twconfig/internal/config"
	xglog "github.com/ManuGH/twconfig/internal/log"
	"github.com/ManuGH/twconfig/internal/validate"
	"github.com/ManuGH/twconfig/internal/version"
	"github.com/spf13/cobra"
)

const (
	exitOK      = 0
	exitInvalid = 1
	exitUsage   = 2
)

var logLevels = []string{"trace", "debug", "info", "warn", "error"}

// exitError carries the process exit code for a failed command.
type exitError struct {
	code int
	err  error
}

func (e *exitError) Error() string { return e.err.Error() }
func (e *exitError) Unwrap() error { return e.err }

func invalid(err error) error { return &exitError{code: exitInvalid, err: err} }
func usage(err error) error   { return &exitError{code: exitUsage, err: err} }

// cli holds global flags and the output streams shared by all commands.
type cli struct {
	stdout io.Writer
	stderr io.Writer

	file        string
	logLevel    string
	strict      bool
	evalTimeout time.Duration
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	root := newRootCmd(stdout, stderr)
	root.SetArgs(args)

	err := root.ExecuteContext(ctx)
	if err == nil {
		return exitOK
	}
	fmt.Fprintf(stderr, "Error: %v\n", err)

	var ee *exitError
	if errors.As(err, &ee) {
		return ee.code
	}
	// Errors cobra produced itself: unknown command, bad flag, arg count.
	return exitUsage
}

func newRootCmd(stdout, stderr io.Writer) *cobra.Command {
	c := &cli{stdout: stdout, stderr: stderr}

	root := &cobra.Command{
		Use:   "twconfig",
		Short: "Inspect and maintain Tailwind-style configuration descriptors",
		Long: `twconfig loads tailwind.config.{js,cjs,mjs,yaml,yml,json} descriptors,
validates them and converts between formats.

Without --file the descriptor is taken from $TWCONFIG_FILE, else the first
default file name found in the working directory.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		Version:       version.Version,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if c.logLevel != "" {
				v := validate.New()
				v.OneOf("log-level", c.logLevel, logLevels)
				if err := v.Err(); err != nil {
					return usage(err)
				}
			}
			xglog.Configure(xglog.Config{
				Level:   c.logLevel,
				Output:  stderr,
				Version: version.Version,
			})
			return nil
		},
	}
	root.SetOut(stdout)
	root.SetErr(stderr)
	root.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return usage(err)
	})

	pf := root.PersistentFlags()
	pf.StringVarP(&c.file, "file", "f", "", "path to the descriptor (default: $TWCONFIG_FILE or tailwind.config.* in the working directory)")
	pf.StringVar(&c.logLevel, "log-level", "", "log level: debug, info, warn, error (default: $TWCONFIG_LOG_LEVEL or info)")
	pf.BoolVar(&c.strict, "strict", false, "reject unknown top-level keys in every format")
	pf.DurationVar(&c.evalTimeout, "eval-timeout", 0, "bound for JavaScript evaluation (default: $TWCONFIG_EVAL_TIMEOUT or 2s)")

	root.AddCommand(
		newValidateCmd(c),
		newDumpCmd(c),
		newFilesCmd(c),
		newDiffCmd(c),
		newInitCmd(c),
		newWatchCmd(c),
		newVersionCmd(c),
	)
	return root
}

// loaderOptions merges environment defaults with flags; flags win.
func (c *cli) loaderOptions(cmd *cobra.Command) []config.Option {
	opts := config.EnvOptions()
	if cmd.Flags().Changed("strict") {
		opts = append(opts, config.WithStrict(c.strict))
	}
	if c.evalTimeout > 0 {
		opts = append(opts, config.WithEvalTimeout(c.evalTimeout))
	}
	return opts
}

// descriptorPath resolves --file, $TWCONFIG_FILE or a default file name.
func (c *cli) descriptorPath() (string, error) {
	wd, err := os.Getwd()
	if err != nil {
		return "", fmt.Errorf("working directory: %w", err)
	}
	p, err := config.ResolvePath(c.file, wd)
	if err != nil {
		return "", usage(err)
	}
	return p, nil
}

// load resolves the descriptor path and loads it. Warnings go to stderr.
func (c *cli) load(cmd *cobra.Command, path string) (config.Descriptor, error) {
	loader := config.NewLoader(path, c.loaderOptions(cmd)...)
	d, err := loader.Load(cmd.Context())
	if err != nil {
		if errors.Is(err, config.ErrUnsupportedFormat) {
			return config.Descriptor{}, usage(err)
		}
		return config.Descriptor{}, invalid(fmt.Errorf("configuration error in %s: %w", path, err))
	}
	for _, w := range loader.Warnings() {
		fmt.Fprintf(c.stderr, "warning: %s\n", w.String())
	}
	return d, nil
}

func (c *cli) loadDefault(cmd *cobra.Command) (config.Descriptor, error) {
	path, err := c.descriptorPath()
	if err != nil {
		return config.Descriptor{}, err
	}
	return c.load(cmd, path)
}

func parseFormatFlag(raw string) (config.Format, error) {
	f, err := config.ParseFormat(raw)
	if err != nil {
		return "", usage(err)
	}
	return f, nil
}
