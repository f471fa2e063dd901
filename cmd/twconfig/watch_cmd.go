// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package main

import (
	"fmt"

	"github.com/ManuGH/twconfig/internal/config"
	"github.com/ManuGH/twconfig/internal/server"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

func newWatchCmd(c *cli) *cobra.Command {
	var (
		listen    string
		rateLimit int
	)

	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Reload the descriptor whenever it changes",
		Long: `Watches the descriptor and reloads it on change. A reload that fails keeps
the previous descriptor. With --listen the current descriptor is served on
GET /descriptor, next to /healthz and /metrics.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			cfg := server.DefaultConfig()
			cfg.ListenAddr = listen
			cfg.RateLimit = rateLimit
			if listen != "" {
				if err := cfg.Validate(); err != nil {
					return usage(err)
				}
			}

			path, err := c.descriptorPath()
			if err != nil {
				return err
			}

			loader := config.NewLoader(path, c.loaderOptions(cmd)...)
			initial, err := loader.Load(ctx)
			if err != nil {
				return invalid(fmt.Errorf("configuration error in %s: %w", path, err))
			}

			holder := config.NewHolder(initial, loader)
			updates := make(chan config.Descriptor, 1)
			holder.RegisterListener(updates)
			if err := holder.StartWatcher(ctx); err != nil {
				return invalid(err)
			}
			defer holder.Stop()

			fmt.Fprintf(c.stdout, "watching %s\n", path)

			g, gctx := errgroup.WithContext(ctx)
			g.Go(func() error {
				for {
					select {
					case <-gctx.Done():
						return nil
					case d := <-updates:
						fmt.Fprintf(c.stdout, "reloaded %s: %d content patterns, %d safelist entries, %d plugins\n",
							path, len(d.Content), len(d.Safelist), len(d.Plugins))
					}
				}
			})
			if listen != "" {
				g.Go(func() error {
					return server.ListenAndServe(gctx, cfg, server.NewRouter(holder, cfg))
				})
			}
			if err := g.Wait(); err != nil {
				return invalid(err)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&listen, "listen", "", "serve the descriptor over HTTP on this address (e.g. 127.0.0.1:8787)")
	cmd.Flags().IntVar(&rateLimit, "rate-limit", server.DefaultConfig().RateLimit, "requests per minute and client IP on /descriptor (0 disables)")
	return cmd
}
