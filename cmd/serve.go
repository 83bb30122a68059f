package main

import (
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/angelo-odois/postangelo-sub000/internal/app"
)

func newServeCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API and public page server",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, log, err := opts.load()
			if err != nil {
				return err
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			a, err := app.New(ctx, cfg, log)
			if err != nil {
				log.Error("Startup failed", "error", err)
				log.Sync()
				return err
			}
			defer a.Close()
			return a.Run(ctx)
		},
	}
}
