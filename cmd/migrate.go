package main

import (
	"github.com/spf13/cobra"

	"github.com/angelo-odois/postangelo-sub000/internal/data/db"
)

func newMigrateCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create or update the database schema and indexes",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, log, err := opts.load()
			if err != nil {
				return err
			}
			defer log.Sync()
			dbs, err := db.NewService(cfg.DB, log)
			if err != nil {
				return err
			}
			defer dbs.Close()
			if err := dbs.AutoMigrateAll(); err != nil {
				return err
			}
			log.Info("Migrations applied", "driver", dbs.Driver())
			return nil
		},
	}
}
