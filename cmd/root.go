package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/angelo-odois/postangelo-sub000/internal/app"
	"github.com/angelo-odois/postangelo-sub000/internal/platform/logger"
)

type rootOptions struct {
	configFile string
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}
	cmd := &cobra.Command{
		Use:   "postangelo",
		Short: "Block page engine: editor API, public page renderer and template tooling",
		Long: `postangelo serves block-structured pages.

Configuration comes from the environment (PORT, DB_DRIVER, DATABASE_URL, REDIS_ADDR,
JWT_SECRET_KEY, ...) and optionally from a YAML file passed with --config. Environment
variables win over the file.

Examples:
  postangelo serve
  postangelo migrate
  postangelo validate page.json
  postangelo render --mode draft page.json > page.html
  postangelo templates seed --dir ./templates --watch`,
		SilenceUsage: true,
	}
	cmd.PersistentFlags().StringVar(&opts.configFile, "config", "", "config file (yaml, json or toml)")

	cmd.AddCommand(
		newServeCmd(opts),
		newMigrateCmd(opts),
		newValidateCmd(),
		newRenderCmd(),
		newTemplatesCmd(opts),
	)
	return cmd
}

// load reads configuration and builds the process logger.
func (o *rootOptions) load() (app.Config, *logger.Logger, error) {
	v, err := app.NewViper(o.configFile)
	if err != nil {
		return app.Config{}, nil, err
	}
	log, err := logger.NewWithOptions(logger.Options{
		Mode:  v.GetString("LOG_MODE"),
		Level: v.GetString("LOG_LEVEL"),
	})
	if err != nil {
		return app.Config{}, nil, fmt.Errorf("init logger: %w", err)
	}
	cfg, err := app.LoadConfig(v, log)
	if err != nil {
		log.Sync()
		return app.Config{}, nil, fmt.Errorf("load config: %w", err)
	}
	return cfg, log, nil
}
