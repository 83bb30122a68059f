package main

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/angelo-odois/postangelo-sub000/internal/app"
	"github.com/angelo-odois/postangelo-sub000/internal/content/catalog"
	"github.com/angelo-odois/postangelo-sub000/internal/data/seed"
)

func newTemplatesCmd(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "templates",
		Short: "Manage the page template catalog",
	}
	cmd.AddCommand(newTemplatesSeedCmd(opts), newTemplatesCheckCmd())
	return cmd
}

func newTemplatesSeedCmd(opts *rootOptions) *cobra.Command {
	var (
		dir   string
		watch bool
	)
	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Upsert YAML templates into the catalog by slug",
		Long: `Seed validates every template in --dir and upserts them in one transaction. Nothing
is written when any template is invalid. With --watch it keeps running and reseeds whenever a
file changes.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if dir == "" {
				return errors.New("--dir is required")
			}
			cfg, log, err := opts.load()
			if err != nil {
				return err
			}
			// the catalog is seeded here, not on boot
			cfg.TemplatesSeedDir = ""
			a, err := app.New(cmd.Context(), cfg, log)
			if err != nil {
				return err
			}
			defer a.Close()

			ctx := cmd.Context()
			if err := a.SeedTemplates(ctx, dir); err != nil {
				if !watch {
					return err
				}
				log.Warn("Initial seed failed", "error", err)
			}
			if !watch {
				return nil
			}
			return seed.Watch(ctx, log, dir, 300*time.Millisecond, func(ctx context.Context) error {
				return a.SeedTemplates(ctx, dir)
			})
		},
	}
	cmd.Flags().StringVar(&dir, "dir", "", "directory of template YAML files")
	cmd.Flags().BoolVar(&watch, "watch", false, "reseed when files change")
	return cmd
}

// newTemplatesCheckCmd validates seed files without a database.
func newTemplatesCheckCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "check <dir>",
		Short: "Validate YAML templates without writing them",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			rows, err := seed.LoadDir(args[0])
			if err != nil {
				return err
			}
			var results []validationResult
			for _, t := range rows {
				results = append(results, validateDocument(catalog.Default(), t.Slug, t.ContentJSON))
			}
			if err := printResults(cmd.OutOrStdout(), "text", results); err != nil {
				return err
			}
			for _, r := range results {
				if !r.Valid {
					return fmt.Errorf("template %s: %w", r.File, errInvalidDocuments)
				}
			}
			return nil
		},
	}
}
