package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/angelo-odois/postangelo-sub000/internal/content"
	"github.com/angelo-odois/postangelo-sub000/internal/content/catalog"
	"github.com/angelo-odois/postangelo-sub000/internal/content/render"
	"github.com/angelo-odois/postangelo-sub000/internal/platform/logger"
)

func newRenderCmd() *cobra.Command {
	var (
		mode     string
		title    string
		out      string
		fragment bool
	)
	cmd := &cobra.Command{
		Use:   "render <file>",
		Short: "Render a content document to HTML",
		Long: `Render decodes a stored document the way the public page server does: blocks that
cannot be rendered become placeholders instead of failing the page. Data-bound blocks render
without entries.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			m := render.Mode(mode)
			if m != render.ModeDraft && m != render.ModePublic {
				return fmt.Errorf("unknown mode %q", mode)
			}
			raw, err := readInput(cmd, args[0])
			if err != nil {
				return err
			}
			r := render.New(catalog.Default(), logger.Nop())
			doc, err := content.Decode(r.Registry(), raw)
			if err != nil {
				return err
			}
			env := render.Env{Mode: m}
			c := r.Page(env, render.PageView{Title: title, Document: doc})
			if fragment {
				c = r.Document(env, doc)
			}
			html, err := render.ToHTML(cmd.Context(), c)
			if err != nil {
				return err
			}
			if out == "" {
				_, err = cmd.OutOrStdout().Write(html)
				return err
			}
			return os.WriteFile(out, html, 0o644)
		},
	}
	cmd.Flags().StringVar(&mode, "mode", string(render.ModePublic), "render mode (draft, public)")
	cmd.Flags().StringVar(&title, "title", "Preview", "page title")
	cmd.Flags().StringVarP(&out, "out", "o", "", "write to a file instead of stdout")
	cmd.Flags().BoolVar(&fragment, "fragment", false, "render only the document, without the page shell")
	return cmd
}
