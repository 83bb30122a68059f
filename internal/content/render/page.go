package render

import (
	"context"
	"io"

	"github.com/a-h/templ"

	"github.com/angelo-odois/postangelo-sub000/internal/content"
)

// PageView is everything the page shell needs besides the environment.
type PageView struct {
	Title       string
	Description string
	Lang        string
	Document    content.Document
}

const brandingURL = "https://postangelo.com"

// Page wraps the rendered document in a complete HTML document. The footer credit is omitted for
// owners with the hide_branding feature.
func (r *Renderer) Page(env Env, v PageView) templ.Component {
	lang := v.Lang
	if lang == "" {
		lang = "pt-BR"
	}
	head := []templ.Component{
		el("meta", Attrs{attr("charset", "utf-8")}),
		el("meta", Attrs{attr("name", "viewport"), attr("content", "width=device-width, initial-scale=1")}),
		el("title", nil, text(v.Title)),
		when(v.Description != "", el("meta", Attrs{attr("name", "description"), attr("content", v.Description)})),
		when(env.Mode == ModeDraft, el("meta", Attrs{attr("name", "robots"), attr("content", "noindex")})),
		el("link", Attrs{attr("rel", "stylesheet"), attr("href", "/static/blocks.css")}),
	}
	var footer templ.Component
	if !env.Features.HideBranding {
		footer = el("footer", Attrs{class("page-branding")},
			el("a", Attrs{attr("href", brandingURL), attr("target", "_blank"), attr("rel", "noopener noreferrer")},
				text("Made with Postangelo"),
			),
		)
	}
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		if _, err := io.WriteString(w, "<!DOCTYPE html>"); err != nil {
			return err
		}
		return el("html", Attrs{attr("lang", lang)},
			el("head", nil, head...),
			el("body", Attrs{class("page", "mode-"+string(env.Mode))},
				el("main", Attrs{class("page-content")}, r.Document(env, v.Document)),
				footer,
			),
		).Render(ctx, w)
	})
}
