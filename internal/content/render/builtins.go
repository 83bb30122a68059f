package render

import (
	"context"
	"io"
	"net/url"
	"strings"

	"github.com/a-h/templ"

	"github.com/angelo-odois/postangelo-sub000/internal/content/catalog"
)

// Builtins returns the renderers for the built-in catalog.
func Builtins() map[string]RenderFunc {
	return map[string]RenderFunc{
		catalog.Hero:       renderHero,
		catalog.Heading:    renderHeading,
		catalog.Text:       renderText,
		catalog.RichText:   renderRichText,
		catalog.Image:      renderImage,
		catalog.Button:     renderButton,
		catalog.Links:      renderLinks,
		catalog.Social:     renderSocial,
		catalog.Columns:    renderColumns,
		catalog.Section:    renderSection,
		catalog.Divider:    renderDivider,
		catalog.Spacer:     renderSpacer,
		catalog.Video:      renderVideo,
		catalog.Contact:    renderContact,
		catalog.Experience: entryList("experience"),
		catalog.Education:  entryList("education"),
		catalog.Projects:   entryList("project"),
		catalog.Skills:     entryList("skill"),
	}
}

func blockAttrs(n Node, extra ...string) Attrs {
	return Attrs{
		class(append([]string{"block", "block-" + n.Block.Type}, extra...)...),
		attr("data-block-id", n.Block.ID),
	}
}

func alignClass(p Props) string {
	if a := p.String("align"); a != "" {
		return "align-" + a
	}
	return ""
}

func renderHero(n Node) templ.Component {
	p := n.Props
	avatar := p.String("avatar")
	subtitle := p.String("subtitle")
	return el("header", blockAttrs(n, alignClass(p)),
		when(avatar != "", el("img", Attrs{class("hero-avatar"), attr("src", safeURL(avatar)), attr("alt", p.String("title"))})),
		el("h1", Attrs{class("hero-title")}, text(p.String("title"))),
		when(subtitle != "", el("p", Attrs{class("hero-subtitle")}, text(subtitle))),
	)
}

func renderHeading(n Node) templ.Component {
	level := n.Props.String("level")
	return el(level, blockAttrs(n, alignClass(n.Props)), text(n.Props.String("text")))
}

func renderText(n Node) templ.Component {
	return el("p", blockAttrs(n, alignClass(n.Props)), text(n.Props.String("text")))
}

func renderRichText(n Node) templ.Component {
	return el("div", blockAttrs(n), richText(n.Props.String("html")))
}

func renderImage(n Node) templ.Component {
	p := n.Props
	src := p.String("src")
	if src == "" {
		return el("figure", blockAttrs(n, "is-empty"))
	}
	imgClass := ""
	if p.Bool("rounded") {
		imgClass = "rounded"
	}
	caption := p.String("caption")
	return el("figure", blockAttrs(n),
		el("img", Attrs{class(imgClass), attr("src", safeURL(src)), attr("alt", p.String("alt")), attr("loading", "lazy")}),
		when(caption != "", el("figcaption", nil, text(caption))),
	)
}

func linkAttrs(href string, newTab bool, classes ...string) Attrs {
	attrs := Attrs{class(classes...), attr("href", safeURL(href))}
	if newTab {
		attrs = append(attrs, attr("target", "_blank"), attr("rel", "noopener noreferrer"))
	}
	return attrs
}

func renderButton(n Node) templ.Component {
	p := n.Props
	return el("div", blockAttrs(n),
		el("a", linkAttrs(p.String("url"), p.Bool("newTab"), "btn", "btn-"+p.String("style")), text(p.String("label"))),
	)
}

func renderLinks(n Node) templ.Component {
	items := n.Props.Items("items")
	links := make([]templ.Component, 0, len(items))
	for _, it := range items {
		label := it.String("label")
		href := it.String("url")
		if label == "" {
			label = href
		}
		if label == "" {
			continue
		}
		icon := it.String("icon")
		links = append(links, el("li", nil,
			el("a", linkAttrs(href, true, "link-item"),
				when(icon != "", el("span", Attrs{class("icon", "icon-"+icon), attr("aria-hidden", "true")})),
				text(label),
			),
		))
	}
	return el("ul", blockAttrs(n), links...)
}

func renderSocial(n Node) templ.Component {
	items := n.Props.Items("items")
	links := make([]templ.Component, 0, len(items))
	for _, it := range items {
		href := it.String("url")
		if href == "" {
			continue
		}
		network := it.String("network")
		links = append(links, el("a", append(linkAttrs(href, true, "social-link", "social-"+network), attr("aria-label", network)),
			el("span", Attrs{class("icon", "icon-"+network), attr("aria-hidden", "true")}),
		))
	}
	return el("nav", blockAttrs(n), links...)
}

// renderColumns lays out each item side by side. An item shows its title, then its rich text,
// then its nested blocks; absent parts render nothing.
func renderColumns(n Node) templ.Component {
	p := n.Props
	count := p.String("columns")
	items := p.Items("items")
	cols := make([]templ.Component, 0, len(items))
	for _, it := range items {
		title := it.String("title")
		body := it.String("content")
		cols = append(cols, el("div", Attrs{class("column")},
			when(title != "", el("h3", Attrs{class("column-title")}, text(title))),
			when(strings.TrimSpace(body) != "", el("div", Attrs{class("column-content")}, richText(body))),
			when(it.HasBlocks("blocks"), el("div", Attrs{class("column-blocks")}, it.Blocks("blocks"))),
		))
	}
	attrs := append(blockAttrs(n, "cols-"+count, "gap-"+p.String("gap")),
		attr("style", "display:grid;grid-template-columns:repeat("+count+",minmax(0,1fr))"))
	return el("div", attrs, cols...)
}

func renderSection(n Node) templ.Component {
	p := n.Props
	title := p.String("title")
	return el("section", blockAttrs(n, "bg-"+p.String("background")),
		when(title != "", el("h2", Attrs{class("section-title")}, text(title))),
		p.Blocks("blocks"),
	)
}

func renderDivider(n Node) templ.Component {
	return el("hr", blockAttrs(n, "divider-"+n.Props.String("style")))
}

func renderSpacer(n Node) templ.Component {
	return el("div", append(blockAttrs(n, "spacer-"+n.Props.String("size")), attr("aria-hidden", "true")))
}

func renderVideo(n Node) templ.Component {
	p := n.Props
	raw := p.String("url")
	title := p.String("title")
	if raw == "" {
		return el("div", blockAttrs(n, "is-empty"))
	}
	if embed, ok := embedURL(raw); ok {
		return el("div", blockAttrs(n),
			el("iframe", Attrs{
				attr("src", safeURL(embed)),
				attr("title", title),
				attr("loading", "lazy"),
				attr("allowfullscreen", "true"),
				attr("frameborder", "0"),
			}),
		)
	}
	return el("div", blockAttrs(n),
		el("video", Attrs{attr("src", safeURL(raw)), attr("controls", "true"), attr("title", title)}),
	)
}

// embedURL maps YouTube and Vimeo page links to their embeddable player URLs.
func embedURL(raw string) (string, bool) {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil {
		return "", false
	}
	host := strings.TrimPrefix(strings.ToLower(u.Host), "www.")
	switch host {
	case "youtube.com", "m.youtube.com":
		if id := u.Query().Get("v"); id != "" {
			return "https://www.youtube.com/embed/" + url.PathEscape(id), true
		}
		if rest, ok := strings.CutPrefix(u.Path, "/embed/"); ok && rest != "" {
			return "https://www.youtube.com/embed/" + url.PathEscape(rest), true
		}
	case "youtu.be":
		if id := strings.Trim(u.Path, "/"); id != "" {
			return "https://www.youtube.com/embed/" + url.PathEscape(id), true
		}
	case "vimeo.com":
		if id := strings.Trim(u.Path, "/"); id != "" && !strings.Contains(id, "/") {
			return "https://player.vimeo.com/video/" + url.PathEscape(id), true
		}
	}
	return "", false
}

func renderContact(n Node) templ.Component {
	p := n.Props
	email := p.String("email")
	phone := p.String("phone")
	var form templ.Component
	if p.Bool("showForm") && email != "" {
		form = el("form", Attrs{class("contact-form"), attr("action", safeURL("mailto:"+email)), attr("method", "post"), attr("enctype", "text/plain")},
			el("input", Attrs{attr("type", "text"), attr("name", "name"), attr("placeholder", "Name"), attr("required", "required")}),
			el("textarea", Attrs{attr("name", "message"), attr("placeholder", "Message"), attr("required", "required")}),
			el("button", Attrs{attr("type", "submit")}, text("Send")),
		)
	}
	return el("section", blockAttrs(n),
		el("h2", nil, text(p.String("title"))),
		when(email != "", el("a", Attrs{class("contact-email"), attr("href", safeURL("mailto:"+email))}, text(email))),
		when(phone != "", el("a", Attrs{class("contact-phone"), attr("href", safeURL("tel:"+phone))}, text(phone))),
		form,
	)
}

// entryList renders one of the data-bound blocks. Entries are fetched when the component renders,
// so a data source error surfaces as this block's placeholder only.
func entryList(kind string) RenderFunc {
	return func(n Node) templ.Component {
		return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
			p := n.Props
			var entries []Entry
			if n.Env.Data != nil {
				var err error
				entries, err = n.Env.Data.Entries(ctx, kind, p.Bool("featuredOnly"))
				if err != nil {
					return err
				}
			}
			rows := make([]templ.Component, 0, len(entries))
			for _, e := range entries {
				rows = append(rows, entryItem(e))
			}
			var list templ.Component
			switch {
			case len(rows) > 0:
				list = el("ul", Attrs{class("entries", "entries-"+p.String("layout"))}, rows...)
			case n.Env.Mode == ModeDraft:
				list = el("p", Attrs{class("entries-empty")}, text("No entries yet"))
			}
			return el("section", blockAttrs(n),
				el("h2", nil, text(p.String("title"))),
				list,
			).Render(ctx, w)
		})
	}
}

func entryItem(e Entry) templ.Component {
	title := text(e.Title)
	if e.URL != "" {
		title = el("a", linkAttrs(e.URL, true), text(e.Title))
	}
	itemClass := "entry"
	if e.Featured {
		itemClass = "entry is-featured"
	}
	return el("li", Attrs{class(itemClass)},
		el("h3", Attrs{class("entry-title")}, title),
		when(e.Subtitle != "", el("p", Attrs{class("entry-subtitle")}, text(e.Subtitle))),
		when(e.Period != "", el("p", Attrs{class("entry-period")}, text(e.Period))),
		when(e.Description != "", el("p", Attrs{class("entry-description")}, text(e.Description))),
	)
}
