package render

import (
	"context"
	"io"
	"strings"

	"github.com/a-h/templ"
)

// Attr is one HTML attribute. Values are escaped on write; URL-valued attributes must already be
// passed through safeURL.
type Attr struct {
	Name  string
	Value string
}

type Attrs []Attr

func class(names ...string) Attr {
	parts := make([]string, 0, len(names))
	for _, n := range names {
		if n = strings.TrimSpace(n); n != "" {
			parts = append(parts, n)
		}
	}
	return Attr{Name: "class", Value: strings.Join(parts, " ")}
}

func attr(name, value string) Attr { return Attr{Name: name, Value: value} }

// safeURL runs a user-supplied URL through templ's sanitizer, which neutralizes javascript: and
// similar schemes.
func safeURL(raw string) string {
	return string(templ.URL(strings.TrimSpace(raw)))
}

var voidElements = map[string]bool{"img": true, "br": true, "hr": true, "input": true, "meta": true, "link": true, "source": true}

// el renders <tag attrs>children</tag>.
func el(tag string, attrs Attrs, children ...templ.Component) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		var b strings.Builder
		b.WriteByte('<')
		b.WriteString(tag)
		for _, a := range attrs {
			if a.Name == "" {
				continue
			}
			b.WriteByte(' ')
			b.WriteString(a.Name)
			b.WriteString(`="`)
			b.WriteString(templ.EscapeString(a.Value))
			b.WriteByte('"')
		}
		b.WriteByte('>')
		if _, err := io.WriteString(w, b.String()); err != nil {
			return err
		}
		if voidElements[tag] {
			return nil
		}
		for _, c := range children {
			if c == nil {
				continue
			}
			if err := c.Render(ctx, w); err != nil {
				return err
			}
		}
		_, err := io.WriteString(w, "</"+tag+">")
		return err
	})
}

func text(s string) templ.Component {
	return templ.ComponentFunc(func(_ context.Context, w io.Writer) error {
		_, err := io.WriteString(w, templ.EscapeString(s))
		return err
	})
}

func fragment(children ...templ.Component) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		for _, c := range children {
			if c == nil {
				continue
			}
			if err := c.Render(ctx, w); err != nil {
				return err
			}
		}
		return nil
	})
}

// when returns c if cond holds, otherwise nothing.
func when(cond bool, c templ.Component) templ.Component {
	if !cond {
		return nil
	}
	return c
}
