package render

import (
	"bytes"
	"io"
	"strings"

	"github.com/a-h/templ"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// richtext output keeps only these elements; everything else is unwrapped to its text.
var allowedTags = map[atom.Atom]bool{
	atom.P: true, atom.Br: true, atom.Strong: true, atom.B: true, atom.Em: true, atom.I: true,
	atom.U: true, atom.S: true, atom.Ul: true, atom.Ol: true, atom.Li: true, atom.A: true,
	atom.H2: true, atom.H3: true, atom.H4: true, atom.Blockquote: true, atom.Code: true,
	atom.Pre: true, atom.Span: true,
}

// content of these is dropped entirely
var droppedTags = map[atom.Atom]bool{
	atom.Script: true, atom.Style: true, atom.Iframe: true, atom.Object: true, atom.Embed: true,
	atom.Template: true, atom.Noscript: true, atom.Svg: true, atom.Math: true,
}

// SanitizeHTML reduces authored rich text to a small formatting subset. Links keep only a
// sanitized href and always open with rel="noopener noreferrer".
func SanitizeHTML(src string) string {
	if strings.TrimSpace(src) == "" {
		return ""
	}
	var out bytes.Buffer
	z := html.NewTokenizer(strings.NewReader(src))
	skip := 0
	var open []atom.Atom
	for {
		tt := z.Next()
		if tt == html.ErrorToken {
			if z.Err() != io.EOF {
				return ""
			}
			break
		}
		tok := z.Token()
		switch tt {
		case html.TextToken:
			if skip == 0 {
				out.WriteString(html.EscapeString(tok.Data))
			}
		case html.StartTagToken, html.SelfClosingTagToken:
			if droppedTags[tok.DataAtom] {
				if tt == html.StartTagToken {
					skip++
				}
				continue
			}
			if skip > 0 || !allowedTags[tok.DataAtom] {
				continue
			}
			writeStartTag(&out, tok)
			if tok.DataAtom != atom.Br && tt == html.StartTagToken {
				open = append(open, tok.DataAtom)
			}
		case html.EndTagToken:
			if droppedTags[tok.DataAtom] {
				if skip > 0 {
					skip--
				}
				continue
			}
			if skip > 0 || !allowedTags[tok.DataAtom] {
				continue
			}
			// close only what was opened, innermost first
			for i := len(open) - 1; i >= 0; i-- {
				if open[i] != tok.DataAtom {
					continue
				}
				for j := len(open) - 1; j >= i; j-- {
					out.WriteString("</" + open[j].String() + ">")
				}
				open = open[:i]
				break
			}
		}
	}
	for i := len(open) - 1; i >= 0; i-- {
		out.WriteString("</" + open[i].String() + ">")
	}
	return out.String()
}

func writeStartTag(out *bytes.Buffer, tok html.Token) {
	out.WriteString("<" + tok.DataAtom.String())
	if tok.DataAtom == atom.A {
		for _, a := range tok.Attr {
			if strings.EqualFold(a.Key, "href") {
				out.WriteString(` href="` + templ.EscapeString(safeURL(a.Val)) + `"`)
				break
			}
		}
		out.WriteString(` rel="noopener noreferrer"`)
	}
	out.WriteString(">")
}

// richText renders sanitized authored HTML.
func richText(src string) templ.Component {
	return templ.Raw(SanitizeHTML(src))
}
