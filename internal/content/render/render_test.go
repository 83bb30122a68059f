package render_test

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/a-h/templ"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/net/html"

	"github.com/angelo-odois/postangelo-sub000/internal/content"
	"github.com/angelo-odois/postangelo-sub000/internal/content/catalog"
	"github.com/angelo-odois/postangelo-sub000/internal/content/render"
)

func mustValidate(t *testing.T, src string) content.Document {
	t.Helper()
	doc, err := content.Validate(catalog.Default(), []byte(src))
	require.NoError(t, err)
	return doc
}

func renderDoc(t *testing.T, r *render.Renderer, env render.Env, doc content.Document) string {
	t.Helper()
	out, err := render.ToHTML(context.Background(), r.Document(env, doc))
	require.NoError(t, err)
	return string(out)
}

func parseFragment(t *testing.T, markup string) *html.Node {
	t.Helper()
	root, err := html.Parse(strings.NewReader("<html><body>" + markup + "</body></html>"))
	require.NoError(t, err)
	return root
}

func hasClass(n *html.Node, want string) bool {
	for _, a := range n.Attr {
		if a.Key == "class" {
			for _, c := range strings.Fields(a.Val) {
				if c == want {
					return true
				}
			}
		}
	}
	return false
}

func findAll(n *html.Node, match func(*html.Node) bool) []*html.Node {
	var out []*html.Node
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && match(n) {
			out = append(out, n)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return out
}

func elementChildren(n *html.Node) []*html.Node {
	var out []*html.Node
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.ElementNode {
			out = append(out, c)
		}
	}
	return out
}

func textOf(n *html.Node) string {
	var b strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			b.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return strings.TrimSpace(b.String())
}

const columnsExample = `{"blocks":[{"id":"cols","type":"columns","props":{
	"columns":"2",
	"items":[
		{"title":"Sobre","blocks":[{"id":"t1","type":"text","props":{"text":"Ola"}}]},
		{"title":"Skills"}
	]
}}]}`

func TestColumnsExample(t *testing.T) {
	r := render.New(catalog.Default(), nil)
	out := renderDoc(t, r, render.Env{Mode: render.ModePublic}, mustValidate(t, columnsExample))

	root := parseFragment(t, out)
	grids := findAll(root, func(n *html.Node) bool { return hasClass(n, "block-columns") })
	require.Len(t, grids, 1)
	assert.True(t, hasClass(grids[0], "cols-2"))

	cols := elementChildren(grids[0])
	require.Len(t, cols, 2, "two side-by-side columns")

	left := elementChildren(cols[0])
	require.Len(t, left, 2)
	assert.Equal(t, "h3", left[0].Data)
	assert.Equal(t, "Sobre", textOf(left[0]))
	nested := findAll(left[1], func(n *html.Node) bool { return hasClass(n, "block-text") })
	require.Len(t, nested, 1)
	assert.Equal(t, "Ola", textOf(nested[0]))

	right := elementChildren(cols[1])
	require.Len(t, right, 1, "second column has a heading and no body")
	assert.Equal(t, "h3", right[0].Data)
	assert.Equal(t, "Skills", textOf(right[0]))
}

func TestUnknownBlockRendersPlaceholderAmongSiblings(t *testing.T) {
	doc := mustValidate(t, `{"blocks":[
		{"id":"a","type":"text","props":{"text":"first"}},
		{"id":"b","type":"hologram","props":{"x":1}},
		{"id":"c","type":"text","props":{"text":"last"}}
	]}`)
	r := render.New(catalog.Default(), nil)

	public := renderDoc(t, r, render.Env{Mode: render.ModePublic}, doc)
	root := parseFragment(t, public)
	texts := findAll(root, func(n *html.Node) bool { return hasClass(n, "block-text") })
	require.Len(t, texts, 2)
	assert.Equal(t, "first", textOf(texts[0]))
	assert.Equal(t, "last", textOf(texts[1]))
	holders := findAll(root, func(n *html.Node) bool { return hasClass(n, "block-placeholder") })
	require.Len(t, holders, 1)
	assert.Empty(t, textOf(holders[0]), "public placeholders are neutral")

	draft := renderDoc(t, r, render.Env{Mode: render.ModeDraft}, doc)
	assert.Contains(t, draft, `data-block-type="hologram"`)
	assert.Contains(t, draft, "unknown_type")
}

func TestFailingRendererIsIsolated(t *testing.T) {
	boom := func(n render.Node) templ.Component {
		return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
			_, _ = w.Write([]byte("<p>half"))
			return errors.New("boom")
		})
	}
	panics := func(n render.Node) templ.Component { panic("kaboom") }
	r := render.New(catalog.Default(), nil,
		render.WithRenderer(catalog.Divider, boom),
		render.WithRenderer(catalog.Spacer, panics),
	)
	doc := mustValidate(t, `{"blocks":[
		{"id":"a","type":"divider"},
		{"id":"b","type":"text","props":{"text":"kept"}},
		{"id":"c","type":"spacer"},
		{"id":"d","type":"section","props":{"title":"S","blocks":[{"id":"e","type":"divider"},{"id":"f","type":"text","props":{"text":"inner"}}]}}
	]}`)

	out := renderDoc(t, r, render.Env{Mode: render.ModeDraft}, doc)
	assert.NotContains(t, out, "half", "partial output of a failed block is discarded")
	root := parseFragment(t, out)
	texts := findAll(root, func(n *html.Node) bool { return hasClass(n, "block-text") })
	require.Len(t, texts, 2)
	assert.Equal(t, "kept", textOf(texts[0]))
	assert.Equal(t, "inner", textOf(texts[1]))
	holders := findAll(root, func(n *html.Node) bool { return hasClass(n, "block-placeholder") })
	assert.Len(t, holders, 3)
	sections := findAll(root, func(n *html.Node) bool { return hasClass(n, "block-section") })
	assert.Len(t, sections, 1, "a failing child does not take down its parent")
}

func TestDefaultFillingIsIdempotent(t *testing.T) {
	r := render.New(catalog.Default(), nil)
	env := render.Env{Mode: render.ModePublic}

	missing := mustValidate(t, `{"blocks":[{"id":"h","type":"heading","props":{"text":"Hi"}}]}`)
	explicit := mustValidate(t, `{"blocks":[{"id":"h","type":"heading","props":{"text":"Hi","level":"h2","align":"left"}}]}`)

	first := renderDoc(t, r, env, missing)
	second := renderDoc(t, r, env, missing)
	assert.Equal(t, first, second)
	assert.Equal(t, renderDoc(t, r, env, explicit), first)
	assert.Contains(t, first, "<h2")
}

func TestInvalidSelectValueFallsBackToDefault(t *testing.T) {
	r := render.New(catalog.Default(), nil)
	doc := mustValidate(t, `{"blocks":[{"id":"h","type":"heading","props":{"text":"x","level":"script"}}]}`)
	out := renderDoc(t, r, render.Env{Mode: render.ModePublic}, doc)
	assert.Contains(t, out, "<h2")
	assert.NotContains(t, out, "<script")
}

func TestUnknownPropsAreIgnored(t *testing.T) {
	r := render.New(catalog.Default(), nil)
	env := render.Env{Mode: render.ModePublic}
	with := mustValidate(t, `{"blocks":[{"id":"t","type":"text","props":{"text":"a","future":"x"}}]}`)
	without := mustValidate(t, `{"blocks":[{"id":"t","type":"text","props":{"text":"a"}}]}`)
	assert.Equal(t, renderDoc(t, r, env, without), renderDoc(t, r, env, with))
}

func TestMalformedNestedValueRendersPlaceholder(t *testing.T) {
	doc, err := content.Decode(catalog.Default(), []byte(`{"blocks":[
		{"id":"s","type":"section","props":{"title":"Legacy","blocks":"not-a-list"}},
		{"id":"t","type":"text","props":{"text":"after"}}
	]}`))
	require.NoError(t, err)
	r := render.New(catalog.Default(), nil)
	out := renderDoc(t, r, render.Env{Mode: render.ModeDraft}, doc)
	assert.Contains(t, out, "Legacy")
	assert.Contains(t, out, "block-placeholder")
	assert.Contains(t, out, "after")
}

func TestEscapesText(t *testing.T) {
	r := render.New(catalog.Default(), nil)
	doc := mustValidate(t, `{"blocks":[
		{"id":"t","type":"text","props":{"text":"<script>alert(1)</script>"}},
		{"id":"b","type":"button","props":{"label":"go","url":"javascript:alert(1)"}}
	]}`)
	out := renderDoc(t, r, render.Env{Mode: render.ModePublic}, doc)
	assert.NotContains(t, out, "<script>")
	assert.Contains(t, out, "&lt;script&gt;")
	assert.NotContains(t, out, "javascript:")
}

type fakeSource struct {
	entries map[string][]render.Entry
	err     error
	calls   []string
}

func (f *fakeSource) Entries(_ context.Context, kind string, featuredOnly bool) ([]render.Entry, error) {
	f.calls = append(f.calls, kind)
	if f.err != nil {
		return nil, f.err
	}
	var out []render.Entry
	for _, e := range f.entries[kind] {
		if featuredOnly && !e.Featured {
			continue
		}
		out = append(out, e)
	}
	return out, nil
}

func TestDataBoundBlocks(t *testing.T) {
	src := &fakeSource{entries: map[string][]render.Entry{
		"project": {
			{Title: "Alpha", URL: "https://alpha.dev", Featured: true},
			{Title: "Beta"},
		},
	}}
	r := render.New(catalog.Default(), nil)
	doc := mustValidate(t, `{"blocks":[{"id":"p","type":"projects","props":{"featuredOnly":true}}]}`)
	out := renderDoc(t, r, render.Env{Mode: render.ModePublic, Data: src}, doc)

	assert.Contains(t, out, "Alpha")
	assert.NotContains(t, out, "Beta")
	assert.Equal(t, []string{"project"}, src.calls)
}

func TestDataSourceErrorOnlyAffectsItsBlock(t *testing.T) {
	src := &fakeSource{err: errors.New("db down")}
	r := render.New(catalog.Default(), nil)
	doc := mustValidate(t, `{"blocks":[{"id":"x","type":"experience"},{"id":"t","type":"text","props":{"text":"still here"}}]}`)
	out := renderDoc(t, r, render.Env{Mode: render.ModePublic, Data: src}, doc)
	assert.Contains(t, out, "block-placeholder")
	assert.Contains(t, out, "still here")
}

func TestCanceledContextStopsRendering(t *testing.T) {
	r := render.New(catalog.Default(), nil)
	doc := mustValidate(t, `{"blocks":[{"id":"x","type":"experience"}]}`)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	src := &fakeSource{err: context.Canceled}
	_, err := render.ToHTML(ctx, r.Document(render.Env{Data: src}, doc))
	assert.ErrorIs(t, err, context.Canceled)
}

func TestPageShellBranding(t *testing.T) {
	r := render.New(catalog.Default(), nil)
	view := render.PageView{Title: "Ana <dev>", Document: mustValidate(t, `{"blocks":[]}`)}

	branded, err := render.ToHTML(context.Background(), r.Page(render.Env{Mode: render.ModePublic}, view))
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(branded), "<!DOCTYPE html>"))
	assert.Contains(t, string(branded), "page-branding")
	assert.Contains(t, string(branded), "<title>Ana &lt;dev&gt;</title>")
	assert.NotContains(t, string(branded), "noindex")

	plain, err := render.ToHTML(context.Background(), r.Page(render.Env{Mode: render.ModeDraft, Features: render.Features{HideBranding: true}}, view))
	require.NoError(t, err)
	assert.NotContains(t, string(plain), "page-branding")
	assert.Contains(t, string(plain), "noindex")
}

func TestEmbedVideo(t *testing.T) {
	r := render.New(catalog.Default(), nil)
	doc := mustValidate(t, `{"blocks":[
		{"id":"v1","type":"video","props":{"url":"https://www.youtube.com/watch?v=abc123"}},
		{"id":"v2","type":"video","props":{"url":"https://vimeo.com/42"}}
	]}`)
	out := renderDoc(t, r, render.Env{Mode: render.ModePublic}, doc)
	assert.Contains(t, out, "https://www.youtube.com/embed/abc123")
	assert.Contains(t, out, "https://player.vimeo.com/video/42")
}
