// Package render turns content documents into HTML. Each block type has a renderer registered
// under its tag; a block whose type is unknown, or whose renderer fails, is replaced by a
// placeholder while its siblings still render.
package render

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/a-h/templ"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/angelo-odois/postangelo-sub000/internal/content"
	"github.com/angelo-odois/postangelo-sub000/internal/observability"
	"github.com/angelo-odois/postangelo-sub000/internal/platform/logger"
)

type Mode string

const (
	// ModeDraft is the authoring preview. Placeholders name the failing block.
	ModeDraft Mode = "draft"
	// ModePublic is the served page. Placeholders are empty.
	ModePublic Mode = "public"
)

// Features are the plan flags the renderer consults.
type Features struct {
	HideBranding     bool `json:"hide_branding"`
	PremiumTemplates bool `json:"premium_templates"`
}

// Entry is one portfolio item shown by the data-bound blocks.
type Entry struct {
	Title       string
	Subtitle    string
	Description string
	URL         string
	Period      string
	Featured    bool
}

// DataSource feeds the data-bound blocks (experience, education, projects, skills).
type DataSource interface {
	Entries(ctx context.Context, kind string, featuredOnly bool) ([]Entry, error)
}

// Env is the per-request rendering environment.
type Env struct {
	Mode     Mode
	Features Features
	Data     DataSource
}

// RenderFunc builds the markup of one block from its resolved props.
type RenderFunc func(n Node) templ.Component

var (
	ErrUnknownType = errors.New("render: unknown block type")
	ErrTooDeep     = errors.New("render: nesting too deep")
)

type Renderer struct {
	reg     *content.Registry
	funcs   map[string]RenderFunc
	log     *logger.Logger
	metrics *observability.Metrics
	tracer  trace.Tracer
}

type Option func(*Renderer)

func WithMetrics(m *observability.Metrics) Option {
	return func(r *Renderer) { r.metrics = m }
}

// WithRenderer registers or replaces the renderer for a tag.
func WithRenderer(blockType string, fn RenderFunc) Option {
	return func(r *Renderer) { r.funcs[blockType] = fn }
}

// New builds a renderer with the built-in block renderers. A type needs both a registry entry
// and a renderer to render; anything else becomes a placeholder.
func New(reg *content.Registry, log *logger.Logger, opts ...Option) *Renderer {
	if log == nil {
		log = logger.Nop()
	}
	r := &Renderer{
		reg:    reg,
		funcs:  Builtins(),
		log:    log.With("component", "Renderer"),
		tracer: otel.Tracer("postangelo/render"),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

func (r *Renderer) Registry() *content.Registry { return r.reg }

// Block renders one top-level block.
func (r *Renderer) Block(env Env, b content.Block) templ.Component {
	return r.block(env, b, 1)
}

// Document renders every block of the document in order.
func (r *Renderer) Document(env Env, doc content.Document) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		ctx, span := r.tracer.Start(ctx, "render.document", trace.WithAttributes(
			attribute.Int("blocks", len(doc.Blocks)),
			attribute.String("mode", string(env.Mode)),
		))
		defer span.End()
		start := time.Now()
		err := r.blockList(env, doc.Blocks, 1).Render(ctx, w)
		status := "ok"
		if err != nil {
			status = "error"
			span.RecordError(err)
		}
		r.metrics.ObserveRender(string(env.Mode), status, time.Since(start))
		return err
	})
}

func (r *Renderer) blockList(env Env, blocks []content.Block, depth int) templ.Component {
	children := make([]templ.Component, len(blocks))
	for i, b := range blocks {
		children[i] = r.block(env, b, depth)
	}
	return fragment(children...)
}

// block renders into a private buffer so that a failing subtree never leaves half-written markup
// behind; on failure the buffer is discarded and a placeholder takes its place.
func (r *Renderer) block(env Env, b content.Block, depth int) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		var buf bytes.Buffer
		err := r.renderIsolated(ctx, env, b, depth, &buf)
		if err == nil {
			_, err = buf.WriteTo(w)
			return err
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		reason := "error"
		switch {
		case errors.Is(err, ErrUnknownType):
			reason = "unknown_type"
		case errors.Is(err, ErrTooDeep):
			reason = "too_deep"
		default:
			r.log.Warn("block render failed", "block_id", b.ID, "block_type", b.Type, "error", err)
		}
		r.metrics.IncPlaceholder(reason)
		return placeholder(env.Mode, b.ID, b.Type, reason).Render(ctx, w)
	})
}

func (r *Renderer) renderIsolated(ctx context.Context, env Env, b content.Block, depth int, w io.Writer) (err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("render: panic in %s block: %v", b.Type, rec)
		}
	}()
	if depth > content.MaxDepth {
		return ErrTooDeep
	}
	bt, ok := r.reg.Get(b.Type)
	if !ok {
		return fmt.Errorf("%w %q", ErrUnknownType, b.Type)
	}
	fn, ok := r.funcs[b.Type]
	if !ok {
		return fmt.Errorf("%w %q", ErrUnknownType, b.Type)
	}
	n := Node{
		Block: b,
		Type:  bt,
		Env:   env,
		Depth: depth,
		Props: Props{schema: bt.Fields, values: b.Props, r: r, env: env, depth: depth},
	}
	return fn(n).Render(ctx, w)
}

// Placeholder stands in for a block that could not render. Drafts show the type so the author can
// fix it; public pages get an empty, hidden element.
func placeholder(mode Mode, id, blockType, reason string) templ.Component {
	if mode != ModeDraft {
		return el("div", Attrs{class("block-placeholder"), attr("aria-hidden", "true")})
	}
	label := blockType
	if label == "" {
		label = "untyped"
	}
	return el("div", Attrs{
		class("block-placeholder", "block-placeholder-draft"),
		attr("data-block-id", id),
		attr("data-block-type", blockType),
		attr("data-reason", reason),
	}, text(fmt.Sprintf("Block %q could not be displayed (%s)", label, reason)))
}

// ToHTML renders a component into a byte slice.
func ToHTML(ctx context.Context, c templ.Component) ([]byte, error) {
	var buf bytes.Buffer
	if err := c.Render(ctx, &buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
