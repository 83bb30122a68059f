package render

import (
	"github.com/a-h/templ"

	"github.com/angelo-odois/postangelo-sub000/internal/content"
)

// Node is what a RenderFunc receives: the stored block, its schema and its resolved props.
type Node struct {
	Block content.Block
	Type  content.BlockType
	Env   Env
	Depth int
	Props Props
}

// Props resolves values against a schema: a stored value of the declared kind wins, anything
// else yields the field default. Undeclared keys are invisible.
type Props struct {
	schema content.Schema
	values map[string]content.Value
	r      *Renderer
	env    Env
	depth  int
}

func (p Props) resolve(name string) (content.Value, content.FieldSpec, bool) {
	f, ok := p.schema.Field(name)
	if !ok {
		return content.Null(), content.FieldSpec{}, false
	}
	return f.Resolve(p.values), f, true
}

func (p Props) String(name string) string {
	v, _, _ := p.resolve(name)
	s, _ := v.Str()
	return s
}

func (p Props) Bool(name string) bool {
	v, _, _ := p.resolve(name)
	b, _ := v.AsBool()
	return b
}

// Items returns the resolved items of a repeater field, each resolved against the item schema.
func (p Props) Items(name string) []Props {
	v, f, ok := p.resolve(name)
	if !ok || f.Kind != content.FieldRepeater {
		return nil
	}
	items, _ := v.Items()
	out := make([]Props, len(items))
	for i, it := range items {
		out[i] = Props{schema: f.ItemSchema, values: it, r: p.r, env: p.env, depth: p.depth}
	}
	return out
}

// HasBlocks reports whether a blocks field holds at least one block, or holds something the
// renderer will replace with a placeholder.
func (p Props) HasBlocks(name string) bool {
	f, ok := p.schema.Field(name)
	if !ok || f.Kind != content.FieldBlocks {
		return false
	}
	stored, present := p.values[name]
	if present && stored.Kind() == content.KindRaw {
		return true
	}
	blocks, _ := f.Resolve(p.values).BlockList()
	return len(blocks) > 0
}

// Blocks renders the nested blocks of a blocks field, one level deeper than the owner. A stored
// value that is not a block list renders as a single placeholder.
func (p Props) Blocks(name string) templ.Component {
	f, ok := p.schema.Field(name)
	if !ok || f.Kind != content.FieldBlocks || p.r == nil {
		return nil
	}
	if stored, present := p.values[name]; present && stored.Kind() == content.KindRaw {
		p.r.metrics.IncPlaceholder("malformed")
		return placeholder(p.env.Mode, "", name, "malformed")
	}
	blocks, _ := f.Resolve(p.values).BlockList()
	return p.r.blockList(p.env, blocks, p.depth+1)
}
