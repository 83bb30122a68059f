package content

import (
	"encoding/json"
	"fmt"
)

// Document is the persisted body of a page or template: an ordered list of blocks and optional
// opaque metadata. Block order is the vertical order of sections on the rendered page.
type Document struct {
	Blocks []Block                    `json:"blocks"`
	Meta   map[string]json.RawMessage `json:"meta,omitempty"`
}

// Empty returns a document with no blocks.
func Empty() Document {
	return Document{Blocks: []Block{}}
}

func (d Document) Clone() Document {
	out := Document{Blocks: make([]Block, len(d.Blocks))}
	for i, b := range d.Blocks {
		out.Blocks[i] = b.Clone()
	}
	if d.Meta != nil {
		out.Meta = make(map[string]json.RawMessage, len(d.Meta))
		for k, v := range d.Meta {
			out.Meta[k] = append(json.RawMessage(nil), v...)
		}
	}
	return out
}

func (d Document) MarshalJSON() ([]byte, error) {
	blocks := d.Blocks
	if blocks == nil {
		blocks = []Block{}
	}
	return json.Marshal(struct {
		Blocks []Block                    `json:"blocks"`
		Meta   map[string]json.RawMessage `json:"meta,omitempty"`
	}{blocks, d.Meta})
}

// UnmarshalJSON decodes without a schema. Use Validate or Decode to get nested block lists
// recognized and structural rules enforced.
func (d *Document) UnmarshalJSON(data []byte) error {
	var x any
	if err := decodeJSON(data, &x); err != nil {
		return err
	}
	doc, err := documentFromAny(x)
	if err != nil {
		return err
	}
	*d = doc
	return nil
}

// Bytes encodes the document for storage.
func (d Document) Bytes() ([]byte, error) {
	return json.Marshal(d)
}

// Walk visits every block depth-first in document order, including blocks nested in blocks-kind
// values and in repeater items. Returning false from fn stops descent below that block.
func (d Document) Walk(fn func(b Block, depth int) bool) {
	walkBlocks(d.Blocks, 1, fn)
}

func walkBlocks(blocks []Block, depth int, fn func(Block, int) bool) {
	for _, b := range blocks {
		if !fn(b, depth) {
			continue
		}
		for _, k := range sortedKeys(b.Props) {
			walkValue(b.Props[k], depth, fn)
		}
	}
}

func walkValue(v Value, depth int, fn func(Block, int) bool) {
	switch v.kind {
	case KindBlocks:
		walkBlocks(v.blocks, depth+1, fn)
	case KindList:
		for _, it := range v.items {
			for _, k := range it.Keys() {
				walkValue(it[k], depth, fn)
			}
		}
	}
}

func documentFromAny(x any) (Document, error) {
	obj, ok := x.(map[string]any)
	if !ok {
		return Document{}, fmt.Errorf("content: document must be an object")
	}
	arr, ok := obj["blocks"].([]any)
	if !ok {
		return Document{}, fmt.Errorf("content: document blocks must be an array")
	}
	doc := Document{Blocks: make([]Block, 0, len(arr))}
	for i, el := range arr {
		bo, ok := el.(map[string]any)
		if !ok {
			return Document{}, fmt.Errorf("content: blocks[%d] must be an object", i)
		}
		b, _, err := blockFromObject(bo, 0)
		if err != nil {
			return Document{}, fmt.Errorf("content: blocks[%d]: %w", i, err)
		}
		doc.Blocks = append(doc.Blocks, b)
	}
	meta, err := metaFromAny(obj["meta"])
	if err != nil {
		return Document{}, err
	}
	doc.Meta = meta
	return doc, nil
}

func metaFromAny(x any) (map[string]json.RawMessage, error) {
	switch m := x.(type) {
	case nil:
		return nil, nil
	case map[string]any:
		out := make(map[string]json.RawMessage, len(m))
		for k, v := range m {
			b, err := json.Marshal(v)
			if err != nil {
				return nil, fmt.Errorf("content: meta %q: %w", k, err)
			}
			out[k] = b
		}
		return out, nil
	default:
		return nil, fmt.Errorf("content: document meta must be an object")
	}
}
