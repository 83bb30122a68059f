package content

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/ohler55/ojg/jp"
)

var ErrNodeNotFound = errors.New("content: no node at path")

// Lookup evaluates a JSONPath against the document and returns the first match encoded as JSON.
// Editors use it to address a block or a prop without fetching the whole tree.
func Lookup(doc Document, path string) (json.RawMessage, error) {
	x, err := jp.ParseString(path)
	if err != nil {
		return nil, &ValidationError{Path: path, Reason: "invalid path: " + err.Error()}
	}
	generic, err := doc.Generic()
	if err != nil {
		return nil, err
	}
	found := x.Get(generic)
	if len(found) == 0 {
		return nil, fmt.Errorf("%w %s", ErrNodeNotFound, path)
	}
	return json.Marshal(found[0])
}

// FindBlock searches the whole tree for a block id and returns the block with its JSONPath.
func FindBlock(doc Document, id string) (Block, string, bool) {
	b, p, ok := findIn(doc.Blocks, at(jp.R(), jp.Child("blocks")), id)
	if !ok {
		return Block{}, "", false
	}
	return b, p.String(), true
}

func findIn(blocks []Block, path jp.Expr, id string) (Block, jp.Expr, bool) {
	for i, b := range blocks {
		p := at(path, jp.Nth(i))
		if b.ID == id {
			return b, p, true
		}
		for _, k := range sortedKeys(b.Props) {
			if found, fp, ok := findInValue(b.Props[k], at(p, jp.Child("props"), jp.Child(k)), id); ok {
				return found, fp, true
			}
		}
	}
	return Block{}, nil, false
}

func findInValue(v Value, path jp.Expr, id string) (Block, jp.Expr, bool) {
	switch v.kind {
	case KindBlocks:
		return findIn(v.blocks, path, id)
	case KindList:
		for i, it := range v.items {
			for _, k := range it.Keys() {
				if found, fp, ok := findInValue(it[k], at(path, jp.Nth(i), jp.Child(k)), id); ok {
					return found, fp, true
				}
			}
		}
	}
	return Block{}, nil, false
}
