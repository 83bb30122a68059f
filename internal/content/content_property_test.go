//go:build property

package content_test

import (
	"encoding/json"
	"fmt"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"

	"github.com/angelo-odois/postangelo-sub000/internal/content"
)

// shape drives document generation: each entry is one top-level block; the value picks the block
// kind and how many nested children it carries.
func genShape() gopter.Gen {
	return gen.SliceOfN(12, gen.IntRange(0, 40))
}

func buildDoc(shape []int, texts []string) content.Document {
	pick := func(i int) string {
		if len(texts) == 0 {
			return ""
		}
		return texts[i%len(texts)]
	}
	doc := content.Empty()
	for i, n := range shape {
		id := fmt.Sprintf("b%d", i)
		switch n % 4 {
		case 0:
			doc.Blocks = append(doc.Blocks, content.Block{ID: id, Type: "text", Props: map[string]content.Value{
				"text": content.String(pick(i)),
			}})
		case 1:
			doc.Blocks = append(doc.Blocks, content.Block{ID: id, Type: "flag", Props: map[string]content.Value{
				"on": content.Bool(n%2 == 0),
			}})
		case 2:
			var children []content.Block
			for j := 0; j < n%5; j++ {
				children = append(children, content.Block{ID: fmt.Sprintf("%s_%d", id, j), Type: "text", Props: map[string]content.Value{
					"text": content.String(pick(i + j)),
				}})
			}
			doc.Blocks = append(doc.Blocks, content.Block{ID: id, Type: "section", Props: map[string]content.Value{
				"title":  content.String(pick(i)),
				"blocks": content.Blocks(children...),
			}})
		default:
			var items []content.Item
			for j := 0; j < n%3; j++ {
				items = append(items, content.Item{
					"title": content.String(pick(j)),
					"blocks": content.Blocks(content.Block{ID: "inner", Type: "text", Props: map[string]content.Value{
						"text": content.String(pick(j + 1)),
					}}),
				})
			}
			doc.Blocks = append(doc.Blocks, content.Block{ID: id, Type: "columns", Props: map[string]content.Value{
				"columns": content.String("3"),
				"items":   content.List(items...),
			}})
		}
	}
	return doc
}

func TestDocumentProperties(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.Rng.Seed(1357)
	parameters.MinSuccessfulTests = 200

	properties := gopter.NewProperties(parameters)
	reg := testRegistry()

	properties.Property("validate after serialize returns the same document", prop.ForAll(
		func(shape []int, texts []string) bool {
			doc := buildDoc(shape, texts)
			raw, err := json.Marshal(doc)
			if err != nil {
				return false
			}
			again, err := content.Validate(reg, raw)
			if err != nil {
				return false
			}
			back, err := json.Marshal(again)
			return err == nil && string(back) == string(raw)
		},
		genShape(),
		gen.SliceOfN(4, gen.AnyString()),
	))

	properties.Property("clones never share ids with each other or the source", prop.ForAll(
		func(shape []int) bool {
			doc := buildDoc(shape, []string{"a", "b"})
			a := content.CloneWithFreshIDs(doc)
			b := content.CloneWithFreshIDs(doc)
			seen := map[string]bool{}
			for _, d := range []content.Document{a, b} {
				ok := true
				d.Walk(func(blk content.Block, _ int) bool {
					if seen[blk.ID] {
						ok = false
					}
					seen[blk.ID] = true
					return true
				})
				if !ok {
					return false
				}
			}
			src := blockIDs(doc)
			for _, id := range src {
				if seen[id] {
					return false
				}
			}
			return len(seen) == 2*len(src)
		},
		genShape(),
	))

	properties.Property("mutating a clone leaves the source unchanged", prop.ForAll(
		func(shape []int) bool {
			doc := buildDoc(shape, []string{"x"})
			before, _ := json.Marshal(doc)
			cp := content.CloneWithFreshIDs(doc)
			for i := range cp.Blocks {
				cp.Blocks[i].Props["text"] = content.String("mutated")
				if items, ok := cp.Blocks[i].Props["items"].Items(); ok {
					for _, it := range items {
						it["title"] = content.String("mutated")
					}
				}
			}
			after, _ := json.Marshal(doc)
			return string(before) == string(after)
		},
		genShape(),
	))

	properties.TestingRun(t)
}
