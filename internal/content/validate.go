package content

import (
	"encoding/json"
	"errors"
	"fmt"
	"sort"

	"github.com/ohler55/ojg/jp"
)

// MaxDepth caps block nesting. Top-level blocks are depth 1; a block inside a blocks field of a
// depth-n block is depth n+1.
const MaxDepth = 16

// maxErrors bounds the problems collected from one document.
const maxErrors = 32

// ValidationError describes one structural problem. Path is a JSONPath into the submitted
// document, such as $.blocks[2].props.items[0].blocks.
type ValidationError struct {
	Path   string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Path, e.Reason)
}

// ValidationErrors extracts every *ValidationError joined into err.
func ValidationErrors(err error) []*ValidationError {
	if err == nil {
		return nil
	}
	var out []*ValidationError
	if multi, ok := err.(interface{ Unwrap() []error }); ok {
		for _, e := range multi.Unwrap() {
			out = append(out, ValidationErrors(e)...)
		}
		return out
	}
	var ve *ValidationError
	if errors.As(err, &ve) {
		out = append(out, ve)
	}
	return out
}

// Validate parses and checks a submitted document. Nested values are decoded against the
// registry's schemas so blocks fields come back as block lists. Missing props are not errors.
func Validate(reg *Registry, raw []byte) (Document, error) {
	var x any
	if err := decodeJSON(raw, &x); err != nil {
		return Document{}, &ValidationError{Path: "$", Reason: "malformed JSON: " + err.Error()}
	}
	return ValidateValue(reg, x)
}

// ValidateValue checks an already-decoded document (as produced by encoding/json into an any).
func ValidateValue(reg *Registry, x any) (Document, error) {
	v := &walker{reg: reg, strict: true}
	doc := v.document(x)
	if err := errors.Join(v.errs...); err != nil {
		return Document{}, err
	}
	return doc, nil
}

// Decode reads a stored document with the same schema-directed decoding as Validate but without
// rejecting nested problems: a malformed or too-deep blocks field is kept as a raw value so the
// renderer can substitute a placeholder. Only a document whose top level is not block-shaped fails.
func Decode(reg *Registry, raw []byte) (Document, error) {
	if len(raw) == 0 {
		return Empty(), nil
	}
	var x any
	if err := decodeJSON(raw, &x); err != nil {
		return Document{}, fmt.Errorf("content: decode document: %w", err)
	}
	v := &walker{reg: reg}
	doc := v.document(x)
	if err := errors.Join(v.errs...); err != nil {
		return Document{}, fmt.Errorf("content: decode document: %w", err)
	}
	return doc, nil
}

// walker turns generic JSON into the typed tree. In strict mode every problem is recorded; in
// lenient mode only top-level problems are, and nested ones degrade to raw values.
type walker struct {
	reg    *Registry
	strict bool
	errs   []error
}

// strictAt reports whether problems at depth are recorded. The top level is always checked.
func (v *walker) strictAt(depth int) bool {
	return v.strict || depth <= 1
}

func (v *walker) fail(path jp.Expr, format string, args ...any) {
	if len(v.errs) >= maxErrors {
		return
	}
	v.errs = append(v.errs, &ValidationError{Path: path.String(), Reason: fmt.Sprintf(format, args...)})
}

func (v *walker) document(x any) Document {
	root := jp.R()
	obj, ok := x.(map[string]any)
	if !ok {
		v.fail(root, "document must be an object")
		return Document{}
	}
	arr, ok := obj["blocks"].([]any)
	if !ok {
		v.fail(at(root, jp.Child("blocks")), "must be an array")
		return Document{}
	}
	blocks, _ := v.blockList(arr, at(root, jp.Child("blocks")), 1)

	meta, err := metaFromAny(obj["meta"])
	if err != nil {
		v.fail(at(root, jp.Child("meta")), "must be an object")
	}
	return Document{Blocks: blocks, Meta: meta}
}

// blockList decodes the elements of a block array at the given depth. ok is false when the list
// was rejected; in lenient mode the caller keeps the original value raw.
func (v *walker) blockList(arr []any, path jp.Expr, depth int) ([]Block, bool) {
	strict := v.strictAt(depth)
	if depth > MaxDepth {
		if strict {
			v.fail(path, "nesting depth exceeds %d", MaxDepth)
		}
		return nil, false
	}
	before := len(v.errs)
	out := make([]Block, 0, len(arr))
	seen := make(map[string]int, len(arr))
	ok := true
	for i, el := range arr {
		p := at(path, jp.Nth(i))
		b, good := v.block(el, p, depth)
		if !good {
			ok = false
			continue
		}
		if j, dup := seen[b.ID]; dup {
			if strict {
				v.fail(at(p, jp.Child("id")), "duplicate block id %q (also at index %d)", b.ID, j)
			}
			ok = false
			continue
		}
		seen[b.ID] = i
		out = append(out, b)
	}
	if !ok || len(v.errs) > before {
		return nil, false
	}
	return out, true
}

func (v *walker) block(el any, path jp.Expr, depth int) (Block, bool) {
	strict := v.strictAt(depth)
	obj, ok := el.(map[string]any)
	if !ok {
		if strict {
			v.fail(path, "block must be an object")
		}
		return Block{}, false
	}
	id, ok := obj["id"].(string)
	if !ok || id == "" {
		if strict {
			v.fail(at(path, jp.Child("id")), "must be a non-empty string")
		}
		return Block{}, false
	}
	typ, ok := obj["type"].(string)
	if !ok {
		if strict {
			v.fail(at(path, jp.Child("type")), "must be a string")
		}
		return Block{}, false
	}
	var rawProps map[string]any
	switch p := obj["props"].(type) {
	case nil:
	case map[string]any:
		rawProps = p
	default:
		if strict {
			v.fail(at(path, jp.Child("props")), "must be an object")
		}
		return Block{}, false
	}

	bt, known := v.reg.Get(typ)
	props := make(map[string]Value, len(rawProps))
	propsPath := at(path, jp.Child("props"))
	for _, k := range sortedAnyKeys(rawProps) {
		raw := rawProps[k]
		if f, declared := bt.Fields.Field(k); known && declared {
			props[k] = v.field(f, raw, at(propsPath, jp.Child(k)), depth)
			continue
		}
		props[k] = decodeValue(raw, depth)
	}
	return Block{ID: id, Type: typ, Props: props}, true
}

// field decodes one declared value. depth is the depth of the block that owns it.
func (v *walker) field(f FieldSpec, raw any, path jp.Expr, depth int) Value {
	switch f.Kind {
	case FieldBlocks:
		if raw == nil {
			return Null()
		}
		arr, ok := raw.([]any)
		if !ok {
			if v.strictAt(depth + 1) {
				v.fail(path, "blocks field must be an array")
			}
			return rawOf(raw)
		}
		blocks, ok := v.blockList(arr, path, depth+1)
		if !ok {
			return rawOf(raw)
		}
		return Blocks(blocks...)
	case FieldRepeater:
		arr, ok := raw.([]any)
		if !ok {
			return decodeValue(raw, depth)
		}
		strict := v.strictAt(depth + 1)
		items := make([]Item, 0, len(arr))
		for i, el := range arr {
			obj, ok := el.(map[string]any)
			if !ok {
				if !strict {
					// not a list of items; keep it as stored and let the default apply
					return rawOf(raw)
				}
				v.fail(at(path, jp.Nth(i)), "repeater item must be an object")
				continue
			}
			items = append(items, v.item(f.ItemSchema, obj, at(path, jp.Nth(i)), depth))
		}
		return List(items...)
	default:
		return decodeValue(raw, depth)
	}
}

func (v *walker) item(schema Schema, obj map[string]any, path jp.Expr, depth int) Item {
	it := make(Item, len(obj))
	for _, k := range sortedAnyKeys(obj) {
		raw := obj[k]
		if f, ok := schema.Field(k); ok {
			it[k] = v.field(f, raw, at(path, jp.Child(k)), depth)
			continue
		}
		it[k] = decodeValue(raw, depth)
	}
	return it
}

func sortedAnyKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// at copies base before appending so sibling paths never share a backing array.
func at(base jp.Expr, frags ...jp.Frag) jp.Expr {
	out := make(jp.Expr, 0, len(base)+len(frags))
	out = append(out, base...)
	return append(out, frags...)
}

// Generic returns the document as plain JSON values (maps, slices, strings, json.Number).
func (d Document) Generic() (any, error) {
	b, err := json.Marshal(d)
	if err != nil {
		return nil, err
	}
	var x any
	if err := decodeJSON(b, &x); err != nil {
		return nil, err
	}
	return x, nil
}
