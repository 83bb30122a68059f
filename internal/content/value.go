package content

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"
)

// Kind is the variant tag of a Value. The set is closed: every FieldKind maps onto one of these,
// and KindRaw carries anything a schema does not describe so it can be written back unchanged.
type Kind uint8

const (
	KindNull Kind = iota
	KindString
	KindBool
	KindList
	KindBlocks
	KindRaw
)

func (k Kind) String() string {
	switch k {
	case KindNull:
		return "null"
	case KindString:
		return "string"
	case KindBool:
		return "bool"
	case KindList:
		return "list"
	case KindBlocks:
		return "blocks"
	case KindRaw:
		return "raw"
	default:
		return fmt.Sprintf("kind(%d)", uint8(k))
	}
}

// Item is one entry of a repeater field.
type Item map[string]Value

// Value is a property value inside a Block or an Item.
type Value struct {
	kind   Kind
	str    string
	b      bool
	items  []Item
	blocks []Block
	raw    json.RawMessage
}

func Null() Value           { return Value{kind: KindNull} }
func String(s string) Value { return Value{kind: KindString, str: s} }
func Bool(b bool) Value     { return Value{kind: KindBool, b: b} }

func List(items ...Item) Value {
	if items == nil {
		items = []Item{}
	}
	return Value{kind: KindList, items: items}
}

func Blocks(blocks ...Block) Value {
	if blocks == nil {
		blocks = []Block{}
	}
	return Value{kind: KindBlocks, blocks: blocks}
}

// Raw wraps already-encoded JSON. The bytes are canonicalized so equal JSON compares equal.
func Raw(msg json.RawMessage) Value {
	return Value{kind: KindRaw, raw: canonicalJSON(msg)}
}

func (v Value) Kind() Kind { return v.kind }

func (v Value) Str() (string, bool) {
	if v.kind != KindString {
		return "", false
	}
	return v.str, true
}

func (v Value) AsBool() (bool, bool) {
	if v.kind != KindBool {
		return false, false
	}
	return v.b, true
}

func (v Value) Items() ([]Item, bool) {
	if v.kind != KindList {
		return nil, false
	}
	return v.items, true
}

func (v Value) BlockList() ([]Block, bool) {
	if v.kind != KindBlocks {
		return nil, false
	}
	return v.blocks, true
}

func (v Value) RawJSON() (json.RawMessage, bool) {
	if v.kind != KindRaw {
		return nil, false
	}
	return v.raw, true
}

func (v Value) MarshalJSON() ([]byte, error) {
	switch v.kind {
	case KindNull:
		return []byte("null"), nil
	case KindString:
		return json.Marshal(v.str)
	case KindBool:
		return json.Marshal(v.b)
	case KindList:
		if len(v.items) == 0 {
			return []byte("[]"), nil
		}
		return json.Marshal(v.items)
	case KindBlocks:
		if len(v.blocks) == 0 {
			return []byte("[]"), nil
		}
		return json.Marshal(v.blocks)
	case KindRaw:
		if len(v.raw) == 0 {
			return []byte("null"), nil
		}
		return v.raw, nil
	default:
		return nil, fmt.Errorf("content: cannot marshal value of %s", v.kind)
	}
}

// UnmarshalJSON decodes without a schema: arrays of objects become lists, scalars other than
// strings and booleans are kept raw. Nested block lists are recognized later, by Resolve.
func (v *Value) UnmarshalJSON(data []byte) error {
	var x any
	if err := decodeJSON(data, &x); err != nil {
		return err
	}
	*v = decodeValue(x, 0)
	return nil
}

// Clone returns a deep copy.
func (v Value) Clone() Value {
	switch v.kind {
	case KindList:
		items := make([]Item, len(v.items))
		for i, it := range v.items {
			items[i] = it.Clone()
		}
		return Value{kind: KindList, items: items}
	case KindBlocks:
		blocks := make([]Block, len(v.blocks))
		for i, b := range v.blocks {
			blocks[i] = b.Clone()
		}
		return Value{kind: KindBlocks, blocks: blocks}
	case KindRaw:
		return Value{kind: KindRaw, raw: append(json.RawMessage(nil), v.raw...)}
	default:
		return v
	}
}

func (it Item) Clone() Item {
	out := make(Item, len(it))
	for k, v := range it {
		out[k] = v.Clone()
	}
	return out
}

// Keys returns the item's keys in sorted order.
func (it Item) Keys() []string {
	return sortedKeys(it)
}

func sortedKeys(m map[string]Value) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

const maxSchemaFreeDepth = 64

func decodeValue(x any, depth int) Value {
	switch t := x.(type) {
	case nil:
		return Null()
	case string:
		return String(t)
	case bool:
		return Bool(t)
	case []any:
		if depth < maxSchemaFreeDepth {
			if items, ok := decodeItems(t, depth+1); ok {
				return List(items...)
			}
		}
	}
	return rawOf(x)
}

func decodeItems(arr []any, depth int) ([]Item, bool) {
	items := make([]Item, 0, len(arr))
	for _, el := range arr {
		obj, ok := el.(map[string]any)
		if !ok {
			return nil, false
		}
		items = append(items, decodeItem(obj, depth))
	}
	return items, true
}

func decodeItem(obj map[string]any, depth int) Item {
	it := make(Item, len(obj))
	for k, v := range obj {
		it[k] = decodeValue(v, depth)
	}
	return it
}

func rawOf(x any) Value {
	b, err := json.Marshal(x)
	if err != nil {
		return Null()
	}
	return Value{kind: KindRaw, raw: b}
}

// decodeJSON keeps numbers as json.Number so raw values re-encode with their original text.
func decodeJSON(data []byte, out *any) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	if err := dec.Decode(out); err != nil {
		return err
	}
	if dec.More() {
		return fmt.Errorf("content: trailing data after JSON value")
	}
	return nil
}

func canonicalJSON(msg json.RawMessage) json.RawMessage {
	if len(msg) == 0 {
		return nil
	}
	var x any
	if err := decodeJSON(msg, &x); err != nil {
		return append(json.RawMessage(nil), msg...)
	}
	b, err := json.Marshal(x)
	if err != nil {
		return append(json.RawMessage(nil), msg...)
	}
	return b
}
