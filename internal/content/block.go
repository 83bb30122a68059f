package content

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// Block is one typed unit of content. ID is unique among its siblings.
type Block struct {
	ID    string           `json:"id"`
	Type  string           `json:"type"`
	Props map[string]Value `json:"props"`
}

// NewBlock creates a block of the given type with a fresh id and the registry's defaults.
// Unknown types get empty props.
func NewBlock(reg *Registry, blockType string) Block {
	props := map[string]Value{}
	if reg != nil {
		if bt, ok := reg.Get(blockType); ok {
			props = bt.Fields.Defaults()
		}
	}
	return Block{ID: NewBlockID(blockType), Type: blockType, Props: props}
}

// NewBlockID returns "<type>_<uuid>", the same shape the authoring surface generates.
func NewBlockID(blockType string) string {
	t := strings.ToLower(strings.TrimSpace(blockType))
	if t == "" {
		t = "block"
	}
	return t + "_" + uuid.New().String()
}

func (b Block) Prop(name string) (Value, bool) {
	v, ok := b.Props[name]
	return v, ok
}

func (b Block) Clone() Block {
	props := make(map[string]Value, len(b.Props))
	for k, v := range b.Props {
		props[k] = v.Clone()
	}
	return Block{ID: b.ID, Type: b.Type, Props: props}
}

func (b Block) MarshalJSON() ([]byte, error) {
	props := b.Props
	if props == nil {
		props = map[string]Value{}
	}
	return json.Marshal(struct {
		ID    string           `json:"id"`
		Type  string           `json:"type"`
		Props map[string]Value `json:"props"`
	}{b.ID, b.Type, props})
}

func (b *Block) UnmarshalJSON(data []byte) error {
	var x any
	if err := decodeJSON(data, &x); err != nil {
		return err
	}
	obj, ok := x.(map[string]any)
	if !ok {
		return fmt.Errorf("content: block must be an object")
	}
	blk, _, err := blockFromObject(obj, 0)
	if err != nil {
		return err
	}
	*b = blk
	return nil
}

// blockFromObject converts a decoded JSON object into a Block without consulting a schema.
// The returned string names the offending key when the object is not block-shaped.
func blockFromObject(obj map[string]any, depth int) (Block, string, error) {
	id, ok := obj["id"].(string)
	if !ok {
		return Block{}, "id", fmt.Errorf("block id must be a string")
	}
	typ, ok := obj["type"].(string)
	if !ok {
		return Block{}, "type", fmt.Errorf("block type must be a string")
	}
	props := map[string]Value{}
	switch p := obj["props"].(type) {
	case nil:
	case map[string]any:
		for k, v := range p {
			props[k] = decodeValue(v, depth+1)
		}
	default:
		return Block{}, "props", fmt.Errorf("block props must be an object")
	}
	return Block{ID: id, Type: typ, Props: props}, "", nil
}
