package content

import (
	"errors"
	"fmt"
	"slices"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// FieldKind is the declared kind of one configurable block property.
type FieldKind string

const (
	FieldString   FieldKind = "string"
	FieldBoolean  FieldKind = "boolean"
	FieldSelect   FieldKind = "select"
	FieldRichText FieldKind = "richtext"
	FieldRepeater FieldKind = "repeater"
	FieldBlocks   FieldKind = "blocks"
)

func (k FieldKind) valid() bool {
	switch k {
	case FieldString, FieldBoolean, FieldSelect, FieldRichText, FieldRepeater, FieldBlocks:
		return true
	}
	return false
}

// ValueKind is the Value variant a well-formed value of this field holds.
func (k FieldKind) ValueKind() Kind {
	switch k {
	case FieldBoolean:
		return KindBool
	case FieldRepeater:
		return KindList
	case FieldBlocks:
		return KindBlocks
	default:
		return KindString
	}
}

func (k FieldKind) zero() Value {
	switch k {
	case FieldBoolean:
		return Bool(false)
	case FieldRepeater:
		return List()
	case FieldBlocks:
		return Blocks()
	default:
		return String("")
	}
}

// FieldSpec declares one property of a block type, or one field of a repeater item.
type FieldSpec struct {
	Name       string    `json:"name"`
	Kind       FieldKind `json:"kind"`
	Label      string    `json:"label"`
	Default    Value     `json:"default"`
	Options    []string  `json:"options,omitempty"`
	ItemSchema Schema    `json:"itemSchema,omitempty"`
}

// Accepts reports whether v is a usable value for the field. Select values must be one of the
// declared options.
func (f FieldSpec) Accepts(v Value) bool {
	if v.Kind() != f.Kind.ValueKind() {
		return false
	}
	if f.Kind == FieldSelect && len(f.Options) > 0 {
		s, _ := v.Str()
		return slices.Contains(f.Options, s)
	}
	return true
}

// Resolve returns the effective value of the field given a block's props: the stored value when
// it is acceptable, otherwise a copy of the default.
func (f FieldSpec) Resolve(props map[string]Value) Value {
	if v, ok := props[f.Name]; ok && f.Accepts(v) {
		return v
	}
	return f.Default.Clone()
}

// Schema is the ordered field list of a block type or repeater item.
type Schema []FieldSpec

func (s Schema) Field(name string) (FieldSpec, bool) {
	for _, f := range s {
		if f.Name == name {
			return f, true
		}
	}
	return FieldSpec{}, false
}

// Defaults returns a fresh props map holding a copy of every field's default.
func (s Schema) Defaults() map[string]Value {
	out := make(map[string]Value, len(s))
	for _, f := range s {
		out[f.Name] = f.Default.Clone()
	}
	return out
}

// Resolve returns the effective values of every declared field. Undeclared keys are dropped.
func (s Schema) Resolve(props map[string]Value) map[string]Value {
	out := make(map[string]Value, len(s))
	for _, f := range s {
		out[f.Name] = f.Resolve(props)
	}
	return out
}

func (s Schema) normalize(path string) (Schema, error) {
	out := make(Schema, 0, len(s))
	seen := map[string]bool{}
	var errs []error
	for _, f := range s {
		f.Name = strings.TrimSpace(f.Name)
		where := path + "." + f.Name
		if f.Name == "" {
			errs = append(errs, fmt.Errorf("%s: field name is required", path))
			continue
		}
		if seen[f.Name] {
			errs = append(errs, fmt.Errorf("%s: duplicate field", where))
			continue
		}
		seen[f.Name] = true
		if !f.Kind.valid() {
			errs = append(errs, fmt.Errorf("%s: unknown field kind %q", where, f.Kind))
			continue
		}
		if f.Label == "" {
			f.Label = labelFor(f.Name)
		}
		if f.Kind == FieldSelect {
			if len(f.Options) == 0 {
				errs = append(errs, fmt.Errorf("%s: select field needs options", where))
				continue
			}
			if f.Default.Kind() == KindNull {
				f.Default = String(f.Options[0])
			}
		} else if len(f.Options) > 0 {
			errs = append(errs, fmt.Errorf("%s: options are only allowed on select fields", where))
			continue
		}
		switch f.Kind {
		case FieldRepeater:
			if len(f.ItemSchema) == 0 {
				errs = append(errs, fmt.Errorf("%s: repeater field needs an item schema", where))
				continue
			}
			items, err := f.ItemSchema.normalize(where)
			if err != nil {
				errs = append(errs, err)
				continue
			}
			f.ItemSchema = items
		case FieldBlocks:
			// nested blocks are typed by the registry, not by an item schema
			f.ItemSchema = nil
		default:
			if len(f.ItemSchema) > 0 {
				errs = append(errs, fmt.Errorf("%s: item schema is only allowed on repeater fields", where))
				continue
			}
		}
		if f.Default.Kind() == KindNull {
			f.Default = f.Kind.zero()
		}
		if !f.Accepts(f.Default) {
			errs = append(errs, fmt.Errorf("%s: default %s does not match kind %s", where, f.Default.Kind(), f.Kind))
			continue
		}
		out = append(out, f)
	}
	return out, errors.Join(errs...)
}

// BlockType is one palette entry: the tag stored in Block.Type plus its field schema.
type BlockType struct {
	Type     string `json:"type"`
	Label    string `json:"label"`
	Category string `json:"category,omitempty"`
	Icon     string `json:"icon,omitempty"`
	Fields   Schema `json:"fields"`
}

// Registry maps block type tags to their schema. It is immutable once built and safe for
// concurrent use.
type Registry struct {
	types map[string]BlockType
	order []string
}

// NewRegistry checks every type's schema, fills missing labels and defaults, and returns a
// registry listing types in the order given.
func NewRegistry(types ...BlockType) (*Registry, error) {
	r := &Registry{types: make(map[string]BlockType, len(types))}
	var errs []error
	for _, bt := range types {
		bt.Type = strings.TrimSpace(bt.Type)
		if bt.Type == "" {
			errs = append(errs, fmt.Errorf("content: block type tag is required"))
			continue
		}
		if _, dup := r.types[bt.Type]; dup {
			errs = append(errs, fmt.Errorf("content: duplicate block type %q", bt.Type))
			continue
		}
		fields, err := bt.Fields.normalize(bt.Type)
		if err != nil {
			errs = append(errs, fmt.Errorf("content: %w", err))
			continue
		}
		bt.Fields = fields
		if bt.Label == "" {
			bt.Label = labelFor(bt.Type)
		}
		r.types[bt.Type] = bt
		r.order = append(r.order, bt.Type)
	}
	if err := errors.Join(errs...); err != nil {
		return nil, err
	}
	return r, nil
}

func MustRegistry(types ...BlockType) *Registry {
	r, err := NewRegistry(types...)
	if err != nil {
		panic(err)
	}
	return r
}

func (r *Registry) Get(blockType string) (BlockType, bool) {
	if r == nil {
		return BlockType{}, false
	}
	bt, ok := r.types[blockType]
	return bt, ok
}

// Types lists the registered types in registration order.
func (r *Registry) Types() []BlockType {
	if r == nil {
		return nil
	}
	out := make([]BlockType, 0, len(r.order))
	for _, t := range r.order {
		out = append(out, r.types[t])
	}
	return out
}

// Defaults returns fresh default props for a type.
func (r *Registry) Defaults(blockType string) (map[string]Value, bool) {
	bt, ok := r.Get(blockType)
	if !ok {
		return nil, false
	}
	return bt.Fields.Defaults(), true
}

func labelFor(name string) string {
	return cases.Title(language.Und).String(strings.NewReplacer("_", " ", "-", " ").Replace(name))
}
