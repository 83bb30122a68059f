package content_test

import (
	"github.com/angelo-odois/postangelo-sub000/internal/content"
)

// testRegistry is a small palette exercising every field kind, independent of the built-in catalog.
func testRegistry() *content.Registry {
	return content.MustRegistry(
		content.BlockType{Type: "text", Fields: content.Schema{
			{Name: "text", Kind: content.FieldString},
			{Name: "align", Kind: content.FieldSelect, Options: []string{"left", "center"}},
		}},
		content.BlockType{Type: "flag", Fields: content.Schema{
			{Name: "on", Kind: content.FieldBoolean, Default: content.Bool(true)},
		}},
		content.BlockType{Type: "columns", Fields: content.Schema{
			{Name: "columns", Kind: content.FieldSelect, Options: []string{"2", "3", "4"}},
			{Name: "items", Kind: content.FieldRepeater, ItemSchema: content.Schema{
				{Name: "title", Kind: content.FieldString},
				{Name: "content", Kind: content.FieldRichText},
				{Name: "blocks", Kind: content.FieldBlocks},
			}},
		}},
		content.BlockType{Type: "section", Fields: content.Schema{
			{Name: "title", Kind: content.FieldString},
			{Name: "blocks", Kind: content.FieldBlocks},
		}},
	)
}

const columnsDoc = `{
  "blocks": [
    {"id": "h1", "type": "text", "props": {"text": "Hello", "align": "center"}},
    {"id": "c1", "type": "columns", "props": {
      "columns": "2",
      "items": [
        {"title": "Sobre", "blocks": [{"id": "t1", "type": "text", "props": {"text": "Ola"}}]},
        {"title": "Skills"}
      ]
    }},
    {"id": "x1", "type": "mystery", "props": {"whatever": [1, 2, {"a": true}]}}
  ],
  "meta": {"theme": "dark", "version": 2}
}`
