// Package catalog holds the built-in block palette.
package catalog

import (
	"sync"

	"github.com/angelo-odois/postangelo-sub000/internal/content"
)

const (
	CategoryBasic     = "basic"
	CategoryLayout    = "layout"
	CategoryMedia     = "media"
	CategoryPortfolio = "portfolio"
)

// Block type tags.
const (
	Hero       = "hero"
	Heading    = "heading"
	Text       = "text"
	RichText   = "richtext"
	Image      = "image"
	Button     = "button"
	Links      = "links"
	Social     = "social"
	Columns    = "columns"
	Section    = "section"
	Divider    = "divider"
	Spacer     = "spacer"
	Video      = "video"
	Contact    = "contact"
	Experience = "experience"
	Education  = "education"
	Projects   = "projects"
	Skills     = "skills"
)

var (
	defaultOnce sync.Once
	defaultReg  *content.Registry
)

// Default returns the shared built-in registry.
func Default() *content.Registry {
	defaultOnce.Do(func() {
		defaultReg = content.MustRegistry(Types()...)
	})
	return defaultReg
}

var alignOptions = []string{"left", "center", "right"}

func str(name, label string) content.FieldSpec {
	return content.FieldSpec{Name: name, Kind: content.FieldString, Label: label}
}

func strDefault(name, label, def string) content.FieldSpec {
	return content.FieldSpec{Name: name, Kind: content.FieldString, Label: label, Default: content.String(def)}
}

func boolean(name, label string) content.FieldSpec {
	return content.FieldSpec{Name: name, Kind: content.FieldBoolean, Label: label}
}

func choice(name, label, def string, options ...string) content.FieldSpec {
	return content.FieldSpec{Name: name, Kind: content.FieldSelect, Label: label, Default: content.String(def), Options: options}
}

// dataBound is the schema shared by blocks that list the owner's portfolio entries.
func dataBound(title string) content.Schema {
	return content.Schema{
		strDefault("title", "Title", title),
		boolean("featuredOnly", "Only featured"),
		choice("layout", "Layout", "list", "list", "grid"),
	}
}

// Types returns fresh definitions of every built-in block type in palette order.
func Types() []content.BlockType {
	return []content.BlockType{
		{Type: Hero, Category: CategoryBasic, Icon: "user", Fields: content.Schema{
			strDefault("title", "Name", "Your name"),
			str("subtitle", "Headline"),
			str("avatar", "Avatar URL"),
			choice("align", "Alignment", "center", alignOptions...),
		}},
		{Type: Heading, Category: CategoryBasic, Icon: "heading", Fields: content.Schema{
			strDefault("text", "Text", "Heading"),
			choice("level", "Level", "h2", "h1", "h2", "h3"),
			choice("align", "Alignment", "left", alignOptions...),
		}},
		{Type: Text, Category: CategoryBasic, Icon: "type", Fields: content.Schema{
			str("text", "Text"),
			choice("align", "Alignment", "left", alignOptions...),
		}},
		{Type: RichText, Label: "Rich text", Category: CategoryBasic, Icon: "align-left", Fields: content.Schema{
			{Name: "html", Kind: content.FieldRichText, Label: "Content"},
		}},
		{Type: Button, Category: CategoryBasic, Icon: "mouse-pointer", Fields: content.Schema{
			strDefault("label", "Label", "Click here"),
			str("url", "Link"),
			choice("style", "Style", "primary", "primary", "secondary", "outline"),
			boolean("newTab", "Open in new tab"),
		}},
		{Type: Links, Category: CategoryBasic, Icon: "link", Fields: content.Schema{
			{Name: "items", Kind: content.FieldRepeater, Label: "Links", ItemSchema: content.Schema{
				str("label", "Label"),
				str("url", "URL"),
				str("icon", "Icon"),
			}},
		}},
		{Type: Social, Category: CategoryBasic, Icon: "share-2", Fields: content.Schema{
			{Name: "items", Kind: content.FieldRepeater, Label: "Profiles", ItemSchema: content.Schema{
				choice("network", "Network", "website", "website", "instagram", "linkedin", "github", "twitter", "youtube", "tiktok"),
				str("url", "URL"),
			}},
		}},
		{Type: Columns, Category: CategoryLayout, Icon: "columns", Fields: content.Schema{
			choice("columns", "Columns", "2", "2", "3", "4"),
			choice("gap", "Gap", "md", "sm", "md", "lg"),
			{Name: "items", Kind: content.FieldRepeater, Label: "Columns", ItemSchema: content.Schema{
				str("title", "Title"),
				{Name: "content", Kind: content.FieldRichText, Label: "Content"},
				{Name: "blocks", Kind: content.FieldBlocks, Label: "Blocks"},
			}},
		}},
		{Type: Section, Category: CategoryLayout, Icon: "square", Fields: content.Schema{
			str("title", "Title"),
			choice("background", "Background", "none", "none", "muted", "accent"),
			{Name: "blocks", Kind: content.FieldBlocks, Label: "Blocks"},
		}},
		{Type: Divider, Category: CategoryLayout, Icon: "minus", Fields: content.Schema{
			choice("style", "Style", "solid", "solid", "dashed", "dotted"),
		}},
		{Type: Spacer, Category: CategoryLayout, Icon: "move-vertical", Fields: content.Schema{
			choice("size", "Size", "md", "sm", "md", "lg", "xl"),
		}},
		{Type: Image, Category: CategoryMedia, Icon: "image", Fields: content.Schema{
			str("src", "Image URL"),
			str("alt", "Alternative text"),
			str("caption", "Caption"),
			boolean("rounded", "Rounded corners"),
		}},
		{Type: Video, Category: CategoryMedia, Icon: "video", Fields: content.Schema{
			str("url", "Video URL"),
			str("title", "Title"),
		}},
		{Type: Contact, Category: CategoryPortfolio, Icon: "mail", Fields: content.Schema{
			strDefault("title", "Title", "Contact"),
			str("email", "Email"),
			str("phone", "Phone"),
			boolean("showForm", "Show form"),
		}},
		{Type: Experience, Category: CategoryPortfolio, Icon: "briefcase", Fields: dataBound("Experience")},
		{Type: Education, Category: CategoryPortfolio, Icon: "book", Fields: dataBound("Education")},
		{Type: Projects, Category: CategoryPortfolio, Icon: "folder", Fields: dataBound("Projects")},
		{Type: Skills, Category: CategoryPortfolio, Icon: "star", Fields: dataBound("Skills")},
	}
}
