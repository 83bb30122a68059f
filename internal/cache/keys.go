package cache

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// Key families. Every key is family:identifier...:variant, and every prefix ends with a colon so
// one identifier never matches another that merely starts with it.
const (
	TTLEntries    = 300 * time.Second
	TTLTemplates  = 3600 * time.Second
	TTLPublicPage = 300 * time.Second
	TTLRender     = 300 * time.Second

	TemplatesPrefix = "templates:"
)

func EntriesKey(owner uuid.UUID, kind string, featuredOnly bool) string {
	variant := "all"
	if featuredOnly {
		variant = "featured"
	}
	return EntriesPrefix(owner, kind) + variant
}

// EntriesPrefix covers every variant of one owner's list of a kind.
func EntriesPrefix(owner uuid.UUID, kind string) string {
	return "entries:" + owner.String() + ":" + kind + ":"
}

func TemplateCatalogKey(category string) string {
	category = strings.TrimSpace(category)
	if category == "" {
		category = "all"
	}
	return TemplatesPrefix + "catalog:" + category
}

func TemplateSlugKey(slug string) string {
	return TemplatesPrefix + "slug:" + slug
}

func PublicPageKey(slug string) string {
	return PublicPagePrefix(slug) + "json"
}

func PublicPagePrefix(slug string) string {
	return "pages:public:" + slug + ":"
}

func RenderKey(owner, pageID uuid.UUID) string {
	return RenderPagePrefix(owner, pageID) + "html"
}

func RenderPagePrefix(owner, pageID uuid.UUID) string {
	return RenderOwnerPrefix(owner) + pageID.String() + ":"
}

// RenderOwnerPrefix covers every rendered page of an owner. Entry writes use it because any of
// the owner's pages may show the changed list.
func RenderOwnerPrefix(owner uuid.UUID) string {
	return "render:" + owner.String() + ":"
}
