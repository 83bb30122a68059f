package site

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Page owns one content document. Slug is unique among live pages and addresses the public view.
type Page struct {
	ID          uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	OwnerID     uuid.UUID      `gorm:"type:uuid;not null;index" json:"owner_id"`
	Title       string         `gorm:"column:title;not null" json:"title"`
	Description string         `gorm:"column:description;type:text" json:"description,omitempty"`
	Slug        string         `gorm:"column:slug;not null" json:"slug"`
	TemplateID  *uuid.UUID     `gorm:"type:uuid;column:template_id" json:"template_id,omitempty"`
	ContentJSON datatypes.JSON `gorm:"column:content_json;type:json" json:"content"`
	IsPublished bool           `gorm:"column:is_published;not null;default:false" json:"is_published"`
	PublishedAt *time.Time     `gorm:"column:published_at" json:"published_at,omitempty"`
	CreatedAt   time.Time      `gorm:"not null" json:"created_at"`
	UpdatedAt   time.Time      `gorm:"not null" json:"updated_at"`
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"`
}

func (Page) TableName() string { return "page" }

func (p *Page) BeforeCreate(*gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}
