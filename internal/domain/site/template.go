package site

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// PageTemplate is an admin-owned starting document. Instantiating one never writes to it.
type PageTemplate struct {
	ID           uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id" yaml:"-"`
	Name         string         `gorm:"column:name;not null" json:"name" yaml:"name"`
	Slug         string         `gorm:"column:slug;not null" json:"slug" yaml:"slug"`
	Description  string         `gorm:"column:description;type:text" json:"description,omitempty" yaml:"description"`
	Category     string         `gorm:"column:category;not null;default:'general';index" json:"category" yaml:"category"`
	ContentJSON  datatypes.JSON `gorm:"column:content_json;type:json" json:"content" yaml:"-"`
	DefaultTitle string         `gorm:"column:default_title" json:"default_title,omitempty" yaml:"defaultTitle"`
	ThumbnailURL string         `gorm:"column:thumbnail_url" json:"thumbnail_url,omitempty" yaml:"thumbnail"`
	IsPremium    bool           `gorm:"column:is_premium;not null;default:false" json:"is_premium" yaml:"premium"`
	Order        int            `gorm:"column:sort_order;not null;default:0" json:"order" yaml:"order"`
	IsActive     bool           `gorm:"column:is_active;not null;default:true" json:"is_active" yaml:"active"`
	CreatedAt    time.Time      `gorm:"not null" json:"created_at" yaml:"-"`
	UpdatedAt    time.Time      `gorm:"not null" json:"updated_at" yaml:"-"`
	DeletedAt    gorm.DeletedAt `gorm:"index" json:"-" yaml:"-"`
}

func (PageTemplate) TableName() string { return "page_template" }

func (t *PageTemplate) BeforeCreate(*gorm.DB) error {
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	return nil
}
