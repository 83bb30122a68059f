package site

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Entry kinds feed the data-bound blocks of the same name.
const (
	EntryExperience = "experience"
	EntryEducation  = "education"
	EntryProject    = "project"
	EntrySkill      = "skill"
)

func ValidEntryKind(kind string) bool {
	switch kind {
	case EntryExperience, EntryEducation, EntryProject, EntrySkill:
		return true
	}
	return false
}

type Entry struct {
	ID          uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	OwnerID     uuid.UUID      `gorm:"type:uuid;not null;index:idx_entry_owner_kind,priority:1" json:"owner_id"`
	Kind        string         `gorm:"column:kind;not null;index:idx_entry_owner_kind,priority:2" json:"kind"`
	Title       string         `gorm:"column:title;not null" json:"title"`
	Subtitle    string         `gorm:"column:subtitle" json:"subtitle,omitempty"`
	Description string         `gorm:"column:description;type:text" json:"description,omitempty"`
	URL         string         `gorm:"column:url" json:"url,omitempty"`
	StartDate   *time.Time     `gorm:"column:start_date" json:"start_date,omitempty"`
	EndDate     *time.Time     `gorm:"column:end_date" json:"end_date,omitempty"`
	Featured    bool           `gorm:"column:featured;not null;default:false" json:"featured"`
	Order       int            `gorm:"column:sort_order;not null;default:0" json:"order"`
	CreatedAt   time.Time      `gorm:"not null" json:"created_at"`
	UpdatedAt   time.Time      `gorm:"not null" json:"updated_at"`
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"`
}

func (Entry) TableName() string { return "entry" }

func (e *Entry) BeforeCreate(*gorm.DB) error {
	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	return nil
}
