package db

import (
	"fmt"

	types "github.com/angelo-odois/postangelo-sub000/internal/domain"
	"gorm.io/gorm"
)

func AutoMigrateAll(db *gorm.DB) error {
	return db.AutoMigrate(
		&types.Page{},
		&types.PageTemplate{},
		&types.Entry{},
	)
}

// EnsureSiteIndexes creates the partial unique indexes that keep slugs unique among live rows.
// Both postgres and sqlite accept the WHERE clause.
func EnsureSiteIndexes(db *gorm.DB) error {
	if err := db.Exec(`
		CREATE UNIQUE INDEX IF NOT EXISTS idx_page_slug_live
		ON page (slug)
		WHERE deleted_at IS NULL;
	`).Error; err != nil {
		return fmt.Errorf("create idx_page_slug_live: %w", err)
	}
	if err := db.Exec(`
		CREATE UNIQUE INDEX IF NOT EXISTS idx_page_template_slug_live
		ON page_template (slug)
		WHERE deleted_at IS NULL;
	`).Error; err != nil {
		return fmt.Errorf("create idx_page_template_slug_live: %w", err)
	}
	if err := db.Exec(`
		CREATE INDEX IF NOT EXISTS idx_page_template_catalog
		ON page_template (is_active, category, sort_order);
	`).Error; err != nil {
		return fmt.Errorf("create idx_page_template_catalog: %w", err)
	}
	return nil
}

func Migrate(db *gorm.DB) error {
	if err := AutoMigrateAll(db); err != nil {
		return err
	}
	return EnsureSiteIndexes(db)
}

func (s *Service) AutoMigrateAll() error {
	s.log.Info("Auto migrating tables...", "driver", s.driver)
	if err := AutoMigrateAll(s.db); err != nil {
		s.log.Error("Auto migration failed", "error", err)
		return err
	}
	if err := EnsureSiteIndexes(s.db); err != nil {
		s.log.Error("Site index migration failed", "error", err)
		return err
	}
	return nil
}
