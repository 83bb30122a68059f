package repos

import (
	"gorm.io/gorm"

	"github.com/angelo-odois/postangelo-sub000/internal/data/repos/site"
	"github.com/angelo-odois/postangelo-sub000/internal/platform/logger"
)

type PageRepo = site.PageRepo
type PageTemplateRepo = site.PageTemplateRepo
type EntryRepo = site.EntryRepo

func NewPageRepo(db *gorm.DB, baseLog *logger.Logger) PageRepo { return site.NewPageRepo(db, baseLog) }
func NewPageTemplateRepo(db *gorm.DB, baseLog *logger.Logger) PageTemplateRepo {
	return site.NewPageTemplateRepo(db, baseLog)
}
func NewEntryRepo(db *gorm.DB, baseLog *logger.Logger) EntryRepo {
	return site.NewEntryRepo(db, baseLog)
}
