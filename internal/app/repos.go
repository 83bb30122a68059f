package app

import (
	"gorm.io/gorm"

	"github.com/angelo-odois/postangelo-sub000/internal/data/repos"
	"github.com/angelo-odois/postangelo-sub000/internal/platform/logger"
)

type Repos struct {
	Page     repos.PageRepo
	Template repos.PageTemplateRepo
	Entry    repos.EntryRepo
}

func wireRepos(db *gorm.DB, log *logger.Logger) Repos {
	log.Info("Wiring repos...")
	return Repos{
		Page:     repos.NewPageRepo(db, log),
		Template: repos.NewPageTemplateRepo(db, log),
		Entry:    repos.NewEntryRepo(db, log),
	}
}
