package app

import (
	"gorm.io/gorm"

	"github.com/angelo-odois/postangelo-sub000/internal/cache"
	"github.com/angelo-odois/postangelo-sub000/internal/content/render"
	"github.com/angelo-odois/postangelo-sub000/internal/observability"
	"github.com/angelo-odois/postangelo-sub000/internal/platform/logger"
	"github.com/angelo-odois/postangelo-sub000/internal/services"
)

type Services struct {
	Entitlements services.Entitlements
	Templates    services.TemplateService
	Entries      services.EntryService
	Pages        services.PageService
	Public       services.PublicPageService
}

func wireServices(db *gorm.DB, log *logger.Logger, cfg Config, r Repos, renderer *render.Renderer, store *cache.Store, metrics *observability.Metrics) Services {
	log.Info("Wiring services...")
	ent := services.NewStaticEntitlements(cfg.FeaturesDefault, cfg.PremiumOwners)
	templates := services.NewTemplateService(db, log, renderer.Registry(), r.Template, store)
	entries := services.NewEntryService(db, log, r.Entry, store)
	return Services{
		Entitlements: ent,
		Templates:    templates,
		Entries:      entries,
		Pages:        services.NewPageService(db, log, renderer, r.Page, templates, entries, ent, store, metrics),
		Public:       services.NewPublicPageService(db, log, renderer, r.Page, entries, ent, store),
	}
}
