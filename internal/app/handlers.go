package app

import (
	"context"

	"github.com/angelo-odois/postangelo-sub000/internal/content"
	httpH "github.com/angelo-odois/postangelo-sub000/internal/http/handlers"
	"github.com/angelo-odois/postangelo-sub000/internal/observability"
	"github.com/angelo-odois/postangelo-sub000/internal/platform/logger"
)

type Handlers struct {
	Health   *httpH.HealthHandler
	Public   *httpH.PublicHandler
	Block    *httpH.BlockHandler
	Page     *httpH.PageHandler
	Template *httpH.TemplateHandler
	Entry    *httpH.EntryHandler
}

func wireHandlers(log *logger.Logger, svc Services, reg *content.Registry, metrics *observability.Metrics, pingers map[string]httpH.Pinger) Handlers {
	log.Info("Wiring handlers...")
	return Handlers{
		Health:   httpH.NewHealthHandler(pingers),
		Public:   httpH.NewPublicHandler(svc.Public),
		Block:    httpH.NewBlockHandler(reg, metrics),
		Page:     httpH.NewPageHandler(svc.Pages),
		Template: httpH.NewTemplateHandler(svc.Templates),
		Entry:    httpH.NewEntryHandler(svc.Entries),
	}
}

func (a *App) pingers() map[string]httpH.Pinger {
	out := map[string]httpH.Pinger{
		"database": httpH.PingFunc(func(ctx context.Context) error {
			sqlDB, err := a.DB.DB().DB()
			if err != nil {
				return err
			}
			return sqlDB.PingContext(ctx)
		}),
	}
	if a.Clients.Redis != nil {
		out["redis"] = httpH.PingFunc(func(ctx context.Context) error {
			return a.Clients.Redis.Ping(ctx).Err()
		})
	}
	return out
}
