package app

import (
	"context"
	"errors"
	"fmt"

	"github.com/angelo-odois/postangelo-sub000/internal/cache"
	"github.com/angelo-odois/postangelo-sub000/internal/content/catalog"
	"github.com/angelo-odois/postangelo-sub000/internal/content/render"
	"github.com/angelo-odois/postangelo-sub000/internal/data/db"
	"github.com/angelo-odois/postangelo-sub000/internal/data/seed"
	"github.com/angelo-odois/postangelo-sub000/internal/http"
	"github.com/angelo-odois/postangelo-sub000/internal/observability"
	"github.com/angelo-odois/postangelo-sub000/internal/platform/logger"
)

type App struct {
	Log      *logger.Logger
	Cfg      Config
	DB       *db.Service
	Clients  Clients
	Metrics  *observability.Metrics
	Store    *cache.Store
	Renderer *render.Renderer
	Repos    Repos
	Services Services
	Server   *http.Server

	cancel       context.CancelFunc
	shutdownOtel func(context.Context) error
}

func New(ctx context.Context, cfg Config, log *logger.Logger) (*App, error) {
	shutdownOtel := observability.InitOTel(ctx, log, cfg.Otel)
	metrics := observability.Init(log, cfg.MetricsEnabled, cfg.MetricsInterval)

	dbs, err := db.NewService(cfg.DB, log)
	if err != nil {
		return nil, fmt.Errorf("init database: %w", err)
	}
	if err := dbs.AutoMigrateAll(); err != nil {
		_ = dbs.Close()
		return nil, fmt.Errorf("database automigrate: %w", err)
	}

	clients, err := wireClients(log, cfg)
	if err != nil {
		_ = dbs.Close()
		return nil, err
	}

	store := cache.NewStore(clients.Cache, log, metrics)
	renderer := render.New(catalog.Default(), log, render.WithMetrics(metrics))
	reposet := wireRepos(dbs.DB(), log)
	serviceset := wireServices(dbs.DB(), log, cfg, reposet, renderer, store, metrics)

	a := &App{
		Log:          log,
		Cfg:          cfg,
		DB:           dbs,
		Clients:      clients,
		Metrics:      metrics,
		Store:        store,
		Renderer:     renderer,
		Repos:        reposet,
		Services:     serviceset,
		shutdownOtel: shutdownOtel,
	}
	handlerset := wireHandlers(log, serviceset, renderer.Registry(), metrics, a.pingers())
	middleware := wireMiddleware(log, cfg)
	a.Server = wireServer(log, cfg, handlerset, middleware, metrics)

	if cfg.TemplatesSeedDir != "" {
		if err := a.SeedTemplates(ctx, cfg.TemplatesSeedDir); err != nil {
			a.Close()
			return nil, fmt.Errorf("seed templates: %w", err)
		}
	}
	return a, nil
}

// Start launches background work: metrics collectors, the invalidation forwarder and the
// standalone metrics listener.
func (a *App) Start(ctx context.Context) error {
	if a == nil || a.cancel != nil {
		return nil
	}
	ctx, cancel := context.WithCancel(ctx)
	a.cancel = cancel

	a.Metrics.StartPostgresCollector(ctx, a.Log, a.DB.DB())
	a.Metrics.StartRedisCollector(ctx, a.Log, a.Clients.Redis)
	a.Metrics.StartServer(ctx, a.Log, a.Cfg.MetricsAddr)

	if a.Clients.Broadcast != nil {
		if err := a.Clients.Broadcast.StartForwarder(ctx); err != nil {
			return fmt.Errorf("start invalidation forwarder: %w", err)
		}
	}
	return nil
}

// Run serves HTTP until ctx is done.
func (a *App) Run(ctx context.Context) error {
	if a == nil || a.Server == nil {
		return errors.New("app not initialized")
	}
	if err := a.Start(ctx); err != nil {
		return err
	}
	return a.Server.Run(ctx)
}

// SeedTemplates loads every YAML template in dir and upserts them by slug.
func (a *App) SeedTemplates(ctx context.Context, dir string) error {
	rows, err := seed.LoadDir(dir)
	if err != nil {
		return err
	}
	return a.Services.Templates.Seed(ctx, rows)
}

func (a *App) Close() {
	if a == nil {
		return
	}
	if a.cancel != nil {
		a.cancel()
		a.cancel = nil
	}
	if a.shutdownOtel != nil {
		_ = a.shutdownOtel(context.Background())
	}
	a.Clients.Close()
	if a.DB != nil {
		_ = a.DB.Close()
	}
	if a.Log != nil {
		a.Log.Sync()
	}
}
