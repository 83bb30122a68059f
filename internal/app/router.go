package app

import (
	"github.com/angelo-odois/postangelo-sub000/internal/http"
	"github.com/angelo-odois/postangelo-sub000/internal/observability"
	"github.com/angelo-odois/postangelo-sub000/internal/platform/logger"
)

func wireServer(log *logger.Logger, cfg Config, handlers Handlers, middleware Middleware, metrics *observability.Metrics) *http.Server {
	return http.NewServer(http.RouterConfig{
		Log:             log,
		Metrics:         metrics,
		ServiceName:     otelServiceName(cfg),
		CORSOrigins:     cfg.CORSOrigins,
		RequestTimeout:  cfg.RequestTimeout,
		AuthMiddleware:  middleware.Auth,
		HealthHandler:   handlers.Health,
		PublicHandler:   handlers.Public,
		BlockHandler:    handlers.Block,
		PageHandler:     handlers.Page,
		TemplateHandler: handlers.Template,
		EntryHandler:    handlers.Entry,
	}, ":"+cfg.Port)
}

// otelServiceName is empty when tracing is off so the router skips otelgin.
func otelServiceName(cfg Config) string {
	if !cfg.Otel.Enabled {
		return ""
	}
	return cfg.Otel.ServiceName
}
