package http

import (
	"time"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	httpH "github.com/angelo-odois/postangelo-sub000/internal/http/handlers"
	httpMW "github.com/angelo-odois/postangelo-sub000/internal/http/middleware"
	"github.com/angelo-odois/postangelo-sub000/internal/observability"
	"github.com/angelo-odois/postangelo-sub000/internal/platform/logger"
)

type RouterConfig struct {
	Log            *logger.Logger
	Metrics        *observability.Metrics
	ServiceName    string
	CORSOrigins    []string
	RequestTimeout time.Duration

	AuthMiddleware *httpMW.AuthMiddleware

	HealthHandler   *httpH.HealthHandler
	PublicHandler   *httpH.PublicHandler
	BlockHandler    *httpH.BlockHandler
	PageHandler     *httpH.PageHandler
	TemplateHandler *httpH.TemplateHandler
	EntryHandler    *httpH.EntryHandler
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	if cfg.ServiceName != "" {
		r.Use(otelgin.Middleware(cfg.ServiceName))
	}
	r.Use(
		httpMW.Correlate(),
		httpMW.AccessLog(cfg.Log),
		httpMW.Instrument(cfg.Metrics),
		httpMW.RequestTimeout(cfg.RequestTimeout),
		httpMW.CORS(cfg.CORSOrigins),
	)

	// Health
	if cfg.HealthHandler != nil {
		r.GET("/healthcheck", cfg.HealthHandler.HealthCheck)
		r.GET("/readyz", cfg.HealthHandler.Ready)
	}
	if cfg.Metrics != nil {
		r.GET("/metrics", gin.WrapF(cfg.Metrics.WriteHTTP))
	}

	// Public pages
	if cfg.PublicHandler != nil {
		r.GET("/p/:slug", cfg.PublicHandler.RenderPage)
	}

	api := r.Group("/api")
	{
		if cfg.PublicHandler != nil {
			api.GET("/public/pages/:slug", cfg.PublicHandler.GetPage)
		}
		if cfg.BlockHandler != nil {
			api.GET("/blocks", cfg.BlockHandler.ListBlockTypes)
			api.GET("/blocks/:type", cfg.BlockHandler.GetBlockType)
			api.POST("/content/validate", cfg.BlockHandler.ValidateDocument)
		}
		if cfg.TemplateHandler != nil {
			api.GET("/templates", cfg.TemplateHandler.ListTemplates)
			api.GET("/templates/:slug", cfg.TemplateHandler.GetTemplate)
		}
	}

	protected := api.Group("/")
	{
		// Middleware
		if cfg.AuthMiddleware != nil {
			protected.Use(cfg.AuthMiddleware.RequireAuth())
		}

		// Pages
		if cfg.PageHandler != nil {
			protected.GET("/pages", cfg.PageHandler.ListPages)
			protected.POST("/pages", cfg.PageHandler.CreatePage)
			protected.GET("/pages/:id", cfg.PageHandler.GetPage)
			protected.PATCH("/pages/:id", cfg.PageHandler.UpdatePage)
			protected.DELETE("/pages/:id", cfg.PageHandler.DeletePage)
			protected.PUT("/pages/:id/content", cfg.PageHandler.SaveContent)
			protected.GET("/pages/:id/content/node", cfg.PageHandler.GetNode)
			protected.POST("/pages/:id/preview", cfg.PageHandler.Preview)
		}

		// Entries
		if cfg.EntryHandler != nil {
			protected.GET("/entries", cfg.EntryHandler.ListEntries)
			protected.POST("/entries", cfg.EntryHandler.CreateEntry)
			protected.PUT("/entries/:id", cfg.EntryHandler.UpdateEntry)
			protected.DELETE("/entries/:id", cfg.EntryHandler.DeleteEntry)
		}
	}

	admin := protected.Group("/admin")
	{
		if cfg.AuthMiddleware != nil {
			admin.Use(cfg.AuthMiddleware.RequireAdmin())
		}
		if cfg.TemplateHandler != nil {
			admin.GET("/templates", cfg.TemplateHandler.AdminListTemplates)
			admin.POST("/templates", cfg.TemplateHandler.CreateTemplate)
			admin.PUT("/templates/:id", cfg.TemplateHandler.UpdateTemplate)
			admin.DELETE("/templates/:id", cfg.TemplateHandler.DeleteTemplate)
		}
	}

	return r
}
