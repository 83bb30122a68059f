package app

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/viper"

	"github.com/angelo-odois/postangelo-sub000/internal/content/render"
	"github.com/angelo-odois/postangelo-sub000/internal/data/db"
	"github.com/angelo-odois/postangelo-sub000/internal/observability"
	"github.com/angelo-odois/postangelo-sub000/internal/platform/logger"
)

const (
	CacheMemory    = "memory"
	CacheRedis     = "redis"
	CacheBroadcast = "broadcast"
	CacheNone      = "none"
)

type Config struct {
	Port     string
	LogMode  string
	LogLevel string

	DB db.Config

	RedisAddr      string
	RedisPassword  string
	RedisDB        int
	CacheBackend   string
	CacheNamespace string

	JWTSecretKey string
	JWTIssuer    string

	Otel             observability.OtelConfig
	MetricsEnabled   bool
	MetricsAddr      string
	MetricsInterval  time.Duration
	CORSOrigins      []string
	RequestTimeout   time.Duration
	FeaturesDefault  render.Features
	PremiumOwners    []uuid.UUID
	TemplatesSeedDir string
}

// SetDefaults registers every key with its default so AutomaticEnv can find it.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("PORT", "8080")
	v.SetDefault("LOG_MODE", "development")
	v.SetDefault("LOG_LEVEL", "")

	v.SetDefault("DB_DRIVER", db.DriverPostgres)
	v.SetDefault("DATABASE_URL", "")
	v.SetDefault("SQLITE_PATH", "postangelo.db")
	v.SetDefault("POSTGRES_HOST", "localhost")
	v.SetDefault("POSTGRES_PORT", "5432")
	v.SetDefault("POSTGRES_USER", "postgres")
	v.SetDefault("POSTGRES_PASSWORD", "")
	v.SetDefault("POSTGRES_NAME", "postangelo")
	v.SetDefault("POSTGRES_SSLMODE", "disable")
	v.SetDefault("DB_MAX_OPEN_CONNS", 20)
	v.SetDefault("DB_MAX_IDLE_CONNS", 5)
	v.SetDefault("DB_CONN_MAX_LIFETIME", "30m")

	v.SetDefault("REDIS_ADDR", "")
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("REDIS_DB", 0)
	v.SetDefault("CACHE_BACKEND", "")
	v.SetDefault("CACHE_NAMESPACE", "pa")

	v.SetDefault("JWT_SECRET_KEY", "")
	v.SetDefault("JWT_ISSUER", "")

	v.SetDefault("OTEL_ENABLED", false)
	v.SetDefault("OTEL_SERVICE_NAME", "postangelo")
	v.SetDefault("OTEL_EXPORTER_OTLP_ENDPOINT", "")
	v.SetDefault("OTEL_EXPORTER_OTLP_HEADERS", "")
	v.SetDefault("OTEL_EXPORTER_OTLP_INSECURE", false)
	v.SetDefault("OTEL_SAMPLE_RATIO", 1.0)
	v.SetDefault("APP_ENV", "development")
	v.SetDefault("APP_VERSION", "dev")

	v.SetDefault("METRICS_ENABLED", true)
	v.SetDefault("METRICS_ADDR", "")
	v.SetDefault("METRICS_SCRAPE_INTERVAL", "10s")

	v.SetDefault("CORS_ORIGINS", "")
	v.SetDefault("REQUEST_TIMEOUT", "10s")
	v.SetDefault("FEATURES_DEFAULT", "")
	v.SetDefault("PREMIUM_OWNERS", "")
	v.SetDefault("TEMPLATES_SEED_DIR", "")
}

// NewViper reads the environment and, when path is set, a config file. Env wins over the file.
func NewViper(path string) (*viper.Viper, error) {
	v := viper.New()
	SetDefaults(v)
	v.AutomaticEnv()
	if strings.TrimSpace(path) != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
	}
	return v, nil
}

func LoadConfig(v *viper.Viper, log *logger.Logger) (Config, error) {
	cfg := Config{
		Port:     strings.TrimSpace(v.GetString("PORT")),
		LogMode:  v.GetString("LOG_MODE"),
		LogLevel: v.GetString("LOG_LEVEL"),

		DB: db.Config{
			Driver:          strings.ToLower(strings.TrimSpace(v.GetString("DB_DRIVER"))),
			MaxOpenConns:    v.GetInt("DB_MAX_OPEN_CONNS"),
			MaxIdleConns:    v.GetInt("DB_MAX_IDLE_CONNS"),
			ConnMaxLifetime: v.GetDuration("DB_CONN_MAX_LIFETIME"),
		},

		RedisAddr:      strings.TrimSpace(v.GetString("REDIS_ADDR")),
		RedisPassword:  v.GetString("REDIS_PASSWORD"),
		RedisDB:        v.GetInt("REDIS_DB"),
		CacheBackend:   strings.ToLower(strings.TrimSpace(v.GetString("CACHE_BACKEND"))),
		CacheNamespace: strings.TrimSpace(v.GetString("CACHE_NAMESPACE")),

		JWTSecretKey: v.GetString("JWT_SECRET_KEY"),
		JWTIssuer:    v.GetString("JWT_ISSUER"),

		Otel: observability.OtelConfig{
			Enabled:     v.GetBool("OTEL_ENABLED"),
			ServiceName: v.GetString("OTEL_SERVICE_NAME"),
			Environment: v.GetString("APP_ENV"),
			Version:     v.GetString("APP_VERSION"),
			Endpoint:    v.GetString("OTEL_EXPORTER_OTLP_ENDPOINT"),
			Headers:     observability.ParseHeaders(v.GetString("OTEL_EXPORTER_OTLP_HEADERS")),
			Insecure:    v.GetBool("OTEL_EXPORTER_OTLP_INSECURE"),
			SampleRatio: v.GetFloat64("OTEL_SAMPLE_RATIO"),
		},
		MetricsEnabled:   v.GetBool("METRICS_ENABLED"),
		MetricsAddr:      strings.TrimSpace(v.GetString("METRICS_ADDR")),
		MetricsInterval:  v.GetDuration("METRICS_SCRAPE_INTERVAL"),
		CORSOrigins:      splitList(v.GetString("CORS_ORIGINS")),
		RequestTimeout:   v.GetDuration("REQUEST_TIMEOUT"),
		TemplatesSeedDir: strings.TrimSpace(v.GetString("TEMPLATES_SEED_DIR")),
	}

	switch cfg.DB.Driver {
	case db.DriverSQLite:
		cfg.DB.DSN = v.GetString("SQLITE_PATH")
	default:
		cfg.DB.DSN = strings.TrimSpace(v.GetString("DATABASE_URL"))
		if cfg.DB.DSN == "" {
			cfg.DB.DSN = postgresDSN(v)
		}
	}

	if cfg.CacheBackend == "" {
		cfg.CacheBackend = CacheMemory
		if cfg.RedisAddr != "" {
			cfg.CacheBackend = CacheRedis
		}
	}

	var errs []error
	for _, f := range splitList(v.GetString("FEATURES_DEFAULT")) {
		switch f {
		case "hide_branding":
			cfg.FeaturesDefault.HideBranding = true
		case "premium_templates":
			cfg.FeaturesDefault.PremiumTemplates = true
		default:
			errs = append(errs, fmt.Errorf("FEATURES_DEFAULT: unknown feature %q", f))
		}
	}
	for _, raw := range splitList(v.GetString("PREMIUM_OWNERS")) {
		id, err := uuid.Parse(raw)
		if err != nil {
			errs = append(errs, fmt.Errorf("PREMIUM_OWNERS: %q is not a uuid", raw))
			continue
		}
		cfg.PremiumOwners = append(cfg.PremiumOwners, id)
	}
	errs = append(errs, cfg.validate()...)
	if err := errors.Join(errs...); err != nil {
		return Config{}, err
	}

	if cfg.JWTSecretKey == "" && log != nil {
		log.Warn("JWT_SECRET_KEY is empty; authenticated routes will reject every request")
	}
	return cfg, nil
}

func (cfg Config) validate() []error {
	var errs []error
	if cfg.Port == "" {
		errs = append(errs, errors.New("PORT is required"))
	}
	switch cfg.CacheBackend {
	case CacheMemory, CacheNone:
	case CacheRedis, CacheBroadcast:
		if cfg.RedisAddr == "" {
			errs = append(errs, fmt.Errorf("CACHE_BACKEND=%s needs REDIS_ADDR", cfg.CacheBackend))
		}
	default:
		errs = append(errs, fmt.Errorf("CACHE_BACKEND: unknown backend %q", cfg.CacheBackend))
	}
	if cfg.DB.Driver != db.DriverPostgres && cfg.DB.Driver != db.DriverSQLite {
		errs = append(errs, fmt.Errorf("DB_DRIVER: unsupported driver %q", cfg.DB.Driver))
	}
	return errs
}

func postgresDSN(v *viper.Viper) string {
	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(v.GetString("POSTGRES_USER"), v.GetString("POSTGRES_PASSWORD")),
		Host:     v.GetString("POSTGRES_HOST") + ":" + v.GetString("POSTGRES_PORT"),
		Path:     "/" + v.GetString("POSTGRES_NAME"),
		RawQuery: "sslmode=" + url.QueryEscape(v.GetString("POSTGRES_SSLMODE")),
	}
	return u.String()
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
