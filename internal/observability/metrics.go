package observability

import (
	"context"
	"io"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/angelo-odois/postangelo-sub000/internal/platform/logger"
)

// Metrics holds the process counters exposed in Prometheus text format. Every method is safe on
// a nil receiver so callers never check whether metrics are enabled.
type Metrics struct {
	apiRequests   *family
	apiLatency    *family
	apiInflight   *family
	renderLatency *family
	placeholders  *family
	validations   *family
	cacheOps      *family
	invalidations *family
	pgStats       *family
	redisUp       *family
	redisPing     *family

	scrapeInterval time.Duration
}

var (
	initOnce sync.Once
	instance *Metrics
)

func Current() *Metrics {
	return instance
}

// Init builds the process-wide metrics once. It returns nil when disabled.
func Init(log *logger.Logger, enabled bool, scrapeInterval time.Duration) *Metrics {
	if !enabled {
		return nil
	}
	initOnce.Do(func() {
		instance = NewMetrics(scrapeInterval)
		if log != nil {
			log.Info("metrics enabled", "scrape_interval", instance.scrapeInterval.String())
		}
	})
	return instance
}

// NewMetrics builds an unshared instance. Tests use it directly.
func NewMetrics(scrapeInterval time.Duration) *Metrics {
	if scrapeInterval <= 0 {
		scrapeInterval = 10 * time.Second
	}
	return &Metrics{
		apiRequests: newCounter("pa_api_requests_total", "Total API requests by method/route/status.", "method", "route", "status"),
		apiLatency: newHistogram("pa_api_request_duration_seconds", "API request latency in seconds by method/route/status.",
			[]float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2, 5, 10, 30}, "method", "route", "status"),
		apiInflight: newGauge("pa_api_inflight_requests", "In-flight API requests."),
		renderLatency: newHistogram("pa_render_duration_seconds", "Document render latency in seconds by mode/status.",
			[]float64{0.001, 0.0025, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1}, "mode", "status"),
		placeholders:  newCounter("pa_render_placeholders_total", "Blocks replaced by a placeholder, by reason.", "reason"),
		validations:   newCounter("pa_document_validations_total", "Submitted documents by validation result.", "result"),
		cacheOps:      newCounter("pa_cache_operations_total", "Cache operations by op/result.", "op", "result"),
		invalidations: newCounter("pa_cache_invalidations_total", "Pattern invalidations by key family.", "family"),
		pgStats:       newGauge("pa_postgres_pool", "Database pool statistics.", "stat"),
		redisUp:       newGauge("pa_redis_up", "1 when the last redis ping succeeded."),
		redisPing:     newGauge("pa_redis_ping_seconds", "Latency of the last redis ping."),

		scrapeInterval: scrapeInterval,
	}
}

func (m *Metrics) StartServer(ctx context.Context, log *logger.Logger, addr string) {
	if m == nil {
		return
	}
	addr = strings.TrimSpace(addr)
	if addr == "" {
		return
	}
	srv := &http.Server{
		Addr:              addr,
		Handler:           http.HandlerFunc(m.WriteHTTP),
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		_ = srv.Shutdown(shutdownCtx)
		cancel()
	}()
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			if log != nil {
				log.Error("metrics server failed", "error", err, "addr", addr)
			}
		}
	}()
}

func (m *Metrics) WriteHTTP(w http.ResponseWriter, r *http.Request) {
	if m == nil {
		w.WriteHeader(http.StatusServiceUnavailable)
		return
	}
	w.Header().Set("Content-Type", "text/plain; version=0.0.4")
	_ = m.WritePrometheus(w)
}

func (m *Metrics) WritePrometheus(w io.Writer) error {
	if m == nil {
		return nil
	}
	for _, f := range []*family{
		m.apiRequests, m.apiLatency, m.apiInflight,
		m.renderLatency, m.placeholders, m.validations,
		m.cacheOps, m.invalidations,
		m.pgStats, m.redisUp, m.redisPing,
	} {
		if err := f.write(w); err != nil {
			return err
		}
	}
	return nil
}

func (m *Metrics) ObserveAPI(method, route, status string, dur time.Duration) {
	if m == nil {
		return
	}
	if method == "" {
		method = "UNKNOWN"
	}
	if route == "" {
		route = "unknown"
	}
	if status == "" {
		status = "0"
	}
	m.apiRequests.add(1, method, route, status)
	m.apiLatency.observe(dur.Seconds(), method, route, status)
}

func (m *Metrics) ApiInflightInc() {
	if m == nil {
		return
	}
	m.apiInflight.add(1)
}

func (m *Metrics) ApiInflightDec() {
	if m == nil {
		return
	}
	m.apiInflight.add(-1)
}

func (m *Metrics) ObserveRender(mode, status string, dur time.Duration) {
	if m == nil {
		return
	}
	if mode == "" {
		mode = "unknown"
	}
	m.renderLatency.observe(dur.Seconds(), mode, status)
}

func (m *Metrics) IncPlaceholder(reason string) {
	if m == nil {
		return
	}
	m.placeholders.add(1, strings.TrimSpace(reason))
}

func (m *Metrics) IncValidation(ok bool) {
	if m == nil {
		return
	}
	m.validations.add(1, strconv.FormatBool(ok))
}

// ObserveCache records one cache operation. result is hit, miss, ok or error.
func (m *Metrics) ObserveCache(op, result string) {
	if m == nil {
		return
	}
	m.cacheOps.add(1, op, result)
}

// IncInvalidation counts one pattern invalidation under the key family, the text before the
// first colon of the prefix.
func (m *Metrics) IncInvalidation(prefix string) {
	if m == nil {
		return
	}
	family, _, _ := strings.Cut(prefix, ":")
	if family == "" {
		family = "unknown"
	}
	m.invalidations.add(1, family)
}

func (m *Metrics) StartPostgresCollector(ctx context.Context, log *logger.Logger, db *gorm.DB) {
	if m == nil || db == nil {
		return
	}
	go func() {
		ticker := time.NewTicker(m.scrapeInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				sqlDB, err := db.DB()
				if err != nil {
					if log != nil {
						log.Warn("metrics: database stats unavailable", "error", err)
					}
					continue
				}
				stats := sqlDB.Stats()
				m.pgStats.set(float64(stats.OpenConnections), "open_connections")
				m.pgStats.set(float64(stats.InUse), "in_use")
				m.pgStats.set(float64(stats.Idle), "idle")
				m.pgStats.set(float64(stats.WaitCount), "wait_count")
				m.pgStats.set(stats.WaitDuration.Seconds(), "wait_duration_seconds")
				m.pgStats.set(float64(stats.MaxOpenConnections), "max_open_connections")
			}
		}
	}()
}

// StartRedisCollector pings through the shared client rather than dialing its own.
func (m *Metrics) StartRedisCollector(ctx context.Context, log *logger.Logger, rdb redis.UniversalClient) {
	if m == nil || rdb == nil {
		return
	}
	go func() {
		ticker := time.NewTicker(m.scrapeInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				start := time.Now()
				if err := rdb.Ping(ctx).Err(); err != nil {
					m.redisUp.set(0)
					if log != nil {
						log.Warn("metrics: redis ping failed", "error", err)
					}
					continue
				}
				m.redisUp.set(1)
				m.redisPing.set(time.Since(start).Seconds())
			}
		}
	}()
}
