package middleware

import (
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel/trace"

	"github.com/angelo-odois/postangelo-sub000/internal/observability"
	"github.com/angelo-odois/postangelo-sub000/internal/platform/ctxutil"
	"github.com/angelo-odois/postangelo-sub000/internal/platform/logger"
)

const (
	HeaderTraceID   = "X-Trace-Id"
	HeaderRequestID = "X-Request-Id"
)

// Correlate stamps each request with a request id and a trace id and echoes both back.
// Caller supplied ids win, then the active span, then a fresh uuid.
func Correlate() gin.HandlerFunc {
	return func(c *gin.Context) {
		ids := ctxutil.Correlation{
			RequestID: firstNonEmpty(c.GetHeader(HeaderRequestID)),
			TraceID:   firstNonEmpty(c.GetHeader(HeaderTraceID), spanTraceID(c)),
		}
		if ids.RequestID == "" {
			ids.RequestID = uuid.NewString()
		}
		if ids.TraceID == "" {
			ids.TraceID = uuid.NewString()
		}
		c.Request = c.Request.WithContext(ctxutil.WithCorrelation(c.Request.Context(), ids))
		c.Header(HeaderTraceID, ids.TraceID)
		c.Header(HeaderRequestID, ids.RequestID)
		c.Next()
	}
}

func spanTraceID(c *gin.Context) string {
	sc := trace.SpanContextFromContext(c.Request.Context())
	if !sc.HasTraceID() {
		return ""
	}
	return sc.TraceID().String()
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v = strings.TrimSpace(v); v != "" {
			return v
		}
	}
	return ""
}

// AccessLog writes one line per request once the handler chain is done. The level follows the
// status class.
func AccessLog(log *logger.Logger) gin.HandlerFunc {
	if log == nil {
		return func(c *gin.Context) { c.Next() }
	}
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		status := c.Writer.Status()
		fields := append([]any{
			"method", c.Request.Method,
			"route", routeOf(c, c.Request.URL.Path),
			"status", status,
			"duration_ms", time.Since(start).Milliseconds(),
		}, ctxutil.LogFields(c.Request.Context())...)

		switch {
		case status >= 500:
			log.Error("request", fields...)
		case status >= 400:
			log.Warn("request", fields...)
		default:
			log.Info("request", fields...)
		}
	}
}

// Instrument feeds request counts, latency and the inflight gauge. Unmatched routes share one
// label so scanners cannot blow up cardinality.
func Instrument(m *observability.Metrics) gin.HandlerFunc {
	if m == nil {
		return func(c *gin.Context) { c.Next() }
	}
	return func(c *gin.Context) {
		m.ApiInflightInc()
		defer m.ApiInflightDec()
		start := time.Now()
		c.Next()
		m.ObserveAPI(c.Request.Method, routeOf(c, "unmatched"), strconv.Itoa(c.Writer.Status()), time.Since(start))
	}
}

func routeOf(c *gin.Context, fallback string) string {
	if r := c.FullPath(); r != "" {
		return r
	}
	return fallback
}
