package http

import (
	"bytes"
	"encoding/json"
	stdhttp "net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/angelo-odois/postangelo-sub000/internal/cache"
	"github.com/angelo-odois/postangelo-sub000/internal/content/catalog"
	"github.com/angelo-odois/postangelo-sub000/internal/content/render"
	"github.com/angelo-odois/postangelo-sub000/internal/data/repos"
	"github.com/angelo-odois/postangelo-sub000/internal/data/repos/testutil"
	httpH "github.com/angelo-odois/postangelo-sub000/internal/http/handlers"
	httpMW "github.com/angelo-odois/postangelo-sub000/internal/http/middleware"
	"github.com/angelo-odois/postangelo-sub000/internal/observability"
	"github.com/angelo-odois/postangelo-sub000/internal/platform/logger"
	"github.com/angelo-odois/postangelo-sub000/internal/services"
)

const testSecret = "router-test-secret"

type testAPI struct {
	t       *testing.T
	engine  *gin.Engine
	metrics *observability.Metrics
}

func newTestAPI(t *testing.T) *testAPI {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db := testutil.DB(t)
	log := logger.Nop()
	metrics := observability.NewMetrics(0)
	store := cache.NewStore(cache.NewMemory(), log, metrics)
	renderer := render.New(catalog.Default(), log, render.WithMetrics(metrics))
	ent := services.NewStaticEntitlements(render.Features{}, nil)

	pageRepo := repos.NewPageRepo(db, log)
	templates := services.NewTemplateService(db, log, renderer.Registry(), repos.NewPageTemplateRepo(db, log), store)
	entries := services.NewEntryService(db, log, repos.NewEntryRepo(db, log), store)
	pages := services.NewPageService(db, log, renderer, pageRepo, templates, entries, ent, store, metrics)
	public := services.NewPublicPageService(db, log, renderer, pageRepo, entries, ent, store)

	engine := NewRouter(RouterConfig{
		Log:             log,
		Metrics:         metrics,
		RequestTimeout:  5 * time.Second,
		AuthMiddleware:  httpMW.NewAuthMiddleware(log, testSecret, ""),
		HealthHandler:   httpH.NewHealthHandler(nil),
		PublicHandler:   httpH.NewPublicHandler(public),
		BlockHandler:    httpH.NewBlockHandler(renderer.Registry(), metrics),
		PageHandler:     httpH.NewPageHandler(pages),
		TemplateHandler: httpH.NewTemplateHandler(templates),
		EntryHandler:    httpH.NewEntryHandler(entries),
	})
	return &testAPI{t: t, engine: engine, metrics: metrics}
}

func token(t *testing.T, owner uuid.UUID, role string) string {
	t.Helper()
	claims := httpMW.Claims{
		Role: role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   owner.String(),
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(testSecret))
	require.NoError(t, err)
	return signed
}

func (a *testAPI) do(method, path, bearer string, body any) *httptest.ResponseRecorder {
	a.t.Helper()
	var buf *bytes.Reader
	switch b := body.(type) {
	case nil:
		buf = bytes.NewReader(nil)
	case string:
		buf = bytes.NewReader([]byte(b))
	default:
		raw, err := json.Marshal(b)
		require.NoError(a.t, err)
		buf = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, buf)
	req.Header.Set("Content-Type", "application/json")
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}
	w := httptest.NewRecorder()
	a.engine.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out), w.Body.String())
	return out
}

func slug(prefix string) string {
	return prefix + "-" + uuid.NewString()[:8]
}

const aboutDoc = `{"blocks":[
	{"id":"h1","type":"heading","props":{"text":"Hello from the router"}},
	{"id":"x1","type":"experience","props":{"title":"Work"}}
]}`

func TestPageLifecycleOverHTTP(t *testing.T) {
	api := newTestAPI(t)
	owner := uuid.New()
	tok := token(t, owner, "")
	s := slug("about")

	w := api.do(stdhttp.MethodPost, "/api/pages", tok, gin.H{"title": "About", "slug": s})
	require.Equal(t, stdhttp.StatusCreated, w.Code, w.Body.String())
	page := decode(t, w)["page"].(map[string]any)
	id := page["id"].(string)
	assert.Equal(t, s, page["slug"])

	w = api.do(stdhttp.MethodPut, "/api/pages/"+id+"/content", tok, aboutDoc)
	require.Equal(t, stdhttp.StatusOK, w.Code, w.Body.String())

	w = api.do(stdhttp.MethodPost, "/api/entries", tok, gin.H{"kind": "experience", "title": "Staff Engineer at Acme"})
	require.Equal(t, stdhttp.StatusCreated, w.Code, w.Body.String())

	// drafts are not public
	w = api.do(stdhttp.MethodGet, "/p/"+s, "", nil)
	assert.Equal(t, stdhttp.StatusNotFound, w.Code)
	assert.Contains(t, w.Header().Get("Content-Type"), "text/html")

	w = api.do(stdhttp.MethodPatch, "/api/pages/"+id, tok, gin.H{"published": true})
	require.Equal(t, stdhttp.StatusOK, w.Code, w.Body.String())

	w = api.do(stdhttp.MethodGet, "/p/"+s, "", nil)
	require.Equal(t, stdhttp.StatusOK, w.Code, w.Body.String())
	assert.Contains(t, w.Body.String(), "Hello from the router")
	assert.Contains(t, w.Body.String(), "Staff Engineer at Acme")
	assert.Contains(t, w.Header().Get("Cache-Control"), "max-age=")

	w = api.do(stdhttp.MethodGet, "/api/public/pages/"+s, "", nil)
	require.Equal(t, stdhttp.StatusOK, w.Code, w.Body.String())
	pub := decode(t, w)["page"].(map[string]any)
	assert.NotContains(t, pub, "owner_id")
	assert.Equal(t, "About", pub["title"])

	w = api.do(stdhttp.MethodGet, "/api/pages/"+id+"/content/node?path="+"$.blocks[0].props.text", tok, nil)
	require.Equal(t, stdhttp.StatusOK, w.Code, w.Body.String())
	assert.JSONEq(t, `"Hello from the router"`, w.Body.String())

	w = api.do(stdhttp.MethodDelete, "/api/pages/"+id, tok, nil)
	require.Equal(t, stdhttp.StatusNoContent, w.Code)

	w = api.do(stdhttp.MethodGet, "/p/"+s, "", nil)
	assert.Equal(t, stdhttp.StatusNotFound, w.Code)
}

func TestSaveContentReportsPaths(t *testing.T) {
	api := newTestAPI(t)
	tok := token(t, uuid.New(), "")

	w := api.do(stdhttp.MethodPost, "/api/pages", tok, gin.H{"title": "Bad", "slug": slug("bad")})
	require.Equal(t, stdhttp.StatusCreated, w.Code, w.Body.String())
	id := decode(t, w)["page"].(map[string]any)["id"].(string)

	bad := `{"blocks":[{"id":"a","type":"text"},{"id":"a","type":"text"}]}`
	w = api.do(stdhttp.MethodPut, "/api/pages/"+id+"/content", tok, bad)
	require.Equal(t, stdhttp.StatusUnprocessableEntity, w.Code, w.Body.String())
	env := decode(t, w)["error"].(map[string]any)
	assert.Equal(t, "invalid_document", env["code"])
	assert.Equal(t, "$.blocks[1].id", env["path"])
	assert.Len(t, env["details"], 1)

	w = api.do(stdhttp.MethodPut, "/api/pages/"+id+"/content", tok, strings.Repeat(" ", 3<<20))
	assert.Equal(t, stdhttp.StatusRequestEntityTooLarge, w.Code)
}

func TestAuthBoundaries(t *testing.T) {
	api := newTestAPI(t)
	owner := uuid.New()

	w := api.do(stdhttp.MethodGet, "/api/pages", "", nil)
	assert.Equal(t, stdhttp.StatusUnauthorized, w.Code)

	w = api.do(stdhttp.MethodGet, "/api/pages", "not-a-jwt", nil)
	assert.Equal(t, stdhttp.StatusUnauthorized, w.Code)

	w = api.do(stdhttp.MethodGet, "/api/admin/templates", token(t, owner, ""), nil)
	assert.Equal(t, stdhttp.StatusForbidden, w.Code)

	w = api.do(stdhttp.MethodGet, "/api/admin/templates", token(t, owner, "admin"), nil)
	assert.Equal(t, stdhttp.StatusOK, w.Code)

	// another owner's page looks missing
	w = api.do(stdhttp.MethodPost, "/api/pages", token(t, owner, ""), gin.H{"title": "Mine", "slug": slug("mine")})
	require.Equal(t, stdhttp.StatusCreated, w.Code, w.Body.String())
	id := decode(t, w)["page"].(map[string]any)["id"].(string)
	w = api.do(stdhttp.MethodGet, "/api/pages/"+id, token(t, uuid.New(), ""), nil)
	assert.Equal(t, stdhttp.StatusNotFound, w.Code)

	w = api.do(stdhttp.MethodGet, "/api/pages/not-a-uuid", token(t, owner, ""), nil)
	assert.Equal(t, stdhttp.StatusBadRequest, w.Code)
}

func TestTemplateCatalogOverHTTP(t *testing.T) {
	api := newTestAPI(t)
	admin := token(t, uuid.New(), "admin")
	tslug := slug("minimal")

	w := api.do(stdhttp.MethodPost, "/api/admin/templates", admin, gin.H{
		"name":     "Minimal",
		"slug":     tslug,
		"category": "portfolio",
		"content":  json.RawMessage(aboutDoc),
	})
	require.Equal(t, stdhttp.StatusCreated, w.Code, w.Body.String())

	w = api.do(stdhttp.MethodGet, "/api/templates?category=portfolio", "", nil)
	require.Equal(t, stdhttp.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), tslug)

	owner := token(t, uuid.New(), "")
	w = api.do(stdhttp.MethodPost, "/api/pages", owner, gin.H{"slug": slug("from-tmpl"), "template": tslug})
	require.Equal(t, stdhttp.StatusCreated, w.Code, w.Body.String())
	page := decode(t, w)["page"].(map[string]any)
	assert.Equal(t, "Minimal", page["title"])
	assert.NotContains(t, mustJSON(t, page["content"]), `"id":"h1"`)

	w = api.do(stdhttp.MethodPost, "/api/admin/templates", admin, gin.H{
		"name":    "Broken",
		"slug":    slug("broken"),
		"content": json.RawMessage(`{"blocks":[{"type":"text"}]}`),
	})
	assert.Equal(t, stdhttp.StatusUnprocessableEntity, w.Code)
}

func TestBlockPaletteAndDryRunValidation(t *testing.T) {
	api := newTestAPI(t)

	w := api.do(stdhttp.MethodGet, "/api/blocks", "", nil)
	require.Equal(t, stdhttp.StatusOK, w.Code)
	assert.Len(t, decode(t, w)["types"], len(catalog.Types()))

	w = api.do(stdhttp.MethodGet, "/api/blocks/heading", "", nil)
	require.Equal(t, stdhttp.StatusOK, w.Code)
	block := decode(t, w)["block"].(map[string]any)
	assert.Equal(t, "heading", block["type"])
	assert.NotEmpty(t, block["id"])

	w = api.do(stdhttp.MethodGet, "/api/blocks/carousel", "", nil)
	assert.Equal(t, stdhttp.StatusNotFound, w.Code)

	w = api.do(stdhttp.MethodPost, "/api/content/validate", "", aboutDoc)
	require.Equal(t, stdhttp.StatusOK, w.Code, w.Body.String())
	assert.EqualValues(t, 2, decode(t, w)["blocks"])

	w = api.do(stdhttp.MethodPost, "/api/content/validate", "", `{"blocks":`)
	assert.Equal(t, stdhttp.StatusUnprocessableEntity, w.Code)
	assert.Equal(t, "$", decode(t, w)["error"].(map[string]any)["path"])
}

func TestHealthAndMetrics(t *testing.T) {
	api := newTestAPI(t)

	w := api.do(stdhttp.MethodGet, "/healthcheck", "", nil)
	assert.Equal(t, stdhttp.StatusOK, w.Code)
	w = api.do(stdhttp.MethodGet, "/readyz", "", nil)
	assert.Equal(t, stdhttp.StatusOK, w.Code)

	w = api.do(stdhttp.MethodGet, "/metrics", "", nil)
	require.Equal(t, stdhttp.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `pa_api_requests_total{method="GET",route="/healthcheck",status="200"}`)
}

func mustJSON(t *testing.T, v any) string {
	t.Helper()
	raw, err := json.Marshal(v)
	require.NoError(t, err)
	return string(raw)
}
