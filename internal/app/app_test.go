package app

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/angelo-odois/postangelo-sub000/internal/platform/logger"
)

func TestNewWiresSeededCatalog(t *testing.T) {
	gin.SetMode(gin.TestMode)
	cfg, err := load(t, map[string]string{
		"DB_DRIVER":          "sqlite",
		"SQLITE_PATH":        ":memory:",
		"METRICS_ENABLED":    "false",
		"TEMPLATES_SEED_DIR": "../../templates",
	})
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}

	a, err := New(context.Background(), cfg, logger.Nop())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	t.Cleanup(a.Close)

	w := httptest.NewRecorder()
	a.Server.Engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/templates", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("templates: got %d (%s)", w.Code, w.Body.String())
	}
	var body struct {
		Templates []struct {
			Slug string `json:"slug"`
		} `json:"templates"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	want := []string{"developer-portfolio", "link-page", "two-column-landing"}
	if len(body.Templates) != len(want) {
		t.Fatalf("templates: got %+v want %v", body.Templates, want)
	}
	for i, slug := range want {
		if body.Templates[i].Slug != slug {
			t.Fatalf("template %d: got %q want %q", i, body.Templates[i].Slug, slug)
		}
	}

	w = httptest.NewRecorder()
	a.Server.Engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/readyz", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("readyz: got %d (%s)", w.Code, w.Body.String())
	}

	// seeding twice updates in place
	if err := a.SeedTemplates(context.Background(), "../../templates"); err != nil {
		t.Fatalf("reseed: %v", err)
	}
}
