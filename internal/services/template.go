package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/angelo-odois/postangelo-sub000/internal/cache"
	"github.com/angelo-odois/postangelo-sub000/internal/content"
	"github.com/angelo-odois/postangelo-sub000/internal/data/repos"
	types "github.com/angelo-odois/postangelo-sub000/internal/domain"
	"github.com/angelo-odois/postangelo-sub000/internal/platform/apierr"
	"github.com/angelo-odois/postangelo-sub000/internal/platform/dbctx"
	"github.com/angelo-odois/postangelo-sub000/internal/platform/logger"
)

// TemplateSummary is a catalog row. The document itself is only served by slug.
type TemplateSummary struct {
	ID           uuid.UUID `json:"id"`
	Name         string    `json:"name"`
	Slug         string    `json:"slug"`
	Description  string    `json:"description,omitempty"`
	Category     string    `json:"category"`
	DefaultTitle string    `json:"default_title,omitempty"`
	ThumbnailURL string    `json:"thumbnail_url,omitempty"`
	IsPremium    bool      `json:"is_premium"`
	Order        int       `json:"order"`
}

type TemplateInput struct {
	Name         string          `json:"name"`
	Slug         string          `json:"slug"`
	Description  string          `json:"description"`
	Category     string          `json:"category"`
	Content      json.RawMessage `json:"content"`
	DefaultTitle string          `json:"default_title"`
	ThumbnailURL string          `json:"thumbnail_url"`
	IsPremium    bool            `json:"is_premium"`
	Order        int             `json:"order"`
	IsActive     *bool           `json:"is_active"`
}

type TemplateService interface {
	Catalog(ctx context.Context, category string) ([]TemplateSummary, error)
	// GetBySlug returns an active template.
	GetBySlug(ctx context.Context, slug string) (*types.PageTemplate, error)

	ListAll(ctx context.Context) ([]*types.PageTemplate, error)
	Create(ctx context.Context, in TemplateInput) (*types.PageTemplate, error)
	Update(ctx context.Context, id uuid.UUID, in TemplateInput) (*types.PageTemplate, error)
	Delete(ctx context.Context, id uuid.UUID) error
	// Seed upserts templates by slug, validating every document first.
	Seed(ctx context.Context, rows []*types.PageTemplate) error
}

type templateService struct {
	db           *gorm.DB
	log          *logger.Logger
	reg          *content.Registry
	templateRepo repos.PageTemplateRepo
	cache        *cache.Store
}

func NewTemplateService(db *gorm.DB, log *logger.Logger, reg *content.Registry, templateRepo repos.PageTemplateRepo, store *cache.Store) TemplateService {
	return &templateService{
		db:           db,
		log:          log.With("service", "TemplateService"),
		reg:          reg,
		templateRepo: templateRepo,
		cache:        store,
	}
}

// Instantiate builds an unsaved page from a template. A nil template yields an empty document.
// The copy gets fresh block ids throughout and the template row is left untouched.
func Instantiate(reg *content.Registry, t *types.PageTemplate, title, slug string) (*types.Page, error) {
	page := &types.Page{Title: strings.TrimSpace(title), Slug: slug}
	doc := content.Empty()
	if t != nil {
		src, err := content.Decode(reg, t.ContentJSON)
		if err != nil {
			return nil, fmt.Errorf("template %q: %w", t.Slug, err)
		}
		doc = content.CloneWithFreshIDs(src)
		id := t.ID
		page.TemplateID = &id
		if page.Title == "" {
			page.Title = firstNonEmpty(t.DefaultTitle, t.Name)
		}
	}
	if page.Title == "" {
		page.Title = "Untitled page"
	}
	raw, err := doc.Bytes()
	if err != nil {
		return nil, err
	}
	page.ContentJSON = datatypes.JSON(raw)
	return page, nil
}

func (s *templateService) Catalog(ctx context.Context, category string) ([]TemplateSummary, error) {
	category = strings.TrimSpace(category)
	return cache.RememberJSON(ctx, s.cache, cache.TemplateCatalogKey(category), cache.TTLTemplates, func(ctx context.Context) ([]TemplateSummary, error) {
		rows, err := s.templateRepo.ListActive(dbctx.Context{Ctx: ctx}, category)
		if err != nil {
			return nil, repos.MapError("template.list", err)
		}
		out := make([]TemplateSummary, 0, len(rows))
		for _, t := range rows {
			out = append(out, summarize(t))
		}
		return out, nil
	})
}

func (s *templateService) GetBySlug(ctx context.Context, slug string) (*types.PageTemplate, error) {
	slug = strings.TrimSpace(slug)
	if slug == "" {
		return nil, apierr.BadRequest(errors.New("template slug is required"))
	}
	t, err := cache.RememberJSON(ctx, s.cache, cache.TemplateSlugKey(slug), cache.TTLTemplates, func(ctx context.Context) (*types.PageTemplate, error) {
		row, err := s.templateRepo.GetBySlug(dbctx.Context{Ctx: ctx}, slug)
		if err != nil {
			return nil, repos.MapError("template.get", err)
		}
		if row == nil || !row.IsActive {
			// misses are not cached; Remember only stores successful loads
			return nil, apierr.NotFound(fmt.Errorf("template %q not found", slug))
		}
		return row, nil
	})
	if err != nil {
		return nil, err
	}
	return t, nil
}

func (s *templateService) ListAll(ctx context.Context) ([]*types.PageTemplate, error) {
	rows, err := s.templateRepo.ListAll(dbctx.Context{Ctx: ctx})
	if err != nil {
		return nil, repos.MapError("template.list", err)
	}
	return rows, nil
}

func (s *templateService) Create(ctx context.Context, in TemplateInput) (*types.PageTemplate, error) {
	row := &types.PageTemplate{IsActive: true}
	if err := s.apply(row, in); err != nil {
		return nil, err
	}
	if _, err := s.templateRepo.Create(dbctx.Context{Ctx: ctx}, []*types.PageTemplate{row}); err != nil {
		return nil, repos.MapError("template.create", err)
	}
	s.cache.Invalidate(ctx, cache.TemplatesPrefix)
	s.log.Info("Template created", "slug", row.Slug)
	return row, nil
}

func (s *templateService) Update(ctx context.Context, id uuid.UUID, in TemplateInput) (*types.PageTemplate, error) {
	dbc := dbctx.Context{Ctx: ctx}
	row, err := s.templateRepo.GetByID(dbc, id)
	if err != nil {
		return nil, repos.MapError("template.get", err)
	}
	if row == nil {
		return nil, apierr.NotFound(errors.New("template not found"))
	}
	if err := s.apply(row, in); err != nil {
		return nil, err
	}
	row.UpdatedAt = time.Now().UTC()
	if err := s.templateRepo.Update(dbc, row); err != nil {
		return nil, repos.MapError("template.update", err)
	}
	s.cache.Invalidate(ctx, cache.TemplatesPrefix)
	return row, nil
}

func (s *templateService) Delete(ctx context.Context, id uuid.UUID) error {
	dbc := dbctx.Context{Ctx: ctx}
	row, err := s.templateRepo.GetByID(dbc, id)
	if err != nil {
		return repos.MapError("template.get", err)
	}
	if row == nil {
		return apierr.NotFound(errors.New("template not found"))
	}
	if err := s.templateRepo.SoftDeleteByIDs(dbc, []uuid.UUID{id}); err != nil {
		return repos.MapError("template.delete", err)
	}
	s.cache.Invalidate(ctx, cache.TemplatesPrefix)
	return nil
}

func (s *templateService) Seed(ctx context.Context, rows []*types.PageTemplate) error {
	var errs []error
	var invalid []error
	for _, t := range rows {
		slug, err := normalizeSlug(t.Slug)
		if err != nil {
			errs = append(errs, fmt.Errorf("template %q: %w", t.Slug, err))
			continue
		}
		t.Slug = slug
		if strings.TrimSpace(t.Name) == "" {
			errs = append(errs, fmt.Errorf("template %q: name is required", t.Slug))
		}
		if t.Category == "" {
			t.Category = "general"
		}
		if _, err := content.Validate(s.reg, t.ContentJSON); err != nil {
			invalid = append(invalid, fmt.Errorf("template %q: %w", t.Slug, err))
		}
	}
	if err := errors.Join(invalid...); err != nil {
		return invalidDocument(errors.Join(append(errs, invalid...)...))
	}
	if err := errors.Join(errs...); err != nil {
		return apierr.BadRequest(err)
	}
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		dbc := dbctx.Context{Ctx: ctx, Tx: tx}
		for _, t := range rows {
			t.UpdatedAt = time.Now().UTC()
			if err := s.templateRepo.UpsertBySlug(dbc, t); err != nil {
				return fmt.Errorf("upsert %q: %w", t.Slug, err)
			}
		}
		return nil
	})
	if err != nil {
		return repos.MapError("template.seed", err)
	}
	s.cache.Invalidate(ctx, cache.TemplatesPrefix)
	s.log.Info("Templates seeded", "count", len(rows))
	return nil
}

func (s *templateService) apply(row *types.PageTemplate, in TemplateInput) error {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return apierr.BadRequest(errors.New("name is required"))
	}
	slug, err := normalizeSlug(in.Slug)
	if err != nil {
		return err
	}
	raw := []byte(in.Content)
	if len(raw) == 0 {
		raw = []byte(`{"blocks":[]}`)
	}
	if _, err := content.Validate(s.reg, raw); err != nil {
		return invalidDocument(err)
	}
	row.Name = name
	row.Slug = slug
	row.Description = strings.TrimSpace(in.Description)
	row.Category = firstNonEmpty(strings.TrimSpace(in.Category), "general")
	row.ContentJSON = datatypes.JSON(raw)
	row.DefaultTitle = strings.TrimSpace(in.DefaultTitle)
	row.ThumbnailURL = strings.TrimSpace(in.ThumbnailURL)
	row.IsPremium = in.IsPremium
	row.Order = in.Order
	if in.IsActive != nil {
		row.IsActive = *in.IsActive
	}
	return nil
}

func summarize(t *types.PageTemplate) TemplateSummary {
	return TemplateSummary{
		ID:           t.ID,
		Name:         t.Name,
		Slug:         t.Slug,
		Description:  t.Description,
		Category:     t.Category,
		DefaultTitle: t.DefaultTitle,
		ThumbnailURL: t.ThumbnailURL,
		IsPremium:    t.IsPremium,
		Order:        t.Order,
	}
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}
