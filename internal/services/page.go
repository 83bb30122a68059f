package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/angelo-odois/postangelo-sub000/internal/cache"
	"github.com/angelo-odois/postangelo-sub000/internal/content"
	"github.com/angelo-odois/postangelo-sub000/internal/content/render"
	"github.com/angelo-odois/postangelo-sub000/internal/data/repos"
	types "github.com/angelo-odois/postangelo-sub000/internal/domain"
	"github.com/angelo-odois/postangelo-sub000/internal/observability"
	"github.com/angelo-odois/postangelo-sub000/internal/platform/apierr"
	"github.com/angelo-odois/postangelo-sub000/internal/platform/dbctx"
	"github.com/angelo-odois/postangelo-sub000/internal/platform/logger"
)

type CreatePageInput struct {
	Title        string `json:"title"`
	Slug         string `json:"slug"`
	TemplateSlug string `json:"template"`
}

// PageMetaInput carries a partial update. Nil fields are left as they are.
type PageMetaInput struct {
	Title       *string `json:"title"`
	Slug        *string `json:"slug"`
	Description *string `json:"description"`
	Published   *bool   `json:"published"`
}

type PageService interface {
	Create(ctx context.Context, in CreatePageInput) (*types.Page, error)
	List(ctx context.Context) ([]*types.Page, error)
	Get(ctx context.Context, id uuid.UUID) (*types.Page, error)
	UpdateMeta(ctx context.Context, id uuid.UUID, in PageMetaInput) (*types.Page, error)
	// SaveContent validates and stores a whole document. Nothing is written when validation fails.
	SaveContent(ctx context.Context, id uuid.UUID, raw []byte) (*types.Page, error)
	Node(ctx context.Context, id uuid.UUID, path string) (json.RawMessage, error)
	// Preview renders the page in draft mode, or raw in its place when given. It is never cached.
	Preview(ctx context.Context, id uuid.UUID, raw []byte) ([]byte, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type pageService struct {
	db           *gorm.DB
	log          *logger.Logger
	renderer     *render.Renderer
	pageRepo     repos.PageRepo
	templates    TemplateService
	entries      EntryService
	entitlements Entitlements
	cache        *cache.Store
	metrics      *observability.Metrics
}

func NewPageService(
	db *gorm.DB,
	log *logger.Logger,
	renderer *render.Renderer,
	pageRepo repos.PageRepo,
	templates TemplateService,
	entries EntryService,
	entitlements Entitlements,
	store *cache.Store,
	metrics *observability.Metrics,
) PageService {
	return &pageService{
		db:           db,
		log:          log.With("service", "PageService"),
		renderer:     renderer,
		pageRepo:     pageRepo,
		templates:    templates,
		entries:      entries,
		entitlements: entitlements,
		cache:        store,
		metrics:      metrics,
	}
}

func (s *pageService) Create(ctx context.Context, in CreatePageInput) (*types.Page, error) {
	owner, err := ownerFrom(ctx)
	if err != nil {
		return nil, err
	}
	slug, err := normalizeSlug(in.Slug)
	if err != nil {
		return nil, err
	}

	var tmpl *types.PageTemplate
	if ts := strings.TrimSpace(in.TemplateSlug); ts != "" {
		tmpl, err = s.templates.GetBySlug(ctx, ts)
		if err != nil {
			return nil, err
		}
		if tmpl.IsPremium && !s.entitlements.Features(ctx, owner).PremiumTemplates {
			return nil, apierr.Forbidden(fmt.Errorf("template %q requires the premium_templates feature", tmpl.Slug))
		}
	}

	dbc := dbctx.Context{Ctx: ctx}
	taken, err := s.pageRepo.SlugTaken(dbc, slug, uuid.Nil)
	if err != nil {
		return nil, repos.MapError("page.slug", err)
	}
	if taken {
		return nil, apierr.Conflict(fmt.Errorf("slug %q is taken", slug))
	}

	page, err := Instantiate(s.renderer.Registry(), tmpl, in.Title, slug)
	if err != nil {
		return nil, err
	}
	page.OwnerID = owner
	// a racing create with the same slug fails on the unique index and maps to a conflict
	if _, err := s.pageRepo.Create(dbc, []*types.Page{page}); err != nil {
		return nil, repos.MapError("page.create", err)
	}
	s.log.Info("Page created", "page_id", page.ID, "owner_id", owner, "template", in.TemplateSlug)
	return page, nil
}

func (s *pageService) List(ctx context.Context) ([]*types.Page, error) {
	owner, err := ownerFrom(ctx)
	if err != nil {
		return nil, err
	}
	rows, err := s.pageRepo.ListByOwner(dbctx.Context{Ctx: ctx}, owner)
	if err != nil {
		return nil, repos.MapError("page.list", err)
	}
	return rows, nil
}

func (s *pageService) Get(ctx context.Context, id uuid.UUID) (*types.Page, error) {
	owner, err := ownerFrom(ctx)
	if err != nil {
		return nil, err
	}
	return s.owned(dbctx.Context{Ctx: ctx}, owner, id)
}

func (s *pageService) owned(dbc dbctx.Context, owner, id uuid.UUID) (*types.Page, error) {
	page, err := s.pageRepo.GetByOwnerAndID(dbc, owner, id)
	if err != nil {
		return nil, repos.MapError("page.get", err)
	}
	if page == nil {
		return nil, apierr.NotFound(errPageNotFound)
	}
	return page, nil
}

func (s *pageService) UpdateMeta(ctx context.Context, id uuid.UUID, in PageMetaInput) (*types.Page, error) {
	owner, err := ownerFrom(ctx)
	if err != nil {
		return nil, err
	}
	dbc := dbctx.Context{Ctx: ctx}
	page, err := s.owned(dbc, owner, id)
	if err != nil {
		return nil, err
	}
	oldSlug := page.Slug

	updates := map[string]interface{}{}
	if in.Title != nil {
		title := strings.TrimSpace(*in.Title)
		if title == "" {
			return nil, apierr.BadRequest(errors.New("title cannot be empty"))
		}
		updates["title"] = title
		page.Title = title
	}
	if in.Description != nil {
		updates["description"] = strings.TrimSpace(*in.Description)
		page.Description = strings.TrimSpace(*in.Description)
	}
	if in.Slug != nil {
		slug, err := normalizeSlug(*in.Slug)
		if err != nil {
			return nil, err
		}
		if slug != page.Slug {
			taken, err := s.pageRepo.SlugTaken(dbc, slug, page.ID)
			if err != nil {
				return nil, repos.MapError("page.slug", err)
			}
			if taken {
				return nil, apierr.Conflict(fmt.Errorf("slug %q is taken", slug))
			}
			updates["slug"] = slug
			page.Slug = slug
		}
	}
	if in.Published != nil && *in.Published != page.IsPublished {
		updates["is_published"] = *in.Published
		page.IsPublished = *in.Published
		if *in.Published {
			now := time.Now().UTC()
			updates["published_at"] = now
			page.PublishedAt = &now
		}
	}
	if len(updates) == 0 {
		return page, nil
	}
	if err := s.pageRepo.UpdateFields(dbc, page.ID, updates); err != nil {
		return nil, repos.MapError("page.update", err)
	}
	s.invalidate(ctx, page, oldSlug)
	return page, nil
}

func (s *pageService) SaveContent(ctx context.Context, id uuid.UUID, raw []byte) (*types.Page, error) {
	owner, err := ownerFrom(ctx)
	if err != nil {
		return nil, err
	}
	if _, err := content.Validate(s.renderer.Registry(), raw); err != nil {
		s.metrics.IncValidation(false)
		return nil, invalidDocument(err)
	}
	s.metrics.IncValidation(true)

	dbc := dbctx.Context{Ctx: ctx}
	page, err := s.owned(dbc, owner, id)
	if err != nil {
		return nil, err
	}
	if err := s.pageRepo.SaveDocument(dbc, page.ID, raw); err != nil {
		return nil, repos.MapError("page.save", err)
	}
	page.ContentJSON = raw
	s.invalidate(ctx, page, page.Slug)
	return page, nil
}

func (s *pageService) Node(ctx context.Context, id uuid.UUID, path string) (json.RawMessage, error) {
	owner, err := ownerFrom(ctx)
	if err != nil {
		return nil, err
	}
	page, err := s.owned(dbctx.Context{Ctx: ctx}, owner, id)
	if err != nil {
		return nil, err
	}
	doc, err := content.Decode(s.renderer.Registry(), page.ContentJSON)
	if err != nil {
		return nil, fmt.Errorf("page %s: %w", page.ID, err)
	}
	if strings.TrimSpace(path) == "" {
		return nil, apierr.BadRequest(errors.New("path is required"))
	}
	out, err := content.Lookup(doc, path)
	var ve *content.ValidationError
	switch {
	case errors.Is(err, content.ErrNodeNotFound):
		return nil, apierr.NotFound(err)
	case errors.As(err, &ve):
		return nil, apierr.BadRequest(err)
	case err != nil:
		return nil, err
	}
	return out, nil
}

func (s *pageService) Preview(ctx context.Context, id uuid.UUID, raw []byte) ([]byte, error) {
	owner, err := ownerFrom(ctx)
	if err != nil {
		return nil, err
	}
	page, err := s.owned(dbctx.Context{Ctx: ctx}, owner, id)
	if err != nil {
		return nil, err
	}
	var doc content.Document
	if len(raw) > 0 {
		if doc, err = content.Validate(s.renderer.Registry(), raw); err != nil {
			return nil, invalidDocument(err)
		}
	} else if doc, err = content.Decode(s.renderer.Registry(), page.ContentJSON); err != nil {
		return nil, fmt.Errorf("page %s: %w", page.ID, err)
	}
	env := render.Env{
		Mode:     render.ModeDraft,
		Features: s.entitlements.Features(ctx, owner),
		Data:     s.entries.Source(owner),
	}
	return render.ToHTML(ctx, s.renderer.Page(env, render.PageView{
		Title:       page.Title,
		Description: page.Description,
		Document:    doc,
	}))
}

func (s *pageService) Delete(ctx context.Context, id uuid.UUID) error {
	owner, err := ownerFrom(ctx)
	if err != nil {
		return err
	}
	dbc := dbctx.Context{Ctx: ctx}
	page, err := s.owned(dbc, owner, id)
	if err != nil {
		return err
	}
	if err := s.pageRepo.SoftDeleteByIDs(dbc, []uuid.UUID{page.ID}); err != nil {
		return repos.MapError("page.delete", err)
	}
	s.invalidate(ctx, page, page.Slug)
	return nil
}

// invalidate runs after the write has committed so the next public read reloads it.
func (s *pageService) invalidate(ctx context.Context, page *types.Page, oldSlug string) {
	prefixes := []string{
		cache.PublicPagePrefix(page.Slug),
		cache.RenderPagePrefix(page.OwnerID, page.ID),
	}
	if oldSlug != "" && oldSlug != page.Slug {
		prefixes = append(prefixes, cache.PublicPagePrefix(oldSlug))
	}
	s.cache.Invalidate(ctx, prefixes...)
}
