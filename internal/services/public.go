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
	"github.com/angelo-odois/postangelo-sub000/internal/platform/apierr"
	"github.com/angelo-odois/postangelo-sub000/internal/platform/dbctx"
	"github.com/angelo-odois/postangelo-sub000/internal/platform/logger"
)

// PublicPage is the anonymous view of a published page.
type PublicPage struct {
	ID          uuid.UUID       `json:"id"`
	OwnerID     uuid.UUID       `json:"owner_id"`
	Slug        string          `json:"slug"`
	Title       string          `json:"title"`
	Description string          `json:"description,omitempty"`
	Content     json.RawMessage `json:"content"`
	PublishedAt *time.Time      `json:"published_at,omitempty"`
}

type PublicPageService interface {
	// Page returns a published page by slug, read through the cache.
	Page(ctx context.Context, slug string) (*PublicPage, error)
	// RenderHTML returns the full public markup of a published page, read through the cache.
	RenderHTML(ctx context.Context, slug string) ([]byte, error)
}

type publicPageService struct {
	db           *gorm.DB
	log          *logger.Logger
	renderer     *render.Renderer
	pageRepo     repos.PageRepo
	entries      EntryService
	entitlements Entitlements
	cache        *cache.Store
}

func NewPublicPageService(
	db *gorm.DB,
	log *logger.Logger,
	renderer *render.Renderer,
	pageRepo repos.PageRepo,
	entries EntryService,
	entitlements Entitlements,
	store *cache.Store,
) PublicPageService {
	return &publicPageService{
		db:           db,
		log:          log.With("service", "PublicPageService"),
		renderer:     renderer,
		pageRepo:     pageRepo,
		entries:      entries,
		entitlements: entitlements,
		cache:        store,
	}
}

var errNotPublished = errors.New("page not found")

func (s *publicPageService) Page(ctx context.Context, slug string) (*PublicPage, error) {
	slug = strings.ToLower(strings.TrimSpace(slug))
	if !slugPattern.MatchString(slug) {
		return nil, apierr.NotFound(errNotPublished)
	}
	return cache.RememberJSON(ctx, s.cache, cache.PublicPageKey(slug), cache.TTLPublicPage, func(ctx context.Context) (*PublicPage, error) {
		page, err := s.pageRepo.GetBySlug(dbctx.Context{Ctx: ctx}, slug)
		if err != nil {
			return nil, repos.MapError("page.public", err)
		}
		if page == nil || !page.IsPublished {
			return nil, apierr.NotFound(errNotPublished)
		}
		doc := json.RawMessage(page.ContentJSON)
		if len(doc) == 0 {
			doc = json.RawMessage(`{"blocks":[]}`)
		}
		return &PublicPage{
			ID:          page.ID,
			OwnerID:     page.OwnerID,
			Slug:        page.Slug,
			Title:       page.Title,
			Description: page.Description,
			Content:     doc,
			PublishedAt: page.PublishedAt,
		}, nil
	})
}

func (s *publicPageService) RenderHTML(ctx context.Context, slug string) ([]byte, error) {
	// the render is computed from page as read here, so a write after this point keeps it out
	// of the cache
	epoch := s.cache.Epoch()
	page, err := s.Page(ctx, slug)
	if err != nil {
		return nil, err
	}
	return s.cache.RememberSince(ctx, epoch, cache.RenderKey(page.OwnerID, page.ID), cache.TTLRender, func(ctx context.Context) ([]byte, error) {
		doc, err := content.Decode(s.renderer.Registry(), page.Content)
		if err != nil {
			// a stored document whose top level is unreadable renders as an empty page
			s.log.Error("Stored document unreadable", "page_id", page.ID, "error", err)
			doc = content.Empty()
		}
		env := render.Env{
			Mode:     render.ModePublic,
			Features: s.entitlements.Features(ctx, page.OwnerID),
			Data:     s.entries.Source(page.OwnerID),
		}
		html, err := render.ToHTML(ctx, s.renderer.Page(env, render.PageView{
			Title:       page.Title,
			Description: page.Description,
			Document:    doc,
		}))
		if err != nil {
			return nil, fmt.Errorf("render page %s: %w", page.ID, err)
		}
		return html, nil
	})
}
