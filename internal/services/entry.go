package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/angelo-odois/postangelo-sub000/internal/cache"
	"github.com/angelo-odois/postangelo-sub000/internal/content/render"
	"github.com/angelo-odois/postangelo-sub000/internal/data/repos"
	types "github.com/angelo-odois/postangelo-sub000/internal/domain"
	"github.com/angelo-odois/postangelo-sub000/internal/platform/apierr"
	"github.com/angelo-odois/postangelo-sub000/internal/platform/dbctx"
	"github.com/angelo-odois/postangelo-sub000/internal/platform/logger"
)

type EntryInput struct {
	Kind        string     `json:"kind"`
	Title       string     `json:"title"`
	Subtitle    string     `json:"subtitle"`
	Description string     `json:"description"`
	URL         string     `json:"url"`
	StartDate   *time.Time `json:"start_date"`
	EndDate     *time.Time `json:"end_date"`
	Featured    bool       `json:"featured"`
	Order       int        `json:"order"`
}

type EntryService interface {
	List(ctx context.Context, kind string, featuredOnly bool) ([]*types.Entry, error)
	Create(ctx context.Context, in EntryInput) (*types.Entry, error)
	Update(ctx context.Context, id uuid.UUID, in EntryInput) (*types.Entry, error)
	Delete(ctx context.Context, id uuid.UUID) error
	// Source is the data feed for one owner's data-bound blocks. Reads go through the cache.
	Source(ownerID uuid.UUID) render.DataSource
}

type entryService struct {
	db        *gorm.DB
	log       *logger.Logger
	entryRepo repos.EntryRepo
	cache     *cache.Store
}

func NewEntryService(db *gorm.DB, log *logger.Logger, entryRepo repos.EntryRepo, store *cache.Store) EntryService {
	return &entryService{
		db:        db,
		log:       log.With("service", "EntryService"),
		entryRepo: entryRepo,
		cache:     store,
	}
}

func (s *entryService) List(ctx context.Context, kind string, featuredOnly bool) ([]*types.Entry, error) {
	owner, err := ownerFrom(ctx)
	if err != nil {
		return nil, err
	}
	kind = strings.TrimSpace(kind)
	if kind != "" && !types.ValidEntryKind(kind) {
		return nil, apierr.BadRequest(errors.New("unknown entry kind"))
	}
	rows, err := s.entryRepo.ListByOwner(dbctx.Context{Ctx: ctx}, owner, kind, featuredOnly)
	if err != nil {
		return nil, repos.MapError("entry.list", err)
	}
	return rows, nil
}

func (s *entryService) Create(ctx context.Context, in EntryInput) (*types.Entry, error) {
	owner, err := ownerFrom(ctx)
	if err != nil {
		return nil, err
	}
	row := &types.Entry{OwnerID: owner}
	if err := applyEntryInput(row, in); err != nil {
		return nil, err
	}
	if _, err := s.entryRepo.Create(dbctx.Context{Ctx: ctx}, []*types.Entry{row}); err != nil {
		return nil, repos.MapError("entry.create", err)
	}
	s.invalidate(ctx, owner, row.Kind)
	return row, nil
}

func (s *entryService) Update(ctx context.Context, id uuid.UUID, in EntryInput) (*types.Entry, error) {
	owner, err := ownerFrom(ctx)
	if err != nil {
		return nil, err
	}
	dbc := dbctx.Context{Ctx: ctx}
	row, err := s.entryRepo.GetByOwnerAndID(dbc, owner, id)
	if err != nil {
		return nil, repos.MapError("entry.get", err)
	}
	if row == nil {
		return nil, apierr.NotFound(errors.New("entry not found"))
	}
	prevKind := row.Kind
	if err := applyEntryInput(row, in); err != nil {
		return nil, err
	}
	row.UpdatedAt = time.Now().UTC()
	if err := s.entryRepo.Update(dbc, row); err != nil {
		return nil, repos.MapError("entry.update", err)
	}
	s.invalidate(ctx, owner, prevKind, row.Kind)
	return row, nil
}

func (s *entryService) Delete(ctx context.Context, id uuid.UUID) error {
	owner, err := ownerFrom(ctx)
	if err != nil {
		return err
	}
	dbc := dbctx.Context{Ctx: ctx}
	row, err := s.entryRepo.GetByOwnerAndID(dbc, owner, id)
	if err != nil {
		return repos.MapError("entry.get", err)
	}
	if row == nil {
		return apierr.NotFound(errors.New("entry not found"))
	}
	if err := s.entryRepo.SoftDeleteByIDs(dbc, []uuid.UUID{row.ID}); err != nil {
		return repos.MapError("entry.delete", err)
	}
	s.invalidate(ctx, owner, row.Kind)
	return nil
}

// invalidate drops the owner's cached lists of each kind and every rendered page of the owner,
// since any of them may show the list.
func (s *entryService) invalidate(ctx context.Context, owner uuid.UUID, kinds ...string) {
	prefixes := []string{cache.RenderOwnerPrefix(owner)}
	seen := map[string]bool{}
	for _, k := range kinds {
		if k == "" || seen[k] {
			continue
		}
		seen[k] = true
		prefixes = append(prefixes, cache.EntriesPrefix(owner, k))
	}
	s.cache.Invalidate(ctx, prefixes...)
}

func applyEntryInput(row *types.Entry, in EntryInput) error {
	kind := strings.TrimSpace(in.Kind)
	if !types.ValidEntryKind(kind) {
		return apierr.BadRequest(errors.New("kind must be one of experience, education, project, skill"))
	}
	title := strings.TrimSpace(in.Title)
	if title == "" {
		return apierr.BadRequest(errors.New("title is required"))
	}
	if in.StartDate != nil && in.EndDate != nil && in.EndDate.Before(*in.StartDate) {
		return apierr.BadRequest(errors.New("end_date is before start_date"))
	}
	row.Kind = kind
	row.Title = title
	row.Subtitle = strings.TrimSpace(in.Subtitle)
	row.Description = strings.TrimSpace(in.Description)
	row.URL = strings.TrimSpace(in.URL)
	row.StartDate = in.StartDate
	row.EndDate = in.EndDate
	row.Featured = in.Featured
	row.Order = in.Order
	return nil
}

func (s *entryService) Source(ownerID uuid.UUID) render.DataSource {
	return &entrySource{svc: s, owner: ownerID}
}

type entrySource struct {
	svc   *entryService
	owner uuid.UUID
}

func (src *entrySource) Entries(ctx context.Context, kind string, featuredOnly bool) ([]render.Entry, error) {
	if !types.ValidEntryKind(kind) {
		return nil, nil
	}
	key := cache.EntriesKey(src.owner, kind, featuredOnly)
	return cache.RememberJSON(ctx, src.svc.cache, key, cache.TTLEntries, func(ctx context.Context) ([]render.Entry, error) {
		rows, err := src.svc.entryRepo.ListByOwner(dbctx.Context{Ctx: ctx}, src.owner, kind, featuredOnly)
		if err != nil {
			return nil, repos.MapError("entry.list", err)
		}
		out := make([]render.Entry, 0, len(rows))
		for _, r := range rows {
			out = append(out, render.Entry{
				Title:       r.Title,
				Subtitle:    r.Subtitle,
				Description: r.Description,
				URL:         r.URL,
				Period:      period(r.StartDate, r.EndDate),
				Featured:    r.Featured,
			})
		}
		return out, nil
	})
}

func period(start, end *time.Time) string {
	if start == nil {
		return ""
	}
	out := start.Format("Jan 2006") + " - "
	if end == nil {
		return out + "Present"
	}
	return out + end.Format("Jan 2006")
}
