package site

import (
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/angelo-odois/postangelo-sub000/internal/domain"
	"github.com/angelo-odois/postangelo-sub000/internal/platform/dbctx"
	"github.com/angelo-odois/postangelo-sub000/internal/platform/logger"
)

type PageTemplateRepo interface {
	Create(dbc dbctx.Context, rows []*types.PageTemplate) ([]*types.PageTemplate, error)

	GetByID(dbc dbctx.Context, id uuid.UUID) (*types.PageTemplate, error)
	GetBySlug(dbc dbctx.Context, slug string) (*types.PageTemplate, error)
	// ListActive returns the catalog in display order. An empty category lists all of them.
	ListActive(dbc dbctx.Context, category string) ([]*types.PageTemplate, error)
	ListAll(dbc dbctx.Context) ([]*types.PageTemplate, error)

	Update(dbc dbctx.Context, row *types.PageTemplate) error
	// UpsertBySlug inserts the row or overwrites the live row with the same slug.
	UpsertBySlug(dbc dbctx.Context, row *types.PageTemplate) error

	SoftDeleteByIDs(dbc dbctx.Context, ids []uuid.UUID) error
}

type pageTemplateRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewPageTemplateRepo(db *gorm.DB, baseLog *logger.Logger) PageTemplateRepo {
	return &pageTemplateRepo{db: db, log: baseLog.With("repo", "PageTemplateRepo")}
}

func (r *pageTemplateRepo) Create(dbc dbctx.Context, rows []*types.PageTemplate) ([]*types.PageTemplate, error) {
	if len(rows) == 0 {
		return []*types.PageTemplate{}, nil
	}
	if err := dbc.DB(r.db).Create(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *pageTemplateRepo) GetByID(dbc dbctx.Context, id uuid.UUID) (*types.PageTemplate, error) {
	if id == uuid.Nil {
		return nil, nil
	}
	var out []*types.PageTemplate
	if err := dbc.DB(r.db).Where("id = ?", id).Limit(1).Find(&out).Error; err != nil {
		return nil, err
	}
	if len(out) == 0 {
		return nil, nil
	}
	return out[0], nil
}

func (r *pageTemplateRepo) GetBySlug(dbc dbctx.Context, slug string) (*types.PageTemplate, error) {
	slug = strings.TrimSpace(slug)
	if slug == "" {
		return nil, nil
	}
	var out []*types.PageTemplate
	if err := dbc.DB(r.db).Where("slug = ?", slug).Limit(1).Find(&out).Error; err != nil {
		return nil, err
	}
	if len(out) == 0 {
		return nil, nil
	}
	return out[0], nil
}

func (r *pageTemplateRepo) ListActive(dbc dbctx.Context, category string) ([]*types.PageTemplate, error) {
	var out []*types.PageTemplate
	q := dbc.DB(r.db).Where("is_active = ?", true)
	if c := strings.TrimSpace(category); c != "" {
		q = q.Where("category = ?", c)
	}
	if err := q.Order("sort_order ASC, name ASC").Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *pageTemplateRepo) ListAll(dbc dbctx.Context) ([]*types.PageTemplate, error) {
	var out []*types.PageTemplate
	if err := dbc.DB(r.db).Order("sort_order ASC, name ASC").Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *pageTemplateRepo) Update(dbc dbctx.Context, row *types.PageTemplate) error {
	if row == nil || row.ID == uuid.Nil {
		return gorm.ErrRecordNotFound
	}
	res := dbc.DB(r.db).Model(&types.PageTemplate{}).Where("id = ?", row.ID).Select(
		"name", "slug", "description", "category", "content_json", "default_title",
		"thumbnail_url", "is_premium", "sort_order", "is_active", "updated_at",
	).Updates(row)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *pageTemplateRepo) UpsertBySlug(dbc dbctx.Context, row *types.PageTemplate) error {
	if row == nil {
		return nil
	}
	return dbc.DB(r.db).Transaction(func(tx *gorm.DB) error {
		var existing []*types.PageTemplate
		if err := tx.Where("slug = ?", row.Slug).
			Limit(1).
			Find(&existing).Error; err != nil {
			return err
		}
		if len(existing) == 0 {
			return tx.Create(row).Error
		}
		row.ID = existing[0].ID
		row.CreatedAt = existing[0].CreatedAt
		return tx.Model(&types.PageTemplate{}).Where("id = ?", row.ID).Select(
			"name", "description", "category", "content_json", "default_title",
			"thumbnail_url", "is_premium", "sort_order", "is_active", "updated_at",
		).Updates(row).Error
	})
}

func (r *pageTemplateRepo) SoftDeleteByIDs(dbc dbctx.Context, ids []uuid.UUID) error {
	if len(ids) == 0 {
		return nil
	}
	return dbc.DB(r.db).Where("id IN ?", ids).Delete(&types.PageTemplate{}).Error
}
