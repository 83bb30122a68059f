package site

import (
	"strings"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	types "github.com/angelo-odois/postangelo-sub000/internal/domain"
	"github.com/angelo-odois/postangelo-sub000/internal/platform/dbctx"
	"github.com/angelo-odois/postangelo-sub000/internal/platform/logger"
)

type PageRepo interface {
	Create(dbc dbctx.Context, rows []*types.Page) ([]*types.Page, error)

	GetByID(dbc dbctx.Context, id uuid.UUID) (*types.Page, error)
	GetByOwnerAndID(dbc dbctx.Context, ownerID uuid.UUID, id uuid.UUID) (*types.Page, error)
	GetBySlug(dbc dbctx.Context, slug string) (*types.Page, error)
	ListByOwner(dbc dbctx.Context, ownerID uuid.UUID) ([]*types.Page, error)
	SlugTaken(dbc dbctx.Context, slug string, exceptID uuid.UUID) (bool, error)

	// LoadDocument returns the stored document bytes, or nil when the page does not exist.
	LoadDocument(dbc dbctx.Context, id uuid.UUID) (datatypes.JSON, error)
	// SaveDocument replaces the whole document. The caller validates it first.
	SaveDocument(dbc dbctx.Context, id uuid.UUID, doc []byte) error

	UpdateFields(dbc dbctx.Context, id uuid.UUID, updates map[string]interface{}) error

	SoftDeleteByIDs(dbc dbctx.Context, ids []uuid.UUID) error
	FullDeleteByIDs(dbc dbctx.Context, ids []uuid.UUID) error
}

type pageRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewPageRepo(db *gorm.DB, baseLog *logger.Logger) PageRepo {
	return &pageRepo{db: db, log: baseLog.With("repo", "PageRepo")}
}

func (r *pageRepo) Create(dbc dbctx.Context, rows []*types.Page) ([]*types.Page, error) {
	if len(rows) == 0 {
		return []*types.Page{}, nil
	}
	if err := dbc.DB(r.db).Create(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *pageRepo) GetByID(dbc dbctx.Context, id uuid.UUID) (*types.Page, error) {
	if id == uuid.Nil {
		return nil, nil
	}
	var out []*types.Page
	if err := dbc.DB(r.db).Where("id = ?", id).Limit(1).Find(&out).Error; err != nil {
		return nil, err
	}
	if len(out) == 0 {
		return nil, nil
	}
	return out[0], nil
}

func (r *pageRepo) GetByOwnerAndID(dbc dbctx.Context, ownerID uuid.UUID, id uuid.UUID) (*types.Page, error) {
	if id == uuid.Nil || ownerID == uuid.Nil {
		return nil, nil
	}
	var out []*types.Page
	if err := dbc.DB(r.db).
		Where("id = ? AND owner_id = ?", id, ownerID).
		Limit(1).
		Find(&out).Error; err != nil {
		return nil, err
	}
	if len(out) == 0 {
		return nil, nil
	}
	return out[0], nil
}

func (r *pageRepo) GetBySlug(dbc dbctx.Context, slug string) (*types.Page, error) {
	slug = strings.TrimSpace(slug)
	if slug == "" {
		return nil, nil
	}
	var out []*types.Page
	if err := dbc.DB(r.db).Where("slug = ?", slug).Limit(1).Find(&out).Error; err != nil {
		return nil, err
	}
	if len(out) == 0 {
		return nil, nil
	}
	return out[0], nil
}

func (r *pageRepo) ListByOwner(dbc dbctx.Context, ownerID uuid.UUID) ([]*types.Page, error) {
	var out []*types.Page
	if ownerID == uuid.Nil {
		return out, nil
	}
	// the list view never needs the documents
	if err := dbc.DB(r.db).
		Omit("content_json").
		Where("owner_id = ?", ownerID).
		Order("updated_at DESC").
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *pageRepo) SlugTaken(dbc dbctx.Context, slug string, exceptID uuid.UUID) (bool, error) {
	var n int64
	q := dbc.DB(r.db).Model(&types.Page{}).Where("slug = ?", slug)
	if exceptID != uuid.Nil {
		q = q.Where("id <> ?", exceptID)
	}
	if err := q.Count(&n).Error; err != nil {
		return false, err
	}
	return n > 0, nil
}

func (r *pageRepo) LoadDocument(dbc dbctx.Context, id uuid.UUID) (datatypes.JSON, error) {
	var rows []types.Page
	if err := dbc.DB(r.db).
		Select("id", "content_json").
		Where("id = ?", id).
		Limit(1).
		Find(&rows).Error; err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, nil
	}
	return rows[0].ContentJSON, nil
}

func (r *pageRepo) SaveDocument(dbc dbctx.Context, id uuid.UUID, doc []byte) error {
	res := dbc.DB(r.db).
		Model(&types.Page{}).
		Where("id = ?", id).
		Update("content_json", datatypes.JSON(doc))
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *pageRepo) UpdateFields(dbc dbctx.Context, id uuid.UUID, updates map[string]interface{}) error {
	if len(updates) == 0 {
		return nil
	}
	res := dbc.DB(r.db).Model(&types.Page{}).Where("id = ?", id).Updates(updates)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *pageRepo) SoftDeleteByIDs(dbc dbctx.Context, ids []uuid.UUID) error {
	if len(ids) == 0 {
		return nil
	}
	return dbc.DB(r.db).Where("id IN ?", ids).Delete(&types.Page{}).Error
}

func (r *pageRepo) FullDeleteByIDs(dbc dbctx.Context, ids []uuid.UUID) error {
	if len(ids) == 0 {
		return nil
	}
	return dbc.DB(r.db).Unscoped().Where("id IN ?", ids).Delete(&types.Page{}).Error
}
