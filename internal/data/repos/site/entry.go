package site

import (
	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/angelo-odois/postangelo-sub000/internal/domain"
	"github.com/angelo-odois/postangelo-sub000/internal/platform/dbctx"
	"github.com/angelo-odois/postangelo-sub000/internal/platform/logger"
)

type EntryRepo interface {
	Create(dbc dbctx.Context, rows []*types.Entry) ([]*types.Entry, error)

	GetByOwnerAndID(dbc dbctx.Context, ownerID uuid.UUID, id uuid.UUID) (*types.Entry, error)
	// ListByOwner returns entries in display order. An empty kind lists every kind.
	ListByOwner(dbc dbctx.Context, ownerID uuid.UUID, kind string, featuredOnly bool) ([]*types.Entry, error)

	Update(dbc dbctx.Context, row *types.Entry) error

	SoftDeleteByIDs(dbc dbctx.Context, ids []uuid.UUID) error
}

type entryRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewEntryRepo(db *gorm.DB, baseLog *logger.Logger) EntryRepo {
	return &entryRepo{db: db, log: baseLog.With("repo", "EntryRepo")}
}

func (r *entryRepo) Create(dbc dbctx.Context, rows []*types.Entry) ([]*types.Entry, error) {
	if len(rows) == 0 {
		return []*types.Entry{}, nil
	}
	if err := dbc.DB(r.db).Create(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *entryRepo) GetByOwnerAndID(dbc dbctx.Context, ownerID uuid.UUID, id uuid.UUID) (*types.Entry, error) {
	if id == uuid.Nil || ownerID == uuid.Nil {
		return nil, nil
	}
	var out []*types.Entry
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

func (r *entryRepo) ListByOwner(dbc dbctx.Context, ownerID uuid.UUID, kind string, featuredOnly bool) ([]*types.Entry, error) {
	var out []*types.Entry
	if ownerID == uuid.Nil {
		return out, nil
	}
	q := dbc.DB(r.db).Where("owner_id = ?", ownerID)
	if kind != "" {
		q = q.Where("kind = ?", kind)
	}
	if featuredOnly {
		q = q.Where("featured = ?", true)
	}
	if err := q.Order("sort_order ASC, start_date DESC, created_at ASC").Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *entryRepo) Update(dbc dbctx.Context, row *types.Entry) error {
	if row == nil || row.ID == uuid.Nil {
		return gorm.ErrRecordNotFound
	}
	res := dbc.DB(r.db).Model(&types.Entry{}).
		Where("id = ? AND owner_id = ?", row.ID, row.OwnerID).
		Select("kind", "title", "subtitle", "description", "url", "start_date", "end_date", "featured", "sort_order", "updated_at").
		Updates(row)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *entryRepo) SoftDeleteByIDs(dbc dbctx.Context, ids []uuid.UUID) error {
	if len(ids) == 0 {
		return nil
	}
	return dbc.DB(r.db).Where("id IN ?", ids).Delete(&types.Entry{}).Error
}
