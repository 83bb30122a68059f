package testutil

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	types "github.com/angelo-odois/postangelo-sub000/internal/domain"
)

func SeedPage(tb testing.TB, ctx context.Context, tx *gorm.DB, ownerID uuid.UUID, slug string, content string) *types.Page {
	tb.Helper()
	if content == "" {
		content = `{"blocks":[]}`
	}
	p := &types.Page{
		ID:          uuid.New(),
		OwnerID:     ownerID,
		Title:       "page " + slug,
		Slug:        slug,
		ContentJSON: datatypes.JSON([]byte(content)),
	}
	if err := tx.WithContext(ctx).Create(p).Error; err != nil {
		tb.Fatalf("seed page: %v", err)
	}
	return p
}

func SeedTemplate(tb testing.TB, ctx context.Context, tx *gorm.DB, slug string, content string, premium bool) *types.PageTemplate {
	tb.Helper()
	t := &types.PageTemplate{
		ID:           uuid.New(),
		Name:         "template " + slug,
		Slug:         slug,
		Category:     "portfolio",
		ContentJSON:  datatypes.JSON([]byte(content)),
		DefaultTitle: "My " + slug,
		IsPremium:    premium,
		IsActive:     true,
	}
	if err := tx.WithContext(ctx).Create(t).Error; err != nil {
		tb.Fatalf("seed template: %v", err)
	}
	return t
}

func SeedEntry(tb testing.TB, ctx context.Context, tx *gorm.DB, ownerID uuid.UUID, kind string, title string, featured bool) *types.Entry {
	tb.Helper()
	e := &types.Entry{
		ID:       uuid.New(),
		OwnerID:  ownerID,
		Kind:     kind,
		Title:    title,
		Featured: featured,
	}
	if err := tx.WithContext(ctx).Create(e).Error; err != nil {
		tb.Fatalf("seed entry: %v", err)
	}
	return e
}
