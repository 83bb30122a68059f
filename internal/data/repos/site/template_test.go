package site

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"gorm.io/datatypes"

	"github.com/angelo-odois/postangelo-sub000/internal/data/repos/testutil"
	types "github.com/angelo-odois/postangelo-sub000/internal/domain"
	"github.com/angelo-odois/postangelo-sub000/internal/platform/dbctx"
)

func TestPageTemplateRepo(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)

	ctx := context.Background()
	dbc := dbctx.Context{Ctx: ctx, Tx: tx}
	repo := NewPageTemplateRepo(db, testutil.Logger(t))

	suffix := uuid.NewString()[:8]
	minimal := testutil.SeedTemplate(t, ctx, tx, "minimal-"+suffix, `{"blocks":[]}`, false)
	bold := testutil.SeedTemplate(t, ctx, tx, "bold-"+suffix, `{"blocks":[]}`, true)
	bold.Order = -1
	if err := repo.Update(dbc, bold); err != nil {
		t.Fatalf("Update: %v", err)
	}

	rows, err := repo.ListActive(dbc, "portfolio")
	if err != nil {
		t.Fatalf("ListActive: %v", err)
	}
	pos := map[uuid.UUID]int{}
	for i, r := range rows {
		pos[r.ID] = i
	}
	if _, ok := pos[minimal.ID]; !ok {
		t.Fatalf("ListActive: minimal missing")
	}
	if pos[bold.ID] > pos[minimal.ID] {
		t.Fatalf("ListActive: expected sort_order ordering")
	}

	minimal.IsActive = false
	if err := repo.Update(dbc, minimal); err != nil {
		t.Fatalf("Update(deactivate): %v", err)
	}
	rows, err = repo.ListActive(dbc, "")
	if err != nil {
		t.Fatalf("ListActive(all): %v", err)
	}
	for _, r := range rows {
		if r.ID == minimal.ID {
			t.Fatalf("ListActive: inactive template listed")
		}
	}
	if got, err := repo.GetBySlug(dbc, minimal.Slug); err != nil || got == nil || got.IsActive {
		t.Fatalf("GetBySlug: got=%v err=%v", got, err)
	}

	seed := &types.PageTemplate{
		Name:        "Seeded",
		Slug:        minimal.Slug,
		Category:    "links",
		ContentJSON: datatypes.JSON([]byte(`{"blocks":[{"id":"h","type":"heading"}]}`)),
		IsActive:    true,
	}
	if err := repo.UpsertBySlug(dbc, seed); err != nil {
		t.Fatalf("UpsertBySlug(existing): %v", err)
	}
	if seed.ID != minimal.ID {
		t.Fatalf("UpsertBySlug: expected the existing id to be kept")
	}
	got, err := repo.GetByID(dbc, minimal.ID)
	if err != nil || got == nil || got.Name != "Seeded" || got.Category != "links" || !got.IsActive {
		t.Fatalf("UpsertBySlug: row not overwritten: %+v err=%v", got, err)
	}
	fresh := &types.PageTemplate{Name: "Fresh", Slug: "fresh-" + suffix, Category: "links", ContentJSON: datatypes.JSON([]byte(`{"blocks":[]}`)), IsActive: true}
	if err := repo.UpsertBySlug(dbc, fresh); err != nil || fresh.ID == uuid.Nil {
		t.Fatalf("UpsertBySlug(new): id=%v err=%v", fresh.ID, err)
	}

	if err := repo.SoftDeleteByIDs(dbc, []uuid.UUID{bold.ID}); err != nil {
		t.Fatalf("SoftDeleteByIDs: %v", err)
	}
	if got, err := repo.GetByID(dbc, bold.ID); err != nil || got != nil {
		t.Fatalf("GetByID after delete: got=%v err=%v", got, err)
	}
}
