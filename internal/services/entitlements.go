package services

import (
	"context"

	"github.com/google/uuid"

	"github.com/angelo-odois/postangelo-sub000/internal/content/render"
)

// Entitlements answers which plan features an owner has. Billing lives elsewhere; this is the
// boundary the engine reads from.
type Entitlements interface {
	Features(ctx context.Context, ownerID uuid.UUID) render.Features
}

type staticEntitlements struct {
	defaults render.Features
	premium  map[uuid.UUID]struct{}
}

// NewStaticEntitlements grants defaults to everyone and every feature to the listed owners.
func NewStaticEntitlements(defaults render.Features, premiumOwners []uuid.UUID) Entitlements {
	p := make(map[uuid.UUID]struct{}, len(premiumOwners))
	for _, id := range premiumOwners {
		if id != uuid.Nil {
			p[id] = struct{}{}
		}
	}
	return &staticEntitlements{defaults: defaults, premium: p}
}

func (e *staticEntitlements) Features(_ context.Context, ownerID uuid.UUID) render.Features {
	if _, ok := e.premium[ownerID]; ok {
		return render.Features{HideBranding: true, PremiumTemplates: true}
	}
	return e.defaults
}
