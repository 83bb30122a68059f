package services

import (
	"context"
	"errors"
	"net/http"
	"regexp"
	"strings"

	"github.com/google/uuid"

	"github.com/angelo-odois/postangelo-sub000/internal/platform/apierr"
	"github.com/angelo-odois/postangelo-sub000/internal/platform/ctxutil"
)

var (
	errNoOwner      = errors.New("missing authenticated owner")
	errPageNotFound = errors.New("page not found")
)

func ownerFrom(ctx context.Context) (uuid.UUID, error) {
	id := ctxutil.OwnerID(ctx)
	if id == uuid.Nil {
		return uuid.Nil, apierr.New(http.StatusUnauthorized, apierr.CodeUnauthorized, errNoOwner)
	}
	return id, nil
}

// invalidDocument wraps validation failures so handlers answer 422 with the offending paths.
func invalidDocument(err error) error {
	return apierr.New(http.StatusUnprocessableEntity, apierr.CodeInvalidDocument, err)
}

var slugPattern = regexp.MustCompile(`^[a-z0-9](?:[a-z0-9-]{0,62}[a-z0-9])?$`)

// reserved slugs collide with top-level routes or static assets
var reservedSlugs = map[string]struct{}{
	"api": {}, "admin": {}, "p": {}, "static": {}, "metrics": {}, "healthcheck": {},
}

func normalizeSlug(raw string) (string, error) {
	s := strings.ToLower(strings.TrimSpace(raw))
	if !slugPattern.MatchString(s) {
		return "", apierr.BadRequest(errors.New("slug must be 1-64 lowercase letters, digits or hyphens"))
	}
	if _, ok := reservedSlugs[s]; ok {
		return "", apierr.BadRequest(errors.New("slug is reserved"))
	}
	return s, nil
}
