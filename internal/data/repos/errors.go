package repos

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"

	"github.com/angelo-odois/postangelo-sub000/internal/platform/apierr"
)

// MapError translates persistence failures into API errors. op names the failed operation and
// becomes the message prefix.
func MapError(op string, err error) error {
	if err == nil {
		return nil
	}
	var ae *apierr.Error
	if errors.As(err, &ae) {
		return err
	}
	wrapped := fmt.Errorf("%s: %w", op, err)
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return apierr.NotFound(wrapped)
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return apierr.New(http.StatusServiceUnavailable, apierr.CodeInternal, wrapped)
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch strings.TrimSpace(pgErr.Code) {
		case "23505":
			return apierr.Conflict(wrapped) // unique_violation
		case "23503":
			return apierr.New(http.StatusUnprocessableEntity, apierr.CodeInvalidRequest, wrapped) // foreign_key_violation
		}
	}

	msg := strings.ToLower(err.Error())
	switch {
	case strings.Contains(msg, "duplicate key"), strings.Contains(msg, "unique constraint failed"):
		return apierr.Conflict(wrapped)
	default:
		return apierr.New(http.StatusInternalServerError, apierr.CodeInternal, wrapped)
	}
}
