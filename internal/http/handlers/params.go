package handlers

import (
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/angelo-odois/postangelo-sub000/internal/platform/apierr"
)

// maxDocumentBytes bounds a submitted document.
const maxDocumentBytes = 2 << 20

func idParam(c *gin.Context) (uuid.UUID, error) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return uuid.Nil, apierr.BadRequest(errors.New("invalid id"))
	}
	return id, nil
}

func readBody(c *gin.Context) ([]byte, error) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxDocumentBytes)
	raw, err := io.ReadAll(c.Request.Body)
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return nil, apierr.New(http.StatusRequestEntityTooLarge, apierr.CodeInvalidRequest, errors.New("document too large"))
		}
		return nil, apierr.BadRequest(err)
	}
	return raw, nil
}

func bindJSON(c *gin.Context, dst any) error {
	if err := c.ShouldBindJSON(dst); err != nil {
		return apierr.BadRequest(err)
	}
	return nil
}
