package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/angelo-odois/postangelo-sub000/internal/http/response"
	"github.com/angelo-odois/postangelo-sub000/internal/platform/apierr"
	"github.com/angelo-odois/postangelo-sub000/internal/services"
)

type PageHandler struct {
	pages services.PageService
}

func NewPageHandler(pages services.PageService) *PageHandler {
	return &PageHandler{pages: pages}
}

// GET /api/pages
func (h *PageHandler) ListPages(c *gin.Context) {
	rows, err := h.pages.List(c.Request.Context())
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"pages": rows})
}

// POST /api/pages
func (h *PageHandler) CreatePage(c *gin.Context) {
	var in services.CreatePageInput
	if err := bindJSON(c, &in); err != nil {
		response.RespondAPIError(c, err)
		return
	}
	page, err := h.pages.Create(c.Request.Context(), in)
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"page": page})
}

// GET /api/pages/:id
func (h *PageHandler) GetPage(c *gin.Context) {
	id, err := idParam(c)
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	page, err := h.pages.Get(c.Request.Context(), id)
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"page": page})
}

// PATCH /api/pages/:id
func (h *PageHandler) UpdatePage(c *gin.Context) {
	id, err := idParam(c)
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	var in services.PageMetaInput
	if err := bindJSON(c, &in); err != nil {
		response.RespondAPIError(c, err)
		return
	}
	page, err := h.pages.UpdateMeta(c.Request.Context(), id, in)
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"page": page})
}

// PUT /api/pages/:id/content
func (h *PageHandler) SaveContent(c *gin.Context) {
	id, err := idParam(c)
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	raw, err := readBody(c)
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	page, err := h.pages.SaveContent(c.Request.Context(), id, raw)
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"page": page})
}

// GET /api/pages/:id/content/node?path=$.blocks[0]
func (h *PageHandler) GetNode(c *gin.Context) {
	id, err := idParam(c)
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	path := c.Query("path")
	if path == "" {
		response.RespondAPIError(c, apierr.BadRequest(errors.New("path query parameter is required")))
		return
	}
	node, err := h.pages.Node(c.Request.Context(), id, path)
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	c.Data(http.StatusOK, "application/json; charset=utf-8", node)
}

// POST /api/pages/:id/preview
// An empty body previews the stored document.
func (h *PageHandler) Preview(c *gin.Context) {
	id, err := idParam(c)
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	raw, err := readBody(c)
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	html, err := h.pages.Preview(c.Request.Context(), id, raw)
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	c.Header("Cache-Control", "no-store")
	c.Data(http.StatusOK, "text/html; charset=utf-8", html)
}

// DELETE /api/pages/:id
func (h *PageHandler) DeletePage(c *gin.Context) {
	id, err := idParam(c)
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	if err := h.pages.Delete(c.Request.Context(), id); err != nil {
		response.RespondAPIError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
