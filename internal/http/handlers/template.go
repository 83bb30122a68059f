package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/angelo-odois/postangelo-sub000/internal/http/response"
	"github.com/angelo-odois/postangelo-sub000/internal/services"
)

type TemplateHandler struct {
	templates services.TemplateService
}

func NewTemplateHandler(templates services.TemplateService) *TemplateHandler {
	return &TemplateHandler{templates: templates}
}

// GET /api/templates?category=
func (h *TemplateHandler) ListTemplates(c *gin.Context) {
	rows, err := h.templates.Catalog(c.Request.Context(), c.Query("category"))
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"templates": rows})
}

// GET /api/templates/:slug
func (h *TemplateHandler) GetTemplate(c *gin.Context) {
	t, err := h.templates.GetBySlug(c.Request.Context(), c.Param("slug"))
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"template": t})
}

// GET /api/admin/templates
func (h *TemplateHandler) AdminListTemplates(c *gin.Context) {
	rows, err := h.templates.ListAll(c.Request.Context())
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"templates": rows})
}

// POST /api/admin/templates
func (h *TemplateHandler) CreateTemplate(c *gin.Context) {
	var in services.TemplateInput
	if err := bindJSON(c, &in); err != nil {
		response.RespondAPIError(c, err)
		return
	}
	t, err := h.templates.Create(c.Request.Context(), in)
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"template": t})
}

// PUT /api/admin/templates/:id
func (h *TemplateHandler) UpdateTemplate(c *gin.Context) {
	id, err := idParam(c)
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	var in services.TemplateInput
	if err := bindJSON(c, &in); err != nil {
		response.RespondAPIError(c, err)
		return
	}
	t, err := h.templates.Update(c.Request.Context(), id, in)
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"template": t})
}

// DELETE /api/admin/templates/:id
func (h *TemplateHandler) DeleteTemplate(c *gin.Context) {
	id, err := idParam(c)
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	if err := h.templates.Delete(c.Request.Context(), id); err != nil {
		response.RespondAPIError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
