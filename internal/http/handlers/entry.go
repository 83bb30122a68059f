package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/angelo-odois/postangelo-sub000/internal/http/response"
	"github.com/angelo-odois/postangelo-sub000/internal/services"
)

type EntryHandler struct {
	entries services.EntryService
}

func NewEntryHandler(entries services.EntryService) *EntryHandler {
	return &EntryHandler{entries: entries}
}

// GET /api/entries?kind=project&featured=true
func (h *EntryHandler) ListEntries(c *gin.Context) {
	rows, err := h.entries.List(c.Request.Context(), c.Query("kind"), c.Query("featured") == "true")
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"entries": rows})
}

// POST /api/entries
func (h *EntryHandler) CreateEntry(c *gin.Context) {
	var in services.EntryInput
	if err := bindJSON(c, &in); err != nil {
		response.RespondAPIError(c, err)
		return
	}
	e, err := h.entries.Create(c.Request.Context(), in)
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"entry": e})
}

// PUT /api/entries/:id
func (h *EntryHandler) UpdateEntry(c *gin.Context) {
	id, err := idParam(c)
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	var in services.EntryInput
	if err := bindJSON(c, &in); err != nil {
		response.RespondAPIError(c, err)
		return
	}
	e, err := h.entries.Update(c.Request.Context(), id, in)
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"entry": e})
}

// DELETE /api/entries/:id
func (h *EntryHandler) DeleteEntry(c *gin.Context) {
	id, err := idParam(c)
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	if err := h.entries.Delete(c.Request.Context(), id); err != nil {
		response.RespondAPIError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
