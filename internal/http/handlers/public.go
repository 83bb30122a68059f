package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/angelo-odois/postangelo-sub000/internal/cache"
	"github.com/angelo-odois/postangelo-sub000/internal/http/response"
	"github.com/angelo-odois/postangelo-sub000/internal/platform/apierr"
	"github.com/angelo-odois/postangelo-sub000/internal/services"
)

type PublicHandler struct {
	public services.PublicPageService
}

func NewPublicHandler(public services.PublicPageService) *PublicHandler {
	return &PublicHandler{public: public}
}

var publicMaxAge = "public, max-age=" + strconv.Itoa(int(cache.TTLPublicPage.Seconds()))

// GET /p/:slug
func (h *PublicHandler) RenderPage(c *gin.Context) {
	html, err := h.public.RenderHTML(c.Request.Context(), c.Param("slug"))
	if err != nil {
		if apierr.From(err).Status == http.StatusNotFound {
			c.Data(http.StatusNotFound, "text/html; charset=utf-8", []byte("<!DOCTYPE html><title>Not found</title><h1>Page not found</h1>"))
			return
		}
		response.RespondAPIError(c, err)
		return
	}
	c.Header("Cache-Control", publicMaxAge)
	c.Data(http.StatusOK, "text/html; charset=utf-8", html)
}

// GET /api/public/pages/:slug
func (h *PublicHandler) GetPage(c *gin.Context) {
	page, err := h.public.Page(c.Request.Context(), c.Param("slug"))
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	c.Header("Cache-Control", publicMaxAge)
	response.RespondOK(c, gin.H{
		"page": gin.H{
			"slug":         page.Slug,
			"title":        page.Title,
			"description":  page.Description,
			"content":      page.Content,
			"published_at": page.PublishedAt,
		},
	})
}
