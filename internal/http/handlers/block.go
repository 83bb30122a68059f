package handlers

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/angelo-odois/postangelo-sub000/internal/content"
	"github.com/angelo-odois/postangelo-sub000/internal/http/response"
	"github.com/angelo-odois/postangelo-sub000/internal/observability"
	"github.com/angelo-odois/postangelo-sub000/internal/platform/apierr"
)

// BlockHandler serves the editor palette and dry-run validation.
type BlockHandler struct {
	reg     *content.Registry
	metrics *observability.Metrics
}

func NewBlockHandler(reg *content.Registry, metrics *observability.Metrics) *BlockHandler {
	return &BlockHandler{reg: reg, metrics: metrics}
}

// GET /api/blocks
func (h *BlockHandler) ListBlockTypes(c *gin.Context) {
	response.RespondOK(c, gin.H{"types": h.reg.Types()})
}

// GET /api/blocks/:type
// Also returns a ready-to-insert block with default props and a fresh id.
func (h *BlockHandler) GetBlockType(c *gin.Context) {
	bt, ok := h.reg.Get(c.Param("type"))
	if !ok {
		response.RespondAPIError(c, apierr.NotFound(fmt.Errorf("unknown block type %q", c.Param("type"))))
		return
	}
	response.RespondOK(c, gin.H{
		"type":     bt,
		"defaults": bt.Fields.Defaults(),
		"block":    content.NewBlock(h.reg, bt.Type),
	})
}

// POST /api/content/validate
func (h *BlockHandler) ValidateDocument(c *gin.Context) {
	raw, err := readBody(c)
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	doc, err := content.Validate(h.reg, raw)
	h.metrics.IncValidation(err == nil)
	if err != nil {
		response.RespondAPIError(c, apierr.New(http.StatusUnprocessableEntity, apierr.CodeInvalidDocument, err))
		return
	}
	count := 0
	doc.Walk(func(content.Block, int) bool {
		count++
		return true
	})
	response.RespondOK(c, gin.H{"valid": true, "blocks": count})
}
