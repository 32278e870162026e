package handlers

import (
	"context"
	"net/http"

	"carebook/models"
	"carebook/services/recurrence"
	"carebook/utils"

	"github.com/gin-gonic/gin"
)

// CatalogLister lists active services.
type CatalogLister interface {
	List(ctx context.Context) ([]models.CatalogService, error)
}

type CatalogHandler struct {
	Catalog CatalogLister
}

func NewCatalogHandler(catalog CatalogLister) *CatalogHandler {
	return &CatalogHandler{Catalog: catalog}
}

func (h *CatalogHandler) ListHandler(c *gin.Context) {
	services, err := h.Catalog.List(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"services": services})
}

// FormatPatternHandler decodes a stored recurrence string into its display label.
func FormatPatternHandler(c *gin.Context) {
	pattern := c.Query("pattern")
	if pattern == "" {
		c.JSON(http.StatusBadRequest, utils.ErrorResponse{Message: "Missing pattern"})
		return
	}

	resp := gin.H{"pattern": pattern, "label": recurrence.Format(pattern)}
	if p, err := recurrence.Parse(pattern); err == nil {
		resp["frequency"] = p.Frequency
		resp["valid"] = true
	} else {
		resp["valid"] = false
	}
	c.JSON(http.StatusOK, resp)
}
