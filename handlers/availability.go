package handlers

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"carebook/models"

	"github.com/gin-gonic/gin"
)

// AvailabilityStore reads and removes a caregiver's blocks.
type AvailabilityStore interface {
	ListByCaregiver(ctx context.Context, caregiverID string) ([]models.AvailabilityBlock, error)
	BlocksOn(ctx context.Context, caregiverID string, day time.Time) ([]models.AvailabilityBlock, error)
	Delete(ctx context.Context, caregiverID, id string) error
}

type AvailabilityHandler struct {
	Blocks AvailabilityStore
}

func NewAvailabilityHandler(blocks AvailabilityStore) *AvailabilityHandler {
	return &AvailabilityHandler{Blocks: blocks}
}

// ListHandler returns every block, or only those in effect on ?date=YYYY-MM-DD.
func (h *AvailabilityHandler) ListHandler(c *gin.Context) {
	uid, ok := userID(c)
	if !ok {
		return
	}

	var (
		blocks []models.AvailabilityBlock
		err    error
	)
	if date := c.Query("date"); date != "" {
		day, perr := time.Parse("2006-01-02", date)
		if perr != nil {
			respondError(c, fmt.Errorf("%w: date must be YYYY-MM-DD", errBadInput))
			return
		}
		blocks, err = h.Blocks.BlocksOn(c.Request.Context(), uid, day)
	} else {
		blocks, err = h.Blocks.ListByCaregiver(c.Request.Context(), uid)
	}
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"blocks": blocks})
}

func (h *AvailabilityHandler) DeleteHandler(c *gin.Context) {
	uid, ok := userID(c)
	if !ok {
		return
	}
	if err := h.Blocks.Delete(c.Request.Context(), uid, c.Param("id")); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
