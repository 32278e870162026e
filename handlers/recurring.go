package handlers

import (
	"context"
	"net/http"

	"carebook/models"

	"github.com/gin-gonic/gin"
)

// RecurringStore is what the recurring screens need from the repository.
type RecurringStore interface {
	ListByParent(ctx context.Context, parentID string) ([]models.RecurringBooking, error)
	SetActive(ctx context.Context, parentID, id string, active bool) (*models.RecurringBooking, error)
	Delete(ctx context.Context, parentID, id string) error
}

type RecurringHandler struct {
	Recurring RecurringStore
}

func NewRecurringHandler(store RecurringStore) *RecurringHandler {
	return &RecurringHandler{Recurring: store}
}

func (h *RecurringHandler) ListHandler(c *gin.Context) {
	uid, ok := userID(c)
	if !ok {
		return
	}
	list, err := h.Recurring.ListByParent(c.Request.Context(), uid)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"recurring": list})
}

func (h *RecurringHandler) ToggleHandler(c *gin.Context) {
	uid, ok := userID(c)
	if !ok {
		return
	}
	var body struct {
		Active *bool `json:"active" binding:"required"`
	}
	if !bindJSON(c, &body) {
		return
	}

	rb, err := h.Recurring.SetActive(c.Request.Context(), uid, c.Param("id"), *body.Active)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, rb)
}

func (h *RecurringHandler) DeleteHandler(c *gin.Context) {
	uid, ok := userID(c)
	if !ok {
		return
	}
	if err := h.Recurring.Delete(c.Request.Context(), uid, c.Param("id")); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
