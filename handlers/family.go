package handlers

import (
	"context"
	"net/http"
	"strings"
	"time"

	"carebook/models"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// ChildStore lists and creates a parent's children.
type ChildStore interface {
	ListChildren(ctx context.Context, ownerID string) ([]models.ChildProfile, error)
	CreateChild(ctx context.Context, child *models.ChildProfile) error
}

type FamilyHandler struct {
	Children ChildStore
}

func NewFamilyHandler(children ChildStore) *FamilyHandler {
	return &FamilyHandler{Children: children}
}

func (h *FamilyHandler) ListChildrenHandler(c *gin.Context) {
	uid, ok := userID(c)
	if !ok {
		return
	}
	children, err := h.Children.ListChildren(c.Request.Context(), uid)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"children": children})
}

func (h *FamilyHandler) CreateChildHandler(c *gin.Context) {
	uid, ok := userID(c)
	if !ok {
		return
	}
	var in models.NewChildInput
	if !bindJSON(c, &in) {
		return
	}

	profileType := strings.ToUpper(strings.TrimSpace(in.ProfileType))
	if profileType != models.ProfileSpecialNeeds {
		profileType = models.ProfileStandard
	}
	child := &models.ChildProfile{
		ID:          uuid.New().String(),
		OwnerID:     uid,
		FirstName:   strings.TrimSpace(in.FirstName),
		ProfileType: profileType,
		BirthDate:   in.BirthDate,
		CareNotes:   in.CareNotes,
		CreatedAt:   time.Now(),
	}
	if err := h.Children.CreateChild(c.Request.Context(), child); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, child)
}
