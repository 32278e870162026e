package handlers

import (
	"context"
	"fmt"
	"net/http"

	"carebook/models"
	"carebook/services/wizard"

	"github.com/gin-gonic/gin"
)

// WizardHandler drives the booking wizards over HTTP.
type WizardHandler struct {
	Service wizard.WizardService
}

func NewWizardHandler(svc wizard.WizardService) *WizardHandler {
	return &WizardHandler{Service: svc}
}

func (h *WizardHandler) OpenHandler(c *gin.Context) {
	uid, ok := userID(c)
	if !ok {
		return
	}

	var body struct {
		Category string `json:"category" binding:"required"`
	}
	if !bindJSON(c, &body) {
		return
	}
	category, valid := models.ParseCategory(body.Category)
	if !valid {
		respondError(c, fmt.Errorf("%w: unknown category %q", errBadInput, body.Category))
		return
	}

	view, err := h.Service.Open(c.Request.Context(), uid, category)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, view)
}

func (h *WizardHandler) GetHandler(c *gin.Context) {
	h.viewCall(c, h.Service.Get)
}

func (h *WizardHandler) NextHandler(c *gin.Context) {
	h.viewCall(c, h.Service.Next)
}

func (h *WizardHandler) BackHandler(c *gin.Context) {
	h.viewCall(c, h.Service.Back)
}

func (h *WizardHandler) UpdateHandler(c *gin.Context) {
	uid, ok := userID(c)
	if !ok {
		return
	}
	var u wizard.Update
	if !bindJSON(c, &u) {
		return
	}

	view, err := h.Service.Update(c.Request.Context(), uid, c.Param("id"), u)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

func (h *WizardHandler) AddChildHandler(c *gin.Context) {
	uid, ok := userID(c)
	if !ok {
		return
	}
	var in models.NewChildInput
	if !bindJSON(c, &in) {
		return
	}

	view, err := h.Service.AddChild(c.Request.Context(), uid, c.Param("id"), in)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

func (h *WizardHandler) SubmitHandler(c *gin.Context) {
	uid, ok := userID(c)
	if !ok {
		return
	}

	res, err := h.Service.Submit(c.Request.Context(), uid, c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, res)
}

func (h *WizardHandler) CloseHandler(c *gin.Context) {
	uid, ok := userID(c)
	if !ok {
		return
	}
	if err := h.Service.Close(c.Request.Context(), uid, c.Param("id")); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *WizardHandler) viewCall(c *gin.Context, fn func(ctx context.Context, ownerID, draftID string) (*wizard.View, error)) {
	uid, ok := userID(c)
	if !ok {
		return
	}

	view, err := fn(c.Request.Context(), uid, c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, view)
}
