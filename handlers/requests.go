package handlers

import (
	"context"
	"fmt"
	"net/http"

	"carebook/database"
	"carebook/models"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// RequestStore is the slice of the request repository the handlers use.
type RequestStore interface {
	GetRequest(ctx context.Context, id string) (*models.ServiceRequest, error)
	ListByRequester(ctx context.Context, requesterID string) ([]models.ServiceRequest, error)
	UpdateStatus(ctx context.Context, id, status string) error
	Assign(ctx context.Context, id string, caregiver models.CaregiverView) (*models.ServiceRequest, error)
}

// UserReader loads an account.
type UserReader interface {
	GetUserByID(ctx context.Context, id string) (*models.User, error)
}

// GeofenceResetter forgets live geofence state of a booking.
type GeofenceResetter interface {
	Reset(bookingID string)
}

type RequestHandler struct {
	Requests RequestStore
	Users    UserReader
	Tracking GeofenceResetter
}

func NewRequestHandler(requests RequestStore, users UserReader, tracking GeofenceResetter) *RequestHandler {
	return &RequestHandler{Requests: requests, Users: users, Tracking: tracking}
}

func (h *RequestHandler) ListHandler(c *gin.Context) {
	uid, ok := userID(c)
	if !ok {
		return
	}
	list, err := h.Requests.ListByRequester(c.Request.Context(), uid)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"requests": list})
}

func (h *RequestHandler) GetHandler(c *gin.Context) {
	uid, ok := userID(c)
	if !ok {
		return
	}
	req, err := h.visible(c.Request.Context(), uid, c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, req)
}

// AcceptHandler assigns a pending request to the calling caregiver.
func (h *RequestHandler) AcceptHandler(c *gin.Context) {
	uid, ok := userID(c)
	if !ok {
		return
	}

	user, err := h.Users.GetUserByID(c.Request.Context(), uid)
	if err != nil {
		respondError(c, err)
		return
	}
	req, err := h.Requests.Assign(c.Request.Context(), c.Param("id"), models.CaregiverView{
		ID:   user.ID,
		Name: user.FirstName,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	getLogger(c).Info("Request accepted", zap.String("requestID", req.ID), zap.String("caregiverID", uid))
	c.JSON(http.StatusOK, req)
}

func (h *RequestHandler) UpdateStatusHandler(c *gin.Context) {
	uid, ok := userID(c)
	if !ok {
		return
	}
	var body struct {
		Status string `json:"status" binding:"required"`
	}
	if !bindJSON(c, &body) {
		return
	}

	ctx := c.Request.Context()
	req, err := h.visible(ctx, uid, c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	byCaregiver := req.Caregiver != nil && req.Caregiver.ID == uid
	if !models.CanTransition(req.Status, body.Status, byCaregiver) {
		respondError(c, fmt.Errorf("%w: cannot move from %s to %s", errBadInput, req.Status, body.Status))
		return
	}
	if err := h.Requests.UpdateStatus(ctx, req.ID, body.Status); err != nil {
		respondError(c, err)
		return
	}
	h.Tracking.Reset(req.ID)

	req.Status = body.Status
	c.JSON(http.StatusOK, req)
}

// visible loads a request the caller is a party to.
func (h *RequestHandler) visible(ctx context.Context, uid, id string) (*models.ServiceRequest, error) {
	req, err := h.Requests.GetRequest(ctx, id)
	if err != nil {
		return nil, err
	}
	if req.RequesterID == uid || (req.Caregiver != nil && req.Caregiver.ID == uid) {
		return req, nil
	}
	return nil, fmt.Errorf("request %s: %w", id, database.ErrForbidden)
}
