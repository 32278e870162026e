package handlers

import (
	"context"
	"net/http"
	"time"

	"carebook/models"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// LiveTracker is the tracking hub as seen by HTTP.
type LiveTracker interface {
	ServeWS(w http.ResponseWriter, r *http.Request, userID, role string) error
	Publish(ctx context.Context, caregiverID string, u models.LocationUpdate) (*models.GeofenceAlert, error)
}

type TrackingHandler struct {
	Hub LiveTracker
}

func NewTrackingHandler(hub LiveTracker) *TrackingHandler {
	return &TrackingHandler{Hub: hub}
}

// WebsocketHandler upgrades to the live channel. Subscriptions are sent as
// commands over the socket.
func (h *TrackingHandler) WebsocketHandler(c *gin.Context) {
	uid, ok := userID(c)
	if !ok {
		return
	}
	if err := h.Hub.ServeWS(c.Writer, c.Request, uid, c.GetString("role")); err != nil {
		getLogger(c).Warn("Websocket session failed", zap.String("userID", uid), zap.Error(err))
	}
}

// PublishLocationHandler records the caregiver's position for a booking.
func (h *TrackingHandler) PublishLocationHandler(c *gin.Context) {
	uid, ok := userID(c)
	if !ok {
		return
	}
	var body struct {
		Lat      *float64  `json:"lat" binding:"required"`
		Lng      *float64  `json:"lng" binding:"required"`
		Accuracy float64   `json:"accuracy"`
		At       time.Time `json:"at"`
	}
	if !bindJSON(c, &body) {
		return
	}

	alert, err := h.Hub.Publish(c.Request.Context(), uid, models.LocationUpdate{
		BookingID: c.Param("id"),
		Lat:       *body.Lat,
		Lng:       *body.Lng,
		Accuracy:  body.Accuracy,
		At:        body.At,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"alert": alert})
}
