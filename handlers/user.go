package handlers

import (
	"context"
	"net/http"

	"carebook/models"
	"carebook/utils"

	"github.com/gin-gonic/gin"
)

// UserStore reads and updates the caller's account.
type UserStore interface {
	GetUserByID(ctx context.Context, id string) (*models.User, error)
	UpdateLocation(ctx context.Context, id string, geo models.GeoPoint) error
	UpdateFCMToken(ctx context.Context, id, token string) error
}

type UserHandler struct {
	Users UserStore
}

func NewUserHandler(users UserStore) *UserHandler {
	return &UserHandler{Users: users}
}

func (h *UserHandler) GetMeHandler(c *gin.Context) {
	uid, ok := userID(c)
	if !ok {
		return
	}
	user, err := h.Users.GetUserByID(c.Request.Context(), uid)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"user": user, "hasLocation": user.HasLocation()})
}

// UpdateLocationHandler stores the geocoded service address the wizards require.
func (h *UserHandler) UpdateLocationHandler(c *gin.Context) {
	uid, ok := userID(c)
	if !ok {
		return
	}
	var body struct {
		Lat *float64 `json:"lat" binding:"required"`
		Lng *float64 `json:"lng" binding:"required"`
	}
	if !bindJSON(c, &body) {
		return
	}
	if *body.Lat < -90 || *body.Lat > 90 || *body.Lng < -180 || *body.Lng > 180 {
		c.JSON(http.StatusBadRequest, utils.ErrorResponse{Message: "Coordinates out of range"})
		return
	}

	if err := h.Users.UpdateLocation(c.Request.Context(), uid, models.NewGeoPoint(*body.Lat, *body.Lng)); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Location updated"})
}

func (h *UserHandler) UpdateFCMTokenHandler(c *gin.Context) {
	uid, ok := userID(c)
	if !ok {
		return
	}
	var body struct {
		Token string `json:"token" binding:"required"`
	}
	if !bindJSON(c, &body) {
		return
	}
	if err := h.Users.UpdateFCMToken(c.Request.Context(), uid, body.Token); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "FCM token updated"})
}
