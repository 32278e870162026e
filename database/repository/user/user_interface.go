package userRepo

import (
	"context"

	"carebook/models"
)

// UserRepository defines methods for user data access.
type UserRepository interface {
	// GetUserByID retrieves a user by its unique ID.
	GetUserByID(ctx context.Context, id string) (*models.User, error)
	// Create inserts a new user record.
	Create(ctx context.Context, user *models.User) error
	// UpdateLocation stores geocoded coordinates for the user's address.
	UpdateLocation(ctx context.Context, id string, geo models.GeoPoint) error
	// UpdateFCMToken registers the device that receives pushes.
	UpdateFCMToken(ctx context.Context, id, token string) error
}
