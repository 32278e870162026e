// models/user.go
package models

import "time"

const (
	RoleParent    = "parent"
	RoleCaregiver = "caregiver"
)

// User is the account record the wizards read for the location precondition.
type User struct {
	ID          string    `bson:"id" json:"id"`
	Email       string    `bson:"email" json:"email"`
	FirstName   string    `bson:"firstName" json:"firstName"`
	Role        string    `bson:"role" json:"role"`
	LocationGeo *GeoPoint `bson:"locationGeo,omitempty" json:"locationGeo,omitempty"` // nil until the address is geocoded
	FCMToken    string    `bson:"fcmToken,omitempty" json:"-"`
	CreatedAt   time.Time `bson:"createdAt" json:"createdAt"`
}

// HasLocation reports whether the profile carries geocoded coordinates.
func (u *User) HasLocation() bool {
	return u != nil && u.LocationGeo != nil && u.LocationGeo.Valid()
}
