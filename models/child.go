package models

import "time"

const (
	ProfileStandard     = "STANDARD"
	ProfileSpecialNeeds = "SPECIAL_NEEDS"
)

// ChildProfile belongs to a parent's family profile.
type ChildProfile struct {
	ID          string    `bson:"id" json:"id"`
	OwnerID     string    `bson:"ownerId" json:"ownerId"`
	FirstName   string    `bson:"firstName" json:"firstName"`
	ProfileType string    `bson:"profileType" json:"profileType"`
	BirthDate   string    `bson:"birthDate,omitempty" json:"birthDate,omitempty"` // YYYY-MM-DD
	CareNotes   string    `bson:"careNotes,omitempty" json:"careNotes,omitempty"`
	CreatedAt   time.Time `bson:"createdAt" json:"createdAt"`
}

// NewChildInput is the "add new" sub-flow payload.
type NewChildInput struct {
	FirstName   string `json:"firstName" binding:"required"`
	ProfileType string `json:"profileType"`
	BirthDate   string `json:"birthDate,omitempty"`
	CareNotes   string `json:"careNotes,omitempty"`
}
