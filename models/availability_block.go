package models

import "time"

const (
	BlockOneTime   = "one_time"
	BlockRecurring = "recurring"
)

// AvailabilityBlock marks time a caregiver is unavailable.
// One-time blocks carry a concrete range; recurring blocks carry a weekly
// pattern with clock times and no fixed end.
type AvailabilityBlock struct {
	ID          string     `bson:"id" json:"id"`
	CaregiverID string     `bson:"caregiverId" json:"caregiverId"`
	Start       *time.Time `bson:"start,omitempty" json:"start,omitempty"`
	End         *time.Time `bson:"end,omitempty" json:"end,omitempty"`
	IsRecurring bool       `bson:"isRecurring" json:"isRecurring"`
	Pattern     string     `bson:"pattern,omitempty" json:"pattern,omitempty"`
	StartTime   string     `bson:"startTime,omitempty" json:"startTime,omitempty"` // HH:MM, recurring only
	EndTime     string     `bson:"endTime,omitempty" json:"endTime,omitempty"`     // HH:MM, recurring only
	Reason      string     `bson:"reason,omitempty" json:"reason,omitempty"`
	CreatedAt   time.Time  `bson:"createdAt" json:"createdAt"`
}
