package models

import "time"

// RecurringBooking is a standing request that the materializer expands into
// concrete service requests.
type RecurringBooking struct {
	ID                  string          `bson:"id" json:"id"`
	ParentID            string          `bson:"parentId" json:"parentId"`
	Category            ServiceCategory `bson:"category" json:"category"`
	Pattern             string          `bson:"pattern" json:"pattern"`
	PatternLabel        string          `bson:"-" json:"patternLabel,omitempty"`
	StartDate           string          `bson:"startDate" json:"startDate"`
	StartTime           string          `bson:"startTime" json:"startTime"`
	DurationHours       int             `bson:"durationHours" json:"durationHours"`
	NumChildren         int             `bson:"numChildren" json:"numChildren"`
	ChildIDs            []string        `bson:"childIds,omitempty" json:"childIds,omitempty"`
	SpecialRequirements string          `bson:"specialRequirements,omitempty" json:"specialRequirements,omitempty"`
	Location            *GeoPoint       `bson:"location,omitempty" json:"location,omitempty"`
	Active              bool            `bson:"active" json:"active"`
	LastMaterialized    string          `bson:"lastMaterialized,omitempty" json:"lastMaterialized,omitempty"`
	CreatedAt           time.Time       `bson:"createdAt" json:"createdAt"`
	UpdatedAt           time.Time       `bson:"updatedAt" json:"updatedAt"`
}
