package models

import "time"

const (
	StatusPending    = "pending"
	StatusAccepted   = "accepted"
	StatusEnRoute    = "en_route"
	StatusInProgress = "in_progress"
	StatusCompleted  = "completed"
	StatusCancelled  = "cancelled"
)

// IsTrackable reports whether live location is shared for a booking in status.
func IsTrackable(status string) bool {
	return status == StatusEnRoute || status == StatusInProgress
}

// caregiverTransitions are the moves an assigned caregiver may make.
var caregiverTransitions = map[string][]string{
	StatusAccepted:   {StatusEnRoute, StatusCancelled},
	StatusEnRoute:    {StatusInProgress, StatusCancelled},
	StatusInProgress: {StatusCompleted},
}

// CanTransition reports whether a request may move from one status to
// another. Requesters may only cancel, and only before the visit starts.
func CanTransition(from, to string, byCaregiver bool) bool {
	if !byCaregiver {
		return to == StatusCancelled && (from == StatusPending || from == StatusAccepted)
	}
	for _, s := range caregiverTransitions[from] {
		if s == to {
			return true
		}
	}
	return false
}

// ServiceRequestPayload is what a submitted wizard hands to the request endpoint.
type ServiceRequestPayload struct {
	Category            string   `bson:"category" json:"category"`
	Date                string   `bson:"date" json:"date"`
	StartTime           string   `bson:"start_time" json:"start_time"`
	DurationHours       int      `bson:"duration_hours" json:"duration_hours"`
	EndTime             string   `bson:"end_time" json:"end_time"`
	EndsNextDay         bool     `bson:"ends_next_day" json:"ends_next_day"`
	NumChildren         int      `bson:"num_children" json:"num_children"`
	ChildIDs            []string `bson:"child_ids,omitempty" json:"child_ids,omitempty"`
	SpecialRequirements string   `bson:"special_requirements,omitempty" json:"special_requirements,omitempty"`
	EstimatedPrice      *float64 `bson:"estimated_price,omitempty" json:"estimated_price,omitempty"`

	// Shadow teacher.
	PlanType   string `bson:"plan_type,omitempty" json:"plan_type,omitempty"`
	SchoolName string `bson:"school_name,omitempty" json:"school_name,omitempty"`
	Grade      string `bson:"grade,omitempty" json:"grade,omitempty"`

	// Special needs.
	CareNeeds string `bson:"care_needs,omitempty" json:"care_needs,omitempty"`
}

// ServiceRequest is the persisted booking request.
type ServiceRequest struct {
	ID                    string `bson:"id" json:"id"`
	RequesterID           string `bson:"requesterId" json:"requesterId"`
	RecurringID           string `bson:"recurringId,omitempty" json:"recurringId,omitempty"`
	ServiceRequestPayload `bson:",inline"`
	Status                string         `bson:"status" json:"status"`
	Caregiver             *CaregiverView `bson:"caregiver,omitempty" json:"caregiver,omitempty"`
	Location              *GeoPoint      `bson:"location,omitempty" json:"location,omitempty"`
	CreatedAt             time.Time      `bson:"createdAt" json:"createdAt"`
}
