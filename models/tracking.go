package models

import "time"

const (
	EventPosition      = "position"
	EventGeofenceAlert = "geofence_alert"
	EventSubscribed    = "subscribed"
	EventError         = "error"
)

// Geofence alert kinds.
const (
	AlertLeftArea    = "left_area"
	AlertEnteredArea = "entered_area"
)

// LocationUpdate is a caregiver position during an active booking.
type LocationUpdate struct {
	BookingID string    `json:"bookingId"`
	Lat       float64   `json:"lat"`
	Lng       float64   `json:"lng"`
	Accuracy  float64   `json:"accuracy,omitempty"`
	At        time.Time `json:"at"`
}

// GeofenceAlert reports that the caregiver crossed the distance threshold.
type GeofenceAlert struct {
	ID             string    `json:"id"`
	BookingID      string    `json:"bookingId"`
	Kind           string    `json:"kind"` // "left_area" or "entered_area"
	DistanceMeters float64   `json:"distanceMeters"`
	Message        string    `json:"message"`
	At             time.Time `json:"at"`
}

// TrackingEvent is the envelope pushed over the live channel.
type TrackingEvent struct {
	Type     string          `json:"type"`
	Scope    string          `json:"scope,omitempty"`
	Position *LocationUpdate `json:"position,omitempty"`
	Alert    *GeofenceAlert  `json:"alert,omitempty"`
	Message  string          `json:"message,omitempty"`
}

// TrackingCommand is sent by subscribers.
type TrackingCommand struct {
	Action string `json:"action"` // "subscribe" or "unsubscribe"
	Scope  string `json:"scope"`
}
