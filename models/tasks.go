package models

// GeofencePushPayload is queued for every geofence alert that survives dedupe.
type GeofencePushPayload struct {
	RecipientID string        `json:"recipientId"`
	Alert       GeofenceAlert `json:"alert"`
}

// MaterializePayload asks the worker to expand recurring bookings for Date (YYYY-MM-DD).
type MaterializePayload struct {
	Date string `json:"date"`
}
