package models

import "time"

// Unset marks a slot or duration index the user has not chosen yet.
const Unset = -1

// BookingDraft is the transient state of one open wizard. It lives only
// for the wizard's lifetime and is turned into a payload on submit.
type BookingDraft struct {
	ID       string          `json:"id"`
	OwnerID  string          `json:"ownerId"`
	Category ServiceCategory `json:"category"`
	Step     int             `json:"step"`

	Date        string `json:"date,omitempty"` // YYYY-MM-DD
	StartSlot   int    `json:"startSlot"`
	DurationIdx int    `json:"durationIdx"`

	// Participants. Children is the local copy fetched when the wizard opened.
	Children  []ChildProfile `json:"children,omitempty"`
	ChildIDs  []string       `json:"childIds,omitempty"`
	Headcount int            `json:"headcount,omitempty"`
	Notes     string         `json:"notes,omitempty"`

	// Recurring and availability schedules.
	Frequency string   `json:"frequency,omitempty"`
	Days      []string `json:"days,omitempty"`

	// Shadow teacher.
	Plan       string `json:"plan,omitempty"`
	SchoolName string `json:"schoolName,omitempty"`
	Grade      string `json:"grade,omitempty"`

	// Special needs.
	CareNeeds string `json:"careNeeds,omitempty"`

	// Availability blocks.
	BlockType string `json:"blockType,omitempty"`
	Reason    string `json:"reason,omitempty"`

	// Fetched once at open.
	HourlyRate  *float64  `json:"hourlyRate,omitempty"`
	HasLocation bool      `json:"hasLocation"`
	Location    *GeoPoint `json:"location,omitempty"`

	SubmitAttempts int    `json:"submitAttempts,omitempty"`
	LastError      string `json:"lastError,omitempty"`

	Dials     map[string]DialState `json:"dials,omitempty"`
	CreatedAt time.Time            `json:"createdAt"`
}

// DialState is the drag state of one dial owned by a draft.
type DialState struct {
	Dragging bool `json:"dragging"`
}
