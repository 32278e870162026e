package wizard

import "carebook/services/dial"

// Update is one batch of field changes. Nil fields are left untouched.
type Update struct {
	Date        *string    `json:"date,omitempty"`
	StartSlot   *int       `json:"startSlot,omitempty"`
	DurationIdx *int       `json:"durationIdx,omitempty"`
	Dial        *DialInput `json:"dial,omitempty"`

	Frequency *string   `json:"frequency,omitempty"`
	Days      *[]string `json:"days,omitempty"`
	ToggleDay *string   `json:"toggleDay,omitempty"`
	Plan      *string   `json:"plan,omitempty"`

	ToggleChildren []string `json:"toggleChildren,omitempty"`
	Headcount      *int     `json:"headcount,omitempty"`
	Notes          *string  `json:"notes,omitempty"`
	SchoolName     *string  `json:"schoolName,omitempty"`
	Grade          *string  `json:"grade,omitempty"`
	CareNeeds      *string  `json:"careNeeds,omitempty"`

	BlockType *string `json:"blockType,omitempty"`
	Reason    *string `json:"reason,omitempty"`
}

// DialInput routes a pointer event to the named dial.
type DialInput struct {
	Name string `json:"name"`
	dial.Event
}
