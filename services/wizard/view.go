package wizard

import (
	"carebook/models"
	"carebook/services/dial"
	"carebook/services/recurrence"
)

// Warning codes.
const (
	WarnLocationRequired = "location_required"
	WarnSubmitFailed     = "submit_failed"
)

// LocationLink is where the user fixes a missing location.
const LocationLink = "/profile/location"

// Warning is an inline notice. Persistent warnings stay until their cause is fixed.
type Warning struct {
	Code       string `json:"code"`
	Message    string `json:"message"`
	Link       string `json:"link,omitempty"`
	Persistent bool   `json:"persistent"`
}

// View is everything a client renders for a draft. Derived values are
// recomputed on every call.
type View struct {
	Draft      *models.BookingDraft `json:"draft"`
	StepName   string               `json:"stepName"`
	TotalSteps int                  `json:"totalSteps"`
	CanAdvance bool                 `json:"canAdvance"`
	CanSubmit  bool                 `json:"canSubmit"`
	Blocker    *ValidationError     `json:"blocker,omitempty"`

	StartTicks    []dial.Tick `json:"startTicks"`
	DurationTicks []dial.Tick `json:"durationTicks"`
	StartTime     string      `json:"startTime,omitempty"`
	End           *EndTime    `json:"end,omitempty"`
	Estimate      Estimate    `json:"estimate"`

	Pattern      string    `json:"pattern,omitempty"`
	PatternLabel string    `json:"patternLabel,omitempty"`
	Warnings     []Warning `json:"warnings,omitempty"`
}

// View builds the current view of the draft.
func (c *Controller) View() *View {
	d := c.d
	v := &View{
		Draft:         d,
		StepName:      StepName(d.Step),
		TotalSteps:    FinalStep,
		StartTicks:    StartTicks(),
		DurationTicks: DurationTicks(),
		Estimate:      c.Estimate(),
		Warnings:      []Warning{},
	}

	if d.Step < FinalStep {
		v.Blocker = checkStep(d, d.Step, c.today())
		v.CanAdvance = v.Blocker == nil
	} else {
		v.Blocker = c.Validate()
	}
	v.CanSubmit = d.Step == FinalStep && v.Blocker == nil && d.HasLocation

	if start, ok := SlotClock(d.StartSlot); ok {
		v.StartTime = start
	}
	if end, ok := ComputeEnd(d.StartSlot, d.DurationIdx); ok {
		v.End = &end
	}
	if p := draftPattern(d); p != "" {
		v.Pattern = p
		v.PatternLabel = recurrence.Format(p)
	}

	if !d.HasLocation {
		v.Warnings = append(v.Warnings, Warning{
			Code:       WarnLocationRequired,
			Message:    "Add your location to your profile before submitting.",
			Link:       LocationLink,
			Persistent: true,
		})
	}
	if d.LastError != "" {
		v.Warnings = append(v.Warnings, Warning{Code: WarnSubmitFailed, Message: d.LastError})
	}
	return v
}

// Estimate prices the draft with the rate fetched at open.
func (c *Controller) Estimate() Estimate {
	return estimateFor(c.d)
}

func estimateFor(d *models.BookingDraft) Estimate {
	h, _ := Hours(d.DurationIdx)
	switch d.Category {
	case models.CategoryAvailability:
		return Estimate{}
	case models.CategoryShadowTeacher:
		if d.Plan != "" {
			return EstimatePlan(d.HourlyRate, h, d.Plan)
		}
	}
	return EstimatePrice(d.HourlyRate, h)
}
