package wizard

import (
	"fmt"
	"time"

	"carebook/models"
	"carebook/services/recurrence"
)

// BuildRequestPayload assembles the category-tagged payload of a one-off
// booking. The draft must already be valid.
func BuildRequestPayload(d *models.BookingDraft) models.ServiceRequestPayload {
	start, _ := SlotClock(d.StartSlot)
	hours, _ := Hours(d.DurationIdx)
	end, _ := ComputeEnd(d.StartSlot, d.DurationIdx)

	p := models.ServiceRequestPayload{
		Category:            d.Category.Code(),
		Date:                d.Date,
		StartTime:           start,
		DurationHours:       hours,
		EndTime:             end.Clock,
		EndsNextDay:         end.NextDay,
		NumChildren:         participants(d),
		SpecialRequirements: d.Notes,
	}
	if len(d.ChildIDs) > 0 {
		p.ChildIDs = append([]string(nil), d.ChildIDs...)
	}

	est := estimateFor(d)
	if est.Available {
		amount := est.Amount
		p.EstimatedPrice = &amount
	}

	switch d.Category {
	case models.CategoryShadowTeacher:
		p.PlanType = d.Plan
		p.SchoolName = d.SchoolName
		p.Grade = d.Grade
	case models.CategorySpecialNeeds:
		p.CareNeeds = d.CareNeeds
	}
	return p
}

// BuildRecurring turns a recurring draft into a standing booking.
func BuildRecurring(d *models.BookingDraft, now time.Time) *models.RecurringBooking {
	start, _ := SlotClock(d.StartSlot)
	hours, _ := Hours(d.DurationIdx)
	pattern := draftPattern(d)

	rb := &models.RecurringBooking{
		ParentID:            d.OwnerID,
		Category:            d.Category,
		Pattern:             pattern,
		PatternLabel:        recurrence.Format(pattern),
		StartDate:           d.Date,
		StartTime:           start,
		DurationHours:       hours,
		NumChildren:         participants(d),
		SpecialRequirements: d.Notes,
		Location:            d.Location,
		Active:              true,
		CreatedAt:           now,
		UpdatedAt:           now,
	}
	if len(d.ChildIDs) > 0 {
		rb.ChildIDs = append([]string(nil), d.ChildIDs...)
	}
	return rb
}

// BuildBlock turns an availability draft into a block. One-time blocks are
// anchored in loc.
func BuildBlock(d *models.BookingDraft, now time.Time, loc *time.Location) (*models.AvailabilityBlock, error) {
	startClock, _ := SlotClock(d.StartSlot)
	end, _ := ComputeEnd(d.StartSlot, d.DurationIdx)
	b := &models.AvailabilityBlock{
		CaregiverID: d.OwnerID,
		Reason:      d.Reason,
		CreatedAt:   now,
	}

	if d.BlockType == models.BlockRecurring {
		b.IsRecurring = true
		b.Pattern = draftPattern(d)
		b.StartTime = startClock
		b.EndTime = end.Clock
		return b, nil
	}

	if loc == nil {
		loc = time.UTC
	}
	start, err := time.ParseInLocation(dateLayout+" 15:04", d.Date+" "+startClock, loc)
	if err != nil {
		return nil, fmt.Errorf("invalid block start: %w", err)
	}
	hours, _ := Hours(d.DurationIdx)
	finish := start.Add(time.Duration(hours) * time.Hour)
	b.Start = &start
	b.End = &finish
	return b, nil
}
