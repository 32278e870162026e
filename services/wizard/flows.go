package wizard

import (
	"strconv"
	"time"

	"carebook/models"
	"carebook/services/recurrence"
)

// Every flow has three steps.
const (
	StepSchedule = 1
	StepDateTime = 2
	StepDetails  = 3
	FinalStep    = StepDetails
)

const dateLayout = "2006-01-02"

var stepNames = map[int]string{
	StepSchedule: "schedule",
	StepDateTime: "datetime",
	StepDetails:  "details",
}

// StepName returns the short name of step.
func StepName(step int) string {
	return stepNames[step]
}

// draftPattern encodes the schedule selection of a recurring or availability draft.
func draftPattern(d *models.BookingDraft) string {
	switch d.Category {
	case models.CategoryRecurring:
		if d.Frequency == "" {
			return ""
		}
		return recurrence.Generate(d.Frequency, d.Days)
	case models.CategoryAvailability:
		if d.BlockType != models.BlockRecurring {
			return ""
		}
		return recurrence.Generate(recurrence.FrequencyWeekly, d.Days)
	}
	return ""
}

// checkStep runs the completeness predicate of one step. today is YYYY-MM-DD.
func checkStep(d *models.BookingDraft, step int, today string) *ValidationError {
	switch step {
	case StepSchedule:
		return checkSchedule(d)
	case StepDateTime:
		return checkDateTime(d, today)
	case StepDetails:
		return checkDetails(d)
	}
	return invalid(step, "step", "unknown step")
}

func checkSchedule(d *models.BookingDraft) *ValidationError {
	switch d.Category {
	case models.CategoryShadowTeacher:
		if !ValidPlan(d.Plan) {
			return invalid(StepSchedule, "plan", "Choose a plan to continue")
		}
	case models.CategoryRecurring:
		if !recurrence.ValidFrequency(d.Frequency) {
			return invalid(StepSchedule, "frequency", "Choose how often the booking repeats")
		}
		if d.Frequency != recurrence.FrequencyDaily && countDays(draftPattern(d)) == 0 {
			return invalid(StepSchedule, "days", "Select at least one day")
		}
	case models.CategoryAvailability:
		switch d.BlockType {
		case models.BlockOneTime:
		case models.BlockRecurring:
			if countDays(draftPattern(d)) == 0 {
				return invalid(StepSchedule, "days", "Select at least one weekday")
			}
		default:
			return invalid(StepSchedule, "blockType", "Choose a block type")
		}
	}
	return nil
}

func checkDateTime(d *models.BookingDraft, today string) *ValidationError {
	needsDate := !(d.Category == models.CategoryAvailability && d.BlockType == models.BlockRecurring)
	if needsDate {
		if d.Date == "" {
			return invalid(StepDateTime, "date", "Pick a date")
		}
		if _, err := time.Parse(dateLayout, d.Date); err != nil {
			return invalid(StepDateTime, "date", "Date must be YYYY-MM-DD")
		}
		if d.Date < today {
			return invalid(StepDateTime, "date", "Date cannot be in the past")
		}
	}
	if _, ok := SlotMinutes(d.StartSlot); !ok {
		return invalid(StepDateTime, "startSlot", "Pick a start time")
	}
	if _, ok := Hours(d.DurationIdx); !ok {
		return invalid(StepDateTime, "durationIdx", "Pick a duration")
	}
	return nil
}

func checkDetails(d *models.BookingDraft) *ValidationError {
	if d.Category == models.CategoryAvailability {
		return nil
	}
	if participants(d) == 0 {
		return invalid(StepDetails, "children", "Select at least one child or enter how many")
	}
	return nil
}

// participants prefers explicit child selection over the raw headcount.
func participants(d *models.BookingDraft) int {
	if len(d.ChildIDs) > 0 {
		return len(d.ChildIDs)
	}
	return d.Headcount
}

func countDays(pattern string) int {
	p, err := recurrence.Parse(pattern)
	if err != nil {
		return 0
	}
	return len(p.Weekdays) + len(p.MonthDays)
}

// toggleDay flips day in the draft's selection and keeps it canonical.
func toggleDay(d *models.BookingDraft, day string) *ValidationError {
	monthly := d.Category == models.CategoryRecurring && d.Frequency == recurrence.FrequencyMonthly

	var token string
	if monthly {
		n, err := strconv.Atoi(day)
		if err != nil || n < 1 || n > recurrence.MaxMonthDay {
			return invalid(StepSchedule, "days", "Pick a day between 1 and 28")
		}
		token = strconv.Itoa(n)
	} else {
		w, ok := recurrence.NormalizeWeekday(day)
		if !ok {
			return invalid(StepSchedule, "days", "Unknown weekday")
		}
		token = w
	}

	next := make([]string, 0, len(d.Days)+1)
	found := false
	for _, existing := range d.Days {
		if existing == token {
			found = true
			continue
		}
		next = append(next, existing)
	}
	if !found {
		next = append(next, token)
	}
	d.Days = canonicalDays(monthly, next)
	return nil
}

func canonicalDays(monthly bool, days []string) []string {
	freq := recurrence.FrequencyWeekly
	if monthly {
		freq = recurrence.FrequencyMonthly
	}
	p, err := recurrence.Parse(recurrence.Generate(freq, days))
	if err != nil {
		return nil
	}
	if !monthly {
		return p.Weekdays
	}
	out := make([]string, len(p.MonthDays))
	for i, n := range p.MonthDays {
		out[i] = strconv.Itoa(n)
	}
	return out
}
