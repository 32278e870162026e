package wizard

import (
	"strings"
	"time"

	"carebook/models"
	"carebook/services/dial"
	"carebook/services/recurrence"
)

// Names of the dials a draft owns.
const (
	DialStart    = "start"
	DialDuration = "duration"
)

// Controller drives one draft through its steps. It does no I/O; the
// service loads a draft, applies a controller operation and saves the result.
type Controller struct {
	d   *models.BookingDraft
	now func() time.Time
}

// NewController wraps d. now defaults to time.Now.
func NewController(d *models.BookingDraft, now func() time.Time) *Controller {
	if now == nil {
		now = time.Now
	}
	if d.Step < StepSchedule || d.Step > FinalStep {
		d.Step = StepSchedule
	}
	return &Controller{d: d, now: now}
}

// Draft returns the wrapped draft.
func (c *Controller) Draft() *models.BookingDraft { return c.d }

func (c *Controller) today() string {
	return c.now().Format(dateLayout)
}

func (c *Controller) SetDate(date string) *ValidationError {
	date = strings.TrimSpace(date)
	if date != "" {
		if _, err := time.Parse(dateLayout, date); err != nil {
			return invalid(StepDateTime, "date", "Date must be YYYY-MM-DD")
		}
	}
	c.d.Date = date
	return nil
}

func (c *Controller) SetStartSlot(i int) *ValidationError {
	if _, ok := SlotMinutes(i); !ok && i != models.Unset {
		return invalid(StepDateTime, "startSlot", "Start time is outside the schedule")
	}
	c.d.StartSlot = i
	return nil
}

func (c *Controller) SetDuration(i int) *ValidationError {
	if _, ok := Hours(i); !ok && i != models.Unset {
		return invalid(StepDateTime, "durationIdx", "Unsupported duration")
	}
	c.d.DurationIdx = i
	return nil
}

// Drag feeds a pointer event to one of the draft's dials. The resulting index
// is written to the draft on every recomputation.
func (c *Controller) Drag(name string, ev dial.Event) error {
	var (
		ticks   []dial.Tick
		current int
		set     func(int)
	)
	switch name {
	case DialStart:
		ticks, current, set = StartTicks(), c.d.StartSlot, func(i int) { c.d.StartSlot = i }
	case DialDuration:
		ticks, current, set = DurationTicks(), c.d.DurationIdx, func(i int) { c.d.DurationIdx = i }
	default:
		return ErrUnknownDial
	}

	if c.d.Dials == nil {
		c.d.Dials = map[string]models.DialState{}
	}
	dl := dial.New(ticks, current, set)
	dl.Restore(c.d.Dials[name].Dragging)
	if err := dl.Apply(ev); err != nil {
		return err
	}
	c.d.Dials[name] = models.DialState{Dragging: dl.Dragging()}
	return nil
}

// SetFrequency changes the recurrence frequency and clears a day selection
// that no longer fits it.
func (c *Controller) SetFrequency(freq string) *ValidationError {
	freq = strings.ToLower(strings.TrimSpace(freq))
	if !recurrence.ValidFrequency(freq) {
		return invalid(StepSchedule, "frequency", "Unknown frequency")
	}
	if freq != c.d.Frequency {
		c.d.Days = nil
	}
	c.d.Frequency = freq
	return nil
}

func (c *Controller) ToggleDay(day string) *ValidationError {
	if c.d.Category == models.CategoryRecurring && c.d.Frequency == recurrence.FrequencyDaily {
		return invalid(StepSchedule, "days", "Daily bookings have no day selection")
	}
	return toggleDay(c.d, day)
}

// SetDays replaces the whole day selection. Duplicates collapse.
func (c *Controller) SetDays(days []string) *ValidationError {
	c.d.Days = nil
	for _, day := range days {
		if err := c.ToggleDay(day); err != nil {
			return err
		}
	}
	c.d.Days = canonicalDays(c.monthly(), days)
	return nil
}

func (c *Controller) monthly() bool {
	return c.d.Category == models.CategoryRecurring && c.d.Frequency == recurrence.FrequencyMonthly
}

func (c *Controller) SetPlan(plan string) *ValidationError {
	if !ValidPlan(plan) {
		return invalid(StepSchedule, "plan", "Unknown plan")
	}
	c.d.Plan = plan
	return nil
}

// SelectChild toggles a child from the profiles fetched at open.
func (c *Controller) SelectChild(id string) *ValidationError {
	known := false
	for _, ch := range c.d.Children {
		if ch.ID == id {
			known = true
			break
		}
	}
	if !known {
		return invalid(StepDetails, "childIds", "Unknown child profile")
	}

	for i, existing := range c.d.ChildIDs {
		if existing == id {
			c.d.ChildIDs = append(c.d.ChildIDs[:i:i], c.d.ChildIDs[i+1:]...)
			return nil
		}
	}
	c.d.ChildIDs = append(c.d.ChildIDs, id)
	return nil
}

func (c *Controller) SetHeadcount(n int) *ValidationError {
	if n < 0 {
		return invalid(StepDetails, "headcount", "Headcount cannot be negative")
	}
	c.d.Headcount = n
	return nil
}

func (c *Controller) SetNotes(notes string) {
	c.d.Notes = strings.TrimSpace(notes)
}

// SetExtras stores the category-specific detail fields. Empty values are kept as-is.
func (c *Controller) SetExtras(school, grade, careNeeds *string) {
	if school != nil {
		c.d.SchoolName = strings.TrimSpace(*school)
	}
	if grade != nil {
		c.d.Grade = strings.TrimSpace(*grade)
	}
	if careNeeds != nil {
		c.d.CareNeeds = strings.TrimSpace(*careNeeds)
	}
}

func (c *Controller) SetBlockType(t string) *ValidationError {
	if t != models.BlockOneTime && t != models.BlockRecurring {
		return invalid(StepSchedule, "blockType", "Unknown block type")
	}
	if t != c.d.BlockType {
		c.d.Days = nil
	}
	c.d.BlockType = t
	return nil
}

func (c *Controller) SetReason(reason string) {
	c.d.Reason = strings.TrimSpace(reason)
}

// AppendChild adds a freshly created profile to the local list and selects it.
func (c *Controller) AppendChild(ch models.ChildProfile) {
	c.d.Children = append(c.d.Children, ch)
	if !contains(c.d.ChildIDs, ch.ID) {
		c.d.ChildIDs = append(c.d.ChildIDs, ch.ID)
	}
}

// Next advances one step if the current step is complete.
func (c *Controller) Next() *ValidationError {
	if c.d.Step >= FinalStep {
		return invalid(c.d.Step, "step", "Already on the last step")
	}
	if err := checkStep(c.d, c.d.Step, c.today()); err != nil {
		return err
	}
	c.d.Step++
	return nil
}

// Back is always permitted and does nothing on the first step.
func (c *Controller) Back() {
	if c.d.Step > StepSchedule {
		c.d.Step--
	}
}

// Validate runs every step predicate in order. Submission is only reachable
// from the final step.
func (c *Controller) Validate() *ValidationError {
	if !c.d.Category.Valid() {
		return invalid(StepSchedule, "category", "Unknown service category")
	}
	today := c.today()
	for step := StepSchedule; step <= FinalStep; step++ {
		if err := checkStep(c.d, step, today); err != nil {
			return err
		}
	}
	if c.d.Step != FinalStep {
		return invalid(c.d.Step, "step", "Finish the remaining steps first")
	}
	return nil
}

// Apply dispatches every non-nil field of u. It stops at the first invalid value.
func (c *Controller) Apply(u Update) error {
	if u.Frequency != nil {
		if err := c.SetFrequency(*u.Frequency); err != nil {
			return err
		}
	}
	if u.BlockType != nil {
		if err := c.SetBlockType(*u.BlockType); err != nil {
			return err
		}
	}
	if u.Days != nil {
		if err := c.SetDays(*u.Days); err != nil {
			return err
		}
	}
	if u.ToggleDay != nil {
		if err := c.ToggleDay(*u.ToggleDay); err != nil {
			return err
		}
	}
	if u.Plan != nil {
		if err := c.SetPlan(*u.Plan); err != nil {
			return err
		}
	}
	if u.Date != nil {
		if err := c.SetDate(*u.Date); err != nil {
			return err
		}
	}
	if u.StartSlot != nil {
		if err := c.SetStartSlot(*u.StartSlot); err != nil {
			return err
		}
	}
	if u.DurationIdx != nil {
		if err := c.SetDuration(*u.DurationIdx); err != nil {
			return err
		}
	}
	if u.Dial != nil {
		if err := c.Drag(u.Dial.Name, u.Dial.Event); err != nil {
			return err
		}
	}
	for _, id := range u.ToggleChildren {
		if err := c.SelectChild(id); err != nil {
			return err
		}
	}
	if u.Headcount != nil {
		if err := c.SetHeadcount(*u.Headcount); err != nil {
			return err
		}
	}
	if u.Notes != nil {
		c.SetNotes(*u.Notes)
	}
	c.SetExtras(u.SchoolName, u.Grade, u.CareNeeds)
	if u.Reason != nil {
		c.SetReason(*u.Reason)
	}
	return nil
}

func contains(list []string, v string) bool {
	for _, s := range list {
		if s == v {
			return true
		}
	}
	return false
}
