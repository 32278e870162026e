package wizard

import (
	"fmt"
	"strconv"

	"carebook/services/dial"
)

// The start-time grid runs from 07:00 to 23:30 in half-hour steps.
const (
	firstSlotMinutes = 7 * 60
	slotStepMinutes  = 30
	SlotCount        = 34
)

// DurationHours are the only durations a draft may select.
var DurationHours = []int{1, 2, 3, 4, 5, 6, 8, 10, 12}

// SlotMinutes returns minutes after midnight for slot i.
func SlotMinutes(i int) (int, bool) {
	if i < 0 || i >= SlotCount {
		return 0, false
	}
	return firstSlotMinutes + i*slotStepMinutes, true
}

// SlotClock returns the HH:MM start time of slot i.
func SlotClock(i int) (string, bool) {
	m, ok := SlotMinutes(i)
	if !ok {
		return "", false
	}
	return clock(m), true
}

// SlotForClock finds the slot that starts at hh:mm.
func SlotForClock(hhmm string) (int, bool) {
	for i := 0; i < SlotCount; i++ {
		if c, _ := SlotClock(i); c == hhmm {
			return i, true
		}
	}
	return 0, false
}

// Hours returns the duration at index i.
func Hours(i int) (int, bool) {
	if i < 0 || i >= len(DurationHours) {
		return 0, false
	}
	return DurationHours[i], true
}

// StartTicks feeds the start-time dial.
func StartTicks() []dial.Tick {
	ticks := make([]dial.Tick, SlotCount)
	for i := range ticks {
		m, _ := SlotMinutes(i)
		ticks[i] = dial.Tick{Value: m, Label: clock(m), Display: display12h(m)}
	}
	return ticks
}

// DurationTicks feeds the duration dial.
func DurationTicks() []dial.Tick {
	ticks := make([]dial.Tick, len(DurationHours))
	for i, h := range DurationHours {
		label := strconv.Itoa(h) + " hours"
		if h == 1 {
			label = "1 hour"
		}
		ticks[i] = dial.Tick{Value: h, Label: label, Display: strconv.Itoa(h) + "h"}
	}
	return ticks
}

// EndTime is the derived finish of a booking.
type EndTime struct {
	Clock   string `json:"clock"`
	NextDay bool   `json:"nextDay"`
	Label   string `json:"label"`
}

// ComputeEnd adds the selected duration to the selected start. Crossing
// midnight is flagged, never wrapped silently.
func ComputeEnd(slot, durationIdx int) (EndTime, bool) {
	start, ok := SlotMinutes(slot)
	if !ok {
		return EndTime{}, false
	}
	h, ok := Hours(durationIdx)
	if !ok {
		return EndTime{}, false
	}
	end := start + h*60
	next := end >= 24*60
	end %= 24 * 60

	e := EndTime{Clock: clock(end), NextDay: next, Label: display12h(end)}
	if next {
		e.Label += " (next day)"
	}
	return e, true
}

func clock(minutes int) string {
	return fmt.Sprintf("%02d:%02d", minutes/60, minutes%60)
}

func display12h(minutes int) string {
	h, m := minutes/60, minutes%60
	suffix := "AM"
	if h >= 12 {
		suffix = "PM"
	}
	h %= 12
	if h == 0 {
		h = 12
	}
	return fmt.Sprintf("%d:%02d %s", h, m, suffix)
}
