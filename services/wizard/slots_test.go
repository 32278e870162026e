package wizard

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSlotClock(t *testing.T) {
	tests := []struct {
		slot int
		want string
		ok   bool
	}{
		{0, "07:00", true},
		{4, "09:00", true},
		{SlotCount - 1, "23:30", true},
		{SlotCount, "", false},
		{-1, "", false},
	}
	for _, tt := range tests {
		got, ok := SlotClock(tt.slot)
		assert.Equal(t, tt.ok, ok, "slot %d", tt.slot)
		assert.Equal(t, tt.want, got, "slot %d", tt.slot)
	}
}

func TestSlotForClock(t *testing.T) {
	i, ok := SlotForClock("09:00")
	assert.True(t, ok)
	assert.Equal(t, 4, i)

	_, ok = SlotForClock("06:00")
	assert.False(t, ok)
}

func TestComputeEnd(t *testing.T) {
	twoHours := 1
	twelveHours := len(DurationHours) - 1

	end, ok := ComputeEnd(4, twoHours)
	assert.True(t, ok)
	assert.Equal(t, "11:00", end.Clock)
	assert.False(t, end.NextDay)

	end, ok = ComputeEnd(SlotCount-1, twelveHours)
	assert.True(t, ok)
	assert.Equal(t, "11:30", end.Clock)
	assert.True(t, end.NextDay, "23:30 + 12h must be flagged next day")
	assert.Contains(t, end.Label, "next day")

	// 22:00 + 2h lands exactly on midnight.
	end, ok = ComputeEnd(30, twoHours)
	assert.True(t, ok)
	assert.Equal(t, "00:00", end.Clock)
	assert.True(t, end.NextDay)

	_, ok = ComputeEnd(4, -1)
	assert.False(t, ok)
}

func TestTicks(t *testing.T) {
	start := StartTicks()
	assert.Len(t, start, SlotCount)
	assert.Equal(t, "09:00", start[4].Label)
	assert.Equal(t, "9:00 AM", start[4].Display)
	assert.Equal(t, "11:30 PM", start[SlotCount-1].Display)

	dur := DurationTicks()
	assert.Len(t, dur, len(DurationHours))
	assert.Equal(t, "1 hour", dur[0].Label)
	assert.Equal(t, 12, dur[len(dur)-1].Value)
}
