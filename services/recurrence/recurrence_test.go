package recurrence

import (
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerate(t *testing.T) {
	tests := []struct {
		name      string
		frequency string
		days      []string
		want      string
	}{
		{name: "daily ignores days", frequency: "daily", days: []string{"monday"}, want: "daily"},
		{name: "weekly canonical order", frequency: "weekly", days: []string{"friday", "monday", "wednesday"}, want: "weekly:monday,wednesday,friday"},
		{name: "weekly dedupes and normalizes", frequency: "Weekly", days: []string{"Mon", "monday", " TUE "}, want: "weekly:monday,tuesday"},
		{name: "weekly drops unknown", frequency: "weekly", days: []string{"funday"}, want: "weekly:"},
		{name: "weekly empty", frequency: "weekly", days: nil, want: "weekly:"},
		{name: "monthly ascending", frequency: "monthly", days: []string{"15", "1", "15"}, want: "monthly:1,15"},
		{name: "monthly drops out of range", frequency: "monthly", days: []string{"0", "29", "x", "28"}, want: "monthly:28"},
		{name: "unknown frequency passes through", frequency: "Yearly", days: nil, want: "yearly"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Generate(tt.frequency, tt.days))
		})
	}
}

func TestGenerate_Idempotent(t *testing.T) {
	days := []string{"sunday", "tuesday"}
	assert.Equal(t, Generate("weekly", days), Generate("weekly", days))
	assert.Equal(t, Generate("monthly", []string{"3", "2"}), Generate("monthly", []string{"3", "2"}))
}

func TestFormat(t *testing.T) {
	tests := []struct {
		pattern string
		want    string
	}{
		{"daily", "Daily"},
		{"weekly:monday,wednesday,friday", "Weekly on Mon, Wed, Fri"},
		{"weekly:", "Weekly"},
		{"monthly:1,15", "Monthly on the 1st, 15th"},
		{"monthly:2,3,11,21,22,23", "Monthly on the 2nd, 3rd, 11th, 21st, 22nd, 23rd"},
		{"monthly:", "Monthly"},
		{"WEEKLY:wed,mon", "Weekly on Mon, Wed"},
	}

	for _, tt := range tests {
		t.Run(tt.pattern, func(t *testing.T) {
			assert.Equal(t, tt.want, Format(tt.pattern))
		})
	}
}

func TestFormat_LegacyPassThrough(t *testing.T) {
	for _, raw := range []string{
		"FREQ=WEEKLY;BYDAY=MO,WE",
		"every other tuesday",
		"weekly:mon,blursday",
		"monthly:31",
		"",
	} {
		assert.Equal(t, raw, Format(raw))
	}
}

func TestRoundTrip_AllWeekdaySelections(t *testing.T) {
	for mask := 0; mask < 1<<7; mask++ {
		var selected []string
		for i, d := range Weekdays {
			if mask&(1<<i) != 0 {
				selected = append(selected, d)
			}
		}

		label := Format(Generate(FrequencyWeekly, selected))
		require.True(t, strings.HasPrefix(label, "Weekly"), label)

		for i, d := range Weekdays {
			short := strings.ToUpper(d[:1]) + d[1:3]
			if mask&(1<<i) != 0 {
				assert.Contains(t, label, short)
			} else {
				assert.NotContains(t, label, short)
			}
		}
	}
}

func TestRoundTrip_MonthlyAscending(t *testing.T) {
	label := Format(Generate(FrequencyMonthly, []string{"28", "7", "14", "1"}))
	assert.Equal(t, "Monthly on the 1st, 7th, 14th, 28th", label)

	for d := 1; d <= MaxMonthDay; d++ {
		p, err := Parse(Generate(FrequencyMonthly, []string{strconv.Itoa(d)}))
		require.NoError(t, err)
		assert.Equal(t, []int{d}, p.MonthDays)
	}
}

func TestWeeklyBlockScenario(t *testing.T) {
	label := Format(Generate("weekly", []string{"monday", "wednesday"}))
	assert.Equal(t, "Weekly on Mon, Wed", label)
	for _, other := range []string{"Tue", "Thu", "Fri", "Sat", "Sun"} {
		assert.NotContains(t, label, other)
	}
}

func TestParse_Errors(t *testing.T) {
	for _, bad := range []string{"hourly", "weekly", "weekly:noday", "monthly:0", "monthly:abc"} {
		_, err := Parse(bad)
		assert.ErrorIs(t, err, ErrInvalidPattern, bad)
	}
}

func TestPattern_Occurs(t *testing.T) {
	// 2026-10-19 is a Monday.
	monday := time.Date(2026, 10, 19, 0, 0, 0, 0, time.UTC)
	sunday := monday.AddDate(0, 0, 6)

	weekly, err := Parse("weekly:monday,sunday")
	require.NoError(t, err)
	assert.True(t, weekly.Occurs(monday))
	assert.True(t, weekly.Occurs(sunday))
	assert.False(t, weekly.Occurs(monday.AddDate(0, 0, 1)))

	monthly, err := Parse("monthly:19")
	require.NoError(t, err)
	assert.True(t, monthly.Occurs(monday))
	assert.False(t, monthly.Occurs(sunday))

	daily, err := Parse("daily")
	require.NoError(t, err)
	assert.True(t, daily.Occurs(sunday))
}
