// Package recurrence encodes a chosen schedule (frequency plus weekdays or
// month dates) into the persisted pattern string and renders it back as a
// human-readable label.
//
// Grammar:
//
//	daily
//	weekly:monday,wednesday      weekdays in canonical monday..sunday order
//	monthly:1,15                 unique month dates in [1,28], ascending
package recurrence

import (
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"
)

const (
	FrequencyDaily   = "daily"
	FrequencyWeekly  = "weekly"
	FrequencyMonthly = "monthly"
)

// MaxMonthDay keeps monthly patterns valid in every month.
const MaxMonthDay = 28

var ErrInvalidPattern = errors.New("recurrence: invalid pattern")

// Weekdays in canonical order.
var Weekdays = []string{"monday", "tuesday", "wednesday", "thursday", "friday", "saturday", "sunday"}

var weekdayIndex = map[string]int{}

func init() {
	for i, d := range Weekdays {
		weekdayIndex[d] = i
		weekdayIndex[d[:3]] = i
	}
}

// Pattern is the decoded form of a pattern string.
type Pattern struct {
	Frequency string
	Weekdays  []string // canonical names, weekly only
	MonthDays []int    // ascending, monthly only
}

// ValidFrequency reports whether f is one of the supported frequencies.
func ValidFrequency(f string) bool {
	switch f {
	case FrequencyDaily, FrequencyWeekly, FrequencyMonthly:
		return true
	}
	return false
}

// NormalizeWeekday maps "Mon", "monday", " MONDAY " to "monday".
func NormalizeWeekday(s string) (string, bool) {
	i, ok := weekdayIndex[strings.ToLower(strings.TrimSpace(s))]
	if !ok {
		return "", false
	}
	return Weekdays[i], true
}

// Generate builds the pattern string for a selection. Unknown day tokens are
// dropped, so an empty or malformed list yields an empty day set; callers
// validate the selection first. An unknown frequency is returned lowercased.
func Generate(frequency string, selectedDays []string) string {
	frequency = strings.ToLower(strings.TrimSpace(frequency))
	switch frequency {
	case FrequencyDaily:
		return FrequencyDaily
	case FrequencyWeekly:
		return Pattern{Frequency: FrequencyWeekly, Weekdays: canonicalWeekdays(selectedDays)}.String()
	case FrequencyMonthly:
		return Pattern{Frequency: FrequencyMonthly, MonthDays: canonicalMonthDays(selectedDays)}.String()
	}
	return frequency
}

// String encodes p.
func (p Pattern) String() string {
	switch p.Frequency {
	case FrequencyWeekly:
		return FrequencyWeekly + ":" + strings.Join(p.Weekdays, ",")
	case FrequencyMonthly:
		nums := make([]string, len(p.MonthDays))
		for i, d := range p.MonthDays {
			nums[i] = strconv.Itoa(d)
		}
		return FrequencyMonthly + ":" + strings.Join(nums, ",")
	}
	return p.Frequency
}

// Parse decodes a pattern string. Day tokens may be in any order and case;
// the result is canonical.
func Parse(pattern string) (Pattern, error) {
	s := strings.ToLower(strings.TrimSpace(pattern))
	if s == FrequencyDaily {
		return Pattern{Frequency: FrequencyDaily}, nil
	}

	freq, list, ok := strings.Cut(s, ":")
	if !ok {
		return Pattern{}, fmt.Errorf("%w: %q", ErrInvalidPattern, pattern)
	}
	tokens := splitList(list)

	switch freq {
	case FrequencyWeekly:
		for _, t := range tokens {
			if _, ok := NormalizeWeekday(t); !ok {
				return Pattern{}, fmt.Errorf("%w: unknown weekday %q", ErrInvalidPattern, t)
			}
		}
		return Pattern{Frequency: FrequencyWeekly, Weekdays: canonicalWeekdays(tokens)}, nil
	case FrequencyMonthly:
		for _, t := range tokens {
			if _, ok := parseMonthDay(t); !ok {
				return Pattern{}, fmt.Errorf("%w: month day %q", ErrInvalidPattern, t)
			}
		}
		return Pattern{Frequency: FrequencyMonthly, MonthDays: canonicalMonthDays(tokens)}, nil
	}
	return Pattern{}, fmt.Errorf("%w: frequency %q", ErrInvalidPattern, freq)
}

// Format renders a pattern as a label such as "Weekly on Mon, Wed, Fri" or
// "Monthly on the 1st, 15th". Input it cannot parse is returned unmodified.
func Format(pattern string) string {
	p, err := Parse(pattern)
	if err != nil {
		return pattern
	}
	return p.Label()
}

// Label renders p for display.
func (p Pattern) Label() string {
	switch p.Frequency {
	case FrequencyDaily:
		return "Daily"
	case FrequencyWeekly:
		if len(p.Weekdays) == 0 {
			return "Weekly"
		}
		short := make([]string, len(p.Weekdays))
		for i, d := range p.Weekdays {
			short[i] = strings.ToUpper(d[:1]) + d[1:3]
		}
		return "Weekly on " + strings.Join(short, ", ")
	case FrequencyMonthly:
		if len(p.MonthDays) == 0 {
			return "Monthly"
		}
		ords := make([]string, len(p.MonthDays))
		for i, d := range p.MonthDays {
			ords[i] = Ordinal(d)
		}
		return "Monthly on the " + strings.Join(ords, ", ")
	}
	return p.String()
}

// Occurs reports whether date falls on the pattern.
func (p Pattern) Occurs(date time.Time) bool {
	switch p.Frequency {
	case FrequencyDaily:
		return true
	case FrequencyWeekly:
		name := Weekdays[(int(date.Weekday())+6)%7]
		for _, d := range p.Weekdays {
			if d == name {
				return true
			}
		}
	case FrequencyMonthly:
		for _, d := range p.MonthDays {
			if d == date.Day() {
				return true
			}
		}
	}
	return false
}

// Ordinal returns 1st, 2nd, 3rd, 4th, 11th, 21st and so on.
func Ordinal(n int) string {
	suffix := "th"
	switch n % 100 {
	case 11, 12, 13:
	default:
		switch n % 10 {
		case 1:
			suffix = "st"
		case 2:
			suffix = "nd"
		case 3:
			suffix = "rd"
		}
	}
	return strconv.Itoa(n) + suffix
}

func canonicalWeekdays(days []string) []string {
	var seen [7]bool
	for _, d := range days {
		if i, ok := weekdayIndex[strings.ToLower(strings.TrimSpace(d))]; ok {
			seen[i] = true
		}
	}
	out := []string{}
	for i, on := range seen {
		if on {
			out = append(out, Weekdays[i])
		}
	}
	return out
}

func canonicalMonthDays(days []string) []int {
	set := map[int]bool{}
	for _, d := range days {
		if n, ok := parseMonthDay(d); ok {
			set[n] = true
		}
	}
	out := make([]int, 0, len(set))
	for n := range set {
		out = append(out, n)
	}
	sort.Ints(out)
	return out
}

func parseMonthDay(s string) (int, bool) {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || n < 1 || n > MaxMonthDay {
		return 0, false
	}
	return n, true
}

func splitList(list string) []string {
	if strings.TrimSpace(list) == "" {
		return nil
	}
	return strings.Split(list, ",")
}
