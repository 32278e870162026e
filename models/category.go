package models

import "strings"

// ServiceCategory selects which wizard flow a draft follows.
type ServiceCategory string

const (
	CategoryChildCare     ServiceCategory = "CHILD_CARE"
	CategorySpecialNeeds  ServiceCategory = "SPECIAL_NEEDS"
	CategoryShadowTeacher ServiceCategory = "SHADOW_TEACHER"
	CategoryRecurring     ServiceCategory = "RECURRING"
	CategoryAvailability  ServiceCategory = "AVAILABILITY"
)

// categoryCodes are the short codes the request endpoint expects.
var categoryCodes = map[ServiceCategory]string{
	CategoryChildCare:     "CC",
	CategorySpecialNeeds:  "SN",
	CategoryShadowTeacher: "ST",
	CategoryRecurring:     "RB",
	CategoryAvailability:  "AV",
}

// Code returns the wire code for c, or "" when c is unknown.
func (c ServiceCategory) Code() string {
	return categoryCodes[c]
}

// Valid reports whether c names a known flow.
func (c ServiceCategory) Valid() bool {
	_, ok := categoryCodes[c]
	return ok
}

// ParseCategory accepts either the enum name or the short code, case-insensitively.
func ParseCategory(s string) (ServiceCategory, bool) {
	s = strings.ToUpper(strings.TrimSpace(s))
	for c, code := range categoryCodes {
		if s == string(c) || s == code {
			return c, true
		}
	}
	return "", false
}
