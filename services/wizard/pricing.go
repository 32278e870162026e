package wizard

import (
	"fmt"
	"math"
)

// PricingTBD is shown when no catalog rate could be fetched.
const PricingTBD = "Pricing TBD"

// Shadow-teacher plan tiers.
const (
	PlanOneTime  = "one_time"
	PlanMonthly  = "monthly"
	PlanSixMonth = "six_month"
	PlanYearly   = "yearly"
)

// SessionsPerMonth is the assumed visit count for multi-month plans.
// TODO: derive from the chosen recurrence once plans carry one.
const SessionsPerMonth = 4

type planTerms struct {
	Discount float64
	Months   int
}

var plans = map[string]planTerms{
	PlanOneTime:  {Discount: 0, Months: 0},
	PlanMonthly:  {Discount: 0.10, Months: 1},
	PlanSixMonth: {Discount: 0.15, Months: 6},
	PlanYearly:   {Discount: 0.20, Months: 12},
}

// ValidPlan reports whether p is a known plan tier.
func ValidPlan(p string) bool {
	_, ok := plans[p]
	return ok
}

// PlanDiscount returns the fractional discount for p.
func PlanDiscount(p string) float64 {
	return plans[p].Discount
}

// Estimate is the derived price of a draft.
type Estimate struct {
	Available  bool    `json:"available"`
	PerSession float64 `json:"perSession,omitempty"`
	Sessions   int     `json:"sessions,omitempty"`
	Discount   float64 `json:"discount,omitempty"`
	Amount     float64 `json:"amount,omitempty"`
	Label      string  `json:"label"`
}

// EstimatePrice is rate × hours. A nil rate or an unknown duration yields TBD.
func EstimatePrice(rate *float64, hours int) Estimate {
	if rate == nil || *rate <= 0 || hours <= 0 {
		return Estimate{Label: PricingTBD}
	}
	amount := round2(*rate * float64(hours))
	return Estimate{
		Available:  true,
		PerSession: amount,
		Sessions:   1,
		Amount:     amount,
		Label:      fmt.Sprintf("$%.2f", amount),
	}
}

// EstimatePlan discounts the per-session cost and multiplies it over the plan.
// A one-time plan is a single session.
func EstimatePlan(rate *float64, hours int, plan string) Estimate {
	base := EstimatePrice(rate, hours)
	terms, ok := plans[plan]
	if !base.Available || !ok {
		return base
	}

	perSession := round2(base.PerSession * (1 - terms.Discount))
	sessions := 1
	if terms.Months > 0 {
		sessions = SessionsPerMonth * terms.Months
	}
	amount := round2(perSession * float64(sessions))

	label := fmt.Sprintf("$%.2f", amount)
	if sessions > 1 {
		label = fmt.Sprintf("$%.2f (%d sessions at $%.2f)", amount, sessions, perSession)
	}
	return Estimate{
		Available:  true,
		PerSession: perSession,
		Sessions:   sessions,
		Discount:   terms.Discount,
		Amount:     amount,
		Label:      label,
	}
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
