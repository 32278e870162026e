package wizard

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func ptr[T any](v T) *T { return &v }

func TestEstimatePrice(t *testing.T) {
	est := EstimatePrice(ptr(25.0), 2)
	assert.True(t, est.Available)
	assert.Equal(t, 50.0, est.Amount)
	assert.Equal(t, "$50.00", est.Label)

	for _, rate := range []*float64{nil, ptr(0.0)} {
		est = EstimatePrice(rate, 2)
		assert.False(t, est.Available)
		assert.Equal(t, PricingTBD, est.Label)
		assert.Zero(t, est.Amount)
	}

	est = EstimatePrice(ptr(25.0), 0)
	assert.Equal(t, PricingTBD, est.Label)
}

func TestEstimatePlan(t *testing.T) {
	tests := []struct {
		plan       string
		perSession float64
		sessions   int
		amount     float64
	}{
		{PlanOneTime, 40, 1, 40},
		{PlanMonthly, 36, 4, 144},
		{PlanSixMonth, 34, 24, 816},
		{PlanYearly, 32, 48, 1536},
	}
	for _, tt := range tests {
		t.Run(tt.plan, func(t *testing.T) {
			est := EstimatePlan(ptr(20.0), 2, tt.plan)
			assert.True(t, est.Available)
			assert.Equal(t, tt.perSession, est.PerSession)
			assert.Equal(t, tt.sessions, est.Sessions)
			assert.Equal(t, tt.amount, est.Amount)
		})
	}

	est := EstimatePlan(nil, 2, PlanYearly)
	assert.Equal(t, PricingTBD, est.Label)
}
