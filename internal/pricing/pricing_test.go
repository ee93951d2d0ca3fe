package pricing

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestBasePrice(t *testing.T) {
	testCases := []struct {
		name            string
		gameRate        float64
		controllerRates []float64
		expected        float64
	}{
		{"game plus one controller", 0.50, []float64{0.10}, 0.60},
		{"game plus two controllers", 0.50, []float64{0.10, 0.15}, 0.75},
		{"no game, controllers only", 0, []float64{0.10, 0.10}, 0.20},
		{"no game, no controllers", 0, nil, 0},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.InDelta(t, tc.expected, BasePrice(tc.gameRate, tc.controllerRates), 1e-9)
		})
	}
}

func TestFinalPrice(t *testing.T) {
	// Standard membership, no discount configured.
	assert.InDelta(t, 0.60, FinalPrice(0.60, 0), 1e-9)
	// Premium membership with a 20% discount.
	assert.InDelta(t, 0.48, FinalPrice(0.60, 0.20), 1e-9)
}

func TestFinalPriceClampsRate(t *testing.T) {
	// A negative rate must not inflate the price.
	assert.InDelta(t, 1.0, FinalPrice(1.0, -0.5), 1e-9)
	// A rate above 1 must not produce a negative price.
	assert.InDelta(t, 0.0, FinalPrice(1.0, 1.5), 1e-9)
}

func TestElapsedCost(t *testing.T) {
	start := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	// 90 seconds at 0.60/min: fractional minutes count for live display.
	assert.InDelta(t, 0.90, ElapsedCost(start, start.Add(90*time.Second), 0.60), 1e-9)

	// Sub-second remainders are floored before converting to minutes.
	assert.InDelta(t, 0.90, ElapsedCost(start, start.Add(90*time.Second+700*time.Millisecond), 0.60), 1e-9)

	// Clock going backwards never produces a negative cost.
	assert.Zero(t, ElapsedCost(start, start.Add(-time.Minute), 0.60))
}

func TestBillableMinutesTruncates(t *testing.T) {
	start := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	// 125 seconds is 2 whole minutes, not 2.08.
	assert.EqualValues(t, 2, BillableMinutes(start, start.Add(125*time.Second)))
	assert.EqualValues(t, 0, BillableMinutes(start, start.Add(59*time.Second)))
	assert.EqualValues(t, 1, BillableMinutes(start, start.Add(60*time.Second)))
	assert.EqualValues(t, 0, BillableMinutes(start, start.Add(-time.Minute)))
}

func TestTotalAmount(t *testing.T) {
	start := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	end := start.Add(125 * time.Second)

	assert.InDelta(t, 1.20, TotalAmount(start, end, 0.60), 1e-9)
	assert.InDelta(t, 0.96, TotalAmount(start, end, 0.48), 1e-9)
}

func TestCents(t *testing.T) {
	assert.InDelta(t, 0.48, Cents(0.48000000000000004), 1e-12)
	assert.InDelta(t, 1.67, Cents(1.666666), 1e-12)
	assert.InDelta(t, 1.66, Cents(1.664999), 1e-12)
}
