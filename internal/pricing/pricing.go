// Package pricing implements the per-minute price math for sessions.
// Everything here is a pure function; persistence and catalog lookups live
// in the store layer.
package pricing

import (
	"math"
	"time"
)

// Cents rounds a monetary value to two decimal places. Applied at every
// persistence boundary; intermediate live-display math stays floating point.
func Cents(v float64) float64 {
	return math.Round(v*100) / 100
}

// BasePrice sums the game rate and all attached controller rates. A session
// without a game bills controllers only, so a zero game rate is valid.
func BasePrice(gameRate float64, controllerRates []float64) float64 {
	total := gameRate
	for _, r := range controllerRates {
		total += r
	}
	return total
}

// ClampRate forces a discount rate into [0,1].
func ClampRate(rate float64) float64 {
	if rate < 0 {
		return 0
	}
	if rate > 1 {
		return 1
	}
	return rate
}

// FinalPrice applies a discount rate to a base per-minute price. The rate is
// clamped so a misconfigured discount can never produce a negative price.
func FinalPrice(basePrice, discountRate float64) float64 {
	return basePrice * (1 - ClampRate(discountRate))
}

// ElapsedCost is the live running cost between start and asOf at the given
// final per-minute rate. Fractional minutes are charged here; this value is
// for display only and is never persisted.
func ElapsedCost(start, asOf time.Time, finalPerMinute float64) float64 {
	if asOf.Before(start) {
		return 0
	}
	seconds := math.Floor(asOf.Sub(start).Seconds())
	return seconds / 60 * finalPerMinute
}

// BillableMinutes is the whole-minute count between start and end. Partial
// minutes are truncated so a member is never charged for time not fully used.
func BillableMinutes(start, end time.Time) int64 {
	if end.Before(start) {
		return 0
	}
	return int64(end.Sub(start).Minutes())
}

// TotalAmount is the closing bill: whole minutes times the final per-minute
// price, rounded to cents.
func TotalAmount(start, end time.Time, finalPerMinute float64) float64 {
	return Cents(float64(BillableMinutes(start, end)) * finalPerMinute)
}
