package insights

import "github.com/shopspring/decimal"

const (
	BandLow    Band = "low"
	BandMedium Band = "medium"
	BandHigh   Band = "high"
)

// Concentration thresholds on percentage of total spend.
const (
	lowCeiling    = 20.0
	mediumCeiling = 40.0
)

type (
	// Band grades how concentrated spend is in a single tag or category.
	Band string

	// Trend compares a row's current amount to the previous period.
	Trend struct {
		IsNew      bool
		Difference decimal.Decimal
		Increase   bool
	}
)

// BandFor maps a percentage of total to its band: up to 20 is low, up to 40
// medium, anything above high.
func BandFor(pct float64) Band {
	switch {
	case pct <= lowCeiling:
		return BandLow
	case pct <= mediumCeiling:
		return BandMedium
	default:
		return BandHigh
	}
}

// Compare derives the trend. A row is new when nothing was spent on it in
// the previous period; Difference is then zero.
func Compare(current, previous decimal.Decimal) Trend {
	if previous.IsZero() {
		return Trend{IsNew: true, Difference: decimal.Zero}
	}
	diff := current.Sub(previous)
	return Trend{Difference: diff, Increase: diff.IsPositive()}
}
