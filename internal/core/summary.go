package core

import "github.com/shopspring/decimal"

// TagSpendingData is one row of a tag roll-up across the current and
// previous period.
type TagSpendingData struct {
	TagName           string
	CurrentAmount     decimal.Decimal
	PreviousAmount    decimal.Decimal
	PercentageOfTotal float64
}

// CategorySpendingData is the per-category counterpart of TagSpendingData.
type CategorySpendingData struct {
	Category          Category
	CurrentAmount     decimal.Decimal
	PreviousAmount    decimal.Decimal
	PercentageOfTotal float64
}
