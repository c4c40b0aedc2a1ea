package insights

import (
	"time"

	"github.com/shopspring/decimal"

	"spendwise/internal/core"
)

// Summary reports totals for both windows. TaggedCurrent is the sum over
// tag rows and exceeds the tagged spend whenever a transaction carries more
// than one tag; TaggedRaw counts each tagged transaction once.
type Summary struct {
	CurrentTotal  decimal.Decimal
	PreviousTotal decimal.Decimal
	TaggedCurrent decimal.Decimal
	TaggedRaw     decimal.Decimal
	UntaggedTotal decimal.Decimal
	Trend         Trend
}

func Summarize(current, previous []core.Spend) Summary {
	s := Summary{
		CurrentTotal:  Total(current),
		PreviousTotal: Total(previous),
		TaggedCurrent: decimal.Zero,
		TaggedRaw:     decimal.Zero,
		UntaggedTotal: decimal.Zero,
	}
	for _, sp := range current {
		if len(sp.Tags) == 0 {
			s.UntaggedTotal = s.UntaggedTotal.Add(sp.Amount)
			continue
		}
		s.TaggedRaw = s.TaggedRaw.Add(sp.Amount)
		s.TaggedCurrent = s.TaggedCurrent.Add(sp.Amount.Mul(decimal.NewFromInt(int64(len(sp.Tags)))))
	}
	s.Trend = Compare(s.CurrentTotal, s.PreviousTotal)
	return s
}

// UpTo keeps spend dated at or before now. Scheduled future spend must be
// dropped with this before aggregating the current window.
func UpTo(spends []core.Spend, now time.Time) []core.Spend {
	out := make([]core.Spend, 0, len(spends))
	for _, s := range spends {
		if !s.Date.After(now) {
			out = append(out, s)
		}
	}
	return out
}

// InWindow keeps spend dated within [start, end].
func InWindow(spends []core.Spend, start, end time.Time) []core.Spend {
	out := make([]core.Spend, 0, len(spends))
	for _, s := range spends {
		if !s.Date.Before(start) && !s.Date.After(end) {
			out = append(out, s)
		}
	}
	return out
}
