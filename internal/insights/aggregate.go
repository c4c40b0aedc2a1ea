// Package insights builds tag and category roll-ups comparing spend in the
// current period with spend in the previous one.
//
// Every function here is pure. Callers decide which spend belongs in each
// window (see UpTo and InWindow); nothing inside reads the clock.
package insights

import (
	"sort"

	"github.com/shopspring/decimal"

	"spendwise/internal/core"
)

var hundred = decimal.NewFromInt(100)

// ByTag credits each spend's full amount to every tag it carries and emits
// one row per tag present in current, ordered by current amount descending.
// Tags seen only in previous are not emitted.
func ByTag(current, previous []core.Spend) []core.TagSpendingData {
	cur := sumByTag(current)
	prev := sumByTag(previous)
	total := Total(current)

	out := make([]core.TagSpendingData, 0, len(cur))
	for tag, amount := range cur {
		out = append(out, core.TagSpendingData{
			TagName:           tag,
			CurrentAmount:     amount,
			PreviousAmount:    prev[tag], // zero value when absent
			PercentageOfTotal: percentage(amount, total),
		})
	}
	sort.Slice(out, func(i, j int) bool {
		if c := out[i].CurrentAmount.Cmp(out[j].CurrentAmount); c != 0 {
			return c > 0
		}
		return out[i].TagName < out[j].TagName
	})
	return out
}

// ByCategory is ByTag for the closed category set: each spend counts
// towards exactly one category.
func ByCategory(current, previous []core.Spend) []core.CategorySpendingData {
	cur := sumByCategory(current)
	prev := sumByCategory(previous)
	total := Total(current)

	out := make([]core.CategorySpendingData, 0, len(cur))
	for cat, amount := range cur {
		out = append(out, core.CategorySpendingData{
			Category:          cat,
			CurrentAmount:     amount,
			PreviousAmount:    prev[cat],
			PercentageOfTotal: percentage(amount, total),
		})
	}
	sort.Slice(out, func(i, j int) bool {
		if c := out[i].CurrentAmount.Cmp(out[j].CurrentAmount); c != 0 {
			return c > 0
		}
		return out[i].Category < out[j].Category
	})
	return out
}

// Total sums every amount, tagged or not.
func Total(spends []core.Spend) decimal.Decimal {
	total := decimal.Zero
	for _, s := range spends {
		total = total.Add(s.Amount)
	}
	return total
}

func sumByTag(spends []core.Spend) map[string]decimal.Decimal {
	sums := make(map[string]decimal.Decimal)
	for _, s := range spends {
		for _, tag := range s.Tags {
			sums[tag] = sums[tag].Add(s.Amount)
		}
	}
	return sums
}

func sumByCategory(spends []core.Spend) map[core.Category]decimal.Decimal {
	sums := make(map[core.Category]decimal.Decimal)
	for _, s := range spends {
		sums[s.Category] = sums[s.Category].Add(s.Amount)
	}
	return sums
}

// percentage returns part/total*100, or 0 when total is zero.
func percentage(part, total decimal.Decimal) float64 {
	if total.IsZero() {
		return 0
	}
	return part.Mul(hundred).Div(total).InexactFloat64()
}
