package insights

import (
	"testing"

	"github.com/shopspring/decimal"

	"spendwise/internal/core"
)

func TestBandFor(t *testing.T) {
	tests := []struct {
		pct  float64
		want Band
	}{
		{0, BandLow},
		{20, BandLow},
		{20.01, BandMedium},
		{40, BandMedium},
		{40.01, BandHigh},
		{100, BandHigh},
	}
	for _, tt := range tests {
		if got := BandFor(tt.pct); got != tt.want {
			t.Errorf("BandFor(%v) = %q, want %q", tt.pct, got, tt.want)
		}
	}
}

func TestCompare(t *testing.T) {
	tests := []struct {
		name     string
		current  string
		previous string
		isNew    bool
		diff     string
		increase bool
	}{
		{"new tag", "5", "0", true, "0", false},
		{"increase", "15", "8", false, "7", true},
		{"decrease", "3", "8", false, "-5", false},
		{"unchanged", "8", "8", false, "0", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Compare(amt(tt.current), amt(tt.previous))
			if got.IsNew != tt.isNew || got.Increase != tt.increase || !got.Difference.Equal(amt(tt.diff)) {
				t.Errorf("Compare(%s, %s) = %+v", tt.current, tt.previous, got)
			}
		})
	}
}

func TestSummarize(t *testing.T) {
	current := []core.Spend{
		spend("10", core.Want, "food"),
		spend("5", core.Want, "food", "fun"),
		spend("2", core.Need),
	}
	previous := []core.Spend{spend("8", core.Want, "food")}

	s := Summarize(current, previous)
	checks := map[string][2]decimal.Decimal{
		"CurrentTotal":  {s.CurrentTotal, amt("17")},
		"PreviousTotal": {s.PreviousTotal, amt("8")},
		"TaggedCurrent": {s.TaggedCurrent, amt("20")},
		"TaggedRaw":     {s.TaggedRaw, amt("15")},
		"UntaggedTotal": {s.UntaggedTotal, amt("2")},
	}
	for name, c := range checks {
		if !c[0].Equal(c[1]) {
			t.Errorf("%s = %s, want %s", name, c[0], c[1])
		}
	}
	if s.Trend.IsNew || !s.Trend.Increase || !s.Trend.Difference.Equal(amt("9")) {
		t.Errorf("unexpected trend: %+v", s.Trend)
	}
}
