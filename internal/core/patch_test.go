package core

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

func TestAccountPatchApply(t *testing.T) {
	created := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	now := created.Add(48 * time.Hour)
	expires := now.Add(30 * 24 * time.Hour)
	cancelled := true

	acc := NewAccount("Ada", USD, created)

	t.Run("empty patch only refreshes updatedAt", func(t *testing.T) {
		p := AccountPatch{}
		if !p.IsEmpty() {
			t.Fatal("expected empty patch")
		}
		got := p.Apply(acc, now)
		if got.Name != acc.Name || got.Currency != acc.Currency || got.SubscriptionTier != acc.SubscriptionTier {
			t.Fatalf("empty patch changed fields: %+v", got)
		}
		if !got.UpdatedAt.Equal(now) {
			t.Fatalf("UpdatedAt = %v, want %v", got.UpdatedAt, now)
		}
	})

	t.Run("set fields", func(t *testing.T) {
		p := AccountPatch{
			Currency:              Set(EUR),
			SubscriptionTier:      Set(Premium),
			ExpiresAt:             Set(&expires),
			SubscriptionCancelled: Set(&cancelled),
			Onboarded:             Set(true),
		}
		got := p.Apply(acc, now)
		if got.Currency != EUR || got.SubscriptionTier != Premium {
			t.Fatalf("unexpected account: %+v", got)
		}
		if got.ExpiresAt == nil || !got.ExpiresAt.Equal(expires) {
			t.Fatalf("ExpiresAt not applied")
		}
		if got.SubscriptionCancelled == nil || !*got.SubscriptionCancelled {
			t.Fatalf("SubscriptionCancelled not applied")
		}
		if got.OnboardedAt == nil || !got.OnboardedAt.Equal(now) {
			t.Fatalf("OnboardedAt = %v, want %v", got.OnboardedAt, now)
		}
		if acc.Currency != USD {
			t.Fatalf("original account mutated")
		}
	})

	t.Run("clear expiry", func(t *testing.T) {
		withExpiry := acc
		withExpiry.ExpiresAt = &expires
		got := AccountPatch{ExpiresAt: Set[*time.Time](nil)}.Apply(withExpiry, now)
		if got.ExpiresAt != nil {
			t.Fatalf("expected ExpiresAt cleared, got %v", got.ExpiresAt)
		}
	})
}

func TestSpendPatchApply(t *testing.T) {
	now := time.Date(2025, 2, 1, 0, 0, 0, 0, time.UTC)
	s := Spend{Amount: decimal.NewFromInt(5), Category: Want, Tags: []string{"a"}, Description: "x"}

	got := SpendPatch{
		Amount: Set(decimal.NewFromInt(7)),
		Tags:   Set([]string{"b", "b", " "}),
	}.Apply(s, now)

	if !got.Amount.Equal(decimal.NewFromInt(7)) {
		t.Fatalf("amount = %s", got.Amount)
	}
	if len(got.Tags) != 1 || got.Tags[0] != "b" {
		t.Fatalf("tags = %v", got.Tags)
	}
	if got.Category != Want || got.Description != "x" {
		t.Fatalf("unchanged fields were modified: %+v", got)
	}
	if !got.UpdatedAt.Equal(now) {
		t.Fatalf("UpdatedAt not refreshed")
	}
	if (SpendPatch{}).IsEmpty() != true {
		t.Fatal("zero SpendPatch should be empty")
	}
	if Unchanged[int]().IsSet() {
		t.Fatal("Unchanged should not be set")
	}
}
