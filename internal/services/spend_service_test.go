package services

import (
	"context"
	"errors"
	"reflect"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"spendwise/internal/core"
	"spendwise/internal/storage"
)

func newSpendFixture(t *testing.T) (*SpendService, *memStore, *fakePublisher, *fakeInvalidator, core.Account) {
	t.Helper()
	store := newMemStore()
	acct := seedAccount(t, store)
	pub := &fakePublisher{}
	inv := &fakeInvalidator{}
	return NewSpendService(store, store, store, pub, inv, fixedClock(now)), store, pub, inv, acct
}

func TestSpendService_Create(t *testing.T) {
	svc, store, pub, inv, acct := newSpendFixture(t)
	ctx := context.Background()

	sp, err := svc.Create(ctx, acct.ID, core.Spend{
		ID:        "client-supplied",
		AccountID: "someone-else",
		Amount:    decimal.RequireFromString("4.20"),
		Category:  core.Rituals,
		Tags:      []string{" coffee ", "coffee", ""},
		Date:      now,
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if sp.ID == "client-supplied" || sp.AccountID != acct.ID {
		t.Errorf("ID and account must be server assigned: %+v", sp)
	}
	if !reflect.DeepEqual(sp.Tags, []string{"coffee"}) {
		t.Errorf("Tags = %v", sp.Tags)
	}
	if !sp.CreatedAt.Equal(now) || !sp.UpdatedAt.Equal(now) {
		t.Errorf("timestamps not stamped: %+v", sp)
	}
	if _, err := store.GetSpend(ctx, sp.ID); err != nil {
		t.Errorf("spend not stored: %v", err)
	}
	if !reflect.DeepEqual(pub.published, []string{sp.ID}) {
		t.Errorf("published = %v", pub.published)
	}
	if len(inv.prefixes) != 1 || inv.prefixes[0] != acct.ID+":" {
		t.Errorf("invalidations = %v", inv.prefixes)
	}
}

func TestSpendService_CreatePublishFailureIsNotFatal(t *testing.T) {
	svc, store, pub, _, acct := newSpendFixture(t)
	pub.err = errors.New("broker down")

	sp, err := svc.Create(context.Background(), acct.ID, core.Spend{Amount: decimal.NewFromInt(1), Category: core.Need, Date: now})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if _, err := store.GetSpend(context.Background(), sp.ID); err != nil {
		t.Errorf("spend should be saved locally: %v", err)
	}
}

func TestSpendService_CreateValidation(t *testing.T) {
	svc, store, _, _, acct := newSpendFixture(t)
	ctx := context.Background()

	other := seedAccount(t, store)
	foreign, _ := store.CreatePeriod(ctx, core.Period{AccountID: other.ID, StartAt: now, EndAt: now})
	bad := 9

	tests := []struct {
		name  string
		spend core.Spend
	}{
		{"negative amount", core.Spend{Amount: decimal.NewFromInt(-1), Category: core.Need, Date: now}},
		{"unknown category", core.Spend{Amount: decimal.NewFromInt(1), Category: "groceries", Date: now}},
		{"missing date", core.Spend{Amount: decimal.NewFromInt(1), Category: core.Need}},
		{"rating out of range", core.Spend{Amount: decimal.NewFromInt(1), Category: core.Need, Date: now, NecessityRating: &bad}},
		{"unknown period", core.Spend{Amount: decimal.NewFromInt(1), Category: core.Need, Date: now, PeriodID: "nope"}},
		{"period of another account", core.Spend{Amount: decimal.NewFromInt(1), Category: core.Need, Date: now, PeriodID: foreign.ID}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := svc.Create(ctx, acct.ID, tt.spend); !errors.Is(err, ErrInvalidInput) {
				t.Errorf("expected ErrInvalidInput, got %v", err)
			}
		})
	}

	if _, err := svc.Create(ctx, "missing", core.Spend{Amount: decimal.NewFromInt(1), Category: core.Need, Date: now}); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("expected ErrNotFound for unknown account, got %v", err)
	}
}

func TestSpendService_UpdateAndDelete(t *testing.T) {
	svc, store, pub, _, acct := newSpendFixture(t)
	ctx := context.Background()

	sp, err := svc.Create(ctx, acct.ID, core.Spend{Amount: decimal.NewFromInt(10), Category: core.Want, Tags: []string{"fun"}, Date: now})
	if err != nil {
		t.Fatal(err)
	}

	later := now.Add(time.Minute)
	svc.now = fixedClock(later)
	updated, err := svc.Update(ctx, sp.ID, core.SpendPatch{
		Amount: core.Set(decimal.NewFromInt(12)),
		Tags:   core.Set([]string{"fun", "friends"}),
	})
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if !updated.Amount.Equal(decimal.NewFromInt(12)) || len(updated.Tags) != 2 || updated.Category != core.Want {
		t.Errorf("unexpected update: %+v", updated)
	}
	if !updated.UpdatedAt.Equal(later) || !updated.CreatedAt.Equal(now) {
		t.Errorf("timestamps: %+v", updated)
	}
	if len(pub.published) != 2 {
		t.Errorf("update should republish, got %v", pub.published)
	}

	if _, err := svc.Update(ctx, sp.ID, core.SpendPatch{Category: core.Set(core.Category("nope"))}); !errors.Is(err, ErrInvalidInput) {
		t.Errorf("expected ErrInvalidInput, got %v", err)
	}

	if err := svc.Delete(ctx, sp.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := store.GetSpend(ctx, sp.ID); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("spend should be deleted")
	}
	if err := svc.Delete(ctx, sp.ID); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("expected ErrNotFound on second delete, got %v", err)
	}
}

func TestSpendService_NilPublisher(t *testing.T) {
	store := newMemStore()
	acct := seedAccount(t, store)
	svc := NewSpendService(store, store, store, nil, nil, fixedClock(now))

	if _, err := svc.Create(context.Background(), acct.ID, core.Spend{Amount: decimal.NewFromInt(1), Category: core.Need, Date: now}); err != nil {
		t.Fatalf("Create without publisher: %v", err)
	}
}
