package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"spendwise/internal/core"
	"spendwise/internal/locale"
	"spendwise/internal/storage"
	"spendwise/internal/subscription"
)

var now = time.Date(2024, 3, 15, 12, 0, 0, 0, time.UTC)

func TestAccountService_CreateCurrencyDefaulting(t *testing.T) {
	manila := locale.TimezoneFunc(func() (string, error) { return "Asia/Manila", nil })
	broken := locale.TimezoneFunc(func() (string, error) { return "", errors.New("no tz") })

	tests := []struct {
		name string
		in   CreateAccountInput
		tz   locale.TimezoneSource
		want core.Currency
	}{
		{"explicit currency wins", CreateAccountInput{Name: "A", Currency: "gbp", Timezone: "Asia/Manila"}, manila, core.GBP},
		{"request timezone", CreateAccountInput{Name: "A", Timezone: "Europe/Dublin"}, manila, core.EUR},
		{"server timezone", CreateAccountInput{Name: "A"}, manila, core.PHP},
		{"timezone failure falls back", CreateAccountInput{Name: "A"}, broken, core.USD},
		{"unknown request timezone", CreateAccountInput{Name: "A", Timezone: "Asia/Tokyo"}, manila, core.USD},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := NewAccountService(newMemStore(), tt.tz, nil, fixedClock(now))
			a, err := svc.Create(context.Background(), tt.in)
			if err != nil {
				t.Fatalf("Create: %v", err)
			}
			if a.Currency != tt.want {
				t.Errorf("Currency = %s, want %s", a.Currency, tt.want)
			}
			if a.SubscriptionTier != core.Essentials || !a.CreatedAt.Equal(now) {
				t.Errorf("unexpected defaults: %+v", a)
			}
		})
	}
}

func TestAccountService_CreateInvalid(t *testing.T) {
	svc := NewAccountService(newMemStore(), nil, nil, fixedClock(now))

	for _, in := range []CreateAccountInput{
		{Name: "  "},
		{Name: "A", Currency: "JPY"},
	} {
		if _, err := svc.Create(context.Background(), in); !errors.Is(err, ErrInvalidInput) {
			t.Errorf("Create(%+v) error = %v, want ErrInvalidInput", in, err)
		}
	}
}

func TestAccountService_Update(t *testing.T) {
	store := newMemStore()
	inv := &fakeInvalidator{}
	svc := NewAccountService(store, nil, inv, fixedClock(now))
	ctx := context.Background()

	a, err := svc.Create(ctx, CreateAccountInput{Name: "Ada", Currency: "EUR"})
	if err != nil {
		t.Fatal(err)
	}

	later := now.Add(time.Hour)
	svc.now = fixedClock(later)

	same, err := svc.Update(ctx, a.ID, core.AccountPatch{})
	if err != nil || !same.UpdatedAt.Equal(now) {
		t.Fatalf("empty patch should be a no-op: %+v, %v", same, err)
	}

	updated, err := svc.Update(ctx, a.ID, core.AccountPatch{
		Name:       core.Set("Ada L."),
		DateFormat: core.Set(core.ISODate),
	})
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if updated.Name != "Ada L." || updated.DateFormat != core.ISODate || !updated.UpdatedAt.Equal(later) {
		t.Errorf("patch not applied: %+v", updated)
	}
	if updated.Currency != core.EUR {
		t.Errorf("unset field changed: %s", updated.Currency)
	}
	if len(inv.prefixes) != 1 || inv.prefixes[0] != a.ID+":" {
		t.Errorf("expected cache invalidation for account, got %v", inv.prefixes)
	}

	if _, err := svc.Update(ctx, a.ID, core.AccountPatch{SubscriptionTier: core.Set(core.SubscriptionTier("gold"))}); !errors.Is(err, ErrInvalidInput) {
		t.Errorf("expected ErrInvalidInput, got %v", err)
	}
	if _, err := svc.Update(ctx, "missing", core.AccountPatch{Name: core.Set("x")}); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestAccountService_SubscriptionLazyDowngrade(t *testing.T) {
	store := newMemStore()
	svc := NewAccountService(store, nil, nil, fixedClock(now))
	ctx := context.Background()

	a, err := svc.Create(ctx, CreateAccountInput{Name: "Ada", Currency: "USD"})
	if err != nil {
		t.Fatal(err)
	}
	yesterday := now.Add(-24 * time.Hour)
	if _, err := svc.Update(ctx, a.ID, core.AccountPatch{
		SubscriptionTier: core.Set(core.Premium),
		ExpiresAt:        core.Set(&yesterday),
	}); err != nil {
		t.Fatal(err)
	}

	view, err := svc.Subscription(ctx, a.ID)
	if err != nil {
		t.Fatalf("Subscription: %v", err)
	}
	if view.IsPremium || !view.IsExpired || view.Tier != core.Essentials {
		t.Errorf("expected downgraded view, got %+v", view)
	}
	if view.Status() != subscription.StatusExpired {
		t.Errorf("Status() = %s", view.Status())
	}

	stored, _ := store.GetAccount(ctx, a.ID)
	if stored.SubscriptionTier != core.Premium {
		t.Errorf("stored tier must stay premium, got %s", stored.SubscriptionTier)
	}
}
