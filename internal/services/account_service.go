package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"spendwise/internal/core"
	"spendwise/internal/locale"
	"spendwise/internal/subscription"
)

// AccountService creates and edits accounts and resolves their effective
// subscription state.
type AccountService struct {
	store   AccountStore
	tz      locale.TimezoneSource
	reports Invalidator
	now     func() time.Time
}

// CreateAccountInput carries signup fields. Currency wins over Timezone;
// with neither set the server timezone decides.
type CreateAccountInput struct {
	Name     string
	Currency string
	Timezone string
}

func NewAccountService(store AccountStore, tz locale.TimezoneSource, reports Invalidator, now func() time.Time) *AccountService {
	if now == nil {
		now = time.Now
	}
	return &AccountService{store: store, tz: tz, reports: reports, now: now}
}

func (s *AccountService) Create(ctx context.Context, in CreateAccountInput) (core.Account, error) {
	currency, err := s.defaultCurrency(in)
	if err != nil {
		return core.Account{}, invalid(err)
	}

	a := core.NewAccount(in.Name, currency, s.now())
	if err := a.Validate(); err != nil {
		return core.Account{}, invalid(err)
	}

	created, err := s.store.CreateAccount(ctx, a)
	if err != nil {
		return core.Account{}, fmt.Errorf("create account: %w", err)
	}
	return created, nil
}

func (s *AccountService) defaultCurrency(in CreateAccountInput) (core.Currency, error) {
	switch {
	case in.Currency != "":
		return core.ParseCurrency(in.Currency)
	case in.Timezone != "":
		return locale.DetectCurrencyFromTimezone(in.Timezone), nil
	default:
		return locale.DetectCurrency(s.tz), nil
	}
}

func (s *AccountService) Get(ctx context.Context, id string) (core.Account, error) {
	a, err := s.store.GetAccount(ctx, id)
	if err != nil {
		return core.Account{}, fmt.Errorf("get account: %w", err)
	}
	return a, nil
}

// Update applies patch and refreshes UpdatedAt. An empty patch is a no-op.
func (s *AccountService) Update(ctx context.Context, id string, patch core.AccountPatch) (core.Account, error) {
	a, err := s.Get(ctx, id)
	if err != nil {
		return core.Account{}, err
	}
	if patch.IsEmpty() {
		return a, nil
	}

	updated := patch.Apply(a, s.now())
	if err := updated.Validate(); err != nil {
		return core.Account{}, invalid(err)
	}
	if err := s.store.UpdateAccount(ctx, updated); err != nil {
		return core.Account{}, fmt.Errorf("update account: %w", err)
	}
	invalidateAccount(s.reports, id)

	if patch.SubscriptionTier.IsSet() || patch.ExpiresAt.IsSet() || patch.SubscriptionCancelled.IsSet() {
		slog.InfoContext(ctx, "Subscription changed",
			"account_id", id,
			"tier", updated.SubscriptionTier,
			"status", subscription.Resolve(&updated, updated.UpdatedAt).Status())
	}
	return updated, nil
}

// Subscription resolves the effective subscription for the account now.
// The stored tier is never rewritten on expiry.
func (s *AccountService) Subscription(ctx context.Context, id string) (subscription.View, error) {
	a, err := s.Get(ctx, id)
	if err != nil {
		return subscription.View{}, err
	}
	return subscription.Resolve(&a, s.now()), nil
}
