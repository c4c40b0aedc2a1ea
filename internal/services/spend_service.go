package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"spendwise/internal/core"
)

// SpendService saves spend locally first, then announces it for export.
// A failed publish never fails the request; the worker backfill picks the
// record up later.
type SpendService struct {
	store     SpendStore
	accounts  AccountStore
	periods   PeriodStore
	publisher SyncPublisher
	reports   Invalidator
	now       func() time.Time
}

func NewSpendService(store SpendStore, accounts AccountStore, periods PeriodStore, publisher SyncPublisher, reports Invalidator, now func() time.Time) *SpendService {
	if now == nil {
		now = time.Now
	}
	return &SpendService{
		store:     store,
		accounts:  accounts,
		periods:   periods,
		publisher: publisher,
		reports:   reports,
		now:       now,
	}
}

// Create records spend for the account. ID, AccountID and timestamps on
// the input are overwritten.
func (s *SpendService) Create(ctx context.Context, accountID string, sp core.Spend) (core.Spend, error) {
	if _, err := s.accounts.GetAccount(ctx, accountID); err != nil {
		return core.Spend{}, fmt.Errorf("get account: %w", err)
	}

	now := s.now()
	sp.ID = ""
	sp.AccountID = accountID
	sp.Tags = core.NormalizeTags(sp.Tags)
	sp.CreatedAt, sp.UpdatedAt = now, now

	if err := s.check(ctx, sp); err != nil {
		return core.Spend{}, err
	}

	created, err := s.store.CreateSpend(ctx, sp)
	if err != nil {
		return core.Spend{}, fmt.Errorf("save spend: %w", err)
	}
	invalidateAccount(s.reports, accountID)
	s.publish(ctx, created)
	return created, nil
}

func (s *SpendService) Get(ctx context.Context, id string) (core.Spend, error) {
	sp, err := s.store.GetSpend(ctx, id)
	if err != nil {
		return core.Spend{}, fmt.Errorf("get spend: %w", err)
	}
	return sp, nil
}

func (s *SpendService) Update(ctx context.Context, id string, patch core.SpendPatch) (core.Spend, error) {
	sp, err := s.Get(ctx, id)
	if err != nil {
		return core.Spend{}, err
	}
	if patch.IsEmpty() {
		return sp, nil
	}

	updated := patch.Apply(sp, s.now())
	if err := s.check(ctx, updated); err != nil {
		return core.Spend{}, err
	}
	if err := s.store.UpdateSpend(ctx, updated); err != nil {
		return core.Spend{}, fmt.Errorf("update spend: %w", err)
	}
	invalidateAccount(s.reports, updated.AccountID)
	s.publish(ctx, updated)
	return updated, nil
}

// Delete removes the spend locally. Rows already exported stay in the
// spreadsheet.
func (s *SpendService) Delete(ctx context.Context, id string) error {
	sp, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	if err := s.store.DeleteSpend(ctx, id); err != nil {
		return fmt.Errorf("delete spend: %w", err)
	}
	invalidateAccount(s.reports, sp.AccountID)
	slog.InfoContext(ctx, "Spend deleted", "spend_id", id, "account_id", sp.AccountID)
	return nil
}

// check validates the record and that its period, if any, belongs to the
// same account.
func (s *SpendService) check(ctx context.Context, sp core.Spend) error {
	if err := sp.Validate(); err != nil {
		return invalid(err)
	}
	if sp.PeriodID == "" {
		return nil
	}
	p, err := s.periods.GetPeriod(ctx, sp.PeriodID)
	if err != nil {
		return invalid(fmt.Errorf("period %s: %w", sp.PeriodID, err))
	}
	if p.AccountID != sp.AccountID {
		return invalid(fmt.Errorf("period %s belongs to another account", sp.PeriodID))
	}
	return nil
}

func (s *SpendService) publish(ctx context.Context, sp core.Spend) {
	if s.publisher == nil {
		slog.WarnContext(ctx, "AMQP client not available, skipping sync message", "spend_id", sp.ID)
		return
	}
	if err := s.publisher.PublishSpendSync(ctx, sp.ID, sp.AccountID); err != nil {
		slog.ErrorContext(ctx, "Failed to publish sync message",
			"spend_id", sp.ID, "error", err)
	}
}
