package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/shopspring/decimal"

	"spendwise/internal/core"
	"spendwise/internal/period"
)

type PeriodService struct {
	store    PeriodStore
	accounts AccountStore
	reports  Invalidator
	now      func() time.Time
}

type CreatePeriodInput struct {
	StartAt     time.Time
	EndAt       time.Time
	TargetSpend decimal.Decimal
}

func NewPeriodService(store PeriodStore, accounts AccountStore, reports Invalidator, now func() time.Time) *PeriodService {
	if now == nil {
		now = time.Now
	}
	return &PeriodService{store: store, accounts: accounts, reports: reports, now: now}
}

func (s *PeriodService) Create(ctx context.Context, accountID string, in CreatePeriodInput) (core.Period, error) {
	if _, err := s.accounts.GetAccount(ctx, accountID); err != nil {
		return core.Period{}, fmt.Errorf("get account: %w", err)
	}

	p := core.Period{
		AccountID:   accountID,
		StartAt:     in.StartAt,
		EndAt:       in.EndAt,
		TargetSpend: in.TargetSpend,
	}
	if p.StartAt.IsZero() || p.EndAt.IsZero() {
		return core.Period{}, invalid(errors.New("period bounds are required"))
	}
	if err := p.Validate(); err != nil {
		return core.Period{}, invalid(err)
	}

	created, err := s.store.CreatePeriod(ctx, p)
	if err != nil {
		return core.Period{}, fmt.Errorf("create period: %w", err)
	}
	// A new period can become the comparison window of a cached report.
	invalidateAccount(s.reports, accountID)
	return created, nil
}

func (s *PeriodService) Get(ctx context.Context, id string) (core.Period, error) {
	p, err := s.store.GetPeriod(ctx, id)
	if err != nil {
		return core.Period{}, fmt.Errorf("get period: %w", err)
	}
	return p, nil
}

// List splits the account's periods into open and closed as of now.
func (s *PeriodService) List(ctx context.Context, accountID string) (period.Partition, error) {
	if _, err := s.accounts.GetAccount(ctx, accountID); err != nil {
		return period.Partition{}, fmt.Errorf("get account: %w", err)
	}
	periods, err := s.store.ListPeriods(ctx, accountID)
	if err != nil {
		return period.Partition{}, fmt.Errorf("list periods: %w", err)
	}
	return period.Classify(periods, s.now()), nil
}

// Delete removes a closed period. Open periods yield ErrPeriodOpen.
func (s *PeriodService) Delete(ctx context.Context, id string) error {
	p, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	if !period.IsClosed(p, s.now()) {
		return ErrPeriodOpen
	}
	if err := s.store.DeletePeriod(ctx, id); err != nil {
		return fmt.Errorf("delete period: %w", err)
	}
	invalidateAccount(s.reports, p.AccountID)

	slog.InfoContext(ctx, "Period deleted", "period_id", id, "account_id", p.AccountID)
	return nil
}
