package services

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"

	"spendwise/internal/cache"
	"spendwise/internal/core"
	"spendwise/internal/insights"
	"spendwise/internal/period"
)

// Report is the insight view for one period compared with the period
// that ended most recently before it started.
type Report struct {
	Period     core.Period
	Closed     bool
	Previous   *core.Period
	Currency   core.Currency
	Tags       []core.TagSpendingData
	Categories []core.CategorySpendingData
	Summary    insights.Summary
	// Remaining is TargetSpend minus current spend; negative when over budget.
	Remaining decimal.Decimal
}

// InsightsService loads the two spend windows and runs the aggregator.
// Reports for closed periods are cached until spend for the account changes.
type InsightsService struct {
	accounts AccountStore
	periods  PeriodStore
	spends   SpendStore
	reports  cache.Cache[Report]
	now      func() time.Time
}

func NewInsightsService(accounts AccountStore, periods PeriodStore, spends SpendStore, reports cache.Cache[Report], now func() time.Time) *InsightsService {
	if now == nil {
		now = time.Now
	}
	return &InsightsService{accounts: accounts, periods: periods, spends: spends, reports: reports, now: now}
}

func (s *InsightsService) ForPeriod(ctx context.Context, periodID string) (Report, error) {
	p, err := s.periods.GetPeriod(ctx, periodID)
	if err != nil {
		return Report{}, fmt.Errorf("get period: %w", err)
	}

	now := s.now()
	closed := period.IsClosed(p, now)
	key := accountKey(p.AccountID) + p.ID
	if closed && s.reports != nil {
		if r, ok := s.reports.Get(key); ok {
			return r, nil
		}
	}

	var (
		account  core.Account
		current  []core.Spend
		previous []core.Spend
		prev     *core.Period
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		a, err := s.accounts.GetAccount(gctx, p.AccountID)
		if err != nil {
			return fmt.Errorf("get account: %w", err)
		}
		account = a
		return nil
	})
	g.Go(func() error {
		spends, err := s.spends.ListSpendsBetween(gctx, p.AccountID, p.StartAt, p.EndAt)
		if err != nil {
			return fmt.Errorf("load current spend: %w", err)
		}
		current = insights.UpTo(spends, now)
		return nil
	})
	g.Go(func() error {
		all, err := s.periods.ListPeriods(gctx, p.AccountID)
		if err != nil {
			return fmt.Errorf("list periods: %w", err)
		}
		pp, ok := period.Previous(all, p)
		if !ok {
			return nil
		}
		spends, err := s.spends.ListSpendsBetween(gctx, p.AccountID, pp.StartAt, pp.EndAt)
		if err != nil {
			return fmt.Errorf("load previous spend: %w", err)
		}
		prev = &pp
		previous = insights.UpTo(spends, now)
		return nil
	})
	if err := g.Wait(); err != nil {
		return Report{}, err
	}

	summary := insights.Summarize(current, previous)
	r := Report{
		Period:     p,
		Closed:     closed,
		Previous:   prev,
		Currency:   account.Currency,
		Tags:       insights.ByTag(current, previous),
		Categories: insights.ByCategory(current, previous),
		Summary:    summary,
		Remaining:  p.TargetSpend.Sub(summary.CurrentTotal),
	}

	if closed && s.reports != nil {
		s.reports.Set(key, r)
	}
	return r, nil
}
