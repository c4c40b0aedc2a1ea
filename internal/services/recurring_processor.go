package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"spendwise/internal/core"
)

// RecurringService manages recurring spend templates.
type RecurringService struct {
	store    RecurringStore
	accounts AccountStore
}

func NewRecurringService(store RecurringStore, accounts AccountStore) *RecurringService {
	return &RecurringService{store: store, accounts: accounts}
}

func (s *RecurringService) Create(ctx context.Context, accountID string, rs core.RecurringSpend) (core.RecurringSpend, error) {
	if _, err := s.accounts.GetAccount(ctx, accountID); err != nil {
		return core.RecurringSpend{}, fmt.Errorf("get account: %w", err)
	}
	rs.ID = ""
	rs.AccountID = accountID
	rs.LastRunAt = nil
	rs.Tags = core.NormalizeTags(rs.Tags)
	if err := rs.Validate(); err != nil {
		return core.RecurringSpend{}, invalid(err)
	}

	created, err := s.store.CreateRecurringSpend(ctx, rs)
	if err != nil {
		return core.RecurringSpend{}, fmt.Errorf("create recurring spend: %w", err)
	}
	return created, nil
}

func (s *RecurringService) List(ctx context.Context, accountID string) ([]core.RecurringSpend, error) {
	if _, err := s.accounts.GetAccount(ctx, accountID); err != nil {
		return nil, fmt.Errorf("get account: %w", err)
	}
	list, err := s.store.ListRecurringSpends(ctx, accountID)
	if err != nil {
		return nil, fmt.Errorf("list recurring spends: %w", err)
	}
	return list, nil
}

func (s *RecurringService) Delete(ctx context.Context, id string) error {
	if err := s.store.DeleteRecurringSpend(ctx, id); err != nil {
		return fmt.Errorf("delete recurring spend: %w", err)
	}
	return nil
}

// RecurringProcessor turns due templates into spend records.
type RecurringProcessor struct {
	store  RecurringStore
	spends *SpendService
}

func NewRecurringProcessor(store RecurringStore, spends *SpendService) *RecurringProcessor {
	return &RecurringProcessor{store: store, spends: spends}
}

// ProcessDue creates one spend, dated now, for every active template that
// is due, and returns how many were created. Failures on one template are
// logged and do not stop the others.
func (p *RecurringProcessor) ProcessDue(ctx context.Context, now time.Time) (int, error) {
	if p.store == nil || p.spends == nil {
		return 0, fmt.Errorf("processor not properly initialized")
	}

	templates, err := p.store.ListRecurringSpends(ctx, "")
	if err != nil {
		return 0, fmt.Errorf("list recurring spends: %w", err)
	}

	slog.InfoContext(ctx, "Processing recurring spend",
		"templates", len(templates),
		"processing_date", now.Format("2006-01-02"))

	created := 0
	for _, rs := range templates {
		if !rs.ActiveAt(now) {
			continue
		}

		checker, err := GetDuenessChecker(rs.Every)
		if err != nil {
			slog.ErrorContext(ctx, "Skipping template", "recurring_id", rs.ID, "error", err)
			continue
		}
		var lastRun time.Time
		if rs.LastRunAt != nil {
			lastRun = *rs.LastRunAt
		}
		if !checker.IsDue(lastRun, now, rs.StartDate) {
			continue
		}

		sp, err := p.spends.Create(ctx, rs.AccountID, rs.Materialize(now))
		if err != nil {
			slog.ErrorContext(ctx, "Failed to create spend from recurring template",
				"recurring_id", rs.ID,
				"description", rs.Description,
				"error", err)
			continue
		}

		// The spend exists even if this fails; the next run may duplicate it.
		if err := p.store.UpdateRecurringLastRun(ctx, rs.ID, now); err != nil {
			slog.ErrorContext(ctx, "Failed to update last run",
				"recurring_id", rs.ID,
				"error", err)
		}

		created++
		slog.InfoContext(ctx, "Created spend from recurring template",
			"recurring_id", rs.ID,
			"spend_id", sp.ID,
			"amount", rs.Amount.StringFixed(2),
			"every", rs.Every)
	}

	slog.InfoContext(ctx, "Recurring spend processing complete",
		"created", created,
		"checked", len(templates))
	return created, nil
}
