// Package services orchestrates storage, messaging and the pure domain
// packages behind the HTTP API and the workers.
package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"spendwise/internal/core"
)

var (
	// ErrInvalidInput wraps every validation failure returned by a service.
	ErrInvalidInput = errors.New("invalid input")
	// ErrPeriodOpen is returned when deleting a period that has not ended.
	ErrPeriodOpen = errors.New("period is still open")
)

type (
	AccountStore interface {
		CreateAccount(ctx context.Context, a core.Account) (core.Account, error)
		GetAccount(ctx context.Context, id string) (core.Account, error)
		UpdateAccount(ctx context.Context, a core.Account) error
	}

	PeriodStore interface {
		CreatePeriod(ctx context.Context, p core.Period) (core.Period, error)
		GetPeriod(ctx context.Context, id string) (core.Period, error)
		ListPeriods(ctx context.Context, accountID string) ([]core.Period, error)
		DeletePeriod(ctx context.Context, id string) error
	}

	SpendStore interface {
		CreateSpend(ctx context.Context, s core.Spend) (core.Spend, error)
		GetSpend(ctx context.Context, id string) (core.Spend, error)
		UpdateSpend(ctx context.Context, s core.Spend) error
		DeleteSpend(ctx context.Context, id string) error
		ListSpendsBetween(ctx context.Context, accountID string, start, end time.Time) ([]core.Spend, error)
	}

	RecurringStore interface {
		CreateRecurringSpend(ctx context.Context, rs core.RecurringSpend) (core.RecurringSpend, error)
		GetRecurringSpend(ctx context.Context, id string) (core.RecurringSpend, error)
		ListRecurringSpends(ctx context.Context, accountID string) ([]core.RecurringSpend, error)
		DeleteRecurringSpend(ctx context.Context, id string) error
		UpdateRecurringLastRun(ctx context.Context, id string, at time.Time) error
	}

	// SyncPublisher announces spend that needs exporting.
	SyncPublisher interface {
		PublishSpendSync(ctx context.Context, id, accountID string) error
	}

	// Invalidator drops cached views for one account.
	Invalidator interface {
		DeletePrefix(prefix string) int
	}
)

func invalid(err error) error {
	return fmt.Errorf("%w: %w", ErrInvalidInput, err)
}

func accountKey(accountID string) string {
	return accountID + ":"
}

func invalidateAccount(c Invalidator, accountID string) {
	if c != nil {
		c.DeletePrefix(accountKey(accountID))
	}
}
