package worker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"spendwise/internal/amqp"
	"spendwise/internal/core"
	"spendwise/internal/sheets"
	"spendwise/internal/storage"
)

// Store is the slice of storage.SQLiteRepository the worker needs.
type Store interface {
	GetSpend(ctx context.Context, id string) (core.Spend, error)
	GetAccount(ctx context.Context, id string) (core.Account, error)
	ListUnsyncedSpends(ctx context.Context, limit int) ([]core.Spend, error)
	MarkSpendSynced(ctx context.Context, id string, at time.Time) error
	MarkSpendSyncError(ctx context.Context, id string) error
}

// SyncWorker exports spend from SQLite to the spreadsheet.
type SyncWorker struct {
	store       Store
	sheets      sheets.SpendWriter
	batchSize   int
	maxAttempts int
	now         func() time.Time

	mu       sync.Mutex
	failures map[string]int
}

type Option func(*SyncWorker)

// WithMaxAttempts sets how many failed backfill exports a spend gets before
// it is flagged with a sync error and skipped.
func WithMaxAttempts(n int) Option {
	return func(w *SyncWorker) {
		if n > 0 {
			w.maxAttempts = n
		}
	}
}

func WithClock(now func() time.Time) Option {
	return func(w *SyncWorker) {
		if now != nil {
			w.now = now
		}
	}
}

func NewSyncWorker(store Store, writer sheets.SpendWriter, batchSize int, opts ...Option) *SyncWorker {
	if batchSize <= 0 {
		batchSize = 10
	}
	w := &SyncWorker{
		store:       store,
		sheets:      writer,
		batchSize:   batchSize,
		maxAttempts: 3,
		now:         time.Now,
		failures:    make(map[string]int),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// HandleSyncMessage exports the spend named by msg. A spend deleted before
// the message arrived is acknowledged without exporting; a rejected row is
// flagged and dropped. Other failures are returned so the message is
// redelivered.
func (w *SyncWorker) HandleSyncMessage(ctx context.Context, msg *amqp.SpendSyncMessage) error {
	slog.InfoContext(ctx, "Processing sync message",
		"spend_id", msg.ID,
		"account_id", msg.AccountID)

	sp, err := w.store.GetSpend(ctx, msg.ID)
	if errors.Is(err, storage.ErrNotFound) {
		slog.WarnContext(ctx, "Spend no longer exists, dropping sync message", "spend_id", msg.ID)
		return nil
	}
	if err != nil {
		return fmt.Errorf("get spend from storage: %w", err)
	}

	err = w.export(ctx, sp)
	var rowErr *invalidRowError
	if errors.As(err, &rowErr) {
		w.markError(ctx, sp.ID)
		return nil
	}
	return err
}

// ProcessPendingSpends exports one batch of spend that has not been synced
// yet and returns how many rows were written. It backs up the AMQP path
// when messages are lost.
func (w *SyncWorker) ProcessPendingSpends(ctx context.Context) (int, error) {
	return w.drain(ctx, w.batchSize)
}

// StartupSyncCheck drains a larger batch once when the worker starts, to
// recover from downtime.
func (w *SyncWorker) StartupSyncCheck(ctx context.Context) error {
	n, err := w.drain(ctx, w.batchSize*5)
	if err != nil {
		return fmt.Errorf("startup sync check: %w", err)
	}
	if n == 0 {
		slog.InfoContext(ctx, "No pending spend found on startup")
		return nil
	}
	slog.InfoContext(ctx, "Startup sync completed", "synced", n)
	return nil
}

func (w *SyncWorker) drain(ctx context.Context, limit int) (int, error) {
	pending, err := w.store.ListUnsyncedSpends(ctx, limit)
	if err != nil {
		return 0, fmt.Errorf("list unsynced spend: %w", err)
	}
	if len(pending) == 0 {
		return 0, nil
	}

	slog.InfoContext(ctx, "Processing pending spend", "count", len(pending))

	synced := 0
	for _, p := range pending {
		if err := ctx.Err(); err != nil {
			return synced, err
		}

		sp, err := w.store.GetSpend(ctx, p.ID)
		if err != nil {
			slog.ErrorContext(ctx, "Failed to get spend", "spend_id", p.ID, "error", err)
			w.recordFailure(ctx, p.ID)
			continue
		}

		if err := w.export(ctx, sp); err != nil {
			slog.ErrorContext(ctx, "Failed to sync spend", "spend_id", p.ID, "error", err)
			var rowErr *invalidRowError
			if errors.As(err, &rowErr) {
				w.markError(ctx, p.ID)
			} else {
				w.recordFailure(ctx, p.ID)
			}
			continue
		}
		synced++
	}

	slog.InfoContext(ctx, "Pending spend processed",
		"total", len(pending),
		"synced", synced,
		"errors", len(pending)-synced)
	return synced, nil
}

type invalidRowError struct{ err error }

func (e *invalidRowError) Error() string { return "invalid row: " + e.err.Error() }
func (e *invalidRowError) Unwrap() error { return e.err }

func (w *SyncWorker) export(ctx context.Context, sp core.Spend) error {
	account, err := w.store.GetAccount(ctx, sp.AccountID)
	if err != nil {
		return fmt.Errorf("get account: %w", err)
	}

	row := sheets.NewSpendRow(sp, account)
	if err := row.Validate(); err != nil {
		return &invalidRowError{err: err}
	}

	ref, err := w.sheets.Append(ctx, row)
	if err != nil {
		return fmt.Errorf("append to sheets: %w", err)
	}

	w.clearFailures(sp.ID)

	// The row exists even if this fails; the spend may be exported twice.
	if err := w.store.MarkSpendSynced(ctx, sp.ID, w.now()); err != nil {
		slog.ErrorContext(ctx, "Failed to mark as synced", "spend_id", sp.ID, "error", err)
	}

	slog.InfoContext(ctx, "Successfully synced spend",
		"spend_id", sp.ID,
		"sheets_ref", ref,
		"amount", sp.Amount.StringFixed(2),
		"currency", account.Currency)
	return nil
}

func (w *SyncWorker) recordFailure(ctx context.Context, id string) {
	w.mu.Lock()
	w.failures[id]++
	n := w.failures[id]
	w.mu.Unlock()

	if n >= w.maxAttempts {
		w.markError(ctx, id)
	}
}

func (w *SyncWorker) clearFailures(id string) {
	w.mu.Lock()
	delete(w.failures, id)
	w.mu.Unlock()
}

func (w *SyncWorker) markError(ctx context.Context, id string) {
	w.clearFailures(id)
	if err := w.store.MarkSpendSyncError(ctx, id); err != nil {
		slog.ErrorContext(ctx, "Failed to mark sync error", "spend_id", id, "error", err)
	}
}
