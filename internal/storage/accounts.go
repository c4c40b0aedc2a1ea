package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"spendwise/internal/core"
)

const accountColumns = `id, name, currency, date_format, onboarded, onboarded_at,
	subscription_tier, expires_at, subscription_cancelled, created_at, updated_at`

// CreateAccount stores a new account, assigning an ID when empty.
func (r *SQLiteRepository) CreateAccount(ctx context.Context, a core.Account) (core.Account, error) {
	if a.ID == "" {
		a.ID = newID()
	}
	_, err := r.db.ExecContext(ctx, `INSERT INTO accounts (`+accountColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		a.ID, a.Name, string(a.Currency), string(a.DateFormat), a.Onboarded,
		formatNullTime(a.OnboardedAt), string(a.SubscriptionTier),
		formatNullTime(a.ExpiresAt), nullBool(a.SubscriptionCancelled),
		formatTime(a.CreatedAt), formatTime(a.UpdatedAt))
	if err != nil {
		return core.Account{}, fmt.Errorf("insert account: %w", err)
	}

	slog.InfoContext(ctx, "Account created", "account_id", a.ID, "currency", a.Currency)
	return a, nil
}

func (r *SQLiteRepository) GetAccount(ctx context.Context, id string) (core.Account, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+accountColumns+` FROM accounts WHERE id = ?`, id)
	a, err := scanAccount(row)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Account{}, ErrNotFound
	}
	if err != nil {
		return core.Account{}, fmt.Errorf("get account %s: %w", id, err)
	}
	return a, nil
}

// UpdateAccount overwrites every mutable column of the stored account.
func (r *SQLiteRepository) UpdateAccount(ctx context.Context, a core.Account) error {
	res, err := r.db.ExecContext(ctx, `UPDATE accounts SET
		name = ?, currency = ?, date_format = ?, onboarded = ?, onboarded_at = ?,
		subscription_tier = ?, expires_at = ?, subscription_cancelled = ?, updated_at = ?
		WHERE id = ?`,
		a.Name, string(a.Currency), string(a.DateFormat), a.Onboarded,
		formatNullTime(a.OnboardedAt), string(a.SubscriptionTier),
		formatNullTime(a.ExpiresAt), nullBool(a.SubscriptionCancelled),
		formatTime(a.UpdatedAt), a.ID)
	if err != nil {
		return fmt.Errorf("update account %s: %w", a.ID, err)
	}
	return expectAffected(res)
}

func scanAccount(s scanner) (core.Account, error) {
	var (
		a                          core.Account
		currency, dateFormat, tier string
		onboardedAt, expiresAt     sql.NullString
		cancelled                  sql.NullBool
		createdAt, updatedAt       string
	)
	if err := s.Scan(&a.ID, &a.Name, &currency, &dateFormat, &a.Onboarded, &onboardedAt,
		&tier, &expiresAt, &cancelled, &createdAt, &updatedAt); err != nil {
		return core.Account{}, err
	}
	a.Currency = core.Currency(currency)
	a.DateFormat = core.DateFormat(dateFormat)
	a.SubscriptionTier = core.SubscriptionTier(tier)
	a.SubscriptionCancelled = boolPtr(cancelled)

	var err error
	if a.OnboardedAt, err = parseNullTime(onboardedAt); err != nil {
		return core.Account{}, err
	}
	if a.ExpiresAt, err = parseNullTime(expiresAt); err != nil {
		return core.Account{}, err
	}
	if a.CreatedAt, err = parseTime(createdAt); err != nil {
		return core.Account{}, err
	}
	if a.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return core.Account{}, err
	}
	return a, nil
}
