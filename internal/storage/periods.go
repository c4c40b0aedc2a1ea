package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"spendwise/internal/core"
)

func (r *SQLiteRepository) CreatePeriod(ctx context.Context, p core.Period) (core.Period, error) {
	if p.ID == "" {
		p.ID = newID()
	}
	_, err := r.db.ExecContext(ctx, `INSERT INTO periods (id, account_id, start_at, end_at, target_spend)
		VALUES (?, ?, ?, ?, ?)`,
		p.ID, p.AccountID, formatTime(p.StartAt), formatTime(p.EndAt), p.TargetSpend.String())
	if err != nil {
		return core.Period{}, fmt.Errorf("insert period: %w", err)
	}
	return p, nil
}

func (r *SQLiteRepository) GetPeriod(ctx context.Context, id string) (core.Period, error) {
	row := r.db.QueryRowContext(ctx, `SELECT id, account_id, start_at, end_at, target_spend
		FROM periods WHERE id = ?`, id)
	p, err := scanPeriod(row)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Period{}, ErrNotFound
	}
	if err != nil {
		return core.Period{}, fmt.Errorf("get period %s: %w", id, err)
	}
	return p, nil
}

// ListPeriods returns the account's periods ordered by start.
func (r *SQLiteRepository) ListPeriods(ctx context.Context, accountID string) ([]core.Period, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT id, account_id, start_at, end_at, target_spend
		FROM periods WHERE account_id = ? ORDER BY start_at, id`, accountID)
	if err != nil {
		return nil, fmt.Errorf("list periods: %w", err)
	}
	defer rows.Close()

	var periods []core.Period
	for rows.Next() {
		p, err := scanPeriod(rows)
		if err != nil {
			return nil, fmt.Errorf("scan period: %w", err)
		}
		periods = append(periods, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate periods: %w", err)
	}
	return periods, nil
}

// DeletePeriod removes the period and detaches any spend pointing at it.
func (r *SQLiteRepository) DeletePeriod(ctx context.Context, id string) error {
	return r.withTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `UPDATE spends SET period_id = NULL WHERE period_id = ?`, id); err != nil {
			return fmt.Errorf("detach spend from period %s: %w", id, err)
		}
		res, err := tx.ExecContext(ctx, `DELETE FROM periods WHERE id = ?`, id)
		if err != nil {
			return fmt.Errorf("delete period %s: %w", id, err)
		}
		return expectAffected(res)
	})
}

func scanPeriod(s scanner) (core.Period, error) {
	var (
		p                      core.Period
		startAt, endAt, target string
	)
	if err := s.Scan(&p.ID, &p.AccountID, &startAt, &endAt, &target); err != nil {
		return core.Period{}, err
	}
	var err error
	if p.StartAt, err = parseTime(startAt); err != nil {
		return core.Period{}, err
	}
	if p.EndAt, err = parseTime(endAt); err != nil {
		return core.Period{}, err
	}
	if p.TargetSpend, err = parseDecimal(target); err != nil {
		return core.Period{}, err
	}
	return p, nil
}
