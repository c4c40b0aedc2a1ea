package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"spendwise/internal/core"
)

const recurringColumns = `id, account_id, start_date, end_date, every, amount, category,
	tags, description, last_run_at`

func (r *SQLiteRepository) CreateRecurringSpend(ctx context.Context, rs core.RecurringSpend) (core.RecurringSpend, error) {
	if rs.ID == "" {
		rs.ID = newID()
	}
	rs.Tags = core.NormalizeTags(rs.Tags)
	tags, err := json.Marshal(rs.Tags)
	if err != nil {
		return core.RecurringSpend{}, fmt.Errorf("encode tags: %w", err)
	}
	_, err = r.db.ExecContext(ctx, `INSERT INTO recurring_spends (`+recurringColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		rs.ID, rs.AccountID, formatTime(rs.StartDate), formatNullTime(rs.EndDate),
		string(rs.Every), rs.Amount.String(), string(rs.Category), string(tags),
		rs.Description, formatNullTime(rs.LastRunAt))
	if err != nil {
		return core.RecurringSpend{}, fmt.Errorf("insert recurring spend: %w", err)
	}
	return rs, nil
}

func (r *SQLiteRepository) GetRecurringSpend(ctx context.Context, id string) (core.RecurringSpend, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+recurringColumns+` FROM recurring_spends WHERE id = ?`, id)
	rs, err := scanRecurring(row)
	if errors.Is(err, sql.ErrNoRows) {
		return core.RecurringSpend{}, ErrNotFound
	}
	if err != nil {
		return core.RecurringSpend{}, fmt.Errorf("get recurring spend %s: %w", id, err)
	}
	return rs, nil
}

// ListRecurringSpends returns templates for one account, or for every
// account when accountID is empty.
func (r *SQLiteRepository) ListRecurringSpends(ctx context.Context, accountID string) ([]core.RecurringSpend, error) {
	query := `SELECT ` + recurringColumns + ` FROM recurring_spends`
	var args []any
	if accountID != "" {
		query += ` WHERE account_id = ?`
		args = append(args, accountID)
	}
	query += ` ORDER BY start_date, id`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list recurring spends: %w", err)
	}
	defer rows.Close()

	var out []core.RecurringSpend
	for rows.Next() {
		rs, err := scanRecurring(rows)
		if err != nil {
			return nil, fmt.Errorf("scan recurring spend: %w", err)
		}
		out = append(out, rs)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate recurring spends: %w", err)
	}
	return out, nil
}

func (r *SQLiteRepository) UpdateRecurringSpend(ctx context.Context, rs core.RecurringSpend) error {
	rs.Tags = core.NormalizeTags(rs.Tags)
	tags, err := json.Marshal(rs.Tags)
	if err != nil {
		return fmt.Errorf("encode tags: %w", err)
	}
	res, err := r.db.ExecContext(ctx, `UPDATE recurring_spends SET
		start_date = ?, end_date = ?, every = ?, amount = ?, category = ?,
		tags = ?, description = ?
		WHERE id = ?`,
		formatTime(rs.StartDate), formatNullTime(rs.EndDate), string(rs.Every),
		rs.Amount.String(), string(rs.Category), string(tags), rs.Description, rs.ID)
	if err != nil {
		return fmt.Errorf("update recurring spend %s: %w", rs.ID, err)
	}
	return expectAffected(res)
}

func (r *SQLiteRepository) DeleteRecurringSpend(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM recurring_spends WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete recurring spend %s: %w", id, err)
	}
	return expectAffected(res)
}

// UpdateRecurringLastRun records when the template last produced spend.
func (r *SQLiteRepository) UpdateRecurringLastRun(ctx context.Context, id string, at time.Time) error {
	res, err := r.db.ExecContext(ctx, `UPDATE recurring_spends SET last_run_at = ? WHERE id = ?`,
		formatTime(at), id)
	if err != nil {
		return fmt.Errorf("update last run for %s: %w", id, err)
	}
	return expectAffected(res)
}

func scanRecurring(s scanner) (core.RecurringSpend, error) {
	var (
		rs                       core.RecurringSpend
		startDate, every, amount string
		category, tags           string
		endDate, lastRunAt       sql.NullString
	)
	if err := s.Scan(&rs.ID, &rs.AccountID, &startDate, &endDate, &every, &amount,
		&category, &tags, &rs.Description, &lastRunAt); err != nil {
		return core.RecurringSpend{}, err
	}
	rs.Every = core.RepetitionType(every)
	rs.Category = core.Category(category)
	if tags != "" {
		if err := json.Unmarshal([]byte(tags), &rs.Tags); err != nil {
			return core.RecurringSpend{}, fmt.Errorf("decode tags: %w", err)
		}
	}

	var err error
	if rs.StartDate, err = parseTime(startDate); err != nil {
		return core.RecurringSpend{}, err
	}
	if rs.EndDate, err = parseNullTime(endDate); err != nil {
		return core.RecurringSpend{}, err
	}
	if rs.LastRunAt, err = parseNullTime(lastRunAt); err != nil {
		return core.RecurringSpend{}, err
	}
	if rs.Amount, err = parseDecimal(amount); err != nil {
		return core.RecurringSpend{}, err
	}
	return rs, nil
}
