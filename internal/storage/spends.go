package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"spendwise/internal/core"
)

const spendColumns = `id, account_id, period_id, amount, category, date, description,
	emotional_state, satisfaction_rating, necessity_rating, created_at, updated_at`

// CreateSpend stores the spend and its tags in one transaction.
func (r *SQLiteRepository) CreateSpend(ctx context.Context, s core.Spend) (core.Spend, error) {
	if s.ID == "" {
		s.ID = newID()
	}
	s.Tags = core.NormalizeTags(s.Tags)

	err := r.withTx(ctx, func(tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx, `INSERT INTO spends (`+spendColumns+`)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			s.ID, s.AccountID, nullString(s.PeriodID), s.Amount.String(), string(s.Category),
			formatTime(s.Date), s.Description, s.EmotionalState,
			nullInt(s.SatisfactionRating), nullInt(s.NecessityRating),
			formatTime(s.CreatedAt), formatTime(s.UpdatedAt))
		if err != nil {
			return fmt.Errorf("insert spend: %w", err)
		}
		return insertTags(ctx, tx, s.ID, s.Tags)
	})
	if err != nil {
		return core.Spend{}, err
	}

	slog.InfoContext(ctx, "Spend saved",
		"spend_id", s.ID,
		"account_id", s.AccountID,
		"amount", s.Amount.StringFixed(2),
		"category", s.Category,
		"tags", len(s.Tags))
	return s, nil
}

func (r *SQLiteRepository) GetSpend(ctx context.Context, id string) (core.Spend, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+spendColumns+` FROM spends WHERE id = ?`, id)
	s, err := scanSpend(row)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Spend{}, ErrNotFound
	}
	if err != nil {
		return core.Spend{}, fmt.Errorf("get spend %s: %w", id, err)
	}

	tags, err := r.db.QueryContext(ctx, `SELECT spend_id, tag FROM spend_tags
		WHERE spend_id = ? ORDER BY position`, id)
	if err != nil {
		return core.Spend{}, fmt.Errorf("get spend tags: %w", err)
	}
	byID, err := collectTags(tags)
	if err != nil {
		return core.Spend{}, err
	}
	s.Tags = byID[id]
	return s, nil
}

// UpdateSpend overwrites the stored spend, replaces its tags and clears the
// sync marker so the export picks up the new values.
func (r *SQLiteRepository) UpdateSpend(ctx context.Context, s core.Spend) error {
	s.Tags = core.NormalizeTags(s.Tags)
	return r.withTx(ctx, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx, `UPDATE spends SET
			period_id = ?, amount = ?, category = ?, date = ?, description = ?,
			emotional_state = ?, satisfaction_rating = ?, necessity_rating = ?,
			updated_at = ?, synced_at = NULL, sync_error = 0
			WHERE id = ?`,
			nullString(s.PeriodID), s.Amount.String(), string(s.Category), formatTime(s.Date),
			s.Description, s.EmotionalState, nullInt(s.SatisfactionRating),
			nullInt(s.NecessityRating), formatTime(s.UpdatedAt), s.ID)
		if err != nil {
			return fmt.Errorf("update spend %s: %w", s.ID, err)
		}
		if err := expectAffected(res); err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx, `DELETE FROM spend_tags WHERE spend_id = ?`, s.ID); err != nil {
			return fmt.Errorf("clear spend tags: %w", err)
		}
		return insertTags(ctx, tx, s.ID, s.Tags)
	})
}

func (r *SQLiteRepository) DeleteSpend(ctx context.Context, id string) error {
	return r.withTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `DELETE FROM spend_tags WHERE spend_id = ?`, id); err != nil {
			return fmt.Errorf("delete spend tags: %w", err)
		}
		res, err := tx.ExecContext(ctx, `DELETE FROM spends WHERE id = ?`, id)
		if err != nil {
			return fmt.Errorf("delete spend %s: %w", id, err)
		}
		return expectAffected(res)
	})
}

// ListSpendsBetween returns the account's spend dated within [start, end],
// oldest first, tags included.
func (r *SQLiteRepository) ListSpendsBetween(ctx context.Context, accountID string, start, end time.Time) ([]core.Spend, error) {
	from, to := formatTime(start), formatTime(end)

	rows, err := r.db.QueryContext(ctx, `SELECT `+spendColumns+` FROM spends
		WHERE account_id = ? AND date >= ? AND date <= ?
		ORDER BY date, id`, accountID, from, to)
	if err != nil {
		return nil, fmt.Errorf("list spends: %w", err)
	}
	spends, err := collectSpends(rows)
	if err != nil {
		return nil, err
	}

	tagRows, err := r.db.QueryContext(ctx, `SELECT t.spend_id, t.tag FROM spend_tags t
		JOIN spends s ON s.id = t.spend_id
		WHERE s.account_id = ? AND s.date >= ? AND s.date <= ?
		ORDER BY t.spend_id, t.position`, accountID, from, to)
	if err != nil {
		return nil, fmt.Errorf("list spend tags: %w", err)
	}
	byID, err := collectTags(tagRows)
	if err != nil {
		return nil, err
	}
	for i := range spends {
		spends[i].Tags = byID[spends[i].ID]
	}
	return spends, nil
}

// MarkSpendSynced records a successful export of the spend.
func (r *SQLiteRepository) MarkSpendSynced(ctx context.Context, id string, at time.Time) error {
	res, err := r.db.ExecContext(ctx, `UPDATE spends SET synced_at = ?, sync_error = 0 WHERE id = ?`,
		formatTime(at), id)
	if err != nil {
		return fmt.Errorf("mark spend synced: %w", err)
	}
	if err := expectAffected(res); err != nil {
		return err
	}
	slog.InfoContext(ctx, "Spend marked as synced", "spend_id", id)
	return nil
}

// MarkSpendSyncError flags the spend so the backfill skips it.
func (r *SQLiteRepository) MarkSpendSyncError(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `UPDATE spends SET sync_error = 1 WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("mark spend sync error: %w", err)
	}
	if err := expectAffected(res); err != nil {
		return err
	}
	slog.WarnContext(ctx, "Spend marked with sync error", "spend_id", id)
	return nil
}

// ListUnsyncedSpends returns up to limit spend records that were never
// exported and are not flagged as failed, oldest first.
func (r *SQLiteRepository) ListUnsyncedSpends(ctx context.Context, limit int) ([]core.Spend, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+spendColumns+` FROM spends
		WHERE synced_at IS NULL AND sync_error = 0
		ORDER BY created_at, id LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("list unsynced spends: %w", err)
	}
	return collectSpends(rows)
}

func insertTags(ctx context.Context, tx *sql.Tx, spendID string, tags []string) error {
	for i, tag := range tags {
		if _, err := tx.ExecContext(ctx, `INSERT INTO spend_tags (spend_id, position, tag) VALUES (?, ?, ?)`,
			spendID, i, tag); err != nil {
			return fmt.Errorf("insert tag %q: %w", tag, err)
		}
	}
	return nil
}

func collectSpends(rows *sql.Rows) ([]core.Spend, error) {
	defer rows.Close()
	var spends []core.Spend
	for rows.Next() {
		s, err := scanSpend(rows)
		if err != nil {
			return nil, fmt.Errorf("scan spend: %w", err)
		}
		spends = append(spends, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate spends: %w", err)
	}
	return spends, nil
}

func collectTags(rows *sql.Rows) (map[string][]string, error) {
	defer rows.Close()
	byID := make(map[string][]string)
	for rows.Next() {
		var id, tag string
		if err := rows.Scan(&id, &tag); err != nil {
			return nil, fmt.Errorf("scan tag: %w", err)
		}
		byID[id] = append(byID[id], tag)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate tags: %w", err)
	}
	return byID, nil
}

func scanSpend(sc scanner) (core.Spend, error) {
	var (
		s                       core.Spend
		periodID                sql.NullString
		amount, category, date  string
		satisfaction, necessity sql.NullInt64
		createdAt, updatedAt    string
	)
	if err := sc.Scan(&s.ID, &s.AccountID, &periodID, &amount, &category, &date,
		&s.Description, &s.EmotionalState, &satisfaction, &necessity,
		&createdAt, &updatedAt); err != nil {
		return core.Spend{}, err
	}
	s.PeriodID = periodID.String
	s.Category = core.Category(category)
	s.SatisfactionRating = intPtr(satisfaction)
	s.NecessityRating = intPtr(necessity)

	var err error
	if s.Amount, err = parseDecimal(amount); err != nil {
		return core.Spend{}, err
	}
	if s.Date, err = parseTime(date); err != nil {
		return core.Spend{}, err
	}
	if s.CreatedAt, err = parseTime(createdAt); err != nil {
		return core.Spend{}, err
	}
	if s.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return core.Spend{}, err
	}
	return s, nil
}
