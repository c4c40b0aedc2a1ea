package core

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

const (
	Monthly RepetitionType = "monthly"
	Yearly  RepetitionType = "yearly"
	Weekly  RepetitionType = "weekly"
	Daily   RepetitionType = "daily"
)

type (
	RepetitionType string

	// RecurringSpend is a template that materialises a Spend each time it is due.
	RecurringSpend struct {
		ID          string
		AccountID   string
		StartDate   time.Time
		EndDate     *time.Time // nil means no end
		Every       RepetitionType
		Amount      decimal.Decimal
		Category    Category
		Tags        []string
		Description string
		LastRunAt   *time.Time
	}
)

func (r RepetitionType) IsValid() bool {
	switch r {
	case Daily, Weekly, Monthly, Yearly:
		return true
	}
	return false
}

func (rs RecurringSpend) Validate() error {
	if rs.StartDate.IsZero() {
		return errors.New("start date cannot be zero")
	}
	if rs.EndDate != nil && rs.EndDate.Before(rs.StartDate) {
		return errors.New("end date must not be before start date")
	}
	if !rs.Every.IsValid() {
		return fmt.Errorf("invalid repetition type %q", rs.Every)
	}
	if len(strings.TrimSpace(rs.Description)) == 0 {
		return errors.New("empty description")
	}
	if rs.Amount.IsNegative() || rs.Amount.IsZero() {
		return ErrInvalidAmount
	}
	if !rs.Category.IsValid() {
		return fmt.Errorf("%w: %q", ErrInvalidCategory, rs.Category)
	}
	return nil
}

// ActiveAt reports whether the template applies on the given instant.
func (rs RecurringSpend) ActiveAt(now time.Time) bool {
	if now.Before(rs.StartDate) {
		return false
	}
	return rs.EndDate == nil || !now.After(*rs.EndDate)
}

// Materialize builds the spend created for a run at now.
func (rs RecurringSpend) Materialize(now time.Time) Spend {
	return Spend{
		AccountID:   rs.AccountID,
		Amount:      rs.Amount,
		Category:    rs.Category,
		Tags:        append([]string(nil), rs.Tags...),
		Date:        now,
		Description: rs.Description,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}
