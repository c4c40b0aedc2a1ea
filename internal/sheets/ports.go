// Package sheets defines the spreadsheet export port and the row format
// shared by its adapters.
package sheets

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"spendwise/internal/core"
)

type (
	// SpendRow is one exported spend line, already resolved against the
	// owning account's currency and date format.
	SpendRow struct {
		SpendID     string
		AccountID   string
		Date        time.Time
		DateFormat  core.DateFormat
		Category    core.Category
		Tags        []string
		Amount      decimal.Decimal
		Currency    core.Currency
		Description string
	}

	SpendWriter interface {
		Append(ctx context.Context, row SpendRow) (rowRef string, err error)
	}
)

// Header is the column order written by Values.
var Header = []string{"Date", "Category", "Tags", "Amount", "Currency", "Description", "Spend ID"}

func NewSpendRow(s core.Spend, a core.Account) SpendRow {
	return SpendRow{
		SpendID:     s.ID,
		AccountID:   s.AccountID,
		Date:        s.Date,
		DateFormat:  a.DateFormat,
		Category:    s.Category,
		Tags:        append([]string(nil), s.Tags...),
		Amount:      s.Amount,
		Currency:    a.Currency,
		Description: s.Description,
	}
}

func (r SpendRow) Validate() error {
	switch {
	case r.SpendID == "":
		return errors.New("row without spend id")
	case r.Date.IsZero():
		return errors.New("row without date")
	case !r.Category.IsValid():
		return core.ErrInvalidCategory
	case r.Amount.IsNegative():
		return core.ErrInvalidAmount
	}
	return nil
}

// Values renders the row cells in Header order.
func (r SpendRow) Values() []any {
	return []any{
		r.Date.Format(r.DateFormat.Info().Layout),
		string(r.Category),
		strings.Join(r.Tags, ", "),
		r.Amount.StringFixed(2),
		string(r.Currency),
		r.Description,
		r.SpendID,
	}
}
