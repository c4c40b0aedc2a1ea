package core

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

const (
	Essentials SubscriptionTier = "essentials"
	Premium    SubscriptionTier = "premium"
)

const (
	Need        Category = "need"
	Want        Category = "want"
	Rituals     Category = "rituals"
	Culture     Category = "culture"
	Connections Category = "connections"
	Unexpected  Category = "unexpected"
)

type (
	SubscriptionTier string

	// Category is the fixed spend classification. Unlike tags it is a closed set.
	Category string

	Account struct {
		ID                    string // empty until persisted
		Name                  string
		Currency              Currency
		DateFormat            DateFormat
		Onboarded             bool
		OnboardedAt           *time.Time
		SubscriptionTier      SubscriptionTier // stored tier, see subscription.Resolve for the effective one
		ExpiresAt             *time.Time
		SubscriptionCancelled *bool
		CreatedAt             time.Time
		UpdatedAt             time.Time
	}

	// Period is a budgeting interval. Whether it is closed is always derived
	// from the clock and never stored.
	Period struct {
		ID          string
		AccountID   string
		StartAt     time.Time
		EndAt       time.Time
		TargetSpend decimal.Decimal
	}

	Spend struct {
		ID                 string
		AccountID          string
		PeriodID           string // optional
		Amount             decimal.Decimal
		Category           Category
		Tags               []string
		Date               time.Time // economic date, may be in the future
		Description        string
		EmotionalState     string
		SatisfactionRating *int
		NecessityRating    *int
		CreatedAt          time.Time
		UpdatedAt          time.Time
	}
)

var (
	ErrInvalidTier       = errors.New("invalid subscription tier")
	ErrInvalidCategory   = errors.New("invalid category")
	ErrInvalidAmount     = errors.New("invalid amount")
	ErrInvalidRating     = errors.New("rating must be between 1 and 5")
	ErrInvalidInterval   = errors.New("period start must not be after end")
	ErrEmptyName         = errors.New("empty account name")
	ErrTimestampsOrdered = errors.New("createdAt must not be after updatedAt")
)

var categories = []Category{Need, Want, Rituals, Culture, Connections, Unexpected}

// Categories returns the closed set of spend categories in display order.
func Categories() []Category {
	return append([]Category(nil), categories...)
}

func (c Category) IsValid() bool {
	for _, v := range categories {
		if v == c {
			return true
		}
	}
	return false
}

func ParseCategory(s string) (Category, error) {
	c := Category(strings.ToLower(strings.TrimSpace(s)))
	if !c.IsValid() {
		return "", fmt.Errorf("%w: %q", ErrInvalidCategory, s)
	}
	return c, nil
}

func (t SubscriptionTier) IsValid() bool {
	return t == Essentials || t == Premium
}

func ParseSubscriptionTier(s string) (SubscriptionTier, error) {
	t := SubscriptionTier(strings.ToLower(strings.TrimSpace(s)))
	if !t.IsValid() {
		return "", fmt.Errorf("%w: %q", ErrInvalidTier, s)
	}
	return t, nil
}

// NewAccount returns an account seeded with signup defaults.
func NewAccount(name string, currency Currency, now time.Time) Account {
	return Account{
		Name:             strings.TrimSpace(name),
		Currency:         currency,
		DateFormat:       DefaultDateFormat,
		SubscriptionTier: Essentials,
		CreatedAt:        now,
		UpdatedAt:        now,
	}
}

func (a Account) Validate() error {
	if strings.TrimSpace(a.Name) == "" {
		return ErrEmptyName
	}
	if !a.SubscriptionTier.IsValid() {
		return fmt.Errorf("%w: %q", ErrInvalidTier, a.SubscriptionTier)
	}
	if !a.Currency.IsValid() {
		return fmt.Errorf("%w: %q", ErrUnknownCurrency, a.Currency)
	}
	if !a.DateFormat.IsValid() {
		return fmt.Errorf("%w: %q", ErrUnknownDateFormat, a.DateFormat)
	}
	if a.CreatedAt.After(a.UpdatedAt) {
		return ErrTimestampsOrdered
	}
	return nil
}

func (p Period) Validate() error {
	if p.StartAt.After(p.EndAt) {
		return ErrInvalidInterval
	}
	if p.TargetSpend.IsNegative() {
		return fmt.Errorf("%w: negative target spend", ErrInvalidAmount)
	}
	return nil
}

func (s Spend) Validate() error {
	if s.Amount.IsNegative() {
		return ErrInvalidAmount
	}
	if !s.Category.IsValid() {
		return fmt.Errorf("%w: %q", ErrInvalidCategory, s.Category)
	}
	if s.Date.IsZero() {
		return errors.New("spend date cannot be zero")
	}
	if len(s.Description) > 200 {
		return errors.New("description too long (max 200 characters)")
	}
	for _, r := range []*int{s.SatisfactionRating, s.NecessityRating} {
		if r != nil && (*r < 1 || *r > 5) {
			return ErrInvalidRating
		}
	}
	return nil
}

// NormalizeTags trims tags, drops empty ones and removes duplicates while
// keeping first-seen order.
func NormalizeTags(tags []string) []string {
	seen := make(map[string]struct{}, len(tags))
	out := make([]string, 0, len(tags))
	for _, t := range tags {
		t = strings.TrimSpace(t)
		if t == "" {
			continue
		}
		if _, ok := seen[t]; ok {
			continue
		}
		seen[t] = struct{}{}
		out = append(out, t)
	}
	return out
}
