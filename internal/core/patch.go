package core

import (
	"time"

	"github.com/shopspring/decimal"
)

// Field is one slot of a patch: either set to Value or left unchanged.
// A zero Field is unchanged.
type Field[T any] struct {
	set   bool
	value T
}

func Set[T any](v T) Field[T] {
	return Field[T]{set: true, value: v}
}

func Unchanged[T any]() Field[T] {
	return Field[T]{}
}

func (f Field[T]) IsSet() bool { return f.set }

func (f Field[T]) Value() (T, bool) { return f.value, f.set }

// Apply writes the value into dst when the field is set.
func (f Field[T]) Apply(dst *T) {
	if f.set {
		*dst = f.value
	}
}

// AccountPatch describes a profile or subscription update.
// ExpiresAt and SubscriptionCancelled carry pointers so a patch can clear them.
type AccountPatch struct {
	Name                  Field[string]
	Currency              Field[Currency]
	DateFormat            Field[DateFormat]
	Onboarded             Field[bool]
	SubscriptionTier      Field[SubscriptionTier]
	ExpiresAt             Field[*time.Time]
	SubscriptionCancelled Field[*bool]
}

func (p AccountPatch) IsEmpty() bool {
	return !p.Name.IsSet() && !p.Currency.IsSet() && !p.DateFormat.IsSet() &&
		!p.Onboarded.IsSet() && !p.SubscriptionTier.IsSet() &&
		!p.ExpiresAt.IsSet() && !p.SubscriptionCancelled.IsSet()
}

// Apply returns a copy of a with the patch applied and UpdatedAt set to now.
// Turning Onboarded on stamps OnboardedAt the first time.
func (p AccountPatch) Apply(a Account, now time.Time) Account {
	p.Name.Apply(&a.Name)
	p.Currency.Apply(&a.Currency)
	p.DateFormat.Apply(&a.DateFormat)
	p.SubscriptionTier.Apply(&a.SubscriptionTier)
	p.ExpiresAt.Apply(&a.ExpiresAt)
	p.SubscriptionCancelled.Apply(&a.SubscriptionCancelled)
	if v, ok := p.Onboarded.Value(); ok {
		a.Onboarded = v
		if v && a.OnboardedAt == nil {
			t := now
			a.OnboardedAt = &t
		}
	}
	a.UpdatedAt = now
	return a
}

type SpendPatch struct {
	PeriodID           Field[string]
	Amount             Field[decimal.Decimal]
	Category           Field[Category]
	Tags               Field[[]string]
	Date               Field[time.Time]
	Description        Field[string]
	EmotionalState     Field[string]
	SatisfactionRating Field[*int]
	NecessityRating    Field[*int]
}

func (p SpendPatch) IsEmpty() bool {
	return !p.PeriodID.IsSet() && !p.Amount.IsSet() && !p.Category.IsSet() &&
		!p.Tags.IsSet() && !p.Date.IsSet() && !p.Description.IsSet() &&
		!p.EmotionalState.IsSet() && !p.SatisfactionRating.IsSet() &&
		!p.NecessityRating.IsSet()
}

func (p SpendPatch) Apply(s Spend, now time.Time) Spend {
	p.PeriodID.Apply(&s.PeriodID)
	p.Amount.Apply(&s.Amount)
	p.Category.Apply(&s.Category)
	if tags, ok := p.Tags.Value(); ok {
		s.Tags = NormalizeTags(tags)
	}
	p.Date.Apply(&s.Date)
	p.Description.Apply(&s.Description)
	p.EmotionalState.Apply(&s.EmotionalState)
	p.SatisfactionRating.Apply(&s.SatisfactionRating)
	p.NecessityRating.Apply(&s.NecessityRating)
	s.UpdatedAt = now
	return s
}
