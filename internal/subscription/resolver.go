// Package subscription derives the effective subscription state of an
// account at a given instant.
//
// The stored tier is never rewritten on expiry. Readers must go through
// Resolve, which downgrades an expired premium account to essentials at read
// time.
package subscription

import (
	"math"
	"time"

	"spendwise/internal/core"
)

// ExpiringSoonDays is the renewal countdown at or below which a subscription
// is reported as expiring soon.
const ExpiringSoonDays = 7

const (
	StatusFree         Status = "free"
	StatusActive       Status = "active"
	StatusExpiringSoon Status = "expiring_soon"
	StatusCancelled    Status = "cancelled"
	StatusExpired      Status = "expired"
)

type (
	// Status is a single label summarising a View for API consumers.
	Status string

	View struct {
		Tier            core.SubscriptionTier // effective tier
		IsPremium       bool
		IsEssentials    bool
		IsExpired       bool
		ExpiresAt       *time.Time
		DaysUntilExpiry *int
		IsExpiringSoon  bool
		IsCancelled     bool
	}
)

// Default is the view for a missing account.
func Default() View {
	return View{Tier: core.Essentials, IsEssentials: true}
}

// Resolve computes the subscription view of account at now. A nil account
// yields Default().
func Resolve(account *core.Account, now time.Time) View {
	if account == nil {
		return Default()
	}

	v := View{
		ExpiresAt:   account.ExpiresAt,
		IsCancelled: account.SubscriptionCancelled != nil && *account.SubscriptionCancelled,
	}

	if account.ExpiresAt != nil {
		v.IsExpired = account.ExpiresAt.Before(now)
		if !v.IsExpired {
			days := daysUntil(*account.ExpiresAt, now)
			v.DaysUntilExpiry = &days
			v.IsExpiringSoon = days <= ExpiringSoonDays
		}
	}

	v.Tier = core.Essentials
	if account.SubscriptionTier == core.Premium && !v.IsExpired {
		v.Tier = core.Premium
	}
	v.IsPremium = v.Tier == core.Premium
	v.IsEssentials = !v.IsPremium
	return v
}

// daysUntil rounds the remaining time up to whole days.
func daysUntil(expiresAt, now time.Time) int {
	return int(math.Ceil(expiresAt.Sub(now).Hours() / 24))
}

// Status picks the most relevant label. Expiry wins over cancellation, and a
// cancelled premium plan still reads as cancelled until it lapses.
func (v View) Status() Status {
	switch {
	case v.IsExpired:
		return StatusExpired
	case !v.IsPremium:
		return StatusFree
	case v.IsCancelled:
		return StatusCancelled
	case v.IsExpiringSoon:
		return StatusExpiringSoon
	default:
		return StatusActive
	}
}
