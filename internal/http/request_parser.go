// Package http exposes the spending engine as a JSON API.
//
// This file decodes request bodies into the inputs the services expect.
// Patch bodies distinguish an absent field (leave unchanged) from an
// explicit null (clear) through optional.
package http

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"spendwise/internal/core"
	"spendwise/internal/services"
)

const maxBodyBytes = 1 << 20

// errBadRequest marks bodies that are not well-formed JSON for the endpoint.
var errBadRequest = errors.New("malformed request body")

// decodeJSON reads a single JSON object into dst, rejecting unknown fields.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	body := http.MaxBytesReader(w, r.Body, maxBodyBytes)
	dec := json.NewDecoder(body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return fmt.Errorf("%w: empty body", errBadRequest)
		}
		return fmt.Errorf("%w: %v", errBadRequest, err)
	}
	if dec.More() {
		return fmt.Errorf("%w: trailing data", errBadRequest)
	}
	return nil
}

// optional records whether a field was present in the body at all.
// A present null leaves Value at its zero value with Set true.
type optional[T any] struct {
	Set   bool
	Value T
}

func (o *optional[T]) UnmarshalJSON(b []byte) error {
	o.Set = true
	if bytes.Equal(b, []byte("null")) {
		var zero T
		o.Value = zero
		return nil
	}
	return json.Unmarshal(b, &o.Value)
}

// amountField accepts money as a JSON string or number and keeps the raw
// text so that parsing goes through core.ParseAmount in one place.
type amountField string

func (a *amountField) UnmarshalJSON(b []byte) error {
	if bytes.Equal(b, []byte("null")) {
		*a = ""
		return nil
	}
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*a = amountField(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return err
	}
	*a = amountField(n.String())
	return nil
}

func (a amountField) parse() (decimal.Decimal, error) {
	d, err := core.ParseAmount(string(a))
	if err != nil {
		return decimal.Zero, fmt.Errorf("%w: %q", err, string(a))
	}
	return d, nil
}

// invalid tags a conversion error so it maps to 422 like service validation.
func invalid(err error) error {
	return fmt.Errorf("%w: %w", services.ErrInvalidInput, err)
}

type createAccountRequest struct {
	Name     string `json:"name"`
	Currency string `json:"currency"`
	Timezone string `json:"timezone"`
}

func (req createAccountRequest) toInput() services.CreateAccountInput {
	return services.CreateAccountInput{
		Name:     sanitizeInput(req.Name),
		Currency: sanitizeInput(req.Currency),
		Timezone: sanitizeInput(req.Timezone),
	}
}

type updateAccountRequest struct {
	Name                  optional[string]     `json:"name"`
	Currency              optional[string]     `json:"currency"`
	DateFormat            optional[string]     `json:"dateFormat"`
	Onboarded             optional[bool]       `json:"onboarded"`
	SubscriptionTier      optional[string]     `json:"subscriptionTier"`
	SubscriptionExpiresAt optional[*time.Time] `json:"subscriptionExpiresAt"`
	SubscriptionCancelled optional[*bool]      `json:"subscriptionCancelled"`
}

func (req updateAccountRequest) toPatch() (core.AccountPatch, error) {
	var p core.AccountPatch
	if req.Name.Set {
		p.Name = core.Set(sanitizeInput(req.Name.Value))
	}
	if req.Currency.Set {
		c, err := core.ParseCurrency(req.Currency.Value)
		if err != nil {
			return p, invalid(err)
		}
		p.Currency = core.Set(c)
	}
	if req.DateFormat.Set {
		f, err := core.ParseDateFormat(req.DateFormat.Value)
		if err != nil {
			return p, invalid(err)
		}
		p.DateFormat = core.Set(f)
	}
	if req.Onboarded.Set {
		p.Onboarded = core.Set(req.Onboarded.Value)
	}
	if req.SubscriptionTier.Set {
		tier, err := core.ParseSubscriptionTier(req.SubscriptionTier.Value)
		if err != nil {
			return p, invalid(err)
		}
		p.SubscriptionTier = core.Set(tier)
	}
	if req.SubscriptionExpiresAt.Set {
		p.ExpiresAt = core.Set(req.SubscriptionExpiresAt.Value)
	}
	if req.SubscriptionCancelled.Set {
		p.SubscriptionCancelled = core.Set(req.SubscriptionCancelled.Value)
	}
	return p, nil
}

type createPeriodRequest struct {
	StartAt     time.Time   `json:"startAt"`
	EndAt       time.Time   `json:"endAt"`
	TargetSpend amountField `json:"targetSpend"`
}

func (req createPeriodRequest) toInput() (services.CreatePeriodInput, error) {
	in := services.CreatePeriodInput{StartAt: req.StartAt, EndAt: req.EndAt}
	if req.TargetSpend != "" {
		d, err := req.TargetSpend.parse()
		if err != nil {
			return in, invalid(err)
		}
		in.TargetSpend = d
	}
	return in, nil
}

type createSpendRequest struct {
	PeriodID           string      `json:"periodId"`
	Amount             amountField `json:"amount"`
	Category           string      `json:"category"`
	Tags               []string    `json:"tags"`
	Date               *time.Time  `json:"date"`
	Description        string      `json:"description"`
	EmotionalState     string      `json:"emotionalState"`
	SatisfactionRating *int        `json:"satisfactionRating"`
	NecessityRating    *int        `json:"necessityRating"`
}

// toSpend builds the spend to create. A missing date means now.
func (req createSpendRequest) toSpend(now time.Time) (core.Spend, error) {
	amount, err := req.Amount.parse()
	if err != nil {
		return core.Spend{}, invalid(err)
	}
	category, err := core.ParseCategory(req.Category)
	if err != nil {
		return core.Spend{}, invalid(err)
	}
	date := now
	if req.Date != nil {
		date = *req.Date
	}
	return core.Spend{
		PeriodID:           strings.TrimSpace(req.PeriodID),
		Amount:             amount,
		Category:           category,
		Tags:               sanitizeTags(req.Tags),
		Date:               date,
		Description:        sanitizeInput(req.Description),
		EmotionalState:     sanitizeInput(req.EmotionalState),
		SatisfactionRating: req.SatisfactionRating,
		NecessityRating:    req.NecessityRating,
	}, nil
}

type updateSpendRequest struct {
	PeriodID           optional[string]      `json:"periodId"`
	Amount             optional[amountField] `json:"amount"`
	Category           optional[string]      `json:"category"`
	Tags               optional[[]string]    `json:"tags"`
	Date               optional[time.Time]   `json:"date"`
	Description        optional[string]      `json:"description"`
	EmotionalState     optional[string]      `json:"emotionalState"`
	SatisfactionRating optional[*int]        `json:"satisfactionRating"`
	NecessityRating    optional[*int]        `json:"necessityRating"`
}

func (req updateSpendRequest) toPatch() (core.SpendPatch, error) {
	var p core.SpendPatch
	if req.PeriodID.Set {
		p.PeriodID = core.Set(strings.TrimSpace(req.PeriodID.Value))
	}
	if req.Amount.Set {
		d, err := req.Amount.Value.parse()
		if err != nil {
			return p, invalid(err)
		}
		p.Amount = core.Set(d)
	}
	if req.Category.Set {
		c, err := core.ParseCategory(req.Category.Value)
		if err != nil {
			return p, invalid(err)
		}
		p.Category = core.Set(c)
	}
	if req.Tags.Set {
		p.Tags = core.Set(sanitizeTags(req.Tags.Value))
	}
	if req.Date.Set {
		p.Date = core.Set(req.Date.Value)
	}
	if req.Description.Set {
		p.Description = core.Set(sanitizeInput(req.Description.Value))
	}
	if req.EmotionalState.Set {
		p.EmotionalState = core.Set(sanitizeInput(req.EmotionalState.Value))
	}
	if req.SatisfactionRating.Set {
		p.SatisfactionRating = core.Set(req.SatisfactionRating.Value)
	}
	if req.NecessityRating.Set {
		p.NecessityRating = core.Set(req.NecessityRating.Value)
	}
	return p, nil
}

type createRecurringRequest struct {
	StartDate   time.Time   `json:"startDate"`
	EndDate     *time.Time  `json:"endDate"`
	Every       string      `json:"every"`
	Amount      amountField `json:"amount"`
	Category    string      `json:"category"`
	Tags        []string    `json:"tags"`
	Description string      `json:"description"`
}

func (req createRecurringRequest) toRecurring() (core.RecurringSpend, error) {
	amount, err := req.Amount.parse()
	if err != nil {
		return core.RecurringSpend{}, invalid(err)
	}
	category, err := core.ParseCategory(req.Category)
	if err != nil {
		return core.RecurringSpend{}, invalid(err)
	}
	return core.RecurringSpend{
		StartDate:   req.StartDate,
		EndDate:     req.EndDate,
		Every:       core.RepetitionType(strings.ToLower(strings.TrimSpace(req.Every))),
		Amount:      amount,
		Category:    category,
		Tags:        sanitizeTags(req.Tags),
		Description: sanitizeInput(req.Description),
	}, nil
}
