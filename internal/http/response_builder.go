// Package http exposes the spending engine as a JSON API.
//
// This file implements a small builder for JSON responses and the DTOs
// the handlers render. Amounts are rendered as strings with two decimals.
package http

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/shopspring/decimal"

	"spendwise/internal/core"
	"spendwise/internal/insights"
	"spendwise/internal/log"
	"spendwise/internal/period"
	"spendwise/internal/services"
	"spendwise/internal/storage"
	"spendwise/internal/subscription"
)

// JSONResponseBuilder provides a fluent API for writing JSON responses.
type JSONResponseBuilder struct {
	statusCode int
	body       any
	headers    map[string]string
}

func NewJSONResponse() *JSONResponseBuilder {
	return &JSONResponseBuilder{
		statusCode: http.StatusOK,
		headers:    make(map[string]string),
	}
}

func (b *JSONResponseBuilder) Status(code int) *JSONResponseBuilder {
	b.statusCode = code
	return b
}

func (b *JSONResponseBuilder) Header(name, value string) *JSONResponseBuilder {
	b.headers[name] = value
	return b
}

// Body sets the value to encode. A nil body writes headers only.
func (b *JSONResponseBuilder) Body(v any) *JSONResponseBuilder {
	b.body = v
	return b
}

func (b *JSONResponseBuilder) Write(w http.ResponseWriter) {
	for name, value := range b.headers {
		w.Header().Set(name, value)
	}
	if b.body == nil {
		w.WriteHeader(b.statusCode)
		return
	}
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(b.statusCode)
	if err := json.NewEncoder(w).Encode(b.body); err != nil {
		slog.Error("Failed to encode response", "error", err)
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	NewJSONResponse().Status(status).Body(v).Write(w)
}

type errorBody struct {
	Error string `json:"error"`
}

// ErrorResponse creates a JSON error response.
func ErrorResponse(statusCode int, message string) *JSONResponseBuilder {
	return NewJSONResponse().Status(statusCode).Body(errorBody{Error: message})
}

// statusFor maps service and storage errors onto HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, errBadRequest):
		return http.StatusBadRequest
	case errors.Is(err, services.ErrInvalidInput):
		return http.StatusUnprocessableEntity
	case errors.Is(err, storage.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, services.ErrPeriodOpen):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// writeError renders err. Internal failures are logged and hidden from the client.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	msg := err.Error()
	switch status {
	case http.StatusInternalServerError:
		log.FromContext(r.Context()).ErrorContext(r.Context(), "Request failed",
			log.FieldError, err,
			log.FieldPath, r.URL.Path)
		msg = "internal error"
	case http.StatusNotFound:
		msg = "not found"
	}
	ErrorResponse(status, msg).Write(w)
}

type accountResponse struct {
	ID               string               `json:"id"`
	Name             string               `json:"name"`
	Currency         string               `json:"currency"`
	CurrencySymbol   string               `json:"currencySymbol"`
	DateFormat       string               `json:"dateFormat"`
	Onboarded        bool                 `json:"onboarded"`
	OnboardedAt      *string              `json:"onboardedAt"`
	SubscriptionTier string               `json:"subscriptionTier"`
	Subscription     subscriptionResponse `json:"subscription"`
	CreatedAt        string               `json:"createdAt"`
	UpdatedAt        string               `json:"updatedAt"`
}

type subscriptionResponse struct {
	Tier            string  `json:"tier"`
	Status          string  `json:"status"`
	IsPremium       bool    `json:"isPremium"`
	IsEssentials    bool    `json:"isEssentials"`
	IsExpired       bool    `json:"isExpired"`
	ExpiresAt       *string `json:"expiresAt"`
	DaysUntilExpiry *int    `json:"daysUntilExpiry"`
	IsExpiringSoon  bool    `json:"isExpiringSoon"`
	IsCancelled     bool    `json:"isCancelled"`
}

// newAccountResponse reports the stored tier next to the effective view at now.
func newAccountResponse(a core.Account, now time.Time) accountResponse {
	return accountResponse{
		ID:               a.ID,
		Name:             a.Name,
		Currency:         string(a.Currency),
		CurrencySymbol:   a.Currency.Info().Symbol,
		DateFormat:       string(a.DateFormat),
		Onboarded:        a.Onboarded,
		OnboardedAt:      formatTimePtr(a.OnboardedAt),
		SubscriptionTier: string(a.SubscriptionTier),
		Subscription:     newSubscriptionResponse(subscription.Resolve(&a, now)),
		CreatedAt:        formatTime(a.CreatedAt),
		UpdatedAt:        formatTime(a.UpdatedAt),
	}
}

func newSubscriptionResponse(v subscription.View) subscriptionResponse {
	return subscriptionResponse{
		Tier:            string(v.Tier),
		Status:          string(v.Status()),
		IsPremium:       v.IsPremium,
		IsEssentials:    v.IsEssentials,
		IsExpired:       v.IsExpired,
		ExpiresAt:       formatTimePtr(v.ExpiresAt),
		DaysUntilExpiry: v.DaysUntilExpiry,
		IsExpiringSoon:  v.IsExpiringSoon,
		IsCancelled:     v.IsCancelled,
	}
}

type periodResponse struct {
	ID          string `json:"id"`
	AccountID   string `json:"accountId"`
	StartAt     string `json:"startAt"`
	EndAt       string `json:"endAt"`
	TargetSpend string `json:"targetSpend"`
	Closed      bool   `json:"closed"`
}

func newPeriodResponse(p core.Period, now time.Time) periodResponse {
	return periodResponse{
		ID:          p.ID,
		AccountID:   p.AccountID,
		StartAt:     formatTime(p.StartAt),
		EndAt:       formatTime(p.EndAt),
		TargetSpend: formatAmount(p.TargetSpend),
		Closed:      period.IsClosed(p, now),
	}
}

type periodListResponse struct {
	Current []periodResponse `json:"current"`
	Past    []periodResponse `json:"past"`
}

func newPeriodListResponse(part period.Partition, now time.Time) periodListResponse {
	out := periodListResponse{
		Current: make([]periodResponse, 0, len(part.Current)),
		Past:    make([]periodResponse, 0, len(part.Past)),
	}
	for _, p := range part.Current {
		out.Current = append(out.Current, newPeriodResponse(p, now))
	}
	for _, p := range part.Past {
		out.Past = append(out.Past, newPeriodResponse(p, now))
	}
	return out
}

type spendResponse struct {
	ID                 string   `json:"id"`
	AccountID          string   `json:"accountId"`
	PeriodID           string   `json:"periodId,omitempty"`
	Amount             string   `json:"amount"`
	Category           string   `json:"category"`
	Tags               []string `json:"tags"`
	Date               string   `json:"date"`
	Description        string   `json:"description,omitempty"`
	EmotionalState     string   `json:"emotionalState,omitempty"`
	SatisfactionRating *int     `json:"satisfactionRating,omitempty"`
	NecessityRating    *int     `json:"necessityRating,omitempty"`
	CreatedAt          string   `json:"createdAt"`
	UpdatedAt          string   `json:"updatedAt"`
}

func newSpendResponse(s core.Spend) spendResponse {
	tags := s.Tags
	if tags == nil {
		tags = []string{}
	}
	return spendResponse{
		ID:                 s.ID,
		AccountID:          s.AccountID,
		PeriodID:           s.PeriodID,
		Amount:             formatAmount(s.Amount),
		Category:           string(s.Category),
		Tags:               tags,
		Date:               formatTime(s.Date),
		Description:        s.Description,
		EmotionalState:     s.EmotionalState,
		SatisfactionRating: s.SatisfactionRating,
		NecessityRating:    s.NecessityRating,
		CreatedAt:          formatTime(s.CreatedAt),
		UpdatedAt:          formatTime(s.UpdatedAt),
	}
}

type trendResponse struct {
	IsNew      bool   `json:"isNew"`
	Difference string `json:"difference"`
	Increase   bool   `json:"increase"`
}

func newTrendResponse(t insights.Trend) trendResponse {
	return trendResponse{IsNew: t.IsNew, Difference: formatAmount(t.Difference), Increase: t.Increase}
}

type rowResponse struct {
	Name       string        `json:"name"`
	Current    string        `json:"current"`
	Previous   string        `json:"previous"`
	Percentage float64       `json:"percentage"`
	Band       string        `json:"band"`
	Trend      trendResponse `json:"trend"`
}

type summaryResponse struct {
	CurrentTotal  string        `json:"currentTotal"`
	PreviousTotal string        `json:"previousTotal"`
	TaggedTotal   string        `json:"taggedTotal"`
	TaggedRaw     string        `json:"taggedRawTotal"`
	UntaggedTotal string        `json:"untaggedTotal"`
	Trend         trendResponse `json:"trend"`
}

type reportResponse struct {
	Period     periodResponse  `json:"period"`
	Previous   *periodResponse `json:"previous"`
	Currency   string          `json:"currency"`
	Tags       []rowResponse   `json:"tags"`
	Categories []rowResponse   `json:"categories"`
	Summary    summaryResponse `json:"summary"`
	Remaining  string          `json:"remaining"`
	OverBudget bool            `json:"overBudget"`
}

func newReportResponse(rep services.Report, now time.Time) reportResponse {
	out := reportResponse{
		Period:     newPeriodResponse(rep.Period, now),
		Currency:   string(rep.Currency),
		Tags:       make([]rowResponse, 0, len(rep.Tags)),
		Categories: make([]rowResponse, 0, len(rep.Categories)),
		Summary: summaryResponse{
			CurrentTotal:  formatAmount(rep.Summary.CurrentTotal),
			PreviousTotal: formatAmount(rep.Summary.PreviousTotal),
			TaggedTotal:   formatAmount(rep.Summary.TaggedCurrent),
			TaggedRaw:     formatAmount(rep.Summary.TaggedRaw),
			UntaggedTotal: formatAmount(rep.Summary.UntaggedTotal),
			Trend:         newTrendResponse(rep.Summary.Trend),
		},
		Remaining:  formatAmount(rep.Remaining),
		OverBudget: rep.Remaining.IsNegative(),
	}
	if rep.Previous != nil {
		prev := newPeriodResponse(*rep.Previous, now)
		out.Previous = &prev
	}
	for _, t := range rep.Tags {
		out.Tags = append(out.Tags, newRowResponse(t.TagName, t.CurrentAmount, t.PreviousAmount, t.PercentageOfTotal))
	}
	for _, c := range rep.Categories {
		out.Categories = append(out.Categories, newRowResponse(string(c.Category), c.CurrentAmount, c.PreviousAmount, c.PercentageOfTotal))
	}
	return out
}

func newRowResponse(name string, current, previous decimal.Decimal, pct float64) rowResponse {
	return rowResponse{
		Name:       name,
		Current:    formatAmount(current),
		Previous:   formatAmount(previous),
		Percentage: pct,
		Band:       string(insights.BandFor(pct)),
		Trend:      newTrendResponse(insights.Compare(current, previous)),
	}
}

type recurringResponse struct {
	ID          string   `json:"id"`
	AccountID   string   `json:"accountId"`
	StartDate   string   `json:"startDate"`
	EndDate     *string  `json:"endDate"`
	Every       string   `json:"every"`
	Amount      string   `json:"amount"`
	Category    string   `json:"category"`
	Tags        []string `json:"tags"`
	Description string   `json:"description"`
	LastRunAt   *string  `json:"lastRunAt"`
}

func newRecurringResponse(rs core.RecurringSpend) recurringResponse {
	tags := rs.Tags
	if tags == nil {
		tags = []string{}
	}
	return recurringResponse{
		ID:          rs.ID,
		AccountID:   rs.AccountID,
		StartDate:   formatTime(rs.StartDate),
		EndDate:     formatTimePtr(rs.EndDate),
		Every:       string(rs.Every),
		Amount:      formatAmount(rs.Amount),
		Category:    string(rs.Category),
		Tags:        tags,
		Description: rs.Description,
		LastRunAt:   formatTimePtr(rs.LastRunAt),
	}
}
