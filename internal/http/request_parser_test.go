package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"spendwise/internal/core"
	"spendwise/internal/services"
)

func TestOptional_DistinguishesAbsentFromNull(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		wantSet bool
		wantNil bool
	}{
		{"absent", `{}`, false, true},
		{"null", `{"subscriptionExpiresAt": null}`, true, true},
		{"value", `{"subscriptionExpiresAt": "2024-05-01T00:00:00Z"}`, true, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var req updateAccountRequest
			if err := json.Unmarshal([]byte(tt.body), &req); err != nil {
				t.Fatalf("Unmarshal: %v", err)
			}
			if req.SubscriptionExpiresAt.Set != tt.wantSet {
				t.Errorf("Set = %v, want %v", req.SubscriptionExpiresAt.Set, tt.wantSet)
			}
			if (req.SubscriptionExpiresAt.Value == nil) != tt.wantNil {
				t.Errorf("Value = %v, wantNil %v", req.SubscriptionExpiresAt.Value, tt.wantNil)
			}
		})
	}
}

func TestAmountField(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		want    string
		wantErr bool
	}{
		{"string", `{"amount":"12.50"}`, "12.50", false},
		{"number", `{"amount":7}`, "7.00", false},
		{"comma decimal", `{"amount":"3,456"}`, "3.46", false},
		{"negative", `{"amount":"-2"}`, "", true},
		{"missing", `{}`, "", true},
		{"garbage", `{"amount":"ten"}`, "", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var req struct {
				Amount amountField `json:"amount"`
			}
			if err := json.Unmarshal([]byte(tt.body), &req); err != nil {
				t.Fatalf("Unmarshal: %v", err)
			}
			d, err := req.Amount.parse()
			if tt.wantErr {
				if !errors.Is(err, core.ErrInvalidAmount) {
					t.Errorf("parse() error = %v, want ErrInvalidAmount", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("parse() error = %v", err)
			}
			if got := d.StringFixed(2); got != tt.want {
				t.Errorf("parse() = %s, want %s", got, tt.want)
			}
		})
	}
}

func TestUpdateAccountRequest_ToPatch(t *testing.T) {
	var req updateAccountRequest
	body := `{"name":" Ada ","currency":"eur","subscriptionCancelled":null}`
	if err := json.Unmarshal([]byte(body), &req); err != nil {
		t.Fatal(err)
	}
	p, err := req.toPatch()
	if err != nil {
		t.Fatalf("toPatch: %v", err)
	}
	if name, _ := p.Name.Value(); name != "Ada" {
		t.Errorf("name = %q", name)
	}
	if c, _ := p.Currency.Value(); c != core.EUR {
		t.Errorf("currency = %q", c)
	}
	if v, ok := p.SubscriptionCancelled.Value(); !ok || v != nil {
		t.Errorf("cancelled = %v set=%v, want explicit nil", v, ok)
	}
	if p.DateFormat.IsSet() || p.SubscriptionTier.IsSet() || p.ExpiresAt.IsSet() {
		t.Error("absent fields must stay unchanged")
	}

	req = updateAccountRequest{}
	if err := json.Unmarshal([]byte(`{"dateFormat":"MM-DD"}`), &req); err != nil {
		t.Fatal(err)
	}
	if _, err := req.toPatch(); !errors.Is(err, services.ErrInvalidInput) {
		t.Errorf("expected ErrInvalidInput, got %v", err)
	}
}

func TestCreateSpendRequest_ToSpend(t *testing.T) {
	now := time.Date(2024, 3, 15, 12, 0, 0, 0, time.UTC)
	req := createSpendRequest{
		Amount:      "5",
		Category:    " Culture ",
		Tags:        []string{"books\x00", " "},
		Description: "  Novel\x07 ",
	}
	sp, err := req.toSpend(now)
	if err != nil {
		t.Fatalf("toSpend: %v", err)
	}
	if !sp.Date.Equal(now) {
		t.Errorf("date = %v, want now", sp.Date)
	}
	if sp.Category != core.Culture || sp.Description != "Novel" {
		t.Errorf("unexpected spend %+v", sp)
	}
	if len(sp.Tags) != 2 || sp.Tags[0] != "books" {
		t.Errorf("tags = %q", sp.Tags)
	}

	req.Category = "luxury"
	if _, err := req.toSpend(now); !errors.Is(err, services.ErrInvalidInput) {
		t.Errorf("expected ErrInvalidInput, got %v", err)
	}
}

func TestDecodeJSON(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		wantErr bool
	}{
		{"valid", `{"name":"Ada"}`, false},
		{"empty", ``, true},
		{"malformed", `{"name":`, true},
		{"unknown field", `{"nickname":"A"}`, true},
		{"trailing object", `{"name":"A"}{"name":"B"}`, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(tt.body))
			var dst createAccountRequest
			err := decodeJSON(httptest.NewRecorder(), r, &dst)
			if tt.wantErr {
				if !errors.Is(err, errBadRequest) {
					t.Errorf("error = %v, want errBadRequest", err)
				}
				return
			}
			if err != nil || dst.Name != "Ada" {
				t.Errorf("decodeJSON = %v, name %q", err, dst.Name)
			}
		})
	}
}

func TestSanitizeInput(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"  hello  ", "hello"},
		{"a\x00b", "ab"},
		{"line\nbreak", "line\nbreak"},
		{"tab\there", "tab\there"},
	}
	for _, tt := range tests {
		if got := sanitizeInput(tt.in); got != tt.want {
			t.Errorf("sanitizeInput(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
