package core

import (
	"errors"
	"fmt"
	"strings"
)

const (
	USD Currency = "USD"
	EUR Currency = "EUR"
	GBP Currency = "GBP"
	AUD Currency = "AUD"
	PHP Currency = "PHP"
)

const (
	MonthDayYear DateFormat = "MM/DD/YYYY"
	DayMonthYear DateFormat = "DD/MM/YYYY"
	ISODate      DateFormat = "YYYY-MM-DD"

	DefaultDateFormat = MonthDayYear
)

type (
	// Currency is an ISO 4217 code from the supported set.
	Currency string

	CurrencyInfo struct {
		Code   Currency
		Symbol string
		Name   string
		Locale string
	}

	DateFormat string

	DateFormatInfo struct {
		Format DateFormat
		Layout string // time.Format layout
		Label  string
	}
)

var (
	ErrUnknownCurrency   = errors.New("unknown currency")
	ErrUnknownDateFormat = errors.New("unknown date format")
)

var currencyTable = map[Currency]CurrencyInfo{
	USD: {Code: USD, Symbol: "$", Name: "US Dollar", Locale: "en-US"},
	EUR: {Code: EUR, Symbol: "€", Name: "Euro", Locale: "de-DE"},
	GBP: {Code: GBP, Symbol: "£", Name: "British Pound", Locale: "en-GB"},
	AUD: {Code: AUD, Symbol: "A$", Name: "Australian Dollar", Locale: "en-AU"},
	PHP: {Code: PHP, Symbol: "₱", Name: "Philippine Peso", Locale: "en-PH"},
}

var dateFormatTable = map[DateFormat]DateFormatInfo{
	MonthDayYear: {Format: MonthDayYear, Layout: "01/02/2006", Label: "MM/DD/YYYY"},
	DayMonthYear: {Format: DayMonthYear, Layout: "02/01/2006", Label: "DD/MM/YYYY"},
	ISODate:      {Format: ISODate, Layout: "2006-01-02", Label: "YYYY-MM-DD"},
}

func (c Currency) IsValid() bool {
	_, ok := currencyTable[c]
	return ok
}

// Info returns the attributes for c. Unknown codes get the bare code as symbol.
func (c Currency) Info() CurrencyInfo {
	if info, ok := currencyTable[c]; ok {
		return info
	}
	return CurrencyInfo{Code: c, Symbol: string(c) + " ", Name: string(c)}
}

func ParseCurrency(s string) (Currency, error) {
	c := Currency(strings.ToUpper(strings.TrimSpace(s)))
	if !c.IsValid() {
		return "", fmt.Errorf("%w: %q", ErrUnknownCurrency, s)
	}
	return c, nil
}

// Currencies returns all supported currency codes in a stable order.
func Currencies() []Currency {
	return []Currency{USD, EUR, GBP, AUD, PHP}
}

func (f DateFormat) IsValid() bool {
	_, ok := dateFormatTable[f]
	return ok
}

func (f DateFormat) Info() DateFormatInfo {
	if info, ok := dateFormatTable[f]; ok {
		return info
	}
	return dateFormatTable[DefaultDateFormat]
}

func ParseDateFormat(s string) (DateFormat, error) {
	f := DateFormat(strings.ToUpper(strings.TrimSpace(s)))
	if !f.IsValid() {
		return "", fmt.Errorf("%w: %q", ErrUnknownDateFormat, s)
	}
	return f, nil
}
