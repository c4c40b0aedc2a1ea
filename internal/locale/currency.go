// Package locale derives regional defaults, such as the currency a new
// account starts with, from the runtime timezone.
package locale

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"spendwise/internal/core"
)

// FallbackCurrency is used when no rule matches or the timezone is unknown.
const FallbackCurrency = core.USD

// euroZones lists the IANA zones of the euro area that default to EUR.
var euroZones = map[string]struct{}{
	"Europe/Amsterdam":  {},
	"Europe/Andorra":    {},
	"Europe/Athens":     {},
	"Europe/Berlin":     {},
	"Europe/Bratislava": {},
	"Europe/Brussels":   {},
	"Europe/Dublin":     {},
	"Europe/Helsinki":   {},
	"Europe/Lisbon":     {},
	"Europe/Ljubljana":  {},
	"Europe/Luxembourg": {},
	"Europe/Madrid":     {},
	"Europe/Malta":      {},
	"Europe/Monaco":     {},
	"Europe/Nicosia":    {},
	"Europe/Paris":      {},
	"Europe/Riga":       {},
	"Europe/Rome":       {},
	"Europe/San_Marino": {},
	"Europe/Tallinn":    {},
	"Europe/Podgorica":  {},
	"Europe/Vatican":    {},
	"Europe/Vienna":     {},
	"Europe/Vilnius":    {},
	"Europe/Zagreb":     {},
	"Atlantic/Madeira":  {},
	"Atlantic/Azores":   {},
}

var ErrNoTimezone = errors.New("timezone not available")

// TimezoneSource yields the IANA name of the runtime timezone.
type TimezoneSource interface {
	Timezone() (string, error)
}

// TimezoneFunc adapts a function to TimezoneSource.
type TimezoneFunc func() (string, error)

func (f TimezoneFunc) Timezone() (string, error) { return f() }

// SystemTimezone reads TZ first, then the name of time.Local.
type SystemTimezone struct{}

func (SystemTimezone) Timezone() (string, error) {
	if tz := strings.TrimSpace(os.Getenv("TZ")); tz != "" {
		if _, err := time.LoadLocation(tz); err != nil {
			return "", fmt.Errorf("load location %q: %w", tz, err)
		}
		return tz, nil
	}
	name := time.Local.String()
	if name == "" || name == "Local" {
		return "", ErrNoTimezone
	}
	return name, nil
}

// DetectCurrencyFromTimezone maps a timezone name to a default currency.
// Rules are checked in order and the first match wins.
func DetectCurrencyFromTimezone(timezone string) core.Currency {
	switch {
	case timezone == "Asia/Manila":
		return core.PHP
	case strings.HasPrefix(timezone, "Australia/"):
		return core.AUD
	case timezone == "Europe/London":
		return core.GBP
	}
	if _, ok := euroZones[timezone]; ok {
		return core.EUR
	}
	return FallbackCurrency
}

// DetectCurrency asks src for the timezone and maps it to a currency. Any
// failure of the lookup, including a panic, yields FallbackCurrency.
func DetectCurrency(src TimezoneSource) (c core.Currency) {
	defer func() {
		if r := recover(); r != nil {
			c = FallbackCurrency
		}
	}()
	if src == nil {
		return FallbackCurrency
	}
	tz, err := src.Timezone()
	if err != nil {
		return FallbackCurrency
	}
	return DetectCurrencyFromTimezone(tz)
}
