package domain

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// Validation constants
const (
	// BaseScale is the number of decimal places base amounts are rounded to.
	BaseScale = 2

	MaxDocumentAmount = "1000000000000" // 1 trillion
	MaxScopeLength    = 128
	MaxNotesLength    = 2000
)

// Valid currency codes (ISO 4217)
var validCurrencies = map[string]bool{
	"USD": true, "EUR": true, "GBP": true, "JPY": true,
	"CNY": true, "AUD": true, "CAD": true, "CHF": true,
	"SEK": true, "NZD": true, "KRW": true, "SGD": true,
	"NOK": true, "MXN": true, "INR": true, "BRL": true,
	"ZAR": true, "RUB": true, "TRY": true, "HKD": true,
	"ARS": true, "CLP": true, "COP": true, "PEN": true,
	"UYU": true, "PYG": true, "DKK": true, "PLN": true,
}

// NormalizeCurrency upper-cases and validates an ISO 4217 code.
func NormalizeCurrency(currency string) (string, error) {
	currency = strings.ToUpper(strings.TrimSpace(currency))

	if !validCurrencies[currency] {
		return "", fmt.Errorf("%w: %q is not a valid ISO 4217 currency code", ErrValidation, currency)
	}

	return currency, nil
}

// ValidateAmount validates a money amount.
func ValidateAmount(amount decimal.Decimal) error {
	if amount.LessThanOrEqual(decimal.Zero) {
		return ErrInvalidAmount
	}

	maxAmount := decimal.RequireFromString(MaxDocumentAmount)
	if amount.GreaterThan(maxAmount) {
		return fmt.Errorf("%w: maximum amount is %s", ErrValidation, MaxDocumentAmount)
	}

	return nil
}

// ValidateFxRate validates an exchange rate supplied by a caller.
func ValidateFxRate(rate decimal.Decimal) error {
	if rate.LessThanOrEqual(decimal.Zero) {
		return ErrInvalidFxRate
	}
	return nil
}

// ToBase converts an original amount into the reporting currency.
func ToBase(amountOriginal, fxRate decimal.Decimal) decimal.Decimal {
	return amountOriginal.Mul(fxRate).Round(BaseScale)
}

// FromBase derives the original amount from a base amount.
func FromBase(amountBase, fxRate decimal.Decimal) decimal.Decimal {
	return amountBase.DivRound(fxRate, BaseScale)
}

// ValidateScope validates a numbering scope key.
func ValidateScope(scope string) error {
	scope = strings.TrimSpace(scope)
	if scope == "" {
		return ErrMissingScope
	}
	if len(scope) > MaxScopeLength {
		return fmt.Errorf("%w: scope exceeds %d characters", ErrValidation, MaxScopeLength)
	}
	return nil
}

// ValidatePagination validates and limits pagination parameters
func ValidatePagination(limit, offset int) (int, int) {
	const MaxPageSize = 500
	const DefaultPageSize = 50

	if limit <= 0 {
		limit = DefaultPageSize
	}

	if limit > MaxPageSize {
		limit = MaxPageSize
	}

	if offset < 0 {
		offset = 0
	}

	return limit, offset
}
