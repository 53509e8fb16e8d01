package domain

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// Money is a decimal amount in an ISO 4217 currency. Amounts never pass
// through float64.
type Money struct {
	Amount   decimal.Decimal `json:"amount"`
	Currency string          `json:"currency"`
}

var currencySymbols = map[string]string{
	"GBP": "£",
	"USD": "$",
	"EUR": "€",
	"JPY": "¥",
}

var zeroDecimalCurrencies = map[string]bool{
	"JPY": true,
	"KRW": true,
}

// NewMoney parses a decimal string amount.
func NewMoney(amount, currency string) (Money, error) {
	code, err := normalizeCurrency(currency)
	if err != nil {
		return Money{}, err
	}
	d, err := decimal.NewFromString(strings.TrimSpace(amount))
	if err != nil {
		return Money{}, fmt.Errorf("%w: %q", ErrInvalidAmount, amount)
	}
	return Money{Amount: d, Currency: code}, nil
}

// MustMoney is NewMoney for literals known to be valid.
func MustMoney(amount, currency string) Money {
	m, err := NewMoney(amount, currency)
	if err != nil {
		panic(err)
	}
	return m
}

// Zero returns a zero amount in the given currency.
func Zero(currency string) Money {
	return Money{Amount: decimal.Zero, Currency: strings.ToUpper(currency)}
}

func normalizeCurrency(currency string) (string, error) {
	code := strings.ToUpper(strings.TrimSpace(currency))
	if len(code) != 3 {
		return "", fmt.Errorf("%w: currency %q", ErrInvalidAmount, currency)
	}
	for _, r := range code {
		if r < 'A' || r > 'Z' {
			return "", fmt.Errorf("%w: currency %q", ErrInvalidAmount, currency)
		}
	}
	return code, nil
}

func (m Money) Add(other Money) (Money, error) {
	if m.Currency != other.Currency {
		return Money{}, fmt.Errorf("%w: %s and %s", ErrCurrencyMismatch, m.Currency, other.Currency)
	}
	return Money{Amount: m.Amount.Add(other.Amount), Currency: m.Currency}, nil
}

func (m Money) Sub(other Money) (Money, error) {
	if m.Currency != other.Currency {
		return Money{}, fmt.Errorf("%w: %s and %s", ErrCurrencyMismatch, m.Currency, other.Currency)
	}
	return Money{Amount: m.Amount.Sub(other.Amount), Currency: m.Currency}, nil
}

func (m Money) Mul(quantity int64) Money {
	return Money{Amount: m.Amount.Mul(decimal.NewFromInt(quantity)), Currency: m.Currency}
}

func (m Money) Equal(other Money) bool {
	return m.Currency == other.Currency && m.Amount.Equal(other.Amount)
}

func (m Money) IsPositive() bool {
	return m.Amount.IsPositive()
}

func (m Money) IsZero() bool {
	return m.Amount.IsZero()
}

// FixedAmount renders the amount with the currency's minor units, e.g. "70.00".
func (m Money) FixedAmount() string {
	places := int32(2)
	if zeroDecimalCurrencies[m.Currency] {
		places = 0
	}
	return m.Amount.StringFixed(places)
}

// Display renders the amount for people, e.g. "£70.00" or "CHF 70.00".
func (m Money) Display() string {
	if sym, ok := currencySymbols[m.Currency]; ok {
		return sym + m.FixedAmount()
	}
	return m.Currency + " " + m.FixedAmount()
}

func (m Money) String() string {
	return m.FixedAmount() + " " + m.Currency
}
