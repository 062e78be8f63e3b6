package pricing

import (
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/shopspring/decimal"
)

// MoneyScale is the number of fractional digits kept by Money.
const MoneyScale = 2

// ErrInvalidAmount is returned when a monetary amount is malformed or negative.
var ErrInvalidAmount = errors.New("invalid amount")

// Money represents a non-negative monetary value rounded half-up to two decimal places.
// The zero value is a valid zero amount.
type Money struct {
	amount decimal.Decimal
}

// NewMoney validates and rounds the provided decimal amount.
func NewMoney(amount decimal.Decimal) (Money, error) {
	if amount.IsNegative() {
		return Money{}, fmt.Errorf("%w: %s is negative", ErrInvalidAmount, amount.String())
	}
	return Money{amount: amount.Round(MoneyScale)}, nil
}

// ParseMoney parses a decimal string such as "12.50".
func ParseMoney(value string) (Money, error) {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return Money{}, fmt.Errorf("%w: empty value", ErrInvalidAmount)
	}
	d, err := decimal.NewFromString(trimmed)
	if err != nil {
		return Money{}, fmt.Errorf("%w: %q", ErrInvalidAmount, value)
	}
	return NewMoney(d)
}

// MoneyFromFloat converts a float using its shortest decimal representation.
func MoneyFromFloat(value float64) (Money, error) {
	if math.IsNaN(value) || math.IsInf(value, 0) {
		return Money{}, fmt.Errorf("%w: %v", ErrInvalidAmount, value)
	}
	return NewMoney(decimal.NewFromFloat(value))
}

// MustMoney parses value and panics on error. Intended for constants and tests.
func MustMoney(value string) Money {
	m, err := ParseMoney(value)
	if err != nil {
		panic(err)
	}
	return m
}

// Zero returns the additive identity.
func Zero() Money {
	return Money{}
}

// Add returns m + other.
func (m Money) Add(other Money) Money {
	return Money{amount: m.amount.Add(other.amount).Round(MoneyScale)}
}

// Sub returns m - other, clamped at zero.
func (m Money) Sub(other Money) Money {
	diff := m.amount.Sub(other.amount)
	if diff.IsNegative() {
		return Money{}
	}
	return Money{amount: diff.Round(MoneyScale)}
}

// Mul scales the amount and rounds the result half-up to two places.
// Negative multipliers yield zero.
func (m Money) Mul(multiplier decimal.Decimal) Money {
	product := m.amount.Mul(multiplier)
	if product.IsNegative() {
		return Money{}
	}
	return Money{amount: product.Round(MoneyScale)}
}

// MulInt multiplies by a whole number, e.g. a line quantity.
func (m Money) MulInt(n int64) Money {
	return m.Mul(decimal.NewFromInt(n))
}

// GreaterThan reports whether m > other.
func (m Money) GreaterThan(other Money) bool {
	return m.amount.GreaterThan(other.amount)
}

// GreaterThanOrEqual reports whether m >= other.
func (m Money) GreaterThanOrEqual(other Money) bool {
	return m.amount.GreaterThanOrEqual(other.amount)
}

// IsZero reports whether the amount is zero.
func (m Money) IsZero() bool {
	return m.amount.IsZero()
}

// Equal compares the rounded amounts.
func (m Money) Equal(other Money) bool {
	return m.amount.Equal(other.amount)
}

// Decimal exposes the underlying amount.
func (m Money) Decimal() decimal.Decimal {
	return m.amount
}

// String renders the amount with a dollar sign, e.g. "$12.50".
func (m Money) String() string {
	return "$" + m.amount.StringFixed(MoneyScale)
}

// MarshalJSON encodes the amount as a JSON number with two decimals.
func (m Money) MarshalJSON() ([]byte, error) {
	return []byte(m.amount.StringFixed(MoneyScale)), nil
}

// UnmarshalJSON accepts quoted or bare decimals and enforces the Money invariants.
func (m *Money) UnmarshalJSON(data []byte) error {
	var d decimal.Decimal
	if err := d.UnmarshalJSON(data); err != nil {
		return fmt.Errorf("%w: %s", ErrInvalidAmount, string(data))
	}
	parsed, err := NewMoney(d)
	if err != nil {
		return err
	}
	*m = parsed
	return nil
}
