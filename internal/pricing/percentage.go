package pricing

import (
	"errors"
	"fmt"
	"math"

	"github.com/shopspring/decimal"
)

// PercentageScale is the number of fractional digits kept by Percentage.
const PercentageScale = 4

// ErrInvalidPercentage is returned for values outside [0, 100].
var ErrInvalidPercentage = errors.New("invalid percentage")

var hundred = decimal.NewFromInt(100)

// Percentage is a ratio in [0, 100] rounded half-up to four decimal places.
type Percentage struct {
	value decimal.Decimal
}

// NewPercentage validates and rounds value.
func NewPercentage(value decimal.Decimal) (Percentage, error) {
	if value.IsNegative() || value.GreaterThan(hundred) {
		return Percentage{}, fmt.Errorf("%w: %s must be between 0 and 100", ErrInvalidPercentage, value.String())
	}
	return Percentage{value: value.Round(PercentageScale)}, nil
}

// PercentageFromFloat converts a float using its shortest decimal representation.
func PercentageFromFloat(value float64) (Percentage, error) {
	if math.IsNaN(value) || math.IsInf(value, 0) {
		return Percentage{}, fmt.Errorf("%w: %v", ErrInvalidPercentage, value)
	}
	return NewPercentage(decimal.NewFromFloat(value))
}

// PercentageFromInt builds a whole-number percentage.
func PercentageFromInt(value int64) (Percentage, error) {
	return NewPercentage(decimal.NewFromInt(value))
}

// ApplyTo returns the share of amount represented by the percentage.
// The ratio is rounded to four places before multiplying; the product is
// then rounded to Money's scale.
func (p Percentage) ApplyTo(amount Money) Money {
	ratio := p.value.DivRound(hundred, PercentageScale)
	return amount.Mul(ratio)
}

// IsZero reports whether the percentage is zero.
func (p Percentage) IsZero() bool {
	return p.value.IsZero()
}

// Equal compares the rounded values.
func (p Percentage) Equal(other Percentage) bool {
	return p.value.Equal(other.value)
}

// Decimal exposes the underlying value.
func (p Percentage) Decimal() decimal.Decimal {
	return p.value
}

func (p Percentage) String() string {
	return p.value.String() + "%"
}
