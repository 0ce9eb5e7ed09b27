// Package money holds monetary amounts as fixed-point minor units (cents).
//
// All payroll arithmetic is done on Money so totals never drift. decimal.Decimal
// is only used at the edges: resolving percentage items and rendering display
// values for the API.
package money

import (
	"errors"
	"fmt"
	"math"

	"github.com/shopspring/decimal"
)

// Money is an amount in minor units (1/100 of the currency unit).
type Money int64

const places = 2

var Zero Money

// ErrOutOfRange is returned when an amount or a result does not fit in int64 cents.
var ErrOutOfRange = errors.New("money amount out of range")

var (
	minCents = decimal.NewFromInt(math.MinInt64)
	maxCents = decimal.NewFromInt(math.MaxInt64)
)

// FromCents wraps an amount already expressed in minor units.
func FromCents(cents int64) Money {
	return Money(cents)
}

// FromDecimal rounds d half away from zero to two places.
func FromDecimal(d decimal.Decimal) (Money, error) {
	cents := d.Round(places).Shift(places)
	if cents.LessThan(minCents) || cents.GreaterThan(maxCents) {
		return 0, fmt.Errorf("amount %s: %w", d.String(), ErrOutOfRange)
	}
	return Money(cents.IntPart()), nil
}

// Parse reads a display value such as "5000.00".
func Parse(s string) (Money, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return 0, fmt.Errorf("invalid money amount %q: %w", s, err)
	}
	return FromDecimal(d)
}

// MustParse is Parse for constants and tests.
func MustParse(s string) Money {
	m, err := Parse(s)
	if err != nil {
		panic(err)
	}
	return m
}

func (m Money) Cents() int64 { return int64(m) }

func (m Money) Decimal() decimal.Decimal {
	return decimal.New(int64(m), -places)
}

func (m Money) String() string {
	return m.Decimal().StringFixed(places)
}

// Add returns m+o, or ErrOutOfRange when the sum overflows.
func (m Money) Add(o Money) (Money, error) {
	sum := m + o
	if (o > 0 && sum < m) || (o < 0 && sum > m) {
		return 0, fmt.Errorf("%s + %s: %w", m, o, ErrOutOfRange)
	}
	return sum, nil
}

// Sub returns m-o, or ErrOutOfRange when the difference overflows.
func (m Money) Sub(o Money) (Money, error) {
	diff := m - o
	if (o > 0 && diff > m) || (o < 0 && diff < m) {
		return 0, fmt.Errorf("%s - %s: %w", m, o, ErrOutOfRange)
	}
	return diff, nil
}

func (m Money) IsNegative() bool { return m < 0 }
func (m Money) IsZero() bool     { return m == 0 }

// MulRate returns m * rate rounded to cents. A rate of 0.10 is ten percent.
func (m Money) MulRate(rate decimal.Decimal) (Money, error) {
	return FromDecimal(m.Decimal().Mul(rate))
}

// Sum adds amounts in order and stops at the first overflow.
func Sum(amounts ...Money) (Money, error) {
	var total Money
	for _, a := range amounts {
		var err error
		if total, err = total.Add(a); err != nil {
			return 0, err
		}
	}
	return total, nil
}

// MarshalJSON renders the display value as a quoted decimal string, the same
// shape decimal.Decimal produces.
func (m Money) MarshalJSON() ([]byte, error) {
	return []byte(`"` + m.String() + `"`), nil
}

// UnmarshalJSON accepts both quoted and bare decimal numbers.
func (m *Money) UnmarshalJSON(data []byte) error {
	var d decimal.Decimal
	if err := d.UnmarshalJSON(data); err != nil {
		return fmt.Errorf("invalid money amount: %w", err)
	}
	parsed, err := FromDecimal(d)
	if err != nil {
		return err
	}
	*m = parsed
	return nil
}

// MarshalYAML and UnmarshalYAML keep config files in display units.
func (m Money) MarshalYAML() (interface{}, error) {
	return m.String(), nil
}

func (m *Money) UnmarshalYAML(unmarshal func(interface{}) error) error {
	var s string
	if err := unmarshal(&s); err != nil {
		return err
	}
	parsed, err := Parse(s)
	if err != nil {
		return err
	}
	*m = parsed
	return nil
}

// MarshalCSV and UnmarshalCSV are picked up by gocsv.
func (m Money) MarshalCSV() (string, error) {
	return m.String(), nil
}

func (m *Money) UnmarshalCSV(s string) error {
	parsed, err := Parse(s)
	if err != nil {
		return err
	}
	*m = parsed
	return nil
}
