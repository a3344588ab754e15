package coin

import (
	"encoding/json"
	"regexp"

	"github.com/iov-one/tokendist/errors"
	"github.com/shopspring/decimal"
)

// BasisPointsTotal is the number of basis points making up a whole (100%).
const BasisPointsTotal = 10000

var bpsTotal = decimal.New(BasisPointsTotal, 0)

// Amount is a non-negative, arbitrary precision count of the minimal units
// of an asset. The zero value is a valid zero amount.
type Amount struct {
	d decimal.Decimal
}

// NewAmount returns an amount of given minimal units. Negative values are
// clamped to zero.
func NewAmount(units int64) Amount {
	if units < 0 {
		return Amount{}
	}
	return Amount{d: decimal.New(units, 0)}
}

// MaxDigits bounds the decimal length of an amount. It covers the whole
// uint256 range.
const MaxDigits = 78

var amountFormat = regexp.MustCompile(`^[0-9]+$`)

// ParseAmount reads the plain decimal representation of an amount. Signs,
// fractions and exponents are rejected, as is anything longer than
// MaxDigits.
func ParseAmount(s string) (Amount, error) {
	if len(s) > MaxDigits {
		return Amount{}, errors.Wrapf(errors.ErrOverflow, "amount longer than %d digits", MaxDigits)
	}
	if !amountFormat.MatchString(s) {
		return Amount{}, errors.Wrapf(errors.ErrAmount, "cannot parse %q", s)
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return Amount{}, errors.Wrapf(errors.ErrAmount, "cannot parse %q", s)
	}
	return Amount{d: d}, nil
}

// Validate fails with ErrOverflow if the amount does not fit MaxDigits, for
// example after an addition.
func (a Amount) Validate() error {
	if len(a.d.String()) > MaxDigits {
		return errors.Wrapf(errors.ErrOverflow, "amount longer than %d digits", MaxDigits)
	}
	return nil
}

// MustParseAmount is like ParseAmount but panics on error. Use it only for
// constant values.
func MustParseAmount(s string) Amount {
	a, err := ParseAmount(s)
	if err != nil {
		panic(err)
	}
	return a
}

// IsZero returns true if the amount is zero.
func (a Amount) IsZero() bool {
	return a.d.Sign() == 0
}

// IsPositive returns true if the amount is greater than zero.
func (a Amount) IsPositive() bool {
	return a.d.Sign() > 0
}

// Cmp compares two amounts and returns -1, 0 or 1.
func (a Amount) Cmp(o Amount) int {
	return a.d.Cmp(o.d)
}

// Equals returns true if both amounts hold the same number of units.
func (a Amount) Equals(o Amount) bool {
	return a.d.Equal(o.d)
}

// IsGTE returns true if a >= o.
func (a Amount) IsGTE(o Amount) bool {
	return a.d.Cmp(o.d) >= 0
}

// Add returns the sum of both amounts.
func (a Amount) Add(o Amount) Amount {
	return Amount{d: a.d.Add(o.d)}
}

// Sub returns a - o. It fails if the result would be negative.
func (a Amount) Sub(o Amount) (Amount, error) {
	res := a.d.Sub(o.d)
	if res.Sign() < 0 {
		return Amount{}, errors.Wrapf(errors.ErrAmount, "cannot subtract %s from %s", o, a)
	}
	return Amount{d: res}, nil
}

// MulBasisPoints returns floor(a * bps / 10000). The exact quotient has at
// most four decimal places, so the division loses nothing before the floor.
func (a Amount) MulBasisPoints(bps uint32) Amount {
	part := a.d.Mul(decimal.New(int64(bps), 0)).Div(bpsTotal).Floor()
	return Amount{d: part}
}

// String returns the decimal integer representation.
func (a Amount) String() string {
	return a.d.String()
}

// Set implements flag.Value.
func (a *Amount) Set(raw string) error {
	parsed, err := ParseAmount(raw)
	if err != nil {
		return err
	}
	*a = parsed
	return nil
}

// MarshalJSON encodes the amount as a decimal string to avoid precision loss.
func (a Amount) MarshalJSON() ([]byte, error) {
	return json.Marshal(a.String())
}

// UnmarshalJSON accepts both a decimal string and a JSON number.
func (a *Amount) UnmarshalJSON(raw []byte) error {
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		var n json.Number
		if err := json.Unmarshal(raw, &n); err != nil {
			return errors.Wrap(errors.ErrAmount, "amount must be a string or a number")
		}
		s = n.String()
	}
	parsed, err := ParseAmount(s)
	if err != nil {
		return err
	}
	*a = parsed
	return nil
}

// MarshalAmino encodes the amount as its decimal string in binary messages.
func (a Amount) MarshalAmino() (string, error) {
	return a.String(), nil
}

// UnmarshalAmino is the inverse of MarshalAmino. An empty string is zero.
func (a *Amount) UnmarshalAmino(s string) error {
	if s == "" {
		*a = Amount{}
		return nil
	}
	parsed, err := ParseAmount(s)
	if err != nil {
		return err
	}
	*a = parsed
	return nil
}
