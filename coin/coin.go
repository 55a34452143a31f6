package coin

import (
	"encoding/json"
	"regexp"
	"strings"

	"github.com/iov-one/paygate/codec"
	"github.com/iov-one/paygate/errors"
	"github.com/shopspring/decimal"
)

// IsCC is the RegExp to ensure valid currency codes
var IsCC = regexp.MustCompile(`^[A-Z]{3,4}$`).MatchString

const (
	// MaxInt is the largest whole value we accept
	MaxInt int64 = 999999999999999 // 10^15-1
	// MinInt is the lowest whole value we accept
	MinInt = -MaxInt

	// FracUnit is the smallest numbers we divide by
	FracUnit int64 = 1000000000 // fractional units = 10^9
	// MaxFrac is the highest possible fractional value
	MaxFrac = FracUnit - 1
	// MinFrac is the lowest possible fractional value
	MinFrac = -MaxFrac
)

var (
	fracUnit = decimal.New(FracUnit, 0)
	one      = decimal.New(1, 0)
)

// Coin is an amount of a single currency. The value is represented as a
// whole part and a fractional part counted in 10^-9 units. Both parts must
// carry the same sign.
type Coin struct {
	Whole      int64  `json:"whole"`
	Fractional int64  `json:"fractional"`
	Ticker     string `json:"ticker"`
}

// NewCoin creates a new coin object
func NewCoin(whole int64, fractional int64, ticker string) Coin {
	return Coin{
		Whole:      whole,
		Fractional: fractional,
		Ticker:     ticker,
	}
}

// NewCoinp returns a pointer to a new coin.
func NewCoinp(whole, fractional int64, ticker string) *Coin {
	c := NewCoin(whole, fractional, ticker)
	return &c
}

// Marshal serializes the coin using the binary codec.
func (c *Coin) Marshal() ([]byte, error) {
	return codec.Marshal(c)
}

// Unmarshal loads the coin from its binary representation.
func (c *Coin) Unmarshal(raw []byte) error {
	return codec.Unmarshal(raw, c)
}

// ID returns a coin ticker name.
func (c Coin) ID() string {
	return c.Ticker
}

// Atoms returns the value of the coin expressed in the smallest fractional
// units.
func (c Coin) Atoms() decimal.Decimal {
	return decimal.New(c.Whole, 0).Mul(fracUnit).Add(decimal.New(c.Fractional, 0))
}

// FromAtoms builds a coin from a value expressed in the smallest fractional
// units. Any part below a single unit is truncated.
func FromAtoms(atoms decimal.Decimal, ticker string) (Coin, error) {
	atoms = atoms.Truncate(0)
	whole := atoms.Div(fracUnit).Truncate(0)
	frac := atoms.Sub(whole.Mul(fracUnit))
	if whole.GreaterThan(decimal.New(MaxInt, 0)) || whole.LessThan(decimal.New(MinInt, 0)) {
		return Coin{}, errors.Wrapf(errors.ErrOverflow, "%s atoms", atoms)
	}
	return Coin{
		Ticker:     ticker,
		Whole:      whole.IntPart(),
		Fractional: frac.IntPart(),
	}, nil
}

// Fraction returns floor(c * num / den) computed exactly on the fractional
// units. The result is never greater than c. Only non negative coins and
// fractions in the [0, 1] range are accepted.
func (c Coin) Fraction(num, den int64) (Coin, error) {
	if den <= 0 {
		return Coin{}, errors.Wrap(errors.ErrInput, "denominator must be greater than zero")
	}
	if num < 0 || num > den {
		return Coin{}, errors.Wrapf(errors.ErrInput, "fraction %d/%d out of range", num, den)
	}
	if !c.IsNonNegative() {
		return Coin{}, errors.Wrap(errors.ErrAmount, "negative coin")
	}

	n := c.Atoms().Mul(decimal.New(num, 0))
	d := decimal.New(den, 0)
	q := n.Div(d).Floor()
	// Division is computed with a limited precision. Correct the quotient
	// so that q*d <= n < (q+1)*d always holds.
	for q.Mul(d).GreaterThan(n) {
		q = q.Sub(one)
	}
	for q.Add(one).Mul(d).LessThanOrEqual(n) {
		q = q.Add(one)
	}
	return FromAtoms(q, c.Ticker)
}

// Add combines two coins.
// Returns error if they are of different
// currencies, or if the combination would cause
// an overflow
func (c Coin) Add(o Coin) (Coin, error) {
	// If any of the coins represents no value and does not have a ticker
	// set then it has no influence on the addition result.
	if c.Ticker == "" && c.IsZero() {
		return o, nil
	}
	if o.Ticker == "" && o.IsZero() {
		return c, nil
	}

	if !c.SameType(o) {
		return Coin{}, errors.Wrapf(errors.ErrCurrency, "adding %s to %s", c.Ticker, o.Ticker)
	}

	c.Whole += o.Whole
	c.Fractional += o.Fractional
	return c.normalize()
}

// Negative returns the opposite coins value
//
//	c.Add(c.Negative()).IsZero() == true
func (c Coin) Negative() Coin {
	return Coin{
		Ticker:     c.Ticker,
		Whole:      -1 * c.Whole,
		Fractional: -1 * c.Fractional,
	}
}

// Subtract given amount.
func (c Coin) Subtract(amount Coin) (Coin, error) {
	return c.Add(amount.Negative())
}

// Compare will check values of two coins, without
// inspecting the currency code. It is up to the caller
// to determine if they want to check this.
// It also assumes they were already normalized.
//
// Returns 1 if c is larger, -1 if o is larger, 0 if equal
func (c Coin) Compare(o Coin) int {
	switch {
	case c.Whole > o.Whole:
		return 1
	case c.Whole < o.Whole:
		return -1
	case c.Fractional > o.Fractional:
		return 1
	case c.Fractional < o.Fractional:
		return -1
	}
	return 0
}

// Equals returns true if all fields are identical
func (c Coin) Equals(o Coin) bool {
	return c.Ticker == o.Ticker &&
		c.Whole == o.Whole &&
		c.Fractional == o.Fractional
}

// IsEmpty returns true on null or zero amount
func IsEmpty(c *Coin) bool {
	return c == nil || c.IsZero()
}

// IsZero returns true amounts are 0
func (c Coin) IsZero() bool {
	return c.Whole == 0 && c.Fractional == 0
}

// IsPositive returns true if the value is greater than 0
func (c Coin) IsPositive() bool {
	return c.Whole > 0 ||
		(c.Whole == 0 && c.Fractional > 0)
}

// IsNonNegative returns true if the value is 0 or higher
func (c Coin) IsNonNegative() bool {
	return c.Whole >= 0 && c.Fractional >= 0
}

// IsGTE returns true if c is same type and at least
// as large as o.
// It assumes they were already normalized.
func (c Coin) IsGTE(o Coin) bool {
	return c.SameType(o) && c.Compare(o) >= 0
}

// SameType returns true if they have the same currency
func (c Coin) SameType(o Coin) bool {
	return c.Ticker == o.Ticker
}

// Clone provides an independent copy of a coin pointer
func (c *Coin) Clone() *Coin {
	if c == nil {
		return nil
	}
	cpy := *c
	return &cpy
}

// Validate ensures that the coin is in the valid range
// and valid currency code. It accepts negative values,
// so you may want to make other checks in your business
// logic
func (c Coin) Validate() error {
	var err error
	if !IsCC(c.Ticker) {
		err = errors.Append(err, errors.Wrapf(errors.ErrCurrency, "invalid currency: %s", c.Ticker))
	}
	if c.Whole < MinInt || c.Whole > MaxInt {
		err = errors.Append(err, errors.ErrOverflow)
	}
	if c.Fractional < MinFrac || c.Fractional > MaxFrac {
		err = errors.Append(err, errors.Wrap(errors.ErrOverflow, "fractional"))
	}
	// make sure signs match
	if c.Whole != 0 && c.Fractional != 0 &&
		((c.Whole > 0) != (c.Fractional > 0)) {
		err = errors.Append(err, errors.Wrap(errors.ErrState, "mismatched sign"))
	}
	return err
}

// normalize will adjust the fractional parts to
// correspond to the range and the integer parts.
//
// If the normalized coin is outside of the range,
// returns an error
func (c Coin) normalize() (Coin, error) {
	for c.Fractional < MinFrac {
		c.Whole--
		c.Fractional += FracUnit
	}
	for c.Fractional > MaxFrac {
		c.Whole++
		c.Fractional -= FracUnit
	}

	if (c.Whole > 0) && (c.Fractional < 0) {
		c.Whole--
		c.Fractional += FracUnit
	} else if (c.Whole < 0) && (c.Fractional > 0) {
		c.Whole++
		c.Fractional -= FracUnit
	}

	if c.Whole < MinInt || c.Whole > MaxInt {
		return Coin{}, errors.ErrOverflow
	}
	return c, nil
}

func (c *Coin) UnmarshalJSON(raw []byte) error {
	// Prioritize human readable format that is a string in format
	// "<whole>[.<fractional>] <ticker>"
	var human string
	if err := json.Unmarshal(raw, &human); err == nil {
		parsed, err := ParseHumanFormat(human)
		if err != nil {
			return err
		}
		*c = parsed
		return nil
	}

	// Because UnmarshalJSON method is provided, an alias type without
	// methods must be used for the structured form.
	type plain Coin
	var p plain
	if err := json.Unmarshal(raw, &p); err != nil {
		return errors.Wrap(errors.ErrInput, err.Error())
	}
	*c = Coin(p)
	return nil
}

// String provides a human readable representation of the coin. For a valid
// coin the result can be parsed back with ParseHumanFormat.
func (c Coin) String() string {
	if n, err := c.normalize(); err == nil {
		c = n
	}
	s := c.Atoms().Div(fracUnit).String()
	if c.Ticker != "" {
		s += " " + c.Ticker
	}
	return s
}

// ParseHumanFormat parse a human readable coin representation. Accepted format
// is a string:
//
//	"<whole>[.<fractional>] <ticker>"
//
// Parsing is exact, fractional digits below 10^-9 are rejected.
func ParseHumanFormat(h string) (Coin, error) {
	m := humanCoinFormatRx.FindStringSubmatch(strings.TrimSpace(h))
	if m == nil {
		return Coin{}, errors.Wrapf(errors.ErrInput, "invalid coin format %q", h)
	}
	num, err := decimal.NewFromString(m[1] + m[2] + m[3])
	if err != nil {
		return Coin{}, errors.Wrapf(errors.ErrInput, "invalid coin value: %s", err)
	}
	atoms := num.Mul(fracUnit)
	if !atoms.Equal(atoms.Truncate(0)) {
		return Coin{}, errors.Wrap(errors.ErrInput, "too many fractional digits")
	}
	return FromAtoms(atoms, m[4])
}

var humanCoinFormatRx = regexp.MustCompile(`^(\-?)\s*(\d+)(\.\d+)?\s*([A-Z]{3,4})$`)
