package domain

import (
	"fmt"
	"math"
	"math/big"

	"github.com/shopspring/decimal"
)

// ScaleMaxDenominator bounds the fraction used to approximate a float scalar in Scale
const ScaleMaxDenominator = 10000

// Quantity is an exact culinary amount: Whole + Num/Denom.
// Values are immutable; every operation returns a new Quantity.
//
// After Normalize, Denom > 0, |Num| < Denom, Num/Denom is fully reduced,
// Num == 0 implies Denom == 1, and Whole and Num never carry opposite signs
// (-1 1/2 is {-1, -1, 2}; -1/2 is {0, -1, 2}).
//
// Arithmetic is exact. Add, Sub, Mul, Scale, Div, DivQuantity and RoundTo
// return ErrQuantityOutOfRange when the normalized result has a whole part or
// denominator outside int64.
type Quantity struct {
	Whole int64 `json:"whole"`
	Num   int64 `json:"num"`
	Denom int64 `json:"denom"`
}

// ZeroQuantity is the canonical zero value {0, 0, 1}
var ZeroQuantity = Quantity{Whole: 0, Num: 0, Denom: 1}

// NewQuantity builds a quantity from its fields without normalizing it
func NewQuantity(whole, num, denom int64) Quantity {
	return Quantity{Whole: whole, Num: num, Denom: denom}
}

// WholeQuantity returns the quantity n
func WholeQuantity(n int64) Quantity {
	return Quantity{Whole: n, Num: 0, Denom: 1}
}

// Fraction returns the normalized quantity num/denom.
func Fraction(num, denom int64) (Quantity, error) {
	if denom == 0 {
		return Quantity{}, ErrZeroDenominator
	}
	return Quantity{Num: num, Denom: denom}.Normalize(), nil
}

// Validate reports whether the quantity has a usable denominator and a
// normalized form that fits in int64
func (q Quantity) Validate() error {
	if q.Denom == 0 {
		return ErrZeroDenominator
	}
	_, err := fromRat(q.Rat())
	return err
}

// Normalize returns the canonical form of q.
//
// The sign convention truncates toward zero: the whole part is the integer
// part of the value and the fraction keeps the same sign, so {0, -3, 2}
// (-1.5) becomes {-1, -1, 2}, never the floored {-2, 1, 2}.
//
// A zero denominator, or a value whose whole part does not fit in int64, is
// returned unchanged; use Validate to reject it.
func (q Quantity) Normalize() Quantity {
	if q.Num == 0 {
		return Quantity{Whole: q.Whole, Num: 0, Denom: 1}
	}
	if q.Denom == 0 {
		return q
	}
	n, err := fromRat(q.Rat())
	if err != nil {
		return q
	}
	return n
}

// Neg flips the sign of Whole and Num
func (q Quantity) Neg() Quantity {
	return Quantity{Whole: -q.Whole, Num: -q.Num, Denom: q.Denom}
}

// Add returns q + o.
func (q Quantity) Add(o Quantity) (Quantity, error) {
	if err := validatePair(q, o); err != nil {
		return Quantity{}, err
	}
	return fromRat(new(big.Rat).Add(q.Rat(), o.Rat()))
}

// Sub returns q - o
func (q Quantity) Sub(o Quantity) (Quantity, error) {
	return q.Add(o.Neg())
}

// Mul returns the exact product q * o.
func (q Quantity) Mul(o Quantity) (Quantity, error) {
	if err := validatePair(q, o); err != nil {
		return Quantity{}, err
	}
	return fromRat(new(big.Rat).Mul(q.Rat(), o.Rat()))
}

// Scale multiplies q by a real-valued scalar. The scalar is first replaced by its
// closest fraction with a denominator of at most ScaleMaxDenominator, so
// non-rational scalars are applied approximately and may not cancel exactly.
// Scalars that no such fraction can represent, because they are smaller than
// 1/ScaleMaxDenominator or larger than MaxInt64/ScaleMaxDenominator, are used
// at their shortest decimal value instead. Non-finite scalars scale to zero.
func (q Quantity) Scale(scalar float64) (Quantity, error) {
	if err := q.Validate(); err != nil {
		return Quantity{}, err
	}
	return fromRat(new(big.Rat).Mul(q.Rat(), scalarRat(scalar)))
}

// Div divides q by a real-valued scalar, approximated the same way as in Scale.
func (q Quantity) Div(scalar float64) (Quantity, error) {
	if scalar == 0 || math.IsNaN(scalar) || math.IsInf(scalar, 0) {
		return Quantity{}, ErrDivisionByZero
	}
	if err := q.Validate(); err != nil {
		return Quantity{}, err
	}
	return fromRat(new(big.Rat).Quo(q.Rat(), scalarRat(scalar)))
}

// DivQuantity returns the exact quotient q / o.
func (q Quantity) DivQuantity(o Quantity) (Quantity, error) {
	if err := validatePair(q, o); err != nil {
		return Quantity{}, err
	}
	divisor := o.Rat()
	if divisor.Sign() == 0 {
		return Quantity{}, ErrDivisionByZero
	}
	return fromRat(new(big.Rat).Quo(q.Rat(), divisor))
}

// Compare returns -1, 0 or 1 when q is less than, equal to or greater than o.
// Comparison is exact, not via floats.
func (q Quantity) Compare(o Quantity) int {
	return q.Rat().Cmp(o.Rat())
}

// Equal reports whether q and o denote the same value
func (q Quantity) Equal(o Quantity) bool {
	return q.Compare(o) == 0
}

// IsZero reports whether q is zero
func (q Quantity) IsZero() bool {
	return q.Whole == 0 && q.Num == 0
}

// Sign returns -1, 0 or 1
func (q Quantity) Sign() int {
	return q.Rat().Sign()
}

// Float64 returns Whole + Num/Denom as a float
func (q Quantity) Float64() float64 {
	if q.Denom == 0 {
		return math.NaN()
	}
	return float64(q.Whole) + float64(q.Num)/float64(q.Denom)
}

// Rat returns the exact value of q. A zero denominator contributes no fraction.
func (q Quantity) Rat() *big.Rat {
	if q.Denom == 0 {
		return new(big.Rat).SetInt64(q.Whole)
	}
	n := new(big.Int).Mul(big.NewInt(q.Whole), big.NewInt(q.Denom))
	n.Add(n, big.NewInt(q.Num))
	return new(big.Rat).SetFrac(n, big.NewInt(q.Denom))
}

// QuantityFromRat converts an exact rational back into a normalized Quantity.
// ok is false when the whole part or denominator do not fit in int64.
func QuantityFromRat(r *big.Rat) (Quantity, bool) {
	q, err := fromRat(r)
	return q, err == nil
}

// RoundTo rounds q to the nearest multiple of 1/denom, halves away from zero.
// Kitchen fractions use denom 16. A denom <= 0 only normalizes.
func (q Quantity) RoundTo(denom int64) (Quantity, error) {
	if err := q.Validate(); err != nil {
		return Quantity{}, err
	}
	return RoundRat(q.Rat(), denom)
}

// RoundRat rounds r to the nearest multiple of 1/denom, halves away from zero.
func RoundRat(r *big.Rat, denom int64) (Quantity, error) {
	if denom <= 0 {
		return fromRat(r)
	}

	scaled := new(big.Int).Mul(r.Num(), big.NewInt(denom))
	quo, rem := new(big.Int).QuoRem(scaled, r.Denom(), new(big.Int))

	twice := new(big.Int).Abs(rem)
	twice.Lsh(twice, 1)
	if twice.Cmp(r.Denom()) >= 0 {
		quo.Add(quo, big.NewInt(int64(scaled.Sign())))
	}

	return fromRat(new(big.Rat).SetFrac(quo, big.NewInt(denom)))
}

// fromRat splits r into the canonical whole and fraction parts.
func fromRat(r *big.Rat) (Quantity, error) {
	whole, rem := new(big.Int).QuoRem(r.Num(), r.Denom(), new(big.Int))
	if !whole.IsInt64() || !r.Denom().IsInt64() {
		return Quantity{}, fmt.Errorf("%w: %s does not fit in int64", ErrQuantityOutOfRange, r.RatString())
	}
	if rem.Sign() == 0 {
		return Quantity{Whole: whole.Int64(), Num: 0, Denom: 1}, nil
	}
	return Quantity{Whole: whole.Int64(), Num: rem.Int64(), Denom: r.Denom().Int64()}, nil
}

func validatePair(a, b Quantity) error {
	if a.Denom == 0 || b.Denom == 0 {
		return ErrZeroDenominator
	}
	return nil
}

// scalarRat converts a float scalar to the rational used by Scale and Div.
func scalarRat(x float64) *big.Rat {
	if math.IsNaN(x) || math.IsInf(x, 0) {
		return new(big.Rat)
	}
	num, denom := approximateFloat(x, ScaleMaxDenominator)
	if num == 0 && x != 0 {
		return decimal.NewFromFloat(x).Rat()
	}
	return big.NewRat(num, denom)
}

// approximateFloat finds the continued-fraction convergent of x with the largest
// denominator not exceeding maxDenom.
func approximateFloat(x float64, maxDenom int64) (int64, int64) {
	if math.IsNaN(x) || math.IsInf(x, 0) {
		return 0, 1
	}

	neg := x < 0
	if neg {
		x = -x
	}
	if x >= float64(math.MaxInt64/maxDenom) {
		return 0, 1
	}

	var h0, h1 int64 = 0, 1
	var k0, k1 int64 = 1, 0
	f := x
	for i := 0; i < 64; i++ {
		a := math.Floor(f)
		ai := int64(a)

		h2 := ai*h1 + h0
		k2 := ai*k1 + k0
		if k2 > maxDenom {
			break
		}
		h0, h1 = h1, h2
		k0, k1 = k1, k2

		frac := f - a
		if frac < 1e-12 {
			break
		}
		f = 1 / frac
	}

	if neg {
		h1 = -h1
	}
	return h1, k1
}
