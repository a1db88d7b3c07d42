// Package fixedpoint converts float64 samples to and from the (sign, integer,
// fraction) triples stored by encoded vectors.
//
// A value v encoded at precision p is stored as
//
//	sign     = 1 if v >= 0, 0 if v < 0, 2 if v is NaN
//	integer  = floor(|v| rounded to p digits)
//	fraction = (|v| rounded to p digits - integer) * 10^p
//
// Both magnitudes must fit in the configured bit width. Conversion goes through
// an exact decimal representation of the float (its shortest round-trip decimal
// form), so that values such as 0.1 or 98.43 keep their decimal digits instead of
// picking up binary representation error.
package fixedpoint

import (
	"fmt"
	"math"
	"math/big"

	"github.com/shopspring/decimal"

	"github.com/arloliu/fixvec/errs"
	"github.com/arloliu/fixvec/format"
)

// Components is one encoded sample.
type Components struct {
	Sign     format.Sign
	Integer  uint64
	Fraction uint64
}

// NaN is the encoded form of a not-a-number sample.
var NaN = Components{Sign: format.SignNaN}

// ValidateConfig checks a precision and bit width pair.
//
// The precision must not exceed the bit width. The rule compares decimal digits
// with bits and is kept as a literal compatibility constraint; widths narrower
// than the digit count it allows will still overflow at encode time.
func ValidateConfig(precision int, width format.BitWidth) error {
	if precision < 0 {
		return fmt.Errorf("%w: precision %d must be non-negative", errs.ErrConfiguration, precision)
	}
	if !width.Valid() {
		return fmt.Errorf("%w: bit width %d must be one of 8, 16, 32, 64", errs.ErrConfiguration, width)
	}
	if precision > int(width) {
		return fmt.Errorf("%w: precision %d cannot be greater than bit width %d", errs.ErrConfiguration, precision, width)
	}

	return nil
}

// Encode converts value into its fixed-point components.
//
// The fractional part is rounded half-to-even at the precision-th digit; a carry
// produced by rounding moves into the integer part. NaN encodes as the NaN sign
// with zero magnitudes.
//
// Returns errs.ErrPrecisionOverflow when value is infinite or when either
// magnitude does not fit in width bits, and errs.ErrConfiguration for an invalid
// precision or width.
func Encode(value float64, precision int, width format.BitWidth) (Components, error) {
	if err := ValidateConfig(precision, width); err != nil {
		return Components{}, err
	}

	if math.IsNaN(value) {
		return NaN, nil
	}
	if math.IsInf(value, 0) {
		return Components{}, fmt.Errorf("%w: %v is not finite", errs.ErrPrecisionOverflow, value)
	}

	sign := format.SignNonNegative
	if value < 0 {
		sign = format.SignNegative
	}

	mag := decimal.NewFromFloat(value).Abs().RoundBank(int32(precision)) //nolint:gosec
	intPart := mag.Truncate(0)
	fracPart := mag.Sub(intPart).Mul(Scale(precision))

	integer, err := fitWidth(intPart.BigInt(), width)
	if err != nil {
		return Components{}, fmt.Errorf("integer part of %v: %w", value, err)
	}

	fraction, err := fitWidth(fracPart.BigInt(), width)
	if err != nil {
		return Components{}, fmt.Errorf("fractional part of %v at precision %d: %w", value, precision, err)
	}

	return Components{Sign: sign, Integer: integer, Fraction: fraction}, nil
}

// Decode reconstructs a float64 from its components.
//
// It returns NaN iff sign is format.SignNaN. The sum integer + fraction/10^precision
// is evaluated exactly and converted to the nearest float64.
func Decode(sign format.Sign, integer, fraction uint64, precision int) float64 {
	if sign == format.SignNaN {
		return math.NaN()
	}

	mag := fromUint64(integer, 0)
	if fraction != 0 {
		mag = mag.Add(fromUint64(fraction, -int32(precision))) //nolint:gosec
	}

	f, _ := mag.Float64()
	if sign == format.SignNegative {
		return -f
	}

	return f
}

// DecodeComponents is Decode over a Components value.
func DecodeComponents(c Components, precision int) float64 {
	return Decode(c.Sign, c.Integer, c.Fraction, precision)
}

// Scale returns 10^precision as an exact decimal.
func Scale(precision int) decimal.Decimal {
	return decimal.New(1, int32(precision)) //nolint:gosec
}

// Tolerance returns 10^-precision, the maximum round-trip error at precision.
func Tolerance(precision int) float64 {
	return math.Pow10(-precision)
}

func fromUint64(v uint64, exp int32) decimal.Decimal {
	if v <= math.MaxInt64 {
		return decimal.New(int64(v), exp)
	}

	return decimal.NewFromBigInt(new(big.Int).SetUint64(v), exp)
}

func fitWidth(v *big.Int, width format.BitWidth) (uint64, error) {
	if v.Sign() < 0 || v.BitLen() > int(width) {
		return 0, fmt.Errorf("%w: magnitude %s exceeds %d bits", errs.ErrPrecisionOverflow, v.String(), width)
	}

	return v.Uint64(), nil
}
