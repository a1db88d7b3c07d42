package vector

import (
	"fmt"
	"math"

	"github.com/arloliu/fixvec/errs"
	"github.com/arloliu/fixvec/fixedpoint"
)

// Op is an elementwise arithmetic operation.
type Op uint8

const (
	OpAdd Op = iota
	OpSub
	OpMul
	OpDiv
	OpPow
)

func (o Op) String() string {
	switch o {
	case OpAdd:
		return "add"
	case OpSub:
		return "sub"
	case OpMul:
		return "mul"
	case OpDiv:
		return "div"
	case OpPow:
		return "pow"
	default:
		return "unknown"
	}
}

func (o Op) eval(a, b float64) float64 {
	switch o {
	case OpAdd:
		return a + b
	case OpSub:
		return a - b
	case OpMul:
		return a * b
	case OpDiv:
		return a / b
	default:
		return math.Pow(a, b)
	}
}

// Apply decodes every element, combines it with operand and stores the
// re-encoded result in place.
//
// operand is a scalar (float64, float32, int, int64), a []float64 or a *Vector
// of the same length. Results follow IEEE-754: a NaN result is stored as NaN,
// while an infinite result (such as a division by zero) fails with
// errs.ErrPrecisionOverflow. Every result is encoded before any is stored, so a
// failure leaves the vector unchanged.
//
// Returns errs.ErrInvalidOperation on a compressed vector,
// errs.ErrLengthMismatch for a sequence operand of another length and
// errs.ErrUnsupportedOperand for any other operand type.
func (v *Vector) Apply(op Op, operand any) error {
	if err := v.checkWritable(); err != nil {
		return err
	}
	if op > OpPow {
		return fmt.Errorf("%w: operation %d", errs.ErrUnsupportedOperand, op)
	}

	rhs, err := v.operandAt(operand)
	if err != nil {
		return err
	}

	encoded := make([]fixedpoint.Components, v.n)
	for i := range encoded {
		c, err := v.components(i)
		if err != nil {
			return err
		}

		b, err := rhs(i)
		if err != nil {
			return err
		}

		result := op.eval(fixedpoint.DecodeComponents(c, v.precision), b)
		encoded[i], err = fixedpoint.Encode(result, v.precision, v.width)
		if err != nil {
			return fmt.Errorf("%s element %d: %w", op, i, err)
		}
	}

	for i, c := range encoded {
		if err := v.store(i, c); err != nil {
			return err
		}
	}

	return nil
}

// Add adds operand elementwise. See Apply.
func (v *Vector) Add(operand any) error {
	return v.Apply(OpAdd, operand)
}

// Sub subtracts operand elementwise. See Apply.
func (v *Vector) Sub(operand any) error {
	return v.Apply(OpSub, operand)
}

// Mul multiplies by operand elementwise. See Apply.
func (v *Vector) Mul(operand any) error {
	return v.Apply(OpMul, operand)
}

// Div divides by operand elementwise. See Apply.
func (v *Vector) Div(operand any) error {
	return v.Apply(OpDiv, operand)
}

// Pow raises each element to operand elementwise. See Apply.
func (v *Vector) Pow(operand any) error {
	return v.Apply(OpPow, operand)
}

// operandAt returns an accessor for the right-hand side at each index.
func (v *Vector) operandAt(operand any) (func(i int) (float64, error), error) {
	scalar := func(f float64) func(int) (float64, error) {
		return func(int) (float64, error) { return f, nil }
	}

	switch rhs := operand.(type) {
	case float64:
		return scalar(rhs), nil
	case float32:
		return scalar(float64(rhs)), nil
	case int:
		return scalar(float64(rhs)), nil
	case int64:
		return scalar(float64(rhs)), nil
	case []float64:
		if len(rhs) != v.n {
			return nil, fmt.Errorf("%w: operand has %d elements, vector has %d", errs.ErrLengthMismatch, len(rhs), v.n)
		}

		return func(i int) (float64, error) { return rhs[i], nil }, nil
	case *Vector:
		if rhs == nil {
			return nil, fmt.Errorf("%w: nil vector", errs.ErrUnsupportedOperand)
		}
		if rhs.n != v.n {
			return nil, fmt.Errorf("%w: operand has %d elements, vector has %d", errs.ErrLengthMismatch, rhs.n, v.n)
		}

		return rhs.Get, nil
	default:
		return nil, fmt.Errorf("%w: %T", errs.ErrUnsupportedOperand, operand)
	}
}
