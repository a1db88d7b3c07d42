package vector

import (
	"fmt"
	"math"

	"github.com/arloliu/fixvec/errs"
	"github.com/arloliu/fixvec/fixedpoint"
	"github.com/arloliu/fixvec/format"
)

// Selector picks element indices out of a vector of a given length.
type Selector interface {
	// Resolve returns the selected indices, normalized to [0, n), in the order
	// they are read.
	Resolve(n int) ([]int, error)
}

// SpanSelector selects start, start+step, ... up to but excluding stop.
type SpanSelector struct {
	Start, Stop, Step int
}

// Span selects a half-open range with slice semantics: negative bounds count
// from the end, out-of-range bounds are clamped, and a negative step walks
// backwards. Use math.MaxInt and math.MinInt for open bounds.
//
//	Span(0, 3, 1)                    // 0, 1, 2
//	Span(-2, math.MaxInt, 1)         // last two elements
//	Span(math.MaxInt, math.MinInt, -1) // all elements, reversed
func Span(start, stop, step int) SpanSelector {
	return SpanSelector{Start: start, Stop: stop, Step: step}
}

// All selects every element in order.
func All() SpanSelector {
	return Span(0, math.MaxInt, 1)
}

// Resolve expands the span for a vector of length n.
func (s SpanSelector) Resolve(n int) ([]int, error) {
	if s.Step == 0 {
		return nil, fmt.Errorf("%w: span step cannot be zero", errs.ErrInvalidParameter)
	}

	start := clampBound(s.Start, n, s.Step)
	stop := clampBound(s.Stop, n, s.Step)

	count := 0
	switch {
	case s.Step > 0 && start < stop:
		count = (stop-start-1)/s.Step + 1
	case s.Step < 0 && stop < start:
		count = (start-stop-1)/(-s.Step) + 1
	}

	out := make([]int, count)
	for i := range out {
		out[i] = start + i*s.Step
	}

	return out, nil
}

// clampBound adjusts a slice bound the way Python's slice.indices does.
func clampBound(b, n, step int) int {
	if b < 0 {
		b += n
		if b < 0 {
			if step < 0 {
				return -1
			}

			return 0
		}

		return b
	}
	if b >= n {
		if step < 0 {
			return n - 1
		}

		return n
	}

	return b
}

// IndexSelector selects an explicit list of indices, in list order.
type IndexSelector []int

// Indices selects the given indices in the given order. Negative indices count
// from the end and duplicates are kept.
func Indices(idx ...int) IndexSelector {
	return IndexSelector(idx)
}

// Resolve normalizes the indices for a vector of length n.
func (s IndexSelector) Resolve(n int) ([]int, error) {
	out := make([]int, len(s))
	for j, i := range s {
		idx := i
		if idx < 0 {
			idx += n
		}
		if idx < 0 || idx >= n {
			return nil, fmt.Errorf("%w: %d with length %d", errs.ErrIndexOutOfRange, i, n)
		}
		out[j] = idx
	}

	return out, nil
}

// Range is the result of a bulk read. Exactly one field is set: Values when the
// vector is in decompressed view, Vector when it is in compressed view.
type Range struct {
	Values []float64
	Vector *Vector
}

// Len returns the number of selected elements.
func (r Range) Len() int {
	if r.Vector != nil {
		return r.Vector.Len()
	}

	return len(r.Values)
}

// GetRange reads the selected elements according to the view mode.
//
// In format.ViewDecompressed the result holds decoded floats. In
// format.ViewCompressed it holds a new uncompressed vector with the same
// configuration containing the selected elements in selection order: spans keep
// their walk order and explicit index lists keep request order.
func (v *Vector) GetRange(sel Selector) (Range, error) {
	if v.view == format.ViewDecompressed {
		values, err := v.Materialize(sel)
		if err != nil {
			return Range{}, err
		}

		return Range{Values: values}, nil
	}

	sub, err := v.Subvector(sel)
	if err != nil {
		return Range{}, err
	}

	return Range{Vector: sub}, nil
}

// Materialize decodes the selected elements regardless of the view mode.
func (v *Vector) Materialize(sel Selector) ([]float64, error) {
	idx, err := sel.Resolve(v.n)
	if err != nil {
		return nil, err
	}

	out := make([]float64, len(idx))
	for j, i := range idx {
		c, err := v.components(i)
		if err != nil {
			return nil, err
		}
		out[j] = fixedpoint.DecodeComponents(c, v.precision)
	}

	return out, nil
}

// Subvector copies the selected elements into a new uncompressed vector with the
// same precision, width and view mode. Triples are copied without decoding.
func (v *Vector) Subvector(sel Selector) (*Vector, error) {
	idx, err := sel.Resolve(v.n)
	if err != nil {
		return nil, err
	}

	dst := &Vector{precision: v.precision, width: v.width, view: v.view}
	if err := dst.Allocate(len(idx)); err != nil {
		return nil, err
	}
	for j, i := range idx {
		c, err := v.components(i)
		if err != nil {
			return nil, err
		}
		if err := dst.store(j, c); err != nil {
			return nil, err
		}
	}

	return dst, nil
}
