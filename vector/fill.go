package vector

import (
	"fmt"

	"github.com/arloliu/fixvec/backend"
	"github.com/arloliu/fixvec/errs"
	"github.com/arloliu/fixvec/fixedpoint"
)

// Fill encodes every value of src into the vector, starting at slot 0.
//
// It is FillRange(src, 0, len(src)).
func (v *Vector) Fill(src []float64) error {
	return v.FillRange(src, 0, len(src))
}

// FillRange encodes src[start:end] into the vector, starting at slot 0.
//
// end is clamped to len(src) and start to 0. The vector length becomes
// end-start, which must not exceed the size given to Allocate. A shorter fill
// keeps the allocated storage, so a later fill can grow the vector back up to
// that size. All values are encoded before any is stored, so an overflowing
// value leaves the vector unchanged.
//
// Returns errs.ErrUninitializedVector before Allocate, errs.ErrInvalidOperation
// on a compressed vector, errs.ErrLengthMismatch when the range is longer than
// the allocation and errs.ErrPrecisionOverflow when a value does not fit.
func (v *Vector) FillRange(src []float64, start, end int) error {
	if err := v.checkWritable(); err != nil {
		return err
	}

	start, end = clampRange(start, end, len(src))
	if err := v.checkFillLen(end - start); err != nil {
		return err
	}

	encoded := make([]fixedpoint.Components, end-start)
	for i := range encoded {
		c, err := fixedpoint.Encode(src[start+i], v.precision, v.width)
		if err != nil {
			return fmt.Errorf("fill element %d: %w", start+i, err)
		}
		encoded[i] = c
	}

	return v.commit(encoded)
}

// FillFrom copies src elements [start, end) into the vector, starting at slot 0,
// with the same clamping and length rules as FillRange.
//
// When src has the same precision the stored triples are copied without
// decoding, whether or not src is compressed. Otherwise each element is decoded
// and re-encoded at this vector's precision.
func (v *Vector) FillFrom(src *Vector, start, end int) error {
	if err := v.checkWritable(); err != nil {
		return err
	}
	if src == nil {
		return fmt.Errorf("%w: nil source vector", errs.ErrInvalidParameter)
	}

	start, end = clampRange(start, end, src.n)
	if err := v.checkFillLen(end - start); err != nil {
		return err
	}

	encoded := make([]fixedpoint.Components, end-start)
	for i := range encoded {
		c, err := src.components(start + i)
		if err != nil {
			return err
		}

		if src.precision != v.precision {
			c, err = fixedpoint.Encode(fixedpoint.DecodeComponents(c, src.precision), v.precision, v.width)
			if err != nil {
				return fmt.Errorf("fill element %d: %w", start+i, err)
			}
		} else if c.Integer > v.width.Max() || c.Fraction > v.width.Max() {
			return fmt.Errorf("fill element %d: %w: magnitude exceeds %s bits", start+i, errs.ErrPrecisionOverflow, v.width)
		}
		encoded[i] = c
	}

	return v.commit(encoded)
}

func (v *Vector) checkFillLen(n int) error {
	if n > v.capacity {
		return fmt.Errorf("%w: filling %d elements into a vector allocated for %d", errs.ErrLengthMismatch, n, v.capacity)
	}

	return nil
}

// commit sets the vector length to len(encoded) and stores encoded at slots
// [0, len(encoded)).
func (v *Vector) commit(encoded []fixedpoint.Components) error {
	n := len(encoded)
	for _, seq := range v.comps {
		fixed, ok := seq.(backend.Fixed)
		if !ok {
			return errs.ErrInvalidOperation
		}
		if err := fixed.Resize(n); err != nil {
			return err
		}
	}
	v.n = n

	for i, c := range encoded {
		if err := v.store(i, c); err != nil {
			return err
		}
	}

	return nil
}

// clampRange bounds [start, end) to a source of length n. An empty range is
// returned as start == end.
func clampRange(start, end, n int) (int, int) {
	end = min(end, n)
	start = max(start, 0)
	if end < start {
		end = start
	}

	return start, end
}
