// Package downsample selects a representative subset of sample indices from a
// series before it is encoded.
//
// A Downsampler maps a y series (and optionally its x coordinates) to a
// strictly ascending list of at most nOut indices:
//
//	idx, err := downsample.NewLTTB().Downsample(x, y, 1000)
//
// Every algorithm returns all indices when the series is not longer than nOut.
// Algorithms that bin by x require x to be sorted ascending; when x is nil the
// sample index is used as the x coordinate.
//
// The NaN-aware variants (nan-minmax, nan-m4, nan-minmax-lttb) keep NaN gaps
// visible: a bin that contains NaN contributes its first NaN index. The plain
// variants ignore NaN samples when ranking values.
package downsample

import (
	"fmt"
	"math"
	"slices"

	"github.com/RoaringBitmap/roaring/v2"

	"github.com/arloliu/fixvec/errs"
)

// Downsampler selects indices from a series.
type Downsampler interface {
	// Name returns the registered name of the algorithm.
	Name() string
	// Downsample returns strictly ascending indices in [0, len(y)), at most nOut
	// of them. x is optional; when given it has the same length as y.
	Downsample(x, y []float64, nOut int) ([]int, error)
}

// Func adapts a function to the Downsampler interface.
type Func struct {
	name string
	fn   func(x, y []float64, nOut int) ([]int, error)
}

var _ Downsampler = (*Func)(nil)

// NewFunc wraps fn as a named Downsampler.
func NewFunc(name string, fn func(x, y []float64, nOut int) ([]int, error)) *Func {
	return &Func{name: name, fn: fn}
}

// Name returns the downsampler name.
func (f *Func) Name() string {
	return f.name
}

// Downsample calls the wrapped function.
func (f *Func) Downsample(x, y []float64, nOut int) ([]int, error) {
	return f.fn(x, y, nOut)
}

// validate checks the arguments shared by every algorithm.
func validate(name string, x, y []float64, nOut int) error {
	if nOut <= 0 {
		return fmt.Errorf("%w: %s: n_out %d must be positive", errs.ErrInvalidParameter, name, nOut)
	}
	if x != nil && len(x) != len(y) {
		return fmt.Errorf("%w: %s: x has %d samples, y has %d", errs.ErrInvalidParameter, name, len(x), len(y))
	}
	if uint64(len(y)) > math.MaxUint32 {
		return fmt.Errorf("%w: %s: %d samples exceed the 32-bit index range", errs.ErrInvalidParameter, name, len(y))
	}

	return nil
}

// validateSortedX rejects an x series that is not ascending.
func validateSortedX(name string, x []float64) error {
	if x != nil && !slices.IsSorted(x) {
		return fmt.Errorf("%w: %s: x must be sorted ascending", errs.ErrInvalidParameter, name)
	}

	return nil
}

// identity returns 0..n-1.
func identity(n int) []int {
	out := make([]int, n)
	for i := range out {
		out[i] = i
	}

	return out
}

// indices converts a bitmap of selected positions into an ascending slice.
func indices(rb *roaring.Bitmap) []int {
	out := make([]int, 0, rb.GetCardinality())
	it := rb.Iterator()
	for it.HasNext() {
		out = append(out, int(it.Next()))
	}

	return out
}

// pointX returns the x coordinate of sample i.
func pointX(x []float64, i int) float64 {
	if x == nil {
		return float64(i)
	}

	return x[i]
}
