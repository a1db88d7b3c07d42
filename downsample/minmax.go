package downsample

import (
	"fmt"

	"github.com/RoaringBitmap/roaring/v2"

	"github.com/arloliu/fixvec/errs"
)

// MinMax splits the series into nOut/2 bins and keeps the minimum and maximum
// sample of each bin.
type MinMax struct {
	nanAware bool
}

var _ Downsampler = MinMax{}

// NewMinMax creates a min-max downsampler that ignores NaN samples.
func NewMinMax() MinMax {
	return MinMax{}
}

// NewNaNMinMax creates a min-max downsampler that keeps the first NaN of any bin
// containing one, instead of its extrema.
func NewNaNMinMax() MinMax {
	return MinMax{nanAware: true}
}

// Name returns "minmax" or "nan-minmax".
func (d MinMax) Name() string {
	if d.nanAware {
		return NaNMinMaxName
	}

	return MinMaxName
}

// Downsample selects at most two indices per bin. nOut must be at least 2 when
// the series is longer than nOut.
func (d MinMax) Downsample(x, y []float64, nOut int) ([]int, error) {
	if err := validate(d.Name(), x, y, nOut); err != nil {
		return nil, err
	}

	n := len(y)
	if n <= nOut {
		return identity(n), nil
	}
	if nOut < 2 {
		return nil, fmt.Errorf("%w: %s needs n_out >= 2, got %d", errs.ErrInvalidParameter, d.Name(), nOut)
	}
	if err := validateSortedX(d.Name(), x); err != nil {
		return nil, err
	}

	rb := roaring.New()
	addExtrema(rb, y, makeBins(x, 0, n, nOut/2), false, d.nanAware)

	return indices(rb), nil
}

// M4 splits the series into nOut/4 bins and keeps the first, minimum, maximum
// and last sample of each bin.
type M4 struct {
	nanAware bool
}

var _ Downsampler = M4{}

// NewM4 creates an M4 downsampler that ignores NaN samples.
func NewM4() M4 {
	return M4{}
}

// NewNaNM4 creates an M4 downsampler that keeps the first NaN of any bin
// containing one, together with the bin edges.
func NewNaNM4() M4 {
	return M4{nanAware: true}
}

// Name returns "m4" or "nan-m4".
func (d M4) Name() string {
	if d.nanAware {
		return NaNM4Name
	}

	return M4Name
}

// Downsample selects at most four indices per bin. nOut must be at least 4
// when the series is longer than nOut.
func (d M4) Downsample(x, y []float64, nOut int) ([]int, error) {
	if err := validate(d.Name(), x, y, nOut); err != nil {
		return nil, err
	}

	n := len(y)
	if n <= nOut {
		return identity(n), nil
	}
	if nOut < 4 {
		return nil, fmt.Errorf("%w: %s needs n_out >= 4, got %d", errs.ErrInvalidParameter, d.Name(), nOut)
	}
	if err := validateSortedX(d.Name(), x); err != nil {
		return nil, err
	}

	rb := roaring.New()
	addExtrema(rb, y, makeBins(x, 0, n, nOut/4), true, d.nanAware)

	return indices(rb), nil
}
