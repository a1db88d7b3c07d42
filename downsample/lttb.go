package downsample

import (
	"fmt"
	"math"

	"github.com/RoaringBitmap/roaring/v2"

	"github.com/arloliu/fixvec/errs"
	"github.com/arloliu/fixvec/internal/options"
)

// DefaultMinMaxRatio is the number of min-max candidates per output point that
// MinMaxLTTB preselects before running LTTB.
const DefaultMinMaxRatio = 4

// LTTB implements Largest-Triangle-Three-Buckets: the first and last samples
// are kept, and every bucket in between contributes the sample forming the
// largest triangle with the previously selected sample and the average of the
// next bucket.
type LTTB struct{}

var _ Downsampler = LTTB{}

// NewLTTB creates an LTTB downsampler.
func NewLTTB() LTTB {
	return LTTB{}
}

// Name returns "lttb".
func (LTTB) Name() string {
	return LTTBName
}

// Downsample selects exactly nOut indices when the series is longer than nOut.
// nOut must then be at least 3.
func (d LTTB) Downsample(x, y []float64, nOut int) ([]int, error) {
	if err := validate(d.Name(), x, y, nOut); err != nil {
		return nil, err
	}

	n := len(y)
	if n <= nOut {
		return identity(n), nil
	}
	if nOut < 3 {
		return nil, fmt.Errorf("%w: %s needs n_out >= 3, got %d", errs.ErrInvalidParameter, d.Name(), nOut)
	}

	return lttbSelect(x, y, nOut, false), nil
}

// MinMaxLTTB preselects candidates with min-max binning and runs LTTB on them,
// which is much faster than LTTB on long series with nearly the same result.
type MinMaxLTTB struct {
	ratio    int
	nanAware bool
}

var _ Downsampler = (*MinMaxLTTB)(nil)

// MinMaxLTTBOption configures a MinMaxLTTB downsampler.
type MinMaxLTTBOption = options.Option[*MinMaxLTTB]

// WithMinMaxRatio sets how many min-max candidates are preselected per output
// point. Higher ratios trade speed for fidelity to plain LTTB.
func WithMinMaxRatio(ratio int) MinMaxLTTBOption {
	return options.New(func(d *MinMaxLTTB) error {
		if ratio < 1 {
			return fmt.Errorf("%w: min-max ratio %d must be positive", errs.ErrInvalidParameter, ratio)
		}
		d.ratio = ratio

		return nil
	})
}

// NewMinMaxLTTB creates a MinMaxLTTB downsampler that ignores NaN samples.
func NewMinMaxLTTB(opts ...MinMaxLTTBOption) (*MinMaxLTTB, error) {
	return newMinMaxLTTB(false, opts...)
}

// NewNaNMinMaxLTTB creates a MinMaxLTTB downsampler that keeps NaN gaps: NaN
// samples are preselected, and an LTTB bucket holding one selects it.
func NewNaNMinMaxLTTB(opts ...MinMaxLTTBOption) (*MinMaxLTTB, error) {
	return newMinMaxLTTB(true, opts...)
}

func newMinMaxLTTB(nanAware bool, opts ...MinMaxLTTBOption) (*MinMaxLTTB, error) {
	d := &MinMaxLTTB{ratio: DefaultMinMaxRatio, nanAware: nanAware}
	if err := options.Apply(d, opts...); err != nil {
		return nil, err
	}

	return d, nil
}

// Name returns "minmax-lttb" or "nan-minmax-lttb".
func (d *MinMaxLTTB) Name() string {
	if d.nanAware {
		return NaNMinMaxLTTBName
	}

	return MinMaxLTTBName
}

// Downsample selects at most nOut indices, always including the first and last
// sample. nOut must be at least 3 when the series is longer than nOut.
func (d *MinMaxLTTB) Downsample(x, y []float64, nOut int) ([]int, error) {
	if err := validate(d.Name(), x, y, nOut); err != nil {
		return nil, err
	}

	n := len(y)
	if n <= nOut {
		return identity(n), nil
	}
	if nOut < 3 {
		return nil, fmt.Errorf("%w: %s needs n_out >= 3, got %d", errs.ErrInvalidParameter, d.Name(), nOut)
	}
	if err := validateSortedX(d.Name(), x); err != nil {
		return nil, err
	}

	if n <= nOut*d.ratio {
		return lttbSelect(x, y, nOut, d.nanAware), nil
	}

	rb := roaring.New()
	rb.Add(0)
	rb.Add(uint32(n - 1)) //nolint:gosec
	addExtrema(rb, y, makeBins(x, 1, n-1, nOut*d.ratio/2), false, d.nanAware)

	pre := indices(rb)
	if len(pre) <= nOut {
		return pre, nil
	}

	subX := make([]float64, len(pre))
	subY := make([]float64, len(pre))
	for j, i := range pre {
		subX[j] = pointX(x, i)
		subY[j] = y[i]
	}

	picked := lttbSelect(subX, subY, nOut, d.nanAware)
	for j, p := range picked {
		picked[j] = pre[p]
	}

	return picked, nil
}

// lttbSelect runs LTTB over y. It requires len(y) > nOut >= 3 and returns
// exactly nOut ascending positions.
func lttbSelect(x, y []float64, nOut int, nanAware bool) []int {
	n := len(y)
	out := make([]int, 0, nOut)
	out = append(out, 0)

	every := float64(n-2) / float64(nOut-2)
	a := 0
	for i := range nOut - 2 {
		lo := int(float64(i)*every) + 1
		hi := int(float64(i+1)*every) + 1
		if i == nOut-3 {
			hi = n - 1
		}

		// average of the next bucket, or the last sample for the final bucket
		nextLo, nextHi := hi, min(int(float64(i+2)*every)+1, n)
		cx, cy := pointX(x, n-1), y[n-1]
		if nextLo < nextHi {
			cx = bucketMeanX(x, nextLo, nextHi)
			if avg, ok := mean(y[nextLo:nextHi]); ok {
				cy = avg
			}
		}

		a = pickBucket(x, y, a, lo, hi, cx, cy, nanAware)
		out = append(out, a)
	}

	return append(out, n-1)
}

// pickBucket returns the position in [lo, hi) forming the largest triangle with
// sample a and the point (cx, cy).
func pickBucket(x, y []float64, a, lo, hi int, cx, cy float64, nanAware bool) int {
	if nanAware {
		if k := firstNaN(y[lo:hi]); k >= 0 {
			return lo + k
		}
	}

	ax, ay := pointX(x, a), y[a]
	pick, maxArea := lo, -1.0
	for j := lo; j < hi; j++ {
		area := math.Abs((ax-cx)*(y[j]-ay) - (ax-pointX(x, j))*(cy-ay))
		if area > maxArea {
			maxArea = area
			pick = j
		}
	}

	return pick
}

func bucketMeanX(x []float64, lo, hi int) float64 {
	if x == nil {
		return float64(lo+hi-1) / 2
	}
	if avg, ok := mean(x[lo:hi]); ok {
		return avg
	}

	return x[lo]
}
