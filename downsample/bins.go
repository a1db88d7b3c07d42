package downsample

import (
	"math"
	"sort"

	"github.com/RoaringBitmap/roaring/v2"
	"gonum.org/v1/gonum/floats"
)

// bin is a half-open index range [lo, hi).
type bin struct {
	lo, hi int
}

// makeBins splits [lo, hi) into at most nBins non-empty bins.
//
// Without x the bins hold equal index counts. With x they cover equal x
// intervals between x[lo] and x[hi-1], so irregularly sampled series get wider
// index ranges where samples are dense.
func makeBins(x []float64, lo, hi, nBins int) []bin {
	n := hi - lo
	if n <= 0 || nBins <= 0 {
		return nil
	}
	nBins = min(nBins, n)

	out := make([]bin, 0, nBins)
	if x == nil {
		prev := lo
		for b := 1; b <= nBins; b++ {
			end := lo + int(uint64(b)*uint64(n)/uint64(nBins)) //nolint:gosec
			if end > prev {
				out = append(out, bin{lo: prev, hi: end})
			}
			prev = end
		}

		return out
	}

	x0, x1 := x[lo], x[hi-1]
	if x1 <= x0 {
		return append(out, bin{lo: lo, hi: hi})
	}

	width := (x1 - x0) / float64(nBins)
	prev := lo
	for b := 1; b < nBins; b++ {
		end := lo + sort.SearchFloat64s(x[lo:hi], x0+float64(b)*width)
		if end > prev {
			out = append(out, bin{lo: prev, hi: end})
			prev = end
		}
	}
	if hi > prev {
		out = append(out, bin{lo: prev, hi: hi})
	}

	return out
}

// argMinMax returns the positions of the smallest and largest non-NaN values of
// s. ok is false when s holds only NaN.
func argMinMax(s []float64) (minIdx, maxIdx int, ok bool) {
	if !floats.HasNaN(s) {
		return floats.MinIdx(s), floats.MaxIdx(s), true
	}

	minIdx, maxIdx = -1, -1
	for i, v := range s {
		if math.IsNaN(v) {
			continue
		}
		if minIdx < 0 || v < s[minIdx] {
			minIdx = i
		}
		if maxIdx < 0 || v > s[maxIdx] {
			maxIdx = i
		}
	}

	return minIdx, maxIdx, minIdx >= 0
}

// firstNaN returns the position of the first NaN in s, or -1.
func firstNaN(s []float64) int {
	if !floats.HasNaN(s) {
		return -1
	}
	for i, v := range s {
		if math.IsNaN(v) {
			return i
		}
	}

	return -1
}

// mean averages the non-NaN values of s. ok is false when there are none.
func mean(s []float64) (float64, bool) {
	if len(s) == 0 {
		return 0, false
	}
	if !floats.HasNaN(s) {
		return floats.Sum(s) / float64(len(s)), true
	}

	sum, count := 0.0, 0
	for _, v := range s {
		if !math.IsNaN(v) {
			sum += v
			count++
		}
	}
	if count == 0 {
		return 0, false
	}

	return sum / float64(count), true
}

// addExtrema adds the min and max positions of every bin to rb. When
// withEdges is set the first and last position of each bin are added too.
func addExtrema(rb *roaring.Bitmap, y []float64, bins []bin, withEdges, nanAware bool) {
	for _, b := range bins {
		seg := y[b.lo:b.hi]
		if withEdges {
			rb.Add(uint32(b.lo))     //nolint:gosec
			rb.Add(uint32(b.hi - 1)) //nolint:gosec
		}

		if nanAware {
			if i := firstNaN(seg); i >= 0 {
				rb.Add(uint32(b.lo + i)) //nolint:gosec
				continue
			}
		}

		mn, mx, ok := argMinMax(seg)
		if !ok {
			rb.Add(uint32(b.lo)) //nolint:gosec
			continue
		}
		rb.Add(uint32(b.lo + mn)) //nolint:gosec
		rb.Add(uint32(b.lo + mx)) //nolint:gosec
	}
}
