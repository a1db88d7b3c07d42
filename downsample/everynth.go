package downsample

// EveryNth keeps every step-th sample starting at 0, with step = ceil(n/nOut).
// x is ignored.
type EveryNth struct{}

var _ Downsampler = EveryNth{}

// NewEveryNth creates an every-nth downsampler.
func NewEveryNth() EveryNth {
	return EveryNth{}
}

// Name returns "every-nth".
func (EveryNth) Name() string {
	return EveryNthName
}

// Downsample selects indices 0, step, 2*step, ...
func (d EveryNth) Downsample(x, y []float64, nOut int) ([]int, error) {
	if err := validate(d.Name(), x, y, nOut); err != nil {
		return nil, err
	}

	n := len(y)
	if n <= nOut {
		return identity(n), nil
	}

	step := (n + nOut - 1) / nOut
	out := make([]int, 0, (n+step-1)/step)
	for i := 0; i < n; i += step {
		out = append(out, i)
	}

	return out, nil
}
