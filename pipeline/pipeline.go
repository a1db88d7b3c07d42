// Package pipeline downsamples a series and encodes the selected samples into
// fixed-point vectors, optionally compressed.
//
// A call runs in five steps: validate the arguments, resolve the downsampler,
// resolve the compression backend, select indices, then build one vector per
// given axis from the selected samples in ascending index order:
//
//	p, err := pipeline.New()
//	if err != nil {
//	    return err
//	}
//	res, err := p.Downsample(ctx, x, y, 1000,
//	    pipeline.WithMethod("lttb"),
//	    pipeline.WithPrecision(2),
//	    pipeline.WithCompression("delta-zstd"),
//	)
//
// Argument and resolution errors are returned before the downsampler runs.
// Downsampler and backend errors are returned wrapped, never retried.
//
// A Pipeline keeps the indices selected by its last successful selection and
// is not safe for concurrent use.
package pipeline

import (
	"context"
	"fmt"
	"slices"
	"time"

	"github.com/arloliu/fixvec/backend"
	"github.com/arloliu/fixvec/downsample"
	"github.com/arloliu/fixvec/errs"
	"github.com/arloliu/fixvec/fixedpoint"
	"github.com/arloliu/fixvec/internal/logging"
	"github.com/arloliu/fixvec/internal/options"
	"github.com/arloliu/fixvec/internal/pool"
	"github.com/arloliu/fixvec/vector"
)

// Result holds the vectors built by one call. An axis that was not given is nil.
type Result struct {
	X *vector.Vector
	Y *vector.Vector
}

// Pipeline runs downsample-then-encode calls.
type Pipeline struct {
	downsamplers *downsample.Registry
	backends     *backend.Registry
	logger       *logging.Logger

	xIndices []int
	yIndices []int
}

// New creates a pipeline backed by the default downsampler and backend registries.
func New(opts ...PipelineOption) (*Pipeline, error) {
	p := &Pipeline{
		downsamplers: downsample.NewDefaultRegistry(),
		backends:     backend.NewDefaultRegistry(),
		logger:       logging.NoopLogger(),
	}
	if err := options.Apply(p, opts...); err != nil {
		return nil, err
	}

	return p, nil
}

// Downsample selects at most nOut samples and encodes them.
//
// x and y are optional but at least one must be given. When both are given they
// must have the same length, the downsampler sees both, and both output vectors
// hold the same selected indices. When only x is given it is downsampled as a
// value series.
//
// Returns errs.ErrInvalidParameter for invalid arguments,
// errs.ErrUnknownDownsampler and errs.ErrUnknownCompressionMethod for unknown
// names, and errs.ErrInvalidSelection when the downsampler returns indices that
// are not strictly ascending, out of range or too many.
func (p *Pipeline) Downsample(ctx context.Context, x, y []float64, nOut int, opts ...Option) (Result, error) {
	cfg := defaultCallConfig()
	if err := options.Apply(&cfg, opts...); err != nil {
		return Result{}, err
	}

	if err := validate(x, y, nOut, cfg); err != nil {
		return Result{}, err
	}

	d, err := p.resolveDownsampler(cfg)
	if err != nil {
		return Result{}, err
	}

	b, err := p.resolveBackend(cfg)
	if err != nil {
		return Result{}, err
	}

	idx, err := p.selectIndices(ctx, d, x, y, nOut)
	if err != nil {
		return Result{}, err
	}

	if x != nil {
		p.xIndices = idx
	} else {
		p.xIndices = nil
	}
	if y != nil {
		p.yIndices = idx
	} else {
		p.yIndices = nil
	}

	var res Result
	if x != nil {
		if res.X, err = p.build(ctx, "x", x, idx, cfg, b); err != nil {
			return Result{}, err
		}
	}
	if y != nil {
		if res.Y, err = p.build(ctx, "y", y, idx, cfg, b); err != nil {
			return Result{}, err
		}
	}

	return res, nil
}

// XIndices returns the indices selected for x by the last call, or nil when that
// call had no x axis or no call has selected indices yet.
func (p *Pipeline) XIndices() []int {
	return slices.Clone(p.xIndices)
}

// YIndices returns the indices selected for y by the last call, or nil when that
// call had no y axis or no call has selected indices yet.
func (p *Pipeline) YIndices() []int {
	return slices.Clone(p.yIndices)
}

// Downsamplers returns the registered downsampler names.
func (p *Pipeline) Downsamplers() []string {
	return p.downsamplers.Names()
}

// Backends returns the registered backend names.
func (p *Pipeline) Backends() []string {
	return p.backends.Names()
}

func validate(x, y []float64, nOut int, cfg callConfig) error {
	if nOut <= 0 {
		return fmt.Errorf("%w: n_out %d must be a positive integer", errs.ErrInvalidParameter, nOut)
	}
	if err := fixedpoint.ValidateConfig(cfg.precision, cfg.width); err != nil {
		return fmt.Errorf("%w: %w", errs.ErrInvalidParameter, err)
	}
	if !cfg.view.Valid() {
		return fmt.Errorf("%w: unsupported view mode %d", errs.ErrInvalidParameter, cfg.view)
	}
	if x == nil && y == nil {
		return fmt.Errorf("%w: at least one of x or y must be provided", errs.ErrInvalidParameter)
	}
	if x != nil && nOut > len(x) {
		return fmt.Errorf("%w: n_out %d exceeds the %d x samples", errs.ErrInvalidParameter, nOut, len(x))
	}
	if y != nil && nOut > len(y) {
		return fmt.Errorf("%w: n_out %d exceeds the %d y samples", errs.ErrInvalidParameter, nOut, len(y))
	}
	if x != nil && y != nil && len(x) != len(y) {
		return fmt.Errorf("%w: x has %d samples, y has %d", errs.ErrInvalidParameter, len(x), len(y))
	}

	return nil
}

func (p *Pipeline) resolveDownsampler(cfg callConfig) (downsample.Downsampler, error) {
	if cfg.downsampler != nil {
		return cfg.downsampler, nil
	}

	return p.downsamplers.Resolve(cfg.method)
}

// resolveBackend returns nil when the call asks for no compression.
func (p *Pipeline) resolveBackend(cfg callConfig) (backend.Backend, error) {
	switch {
	case cfg.noCompression:
		return nil, nil //nolint:nilnil
	case cfg.backend != nil:
		return cfg.backend, nil
	default:
		return p.backends.Resolve(cfg.compression)
	}
}

func (p *Pipeline) selectIndices(ctx context.Context, d downsample.Downsampler, x, y []float64, nOut int) ([]int, error) {
	var (
		xs, ys = x, y
		n      = len(y)
	)
	if y == nil {
		xs, ys, n = nil, x, len(x)
	}

	start := time.Now()
	idx, err := d.Downsample(xs, ys, nOut)
	if err == nil {
		err = checkSelection(idx, n, nOut)
	}
	p.logger.LogDownsample(ctx, d.Name(), n, nOut, len(idx), time.Since(start), err)
	if err != nil {
		return nil, fmt.Errorf("downsample with %s: %w", d.Name(), err)
	}

	return idx, nil
}

func checkSelection(idx []int, n, nOut int) error {
	if len(idx) > nOut {
		return fmt.Errorf("%w: %d indices for n_out %d", errs.ErrInvalidSelection, len(idx), nOut)
	}
	for j, i := range idx {
		if i < 0 || i >= n {
			return fmt.Errorf("%w: index %d not in [0, %d)", errs.ErrInvalidSelection, i, n)
		}
		if j > 0 && i <= idx[j-1] {
			return fmt.Errorf("%w: index %d at position %d does not follow %d", errs.ErrInvalidSelection, i, j, idx[j-1])
		}
	}

	return nil
}

// build encodes values[idx] into a new vector and compresses it when b is set.
func (p *Pipeline) build(ctx context.Context, axis string, values []float64, idx []int, cfg callConfig, b backend.Backend) (*vector.Vector, error) {
	v, err := vector.New(
		vector.WithPrecision(cfg.precision),
		vector.WithBitWidth(cfg.width),
		vector.WithViewMode(cfg.view),
	)
	if err != nil {
		return nil, err
	}
	if err := v.Allocate(len(idx)); err != nil {
		return nil, err
	}

	selected, cleanup := pool.GetFloat64Slice(len(idx))
	defer cleanup()
	for j, i := range idx {
		selected[j] = values[i]
	}
	if err := v.Fill(selected); err != nil {
		return nil, fmt.Errorf("encode %s: %w", axis, err)
	}

	if b == nil {
		return v, nil
	}

	raw, _ := v.SizeInBytes()
	err = v.Compress(b)
	packed, _ := v.SizeInBytes()
	p.logger.LogCompress(ctx, axis, b.Name(), raw, packed, err)
	if err != nil {
		return nil, fmt.Errorf("compress %s: %w", axis, err)
	}

	return v, nil
}
