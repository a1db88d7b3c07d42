// Package fixvec stores numeric series as fixed-point vectors and shrinks them with
// a downsample-then-encode pipeline.
//
// Every value is split into three small non-negative integers: a sign code, the
// integer part and the fractional part scaled by 10^precision. Each component is a
// separate sequence, so a succinct or block-compressed backend can shrink it further
// while still serving random reads.
//
// # Core Features
//
//   - Fixed-point encoding with half-to-even rounding and NaN preservation
//   - Component widths of 8, 16, 32 or 64 bits
//   - Compression backends: minimal-bit packing, zstd, s2, lz4 and delta blocks
//   - Downsamplers: every-nth, minmax, m4, lttb, minmax-lttb and NaN-aware variants
//   - Slice and index-list reads returning floats or a new vector
//   - Element-wise arithmetic on uncompressed vectors
//
// # Basic Usage
//
// Encoding and compressing a series:
//
//	import "github.com/arloliu/fixvec"
//
//	v, _ := fixvec.Encode([]float64{1.5, -2.25, 3}, vector.WithPrecision(2))
//	_ = v.Compress(backend.NewBitPack())
//	f, _ := v.Get(1) // -2.25
//
// Downsampling before encoding:
//
//	res, _ := fixvec.Downsample(ctx, x, y, 1000,
//	    pipeline.WithMethod(downsample.M4Name),
//	    pipeline.WithCompression(backend.DeltaZstdName),
//	)
//	fmt.Println(res.Y.Len()) // at most 1000
//
// # Package Structure
//
// This package provides top-level wrappers around the vector and pipeline packages
// for the common cases. For custom backends, downsamplers or registries use those
// packages directly.
package fixvec

import (
	"context"

	"github.com/arloliu/fixvec/backend"
	"github.com/arloliu/fixvec/downsample"
	"github.com/arloliu/fixvec/pipeline"
	"github.com/arloliu/fixvec/vector"
)

// NewVector creates an empty vector.
//
// Parameters:
//   - opts: Optional configuration functions (see vector.Option)
//
// Returns:
//   - *vector.Vector: The created vector, with length 0 until Allocate is called.
//   - error: errs.ErrConfiguration if precision or bit width is invalid.
//
// Available options:
//   - vector.WithPrecision(n)
//   - vector.WithBitWidth(format.Width8|Width16|Width32|Width64)
//   - vector.WithViewMode(format.ViewCompressed|ViewDecompressed)
func NewVector(opts ...vector.Option) (*vector.Vector, error) {
	return vector.New(opts...)
}

// Encode creates a vector holding values.
//
// Returns errs.ErrPrecisionOverflow if a value does not fit the configured width.
//
// Example:
//
//	v, err := fixvec.Encode(samples,
//	    vector.WithPrecision(3),
//	    vector.WithBitWidth(format.Width32),
//	)
func Encode(values []float64, opts ...vector.Option) (*vector.Vector, error) {
	v, err := vector.New(opts...)
	if err != nil {
		return nil, err
	}
	if err := v.Allocate(len(values)); err != nil {
		return nil, err
	}
	if err := v.Fill(values); err != nil {
		return nil, err
	}

	return v, nil
}

// EncodeCompressed creates a vector holding values and compresses it with the
// backend registered under backendName in the default registry.
//
// The name "none" returns the vector uncompressed.
//
// Returns errs.ErrUnknownCompressionMethod for an unregistered name.
func EncodeCompressed(values []float64, backendName string, opts ...vector.Option) (*vector.Vector, error) {
	b, err := backend.NewDefaultRegistry().Resolve(backendName)
	if err != nil {
		return nil, err
	}

	v, err := Encode(values, opts...)
	if err != nil {
		return nil, err
	}
	if b == nil {
		return v, nil
	}
	if err := v.Compress(b); err != nil {
		return nil, err
	}

	return v, nil
}

// NewPipeline creates a downsample-then-encode pipeline backed by the default
// registries.
//
// Available options:
//   - pipeline.WithDownsamplerRegistry(r)
//   - pipeline.WithBackendRegistry(r)
//   - pipeline.WithLogger(l)
func NewPipeline(opts ...pipeline.PipelineOption) (*pipeline.Pipeline, error) {
	return pipeline.New(opts...)
}

// Downsample runs a single call on a new default pipeline.
//
// Use NewPipeline to keep the selected indices between calls.
func Downsample(ctx context.Context, x, y []float64, nOut int, opts ...pipeline.Option) (pipeline.Result, error) {
	p, err := pipeline.New()
	if err != nil {
		return pipeline.Result{}, err
	}

	return p.Downsample(ctx, x, y, nOut, opts...)
}

// Downsamplers returns the names of the built-in downsamplers.
func Downsamplers() []string {
	return downsample.NewDefaultRegistry().Names()
}

// Backends returns the names of the built-in compression backends.
func Backends() []string {
	return backend.NewDefaultRegistry().Names()
}
