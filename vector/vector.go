// Package vector implements the encoded vector: a sequence of float64 samples
// stored as three parallel fixed-point component sequences (sign, integer part
// and fractional part) at a configured precision and bit width.
//
// A vector is created empty, sized with Allocate, populated with one of the
// Fill methods, optionally compressed once with a backend, and released with
// Destroy:
//
//	v, err := vector.New(vector.WithPrecision(2), vector.WithBitWidth(format.Width16))
//	if err != nil {
//	    return err
//	}
//	if err := v.Allocate(len(samples)); err != nil {
//	    return err
//	}
//	if err := v.Fill(samples); err != nil {
//	    return err
//	}
//	if err := v.Compress(backend.NewBitPack()); err != nil {
//	    return err
//	}
//	x, err := v.Get(-1) // last sample
//
// Scalar reads always return decoded floats. Bulk reads (GetRange) return either
// materialized floats or a new vector over the selected elements, depending on
// the view mode.
//
// A Vector is not safe for concurrent mutation. Concurrent reads of a vector
// that is not being mutated are safe, including ranging over All.
package vector

import (
	"fmt"

	"github.com/arloliu/fixvec/backend"
	"github.com/arloliu/fixvec/errs"
	"github.com/arloliu/fixvec/fixedpoint"
	"github.com/arloliu/fixvec/format"
	"github.com/arloliu/fixvec/internal/options"
)

const (
	// DefaultPrecision is the number of fractional digits kept when no
	// precision option is given.
	DefaultPrecision = 4
	// DefaultBitWidth is the component width used when no width option is given.
	DefaultBitWidth = format.Width64
)

// component sequence slots
const (
	compSign = iota
	compInteger
	compFraction
	numComponents
)

// Vector is a fixed-point encoded float sequence.
type Vector struct {
	precision int
	width     format.BitWidth
	view      format.ViewMode

	// comps holds the sign, integer and fraction sequences, each n elements long.
	// They are backend.Fixed until the vector is compressed.
	comps       [numComponents]backend.Sequence
	n           int
	capacity    int // elements reserved by Allocate
	allocated   bool
	compressed  bool
	backendName string
}

// Option configures a Vector at construction.
type Option = options.Option[*Vector]

// WithPrecision sets the number of fractional decimal digits retained.
func WithPrecision(precision int) Option {
	return options.NoError(func(v *Vector) {
		v.precision = precision
	})
}

// WithBitWidth sets the width of each component: 8, 16, 32 or 64 bits.
func WithBitWidth(width format.BitWidth) Option {
	return options.NoError(func(v *Vector) {
		v.width = width
	})
}

// WithViewMode sets what bulk reads return.
func WithViewMode(mode format.ViewMode) Option {
	return options.New(func(v *Vector) error {
		return v.SetViewMode(mode)
	})
}

// New creates an empty vector.
//
// The defaults are DefaultPrecision, DefaultBitWidth and format.ViewCompressed.
//
// Returns errs.ErrConfiguration when the precision is negative, the width is
// unsupported or the precision is greater than the width.
func New(opts ...Option) (*Vector, error) {
	v := &Vector{
		precision: DefaultPrecision,
		width:     DefaultBitWidth,
		view:      format.ViewCompressed,
	}
	if err := options.Apply(v, opts...); err != nil {
		return nil, err
	}
	if err := fixedpoint.ValidateConfig(v.precision, v.width); err != nil {
		return nil, err
	}

	return v, nil
}

// Allocate sizes the vector to size zero-valued elements, discarding any
// previous content and compression state.
func (v *Vector) Allocate(size int) error {
	if size < 0 {
		return fmt.Errorf("%w: negative vector size %d", errs.ErrInvalidParameter, size)
	}

	var comps [numComponents]backend.Sequence
	for k := range comps {
		seq, err := backend.NewFixed(v.width, size)
		if err != nil {
			return err
		}
		comps[k] = seq
	}

	v.comps = comps
	v.n = size
	v.capacity = size
	v.allocated = true
	v.compressed = false
	v.backendName = ""

	return nil
}

// Destroy releases the component sequences and resets the vector to empty.
// The configuration is kept, so the vector can be allocated again.
func (v *Vector) Destroy() {
	v.comps = [numComponents]backend.Sequence{}
	v.n = 0
	v.capacity = 0
	v.allocated = false
	v.compressed = false
	v.backendName = ""
}

// Len returns the number of elements.
func (v *Vector) Len() int {
	return v.n
}

// Precision returns the number of fractional digits retained.
func (v *Vector) Precision() int {
	return v.precision
}

// BitWidth returns the component width.
func (v *Vector) BitWidth() format.BitWidth {
	return v.width
}

// ViewMode returns the current view mode.
func (v *Vector) ViewMode() format.ViewMode {
	return v.view
}

// SetViewMode changes what bulk reads return. Stored data is not touched.
func (v *Vector) SetViewMode(mode format.ViewMode) error {
	if !mode.Valid() {
		return fmt.Errorf("%w: view mode %d", errs.ErrConfiguration, mode)
	}
	v.view = mode

	return nil
}

// Allocated reports whether the vector holds component sequences.
func (v *Vector) Allocated() bool {
	return v.allocated
}

// Compressed reports whether a backend has been applied.
func (v *Vector) Compressed() bool {
	return v.compressed
}

// BackendName returns the name of the backend the vector was compressed with,
// or "" when it is uncompressed.
func (v *Vector) BackendName() string {
	return v.backendName
}

// Signs returns the sign component sequence, or nil when not allocated.
// Callers must treat it as read-only.
func (v *Vector) Signs() backend.Sequence {
	return v.comps[compSign]
}

// Integers returns the integer-part component sequence, or nil when not allocated.
func (v *Vector) Integers() backend.Sequence {
	return v.comps[compInteger]
}

// Fractions returns the fractional-part component sequence, or nil when not
// allocated. Values are scaled by 10^Precision().
func (v *Vector) Fractions() backend.Sequence {
	return v.comps[compFraction]
}

// Get returns the decoded value at index i.
//
// Negative indices count from the end. The result does not depend on the view
// mode or compression state.
func (v *Vector) Get(i int) (float64, error) {
	idx, err := v.normalize(i)
	if err != nil {
		return 0, err
	}

	c, err := v.components(idx)
	if err != nil {
		return 0, err
	}

	return fixedpoint.DecodeComponents(c, v.precision), nil
}

// Set encodes value and stores it at index i. Negative indices count from the end.
//
// Returns errs.ErrInvalidOperation on a compressed vector and
// errs.ErrPrecisionOverflow when value does not fit the configuration; the
// element is unchanged on failure.
func (v *Vector) Set(i int, value float64) error {
	if err := v.checkWritable(); err != nil {
		return err
	}

	idx, err := v.normalize(i)
	if err != nil {
		return err
	}

	c, err := fixedpoint.Encode(value, v.precision, v.width)
	if err != nil {
		return fmt.Errorf("set element %d: %w", idx, err)
	}

	return v.store(idx, c)
}

// Compress replaces the three component sequences with the forms produced by b.
//
// All three components are encoded before any is swapped in, so a backend
// failure leaves the vector uncompressed and unchanged.
//
// Returns errs.ErrNotAllocated before Allocate or after Destroy and
// errs.ErrAlreadyCompressed when a backend has already been applied.
func (v *Vector) Compress(b backend.Backend) error {
	if !v.allocated {
		return errs.ErrNotAllocated
	}
	if v.compressed {
		return fmt.Errorf("%w with %s", errs.ErrAlreadyCompressed, v.backendName)
	}
	if b == nil {
		return fmt.Errorf("%w: nil backend", errs.ErrInvalidParameter)
	}

	var encoded [numComponents]backend.Sequence
	for k, seq := range v.comps {
		out, err := b.Encode(seq, v.width)
		if err != nil {
			return fmt.Errorf("compress %s component with %s: %w", componentName(k), b.Name(), err)
		}
		encoded[k] = out
	}

	v.comps = encoded
	v.compressed = true
	v.backendName = b.Name()

	return nil
}

// SizeInBytes returns the summed storage size of the three component sequences.
//
// An uncompressed vector reports exactly 3 * Len() * BitWidth()/8 bytes.
// Compressed sizes include the container overhead documented by each backend.
func (v *Vector) SizeInBytes() (int, error) {
	if !v.allocated {
		return 0, errs.ErrNotAllocated
	}

	size := 0
	for _, seq := range v.comps {
		size += seq.SizeInBytes()
	}

	return size, nil
}

// Floats decodes every element.
func (v *Vector) Floats() ([]float64, error) {
	out := make([]float64, v.n)
	for i := range out {
		c, err := v.components(i)
		if err != nil {
			return nil, err
		}
		out[i] = fixedpoint.DecodeComponents(c, v.precision)
	}

	return out, nil
}

// Clone returns an uncompressed deep copy with the same configuration.
//
// Components are copied directly, so cloning a compressed vector never goes
// through float64.
func (v *Vector) Clone() (*Vector, error) {
	dst := &Vector{precision: v.precision, width: v.width, view: v.view}
	if !v.allocated {
		return dst, nil
	}

	if err := dst.Allocate(v.n); err != nil {
		return nil, err
	}
	for i := range v.n {
		c, err := v.components(i)
		if err != nil {
			return nil, err
		}
		if err := dst.store(i, c); err != nil {
			return nil, err
		}
	}

	return dst, nil
}

func (v *Vector) String() string {
	state := "raw"
	if v.compressed {
		state = v.backendName
	}

	return fmt.Sprintf("Vector(len=%d, precision=%d, width=%s, view=%s, %s)", v.n, v.precision, v.width, v.view, state)
}

func (v *Vector) normalize(i int) (int, error) {
	idx := i
	if idx < 0 {
		idx += v.n
	}
	if idx < 0 || idx >= v.n {
		return 0, fmt.Errorf("%w: %d with length %d", errs.ErrIndexOutOfRange, i, v.n)
	}

	return idx, nil
}

func (v *Vector) checkWritable() error {
	if !v.allocated {
		return errs.ErrUninitializedVector
	}
	if v.compressed {
		return errs.ErrInvalidOperation
	}

	return nil
}

// components reads the raw triple at a normalized index.
func (v *Vector) components(i int) (fixedpoint.Components, error) {
	var raw [numComponents]uint64
	for k, seq := range v.comps {
		val, err := seq.At(i)
		if err != nil {
			return fixedpoint.Components{}, fmt.Errorf("read %s component %d: %w", componentName(k), i, err)
		}
		raw[k] = val
	}

	return fixedpoint.Components{
		Sign:     format.Sign(raw[compSign]), //nolint:gosec
		Integer:  raw[compInteger],
		Fraction: raw[compFraction],
	}, nil
}

// store writes a triple into the fixed sequences. The vector must be writable.
func (v *Vector) store(i int, c fixedpoint.Components) error {
	vals := [numComponents]uint64{uint64(c.Sign), c.Integer, c.Fraction}
	for k, seq := range v.comps {
		fixed, ok := seq.(backend.Fixed)
		if !ok {
			return errs.ErrInvalidOperation
		}
		if err := fixed.Set(i, vals[k]); err != nil {
			return fmt.Errorf("store %s component %d: %w", componentName(k), i, err)
		}
	}

	return nil
}

func componentName(k int) string {
	switch k {
	case compSign:
		return "sign"
	case compInteger:
		return "integer"
	default:
		return "fraction"
	}
}
