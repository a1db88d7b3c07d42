// Package errs defines the sentinel errors returned by fixvec packages.
//
// Call sites wrap these sentinels with context, so callers should match them
// with errors.Is rather than comparing error values directly:
//
//	if errors.Is(err, errs.ErrPrecisionOverflow) {
//	    // widen the vector or lower the precision
//	}
package errs

import "errors"

// Configuration errors.
var (
	// ErrConfiguration indicates an invalid precision or bit width.
	ErrConfiguration = errors.New("invalid configuration")
	// ErrInvalidParameter indicates an invalid argument to a pipeline call.
	ErrInvalidParameter = errors.New("invalid parameter")
)

// Encoding errors.
var (
	// ErrPrecisionOverflow indicates a value that cannot be represented at the
	// configured precision and bit width.
	ErrPrecisionOverflow = errors.New("value does not fit configured precision and bit width")
)

// Vector access and lifecycle errors.
var (
	ErrIndexOutOfRange     = errors.New("index out of range")
	ErrLengthMismatch      = errors.New("length mismatch")
	ErrUnsupportedOperand  = errors.New("unsupported operand")
	ErrUninitializedVector = errors.New("vector not allocated, call Allocate first")
	ErrAlreadyCompressed   = errors.New("vector already compressed")
	ErrInvalidOperation    = errors.New("operation not supported on a compressed vector")
	ErrNotAllocated        = errors.New("vector not allocated or already destroyed")
)

// Resolution and capability errors.
var (
	ErrUnknownDownsampler       = errors.New("unknown downsampler")
	ErrUnknownCompressionMethod = errors.New("unknown compression method")
	// ErrInvalidSelection indicates a downsampler returned indices that are not
	// strictly ascending, out of range, or more than requested.
	ErrInvalidSelection = errors.New("invalid index selection")
	// ErrCorruptBlock indicates a compressed block failed its checksum or could not be decoded.
	ErrCorruptBlock = errors.New("corrupt compressed block")
)
