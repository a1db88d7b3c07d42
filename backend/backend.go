// Package backend defines the compression backend capability used by encoded
// vectors, together with the plain fixed-width component sequence and a set of
// default backends.
//
// A Backend turns a fixed-width integer Sequence into an opaque compressed
// Sequence that still supports random access and a size query:
//
//	packed, err := backend.NewBitPack().Encode(src, format.Width32)
//	v, err := packed.At(17)
//	size := packed.SizeInBytes()
//
// Backends are resolved by name through a Registry, or passed directly as a
// value; NewFunc adapts a plain function.
package backend

import "github.com/arloliu/fixvec/format"

// Sequence is read-only random access over one component sequence.
//
// Implementations returned by a Backend must be safe for concurrent reads.
type Sequence interface {
	// Len returns the number of elements.
	Len() int
	// At returns the element at index i, in [0, Len()).
	At(i int) (uint64, error)
	// SizeInBytes returns the storage footprint, including any container overhead.
	SizeInBytes() int
}

// Backend compresses a fixed-width integer sequence.
//
// Encode must not retain or modify src. Every value of src is at most width.Max().
type Backend interface {
	Name() string
	Encode(src Sequence, width format.BitWidth) (Sequence, error)
}

// Func adapts an encode function to the Backend interface.
type Func struct {
	name string
	fn   func(src Sequence, width format.BitWidth) (Sequence, error)
}

var _ Backend = (*Func)(nil)

// NewFunc wraps fn as a named Backend.
func NewFunc(name string, fn func(src Sequence, width format.BitWidth) (Sequence, error)) *Func {
	return &Func{name: name, fn: fn}
}

// Name returns the backend name.
func (f *Func) Name() string {
	return f.name
}

// Encode calls the wrapped function.
func (f *Func) Encode(src Sequence, width format.BitWidth) (Sequence, error) {
	return f.fn(src, width)
}
