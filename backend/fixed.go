package backend

import (
	"fmt"

	"github.com/arloliu/fixvec/errs"
	"github.com/arloliu/fixvec/format"
)

// Fixed is a mutable fixed-width sequence, the uncompressed form of a component.
type Fixed interface {
	Sequence
	Width() format.BitWidth
	// Set stores v at index i. v must fit in Width() bits.
	Set(i int, v uint64) error
	// Resize sets the length to n, at most Cap. Shrinking keeps the storage,
	// so a later Resize can grow back up to Cap.
	Resize(n int) error
	// Cap returns the allocated number of elements.
	Cap() int
}

type word interface {
	~uint8 | ~uint16 | ~uint32 | ~uint64
}

type fixedSlice[T word] struct {
	data  []T
	width format.BitWidth
}

// NewFixed allocates n zero-valued elements stored in width bits each.
//
// The storage footprint is exactly n*width/8 bytes; SizeInBytes reports no
// container overhead.
func NewFixed(width format.BitWidth, n int) (Fixed, error) {
	if n < 0 {
		return nil, fmt.Errorf("%w: negative size %d", errs.ErrInvalidParameter, n)
	}

	switch width {
	case format.Width8:
		return &fixedSlice[uint8]{data: make([]uint8, n), width: width}, nil
	case format.Width16:
		return &fixedSlice[uint16]{data: make([]uint16, n), width: width}, nil
	case format.Width32:
		return &fixedSlice[uint32]{data: make([]uint32, n), width: width}, nil
	case format.Width64:
		return &fixedSlice[uint64]{data: make([]uint64, n), width: width}, nil
	default:
		return nil, fmt.Errorf("%w: bit width %d", errs.ErrConfiguration, width)
	}
}

func (s *fixedSlice[T]) Len() int {
	return len(s.data)
}

func (s *fixedSlice[T]) Width() format.BitWidth {
	return s.width
}

func (s *fixedSlice[T]) At(i int) (uint64, error) {
	if i < 0 || i >= len(s.data) {
		return 0, fmt.Errorf("%w: %d not in [0, %d)", errs.ErrIndexOutOfRange, i, len(s.data))
	}

	return uint64(s.data[i]), nil
}

func (s *fixedSlice[T]) Set(i int, v uint64) error {
	if i < 0 || i >= len(s.data) {
		return fmt.Errorf("%w: %d not in [0, %d)", errs.ErrIndexOutOfRange, i, len(s.data))
	}
	if v > s.width.Max() {
		return fmt.Errorf("%w: %d exceeds %d bits", errs.ErrPrecisionOverflow, v, s.width)
	}
	s.data[i] = T(v)

	return nil
}

func (s *fixedSlice[T]) Resize(n int) error {
	if n < 0 || n > cap(s.data) {
		return fmt.Errorf("%w: size %d not in [0, %d]", errs.ErrLengthMismatch, n, cap(s.data))
	}
	s.data = s.data[:n]

	return nil
}

func (s *fixedSlice[T]) Cap() int {
	return cap(s.data)
}

func (s *fixedSlice[T]) SizeInBytes() int {
	return len(s.data) * s.width.Bytes()
}
