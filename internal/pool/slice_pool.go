package pool

import "sync"

var (
	uint64SlicePool = sync.Pool{
		New: func() any { return &[]uint64{} },
	}
	float64SlicePool = sync.Pool{
		New: func() any { return &[]float64{} },
	}
)

// GetUint64Slice retrieves a uint64 slice of length size from the pool.
//
// The contents are not zeroed. The returned cleanup function must be called
// (typically with defer) to hand the slice back.
//
// Example:
//
//	words, cleanup := pool.GetUint64Slice(blockLen)
//	defer cleanup()
func GetUint64Slice(size int) ([]uint64, func()) {
	ptr, _ := uint64SlicePool.Get().(*[]uint64)
	slice := *ptr

	if cap(slice) < size {
		slice = make([]uint64, size)
	} else {
		slice = slice[:size]
	}
	*ptr = slice

	return slice, func() { uint64SlicePool.Put(ptr) }
}

// GetFloat64Slice retrieves a float64 slice of length size from the pool.
//
// The contents are not zeroed. The returned cleanup function must be called
// to hand the slice back.
func GetFloat64Slice(size int) ([]float64, func()) {
	ptr, _ := float64SlicePool.Get().(*[]float64)
	slice := *ptr

	if cap(slice) < size {
		slice = make([]float64, size)
	} else {
		slice = slice[:size]
	}
	*ptr = slice

	return slice, func() { float64SlicePool.Put(ptr) }
}
