package hash

import "github.com/cespare/xxhash/v2"

// Checksum computes the xxHash64 of a compressed block payload.
func Checksum(data []byte) uint64 {
	return xxhash.Sum64(data)
}

// Verify reports whether data hashes to sum.
func Verify(data []byte, sum uint64) bool {
	return xxhash.Sum64(data) == sum
}
