// Package endian serializes fixed-width component values to bytes.
//
// Block backends lay out component sequences as contiguous fixed-width words
// before handing them to a byte codec. The EndianEngine combines the standard
// ByteOrder and AppendByteOrder interfaces, and the width helpers pick the right
// word size for a format.BitWidth.
//
//	engine := endian.GetLittleEndianEngine()
//	buf = endian.AppendWord(engine, buf, format.Width16, 513)
//	v := endian.Word(engine, buf, format.Width16)  // 513
//
// All functions are safe for concurrent use.
package endian

import (
	"encoding/binary"

	"github.com/arloliu/fixvec/format"
)

// EndianEngine combines ByteOrder and AppendByteOrder from encoding/binary.
//
// binary.LittleEndian and binary.BigEndian both satisfy it.
type EndianEngine interface {
	binary.ByteOrder
	binary.AppendByteOrder
}

// GetLittleEndianEngine returns the little-endian engine, the default for block payloads.
func GetLittleEndianEngine() EndianEngine {
	return binary.LittleEndian
}

// GetBigEndianEngine returns the big-endian engine.
func GetBigEndianEngine() EndianEngine {
	return binary.BigEndian
}

// AppendWord appends v as a width-sized word. Bits above width are dropped, so
// callers must range-check v first.
func AppendWord(engine EndianEngine, dst []byte, width format.BitWidth, v uint64) []byte {
	switch width {
	case format.Width8:
		return append(dst, byte(v))
	case format.Width16:
		return engine.AppendUint16(dst, uint16(v)) //nolint:gosec
	case format.Width32:
		return engine.AppendUint32(dst, uint32(v)) //nolint:gosec
	default:
		return engine.AppendUint64(dst, v)
	}
}

// Word reads one width-sized word from the start of b.
//
// Panics if b is shorter than the word size.
func Word(engine EndianEngine, b []byte, width format.BitWidth) uint64 {
	switch width {
	case format.Width8:
		return uint64(b[0])
	case format.Width16:
		return uint64(engine.Uint16(b))
	case format.Width32:
		return uint64(engine.Uint32(b))
	default:
		return engine.Uint64(b)
	}
}
