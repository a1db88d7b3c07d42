package backend

import (
	"fmt"
	"math/bits"

	"github.com/arloliu/fixvec/errs"
	"github.com/arloliu/fixvec/format"
	"github.com/arloliu/fixvec/internal/pool"
)

// bitPackHeaderSize accounts for the element count (8 bytes) and the packed
// bit width (1 byte) a serialized packed sequence carries.
const bitPackHeaderSize = 9

// BitPack stores every element in the minimum number of bits needed by the
// largest element of the sequence, with O(1) random access.
//
// Sign components need at most 2 bits and fractions at precision p need
// bits.Len(10^p-1), so this backend alone typically shrinks a 64-bit vector
// several times over.
type BitPack struct{}

var _ Backend = BitPack{}

// NewBitPack creates a bit-packing backend.
func NewBitPack() BitPack {
	return BitPack{}
}

// Name returns "bitpack".
func (BitPack) Name() string {
	return BitPackName
}

// Encode packs src into ceil(n*b/64) words, where b is the bit length of the
// largest element.
func (BitPack) Encode(src Sequence, width format.BitWidth) (Sequence, error) {
	n := src.Len()

	values, cleanup := pool.GetUint64Slice(n)
	defer cleanup()

	var maxVal uint64
	for i := range n {
		v, err := src.At(i)
		if err != nil {
			return nil, err
		}
		if v > width.Max() {
			return nil, fmt.Errorf("%w: element %d (%d) exceeds %d bits", errs.ErrPrecisionOverflow, i, v, width)
		}
		values[i] = v
		maxVal = max(maxVal, v)
	}

	width64 := bits.Len64(maxVal)
	packed := &packedSequence{
		words: make([]uint64, (n*width64+63)/64),
		bits:  width64,
		n:     n,
	}
	for i, v := range values {
		packed.set(i, v)
	}

	return packed, nil
}

type packedSequence struct {
	words []uint64
	bits  int
	n     int
}

func (p *packedSequence) Len() int {
	return p.n
}

func (p *packedSequence) At(i int) (uint64, error) {
	if i < 0 || i >= p.n {
		return 0, fmt.Errorf("%w: %d not in [0, %d)", errs.ErrIndexOutOfRange, i, p.n)
	}
	if p.bits == 0 {
		return 0, nil
	}

	off := i * p.bits
	w, shift := off/64, off%64

	v := p.words[w] >> shift
	if shift+p.bits > 64 {
		v |= p.words[w+1] << (64 - shift)
	}

	return v & (^uint64(0) >> (64 - p.bits)), nil
}

func (p *packedSequence) set(i int, v uint64) {
	if p.bits == 0 {
		return
	}

	off := i * p.bits
	w, shift := off/64, off%64

	p.words[w] |= v << shift
	if shift+p.bits > 64 {
		p.words[w+1] |= v >> (64 - shift)
	}
}

func (p *packedSequence) SizeInBytes() int {
	return len(p.words)*8 + bitPackHeaderSize
}
