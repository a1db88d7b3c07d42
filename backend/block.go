package backend

import (
	"encoding/binary"
	"fmt"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/arloliu/fixvec/compress"
	"github.com/arloliu/fixvec/endian"
	"github.com/arloliu/fixvec/errs"
	"github.com/arloliu/fixvec/format"
	"github.com/arloliu/fixvec/internal/hash"
	"github.com/arloliu/fixvec/internal/options"
	"github.com/arloliu/fixvec/internal/pool"
)

const (
	// DefaultBlockLen is the number of elements per compressed block.
	DefaultBlockLen = 512
	// DefaultCacheBlocks is the number of decoded blocks kept per sequence.
	DefaultCacheBlocks = 8

	// blockHeaderSize accounts for the element count and block length stored
	// with a serialized block sequence.
	blockHeaderSize = 16
	// blockChecksumSize is the xxhash64 stored per block.
	blockChecksumSize = 8
)

// blockLayout selects how a block of words is serialized before the codec runs.
type blockLayout uint8

const (
	// layoutFixed writes each element as a width-sized word.
	layoutFixed blockLayout = iota
	// layoutDelta writes the first element as a uvarint and each following
	// element as a zigzag uvarint of its difference to the previous one.
	layoutDelta
)

// BlockBackend splits a sequence into fixed-size blocks, serializes each block
// (fixed-width words or delta varints) and compresses it with a byte codec.
//
// Random access decodes one block and keeps it in a small LRU cache shared by
// all readers of the sequence. Each block carries an xxhash64 checksum that is
// verified before decompression.
//
// SizeInBytes of an encoded sequence is the sum of the compressed blocks plus
// 8 bytes of checksum per block and a 16 byte header.
type BlockBackend struct {
	name        string
	layout      blockLayout
	codec       compress.Codec
	engine      endian.EndianEngine
	blockLen    int
	cacheBlocks int
}

var _ Backend = (*BlockBackend)(nil)

// BlockOption configures a BlockBackend.
type BlockOption = options.Option[*BlockBackend]

// WithBlockLen sets the number of elements per block.
func WithBlockLen(n int) BlockOption {
	return options.New(func(b *BlockBackend) error {
		if n <= 0 {
			return fmt.Errorf("%w: block length %d must be positive", errs.ErrInvalidParameter, n)
		}
		b.blockLen = n

		return nil
	})
}

// WithCacheBlocks sets how many decoded blocks each sequence caches.
func WithCacheBlocks(n int) BlockOption {
	return options.New(func(b *BlockBackend) error {
		if n <= 0 {
			return fmt.Errorf("%w: cache size %d must be positive", errs.ErrInvalidParameter, n)
		}
		b.cacheBlocks = n

		return nil
	})
}

// WithBigEndianBlocks serializes fixed-width words in big-endian order.
func WithBigEndianBlocks() BlockOption {
	return options.NoError(func(b *BlockBackend) {
		b.engine = endian.GetBigEndianEngine()
	})
}

// NewBlockBackend creates a backend that stores fixed-width word blocks
// compressed with the given codec.
func NewBlockBackend(name string, ct format.CompressionType, opts ...BlockOption) (*BlockBackend, error) {
	return newBlockBackend(name, layoutFixed, ct, opts...)
}

// NewDeltaBackend creates a backend that stores zigzag delta varint blocks,
// optionally compressed further with the given codec.
//
// Delta blocks suit sorted or slowly varying components such as the integer
// part of a smooth series or downsampled x coordinates.
func NewDeltaBackend(name string, ct format.CompressionType, opts ...BlockOption) (*BlockBackend, error) {
	return newBlockBackend(name, layoutDelta, ct, opts...)
}

func newBlockBackend(name string, layout blockLayout, ct format.CompressionType, opts ...BlockOption) (*BlockBackend, error) {
	codec, err := compress.CreateCodec(ct)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", errs.ErrInvalidParameter, err)
	}

	b := &BlockBackend{
		name:        name,
		layout:      layout,
		codec:       codec,
		engine:      endian.GetLittleEndianEngine(),
		blockLen:    DefaultBlockLen,
		cacheBlocks: DefaultCacheBlocks,
	}
	if err := options.Apply(b, opts...); err != nil {
		return nil, err
	}

	return b, nil
}

// Name returns the registered name of the backend.
func (b *BlockBackend) Name() string {
	return b.name
}

// Encode serializes and compresses src block by block.
func (b *BlockBackend) Encode(src Sequence, width format.BitWidth) (Sequence, error) {
	if !width.Valid() {
		return nil, fmt.Errorf("%w: bit width %d", errs.ErrConfiguration, width)
	}

	n := src.Len()
	cache, err := lru.New[int, []uint64](b.cacheBlocks)
	if err != nil {
		return nil, fmt.Errorf("create block cache: %w", err)
	}

	seq := &blockSequence{
		backend: b,
		width:   width,
		n:       n,
		blocks:  make([]block, 0, (n+b.blockLen-1)/b.blockLen),
		cache:   cache,
	}

	words, cleanup := pool.GetUint64Slice(b.blockLen)
	defer cleanup()

	buf := pool.GetBlockBuffer()
	defer pool.PutBlockBuffer(buf)

	for start := 0; start < n; start += b.blockLen {
		end := min(start+b.blockLen, n)
		chunk := words[:end-start]

		for i := range chunk {
			v, err := src.At(start + i)
			if err != nil {
				return nil, err
			}
			if v > width.Max() {
				return nil, fmt.Errorf("%w: element %d (%d) exceeds %d bits", errs.ErrPrecisionOverflow, start+i, v, width)
			}
			chunk[i] = v
		}

		buf.Reset()
		b.serialize(buf, chunk, width)

		payload, err := b.codec.Compress(buf.Bytes())
		if err != nil {
			return nil, fmt.Errorf("%s: compress block %d: %w", b.name, len(seq.blocks), err)
		}

		seq.blocks = append(seq.blocks, block{payload: payload, sum: hash.Checksum(payload)})
	}

	return seq, nil
}

func (b *BlockBackend) serialize(buf *pool.ByteBuffer, chunk []uint64, width format.BitWidth) {
	switch b.layout {
	case layoutDelta:
		buf.Grow(len(chunk) * binary.MaxVarintLen64)
		var prev uint64
		for i, v := range chunk {
			if i == 0 {
				buf.B = binary.AppendUvarint(buf.B, v)
			} else {
				buf.B = binary.AppendUvarint(buf.B, zigzag(int64(v-prev))) //nolint:gosec
			}
			prev = v
		}
	default:
		buf.Grow(len(chunk) * width.Bytes())
		for _, v := range chunk {
			buf.B = endian.AppendWord(b.engine, buf.B, width, v)
		}
	}
}

func (b *BlockBackend) deserialize(data []byte, dst []uint64, width format.BitWidth) error {
	switch b.layout {
	case layoutDelta:
		var prev uint64
		for i := range dst {
			raw, n := binary.Uvarint(data)
			if n <= 0 {
				return fmt.Errorf("%w: truncated varint at element %d", errs.ErrCorruptBlock, i)
			}
			data = data[n:]

			if i == 0 {
				prev = raw
			} else {
				prev += uint64(unzigzag(raw)) //nolint:gosec
			}
			dst[i] = prev
		}
	default:
		size := width.Bytes()
		if len(data) != len(dst)*size {
			return fmt.Errorf("%w: block holds %d bytes, want %d", errs.ErrCorruptBlock, len(data), len(dst)*size)
		}
		for i := range dst {
			dst[i] = endian.Word(b.engine, data[i*size:], width)
		}
	}

	return nil
}

type block struct {
	payload []byte
	sum     uint64
}

type blockSequence struct {
	backend *BlockBackend
	width   format.BitWidth
	n       int
	blocks  []block
	cache   *lru.Cache[int, []uint64]
}

func (s *blockSequence) Len() int {
	return s.n
}

func (s *blockSequence) At(i int) (uint64, error) {
	if i < 0 || i >= s.n {
		return 0, fmt.Errorf("%w: %d not in [0, %d)", errs.ErrIndexOutOfRange, i, s.n)
	}

	blockLen := s.backend.blockLen
	idx := i / blockLen

	values, ok := s.cache.Get(idx)
	if !ok {
		var err error
		values, err = s.decodeBlock(idx)
		if err != nil {
			return 0, err
		}
		s.cache.Add(idx, values)
	}

	return values[i%blockLen], nil
}

func (s *blockSequence) decodeBlock(idx int) ([]uint64, error) {
	blk := s.blocks[idx]
	if !hash.Verify(blk.payload, blk.sum) {
		return nil, fmt.Errorf("%w: block %d checksum mismatch", errs.ErrCorruptBlock, idx)
	}

	data, err := s.backend.codec.Decompress(blk.payload)
	if err != nil {
		return nil, fmt.Errorf("%w: block %d: %w", errs.ErrCorruptBlock, idx, err)
	}

	blockLen := s.backend.blockLen
	count := min(blockLen, s.n-idx*blockLen)
	values := make([]uint64, count)
	if err := s.backend.deserialize(data, values, s.width); err != nil {
		return nil, fmt.Errorf("block %d: %w", idx, err)
	}

	return values, nil
}

func (s *blockSequence) SizeInBytes() int {
	size := blockHeaderSize
	for _, blk := range s.blocks {
		size += len(blk.payload) + blockChecksumSize
	}

	return size
}

func zigzag(v int64) uint64 {
	return uint64((v << 1) ^ (v >> 63)) //nolint:gosec
}

func unzigzag(v uint64) int64 {
	return int64(v>>1) ^ -int64(v&1) //nolint:gosec
}
