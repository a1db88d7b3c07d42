package format

type (
	BitWidth        uint8
	Sign            uint8
	ViewMode        uint8
	CompressionType uint8
)

const (
	Width8  BitWidth = 8  // Width8 stores each component in one byte.
	Width16 BitWidth = 16 // Width16 stores each component in two bytes.
	Width32 BitWidth = 32 // Width32 stores each component in four bytes.
	Width64 BitWidth = 64 // Width64 stores each component in eight bytes.

	SignNegative    Sign = 0 // SignNegative marks a value below zero.
	SignNonNegative Sign = 1 // SignNonNegative marks zero or a positive value.
	SignNaN         Sign = 2 // SignNaN marks a not-a-number sample; magnitudes are ignored.

	// ViewCompressed makes bulk reads return a new encoded vector. It is the zero value.
	ViewCompressed ViewMode = 0
	// ViewDecompressed makes bulk reads materialize float64 values.
	ViewDecompressed ViewMode = 1

	CompressionNone CompressionType = 0x1 // CompressionNone represents no compression.
	CompressionZstd CompressionType = 0x2 // CompressionZstd represents Zstandard compression.
	CompressionS2   CompressionType = 0x3 // CompressionS2 represents S2 compression.
	CompressionLZ4  CompressionType = 0x4 // CompressionLZ4 represents LZ4 compression.
)

// Valid reports whether w is one of the supported component widths.
func (w BitWidth) Valid() bool {
	switch w {
	case Width8, Width16, Width32, Width64:
		return true
	default:
		return false
	}
}

// Bytes returns the storage size of one component, or 0 for an unsupported width.
func (w BitWidth) Bytes() int {
	if !w.Valid() {
		return 0
	}

	return int(w) / 8
}

// Max returns the largest magnitude representable in w bits.
func (w BitWidth) Max() uint64 {
	if w >= Width64 {
		return ^uint64(0)
	}

	return (uint64(1) << w) - 1
}

func (w BitWidth) String() string {
	switch w {
	case Width8:
		return "8"
	case Width16:
		return "16"
	case Width32:
		return "32"
	case Width64:
		return "64"
	default:
		return "Unknown"
	}
}

// Valid reports whether s is one of the three sign codes.
func (s Sign) Valid() bool {
	return s <= SignNaN
}

func (s Sign) String() string {
	switch s {
	case SignNegative:
		return "Negative"
	case SignNonNegative:
		return "NonNegative"
	case SignNaN:
		return "NaN"
	default:
		return "Unknown"
	}
}

// Valid reports whether m is ViewCompressed or ViewDecompressed.
func (m ViewMode) Valid() bool {
	return m == ViewCompressed || m == ViewDecompressed
}

func (m ViewMode) String() string {
	switch m {
	case ViewCompressed:
		return "Compressed"
	case ViewDecompressed:
		return "Decompressed"
	default:
		return "Unknown"
	}
}

func (c CompressionType) String() string {
	switch c {
	case CompressionNone:
		return "None"
	case CompressionZstd:
		return "Zstd"
	case CompressionS2:
		return "S2"
	case CompressionLZ4:
		return "LZ4"
	default:
		return "Unknown"
	}
}
