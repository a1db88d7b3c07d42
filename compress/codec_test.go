package compress

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/arloliu/fixvec/format"
)

// blockData builds a serialized block of little-endian 16-bit words, shaped like
// the integer part of a slowly varying series.
func blockData(n int) []byte {
	data := make([]byte, 0, n*2)
	for i := range n {
		v := uint16(1000 + i/10) //nolint:gosec
		data = append(data, byte(v), byte(v>>8))
	}

	return data
}

func incompressible(n int) []byte {
	data := make([]byte, n)
	for i := range data {
		data[i] = byte((i*31 + i*i*7 + i*i*i*3) % 256)
	}

	return data
}

func TestCreateCodec(t *testing.T) {
	tests := []struct {
		ct      format.CompressionType
		want    Codec
		wantErr bool
	}{
		{ct: format.CompressionNone, want: NoOpCompressor{}},
		{ct: format.CompressionZstd, want: ZstdCompressor{}},
		{ct: format.CompressionS2, want: S2Compressor{}},
		{ct: format.CompressionLZ4, want: LZ4Compressor{}},
		{ct: format.CompressionType(0xFF), wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.ct.String(), func(t *testing.T) {
			codec, err := CreateCodec(tt.ct)
			if tt.wantErr {
				require.Error(t, err)
				require.Nil(t, codec)

				return
			}
			require.NoError(t, err)
			require.IsType(t, tt.want, codec)
		})
	}
}

func TestCodecs_RoundTrip(t *testing.T) {
	codecs := map[string]Codec{
		"none": NewNoOpCompressor(),
		"zstd": NewZstdCompressor(),
		"s2":   NewS2Compressor(),
		"lz4":  NewLZ4Compressor(),
	}

	inputs := map[string][]byte{
		"single byte":    {42},
		"short":          []byte("fixvec"),
		"block":          blockData(1024),
		"zeros":          make([]byte, 4096),
		"incompressible": incompressible(2048),
	}

	for codecName, codec := range codecs {
		for inputName, input := range inputs {
			t.Run(codecName+"/"+inputName, func(t *testing.T) {
				compressed, err := codec.Compress(input)
				require.NoError(t, err)

				out, err := codec.Decompress(compressed)
				require.NoError(t, err)
				require.Equal(t, input, out)
			})
		}
	}
}

func TestCodecs_Empty(t *testing.T) {
	for _, codec := range []Codec{NewNoOpCompressor(), NewZstdCompressor(), NewS2Compressor(), NewLZ4Compressor()} {
		compressed, err := codec.Compress(nil)
		require.NoError(t, err)
		require.Empty(t, compressed)

		out, err := codec.Decompress(nil)
		require.NoError(t, err)
		require.Empty(t, out)
	}
}

func TestCodecs_CompressBlock(t *testing.T) {
	data := blockData(4096)

	for _, codec := range []Codec{NewZstdCompressor(), NewS2Compressor(), NewLZ4Compressor()} {
		compressed, err := codec.Compress(data)
		require.NoError(t, err)
		require.Less(t, len(compressed), len(data)/2)
	}
}

func TestNoOpCompressor_CopiesInput(t *testing.T) {
	data := []byte{1, 2, 3}

	compressed, err := NewNoOpCompressor().Compress(data)
	require.NoError(t, err)

	data[0] = 99
	require.Equal(t, byte(1), compressed[0])
}

func TestCodecs_CorruptInput(t *testing.T) {
	garbage := []byte{0xFF, 0xFE, 0xFD, 0xFC, 0xFB, 0xFA, 0x00, 0x01}

	_, err := NewZstdCompressor().Decompress(garbage)
	require.Error(t, err)

	_, err = NewS2Compressor().Decompress(garbage)
	require.Error(t, err)
}

func TestLiteralBlock_Decodes(t *testing.T) {
	for _, n := range []int{1, 14, 15, 16, 269, 270, 1000} {
		data := incompressible(n)
		out, err := NewLZ4Compressor().Decompress(literalBlock(data))
		require.NoError(t, err, "n=%d", n)
		require.Equal(t, data, out, "n=%d", n)
	}
}

func BenchmarkCodecs_Compress(b *testing.B) {
	data := blockData(1024)

	for name, codec := range map[string]Codec{
		"zstd": NewZstdCompressor(),
		"s2":   NewS2Compressor(),
		"lz4":  NewLZ4Compressor(),
	} {
		b.Run(name, func(b *testing.B) {
			b.SetBytes(int64(len(data)))
			for b.Loop() {
				_, _ = codec.Compress(data)
			}
		})
	}
}
