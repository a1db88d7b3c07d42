package vector

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/arloliu/fixvec/backend"
	"github.com/arloliu/fixvec/errs"
	"github.com/arloliu/fixvec/fixedpoint"
	"github.com/arloliu/fixvec/format"
)

// build creates a filled, uncompressed vector.
func build(t *testing.T, values []float64, opts ...Option) *Vector {
	t.Helper()

	v, err := New(opts...)
	require.NoError(t, err)
	require.NoError(t, v.Allocate(len(values)))
	require.NoError(t, v.Fill(values))

	return v
}

func requireFloats(t *testing.T, want []float64, got []float64, precision int) {
	t.Helper()

	require.Len(t, got, len(want))
	for i := range want {
		if math.IsNaN(want[i]) {
			require.True(t, math.IsNaN(got[i]), "index %d: want NaN, got %v", i, got[i])
			continue
		}
		require.InDelta(t, want[i], got[i], fixedpoint.Tolerance(precision), "index %d", i)
	}
}

func TestNew(t *testing.T) {
	v, err := New()
	require.NoError(t, err)
	require.Equal(t, DefaultPrecision, v.Precision())
	require.Equal(t, DefaultBitWidth, v.BitWidth())
	require.Equal(t, format.ViewCompressed, v.ViewMode())
	require.False(t, v.Allocated())
	require.False(t, v.Compressed())
	require.Zero(t, v.Len())

	v, err = New(WithPrecision(2), WithBitWidth(format.Width16), WithViewMode(format.ViewDecompressed))
	require.NoError(t, err)
	require.Equal(t, 2, v.Precision())
	require.Equal(t, format.Width16, v.BitWidth())
	require.Equal(t, format.ViewDecompressed, v.ViewMode())

	tests := []struct {
		name string
		opts []Option
	}{
		{name: "negative precision", opts: []Option{WithPrecision(-1)}},
		{name: "unsupported width", opts: []Option{WithBitWidth(24)}},
		{name: "precision above width", opts: []Option{WithPrecision(9), WithBitWidth(format.Width8)}},
		{name: "unknown view mode", opts: []Option{WithViewMode(7)}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(tt.opts...)
			require.ErrorIs(t, err, errs.ErrConfiguration)
		})
	}
}

func TestVector_ThreeSampleScenario(t *testing.T) {
	values := []float64{-12.56, 0.01, 98.43}
	v := build(t, values, WithPrecision(2), WithBitWidth(format.Width16))

	size, err := v.SizeInBytes()
	require.NoError(t, err)
	require.Equal(t, 18, size)

	got, err := v.Floats()
	require.NoError(t, err)
	requireFloats(t, values, got, 2)

	sign, err := v.Signs().At(0)
	require.NoError(t, err)
	require.Equal(t, uint64(format.SignNegative), sign)

	integer, err := v.Integers().At(0)
	require.NoError(t, err)
	require.Equal(t, uint64(12), integer)

	fraction, err := v.Fractions().At(0)
	require.NoError(t, err)
	require.Equal(t, uint64(56), fraction)
}

func TestVector_Lifecycle(t *testing.T) {
	v, err := New()
	require.NoError(t, err)

	_, err = v.SizeInBytes()
	require.ErrorIs(t, err, errs.ErrNotAllocated)
	require.ErrorIs(t, v.Fill([]float64{1}), errs.ErrUninitializedVector)
	require.ErrorIs(t, v.Set(0, 1), errs.ErrUninitializedVector)
	require.ErrorIs(t, v.Compress(backend.NewBitPack()), errs.ErrNotAllocated)

	require.NoError(t, v.Allocate(4))
	require.Equal(t, 4, v.Len())
	for i := range 4 {
		got, err := v.Get(i)
		require.NoError(t, err)
		require.Zero(t, got)
	}

	require.ErrorIs(t, v.Allocate(-1), errs.ErrInvalidParameter)

	v.Destroy()
	require.Zero(t, v.Len())
	require.False(t, v.Allocated())
	require.Nil(t, v.Signs())
	_, err = v.SizeInBytes()
	require.ErrorIs(t, err, errs.ErrNotAllocated)

	// a destroyed vector can be reused
	require.NoError(t, v.Allocate(2))
	require.NoError(t, v.Fill([]float64{1.5, 2.5}))
}

func TestVector_Fill(t *testing.T) {
	src := []float64{0, 1.1, 2.2, 3.3, 4.4, 5.5, 6.6, 7.7, 8.8, 9.9}

	t.Run("range clamps bounds", func(t *testing.T) {
		v, err := New(WithPrecision(1))
		require.NoError(t, err)
		require.NoError(t, v.Allocate(10))

		require.NoError(t, v.FillRange(src, -3, 4))
		require.Equal(t, 4, v.Len())

		got, err := v.Floats()
		require.NoError(t, err)
		requireFloats(t, src[:4], got, 1)

		require.NoError(t, v.FillRange(src, 8, 100))
		require.Equal(t, 2, v.Len())
		got, err = v.Floats()
		require.NoError(t, err)
		requireFloats(t, src[8:], got, 1)
	})

	t.Run("refill grows back to the allocated size", func(t *testing.T) {
		v, err := New(WithPrecision(1))
		require.NoError(t, err)
		require.NoError(t, v.Allocate(5))

		require.NoError(t, v.FillRange(src, 1, 3))
		require.Equal(t, 2, v.Len())
		size, err := v.SizeInBytes()
		require.NoError(t, err)
		require.Equal(t, 2*3*8, size)

		require.NoError(t, v.Fill(src[:5]))
		require.Equal(t, 5, v.Len())
		got, err := v.Floats()
		require.NoError(t, err)
		requireFloats(t, src[:5], got, 1)

		require.ErrorIs(t, v.Fill(src[:6]), errs.ErrLengthMismatch)
		require.Equal(t, 5, v.Len())
	})

	t.Run("range starts at slot zero", func(t *testing.T) {
		v, err := New(WithPrecision(1))
		require.NoError(t, err)
		require.NoError(t, v.Allocate(3))

		require.NoError(t, v.FillRange(src, 7, 10))
		got, err := v.Floats()
		require.NoError(t, err)
		requireFloats(t, []float64{7.7, 8.8, 9.9}, got, 1)
	})

	t.Run("longer than vector", func(t *testing.T) {
		v, err := New()
		require.NoError(t, err)
		require.NoError(t, v.Allocate(3))

		require.ErrorIs(t, v.Fill(src), errs.ErrLengthMismatch)
		require.Equal(t, 3, v.Len())
	})

	t.Run("overflow leaves vector unchanged", func(t *testing.T) {
		v := build(t, []float64{1, 2, 3}, WithPrecision(1), WithBitWidth(format.Width8))

		require.ErrorIs(t, v.Fill([]float64{4, 300, 5}), errs.ErrPrecisionOverflow)

		got, err := v.Floats()
		require.NoError(t, err)
		require.Equal(t, []float64{1, 2, 3}, got)
	})

	t.Run("compressed", func(t *testing.T) {
		v := build(t, []float64{1, 2})
		require.NoError(t, v.Compress(backend.NewBitPack()))

		require.ErrorIs(t, v.Fill([]float64{3, 4}), errs.ErrInvalidOperation)
	})
}

func TestVector_FillFrom(t *testing.T) {
	src := build(t, []float64{-1.25, 2.125, 3.5, math.NaN(), 5}, WithPrecision(3), WithBitWidth(format.Width32))
	require.NoError(t, src.Compress(backend.NewBitPack()))

	t.Run("same precision copies triples", func(t *testing.T) {
		dst, err := New(WithPrecision(3), WithBitWidth(format.Width16))
		require.NoError(t, err)
		require.NoError(t, dst.Allocate(5))

		require.NoError(t, dst.FillFrom(src, 1, 4))
		require.Equal(t, 3, dst.Len())
		require.False(t, dst.Compressed())

		got, err := dst.Floats()
		require.NoError(t, err)
		requireFloats(t, []float64{2.125, 3.5, math.NaN()}, got, 3)
	})

	t.Run("other precision re-encodes", func(t *testing.T) {
		dst, err := New(WithPrecision(2))
		require.NoError(t, err)
		require.NoError(t, dst.Allocate(5))

		require.NoError(t, dst.FillFrom(src, 0, math.MaxInt))
		got, err := dst.Floats()
		require.NoError(t, err)
		requireFloats(t, []float64{-1.25, 2.12, 3.5, math.NaN(), 5}, got, 2)
	})

	t.Run("narrower width overflows", func(t *testing.T) {
		wide := build(t, []float64{1000.5}, WithPrecision(1), WithBitWidth(format.Width16))
		dst, err := New(WithPrecision(1), WithBitWidth(format.Width8))
		require.NoError(t, err)
		require.NoError(t, dst.Allocate(1))

		require.ErrorIs(t, dst.FillFrom(wide, 0, 1), errs.ErrPrecisionOverflow)
	})

	t.Run("nil source", func(t *testing.T) {
		dst := build(t, []float64{1})
		require.ErrorIs(t, dst.FillFrom(nil, 0, 1), errs.ErrInvalidParameter)
	})
}

func TestVector_GetSet(t *testing.T) {
	v := build(t, []float64{1.5, -2.5, math.NaN()}, WithPrecision(1), WithBitWidth(format.Width8))

	got, err := v.Get(-1)
	require.NoError(t, err)
	require.True(t, math.IsNaN(got))

	got, err = v.Get(-3)
	require.NoError(t, err)
	require.Equal(t, 1.5, got)

	for _, i := range []int{3, -4, 100} {
		_, err = v.Get(i)
		require.ErrorIs(t, err, errs.ErrIndexOutOfRange)
	}

	require.NoError(t, v.Set(-1, 7.25))
	got, err = v.Get(2)
	require.NoError(t, err)
	require.Equal(t, 7.2, got)

	require.ErrorIs(t, v.Set(3, 1), errs.ErrIndexOutOfRange)
	require.ErrorIs(t, v.Set(0, 256), errs.ErrPrecisionOverflow)
	got, err = v.Get(0)
	require.NoError(t, err)
	require.Equal(t, 1.5, got)

	require.NoError(t, v.Compress(backend.NewBitPack()))
	require.ErrorIs(t, v.Set(0, 1), errs.ErrInvalidOperation)

	got, err = v.Get(1)
	require.NoError(t, err)
	require.Equal(t, -2.5, got)
}

func TestVector_Compress(t *testing.T) {
	values := make([]float64, 1500)
	for i := range values {
		values[i] = math.Sin(float64(i)/50) * 100
	}
	values[17] = math.NaN()

	reg := backend.NewDefaultRegistry()
	for _, name := range reg.Names() {
		b, err := reg.Resolve(name)
		require.NoError(t, err)
		if b == nil {
			continue
		}

		t.Run(name, func(t *testing.T) {
			v := build(t, values, WithPrecision(3), WithBitWidth(format.Width32))
			before, err := v.Floats()
			require.NoError(t, err)

			require.NoError(t, v.Compress(b))
			require.True(t, v.Compressed())
			require.Equal(t, name, v.BackendName())
			require.Equal(t, len(values), v.Len())

			after, err := v.Floats()
			require.NoError(t, err)
			requireFloats(t, before, after, 3)

			size, err := v.SizeInBytes()
			require.NoError(t, err)
			require.Positive(t, size)

			require.ErrorIs(t, v.Compress(b), errs.ErrAlreadyCompressed)
		})
	}
}

func TestVector_CompressShrinks(t *testing.T) {
	values := make([]float64, 4096)
	for i := range values {
		values[i] = float64(i%100) / 10
	}
	v := build(t, values, WithPrecision(1))

	raw, err := v.SizeInBytes()
	require.NoError(t, err)
	require.Equal(t, 3*len(values)*8, raw)

	require.NoError(t, v.Compress(backend.NewBitPack()))
	packed, err := v.SizeInBytes()
	require.NoError(t, err)
	require.Less(t, packed, raw/4)
}

func TestVector_CompressIsAtomic(t *testing.T) {
	errBoom := errors.New("boom")
	calls := 0
	flaky := backend.NewFunc("flaky", func(src backend.Sequence, width format.BitWidth) (backend.Sequence, error) {
		calls++
		if calls == 3 {
			return nil, errBoom
		}

		return backend.NewBitPack().Encode(src, width)
	})

	v := build(t, []float64{1, 2, 3})
	require.ErrorIs(t, v.Compress(flaky), errBoom)
	require.False(t, v.Compressed())
	require.Empty(t, v.BackendName())

	// still writable and unchanged
	require.NoError(t, v.Set(0, 10))
	got, err := v.Floats()
	require.NoError(t, err)
	require.Equal(t, []float64{10, 2, 3}, got)

	require.ErrorIs(t, v.Compress(nil), errs.ErrInvalidParameter)
}

func TestVector_Clone(t *testing.T) {
	v := build(t, []float64{1.5, -2.75, math.NaN()}, WithPrecision(2))
	require.NoError(t, v.Compress(backend.NewBitPack()))

	c, err := v.Clone()
	require.NoError(t, err)
	require.False(t, c.Compressed())
	require.Equal(t, v.Precision(), c.Precision())
	require.Equal(t, v.BitWidth(), c.BitWidth())

	want, err := v.Floats()
	require.NoError(t, err)
	got, err := c.Floats()
	require.NoError(t, err)
	requireFloats(t, want, got, 2)

	require.NoError(t, c.Set(0, 9))
	orig, err := v.Get(0)
	require.NoError(t, err)
	require.Equal(t, 1.5, orig)

	empty, err := New()
	require.NoError(t, err)
	ec, err := empty.Clone()
	require.NoError(t, err)
	require.False(t, ec.Allocated())
}

func TestVector_NaNPreserved(t *testing.T) {
	for _, width := range []format.BitWidth{format.Width8, format.Width16, format.Width32, format.Width64} {
		v := build(t, []float64{math.NaN()}, WithPrecision(0), WithBitWidth(width))
		got, err := v.Get(0)
		require.NoError(t, err)
		require.True(t, math.IsNaN(got))
	}
}

func TestVector_String(t *testing.T) {
	v := build(t, []float64{1}, WithPrecision(2), WithBitWidth(format.Width16))
	require.Equal(t, "Vector(len=1, precision=2, width=16, view=Compressed, raw)", v.String())

	require.NoError(t, v.Compress(backend.NewBitPack()))
	require.Contains(t, v.String(), "bitpack")
}

func BenchmarkVector_Fill(b *testing.B) {
	values := make([]float64, 10000)
	for i := range values {
		values[i] = math.Sin(float64(i)) * 1000
	}

	v, err := New(WithPrecision(4), WithBitWidth(format.Width32))
	require.NoError(b, err)

	b.ReportAllocs()
	for b.Loop() {
		_ = v.Allocate(len(values))
		_ = v.Fill(values)
	}
}

func BenchmarkVector_GetCompressed(b *testing.B) {
	values := make([]float64, 10000)
	for i := range values {
		values[i] = math.Sin(float64(i)) * 1000
	}

	v, err := New(WithPrecision(4), WithBitWidth(format.Width32))
	require.NoError(b, err)
	require.NoError(b, v.Allocate(len(values)))
	require.NoError(b, v.Fill(values))
	require.NoError(b, v.Compress(backend.NewBitPack()))

	i := 0
	b.ReportAllocs()
	for b.Loop() {
		_, _ = v.Get(i % len(values))
		i++
	}
}
