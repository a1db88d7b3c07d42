package pipeline

import (
	"bytes"
	"context"
	"log/slog"
	"math"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/arloliu/fixvec/backend"
	"github.com/arloliu/fixvec/downsample"
	"github.com/arloliu/fixvec/errs"
	"github.com/arloliu/fixvec/format"
	"github.com/arloliu/fixvec/vector"
)

func series(n int) (x, y []float64) {
	x = make([]float64, n)
	y = make([]float64, n)
	for i := range n {
		x[i] = float64(i)
		y[i] = math.Round(math.Sin(float64(i)/25)*1000) / 100
	}

	return x, y
}

func decode(t *testing.T, v *vector.Vector) []float64 {
	t.Helper()

	out, err := v.Floats()
	require.NoError(t, err)

	return out
}

func TestPipeline_EveryNth(t *testing.T) {
	x, y := series(1000)
	p, err := New()
	require.NoError(t, err)

	res, err := p.Downsample(context.Background(), x, y, 10, WithMethod(downsample.EveryNthName))
	require.NoError(t, err)

	require.Equal(t, []float64{0, 100, 200, 300, 400, 500, 600, 700, 800, 900}, decode(t, res.X))
	require.Equal(t, []int{0, 100, 200, 300, 400, 500, 600, 700, 800, 900}, p.XIndices())
	require.Equal(t, p.XIndices(), p.YIndices())

	want := make([]float64, 0, 10)
	for _, i := range p.YIndices() {
		want = append(want, y[i])
	}
	require.InDeltaSlice(t, want, decode(t, res.Y), 1e-9)

	for _, v := range []*vector.Vector{res.X, res.Y} {
		require.True(t, v.Compressed())
		require.Equal(t, backend.BitPackName, v.BackendName())
		require.Equal(t, DefaultPrecision, v.Precision())
		require.Equal(t, DefaultBitWidth, v.BitWidth())
		require.Equal(t, format.ViewCompressed, v.ViewMode())
	}
}

func TestPipeline_Defaults(t *testing.T) {
	x, y := series(5000)
	p, err := New()
	require.NoError(t, err)

	res, err := p.Downsample(context.Background(), x, y, 100)
	require.NoError(t, err)

	idx := p.YIndices()
	require.NotEmpty(t, idx)
	require.LessOrEqual(t, len(idx), 100)
	require.Equal(t, 0, idx[0])
	require.Equal(t, 4999, idx[len(idx)-1])
	require.Equal(t, len(idx), res.X.Len())
	require.Equal(t, len(idx), res.Y.Len())
}

func TestPipeline_SingleAxis(t *testing.T) {
	x, y := series(200)
	p, err := New()
	require.NoError(t, err)
	ctx := context.Background()

	res, err := p.Downsample(ctx, nil, y, 20, WithMethod(downsample.M4Name))
	require.NoError(t, err)
	require.Nil(t, res.X)
	require.Nil(t, p.XIndices())
	require.Len(t, p.YIndices(), res.Y.Len())

	res, err = p.Downsample(ctx, x, nil, 20, WithMethod(downsample.EveryNthName))
	require.NoError(t, err)
	require.Nil(t, res.Y)
	require.Nil(t, p.YIndices())
	require.Equal(t, []float64{0, 10, 20, 30, 40, 50, 60, 70, 80, 90, 100, 110, 120, 130, 140, 150, 160, 170, 180, 190},
		decode(t, res.X))
}

func TestPipeline_Compression(t *testing.T) {
	x, y := series(3000)
	ctx := context.Background()
	p, err := New()
	require.NoError(t, err)

	ref, err := p.Downsample(ctx, x, y, 300, WithoutCompression())
	require.NoError(t, err)
	require.False(t, ref.Y.Compressed())
	want := decode(t, ref.Y)

	for _, name := range p.Backends() {
		t.Run(name, func(t *testing.T) {
			res, err := p.Downsample(ctx, x, y, 300, WithCompression(name))
			require.NoError(t, err)
			require.Equal(t, name != backend.NoneName, res.Y.Compressed())
			require.Equal(t, want, decode(t, res.Y))
		})
	}

	res, err := p.Downsample(ctx, x, y, 300, WithBackend(backend.NewBitPack()), WithPrecision(2), WithBitWidth(format.Width16))
	require.NoError(t, err)
	require.Equal(t, backend.BitPackName, res.Y.BackendName())
	require.Equal(t, want, decode(t, res.Y))
}

func TestPipeline_ViewMode(t *testing.T) {
	x, y := series(100)
	p, err := New()
	require.NoError(t, err)

	res, err := p.Downsample(context.Background(), x, y, 10,
		WithMethod(downsample.EveryNthName),
		WithViewMode(format.ViewDecompressed),
	)
	require.NoError(t, err)

	r, err := res.X.GetRange(vector.Span(0, 3, 1))
	require.NoError(t, err)
	require.Equal(t, []float64{0, 10, 20}, r.Values)
}

func TestPipeline_InvalidArguments(t *testing.T) {
	x, y := series(50)
	p, err := New()
	require.NoError(t, err)
	ctx := context.Background()

	tests := []struct {
		name string
		x, y []float64
		nOut int
		opts []Option
	}{
		{name: "zero n_out", x: x, y: y, nOut: 0},
		{name: "negative n_out", x: x, y: y, nOut: -3},
		{name: "no axis", nOut: 10},
		{name: "n_out above x", x: x, nOut: 51},
		{name: "n_out above y", y: y, nOut: 51},
		{name: "length mismatch", x: x[:40], y: y, nOut: 10},
		{name: "bad width", x: x, y: y, nOut: 10, opts: []Option{WithBitWidth(12)}},
		{name: "negative precision", x: x, y: y, nOut: 10, opts: []Option{WithPrecision(-1)}},
		{name: "precision above width", x: x, y: y, nOut: 10, opts: []Option{WithBitWidth(format.Width8), WithPrecision(9)}},
		{name: "bad view mode", x: x, y: y, nOut: 10, opts: []Option{WithViewMode(format.ViewMode(7))}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			calls := 0
			counting := downsample.NewFunc("counting", func(_, _ []float64, _ int) ([]int, error) {
				calls++
				return []int{0}, nil
			})

			opts := append([]Option{WithDownsampler(counting)}, tt.opts...)
			_, err := p.Downsample(ctx, tt.x, tt.y, tt.nOut, opts...)
			require.ErrorIs(t, err, errs.ErrInvalidParameter)
			require.Zero(t, calls, "downsampler ran before arguments were rejected")
		})
	}

	_, err = p.Downsample(ctx, x, y, 10, WithMethod("median"))
	require.ErrorIs(t, err, errs.ErrUnknownDownsampler)

	_, err = p.Downsample(ctx, x, y, 10, WithCompression("brotli"))
	require.ErrorIs(t, err, errs.ErrUnknownCompressionMethod)
}

func TestPipeline_InvalidSelection(t *testing.T) {
	x, y := series(100)
	p, err := New()
	require.NoError(t, err)
	ctx := context.Background()

	_, err = p.Downsample(ctx, x, y, 5, WithMethod(downsample.EveryNthName))
	require.NoError(t, err)
	prev := p.YIndices()

	tests := []struct {
		name string
		idx  []int
	}{
		{name: "descending", idx: []int{0, 40, 20}},
		{name: "duplicate", idx: []int{0, 20, 20}},
		{name: "negative", idx: []int{-1, 20}},
		{name: "out of range", idx: []int{0, 100}},
		{name: "too many", idx: []int{0, 1, 2, 3, 4, 5}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := downsample.NewFunc("fixed", func(_, _ []float64, _ int) ([]int, error) {
				return tt.idx, nil
			})
			_, err := p.Downsample(ctx, x, y, 5, WithDownsampler(d))
			require.ErrorIs(t, err, errs.ErrInvalidSelection)
			require.Equal(t, prev, p.YIndices())
		})
	}
}

func TestPipeline_Registries(t *testing.T) {
	x, y := series(100)

	ds := downsample.NewRegistry()
	require.NoError(t, ds.Register("edges", func() (downsample.Downsampler, error) {
		return downsample.NewFunc("edges", func(_, y []float64, _ int) ([]int, error) {
			return []int{0, len(y) - 1}, nil
		}), nil
	}))

	bs := backend.NewRegistry()
	require.NoError(t, bs.Register("packed", func() (backend.Backend, error) { return backend.NewBitPack(), nil }))

	p, err := New(WithDownsamplerRegistry(ds), WithBackendRegistry(bs))
	require.NoError(t, err)
	require.Equal(t, []string{"edges"}, p.Downsamplers())
	require.Equal(t, []string{"packed"}, p.Backends())

	ctx := context.Background()
	res, err := p.Downsample(ctx, x, y, 10, WithMethod("edges"), WithCompression("packed"))
	require.NoError(t, err)
	require.Equal(t, []float64{0, 99}, decode(t, res.X))

	_, err = p.Downsample(ctx, x, y, 10)
	require.ErrorIs(t, err, errs.ErrUnknownDownsampler)
}

func TestPipeline_Logger(t *testing.T) {
	var buf bytes.Buffer
	l := slog.New(slog.NewJSONHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))

	p, err := New(WithLogger(l))
	require.NoError(t, err)

	x, y := series(100)
	_, err = p.Downsample(context.Background(), x, y, 10, WithMethod(downsample.LTTBName), WithCompression(backend.DeltaZstdName))
	require.NoError(t, err)

	out := buf.String()
	require.Contains(t, out, `"msg":"downsample completed"`)
	require.Contains(t, out, `"method":"lttb"`)
	require.Contains(t, out, `"backend":"delta-zstd"`)
	require.Contains(t, out, `"axis":"y"`)
}

func BenchmarkPipeline_Downsample(b *testing.B) {
	x, y := series(100_000)
	p, err := New()
	require.NoError(b, err)
	ctx := context.Background()

	for _, method := range []string{downsample.EveryNthName, downsample.M4Name, downsample.MinMaxLTTBName} {
		b.Run(method, func(b *testing.B) {
			for b.Loop() {
				_, _ = p.Downsample(ctx, x, y, 1000, WithMethod(method))
			}
		})
	}
}
