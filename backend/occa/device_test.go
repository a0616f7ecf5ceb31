package occa

import (
	"github.com/notargets/amrkit/backend"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"math"
	"strings"
	"testing"
)

func TestKernelSource(t *testing.T) {
	src, err := binarySource(backend.Min)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(src, "#define CHUNK 256\n"))
	assert.Contains(t, src, "@kernel void amr_min(const double n, double *dst, const double *a, const double *b)")
	assert.Contains(t, src, "dst[i] = fmin(a[i], b[i]);")

	src, err = scalarSource(backend.Sqrt)
	require.NoError(t, err)
	assert.Contains(t, src, "amr_sqrt_s(const double n, double *dst, const double *a, const double s)")

	_, err = binarySource(backend.Sqrt)
	assert.Error(t, err)

	assert.Contains(t, dotSource(), "acc += a[i] * b[i];")
	assert.Equal(t, 1, numChunks(1))
	assert.Equal(t, 2, numChunks(chunk+1))
}

func TestDeviceMatchesHost(t *testing.T) {
	dev := Select(nil)
	defer dev.Close()
	if _, ok := dev.(backend.Host); ok {
		t.Skip("no OCCA device available")
	}
	t.Logf("Testing on %s", dev.Name())

	// Span several chunks with a ragged tail
	n := 3*chunk + 17
	a := make([]float64, n)
	b := make([]float64, n)
	for i := range a {
		a[i] = 1 + float64(i%13)
		b[i] = 0.5 + float64(i%7)
	}

	for _, op := range []backend.Op{backend.Add, backend.Sub, backend.Mul, backend.Div, backend.Min, backend.Max, backend.Pow} {
		t.Run(op.String(), func(t *testing.T) {
			want := make([]float64, n)
			got := make([]float64, n)
			require.NoError(t, backend.Host{}.Apply(op, want, a, b))
			require.NoError(t, dev.Apply(op, got, a, b))
			assert.InDeltaSlicef(t, want, got, 1e-9, "op %s", op)
		})
	}
	for _, op := range []backend.Op{backend.Mul, backend.Pow, backend.Sqrt, backend.Log10} {
		t.Run(op.String()+"_scalar", func(t *testing.T) {
			want := make([]float64, n)
			got := make([]float64, n)
			require.NoError(t, backend.Host{}.ApplyScalar(op, want, a, 1.5))
			require.NoError(t, dev.ApplyScalar(op, got, a, 1.5))
			assert.InDeltaSlicef(t, want, got, 1e-9, "op %s", op)
		})
	}

	sum, err := dev.Sum(a)
	require.NoError(t, err)
	hostSum, _ := backend.Host{}.Sum(a)
	assert.True(t, math.Abs(sum-hostSum) < 1e-9*hostSum)

	dot, err := dev.Dot(a, b)
	require.NoError(t, err)
	hostDot, _ := backend.Host{}.Dot(a, b)
	assert.InDelta(t, hostDot, dot, 1e-9*hostDot)

	_, err = dev.Dot(a, b[:1])
	assert.ErrorIs(t, err, backend.ErrLength)
}

func TestSelectAlwaysUsable(t *testing.T) {
	dev := Select(nil)
	defer dev.Close()
	sum, err := dev.Sum([]float64{1, 2, 3})
	require.NoError(t, err)
	assert.Equal(t, 6.0, sum)
}
