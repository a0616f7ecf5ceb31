package backend

import (
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"math"
	"testing"
)

func TestHostApply(t *testing.T) {
	a := []float64{1, 4, 9, -2}
	b := []float64{2, 2, 3, 1}
	tests := []struct {
		op   Op
		want []float64
	}{
		{Add, []float64{3, 6, 12, -1}},
		{Sub, []float64{-1, 2, 6, -3}},
		{Mul, []float64{2, 8, 27, -2}},
		{Div, []float64{0.5, 2, 3, -2}},
		{Min, []float64{1, 2, 3, -2}},
		{Max, []float64{2, 4, 9, 1}},
		{Pow, []float64{1, 16, 729, -2}},
	}
	for _, tt := range tests {
		t.Run(tt.op.String(), func(t *testing.T) {
			dst := make([]float64, len(a))
			require.NoError(t, Host{}.Apply(tt.op, dst, a, b))
			assert.InDeltaSlice(t, tt.want, dst, 1e-12)
		})
	}

	err := Host{}.Apply(Add, make([]float64, 3), a, b)
	assert.ErrorIs(t, err, ErrLength)
	assert.Error(t, Host{}.Apply(Sqrt, make([]float64, 4), a, b))
}

func TestHostApplyScalar(t *testing.T) {
	a := []float64{1, 4, 100}
	tests := []struct {
		op   Op
		s    float64
		want []float64
	}{
		{Add, 1, []float64{2, 5, 101}},
		{Sub, 1, []float64{0, 3, 99}},
		{Mul, 0.5, []float64{0.5, 2, 50}},
		{Div, 4, []float64{0.25, 1, 25}},
		{Min, 5, []float64{1, 4, 5}},
		{Max, 5, []float64{5, 5, 100}},
		{Pow, 0.5, []float64{1, 2, 10}},
		{Sqrt, 0, []float64{1, 2, 10}},
		{Abs, 0, []float64{1, 4, 100}},
		{Log10, 0, []float64{0, math.Log10(4), 2}},
	}
	for _, tt := range tests {
		t.Run(tt.op.String(), func(t *testing.T) {
			// in place
			dst := append([]float64(nil), a...)
			require.NoError(t, Host{}.ApplyScalar(tt.op, dst, dst, tt.s))
			assert.InDeltaSlice(t, tt.want, dst, 1e-12)
		})
	}
}

func TestHostReductions(t *testing.T) {
	s, err := Host{}.Sum([]float64{1, 2, 3.5})
	require.NoError(t, err)
	assert.Equal(t, 6.5, s)

	d, err := Host{}.Dot([]float64{1, 2, 3}, []float64{4, 5, 6})
	require.NoError(t, err)
	assert.Equal(t, 32.0, d)

	_, err = Host{}.Dot([]float64{1}, []float64{1, 2})
	assert.ErrorIs(t, err, ErrLength)
}
