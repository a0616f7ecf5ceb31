package mesh

import (
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
	"testing"
)

var headerLines = []string{
	"<comment>",
	"problem = blast # with trailing comment",
	"",
	"<mesh>",
	"nx1 = 64",
	"x1min = -1.5",
	"x1max = 1.5",
	"nghost=3",
	"<hydro>",
	"gamma = 1.4",
	"use_e = false",
}

func TestParseHeader(t *testing.T) {
	h, err := ParseHeader(headerLines, nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"comment", "mesh", "hydro"}, h.Sections())

	v, ok := h.Raw("comment", "problem")
	assert.True(t, ok)
	assert.Equal(t, "blast", v)

	assert.Equal(t, Value[int]{Value: 64, Found: true}, Get(h, "mesh", "nx1", 1))
	assert.Equal(t, Value[int]{Value: 3, Found: true}, Get(h, "mesh", "nghost", 2))
	assert.Equal(t, Value[float64]{Value: -1.5, Found: true}, Get(h, "mesh", "x1min", 0.0))
	assert.Equal(t, Value[bool]{Value: false, Found: true}, Get(h, "hydro", "use_e", true))
	assert.Equal(t, Value[string]{Value: "blast", Found: true}, Get(h, "comment", "problem", ""))

	_, err = ParseHeader([]string{"nx1 = 4"}, nil)
	assert.Error(t, err)
	_, err = ParseHeader([]string{"<mesh>", "nx1"}, nil)
	assert.Error(t, err)
}

func TestHeaderDefaults(t *testing.T) {
	core, logs := observer.New(zapcore.WarnLevel)
	h, err := ParseHeader([]string{"<mhd>", "gamma = 1.1", "<mesh>", "nx1 = abc"}, zap.New(core))
	require.NoError(t, err)

	v := Get(h, "hydro", "gamma", DefaultGamma)
	assert.False(t, v.Found)
	assert.Equal(t, DefaultGamma, v.Value)
	assert.Equal(t, 1, logs.FilterMessage("header key missing, using default").Len())

	n := Get(h, "mesh", "nx1", 7)
	assert.Equal(t, Value[int]{Value: 7}, n)
	assert.Equal(t, 1, logs.FilterMessage("header value unparsable, using default").Len())

	t.Run("mhd fallback", func(t *testing.T) {
		p := ParamsFromHeader(h)
		assert.Equal(t, 1.1, p.Gamma)
		assert.True(t, p.UseE)
	})
	t.Run("nil header", func(t *testing.T) {
		p := ParamsFromHeader(nil)
		assert.Equal(t, DefaultGamma, p.Gamma)
		assert.Equal(t, [3]int{1, 1, 1}, p.RootCells)
		assert.Equal(t, DefaultNGhost, p.NGhost)
	})
}

func TestParamsFromHeader(t *testing.T) {
	h, err := ParseHeader(append(headerLines, "<meshblock>", "nx1 = 16"), nil)
	require.NoError(t, err)
	p := ParamsFromHeader(h)
	assert.Equal(t, [3]int{64, 1, 1}, p.RootCells)
	assert.Equal(t, [3]int{16, 1, 1}, p.BlockCells)
	assert.Equal(t, 3, p.NGhost)
	assert.Equal(t, 1.4, p.Gamma)
	assert.False(t, p.UseE)
	assert.Equal(t, 1, p.ActiveAxes())
	assert.Equal(t, [3]int{1, 1, 16}, p.BlockShape())
	assert.Len(t, p.RootTile(), 4)
}
