package mesh

import (
	"errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"testing"
)

func testParams() Params {
	return Params{
		RootCells:  [3]int{8, 4, 1},
		BlockCells: [3]int{4, 4, 1},
		NGhost:     2,
		Domain:     Box{0, 2, 0, 1, -0.5, 0.5},
		Gamma:      DefaultGamma,
		UseE:       true,
	}
}

func TestBlockArrayLayout(t *testing.T) {
	a := NewBlockArray(3, [3]int{2, 3, 4})
	assert.Equal(t, 24, a.Stride())
	assert.Equal(t, 72, a.Len())
	assert.Equal(t, []int{0, 24, 48, 72}, a.Offsets())

	for n := range a.Data {
		a.Data[n] = float64(n)
	}
	assert.Equal(t, 24.0, a.Block(1)[0])
	assert.Nil(t, a.Block(3))
	// block, k, j, i is row-major
	assert.Equal(t, float64(24+1*12+2*4+3), a.At(1, 1, 2, 3))

	_, err := WrapBlockArray(make([]float64, 10), 1, [3]int{1, 2, 4})
	assert.True(t, errors.Is(err, ErrShapeMismatch))
}

func TestNewValidates(t *testing.T) {
	p := testParams()
	blocks := p.RootTile()
	require.Len(t, blocks, 2)

	t.Run("raw shape", func(t *testing.T) {
		raw := map[string]*BlockArray{"dens": NewBlockArray(1, p.BlockShape())}
		_, err := New(p, blocks, raw)
		assert.ErrorIs(t, err, ErrShapeMismatch)
	})
	t.Run("negative level", func(t *testing.T) {
		bad := append([]MeshBlock(nil), blocks...)
		bad[1].Level = -1
		_, err := New(p, bad, nil)
		assert.ErrorIs(t, err, ErrInvalidGeometry)
	})
	t.Run("empty domain", func(t *testing.T) {
		q := p
		q.Domain[1] = q.Domain[0]
		_, err := New(q, blocks, nil)
		assert.ErrorIs(t, err, ErrInvalidGeometry)
	})
}

func TestCoordinates(t *testing.T) {
	p := testParams()
	blocks := append(p.Tile(0, LogicalLocation{0, 0, 0}, LogicalLocation{1, 1, 1}),
		p.Tile(1, LogicalLocation{2, 0, 0}, LogicalLocation{4, 2, 1})...)
	m, err := New(p, blocks, nil)
	require.NoError(t, err)
	require.Equal(t, 5, m.BlockCount())

	x, ok := m.Coord("x")
	require.True(t, ok)
	dx, _ := m.Coord("dx")
	z, _ := m.Coord("z")

	// Root block covers x in [0, 1] with 4 cells
	assert.InDeltaSlice(t, []float64{0.125, 0.375, 0.625, 0.875}, x.Block(0)[:4], 1e-15)
	assert.Equal(t, 0.25, dx.At(0, 0, 0, 0))
	assert.Equal(t, 0.0, z.At(0, 0, 0, 0))

	// First level-1 block starts at x=1 with half-width cells
	b := m.Block(1)
	assert.Equal(t, 1, b.Level)
	assert.Equal(t, 1, b.ID)
	assert.InDelta(t, 1.0, b.Box.Min(0), 1e-15)
	assert.InDelta(t, 1.0625, x.At(1, 0, 0, 0), 1e-15)
	assert.Equal(t, 0.125, dx.At(1, 0, 0, 0))

	_, err = m.Raw("dens")
	assert.ErrorIs(t, err, ErrNoSuchField)
	assert.Equal(t, []string{"x", "y", "z", "dx", "dy", "dz"}, m.CoordNames())
}

func TestLevelGroups(t *testing.T) {
	p := testParams()
	blocks := append(p.Tile(0, LogicalLocation{0, 0, 0}, LogicalLocation{1, 1, 1}),
		p.Tile(1, LogicalLocation{2, 0, 0}, LogicalLocation{4, 2, 1})...)
	m, err := New(p, blocks, nil)
	require.NoError(t, err)

	groups := m.LevelGroups()
	require.Len(t, groups, 2)
	assert.Equal(t, LevelGroup{Level: 0, BlockIDs: []int{0}, Cells: 16}, groups[0])
	assert.Equal(t, []int{1, 2, 3, 4}, groups[1].BlockIDs)
	assert.Equal(t, 1, m.MaxLevel())
}

func TestBoxIntersect(t *testing.T) {
	a := Box{0, 1, 0, 1, 0, 1}
	got, ok := a.Intersect(Box{0.5, 2, -1, 0.25, 0, 1})
	assert.True(t, ok)
	assert.Equal(t, Box{0.5, 1, 0, 0.25, 0, 1}, got)

	_, ok = a.Intersect(Box{1, 2, 0, 1, 0, 1})
	assert.False(t, ok)
}
