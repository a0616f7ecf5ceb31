package athena

import (
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"testing"
)

// twoBlockDump is a 2D dump with two 4x4x1 root blocks side by side on [0,2]x[0,1]
func twoBlockDump() *fakeSource {
	f := newFakeSource()
	f.strings["Header"] = []string{
		"<mesh>", "nx1 = 8", "nx2 = 4", "nx3 = 1",
		"x1min = 0", "x1max = 2", "x2min = 0", "x2max = 1", "x3min = -0.5", "x3max = 0.5",
		"<meshblock>", "nx1 = 4", "nx2 = 4", "nx3 = 1",
		"<mhd>", "gamma = 1.4",
	}
	f.floats["Time"] = 12.5
	f.ints["NumCycles"] = []int64{300}
	f.strings["DatasetNames"] = []string{"mhd_w", "mhd_bcc"}
	f.ints["NumVariables"] = []int64{2, 1}
	f.strings["VariableNames"] = []string{"dens", "velx", "bcc1"}

	f.idata["LogicalLocations"] = []int64{0, 0, 0, 1, 0, 0}
	f.shapes["LogicalLocations"] = []uint64{2, 3}
	f.idata["Levels"] = []int64{0, 0}
	f.shapes["Levels"] = []uint64{2}
	f.fdata["x1f"] = []float64{0, 0.25, 0.5, 0.75, 1, 1, 1.25, 1.5, 1.75, 2}
	f.shapes["x1f"] = []uint64{2, 5}
	f.fdata["x2f"] = []float64{0, 0.25, 0.5, 0.75, 1, 0, 0.25, 0.5, 0.75, 1}
	f.shapes["x2f"] = []uint64{2, 5}
	f.fdata["x3f"] = []float64{-0.5, 0.5, -0.5, 0.5}
	f.shapes["x3f"] = []uint64{2, 2}

	// (nvar, nmb, nx3, nx2, nx1): variable v of block b is filled with 10*v + b
	w := make([]float64, 2*2*16)
	for v := 0; v < 2; v++ {
		for b := 0; b < 2; b++ {
			for n := 0; n < 16; n++ {
				w[(v*2+b)*16+n] = float64(10*v + b)
			}
		}
	}
	f.fdata["mhd_w"] = w
	f.shapes["mhd_w"] = []uint64{2, 2, 1, 4, 4}
	f.fdata["mhd_bcc"] = make([]float64, 32)
	f.shapes["mhd_bcc"] = []uint64{1, 2, 1, 4, 4}
	return f
}

func TestLoadAthdf(t *testing.T) {
	src := twoBlockDump()
	m, err := load(src)
	require.NoError(t, err)

	assert.Equal(t, 12.5, m.Time)
	assert.Equal(t, 300, m.Cycle)
	assert.Equal(t, 1.4, m.Params.Gamma)
	assert.Equal(t, [3]int{8, 4, 1}, m.Params.RootCells)
	require.Equal(t, 2, m.BlockCount())
	assert.Equal(t, [6]float64{1, 2, 0, 1, -0.5, 0.5}, [6]float64(m.Block(1).Box))
	assert.Equal(t, m.Params.BlockBox(0, m.Block(1).Loc), m.Block(1).Box)
	assert.Equal(t, []string{"bcc1", "dens", "velx"}, m.RawNames())

	velx, err := m.Raw("velx")
	require.NoError(t, err)
	assert.Equal(t, 10.0, velx.At(0, 0, 3, 3))
	assert.Equal(t, 11.0, velx.At(1, 0, 0, 0))

	x, _ := m.Coord("x")
	assert.Equal(t, 1.125, x.At(1, 0, 0, 0))
}

func TestLoadVariablesFilter(t *testing.T) {
	src := twoBlockDump()
	m, err := load(src, Variables("dens"))
	require.NoError(t, err)
	assert.Equal(t, []string{"dens"}, m.RawNames())
	assert.NotContains(t, src.requests, "mhd_bcc")
}

func TestLoadMalformed(t *testing.T) {
	t.Run("variable count", func(t *testing.T) {
		src := twoBlockDump()
		src.ints["NumVariables"] = []int64{3, 1}
		_, err := load(src)
		assert.ErrorIs(t, err, ErrFormat)
	})
	t.Run("dataset size", func(t *testing.T) {
		src := twoBlockDump()
		src.fdata["mhd_bcc"] = make([]float64, 16)
		_, err := load(src)
		assert.ErrorIs(t, err, ErrFormat)
	})
	t.Run("locations", func(t *testing.T) {
		src := twoBlockDump()
		src.shapes["LogicalLocations"] = []uint64{3, 2}
		_, err := load(src)
		assert.ErrorIs(t, err, ErrFormat)
	})
	t.Run("missing header", func(t *testing.T) {
		src := twoBlockDump()
		delete(src.strings, "Header")
		_, err := load(src)
		assert.Error(t, err)
	})
}

func TestSnapshotNumber(t *testing.T) {
	n, err := SnapshotNumber("/data/run/disk.out1.00042.athdf")
	require.NoError(t, err)
	assert.Equal(t, 42, n)
	_, err = SnapshotNumber("disk.athdf")
	assert.Error(t, err)
}
