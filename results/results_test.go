package results

import (
	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/google/uuid"
	"github.com/notargets/amrkit/aggregate"
	"github.com/notargets/amrkit/mesh"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"
	"math"
	"path/filepath"
	"strings"
	"testing"
)

func sample() *Results {
	r := &Results{
		SchemaVersion: SchemaVersion,
		RunID:         uuid.MustParse("6f1c2b3a-8d4e-4f50-9a61-7b2c3d4e5f60"),
		Source:        "disk.out1.00010.athdf",
		Num:           10,
		Time:          2.5,
		Cycle:         1200,
	}
	r.ensure()
	r.Sums["mass"] = 4
	r.Avgs["pres"] = 0.75
	r.AddHistogram("vol", &aggregate.Histogram{
		Fields: []string{"dens", "temp"},
		Shape:  []int{2, 1},
		Edges:  [][]float64{{0, 1, 2}, {1, 10}},
		Counts: []float64{3, 5},
	})
	r.AddProfile("r", &aggregate.Profile{
		BinFields: []string{"r"},
		Shape:     []int{3},
		Edges:     [][]float64{{0, 1, 2, 3}},
		Centers:   [][]float64{{0.5, 1.5, 2.5}},
		Norm:      []float64{1, 0, 2},
		Values:    map[string][]float64{"dens": {1, math.NaN(), 3}},
	})
	r.AddSlice("dens", "dens", 1, 0, mesh.Box{0, 1, 0, 1, 0, 0.25}, mat.NewDense(2, 3, []float64{1, 2, 3, 4, 5, 6}))
	return r
}

func TestAddProfileCenters(t *testing.T) {
	r := sample()
	p := r.Profs["r"]
	assert.Equal(t, []float64{0.5, 1.5, 2.5}, p.Values["r"])
	assert.Len(t, p.Values, 2)

	s := r.Slices["dens"]
	assert.Equal(t, 2, s.Rows)
	assert.Equal(t, 3, s.Cols)
	assert.Equal(t, 6.0, s.Dense().At(1, 2))
}

func TestRoundTrip(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"out.yaml", "out.yaml.zst", "out.h5"} {
		t.Run(name, func(t *testing.T) {
			want := sample()
			path := filepath.Join(dir, name)
			require.NoError(t, want.Save(path))
			got, err := Load(path)
			require.NoError(t, err)
			if diff := cmp.Diff(want, got, cmpopts.EquateNaNs(), cmpopts.EquateEmpty()); diff != "" {
				t.Errorf("round trip mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestReadYAMLStrict(t *testing.T) {
	_, err := ReadYAML(strings.NewReader("schema_version: 1\nsums: {mass: 1}\nbogus: 2\n"))
	assert.Error(t, err)

	_, err = ReadYAML(strings.NewReader("schema_version: 7\n"))
	assert.ErrorIs(t, err, ErrSchemaVersion)

	r, err := ReadYAML(strings.NewReader("schema_version: 1\n"))
	require.NoError(t, err)
	assert.NotNil(t, r.Hists)
}

func TestUnknownFormat(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.json")
	assert.ErrorIs(t, sample().Save(path), ErrUnknownFormat)
	_, err := Load(path)
	assert.ErrorIs(t, err, ErrUnknownFormat)
}
