package analysis

import (
	"fmt"
	"github.com/notargets/amrkit/fields"
	"github.com/notargets/amrkit/mesh"
	"github.com/notargets/amrkit/results"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"go.uber.org/zap/zaptest"
	"path/filepath"
	"strings"
	"testing"
)

// unitGrid is one 4x4x1 block of unit cells with dens = 4j + i + 1
func unitGrid(t *testing.T) *fields.Registry {
	t.Helper()
	p := mesh.Params{
		RootCells:  [3]int{4, 4, 1},
		BlockCells: [3]int{4, 4, 1},
		Domain:     mesh.Box{0, 4, 0, 4, 0, 1},
		Gamma:      mesh.DefaultGamma,
	}
	dens := mesh.NewBlockArray(1, p.BlockShape())
	for n := range dens.Data {
		dens.Data[n] = float64(n + 1)
	}
	m, err := mesh.New(p, p.RootTile(), map[string]*mesh.BlockArray{"dens": dens}, mesh.WithTime(3.5, 700))
	require.NoError(t, err)
	return fields.NewRegistry(m)
}

func TestParseConfigDefaults(t *testing.T) {
	cfg, err := ParseConfig(strings.NewReader(`
schema_version: 1
input: disk.out1.00003.athdf
histograms:
  - vars: [dens, temp]
profiles:
  - bin: [r]
    fields: [dens]
slices:
  - field: dens
    level: 2
`))
	require.NoError(t, err)
	assert.Equal(t, "auto", cfg.Device)
	assert.Equal(t, 1, cfg.Workers)
	assert.Equal(t, DefaultHistBins, cfg.Histograms[0].Bins)
	assert.Equal(t, "log", cfg.Histograms[0].Scale)
	assert.Equal(t, DefaultWeights, cfg.Histograms[0].Weights)
	assert.Equal(t, DefaultProfileBins, cfg.Profiles[0].Bins)
	assert.Equal(t, "linear", cfg.Profiles[0].Scale)
	assert.Equal(t, 2, *cfg.Slices[0].Axis)
}

func TestParseConfigErrors(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"unknown key", "schema_version: 1\ninput: a.athdf\nbogus: 1\n"},
		{"version", "schema_version: 2\ninput: a.athdf\n"},
		{"no input", "schema_version: 1\n"},
		{"device", "schema_version: 1\ninput: a.athdf\ndevice: tpu\n"},
		{"scale", "schema_version: 1\ninput: a.athdf\nhistograms: [{vars: [dens], scale: cubic}]\n"},
		{"ranges", "schema_version: 1\ninput: a.athdf\nhistograms: [{vars: [dens, temp], ranges: [[0, 1]]}]\n"},
		{"profile fields", "schema_version: 1\ninput: a.athdf\nprofiles: [{bin: [r]}]\n"},
		{"slice axis", "schema_version: 1\ninput: a.athdf\nslices: [{field: dens, axis: 3}]\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseConfig(strings.NewReader(tt.body))
			assert.ErrorIs(t, err, ErrConfig)
		})
	}
}

func TestRun(t *testing.T) {
	defer goleak.VerifyNone(t)
	out := filepath.Join(t.TempDir(), "out.yaml")
	cfg, err := ParseConfig(strings.NewReader(fmt.Sprintf(`
schema_version: 1
input: /data/disk.out1.00007.athdf
device: host
workers: 2
sums: [mass]
averages:
  - fields: [dens]
  - fields: [x]
    weights: dens
    where: {field: dens, min: 9}
histograms:
  - vars: [dens]
    bins: 4
    scale: linear
    ranges: [[0, 16]]
  - key: counts
    vars: [dens]
    bins: 2
    scale: linear
    weights: none
profiles:
  - bin: [x]
    fields: [dens]
    bins: 4
    ranges: [[0, 4]]
slices:
  - field: dens
output: %s
`, out)))
	require.NoError(t, err)

	res, err := Run(cfg, unitGrid(t), WithLogger(zaptest.NewLogger(t)))
	require.NoError(t, err)

	assert.Equal(t, 7, res.Num)
	assert.Equal(t, 3.5, res.Time)
	assert.Equal(t, 700, res.Cycle)
	assert.Equal(t, 136.0, res.Sums["mass"])
	assert.Equal(t, 8.5, res.Avgs["dens"])
	assert.InDelta(t, 2.1, res.Avgs["x"], 1e-12)

	assert.Equal(t, []float64{3, 4, 4, 5}, res.Hists["dens"].Counts)
	assert.Equal(t, []float64{0, 4, 8, 12, 16}, res.Hists["dens"].Edges[0])
	assert.Equal(t, []float64{8, 8}, res.Hists["counts"].Counts)

	prof := res.Profs["x"]
	require.NotNil(t, prof)
	assert.Equal(t, []float64{4, 4, 4, 4}, prof.Norm)
	assert.Equal(t, []float64{7, 8, 9, 10}, prof.Values["dens"])
	assert.Equal(t, []float64{0.5, 1.5, 2.5, 3.5}, prof.Values["x"])

	s := res.Slices["dens"]
	require.NotNil(t, s)
	assert.Equal(t, 2, s.Axis)
	assert.Equal(t, []float64{0, 4, 0, 4, 0, 1}, s.Box)
	assert.Equal(t, 6.0, s.Dense().At(1, 1))

	saved, err := results.Load(out)
	require.NoError(t, err)
	assert.Equal(t, res.RunID, saved.RunID)
	assert.Equal(t, res.Hists["dens"].Counts, saved.Hists["dens"].Counts)
}

func TestRunUnknownField(t *testing.T) {
	cfg, err := ParseConfig(strings.NewReader("schema_version: 1\ninput: a.athdf\nsums: [nope]\n"))
	require.NoError(t, err)
	_, err = Run(cfg, unitGrid(t))
	assert.ErrorIs(t, err, fields.ErrNoSuchField)
}
