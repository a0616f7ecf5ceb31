package results

import (
	"errors"
	"fmt"
	"github.com/google/uuid"
	"github.com/notargets/amrkit/aggregate"
	"github.com/notargets/amrkit/mesh"
	"gonum.org/v1/gonum/mat"
)

// SchemaVersion is bumped whenever the persisted layout changes
const SchemaVersion = 1

var (
	ErrSchemaVersion = errors.New("unsupported results schema version")
	ErrUnknownFormat = errors.New("unknown results file format")
)

// Results collects the reductions of one snapshot with its provenance
type Results struct {
	SchemaVersion int                   `yaml:"schema_version"`
	RunID         uuid.UUID             `yaml:"run_id"`
	Source        string                `yaml:"source"`
	Num           int                   `yaml:"num"`
	Time          float64               `yaml:"time"`
	Cycle         int                   `yaml:"cycle"`
	Sums          map[string]float64    `yaml:"sums,omitempty"`
	Avgs          map[string]float64    `yaml:"avgs,omitempty"`
	Hists         map[string]*Histogram `yaml:"hists,omitempty"`
	Profs         map[string]*Profile   `yaml:"profs,omitempty"`
	Slices        map[string]*Slice     `yaml:"slices,omitempty"`
}

type Histogram struct {
	Fields []string    `yaml:"fields"`
	Shape  []int       `yaml:"shape"`
	Edges  [][]float64 `yaml:"edges"`
	Counts []float64   `yaml:"counts"`
}

type Profile struct {
	BinFields []string             `yaml:"bin_fields"`
	Shape     []int                `yaml:"shape"`
	Edges     [][]float64          `yaml:"edges"`
	Norm      []float64            `yaml:"norm"`
	Values    map[string][]float64 `yaml:"values"`
}

// Slice is a 2D array, row-major, from averaging a uniform grid along Axis
type Slice struct {
	Field string    `yaml:"field"`
	Level int       `yaml:"level"`
	Axis  int       `yaml:"axis"`
	Box   []float64 `yaml:"box"`
	Rows  int       `yaml:"rows"`
	Cols  int       `yaml:"cols"`
	Data  []float64 `yaml:"data"`
}

// New starts an empty result set for the snapshot m read from source
func New(source string, num int, m *mesh.Mesh) *Results {
	return &Results{
		SchemaVersion: SchemaVersion,
		RunID:         uuid.New(),
		Source:        source,
		Num:           num,
		Time:          m.Time,
		Cycle:         m.Cycle,
		Sums:          map[string]float64{},
		Avgs:          map[string]float64{},
		Hists:         map[string]*Histogram{},
		Profs:         map[string]*Profile{},
		Slices:        map[string]*Slice{},
	}
}

func (r *Results) AddHistogram(key string, h *aggregate.Histogram) {
	r.Hists[key] = &Histogram{Fields: h.Fields, Shape: h.Shape, Edges: h.Edges, Counts: h.Counts}
}

// AddProfile stores p, including the bin centers as values under each bin
// field's name
func (r *Results) AddProfile(key string, p *aggregate.Profile) {
	values := make(map[string][]float64, len(p.Values)+len(p.BinFields))
	for name, v := range p.Values {
		values[name] = v
	}
	for d, name := range p.BinFields {
		if _, ok := values[name]; !ok {
			values[name] = p.Centers[d]
		}
	}
	r.Profs[key] = &Profile{BinFields: p.BinFields, Shape: p.Shape, Edges: p.Edges, Norm: p.Norm, Values: values}
}

func (r *Results) AddSlice(key, field string, level, axis int, box mesh.Box, d *mat.Dense) {
	rows, cols := d.Dims()
	data := make([]float64, 0, rows*cols)
	for i := 0; i < rows; i++ {
		data = append(data, d.RawRowView(i)...)
	}
	r.Slices[key] = &Slice{Field: field, Level: level, Axis: axis, Box: box[:], Rows: rows, Cols: cols, Data: data}
}

// Dense returns the slice as a matrix
func (s *Slice) Dense() *mat.Dense {
	return mat.NewDense(s.Rows, s.Cols, s.Data)
}

func (r *Results) check() error {
	if r.SchemaVersion != SchemaVersion {
		return fmt.Errorf("%w: %d, want %d", ErrSchemaVersion, r.SchemaVersion, SchemaVersion)
	}
	return nil
}

// ensure gives every map a value so loaded and fresh results compare alike
func (r *Results) ensure() {
	if r.Sums == nil {
		r.Sums = map[string]float64{}
	}
	if r.Avgs == nil {
		r.Avgs = map[string]float64{}
	}
	if r.Hists == nil {
		r.Hists = map[string]*Histogram{}
	}
	if r.Profs == nil {
		r.Profs = map[string]*Profile{}
	}
	if r.Slices == nil {
		r.Slices = map[string]*Slice{}
	}
}
