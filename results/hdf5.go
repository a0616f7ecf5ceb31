package results

import (
	"fmt"
	"github.com/google/uuid"
	"github.com/robert-malhotra/go-hdf5/hdf5"
	"slices"
	"sort"
)

// SaveHDF5 writes r with one group per reduction kind and one dataset per
// reduction. Provenance sits on the root "run" dataset, which holds the time
func (r *Results) SaveHDF5(path string) error {
	f, err := hdf5.Create(path)
	if err != nil {
		return err
	}
	if err := r.writeHDF5(f); err != nil {
		f.Close()
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return f.Close()
}

func (r *Results) writeHDF5(f *hdf5.File) error {
	root := f.Root()
	_, err := root.CreateDataset("run", []float64{r.Time},
		hdf5.WithAttribute("schema_version", int64(r.SchemaVersion)),
		hdf5.WithAttribute("run_id", r.RunID.String()),
		hdf5.WithAttribute("source", r.Source),
		hdf5.WithAttribute("num", int64(r.Num)),
		hdf5.WithAttribute("cycle", int64(r.Cycle)))
	if err != nil {
		return err
	}
	for _, sc := range []struct {
		group string
		vals  map[string]float64
	}{{"sums", r.Sums}, {"avgs", r.Avgs}} {
		if len(sc.vals) == 0 {
			continue
		}
		g, err := root.CreateGroup(sc.group)
		if err != nil {
			return err
		}
		for _, name := range sortedKeys(sc.vals) {
			if _, err := g.CreateDataset(name, []float64{sc.vals[name]}); err != nil {
				return err
			}
		}
	}
	if len(r.Hists) > 0 {
		g, err := root.CreateGroup("hists")
		if err != nil {
			return err
		}
		for _, key := range sortedKeys(r.Hists) {
			h := r.Hists[key]
			_, err := g.CreateDataset(key, h.Counts,
				hdf5.WithAttribute("fields", h.Fields),
				hdf5.WithAttribute("shape", toInt64(h.Shape)),
				hdf5.WithAttribute("edges", slices.Concat(h.Edges...)))
			if err != nil {
				return err
			}
		}
	}
	if len(r.Profs) > 0 {
		g, err := root.CreateGroup("profs")
		if err != nil {
			return err
		}
		for _, key := range sortedKeys(r.Profs) {
			p := r.Profs[key]
			pg, err := g.CreateGroup(key)
			if err != nil {
				return err
			}
			_, err = pg.CreateDataset("norm", p.Norm,
				hdf5.WithAttribute("bin_fields", p.BinFields),
				hdf5.WithAttribute("shape", toInt64(p.Shape)),
				hdf5.WithAttribute("edges", slices.Concat(p.Edges...)))
			if err != nil {
				return err
			}
			vg, err := pg.CreateGroup("values")
			if err != nil {
				return err
			}
			for _, name := range sortedKeys(p.Values) {
				if _, err := vg.CreateDataset(name, p.Values[name]); err != nil {
					return err
				}
			}
		}
	}
	if len(r.Slices) > 0 {
		g, err := root.CreateGroup("slices")
		if err != nil {
			return err
		}
		for _, key := range sortedKeys(r.Slices) {
			s := r.Slices[key]
			_, err := g.CreateDataset(key, s.Data,
				hdf5.WithAttribute("field", s.Field),
				hdf5.WithAttribute("level", int64(s.Level)),
				hdf5.WithAttribute("axis", int64(s.Axis)),
				hdf5.WithAttribute("box", s.Box),
				hdf5.WithAttribute("rows", int64(s.Rows)),
				hdf5.WithAttribute("cols", int64(s.Cols)))
			if err != nil {
				return err
			}
		}
	}
	return nil
}

// LoadHDF5 reads results written by SaveHDF5
func LoadHDF5(path string) (*Results, error) {
	f, err := hdf5.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	r, err := readHDF5(f)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	return r, nil
}

func readHDF5(f *hdf5.File) (*Results, error) {
	run, err := f.OpenDataset("/run")
	if err != nil {
		return nil, err
	}
	a := attrs{ds: run}
	r := &Results{
		SchemaVersion: int(a.integer("schema_version")),
		Source:        a.text("source"),
		Num:           int(a.integer("num")),
		Cycle:         int(a.integer("cycle")),
	}
	if a.err != nil {
		return nil, a.err
	}
	if err := r.check(); err != nil {
		return nil, err
	}
	if r.RunID, err = uuid.Parse(a.text("run_id")); err != nil {
		return nil, err
	}
	t, err := run.ReadFloat64()
	if err != nil || len(t) != 1 {
		return nil, fmt.Errorf("run time: %v", err)
	}
	r.Time = t[0]
	r.ensure()

	members, err := f.Root().Members()
	if err != nil {
		return nil, err
	}
	for _, sc := range []struct {
		group string
		vals  map[string]float64
	}{{"sums", r.Sums}, {"avgs", r.Avgs}} {
		if !slices.Contains(members, sc.group) {
			continue
		}
		err := eachDataset(f, "/"+sc.group, func(name string, ds *hdf5.Dataset) error {
			v, err := ds.ReadFloat64()
			if err != nil {
				return err
			}
			if len(v) != 1 {
				return fmt.Errorf("%s/%s holds %d values", sc.group, name, len(v))
			}
			sc.vals[name] = v[0]
			return nil
		})
		if err != nil {
			return nil, err
		}
	}
	if slices.Contains(members, "hists") {
		err := eachDataset(f, "/hists", func(key string, ds *hdf5.Dataset) error {
			counts, err := ds.ReadFloat64()
			if err != nil {
				return err
			}
			a := attrs{ds: ds}
			h := &Histogram{Fields: a.texts("fields"), Shape: a.integers("shape"), Counts: counts}
			h.Edges = splitEdges(a.reals("edges"), h.Shape)
			if a.err != nil {
				return a.err
			}
			r.Hists[key] = h
			return nil
		})
		if err != nil {
			return nil, err
		}
	}
	if slices.Contains(members, "profs") {
		g, err := f.OpenGroup("/profs")
		if err != nil {
			return nil, err
		}
		keys, err := g.Members()
		if err != nil {
			return nil, err
		}
		for _, key := range keys {
			p, err := readProfile(f, "/profs/"+key)
			if err != nil {
				return nil, err
			}
			r.Profs[key] = p
		}
	}
	if slices.Contains(members, "slices") {
		err := eachDataset(f, "/slices", func(key string, ds *hdf5.Dataset) error {
			data, err := ds.ReadFloat64()
			if err != nil {
				return err
			}
			a := attrs{ds: ds}
			r.Slices[key] = &Slice{
				Field: a.text("field"),
				Level: int(a.integer("level")),
				Axis:  int(a.integer("axis")),
				Box:   a.reals("box"),
				Rows:  int(a.integer("rows")),
				Cols:  int(a.integer("cols")),
				Data:  data,
			}
			return a.err
		})
		if err != nil {
			return nil, err
		}
	}
	return r, nil
}

func readProfile(f *hdf5.File, path string) (*Profile, error) {
	norm, err := f.OpenDataset(path + "/norm")
	if err != nil {
		return nil, err
	}
	p := &Profile{Values: map[string][]float64{}}
	if p.Norm, err = norm.ReadFloat64(); err != nil {
		return nil, err
	}
	a := attrs{ds: norm}
	p.BinFields, p.Shape = a.texts("bin_fields"), a.integers("shape")
	p.Edges = splitEdges(a.reals("edges"), p.Shape)
	if a.err != nil {
		return nil, a.err
	}
	err = eachDataset(f, path+"/values", func(name string, ds *hdf5.Dataset) error {
		v, err := ds.ReadFloat64()
		p.Values[name] = v
		return err
	})
	return p, err
}

func eachDataset(f *hdf5.File, group string, fn func(name string, ds *hdf5.Dataset) error) error {
	g, err := f.OpenGroup(group)
	if err != nil {
		return err
	}
	names, err := g.Members()
	if err != nil {
		return err
	}
	for _, name := range names {
		ds, err := g.OpenDataset(name)
		if err != nil {
			return err
		}
		if err := fn(name, ds); err != nil {
			return fmt.Errorf("%s/%s: %w", group, name, err)
		}
	}
	return nil
}

// attrs reads dataset attributes, keeping the first error
type attrs struct {
	ds  *hdf5.Dataset
	err error
}

func (a *attrs) get(name string) *hdf5.Attribute {
	if a.err != nil {
		return nil
	}
	at := a.ds.Attr(name)
	if at == nil {
		a.err = fmt.Errorf("attribute %q: %w", name, hdf5.ErrNotFound)
	}
	return at
}

func (a *attrs) integer(name string) int64 {
	at := a.get(name)
	if at == nil {
		return 0
	}
	v, err := at.ReadScalarInt64()
	a.err = err
	return v
}

func (a *attrs) text(name string) string {
	at := a.get(name)
	if at == nil {
		return ""
	}
	v, err := at.ReadScalarString()
	a.err = err
	return v
}

func (a *attrs) texts(name string) []string {
	at := a.get(name)
	if at == nil {
		return nil
	}
	v, err := at.ReadString()
	a.err = err
	return v
}

func (a *attrs) integers(name string) []int {
	at := a.get(name)
	if at == nil {
		return nil
	}
	v, err := at.ReadInt64()
	a.err = err
	out := make([]int, len(v))
	for i, x := range v {
		out[i] = int(x)
	}
	return out
}

func (a *attrs) reals(name string) []float64 {
	at := a.get(name)
	if at == nil {
		return nil
	}
	v, err := at.ReadFloat64()
	a.err = err
	return v
}

// splitEdges undoes the concatenation of per-dimension edges, shape[d]+1 each
func splitEdges(flat []float64, shape []int) [][]float64 {
	edges := make([][]float64, len(shape))
	off := 0
	for d, n := range shape {
		if off+n+1 > len(flat) {
			return nil
		}
		edges[d] = flat[off : off+n+1]
		off += n + 1
	}
	return edges
}

func toInt64(x []int) []int64 {
	out := make([]int64, len(x))
	for i, v := range x {
		out[i] = int64(v)
	}
	return out
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
