package athena

import (
	"errors"
	"fmt"
	"github.com/notargets/amrkit/mesh"
	"go.uber.org/zap"
	"path/filepath"
	"slices"
	"strconv"
	"strings"
)

// ErrFormat is returned for files whose layout does not match an athdf dump
var ErrFormat = errors.New("malformed athdf file")

type options struct {
	log       *zap.Logger
	variables []string
}

type Option func(*options)

func WithLogger(log *zap.Logger) Option {
	return func(o *options) {
		if log != nil {
			o.log = log
		}
	}
}

// Variables limits loading to the named raw variables
func Variables(names ...string) Option {
	return func(o *options) { o.variables = append(o.variables, names...) }
}

// OpenAthdf loads an Athena HDF5 dump into a mesh
func OpenAthdf(path string, opts ...Option) (*mesh.Mesh, error) {
	src, err := openH5(path)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", path, err)
	}
	defer src.Close()
	m, err := load(src, opts...)
	if err != nil {
		return nil, fmt.Errorf("loading %s: %w", path, err)
	}
	return m, nil
}

func load(src source, opts ...Option) (*mesh.Mesh, error) {
	o := options{log: zap.NewNop()}
	for _, opt := range opts {
		opt(&o)
	}

	lines, err := src.Strings("Header")
	if err != nil {
		return nil, err
	}
	hdr, err := mesh.ParseHeader(lines, o.log)
	if err != nil {
		return nil, err
	}
	p := mesh.ParamsFromHeader(hdr)
	time, err := src.Float("Time")
	if err != nil {
		return nil, err
	}
	cycle, err := src.Ints("NumCycles")
	if err != nil || len(cycle) == 0 {
		return nil, fmt.Errorf("%w: NumCycles: %v", ErrFormat, err)
	}

	blocks, err := readBlocks(src)
	if err != nil {
		return nil, err
	}
	raw, err := readVariables(src, len(blocks), p.BlockShape(), o.variables)
	if err != nil {
		return nil, err
	}
	o.log.Info("loaded athdf",
		zap.Float64("time", time),
		zap.Int64("cycle", cycle[0]),
		zap.Int("blocks", len(blocks)),
		zap.Int("variables", len(raw)))
	return mesh.New(p, blocks, raw,
		mesh.WithHeader(hdr),
		mesh.WithTime(time, int(cycle[0])),
		mesh.WithLogger(o.log))
}

// readBlocks builds block locations, levels and boxes from the face coordinates
func readBlocks(src source) ([]mesh.MeshBlock, error) {
	loc, shape, err := src.IntDataset("LogicalLocations")
	if err != nil {
		return nil, err
	}
	if len(shape) != 2 || shape[1] != 3 {
		return nil, fmt.Errorf("%w: LogicalLocations shape %v", ErrFormat, shape)
	}
	nmb := int(shape[0])
	levels, _, err := src.IntDataset("Levels")
	if err != nil {
		return nil, err
	}
	if len(levels) != nmb {
		return nil, fmt.Errorf("%w: %d levels for %d blocks", ErrFormat, len(levels), nmb)
	}

	blocks := make([]mesh.MeshBlock, nmb)
	for b := range blocks {
		blocks[b].Loc = mesh.LogicalLocation{int(loc[3*b]), int(loc[3*b+1]), int(loc[3*b+2])}
		blocks[b].Level = int(levels[b])
	}
	for a, name := range []string{"x1f", "x2f", "x3f"} {
		faces, fshape, err := src.FloatDataset(name)
		if err != nil {
			return nil, err
		}
		if len(fshape) != 2 || int(fshape[0]) != nmb || fshape[1] < 2 {
			return nil, fmt.Errorf("%w: %s shape %v", ErrFormat, name, fshape)
		}
		nf := int(fshape[1])
		for b := range blocks {
			blocks[b].Box[2*a] = faces[b*nf]
			blocks[b].Box[2*a+1] = faces[b*nf+nf-1]
		}
	}
	return blocks, nil
}

// readVariables splits each (nvar, nmb, nx3, nx2, nx1) dataset into per-variable arrays
func readVariables(src source, nmb int, shape [3]int, only []string) (map[string]*mesh.BlockArray, error) {
	datasets, err := src.Strings("DatasetNames")
	if err != nil {
		return nil, err
	}
	counts, err := src.Ints("NumVariables")
	if err != nil {
		return nil, err
	}
	names, err := src.Strings("VariableNames")
	if err != nil {
		return nil, err
	}
	if len(counts) != len(datasets) {
		return nil, fmt.Errorf("%w: %d datasets, %d variable counts", ErrFormat, len(datasets), len(counts))
	}

	stride := nmb * shape[0] * shape[1] * shape[2]
	raw := make(map[string]*mesh.BlockArray)
	next := 0
	for d, ds := range datasets {
		nvar := int(counts[d])
		if next+nvar > len(names) {
			return nil, fmt.Errorf("%w: %d variable names for %d variables", ErrFormat, len(names), next+nvar)
		}
		vars := names[next : next+nvar]
		next += nvar
		if len(only) > 0 && !slices.ContainsFunc(vars, func(v string) bool { return slices.Contains(only, v) }) {
			continue
		}
		data, _, err := src.FloatDataset(ds)
		if err != nil {
			return nil, err
		}
		if len(data) != nvar*stride {
			return nil, fmt.Errorf("%w: dataset %s holds %d values, want %d variables x %d blocks of %v",
				ErrFormat, ds, len(data), nvar, nmb, shape)
		}
		for i, v := range vars {
			if len(only) > 0 && !slices.Contains(only, v) {
				continue
			}
			arr, err := mesh.WrapBlockArray(data[i*stride:(i+1)*stride], nmb, shape)
			if err != nil {
				return nil, err
			}
			raw[strings.TrimSpace(v)] = arr
		}
	}
	return raw, nil
}

// SnapshotNumber parses the output number from a name like "disk.out1.00042.athdf"
func SnapshotNumber(path string) (int, error) {
	parts := strings.Split(filepath.Base(path), ".")
	if len(parts) < 2 {
		return 0, fmt.Errorf("no snapshot number in %q", path)
	}
	n, err := strconv.Atoi(parts[len(parts)-2])
	if err != nil {
		return 0, fmt.Errorf("no snapshot number in %q: %w", path, err)
	}
	return n, nil
}
