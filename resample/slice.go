package resample

import (
	"github.com/notargets/amrkit/mesh"
	"gonum.org/v1/gonum/mat"
)

// Slice reconstructs name on level over box and averages it along axis
// (0 = x1, 1 = x2, 2 = x3)
func (r *Resampler) Slice(name string, level int, box mesh.Box, axis int) (*mat.Dense, error) {
	g, err := r.Field(name, level, box)
	if err != nil {
		return nil, err
	}
	return g.AxisMean(axis)
}

// SliceBox is the default midplane slab. The x1 and x2 bounds are divided by
// 2^zoom, the x3 bounds by 2^level * N3, which for a domain symmetric about
// x3 = 0 leaves a slab one cell thick at level
func SliceBox(p mesh.Params, zoom, level int) mesh.Box {
	shrink := float64(int(1) << zoom)
	thin := float64(int(1)<<level) * float64(p.RootCells[2])
	return mesh.Box{
		p.Domain.Min(0) / shrink, p.Domain.Max(0) / shrink,
		p.Domain.Min(1) / shrink, p.Domain.Max(1) / shrink,
		p.Domain.Min(2) / thin, p.Domain.Max(2) / thin,
	}
}
