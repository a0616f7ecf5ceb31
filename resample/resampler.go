package resample

import (
	"fmt"
	"github.com/notargets/amrkit/mesh"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"gonum.org/v1/gonum/floats"
)

// Source supplies resolved fields and the mesh they live on
type Source interface {
	Resolve(name string) (*mesh.BlockArray, error)
	Mesh() *mesh.Mesh
}

// Resampler reconstructs fields of a block hierarchy on a single uniform level.
// Coarser blocks are prolonged by replication, finer blocks are restricted by
// averaging their children
type Resampler struct {
	src     Source
	workers int
	log     *zap.Logger
}

type Option func(*Resampler)

// WithWorkers sets how many blocks are processed concurrently (default 1).
// Results do not depend on the worker count
func WithWorkers(n int) Option {
	return func(r *Resampler) {
		if n > 0 {
			r.workers = n
		}
	}
}

func WithLogger(log *zap.Logger) Option {
	return func(r *Resampler) {
		if log != nil {
			r.log = log
		}
	}
}

func New(src Source, opts ...Option) *Resampler {
	r := &Resampler{src: src, workers: 1, log: zap.NewNop()}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Field reconstructs name on level over the cells selected by box
func (r *Resampler) Field(name string, level int, box mesh.Box) (*Grid, error) {
	m := r.src.Mesh()
	ext, err := IndexExtent(m.Params, level, box)
	if err != nil {
		return nil, err
	}
	arr, err := r.src.Resolve(name)
	if err != nil {
		return nil, err
	}
	g, err := r.Array(arr, ext)
	if err != nil {
		return nil, fmt.Errorf("resampling %q: %w", name, err)
	}
	return g, nil
}

// Array reconstructs an already resolved block array over ext
func (r *Resampler) Array(arr *mesh.BlockArray, ext Extent) (*Grid, error) {
	m := r.src.Mesh()
	if arr.NumBlocks != m.BlockCount() || arr.Shape != m.Params.BlockShape() {
		return nil, mesh.ErrShapeMismatch
	}

	patches := make([]*patch, m.BlockCount())
	var g errgroup.Group
	g.SetLimit(r.workers)
	for b := 0; b < m.BlockCount(); b++ {
		g.Go(func() error {
			patches[b] = blockPatch(m.Params, m.Block(b), arr.Block(b), ext)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	grid := newGrid(ext)
	used, restricted := 0, 0
	for _, p := range patches {
		if p == nil {
			continue
		}
		used++
		if p.accumulate {
			restricted++
		}
		p.mergeInto(grid)
	}
	r.log.Debug("resampled",
		zap.Int("level", ext.Level),
		zap.Ints("shape", grid.Shape[:]),
		zap.Int("blocks", used),
		zap.Int("restricted", restricted))
	return grid, nil
}

// span is a half-open range of block-local source indices feeding one target cell
type span struct{ lo, hi int }

// patch is one block's contribution to the target grid
type patch struct {
	lo, hi     [3]int    // Target index range, axis order x1, x2, x3
	data       []float64 // Row-major (k, j, i) over hi - lo
	accumulate bool      // Restricted patches add, prolonged patches overwrite
}

// axisMap lists, for each target index in [tlo, thi), the block-local
// source span along one axis
func axisMap(p mesh.Params, blk mesh.MeshBlock, level, axis int, ext Extent) (tlo, thi int, spans []span) {
	n := p.BlockCells[axis]
	loc := blk.Loc[axis]
	if blk.Level <= level {
		s := p.LevelFactor(level-blk.Level, axis)
		dlo := loc * n * s
		tlo, thi = max(dlo, ext.Lo[axis]), min(dlo+n*s, ext.Hi[axis])
		for t := tlo; t < thi; t++ {
			src := (t - dlo) / s
			spans = append(spans, span{src, src + 1})
		}
		return tlo, thi, spans
	}
	s := p.LevelFactor(blk.Level-level, axis)
	f0, f1 := loc*n, loc*n+n
	tlo, thi = max(f0/s, ext.Lo[axis]), min((f1+s-1)/s, ext.Hi[axis])
	for t := tlo; t < thi; t++ {
		spans = append(spans, span{max(t*s, f0) - f0, min((t+1)*s, f1) - f0})
	}
	return tlo, thi, spans
}

// blockPatch maps one block onto ext. It returns nil when they do not overlap
func blockPatch(p mesh.Params, blk mesh.MeshBlock, data []float64, ext Extent) *patch {
	var (
		pt    patch
		spans [3][]span
	)
	for a := 0; a < 3; a++ {
		pt.lo[a], pt.hi[a], spans[a] = axisMap(p, blk, ext.Level, a, ext)
		if pt.hi[a] <= pt.lo[a] {
			return nil
		}
	}

	divisor := 1.0
	if blk.Level > ext.Level {
		pt.accumulate = true
		for a := 0; a < 3; a++ {
			divisor *= float64(p.LevelFactor(blk.Level-ext.Level, a))
		}
	}

	nx1, nx2 := p.BlockCells[0], p.BlockCells[1]
	pt.data = make([]float64, 0, len(spans[0])*len(spans[1])*len(spans[2]))
	var children []float64
	for _, sk := range spans[2] {
		for _, sj := range spans[1] {
			for _, si := range spans[0] {
				children = children[:0]
				for kk := sk.lo; kk < sk.hi; kk++ {
					for jj := sj.lo; jj < sj.hi; jj++ {
						row := (kk*nx2 + jj) * nx1
						children = append(children, data[row+si.lo:row+si.hi]...)
					}
				}
				pt.data = append(pt.data, floats.Sum(children)/divisor)
			}
		}
	}
	return &pt
}

func (pt *patch) mergeInto(g *Grid) {
	e := g.Extent
	n := 0
	for k := pt.lo[2]; k < pt.hi[2]; k++ {
		for j := pt.lo[1]; j < pt.hi[1]; j++ {
			row := g.Index(k-e.Lo[2], j-e.Lo[1], 0) - e.Lo[0]
			for i := pt.lo[0]; i < pt.hi[0]; i++ {
				if pt.accumulate {
					g.Data[row+i] += pt.data[n]
				} else {
					g.Data[row+i] = pt.data[n]
				}
				n++
			}
		}
	}
}
