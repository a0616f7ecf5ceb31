package mesh

import (
	"fmt"
	"go.uber.org/zap"
	"sort"
)

// Params is the static description of a hierarchy, axis order x1, x2, x3
type Params struct {
	RootCells  [3]int // Root-level cell counts N1, N2, N3
	BlockCells [3]int // Per-block cell counts nx1, nx2, nx3
	NGhost     int
	Domain     Box
	Gamma      float64 // Adiabatic index
	UseE       bool    // Energy equation evolved
}

// Degenerate reports whether an axis has a single root cell and is never refined
func (p Params) Degenerate(axis int) bool { return p.RootCells[axis] == 1 }

// ActiveAxes counts the non-degenerate axes
func (p Params) ActiveAxes() int {
	d := 0
	for a := 0; a < 3; a++ {
		if !p.Degenerate(a) {
			d++
		}
	}
	return d
}

// BlockShape is the per-block array shape (nx3, nx2, nx1)
func (p Params) BlockShape() [3]int {
	return [3]int{p.BlockCells[2], p.BlockCells[1], p.BlockCells[0]}
}

func (p Params) Validate() error {
	for a := 0; a < 3; a++ {
		if p.RootCells[a] < 1 || p.BlockCells[a] < 1 {
			return fmt.Errorf("%w: axis %d has root cells %d, block cells %d",
				ErrInvalidGeometry, a+1, p.RootCells[a], p.BlockCells[a])
		}
		if !(p.Domain.Width(a) > 0) {
			return fmt.Errorf("%w: domain width %g along axis %d",
				ErrInvalidGeometry, p.Domain.Width(a), a+1)
		}
	}
	return nil
}

// Coordinate field names, in the order they are built
var coordNames = []string{"x", "y", "z", "dx", "dy", "dz"}

// Mesh is the store of mesh blocks and their raw per-cell fields.
// Raw arrays are never modified after New
type Mesh struct {
	Params Params
	Time   float64
	Cycle  int
	Header *Header

	blocks []MeshBlock
	raw    map[string]*BlockArray
	coord  map[string]*BlockArray
	log    *zap.Logger
}

type Option func(*Mesh)

func WithHeader(h *Header) Option { return func(m *Mesh) { m.Header = h } }

func WithTime(t float64, cycle int) Option {
	return func(m *Mesh) { m.Time, m.Cycle = t, cycle }
}

func WithLogger(log *zap.Logger) Option {
	return func(m *Mesh) {
		if log != nil {
			m.log = log
		}
	}
}

// New validates the hierarchy and builds the coordinate fields.
// Block IDs are reassigned to their position in blocks
func New(p Params, blocks []MeshBlock, raw map[string]*BlockArray, opts ...Option) (*Mesh, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	m := &Mesh{
		Params: p,
		blocks: make([]MeshBlock, len(blocks)),
		raw:    make(map[string]*BlockArray, len(raw)),
		coord:  make(map[string]*BlockArray, len(coordNames)),
		log:    zap.NewNop(),
	}
	for _, opt := range opts {
		opt(m)
	}

	shape := p.BlockShape()
	for n, b := range blocks {
		if b.Level < 0 {
			return nil, fmt.Errorf("%w: block %d has level %d", ErrInvalidGeometry, n, b.Level)
		}
		for a := 0; a < 3; a++ {
			if !(b.Box.Width(a) > 0) {
				return nil, fmt.Errorf("%w: block %d box %v is empty along axis %d",
					ErrInvalidGeometry, n, b.Box, a+1)
			}
		}
		b.ID = n
		m.blocks[n] = b
	}
	for name, arr := range raw {
		if arr == nil || arr.NumBlocks != len(blocks) || arr.Shape != shape || len(arr.Data) != len(blocks)*arr.Stride() {
			return nil, fmt.Errorf("%w: raw field %q does not match %d blocks of %v",
				ErrShapeMismatch, name, len(blocks), shape)
		}
		m.raw[name] = arr
	}
	m.buildCoordinates()

	m.log.Debug("mesh loaded",
		zap.Int("blocks", len(m.blocks)),
		zap.Int("max_level", m.MaxLevel()),
		zap.Strings("raw", m.RawNames()))
	return m, nil
}

// buildCoordinates fills cell-center positions and cell widths for every block
func (m *Mesh) buildCoordinates() {
	shape := m.Params.BlockShape()
	nb := len(m.blocks)
	for _, name := range coordNames {
		m.coord[name] = NewBlockArray(nb, shape)
	}
	x, y, z := m.coord["x"], m.coord["y"], m.coord["z"]
	dx, dy, dz := m.coord["dx"], m.coord["dy"], m.coord["dz"]
	nx1, nx2, nx3 := m.Params.BlockCells[0], m.Params.BlockCells[1], m.Params.BlockCells[2]

	for b, blk := range m.blocks {
		w1 := blk.Box.Width(0) / float64(nx1)
		w2 := blk.Box.Width(1) / float64(nx2)
		w3 := blk.Box.Width(2) / float64(nx3)
		for k := 0; k < nx3; k++ {
			zc := blk.Box.Min(2) + (float64(k)+0.5)*w3
			for j := 0; j < nx2; j++ {
				yc := blk.Box.Min(1) + (float64(j)+0.5)*w2
				for i := 0; i < nx1; i++ {
					n := x.Index(b, k, j, i)
					x.Data[n] = blk.Box.Min(0) + (float64(i)+0.5)*w1
					y.Data[n] = yc
					z.Data[n] = zc
					dx.Data[n], dy.Data[n], dz.Data[n] = w1, w2, w3
				}
			}
		}
	}
}

func (m *Mesh) BlockCount() int { return len(m.blocks) }

func (m *Mesh) Block(i int) MeshBlock { return m.blocks[i] }

// Blocks returns a copy of the block list
func (m *Mesh) Blocks() []MeshBlock { return append([]MeshBlock(nil), m.blocks...) }

func (m *Mesh) MaxLevel() int {
	lmax := 0
	for _, b := range m.blocks {
		lmax = max(lmax, b.Level)
	}
	return lmax
}

// LevelGroups returns the blocks grouped by refinement level, coarsest first
func (m *Mesh) LevelGroups() []LevelGroup {
	shape := m.Params.BlockShape()
	return groupByLevel(m.blocks, shape[0]*shape[1]*shape[2])
}

// Raw returns a loaded raw field
func (m *Mesh) Raw(name string) (*BlockArray, error) {
	arr, ok := m.raw[name]
	if !ok {
		return nil, fmt.Errorf("raw field %q: %w", name, ErrNoSuchField)
	}
	return arr, nil
}

func (m *Mesh) HasRaw(name string) bool {
	_, ok := m.raw[name]
	return ok
}

// RawNames lists the loaded raw fields in sorted order
func (m *Mesh) RawNames() []string {
	names := make([]string, 0, len(m.raw))
	for name := range m.raw {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Coord returns one of the coordinate fields x, y, z, dx, dy, dz
func (m *Mesh) Coord(name string) (*BlockArray, bool) {
	arr, ok := m.coord[name]
	return arr, ok
}

func (m *Mesh) CoordNames() []string { return append([]string(nil), coordNames...) }
