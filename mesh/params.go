package mesh

// Defaults used when the header omits a value
const (
	DefaultGamma  = 5.0 / 3.0
	DefaultUseE   = true
	DefaultNGhost = 2
)

// ParamsFromHeader derives mesh parameters from the <mesh>, <meshblock> and
// fluid sections. Gamma and use_e come from <hydro> when present, else <mhd>
func ParamsFromHeader(h *Header) Params {
	var p Params
	for a, key := range []string{"nx1", "nx2", "nx3"} {
		p.RootCells[a] = Get(h, "mesh", key, 1).Value
	}
	for a, key := range []string{"nx1", "nx2", "nx3"} {
		p.BlockCells[a] = Get(h, "meshblock", key, p.RootCells[a]).Value
	}
	p.NGhost = Get(h, "mesh", "nghost", DefaultNGhost).Value
	for a, axis := range []string{"x1", "x2", "x3"} {
		p.Domain[2*a] = Get(h, "mesh", axis+"min", 0.0).Value
		p.Domain[2*a+1] = Get(h, "mesh", axis+"max", 1.0).Value
	}

	fluid := "hydro"
	if !h.HasSection(fluid) && h.HasSection("mhd") {
		fluid = "mhd"
	}
	p.UseE = Get(h, fluid, "use_e", DefaultUseE).Value
	p.Gamma = Get(h, fluid, "gamma", DefaultGamma).Value
	return p
}

// LevelFactor is the refinement ratio of level relative to root along axis.
// Degenerate axes are never refined
func (p Params) LevelFactor(level, axis int) int {
	if p.Degenerate(axis) {
		return 1
	}
	return 1 << level
}

// BlockBox is the physical extent of the block at loc on level
func (p Params) BlockBox(level int, loc LogicalLocation) Box {
	var b Box
	for a := 0; a < 3; a++ {
		w := p.Domain.Width(a) * float64(p.BlockCells[a]) /
			float64(p.RootCells[a]*p.LevelFactor(level, a))
		b[2*a] = p.Domain.Min(a) + float64(loc[a])*w
		b[2*a+1] = b[2*a] + w
	}
	return b
}

// Tile returns the blocks of level with logical locations in [lo, hi)
func (p Params) Tile(level int, lo, hi LogicalLocation) []MeshBlock {
	var blocks []MeshBlock
	for k := lo[2]; k < hi[2]; k++ {
		for j := lo[1]; j < hi[1]; j++ {
			for i := lo[0]; i < hi[0]; i++ {
				loc := LogicalLocation{i, j, k}
				blocks = append(blocks, MeshBlock{Loc: loc, Level: level, Box: p.BlockBox(level, loc)})
			}
		}
	}
	return blocks
}

// RootTile covers the whole domain with level-0 blocks
func (p Params) RootTile() []MeshBlock {
	var hi LogicalLocation
	for a := 0; a < 3; a++ {
		hi[a] = p.RootCells[a] / p.BlockCells[a]
	}
	return p.Tile(0, LogicalLocation{}, hi)
}
