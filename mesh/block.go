package mesh

import (
	"fmt"
	"sort"
)

// Box is a physical bounding box ordered (x1min, x1max, x2min, x2max, x3min, x3max)
type Box [6]float64

func (b Box) Min(axis int) float64 { return b[2*axis] }

func (b Box) Max(axis int) float64 { return b[2*axis+1] }

func (b Box) Width(axis int) float64 { return b[2*axis+1] - b[2*axis] }

// Intersect returns the overlap of two boxes and whether it has positive
// width along every axis
func (b Box) Intersect(o Box) (Box, bool) {
	var out Box
	ok := true
	for a := 0; a < 3; a++ {
		out[2*a] = max(b.Min(a), o.Min(a))
		out[2*a+1] = min(b.Max(a), o.Max(a))
		if out[2*a+1] <= out[2*a] {
			ok = false
		}
	}
	return out, ok
}

func (b Box) String() string {
	return fmt.Sprintf("[%g,%g]x[%g,%g]x[%g,%g]", b[0], b[1], b[2], b[3], b[4], b[5])
}

// LogicalLocation is the integer (i, j, k) index of a block within its level
type LogicalLocation [3]int

// MeshBlock describes one block of the hierarchy
type MeshBlock struct {
	ID    int             // Position in the store, also the block index of every BlockArray
	Loc   LogicalLocation // Index at Level
	Level int             // 0 = root resolution
	Box   Box             // Physical extent
}

// LevelGroup collects the blocks sharing a refinement level
type LevelGroup struct {
	Level    int
	BlockIDs []int
	Cells    int // Total cells across the group
}

// groupByLevel collects block IDs per level, ordered by level
func groupByLevel(blocks []MeshBlock, cellsPerBlock int) []LevelGroup {
	byLevel := make(map[int]*LevelGroup)
	for _, b := range blocks {
		g, ok := byLevel[b.Level]
		if !ok {
			g = &LevelGroup{Level: b.Level}
			byLevel[b.Level] = g
		}
		g.BlockIDs = append(g.BlockIDs, b.ID)
		g.Cells += cellsPerBlock
	}
	groups := make([]LevelGroup, 0, len(byLevel))
	for _, g := range byLevel {
		groups = append(groups, *g)
	}
	sort.Slice(groups, func(i, j int) bool { return groups[i].Level < groups[j].Level })
	return groups
}
