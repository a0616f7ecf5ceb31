package resample

import (
	"errors"
	"fmt"
	"github.com/notargets/amrkit/mesh"
)

// ErrEmptyBox is returned when a requested box selects no cells at the level
var ErrEmptyBox = errors.New("box selects no cells")

// Extent is a range of global cell indices on one level, axis order x1, x2, x3
type Extent struct {
	Level  int
	Lo, Hi [3]int // Hi is exclusive
}

// Shape is the array shape (nk, nj, ni) of the extent
func (e Extent) Shape() [3]int {
	return [3]int{e.Hi[2] - e.Lo[2], e.Hi[1] - e.Lo[1], e.Hi[0] - e.Lo[0]}
}

func (e Extent) Len() int {
	s := e.Shape()
	return s[0] * s[1] * s[2]
}

// CellWidth is the physical cell size along axis at the extent's level
func CellWidth(p mesh.Params, level, axis int) float64 {
	return p.Domain.Width(axis) / float64(p.RootCells[axis]*p.LevelFactor(level, axis))
}

// Box is the physical region covered by the extent's cells
func (e Extent) Box(p mesh.Params) mesh.Box {
	var b mesh.Box
	for a := 0; a < 3; a++ {
		w := CellWidth(p, e.Level, a)
		b[2*a] = p.Domain.Min(a) + float64(e.Lo[a])*w
		b[2*a+1] = p.Domain.Min(a) + float64(e.Hi[a])*w
	}
	return b
}

// IndexExtent converts a physical box to cell index bounds at level.
// Each bound is (bound - domain min) * cells per unit length, truncated
// toward zero. Degenerate axes always map to [0, 1)
func IndexExtent(p mesh.Params, level int, box mesh.Box) (Extent, error) {
	if level < 0 {
		return Extent{}, fmt.Errorf("level %d: %w", level, mesh.ErrInvalidGeometry)
	}
	e := Extent{Level: level}
	for a := 0; a < 3; a++ {
		if p.Degenerate(a) {
			e.Lo[a], e.Hi[a] = 0, 1
			continue
		}
		perUnit := float64(p.RootCells[a]*p.LevelFactor(level, a)) / p.Domain.Width(a)
		e.Lo[a] = int((box.Min(a) - p.Domain.Min(a)) * perUnit)
		e.Hi[a] = int((box.Max(a) - p.Domain.Min(a)) * perUnit)
		if e.Hi[a] <= e.Lo[a] {
			return Extent{}, fmt.Errorf("box %v at level %d, axis %d index range [%d, %d): %w",
				box, level, a+1, e.Lo[a], e.Hi[a], ErrEmptyBox)
		}
	}
	return e, nil
}
