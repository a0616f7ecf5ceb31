package resample

import (
	"github.com/notargets/amrkit/mesh"
)

// Coords holds cell-center positions of a uniform-level grid and its cell widths
type Coords struct {
	X, Y, Z    *Grid
	Dx, Dy, Dz float64
}

// Coordinates returns the cell centers of the grid Field would produce for
// the same level and box
func (r *Resampler) Coordinates(level int, box mesh.Box) (*Coords, error) {
	p := r.src.Mesh().Params
	ext, err := IndexExtent(p, level, box)
	if err != nil {
		return nil, err
	}
	c := &Coords{
		X:  newGrid(ext),
		Y:  newGrid(ext),
		Z:  newGrid(ext),
		Dx: CellWidth(p, level, 0),
		Dy: CellWidth(p, level, 1),
		Dz: CellWidth(p, level, 2),
	}
	center := func(axis, idx int) float64 {
		return p.Domain.Min(axis) + (float64(idx)+0.5)*CellWidth(p, level, axis)
	}
	shape := ext.Shape()
	for k := 0; k < shape[0]; k++ {
		z := center(2, ext.Lo[2]+k)
		for j := 0; j < shape[1]; j++ {
			y := center(1, ext.Lo[1]+j)
			for i := 0; i < shape[2]; i++ {
				n := c.X.Index(k, j, i)
				c.X.Data[n] = center(0, ext.Lo[0]+i)
				c.Y.Data[n] = y
				c.Z.Data[n] = z
			}
		}
	}
	return c, nil
}
