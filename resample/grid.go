package resample

import (
	"fmt"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

// Grid is a field reconstructed on a uniform level, row-major (k, j, i)
type Grid struct {
	Data   []float64
	Shape  [3]int // (nk, nj, ni)
	Level  int
	Extent Extent
}

func newGrid(e Extent) *Grid {
	return &Grid{
		Data:   make([]float64, e.Len()),
		Shape:  e.Shape(),
		Level:  e.Level,
		Extent: e,
	}
}

func (g *Grid) Index(k, j, i int) int { return (k*g.Shape[1]+j)*g.Shape[2] + i }

func (g *Grid) At(k, j, i int) float64 { return g.Data[g.Index(k, j, i)] }

func (g *Grid) Sum() float64 { return floats.Sum(g.Data) }

// AxisMean averages the grid along a physical axis (0 = x1, 1 = x2, 2 = x3)
// and returns the remaining two axes in array order as rows, cols
func (g *Grid) AxisMean(axis int) (*mat.Dense, error) {
	nk, nj, ni := g.Shape[0], g.Shape[1], g.Shape[2]
	var out *mat.Dense
	switch axis {
	case 2:
		out = mat.NewDense(nj, ni, nil)
		for k := 0; k < nk; k++ {
			for j := 0; j < nj; j++ {
				for i := 0; i < ni; i++ {
					out.Set(j, i, out.At(j, i)+g.At(k, j, i))
				}
			}
		}
		out.Scale(1/float64(nk), out)
	case 1:
		out = mat.NewDense(nk, ni, nil)
		for k := 0; k < nk; k++ {
			for j := 0; j < nj; j++ {
				for i := 0; i < ni; i++ {
					out.Set(k, i, out.At(k, i)+g.At(k, j, i))
				}
			}
		}
		out.Scale(1/float64(nj), out)
	case 0:
		out = mat.NewDense(nk, nj, nil)
		for k := 0; k < nk; k++ {
			for j := 0; j < nj; j++ {
				out.Set(k, j, floats.Sum(g.Data[g.Index(k, j, 0):g.Index(k, j, 0)+ni])/float64(ni))
			}
		}
	default:
		return nil, fmt.Errorf("axis %d out of range [0, 2]", axis)
	}
	return out, nil
}
