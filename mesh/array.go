package mesh

import (
	"fmt"
)

// BlockArray stores one scalar field for every block of a mesh.
// Layout: [Block 0 Data][Block 1 Data]...[Block N-1 Data], each block in
// row-major (nx3, nx2, nx1) order so the flat cell order is block, k, j, i
type BlockArray struct {
	Data      []float64
	Shape     [3]int // Per-block array shape (nx3, nx2, nx1)
	NumBlocks int
}

// NewBlockArray allocates a zeroed array for nb blocks of the given shape
func NewBlockArray(nb int, shape [3]int) *BlockArray {
	return &BlockArray{
		Data:      make([]float64, nb*shape[0]*shape[1]*shape[2]),
		Shape:     shape,
		NumBlocks: nb,
	}
}

// WrapBlockArray validates data against nb blocks of shape and wraps it
// without copying
func WrapBlockArray(data []float64, nb int, shape [3]int) (*BlockArray, error) {
	want := nb * shape[0] * shape[1] * shape[2]
	if len(data) != want {
		return nil, fmt.Errorf("%w: have %d values, want %d blocks of %v = %d",
			ErrShapeMismatch, len(data), nb, shape, want)
	}
	return &BlockArray{Data: data, Shape: shape, NumBlocks: nb}, nil
}

// Stride is the number of cells per block
func (a *BlockArray) Stride() int { return a.Shape[0] * a.Shape[1] * a.Shape[2] }

func (a *BlockArray) Len() int { return len(a.Data) }

// Offsets returns the start of each block in Data, plus the total length
func (a *BlockArray) Offsets() []int {
	offsets := make([]int, a.NumBlocks+1)
	for b := 1; b <= a.NumBlocks; b++ {
		offsets[b] = offsets[b-1] + a.Stride()
	}
	return offsets
}

// Block returns block b's cells as a sub-slice of Data
func (a *BlockArray) Block(b int) []float64 {
	if b < 0 || b >= a.NumBlocks {
		return nil
	}
	s := a.Stride()
	return a.Data[b*s : (b+1)*s]
}

// Index returns the flat position of cell (k, j, i) of block b
func (a *BlockArray) Index(b, k, j, i int) int {
	return ((b*a.Shape[0]+k)*a.Shape[1]+j)*a.Shape[2] + i
}

func (a *BlockArray) At(b, k, j, i int) float64 { return a.Data[a.Index(b, k, j, i)] }

// Like allocates a zeroed array with the same layout
func (a *BlockArray) Like() *BlockArray { return NewBlockArray(a.NumBlocks, a.Shape) }

func (a *BlockArray) Clone() *BlockArray {
	out := a.Like()
	copy(out.Data, a.Data)
	return out
}

func (a *BlockArray) Fill(v float64) *BlockArray {
	for i := range a.Data {
		a.Data[i] = v
	}
	return a
}

// SameLayout reports whether o can be combined elementwise with a
func (a *BlockArray) SameLayout(o *BlockArray) bool {
	return o != nil && a.NumBlocks == o.NumBlocks && a.Shape == o.Shape && len(a.Data) == len(o.Data)
}
