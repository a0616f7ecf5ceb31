package aggregate

import (
	"fmt"
	"strings"
)

// HistOptions are shared by every dimension of a histogram or profile
type HistOptions struct {
	Weights string // Field weighting each cell; empty counts cells
	Mask    Mask
}

// Histogram is a joint, optionally weighted, N-dimensional distribution
type Histogram struct {
	Name    string // Field names joined by "_"
	Fields  []string
	Counts  []float64 // Row-major over Shape
	Shape   []int
	Edges   [][]float64
	Centers [][]float64
}

// Bin returns the count at the multi-index idx
func (h *Histogram) Bin(idx ...int) float64 {
	n := 0
	for d, i := range idx {
		n = n*h.Shape[d] + i
	}
	return h.Counts[n]
}

// binned holds the per-cell flat bin index of a set of axes, -1 for dropped cells
type binned struct {
	fields []string
	shape  []int
	edges  [][]float64
	index  []int
}

// binAxes resolves each axis, infers its edges and assigns every selected
// cell to a joint bin
func (a *Aggregator) binAxes(axes []Axis, mask Mask) (*binned, error) {
	if len(axes) == 0 {
		return nil, fmt.Errorf("%w: no axes", ErrBadBins)
	}
	b := &binned{
		fields: make([]string, len(axes)),
		shape:  make([]int, len(axes)),
		edges:  make([][]float64, len(axes)),
	}
	for d, ax := range axes {
		vals, err := a.values(ax.Field, mask)
		if err != nil {
			return nil, err
		}
		edges, err := a.edges(ax, vals)
		if err != nil {
			return nil, err
		}
		if b.index == nil {
			b.index = make([]int, len(vals))
		} else if len(vals) != len(b.index) {
			return nil, fmt.Errorf("%w: %q has %d cells, want %d", ErrMaskLength, ax.Field, len(vals), len(b.index))
		}
		nb := len(edges) - 1
		for n, v := range vals {
			if b.index[n] < 0 {
				continue
			}
			i := bin(edges, v)
			if i < 0 {
				b.index[n] = -1
				continue
			}
			b.index[n] = b.index[n]*nb + i
		}
		b.fields[d], b.shape[d], b.edges[d] = ax.Field, nb, edges
	}
	return b, nil
}

func (b *binned) size() int {
	n := 1
	for _, s := range b.shape {
		n *= s
	}
	return n
}

// accumulate sums weights (one per cell when weights is nil) into the joint bins
func (b *binned) accumulate(weights []float64) []float64 {
	out := make([]float64, b.size())
	for n, idx := range b.index {
		if idx < 0 {
			continue
		}
		if weights == nil {
			out[idx]++
		} else {
			out[idx] += weights[n]
		}
	}
	return out
}

func (b *binned) centers() [][]float64 {
	c := make([][]float64, len(b.edges))
	for d, e := range b.edges {
		c[d] = centers(e)
	}
	return c
}

// weights resolves the optional weighting field
func (a *Aggregator) weights(name string, mask Mask) ([]float64, error) {
	if name == "" {
		return nil, nil
	}
	return a.values(name, mask)
}

// Histogram bins the selected cells of the axes' fields jointly. Samples
// outside the edges or non-finite are dropped
func (a *Aggregator) Histogram(axes []Axis, opts HistOptions) (*Histogram, error) {
	b, err := a.binAxes(axes, opts.Mask)
	if err != nil {
		return nil, err
	}
	w, err := a.weights(opts.Weights, opts.Mask)
	if err != nil {
		return nil, err
	}
	return &Histogram{
		Name:    strings.Join(b.fields, "_"),
		Fields:  b.fields,
		Counts:  b.accumulate(w),
		Shape:   b.shape,
		Edges:   b.edges,
		Centers: b.centers(),
	}, nil
}
