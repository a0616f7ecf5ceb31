package aggregate

import (
	"errors"
	"fmt"
	"github.com/notargets/amrkit/backend"
	"github.com/notargets/amrkit/mesh"
	"go.uber.org/zap"
)

var (
	ErrMaskLength = errors.New("mask length does not match field")
	ErrZeroWeight = errors.New("weights sum to zero")
	ErrBadBins    = errors.New("invalid bins")
	ErrBadScale   = errors.New("unknown bin scale")
)

// Source supplies resolved fields and the array backend to reduce them with
type Source interface {
	Resolve(name string) (*mesh.BlockArray, error)
	Backend() backend.Backend
}

// Mask selects cells in flat block, k, j, i order. A nil Mask selects every cell
type Mask []bool

// Where builds a mask from a predicate over an array's values
func Where(arr *mesh.BlockArray, pred func(v float64) bool) Mask {
	m := make(Mask, len(arr.Data))
	for n, v := range arr.Data {
		m[n] = pred(v)
	}
	return m
}

// And combines two masks; a nil operand selects everything
func And(a, b Mask) Mask {
	if a == nil {
		return b
	}
	if b == nil {
		return a
	}
	out := make(Mask, min(len(a), len(b)))
	for n := range out {
		out[n] = a[n] && b[n]
	}
	return out
}

func (m Mask) Count() int {
	c := 0
	for _, v := range m {
		if v {
			c++
		}
	}
	return c
}

// apply returns the masked values, or x itself for a nil mask
func (m Mask) apply(x []float64) ([]float64, error) {
	if m == nil {
		return x, nil
	}
	if len(m) != len(x) {
		return nil, fmt.Errorf("%w: %d != %d", ErrMaskLength, len(m), len(x))
	}
	out := make([]float64, 0, m.Count())
	for n, keep := range m {
		if keep {
			out = append(out, x[n])
		}
	}
	return out, nil
}

// Aggregator reduces fields to scalars, histograms and profiles. Outputs
// are plain host slices
type Aggregator struct {
	src Source
	log *zap.Logger
}

type Option func(*Aggregator)

func WithLogger(log *zap.Logger) Option {
	return func(a *Aggregator) {
		if log != nil {
			a.log = log
		}
	}
}

func New(src Source, opts ...Option) *Aggregator {
	a := &Aggregator{src: src, log: zap.NewNop()}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// values resolves name and applies mask
func (a *Aggregator) values(name string, mask Mask) ([]float64, error) {
	arr, err := a.src.Resolve(name)
	if err != nil {
		return nil, err
	}
	v, err := mask.apply(arr.Data)
	if err != nil {
		return nil, fmt.Errorf("field %q: %w", name, err)
	}
	return v, nil
}

// Sum adds the selected cells of field
func (a *Aggregator) Sum(field string, mask Mask) (float64, error) {
	v, err := a.values(field, mask)
	if err != nil {
		return 0, err
	}
	return a.src.Backend().Sum(v)
}

// Average is the weights-weighted mean of the selected cells. An empty
// weights name weighs every cell equally
func (a *Aggregator) Average(field, weights string, mask Mask) (float64, error) {
	v, err := a.values(field, mask)
	if err != nil {
		return 0, err
	}
	be := a.src.Backend()
	if weights == "" {
		if len(v) == 0 {
			return 0, fmt.Errorf("average of %q: %w", field, ErrZeroWeight)
		}
		s, err := be.Sum(v)
		return s / float64(len(v)), err
	}
	w, err := a.values(weights, mask)
	if err != nil {
		return 0, err
	}
	num, err := be.Dot(v, w)
	if err != nil {
		return 0, err
	}
	den, err := be.Sum(w)
	if err != nil {
		return 0, err
	}
	if den == 0 {
		return 0, fmt.Errorf("average of %q by %q: %w", field, weights, ErrZeroWeight)
	}
	return num / den, nil
}

// Sums evaluates Sum for each field
func (a *Aggregator) Sums(fields []string, mask Mask) (map[string]float64, error) {
	out := make(map[string]float64, len(fields))
	for _, f := range fields {
		s, err := a.Sum(f, mask)
		if err != nil {
			return nil, err
		}
		out[f] = s
	}
	return out, nil
}

// Averages evaluates Average for each field with shared weights
func (a *Aggregator) Averages(fields []string, weights string, mask Mask) (map[string]float64, error) {
	out := make(map[string]float64, len(fields))
	for _, f := range fields {
		s, err := a.Average(f, weights, mask)
		if err != nil {
			return nil, err
		}
		out[f] = s
	}
	return out, nil
}
