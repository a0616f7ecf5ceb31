package aggregate

import (
	"github.com/notargets/amrkit/backend"
	"go.uber.org/zap"
	"math"
	"strings"
)

// Profile is the weighted mean of value fields within the joint bins of the
// bin fields. Bins with zero norm hold NaN
type Profile struct {
	Name      string // Bin field names joined by "_"
	BinFields []string
	Shape     []int
	Norm      []float64
	Edges     [][]float64
	Centers   [][]float64
	Values    map[string][]float64
}

// Profile bins by binAxes and averages each of fields per bin, weighted by
// opts.Weights
func (a *Aggregator) Profile(binAxes []Axis, fields []string, opts HistOptions) (*Profile, error) {
	b, err := a.binAxes(binAxes, opts.Mask)
	if err != nil {
		return nil, err
	}
	w, err := a.weights(opts.Weights, opts.Mask)
	if err != nil {
		return nil, err
	}
	p := &Profile{
		Name:      strings.Join(b.fields, "_"),
		BinFields: b.fields,
		Shape:     b.shape,
		Norm:      b.accumulate(w),
		Edges:     b.edges,
		Centers:   b.centers(),
		Values:    make(map[string][]float64, len(fields)),
	}

	be := a.src.Backend()
	for _, f := range fields {
		v, err := a.values(f, opts.Mask)
		if err != nil {
			return nil, err
		}
		if w != nil {
			vw := make([]float64, len(v))
			if err := be.Apply(backend.Mul, vw, v, w); err != nil {
				return nil, err
			}
			v = vw
		}
		sums := b.accumulate(v)
		for n := range sums {
			if p.Norm[n] == 0 {
				sums[n] = math.NaN()
			} else {
				sums[n] /= p.Norm[n]
			}
		}
		p.Values[f] = sums
	}

	if empty := countZero(p.Norm); empty > 0 {
		a.log.Info("profile bins with zero norm set to NaN",
			zap.String("profile", p.Name),
			zap.Int("empty_bins", empty),
			zap.Int("bins", len(p.Norm)))
	}
	return p, nil
}

func countZero(x []float64) int {
	c := 0
	for _, v := range x {
		if v == 0 {
			c++
		}
	}
	return c
}
