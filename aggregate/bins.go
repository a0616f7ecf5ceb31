package aggregate

import (
	"fmt"
	"go.uber.org/zap"
	"gonum.org/v1/gonum/floats"
	"math"
	"sort"
	"strings"
)

// Scale selects linear or logarithmic bin spacing
type Scale uint8

const (
	Linear Scale = iota
	Log
)

func ParseScale(s string) (Scale, error) {
	switch strings.ToLower(s) {
	case "", "linear", "lin":
		return Linear, nil
	case "log":
		return Log, nil
	}
	return Linear, fmt.Errorf("%w: %q", ErrBadScale, s)
}

func (s Scale) String() string {
	if s == Log {
		return "log"
	}
	return "linear"
}

func (s Scale) MarshalText() ([]byte, error) { return []byte(s.String()), nil }

func (s *Scale) UnmarshalText(b []byte) error {
	v, err := ParseScale(string(b))
	if err != nil {
		return err
	}
	*s = v
	return nil
}

// Range bounds the outer bin edges
type Range struct {
	Lo, Hi float64
}

// Axis describes the binning of one histogram dimension. Explicit Edges win
// over Bins; a nil Range is inferred from the selected data
type Axis struct {
	Field string
	Bins  int
	Edges []float64
	Range *Range
	Scale Scale
}

func span(n int, lo, hi float64, scale Scale) []float64 {
	edges := make([]float64, n+1)
	if scale == Log {
		floats.LogSpan(edges, lo, hi)
	} else {
		floats.Span(edges, lo, hi)
	}
	// Pin the endpoints so samples at the extremes are never lost to rounding
	edges[0], edges[n] = lo, hi
	return edges
}

// edges returns the bin edges of ax for the already-masked values
func (a *Aggregator) edges(ax Axis, values []float64) ([]float64, error) {
	if len(ax.Edges) > 0 {
		if len(ax.Edges) < 2 {
			return nil, fmt.Errorf("%w: %q needs at least two edges", ErrBadBins, ax.Field)
		}
		for n := 1; n < len(ax.Edges); n++ {
			if !(ax.Edges[n] > ax.Edges[n-1]) {
				return nil, fmt.Errorf("%w: %q edges must increase strictly", ErrBadBins, ax.Field)
			}
		}
		return append([]float64(nil), ax.Edges...), nil
	}
	if ax.Bins < 1 {
		return nil, fmt.Errorf("%w: %q has %d bins", ErrBadBins, ax.Field, ax.Bins)
	}
	if ax.Scale != Linear && ax.Scale != Log {
		return nil, fmt.Errorf("%w: %d", ErrBadScale, ax.Scale)
	}

	if ax.Range != nil {
		lo, hi := ax.Range.Lo, ax.Range.Hi
		if !(hi > lo) || (ax.Scale == Log && !(lo > 0)) {
			return nil, fmt.Errorf("%w: %q range [%g, %g] for %s bins", ErrBadBins, ax.Field, lo, hi, ax.Scale)
		}
		return span(ax.Bins, lo, hi, ax.Scale), nil
	}

	lo, hi := math.Inf(1), math.Inf(-1)
	for _, v := range values {
		if math.IsInf(v, 0) || math.IsNaN(v) || (ax.Scale == Log && !(v > 0)) {
			continue
		}
		lo, hi = math.Min(lo, v), math.Max(hi, v)
	}
	if lo > hi {
		lo, hi = 0, 1
		if ax.Scale == Log {
			lo, hi = 1, 10
		}
		a.log.Warn("no usable values for bin range, using default",
			zap.String("field", ax.Field),
			zap.Stringer("scale", ax.Scale),
			zap.Float64("lo", lo),
			zap.Float64("hi", hi))
		return span(ax.Bins, lo, hi, ax.Scale), nil
	}
	if lo == hi {
		// A single value gets a unit-wide range around it, a decade in log
		if ax.Scale == Log {
			lo, hi = lo/math.Sqrt(10), hi*math.Sqrt(10)
		} else {
			lo, hi = lo-0.5, hi+0.5
		}
	}
	return span(ax.Bins, lo, hi, ax.Scale), nil
}

// bin returns the index of the bin holding v, or -1 when v falls outside.
// Bins are half-open except the last, which also holds the right edge
func bin(edges []float64, v float64) int {
	nb := len(edges) - 1
	if !(v >= edges[0]) || v > edges[nb] {
		return -1
	}
	if v == edges[nb] {
		return nb - 1
	}
	return sort.Search(len(edges), func(i int) bool { return edges[i] > v }) - 1
}

func centers(edges []float64) []float64 {
	c := make([]float64, len(edges)-1)
	for n := range c {
		c[n] = 0.5 * (edges[n] + edges[n+1])
	}
	return c
}
