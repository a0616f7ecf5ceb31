package analysis

import (
	"fmt"
	"github.com/notargets/amrkit/aggregate"
	"github.com/notargets/amrkit/athena"
	"github.com/notargets/amrkit/backend"
	"github.com/notargets/amrkit/backend/occa"
	"github.com/notargets/amrkit/fields"
	"github.com/notargets/amrkit/resample"
	"github.com/notargets/amrkit/results"
	"go.uber.org/zap"
	"math"
	"strings"
)

type options struct {
	log *zap.Logger
}

type Option func(*options)

func WithLogger(log *zap.Logger) Option {
	return func(o *options) {
		if log != nil {
			o.log = log
		}
	}
}

func newOptions(opts []Option) options {
	o := options{log: zap.NewNop()}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// SelectBackend returns the array backend named by device: "host", or
// "auto" for the first OCCA device that opens
func SelectBackend(device string, log *zap.Logger) backend.Backend {
	if device == "host" {
		return backend.Host{}
	}
	return occa.Select(log)
}

// Open loads cfg.Input and returns a field registry over it. Close the
// registry's backend when done
func Open(cfg *Config, opts ...Option) (*fields.Registry, error) {
	o := newOptions(opts)
	m, err := athena.OpenAthdf(cfg.Input, athena.WithLogger(o.log), athena.Variables(cfg.Variables...))
	if err != nil {
		return nil, err
	}
	return fields.NewRegistry(m,
		fields.WithBackend(SelectBackend(cfg.Device, o.log)),
		fields.WithLogger(o.log)), nil
}

// Run computes every reduction cfg requests on the snapshot behind reg and
// saves them to cfg.Output when set
func Run(cfg *Config, reg *fields.Registry, opts ...Option) (*results.Results, error) {
	o := newOptions(opts)
	num, err := athena.SnapshotNumber(cfg.Input)
	if err != nil {
		o.log.Debug("input has no snapshot number", zap.String("input", cfg.Input))
		num = -1
	}
	res := results.New(cfg.Input, num, reg.Mesh())
	agg := aggregate.New(reg, aggregate.WithLogger(o.log))

	if len(cfg.Sums) > 0 {
		sums, err := agg.Sums(cfg.Sums, nil)
		if err != nil {
			return nil, err
		}
		for k, v := range sums {
			res.Sums[k] = v
		}
	}
	for _, a := range cfg.Averages {
		mask, err := a.Where.mask(reg)
		if err != nil {
			return nil, err
		}
		avgs, err := agg.Averages(a.Fields, weightField(a.Weights), mask)
		if err != nil {
			return nil, err
		}
		for k, v := range avgs {
			res.Avgs[k] = v
		}
	}
	for _, h := range cfg.Histograms {
		mask, err := h.Where.mask(reg)
		if err != nil {
			return nil, err
		}
		axes, err := binAxes(h.Vars, h.Bins, h.Scale, h.Ranges)
		if err != nil {
			return nil, err
		}
		hist, err := agg.Histogram(axes, aggregate.HistOptions{Weights: weightField(h.Weights), Mask: mask})
		if err != nil {
			return nil, fmt.Errorf("histogram %v: %w", h.Vars, err)
		}
		res.AddHistogram(orString(h.Key, hist.Name), hist)
	}
	for _, p := range cfg.Profiles {
		mask, err := p.Where.mask(reg)
		if err != nil {
			return nil, err
		}
		axes, err := binAxes(p.Bin, p.Bins, p.Scale, p.Ranges)
		if err != nil {
			return nil, err
		}
		prof, err := agg.Profile(axes, p.Fields, aggregate.HistOptions{Weights: weightField(p.Weights), Mask: mask})
		if err != nil {
			return nil, fmt.Errorf("profile over %v: %w", p.Bin, err)
		}
		res.AddProfile(orString(p.Key, prof.Name), prof)
	}
	if len(cfg.Slices) > 0 {
		rs := resample.New(reg, resample.WithWorkers(cfg.Workers), resample.WithLogger(o.log))
		for _, s := range cfg.Slices {
			box := resample.SliceBox(reg.Mesh().Params, s.Zoom, s.Level)
			d, err := rs.Slice(s.Field, s.Level, box, *s.Axis)
			if err != nil {
				return nil, fmt.Errorf("slice %s: %w", s.Field, err)
			}
			res.AddSlice(orString(s.Key, s.Field), s.Field, s.Level, *s.Axis, box, d)
		}
	}

	o.log.Info("analysis complete",
		zap.String("input", cfg.Input),
		zap.Stringer("run_id", res.RunID),
		zap.Int("sums", len(res.Sums)),
		zap.Int("averages", len(res.Avgs)),
		zap.Int("histograms", len(res.Hists)),
		zap.Int("profiles", len(res.Profs)),
		zap.Int("slices", len(res.Slices)))
	if cfg.Output != "" {
		if err := res.Save(cfg.Output); err != nil {
			return nil, err
		}
	}
	return res, nil
}

func weightField(w string) string {
	if strings.EqualFold(w, Unweighted) {
		return ""
	}
	return w
}

func binAxes(vars []string, bins int, scale string, ranges [][]float64) ([]aggregate.Axis, error) {
	sc, err := aggregate.ParseScale(scale)
	if err != nil {
		return nil, err
	}
	axes := make([]aggregate.Axis, len(vars))
	for d, v := range vars {
		axes[d] = aggregate.Axis{Field: v, Bins: bins, Scale: sc}
		if d < len(ranges) && len(ranges[d]) == 2 {
			axes[d].Range = &aggregate.Range{Lo: ranges[d][0], Hi: ranges[d][1]}
		}
	}
	return axes, nil
}

// mask resolves the filter field; a nil filter selects every cell
func (f *Filter) mask(reg *fields.Registry) (aggregate.Mask, error) {
	if f == nil {
		return nil, nil
	}
	arr, err := reg.Resolve(f.Field)
	if err != nil {
		return nil, fmt.Errorf("filter: %w", err)
	}
	lo, hi := math.Inf(-1), math.Inf(1)
	if f.Min != nil {
		lo = *f.Min
	}
	if f.Max != nil {
		hi = *f.Max
	}
	return aggregate.Where(arr, func(v float64) bool { return v >= lo && v < hi }), nil
}
