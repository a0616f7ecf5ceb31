package main

import (
	"fmt"
	"github.com/notargets/amrkit/aggregate"
	"github.com/notargets/amrkit/analysis"
	"github.com/notargets/amrkit/athena"
	"github.com/notargets/amrkit/fields"
	"github.com/notargets/amrkit/resample"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"sort"
	"strings"
	"text/tabwriter"
)

// binning flags of one command
type binFlags struct {
	weights string
	bins    int
	scale   string
}

var (
	avgWeights string
	histFlags  binFlags
	profFlags  binFlags
	binFields  []string
	level      int
	zoom       int
	axis       int
)

var infoCmd = &cobra.Command{
	Use:   "info FILE",
	Short: "Describe a snapshot: mesh parameters, refinement levels and fields",
	Args:  cobra.ExactArgs(1),
	RunE: withSnapshot(func(cmd *cobra.Command, args []string, reg *fields.Registry) error {
		m := reg.Mesh()
		p := m.Params
		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
		fmt.Fprintf(w, "time\t%g\n", m.Time)
		fmt.Fprintf(w, "cycle\t%d\n", m.Cycle)
		fmt.Fprintf(w, "root cells\t%v\n", p.RootCells)
		fmt.Fprintf(w, "block cells\t%v\n", p.BlockCells)
		fmt.Fprintf(w, "domain\t%v\n", p.Domain)
		fmt.Fprintf(w, "gamma\t%g\n", p.Gamma)
		fmt.Fprintf(w, "backend\t%s\n", reg.Backend().Name())
		fmt.Fprintf(w, "blocks\t%d\n", m.BlockCount())
		for _, g := range m.LevelGroups() {
			fmt.Fprintf(w, "  level %d\t%d blocks, %d cells\n", g.Level, len(g.BlockIDs), g.Cells)
		}
		fmt.Fprintf(w, "raw fields\t%s\n", strings.Join(m.RawNames(), " "))
		fmt.Fprintf(w, "fields\t%s\n", strings.Join(reg.Names(), " "))
		return w.Flush()
	}),
}

var sumCmd = &cobra.Command{
	Use:   "sum FILE FIELD...",
	Short: "Sum fields over every cell",
	Args:  cobra.MinimumNArgs(2),
	RunE: withSnapshot(func(cmd *cobra.Command, args []string, reg *fields.Registry) error {
		sums, err := aggregate.New(reg, aggregate.WithLogger(logger)).Sums(args[1:], nil)
		if err != nil {
			return err
		}
		res := newResults(args[0], reg)
		res.Sums = sums
		return emit(cmd, res)
	}),
}

var avgCmd = &cobra.Command{
	Use:   "avg FILE FIELD...",
	Short: "Average fields over every cell, optionally weighted",
	Args:  cobra.MinimumNArgs(2),
	RunE: withSnapshot(func(cmd *cobra.Command, args []string, reg *fields.Registry) error {
		avgs, err := aggregate.New(reg, aggregate.WithLogger(logger)).Averages(args[1:], weightField(avgWeights), nil)
		if err != nil {
			return err
		}
		res := newResults(args[0], reg)
		res.Avgs = avgs
		return emit(cmd, res)
	}),
}

var histCmd = &cobra.Command{
	Use:   "hist FILE VAR...",
	Short: "Joint histogram of one or more fields",
	Args:  cobra.MinimumNArgs(2),
	RunE: withSnapshot(func(cmd *cobra.Command, args []string, reg *fields.Registry) error {
		axes, err := histFlags.axes(args[1:])
		if err != nil {
			return err
		}
		h, err := aggregate.New(reg, aggregate.WithLogger(logger)).
			Histogram(axes, aggregate.HistOptions{Weights: weightField(histFlags.weights)})
		if err != nil {
			return err
		}
		res := newResults(args[0], reg)
		res.AddHistogram(h.Name, h)
		return emit(cmd, res)
	}),
}

var profileCmd = &cobra.Command{
	Use:   "profile FILE FIELD...",
	Short: "Weighted averages of fields binned by --bin",
	Args:  cobra.MinimumNArgs(2),
	RunE: withSnapshot(func(cmd *cobra.Command, args []string, reg *fields.Registry) error {
		axes, err := profFlags.axes(binFields)
		if err != nil {
			return err
		}
		p, err := aggregate.New(reg, aggregate.WithLogger(logger)).
			Profile(axes, args[1:], aggregate.HistOptions{Weights: weightField(profFlags.weights)})
		if err != nil {
			return err
		}
		res := newResults(args[0], reg)
		res.AddProfile(p.Name, p)
		return emit(cmd, res)
	}),
}

var sliceCmd = &cobra.Command{
	Use:   "slice FILE FIELD",
	Short: "Resample a field on a uniform level and average it along an axis",
	Args:  cobra.ExactArgs(2),
	RunE: withSnapshot(func(cmd *cobra.Command, args []string, reg *fields.Registry) error {
		box := resample.SliceBox(reg.Mesh().Params, zoom, level)
		rs := resample.New(reg, resample.WithWorkers(workers), resample.WithLogger(logger))
		d, err := rs.Slice(args[1], level, box, axis)
		if err != nil {
			return err
		}
		res := newResults(args[0], reg)
		res.AddSlice(args[1], args[1], level, axis, box, d)
		return emit(cmd, res)
	}),
}

var runCmd = &cobra.Command{
	Use:   "run CONFIG",
	Short: "Execute the reductions declared in a YAML run file",
	Long: `Loads the snapshot named by the run file's input and computes its sums,
averages, histograms, profiles and slices. Global flags override the
file's device, workers and output when set.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := analysis.LoadConfig(args[0])
		if err != nil {
			return err
		}
		flags := cmd.Flags()
		if flags.Changed("device") {
			cfg.Device = device
		}
		if flags.Changed("workers") {
			cfg.Workers = workers
		}
		if flags.Changed("output") {
			cfg.Output = output
		}
		reg, err := analysis.Open(cfg, analysis.WithLogger(logger))
		if err != nil {
			return err
		}
		defer reg.Backend().Close()
		res, err := analysis.Run(cfg, reg, analysis.WithLogger(logger))
		if err != nil {
			return err
		}
		if cfg.Output == "" {
			return res.WriteYAML(cmd.OutOrStdout())
		}
		return nil
	},
}

var historyCmd = &cobra.Command{
	Use:   "history FILE [COLUMN...]",
	Short: "Print columns of an Athena++ .hst history file",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		h, err := athena.ReadHistory(args[0])
		if err != nil {
			return err
		}
		cols := args[1:]
		if len(cols) == 0 {
			for name := range h {
				cols = append(cols, name)
			}
			sort.Strings(cols)
		}
		for _, c := range cols {
			if _, ok := h[c]; !ok {
				return fmt.Errorf("history %s has no column %q", args[0], c)
			}
		}
		logger.Debug("history read", zap.String("path", args[0]), zap.Int("rows", len(h[cols[0]])))
		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, strings.Join(cols, "\t"))
		for n := range h[cols[0]] {
			row := make([]string, len(cols))
			for i, c := range cols {
				row[i] = fmt.Sprintf("%.6g", h[c][n])
			}
			fmt.Fprintln(w, strings.Join(row, "\t"))
		}
		return w.Flush()
	},
}

func init() {
	avgCmd.Flags().StringVar(&avgWeights, "weights", "", "weighting field, empty for a plain mean")
	histFlags.register(histCmd, analysis.DefaultHistBins, "log")
	profFlags.register(profileCmd, analysis.DefaultProfileBins, "linear")
	profileCmd.Flags().StringSliceVar(&binFields, "bin", []string{"r"}, "fields to bin by")

	sliceCmd.Flags().IntVar(&level, "level", 0, "refinement level of the uniform grid")
	sliceCmd.Flags().IntVar(&zoom, "zoom", 0, "shrink the x1 and x2 extent by 2^zoom")
	sliceCmd.Flags().IntVar(&axis, "axis", 2, "axis averaged away: 0 = x1, 1 = x2, 2 = x3")
}

// withSnapshot opens the snapshot named by args[0] and releases its backend after fn
func withSnapshot(fn func(cmd *cobra.Command, args []string, reg *fields.Registry) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		reg, err := openSnapshot(args[0])
		if err != nil {
			return err
		}
		defer func() {
			if err := reg.Backend().Close(); err != nil {
				logger.Warn("closing backend", zap.Error(err))
			}
		}()
		return fn(cmd, args, reg)
	}
}

func (f *binFlags) register(cmd *cobra.Command, bins int, scale string) {
	cmd.Flags().StringVar(&f.weights, "weights", analysis.DefaultWeights, "weighting field, none to count cells")
	cmd.Flags().IntVar(&f.bins, "bins", bins, "bins per dimension")
	cmd.Flags().StringVar(&f.scale, "scale", scale, "bin spacing: linear or log")
}

func (f *binFlags) axes(vars []string) ([]aggregate.Axis, error) {
	sc, err := aggregate.ParseScale(f.scale)
	if err != nil {
		return nil, err
	}
	axes := make([]aggregate.Axis, len(vars))
	for d, v := range vars {
		axes[d] = aggregate.Axis{Field: v, Bins: f.bins, Scale: sc}
	}
	return axes, nil
}

func weightField(w string) string {
	if strings.EqualFold(w, analysis.Unweighted) {
		return ""
	}
	return w
}
