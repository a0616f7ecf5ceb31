package analysis

import (
	"errors"
	"fmt"
	"github.com/notargets/amrkit/aggregate"
	"gopkg.in/yaml.v3"
	"io"
	"os"
)

// ConfigVersion is the only accepted schema_version of a run file
const ConfigVersion = 1

const (
	DefaultHistBins    = 128
	DefaultProfileBins = 256
	// DefaultWeights weights histograms and profiles by cell volume
	DefaultWeights = "vol"
	// Unweighted in a weights key counts cells instead
	Unweighted = "none"
)

var ErrConfig = errors.New("invalid run configuration")

// Config declares the reductions to compute on one snapshot
type Config struct {
	SchemaVersion int         `yaml:"schema_version"`
	Input         string      `yaml:"input"`
	Variables     []string    `yaml:"variables,omitempty"`
	Device        string      `yaml:"device,omitempty"`
	Workers       int         `yaml:"workers,omitempty"`
	Sums          []string    `yaml:"sums,omitempty"`
	Averages      []Average   `yaml:"averages,omitempty"`
	Histograms    []Histogram `yaml:"histograms,omitempty"`
	Profiles      []Profile   `yaml:"profiles,omitempty"`
	Slices        []Slice     `yaml:"slices,omitempty"`
	Output        string      `yaml:"output,omitempty"`
}

// Filter selects cells with Min <= field < Max; either bound may be omitted
type Filter struct {
	Field string   `yaml:"field"`
	Min   *float64 `yaml:"min,omitempty"`
	Max   *float64 `yaml:"max,omitempty"`
}

// Average requests averages of Fields. Weights defaults to uniform
type Average struct {
	Fields  []string `yaml:"fields"`
	Weights string   `yaml:"weights,omitempty"`
	Where   *Filter  `yaml:"where,omitempty"`
}

// Histogram requests one joint histogram over Vars, keyed by Key or the
// joined variable names
type Histogram struct {
	Key     string      `yaml:"key,omitempty"`
	Vars    []string    `yaml:"vars"`
	Bins    int         `yaml:"bins,omitempty"`
	Scale   string      `yaml:"scale,omitempty"`
	Ranges  [][]float64 `yaml:"ranges,omitempty"`
	Weights string      `yaml:"weights,omitempty"`
	Where   *Filter     `yaml:"where,omitempty"`
}

// Profile requests weighted averages of Fields binned by Bin
type Profile struct {
	Key     string      `yaml:"key,omitempty"`
	Bin     []string    `yaml:"bin"`
	Fields  []string    `yaml:"fields"`
	Bins    int         `yaml:"bins,omitempty"`
	Scale   string      `yaml:"scale,omitempty"`
	Ranges  [][]float64 `yaml:"ranges,omitempty"`
	Weights string      `yaml:"weights,omitempty"`
	Where   *Filter     `yaml:"where,omitempty"`
}

// Slice requests Field on a uniform level averaged along Axis over the
// default midplane box. Axis defaults to x3
type Slice struct {
	Key   string `yaml:"key,omitempty"`
	Field string `yaml:"field"`
	Level int    `yaml:"level,omitempty"`
	Zoom  int    `yaml:"zoom,omitempty"`
	Axis  *int   `yaml:"axis,omitempty"`
}

// LoadConfig reads and validates a run file
func LoadConfig(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	cfg, err := ParseConfig(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// ParseConfig decodes a run file strictly and fills defaults
func ParseConfig(r io.Reader) (*Config, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	var cfg Config
	if err := dec.Decode(&cfg); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrConfig, err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	cfg.defaults()
	return &cfg, nil
}

func (c *Config) validate() error {
	if c.SchemaVersion != ConfigVersion {
		return fmt.Errorf("%w: schema_version %d, want %d", ErrConfig, c.SchemaVersion, ConfigVersion)
	}
	if c.Input == "" {
		return fmt.Errorf("%w: no input", ErrConfig)
	}
	switch c.Device {
	case "", "auto", "host":
	default:
		return fmt.Errorf("%w: device %q, want auto or host", ErrConfig, c.Device)
	}
	if c.Workers < 0 {
		return fmt.Errorf("%w: workers %d", ErrConfig, c.Workers)
	}
	for _, h := range c.Histograms {
		if err := checkBinning(h.Vars, h.Bins, h.Scale, h.Ranges); err != nil {
			return err
		}
	}
	for _, p := range c.Profiles {
		if err := checkBinning(p.Bin, p.Bins, p.Scale, p.Ranges); err != nil {
			return err
		}
		if len(p.Fields) == 0 {
			return fmt.Errorf("%w: profile over %v has no fields", ErrConfig, p.Bin)
		}
	}
	for _, s := range c.Slices {
		if s.Field == "" {
			return fmt.Errorf("%w: slice without field", ErrConfig)
		}
		if s.Axis != nil && (*s.Axis < 0 || *s.Axis > 2) {
			return fmt.Errorf("%w: slice axis %d", ErrConfig, *s.Axis)
		}
		if s.Level < 0 || s.Zoom < 0 {
			return fmt.Errorf("%w: slice level %d zoom %d", ErrConfig, s.Level, s.Zoom)
		}
	}
	return nil
}

func checkBinning(vars []string, bins int, scale string, ranges [][]float64) error {
	if len(vars) == 0 {
		return fmt.Errorf("%w: binning without variables", ErrConfig)
	}
	if bins < 0 {
		return fmt.Errorf("%w: %d bins", ErrConfig, bins)
	}
	if scale != "" {
		if _, err := aggregate.ParseScale(scale); err != nil {
			return fmt.Errorf("%w: %v", ErrConfig, err)
		}
	}
	if len(ranges) > 0 && len(ranges) != len(vars) {
		return fmt.Errorf("%w: %d ranges for %d variables", ErrConfig, len(ranges), len(vars))
	}
	for _, r := range ranges {
		if len(r) != 0 && len(r) != 2 {
			return fmt.Errorf("%w: range %v, want [lo, hi] or []", ErrConfig, r)
		}
	}
	return nil
}

func (c *Config) defaults() {
	if c.Device == "" {
		c.Device = "auto"
	}
	if c.Workers == 0 {
		c.Workers = 1
	}
	for i := range c.Histograms {
		h := &c.Histograms[i]
		h.Bins = orInt(h.Bins, DefaultHistBins)
		h.Scale = orString(h.Scale, aggregate.Log.String())
		h.Weights = orString(h.Weights, DefaultWeights)
	}
	for i := range c.Profiles {
		p := &c.Profiles[i]
		p.Bins = orInt(p.Bins, DefaultProfileBins)
		p.Scale = orString(p.Scale, aggregate.Linear.String())
		p.Weights = orString(p.Weights, DefaultWeights)
	}
	for i := range c.Slices {
		if c.Slices[i].Axis == nil {
			axis := 2
			c.Slices[i].Axis = &axis
		}
	}
}

func orInt(v, def int) int {
	if v == 0 {
		return def
	}
	return v
}

func orString(v, def string) string {
	if v == "" {
		return def
	}
	return v
}
