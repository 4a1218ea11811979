// Package config loads and validates the options of a run.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/cognicore/apt/pkg/apt/filter"
	"github.com/cognicore/apt/pkg/apt/internalerr"
	"github.com/cognicore/apt/pkg/apt/ppmi"
	"github.com/cognicore/apt/pkg/apt/salience"
)

// AllOrders selects the default order window [0, 2] without a reduction
// suffix on file names.
const AllOrders = "X"

// Defaults
const (
	DefaultPOS                = "N"
	DefaultFrequencyThreshold = 1000
	DefaultFeatMax            = 3
)

// Options is the immutable configuration of one run.
type Options struct {
	Stages             []string `yaml:"stages"`
	Filename           string   `yaml:"filename"`
	POS                string   `yaml:"pos"`
	MinOrder           string   `yaml:"min_order"`
	MaxOrder           string   `yaml:"max_order"`
	Weighting          string   `yaml:"weighting"`
	Smoothed           bool     `yaml:"smoothed"`
	PathNormalized     bool     `yaml:"path_normalized"`
	Normalised         bool     `yaml:"normalised"`
	PPMIThreshold      float64  `yaml:"ppmi_threshold"`
	Saliency           int      `yaml:"saliency"`
	SaliencyPerPath    bool     `yaml:"saliency_per_path"`
	FrequencyThreshold float64  `yaml:"frequency_threshold"`
	IncludedPathTypes  []string `yaml:"included_path_types"`
	CompPairFile       string   `yaml:"comp_pair_file"`
	FilterFile         string   `yaml:"filter_file"`
	FeatMax            int      `yaml:"featmax"`
	Workers            int      `yaml:"workers"`

	// Set by Resolve.
	Plan    []Stage       `yaml:"-"`
	Window  filter.Window `yaml:"-"`
	Reduced bool          `yaml:"-"`
}

// DefaultOptions returns the options used for keys a file leaves out.
func DefaultOptions() Options {
	return Options{
		POS:                DefaultPOS,
		MinOrder:           AllOrders,
		Weighting:          "ppmi",
		FrequencyThreshold: DefaultFrequencyThreshold,
		FeatMax:            DefaultFeatMax,
	}
}

// LoadOptions reads options from a YAML file on top of DefaultOptions.
func LoadOptions(path string) (*Options, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %v: %w", path, err, internalerr.ErrResource)
	}

	opts := DefaultOptions()
	if err := yaml.Unmarshal(data, &opts); err != nil {
		return nil, fmt.Errorf("parse %s: %v: %w", path, err, internalerr.ErrInvalidConfig)
	}
	return &opts, nil
}

// Resolve validates the options and fills in the derived fields.
func (o *Options) Resolve() error {
	if len(o.Stages) == 0 {
		return fmt.Errorf("no stages given: %w", internalerr.ErrInvalidConfig)
	}
	if o.Filename == "" {
		return fmt.Errorf("filename is required: %w", internalerr.ErrInvalidConfig)
	}
	if o.POS == "" {
		o.POS = DefaultPOS
	}

	plan := make([]Stage, 0, len(o.Stages))
	for _, name := range o.Stages {
		s, err := ParseStage(name)
		if err != nil {
			return err
		}
		plan = append(plan, s)
	}

	window, reduced, err := parseWindow(o.MinOrder, o.MaxOrder)
	if err != nil {
		return err
	}
	if _, err := o.weighting(); err != nil {
		return err
	}

	switch {
	case o.Saliency < 0:
		return fmt.Errorf("saliency %d is negative: %w", o.Saliency, internalerr.ErrInvalidConfig)
	case o.FeatMax < 0:
		return fmt.Errorf("featmax %d is negative: %w", o.FeatMax, internalerr.ErrInvalidConfig)
	case o.Workers < 0:
		return fmt.Errorf("workers %d is negative: %w", o.Workers, internalerr.ErrInvalidConfig)
	}
	for _, s := range plan {
		if s == Compose && o.CompPairFile == "" {
			return fmt.Errorf("stage compose needs comp_pair_file: %w", internalerr.ErrInvalidConfig)
		}
		if s == Intersect && o.FilterFile == "" {
			return fmt.Errorf("stage intersect needs filter_file: %w", internalerr.ErrInvalidConfig)
		}
	}

	if o.FeatMax == 0 {
		o.FeatMax = DefaultFeatMax
	}
	o.Plan = plan
	o.Window = window
	o.Reduced = reduced
	return nil
}

func parseWindow(minOrder, maxOrder string) (filter.Window, bool, error) {
	minOrder, maxOrder = strings.TrimSpace(minOrder), strings.TrimSpace(maxOrder)
	if minOrder == "" || strings.EqualFold(minOrder, AllOrders) {
		return filter.Window{Min: 0, Max: 2}, false, nil
	}
	lo, err := strconv.Atoi(minOrder)
	if err != nil {
		return filter.Window{}, false, fmt.Errorf("min_order %q: %w", minOrder, internalerr.ErrInvalidConfig)
	}
	hi, err := strconv.Atoi(maxOrder)
	if err != nil {
		return filter.Window{}, false, fmt.Errorf("max_order %q: %w", maxOrder, internalerr.ErrInvalidConfig)
	}
	if lo < 0 || hi < lo {
		return filter.Window{}, false, fmt.Errorf("order window [%d, %d]: %w", lo, hi, internalerr.ErrInvalidConfig)
	}
	return filter.Window{Min: lo, Max: hi}, true, nil
}

type weighting struct {
	kind           ppmi.Weighting
	smoothed       bool
	pathNormalized bool
}

func (o *Options) weighting() (weighting, error) {
	w := weighting{kind: ppmi.Standard, smoothed: o.Smoothed, pathNormalized: o.PathNormalized}
	switch strings.ToLower(o.Weighting) {
	case "", "ppmi":
	case "gof_ppmi":
		w.kind = ppmi.GoodnessOfFit
	case "smooth_ppmi", "smoothed_ppmi":
		w.smoothed = true
	case "pnppmi", "pp_normalise":
		w.pathNormalized = true
	default:
		return w, fmt.Errorf("weighting %q: %w", o.Weighting, internalerr.ErrInvalidConfig)
	}
	return w, nil
}

// PPMIConfig returns the weighting configuration for the ppmi engine.
func (o *Options) PPMIConfig() ppmi.Config {
	w, _ := o.weighting()
	return ppmi.Config{
		Weighting:      w.kind,
		Smoothed:       w.smoothed,
		PathNormalized: w.pathNormalized,
		Threshold:      o.PPMIThreshold,
		Workers:        o.Workers,
	}
}

// Selector returns the salience policy for output vectors.
func (o *Options) Selector() salience.Selector {
	return salience.Selector{
		K:           o.Saliency,
		PerPathType: o.SaliencyPerPath,
		Allowed:     o.PathTypes(),
		Workers:     o.Workers,
	}
}

// PathTypes is the set of included path types; empty allows every path.
func (o *Options) PathTypes() salience.PathSet {
	return salience.NewPathSet(o.IncludedPathTypes...)
}
