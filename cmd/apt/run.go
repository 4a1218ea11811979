package main

import (
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/cognicore/apt/internal/logging"
	"github.com/cognicore/apt/pkg/apt"
	"github.com/cognicore/apt/pkg/apt/config"
	"github.com/cognicore/apt/pkg/apt/internalerr"
	"github.com/cognicore/apt/pkg/apt/report"
)

type runFlags struct {
	config        string
	dir           string
	pairs         string
	filter        string
	freqThreshold float64
	ppmiThreshold float64
	saliency      int
	perPath       bool
	workers       int
}

func newRunCmd(rf *rootFlags) *cobra.Command {
	f := &runFlags{}
	cmd := &cobra.Command{
		Use:   "run [stage file [pos] [min max | X] [options...]]",
		Short: "Run pipeline stages",
		Long: `Run the stages listed in a configuration file, or a single stage given on
the command line.

Positional form:
  apt run reduceorder corpus N 1 2
  apt run revectorise corpus N 1 2 gof_ppmi
  apt run compose corpus N X normalised pnppmi --pairs pairs.yaml

Options after the order window select the weighting (ppmi, gof_ppmi,
smooth_ppmi, pnppmi) and whether the data is normalised (normalised).`,
		RunE: func(cmd *cobra.Command, args []string) error {
			log, err := logging.New(rf.logLevel, rf.logFormat, cmd.ErrOrStderr())
			if err != nil {
				return fmt.Errorf("%v: %w", err, internalerr.ErrInvalidConfig)
			}

			comp, err := f.components(cmd.Flags(), args)
			if err != nil {
				return err
			}
			a, err := apt.New(apt.Options{Components: comp, Dir: f.dir, Logger: log})
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			rep, err := a.Run(ctx)
			if rep != nil {
				printReport(cmd.OutOrStdout(), rep)
			}
			return err
		},
	}

	fl := cmd.Flags()
	fl.StringVarP(&f.config, "config", "c", "", "YAML run configuration")
	fl.StringVar(&f.dir, "dir", "", "directory relative file names are resolved against")
	fl.StringVar(&f.pairs, "pairs", "", "composition pair file (overrides comp_pair_file)")
	fl.StringVar(&f.filter, "filter", "", "word list file (overrides filter_file)")
	fl.Float64Var(&f.freqThreshold, "frequency-threshold", config.DefaultFrequencyThreshold, "minimum entry and feature total")
	fl.Float64Var(&f.ppmiThreshold, "ppmi-threshold", 0, "keep features scoring above this")
	fl.IntVar(&f.saliency, "saliency", 0, "features to keep per vector (0 keeps all)")
	fl.BoolVar(&f.perPath, "saliency-per-path", false, "apply --saliency to each path type")
	fl.IntVar(&f.workers, "workers", 0, "parallel workers (0 uses every CPU)")
	return cmd
}

// components builds the run configuration from --config or the positional
// form, then applies explicitly set flags on top.
func (f *runFlags) components(fl *pflag.FlagSet, args []string) (*config.Components, error) {
	var (
		opts *config.Options
		err  error
	)
	switch {
	case f.config != "" && len(args) > 0:
		return nil, fmt.Errorf("give either --config or positional arguments: %w", internalerr.ErrInvalidConfig)
	case f.config != "":
		opts, err = config.LoadOptions(f.config)
	case len(args) > 0:
		opts, err = legacyOptions(args)
	default:
		return nil, fmt.Errorf("nothing to run, give --config or a stage and a file: %w", internalerr.ErrInvalidConfig)
	}
	if err != nil {
		return nil, err
	}

	if fl.Changed("pairs") {
		opts.CompPairFile = f.pairs
	}
	if fl.Changed("filter") {
		opts.FilterFile = f.filter
	}
	if fl.Changed("frequency-threshold") {
		opts.FrequencyThreshold = f.freqThreshold
	}
	if fl.Changed("ppmi-threshold") {
		opts.PPMIThreshold = f.ppmiThreshold
	}
	if fl.Changed("saliency") {
		opts.Saliency = f.saliency
	}
	if fl.Changed("saliency-per-path") {
		opts.SaliencyPerPath = f.perPath
	}
	if fl.Changed("workers") {
		opts.Workers = f.workers
	}
	return config.Build(opts)
}

// legacyOptions reads "stage file [pos] [min max | X] [options...]".
func legacyOptions(args []string) (*config.Options, error) {
	if len(args) < 2 {
		return nil, fmt.Errorf("positional form needs a stage and a file: %w", internalerr.ErrInvalidConfig)
	}
	opts := config.DefaultOptions()
	opts.Stages = []string{args[0]}
	opts.Filename = args[1]
	rest := args[2:]

	if len(rest) > 0 {
		opts.POS = rest[0]
		rest = rest[1:]
	}
	if len(rest) > 0 {
		if strings.EqualFold(rest[0], config.AllOrders) {
			rest = rest[1:]
		} else {
			if len(rest) < 2 {
				return nil, fmt.Errorf("min order %s without a max order: %w", rest[0], internalerr.ErrInvalidConfig)
			}
			opts.MinOrder, opts.MaxOrder = rest[0], rest[1]
			rest = rest[2:]
		}
	}

	for _, o := range rest {
		switch strings.ToLower(o) {
		case "normalise", "normalised":
			opts.Normalised = true
		case "ppmi", "gof_ppmi", "smooth_ppmi", "smoothed_ppmi", "pnppmi", "pp_normalise":
			opts.Weighting = o
		default:
			return nil, fmt.Errorf("unknown option %q: %w", o, internalerr.ErrInvalidConfig)
		}
	}
	return &opts, nil
}

func printReport(w io.Writer, rep *report.Report) {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintf(tw, "run %s\n", rep.RunID)
	fmt.Fprintln(tw, "STAGE\tOUTPUT\tDURATION\tCOUNTS")
	for _, s := range rep.Stages {
		counts := make([]string, 0, len(s.Counts))
		for _, name := range s.Counts.Names() {
			counts = append(counts, fmt.Sprintf("%s=%d", name, s.Counts[name]))
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", s.Stage, s.Output, s.Duration.Round(time.Millisecond), strings.Join(counts, " "))
	}
	tw.Flush()
}
