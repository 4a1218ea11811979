// Package ppmi weights co-occurrence vectors by positive pointwise mutual
// information.
package ppmi

import (
	"context"

	"github.com/sirupsen/logrus"

	"github.com/cognicore/apt/internal/logging"
	"github.com/cognicore/apt/internal/parallel"
	"github.com/cognicore/apt/pkg/apt/feature"
	"github.com/cognicore/apt/pkg/apt/report"
	"github.com/cognicore/apt/pkg/apt/totals"
	"github.com/cognicore/apt/pkg/apt/vector"
)

// Config controls PPMI computation
type Config struct {
	Weighting      Weighting
	Smoothed       bool    // raise feature/type/grand totals to 0.75
	PathNormalized bool    // pnppmi: multiply by C<w,p,*>/C<w,*,*>
	Threshold      float64 // keep scores strictly above this
	Workers        int     // <= 0: one per CPU
}

// DefaultConfig returns standard PPMI with a zero threshold.
func DefaultConfig() Config {
	return Config{Weighting: Standard}
}

// Name is the conventional short name of the weighting, used in file
// suffixes.
func (c Config) Name() string {
	switch {
	case c.PathNormalized:
		return "pnppmi"
	case c.Weighting == GoodnessOfFit:
		return "gof_ppmi"
	case c.Smoothed:
		return "smooth_ppmi"
	default:
		return "ppmi"
	}
}

// Engine turns a totals.Index into PPMI vectors.
type Engine struct {
	cfg Config
	log logrus.FieldLogger
}

// NewEngine creates an engine.
func NewEngine(cfg Config, log logrus.FieldLogger) *Engine {
	return &Engine{cfg: cfg, log: logging.Or(log)}
}

// Weight scores every (entry, feature) pair of ix.Vectors. ix must be fully
// built; entries are scored concurrently and only read from it. Entries whose
// features all fall below the threshold are kept with an empty vector.
func (e *Engine) Weight(ctx context.Context, ix *totals.Index) (vector.Collection, report.Counts, error) {
	calc := NewCalculator(e.cfg.Weighting, e.cfg.Smoothed, totals.GrandTotal(ix.PathTypes))

	e.log.WithFields(logrus.Fields{
		"weighting": e.cfg.Name(),
		"threshold": e.cfg.Threshold,
		"entries":   len(ix.Vectors),
	}).Info("computing ppmi")

	out, counts, err := parallel.Transform(ctx, e.cfg.Workers, ix.Vectors, func(entry string, v vector.Vector) (vector.Vector, report.Counts) {
		return e.WeightEntry(calc, ix, entry, v)
	})
	if err != nil {
		return nil, nil, err
	}
	if n := counts.Get(report.UndefinedStatistic); n > 0 {
		e.log.WithField("features", n).Warn("skipped features with undefined ppmi")
	}
	return out, counts, nil
}

// WeightEntry scores one entry's vector.
func (e *Engine) WeightEntry(calc *Calculator, ix *totals.Index, entry string, v vector.Vector) (vector.Vector, report.Counts) {
	counts := report.Counts{}
	out := make(vector.Vector)
	entryTotal, ok := ix.Rows.Get(entry)
	if !ok {
		counts.Inc(report.MissingEntry, 1)
	}

	for f, freq := range v {
		path := feature.PathKey(f)
		featTotal, _ := ix.Columns.Get(f)
		typeTotal, _ := ix.PathTypes.Get(path)
		o := Observation{
			Freq:       freq,
			PathTotal:  ix.Path(entry, path),
			FeatTotal:  featTotal,
			TypeTotal:  typeTotal,
			EntryTotal: entryTotal,
		}

		score, err := calc.PMI(o)
		if err != nil {
			counts.Inc(report.UndefinedStatistic, 1)
			continue
		}
		if score > e.cfg.Threshold {
			if e.cfg.PathNormalized {
				if score, err = PathProbability(score, o); err != nil {
					counts.Inc(report.UndefinedStatistic, 1)
					continue
				}
			}
			out[f] = score
		}
	}
	counts.Inc(report.Features, len(out))
	return out, counts
}
