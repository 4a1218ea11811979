// Package pipeline runs the configured stages over a corpus that has been
// split into one vector file per part of speech.
//
// Every stage reads the files written by earlier stages (or earlier runs)
// through a store.Store and writes its own output file, so a run can be
// resumed at any stage.
package pipeline

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/cognicore/apt/internal/logging"
	"github.com/cognicore/apt/pkg/apt/compose"
	"github.com/cognicore/apt/pkg/apt/config"
	"github.com/cognicore/apt/pkg/apt/feature"
	"github.com/cognicore/apt/pkg/apt/internalerr"
	"github.com/cognicore/apt/pkg/apt/report"
	"github.com/cognicore/apt/pkg/apt/store"
)

// Runner executes the stages of one configuration.
type Runner struct {
	opts   *config.Options
	pairs  []compose.Pair
	groups [][]string
	store  store.Store
	names  Names
	codec  *feature.Codec
	log    logrus.FieldLogger
	now    func() time.Time
}

// New creates a runner. comp.Options must be resolved (config.Build does
// that).
func New(comp *config.Components, st store.Store, log logrus.FieldLogger) *Runner {
	return &Runner{
		opts:   comp.Options,
		pairs:  comp.Pairs,
		groups: comp.Groups,
		store:  st,
		names:  NewNames(comp.Options),
		codec:  feature.NewCodec(0),
		log:    logging.Or(log),
		now:    time.Now,
	}
}

// runState is what stages of one run tell each other.
type runState struct {
	// normalised is set once the data being weighted is normalised counts.
	normalised bool
}

// Run executes every stage in order. The first failing stage aborts the run
// with a *internalerr.StageError; the returned report covers every stage
// attempted, including the failed one.
func (r *Runner) Run(ctx context.Context) (*report.Report, error) {
	rep := report.New(r.now())
	log := r.log.WithField("run_id", rep.RunID)

	plan := r.opts.Plan
	st := &runState{
		normalised: r.opts.Normalised || (len(plan) > 0 && plan[0] == config.Normalise),
	}

	log.WithFields(logrus.Fields{
		"filename": r.opts.Filename,
		"pos":      r.opts.POS,
		"stages":   len(plan),
	}).Info("starting run")

	for _, stage := range plan {
		if err := ctx.Err(); err != nil {
			return rep, &internalerr.StageError{Stage: stage.String(), Err: err}
		}
		slog := log.WithFields(logrus.Fields{"stage": stage.String(), "pos": r.opts.POS})

		start := time.Now()
		sr, err := r.runStage(ctx, st, stage, slog)
		sr.Stage = stage.String()
		sr.Duration = time.Since(start)
		rep.Add(sr)

		if err != nil {
			slog.WithError(err).Error("stage failed")
			return rep, &internalerr.StageError{Stage: stage.String(), Err: err}
		}
		slog.WithFields(countFields(sr.Counts)).WithField("output", sr.Output).Info("stage done")
	}
	return rep, nil
}

func (r *Runner) runStage(ctx context.Context, st *runState, stage config.Stage, log logrus.FieldLogger) (report.StageReport, error) {
	switch stage {
	case config.ReduceOrder:
		return r.reduceOrder(ctx, log)
	case config.MakeTotals:
		return r.makeTotals(ctx, st, log)
	case config.Filter:
		return r.filter(ctx, st, log)
	case config.Normalise:
		return r.normalise(ctx, st, log)
	case config.Revectorise:
		return r.revectorise(ctx, st, log)
	case config.Compose:
		return r.compose(ctx, st, log)
	case config.Intersect:
		return r.intersect(ctx, st, log)
	case config.Inspect:
		return r.inspect(ctx, st, log)
	case config.Rewrite:
		return r.rewrite(ctx)
	default:
		return report.StageReport{}, internalerr.ErrInvalidConfig
	}
}

func countFields(c report.Counts) logrus.Fields {
	f := make(logrus.Fields, len(c))
	for _, name := range c.Names() {
		f[name] = c[name]
	}
	return f
}
