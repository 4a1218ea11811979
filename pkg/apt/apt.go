// Package apt builds distributional vectors over dependency paths: it
// filters raw co-occurrence counts, weights them by PPMI, keeps the most
// salient features and composes vectors for phrases.
package apt

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/cognicore/apt/internal/logging"
	"github.com/cognicore/apt/pkg/apt/config"
	"github.com/cognicore/apt/pkg/apt/internalerr"
	"github.com/cognicore/apt/pkg/apt/pipeline"
	"github.com/cognicore/apt/pkg/apt/report"
	"github.com/cognicore/apt/pkg/apt/store"
	"github.com/cognicore/apt/pkg/apt/store/tsvfile"
)

// APT is the main facade: one configured run over one store
type APT struct {
	comp   *config.Components
	store  store.Store
	runner *pipeline.Runner
	log    logrus.FieldLogger
}

// Options configures an APT instance
type Options struct {
	Components *config.Components
	Store      store.Store // defaults to flat files under Dir
	Dir        string
	Logger     logrus.FieldLogger
}

// New creates an APT instance with the given dependencies
func New(opts Options) (*APT, error) {
	if opts.Components == nil || opts.Components.Options == nil {
		return nil, fmt.Errorf("no options: %w", internalerr.ErrInvalidConfig)
	}
	log := logging.Or(opts.Logger)

	st := opts.Store
	if st == nil {
		st = tsvfile.New(opts.Dir, log)
	}

	return &APT{
		comp:   opts.Components,
		store:  st,
		runner: pipeline.New(opts.Components, st, log),
		log:    log,
	}, nil
}

// Load reads a configuration through l and creates an instance over the flat
// files in dir.
func Load(l config.Loader, dir string, log logrus.FieldLogger) (*APT, error) {
	comp, err := l.Load()
	if err != nil {
		return nil, err
	}
	return New(Options{Components: comp, Dir: dir, Logger: log})
}

// Options returns the resolved run options.
func (a *APT) Options() config.Options {
	return *a.comp.Options
}

// Run executes every configured stage.
func (a *APT) Run(ctx context.Context) (*report.Report, error) {
	rep, err := a.runner.Run(ctx)
	if rep != nil {
		totals := rep.Totals()
		a.log.WithFields(logrus.Fields{
			"run_id":              rep.RunID,
			"stages":              len(rep.Stages),
			"parse_errors":        totals.Get(report.ParseError),
			"undefined_statistic": totals.Get(report.UndefinedStatistic),
		}).Info("run finished")
	}
	return rep, err
}
