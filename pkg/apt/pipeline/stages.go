package pipeline

import (
	"context"
	"fmt"
	"sort"

	"github.com/sirupsen/logrus"

	"github.com/cognicore/apt/pkg/apt/compose"
	"github.com/cognicore/apt/pkg/apt/feature"
	"github.com/cognicore/apt/pkg/apt/filter"
	"github.com/cognicore/apt/pkg/apt/normalize"
	"github.com/cognicore/apt/pkg/apt/ppmi"
	"github.com/cognicore/apt/pkg/apt/report"
	"github.com/cognicore/apt/pkg/apt/salience"
	"github.com/cognicore/apt/pkg/apt/totals"
	"github.com/cognicore/apt/pkg/apt/vector"
	"github.com/cognicore/apt/pkg/apt/wordlist"
)

// reduceOrder drops features outside the order window.
func (r *Runner) reduceOrder(ctx context.Context, log logrus.FieldLogger) (report.StageReport, error) {
	pos := r.opts.POS
	sr := report.StageReport{Input: r.names.POS(pos), Output: r.names.Reduced(pos), Counts: report.Counts{}}

	c, counts, err := r.store.ReadVectors(ctx, sr.Input)
	if err != nil {
		return sr, err
	}
	sr.Counts.Merge(counts)

	w := r.opts.Window
	out, rc := filter.ReduceByOrder(c, w.Min, w.Max)
	sr.Counts.Merge(rc)
	log.WithFields(logrus.Fields{"min_order": w.Min, "max_order": w.Max}).Debug("reduced order")

	return sr, r.writeVectors(ctx, sr.Output, out, sr.Counts)
}

// makeTotals writes the row and column totals of the current counts.
func (r *Runner) makeTotals(ctx context.Context, st *runState, log logrus.FieldLogger) (report.StageReport, error) {
	base := r.names.TotalsBase(r.opts.POS, st.normalised)
	sr := report.StageReport{Input: base, Output: RowTotals(base), Counts: report.Counts{}}

	c, counts, err := r.store.ReadVectors(ctx, base)
	if err != nil {
		return sr, err
	}
	sr.Counts.Merge(counts)

	rows, cols, tc := totals.Compute(c, log)
	sr.Counts.Merge(tc)

	if err := r.store.WriteTotals(ctx, RowTotals(base), rows); err != nil {
		return sr, err
	}
	return sr, r.store.WriteTotals(ctx, ColTotals(base), cols)
}

// filter drops rare entries and features and entries that are not of
// interest.
func (r *Runner) filter(ctx context.Context, st *runState, log logrus.FieldLogger) (report.StageReport, error) {
	pos := r.opts.POS
	sr := report.StageReport{Input: r.names.Reduced(pos), Output: r.names.Filtered(pos), Counts: report.Counts{}}

	c, counts, err := r.store.ReadVectors(ctx, sr.Input)
	if err != nil {
		return sr, err
	}
	sr.Counts.Merge(counts)

	cols, counts, err := r.readTotals(ctx, ColTotals(r.names.Reduced(pos)), st)
	if err != nil {
		return sr, err
	}
	sr.Counts.Merge(counts)

	// row totals of the unreduced counts, whatever the order window
	rows, counts, err := r.readTotals(ctx, RowTotals(r.names.POS(pos)), st)
	if err != nil {
		return sr, err
	}
	sr.Counts.Merge(counts)

	words := r.words(pos)
	log.WithFields(logrus.Fields{
		"threshold": r.opts.FrequencyThreshold,
		"words":     words.Len(),
	}).Info("filtering")

	out, fc := filter.ByFrequency(c, rows, cols, r.opts.FrequencyThreshold, words.Include)
	sr.Counts.Merge(fc)

	return sr, r.writeVectors(ctx, sr.Output, out, sr.Counts)
}

// normalise divides the filtered counts by their unfiltered row totals.
func (r *Runner) normalise(ctx context.Context, st *runState, log logrus.FieldLogger) (report.StageReport, error) {
	pos := r.opts.POS
	sr := report.StageReport{Input: r.names.Filtered(pos), Output: r.names.Normalised(pos), Counts: report.Counts{}}

	c, counts, err := r.store.ReadVectors(ctx, sr.Input)
	if err != nil {
		return sr, err
	}
	sr.Counts.Merge(counts)

	rows, counts, err := r.store.ReadTotals(ctx, RowTotals(r.names.Reduced(pos)))
	if err != nil {
		return sr, err
	}
	sr.Counts.Merge(counts)

	out, nc := normalize.Normalize(c, rows, log)
	sr.Counts.Merge(nc)
	if err := r.writeVectors(ctx, sr.Output, out, sr.Counts); err != nil {
		return sr, err
	}
	st.normalised = true
	return sr, nil
}

// revectorise weights the filtered vectors of the configured part of speech.
func (r *Runner) revectorise(ctx context.Context, st *runState, log logrus.FieldLogger) (report.StageReport, error) {
	pos := r.opts.POS
	sr := report.StageReport{
		Input:  r.names.Vectors(pos, st.normalised),
		Output: r.names.Revectorised(pos, st.normalised),
		Counts: report.Counts{},
	}

	ix, counts, err := r.loadIndex(ctx, pos, st, r.words(pos))
	if err != nil {
		return sr, err
	}
	sr.Counts.Merge(counts)

	out, wc, err := r.weigh(ctx, ix, log)
	if err != nil {
		return sr, err
	}
	sr.Counts.Merge(wc)

	return sr, r.writeVectors(ctx, sr.Output, out, sr.Counts)
}

// compose builds and weights a vector for every composition pair.
func (r *Runner) compose(ctx context.Context, st *runState, log logrus.FieldLogger) (report.StageReport, error) {
	sr := report.StageReport{
		Input:  r.opts.CompPairFile,
		Output: r.names.Composed(r.opts.POS, st.normalised),
		Counts: report.Counts{},
	}

	spaces := make(map[string]*totals.Index)
	for _, pos := range r.composePOS() {
		ix, counts, err := r.loadIndex(ctx, pos, st, wordlist.FromPairs(r.pairs, pos))
		if err != nil {
			return sr, fmt.Errorf("load %s vectors: %w", pos, err)
		}
		sr.Counts.Merge(counts)
		spaces[pos] = ix
	}

	composer := compose.New(r.codec, r.opts.Workers, log)
	indexes, counts, err := composer.Batch(ctx, spaces, r.pairs)
	if err != nil {
		return sr, err
	}
	sr.Counts.Merge(counts)

	out := make(vector.Collection)
	for _, ix := range indexes {
		weighted, wc, err := r.weigh(ctx, ix, log)
		if err != nil {
			return sr, err
		}
		sr.Counts.Merge(wc)
		for entry, v := range weighted {
			out[entry] = v
		}
	}

	return sr, r.writeVectors(ctx, sr.Output, out, sr.Counts)
}

// composePOS lists the parts of speech the pairs read from.
func (r *Runner) composePOS() []string {
	seen := make(map[string]bool)
	for _, p := range r.pairs {
		roles := compose.RolesFor(p.Rel())
		seen[roles.Head] = true
		seen[roles.Dependent] = true
	}
	out := make([]string, 0, len(seen))
	for pos := range seen {
		out = append(out, pos)
	}
	sort.Strings(out)
	return out
}

// intersect weights the intersection of every word group in the filter file.
func (r *Runner) intersect(ctx context.Context, st *runState, log logrus.FieldLogger) (report.StageReport, error) {
	pos := r.opts.POS
	sr := report.StageReport{
		Input:  r.names.Vectors(pos, st.normalised),
		Output: r.names.Intersected(pos, st.normalised),
		Counts: report.Counts{},
	}

	ix, counts, err := r.loadIndex(ctx, pos, st, wordlist.FromGroups(r.groups))
	if err != nil {
		return sr, err
	}
	sr.Counts.Merge(counts)

	inter, rows, ic := compose.IntersectGroups(ix.Vectors, r.groups)
	sr.Counts.Merge(ic)
	log.WithField("groups", len(inter)).Info("intersected groups")

	out, wc, err := r.weigh(ctx, totals.NewIndex(inter, rows, ix.Columns), log)
	if err != nil {
		return sr, err
	}
	sr.Counts.Merge(wc)

	return sr, r.writeVectors(ctx, sr.Output, out, sr.Counts)
}

// inspect logs the path distribution of the weighted vectors and their most
// salient features per path type. It writes nothing.
func (r *Runner) inspect(ctx context.Context, st *runState, log logrus.FieldLogger) (report.StageReport, error) {
	pos := r.opts.POS
	sr := report.StageReport{Input: r.names.Vectors(pos, st.normalised), Counts: report.Counts{}}

	ix, counts, err := r.loadIndex(ctx, pos, st, r.words(pos))
	if err != nil {
		return sr, err
	}
	sr.Counts.Merge(counts)

	log.WithFields(pathFields(ix.PathTypes)).Info("path distribution over all entries")

	weighted, wc, err := r.weigh(ctx, ix, log)
	if err != nil {
		return sr, err
	}
	sr.Counts.Merge(wc)

	allowed := r.opts.PathTypes()
	for _, entry := range ix.Vectors.Entries() {
		elog := log.WithField("entry", entry)
		elog.WithFields(pathFields(ix.Paths[entry])).Info("path distribution")
		elog.WithFields(logrus.Fields{
			"width":    len(ix.Vectors[entry]),
			"weighted": len(weighted[entry]),
		}).Info("most salient features")

		for _, sc := range salience.TopPerPath(weighted[entry], r.opts.FeatMax, allowed) {
			elog.WithFields(logrus.Fields{
				"feature": sc.Feature,
				"score":   sc.Weight,
				"count":   ix.Vectors[entry][sc.Feature],
			}).Info("salient feature")
		}
	}
	sr.Counts.Inc(report.Entries, len(weighted))
	return sr, nil
}

// rewrite copies the base file, summing repeated entries and applying the
// order window.
func (r *Runner) rewrite(ctx context.Context) (report.StageReport, error) {
	sr := report.StageReport{Input: r.opts.Filename, Output: r.names.Rewritten(), Counts: report.Counts{}}

	c, counts, err := r.store.ReadVectors(ctx, sr.Input)
	if err != nil {
		return sr, err
	}
	sr.Counts.Merge(counts)
	return sr, r.writeVectors(ctx, sr.Output, c, sr.Counts)
}

// words returns the words of interest for pos: pair members when a pair
// file is configured, otherwise every word of the filter file. An empty set
// keeps everything.
func (r *Runner) words(pos string) *wordlist.Set {
	if len(r.pairs) > 0 {
		return wordlist.FromPairs(r.pairs, pos)
	}
	return wordlist.FromGroups(r.groups)
}

// readTotals loads a totals file. Unnormalised totals are pruned to values
// above the frequency threshold.
func (r *Runner) readTotals(ctx context.Context, name string, st *runState) (totals.Totals, report.Counts, error) {
	t, counts, err := r.store.ReadTotals(ctx, name)
	if err != nil {
		return nil, nil, err
	}
	if !st.normalised {
		t = t.Prune(r.opts.FrequencyThreshold)
	}
	return t, counts, nil
}

// loadIndex reads the vectors of pos that words includes together with
// their totals.
func (r *Runner) loadIndex(ctx context.Context, pos string, st *runState, words *wordlist.Set) (*totals.Index, report.Counts, error) {
	counts := report.Counts{}

	c, rc, err := r.store.ReadVectors(ctx, r.names.Vectors(pos, st.normalised))
	if err != nil {
		return nil, nil, err
	}
	counts.Merge(rc)
	for entry := range c {
		if !words.Include(entry) {
			delete(c, entry)
		}
	}

	base := r.names.TotalsBase(pos, st.normalised)
	cols, cc, err := r.readTotals(ctx, ColTotals(base), st)
	if err != nil {
		return nil, nil, err
	}
	counts.Merge(cc)

	rows, tc, err := r.readTotals(ctx, RowTotals(base), st)
	if err != nil {
		return nil, nil, err
	}
	counts.Merge(tc)

	return totals.NewIndex(c, rows, cols), counts, nil
}

// weigh computes PPMI vectors for ix and applies the salience policy.
func (r *Runner) weigh(ctx context.Context, ix *totals.Index, log logrus.FieldLogger) (vector.Collection, report.Counts, error) {
	weighted, counts, err := ppmi.NewEngine(r.opts.PPMIConfig(), log).Weight(ctx, ix)
	if err != nil {
		return nil, nil, err
	}
	out, sc, err := r.opts.Selector().SelectAll(ctx, weighted)
	if err != nil {
		return nil, nil, err
	}
	counts.Merge(sc)
	return out, counts, nil
}

// writeVectors applies the order window and writes c.
func (r *Runner) writeVectors(ctx context.Context, name string, c vector.Collection, counts report.Counts) error {
	out := filter.Restrict(c, r.opts.Window.Keep)
	entries, features := out.Size()
	counts.Inc(report.Entries, entries)
	counts.Inc(report.Features, features)
	return r.store.WriteVectors(ctx, name, out)
}

// pathFields renders path totals as log fields; the order-0 path is ":".
func pathFields(t totals.Totals) logrus.Fields {
	f := make(logrus.Fields, len(t))
	for _, p := range t.Keys() {
		key := p
		if key == "" {
			key = feature.ValueSep
		}
		f[key] = t[p]
	}
	return f
}
