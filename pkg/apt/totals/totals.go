// Package totals computes the aggregate counts the PPMI engine and the
// composer read from: row totals T(w), column totals T(f), per-entry path
// totals T(w,p) and path-type totals T(*,p).
//
// Every aggregate is a snapshot of a collection at one point in the
// pipeline. Snapshots are never updated in place; when the collection
// changes the totals are computed again.
package totals

import (
	"math"
	"sort"

	"github.com/sirupsen/logrus"
	"gonum.org/v1/gonum/floats"

	"github.com/cognicore/apt/internal/logging"
	"github.com/cognicore/apt/pkg/apt/feature"
	"github.com/cognicore/apt/pkg/apt/report"
	"github.com/cognicore/apt/pkg/apt/vector"
)

// Totals is a read-only snapshot of sums keyed by entry, feature or path.
type Totals map[string]float64

// Get returns the total for key. A key never seen during computation is
// reported as (0, false) and contributes zero.
func (t Totals) Get(key string) (float64, bool) {
	v, ok := t[key]
	return v, ok
}

// Prune returns the totals strictly above threshold.
func (t Totals) Prune(threshold float64) Totals {
	out := make(Totals, len(t))
	for k, v := range t {
		if v > threshold {
			out[k] = v
		}
	}
	return out
}

// Keys returns the keys in ascending order.
func (t Totals) Keys() []string {
	keys := make([]string, 0, len(t))
	for k := range t {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Builder accumulates row and column totals from (entry, feature, weight)
// triples. It has a single writer; Snapshot hands out copies.
type Builder struct {
	rows   map[string]float64
	cols   map[string]float64
	counts report.Counts
	log    logrus.FieldLogger
}

// NewBuilder creates an empty builder.
func NewBuilder(log logrus.FieldLogger) *Builder {
	return &Builder{
		rows:   make(map[string]float64),
		cols:   make(map[string]float64),
		counts: report.Counts{},
		log:    logging.Or(log),
	}
}

// AddEntry accumulates one entry's vector. A non-finite weight is a parse
// error: the feature is left out of both totals and the entry is still
// counted.
func (b *Builder) AddEntry(entry string, v vector.Vector) {
	row := 0.0
	for _, f := range v.Features() {
		w := v[f]
		if math.IsNaN(w) || math.IsInf(w, 0) {
			b.log.WithFields(logrus.Fields{"entry": entry, "feature": f}).Debugf("skipping non-finite weight %v", w)
			b.counts.Inc(report.ParseError, 1)
			continue
		}
		row += w
		b.cols[f] += w
	}
	b.rows[entry] += row
	b.counts.Inc(report.Entries, 1)
}

// Snapshot returns frozen copies of the accumulated totals.
func (b *Builder) Snapshot() (rows, cols Totals) {
	rows = make(Totals, len(b.rows))
	for k, v := range b.rows {
		rows[k] = v
	}
	cols = make(Totals, len(b.cols))
	for k, v := range b.cols {
		cols[k] = v
	}
	return rows, cols
}

// Counts returns the diagnostics gathered so far.
func (b *Builder) Counts() report.Counts {
	out := report.Counts{}
	out.Merge(b.counts)
	return out
}

// Compute returns the row and column totals of c in a single pass.
func Compute(c vector.Collection, log logrus.FieldLogger) (rows, cols Totals, counts report.Counts) {
	b := NewBuilder(log)
	for _, entry := range c.Entries() {
		b.AddEntry(entry, c[entry])
	}
	rows, cols = b.Snapshot()
	return rows, cols, b.Counts()
}

// PathTotals groups each entry's weights by path: T(w,p).
func PathTotals(c vector.Collection) map[string]Totals {
	out := make(map[string]Totals, len(c))
	for entry, v := range c {
		out[entry] = ByPath(v)
	}
	return out
}

// ByPath sums a single vector's weights per path.
func ByPath(v vector.Vector) Totals {
	t := make(Totals)
	for f, w := range v {
		t[feature.PathKey(f)] += w
	}
	return t
}

// PathTypeTotals aggregates column totals by path: T(*,p).
func PathTypeTotals(cols Totals) Totals {
	out := make(Totals)
	for f, w := range cols {
		out[feature.PathKey(f)] += w
	}
	return out
}

// GrandTotal sums path-type totals in a fixed key order so repeated runs
// produce the same float.
func GrandTotal(typeTotals Totals) float64 {
	if len(typeTotals) == 0 {
		return 0
	}
	vals := make([]float64, 0, len(typeTotals))
	for _, k := range typeTotals.Keys() {
		vals = append(vals, typeTotals[k])
	}
	return floats.Sum(vals)
}
