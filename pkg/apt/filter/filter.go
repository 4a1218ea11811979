// Package filter prunes collections by feature order and by frequency.
package filter

import (
	"github.com/cognicore/apt/pkg/apt/feature"
	"github.com/cognicore/apt/pkg/apt/report"
	"github.com/cognicore/apt/pkg/apt/totals"
	"github.com/cognicore/apt/pkg/apt/vector"
)

// Window is an inclusive range of feature orders.
type Window struct {
	Min int
	Max int
}

// Contains reports whether order lies within the window.
func (w Window) Contains(order int) bool {
	return order >= w.Min && order <= w.Max
}

// Keep reports whether the feature identifier's order lies within the window.
func (w Window) Keep(f string) bool {
	return w.Contains(feature.Order(f))
}

// ReduceByOrder drops features whose order is outside [minOrder, maxOrder]
// and entries left without features.
func ReduceByOrder(c vector.Collection, minOrder, maxOrder int) (vector.Collection, report.Counts) {
	w := Window{Min: minOrder, Max: maxOrder}
	out := make(vector.Collection, len(c))
	counts := report.Counts{}

	for entry, v := range c {
		kept := make(vector.Vector, len(v))
		for f, weight := range v {
			if w.Keep(f) {
				kept[f] = weight
			} else {
				counts.Inc(report.DroppedFeature, 1)
			}
		}
		if len(kept) == 0 {
			counts.Inc(report.DroppedEntry, 1)
			continue
		}
		out[entry] = kept
	}
	return out, counts
}

// IncludeFunc decides whether an entry is a word of interest.
type IncludeFunc func(entry string) bool

// All includes every entry.
func All(string) bool { return true }

// ByFrequency keeps entries whose row total exceeds threshold and that
// include accepts, and within them features whose column total exceeds
// threshold. Entries missing from rows count as zero.
//
// rows must come from the unreduced collection so that runs with different
// order windows filter on the same denominators.
func ByFrequency(c vector.Collection, rows, cols totals.Totals, threshold float64, include IncludeFunc) (vector.Collection, report.Counts) {
	if include == nil {
		include = All
	}
	out := make(vector.Collection)
	counts := report.Counts{}

	for entry, v := range c {
		rowTotal, ok := rows.Get(entry)
		if !ok {
			counts.Inc(report.MissingEntry, 1)
		}
		if rowTotal <= threshold || !include(entry) {
			counts.Inc(report.DroppedEntry, 1)
			continue
		}

		kept := make(vector.Vector)
		for f, weight := range v {
			colTotal, _ := cols.Get(f)
			if colTotal > threshold {
				kept[f] = weight
			} else {
				counts.Inc(report.DroppedFeature, 1)
			}
		}
		if len(kept) == 0 {
			counts.Inc(report.DroppedEntry, 1)
			continue
		}
		out[entry] = kept
	}
	return out, counts
}

// Restrict keeps only the features accepted by keep and drops entries left
// empty. Writers use it to apply the order window to output.
func Restrict(c vector.Collection, keep func(f string) bool) vector.Collection {
	out := make(vector.Collection, len(c))
	for entry, v := range c {
		kept := make(vector.Vector, len(v))
		for f, weight := range v {
			if keep(f) {
				kept[f] = weight
			}
		}
		if len(kept) > 0 {
			out[entry] = kept
		}
	}
	return out
}
