package compose

import (
	"strings"

	"github.com/cognicore/apt/pkg/apt/report"
	"github.com/cognicore/apt/pkg/apt/totals"
	"github.com/cognicore/apt/pkg/apt/vector"
)

// Intersect returns the elementwise minimum of vs, treating an absent
// feature as 0, and keeps only strictly positive results.
//
// Inputs are expected to hold positive weights, as counts and PPMI scores
// do; Intersect(v) == v only for such vectors. Non-positive weights are
// dropped even from a single vector, so Intersect(v) == Intersect(v, v).
func Intersect(vs ...vector.Vector) vector.Vector {
	if len(vs) == 0 {
		return vector.Vector{}
	}
	out := make(vector.Vector, len(vs[0]))
	for f, w := range vs[0] {
		if w > 0 {
			out[f] = w
		}
	}
	for _, v := range vs[1:] {
		next := make(vector.Vector, len(out))
		for f, w := range out {
			if m := min(w, v[f]); m > 0 {
				next[f] = m
			}
		}
		out = next
	}
	return out
}

// GroupName joins a group's words with "_".
func GroupName(words []string) string {
	return strings.Join(words, "_")
}

// IntersectGroups intersects the vectors of every group of words in c. The
// combined entry is named by GroupName and its row total is the sum of its
// surviving weights. A word missing from c contributes an all-zero vector.
func IntersectGroups(c vector.Collection, groups [][]string) (vector.Collection, totals.Totals, report.Counts) {
	out := make(vector.Collection, len(groups))
	rows := make(totals.Totals, len(groups))
	counts := report.Counts{}

	for _, words := range groups {
		if len(words) == 0 {
			continue
		}
		vs := make([]vector.Vector, 0, len(words))
		for _, w := range words {
			v, ok := c[w]
			if !ok {
				counts.Inc(report.MissingEntry, 1)
				v = vector.Vector{}
			}
			vs = append(vs, v)
		}
		name := GroupName(words)
		v := Intersect(vs...)
		out[name] = v
		rows[name] = v.Sum()
	}
	return out, rows, counts
}
