package compose

import (
	"sort"

	"github.com/cognicore/apt/pkg/apt/feature"
	"github.com/cognicore/apt/pkg/apt/report"
	"github.com/cognicore/apt/pkg/apt/totals"
	"github.com/cognicore/apt/pkg/apt/vector"
)

// weights is satisfied by vector.Vector and totals.Totals.
type weights interface {
	~map[string]float64
}

type rewriteFunc func(key string) (string, bool, error)

// offset rewrites every key of src. Keys are visited in sorted order so that
// when two keys map to the same new key the later one wins deterministically.
func offset[M weights](src M, rewrite rewriteFunc) (M, report.Counts) {
	out := make(M, len(src))
	counts := report.Counts{}

	keys := make([]string, 0, len(src))
	for k := range src {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, k := range keys {
		nk, ok, err := rewrite(k)
		switch {
		case err != nil:
			counts.Inc(report.ParseError, 1)
		case !ok:
			counts.Inc(report.Incompatible, 1)
		default:
			out[nk] = src[k]
		}
	}
	return out, counts
}

// merge sums head and off where they share a key and keeps every other key
// of both. Neither input is modified.
func merge[M weights](head, off M) (M, report.Counts) {
	out := make(M, len(head)+len(off))
	counts := report.Counts{}
	for k, w := range head {
		if ow, ok := off[k]; ok {
			out[k] = w + ow
			counts.Inc(report.Intersecting, 1)
			continue
		}
		out[k] = w
	}
	for k, w := range off {
		if _, ok := head[k]; !ok {
			out[k] = w
		}
	}
	return out, counts
}

// Offset aligns a dependent vector with the frame of the head it attaches to
// through rel (see feature.Path.Offset). Features starting with any other
// inverse relation are dropped and counted as incompatible.
func Offset(dep vector.Vector, rel string, codec *feature.Codec) (vector.Vector, report.Counts) {
	parse := feature.Parse
	if codec != nil {
		parse = codec.Parse
	}
	return offset(dep, func(key string) (string, bool, error) {
		f, err := parse(key)
		if err != nil {
			return "", false, err
		}
		nf, ok := f.Offset(rel)
		if !ok {
			return "", false, nil
		}
		return nf.String(), true, nil
	})
}

// OffsetPaths applies the same alignment to a map keyed by path, such as the
// path totals of an entry or the path-type totals of a collection.
func OffsetPaths(dep totals.Totals, rel string) (totals.Totals, report.Counts) {
	return offset(dep, func(key string) (string, bool, error) {
		p, err := feature.ParsePath(key)
		if err != nil {
			return "", false, err
		}
		np, ok := p.Offset(rel)
		if !ok {
			return "", false, nil
		}
		return np.String(), true, nil
	})
}

// Merge combines a head vector with an offset dependent vector: weights add
// where both describe the same feature, everything else is kept.
func Merge(head, off vector.Vector) (vector.Vector, report.Counts) {
	return merge(head, off)
}

// MergeTotals is Merge for path- or feature-keyed totals.
func MergeTotals(head, off totals.Totals) (totals.Totals, report.Counts) {
	return merge(head, off)
}

// Add offsets dep through rel and merges it into head.
func Add(dep, head vector.Vector, rel string, codec *feature.Codec) (vector.Vector, report.Counts) {
	off, counts := Offset(dep, rel, codec)
	out, mc := Merge(head, off)
	counts.Merge(mc)
	return out, counts
}

// AddTotals offsets feature-keyed totals (column totals) through rel and
// merges them into the head's.
func AddTotals(dep, head totals.Totals, rel string, codec *feature.Codec) (totals.Totals, report.Counts) {
	off, counts := Offset(vector.Vector(dep), rel, codec)
	out, mc := MergeTotals(head, totals.Totals(off))
	counts.Merge(mc)
	return out, counts
}

// AddPaths offsets path-keyed totals through rel and merges them into the
// head's.
func AddPaths(dep, head totals.Totals, rel string) (totals.Totals, report.Counts) {
	off, counts := OffsetPaths(dep, rel)
	out, mc := MergeTotals(head, off)
	counts.Merge(mc)
	return out, counts
}
