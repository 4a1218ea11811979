// Package salience keeps only the most highly weighted features of a vector.
package salience

import (
	"context"
	"sort"

	"github.com/cognicore/apt/internal/parallel"
	"github.com/cognicore/apt/pkg/apt/feature"
	"github.com/cognicore/apt/pkg/apt/report"
	"github.com/cognicore/apt/pkg/apt/vector"
)

// Scored is a feature with its weight.
type Scored struct {
	Feature string
	Weight  float64
}

// Rank orders the features of v by weight, highest first. Equal weights are
// ordered by feature identifier so the result does not depend on map order.
func Rank(v vector.Vector) []Scored {
	out := make([]Scored, 0, len(v))
	for f, w := range v {
		out = append(out, Scored{Feature: f, Weight: w})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Weight != out[j].Weight {
			return out[i].Weight > out[j].Weight
		}
		return out[i].Feature < out[j].Feature
	})
	return out
}

// PathSet is an allow-list of path types. An empty set allows every path.
type PathSet map[string]struct{}

// NewPathSet builds a set from path keys.
func NewPathSet(paths ...string) PathSet {
	s := make(PathSet, len(paths))
	for _, p := range paths {
		s[p] = struct{}{}
	}
	return s
}

// Allows reports whether path is in the set or the set is empty.
func (s PathSet) Allows(path string) bool {
	if len(s) == 0 {
		return true
	}
	_, ok := s[path]
	return ok
}

// Selector applies a salience policy.
type Selector struct {
	K           int     // features to keep; 0 keeps everything
	PerPathType bool    // cap each path type at K instead of the whole vector
	Allowed     PathSet // path types eligible for selection
	Workers     int
}

// Select returns the K most salient features of v. Features whose path is not
// allowed are never selected and do not use up any quota.
func (s Selector) Select(v vector.Vector) vector.Vector {
	if s.K <= 0 {
		return v
	}
	out := make(vector.Vector, min(s.K, len(v)))
	perPath := make(map[string]int)
	kept := 0

	for _, sc := range Rank(v) {
		path := feature.PathKey(sc.Feature)
		if !s.Allowed.Allows(path) {
			continue
		}
		if s.PerPathType {
			if perPath[path] >= s.K {
				continue
			}
		} else if kept >= s.K {
			break
		}
		out[sc.Feature] = sc.Weight
		perPath[path]++
		kept++
	}
	return out
}

// SelectAll applies Select to every entry of c concurrently.
func (s Selector) SelectAll(ctx context.Context, c vector.Collection) (vector.Collection, report.Counts, error) {
	if s.K <= 0 {
		return c, report.Counts{}, nil
	}
	return parallel.Transform(ctx, s.Workers, c, func(_ string, v vector.Vector) (vector.Vector, report.Counts) {
		out := s.Select(v)
		return out, report.Counts{report.DroppedFeature: len(v) - len(out)}
	})
}

// TopPerPath returns up to n of the highest weighted features of every
// allowed path type, in rank order. It backs the inspection display.
func TopPerPath(v vector.Vector, n int, allowed PathSet) []Scored {
	var out []Scored
	seen := make(map[string]int)
	for _, sc := range Rank(v) {
		path := feature.PathKey(sc.Feature)
		if !allowed.Allows(path) || seen[path] >= n {
			continue
		}
		seen[path]++
		out = append(out, sc)
	}
	return out
}
