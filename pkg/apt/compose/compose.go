// Package compose builds vectors for multi-word expressions from the vectors
// of their words.
//
// Relation-based composition offsets a dependent's vector into the frame of
// its head (an adjective's features re-expressed as seen from the noun it
// modifies) and merges the result with the head's vector. Intersective
// composition takes the elementwise minimum of a group of vectors.
package compose

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/cognicore/apt/internal/logging"
	"github.com/cognicore/apt/internal/parallel"
	"github.com/cognicore/apt/pkg/apt/feature"
	"github.com/cognicore/apt/pkg/apt/internalerr"
	"github.com/cognicore/apt/pkg/apt/report"
	"github.com/cognicore/apt/pkg/apt/totals"
	"github.com/cognicore/apt/pkg/apt/vector"
)

// DefaultRelation is used for pairs that do not name one.
const DefaultRelation = "mod"

// Roles names the part-of-speech collections a relation's head and
// dependent are read from.
type Roles struct {
	Head      string
	Dependent string
}

var roles = map[string]Roles{
	"nn":   {Head: "N", Dependent: "N"},
	"amod": {Head: "N", Dependent: "J"},
	"mod":  {Head: "N", Dependent: "J"},
}

// RolesFor returns the roles of rel; unknown relations read an adjective
// dependent and a noun head.
func RolesFor(rel string) Roles {
	if r, ok := roles[rel]; ok {
		return r
	}
	return Roles{Head: "N", Dependent: "J"}
}

// Pair names one composition: Dependent attached to Head through Relation.
type Pair struct {
	Dependent string `yaml:"dependent"`
	Relation  string `yaml:"relation"`
	Head      string `yaml:"head"`
}

// Rel returns the pair's relation, defaulting to DefaultRelation.
func (p Pair) Rel() string {
	if p.Relation == "" {
		return DefaultRelation
	}
	return p.Relation
}

// Key is the composed entry name, dependent|relation|head. The dependent's
// part-of-speech tag is dropped ("red/J" → "red").
func (p Pair) Key() string {
	dep, _, _ := strings.Cut(p.Dependent, "/")
	return dep + "|" + p.Rel() + "|" + p.Head
}

// Composed holds the derived quantities of a composed entry.
type Composed struct {
	Key    string
	Vector vector.Vector
	Paths  totals.Totals
	Row    float64
}

// Composer composes entries drawn from per-part-of-speech indexes.
type Composer struct {
	codec   *feature.Codec
	workers int
	log     logrus.FieldLogger
}

// New creates a composer. A nil codec gets a private one.
func New(codec *feature.Codec, workers int, log logrus.FieldLogger) *Composer {
	if codec == nil {
		codec = feature.NewCodec(0)
	}
	return &Composer{codec: codec, workers: workers, log: logging.Or(log)}
}

// Pair composes one dependent/head pair. dep and head are the indexes of the
// dependent's and head's parts of speech (they may be the same index).
func (c *Composer) Pair(dep, head *totals.Index, p Pair) (Composed, report.Counts, error) {
	rel := p.Rel()
	depVec, ok := dep.Vectors[p.Dependent]
	if !ok {
		return Composed{}, nil, fmt.Errorf("dependent %q: %w", p.Dependent, internalerr.ErrMissingTotals)
	}
	headVec, ok := head.Vectors[p.Head]
	if !ok {
		return Composed{}, nil, fmt.Errorf("head %q: %w", p.Head, internalerr.ErrMissingTotals)
	}
	depRow, _ := dep.Rows.Get(p.Dependent)
	headRow, _ := head.Rows.Get(p.Head)

	vec, counts := Add(depVec, headVec, rel, c.codec)
	paths, pc := AddPaths(dep.Paths[p.Dependent], head.Paths[p.Head], rel)
	counts.Merge(pc)

	return Composed{
		Key:    p.Key(),
		Vector: vec,
		Paths:  paths,
		Row:    depRow + headRow,
	}, counts, nil
}

// Batch composes every pair and returns one index per relation, ready for
// the PPMI engine. Column and path-type totals are composed once per
// relation and shared by all of its pairs.
//
// spaces maps a part-of-speech tag to its index. Pairs whose words are not
// in their index are skipped and counted.
func (c *Composer) Batch(ctx context.Context, spaces map[string]*totals.Index, pairs []Pair) ([]*totals.Index, report.Counts, error) {
	counts := report.Counts{}
	byRel := make(map[string][]Pair)
	seen := make(map[string]bool)
	for _, p := range pairs {
		if seen[p.Key()] {
			continue
		}
		seen[p.Key()] = true
		byRel[p.Rel()] = append(byRel[p.Rel()], p)
	}

	rels := make([]string, 0, len(byRel))
	for rel := range byRel {
		rels = append(rels, rel)
	}
	sort.Strings(rels)

	var out []*totals.Index
	for _, rel := range rels {
		r := RolesFor(rel)
		dep, head := spaces[r.Dependent], spaces[r.Head]
		if dep == nil || head == nil {
			return nil, nil, fmt.Errorf("relation %s needs %s and %s vectors: %w", rel, r.Dependent, r.Head, internalerr.ErrNotFound)
		}

		ix, rc, err := c.batch(ctx, dep, head, rel, byRel[rel])
		if err != nil {
			return nil, nil, err
		}
		counts.Merge(rc)
		out = append(out, ix)
	}
	return out, counts, nil
}

type pairResult struct {
	composed Composed
	counts   report.Counts
	err      error
}

func (c *Composer) batch(ctx context.Context, dep, head *totals.Index, rel string, pairs []Pair) (*totals.Index, report.Counts, error) {
	log := c.log.WithField("relation", rel)

	cols, counts := AddTotals(dep.Columns, head.Columns, rel, c.codec)
	types, tc := AddPaths(dep.PathTypes, head.PathTypes, rel)
	counts.Merge(tc)

	results, err := parallel.Map(ctx, c.workers, len(pairs), func(_ context.Context, i int) (pairResult, error) {
		comp, pc, err := c.Pair(dep, head, pairs[i])
		return pairResult{composed: comp, counts: pc, err: err}, nil
	})
	if err != nil {
		return nil, nil, err
	}

	ix := &totals.Index{
		Vectors:   make(vector.Collection, len(pairs)),
		Rows:      make(totals.Totals, len(pairs)),
		Columns:   cols,
		Paths:     make(map[string]totals.Totals, len(pairs)),
		PathTypes: types,
	}
	for i, r := range results {
		if r.err != nil {
			if !internalerr.Recoverable(r.err) {
				return nil, nil, fmt.Errorf("pair %s: %w", pairs[i].Key(), r.err)
			}
			counts.Inc(report.MissingEntry, 1)
			log.WithField("pair", pairs[i].Key()).Warn(r.err)
			continue
		}
		counts.Merge(r.counts)
		ix.Vectors[r.composed.Key] = r.composed.Vector
		ix.Rows[r.composed.Key] = r.composed.Row
		ix.Paths[r.composed.Key] = r.composed.Paths
	}

	log.WithFields(logrus.Fields{
		"pairs":        len(ix.Vectors),
		"intersecting": counts.Get(report.Intersecting),
		"incompatible": counts.Get(report.Incompatible),
	}).Info("composed pairs")
	return ix, counts, nil
}
