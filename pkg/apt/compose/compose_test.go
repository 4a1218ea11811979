package compose

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cognicore/apt/pkg/apt/feature"
	"github.com/cognicore/apt/pkg/apt/filter"
	"github.com/cognicore/apt/pkg/apt/internalerr"
	"github.com/cognicore/apt/pkg/apt/report"
	"github.com/cognicore/apt/pkg/apt/totals"
	"github.com/cognicore/apt/pkg/apt/vector"
)

func TestMergeConservation(t *testing.T) {
	head := vector.Vector{"f1": 2.0}
	off := vector.Vector{"f1": 3.0, "f2": 1.0}

	got, counts := Merge(head, off)
	assert.Equal(t, vector.Vector{"f1": 5.0, "f2": 1.0}, got)
	assert.Equal(t, 1, counts.Get(report.Intersecting))

	assert.Equal(t, vector.Vector{"f1": 2.0}, head, "head must not be modified")
	assert.Equal(t, vector.Vector{"f1": 3.0, "f2": 1.0}, off, "offset must not be modified")
}

func TestOffsetOrderIncrease(t *testing.T) {
	got, counts := Offset(vector.Vector{":red": 4.0}, "mod", nil)
	assert.Equal(t, vector.Vector{"mod:red": 4.0}, got)
	assert.Equal(t, 1, feature.Order("mod:red"))
	assert.Empty(t, counts)

	got, _ = Offset(vector.Vector{"amod:very": 1.0}, "mod", feature.NewCodec(8))
	assert.Equal(t, vector.Vector{"mod»amod:very": 1.0}, got)
}

func TestOffsetCancellation(t *testing.T) {
	dep := vector.Vector{
		"_mod:dog":          2.0,
		"_mod»nsubj:bark/V": 1.5,
	}
	got, _ := Offset(dep, "mod", nil)
	assert.Equal(t, vector.Vector{":dog": 2.0, "nsubj:bark/V": 1.5}, got)
}

func TestOffsetIncompatible(t *testing.T) {
	dep := vector.Vector{"_dobj:eat": 1, ":red": 2, "broken": 3}
	got, counts := Offset(dep, "mod", nil)

	assert.Equal(t, vector.Vector{"mod:red": 2}, got)
	assert.Equal(t, 1, counts.Get(report.Incompatible))
	assert.Equal(t, 1, counts.Get(report.ParseError))
}

func TestOffsetCollisionLastWriteWins(t *testing.T) {
	// ":x" → "mod:x" and "_mod»mod:x" → "mod:x"; ":x" sorts first
	dep := vector.Vector{":x": 1, "_mod»mod:x": 7}
	for i := 0; i < 10; i++ {
		got, _ := Offset(dep, "mod", nil)
		assert.Equal(t, vector.Vector{"mod:x": 7}, got)
	}
}

func TestOffsetPaths(t *testing.T) {
	dep := totals.Totals{"": 3, "_mod": 2, "_mod»nsubj": 1, "amod": 4, "_dobj": 5}
	got, counts := OffsetPaths(dep, "mod")

	assert.Equal(t, totals.Totals{"mod": 3, "": 2, "nsubj": 1, "mod»amod": 4}, got)
	assert.Equal(t, 1, counts.Get(report.Incompatible))
}

func TestPairKey(t *testing.T) {
	assert.Equal(t, "red|mod|dog", Pair{Dependent: "red/J", Head: "dog"}.Key())
	assert.Equal(t, "red|amod|dog/N", Pair{Dependent: "red", Relation: "amod", Head: "dog/N"}.Key())
}

func TestRolesFor(t *testing.T) {
	assert.Equal(t, Roles{Head: "N", Dependent: "N"}, RolesFor("nn"))
	assert.Equal(t, Roles{Head: "N", Dependent: "J"}, RolesFor("amod"))
	assert.Equal(t, Roles{Head: "N", Dependent: "J"}, RolesFor("whatever"))
}

// raw counts for dog/N and red/J, reduced to [0,2] and indexed
func scenario(t *testing.T) (nouns, adjs *totals.Index) {
	t.Helper()
	raw := vector.Collection{
		"dog/N": {"amod:red": 2, "nn:house": 1},
		"red/J": {"_amod:dog": 2},
	}
	reduced, _ := filter.ReduceByOrder(raw, 0, 2)
	require.Equal(t, raw, reduced)

	rows, cols, _ := totals.Compute(reduced, nil)
	require.Equal(t, 3.0, rows["dog/N"])
	require.Equal(t, 2.0, rows["red/J"])

	n := vector.Collection{"dog/N": reduced["dog/N"]}
	j := vector.Collection{"red/J": reduced["red/J"]}
	return totals.NewIndex(n, rows, cols), totals.NewIndex(j, rows, cols)
}

func TestPairEndToEnd(t *testing.T) {
	nouns, adjs := scenario(t)
	c := New(nil, 1, nil)

	got, counts, err := c.Pair(adjs, nouns, Pair{Dependent: "red/J", Relation: "mod", Head: "dog/N"})
	require.NoError(t, err)

	assert.Equal(t, "red|mod|dog/N", got.Key)
	assert.Equal(t, 5.0, got.Row)
	// _amod is an inverse relation other than _mod: nothing of red aligns
	assert.Equal(t, vector.Vector{"amod:red": 2, "nn:house": 1}, got.Vector)
	assert.Equal(t, totals.Totals{"amod": 2, "nn": 1}, got.Paths)
	assert.Equal(t, 2, counts.Get(report.Incompatible))

	got, _, err = c.Pair(adjs, nouns, Pair{Dependent: "red/J", Relation: "amod", Head: "dog/N"})
	require.NoError(t, err)
	assert.Equal(t, vector.Vector{"amod:red": 2, "nn:house": 1, ":dog": 2}, got.Vector)
	assert.Equal(t, totals.Totals{"amod": 2, "nn": 1, "": 2}, got.Paths)
	assert.Equal(t, 5.0, got.Row)
}

func TestPairMissingWord(t *testing.T) {
	nouns, adjs := scenario(t)
	_, _, err := New(nil, 1, nil).Pair(adjs, nouns, Pair{Dependent: "blue/J", Head: "dog/N"})
	assert.ErrorIs(t, err, internalerr.ErrMissingTotals)
}

func TestBatch(t *testing.T) {
	nouns := vector.Collection{
		"dog/N": {"amod:red": 2, "nn:house": 1, "_nsubj:bark/V": 3},
		"cat/N": {"amod:black": 1, "_nsubj:purr/V": 2},
	}
	adjs := vector.Collection{
		"red/J":   {"_amod:dog/N": 2, ":red/J": 5},
		"black/J": {"_amod:cat/N": 1, ":black/J": 4},
	}
	nr, nc, _ := totals.Compute(nouns, nil)
	jr, jc, _ := totals.Compute(adjs, nil)
	spaces := map[string]*totals.Index{
		"N": totals.NewIndex(nouns, nr, nc),
		"J": totals.NewIndex(adjs, jr, jc),
	}

	pairs := []Pair{
		{Dependent: "red/J", Relation: "amod", Head: "dog/N"},
		{Dependent: "black/J", Relation: "amod", Head: "cat/N"},
		{Dependent: "black/J", Relation: "amod", Head: "cat/N"},
		{Dependent: "blue/J", Relation: "amod", Head: "cat/N"},
	}
	out, counts, err := New(nil, 2, nil).Batch(context.Background(), spaces, pairs)
	require.NoError(t, err)
	require.Len(t, out, 1)
	ix := out[0]

	assert.Len(t, ix.Vectors, 2)
	assert.Equal(t, 1, counts.Get(report.MissingEntry))

	assert.Equal(t, vector.Vector{"amod:red": 2, "nn:house": 1, "_nsubj:bark/V": 3, ":dog/N": 2, "amod:red/J": 5},
		ix.Vectors["red|amod|dog/N"])
	assert.Equal(t, 6.0+7.0, ix.Rows["red|amod|dog/N"])
	assert.Equal(t, 2.0, ix.Paths["red|amod|dog/N"][""])

	// composed aggregates: noun columns merged with offset adjective columns
	assert.Equal(t, 2.0, ix.Columns["amod:red"])
	assert.Equal(t, 5.0, ix.Columns["amod:red/J"])
	assert.Equal(t, 2.0, ix.Columns[":dog/N"])
	assert.Equal(t, 3.0+9.0, ix.PathTypes["amod"], "noun amod total plus offset order-0 adjective total")
	assert.Equal(t, 3.0, ix.PathTypes[""])
}

func TestBatchMissingSpace(t *testing.T) {
	_, _, err := New(nil, 1, nil).Batch(context.Background(), map[string]*totals.Index{}, []Pair{{Dependent: "red/J", Head: "dog/N"}})
	assert.ErrorIs(t, err, internalerr.ErrNotFound)
}
