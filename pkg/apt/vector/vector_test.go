package vector

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestVectorSumAndClone(t *testing.T) {
	v := Vector{"amod:red": 2, "nn:house": 1}
	assert.Equal(t, 3.0, v.Sum())
	assert.Equal(t, 0.0, Vector{}.Sum())

	c := v.Clone()
	c["amod:red"] = 10
	assert.Equal(t, 2.0, v["amod:red"])
}

func TestVectorAdd(t *testing.T) {
	a := Vector{"f1": 1, "f2": 2}
	b := Vector{"f2": 3, "f3": 4}

	got := a.Add(b)
	assert.Equal(t, Vector{"f1": 1, "f2": 5, "f3": 4}, got)
	assert.Equal(t, Vector{"f1": 1, "f2": 2}, a, "Add must not modify its receiver")
}

func TestSortedKeys(t *testing.T) {
	v := Vector{"b": 1, "a": 2, "c": 3}
	assert.Equal(t, []string{"a", "b", "c"}, v.Features())

	c := Collection{"red/J": v, "dog/N": v}
	assert.Equal(t, []string{"dog/N", "red/J"}, c.Entries())
}

func TestCollectionMerge(t *testing.T) {
	c := Collection{}
	c.Merge("dog/N", Vector{"amod:red": 1})
	c.Merge("dog/N", Vector{"amod:red": 1, "nn:house": 1})

	assert.Equal(t, Vector{"amod:red": 2, "nn:house": 1}, c["dog/N"])

	entries, feats := c.Size()
	assert.Equal(t, 1, entries)
	assert.Equal(t, 2, feats)
}
