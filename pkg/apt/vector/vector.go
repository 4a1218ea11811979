// Package vector holds the sparse vector types shared by every stage.
package vector

import (
	"sort"

	"gonum.org/v1/gonum/floats"
)

// Vector maps a feature identifier to its weight.
type Vector map[string]float64

// Collection maps an entry (e.g. "dog/N") to its vector.
type Collection map[string]Vector

// Clone returns an independent copy of v.
func (v Vector) Clone() Vector {
	out := make(Vector, len(v))
	for k, w := range v {
		out[k] = w
	}
	return out
}

// Sum returns the total weight of v.
func (v Vector) Sum() float64 {
	if len(v) == 0 {
		return 0
	}
	vals := make([]float64, 0, len(v))
	for _, k := range v.Features() {
		vals = append(vals, v[k])
	}
	return floats.Sum(vals)
}

// Add returns v+other without modifying either.
func (v Vector) Add(other Vector) Vector {
	out := v.Clone()
	for k, w := range other {
		out[k] += w
	}
	return out
}

// Features returns the feature identifiers in ascending order.
func (v Vector) Features() []string {
	keys := make([]string, 0, len(v))
	for k := range v {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Entries returns the entry names in ascending order.
func (c Collection) Entries() []string {
	keys := make([]string, 0, len(c))
	for k := range c {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Merge adds vec to the entry, summing with any vector already present.
// Input files may list the same entry on several lines.
func (c Collection) Merge(entry string, vec Vector) {
	if cur, ok := c[entry]; ok {
		c[entry] = cur.Add(vec)
		return
	}
	c[entry] = vec
}

// Size returns the number of entries and the number of (entry, feature) pairs.
func (c Collection) Size() (entries, features int) {
	for _, v := range c {
		features += len(v)
	}
	return len(c), features
}
