package feature

import (
	lru "github.com/hashicorp/golang-lru/v2"
)

// DefaultCacheSize bounds the number of decomposed identifiers kept by a Codec.
const DefaultCacheSize = 1 << 16

type parsed struct {
	f   Feature
	err error
}

// Codec parses feature identifiers through a bounded LRU cache. The same
// identifiers recur across every entry of a collection, so most lookups
// hit. A Codec is safe for concurrent use.
type Codec struct {
	cache *lru.Cache[string, parsed]
}

// NewCodec creates a codec caching up to size identifiers.
func NewCodec(size int) *Codec {
	if size <= 0 {
		size = DefaultCacheSize
	}
	cache, err := lru.New[string, parsed](size)
	if err != nil {
		// only returned for a non-positive size
		panic(err)
	}
	return &Codec{cache: cache}
}

// Parse behaves like the package-level Parse. The returned Path is shared
// with the cache and must not be modified.
func (c *Codec) Parse(s string) (Feature, error) {
	if p, ok := c.cache.Get(s); ok {
		return p.f, p.err
	}
	f, err := Parse(s)
	c.cache.Add(s, parsed{f: f, err: err})
	return f, err
}

// Len returns the number of cached identifiers.
func (c *Codec) Len() int {
	return c.cache.Len()
}
