// Package wordlist holds the words of interest a run is restricted to.
package wordlist

import "github.com/cognicore/apt/pkg/apt/compose"

// Set is a set of entries. An empty set includes every entry.
type Set struct {
	words map[string]struct{}
}

// New creates a set from words.
func New(words []string) *Set {
	s := &Set{words: make(map[string]struct{}, len(words))}
	for _, w := range words {
		s.Add(w)
	}
	return s
}

// FromGroups flattens word groups (the filter file format) into a set.
func FromGroups(groups [][]string) *Set {
	s := New(nil)
	for _, g := range groups {
		for _, w := range g {
			s.Add(w)
		}
	}
	return s
}

// FromPairs collects the pair members read from the pos collection:
// dependents when pos is the dependent part of speech of the pair's
// relation, heads when it is the head part of speech.
func FromPairs(pairs []compose.Pair, pos string) *Set {
	s := New(nil)
	for _, p := range pairs {
		r := compose.RolesFor(p.Rel())
		if r.Dependent == pos {
			s.Add(p.Dependent)
		}
		if r.Head == pos {
			s.Add(p.Head)
		}
	}
	return s
}

// Add adds a word. Empty words are ignored.
func (s *Set) Add(word string) {
	if word == "" {
		return
	}
	s.words[word] = struct{}{}
}

// Include reports whether word is of interest.
func (s *Set) Include(word string) bool {
	if s == nil || len(s.words) == 0 {
		return true
	}
	_, ok := s.words[word]
	return ok
}

// Len is the number of words in the set.
func (s *Set) Len() int {
	if s == nil {
		return 0
	}
	return len(s.words)
}
