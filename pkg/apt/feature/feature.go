// Package feature implements the path:value grammar of dependency-path
// features.
//
// A feature identifier such as "_dobj»amod:red" decomposes into the path
// ["_dobj", "amod"] and the value "red". The order of a feature is the length
// of its path; ":red" is an order-0 feature. Relation labels starting with
// the inverse marker ("_dobj") point back up the dependency tree.
package feature

import (
	"fmt"
	"strings"

	"github.com/cognicore/apt/pkg/apt/internalerr"
)

const (
	// PathSep joins relation labels inside a path.
	PathSep = "»"
	// ValueSep separates the path from the value.
	ValueSep = ":"
	// InverseMarker prefixes a relation label that is traversed backwards.
	InverseMarker = "_"
)

// Path is an ordered list of relation labels, outermost first.
// Paths returned by this package may share storage; treat them as read-only.
type Path []string

// ParsePath parses a path key ("", "amod", "_dobj»amod").
func ParsePath(key string) (Path, error) {
	if key == "" {
		return nil, nil
	}
	segs := strings.Split(key, PathSep)
	for _, s := range segs {
		if s == "" {
			return nil, fmt.Errorf("path %q has an empty relation: %w", key, internalerr.ErrParse)
		}
	}
	return Path(segs), nil
}

// String renders the path key.
func (p Path) String() string {
	return strings.Join(p, PathSep)
}

// Order is the number of relation labels.
func (p Path) Order() int {
	return len(p)
}

// Head splits the path into its outermost relation and the remaining sub-path.
// An empty path yields ("", nil).
func (p Path) Head() (string, Path) {
	if len(p) == 0 {
		return "", nil
	}
	return p[0], p[1:]
}

// Offset re-expresses a dependent's path from the frame of a head it is
// attached to through rel.
//
// A path starting with the inverse of rel loses that segment. A path starting
// with any other inverse relation cannot be aligned and ok is false. Anything
// else gains rel as a new outermost segment.
func (p Path) Offset(rel string) (Path, bool) {
	first, rest := p.Head()
	switch {
	case len(p) > 0 && first == Inverse(rel):
		out := make(Path, len(rest))
		copy(out, rest)
		return out, true
	case IsInverse(first):
		return nil, false
	default:
		out := make(Path, 0, len(p)+1)
		out = append(out, rel)
		return append(out, p...), true
	}
}

// Inverse returns the inverse label of rel.
func Inverse(rel string) string {
	return InverseMarker + rel
}

// IsInverse reports whether the label is an inverse relation.
func IsInverse(label string) bool {
	return strings.HasPrefix(label, InverseMarker)
}

// Feature is a decomposed feature identifier.
type Feature struct {
	Path  Path
	Value string
}

// New builds a feature from its parts.
func New(path Path, value string) Feature {
	return Feature{Path: path, Value: value}
}

// Parse decomposes a feature identifier. The path ends at the first value
// separator; the value is the remainder and may itself contain ':'.
func Parse(s string) (Feature, error) {
	i := strings.Index(s, ValueSep)
	if i < 0 {
		return Feature{}, fmt.Errorf("feature %q has no value separator: %w", s, internalerr.ErrParse)
	}
	path, err := ParsePath(s[:i])
	if err != nil {
		return Feature{}, fmt.Errorf("feature %q: %w", s, err)
	}
	return New(path, s[i+len(ValueSep):]), nil
}

// String reassembles the identifier; Parse(f.String()) == f.
func (f Feature) String() string {
	return f.Path.String() + ValueSep + f.Value
}

// Order is the length of the feature's path.
func (f Feature) Order() int {
	return f.Path.Order()
}

// Offset applies Path.Offset and keeps the value.
func (f Feature) Offset(rel string) (Feature, bool) {
	p, ok := f.Path.Offset(rel)
	if !ok {
		return Feature{}, false
	}
	return New(p, f.Value), true
}

// PathKey returns the path part of a raw identifier without validating it.
// An identifier without a value separator is treated as all path.
func PathKey(s string) string {
	if i := strings.Index(s, ValueSep); i >= 0 {
		return s[:i]
	}
	return s
}

// Order returns the order of a raw identifier. It never fails: "" and
// ":value" are order 0.
func Order(s string) int {
	key := PathKey(s)
	if key == "" {
		return 0
	}
	return strings.Count(key, PathSep) + 1
}
