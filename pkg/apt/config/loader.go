package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/cognicore/apt/pkg/apt/compose"
	"github.com/cognicore/apt/pkg/apt/internalerr"
)

// Loader loads the run configuration and the files it refers to.
type Loader struct {
	ConfigPath string
	PairPath   string // overrides comp_pair_file when set
	FilterPath string // overrides filter_file when set
}

// Components holds everything a run needs besides the vector files.
type Components struct {
	Options *Options
	Pairs   []compose.Pair
	Groups  [][]string
}

// Load reads the configuration file and returns validated components.
func (l *Loader) Load() (*Components, error) {
	if l.ConfigPath == "" {
		return nil, fmt.Errorf("no configuration file: %w", internalerr.ErrInvalidConfig)
	}
	opts, err := LoadOptions(l.ConfigPath)
	if err != nil {
		return nil, fmt.Errorf("load options: %w", err)
	}
	if l.PairPath != "" {
		opts.CompPairFile = l.PairPath
	}
	if l.FilterPath != "" {
		opts.FilterFile = l.FilterPath
	}
	return Build(opts)
}

// Build validates opts and loads its pair and filter files.
func Build(opts *Options) (*Components, error) {
	if err := opts.Resolve(); err != nil {
		return nil, err
	}
	comp := &Components{Options: opts}

	if opts.CompPairFile != "" {
		pairs, err := LoadPairs(opts.CompPairFile)
		if err != nil {
			return nil, fmt.Errorf("load pairs: %w", err)
		}
		comp.Pairs = pairs
	}

	if opts.FilterFile != "" {
		groups, err := LoadGroups(opts.FilterFile)
		if err != nil {
			return nil, fmt.Errorf("load filter list: %w", err)
		}
		comp.Groups = groups
	}
	return comp, nil
}

// pairEntry accepts either {dependent, relation, head} or
// [head, relation, dependent].
type pairEntry compose.Pair

func (p *pairEntry) UnmarshalYAML(n *yaml.Node) error {
	switch n.Kind {
	case yaml.SequenceNode:
		var parts []string
		if err := n.Decode(&parts); err != nil {
			return err
		}
		if len(parts) != 3 {
			return fmt.Errorf("line %d: want [head, relation, dependent], got %d items", n.Line, len(parts))
		}
		*p = pairEntry{Head: parts[0], Relation: parts[1], Dependent: parts[2]}
	case yaml.MappingNode:
		var cp compose.Pair
		if err := n.Decode(&cp); err != nil {
			return err
		}
		*p = pairEntry(cp)
	default:
		return fmt.Errorf("line %d: pair must be a list or a mapping", n.Line)
	}
	if p.Dependent == "" || p.Head == "" {
		return fmt.Errorf("line %d: pair needs a dependent and a head", n.Line)
	}
	return nil
}

// LoadPairs reads a composition pair file.
func LoadPairs(path string) ([]compose.Pair, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %v: %w", path, err, internalerr.ErrResource)
	}
	var entries []pairEntry
	if err := yaml.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("parse %s: %v: %w", path, err, internalerr.ErrInvalidConfig)
	}
	pairs := make([]compose.Pair, len(entries))
	for i, e := range entries {
		pairs[i] = compose.Pair(e)
	}
	return pairs, nil
}

// LoadGroups reads a filter file: a list of word lists.
func LoadGroups(path string) ([][]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %v: %w", path, err, internalerr.ErrResource)
	}
	var groups [][]string
	if err := yaml.Unmarshal(data, &groups); err != nil {
		return nil, fmt.Errorf("parse %s: %v: %w", path, err, internalerr.ErrInvalidConfig)
	}
	return groups, nil
}
