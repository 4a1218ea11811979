package config

import (
	"fmt"
	"strings"

	"github.com/cognicore/apt/pkg/apt/internalerr"
)

// Stage is one step of a run.
type Stage int

const (
	ReduceOrder Stage = iota + 1
	MakeTotals
	Filter
	Normalise
	Revectorise
	Compose
	Intersect
	Inspect
	Rewrite
)

var stageNames = map[Stage]string{
	ReduceOrder: "reduceorder",
	MakeTotals:  "maketotals",
	Filter:      "filter",
	Normalise:   "normalise",
	Revectorise: "revectorise",
	Compose:     "compose",
	Intersect:   "intersect",
	Inspect:     "inspect",
	Rewrite:     "rewrite",
}

// Stages lists every stage in declaration order.
func Stages() []Stage {
	return []Stage{ReduceOrder, MakeTotals, Filter, Normalise, Revectorise, Compose, Intersect, Inspect, Rewrite}
}

func (s Stage) String() string {
	if n, ok := stageNames[s]; ok {
		return n
	}
	return fmt.Sprintf("stage(%d)", int(s))
}

// ParseStage resolves a stage name.
func ParseStage(name string) (Stage, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	for s, n := range stageNames {
		if n == name {
			return s, nil
		}
	}
	if name == "split" {
		return 0, fmt.Errorf("stage %q: splitting by part of speech is not supported, supply per-pos files: %w", name, internalerr.ErrInvalidConfig)
	}
	return 0, fmt.Errorf("unknown stage %q: %w", name, internalerr.ErrInvalidConfig)
}
