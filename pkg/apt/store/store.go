// Package store defines where the pipeline reads and writes its sparse
// files.
package store

import (
	"context"

	"github.com/cognicore/apt/pkg/apt/report"
	"github.com/cognicore/apt/pkg/apt/totals"
	"github.com/cognicore/apt/pkg/apt/vector"
)

// Store reads and writes named vector and totals files.
//
// Reads recover from malformed items: they are dropped and counted under
// report.ParseError. A missing name is an internalerr.ErrResource error.
type Store interface {
	// Vectors. An entry listed more than once is summed.
	ReadVectors(ctx context.Context, name string) (vector.Collection, report.Counts, error)
	// WriteVectors writes entries in order and skips entries with no features.
	WriteVectors(ctx context.Context, name string, c vector.Collection) error

	// Totals
	ReadTotals(ctx context.Context, name string) (totals.Totals, report.Counts, error)
	WriteTotals(ctx context.Context, name string, t totals.Totals) error
}
