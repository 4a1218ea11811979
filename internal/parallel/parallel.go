// Package parallel runs independent per-entry computations on a bounded
// number of goroutines.
//
// Callers must finish building every shared input (totals, indexes) before
// calling into this package; the functions passed in may only read them.
// Each result slot is written by exactly one goroutine.
package parallel

import (
	"context"
	"runtime"

	"golang.org/x/sync/errgroup"

	"github.com/cognicore/apt/pkg/apt/report"
	"github.com/cognicore/apt/pkg/apt/vector"
)

// Workers resolves a configured worker count; n <= 0 means one per CPU.
func Workers(n int) int {
	if n <= 0 {
		return runtime.NumCPU()
	}
	return n
}

// Map calls fn for every index in [0, n) with at most workers calls in
// flight and returns the results in index order. The first error cancels
// the remaining work.
func Map[T any](ctx context.Context, workers, n int, fn func(ctx context.Context, i int) (T, error)) ([]T, error) {
	out := make([]T, n)
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(Workers(workers))

	for i := 0; i < n; i++ {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			v, err := fn(ctx, i)
			if err != nil {
				return err
			}
			out[i] = v
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

// EntryFunc transforms one entry's vector and reports its own diagnostics.
type EntryFunc func(entry string, v vector.Vector) (vector.Vector, report.Counts)

type entryResult struct {
	vec    vector.Vector
	counts report.Counts
}

// Transform applies fn to every entry of c. Results are collected and
// counts merged on the calling goroutine. Entries for which fn returns a nil
// vector are left out.
func Transform(ctx context.Context, workers int, c vector.Collection, fn EntryFunc) (vector.Collection, report.Counts, error) {
	entries := c.Entries()
	results, err := Map(ctx, workers, len(entries), func(_ context.Context, i int) (entryResult, error) {
		v, counts := fn(entries[i], c[entries[i]])
		return entryResult{vec: v, counts: counts}, nil
	})
	if err != nil {
		return nil, nil, err
	}

	out := make(vector.Collection, len(entries))
	counts := report.Counts{}
	for i, r := range results {
		counts.Merge(r.counts)
		if r.vec != nil {
			out[entries[i]] = r.vec
		}
	}
	return out, counts, nil
}
