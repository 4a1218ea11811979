package totals

import "github.com/cognicore/apt/pkg/apt/vector"

// Index bundles a collection with every aggregate derived from it. Build it
// once, before any worker starts, and only read from it afterwards.
type Index struct {
	Vectors   vector.Collection
	Rows      Totals            // T(w,*)
	Columns   Totals            // T(*,f)
	Paths     map[string]Totals // T(w,p)
	PathTypes Totals            // T(*,p)
}

// NewIndex derives path and path-type totals from vectors and cols.
// Row and column totals are supplied by the caller because they are usually
// loaded from the totals files of an earlier stage.
func NewIndex(vectors vector.Collection, rows, cols Totals) *Index {
	return &Index{
		Vectors:   vectors,
		Rows:      rows,
		Columns:   cols,
		Paths:     PathTotals(vectors),
		PathTypes: PathTypeTotals(cols),
	}
}

// Path returns T(w,p); missing values are zero.
func (ix *Index) Path(entry, path string) float64 {
	return ix.Paths[entry][path]
}
