// Package normalize rescales entry vectors to probability distributions.
package normalize

import (
	"github.com/sirupsen/logrus"

	"github.com/cognicore/apt/internal/logging"
	"github.com/cognicore/apt/pkg/apt/report"
	"github.com/cognicore/apt/pkg/apt/totals"
	"github.com/cognicore/apt/pkg/apt/vector"
)

// Normalize divides every weight of an entry by its row total.
//
// rows are the totals taken before filtering, so the normalised vectors do
// not sum to exactly one. Totals have to be recomputed from the result
// before it feeds any row-total dependent stage.
//
// An entry without a positive row total cannot be normalised; it is dropped
// and counted.
func Normalize(c vector.Collection, rows totals.Totals, log logrus.FieldLogger) (vector.Collection, report.Counts) {
	log = logging.Or(log)
	out := make(vector.Collection, len(c))
	counts := report.Counts{}

	for _, entry := range c.Entries() {
		v := c[entry]
		total, ok := rows.Get(entry)
		if !ok || total <= 0 {
			if !ok {
				counts.Inc(report.MissingEntry, 1)
			}
			counts.Inc(report.UndefinedStatistic, 1)
			log.WithField("entry", entry).Debug("no positive row total, entry not normalised")
			continue
		}

		nv := make(vector.Vector, len(v))
		for f, w := range v {
			nv[f] = w / total
		}
		out[entry] = nv
	}
	return out, counts
}
