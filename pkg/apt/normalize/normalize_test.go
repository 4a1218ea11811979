package normalize

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cognicore/apt/pkg/apt/report"
	"github.com/cognicore/apt/pkg/apt/totals"
	"github.com/cognicore/apt/pkg/apt/vector"
)

func TestNormalizeDividesByRowTotal(t *testing.T) {
	c := vector.Collection{
		"dog/N": {"amod:red": 3, "nn:house": 7, ":dog": 0.5},
		"red/J": {"_amod:dog": 2},
	}
	// pre-filter totals: larger than the filtered sums
	rows := totals.Totals{"dog/N": 20, "red/J": 8}

	out, counts := Normalize(c, rows, nil)
	require.Len(t, out, 2)
	assert.Empty(t, counts)

	for entry, v := range c {
		for f, w := range v {
			assert.Equal(t, w/rows[entry], out[entry][f], "%s %s", entry, f)
		}
		assert.InDelta(t, v.Sum()/rows[entry], out[entry].Sum(), 1e-15)
	}
	assert.InDelta(t, 0.525, out["dog/N"].Sum(), 1e-12)
}

func TestNormalizeKeepsStructure(t *testing.T) {
	c := vector.Collection{"dog/N": {"amod:red": 1, "nn:house": 1}}
	out, _ := Normalize(c, totals.Totals{"dog/N": 4}, nil)

	assert.ElementsMatch(t, c["dog/N"].Features(), out["dog/N"].Features())
	assert.Equal(t, 1.0, c["dog/N"]["amod:red"], "input must not be modified")
}

func TestNormalizeMissingOrZeroTotal(t *testing.T) {
	c := vector.Collection{
		"ghost/N": {"amod:red": 1},
		"zero/N":  {"amod:red": 1},
	}
	out, counts := Normalize(c, totals.Totals{"zero/N": 0}, nil)

	assert.Empty(t, out)
	assert.Equal(t, 2, counts.Get(report.UndefinedStatistic))
	assert.Equal(t, 1, counts.Get(report.MissingEntry))
}
