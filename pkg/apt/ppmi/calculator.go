package ppmi

import (
	"fmt"
	"math"

	"github.com/cognicore/apt/pkg/apt/internalerr"
)

// SmoothingExponent is the context-distribution smoothing power applied to
// feature, path-type and grand totals.
const SmoothingExponent = 0.75

// Weighting selects the association formula
type Weighting int

const (
	// Standard conditions on the path type:
	// log10(C<w,p,v> * C<*,p,*> / (C<*,p,v> * C<w,p,*>))
	Standard Weighting = iota
	// GoodnessOfFit uses a single grand total over all path types:
	// log10(C<w,p,v> * G / (C<*,p,v> * C<w,*,*>))
	GoodnessOfFit
)

func (w Weighting) String() string {
	switch w {
	case Standard:
		return "ppmi"
	case GoodnessOfFit:
		return "gof_ppmi"
	default:
		return "unknown"
	}
}

// Observation holds the counts behind one (entry, feature) score.
type Observation struct {
	Freq       float64 // C<w,p,v>
	PathTotal  float64 // C<w,p,*>
	FeatTotal  float64 // C<*,p,v>
	TypeTotal  float64 // C<*,p,*>
	EntryTotal float64 // C<w,*,*>
}

// Calculator handles the scalar PMI formulas for one run
type Calculator struct {
	weighting Weighting
	smoothed  bool
	grand     float64
}

// NewCalculator creates a calculator. grand is G = Σ C<*,p,*>; it is only
// read by GoodnessOfFit and is smoothed here once when smoothing is on.
func NewCalculator(w Weighting, smoothed bool, grand float64) *Calculator {
	if smoothed {
		grand = Smooth(grand)
	}
	return &Calculator{weighting: w, smoothed: smoothed, grand: grand}
}

// Smooth raises a total to SmoothingExponent.
func Smooth(x float64) float64 {
	return math.Pow(x, SmoothingExponent)
}

// PMI scores an observation. It returns ErrUndefinedStatistic when a total
// the formula divides by (or multiplies the numerator with) is zero.
func (c *Calculator) PMI(o Observation) (float64, error) {
	feat, typ := o.FeatTotal, o.TypeTotal
	if c.smoothed {
		feat = Smooth(feat)
		typ = Smooth(typ)
	}

	switch c.weighting {
	case GoodnessOfFit:
		if feat == 0 || o.EntryTotal == 0 || c.grand == 0 {
			return 0, fmt.Errorf("gof_ppmi: feature=%v entry=%v grand=%v: %w",
				feat, o.EntryTotal, c.grand, internalerr.ErrUndefinedStatistic)
		}
		return math.Log10((o.Freq * c.grand) / (feat * o.EntryTotal)), nil
	default:
		if feat == 0 || typ == 0 || o.PathTotal == 0 {
			return 0, fmt.Errorf("ppmi: feature=%v type=%v path=%v: %w",
				feat, typ, o.PathTotal, internalerr.ErrUndefinedStatistic)
		}
		return math.Log10((o.Freq * typ) / (feat * o.PathTotal)), nil
	}
}

// PathProbability scales a score by the share of the entry's mass carried
// by the feature's path type, C<w,p,*>/C<w,*,*>.
func PathProbability(score float64, o Observation) (float64, error) {
	if o.EntryTotal == 0 {
		return 0, fmt.Errorf("pnppmi: entry total is zero: %w", internalerr.ErrUndefinedStatistic)
	}
	return score * o.PathTotal / o.EntryTotal, nil
}
