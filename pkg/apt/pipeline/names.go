package pipeline

import (
	"fmt"
	"strconv"

	"github.com/cognicore/apt/pkg/apt/config"
)

// File suffixes per part of speech. Unknown tags read the noun file.
var posSuffix = map[string]string{
	"N": ".nouns",
	"V": ".verbs",
	"J": ".adjs",
	"R": ".advs",
	"F": ".others",
}

const (
	rowTotalsSuffix = ".rtot"
	colTotalsSuffix = ".ctot"
)

// Names derives every file name a run reads or writes from the base
// filename and the options.
type Names struct {
	opts *config.Options
}

// NewNames creates the naming scheme for opts. opts must be resolved.
func NewNames(opts *config.Options) Names {
	return Names{opts: opts}
}

// POS is the split file of one part of speech: corpus.nouns.
func (n Names) POS(pos string) string {
	s, ok := posSuffix[pos]
	if !ok {
		s = posSuffix[config.DefaultPOS]
	}
	return n.opts.Filename + s
}

// Reduced is the order-reduced file: corpus.nouns.reduce_1_2. With the
// default window it is the split file itself.
func (n Names) Reduced(pos string) string {
	if !n.opts.Reduced {
		return n.POS(pos)
	}
	w := n.opts.Window
	return fmt.Sprintf("%s.reduce_%d_%d", n.POS(pos), w.Min, w.Max)
}

// Filtered is the frequency-filtered file.
func (n Names) Filtered(pos string) string {
	return n.Reduced(pos) + ".filtered"
}

// Normalised is the normalised filtered file.
func (n Names) Normalised(pos string) string {
	return n.Filtered(pos) + ".norm"
}

// Vectors is the input of the weighting stages.
func (n Names) Vectors(pos string, normalised bool) string {
	if normalised {
		return n.Normalised(pos)
	}
	return n.Filtered(pos)
}

// TotalsBase is the file whose totals the weighting stages read. Totals of
// normalised data come from the normalised file; otherwise from the reduced
// counts.
func (n Names) TotalsBase(pos string, normalised bool) string {
	if normalised {
		return n.Normalised(pos)
	}
	return n.Reduced(pos)
}

// RowTotals names the entry totals of base.
func RowTotals(base string) string { return base + rowTotalsSuffix }

// ColTotals names the feature totals of base.
func ColTotals(base string) string { return base + colTotalsSuffix }

// Weighted is the suffix describing how output vectors were weighted and
// pruned: .norm.gof_ppmi_0.5.spp_100
func (n Names) Weighted(normalised bool) string {
	s := ""
	if normalised {
		s = ".norm"
	}
	s += "." + n.opts.PPMIConfig().Name()
	if t := n.opts.PPMIThreshold; t > 0 {
		s += "_" + strconv.FormatFloat(t, 'f', -1, 64)
	}
	if k := n.opts.Saliency; k > 0 {
		if n.opts.SaliencyPerPath {
			s += ".spp_" + strconv.Itoa(k)
		} else {
			s += ".sal_" + strconv.Itoa(k)
		}
	}
	return s
}

// Revectorised is the output of the revectorise stage.
func (n Names) Revectorised(pos string, normalised bool) string {
	return n.Filtered(pos) + n.Weighted(normalised)
}

// Composed is the output of the compose stage.
func (n Names) Composed(pos string, normalised bool) string {
	return n.Reduced(pos) + ".composed" + n.Weighted(normalised)
}

// Intersected is the output of the intersect stage.
func (n Names) Intersected(pos string, normalised bool) string {
	return n.Filtered(pos) + ".intersected" + n.Weighted(normalised)
}

// Rewritten is the output of the rewrite stage.
func (n Names) Rewritten() string {
	return n.opts.Filename + ".new"
}
