package ppmi

import (
	"errors"
	"math"
	"testing"

	"github.com/cognicore/apt/pkg/apt/internalerr"
)

func TestPMIStandard(t *testing.T) {
	calc := NewCalculator(Standard, false, 0)

	// C<w,p,v>=2, C<*,p,*>=6, C<*,p,v>=3, C<w,p,*>=2
	pmi, err := calc.PMI(Observation{Freq: 2, TypeTotal: 6, FeatTotal: 3, PathTotal: 2})
	if err != nil {
		t.Fatal(err)
	}
	if math.Abs(pmi-math.Log10(2)) > 1e-12 {
		t.Errorf("expected log10(2), got %f", pmi)
	}
}

func TestPMIIndependent(t *testing.T) {
	calc := NewCalculator(Standard, false, 0)

	// feature is as frequent for w as for the path type overall
	pmi, err := calc.PMI(Observation{Freq: 5, PathTotal: 10, FeatTotal: 50, TypeTotal: 100})
	if err != nil {
		t.Fatal(err)
	}
	if math.Abs(pmi) > 1e-12 {
		t.Errorf("PMI for independent counts should be 0, got %f", pmi)
	}
}

func TestPMINegative(t *testing.T) {
	calc := NewCalculator(Standard, false, 0)

	pmi, _ := calc.PMI(Observation{Freq: 1, PathTotal: 10, FeatTotal: 50, TypeTotal: 100})
	if pmi >= 0 {
		t.Errorf("PMI for under-represented feature should be negative, got %f", pmi)
	}
}

func TestPMIGoodnessOfFit(t *testing.T) {
	calc := NewCalculator(GoodnessOfFit, false, 7)

	pmi, err := calc.PMI(Observation{Freq: 2, FeatTotal: 3, EntryTotal: 3, PathTotal: 2, TypeTotal: 6})
	if err != nil {
		t.Fatal(err)
	}
	if want := math.Log10(14.0 / 9.0); math.Abs(pmi-want) > 1e-12 {
		t.Errorf("gof_ppmi = %f, want %f", pmi, want)
	}
}

func TestPMISmoothing(t *testing.T) {
	calc := NewCalculator(Standard, true, 0)

	pmi, err := calc.PMI(Observation{Freq: 2, TypeTotal: 6, FeatTotal: 3, PathTotal: 2})
	if err != nil {
		t.Fatal(err)
	}
	// log10(2 * 6^.75 / (3^.75 * 2)) = .75 * log10(2)
	if want := 0.75 * math.Log10(2); math.Abs(pmi-want) > 1e-12 {
		t.Errorf("smoothed ppmi = %f, want %f", pmi, want)
	}
}

func TestPMISmoothingAppliesToGrandTotal(t *testing.T) {
	calc := NewCalculator(GoodnessOfFit, true, 16)

	pmi, err := calc.PMI(Observation{Freq: 1, FeatTotal: 1, EntryTotal: 1})
	if err != nil {
		t.Fatal(err)
	}
	// 16^.75 = 8
	if math.Abs(pmi-math.Log10(8)) > 1e-12 {
		t.Errorf("expected log10(8), got %f", pmi)
	}
}

func TestPMIUndefined(t *testing.T) {
	cases := []struct {
		name string
		w    Weighting
		o    Observation
	}{
		{"zero feature total", Standard, Observation{Freq: 1, PathTotal: 1, TypeTotal: 1}},
		{"zero type total", Standard, Observation{Freq: 1, PathTotal: 1, FeatTotal: 1}},
		{"zero path total", Standard, Observation{Freq: 1, FeatTotal: 1, TypeTotal: 1}},
		{"gof zero entry total", GoodnessOfFit, Observation{Freq: 1, FeatTotal: 1}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			calc := NewCalculator(tc.w, false, 10)
			_, err := calc.PMI(tc.o)
			if !errors.Is(err, internalerr.ErrUndefinedStatistic) {
				t.Errorf("expected ErrUndefinedStatistic, got %v", err)
			}
		})
	}

	calc := NewCalculator(GoodnessOfFit, false, 0)
	if _, err := calc.PMI(Observation{Freq: 1, FeatTotal: 1, EntryTotal: 1}); !errors.Is(err, internalerr.ErrUndefinedStatistic) {
		t.Error("zero grand total should be undefined")
	}
}

func TestPathProbability(t *testing.T) {
	got, err := PathProbability(0.6, Observation{PathTotal: 2, EntryTotal: 3})
	if err != nil {
		t.Fatal(err)
	}
	if math.Abs(got-0.4) > 1e-12 {
		t.Errorf("expected 0.4, got %f", got)
	}

	if _, err := PathProbability(1, Observation{PathTotal: 2}); !errors.Is(err, internalerr.ErrUndefinedStatistic) {
		t.Error("zero entry total should be undefined")
	}
}

func TestWeightingString(t *testing.T) {
	if Standard.String() != "ppmi" || GoodnessOfFit.String() != "gof_ppmi" {
		t.Error("unexpected weighting names")
	}
	if Weighting(9).String() != "unknown" {
		t.Error("out of range weighting should be unknown")
	}
}
