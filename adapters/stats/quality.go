package stats

import (
	"math"

	"liftlab/domain/experiment"
	domstats "liftlab/domain/stats"
	"liftlab/internal/errors"
)

// QualityValidator runs the three data-quality checks over accumulated
// group counts: sample ratio mismatch, sample-size sufficiency, and
// covariate balance. All checks are pure functions of the totals.
type QualityValidator struct {
	cfg experiment.AnalysisConfig
}

// NewQualityValidator creates a validator bound to one run's configuration
func NewQualityValidator(cfg experiment.AnalysisConfig) *QualityValidator {
	return &QualityValidator{cfg: cfg}
}

// Validate runs every check. requiredN is the per-group sample size
// requirement, usually PowerPlan.RequiredNPerGroup; 0 disables the
// sufficiency check (it passes vacuously and is reported as such).
func (qv *QualityValidator) Validate(totals *experiment.MetricTotals, requiredN int) (*domstats.QualityReport, error) {
	control := totals.Group(experiment.VariantControl)
	treatment := totals.Group(experiment.VariantTreatment)
	if control.N == 0 || treatment.N == 0 {
		return nil, errors.Data("quality checks undefined with an empty group: control=%d treatment=%d", control.N, treatment.N)
	}

	srm := qv.srmCheck(control.N, treatment.N)

	sizePass := map[experiment.Variant]bool{
		experiment.VariantControl:   control.N >= requiredN,
		experiment.VariantTreatment: treatment.N >= requiredN,
	}

	balance, flags := qv.balanceCheck(totals, control.N, treatment.N)

	return &domstats.QualityReport{
		SRM:            srm,
		RequiredN:      requiredN,
		SampleSizePass: sizePass,
		Balance:        balance,
		BalanceFlags:   flags,
	}, nil
}

// srmCheck runs a chi-square goodness-of-fit test (1 degree of freedom)
// of the observed split against the expected one. The gate fails when the
// p-value drops below the SRM alpha, which is deliberately stricter than
// the main significance threshold.
func (qv *QualityValidator) srmCheck(nControl, nTreatment int) domstats.SRMCheck {
	total := float64(nControl + nTreatment)
	expectedControl := total * qv.cfg.ExpectedSplit
	expectedTreatment := total * (1 - qv.cfg.ExpectedSplit)

	chiSquare := math.Pow(float64(nControl)-expectedControl, 2)/expectedControl +
		math.Pow(float64(nTreatment)-expectedTreatment, 2)/expectedTreatment
	pValue := chiSquarePValue(chiSquare, 1)

	return domstats.SRMCheck{
		NControl:      nControl,
		NTreatment:    nTreatment,
		ExpectedSplit: qv.cfg.ExpectedSplit,
		ChiSquare:     chiSquare,
		PValue:        pValue,
		Pass:          pValue >= qv.cfg.SRMAlpha,
	}
}

// balanceCheck compares each covariate category's share between variants.
// It is a descriptive diagnostic: entries over the threshold are flagged
// but never block the decision on their own.
func (qv *QualityValidator) balanceCheck(totals *experiment.MetricTotals, nControl, nTreatment int) (map[experiment.SegmentDimension][]domstats.BalanceEntry, int) {
	balance := make(map[experiment.SegmentDimension][]domstats.BalanceEntry, len(experiment.Dimensions()))
	flags := 0
	for _, dim := range experiment.Dimensions() {
		entries := make([]domstats.BalanceEntry, 0, len(dim.Values()))
		for _, value := range dim.Values() {
			propC := float64(totals.Segment(dim, value, experiment.VariantControl).N) / float64(nControl)
			propT := float64(totals.Segment(dim, value, experiment.VariantTreatment).N) / float64(nTreatment)
			diff := math.Abs(propC - propT)
			entry := domstats.BalanceEntry{
				Value:            value,
				PropControl:      propC,
				PropTreatment:    propT,
				AbsoluteDiff:     diff,
				ExceedsThreshold: diff > qv.cfg.BalanceThreshold,
			}
			if entry.ExceedsThreshold {
				flags++
			}
			entries = append(entries, entry)
		}
		balance[dim] = entries
	}
	return balance, flags
}
