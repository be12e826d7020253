package stats

import (
	"context"

	"golang.org/x/sync/errgroup"

	"liftlab/domain/experiment"
	domstats "liftlab/domain/stats"
	"liftlab/internal/errors"
)

// SegmentAnalyzer repeats the conversion significance test per segment
// value within each segmentation dimension. Segment tests are independent
// and side-effect-free, so they fan out concurrently; results land in a
// pre-indexed slice and are returned in canonical dimension/value order.
type SegmentAnalyzer struct {
	cfg    experiment.AnalysisConfig
	tester *SignificanceTester
}

// NewSegmentAnalyzer creates an analyzer bound to one run's configuration
func NewSegmentAnalyzer(cfg experiment.AnalysisConfig) *SegmentAnalyzer {
	return &SegmentAnalyzer{cfg: cfg, tester: NewSignificanceTester(cfg)}
}

// Analyze tests every (dimension, value) slice. A segment below the
// minimum size or failing the tester's data requirements is reported with
// its reason, never dropped, and never aborts sibling segments.
//
// Within each dimension the significance decision is Bonferroni-corrected
// across the segments actually tested: the raw p-value is exposed
// alongside a corrected flag at alpha / (#tested segments).
func (sa *SegmentAnalyzer) Analyze(ctx context.Context, totals *experiment.MetricTotals) ([]domstats.SegmentResult, error) {
	var results []domstats.SegmentResult
	for _, dim := range experiment.Dimensions() {
		dimResults, err := sa.analyzeDimension(ctx, totals, dim)
		if err != nil {
			return nil, err
		}
		results = append(results, dimResults...)
	}
	return results, nil
}

func (sa *SegmentAnalyzer) analyzeDimension(ctx context.Context, totals *experiment.MetricTotals, dim experiment.SegmentDimension) ([]domstats.SegmentResult, error) {
	values := dim.Values()
	results := make([]domstats.SegmentResult, len(values))

	g, ctx := errgroup.WithContext(ctx)
	for i, value := range values {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			results[i] = sa.analyzeSegment(totals, dim, value)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	// Bonferroni across the segments that produced a test result
	tested := 0
	for _, r := range results {
		if r.Result != nil {
			tested++
		}
	}
	if tested > 0 {
		correctedAlpha := sa.cfg.Alpha / float64(tested)
		for i := range results {
			if results[i].Result == nil {
				continue
			}
			results[i].CorrectedAlpha = correctedAlpha
			results[i].CorrectedSignificant = results[i].Result.PValue < correctedAlpha
		}
	}
	return results, nil
}

func (sa *SegmentAnalyzer) analyzeSegment(totals *experiment.MetricTotals, dim experiment.SegmentDimension, value string) domstats.SegmentResult {
	control := totals.Segment(dim, value, experiment.VariantControl)
	treatment := totals.Segment(dim, value, experiment.VariantTreatment)

	res := domstats.SegmentResult{
		Dimension:  dim,
		Value:      value,
		NControl:   control.N,
		NTreatment: treatment.N,
	}

	if control.N < sa.cfg.MinSegmentN || treatment.N < sa.cfg.MinSegmentN {
		res.Err = errors.InsufficientData("segment %s=%s below minimum size %d per group (control=%d, treatment=%d)",
			dim, value, sa.cfg.MinSegmentN, control.N, treatment.N).Error()
		return res
	}

	tr, err := sa.tester.ConversionTest(control, treatment)
	if err != nil {
		res.Err = err.Error()
		return res
	}
	res.Result = tr
	return res
}
