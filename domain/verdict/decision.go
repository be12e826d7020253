package verdict

import (
	"liftlab/domain/stats"
)

// Decide combines the quality report, the overall conversion test, and the
// supplied business economics into a scorecard.
//
// Rules: Hold whenever a blocking quality gate failed (inconclusive data is
// never a reject); Launch only when the gates and all three criteria pass;
// Reject otherwise. A failed gate is reported on the scorecard, never as an
// error.
func Decide(quality stats.QualityReport, overall stats.TestResult, practicalThreshold float64, impact BusinessImpact) Scorecard {
	projected := overall.AbsoluteLift * impact.BaselineTraffic * impact.ValuePerConversion

	card := Scorecard{
		StatisticalSignificance: Criterion{
			Name:   "statistical_significance",
			Passed: overall.Significant,
			Value:  overall.PValue,
			Bound:  overall.Alpha,
		},
		PracticalSignificance: Criterion{
			Name:   "practical_significance",
			Passed: overall.CILift.Low >= practicalThreshold,
			Value:  overall.CILift.Low,
			Bound:  practicalThreshold,
		},
		BusinessImpactCriterion: Criterion{
			Name:   "business_impact",
			Passed: projected >= impact.MinimumImpact,
			Value:  projected,
			Bound:  impact.MinimumImpact,
		},
		ProjectedImpact:  projected,
		QualityGatesPass: quality.GatesPass(),
		GateFailures:     quality.GateFailures(),
	}

	switch {
	case !card.QualityGatesPass:
		card.Recommendation = RecommendHold
	case card.StatisticalSignificance.Passed &&
		card.PracticalSignificance.Passed &&
		card.BusinessImpactCriterion.Passed:
		card.Recommendation = RecommendLaunch
	default:
		card.Recommendation = RecommendReject
	}
	return card
}
