package verdict

// Recommendation is the launch decision for the experiment
type Recommendation string

const (
	// RecommendLaunch: quality gates and all scorecard criteria passed.
	RecommendLaunch Recommendation = "launch"
	// RecommendHold: a quality gate failed; the result is inconclusive and
	// the experiment should be re-run, not shipped or discarded.
	RecommendHold Recommendation = "hold"
	// RecommendReject: data is trustworthy but at least one criterion failed.
	RecommendReject Recommendation = "reject"
)

// Criterion is one pass/fail line of the scorecard
type Criterion struct {
	Name   string  `json:"name"`
	Passed bool    `json:"passed"`
	Value  float64 `json:"value"`
	Bound  float64 `json:"bound"`
}

// BusinessImpact supplies the economics the projected impact is computed
// from. The engine multiplies, it never estimates.
type BusinessImpact struct {
	// BaselineTraffic is the user volume the lift would apply to.
	BaselineTraffic float64 `json:"baseline_traffic"`
	// ValuePerConversion is the average order economics per conversion.
	ValuePerConversion float64 `json:"value_per_conversion"`
	// MinimumImpact is the projected-value floor for the impact criterion.
	MinimumImpact float64 `json:"minimum_impact"`
}

// Scorecard is the aggregated decision record: three criteria, the quality
// gate outcome, and the recommendation.
type Scorecard struct {
	StatisticalSignificance Criterion      `json:"statistical_significance"`
	PracticalSignificance   Criterion      `json:"practical_significance"`
	BusinessImpactCriterion Criterion      `json:"business_impact"`
	ProjectedImpact         float64        `json:"projected_impact"`
	QualityGatesPass        bool           `json:"quality_gates_pass"`
	GateFailures            []string       `json:"gate_failures,omitempty"`
	Recommendation          Recommendation `json:"recommendation"`
}
