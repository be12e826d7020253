package stats

import (
	"liftlab/domain/experiment"
)

// Metric names the quantity a TestResult speaks about
type Metric string

const (
	MetricConversionRate Metric = "conversion_rate"
	MetricRevenuePerUser Metric = "revenue_per_user"
	MetricTimeToCheckout Metric = "time_to_checkout"
)

// ConfidenceInterval is a closed interval at the configured confidence level
type ConfidenceInterval struct {
	Low  float64 `json:"low"`
	High float64 `json:"high"`
}

// Contains reports whether x lies inside the interval
func (ci ConfidenceInterval) Contains(x float64) bool {
	return x >= ci.Low && x <= ci.High
}

// TestResult is the immutable outcome of one two-sample test, produced once
// per (metric, segment) pair.
//
// For the conversion-rate metric the per-group intervals are Wilson score
// intervals (better coverage than Wald near 0/1); the lift interval uses the
// unpooled normal approximation. For revenue per user the statistic is
// Welch's t and the rates are group means.
type TestResult struct {
	Metric           Metric             `json:"metric"`
	RateControl      float64            `json:"rate_control"`
	RateTreatment    float64            `json:"rate_treatment"`
	AbsoluteLift     float64            `json:"absolute_lift"`
	RelativeLift     float64            `json:"relative_lift"`
	ZStatistic       float64            `json:"z_statistic"`
	PValue           float64            `json:"p_value"`
	DegreesOfFreedom float64            `json:"degrees_of_freedom,omitempty"`
	CIControl        ConfidenceInterval `json:"ci_control"`
	CITreatment      ConfidenceInterval `json:"ci_treatment"`
	CILift           ConfidenceInterval `json:"ci_lift"`
	ObservedPower    float64            `json:"observed_power"`
	Alpha            float64            `json:"alpha"`
	Significant      bool               `json:"significant"`
	NControl         int                `json:"n_control"`
	NTreatment       int                `json:"n_treatment"`
}

// PowerPlan is the pre-registration sizing artifact, computed independently
// of any observed data.
type PowerPlan struct {
	BaselineRate            float64 `json:"baseline_rate"`
	MinimumDetectableEffect float64 `json:"minimum_detectable_effect"`
	Alpha                   float64 `json:"alpha"`
	Power                   float64 `json:"power"`
	RequiredNPerGroup       int     `json:"required_n_per_group"`
	EstimatedDurationDays   int     `json:"estimated_duration_days,omitempty"`
}

// BalanceEntry compares one covariate category's share between variants
type BalanceEntry struct {
	Value            string  `json:"value"`
	PropControl      float64 `json:"prop_control"`
	PropTreatment    float64 `json:"prop_treatment"`
	AbsoluteDiff     float64 `json:"absolute_diff"`
	ExceedsThreshold bool    `json:"exceeds_threshold"`
}

// SRMCheck is the sample-ratio-mismatch gate result
type SRMCheck struct {
	NControl      int     `json:"n_control"`
	NTreatment    int     `json:"n_treatment"`
	ExpectedSplit float64 `json:"expected_split"`
	ChiSquare     float64 `json:"chi_square"`
	PValue        float64 `json:"p_value"`
	Pass          bool    `json:"pass"`
}

// RevenueSummary holds descriptive per-variant revenue diagnostics. These
// inform interpretation and never gate the decision.
type RevenueSummary struct {
	Mean   float64 `json:"mean"`
	Median float64 `json:"median"`
	P90    float64 `json:"p90"`
	Max    float64 `json:"max"`
}

// QualityReport aggregates the three data-quality checks. A failing SRM or
// sample-size check blocks a launch verdict downstream; balance flags are
// descriptive diagnostics only.
type QualityReport struct {
	SRM            SRMCheck                                       `json:"srm"`
	RequiredN      int                                            `json:"required_n"`
	SampleSizePass map[experiment.Variant]bool                    `json:"sample_size_pass"`
	Balance        map[experiment.SegmentDimension][]BalanceEntry `json:"balance"`
	BalanceFlags   int                                            `json:"balance_flags"`
	Revenue        map[experiment.Variant]RevenueSummary          `json:"revenue,omitempty"`
}

// GatesPass reports whether the blocking quality gates (SRM and per-group
// sample size) all passed.
func (q QualityReport) GatesPass() bool {
	if !q.SRM.Pass {
		return false
	}
	for _, v := range experiment.Variants() {
		if !q.SampleSizePass[v] {
			return false
		}
	}
	return true
}

// GateFailures lists human-readable reasons for failed blocking gates
func (q QualityReport) GateFailures() []string {
	var reasons []string
	if !q.SRM.Pass {
		reasons = append(reasons, "sample ratio mismatch: observed split deviates from expected")
	}
	for _, v := range experiment.Variants() {
		if !q.SampleSizePass[v] {
			reasons = append(reasons, string(v)+" group below required sample size")
		}
	}
	return reasons
}

// SegmentResult tags one TestResult with its segment slice. Result and Err
// are mutually exclusive: a segment too small for testing is reported with
// Err set, never silently dropped.
type SegmentResult struct {
	Dimension            experiment.SegmentDimension `json:"dimension"`
	Value                string                      `json:"value"`
	NControl             int                         `json:"n_control"`
	NTreatment           int                         `json:"n_treatment"`
	Result               *TestResult                 `json:"result,omitempty"`
	CorrectedAlpha       float64                     `json:"corrected_alpha,omitempty"`
	CorrectedSignificant bool                        `json:"corrected_significant"`
	Err                  string                      `json:"error,omitempty"`
}
