package experiment

import (
	"liftlab/internal/errors"
)

// AnalysisConfig carries every statistical threshold for one analysis run.
// It is passed by value into each component so that multiple experiments can
// be analyzed concurrently without shared process-wide state.
type AnalysisConfig struct {
	// Alpha is the significance threshold for the main tests.
	Alpha float64 `json:"alpha" mapstructure:"alpha"`
	// Power is the target power for sample-size planning.
	Power float64 `json:"power" mapstructure:"power"`
	// BaselineConversion is the expected control conversion rate (pre-hoc).
	BaselineConversion float64 `json:"baseline_conversion" mapstructure:"baseline_conversion"`
	// MinimumDetectableEffect is the absolute lift the experiment must detect.
	MinimumDetectableEffect float64 `json:"minimum_detectable_effect" mapstructure:"minimum_detectable_effect"`
	// ExpectedSplit is the planned control traffic fraction; treatment gets
	// the remainder.
	ExpectedSplit float64 `json:"expected_split" mapstructure:"expected_split"`
	// BalanceThreshold flags covariate categories whose proportion differs
	// between variants by more than this amount.
	BalanceThreshold float64 `json:"balance_threshold" mapstructure:"balance_threshold"`
	// SRMAlpha is the sample-ratio-mismatch gate threshold. Stricter than
	// Alpha because SRM is a data-integrity gate, not a business decision.
	SRMAlpha float64 `json:"srm_alpha" mapstructure:"srm_alpha"`
	// PracticalSignificanceThreshold is the minimum lift CI lower bound the
	// decision engine treats as practically meaningful.
	PracticalSignificanceThreshold float64 `json:"practical_significance_threshold" mapstructure:"practical_significance_threshold"`
	// MinSegmentN is the minimum per-group size below which a segment is
	// reported as insufficient data rather than tested.
	MinSegmentN int `json:"min_segment_n" mapstructure:"min_segment_n"`
	// ExpectedDailyTraffic sizes the test duration estimate; 0 disables it.
	ExpectedDailyTraffic int `json:"expected_daily_traffic" mapstructure:"expected_daily_traffic"`
}

// DefaultConfig returns the standard thresholds used when the caller
// supplies nothing.
func DefaultConfig() AnalysisConfig {
	return AnalysisConfig{
		Alpha:                          0.05,
		Power:                          0.80,
		ExpectedSplit:                  0.5,
		BalanceThreshold:               0.05,
		SRMAlpha:                       0.001,
		PracticalSignificanceThreshold: 0.0,
		MinSegmentN:                    30,
	}
}

// Validate rejects out-of-range thresholds before any computation runs
func (c AnalysisConfig) Validate() error {
	if c.Alpha <= 0 || c.Alpha >= 1 {
		return errors.InvalidParameter("alpha must be in (0,1), got %v", c.Alpha)
	}
	if c.Power <= 0 || c.Power >= 1 {
		return errors.InvalidParameter("power must be in (0,1), got %v", c.Power)
	}
	if c.ExpectedSplit <= 0 || c.ExpectedSplit >= 1 {
		return errors.InvalidParameter("expected split must be in (0,1), got %v", c.ExpectedSplit)
	}
	if c.SRMAlpha <= 0 || c.SRMAlpha >= 1 {
		return errors.InvalidParameter("srm alpha must be in (0,1), got %v", c.SRMAlpha)
	}
	if c.BalanceThreshold < 0 || c.BalanceThreshold > 1 {
		return errors.InvalidParameter("balance threshold must be in [0,1], got %v", c.BalanceThreshold)
	}
	if c.BaselineConversion < 0 || c.BaselineConversion >= 1 {
		return errors.InvalidParameter("baseline conversion must be in [0,1), got %v", c.BaselineConversion)
	}
	if c.MinimumDetectableEffect < 0 {
		return errors.InvalidParameter("minimum detectable effect must be >= 0, got %v", c.MinimumDetectableEffect)
	}
	if c.MinSegmentN < 0 {
		return errors.InvalidParameter("min segment n must be >= 0, got %d", c.MinSegmentN)
	}
	return nil
}

// PowerPlanConfigured reports whether pre-hoc sample-size planning inputs
// are present.
func (c AnalysisConfig) PowerPlanConfigured() bool {
	return c.BaselineConversion > 0 && c.MinimumDetectableEffect > 0
}
