package stats

import (
	"math"

	"liftlab/domain/experiment"
	domstats "liftlab/domain/stats"
	"liftlab/internal/errors"
)

// PowerAnalyzer computes required sample size and duration from planning
// parameters alone. It never looks at collected data, so it can run before
// the experiment or not at all.
type PowerAnalyzer struct{}

// NewPowerAnalyzer creates a power analyzer
func NewPowerAnalyzer() *PowerAnalyzer {
	return &PowerAnalyzer{}
}

// Plan computes the required per-group sample size for a two-proportion
// z-test:
//
//	n = ((z_{1-α/2}·sqrt(2·p̄(1-p̄)) + z_power·sqrt(p1(1-p1)+p2(1-p2))) / mde)²
//
// with p1 the baseline rate, p2 = p1+mde, p̄ their midpoint, rounded up.
// When expectedDailyTraffic > 0 the duration assumes both groups share
// that traffic.
func (pa *PowerAnalyzer) Plan(baselineRate, mde, alpha, power float64, expectedDailyTraffic int) (*domstats.PowerPlan, error) {
	if baselineRate <= 0 || baselineRate >= 1 {
		return nil, errors.InvalidParameter("baseline rate must be in (0,1), got %v", baselineRate)
	}
	if mde <= 0 {
		return nil, errors.InvalidParameter("minimum detectable effect must be > 0, got %v", mde)
	}
	if alpha <= 0 || alpha >= 1 {
		return nil, errors.InvalidParameter("alpha must be in (0,1), got %v", alpha)
	}
	if power <= 0 || power >= 1 {
		return nil, errors.InvalidParameter("power must be in (0,1), got %v", power)
	}
	p1 := baselineRate
	p2 := baselineRate + mde
	if p2 >= 1 {
		return nil, errors.InvalidParameter("baseline rate + mde must be < 1, got %v", p2)
	}

	pBar := (p1 + p2) / 2
	zAlpha := normalQuantile(1 - alpha/2)
	zPower := normalQuantile(power)

	nullSE := math.Sqrt(2 * pBar * (1 - pBar))
	altSE := math.Sqrt(p1*(1-p1) + p2*(1-p2))

	root := (zAlpha*nullSE + zPower*altSE) / mde
	required := int(math.Ceil(root * root))

	plan := &domstats.PowerPlan{
		BaselineRate:            baselineRate,
		MinimumDetectableEffect: mde,
		Alpha:                   alpha,
		Power:                   power,
		RequiredNPerGroup:       required,
	}
	if expectedDailyTraffic > 0 {
		plan.EstimatedDurationDays = int(math.Ceil(float64(2*required) / float64(expectedDailyTraffic)))
	}
	return plan, nil
}

// PlanFromConfig sizes the test from the analysis configuration
func (pa *PowerAnalyzer) PlanFromConfig(cfg experiment.AnalysisConfig) (*domstats.PowerPlan, error) {
	return pa.Plan(cfg.BaselineConversion, cfg.MinimumDetectableEffect, cfg.Alpha, cfg.Power, cfg.ExpectedDailyTraffic)
}
