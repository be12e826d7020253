package stats

import (
	"math"

	"liftlab/domain/experiment"
	domstats "liftlab/domain/stats"
	"liftlab/internal/errors"
)

// SignificanceTester runs the two-sample tests over accumulated group
// stats: a pooled two-proportion z-test for conversion rate and Welch's
// t-test for revenue per user. Pure; all thresholds come from the config.
type SignificanceTester struct {
	cfg experiment.AnalysisConfig
}

// NewSignificanceTester creates a tester bound to one run's configuration
func NewSignificanceTester(cfg experiment.AnalysisConfig) *SignificanceTester {
	return &SignificanceTester{cfg: cfg}
}

// ConversionTest runs the two-proportion z-test between control and
// treatment conversion rates.
//
// The z statistic uses the pooled standard error under the null; the lift
// confidence interval uses the unpooled standard error; per-group rate
// intervals are Wilson score intervals.
func (st *SignificanceTester) ConversionTest(control, treatment experiment.GroupStats) (*domstats.TestResult, error) {
	if control.N < 2 || treatment.N < 2 {
		return nil, errors.InsufficientData("conversion test needs n >= 2 per group, got control=%d treatment=%d", control.N, treatment.N)
	}
	if control.Conversions == 0 && treatment.Conversions == 0 {
		return nil, errors.InsufficientData("conversion test undefined with zero conversions in both groups")
	}

	nC := float64(control.N)
	nT := float64(treatment.N)
	p1 := control.ConversionRate()
	p2 := treatment.ConversionRate()

	pooled := float64(control.Conversions+treatment.Conversions) / (nC + nT)
	pooledSE := math.Sqrt(pooled * (1 - pooled) * (1/nC + 1/nT))
	if pooledSE == 0 {
		return nil, errors.InsufficientData("conversion test undefined: pooled standard error is zero")
	}

	z := (p2 - p1) / pooledSE
	pValue := twoSidedNormalPValue(z)

	lift := p2 - p1
	relativeLift := 0.0
	if p1 > 0 {
		relativeLift = lift / p1
	}

	// Unpooled SE for the lift interval (null no longer assumed)
	unpooledSE := math.Sqrt(p1*(1-p1)/nC + p2*(1-p2)/nT)
	zCrit := normalQuantile(1 - st.cfg.Alpha/2)

	return &domstats.TestResult{
		Metric:        domstats.MetricConversionRate,
		RateControl:   p1,
		RateTreatment: p2,
		AbsoluteLift:  lift,
		RelativeLift:  relativeLift,
		ZStatistic:    z,
		PValue:        pValue,
		CIControl:     wilsonInterval(control.Conversions, control.N, st.cfg.Alpha),
		CITreatment:   wilsonInterval(treatment.Conversions, treatment.N, st.cfg.Alpha),
		CILift: domstats.ConfidenceInterval{
			Low:  lift - zCrit*unpooledSE,
			High: lift + zCrit*unpooledSE,
		},
		ObservedPower: st.observedPower(lift, pooled, control.N, treatment.N),
		Alpha:         st.cfg.Alpha,
		Significant:   pValue < st.cfg.Alpha,
		NControl:      control.N,
		NTreatment:    treatment.N,
	}, nil
}

// observedPower is the post-hoc power achieved by the observed lift at the
// observed sample sizes, the sample-size formula solved for power given n.
// The pooled SE conservatively uses the smaller group.
func (st *SignificanceTester) observedPower(lift, pooled float64, nControl, nTreatment int) float64 {
	nMin := float64(nControl)
	if nTreatment < nControl {
		nMin = float64(nTreatment)
	}
	se := math.Sqrt(2 * pooled * (1 - pooled) / nMin)
	if se == 0 {
		return 0
	}
	zAlpha := normalQuantile(1 - st.cfg.Alpha/2)
	return 1 - normalCDF(zAlpha-math.Abs(lift)/se)
}

// RevenueTest runs Welch's t-test on revenue per user, counting
// non-converters as zero-value users so both groups cover the full sample.
func (st *SignificanceTester) RevenueTest(control, treatment experiment.GroupStats) (*domstats.TestResult, error) {
	if control.N < 2 || treatment.N < 2 {
		return nil, errors.InsufficientData("revenue test needs n >= 2 per group, got control=%d treatment=%d", control.N, treatment.N)
	}
	return st.welchTest(domstats.MetricRevenuePerUser,
		control.N, treatment.N,
		control.RevenueMean(), treatment.RevenueMean(),
		control.RevenueVariance(), treatment.RevenueVariance())
}

// CheckoutTest runs Welch's t-test on time to checkout over the users that
// reported one. The metric is secondary and only defined when the optional
// column was delivered.
func (st *SignificanceTester) CheckoutTest(control, treatment experiment.GroupStats) (*domstats.TestResult, error) {
	if control.CheckoutCount < 2 || treatment.CheckoutCount < 2 {
		return nil, errors.InsufficientData("checkout test needs n >= 2 timed users per group, got control=%d treatment=%d",
			control.CheckoutCount, treatment.CheckoutCount)
	}
	return st.welchTest(domstats.MetricTimeToCheckout,
		control.CheckoutCount, treatment.CheckoutCount,
		control.CheckoutMean(), treatment.CheckoutMean(),
		control.CheckoutVariance(), treatment.CheckoutVariance())
}

func (st *SignificanceTester) welchTest(metric domstats.Metric, nControl, nTreatment int, meanC, meanT, varC, varT float64) (*domstats.TestResult, error) {
	nC := float64(nControl)
	nT := float64(nTreatment)

	se := math.Sqrt(varC/nC + varT/nT)
	if se == 0 {
		return nil, errors.InsufficientData("%s test undefined: both groups have zero variance", metric)
	}

	t := (meanT - meanC) / se

	// Welch-Satterthwaite degrees of freedom
	df := math.Pow(varC/nC+varT/nT, 2) /
		(math.Pow(varC/nC, 2)/(nC-1) + math.Pow(varT/nT, 2)/(nT-1))

	pValue := twoSidedTPValue(t, df)
	tCrit := tQuantile(1-st.cfg.Alpha/2, df)

	lift := meanT - meanC
	relativeLift := 0.0
	if meanC != 0 {
		relativeLift = lift / meanC
	}

	return &domstats.TestResult{
		Metric:           metric,
		RateControl:      meanC,
		RateTreatment:    meanT,
		AbsoluteLift:     lift,
		RelativeLift:     relativeLift,
		ZStatistic:       t,
		PValue:           pValue,
		DegreesOfFreedom: df,
		CIControl: domstats.ConfidenceInterval{
			Low:  meanC - tCrit*math.Sqrt(varC/nC),
			High: meanC + tCrit*math.Sqrt(varC/nC),
		},
		CITreatment: domstats.ConfidenceInterval{
			Low:  meanT - tCrit*math.Sqrt(varT/nT),
			High: meanT + tCrit*math.Sqrt(varT/nT),
		},
		CILift: domstats.ConfidenceInterval{
			Low:  lift - tCrit*se,
			High: lift + tCrit*se,
		},
		Alpha:       st.cfg.Alpha,
		Significant: pValue < st.cfg.Alpha,
		NControl:    nControl,
		NTreatment:  nTreatment,
	}, nil
}
