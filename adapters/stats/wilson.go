package stats

import (
	"math"

	domstats "liftlab/domain/stats"
)

// wilsonInterval computes the Wilson score confidence interval for a
// binomial proportion at the (1-alpha) level. Chosen over the Wald
// interval for its coverage near 0 and 1.
func wilsonInterval(successes, trials int, alpha float64) domstats.ConfidenceInterval {
	if trials == 0 {
		return domstats.ConfidenceInterval{}
	}

	z := normalQuantile(1 - alpha/2)
	p := float64(successes) / float64(trials)
	n := float64(trials)

	denominator := 1 + z*z/n
	center := (p + z*z/(2*n)) / denominator
	spread := (z / denominator) * math.Sqrt(p*(1-p)/n+z*z/(4*n*n))

	lower := center - spread
	upper := center + spread
	if lower < 0 {
		lower = 0
	}
	if upper > 1 {
		upper = 1
	}
	return domstats.ConfidenceInterval{Low: lower, High: upper}
}
