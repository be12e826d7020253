package stats

import (
	"github.com/montanaflynn/stats"

	"liftlab/domain/experiment"
	domstats "liftlab/domain/stats"
)

// RevenueSummaries computes descriptive per-variant revenue diagnostics
// over converted orders. Purely informational: the quality gates and the
// decision never read these numbers, reviewers do.
func RevenueSummaries(records []experiment.UserRecord) map[experiment.Variant]domstats.RevenueSummary {
	values := make(map[experiment.Variant][]float64)
	for _, r := range records {
		if r.Converted && r.OrderValue > 0 {
			values[r.Variant] = append(values[r.Variant], r.OrderValue)
		}
	}

	summaries := make(map[experiment.Variant]domstats.RevenueSummary, len(values))
	for variant, orders := range values {
		mean, _ := stats.Mean(orders)
		median, _ := stats.Median(orders)
		p90, _ := stats.Percentile(orders, 90)
		max, _ := stats.Max(orders)
		summaries[variant] = domstats.RevenueSummary{
			Mean:   mean,
			Median: median,
			P90:    p90,
			Max:    max,
		}
	}
	return summaries
}
