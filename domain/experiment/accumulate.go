package experiment

import (
	"liftlab/domain/core"
	"liftlab/internal/errors"
)

// MetricTotals is the single-pass reduction of the raw rows: overall
// per-variant stats plus per (dimension, value, variant) stats. It feeds
// every downstream statistic.
type MetricTotals struct {
	Overall  map[Variant]GroupStats
	Segments map[SegmentKey]GroupStats
	Records  int
}

// Group returns the overall stats for a variant (zero value if absent)
func (m *MetricTotals) Group(v Variant) GroupStats {
	return m.Overall[v]
}

// Segment returns the stats for one (dimension, value, variant) slice
func (m *MetricTotals) Segment(d SegmentDimension, value string, v Variant) GroupStats {
	return m.Segments[SegmentKey{Dimension: d, Value: value, Variant: v}]
}

// HasRevenue reports whether any row carried a positive order value
func (m *MetricTotals) HasRevenue() bool {
	for _, g := range m.Overall {
		if g.RevenueSum > 0 {
			return true
		}
	}
	return false
}

// HasCheckout reports whether any row carried a time-to-checkout value.
// When the optional column is absent entirely, the checkout metric is
// disabled rather than failing the pipeline.
func (m *MetricTotals) HasCheckout() bool {
	for _, g := range m.Overall {
		if g.CheckoutCount > 0 {
			return true
		}
	}
	return false
}

// Accumulator folds UserRecords into MetricTotals in one pass. It keeps a
// seen-set of user IDs to enforce the no-crossover invariant, which is the
// only state that grows with input size beyond the fixed group counters.
type Accumulator struct {
	overall  map[Variant]GroupStats
	segments map[SegmentKey]GroupStats
	assigned map[core.UserID]Variant
	records  int
}

// NewAccumulator creates an empty accumulator
func NewAccumulator() *Accumulator {
	return &Accumulator{
		overall:  make(map[Variant]GroupStats),
		segments: make(map[SegmentKey]GroupStats),
		assigned: make(map[core.UserID]Variant),
	}
}

// Add folds one record. It fails fast with a DATA_ERROR on a user seen in
// more than one variant, an unknown variant, or a converted row with a
// negative order value.
func (a *Accumulator) Add(r UserRecord) error {
	if !r.Variant.IsValid() {
		return errors.Data("user %s has unknown variant %q", r.UserID, r.Variant)
	}
	if prev, ok := a.assigned[r.UserID]; ok {
		if prev != r.Variant {
			return errors.Data("user %s assigned to both %s and %s", r.UserID, prev, r.Variant)
		}
		return errors.Data("user %s appears more than once", r.UserID)
	}
	if r.OrderValue < 0 {
		return errors.Data("user %s has negative order value %v", r.UserID, r.OrderValue)
	}
	a.assigned[r.UserID] = r.Variant

	a.overall[r.Variant] = fold(a.overall[r.Variant], r)
	for _, dim := range Dimensions() {
		key := SegmentKey{Dimension: dim, Value: dim.ValueOf(r), Variant: r.Variant}
		a.segments[key] = fold(a.segments[key], r)
	}
	a.records++
	return nil
}

// Totals snapshots the accumulated state into an immutable MetricTotals
func (a *Accumulator) Totals() *MetricTotals {
	overall := make(map[Variant]GroupStats, len(a.overall))
	for v, g := range a.overall {
		overall[v] = g
	}
	segments := make(map[SegmentKey]GroupStats, len(a.segments))
	for k, g := range a.segments {
		segments[k] = g
	}
	return &MetricTotals{Overall: overall, Segments: segments, Records: a.records}
}

// Accumulate reduces a full record collection in one pass
func Accumulate(records []UserRecord) (*MetricTotals, error) {
	acc := NewAccumulator()
	for i, r := range records {
		if err := acc.Add(r); err != nil {
			return nil, errors.Wrapf(err, "record %d", i)
		}
	}
	return acc.Totals(), nil
}

func fold(g GroupStats, r UserRecord) GroupStats {
	g.N++
	if r.Converted {
		g.Conversions++
		g.RevenueSum += r.OrderValue
		g.RevenueSumSq += r.OrderValue * r.OrderValue
	}
	if r.TimeToCheckout != nil {
		g.CheckoutSum += *r.TimeToCheckout
		g.CheckoutSumSq += *r.TimeToCheckout * *r.TimeToCheckout
		g.CheckoutCount++
	}
	return g
}
