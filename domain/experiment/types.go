package experiment

import (
	"liftlab/domain/core"
)

// Variant identifies the experiment arm a user was assigned to
type Variant string

const (
	VariantControl   Variant = "control"
	VariantTreatment Variant = "treatment"
)

// Variants returns both experiment arms in canonical order
func Variants() []Variant {
	return []Variant{VariantControl, VariantTreatment}
}

// IsValid reports whether v is a known variant
func (v Variant) IsValid() bool {
	return v == VariantControl || v == VariantTreatment
}

// DeviceType is the device covariate
type DeviceType string

const (
	DeviceMobile  DeviceType = "mobile"
	DeviceDesktop DeviceType = "desktop"
	DeviceTablet  DeviceType = "tablet"
)

// UserType distinguishes new from returning users
type UserType string

const (
	UserNew       UserType = "new"
	UserReturning UserType = "returning"
)

// TrafficSource is the acquisition channel covariate
type TrafficSource string

const (
	TrafficDirect  TrafficSource = "direct"
	TrafficOrganic TrafficSource = "organic"
	TrafficPaid    TrafficSource = "paid"
	TrafficSocial  TrafficSource = "social"
)

// SegmentDimension is the closed set of segmentation dimensions. Dynamic
// "metric name -> column" dispatch is deliberately avoided: each dimension
// declares its categories and its record accessor.
type SegmentDimension string

const (
	DimensionDevice        SegmentDimension = "device_type"
	DimensionUserType      SegmentDimension = "user_type"
	DimensionTrafficSource SegmentDimension = "traffic_source"
)

// Dimensions returns all segmentation dimensions in canonical order
func Dimensions() []SegmentDimension {
	return []SegmentDimension{DimensionDevice, DimensionUserType, DimensionTrafficSource}
}

// Values returns the category values of the dimension in canonical order
func (d SegmentDimension) Values() []string {
	switch d {
	case DimensionDevice:
		return []string{string(DeviceMobile), string(DeviceDesktop), string(DeviceTablet)}
	case DimensionUserType:
		return []string{string(UserNew), string(UserReturning)}
	case DimensionTrafficSource:
		return []string{string(TrafficDirect), string(TrafficOrganic), string(TrafficPaid), string(TrafficSocial)}
	}
	return nil
}

// ValueOf extracts the record's category for this dimension
func (d SegmentDimension) ValueOf(r UserRecord) string {
	switch d {
	case DimensionDevice:
		return string(r.DeviceType)
	case DimensionUserType:
		return string(r.UserType)
	case DimensionTrafficSource:
		return string(r.TrafficSource)
	}
	return ""
}

// UserRecord is one row per user-session as delivered by the ingestion
// layer. Each user appears exactly once with exactly one variant.
type UserRecord struct {
	UserID         core.UserID   `json:"user_id"`
	Variant        Variant       `json:"variant"`
	DeviceType     DeviceType    `json:"device_type"`
	UserType       UserType      `json:"user_type"`
	TrafficSource  TrafficSource `json:"traffic_source"`
	Converted      bool          `json:"converted"`
	OrderValue     float64       `json:"order_value"`
	TimeToCheckout *float64      `json:"time_to_checkout,omitempty"`
}

// GroupStats holds the per-group counts and sums every downstream
// statistic is computed from. Produced fresh per analysis run and never
// mutated after construction.
type GroupStats struct {
	N             int     `json:"n"`
	Conversions   int     `json:"conversions"`
	RevenueSum    float64 `json:"revenue_sum"`
	RevenueSumSq  float64 `json:"revenue_sum_sq"`
	CheckoutSum   float64 `json:"checkout_sum"`
	CheckoutSumSq float64 `json:"checkout_sum_sq"`
	CheckoutCount int     `json:"checkout_count"`
}

// ConversionRate returns conversions/n, or 0 for an empty group
func (g GroupStats) ConversionRate() float64 {
	if g.N == 0 {
		return 0
	}
	return float64(g.Conversions) / float64(g.N)
}

// RevenueMean returns revenue per user including zero-value non-converters
func (g GroupStats) RevenueMean() float64 {
	if g.N == 0 {
		return 0
	}
	return g.RevenueSum / float64(g.N)
}

// RevenueVariance returns the unbiased sample variance of per-user revenue,
// recovered from the running sum and sum of squares.
func (g GroupStats) RevenueVariance() float64 {
	if g.N < 2 {
		return 0
	}
	n := float64(g.N)
	mean := g.RevenueSum / n
	return (g.RevenueSumSq - n*mean*mean) / (n - 1)
}

// CheckoutMean returns the mean time to checkout over users that reported
// one.
func (g GroupStats) CheckoutMean() float64 {
	if g.CheckoutCount == 0 {
		return 0
	}
	return g.CheckoutSum / float64(g.CheckoutCount)
}

// CheckoutVariance returns the unbiased sample variance of time to checkout
// over users that reported one.
func (g GroupStats) CheckoutVariance() float64 {
	if g.CheckoutCount < 2 {
		return 0
	}
	n := float64(g.CheckoutCount)
	mean := g.CheckoutSum / n
	return (g.CheckoutSumSq - n*mean*mean) / (n - 1)
}

// SegmentKey addresses the GroupStats slice for one (dimension, value, variant)
type SegmentKey struct {
	Dimension SegmentDimension `json:"dimension"`
	Value     string           `json:"value"`
	Variant   Variant          `json:"variant"`
}
