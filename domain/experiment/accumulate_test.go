package experiment

import (
	"testing"

	"liftlab/domain/core"
	"liftlab/internal/errors"
)

func record(id string, v Variant, converted bool, orderValue float64) UserRecord {
	return UserRecord{
		UserID:        core.UserID(id),
		Variant:       v,
		DeviceType:    DeviceMobile,
		UserType:      UserNew,
		TrafficSource: TrafficOrganic,
		Converted:     converted,
		OrderValue:    orderValue,
	}
}

func TestAccumulate_GroupsByVariant(t *testing.T) {
	records := []UserRecord{
		record("u1", VariantControl, true, 20),
		record("u2", VariantControl, false, 0),
		record("u3", VariantTreatment, true, 30),
		record("u4", VariantTreatment, true, 10),
		record("u5", VariantTreatment, false, 0),
	}
	checkout := 45.0
	records[2].TimeToCheckout = &checkout

	totals, err := Accumulate(records)
	if err != nil {
		t.Fatalf("accumulate: %v", err)
	}

	control := totals.Group(VariantControl)
	if control.N != 2 || control.Conversions != 1 || control.RevenueSum != 20 {
		t.Fatalf("unexpected control stats: %+v", control)
	}
	treatment := totals.Group(VariantTreatment)
	if treatment.N != 3 || treatment.Conversions != 2 || treatment.RevenueSum != 40 {
		t.Fatalf("unexpected treatment stats: %+v", treatment)
	}
	if treatment.RevenueSumSq != 30*30+10*10 {
		t.Fatalf("unexpected revenue sum of squares: %v", treatment.RevenueSumSq)
	}
	if treatment.CheckoutCount != 1 || treatment.CheckoutSum != 45 || treatment.CheckoutSumSq != 45*45 {
		t.Fatalf("unexpected checkout counters: %+v", treatment)
	}
	if !totals.HasCheckout() {
		t.Fatal("checkout metric should be enabled by a timed record")
	}
	if totals.Records != 5 {
		t.Fatalf("expected 5 records, got %d", totals.Records)
	}
}

func TestAccumulate_SegmentCountsSumToGroupCounts(t *testing.T) {
	records := []UserRecord{
		record("u1", VariantControl, false, 0),
		record("u2", VariantControl, true, 5),
		record("u3", VariantTreatment, false, 0),
	}
	records[0].DeviceType = DeviceDesktop
	records[2].TrafficSource = TrafficPaid

	totals, err := Accumulate(records)
	if err != nil {
		t.Fatalf("accumulate: %v", err)
	}

	for _, variant := range Variants() {
		want := totals.Group(variant).N
		for _, dim := range Dimensions() {
			sum := 0
			for _, value := range dim.Values() {
				sum += totals.Segment(dim, value, variant).N
			}
			if sum != want {
				t.Fatalf("%s counts for %s sum to %d, want %d", dim, variant, sum, want)
			}
		}
	}
}

func TestAccumulate_RejectsMalformedInput(t *testing.T) {
	tests := []struct {
		name    string
		records []UserRecord
	}{
		{
			name: "user in both variants",
			records: []UserRecord{
				record("u1", VariantControl, false, 0),
				record("u1", VariantTreatment, false, 0),
			},
		},
		{
			name: "user repeated in one variant",
			records: []UserRecord{
				record("u1", VariantControl, false, 0),
				record("u1", VariantControl, true, 10),
			},
		},
		{
			name: "negative order value",
			records: []UserRecord{
				record("u1", VariantControl, true, -5),
			},
		},
		{
			name: "unknown variant",
			records: []UserRecord{
				record("u1", Variant("holdout"), false, 0),
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Accumulate(tt.records)
			if err == nil {
				t.Fatal("expected error, got nil")
			}
			if !errors.IsData(err) {
				t.Fatalf("expected DATA_ERROR, got %s (%v)", errors.GetCode(err), err)
			}
		})
	}
}

func TestGroupStats_RevenueVariance(t *testing.T) {
	// Three users with revenue 10, 20, 0: mean 10, sample variance 100
	g := GroupStats{N: 3, Conversions: 2, RevenueSum: 30, RevenueSumSq: 100 + 400}
	if got := g.RevenueMean(); got != 10 {
		t.Fatalf("mean = %v, want 10", got)
	}
	if got := g.RevenueVariance(); got < 99.999 || got > 100.001 {
		t.Fatalf("variance = %v, want 100", got)
	}
}

func TestConfig_Validate(t *testing.T) {
	if err := DefaultConfig().Validate(); err != nil {
		t.Fatalf("default config should validate: %v", err)
	}

	bad := DefaultConfig()
	bad.Alpha = 1.5
	err := bad.Validate()
	if err == nil {
		t.Fatal("expected error for alpha out of range")
	}
	if !errors.IsInvalidParameter(err) {
		t.Fatalf("expected INVALID_PARAMETER, got %s", errors.GetCode(err))
	}
}
