package testkit

import (
	"fmt"
	"math/rand"

	"liftlab/domain/core"
	"liftlab/domain/experiment"
)

// GeneratorConfig configures the synthetic experiment generator
type GeneratorConfig struct {
	Users         int     `json:"users"`
	ControlSplit  float64 `json:"control_split"`
	BaselineRate  float64 `json:"baseline_rate"`
	TrueLift      float64 `json:"true_lift"`
	AvgOrderValue float64 `json:"avg_order_value"`
	OrderValueSD  float64 `json:"order_value_sd"`
	Seed          int64   `json:"seed"`
}

// DefaultGeneratorConfig returns a balanced 50/50 experiment with a real
// treatment effect large enough for fixtures to detect reliably.
func DefaultGeneratorConfig() GeneratorConfig {
	return GeneratorConfig{
		Users:         10000,
		ControlSplit:  0.5,
		BaselineRate:  0.10,
		TrueLift:      0.04,
		AvgOrderValue: 75.0,
		OrderValueSD:  20.0,
		Seed:          42,
	}
}

// Generator produces deterministic synthetic experiment datasets. The same
// seed always yields the same rows, so tests can assert on exact counts.
type Generator struct {
	cfg GeneratorConfig
	rng *rand.Rand
}

// NewGenerator creates a generator for one dataset
func NewGenerator(cfg GeneratorConfig) *Generator {
	return &Generator{
		cfg: cfg,
		rng: rand.New(rand.NewSource(cfg.Seed)),
	}
}

var (
	devices = []experiment.DeviceType{
		experiment.DeviceMobile, experiment.DeviceMobile, // mobile-heavy mix
		experiment.DeviceDesktop, experiment.DeviceDesktop,
		experiment.DeviceTablet,
	}
	userTypes = []experiment.UserType{
		experiment.UserNew, experiment.UserNew, experiment.UserReturning,
	}
	trafficSources = []experiment.TrafficSource{
		experiment.TrafficDirect, experiment.TrafficOrganic,
		experiment.TrafficOrganic, experiment.TrafficPaid,
		experiment.TrafficSocial,
	}
)

// Generate produces the full record set for one finished experiment
func (g *Generator) Generate() []experiment.UserRecord {
	records := make([]experiment.UserRecord, 0, g.cfg.Users)
	for i := 0; i < g.cfg.Users; i++ {
		variant := experiment.VariantTreatment
		rate := g.cfg.BaselineRate + g.cfg.TrueLift
		if g.rng.Float64() < g.cfg.ControlSplit {
			variant = experiment.VariantControl
			rate = g.cfg.BaselineRate
		}

		converted := g.rng.Float64() < rate
		orderValue := 0.0
		if converted {
			orderValue = g.cfg.AvgOrderValue + g.rng.NormFloat64()*g.cfg.OrderValueSD
			if orderValue < 1 {
				orderValue = 1
			}
		}

		record := experiment.UserRecord{
			UserID:        core.UserID(fmt.Sprintf("user_%06d", i+1)),
			Variant:       variant,
			DeviceType:    devices[g.rng.Intn(len(devices))],
			UserType:      userTypes[g.rng.Intn(len(userTypes))],
			TrafficSource: trafficSources[g.rng.Intn(len(trafficSources))],
			Converted:     converted,
			OrderValue:    orderValue,
		}
		if converted {
			checkout := 30 + g.rng.ExpFloat64()*90
			record.TimeToCheckout = &checkout
		}
		records = append(records, record)
	}
	return records
}

// FixedCounts builds a dataset with exact per-group sizes and conversion
// counts, for tests that assert on gold-standard statistics rather than
// sampled ones. Covariates cycle deterministically.
func FixedCounts(nControl, convControl, nTreatment, convTreatment int) []experiment.UserRecord {
	records := make([]experiment.UserRecord, 0, nControl+nTreatment)
	appendGroup := func(variant experiment.Variant, n, conversions int, offset int) {
		for i := 0; i < n; i++ {
			r := experiment.UserRecord{
				UserID:        core.UserID(fmt.Sprintf("user_%06d", offset+i+1)),
				Variant:       variant,
				DeviceType:    devices[i%len(devices)],
				UserType:      userTypes[i%len(userTypes)],
				TrafficSource: trafficSources[i%len(trafficSources)],
				Converted:     i < conversions,
			}
			if r.Converted {
				r.OrderValue = 50
			}
			records = append(records, r)
		}
	}
	appendGroup(experiment.VariantControl, nControl, convControl, 0)
	appendGroup(experiment.VariantTreatment, nTreatment, convTreatment, nControl)
	return records
}
