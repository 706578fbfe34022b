package wind

import (
	"github.com/elevated-systems/renewable-assessor/pkg/assessor/common"
)

// Summary aggregates a reconciled series over its observed window.
type Summary struct {
	TotalEnergyKWh    float64
	CapacityFactorPct float64
	HoursObserved     int
}

// MaxSimpleCapacityFactorPct is the absolute ceiling applied by the simple
// pipeline; no other clamping is performed in that mode.
const MaxSimpleCapacityFactorPct = 35.0

// SimpleSummary totals energy over the observed window and reports the
// capacity factor against the theoretical maximum at rated power for the
// hours observed. The only adjustment is the absolute 35% ceiling.
func SimpleSummary(samples []Sample, preset TurbinePreset) Summary {
	total := 0.0
	for _, s := range samples {
		total += s.EnergyKWh
	}

	hours := len(samples)
	cf := 0.0
	if hours > 0 && preset.RatedPowerKW > 0 {
		cf = total / (preset.RatedPowerKW * float64(hours)) * 100
	}
	if cf > MaxSimpleCapacityFactorPct {
		cf = MaxSimpleCapacityFactorPct
	}

	return Summary{
		TotalEnergyKWh:    total,
		CapacityFactorPct: cf,
		HoursObserved:     hours,
	}
}

// ConservativeBounds is the calibration applied by the conservative
// pipeline to keep single-month extrapolations plausible.
type ConservativeBounds struct {
	MinAnnualEnergyKWh   float64
	MaxAnnualEnergyKWh   float64
	MinCapacityFactorPct float64
	MaxCapacityFactorPct float64
	MinEnergyPriceUSD    float64
	MaxEnergyPriceUSD    float64
}

// DefaultConservativeBounds carries the calibration observed in production
// deployments (NYC-area residential installs).
var DefaultConservativeBounds = ConservativeBounds{
	MinAnnualEnergyKWh:   15000,
	MaxAnnualEnergyKWh:   20000,
	MinCapacityFactorPct: 20.0,
	MaxCapacityFactorPct: 25.0,
	MinEnergyPriceUSD:    0.08,
	MaxEnergyPriceUSD:    0.12,
}

// ConservativeMetrics is the output of the conservative pipeline.
type ConservativeMetrics struct {
	AnnualEnergyKWh   float64
	CapacityFactorPct float64
	AnnualSavingsUSD  float64
	PaybackYears      *float64
	CO2ReductionKg    float64
}

// ConservativeSummary extrapolates a monthly window to annual figures and
// clamps energy, capacity factor and unit price into the given bounds
// before deriving the financial and environmental metrics.
func ConservativeSummary(samples []Sample, preset TurbinePreset, energyPriceUSD, installationCostUSD float64, bounds ConservativeBounds) ConservativeMetrics {
	monthly := 0.0
	for _, s := range samples {
		monthly += s.EnergyKWh
	}

	// Linear monthly-to-annual extrapolation, not a seasonal model.
	annual := common.Clamp(monthly*common.MonthsPerYear, bounds.MinAnnualEnergyKWh, bounds.MaxAnnualEnergyKWh)

	cf := annual / (preset.RatedPowerKW * common.HoursPerYear) * 100
	cf = common.Clamp(cf, bounds.MinCapacityFactorPct, bounds.MaxCapacityFactorPct)

	rate := common.Clamp(energyPriceUSD, bounds.MinEnergyPriceUSD, bounds.MaxEnergyPriceUSD)
	savings := annual * rate

	metrics := ConservativeMetrics{
		AnnualEnergyKWh:   annual,
		CapacityFactorPct: cf,
		AnnualSavingsUSD:  savings,
		CO2ReductionKg:    annual * common.WindEmissionsFactor,
	}
	if savings > 0 {
		payback := installationCostUSD / savings
		metrics.PaybackYears = &payback
	}

	return metrics
}

// AnnualizeMonthly converts a monthly energy figure to annual by linear
// extrapolation.
func AnnualizeMonthly(monthlyEnergyKWh float64) float64 {
	return monthlyEnergyKWh * common.MonthsPerYear
}
