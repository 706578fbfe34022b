package assessment

import (
	"k8s.io/klog/v2"

	"github.com/elevated-systems/renewable-assessor/pkg/assessor/common"
	"github.com/elevated-systems/renewable-assessor/pkg/assessor/wind"
)

// Price band accepted by the simple wind pipeline before computing
// savings. The conservative pipeline applies its own, tighter band.
const (
	minSimpleEnergyPriceUSD = 0.08
	maxSimpleEnergyPriceUSD = 0.20
)

// ComputeWindSimple reconciles the wind series and reports energy and
// capacity factor over the observed window. No clamping is applied beyond
// the absolute capacity-factor ceiling; cost savings use the price bounded
// to a sane band, and no financial extrapolation is performed.
func ComputeWindSimple(raw []wind.RawObservation, density wind.DensityInput, preset wind.TurbinePreset, energyPriceUSD float64) (WindAssessment, error) {
	samples, err := wind.Reconcile(raw, density, preset)
	if err != nil {
		return WindAssessment{}, err
	}

	summary := wind.SimpleSummary(samples, preset)
	rate := common.Clamp(energyPriceUSD, minSimpleEnergyPriceUSD, maxSimpleEnergyPriceUSD)

	klog.V(3).InfoS("Assembled simple wind assessment",
		"hoursObserved", summary.HoursObserved,
		"totalEnergyKWh", summary.TotalEnergyKWh,
		"capacityFactorPct", summary.CapacityFactorPct)

	return WindAssessment{
		TotalEnergyKWh:    summary.TotalEnergyKWh,
		CapacityFactorPct: summary.CapacityFactorPct,
		CostSavingsUSD:    summary.TotalEnergyKWh * rate,
		Message:           "Wind resource assessment completed successfully",
	}, nil
}

// ComputeWindConservative reconciles the wind series, extrapolates the
// window to annual figures and applies the conservative calibration before
// deriving savings, payback and CO2 reduction.
func ComputeWindConservative(raw []wind.RawObservation, density wind.DensityInput, preset wind.TurbinePreset, energyPriceUSD, installationCostUSD float64, bounds wind.ConservativeBounds) (WindAssessment, error) {
	samples, err := wind.Reconcile(raw, density, preset)
	if err != nil {
		return WindAssessment{}, err
	}

	m := wind.ConservativeSummary(samples, preset, energyPriceUSD, installationCostUSD, bounds)

	klog.V(3).InfoS("Assembled conservative wind assessment",
		"annualEnergyKWh", m.AnnualEnergyKWh,
		"capacityFactorPct", m.CapacityFactorPct,
		"annualSavingsUSD", m.AnnualSavingsUSD)

	co2 := m.CO2ReductionKg
	return WindAssessment{
		TotalEnergyKWh:     m.AnnualEnergyKWh,
		CapacityFactorPct:  m.CapacityFactorPct,
		CostSavingsUSD:     m.AnnualSavingsUSD,
		PaybackPeriodYears: m.PaybackYears,
		CO2ReductionKg:     &co2,
	}, nil
}
