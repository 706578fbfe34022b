package assessment

import (
	"fmt"

	"k8s.io/klog/v2"

	"github.com/elevated-systems/renewable-assessor/pkg/assessor/common"
	"github.com/elevated-systems/renewable-assessor/pkg/assessor/solar"
)

// SolarAssumptions are the fixed financial assumptions applied to every
// solar assessment.
type SolarAssumptions struct {
	PanelEfficiency float64
	CostPerKWUSD    float64
}

// DefaultSolarAssumptions matches the production calibration.
var DefaultSolarAssumptions = SolarAssumptions{
	PanelEfficiency: common.DefaultPanelEfficiency,
	CostPerKWUSD:    common.DefaultCostPerKW,
}

// ComputeSolar assembles the solar assessment from normalized provider
// data. Missing PV fields fail with common.ErrIncompleteData; a losses
// value outside [0,100) fails with common.ErrInvalidInput. Utility rates
// and carbon intensity are expected to have passed the defaulting policy
// already and are therefore always usable.
func ComputeSolar(pv PVEstimate, spec SolarSystemSpec, rates UtilityRates, carbonIntensityGPerKWh float64, assumptions SolarAssumptions) (SolarAssessment, error) {
	if spec.LossesPct < 0 || spec.LossesPct >= 100 {
		return SolarAssessment{}, fmt.Errorf("%w: losses must be in [0,100), got %f", common.ErrInvalidInput, spec.LossesPct)
	}
	if pv.ACAnnualKWh == nil {
		return SolarAssessment{}, fmt.Errorf("%w: PV output missing ac_annual", common.ErrIncompleteData)
	}
	if pv.SolradAnnualKWhM2Day == nil {
		return SolarAssessment{}, fmt.Errorf("%w: PV output missing solrad_annual", common.ErrIncompleteData)
	}
	if pv.CapacityFactorPct == nil {
		return SolarAssessment{}, fmt.Errorf("%w: PV output missing capacity_factor", common.ErrIncompleteData)
	}

	efficiency := solar.SystemEfficiency(spec.LossesPct)
	dcAnnual := solar.DCAnnual(*pv.ACAnnualKWh, efficiency)

	panelArea, err := solar.PanelArea(dcAnnual, *pv.SolradAnnualKWhM2Day, assumptions.PanelEfficiency)
	if err != nil {
		return SolarAssessment{}, err
	}

	savings := solar.CostSavings(*pv.ACAnnualKWh, rates.ResidentialRate)

	initialCost := spec.CapacityKW * assumptions.CostPerKWUSD
	roi, err := solar.ROI(initialCost, savings)
	if err != nil {
		return SolarAssessment{}, err
	}

	// Carbon intensity arrives in gCO2eq/kWh; the formula wants kg/kWh.
	emissionFactor := carbonIntensityGPerKWh / 1000
	co2 := solar.CO2Reduction(*pv.ACAnnualKWh, emissionFactor)

	klog.V(3).InfoS("Assembled solar assessment",
		"acAnnualKWh", *pv.ACAnnualKWh,
		"panelAreaM2", panelArea,
		"annualSavingsUSD", savings,
		"roiYears", roi)

	return SolarAssessment{
		ACAnnualKWh:          *pv.ACAnnualKWh,
		SolradAnnual:         *pv.SolradAnnualKWhM2Day,
		CapacityFactorRatio:  *pv.CapacityFactorPct / 100,
		PanelAreaM2:          panelArea,
		AnnualCostSavingsUSD: savings,
		ROIYears:             roi,
		CO2ReductionKg:       co2,
	}, nil
}
