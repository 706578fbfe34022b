// Package solar implements the closed-form formulas that turn photovoltaic
// simulation output into financial and environmental metrics. All functions
// are pure and deterministic; validation failures return
// common.ErrInvalidInput wrapped with context.
package solar

import (
	"fmt"

	"github.com/elevated-systems/renewable-assessor/pkg/assessor/common"
)

// PanelArea returns the panel area in m² required to produce dcAnnualKWh
// given the average daily solar radiation (kWh/m²/day) and panel efficiency.
func PanelArea(dcAnnualKWh, solradDailyKWhM2, panelEfficiency float64) (float64, error) {
	annualRadiation := solradDailyKWhM2 * common.DaysPerYear
	if annualRadiation <= 0 {
		return 0, fmt.Errorf("%w: annual solar radiation must be greater than 0, got %f", common.ErrInvalidInput, annualRadiation)
	}
	return dcAnnualKWh / (annualRadiation * panelEfficiency), nil
}

// CostSavings returns the annual cost savings in USD for the given AC
// annual output and energy price (USD/kWh).
func CostSavings(acAnnualKWh, energyPriceUSDPerKWh float64) float64 {
	return acAnnualKWh * energyPriceUSDPerKWh
}

// ROI returns the simple payback period in years.
func ROI(initialCostUSD, annualSavingsUSD float64) (float64, error) {
	if annualSavingsUSD <= 0 {
		return 0, fmt.Errorf("%w: annual savings must be greater than 0, got %f", common.ErrInvalidInput, annualSavingsUSD)
	}
	return initialCostUSD / annualSavingsUSD, nil
}

// CO2Reduction returns the annual CO2 reduction in kg for the given AC
// annual output and emission factor (kg CO2/kWh).
func CO2Reduction(acAnnualKWh, emissionFactorKgPerKWh float64) float64 {
	return acAnnualKWh * emissionFactorKgPerKWh
}

// SystemEfficiency converts system losses in percent to an efficiency
// ratio. The caller validates 0 <= lossesPct < 100 beforehand.
func SystemEfficiency(lossesPct float64) float64 {
	return 1 - lossesPct/100
}

// DCAnnual backs out the DC-side annual output from the AC annual output
// and the system efficiency ratio.
func DCAnnual(acAnnualKWh, systemEfficiency float64) float64 {
	return acAnnualKWh / systemEfficiency
}
