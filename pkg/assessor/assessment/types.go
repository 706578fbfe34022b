// Package assessment assembles provider data into the solar and wind
// assessment results. It owns the defaulting policy for degraded upstream
// data and the validation of caller-supplied parameters; the formulas
// themselves live in the solar and wind packages.
package assessment

// Location identifies the assessment target in float degrees.
type Location struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// SolarSystemSpec describes the photovoltaic system being assessed.
// LossesPct must satisfy 0 <= losses < 100.
type SolarSystemSpec struct {
	CapacityKW float64  `json:"system_capacity"`
	ModuleType int      `json:"module_type"` // 0=Standard, 1=Premium, 2=Thin Film
	LossesPct  float64  `json:"losses"`
	ArrayType  int      `json:"array_type"`
	TiltDeg    float64  `json:"tilt"`
	AzimuthDeg float64  `json:"azimuth"`
	Location   Location `json:"location"`
}

// PVEstimate is the normalized output of the photovoltaic simulation
// provider. Fields are pointers because the provider response may omit
// them; a missing field is a hard failure, never defaulted.
type PVEstimate struct {
	ACAnnualKWh          *float64
	SolradAnnualKWhM2Day *float64
	CapacityFactorPct    *float64
}

// RawUtilityRates is the provider-shaped utility rate record before the
// defaulting policy runs. A nil field means the provider omitted the rate
// or sent the "no data" sentinel.
type RawUtilityRates struct {
	UtilityName string
	Residential *float64
	Commercial  *float64
	Industrial  *float64
}

// UtilityRates is the validated record consumed by the formulas, in
// USD/kWh.
type UtilityRates struct {
	UtilityName     string  `json:"utility_name"`
	ResidentialRate float64 `json:"residential_rate"`
	CommercialRate  float64 `json:"commercial_rate"`
	IndustrialRate  float64 `json:"industrial_rate"`
}

// SolarAssessment is the solar metrics bundle.
type SolarAssessment struct {
	ACAnnualKWh          float64 `json:"ac_annual"`
	SolradAnnual         float64 `json:"solrad_annual"`
	CapacityFactorRatio  float64 `json:"capacity_factor"`
	PanelAreaM2          float64 `json:"panel_area"`
	AnnualCostSavingsUSD float64 `json:"annual_cost_savings"`
	ROIYears             float64 `json:"roi_years"`
	CO2ReductionKg       float64 `json:"co2_reduction"`

	// DegradedData is set when utility rates or carbon intensity fell
	// back to the fixed defaults.
	DegradedData bool `json:"degraded_data,omitempty"`
}

// WindAssessment is the wind metrics bundle. PaybackPeriodYears and
// CO2ReductionKg are produced only by the conservative pipeline.
type WindAssessment struct {
	TotalEnergyKWh     float64  `json:"total_energy_kwh"`
	CapacityFactorPct  float64  `json:"capacity_factor_percentage"`
	CostSavingsUSD     float64  `json:"cost_savings"`
	PaybackPeriodYears *float64 `json:"payback_period,omitempty"`
	CO2ReductionKg     *float64 `json:"co2_reduction,omitempty"`
	Message            string   `json:"message,omitempty"`
}
