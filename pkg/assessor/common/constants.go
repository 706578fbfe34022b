package common

// Defaults substituted when an upstream data source is unavailable or
// returns the "no data" sentinel. These values are part of the public
// contract: callers and tests depend on them exactly.
const (
	// DefaultUtilityName labels the substituted utility-rate record
	DefaultUtilityName = "Default Utility"

	// Default utility rates in USD/kWh
	DefaultResidentialRate = 0.12
	DefaultCommercialRate  = 0.11
	DefaultIndustrialRate  = 0.10

	// DefaultCarbonIntensity in gCO2eq/kWh, used when the carbon
	// intensity provider is unavailable
	DefaultCarbonIntensity = 500.0

	// NoDataSentinel is the literal string some NREL utility-rate
	// responses carry instead of a numeric rate
	NoDataSentinel = "no data"
)

// Solar financial assumptions
const (
	// DefaultPanelEfficiency is the assumed panel efficiency (18%)
	DefaultPanelEfficiency = 0.18

	// DefaultCostPerKW is the assumed installation cost in USD per kW
	// of system capacity
	DefaultCostPerKW = 2500.0

	// DaysPerYear converts daily solar radiation to annual
	DaysPerYear = 365.0
)

// Wind assumptions
const (
	// HoursPerYear is the theoretical-maximum denominator for
	// annualized capacity factors
	HoursPerYear = 8760.0

	// MonthsPerYear extrapolates a monthly energy window to annual
	MonthsPerYear = 12.0

	// WindEmissionsFactor is the kg CO2 avoided per kWh of wind
	// generation used by the conservative pipeline
	WindEmissionsFactor = 0.131

	// DefaultWindInstallationCost in USD for a residential turbine
	DefaultWindInstallationCost = 25000.0
)
