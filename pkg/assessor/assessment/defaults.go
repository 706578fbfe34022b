package assessment

import (
	"k8s.io/klog/v2"

	"github.com/elevated-systems/renewable-assessor/pkg/assessor/common"
	"github.com/elevated-systems/renewable-assessor/pkg/assessor/metrics"
)

// DefaultUtilityRates is the record substituted when the utility-rate
// provider is unavailable or returns an incomplete response.
var DefaultUtilityRates = UtilityRates{
	UtilityName:     common.DefaultUtilityName,
	ResidentialRate: common.DefaultResidentialRate,
	CommercialRate:  common.DefaultCommercialRate,
	IndustrialRate:  common.DefaultIndustrialRate,
}

// ResolveUtilityRates applies the defaulting policy to a provider result.
// It never fails: any provider error, nil record or missing rate yields the
// fixed default record. The second return reports whether a substitution
// occurred so callers can observe the degradation.
func ResolveUtilityRates(raw *RawUtilityRates, err error) (UtilityRates, bool) {
	if err != nil || raw == nil ||
		raw.Residential == nil || raw.Commercial == nil || raw.Industrial == nil {
		klog.V(2).InfoS("Utility rates unavailable, substituting defaults",
			"error", err, "utility", DefaultUtilityRates.UtilityName)
		metrics.FallbackSubstitutions.WithLabelValues("utility_rates").Inc()
		return DefaultUtilityRates, true
	}

	return UtilityRates{
		UtilityName:     raw.UtilityName,
		ResidentialRate: *raw.Residential,
		CommercialRate:  *raw.Commercial,
		IndustrialRate:  *raw.Industrial,
	}, false
}

// ResolveCarbonIntensity applies the defaulting policy to a carbon
// intensity result in gCO2eq/kWh. It never fails; a provider error or
// missing value yields the fixed default.
func ResolveCarbonIntensity(value *float64, err error) (float64, bool) {
	if err != nil || value == nil {
		klog.V(2).InfoS("Carbon intensity unavailable, substituting default",
			"error", err, "default", common.DefaultCarbonIntensity)
		metrics.FallbackSubstitutions.WithLabelValues("carbon_intensity").Inc()
		return common.DefaultCarbonIntensity, true
	}
	return *value, false
}
