package wind

import (
	"math"
	"time"
)

// Specific gas constants in J/(kg·K)
const (
	gasConstantDryAir     = 287.05
	gasConstantWaterVapor = 461.495
)

// MeteoSample is one meteorological observation used to derive air density.
type MeteoSample struct {
	Timestamp    time.Time
	TemperatureK float64 // 2m temperature
	PressureHPa  float64 // surface pressure
	DewpointK    float64 // 2m dewpoint temperature
}

// AirDensity computes air density in kg/m³ from temperature (K), surface
// pressure (hPa) and dewpoint (K). Saturation vapor pressure follows the
// Tetens formula; the dewpoint gives the actual vapor pressure.
func AirDensity(temperatureK, pressureHPa, dewpointK float64) float64 {
	eS := 6.112 * math.Pow(10, (7.5*(dewpointK-273.15))/(dewpointK-35.85))
	e := eS

	return ((pressureHPa*100)-(e*100))/(gasConstantDryAir*temperatureK) +
		(e*100)/(gasConstantWaterVapor*temperatureK)
}

// DensitySeriesFromMeteorology derives a timestamped air-density series
// from meteorological observations, suitable for joining onto a wind-speed
// series.
func DensitySeriesFromMeteorology(samples []MeteoSample) []DensitySample {
	series := make([]DensitySample, 0, len(samples))
	for _, s := range samples {
		series = append(series, DensitySample{
			Timestamp:      s.Timestamp,
			AirDensityKgM3: AirDensity(s.TemperatureK, s.PressureHPa, s.DewpointK),
		})
	}
	return series
}
