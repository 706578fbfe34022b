package wind

import "math"

// PowerOutputKW maps a wind-speed/air-density sample to instantaneous power
// output in kW using the preset's piecewise cubic curve:
//
//   - below cut-in or at/above cut-out: 0
//   - between cut-in and rated speed: 0.5·ρ·A·Cp·v³/1000, capped at rated
//   - between rated and cut-out: rated power exactly
func PowerOutputKW(windSpeedMS, airDensityKgM3 float64, t TurbinePreset) float64 {
	if windSpeedMS < t.CutInSpeedMS || windSpeedMS >= t.CutOutSpeedMS {
		return 0
	}
	if windSpeedMS >= t.RatedSpeedMS {
		return t.RatedPowerKW
	}

	sweptArea := math.Pi * t.RotorRadiusM * t.RotorRadiusM
	powerKW := 0.5 * airDensityKgM3 * sweptArea * t.PowerCoefficient * math.Pow(windSpeedMS, 3) / 1000

	return math.Min(powerKW, t.RatedPowerKW)
}
