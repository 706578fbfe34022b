// Package wind implements the wind-side assessment pipeline: turbine power
// curves, air density derivation, time-series reconciliation and the energy
// and capacity-factor summaries built on top of them.
package wind

import "fmt"

// TurbinePreset holds the physical constants and operating envelope of a
// turbine model. Thresholds are configuration, not hardwired: different
// deployment scales use different curves.
type TurbinePreset struct {
	Name             string  `yaml:"name"`
	RotorRadiusM     float64 `yaml:"rotorRadiusM"`
	RatedPowerKW     float64 `yaml:"ratedPowerKW"`
	PowerCoefficient float64 `yaml:"powerCoefficient"`
	CutInSpeedMS     float64 `yaml:"cutInSpeedMS"`
	RatedSpeedMS     float64 `yaml:"ratedSpeedMS"`
	CutOutSpeedMS    float64 `yaml:"cutOutSpeedMS"`
}

// Built-in presets. ResidentialTurbine matches a typical 10 kW rooftop
// unit; UtilityTurbine a 2 MW utility-scale machine.
var (
	ResidentialTurbine = TurbinePreset{
		Name:             "residential-10kw",
		RotorRadiusM:     3.5,
		RatedPowerKW:     10,
		PowerCoefficient: 0.35,
		CutInSpeedMS:     3.0,
		RatedSpeedMS:     12.0,
		CutOutSpeedMS:    20.0,
	}

	UtilityTurbine = TurbinePreset{
		Name:             "utility-2mw",
		RotorRadiusM:     50,
		RatedPowerKW:     2000,
		PowerCoefficient: 0.40,
		CutInSpeedMS:     3.0,
		RatedSpeedMS:     15.0,
		CutOutSpeedMS:    25.0,
	}
)

// Validate checks a preset for physically meaningful values.
func (t TurbinePreset) Validate() error {
	if t.RotorRadiusM <= 0 {
		return fmt.Errorf("rotor radius must be positive, got %f", t.RotorRadiusM)
	}
	if t.RatedPowerKW <= 0 {
		return fmt.Errorf("rated power must be positive, got %f", t.RatedPowerKW)
	}
	if t.PowerCoefficient <= 0 || t.PowerCoefficient > 0.593 {
		return fmt.Errorf("power coefficient must be in (0, 0.593], got %f", t.PowerCoefficient)
	}
	if !(t.CutInSpeedMS < t.RatedSpeedMS && t.RatedSpeedMS < t.CutOutSpeedMS) {
		return fmt.Errorf("speed thresholds must satisfy cut-in < rated < cut-out, got %f/%f/%f",
			t.CutInSpeedMS, t.RatedSpeedMS, t.CutOutSpeedMS)
	}
	return nil
}
