package wind

import (
	"math"
	"testing"
)

const standardAirDensity = 1.225

func TestPowerOutputKW(t *testing.T) {
	tests := []struct {
		name      string
		windSpeed float64
		preset    TurbinePreset
		expected  float64
		tolerance float64
	}{
		{
			name:      "below cut-in",
			windSpeed: 2,
			preset:    ResidentialTurbine,
			expected:  0,
		},
		{
			name:      "above cut-out",
			windSpeed: 30,
			preset:    ResidentialTurbine,
			expected:  0,
		},
		{
			name:      "at cut-out boundary",
			windSpeed: 20,
			preset:    ResidentialTurbine,
			expected:  0,
		},
		{
			name:      "at rated speed",
			windSpeed: 12,
			preset:    ResidentialTurbine,
			expected:  10,
		},
		{
			name:      "between rated and cut-out",
			windSpeed: 18,
			preset:    ResidentialTurbine,
			expected:  10,
		},
		{
			name:      "cubic region reference point",
			windSpeed: 10,
			preset:    ResidentialTurbine,
			// 0.5 * 1.225 * pi*3.5^2 * 0.35 * 1000 / 1000
			expected:  8.25,
			tolerance: 0.01,
		},
		{
			name:      "utility turbine cubic region",
			windSpeed: 10,
			preset:    UtilityTurbine,
			// 0.5 * 1.225 * pi*50^2 * 0.40 * 1000 / 1000
			expected:  1924.23,
			tolerance: 0.5,
		},
		{
			name:      "utility turbine rated plateau",
			windSpeed: 20,
			preset:    UtilityTurbine,
			expected:  2000,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := PowerOutputKW(tt.windSpeed, standardAirDensity, tt.preset)
			if tt.tolerance == 0 {
				if got != tt.expected {
					t.Errorf("PowerOutputKW(%f) = %f, want exactly %f", tt.windSpeed, got, tt.expected)
				}
				return
			}
			if math.Abs(got-tt.expected) > tt.tolerance {
				t.Errorf("PowerOutputKW(%f) = %f, want %f ± %f", tt.windSpeed, got, tt.expected, tt.tolerance)
			}
		})
	}
}

func TestPowerOutputClampedToRated(t *testing.T) {
	// Just below rated speed the cubic term can exceed rated power at
	// high density; output must never exceed it.
	for v := ResidentialTurbine.CutInSpeedMS; v < ResidentialTurbine.CutOutSpeedMS; v += 0.25 {
		got := PowerOutputKW(v, 1.4, ResidentialTurbine)
		if got > ResidentialTurbine.RatedPowerKW {
			t.Fatalf("PowerOutputKW(%f) = %f exceeds rated power", v, got)
		}
	}
}

func TestTurbinePresetValidate(t *testing.T) {
	if err := ResidentialTurbine.Validate(); err != nil {
		t.Errorf("residential preset invalid: %v", err)
	}
	if err := UtilityTurbine.Validate(); err != nil {
		t.Errorf("utility preset invalid: %v", err)
	}

	bad := ResidentialTurbine
	bad.RatedSpeedMS = 25
	bad.CutOutSpeedMS = 20
	if err := bad.Validate(); err == nil {
		t.Error("expected error for rated >= cut-out")
	}

	bad = ResidentialTurbine
	bad.PowerCoefficient = 0.7 // beyond Betz limit
	if err := bad.Validate(); err == nil {
		t.Error("expected error for power coefficient beyond Betz limit")
	}
}
