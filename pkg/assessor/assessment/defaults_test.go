package assessment

import (
	"errors"
	"testing"
)

func TestResolveUtilityRates(t *testing.T) {
	tests := []struct {
		name         string
		raw          *RawUtilityRates
		err          error
		wantDefault  bool
	}{
		{
			name: "complete record passes through",
			raw: &RawUtilityRates{
				UtilityName: "Pacific Gas & Electric",
				Residential: f(0.25),
				Commercial:  f(0.22),
				Industrial:  f(0.18),
			},
			wantDefault: false,
		},
		{
			name:        "provider error substitutes defaults",
			raw:         nil,
			err:         errors.New("upstream 500"),
			wantDefault: true,
		},
		{
			name:        "nil record substitutes defaults",
			raw:         nil,
			wantDefault: true,
		},
		{
			// The "no data" sentinel is normalized to nil at the
			// provider boundary
			name: "missing residential rate substitutes defaults",
			raw: &RawUtilityRates{
				UtilityName: "Some Utility",
				Commercial:  f(0.22),
				Industrial:  f(0.18),
			},
			wantDefault: true,
		},
		{
			name: "missing industrial rate substitutes defaults",
			raw: &RawUtilityRates{
				UtilityName: "Some Utility",
				Residential: f(0.25),
				Commercial:  f(0.22),
			},
			wantDefault: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rates, degraded := ResolveUtilityRates(tt.raw, tt.err)
			if degraded != tt.wantDefault {
				t.Errorf("degraded = %v, want %v", degraded, tt.wantDefault)
			}
			if tt.wantDefault {
				if rates != DefaultUtilityRates {
					t.Errorf("expected default record, got %+v", rates)
				}
				if rates.ResidentialRate != 0.12 || rates.CommercialRate != 0.11 || rates.IndustrialRate != 0.10 {
					t.Errorf("default rates wrong: %+v", rates)
				}
			} else {
				if rates.UtilityName != tt.raw.UtilityName {
					t.Errorf("utility name not carried through: %s", rates.UtilityName)
				}
				if rates.ResidentialRate != *tt.raw.Residential {
					t.Errorf("residential rate not carried through: %f", rates.ResidentialRate)
				}
			}
		})
	}
}

func TestResolveCarbonIntensity(t *testing.T) {
	tests := []struct {
		name        string
		value       *float64
		err         error
		expected    float64
		wantDefault bool
	}{
		{"value passes through", f(230.5), nil, 230.5, false},
		{"provider error substitutes default", nil, errors.New("timeout"), 500.0, true},
		{"missing value substitutes default", nil, nil, 500.0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, degraded := ResolveCarbonIntensity(tt.value, tt.err)
			if got != tt.expected {
				t.Errorf("ResolveCarbonIntensity() = %f, want %f", got, tt.expected)
			}
			if degraded != tt.wantDefault {
				t.Errorf("degraded = %v, want %v", degraded, tt.wantDefault)
			}
		})
	}
}
