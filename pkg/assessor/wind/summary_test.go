package wind

import (
	"math"
	"testing"
	"time"
)

func hourlySamples(n int, energyPerRow float64) []Sample {
	samples := make([]Sample, n)
	for i := range samples {
		samples[i] = Sample{
			Timestamp: time.Date(2019, 1, 1, 0, 0, 0, 0, time.UTC).Add(time.Duration(i) * time.Hour),
			PowerKW:   energyPerRow,
			EnergyKWh: energyPerRow,
		}
	}
	return samples
}

func TestSimpleSummary(t *testing.T) {
	// 100 hourly rows at 2 kWh each: 200 kWh total, CF = 200/(10*100) = 20%
	samples := hourlySamples(100, 2)
	s := SimpleSummary(samples, ResidentialTurbine)

	if s.TotalEnergyKWh != 200 {
		t.Errorf("TotalEnergyKWh = %f, want 200", s.TotalEnergyKWh)
	}
	if s.HoursObserved != 100 {
		t.Errorf("HoursObserved = %d, want 100", s.HoursObserved)
	}
	if math.Abs(s.CapacityFactorPct-20) > 1e-9 {
		t.Errorf("CapacityFactorPct = %f, want 20", s.CapacityFactorPct)
	}
}

func TestSimpleSummaryCapacityFactorCeiling(t *testing.T) {
	// Rows at rated power would give 100% CF; the ceiling caps it at 35.
	samples := hourlySamples(50, ResidentialTurbine.RatedPowerKW)
	s := SimpleSummary(samples, ResidentialTurbine)
	if s.CapacityFactorPct != MaxSimpleCapacityFactorPct {
		t.Errorf("CapacityFactorPct = %f, want ceiling %f", s.CapacityFactorPct, MaxSimpleCapacityFactorPct)
	}
}

func TestSimpleSummaryEmpty(t *testing.T) {
	s := SimpleSummary(nil, ResidentialTurbine)
	if s.TotalEnergyKWh != 0 || s.CapacityFactorPct != 0 || s.HoursObserved != 0 {
		t.Errorf("empty series should summarize to zeros, got %+v", s)
	}
}

func TestConservativeSummaryClamps(t *testing.T) {
	tests := []struct {
		name           string
		monthlyEnergy  float64
		expectedAnnual float64
	}{
		// 2500*12 = 30000, clamped to the 20000 ceiling
		{"high window clamped to max", 2500, 20000},
		// 83.33*12 ≈ 1000, clamped up to the 15000 floor
		{"low window clamped to min", 1000.0 / 12, 15000},
		// 1500*12 = 18000, inside bounds
		{"in-band window unchanged", 1500, 18000},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			samples := hourlySamples(1, tt.monthlyEnergy)
			m := ConservativeSummary(samples, ResidentialTurbine, 0.10, 25000, DefaultConservativeBounds)
			if math.Abs(m.AnnualEnergyKWh-tt.expectedAnnual) > 1e-6 {
				t.Errorf("AnnualEnergyKWh = %f, want %f", m.AnnualEnergyKWh, tt.expectedAnnual)
			}
		})
	}
}

func TestConservativeSummaryMetrics(t *testing.T) {
	// 1500 kWh monthly -> 18000 annual, no energy clamping.
	samples := hourlySamples(1, 1500)
	m := ConservativeSummary(samples, ResidentialTurbine, 0.10, 25000, DefaultConservativeBounds)

	// Raw CF = 18000/(10*8760)*100 ≈ 20.55, inside [20,25]
	if math.Abs(m.CapacityFactorPct-18000/(10*8760.0)*100) > 1e-9 {
		t.Errorf("CapacityFactorPct = %f", m.CapacityFactorPct)
	}
	if math.Abs(m.AnnualSavingsUSD-1800) > 1e-9 {
		t.Errorf("AnnualSavingsUSD = %f, want 1800", m.AnnualSavingsUSD)
	}
	if m.PaybackYears == nil {
		t.Fatal("PaybackYears should be set when savings are positive")
	}
	if math.Abs(*m.PaybackYears-25000.0/1800) > 1e-9 {
		t.Errorf("PaybackYears = %f, want %f", *m.PaybackYears, 25000.0/1800)
	}
	if math.Abs(m.CO2ReductionKg-18000*0.131) > 1e-9 {
		t.Errorf("CO2ReductionKg = %f, want %f", m.CO2ReductionKg, 18000*0.131)
	}
}

func TestConservativeSummaryPriceClamps(t *testing.T) {
	samples := hourlySamples(1, 1500) // 18000 annual

	high := ConservativeSummary(samples, ResidentialTurbine, 0.50, 25000, DefaultConservativeBounds)
	if math.Abs(high.AnnualSavingsUSD-18000*0.12) > 1e-9 {
		t.Errorf("price should clamp to 0.12, savings = %f", high.AnnualSavingsUSD)
	}

	low := ConservativeSummary(samples, ResidentialTurbine, 0.01, 25000, DefaultConservativeBounds)
	if math.Abs(low.AnnualSavingsUSD-18000*0.08) > 1e-9 {
		t.Errorf("price should clamp to 0.08, savings = %f", low.AnnualSavingsUSD)
	}
}

func TestAnnualizeMonthly(t *testing.T) {
	if got := AnnualizeMonthly(1250); got != 15000 {
		t.Errorf("AnnualizeMonthly(1250) = %f, want 15000", got)
	}
}
