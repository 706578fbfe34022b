package wind

import (
	"fmt"
	"sort"
	"time"

	"k8s.io/klog/v2"

	"github.com/elevated-systems/renewable-assessor/pkg/assessor/common"
)

// RawObservation is one wind-speed row as delivered by a provider, with
// its timestamp still unparsed.
type RawObservation struct {
	Timestamp   string
	WindSpeedMS float64
}

// DensitySample is one timestamped air-density value.
type DensitySample struct {
	Timestamp      time.Time
	AirDensityKgM3 float64
}

// Sample is one reconciled row of the merged series. Rows span exactly one
// hour, so EnergyKWh equals PowerKW.
type Sample struct {
	Timestamp      time.Time
	WindSpeedMS    float64
	AirDensityKgM3 float64
	PowerKW        float64
	EnergyKWh      float64
}

// DensityInput supplies air density to the reconciliation either as a
// timestamped series or as a single scalar mean applied uniformly.
type DensityInput struct {
	series   []DensitySample
	scalar   float64
	isScalar bool
}

// SeriesDensity wraps a per-timestamp air-density series.
func SeriesDensity(samples []DensitySample) DensityInput {
	return DensityInput{series: samples}
}

// ScalarDensity wraps a single mean air density in kg/m³.
func ScalarDensity(meanKgM3 float64) DensityInput {
	return DensityInput{scalar: meanKgM3, isScalar: true}
}

// Timestamp layouts accepted from providers, tried in order.
var timestampLayouts = []string{
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04",
}

func parseTimestamp(s string) (time.Time, bool) {
	for _, layout := range timestampLayouts {
		if ts, err := time.Parse(layout, s); err == nil {
			return ts, true
		}
	}
	return time.Time{}, false
}

// Reconcile merges a raw wind-speed series with air density, computes the
// power output of every row via the preset's power curve and returns the
// merged series ordered by timestamp.
//
// Rows with unparsable or duplicate timestamps are dropped. Density is
// joined by exact timestamp match, forward-filled from the most recent
// earlier density sample, and mean-filled for leading rows with no earlier
// sample. A scalar density applies uniformly.
func Reconcile(raw []RawObservation, density DensityInput, preset TurbinePreset) ([]Sample, error) {
	if len(raw) == 0 {
		return nil, fmt.Errorf("%w: wind series is empty", common.ErrMalformedSeries)
	}

	samples := make([]Sample, 0, len(raw))
	seen := make(map[time.Time]bool, len(raw))
	dropped := 0
	for _, obs := range raw {
		ts, ok := parseTimestamp(obs.Timestamp)
		if !ok {
			dropped++
			continue
		}
		if seen[ts] {
			dropped++
			continue
		}
		seen[ts] = true
		samples = append(samples, Sample{Timestamp: ts, WindSpeedMS: obs.WindSpeedMS})
	}
	if dropped > 0 {
		klog.V(2).InfoS("Dropped unusable wind rows", "dropped", dropped, "kept", len(samples))
	}
	if len(samples) == 0 {
		return nil, fmt.Errorf("%w: no rows with parsable timestamps", common.ErrMalformedSeries)
	}

	sort.Slice(samples, func(i, j int) bool { return samples[i].Timestamp.Before(samples[j].Timestamp) })

	if err := joinDensity(samples, density); err != nil {
		return nil, err
	}

	for i := range samples {
		samples[i].PowerKW = PowerOutputKW(samples[i].WindSpeedMS, samples[i].AirDensityKgM3, preset)
		// Hourly sampling: kW over one hour is kWh.
		samples[i].EnergyKWh = samples[i].PowerKW
	}

	return samples, nil
}

func joinDensity(samples []Sample, density DensityInput) error {
	if density.isScalar {
		for i := range samples {
			samples[i].AirDensityKgM3 = density.scalar
		}
		return nil
	}

	if len(density.series) == 0 {
		return fmt.Errorf("%w: air density series is empty", common.ErrMalformedSeries)
	}

	ordered := make([]DensitySample, len(density.series))
	copy(ordered, density.series)
	sort.Slice(ordered, func(i, j int) bool { return ordered[i].Timestamp.Before(ordered[j].Timestamp) })

	exact := make(map[time.Time]float64, len(ordered))
	mean := 0.0
	for _, d := range ordered {
		exact[d.Timestamp] = d.AirDensityKgM3
		mean += d.AirDensityKgM3
	}
	mean /= float64(len(ordered))

	filled := 0
	for i := range samples {
		if rho, ok := exact[samples[i].Timestamp]; ok {
			samples[i].AirDensityKgM3 = rho
			continue
		}
		// Forward-fill from the most recent earlier density sample.
		idx := sort.Search(len(ordered), func(j int) bool {
			return ordered[j].Timestamp.After(samples[i].Timestamp)
		})
		if idx > 0 {
			samples[i].AirDensityKgM3 = ordered[idx-1].AirDensityKgM3
		} else {
			// Leading row before any density sample: mean-fill.
			samples[i].AirDensityKgM3 = mean
		}
		filled++
	}
	if filled > 0 {
		klog.V(3).InfoS("Filled air density gaps", "filled", filled, "meanDensity", mean)
	}

	return nil
}
