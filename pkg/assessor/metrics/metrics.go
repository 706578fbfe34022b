// Package metrics defines the Prometheus collectors exposed by the
// assessor. All collectors are registered on the default registry at init.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "renewable_assessor"

var (
	// ProviderRequests counts outbound provider requests by result
	ProviderRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "provider_requests_total",
			Help:      "Number of upstream provider requests by provider and result",
		},
		[]string{"provider", "result"}, // result: "success", "error"
	)

	// FallbackSubstitutions counts how often degraded upstream data was
	// replaced by the fixed defaults
	FallbackSubstitutions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "fallback_substitutions_total",
			Help:      "Number of default-value substitutions by data source",
		},
		[]string{"source"}, // "utility_rates", "carbon_intensity"
	)

	// AssessmentDuration measures end-to-end assessment latency
	AssessmentDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "assessment_duration_seconds",
			Help:      "Latency of assessment computations by kind",
			Buckets:   prometheus.ExponentialBuckets(0.001, 2, 15),
		},
		[]string{"kind"}, // "solar", "wind"
	)

	// CarbonIntensityGauge records the most recent carbon intensity used
	// in an assessment
	CarbonIntensityGauge = promauto.NewGauge(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "carbon_intensity_gco2_kwh",
			Help:      "Most recent carbon intensity (gCO2eq/kWh) used in an assessment",
		},
	)

	// AssessmentsServed counts completed assessments by kind and whether
	// they were computed fresh or reused from the store
	AssessmentsServed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "assessments_served_total",
			Help:      "Number of assessments served by kind and origin",
		},
		[]string{"kind", "origin"}, // origin: "computed", "reused"
	)
)
