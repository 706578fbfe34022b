package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"k8s.io/klog/v2"

	"github.com/elevated-systems/renewable-assessor/pkg/assessor/assessment"
	"github.com/elevated-systems/renewable-assessor/pkg/assessor/common"
	"github.com/elevated-systems/renewable-assessor/pkg/assessor/metrics"
	"github.com/elevated-systems/renewable-assessor/pkg/assessor/providers/nrel"
	"github.com/elevated-systems/renewable-assessor/pkg/assessor/providers/windatlas"
	"github.com/elevated-systems/renewable-assessor/pkg/assessor/store"
	"github.com/elevated-systems/renewable-assessor/pkg/assessor/wind"
)

// Sea-level air density applied when the caller supplies no meteorology.
const standardAirDensityKgM3 = 1.225

// WindAssessmentRequest is the body of POST /api/wind_assessment. Mode is
// "simple" (default) or "conservative".
type WindAssessmentRequest struct {
	Latitude       float64 `json:"latitude"`
	Longitude      float64 `json:"longitude"`
	HeightM        int     `json:"height"`
	DateFrom       string  `json:"date_from"`
	DateTo         string  `json:"date_to"`
	TurbinePreset  string  `json:"turbine_preset"`
	Mode           string  `json:"mode"`
	EnergyPriceUSD float64 `json:"energy_price"`
	MeanAirDensity float64 `json:"mean_air_density"`
}

// RecentAssessment is one row of GET /api/assessments/recent.
type RecentAssessment struct {
	ID        int64           `json:"id"`
	Kind      string          `json:"kind"`
	Latitude  float64         `json:"latitude"`
	Longitude float64         `json:"longitude"`
	CreatedAt time.Time       `json:"created_at"`
	Result    json.RawMessage `json:"result"`
}

func (s *Server) handleHealthz(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (s *Server) handleSolarAssessment(c *gin.Context) {
	var spec assessment.SolarSystemSpec
	if err := c.ShouldBindJSON(&spec); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body: " + err.Error()})
		return
	}

	lat, lon := spec.Location.Latitude, spec.Location.Longitude
	if reused := s.serveReused(c, store.KindSolar, lat, lon); reused {
		return
	}

	start := time.Now()
	ctx := c.Request.Context()

	pvOut, err := s.pv.GetPVWattsData(ctx, nrel.PVWattsRequest{
		SystemCapacityKW: spec.CapacityKW,
		ModuleType:       spec.ModuleType,
		LossesPct:        spec.LossesPct,
		ArrayType:        spec.ArrayType,
		TiltDeg:          spec.TiltDeg,
		AzimuthDeg:       spec.AzimuthDeg,
		Latitude:         lat,
		Longitude:        lon,
	})
	observeProvider("pvwatts", err)
	if err != nil {
		// The PV estimate is the backbone of the assessment; there is
		// no defaulting path for it.
		klog.ErrorS(err, "PVWatts request failed", "lat", lat, "lon", lon)
		c.JSON(statusForError(err), gin.H{"error": "photovoltaic data unavailable"})
		return
	}

	ratesOut, ratesErr := s.pv.GetUtilityRates(ctx, lat, lon)
	observeProvider("utility_rates", ratesErr)
	var rawRates *assessment.RawUtilityRates
	if ratesOut != nil {
		rawRates = &assessment.RawUtilityRates{
			UtilityName: ratesOut.UtilityName,
			Residential: ratesOut.Residential,
			Commercial:  ratesOut.Commercial,
			Industrial:  ratesOut.Industrial,
		}
	}
	rates, ratesDegraded := assessment.ResolveUtilityRates(rawRates, ratesErr)

	carbonOut, carbonErr := s.carbon.GetCarbonIntensity(ctx, lat, lon)
	observeProvider("electricity_maps", carbonErr)
	var carbonValue *float64
	if carbonOut != nil {
		carbonValue = &carbonOut.CarbonIntensity
	}
	carbon, carbonDegraded := assessment.ResolveCarbonIntensity(carbonValue, carbonErr)
	metrics.CarbonIntensityGauge.Set(carbon)

	result, err := assessment.ComputeSolar(assessment.PVEstimate(*pvOut), spec, rates, carbon, assessment.SolarAssumptions{
		PanelEfficiency: s.cfg.Solar.PanelEfficiency,
		CostPerKWUSD:    s.cfg.Solar.CostPerKWUSD,
	})
	if err != nil {
		c.JSON(statusForError(err), gin.H{"error": err.Error()})
		return
	}
	result.DegradedData = ratesDegraded || carbonDegraded

	metrics.AssessmentDuration.WithLabelValues("solar").Observe(time.Since(start).Seconds())
	metrics.AssessmentsServed.WithLabelValues("solar", "computed").Inc()

	if err := s.store.Save(store.KindSolar, lat, lon, result); err != nil {
		klog.ErrorS(err, "Failed to persist solar assessment")
	}

	c.JSON(http.StatusOK, result)
}

func (s *Server) handleWindAssessment(c *gin.Context) {
	var req WindAssessmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body: " + err.Error()})
		return
	}

	preset, err := s.cfg.Wind.Preset(req.TurbinePreset)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	mode := req.Mode
	if mode == "" {
		mode = "simple"
	}
	if mode != "simple" && mode != "conservative" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "mode must be simple or conservative"})
		return
	}

	if reused := s.serveReused(c, store.KindWind, req.Latitude, req.Longitude); reused {
		return
	}

	start := time.Now()
	series, err := s.wind.GetWindSeries(c.Request.Context(), windatlas.SeriesRequest{
		Latitude:  req.Latitude,
		Longitude: req.Longitude,
		HeightM:   req.HeightM,
		DateFrom:  req.DateFrom,
		DateTo:    req.DateTo,
	})
	observeProvider("windatlas", err)
	if err != nil {
		klog.ErrorS(err, "Wind series request failed", "lat", req.Latitude, "lon", req.Longitude)
		c.JSON(statusForError(err), gin.H{"error": "wind series unavailable"})
		return
	}

	density := wind.ScalarDensity(standardAirDensityKgM3)
	if req.MeanAirDensity > 0 {
		density = wind.ScalarDensity(req.MeanAirDensity)
	}
	price := req.EnergyPriceUSD
	if price <= 0 {
		price = common.DefaultResidentialRate
	}

	var result assessment.WindAssessment
	if mode == "conservative" {
		result, err = assessment.ComputeWindConservative(series, density, preset,
			price, s.cfg.Wind.InstallationCostUSD, wind.DefaultConservativeBounds)
	} else {
		result, err = assessment.ComputeWindSimple(series, density, preset, price)
	}
	if err != nil {
		c.JSON(statusForError(err), gin.H{"error": err.Error()})
		return
	}

	metrics.AssessmentDuration.WithLabelValues("wind").Observe(time.Since(start).Seconds())
	metrics.AssessmentsServed.WithLabelValues("wind", "computed").Inc()

	if err := s.store.Save(store.KindWind, req.Latitude, req.Longitude, result); err != nil {
		klog.ErrorS(err, "Failed to persist wind assessment")
	}

	c.JSON(http.StatusOK, result)
}

func (s *Server) handleRecentAssessments(c *gin.Context) {
	limit := 20
	if raw := c.Query("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "limit must be a positive integer"})
			return
		}
		limit = parsed
	}

	records, err := s.store.Latest(limit)
	if err != nil {
		klog.ErrorS(err, "Failed to load recent assessments")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load assessments"})
		return
	}

	out := make([]RecentAssessment, 0, len(records))
	for _, rec := range records {
		out = append(out, RecentAssessment{
			ID:        rec.ID,
			Kind:      rec.Kind,
			Latitude:  rec.Latitude,
			Longitude: rec.Longitude,
			CreatedAt: rec.CreatedAt,
			Result:    rec.Payload,
		})
	}
	c.JSON(http.StatusOK, gin.H{"assessments": out})
}

// serveReused answers from the store when a recent assessment of the same
// kind exists near the requested location. Returns true when it responded.
func (s *Server) serveReused(c *gin.Context, kind string, lat, lon float64) bool {
	if s.cfg.Store.ReuseRadiusKm <= 0 {
		return false
	}
	rec, found, err := s.store.Nearby(kind, lat, lon, s.cfg.Store.ReuseRadiusKm, s.cfg.Store.ReuseMaxAge)
	if err != nil {
		klog.ErrorS(err, "Store lookup failed", "kind", kind)
		return false
	}
	if !found {
		return false
	}
	metrics.AssessmentsServed.WithLabelValues(kind, "reused").Inc()
	c.Data(http.StatusOK, "application/json", rec.Payload)
	return true
}

func observeProvider(provider string, err error) {
	result := "success"
	if err != nil {
		result = "error"
	}
	metrics.ProviderRequests.WithLabelValues(provider, result).Inc()
}

// statusForError maps the pipeline error kinds to HTTP statuses. Caller
// mistakes are 400s; upstream shortfalls are 502s.
func statusForError(err error) int {
	switch {
	case errors.Is(err, common.ErrInvalidInput), errors.Is(err, common.ErrMalformedSeries):
		return http.StatusBadRequest
	case errors.Is(err, common.ErrIncompleteData):
		return http.StatusBadGateway
	default:
		return http.StatusBadGateway
	}
}
