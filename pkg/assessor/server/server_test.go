package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/elevated-systems/renewable-assessor/pkg/assessor/assessment"
	"github.com/elevated-systems/renewable-assessor/pkg/assessor/common"
	"github.com/elevated-systems/renewable-assessor/pkg/assessor/config"
	"github.com/elevated-systems/renewable-assessor/pkg/assessor/providers/electricitymaps"
	"github.com/elevated-systems/renewable-assessor/pkg/assessor/providers/nrel"
	"github.com/elevated-systems/renewable-assessor/pkg/assessor/providers/windatlas"
	"github.com/elevated-systems/renewable-assessor/pkg/assessor/store"
	"github.com/elevated-systems/renewable-assessor/pkg/assessor/wind"
)

func f(v float64) *float64 { return &v }

type stubPVProvider struct {
	pvOut    *nrel.PVWattsOutput
	pvErr    error
	rates    *nrel.UtilityRatesOutput
	ratesErr error
}

func (s *stubPVProvider) GetPVWattsData(ctx context.Context, req nrel.PVWattsRequest) (*nrel.PVWattsOutput, error) {
	return s.pvOut, s.pvErr
}

func (s *stubPVProvider) GetUtilityRates(ctx context.Context, lat, lon float64) (*nrel.UtilityRatesOutput, error) {
	return s.rates, s.ratesErr
}

type stubCarbonProvider struct {
	data *electricitymaps.CarbonIntensityData
	err  error
}

func (s *stubCarbonProvider) GetCarbonIntensity(ctx context.Context, lat, lon float64) (*electricitymaps.CarbonIntensityData, error) {
	return s.data, s.err
}

type stubWindProvider struct {
	series []wind.RawObservation
	err    error
}

func (s *stubWindProvider) GetWindSeries(ctx context.Context, req windatlas.SeriesRequest) ([]wind.RawObservation, error) {
	return s.series, s.err
}

type memStore struct {
	saved  []store.Record
	nearby *store.Record
}

func (m *memStore) Save(kind string, lat, lon float64, result interface{}) error {
	payload, err := json.Marshal(result)
	if err != nil {
		return err
	}
	m.saved = append(m.saved, store.Record{
		ID:        int64(len(m.saved) + 1),
		Kind:      kind,
		Latitude:  lat,
		Longitude: lon,
		Payload:   payload,
		CreatedAt: time.Now().UTC(),
	})
	return nil
}

func (m *memStore) Nearby(kind string, lat, lon, radiusKm float64, maxAge time.Duration) (*store.Record, bool, error) {
	if m.nearby != nil && m.nearby.Kind == kind {
		return m.nearby, true, nil
	}
	return nil, false, nil
}

func (m *memStore) Latest(limit int) ([]store.Record, error) {
	if limit > len(m.saved) {
		limit = len(m.saved)
	}
	out := make([]store.Record, limit)
	copy(out, m.saved[len(m.saved)-limit:])
	return out, nil
}

func testServerConfig() config.Config {
	return config.Config{
		Solar: config.SolarConfig{
			PanelEfficiency: common.DefaultPanelEfficiency,
			CostPerKWUSD:    common.DefaultCostPerKW,
		},
		Wind: config.WindConfig{
			DefaultPreset:       wind.ResidentialTurbine.Name,
			InstallationCostUSD: common.DefaultWindInstallationCost,
		},
		Store: config.StoreConfig{
			ReuseRadiusKm: 50,
			ReuseMaxAge:   24 * time.Hour,
		},
		Server: config.ServerConfig{
			Port:           8000,
			AllowedOrigins: []string{"http://localhost:5173"},
			MetricsEnabled: true,
		},
	}
}

func goodPV() *stubPVProvider {
	return &stubPVProvider{
		pvOut: &nrel.PVWattsOutput{
			ACAnnualKWh:          f(8000),
			SolradAnnualKWhM2Day: f(5),
			CapacityFactorPct:    f(18.5),
		},
		rates: &nrel.UtilityRatesOutput{
			UtilityName: "Con Edison",
			Residential: f(0.25),
			Commercial:  f(0.22),
			Industrial:  f(0.18),
		},
	}
}

func goodCarbon() *stubCarbonProvider {
	return &stubCarbonProvider{
		data: &electricitymaps.CarbonIntensityData{CarbonIntensity: 400, Zone: "US-NY-NYIS"},
	}
}

func hourlyWind(count int, speedMS float64) *stubWindProvider {
	base := time.Date(2019, 1, 1, 0, 0, 0, 0, time.UTC)
	series := make([]wind.RawObservation, count)
	for i := range series {
		series[i] = wind.RawObservation{
			Timestamp:   base.Add(time.Duration(i) * time.Hour).Format(time.RFC3339),
			WindSpeedMS: speedMS,
		}
	}
	return &stubWindProvider{series: series}
}

func newTestServer(pv PVProvider, carbon CarbonProvider, wp WindProvider, st AssessmentStore) *Server {
	return New(testServerConfig(), pv, carbon, wp, st)
}

const solarBody = `{
	"system_capacity": 4,
	"module_type": 0,
	"losses": 14,
	"array_type": 1,
	"tilt": 10,
	"azimuth": 180,
	"location": {"latitude": 40.7128, "longitude": -74.0060}
}`

func doRequest(t *testing.T, s *Server, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	return rec
}

func TestSolarAssessmentSuccess(t *testing.T) {
	st := &memStore{}
	s := newTestServer(goodPV(), goodCarbon(), hourlyWind(1, 5), st)

	rec := doRequest(t, s, http.MethodPost, "/api/solar_assessment", solarBody)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var result assessment.SolarAssessment
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &result))
	assert.Equal(t, 8000.0, result.ACAnnualKWh)
	assert.InDelta(t, 8000*0.25, result.AnnualCostSavingsUSD, 1e-9)
	assert.InDelta(t, 8000*0.4, result.CO2ReductionKg, 1e-9)
	assert.False(t, result.DegradedData)

	require.Len(t, st.saved, 1)
	assert.Equal(t, store.KindSolar, st.saved[0].Kind)
}

func TestSolarAssessmentDegradedRates(t *testing.T) {
	pv := goodPV()
	pv.rates = nil
	pv.ratesErr = errors.New("rate service down")

	s := newTestServer(pv, goodCarbon(), hourlyWind(1, 5), &memStore{})
	rec := doRequest(t, s, http.MethodPost, "/api/solar_assessment", solarBody)
	require.Equal(t, http.StatusOK, rec.Code)

	var result assessment.SolarAssessment
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &result))
	assert.True(t, result.DegradedData)
	assert.InDelta(t, 8000*common.DefaultResidentialRate, result.AnnualCostSavingsUSD, 1e-9)
}

func TestSolarAssessmentDegradedCarbon(t *testing.T) {
	carbon := &stubCarbonProvider{err: errors.New("carbon service down")}

	s := newTestServer(goodPV(), carbon, hourlyWind(1, 5), &memStore{})
	rec := doRequest(t, s, http.MethodPost, "/api/solar_assessment", solarBody)
	require.Equal(t, http.StatusOK, rec.Code)

	var result assessment.SolarAssessment
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &result))
	assert.True(t, result.DegradedData)
	assert.InDelta(t, 8000*common.DefaultCarbonIntensity/1000, result.CO2ReductionKg, 1e-9)
}

func TestSolarAssessmentPVUnavailable(t *testing.T) {
	pv := goodPV()
	pv.pvOut = nil
	pv.pvErr = errors.New("pvwatts down")

	s := newTestServer(pv, goodCarbon(), hourlyWind(1, 5), &memStore{})
	rec := doRequest(t, s, http.MethodPost, "/api/solar_assessment", solarBody)
	assert.Equal(t, http.StatusBadGateway, rec.Code)
}

func TestSolarAssessmentMissingPVField(t *testing.T) {
	pv := goodPV()
	pv.pvOut.ACAnnualKWh = nil

	s := newTestServer(pv, goodCarbon(), hourlyWind(1, 5), &memStore{})
	rec := doRequest(t, s, http.MethodPost, "/api/solar_assessment", solarBody)
	assert.Equal(t, http.StatusBadGateway, rec.Code)
}

func TestSolarAssessmentInvalidLosses(t *testing.T) {
	body := strings.Replace(solarBody, `"losses": 14`, `"losses": 120`, 1)

	s := newTestServer(goodPV(), goodCarbon(), hourlyWind(1, 5), &memStore{})
	rec := doRequest(t, s, http.MethodPost, "/api/solar_assessment", body)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestSolarAssessmentBadBody(t *testing.T) {
	s := newTestServer(goodPV(), goodCarbon(), hourlyWind(1, 5), &memStore{})
	rec := doRequest(t, s, http.MethodPost, "/api/solar_assessment", `{"losses": "many"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestSolarAssessmentReused(t *testing.T) {
	stored := assessment.SolarAssessment{ACAnnualKWh: 7777}
	payload, err := json.Marshal(stored)
	require.NoError(t, err)
	st := &memStore{nearby: &store.Record{Kind: store.KindSolar, Payload: payload}}

	pv := &stubPVProvider{pvErr: errors.New("must not be called")}
	s := newTestServer(pv, goodCarbon(), hourlyWind(1, 5), st)

	rec := doRequest(t, s, http.MethodPost, "/api/solar_assessment", solarBody)
	require.Equal(t, http.StatusOK, rec.Code)

	var result assessment.SolarAssessment
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &result))
	assert.Equal(t, 7777.0, result.ACAnnualKWh)
	assert.Empty(t, st.saved, "reused result must not be re-saved")
}

const windBody = `{
	"latitude": 51.626,
	"longitude": 1.496,
	"height": 100,
	"date_from": "2019-01-01",
	"date_to": "2019-01-31",
	"energy_price": 0.10
}`

func TestWindAssessmentSimple(t *testing.T) {
	st := &memStore{}
	// 730 hourly rows at 10 m/s on the residential preset: 8.25 kW each.
	s := newTestServer(goodPV(), goodCarbon(), hourlyWind(730, 10), st)

	rec := doRequest(t, s, http.MethodPost, "/api/wind_assessment", windBody)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var result assessment.WindAssessment
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &result))
	assert.InDelta(t, 730*8.25, result.TotalEnergyKWh, 730*0.01)
	assert.Nil(t, result.PaybackPeriodYears)
	assert.Nil(t, result.CO2ReductionKg)
	assert.NotEmpty(t, result.Message)

	require.Len(t, st.saved, 1)
	assert.Equal(t, store.KindWind, st.saved[0].Kind)
}

func TestWindAssessmentConservative(t *testing.T) {
	body := strings.Replace(windBody, `"energy_price": 0.10`, `"energy_price": 0.10, "mode": "conservative"`, 1)
	s := newTestServer(goodPV(), goodCarbon(), hourlyWind(730, 10), &memStore{})

	rec := doRequest(t, s, http.MethodPost, "/api/wind_assessment", body)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var result assessment.WindAssessment
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &result))
	// Annualized energy is clamped to the conservative ceiling.
	assert.Equal(t, 20000.0, result.TotalEnergyKWh)
	require.NotNil(t, result.PaybackPeriodYears)
	assert.InDelta(t, 25000.0/2000.0, *result.PaybackPeriodYears, 1e-9)
	require.NotNil(t, result.CO2ReductionKg)
	assert.InDelta(t, 20000*common.WindEmissionsFactor, *result.CO2ReductionKg, 1e-9)
}

func TestWindAssessmentUnknownMode(t *testing.T) {
	body := strings.Replace(windBody, `"energy_price": 0.10`, `"energy_price": 0.10, "mode": "optimistic"`, 1)
	s := newTestServer(goodPV(), goodCarbon(), hourlyWind(10, 10), &memStore{})

	rec := doRequest(t, s, http.MethodPost, "/api/wind_assessment", body)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestWindAssessmentUnknownPreset(t *testing.T) {
	body := strings.Replace(windBody, `"energy_price": 0.10`, `"energy_price": 0.10, "turbine_preset": "offshore-20mw"`, 1)
	s := newTestServer(goodPV(), goodCarbon(), hourlyWind(10, 10), &memStore{})

	rec := doRequest(t, s, http.MethodPost, "/api/wind_assessment", body)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestWindAssessmentProviderDown(t *testing.T) {
	wp := &stubWindProvider{err: errors.New("windatlas down")}
	s := newTestServer(goodPV(), goodCarbon(), wp, &memStore{})

	rec := doRequest(t, s, http.MethodPost, "/api/wind_assessment", windBody)
	assert.Equal(t, http.StatusBadGateway, rec.Code)
}

func TestWindAssessmentMalformedSeries(t *testing.T) {
	wp := &stubWindProvider{series: []wind.RawObservation{
		{Timestamp: "not-a-timestamp", WindSpeedMS: 7},
	}}
	s := newTestServer(goodPV(), goodCarbon(), wp, &memStore{})

	rec := doRequest(t, s, http.MethodPost, "/api/wind_assessment", windBody)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestRecentAssessments(t *testing.T) {
	st := &memStore{}
	require.NoError(t, st.Save(store.KindSolar, 1, 2, assessment.SolarAssessment{ACAnnualKWh: 8000}))
	require.NoError(t, st.Save(store.KindWind, 3, 4, assessment.WindAssessment{TotalEnergyKWh: 18000}))

	s := newTestServer(goodPV(), goodCarbon(), hourlyWind(1, 5), st)
	rec := doRequest(t, s, http.MethodGet, "/api/assessments/recent", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var out struct {
		Assessments []RecentAssessment `json:"assessments"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	assert.Len(t, out.Assessments, 2)
}

func TestRecentAssessmentsBadLimit(t *testing.T) {
	s := newTestServer(goodPV(), goodCarbon(), hourlyWind(1, 5), &memStore{})
	rec := doRequest(t, s, http.MethodGet, "/api/assessments/recent?limit=-3", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHealthz(t *testing.T) {
	s := newTestServer(goodPV(), goodCarbon(), hourlyWind(1, 5), &memStore{})
	rec := doRequest(t, s, http.MethodGet, "/healthz", "")
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestCORSAllowedOrigin(t *testing.T) {
	s := newTestServer(goodPV(), goodCarbon(), hourlyWind(1, 5), &memStore{})

	req := httptest.NewRequest(http.MethodOptions, "/api/assessments/recent", nil)
	req.Header.Set("Origin", "http://localhost:5173")
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "http://localhost:5173", rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestCORSDisallowedOrigin(t *testing.T) {
	s := newTestServer(goodPV(), goodCarbon(), hourlyWind(1, 5), &memStore{})

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	req.Header.Set("Origin", "http://evil.example")
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)

	assert.Empty(t, rec.Header().Get("Access-Control-Allow-Origin"))
}
