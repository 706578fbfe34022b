// Package nrel implements clients for the NREL PVWatts photovoltaic
// simulation API and the NREL utility-rates API.
package nrel

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"k8s.io/klog/v2"

	"github.com/elevated-systems/renewable-assessor/pkg/assessor/common"
	"github.com/elevated-systems/renewable-assessor/pkg/assessor/config"
)

// HTTPClient interface allows mocking http.Client in tests
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

// PVWattsRequest carries the system specification sent to PVWatts.
type PVWattsRequest struct {
	SystemCapacityKW float64
	ModuleType       int
	LossesPct        float64
	ArrayType        int
	TiltDeg          float64
	AzimuthDeg       float64
	Latitude         float64
	Longitude        float64
}

// Client handles interactions with the NREL APIs.
type Client struct {
	cfg        config.NRELAPIConfig
	httpClient HTTPClient
}

// ClientOption allows customizing the client
type ClientOption func(*Client)

// WithHTTPClient allows injecting a custom HTTP client
func WithHTTPClient(client HTTPClient) ClientOption {
	return func(c *Client) {
		c.httpClient = client
	}
}

// NewClient creates a new NREL client
func NewClient(cfg config.NRELAPIConfig, opts ...ClientOption) *Client {
	client := &Client{
		cfg: cfg,
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
		},
	}
	for _, opt := range opts {
		opt(client)
	}
	return client
}

// GetPVWattsData fetches solar potential data for the given system spec.
// A response without an outputs block fails with common.ErrIncompleteData.
func (c *Client) GetPVWattsData(ctx context.Context, req PVWattsRequest) (*PVWattsOutput, error) {
	params := url.Values{}
	params.Set("format", "json")
	params.Set("api_key", c.cfg.APIKey)
	params.Set("system_capacity", strconv.FormatFloat(req.SystemCapacityKW, 'f', -1, 64))
	params.Set("module_type", strconv.Itoa(req.ModuleType))
	params.Set("losses", strconv.FormatFloat(req.LossesPct, 'f', -1, 64))
	params.Set("array_type", strconv.Itoa(req.ArrayType))
	params.Set("tilt", strconv.FormatFloat(req.TiltDeg, 'f', -1, 64))
	params.Set("azimuth", strconv.FormatFloat(req.AzimuthDeg, 'f', -1, 64))
	params.Set("lat", strconv.FormatFloat(req.Latitude, 'f', -1, 64))
	params.Set("lon", strconv.FormatFloat(req.Longitude, 'f', -1, 64))

	var resp pvwattsResponse
	if err := c.getJSON(ctx, c.cfg.PVWattsURL, params, &resp); err != nil {
		return nil, fmt.Errorf("pvwatts request failed: %w", err)
	}
	if len(resp.Errors) > 0 {
		return nil, fmt.Errorf("pvwatts API errors: %v", resp.Errors)
	}
	if resp.Outputs == nil {
		return nil, fmt.Errorf("%w: pvwatts output block missing", common.ErrIncompleteData)
	}

	out := &PVWattsOutput{
		ACAnnualKWh:          resp.Outputs.ACAnnual.Value,
		SolradAnnualKWhM2Day: resp.Outputs.SolradAnnual.Value,
		CapacityFactorPct:    resp.Outputs.CapacityFactor.Value,
	}

	klog.V(3).InfoS("Fetched PVWatts data",
		"lat", req.Latitude, "lon", req.Longitude,
		"hasACAnnual", out.ACAnnualKWh != nil,
		"hasSolrad", out.SolradAnnualKWhM2Day != nil)

	return out, nil
}

// GetUtilityRates fetches utility rates for a location. Missing or
// sentinel-valued rates come back as nil fields; the defaulting policy
// decides what to do with them.
func (c *Client) GetUtilityRates(ctx context.Context, lat, lon float64) (*UtilityRatesOutput, error) {
	params := url.Values{}
	params.Set("format", "json")
	params.Set("api_key", c.cfg.APIKey)
	params.Set("lat", strconv.FormatFloat(lat, 'f', -1, 64))
	params.Set("lon", strconv.FormatFloat(lon, 'f', -1, 64))

	var resp utilityRatesResponse
	if err := c.getJSON(ctx, c.cfg.UtilityRatesURL, params, &resp); err != nil {
		return nil, fmt.Errorf("utility rates request failed: %w", err)
	}
	if len(resp.Errors) > 0 {
		return nil, fmt.Errorf("utility rates API errors: %v", resp.Errors)
	}
	if resp.Outputs == nil {
		return nil, fmt.Errorf("utility rates output block missing")
	}

	return &UtilityRatesOutput{
		UtilityName: resp.Outputs.UtilityName,
		Residential: resp.Outputs.Residential.Value,
		Commercial:  resp.Outputs.Commercial.Value,
		Industrial:  resp.Outputs.Industrial.Value,
	}, nil
}

func (c *Client) getJSON(ctx context.Context, baseURL string, params url.Values, out interface{}) error {
	reqURL, err := url.Parse(baseURL)
	if err != nil {
		return fmt.Errorf("invalid URL: %v", err)
	}
	reqURL.RawQuery = params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL.String(), nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %v", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response: %v", err)
	}
	return nil
}
