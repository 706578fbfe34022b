// Package windatlas implements the client for the hourly wind-speed
// time-series API, which serves CSV with a metadata first line.
package windatlas

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"k8s.io/klog/v2"

	"github.com/elevated-systems/renewable-assessor/pkg/assessor/common"
	"github.com/elevated-systems/renewable-assessor/pkg/assessor/config"
	"github.com/elevated-systems/renewable-assessor/pkg/assessor/wind"
)

// HTTPClient interface allows mocking http.Client in tests
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

// SeriesRequest identifies the wind series to fetch.
type SeriesRequest struct {
	Latitude  float64
	Longitude float64
	HeightM   int
	DateFrom  string // YYYY-MM-DD
	DateTo    string // YYYY-MM-DD
}

// Client fetches hourly wind-speed series.
type Client struct {
	cfg        config.WindAtlasConfig
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

// NewClient creates a new wind-series client
func NewClient(cfg config.WindAtlasConfig, opts ...ClientOption) *Client {
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

// GetWindSeries fetches the hourly wind-speed series for the request.
// Timestamps are passed through unparsed; the reconciliation decides which
// rows are usable.
func (c *Client) GetWindSeries(ctx context.Context, req SeriesRequest) ([]wind.RawObservation, error) {
	height := req.HeightM
	if height <= 0 {
		height = c.cfg.DefaultHeight
	}

	reqURL, err := url.Parse(c.cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("invalid API URL: %v", err)
	}
	q := reqURL.Query()
	q.Set("lat", strconv.FormatFloat(req.Latitude, 'f', -1, 64))
	q.Set("lon", strconv.FormatFloat(req.Longitude, 'f', -1, 64))
	q.Set("height", strconv.Itoa(height))
	q.Set("date_from", req.DateFrom)
	q.Set("date_to", req.DateTo)
	q.Set("format", "csv")
	reqURL.RawQuery = q.Encode()

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %v", err)
	}

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("request failed: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}

	series, err := ParseSeriesCSV(resp.Body)
	if err != nil {
		return nil, err
	}

	klog.V(2).InfoS("Fetched wind series",
		"lat", req.Latitude, "lon", req.Longitude,
		"height", height,
		"rows", len(series))

	return series, nil
}

// ParseSeriesCSV parses the provider's CSV payload. The first line is
// metadata and is skipped; the second line is the header, which must
// contain datetime and wind_speed columns.
func ParseSeriesCSV(r io.Reader) ([]wind.RawObservation, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	// Metadata line.
	if _, err := reader.Read(); err != nil {
		return nil, fmt.Errorf("%w: empty response", common.ErrMalformedSeries)
	}

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("%w: missing header row", common.ErrMalformedSeries)
	}

	timeCol, speedCol := -1, -1
	for i, name := range header {
		switch strings.TrimSpace(strings.ToLower(name)) {
		case "datetime", "time":
			timeCol = i
		case "wind_speed", "windspeed":
			speedCol = i
		}
	}
	if timeCol < 0 || speedCol < 0 {
		return nil, fmt.Errorf("%w: required columns not found in header %v", common.ErrMalformedSeries, header)
	}

	var series []wind.RawObservation
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			// Skip structurally broken rows; the reconciliation
			// drops semantically broken ones.
			continue
		}
		if len(record) <= timeCol || len(record) <= speedCol {
			continue
		}
		speed, err := strconv.ParseFloat(strings.TrimSpace(record[speedCol]), 64)
		if err != nil {
			continue
		}
		series = append(series, wind.RawObservation{
			Timestamp:   strings.TrimSpace(record[timeCol]),
			WindSpeedMS: speed,
		})
	}

	if len(series) == 0 {
		return nil, fmt.Errorf("%w: no data rows", common.ErrMalformedSeries)
	}

	return series, nil
}
