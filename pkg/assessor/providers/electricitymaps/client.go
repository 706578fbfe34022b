// Package electricitymaps implements the carbon-intensity provider client.
package electricitymaps

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"k8s.io/klog/v2"

	"github.com/elevated-systems/renewable-assessor/pkg/assessor/config"
)

// HTTPClient interface allows mocking http.Client in tests
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

// CarbonIntensityData represents the provider response
type CarbonIntensityData struct {
	CarbonIntensity float64   `json:"carbonIntensity"` // gCO2eq/kWh
	Zone            string    `json:"zone"`
	Timestamp       time.Time `json:"datetime"`
}

// CacheInterface is the seam for the TTL cache backing the client
type CacheInterface interface {
	Get(key string) (*CarbonIntensityData, bool)
	Set(key string, data *CarbonIntensityData)
}

// Client handles interactions with the ElectricityMaps API
type Client struct {
	cfg         config.ElectricityMapsConfig
	httpClient  HTTPClient
	rateLimiter *time.Ticker
	cache       CacheInterface
}

// ClientOption allows customizing the client
type ClientOption func(*Client)

// WithHTTPClient allows injecting a custom HTTP client
func WithHTTPClient(client HTTPClient) ClientOption {
	return func(c *Client) {
		c.httpClient = client
	}
}

// WithCache adds a cache to the client
func WithCache(cache CacheInterface) ClientOption {
	return func(c *Client) {
		c.cache = cache
	}
}

// NewClient creates a new carbon-intensity client
func NewClient(cfg config.ElectricityMapsConfig, opts ...ClientOption) *Client {
	rateLimit := cfg.RateLimit
	if rateLimit <= 0 {
		rateLimit = 1
	}
	client := &Client{
		cfg: cfg,
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
		},
		rateLimiter: time.NewTicker(time.Second / time.Duration(rateLimit)),
	}

	for _, opt := range opts {
		opt(client)
	}

	return client
}

func cacheKey(lat, lon float64) string {
	return fmt.Sprintf("%.4f,%.4f", lat, lon)
}

// GetCarbonIntensity fetches the latest carbon intensity for a location,
// retrying transient failures with exponential backoff.
func (c *Client) GetCarbonIntensity(ctx context.Context, lat, lon float64) (*CarbonIntensityData, error) {
	if c.cache != nil {
		if data, fresh := c.cache.Get(cacheKey(lat, lon)); fresh {
			klog.V(2).InfoS("Using cached carbon intensity data",
				"lat", lat, "lon", lon,
				"intensity", data.CarbonIntensity)
			return data, nil
		}
	}

	var lastErr error
	for attempt := 0; attempt <= c.cfg.MaxRetries; attempt++ {
		select {
		case <-ctx.Done():
			return nil, fmt.Errorf("context cancelled: %v", ctx.Err())
		case <-c.rateLimiter.C:
			data, err := c.doRequest(ctx, lat, lon)
			if err == nil {
				if c.cache != nil {
					c.cache.Set(cacheKey(lat, lon), data)
				}
				return data, nil
			}
			lastErr = err
			klog.V(2).InfoS("Carbon API request failed, retrying",
				"attempt", attempt+1,
				"maxRetries", c.cfg.MaxRetries,
				"error", err)

			backoff := c.getBackoffDuration(attempt)
			timer := time.NewTimer(backoff)
			select {
			case <-ctx.Done():
				timer.Stop()
				return nil, fmt.Errorf("context cancelled during backoff: %v", ctx.Err())
			case <-timer.C:
				continue
			}
		}
	}
	return nil, fmt.Errorf("all retries failed: %v", lastErr)
}

func (c *Client) doRequest(ctx context.Context, lat, lon float64) (*CarbonIntensityData, error) {
	reqURL, err := url.Parse(c.cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("invalid API URL: %v", err)
	}
	q := reqURL.Query()
	q.Set("lat", fmt.Sprintf("%f", lat))
	q.Set("lon", fmt.Sprintf("%f", lon))
	reqURL.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %v", err)
	}

	req.Header.Set("auth-token", c.cfg.APIKey)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %v", err)
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
		// Continue processing
	case http.StatusTooManyRequests:
		return nil, fmt.Errorf("rate limit exceeded")
	case http.StatusUnauthorized:
		return nil, fmt.Errorf("invalid API key")
	case http.StatusNotFound:
		return nil, fmt.Errorf("no carbon data for location %.4f,%.4f", lat, lon)
	default:
		return nil, fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}

	var data CarbonIntensityData
	if err := json.NewDecoder(resp.Body).Decode(&data); err != nil {
		return nil, fmt.Errorf("failed to decode response: %v", err)
	}

	if data.CarbonIntensity < 0 {
		return nil, fmt.Errorf("invalid carbon intensity value: %f", data.CarbonIntensity)
	}

	if data.Timestamp.IsZero() {
		data.Timestamp = time.Now()
	}

	return &data, nil
}

func (c *Client) getBackoffDuration(attempt int) time.Duration {
	backoff := c.cfg.RetryDelay * time.Duration(1<<uint(attempt))
	maxBackoff := 1 * time.Minute
	if backoff > maxBackoff {
		backoff = maxBackoff
	}

	// Add jitter (±20%)
	jitter := time.Duration(float64(backoff) * (0.8 + 0.4*float64(time.Now().UnixNano()%100)/100.0))
	return jitter
}

// Close cleans up client resources
func (c *Client) Close() {
	if c.rateLimiter != nil {
		c.rateLimiter.Stop()
	}
}
