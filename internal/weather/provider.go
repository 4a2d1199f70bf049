package weather

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"
)

// Provider fetches short-range forecasts. Retry and backoff policy belongs to
// the implementation, not the engine.
type Provider interface {
	GetForecast(ctx context.Context, lat, lon float64) (*Forecast, error)
	Name() string
}

// HTTPProvider fetches forecasts from a JSON REST endpoint.
type HTTPProvider struct {
	BaseURL string
	APIKey  string
	Client  *http.Client
}

// NewHTTPProvider creates a provider with optional proxy support.
func NewHTTPProvider(baseURL, apiKey, proxyURL string) *HTTPProvider {
	transport := &http.Transport{}
	if proxyURL != "" {
		if u, err := url.Parse(proxyURL); err == nil {
			transport.Proxy = http.ProxyURL(u)
		}
	}
	return &HTTPProvider{
		BaseURL: baseURL,
		APIKey:  apiKey,
		Client: &http.Client{
			Timeout:   30 * time.Second,
			Transport: transport,
		},
	}
}

func (p *HTTPProvider) Name() string { return "http-forecast" }

func (p *HTTPProvider) GetForecast(ctx context.Context, lat, lon float64) (*Forecast, error) {
	endpoint := fmt.Sprintf("%s/api/v1/forecast?lat=%.4f&lon=%.4f&hours=12", p.BaseURL, lat, lon)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}
	if p.APIKey != "" {
		req.Header.Set("Authorization", "Bearer "+p.APIKey)
	}
	resp, err := p.Client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch forecast: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch forecast: status %d", resp.StatusCode)
	}
	var fc Forecast
	if err := json.NewDecoder(resp.Body).Decode(&fc); err != nil {
		return nil, fmt.Errorf("decode forecast: %w", err)
	}
	return &fc, nil
}

// MockProvider returns controllable fixed data for development and testing.
type MockProvider struct {
	Forecast *Forecast
	Err      error
}

func (m *MockProvider) Name() string { return "mock" }

func (m *MockProvider) GetForecast(_ context.Context, _, _ float64) (*Forecast, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	if m.Forecast != nil {
		return m.Forecast, nil
	}
	return &Forecast{}, nil
}
