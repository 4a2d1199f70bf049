package pricefeed

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"sort"
	"time"

	"HeatPilot/internal/model"
)

// Provider fetches the hourly electricity price window for a bidding area.
type Provider interface {
	GetPriceWindow(ctx context.Context, area string, from, to time.Time) ([]model.HourPrice, error)
	Name() string
}

// HTTPProvider fetches prices from a JSON REST endpoint.
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

func (p *HTTPProvider) Name() string { return "http-prices" }

// apiPrice is the expected JSON shape from the price API.
type apiPrice struct {
	Timestamp int64   `json:"timestamp"`
	Price     float64 `json:"price"`
}

func (p *HTTPProvider) GetPriceWindow(ctx context.Context, area string, from, to time.Time) ([]model.HourPrice, error) {
	endpoint := fmt.Sprintf("%s/api/v1/prices?area=%s&from=%d&to=%d",
		p.BaseURL, url.QueryEscape(area), from.Unix(), to.Unix())
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}
	if p.APIKey != "" {
		req.Header.Set("Authorization", "Bearer "+p.APIKey)
	}
	resp, err := p.Client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch prices: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch prices: status %d", resp.StatusCode)
	}
	var raw []apiPrice
	if err := json.NewDecoder(resp.Body).Decode(&raw); err != nil {
		return nil, fmt.Errorf("decode prices: %w", err)
	}
	series := make([]model.HourPrice, len(raw))
	for i, r := range raw {
		series[i] = model.HourPrice{Hour: time.Unix(r.Timestamp, 0), Price: r.Price}
	}
	// Ensure chronological order
	sort.Slice(series, func(i, j int) bool { return series[i].Hour.Before(series[j].Hour) })
	return series, nil
}

// MockProvider returns controllable fixed data for development and testing.
type MockProvider struct {
	Series []model.HourPrice
	Err    error
}

func (m *MockProvider) Name() string { return "mock" }

func (m *MockProvider) GetPriceWindow(_ context.Context, _ string, _, _ time.Time) ([]model.HourPrice, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	return m.Series, nil
}
