package device

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"
)

// HTTPClient talks to a device gateway over a JSON REST API.
type HTTPClient struct {
	BaseURL string
	APIKey  string
	Client  *http.Client
}

// NewHTTPClient creates a client with optional proxy support.
func NewHTTPClient(baseURL, apiKey, proxyURL string) *HTTPClient {
	transport := &http.Transport{}
	if proxyURL != "" {
		if u, err := url.Parse(proxyURL); err == nil {
			transport.Proxy = http.ProxyURL(u)
		}
	}
	return &HTTPClient{
		BaseURL: baseURL,
		APIKey:  apiKey,
		Client: &http.Client{
			Timeout:   30 * time.Second,
			Transport: transport,
		},
	}
}

func (c *HTTPClient) Name() string { return "http-gateway" }

func (c *HTTPClient) ReadState(ctx context.Context, deviceID string) (*State, error) {
	endpoint := fmt.Sprintf("%s/api/v1/devices/%s/state", c.BaseURL, url.PathEscape(deviceID))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}
	c.auth(req)
	resp, err := c.Client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("read device state: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("read device state: status %d", resp.StatusCode)
	}
	var st State
	if err := json.NewDecoder(resp.Body).Decode(&st); err != nil {
		return nil, fmt.Errorf("decode device state: %w", err)
	}
	return &st, nil
}

func (c *HTTPClient) WriteZoneTarget(ctx context.Context, deviceID string, value float64) (WriteResult, error) {
	return c.write(ctx, deviceID, "zone-target", value)
}

func (c *HTTPClient) WriteTankTarget(ctx context.Context, deviceID string, value float64) (WriteResult, error) {
	return c.write(ctx, deviceID, "tank-target", value)
}

func (c *HTTPClient) write(ctx context.Context, deviceID, setpoint string, value float64) (WriteResult, error) {
	endpoint := fmt.Sprintf("%s/api/v1/devices/%s/%s", c.BaseURL, url.PathEscape(deviceID), setpoint)
	body, _ := json.Marshal(map[string]float64{"value": value})
	req, err := http.NewRequestWithContext(ctx, http.MethodPut, endpoint, bytes.NewReader(body))
	if err != nil {
		return WriteResult{}, err
	}
	req.Header.Set("Content-Type", "application/json")
	c.auth(req)
	resp, err := c.Client.Do(req)
	if err != nil {
		return WriteResult{}, fmt.Errorf("write %s: %w", setpoint, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return WriteResult{}, fmt.Errorf("write %s: status %d", setpoint, resp.StatusCode)
	}
	var res WriteResult
	if err := json.NewDecoder(resp.Body).Decode(&res); err != nil {
		return WriteResult{}, fmt.Errorf("decode write result: %w", err)
	}
	return res, nil
}

func (c *HTTPClient) auth(req *http.Request) {
	if c.APIKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.APIKey)
	}
}
