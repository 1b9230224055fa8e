package weather

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"
)

// Conditions are the current weather values used as optional forecast
// features.
type Conditions struct {
	Temperature float64 `json:"temperature"` // degrees Celsius
	Humidity    float64 `json:"humidity"`    // percent
	WindSpeed   float64 `json:"wind_speed"`  // m/s
}

// Provider supplies current conditions. A failing provider degrades the
// forecast (no weather features), it never blocks it.
type Provider interface {
	Current(ctx context.Context) (*Conditions, error)
}

// HTTPProvider fetches current conditions from an OpenWeather-compatible
// endpoint.
type HTTPProvider struct {
	baseURL string
	apiKey  string
	city    string
	client  *http.Client
}

// NewHTTPProvider creates a weather client. An empty apiKey yields a
// provider that always reports conditions as unavailable.
func NewHTTPProvider(baseURL, apiKey, city string, timeout time.Duration) *HTTPProvider {
	return &HTTPProvider{
		baseURL: baseURL,
		apiKey:  apiKey,
		city:    city,
		client:  &http.Client{Timeout: timeout},
	}
}

type currentResponse struct {
	Main struct {
		Temp     float64 `json:"temp"`
		Humidity float64 `json:"humidity"`
	} `json:"main"`
	Wind struct {
		Speed float64 `json:"speed"`
	} `json:"wind"`
}

// Current returns the current conditions for the configured city.
func (p *HTTPProvider) Current(ctx context.Context) (*Conditions, error) {
	if p.apiKey == "" {
		return nil, fmt.Errorf("weather provider not configured")
	}

	query := url.Values{}
	query.Set("q", p.city)
	query.Set("appid", p.apiKey)
	query.Set("units", "metric")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.baseURL+"?"+query.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build weather request: %w", err)
	}

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("weather request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("weather service returned status %d", resp.StatusCode)
	}

	var body currentResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("failed to decode weather response: %w", err)
	}

	return &Conditions{
		Temperature: body.Main.Temp,
		Humidity:    body.Main.Humidity,
		WindSpeed:   body.Wind.Speed,
	}, nil
}
