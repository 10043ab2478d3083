// Package weather adapts the OpenWeatherMap current-weather lookup into the
// ambient Temperature Source used at patient admission time. The lookup is
// best-effort: callers must treat ErrUnavailable as a degraded reading, never
// as a fatal condition.
package weather

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"time"
)

// ErrUnavailable is returned for any transport, status or parse failure. The
// admission path falls back to an unknown ambient temperature when it sees it.
var ErrUnavailable = errors.New("weather data unavailable")

// Reading is a single ambient observation for the configured city.
type Reading struct {
	Condition string  `json:"condition"`
	TempC     float64 `json:"temp_c"`
}

// SpikeRisk reports whether the observation suggests an ER inflow spike
// (severe precipitation or extreme heat).
func (r Reading) SpikeRisk() bool {
	return r.Condition == "Rain" || r.Condition == "Thunderstorm" || r.TempC > 35
}

// Source is the lookup contract consumed by the lifecycle scheduler and the
// dashboard handler.
type Source interface {
	Current(ctx context.Context) (Reading, error)
}

// Client queries the OpenWeatherMap current-weather endpoint for a fixed city.
type Client struct {
	baseURL string
	apiKey  string
	city    string
	http    *http.Client
}

// NewClient builds a Client with a bounded per-request timeout.
func NewClient(apiKey, city string, timeout time.Duration) *Client {
	return &Client{
		baseURL: "https://api.openweathermap.org/data/2.5/weather",
		apiKey:  apiKey,
		city:    city,
		http:    &http.Client{Timeout: timeout},
	}
}

// NewClientWithBaseURL is used by tests to point the client at a fake upstream.
func NewClientWithBaseURL(baseURL, apiKey, city string, timeout time.Duration) *Client {
	c := NewClient(apiKey, city, timeout)
	c.baseURL = baseURL
	return c
}

type owmResponse struct {
	Weather []struct {
		Main string `json:"main"`
	} `json:"weather"`
	Main struct {
		Temp float64 `json:"temp"`
	} `json:"main"`
}

// Current fetches the current condition label and temperature in Celsius.
// Every failure mode is collapsed into ErrUnavailable with the cause wrapped.
func (c *Client) Current(ctx context.Context) (Reading, error) {
	q := url.Values{}
	q.Set("q", c.city)
	q.Set("appid", c.apiKey)
	q.Set("units", "metric")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"?"+q.Encode(), nil)
	if err != nil {
		return Reading{}, fmt.Errorf("%w: build request: %v", ErrUnavailable, err)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return Reading{}, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return Reading{}, fmt.Errorf("%w: status %d", ErrUnavailable, resp.StatusCode)
	}

	var body owmResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return Reading{}, fmt.Errorf("%w: decode response: %v", ErrUnavailable, err)
	}
	if len(body.Weather) == 0 {
		return Reading{}, fmt.Errorf("%w: empty weather block", ErrUnavailable)
	}

	return Reading{Condition: body.Weather[0].Main, TempC: body.Main.Temp}, nil
}
