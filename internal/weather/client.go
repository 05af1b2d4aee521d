package weather

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/rs/zerolog"

	"placemap/internal/models"
)

const weatherTimeout = 8 * time.Second

// Client fetches current weather from an Open-Meteo compatible forecast
// endpoint.
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     zerolog.Logger
}

// NewClient creates a weather client against the given forecast endpoint.
func NewClient(baseURL string, logger zerolog.Logger) *Client {
	return NewClientWithOptions(baseURL, nil, logger)
}

// NewClientWithOptions allows overriding the HTTP client (used for tests).
func NewClientWithOptions(baseURL string, httpClient *http.Client, logger zerolog.Logger) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: weatherTimeout}
	}
	return &Client{baseURL: baseURL, httpClient: httpClient, logger: logger}
}

type openMeteoResponse struct {
	Current *openMeteoCurrent `json:"current"`
}

type openMeteoCurrent struct {
	Temperature2m float64 `json:"temperature_2m"`
	WindSpeed10m  float64 `json:"wind_speed_10m"`
	WeatherCode   int     `json:"weather_code"`
}

// Current returns the current weather at the coordinates, or an error the
// caller is expected to degrade on (weather is never load-bearing).
func (c *Client) Current(ctx context.Context, latitude, longitude float64) (*models.WeatherData, error) {
	params := url.Values{}
	params.Set("latitude", fmt.Sprintf("%f", latitude))
	params.Set("longitude", fmt.Sprintf("%f", longitude))
	params.Set("current", "temperature_2m,weather_code,wind_speed_10m")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("weather: failed to build request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("weather: request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("weather: request returned status %d", resp.StatusCode)
	}

	var payload openMeteoResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("weather: failed to decode response: %w", err)
	}
	if payload.Current == nil {
		return nil, fmt.Errorf("weather: response missing current block")
	}

	return &models.WeatherData{
		TemperatureC: payload.Current.Temperature2m,
		WindspeedKmh: payload.Current.WindSpeed10m,
		WeatherCode:  payload.Current.WeatherCode,
		Description:  Describe(payload.Current.WeatherCode),
	}, nil
}

// wmoDescriptions maps WMO weather interpretation codes to human text.
var wmoDescriptions = map[int]string{
	0:  "Clear sky",
	1:  "Mainly clear",
	2:  "Partly cloudy",
	3:  "Overcast",
	45: "Foggy",
	48: "Depositing rime fog",
	51: "Light drizzle",
	53: "Moderate drizzle",
	55: "Dense drizzle",
	56: "Light freezing drizzle",
	57: "Dense freezing drizzle",
	61: "Slight rain",
	63: "Moderate rain",
	65: "Heavy rain",
	66: "Light freezing rain",
	67: "Heavy freezing rain",
	71: "Slight snow fall",
	73: "Moderate snow fall",
	75: "Heavy snow fall",
	77: "Snow grains",
	80: "Slight rain showers",
	81: "Moderate rain showers",
	82: "Violent rain showers",
	85: "Slight snow showers",
	86: "Heavy snow showers",
	95: "Thunderstorm",
	96: "Thunderstorm with slight hail",
	99: "Thunderstorm with heavy hail",
}

// Describe translates a WMO weather code.
func Describe(code int) string {
	if desc, ok := wmoDescriptions[code]; ok {
		return desc
	}
	return "Unknown weather condition"
}
